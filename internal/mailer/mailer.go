// Package mailer delivers invitation messages. Delivery itself is an
// external concern; the bundled implementation only logs.
package mailer

import (
	"context"

	"go.uber.org/zap"
)

type Invitation struct {
	Email     string
	Link      string
	InvitedBy string
}

type Mailer interface {
	SendInvitation(ctx context.Context, inv Invitation) error
}

// LogMailer writes invitations to the log instead of sending them.
type LogMailer struct {
	log *zap.Logger
}

func NewLogMailer(log *zap.Logger) *LogMailer {
	return &LogMailer{log: log}
}

func (m *LogMailer) SendInvitation(_ context.Context, inv Invitation) error {
	m.log.Info("invitation",
		zap.String("email", inv.Email),
		zap.String("invited_by", inv.InvitedBy),
		zap.String("link", inv.Link),
	)
	return nil
}
