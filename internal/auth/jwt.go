package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"yarn-backend/internal/models"
)

const purposeInvite = "invite"

var ErrInvalidToken = errors.New("invalid or expired token")

type JWTCustomClaims struct {
	UserID  string `json:"user_id"`
	Email   string `json:"email"`
	Purpose string `json:"purpose,omitempty"` // set on invite tokens only
	jwt.RegisteredClaims
}

// InviteClaims are carried by the link sent to an invited user.
type InviteClaims struct {
	UserID  string `json:"user_id"`
	Email   string `json:"email"`
	Purpose string `json:"purpose"`
	jwt.RegisteredClaims
}

func GenerateToken(secret string, ttl time.Duration, user *models.User) (string, error) {
	now := time.Now()
	claims := &JWTCustomClaims{
		UserID: user.ID,
		Email:  user.Email,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.ID,
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(secret))
}

func ParseToken(secret, tokenStr string) (*JWTCustomClaims, error) {
	claims := &JWTCustomClaims{}
	if err := parse(secret, tokenStr, claims); err != nil {
		return nil, err
	}
	if claims.UserID == "" || claims.Purpose != "" {
		return nil, ErrInvalidToken
	}
	return claims, nil
}

func GenerateInviteToken(secret string, ttl time.Duration, user *models.User) (string, error) {
	now := time.Now()
	claims := &InviteClaims{
		UserID:  user.ID,
		Email:   user.Email,
		Purpose: purposeInvite,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Subject:   user.ID,
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(secret))
}

func ParseInviteToken(secret, tokenStr string) (*InviteClaims, error) {
	claims := &InviteClaims{}
	if err := parse(secret, tokenStr, claims); err != nil {
		return nil, err
	}
	if claims.Purpose != purposeInvite || claims.UserID == "" {
		return nil, ErrInvalidToken
	}
	return claims, nil
}

func parse(secret, tokenStr string, claims jwt.Claims) error {
	token, err := jwt.ParseWithClaims(tokenStr, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return []byte(secret), nil
	})
	if err != nil || !token.Valid {
		return ErrInvalidToken
	}
	return nil
}
