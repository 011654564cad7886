package accounts

import (
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"

	"yarn-backend/internal/audit"
	"yarn-backend/internal/auth"
	"yarn-backend/internal/config"
	"yarn-backend/internal/mailer"
	"yarn-backend/internal/models"
	"yarn-backend/internal/store"
)

type InviteUserRequest struct {
	Email  string `json:"email"`
	RoleID string `json:"roleId"`
}

type UpdateUserRequest struct {
	Name   *string `json:"name"`
	RoleID *string `json:"roleId"`
}

type UserHandlers struct {
	cfg    *config.Config
	dir    store.Directory
	mailer mailer.Mailer
	audit  *audit.Writer
}

func NewUserHandlers(cfg *config.Config, dir store.Directory, m mailer.Mailer, w *audit.Writer) *UserHandlers {
	return &UserHandlers{cfg: cfg, dir: dir, mailer: m, audit: w}
}

func (h *UserHandlers) response(c *fiber.Ctx, u models.User) (auth.UserResponse, error) {
	if u.RoleID == nil || *u.RoleID == "" {
		return auth.NewUserResponse(u, nil), nil
	}
	role, err := h.dir.GetRole(c.UserContext(), *u.RoleID)
	if errors.Is(err, store.ErrNotFound) {
		return auth.NewUserResponse(u, nil), nil
	}
	if err != nil {
		return auth.UserResponse{}, err
	}
	return auth.NewUserResponse(u, &role), nil
}

func (h *UserHandlers) load(c *fiber.Ctx) (models.User, error) {
	u, err := h.dir.GetUser(c.UserContext(), c.Params("id"))
	if errors.Is(err, store.ErrNotFound) || (err == nil && u.IsDeleted) {
		return models.User{}, fiber.NewError(fiber.StatusNotFound, "User not found")
	}
	return u, err
}

func (h *UserHandlers) requireRole(c *fiber.Ctx, id string) error {
	if id == "" {
		return fiber.NewError(fiber.StatusBadRequest, "roleId is required")
	}
	_, err := h.dir.GetRole(c.UserContext(), id)
	if errors.Is(err, store.ErrNotFound) {
		return fiber.NewError(fiber.StatusBadRequest, "Role does not exist")
	}
	return err
}

// sendInvite issues a fresh invitation token for u and hands the link to
// the mailer.
func (h *UserHandlers) sendInvite(c *fiber.Ctx, u models.User) error {
	token, err := auth.GenerateInviteToken(h.cfg.JWTSecret, h.cfg.InviteTTL, &u)
	if err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, "Could not create invitation")
	}
	_, actorName := auth.Actor(c)
	err = h.mailer.SendInvitation(c.UserContext(), mailer.Invitation{
		Email:     u.Email,
		Link:      h.cfg.AppBaseURL + "/register?token=" + token,
		InvitedBy: actorName,
	})
	if err != nil {
		return fiber.NewError(fiber.StatusBadGateway, "Invitation could not be sent")
	}
	return nil
}

// GET /api/accounts/users
func (h *UserHandlers) List(c *fiber.Ctx) error {
	users, err := h.dir.ListUsers(c.UserContext())
	if err != nil {
		return err
	}
	roles, err := h.dir.ListRoles(c.UserContext())
	if err != nil {
		return err
	}
	byID := make(map[string]*models.Role, len(roles))
	for i := range roles {
		byID[roles[i].ID] = &roles[i]
	}

	res := make([]auth.UserResponse, 0, len(users))
	for _, u := range users {
		var role *models.Role
		if u.RoleID != nil {
			role = byID[*u.RoleID]
		}
		res = append(res, auth.NewUserResponse(u, role))
	}
	return c.JSON(res)
}

// GET /api/accounts/users/:id
func (h *UserHandlers) Get(c *fiber.Ctx) error {
	u, err := h.load(c)
	if err != nil {
		return err
	}
	res, err := h.response(c, u)
	if err != nil {
		return err
	}
	return c.JSON(res)
}

// POST /api/accounts/users
// Inviting the email of a deleted user brings that account back as invited,
// keeping its id. If the invitation cannot be sent nothing is kept.
func (h *UserHandlers) Invite(c *fiber.Ctx) error {
	var body InviteUserRequest
	if err := c.BodyParser(&body); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
	}
	body.Email = auth.NormalizeEmail(body.Email)
	if body.Email == "" || !strings.Contains(body.Email, "@") {
		return fiber.NewError(fiber.StatusBadRequest, "A valid email is required")
	}
	if err := h.requireRole(c, body.RoleID); err != nil {
		return err
	}

	ctx := c.UserContext()
	actorID, actorName := auth.Actor(c)

	existing, err := h.dir.GetUserByEmail(ctx, body.Email)
	switch {
	case err == nil && !existing.IsDeleted:
		return fiber.NewError(fiber.StatusConflict, "A user with this email already exists")
	case err != nil && !errors.Is(err, store.ErrNotFound):
		return err
	}
	revived := err == nil

	u := models.User{
		Email:     body.Email,
		RoleID:    &body.RoleID,
		Status:    models.UserStatusInvited,
		InvitedBy: actorID,
	}
	if revived {
		u.ID = existing.ID
		u.CreatedAt = existing.CreatedAt
		err = h.dir.UpdateUser(ctx, &u)
	} else {
		err = h.dir.CreateUser(ctx, &u)
	}
	if errors.Is(err, store.ErrDuplicate) {
		return fiber.NewError(fiber.StatusConflict, "A user with this email already exists")
	}
	if err != nil {
		return err
	}

	if sendErr := h.sendInvite(c, u); sendErr != nil {
		if revived {
			err = h.dir.UpdateUser(ctx, &existing)
		} else {
			err = h.dir.DeleteUser(ctx, u.ID)
		}
		if err != nil {
			return err
		}
		return sendErr
	}

	res, err := h.response(c, u)
	if err != nil {
		return err
	}
	opts := audit.LogOptions{
		UserID:      actorID,
		UserName:    actorName,
		EntityType:  "user",
		EntityID:    u.ID,
		Action:      models.AuditActionCreate,
		Description: "User invited: " + u.Email,
		After:       res,
	}
	if revived {
		before, err := h.response(c, existing)
		if err != nil {
			return err
		}
		opts.Action = models.AuditActionUpdate
		opts.Description = "Deleted user invited again: " + u.Email
		opts.Before = before
	}
	h.audit.WriteLog(ctx, opts)
	return c.Status(fiber.StatusCreated).JSON(res)
}

// POST /api/accounts/users/:id/resend-invite
func (h *UserHandlers) ResendInvite(c *fiber.Ctx) error {
	u, err := h.load(c)
	if err != nil {
		return err
	}
	if u.Status != models.UserStatusInvited {
		return fiber.NewError(fiber.StatusConflict, "User has already joined")
	}
	if err := h.sendInvite(c, u); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"message": "Invitation sent"})
}

// PUT /api/accounts/users/:id
func (h *UserHandlers) Update(c *fiber.Ctx) error {
	var body UpdateUserRequest
	if err := c.BodyParser(&body); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
	}

	u, err := h.load(c)
	if err != nil {
		return err
	}
	before, err := h.response(c, u)
	if err != nil {
		return err
	}

	if body.Name != nil {
		u.Name = strings.TrimSpace(*body.Name)
	}
	if body.RoleID != nil {
		if err := h.requireRole(c, *body.RoleID); err != nil {
			return err
		}
		roleID := *body.RoleID
		u.RoleID = &roleID
	}

	if err := h.dir.UpdateUser(c.UserContext(), &u); err != nil {
		return err
	}
	after, err := h.response(c, u)
	if err != nil {
		return err
	}

	actorID, actorName := auth.Actor(c)
	h.audit.WriteLog(c.UserContext(), audit.LogOptions{
		UserID:      actorID,
		UserName:    actorName,
		EntityType:  "user",
		EntityID:    u.ID,
		Action:      models.AuditActionUpdate,
		Description: "User updated: " + u.Email,
		Before:      before,
		After:       after,
	})
	return c.JSON(after)
}

// DELETE /api/accounts/users/:id
// Invited users are removed; joined users are only flagged deleted so their
// entries keep a valid creator.
func (h *UserHandlers) Delete(c *fiber.Ctx) error {
	u, err := h.load(c)
	if err != nil {
		return err
	}
	actorID, actorName := auth.Actor(c)
	if u.ID == actorID {
		return fiber.NewError(fiber.StatusBadRequest, "You cannot delete your own account")
	}
	before, err := h.response(c, u)
	if err != nil {
		return err
	}

	if u.Status == models.UserStatusInvited {
		err = h.dir.DeleteUser(c.UserContext(), u.ID)
	} else {
		u.IsDeleted = true
		err = h.dir.UpdateUser(c.UserContext(), &u)
	}
	if err != nil {
		return err
	}

	h.audit.WriteLog(c.UserContext(), audit.LogOptions{
		UserID:      actorID,
		UserName:    actorName,
		EntityType:  "user",
		EntityID:    u.ID,
		Action:      models.AuditActionDelete,
		Description: "User deleted: " + u.Email,
		Before:      before,
	})
	return c.SendStatus(fiber.StatusNoContent)
}
