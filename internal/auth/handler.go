package auth

import (
	"errors"
	"strings"
	"sync"

	"github.com/gofiber/fiber/v2"

	"yarn-backend/internal/audit"
	"yarn-backend/internal/config"
	"yarn-backend/internal/models"
	"yarn-backend/internal/permission"
	"yarn-backend/internal/store"
)

type RegisterAdminRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type ChangePasswordRequest struct {
	CurrentPassword string `json:"currentPassword"`
	NewPassword     string `json:"newPassword"`
}

type UpdateProfileRequest struct {
	Name string `json:"name"`
}

type AcceptInvitationRequest struct {
	Name     string `json:"name"`
	Password string `json:"password"`
}

type UserResponse struct {
	ID        string            `json:"id"`
	Email     string            `json:"email"`
	Name      string            `json:"name,omitempty"`
	Status    models.UserStatus `json:"status"`
	RoleID    *string           `json:"roleId,omitempty"`
	RoleName  string            `json:"roleName,omitempty"`
	CreatedAt string            `json:"createdAt"`
}

type SessionResponse struct {
	Token       string                  `json:"token"`
	User        UserResponse            `json:"user"`
	Permissions *models.RolePermissions `json:"permissions"`
	Navigation  []permission.NavItem    `json:"navigation"`
}

func NewUserResponse(u models.User, role *models.Role) UserResponse {
	res := UserResponse{
		ID:        u.ID,
		Email:     u.Email,
		Name:      u.Name,
		Status:    u.Status,
		RoleID:    u.RoleID,
		CreatedAt: u.CreatedAt.Format("2006-01-02 15:04:05"),
	}
	if role != nil {
		res.RoleName = role.Name
	}
	return res
}

// NormalizeEmail trims and lower-cases an address.
func NormalizeEmail(email string) string {
	return strings.TrimSpace(strings.ToLower(email))
}

func session(cfg *config.Config, user models.User, role *models.Role) (SessionResponse, error) {
	token, err := GenerateToken(cfg.JWTSecret, cfg.JWTTTL, &user)
	if err != nil {
		return SessionResponse{}, fiber.NewError(fiber.StatusInternalServerError, "Could not create token")
	}
	p := &Principal{User: user, Role: role}
	res := SessionResponse{
		Token:      token,
		User:       NewUserResponse(user, role),
		Navigation: permission.FilterNavigation(p.Permissions(), permission.Navigation),
	}
	if role != nil {
		res.Permissions = &role.Permissions
	}
	return res, nil
}

func lookupRole(c *fiber.Ctx, dir store.Directory, roleID *string) (*models.Role, error) {
	if roleID == nil || *roleID == "" {
		return nil, nil
	}
	role, err := dir.GetRole(c.UserContext(), *roleID)
	if errors.Is(err, store.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &role, nil
}

// POST /api/auth/register-admin
// Only accepted while the directory holds no user at all. Requests are
// serialized so concurrent calls cannot both see an empty directory.
func RegisterAdminHandler(cfg *config.Config, dir store.Directory, w *audit.Writer) fiber.Handler {
	var mu sync.Mutex
	return func(c *fiber.Ctx) error {
		var body RegisterAdminRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
		}

		body.Email = NormalizeEmail(body.Email)
		body.Name = strings.TrimSpace(body.Name)
		if body.Email == "" || body.Password == "" || body.Name == "" {
			return fiber.NewError(fiber.StatusBadRequest, "Name, email and password are required")
		}

		hash, err := HashPassword(body.Password)
		if errors.Is(err, ErrWeakPassword) {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Could not hash password")
		}

		mu.Lock()
		defer mu.Unlock()

		ctx := c.UserContext()
		count, err := dir.CountUsers(ctx)
		if err != nil {
			return err
		}
		if count > 0 {
			return fiber.NewError(fiber.StatusForbidden, "An administrator already exists")
		}

		role, err := dir.GetRoleByName(ctx, models.AdminRoleName)
		if errors.Is(err, store.ErrNotFound) {
			role = models.Role{Name: models.AdminRoleName, Permissions: models.FullAccess()}
			err = dir.CreateRole(ctx, &role)
		}
		if err != nil {
			return err
		}

		user := models.User{
			Email:        body.Email,
			Name:         body.Name,
			RoleID:       &role.ID,
			Status:       models.UserStatusJoined,
			PasswordHash: hash,
		}
		if err := dir.CreateUser(ctx, &user); err != nil {
			if errors.Is(err, store.ErrDuplicate) {
				return fiber.NewError(fiber.StatusConflict, "Email is already registered")
			}
			return err
		}

		w.WriteLog(ctx, audit.LogOptions{
			UserID:      user.ID,
			UserName:    user.Name,
			EntityType:  "user",
			EntityID:    user.ID,
			Action:      models.AuditActionCreate,
			Description: "Administrator registered: " + user.Email,
			After:       NewUserResponse(user, &role),
		})

		res, err := session(cfg, user, &role)
		if err != nil {
			return err
		}
		return c.Status(fiber.StatusCreated).JSON(res)
	}
}

// POST /api/auth/login
func LoginHandler(cfg *config.Config, dir store.Directory) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body LoginRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
		}

		body.Email = NormalizeEmail(body.Email)

		user, err := dir.GetUserByEmail(c.UserContext(), body.Email)
		if err != nil && !errors.Is(err, store.ErrNotFound) {
			return err
		}
		if err != nil || !user.Active() || !CheckPassword(user.PasswordHash, body.Password) {
			return fiber.NewError(fiber.StatusUnauthorized, "Email or password is incorrect")
		}

		role, err := lookupRole(c, dir, user.RoleID)
		if err != nil {
			return err
		}

		res, err := session(cfg, user, role)
		if err != nil {
			return err
		}
		return c.JSON(res)
	}
}

// GET /api/auth/me
func MeHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		p := CurrentPrincipal(c)
		res := fiber.Map{
			"user":       NewUserResponse(p.User, p.Role),
			"navigation": permission.FilterNavigation(p.Permissions(), permission.Navigation),
		}
		if p.Role != nil {
			res["permissions"] = p.Role.Permissions
		}
		return c.JSON(res)
	}
}

// PUT /api/auth/me
func UpdateMeHandler(dir store.Directory) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body UpdateProfileRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
		}
		name := strings.TrimSpace(body.Name)
		if name == "" {
			return fiber.NewError(fiber.StatusBadRequest, "Name cannot be empty")
		}

		p := CurrentPrincipal(c)
		user := p.User
		user.Name = name
		if err := dir.UpdateUser(c.UserContext(), &user); err != nil {
			return err
		}
		return c.JSON(NewUserResponse(user, p.Role))
	}
}

// POST /api/auth/change-password
func ChangePasswordHandler(dir store.Directory) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body ChangePasswordRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
		}

		user := CurrentPrincipal(c).User
		if !CheckPassword(user.PasswordHash, body.CurrentPassword) {
			return fiber.NewError(fiber.StatusBadRequest, "Current password is incorrect")
		}

		hash, err := HashPassword(body.NewPassword)
		if errors.Is(err, ErrWeakPassword) {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Could not hash password")
		}

		user.PasswordHash = hash
		if err := dir.UpdateUser(c.UserContext(), &user); err != nil {
			return err
		}
		return c.SendStatus(fiber.StatusNoContent)
	}
}

// pendingInvitation resolves an invitation token to its invited user.
func pendingInvitation(c *fiber.Ctx, cfg *config.Config, dir store.Directory) (models.User, error) {
	claims, err := ParseInviteToken(cfg.JWTSecret, c.Params("token"))
	if err != nil {
		return models.User{}, fiber.NewError(fiber.StatusBadRequest, "Invitation link is invalid or has expired")
	}

	user, err := dir.GetUser(c.UserContext(), claims.UserID)
	if errors.Is(err, store.ErrNotFound) {
		return models.User{}, fiber.NewError(fiber.StatusNotFound, "Invitation no longer exists")
	}
	if err != nil {
		return models.User{}, err
	}
	if user.Email != claims.Email || user.IsDeleted {
		return models.User{}, fiber.NewError(fiber.StatusNotFound, "Invitation no longer exists")
	}
	if user.Status != models.UserStatusInvited {
		return models.User{}, fiber.NewError(fiber.StatusConflict, "Invitation has already been accepted")
	}
	return user, nil
}

// GET /api/auth/invitations/:token
func GetInvitationHandler(cfg *config.Config, dir store.Directory) fiber.Handler {
	return func(c *fiber.Ctx) error {
		user, err := pendingInvitation(c, cfg, dir)
		if err != nil {
			return err
		}
		return c.JSON(fiber.Map{"email": user.Email, "name": user.Name})
	}
}

// POST /api/auth/invitations/:token/accept
func AcceptInvitationHandler(cfg *config.Config, dir store.Directory, w *audit.Writer) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body AcceptInvitationRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
		}
		body.Name = strings.TrimSpace(body.Name)
		if body.Name == "" {
			return fiber.NewError(fiber.StatusBadRequest, "Name is required")
		}

		user, err := pendingInvitation(c, cfg, dir)
		if err != nil {
			return err
		}

		hash, err := HashPassword(body.Password)
		if errors.Is(err, ErrWeakPassword) {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Could not hash password")
		}

		before := user
		user.Name = body.Name
		user.PasswordHash = hash
		user.Status = models.UserStatusJoined
		if err := dir.UpdateUser(c.UserContext(), &user); err != nil {
			return err
		}

		role, err := lookupRole(c, dir, user.RoleID)
		if err != nil {
			return err
		}

		w.WriteLog(c.UserContext(), audit.LogOptions{
			UserID:      user.ID,
			UserName:    user.Name,
			EntityType:  "user",
			EntityID:    user.ID,
			Action:      models.AuditActionUpdate,
			Description: "Invitation accepted: " + user.Email,
			Before:      NewUserResponse(before, role),
			After:       NewUserResponse(user, role),
		})

		res, err := session(cfg, user, role)
		if err != nil {
			return err
		}
		return c.JSON(res)
	}
}
