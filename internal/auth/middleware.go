package auth

import (
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"

	"yarn-backend/internal/config"
	"yarn-backend/internal/models"
	"yarn-backend/internal/permission"
	"yarn-backend/internal/store"
)

const (
	CtxUserIDKey    = "user_id"
	CtxPrincipalKey = "principal"
)

// Principal is the authenticated caller with its role resolved.
type Principal struct {
	User models.User
	Role *models.Role // nil when no role is assigned or it no longer exists
}

// Permissions returns the caller's permission tree, nil without a role.
func (p *Principal) Permissions() permission.Tree {
	if p == nil || p.Role == nil {
		return nil
	}
	return p.Role.Permissions.Tree()
}

func (p *Principal) IsAdmin() bool {
	return p != nil && p.Role != nil && p.Role.IsAdmin()
}

func (p *Principal) DisplayName() string {
	if p.User.Name != "" {
		return p.User.Name
	}
	return p.User.Email
}

func JWTMiddleware(cfg *config.Config) fiber.Handler {
	return func(c *fiber.Ctx) error {
		authHeader := c.Get("Authorization")
		if authHeader == "" {
			return fiber.NewError(fiber.StatusUnauthorized, "Authorization header missing")
		}

		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" {
			return fiber.NewError(fiber.StatusUnauthorized, "Authorization must be 'Bearer <token>'")
		}

		claims, err := ParseToken(cfg.JWTSecret, parts[1])
		if err != nil {
			return fiber.NewError(fiber.StatusUnauthorized, "Invalid or expired token")
		}

		c.Locals(CtxUserIDKey, claims.UserID)
		return c.Next()
	}
}

// LoadPrincipal reads the caller and its role from the directory on every
// request, so role edits and deletions apply immediately.
func LoadPrincipal(dir store.Directory) fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID, _ := c.Locals(CtxUserIDKey).(string)
		if userID == "" {
			return fiber.NewError(fiber.StatusUnauthorized, "Missing user")
		}

		user, err := dir.GetUser(c.UserContext(), userID)
		if errors.Is(err, store.ErrNotFound) {
			return fiber.NewError(fiber.StatusUnauthorized, "User no longer exists")
		}
		if err != nil {
			return err
		}
		if !user.Active() {
			return fiber.NewError(fiber.StatusUnauthorized, "User is not active")
		}

		p := &Principal{User: user}
		if user.RoleID != nil && *user.RoleID != "" {
			role, err := dir.GetRole(c.UserContext(), *user.RoleID)
			switch {
			case err == nil:
				p.Role = &role
			case !errors.Is(err, store.ErrNotFound):
				return err
			}
		}

		c.Locals(CtxPrincipalKey, p)
		return c.Next()
	}
}

// CurrentPrincipal returns the caller loaded by LoadPrincipal.
func CurrentPrincipal(c *fiber.Ctx) *Principal {
	p, _ := c.Locals(CtxPrincipalKey).(*Principal)
	return p
}

// Actor returns the id and display name of the caller for audit records.
func Actor(c *fiber.Ctx) (string, string) {
	p := CurrentPrincipal(c)
	if p == nil {
		return "", ""
	}
	return p.User.ID, p.DisplayName()
}

// RequirePermission lets the request through when the caller's role grants
// any of the given permission paths.
func RequirePermission(paths ...string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		perms := CurrentPrincipal(c).Permissions()
		for _, path := range paths {
			if permission.Resolve(perms, path) {
				return c.Next()
			}
		}
		return fiber.NewError(fiber.StatusForbidden, "You do not have permission for this action")
	}
}

func RequireAdmin() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if !CurrentPrincipal(c).IsAdmin() {
			return fiber.NewError(fiber.StatusForbidden, "Only the Admin role can do this")
		}
		return c.Next()
	}
}
