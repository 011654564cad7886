package auth

import (
	"github.com/gofiber/fiber/v2"

	"yarn-backend/internal/permission"
	"yarn-backend/internal/store"
)

// GET /api/access?route=/accounts/role[&roleId=...]
// Lets page guards ask whether the caller may open a route. With roleId,
// callers allowed to view roles can preview another role's access; an
// unknown role has no permissions and is denied everything.
func AccessHandler(dir store.Directory) fiber.Handler {
	return func(c *fiber.Ctx) error {
		route := c.Query("route")
		if route == "" {
			return fiber.NewError(fiber.StatusBadRequest, "route is required")
		}

		p := CurrentPrincipal(c)
		perms := p.Permissions()
		if roleID := c.Query("roleId"); roleID != "" {
			if !permission.Resolve(perms, permission.RoleView) {
				return fiber.NewError(fiber.StatusForbidden, "You do not have permission for this action")
			}
			rp, err := store.GetRolePermissions(c.UserContext(), dir, roleID)
			if err != nil {
				return err
			}
			perms = rp.Tree()
		}

		return c.JSON(fiber.Map{
			"route":   permission.NormalizeRoute(route),
			"allowed": permission.HasPermission(perms, route),
		})
	}
}

// GET /api/navigation
func NavigationHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		return c.JSON(permission.FilterNavigation(CurrentPrincipal(c).Permissions(), permission.Navigation))
	}
}
