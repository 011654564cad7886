package accounts

import (
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"

	"yarn-backend/internal/audit"
	"yarn-backend/internal/auth"
	"yarn-backend/internal/models"
	"yarn-backend/internal/store"
)

type RoleRequest struct {
	Name        string                 `json:"name"`
	Permissions models.RolePermissions `json:"permissions"`
}

type RoleHandlers struct {
	dir   store.Directory
	audit *audit.Writer
}

func NewRoleHandlers(dir store.Directory, w *audit.Writer) *RoleHandlers {
	return &RoleHandlers{dir: dir, audit: w}
}

func (h *RoleHandlers) load(c *fiber.Ctx) (models.Role, error) {
	r, err := h.dir.GetRole(c.UserContext(), c.Params("id"))
	if errors.Is(err, store.ErrNotFound) {
		return models.Role{}, fiber.NewError(fiber.StatusNotFound, "Role not found")
	}
	return r, err
}

func parseRole(c *fiber.Ctx) (RoleRequest, error) {
	var body RoleRequest
	if err := c.BodyParser(&body); err != nil {
		return body, fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
	}
	body.Name = strings.TrimSpace(body.Name)
	if body.Name == "" {
		return body, fiber.NewError(fiber.StatusBadRequest, "Role name is required")
	}
	if strings.EqualFold(body.Name, models.AdminRoleName) {
		return body, fiber.NewError(fiber.StatusBadRequest, "The Admin role name is reserved")
	}
	return body, nil
}

// GET /api/accounts/roles
func (h *RoleHandlers) List(c *fiber.Ctx) error {
	roles, err := h.dir.ListRoles(c.UserContext())
	if err != nil {
		return err
	}
	return c.JSON(roles)
}

// GET /api/accounts/roles/:id
func (h *RoleHandlers) Get(c *fiber.Ctx) error {
	r, err := h.load(c)
	if err != nil {
		return err
	}
	return c.JSON(r)
}

// POST /api/accounts/roles
func (h *RoleHandlers) Create(c *fiber.Ctx) error {
	body, err := parseRole(c)
	if err != nil {
		return err
	}

	actorID, actorName := auth.Actor(c)
	r := models.Role{Name: body.Name, Permissions: body.Permissions, CreatedBy: actorID}
	if err := h.dir.CreateRole(c.UserContext(), &r); err != nil {
		if errors.Is(err, store.ErrDuplicate) {
			return fiber.NewError(fiber.StatusConflict, "A role with this name already exists")
		}
		return err
	}

	h.audit.WriteLog(c.UserContext(), audit.LogOptions{
		UserID:      actorID,
		UserName:    actorName,
		EntityType:  "role",
		EntityID:    r.ID,
		Action:      models.AuditActionCreate,
		Description: "Role created: " + r.Name,
		After:       r,
	})
	return c.Status(fiber.StatusCreated).JSON(r)
}

// PUT /api/accounts/roles/:id
func (h *RoleHandlers) Update(c *fiber.Ctx) error {
	r, err := h.load(c)
	if err != nil {
		return err
	}
	if r.IsAdmin() {
		return fiber.NewError(fiber.StatusForbidden, "The Admin role cannot be edited")
	}
	body, err := parseRole(c)
	if err != nil {
		return err
	}

	before := r
	r.Name = body.Name
	r.Permissions = body.Permissions
	if err := h.dir.UpdateRole(c.UserContext(), &r); err != nil {
		if errors.Is(err, store.ErrDuplicate) {
			return fiber.NewError(fiber.StatusConflict, "A role with this name already exists")
		}
		return err
	}

	actorID, actorName := auth.Actor(c)
	h.audit.WriteLog(c.UserContext(), audit.LogOptions{
		UserID:      actorID,
		UserName:    actorName,
		EntityType:  "role",
		EntityID:    r.ID,
		Action:      models.AuditActionUpdate,
		Description: "Role updated: " + r.Name,
		Before:      before,
		After:       r,
	})
	return c.JSON(r)
}

// DELETE /api/accounts/roles/:id
func (h *RoleHandlers) Delete(c *fiber.Ctx) error {
	r, err := h.load(c)
	if err != nil {
		return err
	}
	if r.IsAdmin() {
		return fiber.NewError(fiber.StatusForbidden, "The Admin role cannot be deleted")
	}
	inUse, err := h.dir.RoleInUse(c.UserContext(), r.ID)
	if err != nil {
		return err
	}
	if inUse {
		return fiber.NewError(fiber.StatusConflict, "Role is assigned to users")
	}
	if err := h.dir.DeleteRole(c.UserContext(), r.ID); err != nil {
		return err
	}

	actorID, actorName := auth.Actor(c)
	h.audit.WriteLog(c.UserContext(), audit.LogOptions{
		UserID:      actorID,
		UserName:    actorName,
		EntityType:  "role",
		EntityID:    r.ID,
		Action:      models.AuditActionDelete,
		Description: "Role deleted: " + r.Name,
		Before:      r,
	})
	return c.SendStatus(fiber.StatusNoContent)
}
