package master

import (
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"

	"yarn-backend/internal/audit"
	"yarn-backend/internal/auth"
	"yarn-backend/internal/models"
	"yarn-backend/internal/store"
)

type CategoryRequest struct {
	Name         string          `json:"name"`
	Description  string          `json:"description"`
	NoOfCones    int             `json:"noOfCones"`
	WeightPerBox decimal.Decimal `json:"weightPerBox"`
}

// validate normalizes and checks the request. Box weights are whole
// kilograms or carry two or three decimals (12, 12.50, 12.125).
func (r *CategoryRequest) validate() error {
	r.Name = strings.TrimSpace(r.Name)
	r.Description = strings.TrimSpace(r.Description)
	if r.Name == "" {
		return fiber.NewError(fiber.StatusBadRequest, "Category name is required")
	}
	if r.NoOfCones < 0 {
		return fiber.NewError(fiber.StatusBadRequest, "noOfCones cannot be negative")
	}
	if !r.WeightPerBox.IsPositive() {
		return fiber.NewError(fiber.StatusBadRequest, "weightPerBox must be positive")
	}
	if d := models.FractionDigits(r.WeightPerBox); d == 1 || d > 3 {
		return fiber.NewError(fiber.StatusBadRequest, "weightPerBox must be whole or have 2 or 3 decimals")
	}
	return nil
}

type CategoryHandlers struct {
	ledger store.Ledger
	audit  *audit.Writer
}

func NewCategoryHandlers(l store.Ledger, w *audit.Writer) *CategoryHandlers {
	return &CategoryHandlers{ledger: l, audit: w}
}

func (h *CategoryHandlers) load(c *fiber.Ctx) (models.YarnCategory, error) {
	cat, err := h.ledger.GetCategory(c.UserContext(), c.Params("id"))
	if errors.Is(err, store.ErrNotFound) {
		return cat, fiber.NewError(fiber.StatusNotFound, "Category not found")
	}
	return cat, err
}

// GET /api/master/categories
func (h *CategoryHandlers) List(c *fiber.Ctx) error {
	cats, err := h.ledger.ListCategories(c.UserContext())
	if err != nil {
		return err
	}
	return c.JSON(cats)
}

// GET /api/master/categories/:id
func (h *CategoryHandlers) Get(c *fiber.Ctx) error {
	cat, err := h.load(c)
	if err != nil {
		return err
	}
	return c.JSON(cat)
}

// POST /api/master/categories
func (h *CategoryHandlers) Create(c *fiber.Ctx) error {
	var body CategoryRequest
	if err := c.BodyParser(&body); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
	}
	if err := body.validate(); err != nil {
		return err
	}

	actorID, actorName := auth.Actor(c)
	cat := models.YarnCategory{
		Name:         body.Name,
		Description:  body.Description,
		NoOfCones:    body.NoOfCones,
		WeightPerBox: body.WeightPerBox,
		CreatedBy:    actorID,
	}
	if err := h.ledger.CreateCategory(c.UserContext(), &cat); err != nil {
		if errors.Is(err, store.ErrDuplicate) {
			return fiber.NewError(fiber.StatusConflict, "A category with this name already exists")
		}
		return err
	}

	h.audit.WriteLog(c.UserContext(), audit.LogOptions{
		UserID:      actorID,
		UserName:    actorName,
		EntityType:  "category",
		EntityID:    cat.ID,
		Action:      models.AuditActionCreate,
		Description: "Category created: " + cat.Name,
		After:       cat,
	})
	return c.Status(fiber.StatusCreated).JSON(cat)
}

// PUT /api/master/categories/:id
func (h *CategoryHandlers) Update(c *fiber.Ctx) error {
	var body CategoryRequest
	if err := c.BodyParser(&body); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
	}
	if err := body.validate(); err != nil {
		return err
	}

	cat, err := h.load(c)
	if err != nil {
		return err
	}
	before := cat
	cat.Name = body.Name
	cat.Description = body.Description
	cat.NoOfCones = body.NoOfCones
	cat.WeightPerBox = body.WeightPerBox

	if err := h.ledger.UpdateCategory(c.UserContext(), &cat); err != nil {
		if errors.Is(err, store.ErrDuplicate) {
			return fiber.NewError(fiber.StatusConflict, "A category with this name already exists")
		}
		return err
	}

	actorID, actorName := auth.Actor(c)
	h.audit.WriteLog(c.UserContext(), audit.LogOptions{
		UserID:      actorID,
		UserName:    actorName,
		EntityType:  "category",
		EntityID:    cat.ID,
		Action:      models.AuditActionUpdate,
		Description: "Category updated: " + cat.Name,
		Before:      before,
		After:       cat,
	})
	return c.JSON(cat)
}

// DELETE /api/master/categories/:id
func (h *CategoryHandlers) Delete(c *fiber.Ctx) error {
	cat, err := h.load(c)
	if err != nil {
		return err
	}
	inUse, err := h.ledger.CategoryInUse(c.UserContext(), cat.ID)
	if err != nil {
		return err
	}
	if inUse {
		return fiber.NewError(fiber.StatusConflict, "Category has stock entries and cannot be deleted")
	}
	if err := h.ledger.DeleteCategory(c.UserContext(), cat.ID); err != nil {
		return err
	}

	actorID, actorName := auth.Actor(c)
	h.audit.WriteLog(c.UserContext(), audit.LogOptions{
		UserID:      actorID,
		UserName:    actorName,
		EntityType:  "category",
		EntityID:    cat.ID,
		Action:      models.AuditActionDelete,
		Description: "Category deleted: " + cat.Name,
		Before:      cat,
	})
	return c.SendStatus(fiber.StatusNoContent)
}
