package master

import (
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"

	"yarn-backend/internal/audit"
	"yarn-backend/internal/auth"
	"yarn-backend/internal/models"
	"yarn-backend/internal/store"
)

type PartyRequest struct {
	Name     string `json:"name"`
	MobileNo string `json:"mobileNo"`
	EmailID  string `json:"emailId"`
}

func (r *PartyRequest) validate() error {
	r.Name = strings.TrimSpace(r.Name)
	r.MobileNo = strings.TrimSpace(r.MobileNo)
	r.EmailID = strings.TrimSpace(strings.ToLower(r.EmailID))
	if r.Name == "" {
		return fiber.NewError(fiber.StatusBadRequest, "Party name is required")
	}
	if r.EmailID != "" && !strings.Contains(r.EmailID, "@") {
		return fiber.NewError(fiber.StatusBadRequest, "emailId is not a valid email")
	}
	return nil
}

type PartyHandlers struct {
	ledger store.Ledger
	audit  *audit.Writer
}

func NewPartyHandlers(l store.Ledger, w *audit.Writer) *PartyHandlers {
	return &PartyHandlers{ledger: l, audit: w}
}

func (h *PartyHandlers) load(c *fiber.Ctx) (models.Party, error) {
	p, err := h.ledger.GetParty(c.UserContext(), c.Params("id"))
	if errors.Is(err, store.ErrNotFound) {
		return p, fiber.NewError(fiber.StatusNotFound, "Party not found")
	}
	return p, err
}

// GET /api/master/parties
func (h *PartyHandlers) List(c *fiber.Ctx) error {
	parties, err := h.ledger.ListParties(c.UserContext())
	if err != nil {
		return err
	}
	return c.JSON(parties)
}

// GET /api/master/parties/:id
func (h *PartyHandlers) Get(c *fiber.Ctx) error {
	p, err := h.load(c)
	if err != nil {
		return err
	}
	return c.JSON(p)
}

// POST /api/master/parties
func (h *PartyHandlers) Create(c *fiber.Ctx) error {
	var body PartyRequest
	if err := c.BodyParser(&body); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
	}
	if err := body.validate(); err != nil {
		return err
	}

	actorID, actorName := auth.Actor(c)
	p := models.Party{Name: body.Name, MobileNo: body.MobileNo, EmailID: body.EmailID, CreatedBy: actorID}
	if err := h.ledger.CreateParty(c.UserContext(), &p); err != nil {
		return err
	}

	h.audit.WriteLog(c.UserContext(), audit.LogOptions{
		UserID:      actorID,
		UserName:    actorName,
		EntityType:  "party",
		EntityID:    p.ID,
		Action:      models.AuditActionCreate,
		Description: "Party created: " + p.Name,
		After:       p,
	})
	return c.Status(fiber.StatusCreated).JSON(p)
}

// PUT /api/master/parties/:id
func (h *PartyHandlers) Update(c *fiber.Ctx) error {
	var body PartyRequest
	if err := c.BodyParser(&body); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
	}
	if err := body.validate(); err != nil {
		return err
	}

	p, err := h.load(c)
	if err != nil {
		return err
	}
	before := p
	p.Name, p.MobileNo, p.EmailID = body.Name, body.MobileNo, body.EmailID
	if err := h.ledger.UpdateParty(c.UserContext(), &p); err != nil {
		return err
	}

	actorID, actorName := auth.Actor(c)
	h.audit.WriteLog(c.UserContext(), audit.LogOptions{
		UserID:      actorID,
		UserName:    actorName,
		EntityType:  "party",
		EntityID:    p.ID,
		Action:      models.AuditActionUpdate,
		Description: "Party updated: " + p.Name,
		Before:      before,
		After:       p,
	})
	return c.JSON(p)
}

// DELETE /api/master/parties/:id
func (h *PartyHandlers) Delete(c *fiber.Ctx) error {
	p, err := h.load(c)
	if err != nil {
		return err
	}
	inUse, err := h.ledger.PartyInUse(c.UserContext(), p.ID)
	if err != nil {
		return err
	}
	if inUse {
		return fiber.NewError(fiber.StatusConflict, "Party has stock entries and cannot be deleted")
	}
	if err := h.ledger.DeleteParty(c.UserContext(), p.ID); err != nil {
		return err
	}

	actorID, actorName := auth.Actor(c)
	h.audit.WriteLog(c.UserContext(), audit.LogOptions{
		UserID:      actorID,
		UserName:    actorName,
		EntityType:  "party",
		EntityID:    p.ID,
		Action:      models.AuditActionDelete,
		Description: "Party deleted: " + p.Name,
		Before:      p,
	})
	return c.SendStatus(fiber.StatusNoContent)
}
