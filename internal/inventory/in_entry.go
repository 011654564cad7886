package inventory

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

type InEntryRequest struct {
	EntryDate    string          `json:"entryDate"`
	CategoryID   string          `json:"categoryId"`
	LotNo        string          `json:"lotNo"`
	PurchaseDate string          `json:"purchaseDate"`
	PartyID      string          `json:"partyId"`
	NoOfBoxes    int             `json:"noOfBoxes"`
	WeightInKg   decimal.Decimal `json:"weightInKg"`
}

type InEntryResponse struct {
	models.InEntry
	CategoryName string `json:"categoryName"`
	PartyName    string `json:"partyName"`
}

// apply validates the request and copies it onto e.
func (r *InEntryRequest) apply(c *fiber.Ctx, l store.Ledger, e *models.InEntry) error {
	entryDate, err := parseDate("entryDate", r.EntryDate)
	if err != nil {
		return err
	}
	purchaseDate, err := parseDate("purchaseDate", r.PurchaseDate)
	if err != nil {
		return err
	}
	lotNo := strings.TrimSpace(r.LotNo)
	if lotNo == "" {
		return fiber.NewError(fiber.StatusBadRequest, "lotNo is required")
	}
	if r.NoOfBoxes < 0 {
		return fiber.NewError(fiber.StatusBadRequest, "noOfBoxes cannot be negative")
	}
	if err := checkWeight("weightInKg", r.WeightInKg); err != nil {
		return err
	}
	if _, err := requireCategory(c, l, r.CategoryID); err != nil {
		return err
	}
	if _, err := requireParty(c, l, r.PartyID); err != nil {
		return err
	}

	e.EntryDate = entryDate
	e.PurchaseDate = purchaseDate
	e.CategoryID = r.CategoryID
	e.LotNo = lotNo
	e.PartyID = r.PartyID
	e.NoOfBoxes = r.NoOfBoxes
	e.WeightInKg = r.WeightInKg
	return nil
}

func inEntryResponse(c *fiber.Ctx, l store.Ledger, e models.InEntry) InEntryResponse {
	res := InEntryResponse{InEntry: e}
	if cat, err := l.GetCategory(c.UserContext(), e.CategoryID); err == nil {
		res.CategoryName = cat.Name
	}
	if p, err := l.GetParty(c.UserContext(), e.PartyID); err == nil {
		res.PartyName = p.Name
	}
	return res
}

// GET /api/in-entries?categoryId=&lotNo=&from=&to=
func ListInEntriesHandler(l store.Ledger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		f, err := entryFilter(c)
		if err != nil {
			return err
		}
		entries, err := l.ListInEntries(c.UserContext(), f)
		if err != nil {
			return err
		}
		n, err := loadNames(c, l)
		if err != nil {
			return err
		}

		res := make([]InEntryResponse, 0, len(entries))
		for _, e := range entries {
			res = append(res, InEntryResponse{
				InEntry:      e,
				CategoryName: n.categories[e.CategoryID],
				PartyName:    n.parties[e.PartyID],
			})
		}
		return c.JSON(res)
	}
}

// GET /api/in-entries/:id
func GetInEntryHandler(l store.Ledger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		e, err := l.GetInEntry(c.UserContext(), c.Params("id"))
		if errors.Is(err, store.ErrNotFound) {
			return fiber.NewError(fiber.StatusNotFound, "In entry not found")
		}
		if err != nil {
			return err
		}
		return c.JSON(inEntryResponse(c, l, e))
	}
}

// POST /api/in-entries
func CreateInEntryHandler(l store.Ledger, w *audit.Writer) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body InEntryRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
		}

		actorID, actorName := auth.Actor(c)
		e := models.InEntry{CreatedBy: actorID}
		if err := body.apply(c, l, &e); err != nil {
			return err
		}
		if err := l.CreateInEntry(c.UserContext(), &e); err != nil {
			return err
		}

		w.WriteLog(c.UserContext(), audit.LogOptions{
			UserID:      actorID,
			UserName:    actorName,
			EntityType:  "in_entry",
			EntityID:    e.ID,
			Action:      models.AuditActionCreate,
			Description: "In entry created for lot " + e.LotNo,
			After:       e,
		})
		return c.Status(fiber.StatusCreated).JSON(inEntryResponse(c, l, e))
	}
}

// PUT /api/in-entries/:id
// An edit may not leave the lot it is taken from with more withdrawn than
// received.
func UpdateInEntryHandler(l store.Ledger, w *audit.Writer) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body InEntryRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
		}

		e, err := l.GetInEntry(c.UserContext(), c.Params("id"))
		if errors.Is(err, store.ErrNotFound) {
			return fiber.NewError(fiber.StatusNotFound, "In entry not found")
		}
		if err != nil {
			return err
		}
		before := e
		if err := body.apply(c, l, &e); err != nil {
			return err
		}

		if err := checkLotCovered(c, l, before, e); err != nil {
			return err
		}
		if err := l.UpdateInEntry(c.UserContext(), &e); err != nil {
			return err
		}

		actorID, actorName := auth.Actor(c)
		w.WriteLog(c.UserContext(), audit.LogOptions{
			UserID:      actorID,
			UserName:    actorName,
			EntityType:  "in_entry",
			EntityID:    e.ID,
			Action:      models.AuditActionUpdate,
			Description: "In entry updated for lot " + e.LotNo,
			Before:      before,
			After:       e,
		})
		return c.JSON(inEntryResponse(c, l, e))
	}
}

// checkLotCovered recomputes the lot before moved from, with before
// replaced by after, and rejects the edit if withdrawals would exceed
// receipts.
func checkLotCovered(c *fiber.Ctx, l store.Ledger, before, after models.InEntry) error {
	lot, err := store.FindLot(c.UserContext(), l, before.CategoryID, before.LotNo)
	if err != nil {
		return err
	}
	in := make([]models.InEntry, 0, len(lot.InEntries))
	for _, e := range lot.InEntries {
		if e.ID == before.ID {
			continue
		}
		in = append(in, e)
	}
	if after.CategoryID == before.CategoryID && after.LotNo == before.LotNo {
		in = append(in, after)
	}

	var received, withdrawn decimal.Decimal
	for _, e := range in {
		received = received.Add(e.WeightInKg)
	}
	for _, e := range lot.ExEntries {
		withdrawn = withdrawn.Add(e.TakingWeightInKg)
	}
	if withdrawn.GreaterThan(received) {
		return fiber.NewError(fiber.StatusConflict, "Lot "+before.LotNo+" has more withdrawn than this edit would leave")
	}
	return nil
}
