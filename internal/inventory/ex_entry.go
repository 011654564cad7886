package inventory

import (
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"

	"yarn-backend/internal/audit"
	"yarn-backend/internal/auth"
	"yarn-backend/internal/models"
	"yarn-backend/internal/stock"
	"yarn-backend/internal/store"
)

type ExEntryRequest struct {
	EntryDate        string          `json:"entryDate"`
	CategoryID       string          `json:"categoryId"`
	LotNo            string          `json:"lotNo"`
	TakingWeightInKg decimal.Decimal `json:"takingWeightInKg"`
}

type ExEntryResponse struct {
	models.ExEntry
	CategoryName string `json:"categoryName"`
}

// GET /api/ex-entries?categoryId=&lotNo=&from=&to=
func ListExEntriesHandler(l store.Ledger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		f, err := entryFilter(c)
		if err != nil {
			return err
		}
		entries, err := l.ListExEntries(c.UserContext(), f)
		if err != nil {
			return err
		}
		n, err := loadNames(c, l)
		if err != nil {
			return err
		}

		res := make([]ExEntryResponse, 0, len(entries))
		for _, e := range entries {
			res = append(res, ExEntryResponse{ExEntry: e, CategoryName: n.categories[e.CategoryID]})
		}
		return c.JSON(res)
	}
}

// GET /api/ex-entries/:id
func GetExEntryHandler(l store.Ledger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		e, err := l.GetExEntry(c.UserContext(), c.Params("id"))
		if errors.Is(err, store.ErrNotFound) {
			return fiber.NewError(fiber.StatusNotFound, "Ex entry not found")
		}
		if err != nil {
			return err
		}
		res := ExEntryResponse{ExEntry: e}
		if cat, err := l.GetCategory(c.UserContext(), e.CategoryID); err == nil {
			res.CategoryName = cat.Name
		}
		return c.JSON(res)
	}
}

// POST /api/ex-entries
// The withdrawal is checked against the lot's availability as read at
// request time. Two concurrent withdrawals can both pass the check.
func CreateExEntryHandler(l store.Ledger, w *audit.Writer) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body ExEntryRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
		}

		entryDate, err := parseDate("entryDate", body.EntryDate)
		if err != nil {
			return err
		}
		lotNo := strings.TrimSpace(body.LotNo)
		if lotNo == "" {
			return fiber.NewError(fiber.StatusBadRequest, "lotNo is required")
		}
		if err := checkWeight("takingWeightInKg", body.TakingWeightInKg); err != nil {
			return err
		}
		cat, err := requireCategory(c, l, body.CategoryID)
		if err != nil {
			return err
		}

		entries, err := store.FindLot(c.UserContext(), l, cat.ID, lotNo)
		if err != nil {
			return err
		}
		lot, ok := stock.FindLot(entries.InEntries, entries.ExEntries, lotNo)
		if !ok {
			return fiber.NewError(fiber.StatusBadRequest, "Lot "+lotNo+" does not exist in "+cat.Name)
		}
		if body.TakingWeightInKg.GreaterThan(lot.AvailableWeight) {
			return fiber.NewError(fiber.StatusConflict,
				"Only "+lot.AvailableWeight.StringFixed(stock.WeightPlaces)+" kg available in lot "+lotNo)
		}

		actorID, actorName := auth.Actor(c)
		e := models.ExEntry{
			EntryDate:        entryDate,
			CategoryID:       cat.ID,
			LotNo:            lotNo,
			TakingWeightInKg: body.TakingWeightInKg,
			CreatedBy:        actorID,
		}
		if err := l.CreateExEntry(c.UserContext(), &e); err != nil {
			return err
		}

		w.WriteLog(c.UserContext(), audit.LogOptions{
			UserID:      actorID,
			UserName:    actorName,
			EntityType:  "ex_entry",
			EntityID:    e.ID,
			Action:      models.AuditActionCreate,
			Description: "Ex entry created for lot " + e.LotNo,
			After:       e,
		})
		return c.Status(fiber.StatusCreated).JSON(ExEntryResponse{ExEntry: e, CategoryName: cat.Name})
	}
}
