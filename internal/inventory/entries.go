package inventory

import (
	"errors"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"

	"yarn-backend/internal/models"
	"yarn-backend/internal/stock"
	"yarn-backend/internal/store"
)

const dateLayout = "2006-01-02"

// parseDate accepts a plain date or a full RFC 3339 timestamp.
func parseDate(field, s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, fiber.NewError(fiber.StatusBadRequest, field+" is required")
	}
	if d, err := time.Parse(dateLayout, s); err == nil {
		return d, nil
	}
	if d, err := time.Parse(time.RFC3339, s); err == nil {
		return d.UTC(), nil
	}
	return time.Time{}, fiber.NewError(fiber.StatusBadRequest, field+" must be a date (YYYY-MM-DD)")
}

// checkWeight rejects negative weights and weights finer than grams.
func checkWeight(field string, w decimal.Decimal) error {
	if w.IsNegative() {
		return fiber.NewError(fiber.StatusBadRequest, field+" cannot be negative")
	}
	if models.FractionDigits(w) > stock.WeightPlaces {
		return fiber.NewError(fiber.StatusBadRequest, field+" can have at most 3 decimals")
	}
	return nil
}

// entryFilter reads ?categoryId=&lotNo=&from=&to= from the query string.
// to is inclusive.
func entryFilter(c *fiber.Ctx) (store.EntryFilter, error) {
	f := store.EntryFilter{
		CategoryID: c.Query("categoryId"),
		LotNo:      strings.TrimSpace(c.Query("lotNo")),
	}
	if s := c.Query("from"); s != "" {
		d, err := time.Parse(dateLayout, s)
		if err != nil {
			return f, fiber.NewError(fiber.StatusBadRequest, "from must be YYYY-MM-DD")
		}
		f.From = d
	}
	if s := c.Query("to"); s != "" {
		d, err := time.Parse(dateLayout, s)
		if err != nil {
			return f, fiber.NewError(fiber.StatusBadRequest, "to must be YYYY-MM-DD")
		}
		f.To = d.AddDate(0, 0, 1)
	}
	return f, nil
}

func requireCategory(c *fiber.Ctx, l store.Ledger, id string) (models.YarnCategory, error) {
	if id == "" {
		return models.YarnCategory{}, fiber.NewError(fiber.StatusBadRequest, "categoryId is required")
	}
	cat, err := l.GetCategory(c.UserContext(), id)
	if errors.Is(err, store.ErrNotFound) {
		return cat, fiber.NewError(fiber.StatusBadRequest, "Category does not exist")
	}
	return cat, err
}

func requireParty(c *fiber.Ctx, l store.Ledger, id string) (models.Party, error) {
	if id == "" {
		return models.Party{}, fiber.NewError(fiber.StatusBadRequest, "partyId is required")
	}
	p, err := l.GetParty(c.UserContext(), id)
	if errors.Is(err, store.ErrNotFound) {
		return p, fiber.NewError(fiber.StatusBadRequest, "Party does not exist")
	}
	return p, err
}

// names resolves category and party ids to names for listings.
type names struct {
	categories map[string]string
	parties    map[string]string
}

func loadNames(c *fiber.Ctx, l store.Ledger) (names, error) {
	cats, err := l.ListCategories(c.UserContext())
	if err != nil {
		return names{}, err
	}
	parties, err := l.ListParties(c.UserContext())
	if err != nil {
		return names{}, err
	}
	n := names{
		categories: make(map[string]string, len(cats)),
		parties:    make(map[string]string, len(parties)),
	}
	for _, cat := range cats {
		n.categories[cat.ID] = cat.Name
	}
	for _, p := range parties {
		n.parties[p.ID] = p.Name
	}
	return n, nil
}
