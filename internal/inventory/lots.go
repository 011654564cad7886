package inventory

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"yarn-backend/internal/stock"
	"yarn-backend/internal/store"
)

// GET /api/categories/:id/lots
// Lots of the category with stock left, as offered when booking an ex entry.
func AvailableLotsHandler(l store.Ledger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		cat, err := l.GetCategory(c.UserContext(), c.Params("id"))
		if errors.Is(err, store.ErrNotFound) {
			return fiber.NewError(fiber.StatusNotFound, "Category not found")
		}
		if err != nil {
			return err
		}
		entries, err := store.FindLot(c.UserContext(), l, cat.ID, "")
		if err != nil {
			return err
		}
		return c.JSON(stock.ComputeAvailableLots(entries.InEntries, entries.ExEntries))
	}
}
