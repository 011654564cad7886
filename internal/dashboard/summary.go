package dashboard

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"

	"yarn-backend/internal/models"
	"yarn-backend/internal/stock"
	"yarn-backend/internal/store"
)

type CategorySummary struct {
	CategoryID      string          `json:"categoryId"`
	CategoryName    string          `json:"categoryName"`
	NoOfCones       int             `json:"noOfCones"`
	WeightPerBox    decimal.Decimal `json:"weightPerBox"`
	TotalWeight     decimal.Decimal `json:"totalWeight"`
	UsedWeight      decimal.Decimal `json:"usedWeight"`
	AvailableWeight decimal.Decimal `json:"availableWeight"`
	AvailableLots   int             `json:"availableLots"`
}

type DashboardResponse struct {
	Categories  []CategorySummary `json:"categories"`
	GrandTotals stock.Totals      `json:"grandTotals"`
}

type CategoryLotsResponse struct {
	Category models.YarnCategory `json:"category"`
	Lots     []stock.Lot         `json:"lots"`
	Totals   stock.Totals        `json:"totals"`
}

type LotDetailResponse struct {
	CategoryID   string           `json:"categoryId"`
	CategoryName string           `json:"categoryName"`
	Lot          stock.Lot        `json:"lot"`
	InEntries    []models.InEntry `json:"inEntries"`
	ExEntries    []models.ExEntry `json:"exEntries"`
}

// Summarize computes one summary per category. Each category's entries are
// aggregated on their own; grand totals add the category totals.
func Summarize(cats []models.YarnCategory, lots map[string]store.LotEntries) DashboardResponse {
	res := DashboardResponse{Categories: make([]CategorySummary, 0, len(cats))}
	for _, cat := range cats {
		entries := lots[cat.ID]
		t := stock.ComputeLotTotals(entries.InEntries, entries.ExEntries)
		res.Categories = append(res.Categories, CategorySummary{
			CategoryID:      cat.ID,
			CategoryName:    cat.Name,
			NoOfCones:       cat.NoOfCones,
			WeightPerBox:    cat.WeightPerBox,
			TotalWeight:     t.TotalWeight,
			UsedWeight:      t.UsedWeight,
			AvailableWeight: t.AvailableWeight,
			AvailableLots:   len(stock.ComputeAvailableLots(entries.InEntries, entries.ExEntries)),
		})
		res.GrandTotals.TotalWeight = res.GrandTotals.TotalWeight.Add(t.TotalWeight)
		res.GrandTotals.UsedWeight = res.GrandTotals.UsedWeight.Add(t.UsedWeight)
		res.GrandTotals.AvailableWeight = res.GrandTotals.AvailableWeight.Add(t.AvailableWeight)
	}
	return res
}

// GET /api/dashboard
func DashboardHandler(l store.Ledger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		cats, err := l.ListCategories(c.UserContext())
		if err != nil {
			return err
		}
		lots := make(map[string]store.LotEntries, len(cats))
		for _, cat := range cats {
			entries, err := store.FindLot(c.UserContext(), l, cat.ID, "")
			if err != nil {
				return err
			}
			lots[cat.ID] = entries
		}
		return c.JSON(Summarize(cats, lots))
	}
}

func loadCategory(c *fiber.Ctx, l store.Ledger, id string) (models.YarnCategory, error) {
	if id == "" {
		return models.YarnCategory{}, fiber.NewError(fiber.StatusBadRequest, "categoryId is required")
	}
	cat, err := l.GetCategory(c.UserContext(), id)
	if errors.Is(err, store.ErrNotFound) {
		return cat, fiber.NewError(fiber.StatusNotFound, "Category not found")
	}
	return cat, err
}

// GET /api/dashboard/categories/:id
// Every lot of the category, exhausted ones included.
func CategoryLotsHandler(l store.Ledger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		cat, err := loadCategory(c, l, c.Params("id"))
		if err != nil {
			return err
		}
		entries, err := store.FindLot(c.UserContext(), l, cat.ID, "")
		if err != nil {
			return err
		}
		return c.JSON(CategoryLotsResponse{
			Category: cat,
			Lots:     stock.SummarizeLots(entries.InEntries, entries.ExEntries),
			Totals:   stock.ComputeLotTotals(entries.InEntries, entries.ExEntries),
		})
	}
}

// GET /api/dashboard/lots/:lotNo?categoryId=
func LotDetailHandler(l store.Ledger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		cat, err := loadCategory(c, l, c.Query("categoryId"))
		if err != nil {
			return err
		}
		lotNo := c.Params("lotNo")
		entries, err := store.FindLot(c.UserContext(), l, cat.ID, lotNo)
		if err != nil {
			return err
		}
		lot, ok := stock.FindLot(entries.InEntries, entries.ExEntries, lotNo)
		if !ok {
			return fiber.NewError(fiber.StatusNotFound, "Lot not found")
		}
		return c.JSON(LotDetailResponse{
			CategoryID:   cat.ID,
			CategoryName: cat.Name,
			Lot:          lot,
			InEntries:    entries.InEntries,
			ExEntries:    entries.ExEntries,
		})
	}
}
