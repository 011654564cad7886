package inventory

import (
	"fmt"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/xuri/excelize/v2"

	"yarn-backend/internal/models"
	"yarn-backend/internal/stock"
	"yarn-backend/internal/store"
)

const summarySheet = "Summary"

// GET /api/reports/stock.xlsx
func StockReportHandler(l store.Ledger) fiber.Handler {
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

		f, err := BuildStockReport(cats, lots)
		if err != nil {
			return err
		}
		defer f.Close()

		buf, err := f.WriteToBuffer()
		if err != nil {
			return err
		}
		name := "stock_" + time.Now().Format("20060102") + ".xlsx"
		c.Set(fiber.HeaderContentType, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
		c.Set(fiber.HeaderContentDisposition, "attachment; filename="+name)
		return c.Send(buf.Bytes())
	}
}

// BuildStockReport writes a summary sheet with one row per category and a
// sheet per category listing its available lots.
func BuildStockReport(cats []models.YarnCategory, lots map[string]store.LotEntries) (*excelize.File, error) {
	f := excelize.NewFile()
	if err := f.SetSheetName("Sheet1", summarySheet); err != nil {
		return nil, err
	}
	headerStyle, err := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true},
		Alignment: &excelize.Alignment{Horizontal: "center"},
	})
	if err != nil {
		return nil, err
	}

	writeHeaders := func(sheet string, headers []string) error {
		for i, h := range headers {
			cell, _ := excelize.CoordinatesToCellName(i+1, 1)
			if err := f.SetCellValue(sheet, cell, h); err != nil {
				return err
			}
		}
		last, _ := excelize.CoordinatesToCellName(len(headers), 1)
		if err := f.SetCellStyle(sheet, "A1", last, headerStyle); err != nil {
			return err
		}
		return f.SetPanes(sheet, &excelize.Panes{Freeze: true, Split: true, YSplit: 1, TopLeftCell: "A2", ActivePane: "bottomLeft"})
	}

	if err := writeHeaders(summarySheet, []string{"Category", "Total (kg)", "Used (kg)", "Available (kg)", "Available lots"}); err != nil {
		return nil, err
	}

	used := map[string]bool{strings.ToLower(summarySheet): true}
	for i, cat := range cats {
		entries := lots[cat.ID]
		totals := stock.ComputeLotTotals(entries.InEntries, entries.ExEntries)
		available := stock.ComputeAvailableLots(entries.InEntries, entries.ExEntries)

		row := i + 2
		values := []any{
			cat.Name,
			totals.TotalWeight.InexactFloat64(),
			totals.UsedWeight.InexactFloat64(),
			totals.AvailableWeight.InexactFloat64(),
			len(available),
		}
		for col, v := range values {
			cell, _ := excelize.CoordinatesToCellName(col+1, row)
			if err := f.SetCellValue(summarySheet, cell, v); err != nil {
				return nil, err
			}
		}

		sheet := sheetName(cat.Name, used)
		if _, err := f.NewSheet(sheet); err != nil {
			return nil, err
		}
		if err := writeHeaders(sheet, []string{"Lot No", "Available boxes", "Available (kg)"}); err != nil {
			return nil, err
		}
		for j, lot := range available {
			r := j + 2
			if err := f.SetSheetRow(sheet, fmt.Sprintf("A%d", r), &[]any{
				lot.LotNo, lot.AvailableBoxes, lot.AvailableWeightInKg.InexactFloat64(),
			}); err != nil {
				return nil, err
			}
		}
	}

	f.SetActiveSheet(0)
	return f, nil
}

// sheetName turns a category name into a unique valid worksheet name.
func sheetName(name string, used map[string]bool) string {
	clean := strings.Map(func(r rune) rune {
		if strings.ContainsRune(`[]:*?/\`, r) {
			return '_'
		}
		return r
	}, strings.Trim(strings.TrimSpace(name), "'"))
	if clean == "" {
		clean = "Category"
	}
	if r := []rune(clean); len(r) > 28 {
		clean = string(r[:28])
	}

	candidate := clean
	for n := 2; used[strings.ToLower(candidate)]; n++ {
		candidate = fmt.Sprintf("%s~%d", clean, n)
	}
	used[strings.ToLower(candidate)] = true
	return candidate
}
