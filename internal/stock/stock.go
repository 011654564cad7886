// Package stock derives lot availability from the in/ex entry ledger.
//
// Boxes are not tracked as they are withdrawn. The available box count is
// approximated from the remaining weight and the average box weight of the
// lot, so it must not be read as an exact count.
package stock

import (
	"sort"

	"github.com/shopspring/decimal"

	"yarn-backend/internal/models"
)

// WeightPlaces is the number of fractional digits weights are kept to.
const WeightPlaces = 3

// AvailableLot is a lot that still has stock to withdraw.
type AvailableLot struct {
	LotNo               string          `json:"lotNo"`
	AvailableBoxes      int64           `json:"availableBoxes"`
	AvailableWeightInKg decimal.Decimal `json:"availableWeightInKg"`
}

// Lot holds the computed figures of one lot, exhausted or not.
type Lot struct {
	LotNo           string          `json:"lotNo"`
	TotalBoxes      int64           `json:"totalBoxes"`
	TotalWeight     decimal.Decimal `json:"totalWeight"`
	UsedWeight      decimal.Decimal `json:"usedWeight"`
	AvailableWeight decimal.Decimal `json:"availableWeight"`
	AvailableBoxes  int64           `json:"availableBoxes"`
}

// Exhausted reports whether nothing is left to withdraw from the lot.
func (l Lot) Exhausted() bool {
	return l.AvailableBoxes <= 0 && !l.AvailableWeight.IsPositive()
}

// Totals summarizes all lots of a category.
type Totals struct {
	TotalWeight     decimal.Decimal `json:"totalWeight"`
	UsedWeight      decimal.Decimal `json:"usedWeight"`
	AvailableWeight decimal.Decimal `json:"availableWeight"`
}

// SummarizeLots groups the entries by lot number and computes every lot
// that has at least one in-entry, sorted by lot number. The caller passes
// entries of a single category. Ex-entries for a lot number with no
// in-entry are ignored.
func SummarizeLots(inEntries []models.InEntry, exEntries []models.ExEntry) []Lot {
	byLot := make(map[string]*Lot)
	for _, e := range inEntries {
		l, ok := byLot[e.LotNo]
		if !ok {
			l = &Lot{LotNo: e.LotNo}
			byLot[e.LotNo] = l
		}
		l.TotalBoxes += int64(e.NoOfBoxes)
		l.TotalWeight = l.TotalWeight.Add(e.WeightInKg)
	}

	for _, e := range exEntries {
		l, ok := byLot[e.LotNo]
		if !ok {
			continue
		}
		l.UsedWeight = l.UsedWeight.Add(e.TakingWeightInKg)
	}

	lots := make([]Lot, 0, len(byLot))
	for _, l := range byLot {
		l.AvailableWeight = availableWeight(l.TotalWeight, l.UsedWeight)
		l.AvailableBoxes = availableBoxes(l.TotalBoxes, l.TotalWeight, l.AvailableWeight)
		lots = append(lots, *l)
	}
	sort.Slice(lots, func(i, j int) bool { return lots[i].LotNo < lots[j].LotNo })
	return lots
}

// ComputeAvailableLots returns the lots that can still be withdrawn from,
// sorted by lot number (plain string order, so "LOT10" precedes "LOT2").
func ComputeAvailableLots(inEntries []models.InEntry, exEntries []models.ExEntry) []AvailableLot {
	lots := SummarizeLots(inEntries, exEntries)
	res := make([]AvailableLot, 0, len(lots))
	for _, l := range lots {
		if l.Exhausted() {
			continue
		}
		res = append(res, AvailableLot{
			LotNo:               l.LotNo,
			AvailableBoxes:      l.AvailableBoxes,
			AvailableWeightInKg: l.AvailableWeight,
		})
	}
	return res
}

// ComputeLotTotals sums every lot of a category, exhausted lots included.
func ComputeLotTotals(inEntries []models.InEntry, exEntries []models.ExEntry) Totals {
	t := Totals{}
	for _, l := range SummarizeLots(inEntries, exEntries) {
		t.TotalWeight = t.TotalWeight.Add(l.TotalWeight)
		t.UsedWeight = t.UsedWeight.Add(l.UsedWeight)
		t.AvailableWeight = t.AvailableWeight.Add(l.AvailableWeight)
	}
	t.TotalWeight = t.TotalWeight.Round(WeightPlaces)
	t.UsedWeight = t.UsedWeight.Round(WeightPlaces)
	t.AvailableWeight = t.AvailableWeight.Round(WeightPlaces)
	return t
}

// FindLot returns the figures of a single lot, or false when the lot has no
// in-entry.
func FindLot(inEntries []models.InEntry, exEntries []models.ExEntry, lotNo string) (Lot, bool) {
	for _, l := range SummarizeLots(inEntries, exEntries) {
		if l.LotNo == lotNo {
			return l, true
		}
	}
	return Lot{}, false
}

func availableWeight(total, used decimal.Decimal) decimal.Decimal {
	w := total.Sub(used)
	if w.IsNegative() {
		return decimal.Zero
	}
	return w.Round(WeightPlaces)
}

// availableBoxes is floor(available / (total / boxes)), computed as
// floor(available * boxes / total) to keep the division single.
func availableBoxes(totalBoxes int64, totalWeight, available decimal.Decimal) int64 {
	if totalBoxes <= 0 || !totalWeight.IsPositive() {
		return 0
	}
	boxes := available.Mul(decimal.NewFromInt(totalBoxes)).Div(totalWeight).Floor()
	if boxes.IsNegative() {
		return 0
	}
	return boxes.IntPart()
}
