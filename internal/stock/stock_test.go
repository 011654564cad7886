package stock

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"yarn-backend/internal/models"
)

func in(lot string, boxes int, weight string) models.InEntry {
	return models.InEntry{LotNo: lot, NoOfBoxes: boxes, WeightInKg: decimal.RequireFromString(weight)}
}

func ex(lot string, weight string) models.ExEntry {
	return models.ExEntry{LotNo: lot, TakingWeightInKg: decimal.RequireFromString(weight)}
}

func kg(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func TestComputeAvailableLotsPartialWithdrawal(t *testing.T) {
	lots := ComputeAvailableLots(
		[]models.InEntry{in("A", 10, "360")},
		[]models.ExEntry{ex("A", "100")},
	)

	require.Len(t, lots, 1)
	require.Equal(t, "A", lots[0].LotNo)
	require.Equal(t, int64(7), lots[0].AvailableBoxes)
	require.True(t, kg("260").Equal(lots[0].AvailableWeightInKg))
	require.Equal(t, "260.000", lots[0].AvailableWeightInKg.StringFixed(WeightPlaces))
}

func TestComputeAvailableLotsOverdrawnLotExcluded(t *testing.T) {
	in := []models.InEntry{in("B", 5, "100")}
	ex := []models.ExEntry{ex("B", "150")}

	require.Empty(t, ComputeAvailableLots(in, ex))

	l, ok := FindLot(in, ex, "B")
	require.True(t, ok)
	require.True(t, l.AvailableWeight.IsZero())
	require.Equal(t, int64(0), l.AvailableBoxes)
}

func TestComputeAvailableLotsNeverNegative(t *testing.T) {
	ins := []models.InEntry{in("A", 3, "30"), in("B", 2, "10.5"), in("C", 0, "7")}
	exs := []models.ExEntry{ex("A", "45"), ex("B", "10.5"), ex("C", "1")}

	for _, l := range SummarizeLots(ins, exs) {
		require.False(t, l.AvailableWeight.IsNegative(), l.LotNo)
		require.GreaterOrEqual(t, l.AvailableBoxes, int64(0), l.LotNo)
	}
	for _, l := range ComputeAvailableLots(ins, exs) {
		require.True(t, l.AvailableBoxes > 0 || l.AvailableWeightInKg.IsPositive(), l.LotNo)
	}
}

func TestComputeAvailableLotsIgnoresOrphanExEntries(t *testing.T) {
	ins := []models.InEntry{in("A", 4, "40")}
	withOrphan := ComputeAvailableLots(ins, []models.ExEntry{ex("Z", "500")})
	without := ComputeAvailableLots(ins, nil)

	require.Equal(t, without, withOrphan)
	require.Len(t, withOrphan, 1)
	require.Equal(t, "A", withOrphan[0].LotNo)
}

func TestComputeAvailableLotsSortedLexicographically(t *testing.T) {
	lots := ComputeAvailableLots(
		[]models.InEntry{in("LOT2", 1, "10"), in("LOT10", 1, "10"), in("LOT1", 1, "10")},
		nil,
	)

	got := make([]string, 0, len(lots))
	for _, l := range lots {
		got = append(got, l.LotNo)
	}
	require.Equal(t, []string{"LOT1", "LOT10", "LOT2"}, got)
}

func TestComputeAvailableLotsGroupsReceipts(t *testing.T) {
	lots := ComputeAvailableLots(
		[]models.InEntry{in("A", 10, "250.125"), in("A", 10, "249.875")},
		[]models.ExEntry{ex("A", "100.1"), ex("A", "0.9")},
	)

	require.Len(t, lots, 1)
	// 399 kg left of 500 kg over 20 boxes: 399 / 25 = 15.96
	require.Equal(t, int64(15), lots[0].AvailableBoxes)
	require.True(t, kg("399").Equal(lots[0].AvailableWeightInKg))
}

func TestComputeAvailableLotsWeightWithoutBoxes(t *testing.T) {
	// no box count recorded: the lot stays listed by weight alone
	lots := ComputeAvailableLots([]models.InEntry{in("LOOSE", 0, "12.5")}, nil)

	require.Len(t, lots, 1)
	require.Equal(t, int64(0), lots[0].AvailableBoxes)
	require.True(t, kg("12.5").Equal(lots[0].AvailableWeightInKg))
}

func TestComputeAvailableLotsRoundsToThreePlaces(t *testing.T) {
	lots := ComputeAvailableLots(
		[]models.InEntry{in("A", 1, "1.0004"), in("A", 1, "1.0001")},
		nil,
	)

	require.Len(t, lots, 1)
	require.Equal(t, "2.001", lots[0].AvailableWeightInKg.String())
}

func TestComputeAvailableLotsEmpty(t *testing.T) {
	require.Empty(t, ComputeAvailableLots(nil, nil))
	require.Empty(t, ComputeAvailableLots(nil, []models.ExEntry{ex("A", "1")}))
}

func TestComputeLotTotals(t *testing.T) {
	totals := ComputeLotTotals(
		[]models.InEntry{in("A", 10, "360"), in("B", 5, "100")},
		[]models.ExEntry{ex("A", "100"), ex("B", "150"), ex("ORPHAN", "20")},
	)

	require.True(t, kg("460").Equal(totals.TotalWeight))
	require.True(t, kg("250").Equal(totals.UsedWeight))
	// B is overdrawn and counts as zero, not -50
	require.True(t, kg("260").Equal(totals.AvailableWeight))
}

func TestFindLotMissing(t *testing.T) {
	_, ok := FindLot([]models.InEntry{in("A", 1, "1")}, nil, "B")
	require.False(t, ok)
}
