package billing

import (
	"testing"

	"github.com/google/uuid"
	"github.com/samber/lo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/raterudder/fuelcast/pkg/types"
)

// withoutIDs checks every bill got a UUID and clears it for comparison.
func withoutIDs(t *testing.T, bills []types.BillRecord) []types.BillRecord {
	t.Helper()
	return lo.Map(bills, func(b types.BillRecord, _ int) types.BillRecord {
		_, err := uuid.Parse(b.ID)
		assert.NoError(t, err, "bill id %q", b.ID)
		b.ID = ""
		return b
	})
}

func TestParsePasted(t *testing.T) {
	t.Run("Deliveries", func(t *testing.T) {
		text := "Date\tGallons\tPrice\n" +
			"1/5/2024\t150\t$3.49\n" +
			"02/20/24\t1,200\t$4,188.00\n"
		bills := withoutIDs(t, ParsePasted(text, types.InputModeDelivery, "gallon"))
		assert.Equal(t, []types.BillRecord{
			{
				StartDate:    "2024-01-05",
				EndDate:      "2024-01-05",
				Quantity:     150,
				Unit:         "gallon",
				Cost:         lo.ToPtr(523.5),
				PricePerUnit: lo.ToPtr(3.49),
			},
			{
				StartDate:    "2024-02-20",
				EndDate:      "2024-02-20",
				Quantity:     1200,
				Unit:         "gallon",
				Cost:         lo.ToPtr(4188.0),
				PricePerUnit: lo.ToPtr(3.49),
			},
		}, bills)
	})

	t.Run("Delivery Cost Column", func(t *testing.T) {
		bills := ParsePasted("2024-03-01\t100\t3.50\t$355.00", types.InputModeDelivery, "gallon")
		require.Len(t, bills, 1)
		assert.Equal(t, 3.5, *bills[0].PricePerUnit)
		assert.Equal(t, 355.0, *bills[0].Cost)
	})

	t.Run("Billing Periods", func(t *testing.T) {
		text := "Start\tEnd\tTherms\tCost\n" +
			"2024-01-01\t2024-02-01\t95\t$120.40\n" +
			"2/1/2024\t3/1/2024\t80\n"
		bills := withoutIDs(t, ParsePasted(text, types.InputModeBilling, "therm"))
		assert.Equal(t, []types.BillRecord{
			{StartDate: "2024-01-01", EndDate: "2024-02-01", Quantity: 95, Unit: "therm", Cost: lo.ToPtr(120.4)},
			{StartDate: "2024-02-01", EndDate: "2024-03-01", Quantity: 80, Unit: "therm"},
		}, bills)
	})

	t.Run("Two Digit Years", func(t *testing.T) {
		text := "3/1/99\t100\n3/1/50\t100\n3/1/51\t100\n"
		bills := ParsePasted(text, types.InputModeDelivery, "gallon")
		dates := lo.Map(bills, func(b types.BillRecord, _ int) string { return b.EndDate })
		assert.Equal(t, []string{"1999-03-01", "2050-03-01", "1951-03-01"}, dates)
	})

	t.Run("Written Dates", func(t *testing.T) {
		bills := ParsePasted("Dec 5, 2023\t120 gal", types.InputModeDelivery, "gallon")
		require.Len(t, bills, 1)
		assert.Equal(t, "2023-12-05", bills[0].EndDate)
		assert.Equal(t, 120.0, bills[0].Quantity)
	})

	t.Run("Unparseable Rows Dropped", func(t *testing.T) {
		text := "soon\t100\n" +
			"13/45/2024\t100\n" +
			"1/5/2024\tlots\n" +
			"1/6/2024\t0\n" +
			"1/7/2024\n" +
			"   \n" +
			"1/8/2024\t75\n"
		bills := ParsePasted(text, types.InputModeDelivery, "gallon")
		require.Len(t, bills, 1)
		assert.Equal(t, "2024-01-08", bills[0].EndDate)
		assert.Nil(t, bills[0].Cost)
		assert.Nil(t, bills[0].PricePerUnit)
	})

	t.Run("Billing Needs Both Dates", func(t *testing.T) {
		bills := ParsePasted("2024-01-01\t\t95", types.InputModeBilling, "therm")
		assert.Empty(t, bills)
	})

	t.Run("Empty", func(t *testing.T) {
		bills := ParsePasted("", types.InputModeBilling, "therm")
		assert.NotNil(t, bills)
		assert.Empty(t, bills)
	})
}
