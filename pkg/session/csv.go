package session

import (
	"fmt"
	"io"
	"strconv"

	"github.com/gocarina/gocsv"

	"github.com/raterudder/fuelcast/pkg/types"
)

type deliveryRow struct {
	Date         string `csv:"Date"`
	Quantity     string `csv:"Quantity"`
	Unit         string `csv:"Unit"`
	PricePerUnit string `csv:"Price Per Unit"`
	Cost         string `csv:"Total Cost"`
}

type billingRow struct {
	StartDate string `csv:"Start Date"`
	EndDate   string `csv:"End Date"`
	Quantity  string `csv:"Quantity"`
	Unit      string `csv:"Unit"`
	Cost      string `csv:"Cost"`
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func formatOptional(v *float64) string {
	if v == nil {
		return ""
	}
	return formatFloat(*v)
}

// WriteBillsCSV writes the bills of fs to w, one row per bill. Delivery
// sources get a single date column and a unit price while billing sources get
// the billing period.
func WriteBillsCSV(w io.Writer, fs types.FuelSource) error {
	var err error
	if fs.InputMode == types.InputModeDelivery {
		rows := make([]*deliveryRow, 0, len(fs.Bills))
		for _, b := range fs.Bills {
			rows = append(rows, &deliveryRow{
				Date:         b.EndDate,
				Quantity:     formatFloat(b.Quantity),
				Unit:         b.Unit,
				PricePerUnit: formatOptional(b.PricePerUnit),
				Cost:         formatOptional(b.Cost),
			})
		}
		err = gocsv.Marshal(rows, w)
	} else {
		rows := make([]*billingRow, 0, len(fs.Bills))
		for _, b := range fs.Bills {
			rows = append(rows, &billingRow{
				StartDate: b.StartDate,
				EndDate:   b.EndDate,
				Quantity:  formatFloat(b.Quantity),
				Unit:      b.Unit,
				Cost:      formatOptional(b.Cost),
			})
		}
		err = gocsv.Marshal(rows, w)
	}
	if err != nil {
		return fmt.Errorf("failed to write bills for %s: %w", fs.ID, err)
	}
	return nil
}
