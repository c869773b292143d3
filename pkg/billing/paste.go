package billing

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/samber/lo"

	"github.com/raterudder/fuelcast/pkg/types"
)

var (
	headerCell = regexp.MustCompile(`(?i)^(date|start|end|quantity|amount|usage|cost|price|gallons|therms|kwh)`)
	usDate     = regexp.MustCompile(`^(\d{1,2})[/\-.](\d{1,2})[/\-.](\d{2}|\d{4})$`)
	leadingNum = regexp.MustCompile(`^[-+]?(\d+\.?\d*|\.\d+)([eE][-+]?\d+)?`)
)

// fallbackDateLayouts are tried after ISO and US numeric dates.
var fallbackDateLayouts = []string{
	"Jan 2, 2006",
	"January 2, 2006",
	"2 Jan 2006",
	"2 January 2006",
	"2006/01/02",
}

// ParsePasted parses rows copied from a spreadsheet or a fuel company portal.
// Columns are tab separated. Delivery rows are Date, Quantity[, Price or
// Cost[, Cost]] and billing rows are Start, End, Quantity[, Cost]. Header
// rows and rows without a date or a positive quantity are skipped.
//
// The third delivery column is read as a unit price when it is less than the
// quantity and as the total cost otherwise, and the other value is derived
// from it.
func ParsePasted(text string, mode types.InputMode, unit string) []types.BillRecord {
	r := csv.NewReader(strings.NewReader(text))
	r.Comma = '\t'
	r.FieldsPerRecord = -1
	r.LazyQuotes = true

	bills := []types.BillRecord{}
	for {
		record, err := r.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		var parseErr *csv.ParseError
		if errors.As(err, &parseErr) {
			continue
		} else if err != nil {
			break
		}

		cols := lo.Map(record, func(c string, _ int) string {
			return strings.TrimSpace(c)
		})
		if lo.SomeBy(cols, headerCell.MatchString) {
			continue
		}

		var (
			bill types.BillRecord
			ok   bool
		)
		if mode == types.InputModeDelivery {
			bill, ok = pastedDelivery(cols)
		} else {
			bill, ok = pastedBill(cols)
		}
		if !ok {
			continue
		}
		bill.ID = uuid.NewString()
		bill.Unit = unit
		bills = append(bills, bill)
	}
	return bills
}

func column(cols []string, i int) string {
	if i < len(cols) {
		return cols[i]
	}
	return ""
}

func pastedDelivery(cols []string) (types.BillRecord, bool) {
	date, ok := parsePastedDate(column(cols, 0))
	if !ok {
		return types.BillRecord{}, false
	}
	quantity, ok := parsePastedNumber(column(cols, 1))
	if !ok || quantity <= 0 {
		return types.BillRecord{}, false
	}
	bill := types.BillRecord{
		StartDate: date,
		EndDate:   date,
		Quantity:  quantity,
	}

	if v, ok := parsePastedNumber(column(cols, 2)); ok && v > 0 {
		if v < quantity {
			bill.PricePerUnit = lo.ToPtr(v)
			bill.Cost = lo.ToPtr(multiply(v, quantity))
		} else {
			bill.Cost = lo.ToPtr(v)
			bill.PricePerUnit = lo.ToPtr(divide(v, quantity))
		}
	}
	if cost, ok := parsePastedNumber(column(cols, 3)); ok && cost > 0 {
		bill.Cost = lo.ToPtr(cost)
	}
	return bill, true
}

func pastedBill(cols []string) (types.BillRecord, bool) {
	start, ok := parsePastedDate(column(cols, 0))
	if !ok {
		return types.BillRecord{}, false
	}
	end, ok := parsePastedDate(column(cols, 1))
	if !ok {
		return types.BillRecord{}, false
	}
	quantity, ok := parsePastedNumber(column(cols, 2))
	if !ok || quantity <= 0 {
		return types.BillRecord{}, false
	}
	bill := types.BillRecord{
		StartDate: start,
		EndDate:   end,
		Quantity:  quantity,
	}
	if cost, ok := parsePastedNumber(column(cols, 3)); ok && cost > 0 {
		bill.Cost = lo.ToPtr(cost)
	}
	return bill, true
}

// parsePastedDate normalizes ISO, US M/D/YY(YY) and a few written formats to
// YYYY-MM-DD. Two digit years above 50 are in the 1900s.
func parsePastedDate(s string) (string, bool) {
	s = strings.TrimSpace(strings.NewReplacer(`'`, "", `"`, "", "$", "").Replace(s))
	if s == "" {
		return "", false
	}

	if m := usDate.FindStringSubmatch(s); m != nil {
		month, _ := strconv.Atoi(m[1])
		day, _ := strconv.Atoi(m[2])
		year, _ := strconv.Atoi(m[3])
		if len(m[3]) == 2 {
			if year > 50 {
				year += 1900
			} else {
				year += 2000
			}
		}
		s = fmt.Sprintf("%04d-%02d-%02d", year, month, day)
	}
	if t, err := types.ParseDate(s); err == nil {
		return types.FormatDate(t), true
	}

	for _, layout := range fallbackDateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return types.FormatDate(t), true
		}
	}
	return "", false
}

// parsePastedNumber reads the leading number of s after dropping currency
// symbols, thousands separators and quotes, so "$1,234.50" and "150 gal"
// both parse.
func parsePastedNumber(s string) (float64, bool) {
	s = strings.TrimSpace(strings.NewReplacer("$", "", ",", "", `'`, "", `"`, "").Replace(s))
	num := leadingNum.FindString(s)
	if num == "" {
		return 0, false
	}
	v, err := strconv.ParseFloat(num, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}
