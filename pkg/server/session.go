package server

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"github.com/raterudder/fuelcast/pkg/billing"
	"github.com/raterudder/fuelcast/pkg/log"
	"github.com/raterudder/fuelcast/pkg/session"
	"github.com/raterudder/fuelcast/pkg/types"
)

type validateSessionResponse struct {
	Validation session.ValidationResult `json:"validation"`
	Session    *types.SessionState      `json:"session,omitempty"`
}

// handleValidateSession takes a previously exported session file as the raw
// body and returns the validation result along with the normalized session.
func (s *Server) handleValidateSession(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	raw, err := io.ReadAll(r.Body)
	if err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			writeJSONError(w, "request body too large", http.StatusRequestEntityTooLarge)
			return
		}
		log.Ctx(ctx).WarnContext(ctx, "failed to read session", slog.Any("error", err))
		writeJSONError(w, "invalid request body", http.StatusBadRequest)
		return
	}

	sess, validation := session.Validate(ctx, raw, s.now())
	writeJSON(w, validateSessionResponse{
		Validation: validation,
		Session:    sess,
	})
}

type exportSessionRequest struct {
	Session types.SessionState `json:"session"`
	Weather *types.WeatherData `json:"weather"`
}

func (s *Server) handleExportSession(w http.ResponseWriter, r *http.Request) {
	var req exportSessionRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	now := s.now()
	exported := session.Export(req.Session, req.Weather, now)

	zip := "unknown"
	if exported.Location != nil && exported.Location.ZipCode != "" {
		zip = exported.Location.ZipCode
	}
	w.Header().Set(
		"Content-Disposition",
		fmt.Sprintf(`attachment; filename="energy-analysis-%s-%s.json"`, zip, types.FormatDate(now)),
	)
	writeJSON(w, exported)
}

type billsCSVRequest struct {
	FuelSource types.FuelSource `json:"fuel_source"`
}

func (s *Server) handleBillsCSV(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req billsCSVRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	// render into a buffer so a failure can still produce an error response
	var buf bytes.Buffer
	if err := session.WriteBillsCSV(&buf, req.FuelSource); err != nil {
		log.Ctx(ctx).ErrorContext(ctx, "failed to write bills csv", slog.Any("error", err))
		writeJSONError(w, "internal server error", http.StatusInternalServerError)
		return
	}

	name := req.FuelSource.Label
	if name == "" {
		name = string(req.FuelSource.FuelType)
	}
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename=%q`, name+"-bills.csv"))
	if _, err := buf.WriteTo(w); err != nil {
		panic(http.ErrAbortHandler)
	}
}

type editBillRequest struct {
	Bill types.BillRecord `json:"bill"`
	Edit billing.Edit     `json:"edit"`
}

type editBillResponse struct {
	Bill              types.BillRecord `json:"bill"`
	PricingConsistent bool             `json:"pricing_consistent"`
}

func (s *Server) handleEditBill(w http.ResponseWriter, r *http.Request) {
	var req editBillRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	bill := billing.ApplyEdit(req.Bill, req.Edit)
	writeJSON(w, editBillResponse{
		Bill:              bill,
		PricingConsistent: billing.PricingConsistent(bill),
	})
}

type pasteBillsRequest struct {
	Text      string          `json:"text"`
	InputMode types.InputMode `json:"input_mode"`
	Unit      string          `json:"unit"`
}

type pasteBillsResponse struct {
	Bills []types.BillRecord `json:"bills"`
}

// handlePasteBills turns text pasted from a spreadsheet into bills. Rows that
// can't be read are skipped rather than failing the request.
func (s *Server) handlePasteBills(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req pasteBillsRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.InputMode == "" {
		req.InputMode = types.InputModeBilling
	}

	bills := billing.ParsePasted(req.Text, req.InputMode, req.Unit)
	log.Ctx(ctx).DebugContext(ctx, "parsed pasted bills", slog.Int("bills", len(bills)))
	writeJSON(w, pasteBillsResponse{Bills: bills})
}
