package handler

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"washtrack-backend/internal/domain"
	"washtrack-backend/internal/repository"
	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"
)

const ledgerListLimit = 100

type LedgerHandler struct {
	Repo repository.LedgerRepository
}

func (h LedgerHandler) RegisterRoutes(r chi.Router) {
	r.Get("/income", h.listKind(domain.LedgerIncome))
	r.Post("/income", h.createKind(domain.LedgerIncome))
	r.Patch("/income", h.update)
	r.Delete("/income", h.delete)

	r.Get("/expense", h.listKind(domain.LedgerExpense))
	r.Post("/expense", h.createKind(domain.LedgerExpense))
	r.Patch("/expense", h.update)
	r.Delete("/expense", h.delete)

	r.Get("/ledger/export", h.export)
}

func (h LedgerHandler) listKind(kind domain.LedgerKind) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		p := principal(w, r)
		if p == nil {
			return
		}
		branchID, err := resolveBranchID(r, p)
		if err != nil {
			writeError(w, http.StatusBadRequest, "branchId is required")
			return
		}
		items, err := h.Repo.List(r.Context(), branchID, kind, ledgerListLimit)
		if err != nil {
			writeServerError(w, err)
			return
		}
		resp := make([]map[string]any, 0, len(items))
		for _, e := range items {
			resp = append(resp, ledgerResponse(&e))
		}
		writeJSON(w, http.StatusOK, resp)
	}
}

func (h LedgerHandler) createKind(kind domain.LedgerKind) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		p := principal(w, r)
		if p == nil {
			return
		}
		branchID, err := resolveBranchID(r, p)
		if err != nil {
			writeError(w, http.StatusBadRequest, "branchId is required")
			return
		}

		var req struct {
			Title      string          `json:"title"`
			Amount     json.RawMessage `json:"amount"`
			CategoryID *int64          `json:"categoryId"`
			Date       string          `json:"date"`
			Note       string          `json:"note"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid payload")
			return
		}
		if req.Title == "" {
			writeError(w, http.StatusBadRequest, "title is required")
			return
		}
		amount, err := parseAmount(req.Amount)
		if err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		date := time.Now().UTC()
		if req.Date != "" {
			date, err = time.Parse(dateLayout, req.Date)
			if err != nil {
				writeError(w, http.StatusBadRequest, "invalid date")
				return
			}
		}

		entry, err := h.Repo.Create(r.Context(), repository.CreateLedgerInput{
			BranchID:   branchID,
			Kind:       kind,
			Title:      req.Title,
			Amount:     amount,
			CategoryID: req.CategoryID,
			Date:       date,
			Note:       req.Note,
			CreatedBy:  &p.UserID,
		})
		if err != nil {
			writeServerError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, ledgerResponse(entry))
	}
}

func (h LedgerHandler) update(w http.ResponseWriter, r *http.Request) {
	p := principal(w, r)
	if p == nil {
		return
	}
	branchID, err := resolveBranchID(r, p)
	if err != nil {
		writeError(w, http.StatusBadRequest, "branchId is required")
		return
	}
	id, err := parseIDQuery(r, "id")
	if err != nil {
		writeError(w, http.StatusBadRequest, "id is required")
		return
	}

	var req struct {
		Title      *string         `json:"title"`
		Amount     json.RawMessage `json:"amount"`
		CategoryID *int64          `json:"categoryId"`
		Date       *string         `json:"date"`
		Note       *string         `json:"note"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid payload")
		return
	}

	in := repository.UpdateLedgerInput{
		Title:      req.Title,
		CategoryID: req.CategoryID,
		Note:       req.Note,
	}
	if len(req.Amount) > 0 {
		amount, err := parseAmount(req.Amount)
		if err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		in.Amount = &amount
	}
	if req.Date != nil {
		date, err := time.Parse(dateLayout, *req.Date)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid date")
			return
		}
		in.Date = &date
	}

	entry, err := h.Repo.Update(r.Context(), id, branchID, in)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			writeError(w, http.StatusNotFound, "entry not found")
			return
		}
		writeServerError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, ledgerResponse(entry))
}

func (h LedgerHandler) delete(w http.ResponseWriter, r *http.Request) {
	p := principal(w, r)
	if p == nil {
		return
	}
	branchID, err := resolveBranchID(r, p)
	if err != nil {
		writeError(w, http.StatusBadRequest, "branchId is required")
		return
	}
	id, err := parseIDQuery(r, "id")
	if err != nil {
		writeError(w, http.StatusBadRequest, "id is required")
		return
	}
	if err := h.Repo.SoftDelete(r.Context(), id, branchID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			writeError(w, http.StatusNotFound, "entry not found")
			return
		}
		writeServerError(w, err)
		return
	}
	writeSuccess(w)
}

func (h LedgerHandler) export(w http.ResponseWriter, r *http.Request) {
	p := principal(w, r)
	if p == nil {
		return
	}
	branchID, err := resolveBranchID(r, p)
	if err != nil {
		writeError(w, http.StatusBadRequest, "branchId is required")
		return
	}
	kind := domain.LedgerKind(r.URL.Query().Get("kind"))
	if kind != domain.LedgerIncome && kind != domain.LedgerExpense {
		writeError(w, http.StatusBadRequest, "kind must be income or expense")
		return
	}
	format := r.URL.Query().Get("format")
	if format == "" {
		format = "csv"
	}

	items, err := h.Repo.List(r.Context(), branchID, kind, 2000)
	if err != nil {
		writeServerError(w, err)
		return
	}
	suffix := time.Now().Format("20060102_150405")

	switch format {
	case "csv":
		data, err := exportLedgerCSV(items)
		if err != nil {
			writeServerError(w, err)
			return
		}
		w.Header().Set("Content-Type", "text/csv; charset=utf-8")
		w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=\"%s_%s.csv\"", kind, suffix))
		_, _ = w.Write(data)
	case "xlsx", "excel":
		data, err := exportLedgerXLSX(items)
		if err != nil {
			writeServerError(w, err)
			return
		}
		w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
		w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=\"%s_%s.xlsx\"", kind, suffix))
		_, _ = w.Write(data)
	default:
		writeError(w, http.StatusBadRequest, "invalid format (use csv or xlsx)")
	}
}

func exportLedgerCSV(items []domain.LedgerEntry) ([]byte, error) {
	buf := new(bytes.Buffer)
	cw := csv.NewWriter(buf)
	_ = cw.Write([]string{"id", "title", "amount", "category", "date", "note"})
	for _, e := range items {
		_ = cw.Write([]string{
			fmt.Sprintf("%d", e.ID),
			e.Title,
			e.Amount.String(),
			e.Category,
			e.Date.Format(dateLayout),
			e.Note,
		})
	}
	cw.Flush()
	return buf.Bytes(), cw.Error()
}

func exportLedgerXLSX(items []domain.LedgerEntry) ([]byte, error) {
	f := excelize.NewFile()
	sheet := "Ledger"
	index, err := f.NewSheet(sheet)
	if err != nil {
		return nil, err
	}
	f.DeleteSheet("Sheet1")
	f.SetActiveSheet(index)

	header := []string{"ID", "Title", "Amount", "Category", "Date", "Note"}
	for c, v := range header {
		cell, _ := excelize.CoordinatesToCellName(c+1, 1)
		_ = f.SetCellValue(sheet, cell, v)
	}
	for i, e := range items {
		values := []any{e.ID, e.Title, e.Amount.String(), e.Category, e.Date.Format(dateLayout), e.Note}
		for c, v := range values {
			cell, _ := excelize.CoordinatesToCellName(c+1, i+2)
			_ = f.SetCellValue(sheet, cell, v)
		}
	}
	style, _ := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	_ = f.SetCellStyle(sheet, "A1", "F1", style)

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// parseAmount accepts a JSON number or numeric string and rejects anything
// that is not a non-negative decimal.
func parseAmount(raw json.RawMessage) (decimal.Decimal, error) {
	if len(raw) == 0 {
		return decimal.Zero, errors.New("amount is required")
	}
	s := string(bytes.Trim(bytes.TrimSpace(raw), `"`))
	amount, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, errors.New("amount must be numeric")
	}
	if amount.IsNegative() {
		return decimal.Zero, errors.New("amount must not be negative")
	}
	return amount, nil
}

func ledgerResponse(e *domain.LedgerEntry) map[string]any {
	return map[string]any{
		"id":         e.ID,
		"branchId":   e.BranchID,
		"kind":       string(e.Kind),
		"title":      e.Title,
		"amount":     e.Amount,
		"categoryId": e.CategoryID,
		"category":   e.Category,
		"date":       e.Date.Format(dateLayout),
		"note":       e.Note,
	}
}
