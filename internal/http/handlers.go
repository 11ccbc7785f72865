package http

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"cashflow/internal/core"
	"cashflow/internal/csvio"
	applog "cashflow/internal/log"
)

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	if s.templates == nil {
		http.Error(w, "templates not loaded", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := s.templates.ExecuteTemplate(w, "index.html", nil); err != nil {
		s.logger.ErrorContext(r.Context(), "render index", applog.FieldError, err)
	}
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status":    "ok",
		"timestamp": time.Now().Format(time.RFC3339),
	})
}

// dayView is one calendar cell with its scheduled entries.
type dayView struct {
	Date         core.Date          `json:"date"`
	Key          string             `json:"key"`
	Transactions []core.Transaction `json:"transactions"`
}

// stateView is the full rendering contract handed to the presentation layer.
type stateView struct {
	Templates    []core.Template    `json:"templates"`
	Transactions []core.Transaction `json:"transactions"`
	Opening      core.Money         `json:"openingBalance"`
	Closing      core.Money         `json:"closingBalance"`
	Start        core.Date          `json:"startDate"`
	End          core.Date          `json:"endDate"`
	SaveProgress bool               `json:"saveProgress"`
	Weekdays     []string           `json:"weekdays"`
	Weeks        [][]*dayView       `json:"weeks"`
}

func (s *Server) stateView() stateView {
	snap := s.store.Snapshot()
	buckets := s.store.VisibleBuckets()

	grid := core.BuildGrid(snap.Start, snap.End)
	weeks := make([][]*dayView, len(grid))
	for i, week := range grid {
		row := make([]*dayView, len(week))
		for j, cell := range week {
			if cell == nil {
				continue
			}
			txs := buckets[cell.Key]
			if txs == nil {
				txs = []core.Transaction{}
			}
			row[j] = &dayView{Date: cell.Date, Key: cell.Key, Transactions: txs}
		}
		weeks[i] = row
	}

	return stateView{
		Templates:    snap.Templates,
		Transactions: snap.Transactions,
		Opening:      snap.Opening,
		Closing:      core.ClosingBalance(snap.Opening, snap.Transactions),
		Start:        snap.Start,
		End:          snap.End,
		SaveProgress: snap.SaveProgress,
		Weekdays:     core.Weekdays,
		Weeks:        weeks,
	}
}

func (s *Server) handleState(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.stateView())
}

// templateRequest carries chip form fields; the amount arrives as the raw
// decimal string the user typed.
type templateRequest struct {
	Name   string `json:"name"`
	Amount string `json:"amount"`
	Color  string `json:"color"`
}

func (s *Server) handleAddTemplate(w http.ResponseWriter, r *http.Request) {
	var req templateRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	amount, err := core.ParseCents(req.Amount)
	if err != nil {
		s.rejected(w, applog.OpAddTemplate, err)
		return
	}

	tpl, err := s.store.AddTemplate(req.Name, core.Money{Cents: amount}, req.Color)
	if err != nil {
		s.rejected(w, applog.OpAddTemplate, err)
		return
	}
	s.publish(r.Context(), applog.OpAddTemplate, tpl.ID)
	writeJSON(w, http.StatusCreated, tpl)
}

func (s *Server) handleUpdateTemplate(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	var req templateRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	amount, err := core.ParseCents(req.Amount)
	if err != nil {
		s.rejected(w, applog.OpUpdateTemplate, err)
		return
	}

	tpl, err := s.store.UpdateTemplate(id, core.Template{
		Name:   req.Name,
		Amount: core.Money{Cents: amount},
		Color:  req.Color,
	})
	if err != nil {
		s.rejected(w, applog.OpUpdateTemplate, err)
		return
	}
	s.publish(r.Context(), applog.OpUpdateTemplate, tpl.ID)
	writeJSON(w, http.StatusOK, tpl)
}

func (s *Server) handleRemoveTemplate(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := s.store.RemoveTemplate(id); err != nil {
		// Nothing matched: nothing to do.
		w.WriteHeader(http.StatusNoContent)
		return
	}
	s.publish(r.Context(), applog.OpRemoveTemplate, id)
	w.WriteHeader(http.StatusNoContent)
}

// transactionRequest is the drop payload: a transaction-shaped object plus
// the target day.
type transactionRequest struct {
	Date   string `json:"date"`
	Name   string `json:"name"`
	Amount string `json:"amount"`
	Color  string `json:"color"`
}

func (s *Server) handleAddTransaction(w http.ResponseWriter, r *http.Request) {
	var req transactionRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	date, err := parseDate(req.Date)
	if err != nil {
		s.rejected(w, applog.OpAddTransaction, core.ErrInvalidDate)
		return
	}
	amount, err := core.ParseCents(req.Amount)
	if err != nil {
		s.rejected(w, applog.OpAddTransaction, err)
		return
	}

	tx, err := s.store.AddTransaction(date, core.Transaction{
		Name:   req.Name,
		Amount: core.Money{Cents: amount},
		Color:  req.Color,
	})
	if err != nil {
		s.rejected(w, applog.OpAddTransaction, err)
		return
	}
	s.publish(r.Context(), applog.OpAddTransaction, tx.ID)
	writeJSON(w, http.StatusCreated, tx)
}

func (s *Server) handleUpdateTransaction(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	var req transactionRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	fields := core.Transaction{Name: req.Name, Color: req.Color}
	if req.Amount != "" {
		amount, err := core.ParseCents(req.Amount)
		if err != nil {
			s.rejected(w, applog.OpUpdateTransaction, err)
			return
		}
		fields.Amount = core.Money{Cents: amount}
	}

	tx, err := s.store.UpdateTransaction(id, fields)
	if err != nil {
		s.rejected(w, applog.OpUpdateTransaction, err)
		return
	}
	s.publish(r.Context(), applog.OpUpdateTransaction, tx.ID)
	writeJSON(w, http.StatusOK, tx)
}

func (s *Server) handleRemoveTransaction(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := s.store.RemoveTransaction(id); err != nil {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	s.publish(r.Context(), applog.OpRemoveTransaction, id)
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleMoveTransaction(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	var req struct {
		Date string `json:"date"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}
	date, err := parseDate(req.Date)
	if err != nil {
		s.rejected(w, applog.OpMoveTransaction, core.ErrInvalidDate)
		return
	}

	tx, err := s.store.MoveTransaction(id, date)
	if err != nil {
		s.rejected(w, applog.OpMoveTransaction, err)
		return
	}
	s.publish(r.Context(), applog.OpMoveTransaction, tx.ID)
	writeJSON(w, http.StatusOK, tx)
}

func (s *Server) handleSetOpening(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Amount string `json:"amount"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}
	cents, err := core.ParseCents(req.Amount)
	if err != nil {
		s.rejected(w, applog.OpSetOpening, err)
		return
	}

	s.store.SetOpening(core.Money{Cents: cents})
	s.publish(r.Context(), applog.OpSetOpening, "")
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleSetRange(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Start string `json:"start"`
		End   string `json:"end"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}
	start, err := parseDate(req.Start)
	if err != nil {
		s.rejected(w, applog.OpSetRange, core.ErrInvalidDate)
		return
	}
	end, err := parseDate(req.End)
	if err != nil {
		s.rejected(w, applog.OpSetRange, core.ErrInvalidDate)
		return
	}

	if err := s.store.SetRange(start, end); err != nil {
		s.rejected(w, applog.OpSetRange, err)
		return
	}
	s.publish(r.Context(), applog.OpSetRange, "")
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleSaveProgress(w http.ResponseWriter, r *http.Request) {
	var req struct {
		On bool `json:"on"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}

	s.store.SetSaveProgress(req.On)
	if s.adapter != nil {
		if err := s.adapter.SetSaveProgress(r.Context(), req.On); err != nil {
			s.logger.ErrorContext(r.Context(), "persist toggle failed", applog.FieldError, err)
		}
		if req.On {
			if err := s.adapter.Save(r.Context(), s.store.Snapshot()); err != nil {
				s.logger.ErrorContext(r.Context(), "initial save failed", applog.FieldError, err)
			}
		}
	}
	s.publish(r.Context(), applog.OpSetSaveProgress, "")
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleReset(w http.ResponseWriter, r *http.Request) {
	s.store.ResetToDefaults()
	s.publish(r.Context(), applog.OpReset, "")
	writeJSON(w, http.StatusOK, s.stateView())
}

// handleImport applies a full-state replace from the uploaded CSV; there is
// no merge with the pre-existing state.
func (s *Server) handleImport(w http.ResponseWriter, r *http.Request) {
	doc, err := csvio.Decode(http.MaxBytesReader(w, r.Body, 1<<20))
	if err != nil {
		s.rejected(w, applog.OpImport, err)
		return
	}

	s.store.Replace(doc.Transactions, doc.Opening, doc.Start, doc.End)
	importsTotal.Inc()
	s.publish(r.Context(), applog.OpImport, "")
	s.logger.InfoContext(r.Context(), "csv imported", applog.FieldRows, len(doc.Transactions))
	writeJSON(w, http.StatusOK, s.stateView())
}

func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	snap := s.store.Snapshot()

	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="`+csvio.Filename+`"`)
	if err := csvio.Encode(w, snap.Transactions, snap.Opening, snap.Start, snap.End); err != nil {
		s.logger.ErrorContext(r.Context(), "csv export failed", applog.FieldError, err)
		return
	}
	exportsTotal.Inc()
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
