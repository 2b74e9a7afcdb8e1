package web

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/jhenrym/famlife/internal/storage"
)

const maxRequestBodySize = 1 << 20 // 1MB

type commandRequest struct {
	Message string `json:"message"`
}

// handleCommand runs a free-text message through the parser and dispatcher.
func (s *Server) handleCommand(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxRequestBodySize)
	var req commandRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpError(w, http.StatusBadRequest, "invalid_request_error", "invalid request body: %v", err)
		return
	}
	if req.Message == "" {
		httpError(w, http.StatusBadRequest, "invalid_request_error", "message is required")
		return
	}

	cmd, res, err := s.dispatcher.Process(req.Message, time.Now())
	if err != nil {
		s.logger.Error("dispatching command", zap.Error(err), zap.String("message", req.Message))
		httpError(w, http.StatusInternalServerError, "api_error", "failed to process command: %v", err)
		return
	}

	writeJSON(w, map[string]any{"parsed": cmd, "result": res})
}

type addRequest struct {
	Type string          `json:"type"` // "task", "grocery", or "appointment"
	Data json.RawMessage `json:"data"`
}

func (s *Server) handleAdd(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxRequestBodySize)
	var req addRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpError(w, http.StatusBadRequest, "invalid_request_error", "invalid request body: %v", err)
		return
	}

	switch req.Type {
	case "grocery":
		var g storage.GroceryItem
		if err := json.Unmarshal(req.Data, &g); err != nil {
			httpError(w, http.StatusBadRequest, "invalid_request_error", "invalid grocery data: %v", err)
			return
		}
		created, err := s.store.CreateGrocery(g.Item, g.Category, g.Quantity)
		if err != nil {
			httpError(w, http.StatusInternalServerError, "api_error", "failed to add grocery: %v", err)
			return
		}
		writeJSON(w, map[string]any{"success": true, "result": created})

	case "task":
		var t storage.Task
		if err := json.Unmarshal(req.Data, &t); err != nil {
			httpError(w, http.StatusBadRequest, "invalid_request_error", "invalid task data: %v", err)
			return
		}
		created, err := s.store.CreateTask(t)
		if err != nil {
			httpError(w, http.StatusInternalServerError, "api_error", "failed to add task: %v", err)
			return
		}
		writeJSON(w, map[string]any{"success": true, "result": created})

	default:
		httpError(w, http.StatusBadRequest, "invalid_request_error", "unknown add type %q", req.Type)
	}
}

type completeRequest struct {
	Type string `json:"type"` // "task" or "grocery"
	ID   string `json:"id"`
}

func (s *Server) handleComplete(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxRequestBodySize)
	var req completeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpError(w, http.StatusBadRequest, "invalid_request_error", "invalid request body: %v", err)
		return
	}

	var err error
	switch req.Type {
	case "task":
		_, err = s.store.CompleteTask(req.ID)
	case "grocery":
		_, err = s.store.PurchaseGrocery(req.ID)
	default:
		httpError(w, http.StatusBadRequest, "invalid_request_error", "unknown complete type %q", req.Type)
		return
	}

	if err == storage.ErrNotFound {
		httpError(w, http.StatusNotFound, "not_found", "%s %s not found", req.Type, req.ID)
		return
	}
	if err != nil {
		httpError(w, http.StatusInternalServerError, "api_error", "failed to complete %s: %v", req.Type, err)
		return
	}
	writeJSON(w, map[string]any{"success": true})
}

// handleData aggregates the dashboard payload. The three reads are
// independent, so they are issued concurrently and joined before responding.
func (s *Server) handleData(w http.ResponseWriter, r *http.Request) {
	var (
		summary   storage.Summary
		groceries []storage.GroceryItem
		tasks     []storage.Task
	)

	g, _ := errgroup.WithContext(r.Context())
	g.Go(func() error {
		var err error
		summary, err = s.store.DailySummary()
		return err
	})
	g.Go(func() error {
		var err error
		groceries, err = s.store.ListGroceries(storage.GroceryNeeded)
		return err
	})
	g.Go(func() error {
		var err error
		tasks, err = s.store.ListTasks(storage.TaskFilter{Status: storage.TaskActive})
		return err
	})

	if err := g.Wait(); err != nil {
		httpError(w, http.StatusInternalServerError, "api_error", "failed to load data: %v", err)
		return
	}

	if groceries == nil {
		groceries = []storage.GroceryItem{}
	}
	if tasks == nil {
		tasks = []storage.Task{}
	}
	writeJSON(w, map[string]any{"summary": summary, "groceries": groceries, "tasks": tasks})
}

func (s *Server) handleCreateAppointment(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxRequestBodySize)
	var a storage.Appointment
	if err := json.NewDecoder(r.Body).Decode(&a); err != nil {
		httpError(w, http.StatusBadRequest, "invalid_request_error", "invalid request body: %v", err)
		return
	}
	if a.Title == "" || a.Date == "" {
		httpError(w, http.StatusBadRequest, "invalid_request_error", "title and appointment_date are required")
		return
	}

	created, err := s.store.CreateAppointment(a)
	if err != nil {
		httpError(w, http.StatusInternalServerError, "api_error", "failed to add appointment: %v", err)
		return
	}
	writeJSON(w, map[string]any{"success": true, "result": created})
}

func (s *Server) handleListAppointments(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	var (
		appts []storage.Appointment
		err   error
	)
	yearStr, monthStr := q.Get("year"), q.Get("month")
	switch {
	case yearStr != "" && monthStr != "":
		var year, month int
		if year, err = strconv.Atoi(yearStr); err == nil {
			month, err = strconv.Atoi(monthStr)
		}
		if err != nil || month < 1 || month > 12 {
			httpError(w, http.StatusBadRequest, "invalid_request_error", "invalid year/month")
			return
		}
		appts, err = s.store.ListAppointmentsByMonth(year, month)
	case q.Get("person") != "":
		appts, err = s.store.ListAppointments(storage.AppointmentFilter{Person: q.Get("person")})
	default:
		appts, err = s.store.ListAppointments(storage.AppointmentFilter{})
	}

	if err != nil {
		httpError(w, http.StatusInternalServerError, "api_error", "failed to list appointments: %v", err)
		return
	}
	if appts == nil {
		appts = []storage.Appointment{}
	}
	writeJSON(w, map[string]any{"success": true, "appointments": appts})
}

func (s *Server) handleDeleteAppointment(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	err := s.store.DeleteAppointment(id)
	if err == storage.ErrNotFound {
		httpError(w, http.StatusNotFound, "not_found", "appointment not found")
		return
	}
	if err != nil {
		httpError(w, http.StatusInternalServerError, "api_error", "failed to delete appointment: %v", err)
		return
	}
	writeJSON(w, map[string]any{"success": true})
}
