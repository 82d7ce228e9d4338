package handler

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/Dan9191/balance-service/internal/export"
	"github.com/Dan9191/balance-service/internal/models"
	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"
)

// BalanceService is the reporting API the handlers expose
type BalanceService interface {
	ListCustomers(ctx context.Context) ([]models.CustomerSummary, error)
	ComputeTimeline(ctx context.Context, customerID int64, start, end *time.Time) (*models.BalanceTimeline, error)
	ComputeMaxDebt(ctx context.Context, customerID int64, start, end *time.Time) (*models.MaxDebtResult, error)
}

// Pinger reports whether the backing store is reachable
type Pinger interface {
	Ping(ctx context.Context) error
}

type Handler struct {
	svc          BalanceService
	db           Pinger
	log          *logrus.Logger
	exposeErrors bool
}

// NewHandler creates the HTTP handlers. When exposeErrors is set, internal
// error messages are included in 500 responses.
func NewHandler(svc BalanceService, db Pinger, log *logrus.Logger, exposeErrors bool) *Handler {
	return &Handler{svc: svc, db: db, log: log, exposeErrors: exposeErrors}
}

// RegisterRoutes attaches all endpoints to the router
func (h *Handler) RegisterRoutes(r *mux.Router) {
	r.HandleFunc("/healthz", h.Health).Methods("GET")
	r.HandleFunc("/api/customers", h.ListCustomers).Methods("GET")

	balances := r.PathPrefix("/api/customers/{id:[0-9]+}/balances").Subrouter()
	balances.HandleFunc("/timeline", h.GetTimeline).Methods("GET")
	balances.HandleFunc("/timeline.xml", h.GetTimelineXML).Methods("GET")
	balances.HandleFunc("/max", h.GetMaxDebt).Methods("GET")
}

// Health checks database connectivity
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	if err := h.db.Ping(r.Context()); err != nil {
		h.entry(r).WithError(err).Error("Health check failed")
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// ListCustomers returns all customers
func (h *Handler) ListCustomers(w http.ResponseWriter, r *http.Request) {
	customers, err := h.svc.ListCustomers(r.Context())
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, customers)
}

// GetTimeline returns the balance timeline of a customer
func (h *Handler) GetTimeline(w http.ResponseWriter, r *http.Request) {
	tl, ok := h.timeline(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, tl)
}

// GetTimelineXML returns the balance timeline of a customer as XML
func (h *Handler) GetTimelineXML(w http.ResponseWriter, r *http.Request) {
	tl, ok := h.timeline(w, r)
	if !ok {
		return
	}
	body, err := export.TimelineXML(tl)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	w.Header().Set("Content-Type", "application/xml; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(body); err != nil {
		h.entry(r).WithError(err).Warn("Failed to write XML response")
	}
}

// GetMaxDebt returns the max debt point of a customer
func (h *Handler) GetMaxDebt(w http.ResponseWriter, r *http.Request) {
	customerID, start, end, ok := h.parseQuery(w, r)
	if !ok {
		return
	}

	res, err := h.svc.ComputeMaxDebt(r.Context(), customerID, start, end)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	if res == nil {
		writeProblem(w, r, http.StatusNotFound, "Not Found",
			fmt.Sprintf("no ledger activity for customer %d in the requested range", customerID))
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (h *Handler) timeline(w http.ResponseWriter, r *http.Request) (*models.BalanceTimeline, bool) {
	customerID, start, end, ok := h.parseQuery(w, r)
	if !ok {
		return nil, false
	}

	tl, err := h.svc.ComputeTimeline(r.Context(), customerID, start, end)
	if err != nil {
		h.fail(w, r, err)
		return nil, false
	}
	if tl == nil {
		writeProblem(w, r, http.StatusNotFound, "Not Found", fmt.Sprintf("customer %d does not exist", customerID))
		return nil, false
	}
	return tl, true
}

func (h *Handler) parseQuery(w http.ResponseWriter, r *http.Request) (int64, *time.Time, *time.Time, bool) {
	customerID, err := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	if err != nil {
		h.entry(r).WithField("id", mux.Vars(r)["id"]).Warn("Invalid customer id")
		writeProblem(w, r, http.StatusBadRequest, "Bad Request", "invalid customer id")
		return 0, nil, nil, false
	}

	q := r.URL.Query()
	start, err := parseDate(q.Get("start"))
	if err != nil {
		h.entry(r).WithError(err).Warn("Invalid start date")
		writeProblem(w, r, http.StatusBadRequest, "Bad Request", "invalid start date (use YYYY-MM-DD or RFC 3339)")
		return 0, nil, nil, false
	}
	end, err := parseDate(q.Get("end"))
	if err != nil {
		h.entry(r).WithError(err).Warn("Invalid end date")
		writeProblem(w, r, http.StatusBadRequest, "Bad Request", "invalid end date (use YYYY-MM-DD or RFC 3339)")
		return 0, nil, nil, false
	}
	return customerID, start, end, true
}

func (h *Handler) fail(w http.ResponseWriter, r *http.Request, err error) {
	h.entry(r).WithError(err).Error("Request failed")
	detail := "an unexpected error occurred while processing the request"
	if h.exposeErrors {
		detail = err.Error()
	}
	writeProblem(w, r, http.StatusInternalServerError, "Internal Server Error", detail)
}

func (h *Handler) entry(r *http.Request) *logrus.Entry {
	return h.log.WithFields(logrus.Fields{
		"request_id": RequestIDFromContext(r.Context()),
		"path":       r.URL.Path,
	})
}

// parseDate accepts YYYY-MM-DD or RFC 3339. An empty value means no bound.
func parseDate(raw string) (*time.Time, error) {
	if raw == "" {
		return nil, nil
	}
	if t, err := time.Parse(models.DateLayout, raw); err == nil {
		return &t, nil
	}
	t, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

type problem struct {
	Status   int    `json:"status"`
	Title    string `json:"title"`
	Detail   string `json:"detail"`
	Instance string `json:"instance"`
}

func writeProblem(w http.ResponseWriter, r *http.Request, status int, title, detail string) {
	w.Header().Set("Content-Type", "application/problem+json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(problem{
		Status:   status,
		Title:    title,
		Detail:   detail,
		Instance: r.URL.Path,
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
