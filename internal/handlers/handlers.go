package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"guidehire/internal/offers"

	"go.uber.org/zap"
)

const dateLayout = "2006-01-02"

// Handler wires the HTTP surface to storage and the offer lifecycle controller.
type Handler struct {
	Store     StorageInterface
	Lifecycle *offers.Controller
	Logger    *zap.Logger
}

func NewHandler(store StorageInterface, lifecycle *offers.Controller, logger *zap.Logger) *Handler {
	return &Handler{Store: store, Lifecycle: lifecycle, Logger: logger}
}

// PingHandler answers "ok" for liveness checks.
func (h *Handler) PingHandler(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("ok"))
}

type paginationParams struct {
	Limit  int
	Offset int
}

func parsePaginationParams(r *http.Request) paginationParams {
	params := paginationParams{Limit: 20, Offset: 0}
	if v := r.URL.Query().Get("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 && n <= 100 {
			params.Limit = n
		}
	}
	if v := r.URL.Query().Get("offset"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n >= 0 {
			params.Offset = n
		}
	}
	return params
}

func parseDate(s string) (time.Time, error) {
	return time.Parse(dateLayout, s)
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// writeResult renders a lifecycle Result. The HTTP status is always 200; the
// success flag inside the body is the authoritative signal.
func writeResult(w http.ResponseWriter, res offers.Result) {
	writeJSON(w, http.StatusOK, res)
}
