package handlers

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"guidehire/db"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// Admin endpoints for company subscriptions. Every mutation leaves an audit
// trail entry.

func (h *Handler) CreateSubscriptionHandler(w http.ResponseWriter, r *http.Request) {
	actor, ok := ActorFromContext(r.Context())
	if !ok {
		http.Error(w, "Missing actor", http.StatusUnauthorized)
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, 1048576)
	body, err := io.ReadAll(r.Body)
	if err != nil {
		http.Error(w, "Failed to read request body", http.StatusBadRequest)
		return
	}
	defer r.Body.Close()

	var req struct {
		CompanyID int    `json:"companyId"`
		StartDate string `json:"startDate"`
		EndDate   string `json:"endDate"`
		Note      string `json:"note"`
	}
	if err := json.Unmarshal(body, &req); err != nil {
		http.Error(w, "Invalid JSON format", http.StatusBadRequest)
		return
	}
	if req.CompanyID <= 0 {
		http.Error(w, "companyId must be positive", http.StatusBadRequest)
		return
	}
	start, err1 := parseDate(req.StartDate)
	end, err2 := parseDate(req.EndDate)
	if err1 != nil || err2 != nil {
		http.Error(w, "Invalid date format, expected YYYY-MM-DD", http.StatusBadRequest)
		return
	}
	if end.Before(start) {
		http.Error(w, "endDate must not be before startDate", http.StatusBadRequest)
		return
	}

	sub := &db.Subscription{CompanyID: req.CompanyID, StartDate: start, EndDate: end}
	if err := h.Store.CreateSubscription(r.Context(), sub); err != nil {
		http.Error(w, "Failed to create subscription", http.StatusInternalServerError)
		return
	}

	audit := &db.SubscriptionAudit{
		SubscriptionID: sub.ID,
		CompanyID:      sub.CompanyID,
		Action:         "created",
		Actor:          fmt.Sprintf("admin:%d", actor.ID),
		Note:           req.Note,
	}
	if err := h.Store.AddSubscriptionAudit(r.Context(), audit); err != nil {
		// The subscription itself is saved; a broken trail is logged, not fatal.
		h.Logger.Error("subscription audit write failed", zap.Error(err))
	}

	writeJSON(w, http.StatusOK, sub)
}

func (h *Handler) GetCompanySubscriptionsHandler(w http.ResponseWriter, r *http.Request) {
	companyID, err := strconv.Atoi(chi.URLParam(r, "companyId"))
	if err != nil || companyID <= 0 {
		http.Error(w, "Invalid companyId", http.StatusBadRequest)
		return
	}
	subs, err := h.Store.GetCompanySubscriptions(r.Context(), companyID)
	if err != nil {
		http.Error(w, "Failed to get subscriptions", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, subs)
}

func (h *Handler) GetSubscriptionAuditHandler(w http.ResponseWriter, r *http.Request) {
	companyID, err := strconv.Atoi(chi.URLParam(r, "companyId"))
	if err != nil || companyID <= 0 {
		http.Error(w, "Invalid companyId", http.StatusBadRequest)
		return
	}
	entries, err := h.Store.GetSubscriptionAudit(r.Context(), companyID)
	if err != nil {
		http.Error(w, "Failed to get audit log", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, entries)
}
