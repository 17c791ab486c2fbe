package handlers

import (
	"encoding/json"
	"io"
	"net/http"
	"strconv"

	"guidehire/db"
	"guidehire/internal/offers"

	"github.com/go-chi/chi/v5"
)

// GetMyCommitmentsHandler handles GET /api/commitments/my for both roles.
func (h *Handler) GetMyCommitmentsHandler(w http.ResponseWriter, r *http.Request) {
	actor, ok := ActorFromContext(r.Context())
	if !ok {
		http.Error(w, "Missing actor", http.StatusUnauthorized)
		return
	}
	params := parsePaginationParams(r)

	var (
		list []db.Commitment
		err  error
	)
	switch actor.Role {
	case offers.RoleGuide:
		list, err = h.Store.GetGuideCommitments(r.Context(), actor.ID, params.Limit, params.Offset)
	case offers.RoleCompany:
		list, err = h.Store.GetCompanyCommitments(r.Context(), actor.ID, params.Limit, params.Offset)
	default:
		http.Error(w, "Forbidden", http.StatusForbidden)
		return
	}
	if err != nil {
		http.Error(w, "Failed to get commitments", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, list)
}

// CheckGuideAvailabilityHandler handles
// GET /api/guides/{guideId}/availability?start=YYYY-MM-DD&end=YYYY-MM-DD.
// It lists the commitments that clash with the requested range so the UI can
// show why a guide is busy.
func (h *Handler) CheckGuideAvailabilityHandler(w http.ResponseWriter, r *http.Request) {
	guideID, err := strconv.Atoi(chi.URLParam(r, "guideId"))
	if err != nil || guideID <= 0 {
		http.Error(w, "Invalid guideId", http.StatusBadRequest)
		return
	}
	start, err1 := parseDate(r.URL.Query().Get("start"))
	end, err2 := parseDate(r.URL.Query().Get("end"))
	if err1 != nil || err2 != nil {
		http.Error(w, "Invalid start or end date, expected YYYY-MM-DD", http.StatusBadRequest)
		return
	}

	commitments, err := h.Store.GetGuideCommitments(r.Context(), guideID, 100, 0)
	if err != nil {
		http.Error(w, "Failed to get commitments", http.StatusInternalServerError)
		return
	}

	conflicts := []db.Commitment{}
	for _, c := range commitments {
		if offers.Overlaps(start, end, c.StartDate, c.EndDate) {
			conflicts = append(conflicts, c)
		}
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"available": len(conflicts) == 0,
		"conflicts": conflicts,
	})
}

// RateCommitmentHandler handles POST /api/commitments/{commitmentId}/rating.
// Guides rate the company, companies rate the guide; each side once, and only
// after the commitment has ended.
func (h *Handler) RateCommitmentHandler(w http.ResponseWriter, r *http.Request) {
	actor, ok := ActorFromContext(r.Context())
	if !ok {
		http.Error(w, "Missing actor", http.StatusUnauthorized)
		return
	}
	commitmentID, err := strconv.Atoi(chi.URLParam(r, "commitmentId"))
	if err != nil || commitmentID <= 0 {
		http.Error(w, "Invalid commitmentId", http.StatusBadRequest)
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
		Rating  int    `json:"rating"`
		Comment string `json:"comment"`
	}
	if err := json.Unmarshal(body, &req); err != nil {
		http.Error(w, "Invalid JSON format", http.StatusBadRequest)
		return
	}
	if req.Rating < 1 || req.Rating > 5 {
		http.Error(w, "rating must be between 1 and 5", http.StatusBadRequest)
		return
	}

	var rows int64
	switch actor.Role {
	case offers.RoleGuide:
		rows, err = h.Store.RateCommitmentAsGuide(r.Context(), commitmentID, actor.ID, req.Rating, req.Comment)
	case offers.RoleCompany:
		rows, err = h.Store.RateCommitmentAsCompany(r.Context(), commitmentID, actor.ID, req.Rating, req.Comment)
	default:
		http.Error(w, "Forbidden", http.StatusForbidden)
		return
	}
	if err != nil {
		http.Error(w, "Failed to save rating", http.StatusInternalServerError)
		return
	}
	if rows == 0 {
		http.Error(w, "Commitment not found, not yours, already rated, or not finished yet", http.StatusConflict)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "rating saved"})
}
