package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"

	"guidehire/db"
	"guidehire/internal/offers"

	"github.com/go-chi/chi/v5"
)

// Profile CRUD for guides and companies. Plain data entry, no lifecycle logic.

func (h *Handler) CreateGuideHandler(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, 1048576)
	body, err := io.ReadAll(r.Body)
	if err != nil {
		http.Error(w, "Failed to read request body", http.StatusBadRequest)
		return
	}
	defer r.Body.Close()

	var guide db.Guide
	if err := json.Unmarshal(body, &guide); err != nil {
		http.Error(w, "Invalid JSON format", http.StatusBadRequest)
		return
	}
	if err := validateGuide(&guide); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	if err := h.Store.CreateGuide(r.Context(), &guide); err != nil {
		http.Error(w, "Failed to create guide", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, guide)
}

func validateGuide(g *db.Guide) error {
	if g.Name == "" || len(g.Name) > 100 {
		return errors.New("name is required and max length 100")
	}
	return nil
}

func (h *Handler) GetGuideHandler(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(chi.URLParam(r, "guideId"))
	if err != nil || id <= 0 {
		http.Error(w, "Invalid guideId", http.StatusBadRequest)
		return
	}
	guide, err := h.Store.GetGuide(r.Context(), id)
	if err != nil {
		http.Error(w, "Guide not found", http.StatusNotFound)
		return
	}
	writeJSON(w, http.StatusOK, guide)
}

func (h *Handler) GetGuidesHandler(w http.ResponseWriter, r *http.Request) {
	params := parsePaginationParams(r)
	guides, err := h.Store.GetGuides(r.Context(), params.Limit, params.Offset)
	if err != nil {
		http.Error(w, "Failed to get guides", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, guides)
}

func (h *Handler) UpdateGuideHandler(w http.ResponseWriter, r *http.Request) {
	actor, ok := ActorFromContext(r.Context())
	if !ok {
		http.Error(w, "Missing actor", http.StatusUnauthorized)
		return
	}
	id, err := strconv.Atoi(chi.URLParam(r, "guideId"))
	if err != nil || id <= 0 {
		http.Error(w, "Invalid guideId", http.StatusBadRequest)
		return
	}
	if actor.Role != offers.RoleAdmin && actor.ID != id {
		http.Error(w, "Forbidden", http.StatusForbidden)
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, 1048576)
	body, err := io.ReadAll(r.Body)
	if err != nil {
		http.Error(w, "Failed to read request body", http.StatusBadRequest)
		return
	}
	defer r.Body.Close()

	var guide db.Guide
	if err := json.Unmarshal(body, &guide); err != nil {
		http.Error(w, "Invalid JSON format", http.StatusBadRequest)
		return
	}
	guide.ID = id
	if err := validateGuide(&guide); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	if err := h.Store.UpdateGuide(r.Context(), &guide); err != nil {
		http.Error(w, "Failed to update guide", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, guide)
}

func (h *Handler) DeleteGuideHandler(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(chi.URLParam(r, "guideId"))
	if err != nil || id <= 0 {
		http.Error(w, "Invalid guideId", http.StatusBadRequest)
		return
	}
	if err := h.Store.DeleteGuide(r.Context(), id); err != nil {
		http.Error(w, "Failed to delete guide", http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) CreateCompanyHandler(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, 1048576)
	body, err := io.ReadAll(r.Body)
	if err != nil {
		http.Error(w, "Failed to read request body", http.StatusBadRequest)
		return
	}
	defer r.Body.Close()

	var company db.Company
	if err := json.Unmarshal(body, &company); err != nil {
		http.Error(w, "Invalid JSON format", http.StatusBadRequest)
		return
	}
	if company.Name == "" || len(company.Name) > 100 {
		http.Error(w, "name is required and max length 100", http.StatusBadRequest)
		return
	}

	if err := h.Store.CreateCompany(r.Context(), &company); err != nil {
		http.Error(w, "Failed to create company", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, company)
}

func (h *Handler) GetCompanyHandler(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(chi.URLParam(r, "companyId"))
	if err != nil || id <= 0 {
		http.Error(w, "Invalid companyId", http.StatusBadRequest)
		return
	}
	company, err := h.Store.GetCompany(r.Context(), id)
	if err != nil {
		http.Error(w, "Company not found", http.StatusNotFound)
		return
	}
	writeJSON(w, http.StatusOK, company)
}

func (h *Handler) GetCompaniesHandler(w http.ResponseWriter, r *http.Request) {
	params := parsePaginationParams(r)
	companies, err := h.Store.GetCompanies(r.Context(), params.Limit, params.Offset)
	if err != nil {
		http.Error(w, "Failed to get companies", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, companies)
}

func (h *Handler) UpdateCompanyHandler(w http.ResponseWriter, r *http.Request) {
	actor, ok := ActorFromContext(r.Context())
	if !ok {
		http.Error(w, "Missing actor", http.StatusUnauthorized)
		return
	}
	id, err := strconv.Atoi(chi.URLParam(r, "companyId"))
	if err != nil || id <= 0 {
		http.Error(w, "Invalid companyId", http.StatusBadRequest)
		return
	}
	if actor.Role != offers.RoleAdmin && actor.ID != id {
		http.Error(w, "Forbidden", http.StatusForbidden)
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, 1048576)
	body, err := io.ReadAll(r.Body)
	if err != nil {
		http.Error(w, "Failed to read request body", http.StatusBadRequest)
		return
	}
	defer r.Body.Close()

	var company db.Company
	if err := json.Unmarshal(body, &company); err != nil {
		http.Error(w, "Invalid JSON format", http.StatusBadRequest)
		return
	}
	company.ID = id
	if company.Name == "" || len(company.Name) > 100 {
		http.Error(w, "name is required and max length 100", http.StatusBadRequest)
		return
	}

	if err := h.Store.UpdateCompany(r.Context(), &company); err != nil {
		http.Error(w, "Failed to update company", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, company)
}

func (h *Handler) DeleteCompanyHandler(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(chi.URLParam(r, "companyId"))
	if err != nil || id <= 0 {
		http.Error(w, "Invalid companyId", http.StatusBadRequest)
		return
	}
	if err := h.Store.DeleteCompany(r.Context(), id); err != nil {
		http.Error(w, "Failed to delete company", http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
