package handlers

import (
	"encoding/json"
	"io"
	"net/http"
	"strconv"
	"time"

	"guidehire/internal/offers"

	"github.com/go-chi/chi/v5"
)

type offerRequest struct {
	GuideIDs      []int  `json:"guideIds"`
	JobType       string `json:"jobType"`
	Description   string `json:"description"`
	StartDate     string `json:"startDate"`
	EndDate       string `json:"endDate"`
	ContactPerson string `json:"contactPerson"`
	ContactPhone  string `json:"contactPhone"`
}

func (req *offerRequest) toInput() (offers.CreateOfferInput, error) {
	in := offers.CreateOfferInput{
		GuideIDs:      req.GuideIDs,
		JobType:       req.JobType,
		Description:   req.Description,
		ContactPerson: req.ContactPerson,
		ContactPhone:  req.ContactPhone,
	}
	var err error
	if req.StartDate != "" {
		if in.StartDate, err = parseDate(req.StartDate); err != nil {
			return in, err
		}
	}
	if req.EndDate != "" {
		if in.EndDate, err = parseDate(req.EndDate); err != nil {
			return in, err
		}
	}
	return in, nil
}

func (h *Handler) readOfferRequest(w http.ResponseWriter, r *http.Request) (*offerRequest, bool) {
	r.Body = http.MaxBytesReader(w, r.Body, 1048576)
	body, err := io.ReadAll(r.Body)
	if err != nil {
		http.Error(w, "Failed to read request body", http.StatusBadRequest)
		return nil, false
	}
	defer r.Body.Close()

	var req offerRequest
	if err := json.Unmarshal(body, &req); err != nil {
		http.Error(w, "Invalid JSON format", http.StatusBadRequest)
		return nil, false
	}
	return &req, true
}

// CreateOfferHandler handles POST /api/offers/new. Requires an active company
// subscription.
func (h *Handler) CreateOfferHandler(w http.ResponseWriter, r *http.Request) {
	actor, ok := ActorFromContext(r.Context())
	if !ok {
		http.Error(w, "Missing actor", http.StatusUnauthorized)
		return
	}
	if !h.requireActiveSubscription(w, r, actor) {
		return
	}

	req, ok := h.readOfferRequest(w, r)
	if !ok {
		return
	}
	in, err := req.toInput()
	if err != nil {
		http.Error(w, "Invalid date format, expected YYYY-MM-DD", http.StatusBadRequest)
		return
	}

	writeResult(w, h.Lifecycle.CreateOffer(r.Context(), actor, in))
}

// AddGuidesToCampaignHandler handles POST /api/offers/add-guides.
func (h *Handler) AddGuidesToCampaignHandler(w http.ResponseWriter, r *http.Request) {
	actor, ok := ActorFromContext(r.Context())
	if !ok {
		http.Error(w, "Missing actor", http.StatusUnauthorized)
		return
	}
	if !h.requireActiveSubscription(w, r, actor) {
		return
	}

	req, ok := h.readOfferRequest(w, r)
	if !ok {
		return
	}
	in, err := req.toInput()
	if err != nil {
		http.Error(w, "Invalid date format, expected YYYY-MM-DD", http.StatusBadRequest)
		return
	}

	writeResult(w, h.Lifecycle.AddGuidesToOfferCampaign(r.Context(), actor, in))
}

func (h *Handler) requireActiveSubscription(w http.ResponseWriter, r *http.Request, actor offers.Actor) bool {
	active, err := h.Store.HasActiveSubscription(r.Context(), actor.ID, time.Now())
	if err != nil {
		http.Error(w, "Failed to check subscription", http.StatusInternalServerError)
		return false
	}
	if !active {
		http.Error(w, "Company subscription is not active", http.StatusForbidden)
		return false
	}
	return true
}

// AcceptOfferHandler handles POST /api/offers/{offerId}/accept.
func (h *Handler) AcceptOfferHandler(w http.ResponseWriter, r *http.Request) {
	actor, ok := ActorFromContext(r.Context())
	if !ok {
		http.Error(w, "Missing actor", http.StatusUnauthorized)
		return
	}
	offerID, err := strconv.Atoi(chi.URLParam(r, "offerId"))
	if err != nil || offerID <= 0 {
		http.Error(w, "Invalid offerId", http.StatusBadRequest)
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
		GuideID   int    `json:"guideId"`
		CompanyID int    `json:"companyId"`
		JobType   string `json:"jobType"`
		StartDate string `json:"startDate"`
		EndDate   string `json:"endDate"`
	}
	if err := json.Unmarshal(body, &req); err != nil {
		http.Error(w, "Invalid JSON format", http.StatusBadRequest)
		return
	}
	startDate, err1 := parseDate(req.StartDate)
	endDate, err2 := parseDate(req.EndDate)
	if err1 != nil || err2 != nil {
		http.Error(w, "Invalid date format, expected YYYY-MM-DD", http.StatusBadRequest)
		return
	}

	in := offers.AcceptOfferInput{
		OfferID:   offerID,
		GuideID:   req.GuideID,
		CompanyID: req.CompanyID,
		JobType:   req.JobType,
		StartDate: startDate,
		EndDate:   endDate,
	}
	writeResult(w, h.Lifecycle.AcceptOffer(r.Context(), actor, in))
}

// RejectOfferHandler handles POST /api/offers/{offerId}/reject (company side).
func (h *Handler) RejectOfferHandler(w http.ResponseWriter, r *http.Request) {
	actor, ok := ActorFromContext(r.Context())
	if !ok {
		http.Error(w, "Missing actor", http.StatusUnauthorized)
		return
	}
	offerID, err := strconv.Atoi(chi.URLParam(r, "offerId"))
	if err != nil || offerID <= 0 {
		http.Error(w, "Invalid offerId", http.StatusBadRequest)
		return
	}
	writeResult(w, h.Lifecycle.RejectOffer(r.Context(), actor, offerID))
}

// DeclineOfferHandler handles POST /api/offers/{offerId}/decline (guide side).
func (h *Handler) DeclineOfferHandler(w http.ResponseWriter, r *http.Request) {
	actor, ok := ActorFromContext(r.Context())
	if !ok {
		http.Error(w, "Missing actor", http.StatusUnauthorized)
		return
	}
	offerID, err := strconv.Atoi(chi.URLParam(r, "offerId"))
	if err != nil || offerID <= 0 {
		http.Error(w, "Invalid offerId", http.StatusBadRequest)
		return
	}
	writeResult(w, h.Lifecycle.GuideRejectOffer(r.Context(), actor, offerID))
}

// CancelCampaignHandler handles POST /api/offers/cancel.
func (h *Handler) CancelCampaignHandler(w http.ResponseWriter, r *http.Request) {
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
		JobType   string `json:"jobType"`
		StartDate string `json:"startDate"`
		EndDate   string `json:"endDate"`
	}
	if err := json.Unmarshal(body, &req); err != nil {
		http.Error(w, "Invalid JSON format", http.StatusBadRequest)
		return
	}

	in := offers.CancelCampaignInput{JobType: req.JobType}
	if req.StartDate != "" {
		if in.StartDate, err = parseDate(req.StartDate); err != nil {
			http.Error(w, "Invalid date format, expected YYYY-MM-DD", http.StatusBadRequest)
			return
		}
	}
	if req.EndDate != "" {
		if in.EndDate, err = parseDate(req.EndDate); err != nil {
			http.Error(w, "Invalid date format, expected YYYY-MM-DD", http.StatusBadRequest)
			return
		}
	}

	writeResult(w, h.Lifecycle.CancelPendingOffersForJob(r.Context(), actor, in))
}

// EditOffersHandler handles PATCH /api/offers/edit.
func (h *Handler) EditOffersHandler(w http.ResponseWriter, r *http.Request) {
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

	var in offers.UpdateOfferDetailsInput
	if err := json.Unmarshal(body, &in); err != nil {
		http.Error(w, "Invalid JSON format", http.StatusBadRequest)
		return
	}

	writeResult(w, h.Lifecycle.UpdateOfferDetails(r.Context(), actor, in))
}

// RemindOfferHandler handles POST /api/offers/{offerId}/remind.
func (h *Handler) RemindOfferHandler(w http.ResponseWriter, r *http.Request) {
	actor, ok := ActorFromContext(r.Context())
	if !ok {
		http.Error(w, "Missing actor", http.StatusUnauthorized)
		return
	}
	offerID, err := strconv.Atoi(chi.URLParam(r, "offerId"))
	if err != nil || offerID <= 0 {
		http.Error(w, "Invalid offerId", http.StatusBadRequest)
		return
	}
	writeResult(w, h.Lifecycle.RemindOffer(r.Context(), actor, offerID))
}

// GetMyOffersHandler handles GET /api/offers/my for both roles.
func (h *Handler) GetMyOffersHandler(w http.ResponseWriter, r *http.Request) {
	actor, ok := ActorFromContext(r.Context())
	if !ok {
		http.Error(w, "Missing actor", http.StatusUnauthorized)
		return
	}
	params := parsePaginationParams(r)

	switch actor.Role {
	case offers.RoleGuide:
		list, err := h.Store.GetGuideOffers(r.Context(), actor.ID, params.Limit, params.Offset)
		if err != nil {
			http.Error(w, "Failed to get offers", http.StatusInternalServerError)
			return
		}
		writeJSON(w, http.StatusOK, list)
	case offers.RoleCompany:
		if campaignID := r.URL.Query().Get("campaignId"); campaignID != "" {
			list, err := h.Store.GetCampaignOffers(r.Context(), actor.ID, campaignID)
			if err != nil {
				http.Error(w, "Failed to get offers", http.StatusInternalServerError)
				return
			}
			writeJSON(w, http.StatusOK, list)
			return
		}
		list, err := h.Store.GetCompanyOffers(r.Context(), actor.ID, params.Limit, params.Offset)
		if err != nil {
			http.Error(w, "Failed to get offers", http.StatusInternalServerError)
			return
		}
		writeJSON(w, http.StatusOK, list)
	default:
		http.Error(w, "Forbidden", http.StatusForbidden)
	}
}
