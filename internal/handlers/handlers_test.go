package handlers_test

import (
	"context"
	"database/sql"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"guidehire/db"
	"guidehire/internal/handlers"
	"guidehire/internal/handlers/testutils"
	"guidehire/internal/notify"
	"guidehire/internal/offers"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func date(s string) time.Time {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		panic(err)
	}
	return t
}

// MockStorage implements both handlers.StorageInterface and offers.Store, so
// one fake backs the handlers and the lifecycle controller they call.
type MockStorage struct {
	guide        *db.Guide
	company      *db.Company
	offer        *db.Offer
	commitments  []db.Commitment
	subscription bool

	createdOffers []*db.Offer
	audits        []*db.SubscriptionAudit
	rateRows      int64
}

func newMockStorage() *MockStorage {
	return &MockStorage{
		guide:   &db.Guide{ID: 1, Name: "Greta Guide", Email: "greta@example.com"},
		company: &db.Company{ID: 10, Name: "City Tours Ltd", Email: "office@citytours.example"},
		offer: &db.Offer{
			ID: 100, GuideID: 1, CompanyID: 10,
			JobType:   "City Walk",
			StartDate: date("2024-06-01"), EndDate: date("2024-06-03"),
			Status: db.OfferPending,
		},
		subscription: true,
		rateRows:     1,
	}
}

func (m *MockStorage) CreateGuide(ctx context.Context, g *db.Guide) error { g.ID = 1; return nil }
func (m *MockStorage) GetGuide(ctx context.Context, id int) (*db.Guide, error) {
	if m.guide == nil {
		return nil, sql.ErrNoRows
	}
	return m.guide, nil
}
func (m *MockStorage) GetGuides(ctx context.Context, limit, offset int) ([]db.Guide, error) {
	return []db.Guide{*m.guide}, nil
}
func (m *MockStorage) UpdateGuide(ctx context.Context, g *db.Guide) error { return nil }
func (m *MockStorage) DeleteGuide(ctx context.Context, id int) error      { return nil }

func (m *MockStorage) CreateCompany(ctx context.Context, c *db.Company) error { c.ID = 10; return nil }
func (m *MockStorage) GetCompany(ctx context.Context, id int) (*db.Company, error) {
	if m.company == nil {
		return nil, sql.ErrNoRows
	}
	return m.company, nil
}
func (m *MockStorage) GetCompanies(ctx context.Context, limit, offset int) ([]db.Company, error) {
	return []db.Company{*m.company}, nil
}
func (m *MockStorage) UpdateCompany(ctx context.Context, c *db.Company) error { return nil }
func (m *MockStorage) DeleteCompany(ctx context.Context, id int) error        { return nil }

func (m *MockStorage) CreateOffers(ctx context.Context, rows []*db.Offer) error {
	for i, o := range rows {
		o.ID = 200 + i
	}
	m.createdOffers = append(m.createdOffers, rows...)
	return nil
}
func (m *MockStorage) GetOffer(ctx context.Context, id int) (*db.Offer, error) {
	if m.offer == nil || m.offer.ID != id {
		return nil, sql.ErrNoRows
	}
	return m.offer, nil
}
func (m *MockStorage) GetGuideOffers(ctx context.Context, guideID, limit, offset int) ([]db.Offer, error) {
	return []db.Offer{*m.offer}, nil
}
func (m *MockStorage) GetCompanyOffers(ctx context.Context, companyID, limit, offset int) ([]db.Offer, error) {
	return []db.Offer{*m.offer}, nil
}
func (m *MockStorage) GetCampaignOffers(ctx context.Context, companyID int, campaignID string) ([]db.Offer, error) {
	return []db.Offer{*m.offer}, nil
}
func (m *MockStorage) FindCampaignID(ctx context.Context, companyID int, jobType string, startDate, endDate time.Time) (string, error) {
	return "", nil
}
func (m *MockStorage) AcceptOfferIfPending(ctx context.Context, offerID, guideID int) (int64, error) {
	if m.offer.ID == offerID && m.offer.GuideID == guideID && m.offer.Status == db.OfferPending {
		m.offer.Status = db.OfferAccepted
		return 1, nil
	}
	return 0, nil
}
func (m *MockStorage) RejectOfferIfPending(ctx context.Context, offerID, companyID int) (int64, error) {
	if m.offer.ID == offerID && m.offer.CompanyID == companyID && m.offer.Status == db.OfferPending {
		m.offer.Status = db.OfferRejected
		return 1, nil
	}
	return 0, nil
}
func (m *MockStorage) GuideRejectOfferIfPending(ctx context.Context, offerID, guideID int) (int64, error) {
	if m.offer.ID == offerID && m.offer.GuideID == guideID && m.offer.Status == db.OfferPending {
		m.offer.Status = db.OfferRejected
		return 1, nil
	}
	return 0, nil
}
func (m *MockStorage) CancelPendingOffers(ctx context.Context, companyID int, jobType string, startDate, endDate time.Time) (int64, error) {
	return 1, nil
}
func (m *MockStorage) UpdateOfferDetails(ctx context.Context, companyID int, offerIDs []int, jobType, description, contactPerson, contactPhone string) (int64, error) {
	return int64(len(offerIDs)), nil
}
func (m *MockStorage) GetPendingOfferDetail(ctx context.Context, offerID, companyID int) (*db.OfferDetail, error) {
	return nil, sql.ErrNoRows
}

func (m *MockStorage) CreateCommitment(ctx context.Context, c *db.Commitment) error {
	c.ID = 500
	m.commitments = append(m.commitments, *c)
	return nil
}
func (m *MockStorage) DeleteCommitment(ctx context.Context, id int) error { return nil }
func (m *MockStorage) GetGuideCommitments(ctx context.Context, guideID, limit, offset int) ([]db.Commitment, error) {
	return m.commitments, nil
}
func (m *MockStorage) GetCompanyCommitments(ctx context.Context, companyID, limit, offset int) ([]db.Commitment, error) {
	return m.commitments, nil
}
func (m *MockStorage) HasOverlappingCommitment(ctx context.Context, guideID int, startDate, endDate time.Time) (bool, error) {
	for _, c := range m.commitments {
		if c.GuideID == guideID && offers.Overlaps(startDate, endDate, c.StartDate, c.EndDate) {
			return true, nil
		}
	}
	return false, nil
}
func (m *MockStorage) RateCommitmentAsGuide(ctx context.Context, commitmentID, guideID, rating int, comment string) (int64, error) {
	return m.rateRows, nil
}
func (m *MockStorage) RateCommitmentAsCompany(ctx context.Context, commitmentID, companyID, rating int, comment string) (int64, error) {
	return m.rateRows, nil
}

func (m *MockStorage) CreateSubscription(ctx context.Context, sub *db.Subscription) error {
	sub.ID = 700
	return nil
}
func (m *MockStorage) GetCompanySubscriptions(ctx context.Context, companyID int) ([]db.Subscription, error) {
	return []db.Subscription{{ID: 700, CompanyID: companyID}}, nil
}
func (m *MockStorage) HasActiveSubscription(ctx context.Context, companyID int, at time.Time) (bool, error) {
	return m.subscription, nil
}
func (m *MockStorage) AddSubscriptionAudit(ctx context.Context, a *db.SubscriptionAudit) error {
	a.ID = len(m.audits) + 1
	m.audits = append(m.audits, a)
	return nil
}
func (m *MockStorage) GetSubscriptionAudit(ctx context.Context, companyID int) ([]db.SubscriptionAudit, error) {
	out := make([]db.SubscriptionAudit, 0, len(m.audits))
	for _, a := range m.audits {
		out = append(out, *a)
	}
	return out, nil
}

type nopDispatcher struct{}

func (nopDispatcher) SendOfferCreated(ctx context.Context, n notify.Notification) error  { return nil }
func (nopDispatcher) SendOfferAccepted(ctx context.Context, n notify.Notification) error { return nil }
func (nopDispatcher) SendOfferReminder(ctx context.Context, n notify.Notification) error { return nil }

func newHandler(store *MockStorage) *handlers.Handler {
	lifecycle := offers.NewController(store, nopDispatcher{}, zap.NewNop())
	return handlers.NewHandler(store, lifecycle, zap.NewNop())
}

func withActor(req *http.Request, actor offers.Actor) *http.Request {
	return req.WithContext(handlers.ContextWithActor(req.Context(), actor))
}

var (
	companyActor = offers.Actor{ID: 10, Role: offers.RoleCompany}
	guideActor   = offers.Actor{ID: 1, Role: offers.RoleGuide}
	adminActor   = offers.Actor{ID: 99, Role: offers.RoleAdmin}
)

func TestPingHandler(t *testing.T) {
	h := newHandler(newMockStorage())

	req := httptest.NewRequest(http.MethodGet, "/api/ping", nil)
	w := httptest.NewRecorder()
	h.PingHandler(w, req)

	require.Equal(t, http.StatusOK, w.Result().StatusCode)
}

func TestCreateOfferHandler(t *testing.T) {
	store := newMockStorage()
	h := newHandler(store)

	reqBody := `{
        "guideIds": [1],
        "jobType": "City Walk",
        "description": "Walking tour of the old town",
        "startDate": "2024-06-01",
        "endDate": "2024-06-03",
        "contactPerson": "Clara",
        "contactPhone": "+49 30 1234"
    }`
	req := withActor(httptest.NewRequest(http.MethodPost, "/api/offers/new", strings.NewReader(reqBody)), companyActor)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()

	h.CreateOfferHandler(w, req)

	res := w.Result()
	defer res.Body.Close()
	body, err := io.ReadAll(res.Body)
	require.NoError(t, err)

	require.Equal(t, http.StatusOK, res.StatusCode)
	require.Contains(t, string(body), `"success":true`)
	require.Len(t, store.createdOffers, 1)
}

func TestCreateOfferHandlerNoSubscription(t *testing.T) {
	store := newMockStorage()
	store.subscription = false
	h := newHandler(store)

	req := withActor(httptest.NewRequest(http.MethodPost, "/api/offers/new", strings.NewReader(`{}`)), companyActor)
	w := httptest.NewRecorder()

	h.CreateOfferHandler(w, req)

	require.Equal(t, http.StatusForbidden, w.Result().StatusCode)
	require.Empty(t, store.createdOffers)
}

func TestCreateOfferHandlerBadDate(t *testing.T) {
	h := newHandler(newMockStorage())

	reqBody := `{"guideIds":[1],"jobType":"City Walk","startDate":"01.06.2024","endDate":"2024-06-03"}`
	req := withActor(httptest.NewRequest(http.MethodPost, "/api/offers/new", strings.NewReader(reqBody)), companyActor)
	w := httptest.NewRecorder()

	h.CreateOfferHandler(w, req)

	require.Equal(t, http.StatusBadRequest, w.Result().StatusCode)
}

func TestAcceptOfferHandler(t *testing.T) {
	store := newMockStorage()
	h := newHandler(store)

	reqBody := `{
        "guideId": 1,
        "companyId": 10,
        "jobType": "City Walk",
        "startDate": "2024-06-01",
        "endDate": "2024-06-03"
    }`
	req := withActor(httptest.NewRequest(http.MethodPost, "/api/offers/100/accept", strings.NewReader(reqBody)), guideActor)
	req = testutils.WithChiURLParams(req, map[string]string{"offerId": "100"})
	w := httptest.NewRecorder()

	h.AcceptOfferHandler(w, req)

	res := w.Result()
	defer res.Body.Close()
	body, err := io.ReadAll(res.Body)
	require.NoError(t, err)

	require.Equal(t, http.StatusOK, res.StatusCode)
	require.Contains(t, string(body), `"success":true`)
	require.Equal(t, db.OfferAccepted, store.offer.Status)
	require.Len(t, store.commitments, 1)
}

func TestAcceptOfferHandlerConflict(t *testing.T) {
	store := newMockStorage()
	store.commitments = append(store.commitments, db.Commitment{
		ID: 499, GuideID: 1, StartDate: date("2024-06-03"), EndDate: date("2024-06-05"),
	})
	h := newHandler(store)

	reqBody := `{"guideId":1,"companyId":10,"jobType":"City Walk","startDate":"2024-06-01","endDate":"2024-06-03"}`
	req := withActor(httptest.NewRequest(http.MethodPost, "/api/offers/100/accept", strings.NewReader(reqBody)), guideActor)
	req = testutils.WithChiURLParams(req, map[string]string{"offerId": "100"})
	w := httptest.NewRecorder()

	h.AcceptOfferHandler(w, req)

	res := w.Result()
	defer res.Body.Close()
	body, _ := io.ReadAll(res.Body)

	require.Equal(t, http.StatusOK, res.StatusCode)
	require.Contains(t, string(body), `"success":false`)
	require.Contains(t, string(body), "commitment in this period")
	require.Equal(t, db.OfferPending, store.offer.Status)
}

func TestRejectOfferHandler(t *testing.T) {
	store := newMockStorage()
	h := newHandler(store)

	req := withActor(httptest.NewRequest(http.MethodPost, "/api/offers/100/reject", nil), companyActor)
	req = testutils.WithChiURLParams(req, map[string]string{"offerId": "100"})
	w := httptest.NewRecorder()

	h.RejectOfferHandler(w, req)

	body, _ := io.ReadAll(w.Result().Body)
	require.Contains(t, string(body), `"success":true`)
	require.Equal(t, db.OfferRejected, store.offer.Status)
}

func TestGetMyOffersHandler(t *testing.T) {
	h := newHandler(newMockStorage())

	req := withActor(httptest.NewRequest(http.MethodGet, "/api/offers/my", nil), guideActor)
	w := httptest.NewRecorder()

	h.GetMyOffersHandler(w, req)

	res := w.Result()
	defer res.Body.Close()
	body, _ := io.ReadAll(res.Body)

	require.Equal(t, http.StatusOK, res.StatusCode)
	require.Contains(t, string(body), "City Walk")
}

func TestCheckGuideAvailabilityHandler(t *testing.T) {
	store := newMockStorage()
	store.commitments = append(store.commitments, db.Commitment{
		ID: 499, GuideID: 1, StartDate: date("2024-06-03"), EndDate: date("2024-06-05"),
	})
	h := newHandler(store)

	req := withActor(httptest.NewRequest(http.MethodGet, "/api/guides/1/availability?start=2024-06-01&end=2024-06-03", nil), companyActor)
	req = testutils.WithChiURLParams(req, map[string]string{"guideId": "1"})
	w := httptest.NewRecorder()

	h.CheckGuideAvailabilityHandler(w, req)

	res := w.Result()
	defer res.Body.Close()
	body, _ := io.ReadAll(res.Body)

	require.Equal(t, http.StatusOK, res.StatusCode)
	require.Contains(t, string(body), `"available":false`)
}

func TestRateCommitmentHandler(t *testing.T) {
	store := newMockStorage()
	h := newHandler(store)

	req := withActor(httptest.NewRequest(http.MethodPost, "/api/commitments/500/rating", strings.NewReader(`{"rating":5,"comment":"great"}`)), guideActor)
	req = testutils.WithChiURLParams(req, map[string]string{"commitmentId": "500"})
	w := httptest.NewRecorder()

	h.RateCommitmentHandler(w, req)

	require.Equal(t, http.StatusOK, w.Result().StatusCode)
}

func TestRateCommitmentHandlerNotRateable(t *testing.T) {
	store := newMockStorage()
	store.rateRows = 0
	h := newHandler(store)

	req := withActor(httptest.NewRequest(http.MethodPost, "/api/commitments/500/rating", strings.NewReader(`{"rating":5}`)), guideActor)
	req = testutils.WithChiURLParams(req, map[string]string{"commitmentId": "500"})
	w := httptest.NewRecorder()

	h.RateCommitmentHandler(w, req)

	require.Equal(t, http.StatusConflict, w.Result().StatusCode)
}

func TestCreateSubscriptionHandler(t *testing.T) {
	store := newMockStorage()
	h := newHandler(store)

	reqBody := `{"companyId":10,"startDate":"2024-01-01","endDate":"2024-12-31","note":"annual plan"}`
	req := withActor(httptest.NewRequest(http.MethodPost, "/api/subscriptions/new", strings.NewReader(reqBody)), adminActor)
	w := httptest.NewRecorder()

	h.CreateSubscriptionHandler(w, req)

	require.Equal(t, http.StatusOK, w.Result().StatusCode)
	require.Len(t, store.audits, 1)
	require.Equal(t, "created", store.audits[0].Action)
	require.Equal(t, "admin:99", store.audits[0].Actor)
}

func TestGetGuideHandler(t *testing.T) {
	h := newHandler(newMockStorage())

	req := httptest.NewRequest(http.MethodGet, "/api/guides/1", nil)
	req = testutils.WithChiURLParams(req, map[string]string{"guideId": "1"})
	w := httptest.NewRecorder()

	h.GetGuideHandler(w, req)

	body, _ := io.ReadAll(w.Result().Body)
	require.Equal(t, http.StatusOK, w.Result().StatusCode)
	require.Contains(t, string(body), "Greta Guide")
}
