package db

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
)

type Storage struct {
	db *sqlx.DB
}

func NewStorage(db *sqlx.DB) *Storage {
	return &Storage{db: db}
}

// Offer statuses
const (
	OfferPending  = "pending"
	OfferAccepted = "accepted"
	OfferRejected = "rejected"
)

// IsPermissionDenied reports whether err is a Postgres permission error
// (insufficient_privilege). Callers treat this store failure kind separately
// from other persistence errors.
func IsPermissionDenied(err error) bool {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Code == "42501"
	}
	return false
}

// Guide
type Guide struct {
	ID        int       `db:"id" json:"id"`
	Name      string    `db:"name" json:"name"`
	Email     string    `db:"email" json:"email"`
	Phone     string    `db:"phone" json:"phone"`
	Languages string    `db:"languages" json:"languages"`
	CreatedAt time.Time `db:"created_at" json:"createdAt"`
	UpdatedAt time.Time `db:"updated_at" json:"updatedAt"`
}

func (s *Storage) CreateGuide(ctx context.Context, g *Guide) error {
	query := `
        INSERT INTO guides (name, email, phone, languages)
        VALUES ($1, $2, $3, $4)
        RETURNING id, created_at, updated_at`
	return s.db.QueryRowContext(ctx, query, g.Name, g.Email, g.Phone, g.Languages).
		Scan(&g.ID, &g.CreatedAt, &g.UpdatedAt)
}

func (s *Storage) GetGuide(ctx context.Context, id int) (*Guide, error) {
	g := &Guide{}
	query := `SELECT * FROM guides WHERE id=$1`
	err := s.db.GetContext(ctx, g, query, id)
	return g, err
}

func (s *Storage) GetGuides(ctx context.Context, limit, offset int) ([]Guide, error) {
	guides := []Guide{}
	query := `SELECT * FROM guides ORDER BY name ASC LIMIT $1 OFFSET $2`
	err := s.db.SelectContext(ctx, &guides, query, limit, offset)
	return guides, err
}

func (s *Storage) UpdateGuide(ctx context.Context, g *Guide) error {
	query := `
        UPDATE guides
        SET name=$1, email=$2, phone=$3, languages=$4, updated_at=NOW()
        WHERE id=$5`
	_, err := s.db.ExecContext(ctx, query, g.Name, g.Email, g.Phone, g.Languages, g.ID)
	return err
}

func (s *Storage) DeleteGuide(ctx context.Context, id int) error {
	query := `DELETE FROM guides WHERE id=$1`
	_, err := s.db.ExecContext(ctx, query, id)
	return err
}

// Company
type Company struct {
	ID            int       `db:"id" json:"id"`
	Name          string    `db:"name" json:"name"`
	Email         string    `db:"email" json:"email"`
	ContactPerson string    `db:"contact_person" json:"contactPerson"`
	Phone         string    `db:"phone" json:"phone"`
	CreatedAt     time.Time `db:"created_at" json:"createdAt"`
	UpdatedAt     time.Time `db:"updated_at" json:"updatedAt"`
}

func (s *Storage) CreateCompany(ctx context.Context, c *Company) error {
	query := `
        INSERT INTO companies (name, email, contact_person, phone)
        VALUES ($1, $2, $3, $4)
        RETURNING id, created_at, updated_at`
	return s.db.QueryRowContext(ctx, query, c.Name, c.Email, c.ContactPerson, c.Phone).
		Scan(&c.ID, &c.CreatedAt, &c.UpdatedAt)
}

func (s *Storage) GetCompany(ctx context.Context, id int) (*Company, error) {
	c := &Company{}
	query := `SELECT * FROM companies WHERE id=$1`
	err := s.db.GetContext(ctx, c, query, id)
	return c, err
}

func (s *Storage) GetCompanies(ctx context.Context, limit, offset int) ([]Company, error) {
	companies := []Company{}
	query := `SELECT * FROM companies ORDER BY name ASC LIMIT $1 OFFSET $2`
	err := s.db.SelectContext(ctx, &companies, query, limit, offset)
	return companies, err
}

func (s *Storage) UpdateCompany(ctx context.Context, c *Company) error {
	query := `
        UPDATE companies
        SET name=$1, email=$2, contact_person=$3, phone=$4, updated_at=NOW()
        WHERE id=$5`
	_, err := s.db.ExecContext(ctx, query, c.Name, c.Email, c.ContactPerson, c.Phone, c.ID)
	return err
}

func (s *Storage) DeleteCompany(ctx context.Context, id int) error {
	query := `DELETE FROM companies WHERE id=$1`
	_, err := s.db.ExecContext(ctx, query, id)
	return err
}

// Offer
type Offer struct {
	ID            int       `db:"id" json:"id"`
	CampaignID    string    `db:"campaign_id" json:"campaignId"`
	GuideID       int       `db:"guide_id" json:"guideId"`
	CompanyID     int       `db:"company_id" json:"companyId"`
	JobType       string    `db:"job_type" json:"jobType"`
	Description   string    `db:"description" json:"description"`
	StartDate     time.Time `db:"start_date" json:"startDate"`
	EndDate       time.Time `db:"end_date" json:"endDate"`
	Status        string    `db:"status" json:"status"`
	ContactPerson string    `db:"contact_person" json:"contactPerson"`
	ContactPhone  string    `db:"contact_phone" json:"contactPhone"`
	CreatedAt     time.Time `db:"created_at" json:"createdAt"`
	UpdatedAt     time.Time `db:"updated_at" json:"-"`
}

// CreateOffers inserts one offer row per guide in a single transaction. Either
// every row of the campaign lands or none does.
func (s *Storage) CreateOffers(ctx context.Context, offers []*Offer) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	query := `
        INSERT INTO offers
            (campaign_id, guide_id, company_id, job_type, description, start_date, end_date, status, contact_person, contact_phone)
        VALUES
            ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
        RETURNING id, created_at`
	for _, o := range offers {
		err := tx.QueryRowContext(ctx, query,
			o.CampaignID, o.GuideID, o.CompanyID, o.JobType, o.Description,
			o.StartDate, o.EndDate, o.Status, o.ContactPerson, o.ContactPhone).
			Scan(&o.ID, &o.CreatedAt)
		if err != nil {
			return err
		}
	}
	return tx.Commit()
}

func (s *Storage) GetOffer(ctx context.Context, id int) (*Offer, error) {
	o := &Offer{}
	query := `SELECT * FROM offers WHERE id=$1`
	err := s.db.GetContext(ctx, o, query, id)
	return o, err
}

func (s *Storage) GetGuideOffers(ctx context.Context, guideID, limit, offset int) ([]Offer, error) {
	offers := []Offer{}
	query := `
        SELECT * FROM offers
        WHERE guide_id = $1
        ORDER BY created_at DESC
        LIMIT $2 OFFSET $3`
	err := s.db.SelectContext(ctx, &offers, query, guideID, limit, offset)
	return offers, err
}

func (s *Storage) GetCompanyOffers(ctx context.Context, companyID, limit, offset int) ([]Offer, error) {
	offers := []Offer{}
	query := `
        SELECT * FROM offers
        WHERE company_id = $1
        ORDER BY created_at DESC
        LIMIT $2 OFFSET $3`
	err := s.db.SelectContext(ctx, &offers, query, companyID, limit, offset)
	return offers, err
}

func (s *Storage) GetCampaignOffers(ctx context.Context, companyID int, campaignID string) ([]Offer, error) {
	offers := []Offer{}
	query := `
        SELECT * FROM offers
        WHERE company_id = $1 AND campaign_id = $2
        ORDER BY id ASC`
	err := s.db.SelectContext(ctx, &offers, query, companyID, campaignID)
	return offers, err
}

// FindCampaignID returns the campaign id of any existing offer matching the
// (company, job type, date range) tuple, or "" when no such campaign exists.
func (s *Storage) FindCampaignID(ctx context.Context, companyID int, jobType string, startDate, endDate time.Time) (string, error) {
	var campaignID string
	query := `
        SELECT campaign_id FROM offers
        WHERE company_id = $1 AND job_type = $2 AND start_date = $3 AND end_date = $4
        LIMIT 1`
	err := s.db.GetContext(ctx, &campaignID, query, companyID, jobType, startDate, endDate)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	return campaignID, err
}

// AcceptOfferIfPending flips an offer to accepted, guarded by guide ownership
// and a still-pending status. The affected-row count is the concurrency gate:
// zero rows means the offer was resolved under our feet.
func (s *Storage) AcceptOfferIfPending(ctx context.Context, offerID, guideID int) (int64, error) {
	query := `
        UPDATE offers
        SET status=$1, updated_at=NOW()
        WHERE id=$2 AND guide_id=$3 AND status=$4`
	res, err := s.db.ExecContext(ctx, query, OfferAccepted, offerID, guideID, OfferPending)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

func (s *Storage) RejectOfferIfPending(ctx context.Context, offerID, companyID int) (int64, error) {
	query := `
        UPDATE offers
        SET status=$1, updated_at=NOW()
        WHERE id=$2 AND company_id=$3 AND status=$4`
	res, err := s.db.ExecContext(ctx, query, OfferRejected, offerID, companyID, OfferPending)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

func (s *Storage) GuideRejectOfferIfPending(ctx context.Context, offerID, guideID int) (int64, error) {
	query := `
        UPDATE offers
        SET status=$1, updated_at=NOW()
        WHERE id=$2 AND guide_id=$3 AND status=$4`
	res, err := s.db.ExecContext(ctx, query, OfferRejected, offerID, guideID, OfferPending)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// CancelPendingOffers rejects every still-pending offer of a campaign matched
// by its (company, job type, date range) tuple. Accepted rows are untouched.
func (s *Storage) CancelPendingOffers(ctx context.Context, companyID int, jobType string, startDate, endDate time.Time) (int64, error) {
	query := `
        UPDATE offers
        SET status=$1, updated_at=NOW()
        WHERE company_id=$2 AND job_type=$3 AND start_date=$4 AND end_date=$5 AND status=$6`
	res, err := s.db.ExecContext(ctx, query, OfferRejected, companyID, jobType, startDate, endDate, OfferPending)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// UpdateOfferDetails edits descriptive fields on a set of offers owned by the
// company. Status is deliberately not part of the filter.
func (s *Storage) UpdateOfferDetails(ctx context.Context, companyID int, offerIDs []int, jobType, description, contactPerson, contactPhone string) (int64, error) {
	query, args, err := sqlx.In(`
        UPDATE offers
        SET job_type=?, description=?, contact_person=?, contact_phone=?, updated_at=NOW()
        WHERE company_id=? AND id IN (?)`,
		jobType, description, contactPerson, contactPhone, companyID, offerIDs)
	if err != nil {
		return 0, err
	}
	res, err := s.db.ExecContext(ctx, s.db.Rebind(query), args...)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// OfferDetail is an offer joined with the guide and company rows needed for
// the reminder email template.
type OfferDetail struct {
	Offer
	GuideName    string `db:"guide_name" json:"guideName"`
	GuideEmail   string `db:"guide_email" json:"guideEmail"`
	CompanyName  string `db:"company_name" json:"companyName"`
	CompanyEmail string `db:"company_email" json:"companyEmail"`
}

func (s *Storage) GetPendingOfferDetail(ctx context.Context, offerID, companyID int) (*OfferDetail, error) {
	d := &OfferDetail{}
	query := `
        SELECT o.id, o.campaign_id, o.guide_id, o.company_id, o.job_type, o.description,
               o.start_date, o.end_date, o.status, o.contact_person, o.contact_phone,
               o.created_at, o.updated_at,
               g.name AS guide_name, g.email AS guide_email,
               c.name AS company_name, c.email AS company_email
        FROM offers o
        JOIN guides g ON o.guide_id = g.id
        JOIN companies c ON o.company_id = c.id
        WHERE o.id = $1 AND o.company_id = $2 AND o.status = $3`
	err := s.db.GetContext(ctx, d, query, offerID, companyID, OfferPending)
	return d, err
}

// Commitment
type Commitment struct {
	ID             int            `db:"id" json:"id"`
	OfferID        int            `db:"offer_id" json:"offerId"`
	GuideID        int            `db:"guide_id" json:"guideId"`
	CompanyID      int            `db:"company_id" json:"companyId"`
	JobType        string         `db:"job_type" json:"jobType"`
	StartDate      time.Time      `db:"start_date" json:"startDate"`
	EndDate        time.Time      `db:"end_date" json:"endDate"`
	GuideRating    sql.NullInt64  `db:"guide_rating" json:"guideRating"`
	CompanyRating  sql.NullInt64  `db:"company_rating" json:"companyRating"`
	GuideComment   sql.NullString `db:"guide_comment" json:"guideComment"`
	CompanyComment sql.NullString `db:"company_comment" json:"companyComment"`
	CreatedAt      time.Time      `db:"created_at" json:"createdAt"`
}

func (s *Storage) CreateCommitment(ctx context.Context, c *Commitment) error {
	query := `
        INSERT INTO commitments
            (offer_id, guide_id, company_id, job_type, start_date, end_date)
        VALUES
            ($1, $2, $3, $4, $5, $6)
        RETURNING id, created_at`
	return s.db.QueryRowContext(ctx, query,
		c.OfferID, c.GuideID, c.CompanyID, c.JobType, c.StartDate, c.EndDate).
		Scan(&c.ID, &c.CreatedAt)
}

func (s *Storage) GetCommitment(ctx context.Context, id int) (*Commitment, error) {
	c := &Commitment{}
	query := `SELECT * FROM commitments WHERE id=$1`
	err := s.db.GetContext(ctx, c, query, id)
	return c, err
}

func (s *Storage) DeleteCommitment(ctx context.Context, id int) error {
	query := `DELETE FROM commitments WHERE id=$1`
	_, err := s.db.ExecContext(ctx, query, id)
	return err
}

func (s *Storage) GetGuideCommitments(ctx context.Context, guideID, limit, offset int) ([]Commitment, error) {
	commitments := []Commitment{}
	query := `
        SELECT * FROM commitments
        WHERE guide_id = $1
        ORDER BY start_date DESC
        LIMIT $2 OFFSET $3`
	err := s.db.SelectContext(ctx, &commitments, query, guideID, limit, offset)
	return commitments, err
}

func (s *Storage) GetCompanyCommitments(ctx context.Context, companyID, limit, offset int) ([]Commitment, error) {
	commitments := []Commitment{}
	query := `
        SELECT * FROM commitments
        WHERE company_id = $1
        ORDER BY start_date DESC
        LIMIT $2 OFFSET $3`
	err := s.db.SelectContext(ctx, &commitments, query, companyID, limit, offset)
	return commitments, err
}

// HasOverlappingCommitment reports whether the guide already holds a
// commitment overlapping [startDate, endDate]. Both ends count: a commitment
// ending on startDate is an overlap.
func (s *Storage) HasOverlappingCommitment(ctx context.Context, guideID int, startDate, endDate time.Time) (bool, error) {
	var count int
	query := `
        SELECT COUNT(1) FROM commitments
        WHERE guide_id = $1 AND start_date <= $3 AND end_date >= $2`
	err := s.db.GetContext(ctx, &count, query, guideID, startDate, endDate)
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// RateCommitmentAsGuide records the guide's rating of the company on a
// finished commitment. One shot: a second write matches zero rows.
func (s *Storage) RateCommitmentAsGuide(ctx context.Context, commitmentID, guideID, rating int, comment string) (int64, error) {
	query := `
        UPDATE commitments
        SET guide_rating=$1, guide_comment=$2
        WHERE id=$3 AND guide_id=$4 AND guide_rating IS NULL AND end_date < CURRENT_DATE`
	res, err := s.db.ExecContext(ctx, query, rating, comment, commitmentID, guideID)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

func (s *Storage) RateCommitmentAsCompany(ctx context.Context, commitmentID, companyID, rating int, comment string) (int64, error) {
	query := `
        UPDATE commitments
        SET company_rating=$1, company_comment=$2
        WHERE id=$3 AND company_id=$4 AND company_rating IS NULL AND end_date < CURRENT_DATE`
	res, err := s.db.ExecContext(ctx, query, rating, comment, commitmentID, companyID)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// Subscription
type Subscription struct {
	ID        int       `db:"id" json:"id"`
	CompanyID int       `db:"company_id" json:"companyId"`
	StartDate time.Time `db:"start_date" json:"startDate"`
	EndDate   time.Time `db:"end_date" json:"endDate"`
	CreatedAt time.Time `db:"created_at" json:"createdAt"`
}

func (s *Storage) CreateSubscription(ctx context.Context, sub *Subscription) error {
	query := `
        INSERT INTO subscriptions (company_id, start_date, end_date)
        VALUES ($1, $2, $3)
        RETURNING id, created_at`
	return s.db.QueryRowContext(ctx, query, sub.CompanyID, sub.StartDate, sub.EndDate).
		Scan(&sub.ID, &sub.CreatedAt)
}

func (s *Storage) GetCompanySubscriptions(ctx context.Context, companyID int) ([]Subscription, error) {
	subs := []Subscription{}
	query := `
        SELECT * FROM subscriptions
        WHERE company_id = $1
        ORDER BY start_date DESC`
	err := s.db.SelectContext(ctx, &subs, query, companyID)
	return subs, err
}

func (s *Storage) HasActiveSubscription(ctx context.Context, companyID int, at time.Time) (bool, error) {
	var count int
	query := `
        SELECT COUNT(1) FROM subscriptions
        WHERE company_id = $1 AND start_date <= $2 AND end_date >= $2`
	err := s.db.GetContext(ctx, &count, query, companyID, at)
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// SubscriptionAudit is the append-only trail of administrative subscription
// changes.
type SubscriptionAudit struct {
	ID             int       `db:"id" json:"id"`
	SubscriptionID int       `db:"subscription_id" json:"subscriptionId"`
	CompanyID      int       `db:"company_id" json:"companyId"`
	Action         string    `db:"action" json:"action"`
	Actor          string    `db:"actor" json:"actor"`
	Note           string    `db:"note" json:"note"`
	CreatedAt      time.Time `db:"created_at" json:"createdAt"`
}

func (s *Storage) AddSubscriptionAudit(ctx context.Context, a *SubscriptionAudit) error {
	query := `
        INSERT INTO subscription_audit (subscription_id, company_id, action, actor, note)
        VALUES ($1, $2, $3, $4, $5)
        RETURNING id, created_at`
	return s.db.QueryRowContext(ctx, query,
		a.SubscriptionID, a.CompanyID, a.Action, a.Actor, a.Note).
		Scan(&a.ID, &a.CreatedAt)
}

func (s *Storage) GetSubscriptionAudit(ctx context.Context, companyID int) ([]SubscriptionAudit, error) {
	entries := []SubscriptionAudit{}
	query := `
        SELECT * FROM subscription_audit
        WHERE company_id = $1
        ORDER BY created_at DESC`
	err := s.db.SelectContext(ctx, &entries, query, companyID)
	return entries, err
}
