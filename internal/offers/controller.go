package offers

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"guidehire/db"
	"guidehire/internal/notify"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// Actor is the authenticated caller of a lifecycle operation. Identity is
// always passed in explicitly, never read from ambient state.
type Actor struct {
	ID   int
	Role string
}

const (
	RoleGuide   = "guide"
	RoleCompany = "company"
	RoleAdmin   = "admin"
)

// Result is the entire caller-facing contract of every lifecycle operation.
// Success is the sole authoritative signal for whether durable state changed;
// the message is the only error discriminator.
type Result struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// Store is the slice of storage the lifecycle controller needs.
type Store interface {
	GetGuide(ctx context.Context, id int) (*db.Guide, error)
	GetCompany(ctx context.Context, id int) (*db.Company, error)

	CreateOffers(ctx context.Context, offers []*db.Offer) error
	GetOffer(ctx context.Context, id int) (*db.Offer, error)
	FindCampaignID(ctx context.Context, companyID int, jobType string, startDate, endDate time.Time) (string, error)
	AcceptOfferIfPending(ctx context.Context, offerID, guideID int) (int64, error)
	RejectOfferIfPending(ctx context.Context, offerID, companyID int) (int64, error)
	GuideRejectOfferIfPending(ctx context.Context, offerID, guideID int) (int64, error)
	CancelPendingOffers(ctx context.Context, companyID int, jobType string, startDate, endDate time.Time) (int64, error)
	UpdateOfferDetails(ctx context.Context, companyID int, offerIDs []int, jobType, description, contactPerson, contactPhone string) (int64, error)
	GetPendingOfferDetail(ctx context.Context, offerID, companyID int) (*db.OfferDetail, error)

	CreateCommitment(ctx context.Context, c *db.Commitment) error
	DeleteCommitment(ctx context.Context, id int) error
	HasOverlappingCommitment(ctx context.Context, guideID int, startDate, endDate time.Time) (bool, error)
}

// Controller orchestrates offer lifecycle transitions. It holds no state of
// its own; all durable state lives behind Store.
type Controller struct {
	store  Store
	mail   notify.Dispatcher
	logger *zap.Logger
}

func NewController(store Store, mail notify.Dispatcher, logger *zap.Logger) *Controller {
	return &Controller{store: store, mail: mail, logger: logger}
}

func fail(err error) Result {
	return Result{Success: false, Message: err.Error()}
}

// CreateOffer inserts one pending offer per selected guide under a fresh
// campaign id, then notifies the guides best-effort.
func (c *Controller) CreateOffer(ctx context.Context, actor Actor, in CreateOfferInput) Result {
	if actor.Role != RoleCompany {
		return fail(&AuthorizationError{Reason: "only companies can send offers"})
	}
	if err := in.validate(); err != nil {
		return fail(err)
	}
	return c.createCampaignOffers(ctx, actor, in, uuid.NewString())
}

// AddGuidesToOfferCampaign behaves exactly like CreateOffer but attaches the
// new rows to an existing campaign when the (job type, dates) tuple matches
// one the company already sent.
func (c *Controller) AddGuidesToOfferCampaign(ctx context.Context, actor Actor, in CreateOfferInput) Result {
	if actor.Role != RoleCompany {
		return fail(&AuthorizationError{Reason: "only companies can send offers"})
	}
	if err := in.validate(); err != nil {
		return fail(err)
	}

	campaignID, err := c.store.FindCampaignID(ctx, actor.ID, in.JobType, in.StartDate, in.EndDate)
	if err != nil {
		return fail(&PersistenceError{Reason: "could not look up the offer campaign"})
	}
	if campaignID == "" {
		campaignID = uuid.NewString()
	}
	return c.createCampaignOffers(ctx, actor, in, campaignID)
}

func (c *Controller) createCampaignOffers(ctx context.Context, actor Actor, in CreateOfferInput, campaignID string) Result {
	rows := make([]*db.Offer, 0, len(in.GuideIDs))
	for _, guideID := range in.GuideIDs {
		rows = append(rows, &db.Offer{
			CampaignID:    campaignID,
			GuideID:       guideID,
			CompanyID:     actor.ID,
			JobType:       in.JobType,
			Description:   in.Description,
			StartDate:     in.StartDate,
			EndDate:       in.EndDate,
			Status:        db.OfferPending,
			ContactPerson: in.ContactPerson,
			ContactPhone:  in.ContactPhone,
		})
	}

	if err := c.store.CreateOffers(ctx, rows); err != nil {
		c.logger.Error("offer insert failed", zap.Error(err))
		return fail(&PersistenceError{Reason: "could not save the offers, please try again"})
	}
	c.logger.Info("offers created",
		zap.String("campaign_id", campaignID),
		zap.Int("company_id", actor.ID),
		zap.Int("guides", len(in.GuideIDs)))

	notified := c.notifyGuides(ctx, actor.ID, in)
	if !notified {
		return Result{Success: true, Message: "offers created, but the guides could not be notified"}
	}
	return Result{Success: true, Message: "offers created and guides notified"}
}

// notifyGuides fans out offer-created mail to every guide with an email
// address. All sends are started and all are awaited before returning; a
// failed send is logged and never fails the operation. The return value only
// reports whether the recipient lookups themselves worked.
func (c *Controller) notifyGuides(ctx context.Context, companyID int, in CreateOfferInput) bool {
	company, err := c.store.GetCompany(ctx, companyID)
	if err != nil {
		c.logger.Warn("company lookup for notification failed", zap.Int("company_id", companyID), zap.Error(err))
		return false
	}

	lookupsOK := true
	var recipients []*db.Guide
	for _, guideID := range in.GuideIDs {
		guide, err := c.store.GetGuide(ctx, guideID)
		if err != nil {
			c.logger.Warn("guide lookup for notification failed", zap.Int("guide_id", guideID), zap.Error(err))
			lookupsOK = false
			continue
		}
		if guide.Email == "" {
			continue
		}
		recipients = append(recipients, guide)
	}

	g := new(errgroup.Group)
	for _, guide := range recipients {
		guide := guide
		g.Go(func() error {
			err := c.mail.SendOfferCreated(ctx, notify.Notification{
				RecipientEmail:  guide.Email,
				RecipientName:   guide.Name,
				CounterpartName: company.Name,
				JobType:         in.JobType,
				StartDate:       in.StartDate,
				EndDate:         in.EndDate,
				ContactPerson:   in.ContactPerson,
				ContactPhone:    in.ContactPhone,
			})
			if err != nil {
				c.logger.Warn("offer-created mail failed", zap.Int("guide_id", guide.ID), zap.Error(err))
			}
			return nil
		})
	}
	_ = g.Wait()
	return lookupsOK
}

// AcceptOffer runs the two-step accept transition: the commitment row is
// created first, then the offer is flipped to accepted with a conditional
// update. If the second step fails or matches no row, the commitment is
// deleted again so the pair stays consistent.
func (c *Controller) AcceptOffer(ctx context.Context, actor Actor, in AcceptOfferInput) Result {
	if actor.Role != RoleGuide || actor.ID != in.GuideID {
		return fail(&AuthorizationError{Reason: "you can only accept offers addressed to you"})
	}

	// Cheap, side-effect-free conflict check before touching the offer row.
	overlap, err := c.store.HasOverlappingCommitment(ctx, in.GuideID, in.StartDate, in.EndDate)
	if err != nil {
		return fail(c.acceptStoreError(err, "could not check your availability"))
	}
	if overlap {
		return fail(&ConflictError{Reason: "you already have a commitment in this period; the offer must be rejected instead"})
	}

	offer, err := c.store.GetOffer(ctx, in.OfferID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return fail(&NotFoundError{Reason: "offer not found"})
		}
		return fail(c.acceptStoreError(err, "could not load the offer"))
	}
	if offer.Status != db.OfferPending {
		return fail(&StateError{Reason: "offer is already resolved and can no longer be accepted"})
	}
	if offer.GuideID != actor.ID {
		return fail(&AuthorizationError{Reason: "this offer is addressed to another guide"})
	}

	// Commitment first. An orphan commitment has a well-defined, idempotent
	// undo; an accepted offer without a commitment does not.
	commitment := &db.Commitment{
		OfferID:   offer.ID,
		GuideID:   offer.GuideID,
		CompanyID: offer.CompanyID,
		JobType:   offer.JobType,
		StartDate: offer.StartDate,
		EndDate:   offer.EndDate,
	}
	if err := c.store.CreateCommitment(ctx, commitment); err != nil {
		c.logger.Error("commitment insert failed", zap.Int("offer_id", offer.ID), zap.Error(err))
		return fail(c.acceptStoreError(err, "could not save the commitment, nothing was booked"))
	}

	rows, err := c.store.AcceptOfferIfPending(ctx, offer.ID, actor.ID)
	if err != nil {
		c.rollbackCommitment(ctx, commitment.ID)
		return fail(c.acceptStoreError(err, "could not update the offer, the booking was rolled back"))
	}
	if rows == 0 {
		// Lost the race: someone resolved the offer between our read and
		// the conditional update.
		c.rollbackCommitment(ctx, commitment.ID)
		return fail(&StateError{Reason: "offer is no longer pending, the booking was rolled back"})
	}

	c.logger.Info("offer accepted",
		zap.Int("offer_id", offer.ID),
		zap.Int("guide_id", actor.ID),
		zap.Int("commitment_id", commitment.ID))

	if c.notifyCompanyAccepted(ctx, offer) {
		return Result{Success: true, Message: "offer accepted and company notified"}
	}
	return Result{Success: true, Message: "offer accepted, but the company could not be notified"}
}

// acceptStoreError maps store failures in the accept path, giving the
// permission-denied kind its own message.
func (c *Controller) acceptStoreError(err error, reason string) error {
	if db.IsPermissionDenied(err) {
		return &PersistenceError{Reason: "the booking store denied access, please contact support"}
	}
	return &PersistenceError{Reason: reason}
}

func (c *Controller) rollbackCommitment(ctx context.Context, commitmentID int) {
	if err := c.store.DeleteCommitment(ctx, commitmentID); err != nil {
		c.logger.Error("compensating commitment delete failed",
			zap.Int("commitment_id", commitmentID), zap.Error(err))
		return
	}
	c.logger.Info("commitment rolled back", zap.Int("commitment_id", commitmentID))
}

func (c *Controller) notifyCompanyAccepted(ctx context.Context, offer *db.Offer) bool {
	company, err := c.store.GetCompany(ctx, offer.CompanyID)
	if err != nil {
		c.logger.Warn("company lookup for notification failed", zap.Int("company_id", offer.CompanyID), zap.Error(err))
		return false
	}
	guide, err := c.store.GetGuide(ctx, offer.GuideID)
	if err != nil {
		c.logger.Warn("guide lookup for notification failed", zap.Int("guide_id", offer.GuideID), zap.Error(err))
		return false
	}
	if company.Email == "" {
		return false
	}
	err = c.mail.SendOfferAccepted(ctx, notify.Notification{
		RecipientEmail:  company.Email,
		RecipientName:   company.Name,
		CounterpartName: guide.Name,
		JobType:         offer.JobType,
		StartDate:       offer.StartDate,
		EndDate:         offer.EndDate,
	})
	if err != nil {
		c.logger.Warn("offer-accepted mail failed", zap.Int("offer_id", offer.ID), zap.Error(err))
		return false
	}
	return true
}

// RejectOffer rejects a pending offer on behalf of the owning company.
func (c *Controller) RejectOffer(ctx context.Context, actor Actor, offerID int) Result {
	if actor.Role != RoleCompany {
		return fail(&AuthorizationError{Reason: "only companies can reject an offer this way"})
	}
	rows, err := c.store.RejectOfferIfPending(ctx, offerID, actor.ID)
	if err != nil {
		c.logger.Error("offer reject failed", zap.Int("offer_id", offerID), zap.Error(err))
		return fail(&PersistenceError{Reason: "could not update the offer, please try again"})
	}
	if rows == 0 {
		return fail(&StateError{Reason: "offer not found, not yours, or no longer pending"})
	}
	c.logger.Info("offer rejected by company", zap.Int("offer_id", offerID), zap.Int("company_id", actor.ID))
	return Result{Success: true, Message: "offer rejected"}
}

// GuideRejectOffer rejects a pending offer on behalf of the addressed guide.
func (c *Controller) GuideRejectOffer(ctx context.Context, actor Actor, offerID int) Result {
	if actor.Role != RoleGuide {
		return fail(&AuthorizationError{Reason: "only guides can reject an offer this way"})
	}
	rows, err := c.store.GuideRejectOfferIfPending(ctx, offerID, actor.ID)
	if err != nil {
		c.logger.Error("offer reject failed", zap.Int("offer_id", offerID), zap.Error(err))
		return fail(&PersistenceError{Reason: "could not update the offer, please try again"})
	}
	if rows == 0 {
		return fail(&StateError{Reason: "offer not found, not yours, or no longer pending"})
	}
	c.logger.Info("offer rejected by guide", zap.Int("offer_id", offerID), zap.Int("guide_id", actor.ID))
	return Result{Success: true, Message: "offer rejected"}
}

// CancelPendingOffersForJob rejects every still-pending offer of a campaign,
// matched by the (job type, date range) tuple. Accepted offers in the same
// campaign stay accepted.
func (c *Controller) CancelPendingOffersForJob(ctx context.Context, actor Actor, in CancelCampaignInput) Result {
	if actor.Role != RoleCompany {
		return fail(&AuthorizationError{Reason: "only companies can cancel an offer campaign"})
	}
	if err := in.validate(); err != nil {
		return fail(err)
	}
	rows, err := c.store.CancelPendingOffers(ctx, actor.ID, in.JobType, in.StartDate, in.EndDate)
	if err != nil {
		c.logger.Error("campaign cancel failed", zap.Int("company_id", actor.ID), zap.Error(err))
		return fail(&PersistenceError{Reason: "could not cancel the offers, please try again"})
	}
	c.logger.Info("campaign cancelled",
		zap.Int("company_id", actor.ID),
		zap.String("job_type", in.JobType),
		zap.Int64("offers", rows))
	if rows == 0 {
		return Result{Success: true, Message: "no pending offers matched this campaign"}
	}
	return Result{Success: true, Message: fmt.Sprintf("%d pending offers cancelled", rows)}
}

// UpdateOfferDetails edits descriptive fields on the company's offers. Status
// is not filtered, so accepted offers can be corrected too; dates and guides
// cannot be changed here.
func (c *Controller) UpdateOfferDetails(ctx context.Context, actor Actor, in UpdateOfferDetailsInput) Result {
	if actor.Role != RoleCompany {
		return fail(&AuthorizationError{Reason: "only companies can edit offers"})
	}
	if err := in.validate(); err != nil {
		return fail(err)
	}
	rows, err := c.store.UpdateOfferDetails(ctx, actor.ID, in.OfferIDs, in.JobType, in.Description, in.ContactPerson, in.ContactPhone)
	if err != nil {
		c.logger.Error("offer edit failed", zap.Int("company_id", actor.ID), zap.Error(err))
		return fail(&PersistenceError{Reason: "could not update the offers, please try again"})
	}
	if rows == 0 {
		return fail(&NotFoundError{Reason: "none of the offers were found or yours to edit"})
	}
	// Guides are not re-notified of the edit.
	c.logger.Info("offer details updated",
		zap.Int("company_id", actor.ID),
		zap.Ints("offer_ids", in.OfferIDs),
		zap.Int64("rows", rows))
	return Result{Success: true, Message: fmt.Sprintf("%d offers updated", rows)}
}

// RemindOffer re-sends the offer mail for a still-pending offer. Unlike the
// other operations, a failed send fails the call: the send is its purpose.
func (c *Controller) RemindOffer(ctx context.Context, actor Actor, offerID int) Result {
	if actor.Role != RoleCompany {
		return fail(&AuthorizationError{Reason: "only companies can send offer reminders"})
	}

	detail, err := c.store.GetPendingOfferDetail(ctx, offerID, actor.ID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return fail(&NotFoundError{Reason: "could not find offer or it is no longer pending"})
		}
		c.logger.Error("offer detail fetch failed", zap.Int("offer_id", offerID), zap.Error(err))
		return fail(&PersistenceError{Reason: "could not load the offer, please try again"})
	}
	if detail.GuideEmail == "" || detail.GuideName == "" || detail.CompanyName == "" ||
		detail.JobType == "" || detail.StartDate.IsZero() || detail.EndDate.IsZero() {
		return fail(&ValidationError{Reason: "offer record is missing fields required for the reminder email"})
	}

	err = c.mail.SendOfferReminder(ctx, notify.Notification{
		RecipientEmail:  detail.GuideEmail,
		RecipientName:   detail.GuideName,
		CounterpartName: detail.CompanyName,
		JobType:         detail.JobType,
		StartDate:       detail.StartDate,
		EndDate:         detail.EndDate,
		ContactPerson:   detail.ContactPerson,
		ContactPhone:    detail.ContactPhone,
	})
	if err != nil {
		c.logger.Warn("reminder mail failed", zap.Int("offer_id", offerID), zap.Error(err))
		return Result{Success: false, Message: "could not send the reminder email"}
	}
	c.logger.Info("reminder sent", zap.Int("offer_id", offerID))
	return Result{Success: true, Message: "reminder sent"}
}
