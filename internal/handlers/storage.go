package handlers

import (
	"context"
	"time"

	"guidehire/db"
)

// StorageInterface lists the storage calls the HTTP handlers use directly.
// Lifecycle mutations go through the offers controller instead.
type StorageInterface interface {
	CreateGuide(ctx context.Context, g *db.Guide) error
	GetGuide(ctx context.Context, id int) (*db.Guide, error)
	GetGuides(ctx context.Context, limit, offset int) ([]db.Guide, error)
	UpdateGuide(ctx context.Context, g *db.Guide) error
	DeleteGuide(ctx context.Context, id int) error

	CreateCompany(ctx context.Context, c *db.Company) error
	GetCompany(ctx context.Context, id int) (*db.Company, error)
	GetCompanies(ctx context.Context, limit, offset int) ([]db.Company, error)
	UpdateCompany(ctx context.Context, c *db.Company) error
	DeleteCompany(ctx context.Context, id int) error

	GetGuideOffers(ctx context.Context, guideID, limit, offset int) ([]db.Offer, error)
	GetCompanyOffers(ctx context.Context, companyID, limit, offset int) ([]db.Offer, error)
	GetCampaignOffers(ctx context.Context, companyID int, campaignID string) ([]db.Offer, error)

	GetGuideCommitments(ctx context.Context, guideID, limit, offset int) ([]db.Commitment, error)
	GetCompanyCommitments(ctx context.Context, companyID, limit, offset int) ([]db.Commitment, error)
	RateCommitmentAsGuide(ctx context.Context, commitmentID, guideID, rating int, comment string) (int64, error)
	RateCommitmentAsCompany(ctx context.Context, commitmentID, companyID, rating int, comment string) (int64, error)

	CreateSubscription(ctx context.Context, sub *db.Subscription) error
	GetCompanySubscriptions(ctx context.Context, companyID int) ([]db.Subscription, error)
	HasActiveSubscription(ctx context.Context, companyID int, at time.Time) (bool, error)
	AddSubscriptionAudit(ctx context.Context, a *db.SubscriptionAudit) error
	GetSubscriptionAudit(ctx context.Context, companyID int) ([]db.SubscriptionAudit, error)
}
