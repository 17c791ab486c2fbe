package offers

import (
	"strings"
	"time"
)

type CreateOfferInput struct {
	GuideIDs      []int     `json:"guideIds"`
	JobType       string    `json:"jobType"`
	Description   string    `json:"description"`
	StartDate     time.Time `json:"startDate"`
	EndDate       time.Time `json:"endDate"`
	ContactPerson string    `json:"contactPerson"`
	ContactPhone  string    `json:"contactPhone"`
}

// validate checks every field and aggregates all problems into one message.
func (in *CreateOfferInput) validate() error {
	var problems []string
	if len(in.GuideIDs) == 0 {
		problems = append(problems, "at least one guide must be selected")
	}
	for _, id := range in.GuideIDs {
		if id <= 0 {
			problems = append(problems, "guide ids must be positive")
			break
		}
	}
	if in.JobType == "" {
		problems = append(problems, "job type is required")
	}
	if in.Description == "" {
		problems = append(problems, "description is required")
	}
	if in.StartDate.IsZero() {
		problems = append(problems, "start date is required")
	}
	if in.EndDate.IsZero() {
		problems = append(problems, "end date is required")
	}
	if !in.StartDate.IsZero() && !in.EndDate.IsZero() && in.EndDate.Before(in.StartDate) {
		problems = append(problems, "end date must not be before start date")
	}
	if in.ContactPerson == "" {
		problems = append(problems, "contact person is required")
	}
	if in.ContactPhone == "" {
		problems = append(problems, "contact phone is required")
	}
	if len(problems) > 0 {
		return &ValidationError{Reason: strings.Join(problems, "; ")}
	}
	return nil
}

type AcceptOfferInput struct {
	OfferID   int       `json:"offerId"`
	GuideID   int       `json:"guideId"`
	CompanyID int       `json:"companyId"`
	JobType   string    `json:"jobType"`
	StartDate time.Time `json:"startDate"`
	EndDate   time.Time `json:"endDate"`
}

type CancelCampaignInput struct {
	JobType   string    `json:"jobType"`
	StartDate time.Time `json:"startDate"`
	EndDate   time.Time `json:"endDate"`
}

func (in *CancelCampaignInput) validate() error {
	var problems []string
	if in.JobType == "" {
		problems = append(problems, "job type is required")
	}
	if in.StartDate.IsZero() {
		problems = append(problems, "start date is required")
	}
	if in.EndDate.IsZero() {
		problems = append(problems, "end date is required")
	}
	if len(problems) > 0 {
		return &ValidationError{Reason: strings.Join(problems, "; ")}
	}
	return nil
}

type UpdateOfferDetailsInput struct {
	OfferIDs      []int  `json:"offerIds"`
	JobType       string `json:"jobType"`
	Description   string `json:"description"`
	ContactPerson string `json:"contactPerson"`
	ContactPhone  string `json:"contactPhone"`
}

func (in *UpdateOfferDetailsInput) validate() error {
	var problems []string
	if len(in.OfferIDs) == 0 {
		problems = append(problems, "at least one offer id is required")
	}
	if in.JobType == "" {
		problems = append(problems, "job type is required")
	}
	if in.Description == "" {
		problems = append(problems, "description is required")
	}
	if in.ContactPerson == "" {
		problems = append(problems, "contact person is required")
	}
	if in.ContactPhone == "" {
		problems = append(problems, "contact phone is required")
	}
	if len(problems) > 0 {
		return &ValidationError{Reason: strings.Join(problems, "; ")}
	}
	return nil
}
