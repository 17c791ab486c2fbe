package notify

import (
	"context"
	"time"
)

// Notification carries the fields every offer mail template needs. Contact
// fields are only rendered for the created/reminder kinds.
type Notification struct {
	RecipientEmail  string
	RecipientName   string
	CounterpartName string
	JobType         string
	StartDate       time.Time
	EndDate         time.Time
	ContactPerson   string
	ContactPhone    string
}

// Dispatcher sends transactional offer mail. Implementations report per-send
// success or failure and nothing more.
type Dispatcher interface {
	SendOfferCreated(ctx context.Context, n Notification) error
	SendOfferAccepted(ctx context.Context, n Notification) error
	SendOfferReminder(ctx context.Context, n Notification) error
}
