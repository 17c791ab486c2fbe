package notify

import (
	"context"
	"fmt"

	"gopkg.in/gomail.v2"
)

const dateLayout = "2006-01-02"

// Mailer delivers notifications over SMTP.
type Mailer struct {
	dialer *gomail.Dialer
	from   string
}

func NewMailer(host string, port int, username, password, from string) *Mailer {
	return &Mailer{
		dialer: gomail.NewDialer(host, port, username, password),
		from:   from,
	}
}

func (m *Mailer) SendOfferCreated(ctx context.Context, n Notification) error {
	subject := fmt.Sprintf("New job offer: %s", n.JobType)
	body := fmt.Sprintf(
		"Hello %s,\n\n%s has offered you a job.\n\nJob: %s\nDates: %s to %s\nContact: %s (%s)\n\nPlease log in to accept or reject the offer.\n",
		n.RecipientName, n.CounterpartName, n.JobType,
		n.StartDate.Format(dateLayout), n.EndDate.Format(dateLayout),
		n.ContactPerson, n.ContactPhone)
	return m.send(ctx, n.RecipientEmail, subject, body)
}

func (m *Mailer) SendOfferAccepted(ctx context.Context, n Notification) error {
	subject := fmt.Sprintf("Offer accepted: %s", n.JobType)
	body := fmt.Sprintf(
		"Hello %s,\n\n%s has accepted your offer.\n\nJob: %s\nDates: %s to %s\n\nThe booking is now confirmed.\n",
		n.RecipientName, n.CounterpartName, n.JobType,
		n.StartDate.Format(dateLayout), n.EndDate.Format(dateLayout))
	return m.send(ctx, n.RecipientEmail, subject, body)
}

func (m *Mailer) SendOfferReminder(ctx context.Context, n Notification) error {
	subject := fmt.Sprintf("Reminder: pending job offer from %s", n.CounterpartName)
	body := fmt.Sprintf(
		"Hello %s,\n\nThis is a reminder that %s is still waiting for your answer.\n\nJob: %s\nDates: %s to %s\nContact: %s (%s)\n",
		n.RecipientName, n.CounterpartName, n.JobType,
		n.StartDate.Format(dateLayout), n.EndDate.Format(dateLayout),
		n.ContactPerson, n.ContactPhone)
	return m.send(ctx, n.RecipientEmail, subject, body)
}

func (m *Mailer) send(ctx context.Context, to, subject, body string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	msg := gomail.NewMessage()
	msg.SetHeader("From", m.from)
	msg.SetHeader("To", to)
	msg.SetHeader("Subject", subject)
	msg.SetBody("text/plain", body)
	return m.dialer.DialAndSend(msg)
}
