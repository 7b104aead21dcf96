package domain

import "context"

// Mailer defines the contract for sending emails (infrastructure port).
type Mailer interface {
	Send(ctx context.Context, to, subject, html, text string) error
}

// EmailTemplateRenderer renders email content from a named template with the given data.
type EmailTemplateRenderer interface {
	Render(templateName string, data any) (subject, htmlBody, textBody string, err error)
}

// PendingEventEmailData holds data for the "event awaits moderation" email.
type PendingEventEmailData struct {
	EventID     int64
	Title       string
	InitiatorID int64
	Resubmitted bool
}
