package email

import (
	"context"
	"fmt"

	"eventhub/internal/domain"
)

const pendingTemplate = "event_pending"

// ModerationNotifier emails the moderation inbox whenever an event enters review.
type ModerationNotifier struct {
	mailer   domain.Mailer
	renderer domain.EmailTemplateRenderer
	inbox    string
}

// NewModerationNotifier returns a nil notifier when inbox is empty.
func NewModerationNotifier(mailer domain.Mailer, renderer domain.EmailTemplateRenderer, inbox string) domain.EventNotifier {
	if inbox == "" {
		return nil
	}
	return &ModerationNotifier{mailer: mailer, renderer: renderer, inbox: inbox}
}

func (n *ModerationNotifier) NotifyStateChange(ctx context.Context, change domain.StateChange) error {
	if change.To != domain.StatePending {
		return nil
	}
	data := &domain.PendingEventEmailData{
		EventID:     change.EventID,
		Title:       change.Title,
		InitiatorID: change.InitiatorID,
		Resubmitted: change.From == domain.StateCanceled,
	}
	subject, htmlBody, textBody, err := n.renderer.Render(pendingTemplate, data)
	if err != nil {
		return fmt.Errorf("failed to render %s template: %w", pendingTemplate, err)
	}
	if err := n.mailer.Send(ctx, n.inbox, subject, htmlBody, textBody); err != nil {
		return fmt.Errorf("failed to send moderation email: %w", err)
	}
	return nil
}
