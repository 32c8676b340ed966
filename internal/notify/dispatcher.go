package notify

import (
	"context"

	"github.com/google/uuid"

	"github.com/ordena-app/ordena-backend/internal/notifications"
	"github.com/ordena-app/ordena-backend/pkg/db/models"
	"github.com/ordena-app/ordena-backend/pkg/enums"
	"github.com/ordena-app/ordena-backend/pkg/logger"
	"github.com/ordena-app/ordena-backend/pkg/mailer"
)

// Message is one outbound notification: an optional mail (skipped when To is
// empty, e.g. the preference gated it off) plus an optional in-app feed entry.
type Message struct {
	Event   enums.NotificationEvent
	To      []string
	Subject string
	Body    string
	Feed    *FeedEntry
}

// FeedEntry describes the in-app record written alongside (or instead of) mail.
type FeedEntry struct {
	BusinessID uuid.UUID
	Type       enums.NotificationType
	Title      string
	Message    string
	Link       *string
}

// Dispatcher performs notification sends. Feed writes are best-effort and never
// block the mail; the mail error is returned so callers that need delivery
// confirmation (the reminder flag) can react, while event fan-out only logs it.
type Dispatcher struct {
	mail mailer.Sender
	from string
	feed notifications.Repository
	log  *logger.Logger
}

func NewDispatcher(mail mailer.Sender, from string, feed notifications.Repository, log *logger.Logger) *Dispatcher {
	return &Dispatcher{mail: mail, from: from, feed: feed, log: log}
}

// Deliver sends msg. There are no retries: transient mail failures surface in
// logs and, for callers that check, in the returned error.
func (d *Dispatcher) Deliver(ctx context.Context, msg Message) error {
	ctx = d.log.WithEvent(ctx, string(msg.Event))

	if msg.Feed != nil && d.feed != nil {
		entry := &models.Notification{
			BusinessID: msg.Feed.BusinessID,
			Type:       msg.Feed.Type,
			Title:      msg.Feed.Title,
			Message:    msg.Feed.Message,
			Link:       msg.Feed.Link,
		}
		if err := d.feed.Create(ctx, entry); err != nil {
			d.log.Error(ctx, "notify.feed.create_failed", err)
		}
	}

	if len(msg.To) == 0 {
		d.log.Info(ctx, "notify.mail.skipped_no_recipients")
		return nil
	}

	if err := d.mail.Send(ctx, d.from, msg.To, msg.Subject, msg.Body); err != nil {
		d.log.Error(ctx, "notify.mail.send_failed", err)
		return err
	}
	d.log.Info(ctx, "notify.mail.sent")
	return nil
}
