package notify

import (
	"context"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ordena-app/ordena-backend/internal/notifications"
	"github.com/ordena-app/ordena-backend/pkg/db/models"
	"github.com/ordena-app/ordena-backend/pkg/enums"
	"github.com/ordena-app/ordena-backend/pkg/logger"
)

type sendCall struct {
	from    string
	to      []string
	subject string
}

type fakeSender struct {
	calls []sendCall
	err   error
}

func (f *fakeSender) Send(ctx context.Context, from string, to []string, subject, body string) error {
	f.calls = append(f.calls, sendCall{from: from, to: to, subject: subject})
	return f.err
}

type fakeFeed struct {
	created []*models.Notification
	err     error
}

func (f *fakeFeed) Create(ctx context.Context, n *models.Notification) error {
	if f.err != nil {
		return f.err
	}
	f.created = append(f.created, n)
	return nil
}

func (f *fakeFeed) List(ctx context.Context, params notifications.ListParams) ([]models.Notification, error) {
	return nil, nil
}

func (f *fakeFeed) MarkRead(ctx context.Context, businessID, notificationID uuid.UUID, now time.Time) (notifications.MarkResult, error) {
	return notifications.MarkResult{}, nil
}

func (f *fakeFeed) MarkAllRead(ctx context.Context, businessID uuid.UUID, now time.Time) (int64, error) {
	return 0, nil
}

func testLogger() *logger.Logger {
	return logger.New(logger.Options{ServiceName: "test", Output: io.Discard})
}

func TestDeliver_sendsMailAndWritesFeed(t *testing.T) {
	sender := &fakeSender{}
	feed := &fakeFeed{}
	d := NewDispatcher(sender, "pedidos@ordena.delivery", feed, testLogger())

	businessID := uuid.New()
	err := d.Deliver(context.Background(), Message{
		Event:   enums.EventOrderCreatedClient,
		To:      []string{"owner@arepera.ve"},
		Subject: "Nuevo pedido #abc123",
		Body:    "<p>hola</p>",
		Feed: &FeedEntry{
			BusinessID: businessID,
			Type:       enums.NotificationTypeOrder,
			Title:      "Nuevo pedido",
			Message:    "Pedido #abc123",
		},
	})
	require.NoError(t, err)
	require.Len(t, sender.calls, 1)
	assert.Equal(t, "pedidos@ordena.delivery", sender.calls[0].from)
	assert.Equal(t, []string{"owner@arepera.ve"}, sender.calls[0].to)
	require.Len(t, feed.created, 1)
	assert.Equal(t, businessID, feed.created[0].BusinessID)
}

func TestDeliver_gatedMailStillWritesFeed(t *testing.T) {
	sender := &fakeSender{}
	feed := &fakeFeed{}
	d := NewDispatcher(sender, "pedidos@ordena.delivery", feed, testLogger())

	err := d.Deliver(context.Background(), Message{
		Event: enums.EventOrderCreatedClient,
		Feed:  &FeedEntry{BusinessID: uuid.New(), Type: enums.NotificationTypeOrder, Title: "t", Message: "m"},
	})
	require.NoError(t, err)
	assert.Empty(t, sender.calls)
	assert.Len(t, feed.created, 1)
}

func TestDeliver_feedFailureDoesNotBlockMail(t *testing.T) {
	sender := &fakeSender{}
	feed := &fakeFeed{err: errors.New("insert failed")}
	d := NewDispatcher(sender, "pedidos@ordena.delivery", feed, testLogger())

	err := d.Deliver(context.Background(), Message{
		Event:   enums.EventOrderReminder,
		To:      []string{"owner@arepera.ve"},
		Subject: "s",
		Body:    "b",
		Feed:    &FeedEntry{BusinessID: uuid.New(), Type: enums.NotificationTypeReminder, Title: "t", Message: "m"},
	})
	require.NoError(t, err)
	assert.Len(t, sender.calls, 1)
}

func TestDeliver_mailFailureReturned(t *testing.T) {
	sender := &fakeSender{err: errors.New("sendgrid returned 500")}
	d := NewDispatcher(sender, "pedidos@ordena.delivery", &fakeFeed{}, testLogger())

	err := d.Deliver(context.Background(), Message{
		Event:   enums.EventOrderReminder,
		To:      []string{"owner@arepera.ve"},
		Subject: "s",
		Body:    "b",
	})
	assert.Error(t, err)
}
