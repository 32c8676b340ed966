package cron

import (
	"context"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ordena-app/ordena-backend/internal/notify"
	"github.com/ordena-app/ordena-backend/internal/recipients"
	"github.com/ordena-app/ordena-backend/pkg/db/models"
	"github.com/ordena-app/ordena-backend/pkg/enums"
	"github.com/ordena-app/ordena-backend/pkg/logger"
	"github.com/ordena-app/ordena-backend/pkg/types"
)

type digestTestHelper struct {
	job        *DigestJob
	orders     *fakeOrderRepo
	businesses *fakeBusinessRepo
	sender     *fakeSender
	feed       *fakeFeed
}

func createDigestTest(t *testing.T) *digestTestHelper {
	t.Helper()
	logg := logger.New(logger.Options{ServiceName: "test", Output: io.Discard})

	helper := &digestTestHelper{
		orders:     &fakeOrderRepo{},
		businesses: &fakeBusinessRepo{},
		sender:     &fakeSender{},
		feed:       &fakeFeed{},
	}
	resolver := recipients.NewResolver(helper.businesses, &fakeClientRepo{}, logg)
	dispatcher := notify.NewDispatcher(helper.sender, "pedidos@ordena.delivery", helper.feed, logg)
	helper.job = NewDigestJob(helper.orders, helper.businesses, resolver, dispatcher, time.UTC, logg)
	return helper
}

func digestOrder(businessID uuid.UUID, date time.Time, slot, customer string, total int64) models.Order {
	return models.Order{
		ID:            uuid.New(),
		BusinessID:    businessID,
		Customer:      types.CustomerRef{Name: customer},
		TimingType:    enums.TimingScheduled,
		Status:        enums.OrderStatusConfirmed,
		ScheduledDate: &date,
		ScheduledTime: slot,
		Total:         decimal.NewFromInt(total),
	}
}

func TestDigestJob_sortsRowsByNormalizedSlot(t *testing.T) {
	helper := createDigestTest(t)
	now := time.Date(2026, 3, 10, 7, 0, 0, 0, time.UTC)
	day := time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC)
	businessID := uuid.New()
	helper.businesses.visible = []models.Business{{ID: businessID, Name: "Arepera", Email: "a@b.ve"}}
	helper.orders.scheduled = []models.Order{
		digestOrder(businessID, day, "1:15 PM", "Pedro", 30),
		digestOrder(businessID, day, "9:00 AM", "María", 20),
		digestOrder(businessID, day, "08:30", "Luisa", 10),
	}

	helper.job.now = func() time.Time { return now }
	require.NoError(t, helper.job.Run(context.Background()))
	require.Len(t, helper.sender.sent, 1)

	body := helper.sender.sent[0].body
	first := strings.Index(body, "08:30")
	second := strings.Index(body, "09:00")
	third := strings.Index(body, "13:15")
	require.True(t, first >= 0 && second >= 0 && third >= 0)
	assert.Less(t, first, second)
	assert.Less(t, second, third)
	// 10 + 20 + 30
	assert.Contains(t, body, "$60.00")
}

func TestDigestJob_perBusinessFailureIsolation(t *testing.T) {
	helper := createDigestTest(t)
	now := time.Date(2026, 3, 10, 7, 0, 0, 0, time.UTC)
	day := time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC)

	broken := uuid.New()
	healthy := uuid.New()
	helper.businesses.visible = []models.Business{
		{ID: broken, Name: "Roto", Email: "fallo@example.com"},
		{ID: healthy, Name: "Sano", Email: "sano@example.com"},
	}
	helper.sender.failTo = "fallo@example.com"
	helper.orders.scheduled = []models.Order{
		digestOrder(broken, day, "10:00", "A", 5),
		digestOrder(healthy, day, "11:00", "B", 7),
	}

	helper.job.now = func() time.Time { return now }
	err := helper.job.Run(context.Background())
	require.Error(t, err)
	require.Len(t, helper.sender.sent, 1)
	assert.Equal(t, []string{"sano@example.com"}, helper.sender.sent[0].to)
}

func TestDigestJob_otherDaysExcluded(t *testing.T) {
	helper := createDigestTest(t)
	now := time.Date(2026, 3, 10, 7, 0, 0, 0, time.UTC)
	today := time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC)
	tomorrow := today.Add(24 * time.Hour)

	businessID := uuid.New()
	helper.businesses.visible = []models.Business{{ID: businessID, Name: "Arepera", Email: "a@b.ve"}}
	helper.orders.scheduled = []models.Order{
		digestOrder(businessID, tomorrow, "10:00", "Mañana", 5),
	}

	helper.job.now = func() time.Time { return now }
	require.NoError(t, helper.job.Run(context.Background()))
	assert.Empty(t, helper.sender.sent)
	assert.Empty(t, helper.feed.created)
}

func TestDigestJob_noResolvableRecipientsSkipsBusiness(t *testing.T) {
	helper := createDigestTest(t)
	now := time.Date(2026, 3, 10, 7, 0, 0, 0, time.UTC)
	day := time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC)

	disabled := uuid.New()
	addressless := uuid.New()
	helper.businesses.visible = []models.Business{
		{
			ID:                   disabled,
			Name:                 "Arepera",
			Email:                "a@b.ve",
			NotificationSettings: types.NotificationSettings{"emailDailySummary": false},
		},
		{ID: addressless, Name: "Sin Correo"},
	}
	helper.orders.scheduled = []models.Order{
		digestOrder(disabled, day, "10:00", "María", 5),
		digestOrder(addressless, day, "11:00", "Pedro", 7),
	}

	helper.job.now = func() time.Time { return now }
	require.NoError(t, helper.job.Run(context.Background()))
	assert.Empty(t, helper.sender.sent)
	assert.Empty(t, helper.feed.created)
}
