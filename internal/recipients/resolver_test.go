package recipients

import (
	"context"
	"errors"
	"io"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ordena-app/ordena-backend/pkg/db/models"
	"github.com/ordena-app/ordena-backend/pkg/enums"
	"github.com/ordena-app/ordena-backend/pkg/logger"
	"github.com/ordena-app/ordena-backend/pkg/types"
)

type fakeBusinessRepo struct {
	business *models.Business
	err      error
}

func (f *fakeBusinessRepo) FindByID(ctx context.Context, id uuid.UUID) (*models.Business, error) {
	return f.business, f.err
}

func (f *fakeBusinessRepo) ListVisible(ctx context.Context) ([]models.Business, error) {
	return nil, nil
}

type fakeClientRepo struct {
	client *models.Client
	err    error
}

func (f *fakeClientRepo) FindByID(ctx context.Context, id uuid.UUID) (*models.Client, error) {
	return f.client, f.err
}

func testLogger() *logger.Logger {
	return logger.New(logger.Options{ServiceName: "test", Output: io.Discard})
}

func TestBusinessEmails_dedupAndDropEmpty(t *testing.T) {
	business := &models.Business{
		Email: "owner@arepera.ve",
		Administrators: []types.Administrator{
			{Email: "owner@arepera.ve"},
			{Email: "admin@arepera.ve"},
			{Email: ""},
		},
	}
	resolver := NewResolver(&fakeBusinessRepo{}, &fakeClientRepo{}, testLogger())

	emails := resolver.BusinessEmails(business, enums.EventOrderCreatedClient)
	assert.Equal(t, []string{"owner@arepera.ve", "admin@arepera.ve"}, emails)
}

func TestBusinessEmails_disabledPreferenceSuppresses(t *testing.T) {
	business := &models.Business{
		Email:                "owner@arepera.ve",
		NotificationSettings: types.NotificationSettings{"emailOrderClient": false},
	}
	resolver := NewResolver(&fakeBusinessRepo{}, &fakeClientRepo{}, testLogger())

	assert.Nil(t, resolver.BusinessEmails(business, enums.EventOrderCreatedClient))
}

func TestEventEnabled_defaults(t *testing.T) {
	noSettings := &models.Business{}

	assert.True(t, EventEnabled(noSettings, enums.EventOrderCreatedClient))
	assert.True(t, EventEnabled(noSettings, enums.EventOrderCreatedManual))
	assert.True(t, EventEnabled(noSettings, enums.EventOrderReminder))
	assert.True(t, EventEnabled(noSettings, enums.EventDailyDigest))
	// Checkout-progress mail is opt-in.
	assert.False(t, EventEnabled(noSettings, enums.EventCheckoutProgress))
}

func TestEventEnabled_explicitOverridesDefault(t *testing.T) {
	business := &models.Business{
		NotificationSettings: types.NotificationSettings{
			"emailCheckoutProgress": true,
			"emailDailySummary":     false,
		},
	}

	assert.True(t, EventEnabled(business, enums.EventCheckoutProgress))
	assert.False(t, EventEnabled(business, enums.EventDailyDigest))
}

func TestBusiness_readFailureReturnsNil(t *testing.T) {
	resolver := NewResolver(&fakeBusinessRepo{err: errors.New("unavailable")}, &fakeClientRepo{}, testLogger())
	assert.Nil(t, resolver.Business(context.Background(), uuid.New()))
}

func TestCustomerName_snapshotPreferred(t *testing.T) {
	resolver := NewResolver(&fakeBusinessRepo{}, &fakeClientRepo{}, testLogger())
	order := &models.Order{Customer: types.CustomerRef{Name: "María"}}

	assert.Equal(t, "María", resolver.CustomerName(context.Background(), order))
}

func TestCustomerName_profileLookupThenFallback(t *testing.T) {
	clientID := uuid.New()

	withProfile := NewResolver(&fakeBusinessRepo{}, &fakeClientRepo{
		client: &models.Client{ID: clientID, Name: "José"},
	}, testLogger())
	order := &models.Order{ID: uuid.New(), Customer: types.CustomerRef{ID: clientID.String()}}
	assert.Equal(t, "José", withProfile.CustomerName(context.Background(), order))

	broken := NewResolver(&fakeBusinessRepo{}, &fakeClientRepo{err: errors.New("unavailable")}, testLogger())
	assert.Equal(t, FallbackCustomerName, broken.CustomerName(context.Background(), order))
}

func TestCustomerEmail(t *testing.T) {
	clientID := uuid.New()
	resolver := NewResolver(&fakeBusinessRepo{}, &fakeClientRepo{
		client: &models.Client{ID: clientID, Email: "maria@example.com"},
	}, testLogger())

	withSnapshot := &models.Order{Customer: types.CustomerRef{Email: "snapshot@example.com"}}
	assert.Equal(t, "snapshot@example.com", resolver.CustomerEmail(context.Background(), withSnapshot))

	viaProfile := &models.Order{Customer: types.CustomerRef{ID: clientID.String()}}
	assert.Equal(t, "maria@example.com", resolver.CustomerEmail(context.Background(), viaProfile))

	unknown := &models.Order{Customer: types.CustomerRef{ID: "anon"}}
	assert.Equal(t, "", resolver.CustomerEmail(context.Background(), unknown))
}

func TestCourierEmail(t *testing.T) {
	require.Equal(t, "", CourierEmail(nil))
	assert.Equal(t, "moto@ordena.delivery", CourierEmail(&models.Courier{Email: "moto@ordena.delivery"}))
}
