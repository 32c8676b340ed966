package assignment

import (
	"context"
	"errors"
	"io"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ordena-app/ordena-backend/pkg/db/models"
	dbtypes "github.com/ordena-app/ordena-backend/pkg/db/types"
	"github.com/ordena-app/ordena-backend/pkg/enums"
	"github.com/ordena-app/ordena-backend/pkg/logger"
	"github.com/ordena-app/ordena-backend/pkg/types"
)

type fakeZoneRepo struct {
	zones []models.CoverageZone
	err   error
}

func (f *fakeZoneRepo) ListActive(ctx context.Context) ([]models.CoverageZone, error) {
	return f.zones, f.err
}

type fakeCourierRepo struct {
	active []models.Courier
	err    error
}

func (f *fakeCourierRepo) ListActive(ctx context.Context) ([]models.Courier, error) {
	return f.active, f.err
}

func (f *fakeCourierRepo) FindByID(ctx context.Context, id uuid.UUID) (*models.Courier, error) {
	for i := range f.active {
		if f.active[i].ID == id {
			return &f.active[i], nil
		}
	}
	return nil, errors.New("not found")
}

func testLogger() *logger.Logger {
	return logger.New(logger.Options{ServiceName: "test", Output: io.Discard})
}

func squareAround(center types.LatLng, half float64) []types.LatLng {
	return []types.LatLng{
		{Lat: center.Lat - half, Lng: center.Lng - half},
		{Lat: center.Lat + half, Lng: center.Lng - half},
		{Lat: center.Lat + half, Lng: center.Lng + half},
		{Lat: center.Lat - half, Lng: center.Lng + half},
	}
}

func TestSelector_zoneMatchWins(t *testing.T) {
	courierID := uuid.New()
	fallbackID := uuid.New()
	point := types.LatLng{Lat: 10.48, Lng: -66.87}

	courierRepo := &fakeCourierRepo{active: []models.Courier{
		{ID: courierID, Name: "Zona Este", Phone: "+584140000001", Status: enums.CourierStatusActive},
		{ID: fallbackID, Name: "Respaldo", Phone: "+584140000009", Status: enums.CourierStatusActive},
	}}
	zoneRepo := &fakeZoneRepo{zones: []models.CoverageZone{
		{ID: uuid.New(), Name: "Este", Polygon: squareAround(point, 0.01), AssignedCourierID: &courierID, IsActive: true},
	}}

	selector := NewSelector(zoneRepo, courierRepo, []string{"+584140000009"}, testLogger())
	order := &models.Order{ID: uuid.New(), DeliveryPoint: point.String()}

	sel := selector.Select(context.Background(), order)
	require.NotNil(t, sel)
	assert.Equal(t, courierID, sel.Courier.ID)
	assert.Equal(t, MethodZone, sel.Method)
	require.NotNil(t, sel.Zone)
	assert.Equal(t, "Este", sel.Zone.Name)
}

func TestSelector_fallbackOrderRespected(t *testing.T) {
	first := uuid.New()
	second := uuid.New()
	courierRepo := &fakeCourierRepo{active: []models.Courier{
		{ID: second, Phone: "+58412", Status: enums.CourierStatusActive},
		{ID: first, Phone: "+58414", Status: enums.CourierStatusActive},
	}}
	selector := NewSelector(&fakeZoneRepo{}, courierRepo, []string{"+58414", "+58412"}, testLogger())

	// Place-code point: zone matching impossible, fallback applies.
	order := &models.Order{ID: uuid.New(), DeliveryPoint: "plus:7Q2X+F3"}
	sel := selector.Select(context.Background(), order)
	require.NotNil(t, sel)
	assert.Equal(t, first, sel.Courier.ID)
	assert.Equal(t, MethodFallback, sel.Method)
}

func TestSelector_rejectedCourierSkipped(t *testing.T) {
	zoneCourier := uuid.New()
	fallbackCourier := uuid.New()
	point := types.LatLng{Lat: 10.5, Lng: -66.9}

	courierRepo := &fakeCourierRepo{active: []models.Courier{
		{ID: zoneCourier, Phone: "+58401", Status: enums.CourierStatusActive},
		{ID: fallbackCourier, Phone: "+58402", Status: enums.CourierStatusActive},
	}}
	zoneRepo := &fakeZoneRepo{zones: []models.CoverageZone{
		{ID: uuid.New(), Polygon: squareAround(point, 0.02), AssignedCourierID: &zoneCourier, IsActive: true},
	}}

	selector := NewSelector(zoneRepo, courierRepo, []string{"+58402"}, testLogger())
	order := &models.Order{
		ID:            uuid.New(),
		DeliveryPoint: point.String(),
		RejectedBy:    dbtypes.UUIDArray{zoneCourier},
	}

	sel := selector.Select(context.Background(), order)
	require.NotNil(t, sel)
	assert.Equal(t, fallbackCourier, sel.Courier.ID)
	assert.Equal(t, MethodFallback, sel.Method)
}

func TestSelector_zoneWithInactiveCourierFallsThrough(t *testing.T) {
	inactive := uuid.New()
	point := types.LatLng{Lat: 10.2, Lng: -67.6}
	zoneRepo := &fakeZoneRepo{zones: []models.CoverageZone{
		{ID: uuid.New(), Polygon: squareAround(point, 0.05), AssignedCourierID: &inactive, IsActive: true},
	}}
	// Inactive courier never shows up in ListActive.
	courierRepo := &fakeCourierRepo{active: []models.Courier{}}

	selector := NewSelector(zoneRepo, courierRepo, []string{"+58499"}, testLogger())
	order := &models.Order{ID: uuid.New(), DeliveryPoint: point.String()}

	assert.Nil(t, selector.Select(context.Background(), order))
}

func TestSelector_readErrorDegradesToNone(t *testing.T) {
	courierRepo := &fakeCourierRepo{err: errors.New("connection refused")}
	selector := NewSelector(&fakeZoneRepo{}, courierRepo, []string{"+58414"}, testLogger())

	order := &models.Order{ID: uuid.New(), DeliveryPoint: "10.5,-66.9"}
	assert.Nil(t, selector.Select(context.Background(), order))
}

func TestSelector_zoneReadErrorStillTriesFallback(t *testing.T) {
	fallback := uuid.New()
	courierRepo := &fakeCourierRepo{active: []models.Courier{
		{ID: fallback, Phone: "+58414", Status: enums.CourierStatusActive},
	}}
	zoneRepo := &fakeZoneRepo{err: errors.New("timeout")}

	selector := NewSelector(zoneRepo, courierRepo, []string{"+58414"}, testLogger())
	order := &models.Order{ID: uuid.New(), DeliveryPoint: "10.5,-66.9"}

	sel := selector.Select(context.Background(), order)
	require.NotNil(t, sel)
	assert.Equal(t, MethodFallback, sel.Method)
}
