package assignment

import (
	"context"

	"github.com/ordena-app/ordena-backend/internal/couriers"
	"github.com/ordena-app/ordena-backend/internal/zones"
	"github.com/ordena-app/ordena-backend/pkg/db/models"
	"github.com/ordena-app/ordena-backend/pkg/geo"
	"github.com/ordena-app/ordena-backend/pkg/logger"
	"github.com/ordena-app/ordena-backend/pkg/types"
)

// Method records how a courier was picked, for logs and the courier mail.
type Method string

const (
	MethodZone     Method = "zone"
	MethodFallback Method = "fallback"
)

// Selection is the outcome of a courier pick. Courier is nil when no eligible
// courier exists; the order then stays unassigned for manual handling.
type Selection struct {
	Courier *models.Courier
	Zone    *models.CoverageZone
	Method  Method
}

// Selector picks a courier for a delivery order: first by coverage zone
// containment, then by the configured fallback phone order. Read failures
// degrade to no assignment rather than failing order processing.
type Selector struct {
	zones          zones.Repository
	couriers       couriers.Repository
	fallbackPhones []string
	log            *logger.Logger
}

func NewSelector(zoneRepo zones.Repository, courierRepo couriers.Repository, fallbackPhones []string, log *logger.Logger) *Selector {
	return &Selector{
		zones:          zoneRepo,
		couriers:       courierRepo,
		fallbackPhones: fallbackPhones,
		log:            log,
	}
}

// Select resolves a courier for the order, or nil when none qualifies.
// Couriers already listed in the order's rejectedBy are skipped.
func (s *Selector) Select(ctx context.Context, order *models.Order) *Selection {
	active, err := s.couriers.ListActive(ctx)
	if err != nil {
		s.log.Error(ctx, "assignment.couriers.list_failed", err)
		return nil
	}
	if len(active) == 0 {
		s.log.Warn(ctx, "assignment.no_active_couriers")
		return nil
	}

	byID := make(map[string]*models.Courier, len(active))
	byPhone := make(map[string]*models.Courier, len(active))
	for i := range active {
		byID[active[i].ID.String()] = &active[i]
		if active[i].Phone != "" {
			byPhone[active[i].Phone] = &active[i]
		}
	}

	if sel := s.selectByZone(ctx, order, byID); sel != nil {
		return sel
	}
	return s.selectByFallback(ctx, order, byPhone)
}

func (s *Selector) selectByZone(ctx context.Context, order *models.Order, activeByID map[string]*models.Courier) *Selection {
	point, ok := types.ParseLatLng(order.DeliveryPoint)
	if !ok {
		// Place-code or empty point: zone matching is impossible.
		return nil
	}

	zoneList, err := s.zones.ListActive(ctx)
	if err != nil {
		s.log.Error(ctx, "assignment.zones.list_failed", err)
		return nil
	}

	for i := range zoneList {
		zone := zoneList[i]
		if zone.AssignedCourierID == nil {
			continue
		}
		if !geo.IsInside(point, zone.Polygon) {
			continue
		}
		courier, active := activeByID[zone.AssignedCourierID.String()]
		if !active {
			continue
		}
		if order.RejectedBy.Contains(courier.ID) {
			continue
		}
		return &Selection{Courier: courier, Zone: &zone, Method: MethodZone}
	}
	return nil
}

func (s *Selector) selectByFallback(ctx context.Context, order *models.Order, activeByPhone map[string]*models.Courier) *Selection {
	for _, phone := range s.fallbackPhones {
		courier, ok := activeByPhone[phone]
		if !ok {
			continue
		}
		if order.RejectedBy.Contains(courier.ID) {
			continue
		}
		return &Selection{Courier: courier, Method: MethodFallback}
	}
	s.log.Warn(ctx, "assignment.no_eligible_courier")
	return nil
}
