package actions

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/ordena-app/ordena-backend/internal/orders"
	"github.com/ordena-app/ordena-backend/pkg/db/models"
	"github.com/ordena-app/ordena-backend/pkg/enums"
	pkgerrors "github.com/ordena-app/ordena-backend/pkg/errors"
	"github.com/ordena-app/ordena-backend/pkg/logger"
)

// Service applies courier decisions carried by action links. Confirm moves the
// order into preparation; discard cancels it and records the rejection so the
// courier is never re-picked for this order.
type Service struct {
	orders orders.Repository
	log    *logger.Logger
	now    func() time.Time
}

func NewService(orderRepo orders.Repository, log *logger.Logger) *Service {
	return &Service{orders: orderRepo, log: log, now: time.Now}
}

// Apply executes the action against the order and returns the updated order.
func (s *Service) Apply(ctx context.Context, orderID uuid.UUID, action enums.CourierAction) (*models.Order, error) {
	ctx = s.log.WithOrderID(ctx, orderID.String())

	order, err := s.orders.FindByID(ctx, orderID)
	if errors.Is(err, orders.ErrNotFound) {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
	}
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "loading order")
	}
	if order.Status.IsTerminal() {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "order already finalized").
			WithDetails(map[string]any{"status": order.Status})
	}

	now := s.now()
	var updates map[string]any
	switch action {
	case enums.CourierActionConfirm:
		order.Status = enums.OrderStatusPreparing
		order.CourierAcceptanceStatus = enums.CourierAcceptanceAccepted
		updates = map[string]any{
			"status":                    enums.OrderStatusPreparing,
			"courier_acceptance_status": enums.CourierAcceptanceAccepted,
			"updated_at":                now,
		}
	case enums.CourierActionDiscard:
		order.Status = enums.OrderStatusCancelled
		order.CourierAcceptanceStatus = enums.CourierAcceptanceRejected
		if order.AssignedCourierID != nil && !order.RejectedBy.Contains(*order.AssignedCourierID) {
			order.RejectedBy = append(order.RejectedBy, *order.AssignedCourierID)
		}
		updates = map[string]any{
			"status":                    enums.OrderStatusCancelled,
			"courier_acceptance_status": enums.CourierAcceptanceRejected,
			"rejected_by":               order.RejectedBy,
			"updated_at":                now,
		}
	default:
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "unknown courier action")
	}

	if err := s.orders.UpdateStatus(ctx, orderID, updates); err != nil {
		if errors.Is(err, orders.ErrNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "updating order")
	}

	order.UpdatedAt = now
	s.log.Info(s.log.WithField(ctx, "action", string(action)), "actions.applied")
	return order, nil
}
