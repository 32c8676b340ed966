package dispatch

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/multierr"

	"github.com/ordena-app/ordena-backend/internal/actions"
	"github.com/ordena-app/ordena-backend/internal/assignment"
	"github.com/ordena-app/ordena-backend/internal/couriers"
	"github.com/ordena-app/ordena-backend/internal/notify"
	"github.com/ordena-app/ordena-backend/internal/orders"
	"github.com/ordena-app/ordena-backend/internal/recipients"
	"github.com/ordena-app/ordena-backend/pkg/db/models"
	"github.com/ordena-app/ordena-backend/pkg/enums"
	"github.com/ordena-app/ordena-backend/pkg/logger"
)

// Router reacts to document-change events. Each event fans out into
// independent tasks that run concurrently; one task failing never suppresses
// the others, and failures are logged rather than retried.
type Router struct {
	orders       orders.Repository
	couriers     couriers.Repository
	resolver     *recipients.Resolver
	selector     *assignment.Selector
	dispatcher   *notify.Dispatcher
	tokens       *actions.Codec
	dashboardURL string
	log          *logger.Logger
	now          func() time.Time
}

func NewRouter(
	orderRepo orders.Repository,
	courierRepo couriers.Repository,
	resolver *recipients.Resolver,
	selector *assignment.Selector,
	dispatcher *notify.Dispatcher,
	tokens *actions.Codec,
	dashboardURL string,
	log *logger.Logger,
) *Router {
	return &Router{
		orders:       orderRepo,
		couriers:     courierRepo,
		resolver:     resolver,
		selector:     selector,
		dispatcher:   dispatcher,
		tokens:       tokens,
		dashboardURL: dashboardURL,
		log:          log,
		now:          time.Now,
	}
}

// Handle routes one document event. The returned error only reports payloads
// the router could not decode; task failures are logged and absorbed.
func (r *Router) Handle(ctx context.Context, event DocumentEvent) error {
	ctx = r.log.WithFields(ctx, map[string]any{
		"collection": event.Collection,
		"kind":       event.Kind,
	})

	switch {
	case event.Collection == enums.CollectionOrders && event.Kind == enums.DocumentCreated:
		order, err := decodeOrder(event.After)
		if err != nil {
			return err
		}
		r.handleOrderCreated(ctx, order)
	case event.Collection == enums.CollectionOrders && event.Kind == enums.DocumentUpdated:
		before, err := decodeOrder(event.Before)
		if err != nil {
			return err
		}
		after, err := decodeOrder(event.After)
		if err != nil {
			return err
		}
		r.handleOrderUpdated(ctx, before, after)
	case event.Collection == enums.CollectionBusinesses:
		r.handleBusinessWrite(ctx, event)
	case event.Collection == enums.CollectionCheckoutProgress && event.Kind == enums.DocumentCreated:
		progress, err := decodeCheckoutProgress(event.After)
		if err != nil {
			return err
		}
		r.handleCheckoutCreated(ctx, progress)
	default:
		r.log.Info(ctx, "dispatch.event_unhandled")
	}
	return nil
}

func (r *Router) handleOrderCreated(ctx context.Context, order *models.Order) {
	ctx = r.log.WithOrderID(ctx, order.ID.String())
	tasks := []task{
		{name: "business_order_mail", run: func(ctx context.Context) error {
			return r.notifyBusinessOrderCreated(ctx, order)
		}},
	}
	// An order born with a courier never produces an assignment-diff update,
	// so the courier mail has to ride on the create event itself.
	if order.AssignedCourierID != nil {
		tasks = append(tasks, task{name: "courier_mail", run: func(ctx context.Context) error {
			return r.notifyCourierAssigned(ctx, order)
		}})
	}
	r.runTasks(ctx, tasks)
}

func (r *Router) handleOrderUpdated(ctx context.Context, before, after *models.Order) {
	ctx = r.log.WithOrderID(ctx, after.ID.String())

	if before.Status != after.Status {
		statusCtx := r.log.WithFields(ctx, map[string]any{
			"from": before.Status,
			"to":   after.Status,
		})
		if !before.Status.CanTransitionTo(after.Status) {
			r.log.Warn(statusCtx, "dispatch.status_transition_irregular")
		} else {
			r.log.Info(statusCtx, "dispatch.status_changed")
		}
	}

	var tasks []task
	if r.shouldAutoAssign(before, after) {
		tasks = append(tasks, task{name: "auto_assign", run: func(ctx context.Context) error {
			return r.autoAssign(ctx, after)
		}})
	}
	if assignmentChanged(before, after) {
		tasks = append(tasks, task{name: "courier_mail", run: func(ctx context.Context) error {
			return r.notifyCourierAssigned(ctx, after)
		}})
	}
	r.runTasks(ctx, tasks)
}

// shouldAutoAssign is true exactly once in an order's life: the moment it
// leaves pending for an active state as an unassigned delivery order.
func (r *Router) shouldAutoAssign(before, after *models.Order) bool {
	return before.Status == enums.OrderStatusPending &&
		after.Status.IsActive() &&
		after.DeliveryType == enums.DeliveryTypeDelivery &&
		after.AssignedCourierID == nil
}

// assignmentChanged reports a distinct new assignee. Re-saving the same
// courier never re-notifies.
func assignmentChanged(before, after *models.Order) bool {
	if after.AssignedCourierID == nil {
		return false
	}
	return before.AssignedCourierID == nil || *before.AssignedCourierID != *after.AssignedCourierID
}

func (r *Router) autoAssign(ctx context.Context, order *models.Order) error {
	selection := r.selector.Select(ctx, order)
	if selection == nil {
		// No eligible courier: the order stays unassigned for manual handling.
		return nil
	}
	ctx = r.log.WithFields(ctx, map[string]any{
		"courier_id":        selection.Courier.ID,
		"assignment_method": selection.Method,
	})
	if err := r.orders.AssignCourier(ctx, order.ID, selection.Courier.ID, r.now()); err != nil {
		return fmt.Errorf("assigning courier: %w", err)
	}
	// The courier mail is driven by the assignment change on the follow-up
	// update event, which also covers dashboard-made assignments.
	r.log.Info(ctx, "dispatch.courier_assigned")
	return nil
}

func (r *Router) notifyBusinessOrderCreated(ctx context.Context, order *models.Order) error {
	event := enums.EventOrderCreatedClient
	subject := notify.OrderCreatedSubject(order)
	if order.CreatedByAdmin {
		event = enums.EventOrderCreatedManual
		subject = notify.ManualOrderSubject(order)
	}

	business := r.resolver.Business(ctx, order.BusinessID)
	customerName := r.resolver.CustomerName(ctx, order)

	body := notify.OrderCreatedBody(order, customerName)
	if order.CreatedByAdmin {
		body = notify.ManualOrderBody(order, customerName)
	}

	// Staff already see manual orders in the dashboard they typed them into;
	// only client-placed orders surface in the feed.
	var feed *notify.FeedEntry
	if !order.CreatedByAdmin {
		feed = &notify.FeedEntry{
			BusinessID: order.BusinessID,
			Type:       enums.NotificationTypeOrder,
			Title:      subject,
			Message:    fmt.Sprintf("Pedido #%s de %s por $%s", order.ShortID(), customerName, order.Total.StringFixed(2)),
		}
	}

	return r.dispatcher.Deliver(ctx, notify.Message{
		Event:   event,
		To:      r.resolver.BusinessEmails(business, event),
		Subject: subject,
		Body:    body,
		Feed:    feed,
	})
}

func (r *Router) notifyCourierAssigned(ctx context.Context, order *models.Order) error {
	courier, err := r.couriers.FindByID(ctx, *order.AssignedCourierID)
	if err != nil {
		return fmt.Errorf("loading assigned courier: %w", err)
	}

	confirmToken, err := r.tokens.Encode(order.ID, enums.CourierActionConfirm)
	if err != nil {
		return err
	}
	discardToken, err := r.tokens.Encode(order.ID, enums.CourierActionDiscard)
	if err != nil {
		return err
	}

	business := r.resolver.Business(ctx, order.BusinessID)
	businessName := ""
	if business != nil {
		businessName = business.Name
	}
	customerName := r.resolver.CustomerName(ctx, order)

	body := notify.CourierAssignmentBody(order, businessName, customerName, notify.AssignmentLinks{
		ConfirmURL: actions.ActionURL(r.dashboardURL, confirmToken, enums.CourierActionConfirm),
		DiscardURL: actions.ActionURL(r.dashboardURL, discardToken, enums.CourierActionDiscard),
	})

	var to []string
	if email := recipients.CourierEmail(courier); email != "" {
		to = append(to, email)
	}

	return r.dispatcher.Deliver(ctx, notify.Message{
		Event:   enums.EventCourierAssigned,
		To:      to,
		Subject: notify.CourierAssignmentSubject(order),
		Body:    body,
		Feed: &notify.FeedEntry{
			BusinessID: order.BusinessID,
			Type:       enums.NotificationTypeOrder,
			Title:      "Repartidor asignado",
			Message:    fmt.Sprintf("Pedido #%s asignado a %s", order.ShortID(), courier.Name),
		},
	})
}

func (r *Router) handleBusinessWrite(ctx context.Context, event DocumentEvent) {
	after, err := decodeBusiness(event.After)
	if err != nil {
		r.log.Warn(ctx, "dispatch.business_snapshot_invalid")
		return
	}
	ctx = r.log.WithBusinessID(ctx, after.ID.String())

	if event.Kind == enums.DocumentCreated || len(event.Before) == 0 {
		r.log.Info(ctx, "dispatch.business_created")
		return
	}

	before, err := decodeBusiness(event.Before)
	if err != nil {
		r.log.Warn(ctx, "dispatch.business_snapshot_invalid")
		return
	}

	if !equalStringPtr(before.ManualStoreStatus, after.ManualStoreStatus) {
		r.log.Info(r.log.WithFields(ctx, map[string]any{
			"from": stringPtrValue(before.ManualStoreStatus),
			"to":   stringPtrValue(after.ManualStoreStatus),
		}), "dispatch.business_store_status_changed")
	}
	if settingsChanged(before.NotificationSettings, after.NotificationSettings) {
		r.log.Info(ctx, "dispatch.business_notification_settings_changed")
	}
}

func (r *Router) handleCheckoutCreated(ctx context.Context, progress *models.CheckoutProgress) {
	ctx = r.log.WithBusinessID(ctx, progress.BusinessID.String())
	r.runTasks(ctx, []task{
		{name: "checkout_progress_mail", run: func(ctx context.Context) error {
			business := r.resolver.Business(ctx, progress.BusinessID)
			clientName := r.resolver.ClientNameByID(ctx, progress.ClientID)

			subject := notify.CheckoutProgressSubject("")
			if business != nil {
				subject = notify.CheckoutProgressSubject(business.Name)
			}
			return r.dispatcher.Deliver(ctx, notify.Message{
				Event:   enums.EventCheckoutProgress,
				To:      r.resolver.BusinessEmails(business, enums.EventCheckoutProgress),
				Subject: subject,
				Body:    notify.CheckoutProgressBody(clientName, progress),
				Feed: &notify.FeedEntry{
					BusinessID: progress.BusinessID,
					Type:       enums.NotificationTypeCheckout,
					Title:      "Carrito en progreso",
					Message:    fmt.Sprintf("%s tiene un carrito en progreso", clientName),
				},
			})
		}},
	})
}

type task struct {
	name string
	run  func(ctx context.Context) error
}

// runTasks executes the tasks concurrently and waits for all of them. Failures
// are aggregated for the log line but never propagated.
func (r *Router) runTasks(ctx context.Context, tasks []task) {
	if len(tasks) == 0 {
		return
	}

	var wg sync.WaitGroup
	var mu sync.Mutex
	var errs error

	for _, t := range tasks {
		wg.Add(1)
		go func(t task) {
			defer wg.Done()
			taskCtx := r.log.WithField(ctx, "task", t.name)
			if err := t.run(taskCtx); err != nil {
				mu.Lock()
				errs = multierr.Append(errs, fmt.Errorf("%s: %w", t.name, err))
				mu.Unlock()
			}
		}(t)
	}
	wg.Wait()

	if errs != nil {
		r.log.Error(ctx, "dispatch.tasks_failed", errs)
	}
}

func equalStringPtr(a, b *string) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}

func stringPtrValue(p *string) string {
	if p == nil {
		return ""
	}
	return *p
}

func settingsChanged(before, after map[string]bool) bool {
	if len(before) != len(after) {
		return true
	}
	for key, value := range before {
		other, ok := after[key]
		if !ok || other != value {
			return true
		}
	}
	return false
}
