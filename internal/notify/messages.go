package notify

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/ordena-app/ordena-backend/pkg/db/models"
)

// Customer- and business-facing copy is Spanish, the platform's language.

// OrderCreatedSubject is used for client-placed orders.
func OrderCreatedSubject(order *models.Order) string {
	return fmt.Sprintf("Nuevo pedido #%s", order.ShortID())
}

func OrderCreatedBody(order *models.Order, customerName string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "<h2>Nuevo pedido #%s</h2>", order.ShortID())
	fmt.Fprintf(&b, "<p>Cliente: %s</p>", customerName)
	writeItemTable(&b, order)
	writeTotals(&b, order)
	writeScheduleLine(&b, order)
	return b.String()
}

// ManualOrderSubject is used for orders registered by business staff.
func ManualOrderSubject(order *models.Order) string {
	return fmt.Sprintf("Pedido manual registrado #%s", order.ShortID())
}

func ManualOrderBody(order *models.Order, customerName string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "<h2>Pedido manual #%s</h2>", order.ShortID())
	fmt.Fprintf(&b, "<p>Registrado para: %s</p>", customerName)
	writeItemTable(&b, order)
	writeTotals(&b, order)
	writeScheduleLine(&b, order)
	return b.String()
}

// AssignmentLinks carries the pre-built action URLs for the courier mail.
type AssignmentLinks struct {
	ConfirmURL string
	DiscardURL string
}

func CourierAssignmentSubject(order *models.Order) string {
	return fmt.Sprintf("Nueva entrega asignada #%s", order.ShortID())
}

func CourierAssignmentBody(order *models.Order, businessName, customerName string, links AssignmentLinks) string {
	var b strings.Builder
	fmt.Fprintf(&b, "<h2>Entrega asignada: pedido #%s</h2>", order.ShortID())
	fmt.Fprintf(&b, "<p>Negocio: %s</p>", businessName)
	fmt.Fprintf(&b, "<p>Cliente: %s</p>", customerName)
	if order.DeliveryAddress != "" {
		fmt.Fprintf(&b, "<p>Dirección: %s</p>", order.DeliveryAddress)
	}
	fmt.Fprintf(&b, "<p>Costo de envío: $%s</p>", order.DeliveryCost.StringFixed(2))
	fmt.Fprintf(&b, `<p><a href="%s">Confirmar entrega</a> &nbsp; <a href="%s">Rechazar entrega</a></p>`,
		links.ConfirmURL, links.DiscardURL)
	return b.String()
}

func ReminderSubject(order *models.Order) string {
	return fmt.Sprintf("Recordatorio: pedido programado #%s", order.ShortID())
}

func ReminderBody(order *models.Order, customerName string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "<h2>Pedido programado próximo a entregarse</h2>")
	fmt.Fprintf(&b, "<p>Pedido #%s de %s, programado para las %s.</p>",
		order.ShortID(), customerName, order.ScheduledTime)
	writeItemTable(&b, order)
	return b.String()
}

// DigestRow is one scheduled order line in the daily summary, already sorted
// by its normalized "HH:MM" slot.
type DigestRow struct {
	Time         string
	CustomerName string
	Status       string
	Total        decimal.Decimal
}

func DigestSubject(businessName, localDate string) string {
	return fmt.Sprintf("Pedidos programados de hoy - %s (%s)", businessName, localDate)
}

func DigestBody(businessName string, rows []DigestRow, revenue decimal.Decimal) string {
	var b strings.Builder
	fmt.Fprintf(&b, "<h2>Resumen de pedidos programados - %s</h2>", businessName)
	if len(rows) == 0 {
		b.WriteString("<p>No hay pedidos programados para hoy.</p>")
		return b.String()
	}
	b.WriteString("<table><tr><th>Hora</th><th>Cliente</th><th>Estado</th><th>Total</th></tr>")
	for _, row := range rows {
		fmt.Fprintf(&b, "<tr><td>%s</td><td>%s</td><td>%s</td><td>$%s</td></tr>",
			row.Time, row.CustomerName, row.Status, row.Total.StringFixed(2))
	}
	b.WriteString("</table>")
	fmt.Fprintf(&b, "<p>Total estimado del día: $%s</p>", revenue.StringFixed(2))
	return b.String()
}

func CheckoutProgressSubject(businessName string) string {
	return fmt.Sprintf("Carrito en progreso - %s", businessName)
}

func CheckoutProgressBody(clientName string, progress *models.CheckoutProgress) string {
	var b strings.Builder
	b.WriteString("<h2>Un cliente dejó un carrito en progreso</h2>")
	fmt.Fprintf(&b, "<p>Cliente: %s</p>", clientName)
	if progress != nil {
		if progress.Step != "" {
			fmt.Fprintf(&b, "<p>Etapa: %s</p>", progress.Step)
		}
		if progress.CartSize > 0 {
			fmt.Fprintf(&b, "<p>Artículos en el carrito: %d</p>", progress.CartSize)
		}
	}
	return b.String()
}

func writeItemTable(b *strings.Builder, order *models.Order) {
	if len(order.Items) == 0 {
		return
	}
	b.WriteString("<table><tr><th>Producto</th><th>Cant.</th><th>Precio</th></tr>")
	for _, item := range order.Items {
		name := item.Name
		if item.Variant != "" {
			name = name + " (" + item.Variant + ")"
		}
		fmt.Fprintf(b, "<tr><td>%s</td><td>%d</td><td>$%s</td></tr>",
			name, item.Quantity, item.Price.StringFixed(2))
	}
	b.WriteString("</table>")
}

func writeTotals(b *strings.Builder, order *models.Order) {
	fmt.Fprintf(b, "<p>Subtotal: $%s<br>Envío: $%s<br>Total: $%s</p>",
		order.Subtotal.StringFixed(2), order.DeliveryCost.StringFixed(2), order.Total.StringFixed(2))
}

func writeScheduleLine(b *strings.Builder, order *models.Order) {
	if order.ScheduledTime == "" {
		return
	}
	fmt.Fprintf(b, "<p>Programado para las %s</p>", order.ScheduledTime)
}
