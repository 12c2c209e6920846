package notification

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"storefront/internal/model"
)

// FormatNaira renders a whole-naira amount with thousands separators.
func FormatNaira(amount int64) string {
	sign := ""
	if amount < 0 {
		sign = "-"
		amount = -amount
	}

	digits := strconv.FormatInt(amount, 10)
	var b strings.Builder
	for i, d := range digits {
		if i > 0 && (len(digits)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(d)
	}
	return sign + "₦" + b.String()
}

// WhatsAppURL builds a wa.me link that opens a chat with text prefilled.
// Non-digits are stripped from number.
func WhatsAppURL(number, text string) string {
	digits := strings.Map(func(r rune) rune {
		if r >= '0' && r <= '9' {
			return r
		}
		return -1
	}, number)
	return fmt.Sprintf("https://wa.me/%s?text=%s", digits, url.QueryEscape(text))
}

// TrackURL is the customer tracking page for reference.
func TrackURL(baseURL, reference string) string {
	return strings.TrimRight(baseURL, "/") + "/track/" + url.PathEscape(reference)
}

// WhatsAppOrderText is the order summary prefilled into a WhatsApp chat.
func WhatsAppOrderText(storeName, baseURL string, order model.Order, items []model.OrderItem) string {
	name := order.CustomerName
	if name == "" {
		name = "Customer"
	}

	lines := []string{
		fmt.Sprintf("Order Confirmation: %s", order.Reference),
		fmt.Sprintf("Hello %s, your order has been received by %s.", name, storeName),
		"",
	}
	for i, item := range items {
		lines = append(lines, fmt.Sprintf("%d. %s x %d - %s", i+1, item.ProductName, item.Quantity, FormatNaira(item.LineTotal)))
	}
	lines = append(lines, "")
	lines = append(lines, totalsLines(order)...)
	lines = append(lines,
		fmt.Sprintf("Status: %s", order.Status.Label()),
		fmt.Sprintf("Track: %s", TrackURL(baseURL, order.Reference)),
	)
	return strings.Join(lines, "\n")
}

func totalsLines(order model.Order) []string {
	lines := []string{fmt.Sprintf("Subtotal: %s", FormatNaira(order.SubtotalAmount))}
	if order.DiscountAmount > 0 {
		lines = append(lines, fmt.Sprintf("Coupon discount: -%s", FormatNaira(order.DiscountAmount)))
	}
	if order.PromoDiscountAmount > 0 {
		lines = append(lines, fmt.Sprintf("Promo discount: -%s", FormatNaira(order.PromoDiscountAmount)))
	}
	return append(lines,
		fmt.Sprintf("Delivery: %s", FormatNaira(order.DeliveryFee)),
		fmt.Sprintf("Grand Total: %s", FormatNaira(order.GrandTotal)),
	)
}

func itemLines(items []model.OrderItem) []string {
	if len(items) == 0 {
		return []string{"- No items captured"}
	}
	lines := make([]string, 0, len(items))
	for _, item := range items {
		lines = append(lines, fmt.Sprintf("- %d x %s (%s)", item.Quantity, item.ProductName, FormatNaira(item.LineTotal)))
	}
	return lines
}

func customerOrderEmail(storeName string, order model.Order, items []model.OrderItem) (string, string) {
	name := order.CustomerName
	if name == "" {
		name = "Customer"
	}

	subject := fmt.Sprintf("Order received: %s", order.Reference)
	lines := []string{
		fmt.Sprintf("Hi %s,", name),
		"",
		fmt.Sprintf("Your order has been received by %s.", storeName),
		fmt.Sprintf("Reference: %s", order.Reference),
		fmt.Sprintf("Status: %s", order.Status.Label()),
	}
	lines = append(lines, totalsLines(order)...)
	lines = append(lines, "", "Items:")
	lines = append(lines, itemLines(items)...)
	return subject, strings.Join(lines, "\n")
}

func adminOrderEmail(order model.Order, items []model.OrderItem) (string, string) {
	subject := fmt.Sprintf("New order alert: %s", order.Reference)
	lines := []string{
		"A new order was created.",
		fmt.Sprintf("Order ID: %s", order.ID),
		fmt.Sprintf("Reference: %s", order.Reference),
		fmt.Sprintf("Channel: %s", order.Channel),
		fmt.Sprintf("Customer: %s (%s)", order.CustomerName, order.CustomerEmail),
		fmt.Sprintf("Status: %s", order.Status.Label()),
		fmt.Sprintf("Grand Total: %s", FormatNaira(order.GrandTotal)),
		fmt.Sprintf("Risk: %s (%d)", order.RiskLevel, order.RiskScore),
	}
	if order.ManualReviewStatus == model.ReviewQueued {
		lines = append(lines, "Manual review: queued")
	}
	lines = append(lines, "", "Items:")
	lines = append(lines, itemLines(items)...)
	return subject, strings.Join(lines, "\n")
}

func statusChangedEmail(order model.Order, previous, next model.OrderStatus) (string, string) {
	name := order.CustomerName
	if name == "" {
		name = "Customer"
	}

	subject := fmt.Sprintf("Order update: %s is now %s", order.Reference, next.Label())
	body := strings.Join([]string{
		fmt.Sprintf("Hi %s,", name),
		"",
		fmt.Sprintf("Your order %s status changed from %s to %s.", order.Reference, previous.Label(), next.Label()),
	}, "\n")
	return subject, body
}
