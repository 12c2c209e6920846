package notification

import (
	"net/url"
	"strings"
	"testing"

	"storefront/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFormatNaira(t *testing.T) {
	tests := []struct {
		amount int64
		want   string
	}{
		{0, "₦0"},
		{999, "₦999"},
		{1000, "₦1,000"},
		{49000, "₦49,000"},
		{1500000, "₦1,500,000"},
		{-2500, "-₦2,500"},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			assert.Equal(t, tt.want, FormatNaira(tt.amount))
		})
	}
}

func TestWhatsAppURL(t *testing.T) {
	got := WhatsAppURL("+234 809-174-7685", "Hello & welcome")

	u, err := url.Parse(got)
	require.NoError(t, err)
	assert.Equal(t, "wa.me", u.Host)
	assert.Equal(t, "/2348091747685", u.Path)
	assert.Equal(t, "Hello & welcome", u.Query().Get("text"))
}

func TestTrackURL(t *testing.T) {
	assert.Equal(t, "https://shop.example/track/VICBEST-1-ABC", TrackURL("https://shop.example/", "VICBEST-1-ABC"))
}

func sampleOrder() model.Order {
	return model.Order{
		Reference:      "VICBEST-1717243200000-QWERTY",
		CustomerName:   "Ada",
		CustomerEmail:  "ada@example.com",
		Status:         model.StatusProcessing,
		Channel:        model.ChannelWhatsApp,
		SubtotalAmount: 50000,
		DiscountAmount: 4000,
		DeliveryFee:    3000,
		GrandTotal:     49000,
		Currency:       "NGN",
	}
}

func sampleItems() []model.OrderItem {
	return []model.OrderItem{
		{ProductName: "Rice 50kg", Quantity: 2, UnitPrice: 25000, LineTotal: 50000},
	}
}

func TestWhatsAppOrderText(t *testing.T) {
	text := WhatsAppOrderText("Vicbest Store", "http://localhost:8080", sampleOrder(), sampleItems())

	lines := strings.Split(text, "\n")
	assert.Equal(t, "Order Confirmation: VICBEST-1717243200000-QWERTY", lines[0])
	assert.Contains(t, text, "Hello Ada, your order has been received by Vicbest Store.")
	assert.Contains(t, text, "1. Rice 50kg x 2 - ₦50,000")
	assert.Contains(t, text, "Coupon discount: -₦4,000")
	assert.NotContains(t, text, "Promo discount")
	assert.Contains(t, text, "Grand Total: ₦49,000")
	assert.Contains(t, text, "Status: Processing")
	assert.Equal(t, "Track: http://localhost:8080/track/VICBEST-1717243200000-QWERTY", lines[len(lines)-1])
}

func TestEmails(t *testing.T) {
	order := sampleOrder()

	subject, body := customerOrderEmail("Vicbest Store", order, sampleItems())
	assert.Equal(t, "Order received: VICBEST-1717243200000-QWERTY", subject)
	assert.Contains(t, body, "Hi Ada,")
	assert.Contains(t, body, "- 2 x Rice 50kg (₦50,000)")

	order.ManualReviewStatus = model.ReviewQueued
	subject, body = adminOrderEmail(order, nil)
	assert.Equal(t, "New order alert: VICBEST-1717243200000-QWERTY", subject)
	assert.Contains(t, body, "Manual review: queued")
	assert.Contains(t, body, "- No items captured")

	subject, body = statusChangedEmail(order, model.StatusProcessing, model.StatusDelivered)
	assert.Equal(t, "Order update: VICBEST-1717243200000-QWERTY is now Delivered", subject)
	assert.Contains(t, body, "changed from Processing to Delivered")
}
