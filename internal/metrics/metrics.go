// Package metrics holds the Prometheus collectors exported on /metrics.
//
// All Record methods are safe to call on a nil *Metrics.
package metrics

import (
	"fmt"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics groups the storefront collectors.
type Metrics struct {
	httpRequests *prometheus.CounterVec
	httpDuration *prometheus.HistogramVec

	ordersCreated     *prometheus.CounterVec
	orderValue        prometheus.Histogram
	pricingRejections *prometheus.CounterVec
	couponRedemptions prometheus.Counter
	statusTransitions *prometheus.CounterVec
	reviewQueued      prometheus.Counter

	notifications     *prometheus.CounterVec
	notificationQueue prometheus.Gauge
	rateLimited       *prometheus.CounterVec
}

// New registers the collectors on registerer, or the default registerer when nil.
func New(registerer prometheus.Registerer) *Metrics {
	if registerer == nil {
		registerer = prometheus.DefaultRegisterer
	}

	return &Metrics{
		httpRequests: registerCounterVec(registerer, prometheus.CounterOpts{
			Name: "storefront_http_requests_total",
			Help: "HTTP requests by method, route and status code",
		}, []string{"method", "route", "status"}),
		httpDuration: registerHistogramVec(registerer, prometheus.HistogramOpts{
			Name:    "storefront_http_request_duration_seconds",
			Help:    "HTTP request latency",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "route"}),
		ordersCreated: registerCounterVec(registerer, prometheus.CounterOpts{
			Name: "storefront_orders_created_total",
			Help: "Orders persisted by checkout channel",
		}, []string{"channel"}),
		orderValue: registerHistogram(registerer, prometheus.HistogramOpts{
			Name:    "storefront_order_grand_total_naira",
			Help:    "Grand total of created orders",
			Buckets: []float64{5000, 20000, 50000, 100000, 500000, 1500000, 5000000, 20000000},
		}),
		pricingRejections: registerCounterVec(registerer, prometheus.CounterOpts{
			Name: "storefront_pricing_rejections_total",
			Help: "Checkouts rejected during pricing by error code",
		}, []string{"code"}),
		couponRedemptions: registerCounter(registerer, prometheus.CounterOpts{
			Name: "storefront_coupon_redemptions_total",
			Help: "Coupons redeemed by committed orders",
		}),
		statusTransitions: registerCounterVec(registerer, prometheus.CounterOpts{
			Name: "storefront_order_status_transitions_total",
			Help: "Order status transitions",
		}, []string{"from", "to"}),
		reviewQueued: registerCounter(registerer, prometheus.CounterOpts{
			Name: "storefront_orders_review_queued_total",
			Help: "Orders queued for manual risk review",
		}),
		notifications: registerCounterVec(registerer, prometheus.CounterOpts{
			Name: "storefront_notifications_total",
			Help: "Notification attempts by channel and outcome",
		}, []string{"channel", "status"}),
		notificationQueue: registerGauge(registerer, prometheus.GaugeOpts{
			Name: "storefront_notification_queue_depth",
			Help: "Notifications waiting for a worker",
		}),
		rateLimited: registerCounterVec(registerer, prometheus.CounterOpts{
			Name: "storefront_rate_limited_total",
			Help: "Requests rejected by the rate limiter",
		}, []string{"route"}),
	}
}

func registerCounter(registerer prometheus.Registerer, opts prometheus.CounterOpts) prometheus.Counter {
	collector := prometheus.NewCounter(opts)
	if err := registerer.Register(collector); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			existing, ok := are.ExistingCollector.(prometheus.Counter)
			if !ok {
				panic(fmt.Sprintf("collector %q already registered with unexpected type", opts.Name))
			}
			return existing
		}
		panic(fmt.Sprintf("register counter %q: %v", opts.Name, err))
	}
	return collector
}

func registerCounterVec(registerer prometheus.Registerer, opts prometheus.CounterOpts, labels []string) *prometheus.CounterVec {
	collector := prometheus.NewCounterVec(opts, labels)
	if err := registerer.Register(collector); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			existing, ok := are.ExistingCollector.(*prometheus.CounterVec)
			if !ok {
				panic(fmt.Sprintf("collector %q already registered with unexpected type", opts.Name))
			}
			return existing
		}
		panic(fmt.Sprintf("register counter vec %q: %v", opts.Name, err))
	}
	return collector
}

func registerGauge(registerer prometheus.Registerer, opts prometheus.GaugeOpts) prometheus.Gauge {
	collector := prometheus.NewGauge(opts)
	if err := registerer.Register(collector); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			existing, ok := are.ExistingCollector.(prometheus.Gauge)
			if !ok {
				panic(fmt.Sprintf("collector %q already registered with unexpected type", opts.Name))
			}
			return existing
		}
		panic(fmt.Sprintf("register gauge %q: %v", opts.Name, err))
	}
	return collector
}

func registerHistogram(registerer prometheus.Registerer, opts prometheus.HistogramOpts) prometheus.Histogram {
	collector := prometheus.NewHistogram(opts)
	if err := registerer.Register(collector); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			existing, ok := are.ExistingCollector.(prometheus.Histogram)
			if !ok {
				panic(fmt.Sprintf("collector %q already registered with unexpected type", opts.Name))
			}
			return existing
		}
		panic(fmt.Sprintf("register histogram %q: %v", opts.Name, err))
	}
	return collector
}

func registerHistogramVec(registerer prometheus.Registerer, opts prometheus.HistogramOpts, labels []string) *prometheus.HistogramVec {
	collector := prometheus.NewHistogramVec(opts, labels)
	if err := registerer.Register(collector); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			existing, ok := are.ExistingCollector.(*prometheus.HistogramVec)
			if !ok {
				panic(fmt.Sprintf("collector %q already registered with unexpected type", opts.Name))
			}
			return existing
		}
		panic(fmt.Sprintf("register histogram vec %q: %v", opts.Name, err))
	}
	return collector
}

// RecordHTTPRequest counts one served request.
func (m *Metrics) RecordHTTPRequest(method, route string, status int, duration time.Duration) {
	if m == nil {
		return
	}
	m.httpRequests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	m.httpDuration.WithLabelValues(method, route).Observe(duration.Seconds())
}

// RecordOrderCreated counts a committed order.
func (m *Metrics) RecordOrderCreated(channel string, grandTotal int64, reviewQueued bool) {
	if m == nil {
		return
	}
	m.ordersCreated.WithLabelValues(channel).Inc()
	m.orderValue.Observe(float64(grandTotal))
	if reviewQueued {
		m.reviewQueued.Inc()
	}
}

// RecordPricingRejection counts a checkout refused with code.
func (m *Metrics) RecordPricingRejection(code string) {
	if m == nil {
		return
	}
	m.pricingRejections.WithLabelValues(code).Inc()
}

// RecordCouponRedeemed counts a coupon redemption.
func (m *Metrics) RecordCouponRedeemed() {
	if m == nil {
		return
	}
	m.couponRedemptions.Inc()
}

// RecordStatusTransition counts an order moving from one status to another.
func (m *Metrics) RecordStatusTransition(from, to string) {
	if m == nil {
		return
	}
	m.statusTransitions.WithLabelValues(from, to).Inc()
}

// RecordNotification counts one delivery attempt.
func (m *Metrics) RecordNotification(channel, status string) {
	if m == nil {
		return
	}
	m.notifications.WithLabelValues(channel, status).Inc()
}

// SetNotificationQueueDepth reports the pending notification count.
func (m *Metrics) SetNotificationQueueDepth(depth int) {
	if m == nil {
		return
	}
	m.notificationQueue.Set(float64(depth))
}

// RecordRateLimited counts a rejected request.
func (m *Metrics) RecordRateLimited(route string) {
	if m == nil {
		return
	}
	m.rateLimited.WithLabelValues(route).Inc()
}
