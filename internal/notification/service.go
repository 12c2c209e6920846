package notification

import (
	"context"
	"time"

	"storefront/internal/metrics"
	"storefront/internal/model"

	"github.com/rs/zerolog"
)

const maxErrorLength = 2000

// watchedStatuses trigger a customer email when entered.
var watchedStatuses = map[model.OrderStatus]bool{
	model.StatusProcessing: true,
	model.StatusDelivered:  true,
	model.StatusCancelled:  true,
}

// Settings identify the store in outgoing messages.
type Settings struct {
	StoreName       string
	BaseURL         string
	WhatsAppNumber  string
	AdminRecipients []string
}

// Service delivers notifications synchronously. Wrap it in a Dispatcher
// to keep deliveries off the request path.
type Service struct {
	settings  Settings
	sender    EmailSender
	logs      LogStore
	publisher Publisher
	metrics   *metrics.Metrics
	now       func() time.Time
	logger    zerolog.Logger
}

// NewService creates a notification service. A nil sender means SMTP is not
// configured and a nil publisher disables event publishing.
func NewService(
	settings Settings,
	sender EmailSender,
	logs LogStore,
	publisher Publisher,
	m *metrics.Metrics,
	logger zerolog.Logger,
) *Service {
	if publisher == nil {
		publisher = NopPublisher{}
	}
	return &Service{
		settings:  settings,
		sender:    sender,
		logs:      logs,
		publisher: publisher,
		metrics:   m,
		now:       time.Now,
		logger:    logger.With().Str("service", "notification").Logger(),
	}
}

// OrderCreated emails the customer and the admins and publishes order.created.
func (s *Service) OrderCreated(ctx context.Context, order model.Order, items []model.OrderItem) {
	s.notifyCustomerOrderCreated(ctx, order, items)
	s.notifyAdminsOrderCreated(ctx, order, items)
	s.publish(ctx, OrderEvent{
		Type:       TopicEventCreated,
		OrderID:    order.ID,
		Reference:  order.Reference,
		Channel:    string(order.Channel),
		Status:     string(order.Status),
		GrandTotal: order.GrandTotal,
		Currency:   order.Currency,
		RiskLevel:  order.RiskLevel,
		OccurredAt: s.now().UTC(),
	})
}

// StatusChanged emails the customer when the order enters a watched status
// and publishes order.status_changed for every change.
func (s *Service) StatusChanged(ctx context.Context, order model.Order, previous, next model.OrderStatus) {
	if previous == next {
		return
	}

	s.publish(ctx, OrderEvent{
		Type:           TopicEventStatusChanged,
		OrderID:        order.ID,
		Reference:      order.Reference,
		Channel:        string(order.Channel),
		Status:         string(next),
		PreviousStatus: string(previous),
		GrandTotal:     order.GrandTotal,
		Currency:       order.Currency,
		OccurredAt:     s.now().UTC(),
	})

	if !watchedStatuses[next] {
		return
	}

	payload := map[string]string{"previousStatus": string(previous), "nextStatus": string(next)}
	entry := model.NotificationLog{
		OrderID:   &order.ID,
		EventType: EventOrderStatusChanged,
		Channel:   ChannelEmail,
		Recipient: order.CustomerEmail,
		Payload:   payload,
	}

	if s.sender == nil {
		entry.Status = model.NotificationSkipped
		entry.ErrorMessage = "SMTP not configured"
		s.record(ctx, entry)
		return
	}

	subject, body := statusChangedEmail(order, previous, next)
	if err := s.sender.Send(ctx, order.CustomerEmail, subject, body); err != nil {
		entry.Status = model.NotificationFailed
		entry.ErrorMessage = err.Error()
		s.record(ctx, entry)
		return
	}
	entry.Status = model.NotificationSent
	s.record(ctx, entry)
}

func (s *Service) notifyCustomerOrderCreated(ctx context.Context, order model.Order, items []model.OrderItem) {
	entry := model.NotificationLog{
		OrderID:   &order.ID,
		EventType: EventOrderCreatedCustomer,
		Channel:   ChannelEmail,
		Recipient: order.CustomerEmail,
	}

	if s.sender == nil {
		entry.Channel = ChannelWhatsAppLink
		entry.Status = model.NotificationFallback
		entry.ErrorMessage = "SMTP not configured"
		entry.Payload = s.fallback(order, items)
		s.record(ctx, entry)
		return
	}

	subject, body := customerOrderEmail(s.settings.StoreName, order, items)
	if err := s.sender.Send(ctx, order.CustomerEmail, subject, body); err != nil {
		entry.Status = model.NotificationFailed
		entry.ErrorMessage = err.Error()
		entry.Payload = s.fallback(order, items)
		s.record(ctx, entry)
		return
	}
	entry.Status = model.NotificationSent
	s.record(ctx, entry)
}

func (s *Service) notifyAdminsOrderCreated(ctx context.Context, order model.Order, items []model.OrderItem) {
	if len(s.settings.AdminRecipients) == 0 {
		s.record(ctx, model.NotificationLog{
			OrderID:      &order.ID,
			EventType:    EventOrderCreatedAdmin,
			Channel:      ChannelEmail,
			Status:       model.NotificationSkipped,
			ErrorMessage: "admin notification recipients not configured",
		})
		return
	}

	subject, body := adminOrderEmail(order, items)
	for _, recipient := range s.settings.AdminRecipients {
		entry := model.NotificationLog{
			OrderID:   &order.ID,
			EventType: EventOrderCreatedAdmin,
			Channel:   ChannelEmail,
			Recipient: recipient,
		}

		if s.sender == nil {
			entry.Status = model.NotificationSkipped
			entry.ErrorMessage = "SMTP not configured"
		} else if err := s.sender.Send(ctx, recipient, subject, body); err != nil {
			entry.Status = model.NotificationFailed
			entry.ErrorMessage = err.Error()
		} else {
			entry.Status = model.NotificationSent
		}
		s.record(ctx, entry)
	}
}

// fallback is the WhatsApp payload offered when email cannot be delivered.
func (s *Service) fallback(order model.Order, items []model.OrderItem) map[string]string {
	text := WhatsAppOrderText(s.settings.StoreName, s.settings.BaseURL, order, items)
	return map[string]string{
		"text":        text,
		"whatsappUrl": WhatsAppURL(s.settings.WhatsAppNumber, text),
	}
}

func (s *Service) publish(ctx context.Context, event OrderEvent) {
	if err := s.publisher.PublishEvent(ctx, event.Reference, event); err != nil {
		s.metrics.RecordNotification(ChannelKafka, model.NotificationFailed)
		s.logger.Warn().
			Err(err).
			Str("reference", event.Reference).
			Str("event_type", event.Type).
			Msg("failed to publish order event")
		return
	}
	s.metrics.RecordNotification(ChannelKafka, model.NotificationSent)
}

// record writes entry to the notification log. Failures are only logged.
func (s *Service) record(ctx context.Context, entry model.NotificationLog) {
	if len(entry.ErrorMessage) > maxErrorLength {
		entry.ErrorMessage = entry.ErrorMessage[:maxErrorLength]
	}
	entry.CreatedAt = s.now()

	s.metrics.RecordNotification(entry.Channel, entry.Status)

	event := s.logger.Debug()
	if entry.Status == model.NotificationFailed {
		event = s.logger.Warn().Str("error_message", entry.ErrorMessage)
	}
	event.
		Str("event_type", entry.EventType).
		Str("channel", entry.Channel).
		Str("recipient", entry.Recipient).
		Str("status", entry.Status).
		Msg("notification attempt")

	if s.logs == nil {
		return
	}
	if err := s.logs.Insert(ctx, &entry); err != nil {
		s.logger.Error().Err(err).Str("event_type", entry.EventType).Msg("failed to write notification log")
	}
}
