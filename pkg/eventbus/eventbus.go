package eventbus

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/nats-io/nats.go"
	"github.com/richxcame/crediscore/pkg/logger"
	"go.uber.org/zap"
)

// Subjects published and consumed by the trust engine
const (
	SubjectReviewCreated         = "review.created"
	SubjectDocumentVerified      = "document.verified"
	SubjectFraudReportResolved   = "fraud_report.resolved"
	SubjectPaymentMethodVerified = "payment_method.verified"
	SubjectBusinessVerified      = "business.verified"
	SubjectUserFlagged           = "user.flagged"
)

// TrustSubjects are the events after which a business trust score is recomputed
var TrustSubjects = []string{
	SubjectReviewCreated,
	SubjectDocumentVerified,
	SubjectFraudReportResolved,
	SubjectPaymentMethodVerified,
	SubjectBusinessVerified,
}

const handlerTimeout = 30 * time.Second

// Event is the JSON envelope carried on every subject
type Event struct {
	ID         string                 `json:"id"`
	Type       string                 `json:"type"`
	EntityID   string                 `json:"entity_id"`
	BusinessID string                 `json:"business_id,omitempty"`
	UserID     string                 `json:"user_id,omitempty"`
	OccurredAt time.Time              `json:"occurred_at"`
	Data       map[string]interface{} `json:"data,omitempty"`
}

// NewEvent stamps an event with an id and time
func NewEvent(eventType, entityID string) Event {
	return Event{
		ID:         uuid.NewString(),
		Type:       eventType,
		EntityID:   entityID,
		OccurredAt: time.Now().UTC(),
	}
}

// Handler processes one event
type Handler func(ctx context.Context, evt Event) error

// Bus publishes and subscribes to domain events
type Bus interface {
	Publish(ctx context.Context, subject string, evt Event) error
	Subscribe(subject string, handler Handler) error
	Close()
}

// ============================================================================
// NATS
// ============================================================================

// NATSBus is a Bus backed by core NATS subjects
type NATSBus struct {
	conn *nats.Conn
	mu   sync.Mutex
	subs []*nats.Subscription
}

// NewNATSBus connects to NATS with unlimited reconnects
func NewNATSBus(url, clientName string) (*NATSBus, error) {
	conn, err := nats.Connect(url,
		nats.Name(clientName),
		nats.MaxReconnects(-1),
		nats.ReconnectWait(2*time.Second),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			if err != nil {
				logger.Warn("nats disconnected", zap.Error(err))
			}
		}),
		nats.ReconnectHandler(func(c *nats.Conn) {
			logger.Info("nats reconnected", zap.String("url", c.ConnectedUrl()))
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to nats: %w", err)
	}
	return &NATSBus{conn: conn}, nil
}

// Publish marshals evt and publishes it on subject
func (b *NATSBus) Publish(ctx context.Context, subject string, evt Event) error {
	if evt.Type == "" {
		evt.Type = subject
	}
	data, err := json.Marshal(evt)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}
	if err := b.conn.Publish(subject, data); err != nil {
		return fmt.Errorf("failed to publish %s: %w", subject, err)
	}
	return nil
}

// Subscribe registers handler on subject. Handler errors are logged.
func (b *NATSBus) Subscribe(subject string, handler Handler) error {
	sub, err := b.conn.Subscribe(subject, func(msg *nats.Msg) {
		var evt Event
		if err := json.Unmarshal(msg.Data, &evt); err != nil {
			logger.Warn("dropping malformed event", zap.String("subject", msg.Subject), zap.Error(err))
			return
		}
		dispatch(subject, handler, evt)
	})
	if err != nil {
		return fmt.Errorf("failed to subscribe to %s: %w", subject, err)
	}

	b.mu.Lock()
	b.subs = append(b.subs, sub)
	b.mu.Unlock()
	return nil
}

// Close drains subscriptions and the connection
func (b *NATSBus) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()
	for _, sub := range b.subs {
		_ = sub.Unsubscribe()
	}
	b.subs = nil
	if err := b.conn.Drain(); err != nil {
		logger.Warn("failed to drain nats connection", zap.Error(err))
	}
}

// ============================================================================
// In-process
// ============================================================================

// MemoryBus dispatches synchronously to in-process subscribers and keeps a
// copy of every published event. Used when NATS is disabled.
type MemoryBus struct {
	mu        sync.RWMutex
	handlers  map[string][]Handler
	published []Event
}

// NewMemoryBus creates an empty in-process bus
func NewMemoryBus() *MemoryBus {
	return &MemoryBus{handlers: make(map[string][]Handler)}
}

// Publish delivers evt to every handler on subject
func (b *MemoryBus) Publish(ctx context.Context, subject string, evt Event) error {
	if evt.Type == "" {
		evt.Type = subject
	}

	b.mu.Lock()
	b.published = append(b.published, evt)
	handlers := append([]Handler(nil), b.handlers[subject]...)
	b.mu.Unlock()

	for _, h := range handlers {
		dispatch(subject, h, evt)
	}
	return nil
}

// Subscribe registers handler on subject
func (b *MemoryBus) Subscribe(subject string, handler Handler) error {
	b.mu.Lock()
	b.handlers[subject] = append(b.handlers[subject], handler)
	b.mu.Unlock()
	return nil
}

// Published returns a copy of the events published so far
func (b *MemoryBus) Published() []Event {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return append([]Event(nil), b.published...)
}

// Close is a no-op
func (b *MemoryBus) Close() {}

func dispatch(subject string, handler Handler, evt Event) {
	ctx, cancel := context.WithTimeout(context.Background(), handlerTimeout)
	defer cancel()

	if evt.ID != "" {
		ctx = logger.ContextWithCorrelationID(ctx, evt.ID)
	}
	if err := handler(ctx, evt); err != nil {
		logger.WithContext(ctx).Warn("event handler failed",
			zap.String("subject", subject),
			zap.String("entity_id", evt.EntityID),
			zap.Error(err),
		)
	}
}
