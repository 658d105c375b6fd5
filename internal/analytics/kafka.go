package analytics

import (
	"context"
	"encoding/json"
	"time"

	"github.com/fjod/go_cart/storefront/domain"
	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

const (
	Topic         = "storefront-events"
	queueSize     = 1024
	maxBatch      = 100
	flushInterval = time.Second
)

type MessageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

type eventPayload struct {
	SessionID  string         `json:"session_id"`
	EventType  string         `json:"event_type"`
	Data       map[string]any `json:"data,omitempty"`
	OccurredAt time.Time      `json:"occurred_at"`
}

// KafkaTracker queues events and publishes them in batches from Run.
// A full queue drops the event.
type KafkaTracker struct {
	writer MessageWriter
	queue  chan kafka.Message
	tick   time.Duration
	log    *zap.Logger
	now    func() time.Time
}

func NewKafkaWriter(brokers ...string) *kafka.Writer {
	return &kafka.Writer{
		Addr:                   kafka.TCP(brokers...),
		Topic:                  Topic,
		Balancer:               &kafka.Hash{},
		AllowAutoTopicCreation: true,
	}
}

func NewKafkaTracker(w MessageWriter, log *zap.Logger) *KafkaTracker {
	if log == nil {
		log = zap.NewNop()
	}
	return &KafkaTracker{
		writer: w,
		queue:  make(chan kafka.Message, queueSize),
		tick:   flushInterval,
		log:    log,
		now:    time.Now,
	}
}

func (k *KafkaTracker) Track(_ context.Context, sessionID string, ev domain.TrackingEvent) {
	payload, err := json.Marshal(eventPayload{
		SessionID:  sessionID,
		EventType:  ev.Type,
		Data:       ev.Data,
		OccurredAt: k.now().UTC(),
	})
	if err != nil {
		k.log.Warn("failed to marshal tracking event", zap.String("event_type", ev.Type), zap.Error(err))
		return
	}

	msg := kafka.Message{
		Key:   []byte(sessionID), // per-session ordering
		Value: payload,
		Headers: []kafka.Header{
			{Key: "event_type", Value: []byte(ev.Type)},
		},
	}
	select {
	case k.queue <- msg:
	default:
		k.log.Warn("tracking queue full, event dropped", zap.String("event_type", ev.Type))
	}
}

// Run publishes queued events until ctx is done, then flushes what is left
// and closes the writer.
func (k *KafkaTracker) Run(ctx context.Context) {
	ticker := time.NewTicker(k.tick)
	defer ticker.Stop()

	batch := make([]kafka.Message, 0, maxBatch)
	for {
		select {
		case msg := <-k.queue:
			batch = append(batch, msg)
			if len(batch) >= maxBatch {
				batch = k.publish(ctx, batch)
			}
		case <-ticker.C:
			batch = k.publish(ctx, batch)
		case <-ctx.Done():
			k.drain(batch)
			return
		}
	}
}

func (k *KafkaTracker) drain(batch []kafka.Message) {
	for {
		select {
		case msg := <-k.queue:
			batch = append(batch, msg)
		default:
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			k.publish(ctx, batch)
			cancel()
			if err := k.writer.Close(); err != nil {
				k.log.Warn("failed to close kafka writer", zap.Error(err))
			}
			return
		}
	}
}

func (k *KafkaTracker) publish(ctx context.Context, batch []kafka.Message) []kafka.Message {
	if len(batch) == 0 {
		return batch
	}
	if err := k.writer.WriteMessages(ctx, batch...); err != nil {
		k.log.Warn("failed to publish tracking events", zap.Int("count", len(batch)), zap.Error(err))
	}
	return batch[:0]
}
