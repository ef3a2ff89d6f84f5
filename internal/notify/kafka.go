package notify

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"procurement-be/internal/logger"

	"github.com/google/uuid"
	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

const EventNotificationRequested = "NotificationRequested"

type Envelope struct {
	EventID      string    `json:"event_id"`
	EventType    string    `json:"event_type"`
	EventVersion int       `json:"event_version"`
	OccurredAt   time.Time `json:"occurred_at"`
	Producer     string    `json:"producer"`
	TraceID      string    `json:"trace_id,omitempty"`
	Payload      Message   `json:"payload"`
}

// MessageWriter is the subset of *kafka.Writer the notifier needs.
type MessageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// KafkaNotifier publishes messages through a buffered inbox drained by one
// background goroutine. When the inbox is full messages are dropped.
type KafkaNotifier struct {
	w        MessageWriter
	producer string
	inbox    chan kafka.Message
	done     chan struct{}

	mu      sync.RWMutex
	started bool
	closed  bool
}

func NewKafkaNotifier(brokers []string, topic, producer string, buf int) *KafkaNotifier {
	return newKafkaNotifier(&kafka.Writer{
		Addr:         kafka.TCP(brokers...),
		Topic:        topic,
		Balancer:     &kafka.Hash{},
		RequiredAcks: kafka.RequireAll,
	}, producer, buf)
}

func newKafkaNotifier(w MessageWriter, producer string, buf int) *KafkaNotifier {
	return &KafkaNotifier{
		w:        w,
		producer: producer,
		inbox:    make(chan kafka.Message, buf),
		done:     make(chan struct{}),
	}
}

// Start launches the writer goroutine. Calling it again, or after Close, does
// nothing.
func (n *KafkaNotifier) Start() {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.started || n.closed {
		return
	}
	n.started = true

	go func() {
		defer close(n.done)
		log := logger.L().With(zap.String("layer", "notify"))

		for m := range n.inbox {
			ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			if err := n.w.WriteMessages(ctx, m); err != nil {
				log.Error("failed to publish notification", zap.ByteString("key", m.Key), zap.Error(err))
			}
			cancel()
		}
		if err := n.w.Close(); err != nil {
			log.Error("failed to close kafka writer", zap.Error(err))
		}
	}()
}

func (n *KafkaNotifier) Notify(ctx context.Context, msgs ...Message) {
	log := logger.FromCtx(ctx).With(zap.String("layer", "notify"))

	n.mu.RLock()
	defer n.mu.RUnlock()
	if n.closed {
		log.Warn("notifier closed, dropping notifications", zap.Int("count", len(msgs)))
		return
	}

	for _, m := range msgs {
		value, err := json.Marshal(Envelope{
			EventID:      uuid.NewString(),
			EventType:    EventNotificationRequested,
			EventVersion: 1,
			OccurredAt:   time.Now().UTC(),
			Producer:     n.producer,
			TraceID:      logger.RequestIDFrom(ctx),
			Payload:      m,
		})
		if err != nil {
			log.Error("failed to encode notification", zap.Error(err))
			continue
		}

		select {
		case n.inbox <- kafka.Message{
			Key:     []byte(m.To),
			Value:   value,
			Time:    time.Now(),
			Headers: []kafka.Header{{Key: "x-event-type", Value: []byte(EventNotificationRequested)}},
		}:
		default:
			log.Warn("notification inbox full, dropping", zap.String("to", m.To))
		}
	}
}

// Close stops accepting messages, flushes the inbox and waits for the writer
// to shut down. Without a running writer goroutine the queued messages are
// dropped and the writer is closed directly.
func (n *KafkaNotifier) Close() {
	n.mu.Lock()
	if n.closed {
		n.mu.Unlock()
		return
	}
	n.closed = true
	close(n.inbox)
	started := n.started
	n.mu.Unlock()

	if started {
		<-n.done
		return
	}

	log := logger.L().With(zap.String("layer", "notify"))
	if pending := len(n.inbox); pending > 0 {
		log.Warn("notifier closed before start, dropping notifications", zap.Int("count", pending))
	}
	if err := n.w.Close(); err != nil {
		log.Error("failed to close kafka writer", zap.Error(err))
	}
}
