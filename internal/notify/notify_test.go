package notify

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"procurement-be/internal/logger"

	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

type fakeWriter struct {
	mu     sync.Mutex
	msgs   []kafka.Message
	err    error
	closed bool
}

func (w *fakeWriter) WriteMessages(ctx context.Context, msgs ...kafka.Message) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.err != nil {
		return w.err
	}
	w.msgs = append(w.msgs, msgs...)
	return nil
}

func (w *fakeWriter) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.closed = true
	return nil
}

func TestKafkaNotifier(t *testing.T) {
	t.Run("PublishesEnvelope", func(t *testing.T) {
		w := &fakeWriter{}
		n := newKafkaNotifier(w, "procurement-api", 8)
		n.Start()

		ctx := logger.WithRequestID(context.Background(), "req-1")
		n.Notify(ctx,
			Message{To: "supplier@example.com", Subject: "New order #1", Body: "Tomato x900"},
			Message{To: "buyer@example.com", Subject: "Order #1 placed", Body: "total 135000"},
		)
		n.Close()

		require.Len(t, w.msgs, 2)
		assert.True(t, w.closed)
		assert.Equal(t, "supplier@example.com", string(w.msgs[0].Key))

		var env Envelope
		require.NoError(t, json.Unmarshal(w.msgs[0].Value, &env))
		assert.Equal(t, EventNotificationRequested, env.EventType)
		assert.Equal(t, "procurement-api", env.Producer)
		assert.Equal(t, "req-1", env.TraceID)
		assert.Equal(t, "New order #1", env.Payload.Subject)
		assert.NotEmpty(t, env.EventID)
	})

	t.Run("DropsWhenInboxFull", func(t *testing.T) {
		w := &fakeWriter{}
		n := newKafkaNotifier(w, "svc", 1)

		n.Notify(context.Background(), Message{To: "a"}, Message{To: "b"})
		n.Start()
		n.Close()

		require.Len(t, w.msgs, 1)
		assert.Equal(t, "a", string(w.msgs[0].Key))
	})

	t.Run("WriteErrorIsSwallowed", func(t *testing.T) {
		w := &fakeWriter{err: errors.New("broker down")}
		n := newKafkaNotifier(w, "svc", 4)
		n.Start()

		assert.NotPanics(t, func() {
			n.Notify(context.Background(), Message{To: "a"})
		})
		n.Close()
		assert.Empty(t, w.msgs)
	})

	t.Run("NotifyAfterClose", func(t *testing.T) {
		w := &fakeWriter{}
		n := newKafkaNotifier(w, "svc", 4)
		n.Start()
		n.Close()
		n.Close()

		assert.NotPanics(t, func() {
			n.Notify(context.Background(), Message{To: "late"})
		})
		assert.Empty(t, w.msgs)
	})

	t.Run("CloseWithoutStart", func(t *testing.T) {
		w := &fakeWriter{}
		n := newKafkaNotifier(w, "svc", 4)
		n.Notify(context.Background(), Message{To: "queued"})

		closed := make(chan struct{})
		go func() {
			n.Close()
			close(closed)
		}()

		select {
		case <-closed:
		case <-time.After(time.Second):
			t.Fatal("Close blocked without a running writer")
		}
		assert.True(t, w.closed)
		assert.Empty(t, w.msgs)

		n.Start()
		n.Close()
		assert.Empty(t, w.msgs)
	})
}

func TestLogNotifier(t *testing.T) {
	core, observed := observer.New(zapcore.InfoLevel)
	original := logger.L()
	logger.Set(zap.New(core))
	defer logger.Set(original)

	LogNotifier{}.Notify(context.Background(), Message{To: "a@example.com", Subject: "hi", Body: "body"})

	logs := observed.TakeAll()
	require.Len(t, logs, 1)
	assert.Equal(t, "a@example.com", logs[0].ContextMap()["to"])
}
