package metrics

import (
	"sync/atomic"
	"time"
)

type Counter struct {
	value atomic.Uint64
}

func (c *Counter) Inc() {
	c.value.Add(1)
}

func (c *Counter) Load() uint64 {
	return c.value.Load()
}

type Timer struct {
	start time.Time
}

func StartTimer() *Timer {
	return &Timer{start: time.Now()}
}

func (t *Timer) Duration() time.Duration {
	return time.Since(t.start)
}

// Engine counts order lifecycle outcomes for the process.
type Engine struct {
	OrdersPlaced     Counter
	OrdersReplayed   Counter
	OrdersCancelled  Counter
	StockRejections  Counter
	PositionsUpdated Counter

	placeNanos atomic.Int64
}

// ObservePlacement records how long the last successful placement took.
func (e *Engine) ObservePlacement(d time.Duration) {
	e.placeNanos.Store(int64(d))
}

func (e *Engine) Snapshot() map[string]any {
	return map[string]any{
		"orders_placed":         e.OrdersPlaced.Load(),
		"orders_replayed":       e.OrdersReplayed.Load(),
		"orders_cancelled":      e.OrdersCancelled.Load(),
		"stock_rejections":      e.StockRejections.Load(),
		"positions_updated":     e.PositionsUpdated.Load(),
		"last_place_latency_ms": time.Duration(e.placeNanos.Load()).Milliseconds(),
	}
}
