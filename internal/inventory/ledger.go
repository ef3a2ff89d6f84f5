package inventory

import (
	"context"

	"procurement-be/internal/logger"

	"go.uber.org/zap"
)

// Ledger owns Stock.Quantity. Every call must run inside the caller's
// transaction: the stock row is locked before it is read and written, so
// concurrent reservations against one line are serialized.
type Ledger interface {
	// Reserve takes qty out of the free quantity or fails with
	// *InsufficientStockError leaving the stock untouched.
	Reserve(ctx context.Context, stockID int64, qty int) error
	// Release puts qty back. There is no upper bound.
	Release(ctx context.Context, stockID int64, qty int) error
	// Adjust reserves a positive delta and releases a negative one.
	Adjust(ctx context.Context, stockID int64, delta int) error
}

type ledger struct {
	repo Repository
}

func NewLedger(repo Repository) Ledger {
	return &ledger{repo: repo}
}

func (l *ledger) Reserve(ctx context.Context, stockID int64, qty int) error {
	if qty <= 0 {
		return ErrInvalidQuantity
	}
	return l.take(ctx, stockID, qty, false)
}

func (l *ledger) Release(ctx context.Context, stockID int64, qty int) error {
	if qty <= 0 {
		return ErrInvalidQuantity
	}
	return l.give(ctx, stockID, qty)
}

func (l *ledger) Adjust(ctx context.Context, stockID int64, delta int) error {
	switch {
	case delta > 0:
		return l.take(ctx, stockID, delta, true)
	case delta < 0:
		return l.give(ctx, stockID, -delta)
	}
	return nil
}

func (l *ledger) take(ctx context.Context, stockID int64, qty int, isDelta bool) error {
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "ledger"),
		zap.Int64("stock_id", stockID),
		zap.Int("qty", qty),
	)

	stock, err := l.repo.LockStock(ctx, stockID)
	if err != nil {
		return err
	}

	if qty > stock.Quantity {
		log.Warn("reservation rejected", zap.Int("available", stock.Quantity))
		return &InsufficientStockError{StockID: stockID, Available: stock.Quantity, Delta: isDelta}
	}

	if err := l.repo.UpdateQuantity(ctx, stockID, stock.Quantity-qty); err != nil {
		return err
	}

	log.Debug("stock reserved", zap.Int("remaining", stock.Quantity-qty))
	return nil
}

func (l *ledger) give(ctx context.Context, stockID int64, qty int) error {
	stock, err := l.repo.LockStock(ctx, stockID)
	if err != nil {
		return err
	}

	if err := l.repo.UpdateQuantity(ctx, stockID, stock.Quantity+qty); err != nil {
		return err
	}

	logger.FromCtx(ctx).Debug("stock released",
		zap.String("layer", "ledger"),
		zap.Int64("stock_id", stockID),
		zap.Int("qty", qty),
		zap.Int("remaining", stock.Quantity+qty),
	)
	return nil
}
