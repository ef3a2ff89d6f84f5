package order

import (
	"context"
	"fmt"
	"strings"

	"procurement-be/internal/logger"
	"procurement-be/internal/notify"

	"go.uber.org/zap"
)

// Directory answers the profile questions the order engine needs without
// depending on the profile package.
type Directory interface {
	// ChainStoreOwner returns the purchaser a chain store belongs to.
	ChainStoreOwner(ctx context.Context, chainStoreID int64) (int64, error)
	PurchaserEmail(ctx context.Context, purchaserID int64) (string, error)
	SupplierEmail(ctx context.Context, supplierID int64) (string, error)
}

func SupplierMessage(o *Order, supplierID int64, to string) notify.Message {
	var b strings.Builder
	fmt.Fprintf(&b, "Order #%d has positions for you:\n", o.ID)
	for _, p := range o.Positions {
		if p.SupplierID != supplierID {
			continue
		}
		fmt.Fprintf(&b, "- %s (%s): %d x %s = %s\n",
			p.ProductName, p.Article, p.Quantity, p.Price.StringFixed(2), p.Amount().StringFixed(2))
	}
	return notify.Message{
		To:      to,
		Subject: fmt.Sprintf("New order #%d", o.ID),
		Body:    b.String(),
	}
}

func PurchaserMessage(o *Order, to string) notify.Message {
	return notify.Message{
		To:      to,
		Subject: fmt.Sprintf("Order #%d placed", o.ID),
		Body: fmt.Sprintf("Your order #%d has been saved.\nPositions: %d\nTotal quantity: %d\nTotal amount: %s\n",
			o.ID, len(o.Positions), o.TotalQuantity(), o.TotalAmount().StringFixed(2)),
	}
}

// notifyPlaced runs after the placement transaction has committed. Lookup
// failures only cost the affected message.
func (s *service) notifyPlaced(ctx context.Context, o *Order) {
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "service"),
		zap.String("method", "notifyPlaced"),
		zap.Int64("order_id", o.ID),
	)

	msgs := make([]notify.Message, 0, len(o.Positions)+1)
	for _, supplierID := range o.SupplierIDs() {
		email, err := s.dir.SupplierEmail(ctx, supplierID)
		if err != nil {
			log.Warn("skip supplier notification", zap.Int64("supplier_id", supplierID), zap.Error(err))
			continue
		}
		msgs = append(msgs, SupplierMessage(o, supplierID, email))
	}

	email, err := s.dir.PurchaserEmail(ctx, o.PurchaserID)
	if err != nil {
		log.Warn("skip purchaser notification", zap.Error(err))
	} else {
		msgs = append(msgs, PurchaserMessage(o, email))
	}

	if len(msgs) > 0 {
		s.notifier.Notify(ctx, msgs...)
	}
}
