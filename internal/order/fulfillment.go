package order

// State is the supplier-side progress of one order position. It only moves
// forward: Pending, Confirmed, Delivered.
type State uint8

const (
	StatePending State = iota
	StateConfirmed
	StateDelivered
)

func (s State) String() string {
	switch s {
	case StateConfirmed:
		return "confirmed"
	case StateDelivered:
		return "delivered"
	default:
		return "pending"
	}
}

// Latches are the two persisted one-way flags a State is derived from.
// Delivered without Confirmed is reachable when the delivery policy allows it.
type Latches struct {
	Confirmed bool
	Delivered bool
}

func (l Latches) State() State {
	switch {
	case l.Delivered:
		return StateDelivered
	case l.Confirmed:
		return StateConfirmed
	}
	return StatePending
}

func (p *Position) State() State {
	return p.Latches().State()
}

type DeliveryPolicy uint8

const (
	// DeliverAnytime accepts delivered=true on an unconfirmed position.
	DeliverAnytime DeliveryPolicy = iota
	// DeliverAfterConfirmation requires the position to be confirmed first.
	DeliverAfterConfirmation
)

func PolicyFor(requireConfirmation bool) DeliveryPolicy {
	if requireConfirmation {
		return DeliverAfterConfirmation
	}
	return DeliverAnytime
}

// Change is a supplier request; nil fields are left alone.
type Change struct {
	Confirmed *bool
	Delivered *bool
}

// Transition applies ch to cur. It refuses empty requests, any change on a
// cancelled order and any attempt to clear a latch that is already set.
func Transition(cur Latches, status OrderStatus, ch Change, policy DeliveryPolicy) (Latches, error) {
	if ch.Confirmed == nil && ch.Delivered == nil {
		return cur, ErrNoFulfilmentChange
	}
	if status == StatusCancelled {
		return cur, ErrCancelledOrderImmutable
	}

	next := cur
	if ch.Confirmed != nil {
		switch {
		case *ch.Confirmed:
			next.Confirmed = true
		case cur.Confirmed:
			return cur, ErrCannotRevokeConfirmation
		}
	}
	if ch.Delivered != nil {
		switch {
		case *ch.Delivered:
			if policy == DeliverAfterConfirmation && !next.Confirmed {
				return cur, ErrDeliveryBeforeConfirmation
			}
			next.Delivered = true
		case cur.Delivered:
			return cur, ErrCannotRevokeDelivery
		}
	}
	return next, nil
}
