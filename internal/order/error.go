package order

import "procurement-be/internal/apperr"

var (
	// -- Placement --
	ErrNoPurchaser        = apperr.New(apperr.KindValidation, "you need to create Purchaser before you create or update Orders")
	ErrMissingChainStore  = apperr.New(apperr.KindValidation, `Field "chain_store" is required`)
	ErrForeignChainStore  = apperr.New(apperr.KindValidation, "You can order delivery only to your chain stores")
	ErrEmptyCart          = apperr.New(apperr.KindValidation, "Your shopping cart is empty")
	ErrOrderNotFound      = apperr.New(apperr.KindNotFound, "Not found.")
	ErrPositionNotFound   = apperr.New(apperr.KindNotFound, "Not found.")
	ErrDuplicatePosition  = apperr.New(apperr.KindConflict, "Order already has a position for this stock")
	ErrPurchaserImmutable = apperr.New(apperr.KindImmutableField, "Purchaser cannot be amended")
	ErrOnlyChainStore     = apperr.New(apperr.KindImmutableField, `Only "chain_store" field may be amended`)

	// -- Lifecycle --
	ErrAlreadyCancelled   = apperr.New(apperr.KindIllegalState, "Order is already cancelled")
	ErrPartiallyFulfilled = apperr.New(apperr.KindIllegalState, "You can cancel only fully unconfirmed and undelivered orders")
	ErrAmendCancelled     = apperr.New(apperr.KindIllegalState, "You cannot amend cancelled order")
	ErrAmendPartial       = apperr.New(apperr.KindIllegalState, "You can amend only fully unconfirmed and undelivered orders")

	// -- Fulfilment --
	ErrNoFulfilmentChange         = apperr.New(apperr.KindValidation, "You can amend confirmed or/and delivered status")
	ErrCancelledOrderImmutable    = apperr.New(apperr.KindIllegalState, "You cannot confirm and deliver cancelled order positions")
	ErrCannotRevokeConfirmation   = apperr.New(apperr.KindImmutableField, "You cannot revoke your confirmation")
	ErrCannotRevokeDelivery       = apperr.New(apperr.KindImmutableField, "You cannot revoke your delivery")
	ErrDeliveryBeforeConfirmation = apperr.New(apperr.KindIllegalState, "You cannot deliver an unconfirmed order position")
)
