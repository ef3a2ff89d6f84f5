package cart

import (
	"procurement-be/internal/apperr"
)

var (
	// -- Validation & Input --
	ErrMissingFields   = apperr.New(apperr.KindValidation, `Fields "stock" and "quantity" are required`)
	ErrInvalidQuantity = apperr.New(apperr.KindValidation, "Ensure this value is integer and greater than 0.")
	ErrOnlyQuantity    = apperr.New(apperr.KindImmutableField, `Only "quantity" field may be amended`)

	// -- Resource State --
	ErrNoPurchaser          = apperr.New(apperr.KindValidation, "You need to create Purchaser and ShoppingCart will be created as well")
	ErrDuplicatePosition    = apperr.New(apperr.KindConflict, "You already have this product in your cart")
	ErrSupplierNotAccepting = apperr.New(apperr.KindValidation, "This supplier does not take new orders at the moment")
	ErrPositionNotFound     = apperr.New(apperr.KindNotFound, "Not found.")
	ErrCartNotFound         = apperr.New(apperr.KindNotFound, "Shopping cart not found.")
	ErrStockDoesNotExist    = apperr.New(apperr.KindValidation, "Invalid stock - object does not exist.")

	// -- Internal --
	ErrCartChanged = apperr.New(apperr.KindInternal, "cart changed while it was locked")
)
