package profile

import "procurement-be/internal/apperr"

var (
	ErrNameRequired       = apperr.New(apperr.KindValidation, `Field "name" is required`)
	ErrPurchaserExists    = apperr.New(apperr.KindConflict, "Purchaser for this user already exists")
	ErrSupplierExists     = apperr.New(apperr.KindConflict, "Supplier for this user already exists")
	ErrNoPurchaser        = apperr.New(apperr.KindValidation, "you need to create Purchaser before you create or update ChainStore")
	ErrNoSupplier         = apperr.New(apperr.KindValidation, "you need to create Supplier before you change order status")
	ErrMissingOrderStatus = apperr.New(apperr.KindValidation, `Field "order_status" is required`)
	ErrChainStoreNotFound = apperr.New(apperr.KindNotFound, "Not found.")
	ErrPurchaserNotFound  = apperr.New(apperr.KindNotFound, "Not found.")
	ErrSupplierNotFound   = apperr.New(apperr.KindNotFound, "Not found.")
)
