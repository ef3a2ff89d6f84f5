package product

import "procurement-be/internal/apperr"

var (
	ErrNameRequired     = apperr.New(apperr.KindValidation, `Field "name" is required`)
	ErrCategoryRequired = apperr.New(apperr.KindValidation, `Field "category" is required`)
	ErrCategoryNotFound = apperr.New(apperr.KindValidation, "Invalid category - object does not exist.")
	ErrDuplicate        = apperr.New(apperr.KindConflict, "Product with this category, name and model already exists")
	ErrNotFound         = apperr.New(apperr.KindNotFound, "Not found.")
	ErrInUse            = apperr.New(apperr.KindConflict, "Product has ordered stock and cannot be deleted")
)
