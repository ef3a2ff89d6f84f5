package category

import "procurement-be/internal/apperr"

var (
	ErrNameRequired = apperr.New(apperr.KindValidation, `Field "name" is required`)
	ErrNameTaken    = apperr.New(apperr.KindConflict, "category with this name already exists.")
	ErrNotFound     = apperr.New(apperr.KindNotFound, "Not found.")
	ErrInUse        = apperr.New(apperr.KindConflict, "Category has ordered stock and cannot be deleted")
)
