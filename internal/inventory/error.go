package inventory

import (
	"fmt"

	"procurement-be/internal/apperr"
)

var (
	ErrStockNotFound   = apperr.New(apperr.KindNotFound, "Stock not found.")
	ErrInvalidQuantity = apperr.New(apperr.KindValidation, "Ensure this value is integer and greater than 0.")

	// -- Import --
	ErrInvalidURL       = apperr.New(apperr.KindValidation, "Enter a valid URL.")
	ErrDownloadFailed   = apperr.New(apperr.KindValidation, "Could not download the file.")
	ErrInvalidCatalog   = apperr.New(apperr.KindValidation, "Import file has invalid structure.")
	ErrCategoryConflict = apperr.New(apperr.KindConflict, "Category with id from your file already exists with another name")
	ErrUnknownCategory  = apperr.New(apperr.KindValidation, "Goods refer to a category missing from the file")
)

// InsufficientStockError is returned when a reservation exceeds the free
// quantity of a stock line. Available is what could still be reserved.
type InsufficientStockError struct {
	StockID   int64
	Available int
	// Delta marks a failed increase of an existing reservation.
	Delta bool
}

func (e *InsufficientStockError) Error() string {
	if e.Delta {
		return fmt.Sprintf("Not enough stock. You can add only %d to your initial quantity", e.Available)
	}
	return fmt.Sprintf("Not enough stock. Only %d is available", e.Available)
}

func (e *InsufficientStockError) Kind() apperr.Kind {
	return apperr.KindInsufficientStock
}
