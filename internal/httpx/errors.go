package httpx

import (
	"errors"
	"net/http"

	"procurement-be/internal/apperr"
	"procurement-be/internal/inventory"
	"procurement-be/internal/logger"
	"procurement-be/internal/utils"

	"go.uber.org/zap"
)

var (
	ErrMalformedJSON = apperr.New(apperr.KindValidation, "JSON parse error.")
	ErrInvalidID     = apperr.New(apperr.KindNotFound, "Not found.")
	ErrInvalidStatus = apperr.New(apperr.KindValidation, `Select a valid choice for "status".`)
)

// writeError maps an error kind to its HTTP status. Rejected input gets
// {"error"}, auth and lookup failures get {"detail"}.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	var short *inventory.InsufficientStockError
	if errors.As(err, &short) {
		utils.WriteJSON(w, http.StatusBadRequest, map[string]any{
			"error":     short.Error(),
			"available": short.Available,
		})
		return
	}

	switch apperr.KindOf(err) {
	case apperr.KindValidation, apperr.KindConflict, apperr.KindImmutableField,
		apperr.KindIllegalState, apperr.KindInsufficientStock:
		utils.WriteJSONError(w, apperr.Message(err), http.StatusBadRequest)
	case apperr.KindUnauthorized:
		utils.WriteDetail(w, apperr.Message(err), http.StatusUnauthorized)
	case apperr.KindForbidden:
		utils.WriteDetail(w, apperr.Message(err), http.StatusForbidden)
	case apperr.KindNotFound:
		utils.WriteDetail(w, apperr.Message(err), http.StatusNotFound)
	default:
		logger.FromCtx(r.Context()).Error("request failed",
			zap.String("layer", "http"),
			zap.String("path", r.URL.Path),
			zap.Error(err),
		)
		utils.WriteDetail(w, "A server error occurred.", http.StatusInternalServerError)
	}
}
