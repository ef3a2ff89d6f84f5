package httpx

import (
	"errors"
	"net/http"

	"procurement-be/internal/inventory"
	"procurement-be/internal/utils"
)

func (h *Handler) serveMetrics(w http.ResponseWriter, r *http.Request) {
	utils.WriteJSON(w, http.StatusOK, h.Metrics.Snapshot())
}

func (h *Handler) countRejection(err error) {
	var short *inventory.InsufficientStockError
	if errors.As(err, &short) {
		h.Metrics.StockRejections.Inc()
	}
}
