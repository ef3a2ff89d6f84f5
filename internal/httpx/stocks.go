package httpx

import (
	"net/http"
	"strings"

	"procurement-be/internal/access"
	"procurement-be/internal/inventory"
	"procurement-be/internal/profile"
	"procurement-be/internal/utils"
)

type importRequest struct {
	URL string `json:"url"`
}

func (h *Handler) listStocks(w http.ResponseWriter, r *http.Request) {
	supplierID, err := queryID(r, "supplier")
	if err != nil {
		writeError(w, r, err)
		return
	}
	categoryID, err := queryID(r, "category")
	if err != nil {
		writeError(w, r, err)
		return
	}

	stocks, err := h.Stocks.ListStocks(r.Context(), inventory.StockFilter{
		SupplierID: supplierID,
		CategoryID: categoryID,
		Search:     r.URL.Query().Get("search"),
		Limit:      queryInt(r, "limit"),
		Offset:     queryInt(r, "offset"),
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, newList(inventory.MapStocks(stocks)))
}

func (h *Handler) getStock(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	s, err := h.Stocks.GetStock(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, inventory.MapStock(s))
}

func (h *Handler) importStocks(w http.ResponseWriter, r *http.Request) {
	p := principal(r)
	if err := requireRole(p, access.RoleSupplier); err != nil {
		writeError(w, r, err)
		return
	}
	if p.SupplierID == nil {
		writeError(w, r, profile.ErrNoSupplier)
		return
	}

	var req importRequest
	if _, err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	result, err := h.Stocks.Import(r.Context(), *p.SupplierID, strings.TrimSpace(req.URL))
	if err != nil {
		writeError(w, r, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, result)
}
