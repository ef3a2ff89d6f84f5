package httpx

import (
	"net/http"

	"procurement-be/internal/access"
	"procurement-be/internal/cart"
	"procurement-be/internal/utils"
)

type cartPositionRequest struct {
	Stock    *int64 `json:"stock"`
	Quantity *int   `json:"quantity"`
}

// ownCart returns the caller's purchaser id for whole-cart operations.
func ownCart(p access.Principal) (int64, error) {
	if err := access.Check(p, access.ActionCreate, access.Target{}).Err(); err != nil {
		return 0, err
	}
	if p.PurchaserID == nil {
		return 0, cart.ErrNoPurchaser
	}
	return *p.PurchaserID, nil
}

func (h *Handler) getCart(w http.ResponseWriter, r *http.Request) {
	purchaserID, err := ownCart(principal(r))
	if err != nil {
		writeError(w, r, err)
		return
	}

	summary, err := h.Carts.GetCart(r.Context(), purchaserID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, cart.MapSummary(summary))
}

func (h *Handler) clearCart(w http.ResponseWriter, r *http.Request) {
	purchaserID, err := ownCart(principal(r))
	if err != nil {
		writeError(w, r, err)
		return
	}

	if err := h.Carts.Clear(r.Context(), purchaserID); err != nil {
		writeError(w, r, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, map[string]string{"success": "Your shopping cart is empty"})
}

func (h *Handler) listCartPositions(w http.ResponseWriter, r *http.Request) {
	positions, err := h.Carts.ListPositions(r.Context(), access.ScopeFor(principal(r)))
	if err != nil {
		writeError(w, r, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, newList(cart.MapPositions(positions)))
}

func (h *Handler) addCartPosition(w http.ResponseWriter, r *http.Request) {
	purchaserID, err := ownCart(principal(r))
	if err != nil {
		writeError(w, r, err)
		return
	}

	var req cartPositionRequest
	if _, err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	pos, err := h.Carts.Add(r.Context(), purchaserID, cart.AddParams{StockID: req.Stock, Quantity: req.Quantity})
	if err != nil {
		h.countRejection(err)
		writeError(w, r, err)
		return
	}
	utils.WriteJSON(w, http.StatusCreated, cart.MapPosition(pos))
}

// loadCartPosition loads the position in the URL and checks that the caller may
// perform action on it.
func (h *Handler) loadCartPosition(r *http.Request, action access.Action) (*cart.Position, error) {
	id, err := pathID(r)
	if err != nil {
		return nil, err
	}
	pos, err := h.Carts.GetPosition(r.Context(), id)
	if err != nil {
		return nil, err
	}
	if err := access.Check(principal(r), action, pos.Target()).Err(); err != nil {
		return nil, err
	}
	return pos, nil
}

func (h *Handler) getCartPosition(w http.ResponseWriter, r *http.Request) {
	pos, err := h.loadCartPosition(r, access.ActionRead)
	if err != nil {
		writeError(w, r, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, cart.MapPosition(pos))
}

func (h *Handler) amendCartPosition(w http.ResponseWriter, r *http.Request) {
	pos, err := h.loadCartPosition(r, access.ActionMutate)
	if err != nil {
		writeError(w, r, err)
		return
	}

	var req cartPositionRequest
	fields, err := decodeJSON(r, &req)
	if err != nil {
		writeError(w, r, err)
		return
	}

	updated, err := h.Carts.Amend(r.Context(), pos.ID, cart.AmendParams{Quantity: req.Quantity, Fields: fields})
	if err != nil {
		h.countRejection(err)
		writeError(w, r, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, cart.MapPosition(updated))
}

func (h *Handler) removeCartPosition(w http.ResponseWriter, r *http.Request) {
	pos, err := h.loadCartPosition(r, access.ActionMutate)
	if err != nil {
		writeError(w, r, err)
		return
	}

	if err := h.Carts.Remove(r.Context(), pos.ID); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
