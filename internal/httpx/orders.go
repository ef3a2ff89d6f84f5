package httpx

import (
	"net/http"
	"strings"

	"procurement-be/internal/access"
	"procurement-be/internal/apperr"
	"procurement-be/internal/logger"
	"procurement-be/internal/metrics"
	"procurement-be/internal/order"
	"procurement-be/internal/utils"

	"go.uber.org/zap"
)

type orderRequest struct {
	ChainStore *int64 `json:"chain_store"`
	Purchaser  *int64 `json:"purchaser"`
}

type orderPositionRequest struct {
	Confirmed *bool `json:"confirmed"`
	Delivered *bool `json:"delivered"`
}

func statusFilter(r *http.Request) (*order.OrderStatus, error) {
	v := r.URL.Query().Get("status")
	if v == "" {
		return nil, nil
	}
	status := order.OrderStatus(v)
	if !status.Valid() {
		return nil, ErrInvalidStatus
	}
	return &status, nil
}

func (h *Handler) listOrders(w http.ResponseWriter, r *http.Request) {
	status, err := statusFilter(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	orders, err := h.Orders.ListOrders(r.Context(), access.ScopeFor(principal(r)), order.OrderFilter{Status: status})
	if err != nil {
		writeError(w, r, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, newList(order.MapOrders(orders)))
}

func (h *Handler) placeOrder(w http.ResponseWriter, r *http.Request) {
	p := principal(r)
	if err := access.Check(p, access.ActionCreate, access.Target{}).Err(); err != nil {
		writeError(w, r, err)
		return
	}
	if p.PurchaserID == nil {
		writeError(w, r, order.ErrNoPurchaser)
		return
	}
	purchaserID := *p.PurchaserID

	var req orderRequest
	if _, err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	ctx := r.Context()
	log := logger.FromCtx(ctx).With(zap.String("layer", "http"), zap.Int64("purchaser_id", purchaserID))

	key := strings.TrimSpace(r.Header.Get("Idempotency-Key"))
	claimed := false
	if key != "" && h.Idem != nil {
		existing, ok, err := h.Idem.Claim(ctx, purchaserID, key)
		switch {
		case err != nil && apperr.KindOf(err) != apperr.KindInternal:
			writeError(w, r, err)
			return
		case err != nil:
			// Redis is only a shortcut; place the order without it.
			log.Warn("idempotency store unavailable", zap.Error(err))
		case !ok:
			o, err := h.Orders.GetOrder(ctx, existing)
			if err != nil {
				writeError(w, r, err)
				return
			}
			h.Metrics.OrdersReplayed.Inc()
			w.Header().Set("Idempotent-Replayed", "true")
			utils.WriteJSON(w, http.StatusOK, order.MapOrder(o))
			return
		default:
			claimed = true
		}
	}

	timer := metrics.StartTimer()
	o, err := h.Orders.PlaceOrder(ctx, purchaserID, req.ChainStore)
	if err != nil {
		if claimed {
			h.Idem.Release(ctx, purchaserID, key)
		}
		h.countRejection(err)
		writeError(w, r, err)
		return
	}
	if claimed {
		h.Idem.Complete(ctx, purchaserID, key, o.ID)
	}
	h.Metrics.OrdersPlaced.Inc()
	h.Metrics.ObservePlacement(timer.Duration())
	utils.WriteJSON(w, http.StatusCreated, order.MapOrder(o))
}

// loadOrder loads the order in the URL and checks that the caller may perform
// action on it.
func (h *Handler) loadOrder(r *http.Request, action access.Action) (*order.Order, error) {
	id, err := pathID(r)
	if err != nil {
		return nil, err
	}
	o, err := h.Orders.GetOrder(r.Context(), id)
	if err != nil {
		return nil, err
	}
	if err := access.Check(principal(r), action, o.Target()).Err(); err != nil {
		return nil, err
	}
	return o, nil
}

func (h *Handler) getOrder(w http.ResponseWriter, r *http.Request) {
	o, err := h.loadOrder(r, access.ActionRead)
	if err != nil {
		writeError(w, r, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, order.MapOrder(o.VisibleTo(access.ScopeFor(principal(r)))))
}

func (h *Handler) amendOrder(w http.ResponseWriter, r *http.Request) {
	o, err := h.loadOrder(r, access.ActionMutate)
	if err != nil {
		writeError(w, r, err)
		return
	}

	var req orderRequest
	fields, err := decodeJSON(r, &req)
	if err != nil {
		writeError(w, r, err)
		return
	}

	updated, err := h.Orders.AmendOrder(r.Context(), o.ID, order.AmendParams{
		ChainStoreID: req.ChainStore,
		PurchaserID:  req.Purchaser,
		Fields:       fields,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, order.MapOrder(updated))
}

func (h *Handler) cancelOrder(w http.ResponseWriter, r *http.Request) {
	o, err := h.loadOrder(r, access.ActionMutate)
	if err != nil {
		writeError(w, r, err)
		return
	}

	if _, err := h.Orders.CancelOrder(r.Context(), o.ID); err != nil {
		writeError(w, r, err)
		return
	}
	h.Metrics.OrdersCancelled.Inc()
	utils.WriteJSON(w, http.StatusOK, map[string]string{"success": "Order cancelled"})
}

func (h *Handler) listOrderPositions(w http.ResponseWriter, r *http.Request) {
	status, err := statusFilter(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	orderID, err := queryID(r, "order")
	if err != nil {
		writeError(w, r, err)
		return
	}

	positions, err := h.Orders.ListPositions(r.Context(), access.ScopeFor(principal(r)), order.PositionFilter{
		OrderStatus: status,
		OrderID:     orderID,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, newList(order.MapPositions(positions)))
}

func (h *Handler) loadOrderPosition(r *http.Request, action access.Action) (*order.Position, error) {
	id, err := pathID(r)
	if err != nil {
		return nil, err
	}
	pos, err := h.Orders.GetPosition(r.Context(), id)
	if err != nil {
		return nil, err
	}
	if err := access.Check(principal(r), action, pos.Target()).Err(); err != nil {
		return nil, err
	}
	return pos, nil
}

func (h *Handler) getOrderPosition(w http.ResponseWriter, r *http.Request) {
	pos, err := h.loadOrderPosition(r, access.ActionRead)
	if err != nil {
		writeError(w, r, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, order.MapPosition(pos))
}

func (h *Handler) updateOrderPosition(w http.ResponseWriter, r *http.Request) {
	pos, err := h.loadOrderPosition(r, access.ActionFulfil)
	if err != nil {
		writeError(w, r, err)
		return
	}

	var req orderPositionRequest
	if _, err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	updated, err := h.Orders.UpdatePositionStatus(r.Context(), pos.ID, order.Change{
		Confirmed: req.Confirmed,
		Delivered: req.Delivered,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	h.Metrics.PositionsUpdated.Inc()
	utils.WriteJSON(w, http.StatusOK, order.MapPosition(updated))
}
