package httpx

import (
	"net/http"
	"slices"

	"procurement-be/internal/access"
	"procurement-be/internal/profile"
	"procurement-be/internal/utils"
)

type purchaserRequest struct {
	Name    string `json:"name"`
	Address string `json:"address"`
}

type supplierRequest struct {
	Name        string `json:"name"`
	Address     string `json:"address"`
	OrderStatus *bool  `json:"order_status"`
}

type orderStatusRequest struct {
	OrderStatus *bool `json:"order_status"`
}

type chainStoreRequest struct {
	Name    string `json:"name"`
	Address string `json:"address"`
	Phone   string `json:"phone"`
}

func requireRole(p access.Principal, roles ...access.Role) error {
	if slices.Contains(roles, p.Role) {
		return nil
	}
	return access.ErrForbidden
}

func (h *Handler) createPurchaser(w http.ResponseWriter, r *http.Request) {
	p := principal(r)
	if err := requireRole(p, access.RolePurchaser); err != nil {
		writeError(w, r, err)
		return
	}

	var req purchaserRequest
	if _, err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	created, err := h.Profiles.CreatePurchaser(r.Context(), p.UserID, profile.PurchaserParams{
		Name:    req.Name,
		Address: req.Address,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	utils.WriteJSON(w, http.StatusCreated, profile.MapPurchaser(created))
}

func (h *Handler) createSupplier(w http.ResponseWriter, r *http.Request) {
	p := principal(r)
	if err := requireRole(p, access.RoleSupplier); err != nil {
		writeError(w, r, err)
		return
	}

	var req supplierRequest
	if _, err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	created, err := h.Profiles.CreateSupplier(r.Context(), p.UserID, profile.SupplierParams{
		Name:          req.Name,
		Address:       req.Address,
		AcceptsOrders: req.OrderStatus,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	utils.WriteJSON(w, http.StatusCreated, profile.MapSupplier(created))
}

func (h *Handler) setOrderStatus(w http.ResponseWriter, r *http.Request) {
	p := principal(r)
	if err := requireRole(p, access.RoleSupplier); err != nil {
		writeError(w, r, err)
		return
	}

	var req orderStatusRequest
	if _, err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	updated, err := h.Profiles.SetAcceptsOrders(r.Context(), p.SupplierID, req.OrderStatus)
	if err != nil {
		writeError(w, r, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, profile.MapSupplier(updated))
}

func (h *Handler) listChainStores(w http.ResponseWriter, r *http.Request) {
	p := principal(r)
	if err := requireRole(p, access.RolePurchaser); err != nil {
		writeError(w, r, err)
		return
	}

	stores, err := h.Profiles.ListChainStores(r.Context(), p.PurchaserID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, newList(profile.MapChainStores(stores)))
}

func (h *Handler) createChainStore(w http.ResponseWriter, r *http.Request) {
	p := principal(r)
	if err := requireRole(p, access.RolePurchaser); err != nil {
		writeError(w, r, err)
		return
	}

	var req chainStoreRequest
	if _, err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	created, err := h.Profiles.CreateChainStore(r.Context(), p.PurchaserID, profile.ChainStoreParams{
		Name:    req.Name,
		Address: req.Address,
		Phone:   req.Phone,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	utils.WriteJSON(w, http.StatusCreated, profile.MapChainStore(created))
}
