package httpx

import (
	"net/http"

	"procurement-be/internal/access"
	"procurement-be/internal/category"
	"procurement-be/internal/product"
	"procurement-be/internal/utils"
)

type categoryRequest struct {
	Name *string `json:"name"`
}

type productRequest struct {
	Name     *string `json:"name"`
	Category *int64  `json:"category"`
	Model    *string `json:"model"`
}

func (h *Handler) listCategories(w http.ResponseWriter, r *http.Request) {
	cs, err := h.Categories.List(r.Context(), category.Filter{
		Search: r.URL.Query().Get("search"),
		Limit:  queryInt(r, "limit"),
		Offset: queryInt(r, "offset"),
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, newList(category.MapCategories(cs)))
}

func (h *Handler) getCategory(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	c, err := h.Categories.Get(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, category.MapCategory(c))
}

func (h *Handler) createCategory(w http.ResponseWriter, r *http.Request) {
	if err := requireRole(principal(r), access.RoleAdmin, access.RoleSupplier); err != nil {
		writeError(w, r, err)
		return
	}

	var req categoryRequest
	if _, err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	if req.Name == nil {
		writeError(w, r, category.ErrNameRequired)
		return
	}

	c, err := h.Categories.Create(r.Context(), *req.Name)
	if err != nil {
		writeError(w, r, err)
		return
	}
	utils.WriteJSON(w, http.StatusCreated, category.MapCategory(c))
}

func (h *Handler) updateCategory(w http.ResponseWriter, r *http.Request) {
	if err := requireRole(principal(r), access.RoleAdmin); err != nil {
		writeError(w, r, err)
		return
	}
	id, err := pathID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	var req categoryRequest
	if _, err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	c, err := h.Categories.Rename(r.Context(), id, req.Name)
	if err != nil {
		writeError(w, r, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, category.MapCategory(c))
}

func (h *Handler) deleteCategory(w http.ResponseWriter, r *http.Request) {
	if err := requireRole(principal(r), access.RoleAdmin); err != nil {
		writeError(w, r, err)
		return
	}
	id, err := pathID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	if err := h.Categories.Delete(r.Context(), id); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) listProducts(w http.ResponseWriter, r *http.Request) {
	id, err := queryID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	categoryID, err := queryID(r, "category")
	if err != nil {
		writeError(w, r, err)
		return
	}

	ps, err := h.Products.List(r.Context(), product.Filter{
		ID:         id,
		CategoryID: categoryID,
		Name:       r.URL.Query().Get("name"),
		Limit:      queryInt(r, "limit"),
		Offset:     queryInt(r, "offset"),
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, newList(product.MapProducts(ps)))
}

func (h *Handler) getProduct(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	p, err := h.Products.Get(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, product.MapProduct(p))
}

func (h *Handler) createProduct(w http.ResponseWriter, r *http.Request) {
	if err := requireRole(principal(r), access.RoleAdmin, access.RoleSupplier); err != nil {
		writeError(w, r, err)
		return
	}

	var req productRequest
	if _, err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	params := product.CreateParams{CategoryID: req.Category}
	if req.Name != nil {
		params.Name = *req.Name
	}
	if req.Model != nil {
		params.Model = *req.Model
	}

	p, err := h.Products.Create(r.Context(), params)
	if err != nil {
		writeError(w, r, err)
		return
	}
	utils.WriteJSON(w, http.StatusCreated, product.MapProduct(p))
}

func (h *Handler) updateProduct(w http.ResponseWriter, r *http.Request) {
	if err := requireRole(principal(r), access.RoleAdmin); err != nil {
		writeError(w, r, err)
		return
	}
	id, err := pathID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	var req productRequest
	if _, err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	p, err := h.Products.Update(r.Context(), id, product.UpdateParams{
		CategoryID: req.Category,
		Name:       req.Name,
		Model:      req.Model,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, product.MapProduct(p))
}

func (h *Handler) deleteProduct(w http.ResponseWriter, r *http.Request) {
	if err := requireRole(principal(r), access.RoleAdmin); err != nil {
		writeError(w, r, err)
		return
	}
	id, err := pathID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	if err := h.Products.Delete(r.Context(), id); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
