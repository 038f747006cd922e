package handlers

import (
	"errors"
	"net/http"

	"github.com/phone-storefront/app/internal/catalog"
	"github.com/phone-storefront/app/internal/models"
)

// Index lists every product.
func (h *Handler) Index(w http.ResponseWriter, r *http.Request) {
	products, err := h.catalog.ListAll(r.Context())
	if err != nil {
		h.serverError(w, r, err)
		return
	}
	h.render(w, r, http.StatusOK, "index.html", struct {
		Products []*models.Product
	}{products})
}

// ProductDetail shows one product, or the 404 page for unknown or malformed ids.
func (h *Handler) ProductDetail(w http.ResponseWriter, r *http.Request) {
	id, ok := productID(r)
	if !ok {
		h.renderError(w, r, http.StatusNotFound, "Product not found.")
		return
	}

	product, err := h.catalog.GetByID(r.Context(), id)
	if errors.Is(err, catalog.ErrNotFound) {
		h.renderError(w, r, http.StatusNotFound, "Product not found.")
		return
	}
	if err != nil {
		h.serverError(w, r, err)
		return
	}

	h.render(w, r, http.StatusOK, "product_detail.html", struct {
		Product *models.Product
	}{product})
}
