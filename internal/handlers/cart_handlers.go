package handlers

import (
	"net/http"
	"strconv"

	"github.com/phone-storefront/app/internal/cart"
)

// Cart shows the resolved cart and its total.
func (h *Handler) Cart(w http.ResponseWriter, r *http.Request) {
	contents, err := h.cart.View(r.Context(), currentSession(r))
	if err != nil {
		h.serverError(w, r, err)
		return
	}
	h.render(w, r, http.StatusOK, "cart.html", struct {
		Cart *cart.Contents
	}{contents})
}

// AddToCart appends the product to the session cart and returns to its page.
// The id is not checked against the catalog; unknown ids are dropped when the cart is viewed.
func (h *Handler) AddToCart(w http.ResponseWriter, r *http.Request) {
	id, ok := productID(r)
	if !ok {
		h.renderError(w, r, http.StatusNotFound, "Product not found.")
		return
	}

	h.cart.AddItem(currentSession(r), id)
	h.log.V(4).Info("added item to cart", "product_id", id)
	h.redirectWithFlash(w, r, "/product/"+strconv.FormatInt(id, 10), FlashAddedToCart)
}
