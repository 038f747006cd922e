package handlers

import (
	"net/http"
	"strings"
)

// Routes returns the fully wrapped application handler.
func (h *Handler) Routes() http.Handler {
	pages := http.NewServeMux()

	pages.HandleFunc("GET /{$}", h.Index)
	pages.HandleFunc("GET /product/{id}", h.ProductDetail)

	pages.HandleFunc("GET /register", h.RegisterPage)
	pages.HandleFunc("POST /register", h.Register)
	pages.HandleFunc("GET /login", h.LoginPage)
	pages.HandleFunc("POST /login", h.Login)
	pages.HandleFunc("GET /logout", h.Logout)
	pages.HandleFunc("GET /profile", h.Profile)

	pages.HandleFunc("GET /cart", h.Cart)
	pages.HandleFunc("GET /add_to_cart/{id}", h.AddToCart)

	root := http.NewServeMux()
	if h.static != nil {
		root.Handle("GET /static/", http.StripPrefix("/static/", http.FileServer(h.static)))
	}
	root.Handle("/", h.sessions.Middleware(h.withErrorPages(pages)))

	return h.recoverPanic(h.logRequests(root))
}

// withErrorPages renders the themed 404 and 405 pages instead of the mux's plain-text ones.
func (h *Handler) withErrorPages(mux *http.ServeMux) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, pattern := mux.Handler(r); pattern != "" {
			mux.ServeHTTP(w, r)
			return
		}

		var allowed []string
		for _, method := range []string{http.MethodGet, http.MethodPost} {
			if method == r.Method {
				continue
			}
			probe := r.Clone(r.Context())
			probe.Method = method
			if _, pattern := mux.Handler(probe); pattern != "" {
				allowed = append(allowed, method)
			}
		}

		if len(allowed) > 0 {
			w.Header().Set("Allow", strings.Join(allowed, ", "))
			h.renderError(w, r, http.StatusMethodNotAllowed, "This method is not supported for "+r.URL.Path+".")
			return
		}
		h.renderError(w, r, http.StatusNotFound, defaultNotFoundMessage)
	})
}
