// Package handlers is the HTTP surface of the storefront: routes, page
// rendering and request middleware.
package handlers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-logr/logr"

	"github.com/phone-storefront/app/internal/auth"
	"github.com/phone-storefront/app/internal/cart"
	"github.com/phone-storefront/app/internal/catalog"
	"github.com/phone-storefront/app/internal/session"
)

// Flash messages shown after redirects.
const (
	FlashEmailTaken        = "Email already registered."
	FlashUsernameTaken     = "Username already taken."
	FlashRegistered        = "Registration successful!"
	FlashInvalidLogin      = "Invalid login credentials."
	FlashLoginRequired     = "Please log in to view your profile."
	FlashAddedToCart       = "Item added to cart!"
	defaultNotFoundMessage = "The page you are looking for does not exist."
)

// Handler serves every storefront route.
type Handler struct {
	auth      *auth.Service
	catalog   *catalog.Service
	cart      *cart.Service
	sessions  *session.Manager
	templates *Templates
	static    http.FileSystem
	log       logr.Logger
	now       func() time.Time
}

// Deps bundles what a Handler needs.
type Deps struct {
	Auth      *auth.Service
	Catalog   *catalog.Service
	Cart      *cart.Service
	Sessions  *session.Manager
	Templates *Templates
	Static    http.FileSystem // served under /static/; nil disables it
	Logger    logr.Logger
}

func New(d Deps) *Handler {
	return &Handler{
		auth:      d.Auth,
		catalog:   d.Catalog,
		cart:      d.Cart,
		sessions:  d.Sessions,
		templates: d.Templates,
		static:    d.Static,
		log:       d.Logger,
		now:       time.Now,
	}
}

// pageData is what every page template receives. Page-specific values live in Data.
type pageData struct {
	LoggedIn    bool
	CartCount   int
	Flashes     []string
	CurrentYear int
	Data        any
}

type errorData struct {
	StatusCode int
	StatusText string
	Message    string
}

// currentSession returns the session attached by the session middleware.
// Handlers are only ever mounted behind it, so a missing session is a wiring bug.
func currentSession(r *http.Request) *session.Session {
	s, ok := session.FromContext(r.Context())
	if !ok {
		panic("handlers: no session in request context")
	}
	return s
}

// render writes page name with the given status. Queued flashes are consumed.
func (h *Handler) render(w http.ResponseWriter, r *http.Request, status int, name string, data any) {
	pd := pageData{
		CurrentYear: h.now().Year(),
		Data:        data,
	}
	if s, ok := session.FromContext(r.Context()); ok {
		pd.LoggedIn = s.IsAuthenticated()
		pd.CartCount = len(s.Cart)
		pd.Flashes = s.PopFlashes()
	}

	body, err := h.templates.Render(name, pd)
	if err != nil {
		h.log.Error(err, "failed to render page", "template", name, "path", r.URL.Path)
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if _, err := w.Write(body); err != nil {
		h.log.V(4).Info("failed to write response", "path", r.URL.Path, "err", err)
	}
}

// renderError renders the error page.
func (h *Handler) renderError(w http.ResponseWriter, r *http.Request, status int, message string) {
	h.render(w, r, status, "error.html", errorData{
		StatusCode: status,
		StatusText: http.StatusText(status),
		Message:    message,
	})
}

// serverError logs err and renders a 500 page without leaking the error text.
func (h *Handler) serverError(w http.ResponseWriter, r *http.Request, err error) {
	h.log.Error(err, "request failed", "method", r.Method, "path", r.URL.Path)
	h.renderError(w, r, http.StatusInternalServerError, "Something went wrong. Please try again later.")
}

func (h *Handler) redirectWithFlash(w http.ResponseWriter, r *http.Request, target, msg string) {
	if msg != "" {
		currentSession(r).AddFlash(msg)
	}
	http.Redirect(w, r, target, http.StatusSeeOther)
}

// productID parses the {id} path value. Only positive integers are valid.
func productID(r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}
