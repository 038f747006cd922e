package handlers

import (
	"errors"
	"net/http"

	"github.com/phone-storefront/app/internal/auth"
	"github.com/phone-storefront/app/internal/models"
)

// RegisterPage renders the user registration page.
func (h *Handler) RegisterPage(w http.ResponseWriter, r *http.Request) {
	h.render(w, r, http.StatusOK, "register.html", nil)
}

// Register handles the registration form.
func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		h.renderError(w, r, http.StatusBadRequest, "Error parsing form.")
		return
	}

	_, err := h.auth.Register(r.Context(), r.FormValue("username"), r.FormValue("email"), r.FormValue("password"))
	switch {
	case errors.Is(err, auth.ErrDuplicateEmail):
		h.redirectWithFlash(w, r, "/register", FlashEmailTaken)
	case errors.Is(err, auth.ErrDuplicateUsername):
		h.redirectWithFlash(w, r, "/register", FlashUsernameTaken)
	case err != nil:
		h.serverError(w, r, err)
	default:
		h.redirectWithFlash(w, r, "/login", FlashRegistered)
	}
}

// LoginPage renders the user login page.
func (h *Handler) LoginPage(w http.ResponseWriter, r *http.Request) {
	h.render(w, r, http.StatusOK, "login.html", nil)
}

// Login checks credentials and binds the user to a freshly rotated session.
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		h.renderError(w, r, http.StatusBadRequest, "Error parsing form.")
		return
	}

	userID, err := h.auth.Authenticate(r.Context(), r.FormValue("email"), r.FormValue("password"))
	if errors.Is(err, auth.ErrInvalidCredentials) {
		h.redirectWithFlash(w, r, "/login", FlashInvalidLogin)
		return
	}
	if err != nil {
		h.serverError(w, r, err)
		return
	}

	s := currentSession(r)
	if err := h.sessions.Rotate(w, r, s); err != nil {
		h.serverError(w, r, err)
		return
	}
	s.SetUser(userID)

	http.Redirect(w, r, "/profile", http.StatusSeeOther)
}

// Logout drops the identity from the session. The cart survives.
func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	currentSession(r).ClearUser()
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// Profile shows the logged-in user, or sends anonymous visitors to the login page.
func (h *Handler) Profile(w http.ResponseWriter, r *http.Request) {
	s := currentSession(r)

	user, err := h.auth.CurrentUser(r.Context(), s)
	if errors.Is(err, auth.ErrUnauthenticated) {
		// the identity may point at a user that no longer exists
		s.ClearUser()
		h.redirectWithFlash(w, r, "/login", FlashLoginRequired)
		return
	}
	if err != nil {
		h.serverError(w, r, err)
		return
	}

	h.render(w, r, http.StatusOK, "profile.html", struct {
		User *models.User
	}{user})
}
