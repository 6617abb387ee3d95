package web

import (
	"log/slog"
	"net/http"

	"github.com/adityaprk/khatabook/internal/middleware"
)

// loginPageData feeds the login template.
type loginPageData struct {
	Error string
}

// LoginPage renders the login form.
func (h *Handler) LoginPage(w http.ResponseWriter, r *http.Request) {
	// Already signed in? Straight to the dashboard.
	if _, ok := h.gate.Authenticate(r); ok {
		http.Redirect(w, r, "/", http.StatusFound)
		return
	}
	h.render(w, http.StatusOK, "login.html", loginPageData{})
}

// Login verifies the posted credentials and sets the session cookie. Failed
// attempts re-render the form with a single undifferentiated message and no
// cookie.
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		h.render(w, http.StatusBadRequest, "login.html", loginPageData{Error: "Malformed form submission"})
		return
	}

	username := r.PostFormValue("username")
	password := r.PostFormValue("password")

	if !h.creds.Verify(username, password) {
		slog.Warn("login failed", "username", username)
		h.render(w, http.StatusUnauthorized, "login.html", loginPageData{Error: "Invalid username or password"})
		return
	}

	token, err := h.tokens.Issue(username)
	if err != nil {
		slog.Error("failed to issue session token", "username", username, "error", err)
		h.render(w, http.StatusInternalServerError, "login.html", loginPageData{Error: "Something went wrong, try again"})
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     middleware.SessionCookie,
		Value:    "Bearer " + token,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   int(h.tokens.TokenTTL().Seconds()),
	})

	slog.Info("login succeeded", "username", username)
	http.Redirect(w, r, "/", http.StatusFound)
}

// Logout clears the session cookie. The token itself stays valid until
// expiry; stateless sessions cannot be invalidated server-side short of
// removing the user from the credential store.
func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	http.SetCookie(w, &http.Cookie{
		Name:     middleware.SessionCookie,
		Value:    "",
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   -1,
	})
	http.Redirect(w, r, "/login", http.StatusFound)
}
