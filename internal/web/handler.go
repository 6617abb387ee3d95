// Package web implements the HTML surface: login, dashboard, customer
// ledger pages, statement export, and database backup/restore.
package web

import (
	"embed"
	"fmt"
	"html/template"
	"log/slog"
	"net/http"
	"time"

	"github.com/adityaprk/khatabook/internal/auth"
	"github.com/adityaprk/khatabook/internal/middleware"
	"github.com/adityaprk/khatabook/internal/storage"
)

//go:embed templates/*.html
var templatesFS embed.FS

// Handler serves the HTML pages and form endpoints.
type Handler struct {
	store  storage.Store
	creds  auth.CredentialStore
	tokens *auth.TokenManager
	gate   *middleware.Gate
	tmpl   *template.Template
}

// NewHandler creates a Handler with all required dependencies.
func NewHandler(store storage.Store, creds auth.CredentialStore, tokens *auth.TokenManager) (*Handler, error) {
	tmpl, err := template.New("").Funcs(template.FuncMap{
		"fmtAmount": func(v float64) string { return fmt.Sprintf("%.2f", v) },
		"fmtDate": func(t time.Time) string {
			if t.Unix() == 0 {
				return "never"
			}
			return t.Format("2006-01-02 15:04")
		},
	}).ParseFS(templatesFS, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("failed to parse templates: %w", err)
	}

	return &Handler{
		store:  store,
		creds:  creds,
		tokens: tokens,
		gate:   middleware.NewGate(tokens, creds),
		tmpl:   tmpl,
	}, nil
}

// render executes a page template, degrading to a 500 if rendering fails.
func (h *Handler) render(w http.ResponseWriter, status int, page string, data any) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if err := h.tmpl.ExecuteTemplate(w, page, data); err != nil {
		slog.Error("failed to render page", "page", page, "error", err)
	}
}

// Health reports process liveness.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	fmt.Fprintln(w, "ok")
}
