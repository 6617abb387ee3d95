package web

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Routes registers every endpoint on the mux. All data-revealing and
// mutating routes sit behind the auth gate; the gate runs before any
// handler side effect.
func (h *Handler) Routes(mux *http.ServeMux) {
	mux.HandleFunc("GET /login", h.LoginPage)
	mux.HandleFunc("POST /login", h.Login)
	mux.HandleFunc("GET /logout", h.Logout)
	mux.HandleFunc("GET /healthz", h.Health)
	mux.Handle("GET /metrics", promhttp.Handler())

	protected := func(fn http.HandlerFunc) http.Handler {
		return h.gate.RequireAuth(fn)
	}

	mux.Handle("GET /{$}", protected(h.Dashboard))
	mux.Handle("POST /add_customer", protected(h.AddCustomer))
	mux.Handle("GET /customer/{id}", protected(h.CustomerPage))
	mux.Handle("POST /edit_customer", protected(h.EditCustomer))
	mux.Handle("POST /delete_customer/{id}", protected(h.DeleteCustomer))

	mux.Handle("POST /add_transaction", protected(h.AddTransaction))
	mux.Handle("POST /edit_transaction", protected(h.EditTransaction))
	mux.Handle("POST /delete_transaction/{id}", protected(h.DeleteTransaction))

	mux.Handle("GET /customer/{id}/download", protected(h.DownloadStatement))
	mux.Handle("GET /download_db", protected(h.DownloadDB))
	mux.Handle("POST /restore_db", protected(h.RestoreDB))
}
