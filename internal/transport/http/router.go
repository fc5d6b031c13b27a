// Package httptransport assembles the public HTTP surface. Handlers own
// their own routes; this package only decides what sits in front of them.
package httptransport

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	ledgerhandler "leagueledger/internal/ledger/handler"
	oauthhandler "leagueledger/internal/oauth/handler"
	"leagueledger/internal/platform/middleware"
)

// NewRouter wires all public endpoints. Health, metrics and the OAuth routes
// are open; the ledger routes sit behind the shared-secret gate.
func NewRouter(oauth *oauthhandler.Handler, ledger *ledgerhandler.Handler, apiSecret string, logger *slog.Logger) http.Handler {
	r := chi.NewRouter()
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.Recoverer)

	r.Get("/health", handleHealth)
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	oauth.Register(r)

	r.Group(func(r chi.Router) {
		r.Use(middleware.RequireSharedSecret(apiSecret, logger))
		ledger.Register(r)
	})

	return r
}

func handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}
