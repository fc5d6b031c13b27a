// Package handler exposes the OAuth flow over HTTP: one route to start the
// flow, one to receive the provider callback. Both answer with redirects.
package handler

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"leagueledger/internal/oauth/flow"
	dErrors "leagueledger/pkg/domain-errors"
	"leagueledger/pkg/platform/httputil"
)

type Handler struct {
	flow   *flow.Controller
	logger *slog.Logger
}

func New(fc *flow.Controller, logger *slog.Logger) *Handler {
	return &Handler{flow: fc, logger: logger}
}

// Register mounts the flow routes. These stay outside the access gate: the
// browser arrives here without credentials by definition.
func (h *Handler) Register(r chi.Router) {
	r.Get("/auth", h.handleBegin)
	r.Get("/oauth/callback", h.handleCallback)
}

func (h *Handler) handleBegin(w http.ResponseWriter, r *http.Request) {
	authURL, err := h.flow.BeginAuth(w)
	if err != nil {
		h.logger.ErrorContext(r.Context(), "failed to begin auth flow", "error", err)
		httputil.WriteError(w, dErrors.New(dErrors.CodeInternal, "could not start login"))
		return
	}
	http.Redirect(w, r, authURL, http.StatusFound)
}

func (h *Handler) handleCallback(w http.ResponseWriter, r *http.Request) {
	res := h.flow.HandleCallback(r.Context(), w, r)
	http.Redirect(w, r, res.RedirectURL, http.StatusFound)
}
