// Package handler exposes the ledger API over HTTP. It owns request parsing
// and response mapping only; ledger semantics live in the service.
package handler

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/asaskevich/govalidator"
	"github.com/go-chi/chi/v5"

	"leagueledger/internal/ledger/models"
	dErrors "leagueledger/pkg/domain-errors"
	"leagueledger/pkg/platform/httputil"
)

// LedgerService is the slice of the ledger service the handler needs.
type LedgerService interface {
	GetOrCreate(ctx context.Context, userID string) (models.Record, error)
	Increment(ctx context.Context, userID string, delta int64) (models.Record, error)
	Register(ctx context.Context, userID string) (models.Record, error)
}

type Handler struct {
	ledger LedgerService
	logger *slog.Logger
}

func New(ledger LedgerService, logger *slog.Logger) *Handler {
	return &Handler{ledger: ledger, logger: logger}
}

// Register mounts the ledger routes. The caller wraps the router in the
// access gate; the handler assumes requests are already admitted.
func (h *Handler) Register(r chi.Router) {
	r.Get("/tokens", h.handleGet)
	r.Post("/tokens/add", h.handleAdd)
	r.Post("/tokens/register", h.handleRegister)
}

func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request) {
	userID := r.URL.Query().Get("userId")
	if err := validateUserID(userID); err != nil {
		httputil.WriteError(w, err)
		return
	}

	rec, err := h.ledger.GetOrCreate(r.Context(), userID)
	if err != nil {
		h.writeStoreError(w, r, "get", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, rec)
}

func (h *Handler) handleAdd(w http.ResponseWriter, r *http.Request) {
	var req models.AddRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid request body"))
		return
	}
	if err := validateUserID(req.UserID); err != nil {
		httputil.WriteError(w, err)
		return
	}
	if req.Amount == nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "amount is required"))
		return
	}

	// TODO: decide whether negative amounts should be rejected here; a few
	// callers currently rely on the permissive behavior to claw tokens back.
	rec, err := h.ledger.Increment(r.Context(), req.UserID, *req.Amount)
	if err != nil {
		h.writeStoreError(w, r, "add", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, models.AddResponse{
		UserID:   rec.UserID,
		NewTotal: rec.Tokens,
		League:   rec.League,
	})
}

func (h *Handler) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req models.RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid request body"))
		return
	}
	if err := validateUserID(req.UserID); err != nil {
		httputil.WriteError(w, err)
		return
	}

	rec, err := h.ledger.Register(r.Context(), req.UserID)
	if err != nil {
		h.writeStoreError(w, r, "register", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, rec)
}

func (h *Handler) writeStoreError(w http.ResponseWriter, r *http.Request, op string, err error) {
	h.logger.ErrorContext(r.Context(), "ledger operation failed",
		"op", op,
		"error", err,
	)
	httputil.WriteError(w, dErrors.New(dErrors.CodeInternal, "ledger store failure"))
}

func validateUserID(userID string) error {
	if !govalidator.StringLength(userID, "1", "128") {
		return dErrors.New(dErrors.CodeBadRequest, "userId is required")
	}
	return nil
}
