// Package handler exposes the product catalog over HTTP.
package handler

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/AliAbadiHub/val-backend/internal/product"
	"github.com/AliAbadiHub/val-backend/internal/transport/http/shared"
	"github.com/AliAbadiHub/val-backend/internal/user"
	dErrors "github.com/AliAbadiHub/val-backend/pkg/domainerrors"
	"github.com/AliAbadiHub/val-backend/pkg/requestcontext"
)

type Service interface {
	Create(ctx context.Context, caller user.Identity, input product.CreateInput) (*product.Product, error)
	Get(ctx context.Context, sku string) (*product.Product, error)
	List(ctx context.Context) ([]product.Product, error)
	AdjustInventory(ctx context.Context, caller user.Identity, sku string, delta int) (*product.Product, error)
}

type Handler struct {
	logger   *slog.Logger
	products Service
}

func New(products Service, logger *slog.Logger) *Handler {
	return &Handler{logger: logger, products: products}
}

// Register mounts the products routes behind the auth guard. The admin check
// for writes happens in the service, against the caller identity.
func (h *Handler) Register(r chi.Router, requireAuth func(http.Handler) http.Handler) {
	r.Route("/products", func(r chi.Router) {
		r.Use(requireAuth)

		r.Post("/", h.handleCreate)
		r.Get("/", h.handleList)
		r.Get("/{sku}", h.handleGet)
		r.Patch("/{sku}/inventory", h.handleAdjustInventory)
	})
}

type adjustRequest struct {
	Delta int `json:"delta"`
}

func (h *Handler) handleCreate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var input product.CreateInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		shared.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid request body"))
		return
	}

	created, err := h.products.Create(ctx, callerIdentity(ctx), input)
	if err != nil {
		h.logError(ctx, "create product failed", err)
		shared.WriteError(w, err)
		return
	}

	shared.WriteJSON(w, http.StatusCreated, created)
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	products, err := h.products.List(ctx)
	if err != nil {
		h.logError(ctx, "list products failed", err)
		shared.WriteError(w, err)
		return
	}

	shared.WriteJSON(w, http.StatusOK, products)
}

func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	p, err := h.products.Get(ctx, chi.URLParam(r, "sku"))
	if err != nil {
		h.logError(ctx, "get product failed", err)
		shared.WriteError(w, err)
		return
	}

	shared.WriteJSON(w, http.StatusOK, p)
}

func (h *Handler) handleAdjustInventory(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req adjustRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		shared.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid request body"))
		return
	}

	p, err := h.products.AdjustInventory(ctx, callerIdentity(ctx), chi.URLParam(r, "sku"), req.Delta)
	if err != nil {
		h.logError(ctx, "adjust inventory failed", err)
		shared.WriteError(w, err)
		return
	}

	shared.WriteJSON(w, http.StatusOK, p)
}

func callerIdentity(ctx context.Context) user.Identity {
	return user.Identity{
		UserID: requestcontext.UserID(ctx),
		Role:   user.Role(requestcontext.Role(ctx)),
	}
}

func (h *Handler) logError(ctx context.Context, msg string, err error) {
	switch dErrors.CodeOf(err) {
	case dErrors.CodeBadRequest, dErrors.CodeUnauthorized, dErrors.CodeForbidden,
		dErrors.CodeNotFound, dErrors.CodeConflict:
		return
	}
	h.logger.ErrorContext(ctx, msg,
		"error", err,
		"request_id", requestcontext.RequestID(ctx),
	)
}
