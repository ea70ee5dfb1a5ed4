// Package handler exposes the users resource over HTTP. Routes translate
// between JSON and the service; all policy lives below.
package handler

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/AliAbadiHub/val-backend/internal/transport/http/shared"
	"github.com/AliAbadiHub/val-backend/internal/user"
	dErrors "github.com/AliAbadiHub/val-backend/pkg/domainerrors"
	"github.com/AliAbadiHub/val-backend/pkg/requestcontext"
)

// Service is the identity and profile manager contract the handler consumes.
type Service interface {
	Register(ctx context.Context, email, password string) (*user.Summary, error)
	AttachProfile(ctx context.Context, email string, input user.ProfileInput) (*user.ProfileView, error)
	UpdateProfile(ctx context.Context, email string, patch user.ProfileUpdate) (*user.StoredProfileView, error)
	List(ctx context.Context) ([]user.WithProfileView, error)
	Get(ctx context.Context, email string) (*user.WithProfileView, error)
	UpdatePassword(ctx context.Context, email, newPassword string) (*user.Summary, error)
	Delete(ctx context.Context, email string) (*user.Summary, error)
	Promote(ctx context.Context, caller user.Identity, targetID uuid.UUID) (*user.Summary, error)
	Demote(ctx context.Context, caller user.Identity, targetID uuid.UUID) (*user.Summary, error)
}

type Handler struct {
	logger *slog.Logger
	users  Service
}

func New(users Service, logger *slog.Logger) *Handler {
	return &Handler{logger: logger, users: users}
}

// Register mounts the users routes. Registration is public; everything else
// requires a valid bearer token, enforced by the guard middleware passed in.
// The {target} segment holds an email for most routes and a user ID for the
// role-change routes; chi needs a single parameter name per position.
func (h *Handler) Register(r chi.Router, requireAuth func(http.Handler) http.Handler) {
	r.Route("/users", func(r chi.Router) {
		r.Post("/", h.handleRegister)

		r.Group(func(r chi.Router) {
			r.Use(requireAuth)

			r.Get("/", h.handleList)
			r.Route("/{target}", func(r chi.Router) {
				r.Get("/", h.handleGet)
				r.Patch("/", h.handleUpdatePassword)
				r.Delete("/", h.handleDelete)
				r.Post("/profile", h.handleAttachProfile)
				r.Patch("/profile", h.handleUpdateProfile)
				r.Patch("/promote", h.handlePromote)
				r.Patch("/demote", h.handleDemote)
			})
		})
	})
}

type registerRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type passwordRequest struct {
	Password string `json:"password"`
}

func (h *Handler) handleRegister(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req registerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		shared.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid request body"))
		return
	}

	summary, err := h.users.Register(ctx, req.Email, req.Password)
	if err != nil {
		h.logError(ctx, "register failed", err)
		shared.WriteError(w, err)
		return
	}

	shared.WriteJSON(w, http.StatusOK, summary)
}

func (h *Handler) handleAttachProfile(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var input user.ProfileInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		shared.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid request body"))
		return
	}

	view, err := h.users.AttachProfile(ctx, chi.URLParam(r, "target"), input)
	if err != nil {
		h.logError(ctx, "attach profile failed", err)
		shared.WriteError(w, err)
		return
	}

	shared.WriteJSON(w, http.StatusOK, view)
}

func (h *Handler) handleUpdateProfile(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var patch user.ProfileUpdate
	if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
		shared.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid request body"))
		return
	}

	view, err := h.users.UpdateProfile(ctx, chi.URLParam(r, "target"), patch)
	if err != nil {
		h.logError(ctx, "update profile failed", err)
		shared.WriteError(w, err)
		return
	}

	shared.WriteJSON(w, http.StatusOK, view)
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	views, err := h.users.List(ctx)
	if err != nil {
		h.logError(ctx, "list users failed", err)
		shared.WriteError(w, err)
		return
	}

	shared.WriteJSON(w, http.StatusOK, views)
}

func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	view, err := h.users.Get(ctx, chi.URLParam(r, "target"))
	if err != nil {
		h.logError(ctx, "get user failed", err)
		shared.WriteError(w, err)
		return
	}

	shared.WriteJSON(w, http.StatusOK, view)
}

func (h *Handler) handleUpdatePassword(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req passwordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		shared.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid request body"))
		return
	}

	summary, err := h.users.UpdatePassword(ctx, chi.URLParam(r, "target"), req.Password)
	if err != nil {
		h.logError(ctx, "update password failed", err)
		shared.WriteError(w, err)
		return
	}

	shared.WriteJSON(w, http.StatusOK, summary)
}

func (h *Handler) handleDelete(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	summary, err := h.users.Delete(ctx, chi.URLParam(r, "target"))
	if err != nil {
		h.logError(ctx, "delete user failed", err)
		shared.WriteError(w, err)
		return
	}

	shared.WriteJSON(w, http.StatusOK, summary)
}

func (h *Handler) handlePromote(w http.ResponseWriter, r *http.Request) {
	h.handleRoleChange(w, r, h.users.Promote)
}

func (h *Handler) handleDemote(w http.ResponseWriter, r *http.Request) {
	h.handleRoleChange(w, r, h.users.Demote)
}

func (h *Handler) handleRoleChange(w http.ResponseWriter, r *http.Request,
	change func(ctx context.Context, caller user.Identity, targetID uuid.UUID) (*user.Summary, error),
) {
	ctx := r.Context()

	targetID, err := uuid.Parse(chi.URLParam(r, "target"))
	if err != nil {
		shared.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid user id"))
		return
	}

	caller := user.Identity{
		UserID: requestcontext.UserID(ctx),
		Role:   user.Role(requestcontext.Role(ctx)),
	}

	summary, err := change(ctx, caller, targetID)
	if err != nil {
		h.logError(ctx, "role change failed", err)
		shared.WriteError(w, err)
		return
	}

	shared.WriteJSON(w, http.StatusOK, summary)
}

// logError records a failure unless it maps to a client-caused status.
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
