// Package service implements the identity and profile manager: user
// creation, profile attachment and patching, derived fields, and the role
// lifecycle. It owns the rules; persistence and transport stay behind
// interfaces.
package service

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"

	"github.com/AliAbadiHub/val-backend/internal/audit"
	"github.com/AliAbadiHub/val-backend/internal/auth"
	"github.com/AliAbadiHub/val-backend/internal/platform/metrics"
	"github.com/AliAbadiHub/val-backend/internal/user"
	"github.com/AliAbadiHub/val-backend/internal/user/store"
	dErrors "github.com/AliAbadiHub/val-backend/pkg/domainerrors"
	"github.com/AliAbadiHub/val-backend/pkg/requestcontext"
)

// Service is the identity and profile manager. The caller identity for
// privileged operations arrives as an explicit argument; the service never
// reads ambient authentication state.
type Service struct {
	store   store.Store
	hasher  auth.Hasher
	metrics *metrics.Metrics
	auditor *audit.Publisher
	tracer  trace.Tracer
}

func New(st store.Store, hasher auth.Hasher, m *metrics.Metrics, auditor *audit.Publisher) *Service {
	return &Service{
		store:   st,
		hasher:  hasher,
		metrics: m,
		auditor: auditor,
		tracer:  otel.Tracer("val-backend/user"),
	}
}

// Register creates a user with the default unverified role. Store failures
// are surfaced uniformly: a duplicate email is not distinguished from any
// other write failure here.
func (s *Service) Register(ctx context.Context, email, password string) (*user.Summary, error) {
	ctx, span := s.tracer.Start(ctx, "user.Register")
	defer span.End()

	if email == "" || password == "" {
		return nil, dErrors.New(dErrors.CodeBadRequest, "email and password are required")
	}

	hash, err := s.hasher.Hash(password)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to register user")
	}

	now := requestcontext.Now(ctx)
	u := &user.User{
		ID:           uuid.New(),
		Email:        email,
		PasswordHash: hash,
		Role:         user.RoleUnverified,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := s.store.CreateUser(ctx, u); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to register user")
	}

	s.metrics.UsersRegistered.Inc()
	s.emit(ctx, audit.ActionUserRegistered, u.ID, u.Email)

	summary := user.NewSummary(*u)
	return &summary, nil
}

// AttachProfile creates the user's profile and moves the role to verified.
// The transition is unconditional: re-attaching for an admin resets the role
// to verified as well.
func (s *Service) AttachProfile(ctx context.Context, email string, input user.ProfileInput) (*user.ProfileView, error) {
	ctx, span := s.tracer.Start(ctx, "user.AttachProfile")
	defer span.End()

	u, err := s.store.GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "User not found")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to attach profile")
	}

	now := requestcontext.Now(ctx)
	p := &user.Profile{
		ID:          uuid.New(),
		UserID:      u.ID,
		FirstName:   input.FirstName,
		LastName:    input.LastName,
		Phone:       input.Phone,
		Address1:    input.Address1,
		City1:       input.City1,
		Address2:    input.Address2,
		City2:       input.City2,
		Address3:    input.Address3,
		City3:       input.City3,
		Address4:    input.Address4,
		City4:       input.City4,
		DateOfBirth: input.DateOfBirth,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if input.DateOfBirth != nil {
		age := user.AgeAt(*input.DateOfBirth, now)
		p.Age = &age
	}

	if err := s.store.CreateProfile(ctx, p); err != nil {
		switch {
		case errors.Is(err, store.ErrDuplicateProfile):
			return nil, dErrors.New(dErrors.CodeConflict, "profile already exists")
		case errors.Is(err, store.ErrNotFound):
			return nil, dErrors.New(dErrors.CodeNotFound, "User not found")
		default:
			return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to attach profile")
		}
	}

	u.Role = user.RoleVerified
	u.UpdatedAt = now
	if err := s.store.UpdateUser(ctx, u); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to attach profile")
	}

	s.metrics.ProfilesAttached.Inc()
	s.metrics.RoleTransitions.WithLabelValues(string(user.RoleVerified)).Inc()
	s.emit(ctx, audit.ActionUserVerified, u.ID, u.Email)

	view := user.NewProfileView(*u, *p)
	return &view, nil
}

// UpdateProfile applies a partial patch. Fields not present are left
// unchanged; fields explicitly set to null are dropped before the write, so
// a null cannot clear a column. A provided date of birth recomputes age.
func (s *Service) UpdateProfile(ctx context.Context, email string, patch user.ProfileUpdate) (*user.StoredProfileView, error) {
	ctx, span := s.tracer.Start(ctx, "user.UpdateProfile")
	defer span.End()

	u, err := s.store.GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "User not found")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to update profile")
	}

	p, err := s.store.GetProfileByUserID(ctx, u.ID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "Profile not found")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to update profile")
	}

	now := requestcontext.Now(ctx)
	applyString(&p.FirstName, patch.FirstName)
	applyString(&p.LastName, patch.LastName)
	applyString(&p.Phone, patch.Phone)
	applyString(&p.Address1, patch.Address1)
	applyString(&p.City1, patch.City1)
	applyString(&p.Address2, patch.Address2)
	applyString(&p.City2, patch.City2)
	applyString(&p.Address3, patch.Address3)
	applyString(&p.City3, patch.City3)
	applyString(&p.Address4, patch.Address4)
	applyString(&p.City4, patch.City4)
	if dob := patch.DateOfBirth.ValueOrNil(); dob != nil {
		p.DateOfBirth = dob
		age := user.AgeAt(*dob, now)
		p.Age = &age
	}
	p.UpdatedAt = now

	if err := s.store.UpdateProfile(ctx, p); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to update profile")
	}

	view := user.NewStoredProfileView(*p)
	return &view, nil
}

// List returns every user with its nested profile. No pagination, no
// filtering; ordering is whatever the store yields.
func (s *Service) List(ctx context.Context) ([]user.WithProfileView, error) {
	ctx, span := s.tracer.Start(ctx, "user.List")
	defer span.End()

	records, err := s.store.ListUsers(ctx)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list users")
	}

	views := make([]user.WithProfileView, 0, len(records))
	for _, record := range records {
		views = append(views, user.NewWithProfileView(record))
	}
	return views, nil
}

// Get returns a single user with its null-filtered nested profile.
func (s *Service) Get(ctx context.Context, email string) (*user.WithProfileView, error) {
	ctx, span := s.tracer.Start(ctx, "user.Get")
	defer span.End()

	record, err := s.store.GetUserWithProfile(ctx, email)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "User not found")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to get user")
	}

	view := user.NewWithProfileView(*record)
	return &view, nil
}

// UpdatePassword re-hashes and overwrites the user's password.
func (s *Service) UpdatePassword(ctx context.Context, email, newPassword string) (*user.Summary, error) {
	ctx, span := s.tracer.Start(ctx, "user.UpdatePassword")
	defer span.End()

	if newPassword == "" {
		return nil, dErrors.New(dErrors.CodeBadRequest, "password is required")
	}

	u, err := s.store.GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "User not found")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to update password")
	}

	hash, err := s.hasher.Hash(newPassword)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to update password")
	}

	u.PasswordHash = hash
	u.UpdatedAt = requestcontext.Now(ctx)
	if err := s.store.UpdateUser(ctx, u); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to update password")
	}

	s.emit(ctx, audit.ActionPasswordChanged, u.ID, u.Email)

	summary := user.NewSummary(*u)
	summary.Message = "Password updated successfully."
	return &summary, nil
}

// Delete removes the user. Profile removal is the store's cascade, not
// re-derived here. Returns the deleted record's non-sensitive fields.
func (s *Service) Delete(ctx context.Context, email string) (*user.Summary, error) {
	ctx, span := s.tracer.Start(ctx, "user.Delete")
	defer span.End()

	u, err := s.store.GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "User not found")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to delete user")
	}

	if err := s.store.DeleteUser(ctx, u.ID); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to delete user")
	}

	s.emit(ctx, audit.ActionUserDeleted, u.ID, u.Email)

	summary := user.NewSummary(*u)
	return &summary, nil
}

// Promote sets the target's role to admin. Only an admin caller may do this.
// There is no guard against promoting an already-admin target; the write is
// idempotent.
func (s *Service) Promote(ctx context.Context, caller user.Identity, targetID uuid.UUID) (*user.Summary, error) {
	ctx, span := s.tracer.Start(ctx, "user.Promote")
	defer span.End()

	return s.setRole(ctx, caller, targetID, user.RoleAdmin, audit.ActionUserPromoted)
}

// Demote sets the target's role back to verified. Only an admin caller may
// do this. Nothing prevents an admin demoting themselves or the last
// remaining admin.
func (s *Service) Demote(ctx context.Context, caller user.Identity, targetID uuid.UUID) (*user.Summary, error) {
	ctx, span := s.tracer.Start(ctx, "user.Demote")
	defer span.End()

	return s.setRole(ctx, caller, targetID, user.RoleVerified, audit.ActionUserDemoted)
}

func (s *Service) setRole(ctx context.Context, caller user.Identity, targetID uuid.UUID, role user.Role, action audit.Action) (*user.Summary, error) {
	if caller.Role != user.RoleAdmin {
		return nil, dErrors.New(dErrors.CodeForbidden, "Insufficient permissions.")
	}

	target, err := s.store.GetUserByID(ctx, targetID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "User not found")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to update role")
	}

	target.Role = role
	target.UpdatedAt = requestcontext.Now(ctx)
	if err := s.store.UpdateUser(ctx, target); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to update role")
	}

	s.metrics.RoleTransitions.WithLabelValues(string(role)).Inc()
	s.auditor.Emit(ctx, audit.Event{
		Action:    action,
		ActorID:   caller.UserID.String(),
		Subject:   target.Email,
		RequestID: requestcontext.RequestID(ctx),
	})

	summary := user.NewSummary(*target)
	return &summary, nil
}

func (s *Service) emit(ctx context.Context, action audit.Action, actorID uuid.UUID, subject string) {
	s.auditor.Emit(ctx, audit.Event{
		Action:    action,
		ActorID:   actorID.String(),
		Subject:   subject,
		RequestID: requestcontext.RequestID(ctx),
	})
}

func applyString(dst **string, field user.Optional[string]) {
	if v := field.ValueOrNil(); v != nil {
		*dst = v
	}
}
