// Package service implements the login flow: verify credentials against the
// user store, mint an access token, and record the attempt.
package service

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/AliAbadiHub/val-backend/internal/audit"
	"github.com/AliAbadiHub/val-backend/internal/auth"
	"github.com/AliAbadiHub/val-backend/internal/platform/metrics"
	userstore "github.com/AliAbadiHub/val-backend/internal/user/store"
	dErrors "github.com/AliAbadiHub/val-backend/pkg/domainerrors"
	"github.com/AliAbadiHub/val-backend/pkg/requestcontext"
)

// TokenMinter issues signed access tokens; the jwttoken package satisfies it.
type TokenMinter interface {
	GenerateAccessToken(userID uuid.UUID, role string, expiresIn time.Duration) (string, error)
}

// TokenResult is the successful login payload.
type TokenResult struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresIn   int    `json:"expires_in"`
}

// Service verifies credentials and mints tokens.
type Service struct {
	users    userstore.UserStore
	hasher   auth.Hasher
	minter   TokenMinter
	tokenTTL time.Duration
	metrics  *metrics.Metrics
	auditor  *audit.Publisher
}

func New(
	users userstore.UserStore,
	hasher auth.Hasher,
	minter TokenMinter,
	tokenTTL time.Duration,
	m *metrics.Metrics,
	auditor *audit.Publisher,
) *Service {
	return &Service{
		users:    users,
		hasher:   hasher,
		minter:   minter,
		tokenTTL: tokenTTL,
		metrics:  m,
		auditor:  auditor,
	}
}

// Login verifies email+password and returns a bearer token carrying the
// user's identity and role. Unknown emails and wrong passwords both come
// back as the same unauthorized error.
func (s *Service) Login(ctx context.Context, email, password string) (*TokenResult, error) {
	if email == "" || password == "" {
		return nil, dErrors.New(dErrors.CodeBadRequest, "email and password are required")
	}

	u, err := s.users.GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, userstore.ErrNotFound) {
			s.metrics.Logins.WithLabelValues("failure").Inc()
			return nil, dErrors.New(dErrors.CodeUnauthorized, "invalid credentials")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to log in")
	}

	if err := s.hasher.Compare(password, u.PasswordHash); err != nil {
		if errors.Is(err, auth.ErrPasswordMismatch) {
			s.metrics.Logins.WithLabelValues("failure").Inc()
			return nil, dErrors.New(dErrors.CodeUnauthorized, "invalid credentials")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to log in")
	}

	token, err := s.minter.GenerateAccessToken(u.ID, string(u.Role), s.tokenTTL)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to log in")
	}

	s.metrics.Logins.WithLabelValues("success").Inc()
	s.auditor.Emit(ctx, audit.Event{
		Action:    audit.ActionLogin,
		ActorID:   u.ID.String(),
		Subject:   u.Email,
		RequestID: requestcontext.RequestID(ctx),
		Device:    auth.DeviceSummary(requestcontext.UserAgent(ctx)),
		ClientIP:  requestcontext.ClientIP(ctx),
	})

	return &TokenResult{
		AccessToken: token,
		TokenType:   "Bearer",
		ExpiresIn:   int(s.tokenTTL.Seconds()),
	}, nil
}
