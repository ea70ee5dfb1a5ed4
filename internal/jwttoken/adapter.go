package jwttoken

import (
	"github.com/google/uuid"

	"github.com/AliAbadiHub/val-backend/internal/platform/middleware"
	dErrors "github.com/AliAbadiHub/val-backend/pkg/domainerrors"
)

// MiddlewareAdapter bridges the token service to the auth guard's
// JWTValidator interface.
type MiddlewareAdapter struct {
	service *Service
}

func NewMiddlewareAdapter(service *Service) *MiddlewareAdapter {
	return &MiddlewareAdapter{service: service}
}

func (a *MiddlewareAdapter) ValidateToken(tokenString string) (*middleware.JWTClaims, error) {
	claims, err := a.service.ValidateToken(tokenString)
	if err != nil {
		return nil, err
	}

	userID, err := uuid.Parse(claims.UserID)
	if err != nil {
		return nil, dErrors.New(dErrors.CodeUnauthorized, "invalid token claims")
	}

	return &middleware.JWTClaims{UserID: userID, Role: claims.Role}, nil
}
