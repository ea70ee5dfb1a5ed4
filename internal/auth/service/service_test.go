package service

import (
	"context"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/AliAbadiHub/val-backend/internal/audit"
	"github.com/AliAbadiHub/val-backend/internal/auth"
	"github.com/AliAbadiHub/val-backend/internal/platform/metrics"
	"github.com/AliAbadiHub/val-backend/internal/user"
	userstore "github.com/AliAbadiHub/val-backend/internal/user/store"
	dErrors "github.com/AliAbadiHub/val-backend/pkg/domainerrors"
	"github.com/AliAbadiHub/val-backend/pkg/requestcontext"
)

var (
	metricsOnce sync.Once
	sharedM     *metrics.Metrics
)

// Prometheus default-registry metrics can only register once per process.
func testMetrics() *metrics.Metrics {
	metricsOnce.Do(func() { sharedM = metrics.New() })
	return sharedM
}

type stubMinter struct {
	token string
	err   error
}

func (s *stubMinter) GenerateAccessToken(uuid.UUID, string, time.Duration) (string, error) {
	return s.token, s.err
}

func newLoginFixture(t *testing.T) (*Service, *userstore.Memory, *audit.Publisher) {
	t.Helper()
	store := userstore.NewMemory()
	logger := slog.New(slog.DiscardHandler)
	publisher := audit.NewPublisher(logger)
	hasher := auth.NewBcryptHasher(bcrypt.MinCost)
	svc := New(store, hasher, &stubMinter{token: "signed-token"}, time.Hour, testMetrics(), publisher)
	return svc, store, publisher
}

func seedUser(t *testing.T, store *userstore.Memory, email, password string) *user.User {
	t.Helper()
	hash, err := auth.NewBcryptHasher(bcrypt.MinCost).Hash(password)
	require.NoError(t, err)
	now := time.Now()
	u := &user.User{
		ID:           uuid.New(),
		Email:        email,
		PasswordHash: hash,
		Role:         user.RoleVerified,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	require.NoError(t, store.CreateUser(context.Background(), u))
	return u
}

func TestLogin_Success(t *testing.T) {
	svc, store, publisher := newLoginFixture(t)
	seedUser(t, store, "a@x.com", "pw1")

	ctx := requestcontext.WithClientMetadata(context.Background(),
		"203.0.113.9",
		"Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0 Safari/537.36")

	result, err := svc.Login(ctx, "a@x.com", "pw1")
	require.NoError(t, err)
	assert.Equal(t, "signed-token", result.AccessToken)
	assert.Equal(t, "Bearer", result.TokenType)
	assert.Equal(t, 3600, result.ExpiresIn)

	select {
	case event := <-publisher.Inbox():
		assert.Equal(t, audit.ActionLogin, event.Action)
		assert.Equal(t, "a@x.com", event.Subject)
		assert.Equal(t, "203.0.113.9", event.ClientIP)
		assert.NotEqual(t, "unknown", event.Device)
	default:
		t.Fatal("expected a login audit event")
	}
}

func TestLogin_WrongPassword(t *testing.T) {
	svc, store, _ := newLoginFixture(t)
	seedUser(t, store, "a@x.com", "pw1")

	_, err := svc.Login(context.Background(), "a@x.com", "wrong")
	require.Error(t, err)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeUnauthorized))
}

func TestLogin_UnknownEmailSameError(t *testing.T) {
	svc, _, _ := newLoginFixture(t)

	_, err := svc.Login(context.Background(), "ghost@x.com", "pw1")
	require.Error(t, err)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeUnauthorized))
	// Same client-visible message as a wrong password; no account probing.
	assert.Equal(t, "invalid credentials", dErrors.MessageOf(err))
}

func TestLogin_EmptyInput(t *testing.T) {
	svc, _, _ := newLoginFixture(t)

	_, err := svc.Login(context.Background(), "", "pw")
	assert.True(t, dErrors.HasCode(err, dErrors.CodeBadRequest))

	_, err = svc.Login(context.Background(), "a@x.com", "")
	assert.True(t, dErrors.HasCode(err, dErrors.CodeBadRequest))
}
