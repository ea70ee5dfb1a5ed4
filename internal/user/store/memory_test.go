package store

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AliAbadiHub/val-backend/internal/user"
)

func newTestUser(email string) *user.User {
	now := time.Now()
	return &user.User{
		ID:           uuid.New(),
		Email:        email,
		PasswordHash: "$2a$10$hash",
		Role:         user.RoleUnverified,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}

func strPtr(s string) *string { return &s }

func TestMemory_CreateAndGetUser(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()
	u := newTestUser("a@x.com")

	require.NoError(t, m.CreateUser(ctx, u))

	byEmail, err := m.GetUserByEmail(ctx, "a@x.com")
	require.NoError(t, err)
	assert.Equal(t, u.ID, byEmail.ID)

	byID, err := m.GetUserByID(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, "a@x.com", byID.Email)
}

func TestMemory_DuplicateEmail(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()
	require.NoError(t, m.CreateUser(ctx, newTestUser("a@x.com")))

	err := m.CreateUser(ctx, newTestUser("a@x.com"))
	assert.ErrorIs(t, err, ErrDuplicateEmail)
}

func TestMemory_EmailLookupIsCaseSensitive(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()
	require.NoError(t, m.CreateUser(ctx, newTestUser("A@x.com")))

	_, err := m.GetUserByEmail(ctx, "a@x.com")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMemory_ProfileOneToOne(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()
	u := newTestUser("a@x.com")
	require.NoError(t, m.CreateUser(ctx, u))

	p := &user.Profile{ID: uuid.New(), UserID: u.ID, FirstName: strPtr("Ada")}
	require.NoError(t, m.CreateProfile(ctx, p))

	err := m.CreateProfile(ctx, &user.Profile{ID: uuid.New(), UserID: u.ID})
	assert.ErrorIs(t, err, ErrDuplicateProfile)
}

func TestMemory_CreateProfile_MissingUser(t *testing.T) {
	m := NewMemory()
	err := m.CreateProfile(context.Background(), &user.Profile{ID: uuid.New(), UserID: uuid.New()})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMemory_DeleteUserCascadesProfile(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()
	u := newTestUser("a@x.com")
	require.NoError(t, m.CreateUser(ctx, u))
	require.NoError(t, m.CreateProfile(ctx, &user.Profile{ID: uuid.New(), UserID: u.ID}))

	require.NoError(t, m.DeleteUser(ctx, u.ID))

	_, err := m.GetUserByEmail(ctx, "a@x.com")
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = m.GetProfileByUserID(ctx, u.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMemory_ListUsersKeepsInsertionOrder(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()
	first := newTestUser("first@x.com")
	second := newTestUser("second@x.com")
	require.NoError(t, m.CreateUser(ctx, first))
	require.NoError(t, m.CreateUser(ctx, second))
	require.NoError(t, m.CreateProfile(ctx, &user.Profile{ID: uuid.New(), UserID: second.ID, FirstName: strPtr("Bea")}))

	list, err := m.ListUsers(ctx)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "first@x.com", list[0].User.Email)
	assert.Nil(t, list[0].Profile)
	assert.Equal(t, "second@x.com", list[1].User.Email)
	require.NotNil(t, list[1].Profile)
	assert.Equal(t, "Bea", *list[1].Profile.FirstName)
}

func TestMemory_UpdateUser(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()
	u := newTestUser("a@x.com")
	require.NoError(t, m.CreateUser(ctx, u))

	u.Role = user.RoleVerified
	require.NoError(t, m.UpdateUser(ctx, u))

	got, err := m.GetUserByID(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, user.RoleVerified, got.Role)
}

func TestMemory_UpdateProfile_NotFound(t *testing.T) {
	m := NewMemory()
	err := m.UpdateProfile(context.Background(), &user.Profile{ID: uuid.New(), UserID: uuid.New()})
	assert.ErrorIs(t, err, ErrNotFound)
}
