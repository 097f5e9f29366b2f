package auth_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gardenhub/backend/domain"
	"github.com/gardenhub/backend/internal/testkit"
	"github.com/gardenhub/backend/usecase/auth"
)

func TestLogin(t *testing.T) {
	ctx := context.Background()
	store := testkit.NewStore()
	sessions := testkit.NewSessionStore()
	uc := auth.New(store.Users(), sessions, nil)

	active := store.SeedUser("active@example.com")

	session, err := uc.Login(ctx, "active@example.com", time.Hour)
	require.NoError(t, err)
	assert.Equal(t, active.ID, session.UserID)

	fetched, err := uc.GetSession(ctx, session.ID)
	require.NoError(t, err)
	assert.Equal(t, active.ID, fetched.UserID)
}

func TestLoginMatchesInvitedCasing(t *testing.T) {
	ctx := context.Background()
	store := testkit.NewStore()
	uc := auth.New(store.Users(), testkit.NewSessionStore(), nil)

	// Invitations store the address lowercased; logging in with the
	// casing the invite was typed with must still resolve.
	user := store.SeedUser("grower@example.com")

	session, err := uc.Login(ctx, " Grower@Example.COM ", time.Hour)
	require.NoError(t, err)
	assert.Equal(t, user.ID, session.UserID)
}

func TestLoginRejectsInactiveUser(t *testing.T) {
	ctx := context.Background()
	store := testkit.NewStore()
	uc := auth.New(store.Users(), testkit.NewSessionStore(), nil)

	invited := &domain.User{Email: "invited@example.com", IsActive: false}
	require.NoError(t, store.Users().Create(ctx, invited))

	_, err := uc.Login(ctx, "invited@example.com", time.Hour)
	assert.True(t, domain.IsDomainError(err, domain.ErrCodeUnauthorized))

	_, err = uc.Login(ctx, "nobody@example.com", time.Hour)
	assert.True(t, domain.IsDomainError(err, domain.ErrCodeNotFound))
}

func TestSessionExpiry(t *testing.T) {
	ctx := context.Background()
	store := testkit.NewStore()
	sessions := testkit.NewSessionStore()
	uc := auth.New(store.Users(), sessions, nil)

	user := store.SeedUser("active@example.com")

	session, err := uc.CreateSession(ctx, user.ID, -time.Minute)
	require.NoError(t, err)

	// Expired sessions are evicted on read.
	_, err = uc.GetSession(ctx, session.ID)
	assert.True(t, domain.IsDomainError(err, domain.ErrCodeNotFound))
}

func TestRefreshAndRevoke(t *testing.T) {
	ctx := context.Background()
	store := testkit.NewStore()
	sessions := testkit.NewSessionStore()
	uc := auth.New(store.Users(), sessions, nil)

	user := store.SeedUser("active@example.com")
	session, err := uc.CreateSession(ctx, user.ID, time.Hour)
	require.NoError(t, err)

	refreshed, err := uc.RefreshSession(ctx, session.ID, 2*time.Hour)
	require.NoError(t, err)
	assert.True(t, refreshed.ExpiresAt.After(session.ExpiresAt))

	require.NoError(t, uc.RevokeSession(ctx, session.ID))
	_, err = uc.GetSession(ctx, session.ID)
	assert.Error(t, err)
}
