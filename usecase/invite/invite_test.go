package invite_test

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gardenhub/backend/domain"
	"github.com/gardenhub/backend/internal/testkit"
	"github.com/gardenhub/backend/usecase"
	"github.com/gardenhub/backend/usecase/invite"
)

type recordingMailer struct {
	sent []usecase.Mail
	err  error
}

func (m *recordingMailer) Send(_ context.Context, mail usecase.Mail) error {
	if m.err != nil {
		return m.err
	}
	m.sent = append(m.sent, mail)
	return nil
}

func inviterFixture(store *testkit.Store) *domain.User {
	inviter := store.SeedUser("inviter@example.com")
	inviter.FirstName = "Ada"
	inviter.LastName = "Lovelace"
	_ = store.Users().Update(context.Background(), inviter)
	return inviter
}

func TestGetOrInviteMixedBatch(t *testing.T) {
	ctx := context.Background()
	store := testkit.NewStore()
	mailer := &recordingMailer{}
	inviter := inviterFixture(store)

	existingA := store.SeedUser("a@example.com")
	existingB := store.SeedUser("b@example.com")

	uc := invite.New(store.Users(), mailer, "https://gardenhub.example/activate", nil)

	emails := []string{"a@example.com", "b@example.com", "c@example.com", "d@example.com"}
	result, err := uc.GetOrInvite(ctx, emails, inviter)
	require.NoError(t, err)
	require.NoError(t, result.Warnings)

	require.Len(t, result.Users, 4)
	assert.Equal(t, existingA.ID, result.Users[0].ID)
	assert.Equal(t, existingB.ID, result.Users[1].ID)
	for i, email := range emails {
		assert.Equal(t, email, result.Users[i].Email)
	}

	// Only the two new users were invited.
	assert.Equal(t, 2, result.InvitationsSent)
	require.Len(t, mailer.sent, 2)
	for _, mail := range mailer.sent {
		assert.True(t, strings.HasSuffix(mail.Subject, " invited you to join GardenHub"), mail.Subject)
		assert.Contains(t, mail.Subject, "Ada Lovelace")
		assert.Contains(t, mail.Body, "https://gardenhub.example/activate/")
	}

	// New users start inactive with a token.
	for _, u := range result.Users[2:] {
		stored, err := store.Users().GetByID(ctx, u.ID)
		require.NoError(t, err)
		assert.False(t, stored.IsActive)
		assert.NotEmpty(t, stored.ActivationToken)
		assert.Contains(t, mailer.sent[0].Body+mailer.sent[1].Body, stored.ActivationToken)
	}
}

func TestGetOrInviteDuplicateExistingEmail(t *testing.T) {
	ctx := context.Background()
	store := testkit.NewStore()
	mailer := &recordingMailer{}
	inviter := inviterFixture(store)
	existing := store.SeedUser("a@x.com")

	uc := invite.New(store.Users(), mailer, "https://gardenhub.example/activate", nil)

	result, err := uc.GetOrInvite(ctx, []string{"a@x.com", "a@x.com"}, inviter)
	require.NoError(t, err)

	require.Len(t, result.Users, 2)
	assert.Equal(t, existing.ID, result.Users[0].ID)
	assert.Equal(t, existing.ID, result.Users[1].ID)
	assert.Zero(t, result.InvitationsSent)
	assert.Empty(t, mailer.sent)
}

func TestGetOrInviteMailFailureKeepsUser(t *testing.T) {
	ctx := context.Background()
	store := testkit.NewStore()
	mailer := &recordingMailer{err: errors.New("smtp relay down")}
	inviter := inviterFixture(store)

	uc := invite.New(store.Users(), mailer, "https://gardenhub.example/activate", nil)

	result, err := uc.GetOrInvite(ctx, []string{"new@example.com"}, inviter)
	require.NoError(t, err, "dispatch failure is not a batch failure")

	// The user persists despite the failed notification.
	require.Len(t, result.Users, 1)
	stored, err := store.Users().GetByEmail(ctx, "new@example.com")
	require.NoError(t, err)
	assert.False(t, stored.IsActive)

	assert.Zero(t, result.InvitationsSent)
	require.Error(t, result.Warnings)
	assert.Contains(t, result.Warnings.Error(), "smtp relay down")
}

func TestActivate(t *testing.T) {
	ctx := context.Background()
	store := testkit.NewStore()
	mailer := &recordingMailer{}
	inviter := inviterFixture(store)

	uc := invite.New(store.Users(), mailer, "https://gardenhub.example/activate", nil)

	result, err := uc.GetOrInvite(ctx, []string{"new@example.com"}, inviter)
	require.NoError(t, err)
	created := result.Users[0]

	stored, err := store.Users().GetByID(ctx, created.ID)
	require.NoError(t, err)
	token := stored.ActivationToken

	activated, err := uc.Activate(ctx, token)
	require.NoError(t, err)
	assert.True(t, activated.IsActive)
	assert.Empty(t, activated.ActivationToken)

	// Token is single use.
	_, err = uc.Activate(ctx, token)
	assert.True(t, domain.IsDomainError(err, domain.ErrCodeNotFound))

	_, err = uc.Activate(ctx, "")
	assert.Error(t, err)
}
