// Package invite implements the get-or-invite workflow: resolving a
// batch of email addresses to users, creating inactive accounts for
// the unknown ones and mailing each new account an activation link.
package invite

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/hashicorp/go-multierror"
	"go.uber.org/zap"

	"github.com/gardenhub/backend/domain"
	"github.com/gardenhub/backend/repository"
	"github.com/gardenhub/backend/usecase"
)

type UseCase struct {
	users       repository.UserRepository
	mailer      usecase.Mailer
	activateURL string
	logger      *zap.Logger
}

// New builds the workflow. activateURL is the base the activation token
// gets appended to, e.g. "https://gardenhub.example/activate".
func New(users repository.UserRepository, mailer usecase.Mailer, activateURL string, logger *zap.Logger) *UseCase {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &UseCase{
		users:       users,
		mailer:      mailer,
		activateURL: strings.TrimRight(activateURL, "/"),
		logger:      logger,
	}
}

// Result carries the resolved users plus any non-fatal delivery
// warnings. Users are returned in input order, duplicates included.
type Result struct {
	Users           []domain.User
	InvitationsSent int
	// Warnings collects notification failures. The corresponding user
	// records persist regardless; callers surface these as warnings,
	// never as a failure of the batch.
	Warnings error
}

// GetOrInvite looks up each email and invites the ones that don't
// resolve. Exactly one invitation goes out per newly created user;
// pre-existing users get nothing.
func (uc *UseCase) GetOrInvite(ctx context.Context, emails []string, inviter *domain.User) (Result, error) {
	var result Result
	var warnings *multierror.Error

	for _, email := range emails {
		email = domain.NormalizeEmail(email)
		if email == "" {
			continue
		}

		user, err := uc.users.GetByEmail(ctx, email)
		if err == nil {
			result.Users = append(result.Users, *user)
			continue
		}
		if !domain.IsDomainError(err, domain.ErrCodeNotFound) {
			return result, err
		}

		created := &domain.User{
			ID:              uuid.NewString(),
			Email:           email,
			IsActive:        false,
			ActivationToken: uuid.NewString(),
		}
		if err := uc.users.Create(ctx, created); err != nil {
			// A concurrent invite may have won the race on the unique
			// email; fall back to the existing record.
			if domain.IsDomainError(err, domain.ErrCodeConflict) {
				if existing, lookupErr := uc.users.GetByEmail(ctx, email); lookupErr == nil {
					result.Users = append(result.Users, *existing)
					continue
				}
			}
			return result, err
		}

		// The user record is committed at this point. Dispatch failure
		// must not undo it; it degrades to a warning.
		if err := uc.sendInvitation(ctx, created, inviter); err != nil {
			uc.logger.Warn("invitation dispatch failed",
				zap.String("email", email),
				zap.Error(err))
			warnings = multierror.Append(warnings,
				fmt.Errorf("invitation for %s: %w", email, err))
		} else {
			result.InvitationsSent++
		}

		result.Users = append(result.Users, *created)
	}

	result.Warnings = warnings.ErrorOrNil()
	return result, nil
}

// Activate consumes an activation token, marking the account active.
func (uc *UseCase) Activate(ctx context.Context, token string) (*domain.User, error) {
	if token == "" {
		return nil, domain.ErrTokenNotFound
	}
	return uc.users.ConsumeActivationToken(ctx, token)
}

func (uc *UseCase) sendInvitation(ctx context.Context, user *domain.User, inviter *domain.User) error {
	if uc.mailer == nil {
		return fmt.Errorf("no mailer configured")
	}

	inviterName := inviter.FullName()
	if inviterName == "" && inviter != nil {
		inviterName = inviter.Email
	}

	body, err := renderInvitation(invitationData{
		InviterName: inviterName,
		ActivateURL: fmt.Sprintf("%s/%s/", uc.activateURL, user.ActivationToken),
	})
	if err != nil {
		return err
	}

	return uc.mailer.Send(ctx, usecase.Mail{
		To:      user.Email,
		Subject: fmt.Sprintf("%s invited you to join GardenHub", inviterName),
		Body:    body,
	})
}
