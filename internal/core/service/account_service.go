package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"github.com/proxygate/accounts/internal/core/domain"
	"github.com/proxygate/accounts/internal/core/ports"
)

// AccountService implements account management and password login on top of
// the save hook.
type AccountService struct {
	guard     *Guard
	store     ports.AccountStore
	validator ports.AccountValidator
	log       zerolog.Logger
}

func NewAccountService(guard *Guard, store ports.AccountStore, validator ports.AccountValidator, log zerolog.Logger) *AccountService {
	return &AccountService{guard: guard, store: store, validator: validator, log: log}
}

// Create validates in and persists a new account.
func (s *AccountService) Create(ctx context.Context, in domain.NewAccountInput) (*domain.Account, error) {
	in.Email = strings.TrimSpace(in.Email)
	if err := s.validator.ValidateNew(in); err != nil {
		return nil, err
	}

	account, err := s.guard.Save(ctx, domain.NewAccount(in))
	if err != nil {
		return nil, fmt.Errorf("create account: %w", err)
	}
	return account, nil
}

// Update applies patch to the stored account. Only fields present in the patch
// count as changed.
func (s *AccountService) Update(ctx context.Context, username string, patch domain.AccountPatch) (*domain.Account, error) {
	if patch.Email != nil {
		trimmed := strings.TrimSpace(*patch.Email)
		patch.Email = &trimmed
	}
	if err := s.validator.ValidatePatch(patch); err != nil {
		return nil, err
	}

	current, err := s.store.FindByUsername(ctx, username)
	if err != nil {
		return nil, fmt.Errorf("update account: %w", err)
	}

	account, err := s.guard.Save(ctx, patch.Apply(*current))
	if err != nil {
		return nil, fmt.Errorf("update account: %w", err)
	}
	return account, nil
}

// Approve marks the account approved for use.
func (s *AccountService) Approve(ctx context.Context, username string) (*domain.Account, error) {
	approved := true
	return s.Update(ctx, username, domain.AccountPatch{Approved: &approved})
}

// Delete removes the account from the store.
func (s *AccountService) Delete(ctx context.Context, username string) error {
	if err := s.store.Delete(ctx, username); err != nil {
		return fmt.Errorf("delete account: %w", err)
	}
	s.log.Info().Str("username", username).Msg("account deleted")
	return nil
}

func (s *AccountService) FindUser(ctx context.Context, username string) (*domain.Account, error) {
	return s.store.FindByUsername(ctx, username)
}

func (s *AccountService) ListAllUsers(ctx context.Context) ([]*domain.Account, error) {
	return s.store.List(ctx, domain.ApprovalAll.Filter())
}

func (s *AccountService) ListApprovedUsers(ctx context.Context) ([]*domain.Account, error) {
	return s.store.List(ctx, domain.ApprovalApproved.Filter())
}

func (s *AccountService) ListPendingUsers(ctx context.Context) ([]*domain.Account, error) {
	return s.store.List(ctx, domain.ApprovalPending.Filter())
}

// Login looks the account up and checks password against it. The caller
// cannot tell an unknown user from a wrong password.
func (s *AccountService) Login(ctx context.Context, username, password string) (*domain.Account, error) {
	if username == "" || password == "" {
		return nil, domain.ErrInvalidCredentials
	}

	account, err := s.store.FindByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, domain.ErrAccountNotFound) {
			return nil, domain.ErrInvalidCredentials
		}
		return nil, fmt.Errorf("login: %w", err)
	}

	if !s.guard.Authenticate(*account, password) {
		return nil, domain.ErrInvalidCredentials
	}
	return account, nil
}
