package handler

import (
	"context"

	"github.com/labstack/echo/v4"

	"github.com/proxygate/accounts/internal/core/domain"
	"github.com/proxygate/accounts/internal/infrastructure/validation"
)

type stubAccountService struct {
	createFn  func(ctx context.Context, in domain.NewAccountInput) (*domain.Account, error)
	updateFn  func(ctx context.Context, username string, patch domain.AccountPatch) (*domain.Account, error)
	approveFn func(ctx context.Context, username string) (*domain.Account, error)
	deleteFn  func(ctx context.Context, username string) error
	findFn    func(ctx context.Context, username string) (*domain.Account, error)
	listFn    func(state domain.ApprovalState) ([]*domain.Account, error)
	loginFn   func(ctx context.Context, username, password string) (*domain.Account, error)
}

func (s *stubAccountService) Create(ctx context.Context, in domain.NewAccountInput) (*domain.Account, error) {
	return s.createFn(ctx, in)
}

func (s *stubAccountService) Update(ctx context.Context, username string, patch domain.AccountPatch) (*domain.Account, error) {
	return s.updateFn(ctx, username, patch)
}

func (s *stubAccountService) Approve(ctx context.Context, username string) (*domain.Account, error) {
	return s.approveFn(ctx, username)
}

func (s *stubAccountService) Delete(ctx context.Context, username string) error {
	return s.deleteFn(ctx, username)
}

func (s *stubAccountService) FindUser(ctx context.Context, username string) (*domain.Account, error) {
	return s.findFn(ctx, username)
}

func (s *stubAccountService) ListAllUsers(context.Context) ([]*domain.Account, error) {
	return s.listFn(domain.ApprovalAll)
}

func (s *stubAccountService) ListApprovedUsers(context.Context) ([]*domain.Account, error) {
	return s.listFn(domain.ApprovalApproved)
}

func (s *stubAccountService) ListPendingUsers(context.Context) ([]*domain.Account, error) {
	return s.listFn(domain.ApprovalPending)
}

func (s *stubAccountService) Login(ctx context.Context, username, password string) (*domain.Account, error) {
	return s.loginFn(ctx, username, password)
}

func newTestEcho() *echo.Echo {
	e := echo.New()
	e.Validator = validation.New(domain.DefaultPasswordPolicy())
	return e
}

func bob() *domain.Account {
	return &domain.Account{
		Username: "bob", Email: "bob@here.com", Roles: domain.DefaultRoles(),
		PasswordHash: "hash", Salt: "salt", Approved: true,
	}
}
