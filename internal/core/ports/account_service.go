package ports

import (
	"context"

	"github.com/proxygate/accounts/internal/core/domain"
)

// AccountService is the use-case surface consumed by the HTTP layer.
type AccountService interface {
	Create(ctx context.Context, in domain.NewAccountInput) (*domain.Account, error)
	Update(ctx context.Context, username string, patch domain.AccountPatch) (*domain.Account, error)
	Approve(ctx context.Context, username string) (*domain.Account, error)
	Delete(ctx context.Context, username string) error

	FindUser(ctx context.Context, username string) (*domain.Account, error)
	ListAllUsers(ctx context.Context) ([]*domain.Account, error)
	ListApprovedUsers(ctx context.Context) ([]*domain.Account, error)
	ListPendingUsers(ctx context.Context) ([]*domain.Account, error)

	// Login returns the account when password matches. Unknown users and wrong
	// passwords both yield domain.ErrInvalidCredentials.
	Login(ctx context.Context, username, password string) (*domain.Account, error)
}
