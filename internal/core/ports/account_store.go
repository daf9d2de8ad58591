package ports

import (
	"context"

	"github.com/proxygate/accounts/internal/core/domain"
)

// AccountStore persists accounts. Username and email are unique; a violation
// is reported as domain.ErrUniquenessConflict. Lookups of a missing account
// return domain.ErrAccountNotFound.
type AccountStore interface {
	Insert(ctx context.Context, account *domain.Account) error
	// Replace overwrites the stored document whose username matches account.
	Replace(ctx context.Context, account *domain.Account) error
	FindByUsername(ctx context.Context, username string) (*domain.Account, error)
	List(ctx context.Context, filter domain.ListFilter) ([]*domain.Account, error)
	Delete(ctx context.Context, username string) error
}
