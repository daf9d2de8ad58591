package ports

import "github.com/proxygate/accounts/internal/core/domain"

// AccountValidator enforces field rules before an account reaches the save
// hook. Failures are returned as *domain.ValidationError.
type AccountValidator interface {
	ValidateNew(in domain.NewAccountInput) error
	ValidatePatch(patch domain.AccountPatch) error
}
