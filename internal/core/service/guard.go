package service

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/proxygate/accounts/internal/core/credential"
	"github.com/proxygate/accounts/internal/core/domain"
	"github.com/proxygate/accounts/internal/core/ports"
)

// Guard runs the save hook on every account persist and answers
// authentication checks against the stored salt and hash.
type Guard struct {
	store  ports.AccountStore
	random credential.RandomSource
	policy domain.PasswordPolicy
	now    func() time.Time
	log    zerolog.Logger
}

// NewGuard returns a Guard persisting through store and drawing salts from random.
func NewGuard(store ports.AccountStore, random credential.RandomSource, policy domain.PasswordPolicy, log zerolog.Logger) *Guard {
	if random == nil {
		random = credential.SystemRandom{}
	}
	return &Guard{
		store:  store,
		random: random,
		policy: policy,
		now:    time.Now,
		log:    log,
	}
}

// BeforeSave returns the account as it must be persisted for m.
//
// The password is hashed under a fresh salt only when the password field is in
// m.Changed and the new value is longer than the policy's re-hash threshold.
// A changed password at or under the threshold keeps the previous hash and
// salt. In every case the plaintext is cleared.
func (g *Guard) BeforeSave(m domain.Mutation) (domain.Account, error) {
	next := m.Next.Clone()

	if m.Previous != nil {
		next.Username = m.Previous.Username
		next.CreatedAt = m.Previous.CreatedAt
		next.PasswordHash = m.Previous.PasswordHash
		next.Salt = m.Previous.Salt
	} else if next.CreatedAt.IsZero() {
		next.CreatedAt = g.now().UTC()
	}
	if len(next.Roles) == 0 {
		next.Roles = domain.DefaultRoles()
	}

	plaintext := next.PasswordPlaintext
	next.PasswordPlaintext = ""

	if !m.Changed.Has(domain.FieldPassword) {
		return next, nil
	}

	if !g.policy.Rehashes(plaintext) {
		g.log.Warn().
			Str("username", next.Username).
			Int("rehash_min_length", g.policy.RehashMinLength).
			Msg("password change below re-hash threshold, keeping previous credential")
		return next, nil
	}

	salt, err := credential.NewSalt(g.random)
	if err != nil {
		return domain.Account{}, fmt.Errorf("before save %q: %w", next.Username, err)
	}
	hash, err := credential.Hash(plaintext, salt)
	if err != nil {
		return domain.Account{}, fmt.Errorf("before save %q: %w", next.Username, err)
	}

	next.Salt = salt
	next.PasswordHash = hash

	g.log.Debug().Str("username", next.Username).Msg("credential rotated")
	return next, nil
}

// Save runs BeforeSave and hands the result to the store: Insert for a
// creation, Replace otherwise. Store errors are returned unchanged.
func (g *Guard) Save(ctx context.Context, m domain.Mutation) (*domain.Account, error) {
	account, err := g.BeforeSave(m)
	if err != nil {
		return nil, err
	}

	if m.IsCreate() {
		err = g.store.Insert(ctx, &account)
	} else {
		err = g.store.Replace(ctx, &account)
	}
	if err != nil {
		return nil, err
	}

	g.log.Info().
		Str("username", account.Username).
		Bool("create", m.IsCreate()).
		Strs("changed", m.Changed.Sorted()).
		Msg("account saved")

	return &account, nil
}

// Authenticate reports whether candidate is the account's password. It never
// fails: a missing salt or hash, a hashing error, and a mismatch are all false.
func (g *Guard) Authenticate(account domain.Account, candidate string) bool {
	if !account.HasCredential() {
		return false
	}
	hash, err := credential.Hash(candidate, account.Salt)
	if err != nil {
		return false
	}
	return credential.Equal(hash, account.PasswordHash)
}

// EffectiveRole returns the account's first role.
func (g *Guard) EffectiveRole(account domain.Account) domain.Role {
	return account.EffectiveRole()
}

// IsAdmin reports whether the account's effective role is admin.
func (g *Guard) IsAdmin(account domain.Account) bool {
	return account.IsAdmin()
}
