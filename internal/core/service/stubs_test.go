package service

import (
	"context"
	"errors"
	"sort"
	"sync"

	"github.com/proxygate/accounts/internal/core/domain"
)

// ---------------------------------------------------------------------------
// Stub account store
// ---------------------------------------------------------------------------

type stubAccountStore struct {
	mu       sync.Mutex
	accounts map[string]*domain.Account
	inserted int
	replaced int
	err      error
}

func newStubAccountStore() *stubAccountStore {
	return &stubAccountStore{accounts: make(map[string]*domain.Account)}
}

func cloneAccount(a *domain.Account) *domain.Account {
	if a == nil {
		return nil
	}
	c := a.Clone()
	return &c
}

func (s *stubAccountStore) Insert(_ context.Context, a *domain.Account) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return s.err
	}
	if a.PasswordPlaintext != "" {
		return errors.New("plaintext reached the store")
	}
	for _, existing := range s.accounts {
		if existing.Username == a.Username || existing.Email == a.Email {
			return domain.ErrUniquenessConflict
		}
	}
	s.accounts[a.Username] = cloneAccount(a)
	s.inserted++
	return nil
}

func (s *stubAccountStore) Replace(_ context.Context, a *domain.Account) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return s.err
	}
	if a.PasswordPlaintext != "" {
		return errors.New("plaintext reached the store")
	}
	if _, ok := s.accounts[a.Username]; !ok {
		return domain.ErrAccountNotFound
	}
	for name, existing := range s.accounts {
		if name != a.Username && existing.Email == a.Email {
			return domain.ErrUniquenessConflict
		}
	}
	s.accounts[a.Username] = cloneAccount(a)
	s.replaced++
	return nil
}

func (s *stubAccountStore) FindByUsername(_ context.Context, username string) (*domain.Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	a, ok := s.accounts[username]
	if !ok {
		return nil, domain.ErrAccountNotFound
	}
	return cloneAccount(a), nil
}

func (s *stubAccountStore) List(_ context.Context, filter domain.ListFilter) ([]*domain.Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]*domain.Account, 0, len(s.accounts))
	for _, a := range s.accounts {
		if filter.Approved != nil && a.Approved != *filter.Approved {
			continue
		}
		out = append(out, cloneAccount(a))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Username < out[j].Username })
	return out, nil
}

func (s *stubAccountStore) Delete(_ context.Context, username string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.accounts[username]; !ok {
		return domain.ErrAccountNotFound
	}
	delete(s.accounts, username)
	return nil
}

// ---------------------------------------------------------------------------
// Counting random source
// ---------------------------------------------------------------------------

// countingRandom yields distinct bytes on every call and counts the calls.
type countingRandom struct {
	mu    sync.Mutex
	calls int
	err   error
}

func (r *countingRandom) RandomBytes(n int) ([]byte, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return nil, r.err
	}
	r.calls++
	b := make([]byte, n)
	for i := range b {
		b[i] = byte(r.calls*31 + i)
	}
	return b, nil
}

func (r *countingRandom) Calls() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.calls
}

// ---------------------------------------------------------------------------
// Stub validator
// ---------------------------------------------------------------------------

type stubValidator struct {
	newErr   error
	patchErr error
}

func (v stubValidator) ValidateNew(domain.NewAccountInput) error { return v.newErr }
func (v stubValidator) ValidatePatch(domain.AccountPatch) error  { return v.patchErr }
