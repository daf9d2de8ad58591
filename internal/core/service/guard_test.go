package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/proxygate/accounts/internal/core/credential"
	"github.com/proxygate/accounts/internal/core/domain"
)

func newTestGuard() (*Guard, *stubAccountStore, *countingRandom) {
	store := newStubAccountStore()
	rnd := &countingRandom{}
	g := NewGuard(store, rnd, domain.DefaultPasswordPolicy(), zerolog.Nop())
	g.now = func() time.Time { return time.Date(2014, 6, 1, 12, 0, 0, 0, time.UTC) }
	return g, store, rnd
}

func strPtr(s string) *string { return &s }

func saveNew(t *testing.T, g *Guard, in domain.NewAccountInput) *domain.Account {
	t.Helper()
	a, err := g.Save(context.Background(), domain.NewAccount(in))
	if err != nil {
		t.Fatalf("save %s: %v", in.Username, err)
	}
	return a
}

func TestGuard_BeforeSave_CreateHashesPassword(t *testing.T) {
	g, _, rnd := newTestGuard()

	got, err := g.BeforeSave(domain.NewAccount(domain.NewAccountInput{
		Username: "bob",
		Password: "bobbobbob",
		Email:    "bob@here.com",
	}))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.Salt == "" || got.PasswordHash == "" {
		t.Fatalf("expected salt and hash, got %+v", got)
	}
	if got.PasswordHash == "bobbobbob" {
		t.Fatalf("password stored in plaintext")
	}
	if got.PasswordPlaintext != "" {
		t.Fatalf("plaintext not cleared")
	}
	if rnd.Calls() != 1 {
		t.Fatalf("expected 1 random draw, got %d", rnd.Calls())
	}
	want, _ := credential.Hash("bobbobbob", got.Salt)
	if got.PasswordHash != want {
		t.Fatalf("hash does not match hasher output")
	}
	if !got.CreatedAt.Equal(time.Date(2014, 6, 1, 12, 0, 0, 0, time.UTC)) {
		t.Fatalf("created not set: %v", got.CreatedAt)
	}
}

func TestGuard_UnrelatedUpdateIsIdempotent(t *testing.T) {
	g, store, rnd := newTestGuard()
	created := saveNew(t, g, domain.NewAccountInput{Username: "jim", Password: "usususususu", Email: "jim@here.com"})

	first, err := g.Save(context.Background(), domain.AccountPatch{DeviceType: strPtr("nexus7")}.Apply(*created))
	if err != nil {
		t.Fatalf("first update: %v", err)
	}
	second, err := g.Save(context.Background(), domain.AccountPatch{DeviceType: strPtr("nexus10")}.Apply(*first))
	if err != nil {
		t.Fatalf("second update: %v", err)
	}

	if first.Salt != created.Salt || second.Salt != created.Salt {
		t.Fatalf("salt changed on unrelated update")
	}
	if first.PasswordHash != created.PasswordHash || second.PasswordHash != created.PasswordHash {
		t.Fatalf("hash changed on unrelated update")
	}
	if rnd.Calls() != 1 {
		t.Fatalf("expected entropy only at creation, got %d draws", rnd.Calls())
	}
	if second.DeviceType != "nexus10" {
		t.Fatalf("device type not updated: %q", second.DeviceType)
	}
	if !second.CreatedAt.Equal(created.CreatedAt) {
		t.Fatalf("created changed: %v -> %v", created.CreatedAt, second.CreatedAt)
	}
	if store.replaced != 2 {
		t.Fatalf("expected 2 replaces, got %d", store.replaced)
	}
}

func TestGuard_PasswordChangeRotatesSalt(t *testing.T) {
	g, _, rnd := newTestGuard()
	created := saveNew(t, g, domain.NewAccountInput{Username: "carl", Password: "carlcarlcarl", Email: "carl@here.com"})

	// Same plaintext, still a genuine change.
	again, err := g.Save(context.Background(), domain.AccountPatch{Password: strPtr("carlcarlcarl")}.Apply(*created))
	if err != nil {
		t.Fatalf("update: %v", err)
	}

	if again.Salt == created.Salt {
		t.Fatalf("salt reused across password changes")
	}
	if again.PasswordHash == created.PasswordHash {
		t.Fatalf("hash reused across password changes")
	}
	if rnd.Calls() != 2 {
		t.Fatalf("expected 2 random draws, got %d", rnd.Calls())
	}
	if !g.Authenticate(*again, "carlcarlcarl") {
		t.Fatalf("authentication failed after rotation")
	}
}

func TestGuard_ShortPasswordChangeKeepsCredential(t *testing.T) {
	g, _, rnd := newTestGuard()
	created := saveNew(t, g, domain.NewAccountInput{Username: "bob", Password: "bobbobbob", Email: "bob@here.com"})

	for _, pwd := range []string{"", "short", "sixsix"} {
		got, err := g.BeforeSave(domain.AccountPatch{Password: strPtr(pwd)}.Apply(*created))
		if err != nil {
			t.Fatalf("password %q: %v", pwd, err)
		}
		if got.Salt != created.Salt || got.PasswordHash != created.PasswordHash {
			t.Fatalf("password %q: credential changed", pwd)
		}
		if got.PasswordPlaintext != "" {
			t.Fatalf("password %q: plaintext not cleared", pwd)
		}
	}
	if rnd.Calls() != 1 {
		t.Fatalf("expected no extra entropy, got %d draws", rnd.Calls())
	}

	// Seven characters clears the threshold.
	got, err := g.BeforeSave(domain.AccountPatch{Password: strPtr("sevenxx")}.Apply(*created))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.Salt == created.Salt {
		t.Fatalf("seven-character password should rotate the salt")
	}
}

func TestGuard_ChangedFlagNotValueEquality(t *testing.T) {
	g, _, rnd := newTestGuard()
	created := saveNew(t, g, domain.NewAccountInput{Username: "bob", Password: "bobbobbob", Email: "bob@here.com"})

	// A next state carrying a plaintext without the password flag is not a change.
	m := domain.AccountPatch{DeviceType: strPtr("pixel")}.Apply(*created)
	m.Next.PasswordPlaintext = "somethingelse"

	got, err := g.BeforeSave(m)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.Salt != created.Salt || got.PasswordHash != created.PasswordHash {
		t.Fatalf("credential changed without the password flag")
	}
	if got.PasswordPlaintext != "" {
		t.Fatalf("plaintext not cleared")
	}
	if rnd.Calls() != 1 {
		t.Fatalf("unexpected entropy draw")
	}
}

func TestGuard_UsernameAndCreatedImmutable(t *testing.T) {
	g, _, _ := newTestGuard()
	created := saveNew(t, g, domain.NewAccountInput{Username: "bob", Password: "bobbobbob", Email: "bob@here.com"})

	m := domain.AccountPatch{}.Apply(*created)
	m.Next.Username = "robert"
	m.Next.CreatedAt = time.Now()

	got, err := g.BeforeSave(m)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.Username != "bob" || !got.CreatedAt.Equal(created.CreatedAt) {
		t.Fatalf("immutable fields changed: %s %v", got.Username, got.CreatedAt)
	}
}

func TestGuard_RandomFailure(t *testing.T) {
	store := newStubAccountStore()
	rnd := &countingRandom{err: errors.New("no entropy")}
	g := NewGuard(store, rnd, domain.DefaultPasswordPolicy(), zerolog.Nop())

	_, err := g.Save(context.Background(), domain.NewAccount(domain.NewAccountInput{
		Username: "bob", Password: "bobbobbob", Email: "bob@here.com",
	}))
	if !errors.Is(err, domain.ErrRandomSource) {
		t.Fatalf("expected ErrRandomSource, got %v", err)
	}
	if len(store.accounts) != 0 {
		t.Fatalf("account persisted despite failure")
	}
}

func TestGuard_StoreErrorPropagates(t *testing.T) {
	g, store, _ := newTestGuard()
	store.err = errors.New("connection reset")

	_, err := g.Save(context.Background(), domain.NewAccount(domain.NewAccountInput{
		Username: "bob", Password: "bobbobbob", Email: "bob@here.com",
	}))
	if err == nil || err.Error() != "connection reset" {
		t.Fatalf("expected store error unchanged, got %v", err)
	}
}

func TestGuard_Authenticate(t *testing.T) {
	g, _, _ := newTestGuard()
	bob := saveNew(t, g, domain.NewAccountInput{Username: "bob", Password: "bobbobbob", Email: "bob@here.com"})

	if !g.Authenticate(*bob, "bobbobbob") {
		t.Fatalf("valid password rejected")
	}
	for _, candidate := range []string{"wrongpass", "aaaaaaa", "", "bobbobbo", "bobbobbobb"} {
		if g.Authenticate(*bob, candidate) {
			t.Fatalf("candidate %q accepted", candidate)
		}
	}
}

func TestGuard_AuthenticateWithoutSalt(t *testing.T) {
	g, _, _ := newTestGuard()

	legacy := domain.Account{Username: "old", PasswordHash: "plainpass", Roles: domain.DefaultRoles()}
	if g.Authenticate(legacy, "plainpass") {
		t.Fatalf("account without salt must not authenticate")
	}
	if g.Authenticate(domain.Account{}, "") {
		t.Fatalf("empty account must not authenticate")
	}
}

func TestGuard_Roles(t *testing.T) {
	g, _, _ := newTestGuard()

	bob := saveNew(t, g, domain.NewAccountInput{Username: "bob", Password: "bobbobbob", Email: "bob@here.com"})
	if g.EffectiveRole(*bob) != domain.RoleUser || g.IsAdmin(*bob) {
		t.Fatalf("default role: got %v admin=%v", bob.Roles, g.IsAdmin(*bob))
	}

	carl := saveNew(t, g, domain.NewAccountInput{
		Username: "carl", Password: "carlcarlcarl", Email: "carl@here.com",
		Roles: []domain.Role{domain.RoleAdmin},
	})
	if g.EffectiveRole(*carl) != domain.RoleAdmin || !g.IsAdmin(*carl) {
		t.Fatalf("admin role: got %v", carl.Roles)
	}

	mixed := saveNew(t, g, domain.NewAccountInput{
		Username: "dora", Password: "doradoradora", Email: "dora@here.com",
		Roles: []domain.Role{domain.RoleUser, domain.RoleAdmin},
	})
	if g.IsAdmin(*mixed) {
		t.Fatalf("only the first role is effective")
	}
}

func TestGuard_EmptyRolesDefaulted(t *testing.T) {
	g, _, _ := newTestGuard()
	created := saveNew(t, g, domain.NewAccountInput{Username: "bob", Password: "bobbobbob", Email: "bob@here.com"})

	m := domain.AccountPatch{}.Apply(*created)
	m.Next.Roles = nil

	got, err := g.BeforeSave(m)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got.Roles) != 1 || got.Roles[0] != domain.RoleUser {
		t.Fatalf("expected default roles, got %v", got.Roles)
	}
}
