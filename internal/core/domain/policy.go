package domain

import "unicode/utf8"

const (
	DefaultMinPasswordLength    = 8
	DefaultRehashMinLength      = 6
	MessagePasswordTooShortTmpl = "Password should be at least %d characters"
)

// PasswordPolicy holds the two length thresholds applied to passwords.
//
// MinPasswordLength is enforced by the validator: a password must be longer
// than it. RehashMinLength is enforced by the save hook: a changed password is
// only hashed when longer than it. The deployed values are 8 and 6.
type PasswordPolicy struct {
	MinPasswordLength int
	RehashMinLength   int
}

// DefaultPasswordPolicy returns the deployed thresholds.
func DefaultPasswordPolicy() PasswordPolicy {
	return PasswordPolicy{
		MinPasswordLength: DefaultMinPasswordLength,
		RehashMinLength:   DefaultRehashMinLength,
	}
}

// AcceptsNew reports whether password passes the creation length rule.
func (p PasswordPolicy) AcceptsNew(password string) bool {
	return utf8.RuneCountInString(password) > p.MinPasswordLength
}

// Rehashes reports whether a changed password is long enough to be hashed.
func (p PasswordPolicy) Rehashes(password string) bool {
	return utf8.RuneCountInString(password) > p.RehashMinLength
}

// Consistent reports whether both thresholds agree.
func (p PasswordPolicy) Consistent() bool {
	return p.MinPasswordLength == p.RehashMinLength
}
