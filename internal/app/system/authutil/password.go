// internal/app/system/authutil/password.go
//
// Package authutil holds password rules and bcrypt hashing for sign-up and
// sign-in.
package authutil

import (
	"strings"

	"github.com/dalemusser/stratapage/internal/app/system/apperr"
	"golang.org/x/crypto/bcrypt"
)

// Password rules
const (
	MinPasswordLength = 6
	MaxPasswordLength = 72 // bcrypt ignores bytes past 72
	BcryptCost        = 12
)

// Password validation errors. All are apperr.ErrAuth.
var (
	ErrPasswordTooShort = apperr.Auth("Password should be at least 6 characters.")
	ErrPasswordTooLong  = apperr.Auth("Password must be at most 72 characters.")
	ErrPasswordCommon   = apperr.Auth("This password is too common. Please choose a different one.")
	ErrPasswordIsEmail  = apperr.Auth("Password must not be your email address.")
)

var commonPasswords = func() map[string]bool {
	m := map[string]bool{}
	for _, p := range strings.Fields(`
		123456 1234567 12345678 123456789 password password1 qwerty qwerty123
		abc123 abcdef 111111 000000 123123 654321 iloveyou monkey dragon
		letmein welcome login admin sunshine football baseball
	`) {
		m[p] = true
	}
	return m
}()

// hashCost is BcryptCost outside tests.
var hashCost = BcryptCost

// PasswordRules describes the rules for the sign-up form.
func PasswordRules() string {
	return "At least 6 characters. Common passwords like \"123456\" are not allowed."
}

// ValidatePassword checks password against the length and blocklist rules
// and against the account's email, if given.
func ValidatePassword(password, email string) error {
	switch {
	case len(password) < MinPasswordLength:
		return ErrPasswordTooShort
	case len(password) > MaxPasswordLength:
		return ErrPasswordTooLong
	case commonPasswords[strings.ToLower(password)]:
		return ErrPasswordCommon
	}
	if email != "" {
		e := strings.ToLower(strings.TrimSpace(email))
		local, _, _ := strings.Cut(e, "@")
		if p := strings.ToLower(password); p == e || p == local {
			return ErrPasswordIsEmail
		}
	}
	return nil
}

// HashPassword returns the bcrypt hash of password.
func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), hashCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// CheckPassword reports whether password matches hash.
func CheckPassword(password, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}

// UseMinCostForTests drops the bcrypt cost so tests that hash run fast.
// It returns a func restoring the previous cost.
func UseMinCostForTests() func() {
	prev := hashCost
	hashCost = bcrypt.MinCost
	return func() { hashCost = prev }
}
