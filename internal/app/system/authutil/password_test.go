package authutil

import (
	"errors"
	"strings"
	"testing"

	"github.com/dalemusser/stratapage/internal/app/system/apperr"
)

func TestValidatePassword(t *testing.T) {
	tests := []struct {
		name     string
		password string
		email    string
		wantErr  error
	}{
		{"valid", "mySecurePassword", "", nil},
		{"valid with spaces", "my secret password", "ann@example.com", nil},
		{"valid at max", strings.Repeat("a", 72), "", nil},
		{"too short", "abcde", "", ErrPasswordTooShort},
		{"empty", "", "", ErrPasswordTooShort},
		{"too long", strings.Repeat("a", 73), "", ErrPasswordTooLong},
		{"common", "123456", "", ErrPasswordCommon},
		{"common uppercase", "PASSWORD", "", ErrPasswordCommon},
		{"equals email", "Ann@Example.com", "ann@example.com", ErrPasswordIsEmail},
		{"equals local part", "annlee", "annlee@example.com", ErrPasswordIsEmail},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidatePassword(tt.password, tt.email)
			if err != tt.wantErr {
				t.Errorf("ValidatePassword(%q) = %v, want %v", tt.password, err, tt.wantErr)
			}
		})
	}
}

func TestValidatePassword_ErrorsAreAuthKind(t *testing.T) {
	for _, err := range []error{ErrPasswordTooShort, ErrPasswordTooLong, ErrPasswordCommon, ErrPasswordIsEmail} {
		if !errors.Is(err, apperr.ErrAuth) {
			t.Errorf("%v is not an auth error", err)
		}
	}
}

func TestHashAndCheckPassword(t *testing.T) {
	defer UseMinCostForTests()()

	hash, err := HashPassword("correct horse")
	if err != nil {
		t.Fatalf("HashPassword() error = %v", err)
	}
	if hash == "correct horse" || !strings.HasPrefix(hash, "$2") {
		t.Errorf("HashPassword() = %q, want a bcrypt hash", hash)
	}
	if !CheckPassword("correct horse", hash) {
		t.Error("CheckPassword() rejected the right password")
	}
	if CheckPassword("wrong horse", hash) {
		t.Error("CheckPassword() accepted a wrong password")
	}
	if CheckPassword("", "") {
		t.Error("CheckPassword() accepted empty inputs")
	}

	other, _ := HashPassword("correct horse")
	if other == hash {
		t.Error("two hashes of one password should differ by salt")
	}
}
