package utils

import (
	"strings"
	"testing"
)

const validName = "Johnathan Maxwell Petersson" // 27 chars, inside 20-60

func TestValidateName(t *testing.T) {
	cases := []struct {
		name string
		in   string
		ok   bool
	}{
		{"valid", validName, true},
		{"exactly 20", strings.Repeat("a", 20), true},
		{"exactly 60", strings.Repeat("a", 60), true},
		{"too short", "Short Name", false},
		{"19 chars", strings.Repeat("a", 19), false},
		{"61 chars", strings.Repeat("a", 61), false},
		{"empty", "", false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := ValidateName(tc.in)
			if tc.ok && err != nil {
				t.Errorf("ValidateName(%q) = %v, want nil", tc.in, err)
			}
			if !tc.ok && err == nil {
				t.Errorf("ValidateName(%q) = nil, want error", tc.in)
			}
		})
	}
}

func TestValidateAddress(t *testing.T) {
	if err := ValidateAddress(""); err != nil {
		t.Errorf("empty address should pass: %v", err)
	}
	if err := ValidateAddress(strings.Repeat("x", 400)); err != nil {
		t.Errorf("400-char address should pass: %v", err)
	}
	if err := ValidateAddress(strings.Repeat("x", 401)); err == nil {
		t.Error("401-char address should fail")
	}
}

func TestValidateEmail(t *testing.T) {
	for _, good := range []string{"a@b.com", "user.name@example.co.uk", "x+y@z.io"} {
		if err := ValidateEmail(good); err != nil {
			t.Errorf("ValidateEmail(%q) = %v, want nil", good, err)
		}
	}
	for _, bad := range []string{"", "plain", "a@b", "@b.com", "a b@c.com", "a@b .com"} {
		if err := ValidateEmail(bad); err == nil {
			t.Errorf("ValidateEmail(%q) = nil, want error", bad)
		}
	}
}

func TestValidatePassword(t *testing.T) {
	cases := []struct {
		name string
		in   string
		ok   bool
	}{
		{"valid", "Abc12345!", true},
		{"valid at 8", "Abcdef1!", true},
		{"valid at 16", "Abcdefghijk1234!", true},
		{"too short", "Ab1!", false},
		{"too long", "Abcdefghijk12345!", false},
		{"no uppercase", "abc12345!", false},
		{"no special", "Abc123456", false},
		{"special outside set", "Abc12345?", false},
		{"empty", "", false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := ValidatePassword(tc.in)
			if tc.ok && err != nil {
				t.Errorf("ValidatePassword(%q) = %v, want nil", tc.in, err)
			}
			if !tc.ok && err == nil {
				t.Errorf("ValidatePassword(%q) = nil, want error", tc.in)
			}
		})
	}
}

func TestValidateAccountFirstFailureWins(t *testing.T) {
	if err := ValidateAccount("short", "bad", "", "weak"); err != ErrNameLength {
		t.Errorf("got %v, want ErrNameLength", err)
	}
	if err := ValidateAccount(validName, "bad-email", "", "Abc12345!"); err != ErrEmailFormat {
		t.Errorf("got %v, want ErrEmailFormat", err)
	}
	if err := ValidateAccount(validName, "a@b.com", "", "weak"); err != ErrPasswordPattern {
		t.Errorf("got %v, want ErrPasswordPattern", err)
	}
	if err := ValidateAccount(validName, "a@b.com", "", "Abc12345!"); err != nil {
		t.Errorf("valid account rejected: %v", err)
	}
}

func TestNormalizeEmail(t *testing.T) {
	if got := NormalizeEmail("  USER@Example.COM "); got != "user@example.com" {
		t.Errorf("NormalizeEmail = %q", got)
	}
}
