package auth

import (
	"errors"
	"strings"
	"testing"
)

func TestHashAndVerifyPassword(t *testing.T) {
	hash, err := HashPassword("correct horse battery staple")
	if err != nil {
		t.Fatalf("HashPassword() error = %v", err)
	}
	if !strings.HasPrefix(hash, "$argon2id$v=19$") {
		t.Errorf("hash format = %q, want argon2id PHC string", hash)
	}

	if !VerifyPassword("correct horse battery staple", hash) {
		t.Error("VerifyPassword() = false for correct password, want true")
	}
	if VerifyPassword("wrong password", hash) {
		t.Error("VerifyPassword() = true for wrong password, want false")
	}
}

func TestHashPasswordUniqueSalts(t *testing.T) {
	h1, err := HashPassword("same-input")
	if err != nil {
		t.Fatalf("HashPassword() error = %v", err)
	}
	h2, err := HashPassword("same-input")
	if err != nil {
		t.Fatalf("HashPassword() error = %v", err)
	}
	if h1 == h2 {
		t.Error("two hashes of the same password are identical, want unique salts")
	}
}

func TestVerifyPasswordMalformedHash(t *testing.T) {
	malformed := []string{
		"",
		"not-a-hash",
		"$argon2id$v=19$m=65536,t=1,p=4$only-one-part",
		"$bcrypt$whatever",
	}
	for _, h := range malformed {
		if VerifyPassword("anything", h) {
			t.Errorf("VerifyPassword(%q) = true, want false", h)
		}
	}
}

func TestValidatePassword(t *testing.T) {
	tests := []struct {
		name     string
		password string
		wantErr  error
	}{
		{"empty", "", ErrPasswordTooShort},
		{"too short", "abc12", ErrPasswordTooShort},
		{"minimum length", "abc123", nil},
		{"long", "a much longer passphrase", nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidatePassword(tt.password)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("ValidatePassword(%q) error = %v, want %v", tt.password, err, tt.wantErr)
			}
		})
	}
}
