package auth

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/atea-seattle/memberd/internal/domain"
)

type fakeUserStore struct {
	users map[string]*domain.User
}

func (f *fakeUserStore) GetByEmail(_ context.Context, email string) (*domain.User, error) {
	u, ok := f.users[email]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	return u, nil
}

func (f *fakeUserStore) GetByID(_ context.Context, id uuid.UUID) (*domain.User, error) {
	for _, u := range f.users {
		if u.ID == id {
			return u, nil
		}
	}
	return nil, domain.ErrUserNotFound
}

func newTestUser(t *testing.T, password string, status domain.UserStatus) *domain.User {
	t.Helper()
	hash, err := HashPassword(password)
	if err != nil {
		t.Fatalf("HashPassword() error = %v", err)
	}
	return &domain.User{
		ID:           uuid.New(),
		Name:         "Jordan Lee",
		Email:        "jordan@example.com",
		PasswordHash: &hash,
		Role:         domain.RoleAdmin,
		Status:       status,
	}
}

func newTestSessionService(users UserStore) *SessionService {
	return NewSessionService(SessionConfig{
		JWTSecret:      []byte("test-secret"),
		Issuer:         "memberd-test",
		AccessTokenTTL: time.Hour,
	}, users)
}

func TestLoginSuccess(t *testing.T) {
	user := newTestUser(t, "secret123", domain.UserActive)
	svc := newTestSessionService(&fakeUserStore{users: map[string]*domain.User{user.Email: user}})

	token, got, err := svc.Login(context.Background(), user.Email, "secret123")
	if err != nil {
		t.Fatalf("Login() error = %v", err)
	}
	if got.ID != user.ID {
		t.Errorf("Login() user ID = %v, want %v", got.ID, user.ID)
	}

	claims, err := svc.ValidateToken(token)
	if err != nil {
		t.Fatalf("ValidateToken() error = %v", err)
	}
	if claims.Subject != user.ID.String() {
		t.Errorf("claims.Subject = %q, want %q", claims.Subject, user.ID.String())
	}
	if claims.Email != user.Email {
		t.Errorf("claims.Email = %q, want %q", claims.Email, user.Email)
	}
	if claims.Role != domain.RoleAdmin {
		t.Errorf("claims.Role = %q, want %q", claims.Role, domain.RoleAdmin)
	}
}

func TestLoginFailures(t *testing.T) {
	user := newTestUser(t, "secret123", domain.UserActive)
	disabled := newTestUser(t, "secret123", domain.UserDisabled)
	disabled.Email = "disabled@example.com"
	noPassword := &domain.User{ID: uuid.New(), Email: "pending@example.com", Status: domain.UserPending}
	store := &fakeUserStore{users: map[string]*domain.User{
		user.Email:       user,
		disabled.Email:   disabled,
		noPassword.Email: noPassword,
	}}
	svc := newTestSessionService(store)

	tests := []struct {
		name     string
		email    string
		password string
		wantErr  error
	}{
		{"unknown email", "nobody@example.com", "secret123", domain.ErrInvalidCredentials},
		{"wrong password", user.Email, "nope", domain.ErrInvalidCredentials},
		{"no password set", noPassword.Email, "secret123", domain.ErrInvalidCredentials},
		{"disabled account", disabled.Email, "secret123", domain.ErrUserDisabled},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := svc.Login(context.Background(), tt.email, tt.password)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("Login() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestValidateTokenRejectsTampered(t *testing.T) {
	user := newTestUser(t, "secret123", domain.UserActive)
	svc := newTestSessionService(&fakeUserStore{users: map[string]*domain.User{user.Email: user}})

	token, err := svc.IssueToken(user)
	if err != nil {
		t.Fatalf("IssueToken() error = %v", err)
	}

	other := NewSessionService(SessionConfig{JWTSecret: []byte("other-secret"), Issuer: "memberd-test"}, nil)
	if _, err := other.ValidateToken(token); !errors.Is(err, domain.ErrInvalidToken) {
		t.Errorf("ValidateToken() with wrong secret error = %v, want %v", err, domain.ErrInvalidToken)
	}

	if _, err := svc.ValidateToken(token + "x"); !errors.Is(err, domain.ErrInvalidToken) {
		t.Errorf("ValidateToken() with tampered token error = %v, want %v", err, domain.ErrInvalidToken)
	}

	if _, err := svc.ValidateToken(""); !errors.Is(err, domain.ErrInvalidToken) {
		t.Errorf("ValidateToken(\"\") error = %v, want %v", err, domain.ErrInvalidToken)
	}
}

func TestValidateTokenExpired(t *testing.T) {
	user := newTestUser(t, "secret123", domain.UserActive)
	svc := NewSessionService(SessionConfig{
		JWTSecret:      []byte("test-secret"),
		Issuer:         "memberd-test",
		AccessTokenTTL: -time.Minute,
	}, nil)

	token, err := svc.IssueToken(user)
	if err != nil {
		t.Fatalf("IssueToken() error = %v", err)
	}
	if _, err := svc.ValidateToken(token); !errors.Is(err, domain.ErrInvalidToken) {
		t.Errorf("ValidateToken() expired token error = %v, want %v", err, domain.ErrInvalidToken)
	}
}
