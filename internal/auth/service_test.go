package auth

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/vishnuvardhan833199/chattify/internal/store/sqlite"
)

func newTestService(t *testing.T) *Service {
	t.Helper()

	st, err := sqlite.New(":memory:")
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { st.Close() })

	return NewService(st, &JWTConfig{
		Secret:   []byte("test-secret"),
		Issuer:   "chattify",
		Audience: "chattify-client",
		TTL:      time.Hour,
	})
}

func TestRegisterAndLogin(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	user, token, err := svc.Register(ctx, "Alice@Example.COM", "Alice", "password123")
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	if user.Email != "alice@example.com" {
		t.Fatalf("email not normalized: %q", user.Email)
	}
	if token == "" {
		t.Fatalf("expected a token")
	}
	if user.PasswordHash == "password123" {
		t.Fatalf("password stored in plain text")
	}

	logged, loginToken, err := svc.Login(ctx, "alice@example.com", "password123")
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if logged.ID != user.ID || loginToken == "" {
		t.Fatalf("unexpected login result: %+v", logged)
	}

	claims, err := svc.ValidateToken(loginToken)
	if err != nil {
		t.Fatalf("validate token: %v", err)
	}
	if claims.UserID != user.ID || claims.Email != user.Email {
		t.Fatalf("unexpected claims: %+v", claims)
	}
}

func TestRegisterValidation(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	cases := []struct {
		name     string
		email    string
		fullName string
		password string
		want     error
	}{
		{"missing at", "not-an-email", "Alice", "password123", ErrInvalidEmail},
		{"empty local part", "@example.com", "Alice", "password123", ErrInvalidEmail},
		{"empty name", "alice@example.com", "   ", "password123", ErrInvalidName},
		{"short password", "alice@example.com", "Alice", "12345", ErrInvalidPassword},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, _, err := svc.Register(ctx, tc.email, tc.fullName, tc.password)
			if !errors.Is(err, tc.want) {
				t.Fatalf("got %v, want %v", err, tc.want)
			}
		})
	}
}

func TestRegisterDuplicateEmail(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	if _, _, err := svc.Register(ctx, "alice@example.com", "Alice", "password123"); err != nil {
		t.Fatalf("register: %v", err)
	}

	_, _, err := svc.Register(ctx, "ALICE@example.com", "Alice Two", "password456")
	if !errors.Is(err, ErrUserExists) {
		t.Fatalf("got %v, want ErrUserExists", err)
	}
}

func TestLoginRejectsBadCredentials(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	if _, _, err := svc.Register(ctx, "alice@example.com", "Alice", "password123"); err != nil {
		t.Fatalf("register: %v", err)
	}

	if _, _, err := svc.Login(ctx, "alice@example.com", "wrong"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("wrong password: got %v", err)
	}
	if _, _, err := svc.Login(ctx, "nobody@example.com", "password123"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("unknown user: got %v", err)
	}
}

func TestValidateTokenRejectsTampering(t *testing.T) {
	svc := newTestService(t)
	other := NewService(nil, &JWTConfig{
		Secret:   []byte("different-secret"),
		Issuer:   "chattify",
		Audience: "chattify-client",
		TTL:      time.Hour,
	})

	_, token, err := svc.Register(context.Background(), "alice@example.com", "Alice", "password123")
	if err != nil {
		t.Fatalf("register: %v", err)
	}

	if _, err := other.ValidateToken(token); err == nil {
		t.Fatalf("token signed with another secret must not validate")
	}
	if _, err := svc.ValidateToken(token + "x"); err == nil {
		t.Fatalf("mangled token must not validate")
	}
	if _, err := svc.ValidateToken(""); err == nil {
		t.Fatalf("empty token must not validate")
	}
}
