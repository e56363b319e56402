package auth

import (
	"context"
	"errors"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/fayyozbobokulov/workplace-connect-server/internal/model"
	"github.com/fayyozbobokulov/workplace-connect-server/internal/repo"

	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"
)

const testSecret = "test-secret-key"

type fakeUsers struct {
	users map[string]*model.User
}

func (f *fakeUsers) FindByUserID(ctx context.Context, userID string) (*model.User, error) {
	if user, ok := f.users[userID]; ok {
		return user, nil
	}
	return nil, repo.ErrUserNotFound
}

func mintToken(t *testing.T, secret, userID string, expiresIn time.Duration) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"user_id": userID,
		"exp":     time.Now().Add(expiresIn).Unix(),
	})
	signed, err := token.SignedString([]byte(secret))
	if err != nil {
		t.Fatalf("failed to sign token: %v", err)
	}
	return signed
}

func newTestAuthenticator() *Authenticator {
	users := &fakeUsers{users: map[string]*model.User{
		"u1": {UserID: "u1", Username: "alice", IsActive: true},
	}}
	return NewAuthenticator(testSecret, users, zap.NewNop())
}

func TestAuthenticate_ValidToken(t *testing.T) {
	a := newTestAuthenticator()
	token := mintToken(t, testSecret, "u1", time.Hour)

	user, err := a.Authenticate(context.Background(), token)
	if err != nil {
		t.Fatalf("Authenticate() error = %v", err)
	}
	if user.UserID != "u1" {
		t.Errorf("user.UserID = %q, want %q", user.UserID, "u1")
	}
}

func TestAuthenticate_Failures(t *testing.T) {
	a := newTestAuthenticator()

	tests := []struct {
		name    string
		token   string
		wantErr error
	}{
		{"missing token", "", ErrTokenMissing},
		{"garbage token", "not-a-jwt", ErrTokenInvalid},
		{"wrong secret", mintToken(t, "other-secret", "u1", time.Hour), ErrTokenInvalid},
		{"expired token", mintToken(t, testSecret, "u1", -time.Minute), ErrTokenInvalid},
		{"unknown identity", mintToken(t, testSecret, "ghost", time.Hour), ErrUnknownIdentity},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := a.Authenticate(context.Background(), tt.token)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("Authenticate() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestAuthenticate_RejectsUnexpectedSigningMethod(t *testing.T) {
	a := newTestAuthenticator()

	// alg: none tokens must never validate against an HMAC secret.
	token := jwt.NewWithClaims(jwt.SigningMethodNone, jwt.MapClaims{
		"user_id": "u1",
		"exp":     time.Now().Add(time.Hour).Unix(),
	})
	signed, err := token.SignedString(jwt.UnsafeAllowNoneSignatureType)
	if err != nil {
		t.Fatalf("failed to sign token: %v", err)
	}

	if _, err := a.Authenticate(context.Background(), signed); !errors.Is(err, ErrTokenInvalid) {
		t.Errorf("Authenticate() error = %v, want %v", err, ErrTokenInvalid)
	}
}

func TestTokenFromRequest(t *testing.T) {
	r := httptest.NewRequest("GET", "/ws", nil)
	r.Header.Set("Authorization", "Bearer abc123")
	if got := TokenFromRequest(r); got != "abc123" {
		t.Errorf("TokenFromRequest() = %q, want %q", got, "abc123")
	}

	r = httptest.NewRequest("GET", "/ws?token=query456", nil)
	if got := TokenFromRequest(r); got != "query456" {
		t.Errorf("TokenFromRequest() = %q, want %q", got, "query456")
	}

	r = httptest.NewRequest("GET", "/ws", nil)
	if got := TokenFromRequest(r); got != "" {
		t.Errorf("TokenFromRequest() = %q, want empty", got)
	}
}
