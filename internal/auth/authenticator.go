package auth

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/fayyozbobokulov/workplace-connect-server/internal/model"
	"github.com/fayyozbobokulov/workplace-connect-server/internal/repo"

	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"
)

var (
	ErrTokenMissing    = errors.New("missing authorization token")
	ErrTokenInvalid    = errors.New("invalid or expired token")
	ErrUnknownIdentity = errors.New("token subject is not a known user")
)

// Authenticator resolves the bearer credential presented at connection open
// to a user. A connection is refused before it ever reaches the registry if
// any step fails.
type Authenticator struct {
	secret []byte
	users  repo.UserRepository
	logger *zap.Logger
}

func NewAuthenticator(secret string, users repo.UserRepository, logger *zap.Logger) *Authenticator {
	return &Authenticator{
		secret: []byte(secret),
		users:  users,
		logger: logger,
	}
}

// Authenticate validates the signed token and resolves its subject claim to
// an active user.
func (a *Authenticator) Authenticate(ctx context.Context, tokenString string) (*model.User, error) {
	if tokenString == "" {
		return nil, ErrTokenMissing
	}

	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return a.secret, nil
	})
	if err != nil || !token.Valid {
		a.logger.Debug("token rejected", zap.Error(err))
		return nil, ErrTokenInvalid
	}

	userID := subjectClaim(token)
	if userID == "" {
		return nil, ErrTokenInvalid
	}

	user, err := a.users.FindByUserID(ctx, userID)
	if err != nil {
		if errors.Is(err, repo.ErrUserNotFound) {
			a.logger.Warn("token subject unknown", zap.String("user_id", userID))
			return nil, ErrUnknownIdentity
		}
		return nil, err
	}

	return user, nil
}

func subjectClaim(token *jwt.Token) string {
	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return ""
	}
	if userID, ok := claims["user_id"].(string); ok && userID != "" {
		return userID
	}
	if sub, ok := claims["sub"].(string); ok {
		return sub
	}
	return ""
}

// TokenFromRequest extracts the credential from the Authorization header or,
// for browser WebSocket clients that cannot set headers, from the token
// query parameter.
func TokenFromRequest(r *http.Request) string {
	bearerToken := r.Header.Get("Authorization")
	if strings.HasPrefix(bearerToken, "Bearer ") {
		return strings.TrimPrefix(bearerToken, "Bearer ")
	}

	return r.URL.Query().Get("token")
}
