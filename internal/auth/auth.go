// Package auth issues and verifies the bearer tokens that identify users.
package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/ahmetcoskunkizilkaya/travel-assistant/internal/models"
	"github.com/ahmetcoskunkizilkaya/travel-assistant/internal/store"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

var (
	ErrMissingToken    = errors.New("access token required")
	ErrInvalidToken    = errors.New("token is invalid or expired")
	ErrSubjectNotFound = errors.New("user associated with this token no longer exists")
)

// Claims are the JWT claims carried by every token. Subject holds the user id.
type Claims struct {
	jwt.RegisteredClaims
	Username string `json:"username"`
}

// Identity is the authenticated caller attached to a request.
type Identity struct {
	ID       uuid.UUID
	Username string
	Email    string
}

// UserLookup resolves a token subject to a stored user.
type UserLookup interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.User, error)
}

// Authority signs tokens with a shared HS256 secret and checks that their
// subject still exists.
type Authority struct {
	secret []byte
	expiry time.Duration
	users  UserLookup
	now    func() time.Time
}

func NewAuthority(secret string, expiry time.Duration, users UserLookup) *Authority {
	return &Authority{
		secret: []byte(secret),
		expiry: expiry,
		users:  users,
		now:    time.Now,
	}
}

// Issue returns a signed token for user.
func (a *Authority) Issue(user *models.User) (string, error) {
	now := a.now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.ID.String(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(a.expiry)),
		},
		Username: user.Username,
	})

	signed, err := token.SignedString(a.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

// Keyfunc returns the signing secret after checking the token uses HS256.
func (a *Authority) Keyfunc(t *jwt.Token) (interface{}, error) {
	if t.Method != jwt.SigningMethodHS256 {
		return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
	}
	return a.secret, nil
}

// Parse checks signature, algorithm and expiry. It does not consult the store.
func (a *Authority) Parse(tokenString string) (*Claims, error) {
	if tokenString == "" {
		return nil, ErrMissingToken
	}

	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, a.Keyfunc,
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(a.now),
		jwt.WithExpirationRequired(),
	)
	if err != nil || !token.Valid {
		return nil, ErrInvalidToken
	}
	return claims, nil
}

// Resolve loads the user named by the claims' subject.
func (a *Authority) Resolve(ctx context.Context, claims *Claims) (*Identity, error) {
	id, err := uuid.Parse(claims.Subject)
	if err != nil {
		return nil, ErrInvalidToken
	}

	user, err := a.users.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrSubjectNotFound
		}
		return nil, fmt.Errorf("resolve token subject: %w", err)
	}

	return &Identity{ID: user.ID, Username: user.Username, Email: user.Email}, nil
}

// Verify parses the token and resolves its subject.
func (a *Authority) Verify(ctx context.Context, tokenString string) (*Identity, error) {
	claims, err := a.Parse(tokenString)
	if err != nil {
		return nil, err
	}
	return a.Resolve(ctx, claims)
}

// BearerToken extracts the token from an "Authorization: Bearer <token>" header value.
func BearerToken(header string) string {
	scheme, token, ok := strings.Cut(strings.TrimSpace(header), " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return ""
	}
	return strings.TrimSpace(token)
}
