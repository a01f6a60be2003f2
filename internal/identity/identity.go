// Package identity verifies bearer tokens and manages user accounts.
package identity

import (
	"context"
	"crypto/subtle"

	"github.com/starford/daivaya/internal/apperr"
)

// User is an authenticated account.
type User struct {
	ID    string `json:"id"`
	Email string `json:"email,omitempty"`
}

// Session is the result of a password sign-in.
type Session struct {
	AccessToken  string `json:"access_token"`
	TokenType    string `json:"token_type"`
	ExpiresIn    int    `json:"expires_in"`
	RefreshToken string `json:"refresh_token"`
	User         User   `json:"user"`
}

// Provider authenticates requests and owns the account lifecycle.
type Provider interface {
	Verify(ctx context.Context, token string) (User, error)
	SignUp(ctx context.Context, email, password string) (User, error)
	SignIn(ctx context.Context, email, password string) (Session, error)
	ResetPassword(ctx context.Context, email, redirectTo string) error
}

// LocalUser is the account every request runs as without a hosted provider.
var LocalUser = User{ID: "local"}

// Static authenticates against a single shared token, or lets every request
// through as LocalUser when the token is empty. It has no accounts.
type Static struct {
	token string
}

// NewStatic returns a Static provider. An empty token disables checks.
func NewStatic(token string) *Static { return &Static{token: token} }

func (s *Static) Verify(_ context.Context, token string) (User, error) {
	if s.token == "" {
		return LocalUser, nil
	}
	if subtle.ConstantTimeCompare([]byte(token), []byte(s.token)) != 1 {
		return User{}, apperr.New(apperr.ErrUnauthorized, "unauthorized")
	}
	return LocalUser, nil
}

func (s *Static) SignUp(context.Context, string, string) (User, error) {
	return User{}, apperr.New(apperr.ErrUnsupported, "accounts are not enabled")
}

func (s *Static) SignIn(context.Context, string, string) (Session, error) {
	return Session{}, apperr.New(apperr.ErrUnsupported, "accounts are not enabled")
}

func (s *Static) ResetPassword(context.Context, string, string) error {
	return apperr.New(apperr.ErrUnsupported, "accounts are not enabled")
}

type ctxKey struct{}

// WithUser returns a copy of ctx carrying u.
func WithUser(ctx context.Context, u User) context.Context {
	return context.WithValue(ctx, ctxKey{}, u)
}

// FromContext returns the user stored by WithUser.
func FromContext(ctx context.Context) (User, bool) {
	u, ok := ctx.Value(ctxKey{}).(User)
	return u, ok
}
