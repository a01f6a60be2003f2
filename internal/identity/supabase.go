package identity

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/starford/daivaya/internal/apperr"
)

// Supabase talks to a Supabase GoTrue auth server.
type Supabase struct {
	http *resty.Client
}

// NewSupabase returns a client for the project at baseURL using the
// project's anon key.
func NewSupabase(baseURL, key string, timeout time.Duration) *Supabase {
	client := resty.New().
		SetBaseURL(strings.TrimRight(baseURL, "/") + "/auth/v1").
		SetTimeout(timeout).
		SetHeader("apikey", key).
		SetHeader("Content-Type", "application/json").
		SetHeader("Accept", "application/json")
	return &Supabase{http: client}
}

type credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// gotrueError covers the error shapes GoTrue has used across versions.
type gotrueError struct {
	Msg              string `json:"msg"`
	Message          string `json:"message"`
	Error            string `json:"error"`
	ErrorDescription string `json:"error_description"`
}

func (e *gotrueError) text() string {
	for _, s := range []string{e.Msg, e.Message, e.ErrorDescription, e.Error} {
		if s != "" {
			return s
		}
	}
	return ""
}

func upstream(op string, err error) error {
	return apperr.Wrap(apperr.ErrUpstream, fmt.Errorf("identity: %s: %w", op, err), "authentication service unavailable")
}

func (s *Supabase) Verify(ctx context.Context, token string) (User, error) {
	if token == "" {
		return User{}, apperr.New(apperr.ErrUnauthorized, "unauthorized")
	}
	var u User
	resp, err := s.http.R().
		SetContext(ctx).
		SetAuthToken(token).
		SetResult(&u).
		Get("/user")
	if err != nil {
		return User{}, upstream("verify", err)
	}
	switch {
	case resp.StatusCode() == http.StatusUnauthorized || resp.StatusCode() == http.StatusForbidden:
		return User{}, apperr.New(apperr.ErrUnauthorized, "invalid or expired session")
	case resp.IsError():
		return User{}, upstream("verify", fmt.Errorf("status %d", resp.StatusCode()))
	case u.ID == "":
		return User{}, apperr.New(apperr.ErrUnauthorized, "invalid or expired session")
	}
	return u, nil
}

func (s *Supabase) SignUp(ctx context.Context, email, password string) (User, error) {
	// GoTrue answers with a bare user when confirmation is required and
	// with a session otherwise.
	var out struct {
		User
		Nested *User `json:"user"`
	}
	var gerr gotrueError
	resp, err := s.http.R().
		SetContext(ctx).
		SetBody(credentials{Email: email, Password: password}).
		SetResult(&out).
		SetError(&gerr).
		Post("/signup")
	if err != nil {
		return User{}, upstream("signup", err)
	}
	if resp.IsError() {
		if resp.StatusCode() >= 500 {
			return User{}, upstream("signup", fmt.Errorf("status %d", resp.StatusCode()))
		}
		msg := gerr.text()
		if msg == "" {
			msg = "registration failed"
		}
		if resp.StatusCode() == http.StatusUnprocessableEntity && strings.Contains(strings.ToLower(msg), "already") {
			return User{}, apperr.New(apperr.ErrConflict, "%s", msg)
		}
		return User{}, apperr.New(apperr.ErrValidation, "%s", msg)
	}
	u := out.User
	if out.Nested != nil {
		u = *out.Nested
	}
	if u.ID == "" {
		return User{}, upstream("signup", fmt.Errorf("response carried no user id"))
	}
	return u, nil
}

func (s *Supabase) SignIn(ctx context.Context, email, password string) (Session, error) {
	var sess Session
	resp, err := s.http.R().
		SetContext(ctx).
		SetQueryParam("grant_type", "password").
		SetBody(credentials{Email: email, Password: password}).
		SetResult(&sess).
		Post("/token")
	if err != nil {
		return Session{}, upstream("signin", err)
	}
	if resp.IsError() {
		if resp.StatusCode() >= 500 {
			return Session{}, upstream("signin", fmt.Errorf("status %d", resp.StatusCode()))
		}
		return Session{}, apperr.New(apperr.ErrUnauthorized, "invalid login credentials")
	}
	return sess, nil
}

func (s *Supabase) ResetPassword(ctx context.Context, email, redirectTo string) error {
	req := s.http.R().
		SetContext(ctx).
		SetBody(map[string]string{"email": email})
	if redirectTo != "" {
		req.SetQueryParam("redirect_to", redirectTo)
	}
	resp, err := req.Post("/recover")
	if err != nil {
		return upstream("recover", err)
	}
	if resp.IsError() {
		if resp.StatusCode() >= 500 {
			return upstream("recover", fmt.Errorf("status %d", resp.StatusCode()))
		}
		return apperr.New(apperr.ErrValidation, "could not send reset email")
	}
	return nil
}
