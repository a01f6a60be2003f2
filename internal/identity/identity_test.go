package identity

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/starford/daivaya/internal/apperr"
)

func TestStaticDisabled(t *testing.T) {
	u, err := NewStatic("").Verify(context.Background(), "")
	if err != nil || u != LocalUser {
		t.Fatalf("Verify = %+v, %v", u, err)
	}
}

func TestStaticToken(t *testing.T) {
	p := NewStatic("s3cret")
	if _, err := p.Verify(context.Background(), "s3cret"); err != nil {
		t.Fatalf("Verify: %v", err)
	}
	if _, err := p.Verify(context.Background(), "guess"); !errors.Is(err, apperr.ErrUnauthorized) {
		t.Fatalf("err = %v, want ErrUnauthorized", err)
	}
	if _, err := p.SignIn(context.Background(), "a@b.c", "pw"); !errors.Is(err, apperr.ErrUnsupported) {
		t.Fatalf("SignIn err = %v, want ErrUnsupported", err)
	}
}

// fakeGoTrue serves the handful of GoTrue endpoints the client uses.
func fakeGoTrue(t *testing.T) *Supabase {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("GET /auth/v1/user", func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("apikey") != "anon" {
			t.Errorf("missing apikey header")
		}
		if r.Header.Get("Authorization") != "Bearer good-token" {
			w.WriteHeader(http.StatusUnauthorized)
			w.Write([]byte(`{"msg":"invalid JWT"}`))
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"id":"u-1","email":"nimal@example.com"}`))
	})
	mux.HandleFunc("POST /auth/v1/signup", func(w http.ResponseWriter, r *http.Request) {
		var c credentials
		json.NewDecoder(r.Body).Decode(&c)
		w.Header().Set("Content-Type", "application/json")
		switch c.Email {
		case "taken@example.com":
			w.WriteHeader(http.StatusUnprocessableEntity)
			w.Write([]byte(`{"code":422,"msg":"User already registered"}`))
		case "session@example.com":
			w.Write([]byte(`{"access_token":"t","user":{"id":"u-3","email":"session@example.com"}}`))
		default:
			w.Write([]byte(`{"id":"u-2","email":"` + c.Email + `"}`))
		}
	})
	mux.HandleFunc("POST /auth/v1/token", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("grant_type") != "password" {
			t.Errorf("grant_type = %q", r.URL.Query().Get("grant_type"))
		}
		var c credentials
		json.NewDecoder(r.Body).Decode(&c)
		w.Header().Set("Content-Type", "application/json")
		if c.Password != "correct horse" {
			w.WriteHeader(http.StatusBadRequest)
			w.Write([]byte(`{"error":"invalid_grant","error_description":"Invalid login credentials"}`))
			return
		}
		w.Write([]byte(`{"access_token":"good-token","token_type":"bearer","expires_in":3600,"refresh_token":"r","user":{"id":"u-1","email":"` + c.Email + `"}}`))
	})
	mux.HandleFunc("POST /auth/v1/recover", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("redirect_to") != "https://daivaya.lk/reset" {
			t.Errorf("redirect_to = %q", r.URL.Query().Get("redirect_to"))
		}
		w.Write([]byte(`{}`))
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return NewSupabase(srv.URL, "anon", 2*time.Second)
}

func TestSupabaseVerify(t *testing.T) {
	s := fakeGoTrue(t)
	u, err := s.Verify(context.Background(), "good-token")
	if err != nil {
		t.Fatalf("Verify: %v", err)
	}
	if u.ID != "u-1" || u.Email != "nimal@example.com" {
		t.Errorf("user = %+v", u)
	}
	if _, err := s.Verify(context.Background(), "stale"); !errors.Is(err, apperr.ErrUnauthorized) {
		t.Errorf("stale token err = %v", err)
	}
	if _, err := s.Verify(context.Background(), ""); !errors.Is(err, apperr.ErrUnauthorized) {
		t.Errorf("empty token err = %v", err)
	}
}

func TestSupabaseSignUp(t *testing.T) {
	s := fakeGoTrue(t)
	u, err := s.SignUp(context.Background(), "new@example.com", "secret1")
	if err != nil || u.ID != "u-2" {
		t.Fatalf("SignUp = %+v, %v", u, err)
	}
	u, err = s.SignUp(context.Background(), "session@example.com", "secret1")
	if err != nil || u.ID != "u-3" {
		t.Fatalf("SignUp with session = %+v, %v", u, err)
	}
	_, err = s.SignUp(context.Background(), "taken@example.com", "secret1")
	if !errors.Is(err, apperr.ErrConflict) {
		t.Fatalf("duplicate err = %v, want ErrConflict", err)
	}
	if msg := apperr.Message(err, ""); msg != "User already registered" {
		t.Errorf("message = %q", msg)
	}
}

func TestSupabaseSignIn(t *testing.T) {
	s := fakeGoTrue(t)
	sess, err := s.SignIn(context.Background(), "nimal@example.com", "correct horse")
	if err != nil {
		t.Fatalf("SignIn: %v", err)
	}
	if sess.AccessToken != "good-token" || sess.User.ID != "u-1" || sess.ExpiresIn != 3600 {
		t.Errorf("session = %+v", sess)
	}
	if _, err := s.SignIn(context.Background(), "nimal@example.com", "wrong"); !errors.Is(err, apperr.ErrUnauthorized) {
		t.Errorf("bad password err = %v", err)
	}
}

func TestSupabaseResetPassword(t *testing.T) {
	s := fakeGoTrue(t)
	if err := s.ResetPassword(context.Background(), "nimal@example.com", "https://daivaya.lk/reset"); err != nil {
		t.Fatalf("ResetPassword: %v", err)
	}
}

func TestSupabaseUnreachable(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	srv.Close()
	s := NewSupabase(srv.URL, "anon", time.Second)
	if _, err := s.Verify(context.Background(), "x"); !errors.Is(err, apperr.ErrUpstream) {
		t.Fatalf("err = %v, want ErrUpstream", err)
	}
}
