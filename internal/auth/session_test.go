package auth

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

func meServer(t *testing.T) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != mePath {
			http.NotFound(w, r)
			return
		}
		user, pass, ok := r.BasicAuth()
		if !ok || user != "ann" || pass != "abcd efgh" {
			w.WriteHeader(http.StatusUnauthorized)
			_, _ = w.Write([]byte(`{"code":"invalid_username"}`))
			return
		}
		_, _ = w.Write([]byte(`{"id":3,"name":"Ann Example","slug":"ann"}`))
	}))
}

func TestLoginStoresCredentials(t *testing.T) {
	srv := meServer(t)
	defer srv.Close()

	s := NewSession(srv.URL + "/")
	if err := s.Login(context.Background(), "ann", "abcd efgh"); err != nil {
		t.Fatalf("Login error: %v", err)
	}
	if !s.IsLoggedIn() || s.DisplayName() != "Ann Example" {
		t.Fatalf("logged in %v name %q", s.IsLoggedIn(), s.DisplayName())
	}

	req, _ := http.NewRequest(http.MethodGet, srv.URL, nil)
	s.Apply(req)
	if user, _, ok := req.BasicAuth(); !ok || user != "ann" {
		t.Fatal("Apply should set basic auth")
	}

	s.Logout()
	req, _ = http.NewRequest(http.MethodGet, srv.URL, nil)
	s.Apply(req)
	if _, _, ok := req.BasicAuth(); ok || s.IsLoggedIn() {
		t.Fatal("logout should drop credentials")
	}
}

func TestLoginRejected(t *testing.T) {
	srv := meServer(t)
	defer srv.Close()

	s := NewSession(srv.URL)
	err := s.Login(context.Background(), "ann", "wrong")
	if !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("err = %v", err)
	}
	if s.IsLoggedIn() {
		t.Fatal("should stay logged out")
	}
}
