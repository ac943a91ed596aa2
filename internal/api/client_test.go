package api

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
)

func TestGetSendsBearerAndQuery(t *testing.T) {
	var gotAuth, gotPath, gotLimit string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		gotPath = r.URL.Path
		gotLimit = r.URL.Query().Get("limit")
		_, _ = w.Write([]byte(`[]`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL+"/", "tok-123")
	body, err := c.Get(context.Background(), "/transactions/", url.Values{"limit": {"50"}})
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if string(body) != "[]" {
		t.Fatalf("body = %q, want []", body)
	}
	if gotAuth != "Bearer tok-123" {
		t.Fatalf("Authorization = %q, want Bearer tok-123", gotAuth)
	}
	if gotPath != "/transactions/" {
		t.Fatalf("path = %q, want /transactions/", gotPath)
	}
	if gotLimit != "50" {
		t.Fatalf("limit = %q, want 50", gotLimit)
	}
}

func TestStatusMapping(t *testing.T) {
	tests := []struct {
		code int
		want error
	}{
		{http.StatusUnauthorized, ErrUnauthorized},
		{http.StatusForbidden, ErrUnauthorized},
		{http.StatusNotFound, ErrNotFound},
		{http.StatusTooManyRequests, ErrRateLimited},
	}

	for _, tt := range tests {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(tt.code)
		}))
		err := NewClient(srv.URL, "t").Delete(context.Background(), "/transactions/x")
		srv.Close()
		if !errors.Is(err, tt.want) {
			t.Fatalf("status %d: err = %v, want %v", tt.code, err, tt.want)
		}
	}
}

func TestStatusErrorCarriesDetail(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"detail":"Period must be 'daily', 'monthly', 'yearly', or 'all'"}`))
	}))
	defer srv.Close()

	_, err := NewClient(srv.URL, "t").Get(context.Background(), "/transactions/analytics/weekly", nil)
	var se *StatusError
	if !errors.As(err, &se) {
		t.Fatalf("err = %v, want *StatusError", err)
	}
	if se.Code != http.StatusBadRequest {
		t.Fatalf("Code = %d, want 400", se.Code)
	}
	if se.Detail == "" {
		t.Fatal("Detail is empty")
	}
}

func TestLogin(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/auth/login" {
			t.Errorf("unexpected %s %s", r.Method, r.URL.Path)
		}
		if r.Header.Get("Authorization") != "" {
			t.Errorf("login sent Authorization header")
		}
		_, _ = w.Write([]byte(`{"access_token":"abc","token_type":"bearer"}`))
	}))
	defer srv.Close()

	tok, err := NewClient(srv.URL, "").Login(context.Background(), "ada", "secret-pass")
	if err != nil {
		t.Fatalf("Login: %v", err)
	}
	if tok != "abc" {
		t.Fatalf("token = %q, want abc", tok)
	}
}
