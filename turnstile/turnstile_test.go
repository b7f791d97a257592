package turnstile

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
)

func newServer(t *testing.T, success bool) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseForm(); err != nil {
			t.Errorf("parse form: %v", err)
		}
		if r.PostForm.Get("secret") != "s3cret" {
			t.Errorf("secret = %q", r.PostForm.Get("secret"))
		}
		if r.PostForm.Get("response") != "tok" {
			t.Errorf("response = %q", r.PostForm.Get("response"))
		}
		w.Header().Set("Content-Type", "application/json")
		if success {
			w.Write([]byte(`{"success":true}`))
			return
		}
		w.Write([]byte(`{"success":false,"error-codes":["invalid-input-response"]}`))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestVerifySuccess(t *testing.T) {
	c := New("s3cret")
	c.Endpoint = newServer(t, true).URL
	ok, err := c.Verify(context.Background(), "tok", "203.0.113.5")
	if err != nil || !ok {
		t.Fatalf("Verify = %v, %v; want true, nil", ok, err)
	}
}

func TestVerifyRejected(t *testing.T) {
	c := New("s3cret")
	c.Endpoint = newServer(t, false).URL
	ok, err := c.Verify(context.Background(), "tok", "")
	if err != nil || ok {
		t.Fatalf("Verify = %v, %v; want false, nil", ok, err)
	}
}

func TestVerifyEmptyToken(t *testing.T) {
	c := New("s3cret")
	c.Endpoint = "http://127.0.0.1:0/unreachable"
	ok, err := c.Verify(context.Background(), "  ", "")
	if err != nil || ok {
		t.Fatalf("Verify(empty) = %v, %v; want false, nil", ok, err)
	}
}

func TestVerifyBadStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()
	c := New("s3cret")
	c.Endpoint = srv.URL
	if _, err := c.Verify(context.Background(), "tok", ""); err == nil {
		t.Fatal("expected error on non-200 response")
	}
}
