package sources

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestSimulatorClient_Honeypot(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/simulate-sell/"+testMint {
			t.Errorf("Unexpected path %s", r.URL.Path)
		}
		w.Write([]byte(`{"isHoneypot":true,"reason":"sell route reverts"}`))
	}))
	defer srv.Close()

	client := NewSimulatorClient(srv.URL, srv.Client())
	result, err := client.Simulate(context.Background(), testMint)
	if err != nil {
		t.Fatalf("Simulate failed: %v", err)
	}
	if !result.Honeypot {
		t.Error("Expected honeypot verdict")
	}
	if result.Reason != "sell route reverts" {
		t.Errorf("Reason mismatch: %q", result.Reason)
	}
}

func TestSimulatorClient_Sellable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"isHoneypot":false}`))
	}))
	defer srv.Close()

	client := NewSimulatorClient(srv.URL, srv.Client())
	result, err := client.Simulate(context.Background(), testMint)
	if err != nil {
		t.Fatalf("Simulate failed: %v", err)
	}
	if result.Honeypot {
		t.Error("Expected sellable verdict")
	}
}

func TestSimulatorClient_NoRoute(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	client := NewSimulatorClient(srv.URL, srv.Client())
	if _, err := client.Simulate(context.Background(), testMint); !errors.Is(err, ErrUnavailable) {
		t.Errorf("Expected ErrUnavailable without a route, got %v", err)
	}
}

func TestSimulatorClient_ServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	client := NewSimulatorClient(srv.URL, srv.Client())
	_, err := client.Simulate(context.Background(), testMint)
	if err == nil || errors.Is(err, ErrUnavailable) {
		t.Errorf("5xx must be a hard error, got %v", err)
	}
}
