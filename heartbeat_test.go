package main

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

func Test_sendHeartbeat(t *testing.T) {
	var gotMethod string
	var calls int

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotMethod = r.Method
		calls++
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	sendHeartbeat(t.Context(), srv.URL)

	if gotMethod != http.MethodGet {
		t.Errorf("heartbeat method = %v, want GET", gotMethod)
	}
	if calls != 1 {
		t.Errorf("heartbeat calls = %v, want 1", calls)
	}

	// failures must not panic or abort anything
	sendHeartbeat(t.Context(), "http://127.0.0.1:1/ping")
	sendHeartbeat(t.Context(), "://bad-url")
}

func Test_sendHeartbeat_non_200(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "gone", http.StatusGone)
	}))
	defer srv.Close()

	// logged as warning only
	sendHeartbeat(t.Context(), srv.URL)
}
