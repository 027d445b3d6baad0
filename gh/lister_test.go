package gh

import (
	"fmt"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-github/v67/github"

	"github.com/bug-c/github-backup/repository"
)

func newTestClient(t *testing.T, handler http.Handler) *Client {
	t.Helper()

	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	ghClient := github.NewClient(nil)
	baseURL, err := url.Parse(srv.URL + "/")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	ghClient.BaseURL = baseURL

	return &Client{gh: ghClient, log: slog.Default()}
}

func TestClient_ListOrgRepositories_paginated(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/orgs/org1/repos", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")

		switch r.URL.Query().Get("page") {
		case "", "1":
			next := fmt.Sprintf(`<http://%s/orgs/org1/repos?page=2>; rel="next"`, r.Host)
			w.Header().Set("Link", next)
			fmt.Fprint(w, `[
				{"name":"repo1","clone_url":"https://github.com/org1/repo1.git","default_branch":"main"},
				{"name":"repo2","clone_url":"https://github.com/org1/repo2.git","default_branch":"master"}
			]`)
		case "2":
			fmt.Fprint(w, `[
				{"name":"repo3","clone_url":"https://github.com/org1/repo3.git","default_branch":"main"}
			]`)
		default:
			http.Error(w, "unexpected page", http.StatusBadRequest)
		}
	})

	client := newTestClient(t, mux)

	got, err := client.ListOrgRepositories(t.Context(), "org1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := []repository.Descriptor{
		{Name: "repo1", CloneURL: "https://github.com/org1/repo1.git", DefaultBranch: "main"},
		{Name: "repo2", CloneURL: "https://github.com/org1/repo2.git", DefaultBranch: "master"},
		{Name: "repo3", CloneURL: "https://github.com/org1/repo3.git", DefaultBranch: "main"},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("ListOrgRepositories() mismatch (-want +got):\n%s", diff)
	}
}

func TestClient_ListOrgRepositories_error(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/orgs/org1/repos", func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"message":"Not Found"}`, http.StatusNotFound)
	})

	client := newTestClient(t, mux)

	if _, err := client.ListOrgRepositories(t.Context(), "org1"); err == nil {
		t.Errorf("expected error for missing org")
	}
}

func TestClient_Authenticate(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/user", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"login":"backup-bot"}`)
	})

	client := newTestClient(t, mux)

	got, err := client.Authenticate(t.Context())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "backup-bot" {
		t.Errorf("Authenticate() = %v, want backup-bot", got)
	}
}
