package backup

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"

	"github.com/bug-c/github-backup/repository"
)

type stubLister struct {
	repos map[string][]repository.Descriptor
	errs  map[string]error
}

func (s *stubLister) ListOrgRepositories(_ context.Context, org string) ([]repository.Descriptor, error) {
	if err := s.errs[org]; err != nil {
		return nil, err
	}
	return s.repos[org], nil
}

func testConfig(t *testing.T, orgs ...string) Config {
	t.Helper()

	return Config{
		GitHub:        GitHubConfig{Token: "t0ken"},
		Backup:        StoreConfig{Path: t.TempDir()},
		Organizations: orgs,
	}
}

func desc(name string) repository.Descriptor {
	return repository.Descriptor{
		Name:     name,
		CloneURL: "https://github.com/org1/" + name + ".git",
	}
}

func TestRunner_Run_all_succeed(t *testing.T) {
	lister := &stubLister{repos: map[string][]repository.Descriptor{
		"org1": {desc("repo1"), desc("repo2")},
	}}

	runner, err := NewRunner(testConfig(t, "org1"), lister, repository.Auth{}, nil, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	runner.syncFn = func(_ context.Context, d repository.Descriptor, _ string) repository.Result {
		return repository.Result{Repo: d.Name, Outcome: repository.Created}
	}

	got := runner.Run(t.Context())

	want := Summary{Total: 2, Succeeded: 2, Failed: 0}
	if diff := cmp.Diff(want, got, cmpopts.IgnoreFields(Summary{}, "Start", "End")); diff != "" {
		t.Errorf("Run() summary mismatch (-want +got):\n%s", diff)
	}

	// org dir must have been created under the backup root
	orgDir := filepath.Join(runner.conf.Backup.Path, "org1")
	if _, err := os.Stat(orgDir); err != nil {
		t.Errorf("expected org dir %q: %v", orgDir, err)
	}
}

func TestRunner_Run_failure_does_not_stop_run(t *testing.T) {
	lister := &stubLister{repos: map[string][]repository.Descriptor{
		"org1": {desc("repo1"), desc("bad"), desc("repo2")},
	}}

	runner, err := NewRunner(testConfig(t, "org1"), lister, repository.Auth{}, nil, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	runner.syncFn = func(_ context.Context, d repository.Descriptor, _ string) repository.Result {
		if d.Name == "bad" {
			return repository.Result{Repo: d.Name, Outcome: repository.Failed, Err: fmt.Errorf("boom")}
		}
		return repository.Result{Repo: d.Name, Outcome: repository.Updated}
	}

	got := runner.Run(t.Context())

	want := Summary{Total: 3, Succeeded: 2, Failed: 1}
	if diff := cmp.Diff(want, got, cmpopts.IgnoreFields(Summary{}, "Start", "End")); diff != "" {
		t.Errorf("Run() summary mismatch (-want +got):\n%s", diff)
	}
}

func TestRunner_Run_list_failure_skips_org(t *testing.T) {
	lister := &stubLister{
		repos: map[string][]repository.Descriptor{
			"org2": {desc("repo1")},
		},
		errs: map[string]error{
			"org1": fmt.Errorf("api is down"),
		},
	}

	runner, err := NewRunner(testConfig(t, "org1", "org2"), lister, repository.Auth{}, nil, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var synced []string
	runner.syncFn = func(_ context.Context, d repository.Descriptor, orgDir string) repository.Result {
		synced = append(synced, filepath.Join(filepath.Base(orgDir), d.Name))
		return repository.Result{Repo: d.Name, Outcome: repository.Updated}
	}

	got := runner.Run(t.Context())

	// org1's repos never make it into the summary
	want := Summary{Total: 1, Succeeded: 1, Failed: 0}
	if diff := cmp.Diff(want, got, cmpopts.IgnoreFields(Summary{}, "Start", "End")); diff != "" {
		t.Errorf("Run() summary mismatch (-want +got):\n%s", diff)
	}

	if diff := cmp.Diff([]string{filepath.Join("org2", "repo1")}, synced); diff != "" {
		t.Errorf("synced repos mismatch (-want +got):\n%s", diff)
	}
}

func TestRunner_Run_concurrent_counters(t *testing.T) {
	var repos []repository.Descriptor
	for i := 0; i < 100; i++ {
		repos = append(repos, desc(fmt.Sprintf("repo%d", i)))
	}
	lister := &stubLister{repos: map[string][]repository.Descriptor{"org1": repos}}

	conf := testConfig(t, "org1")
	conf.Backup.Concurrency = 8

	runner, err := NewRunner(conf, lister, repository.Auth{}, nil, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	runner.syncFn = func(_ context.Context, d repository.Descriptor, _ string) repository.Result {
		if strings.HasSuffix(d.Name, "7") {
			return repository.Result{Repo: d.Name, Outcome: repository.Failed, Err: fmt.Errorf("boom")}
		}
		return repository.Result{Repo: d.Name, Outcome: repository.Updated}
	}

	got := runner.Run(t.Context())

	// repo7, repo17 ... repo97
	want := Summary{Total: 100, Succeeded: 90, Failed: 10}
	if diff := cmp.Diff(want, got, cmpopts.IgnoreFields(Summary{}, "Start", "End")); diff != "" {
		t.Errorf("Run() summary mismatch (-want +got):\n%s", diff)
	}

	if got.Duration() < 0 {
		t.Errorf("Duration() = %v, want >= 0", got.Duration())
	}
}

func TestNewRunner_invalid_config(t *testing.T) {
	conf := testConfig(t)

	if _, err := NewRunner(conf, &stubLister{}, repository.Auth{}, nil, nil); err == nil {
		t.Errorf("expected error for config without organizations")
	}
}
