package main

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/bug-c/github-backup/backup"
)

func Test_pushRunMetrics(t *testing.T) {
	var gotPath, gotBody string

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		body, _ := io.ReadAll(r.Body)
		gotBody = string(body)
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	summary := backup.Summary{
		Total:     3,
		Succeeded: 2,
		Failed:    1,
		Start:     time.Now().Add(-time.Minute),
		End:       time.Now(),
	}
	pushRunMetrics(srv.URL, summary)

	if !strings.Contains(gotPath, "/metrics/job/"+metricsJobName) {
		t.Errorf("push path = %q, want job %q", gotPath, metricsJobName)
	}
	for _, metric := range []string{
		"github_backup_run_repo_count",
		"github_backup_run_duration_seconds",
	} {
		if !strings.Contains(gotBody, metric) {
			t.Errorf("expected pushed body to contain %q", metric)
		}
	}

	// failures are logged only
	pushRunMetrics("http://127.0.0.1:1", summary)
}
