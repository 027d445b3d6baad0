package main

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/push"

	"github.com/bug-c/github-backup/backup"
)

const (
	metricsNamespace = "github_backup"
	metricsJobName   = "github_backup"
)

// metricsRegistry collects run metrics which are pushed after the run when
// a push URL is configured. A one-shot process has nothing to scrape so
// the Pushgateway protocol is the only way out.
var metricsRegistry = prometheus.NewRegistry()

var (
	runRepoCount = prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Name:      "run_repo_count",
		Namespace: metricsNamespace,
		Help:      "Number of repositories processed by the last run, by result.",
	}, []string{"result"})

	runDuration = prometheus.NewGauge(prometheus.GaugeOpts{
		Name:      "run_duration_seconds",
		Namespace: metricsNamespace,
		Help:      "Duration of the last backup run in seconds.",
	})

	runLastSuccess = prometheus.NewGauge(prometheus.GaugeOpts{
		Name:      "run_last_success_timestamp",
		Namespace: metricsNamespace,
		Help:      "Timestamp of the last backup run which had no failures.",
	})
)

func init() {
	metricsRegistry.MustRegister(runRepoCount, runDuration, runLastSuccess)
}

// pushRunMetrics sends the run metrics to the configured Pushgateway.
// Failures are logged and never affect the run result.
func pushRunMetrics(url string, summary backup.Summary) {
	runRepoCount.WithLabelValues("succeeded").Set(float64(summary.Succeeded))
	runRepoCount.WithLabelValues("failed").Set(float64(summary.Failed))
	runDuration.Set(summary.Duration().Seconds())
	if summary.Failed == 0 {
		runLastSuccess.SetToCurrentTime()
	}

	if err := push.New(url, metricsJobName).
		Gatherer(metricsRegistry).
		Push(); err != nil {
		logger.Error("unable to push run metrics", "url", url, "err", err)
		return
	}

	logger.Info("run metrics pushed", "url", url)
}
