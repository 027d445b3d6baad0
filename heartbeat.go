package main

import (
	"context"
	"net/http"
	"time"
)

const heartbeatTimeout = 10 * time.Second

// sendHeartbeat notifies an external monitor that a run completed by
// sending a GET to the configured URL. Dead man's switch style monitors
// (healthchecks.io and the like) alert when the ping stops arriving.
// Failures are logged and never affect the run result.
func sendHeartbeat(ctx context.Context, url string) {
	hbCtx, cancel := context.WithTimeout(ctx, heartbeatTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(hbCtx, http.MethodGet, url, nil)
	if err != nil {
		logger.Error("unable to create heartbeat request", "err", err)
		return
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		logger.Error("unable to send heartbeat", "url", url, "err", err)
		return
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusOK {
		logger.Info("heartbeat sent", "url", url)
	} else {
		logger.Warn("unexpected heartbeat response", "url", url, "status", resp.StatusCode)
	}
}
