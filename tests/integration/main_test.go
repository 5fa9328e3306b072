//go:build integration
// +build integration

package integration

import (
	"fmt"
	"net/http"
	"testing"
)

func TestHealthz(t *testing.T) {
	for _, baseURL := range []string{
		envOrDefault("INTEGRATION_BASE_URL", "http://localhost:8080"),
		envOrDefault("INTEGRATION_HOSTSIM_URL", "http://localhost:8787"),
	} {
		resp, err := http.Get(fmt.Sprintf("%s/healthz", baseURL))
		if err != nil {
			t.Fatalf("health check request to %s failed: %v", baseURL, err)
		}
		resp.Body.Close()

		if resp.StatusCode != http.StatusOK {
			t.Fatalf("unexpected status code from %s: %d", baseURL, resp.StatusCode)
		}
	}
}

func TestMetricsExposed(t *testing.T) {
	baseURL := envOrDefault("INTEGRATION_BASE_URL", "http://localhost:8080")
	waitForReady(t, baseURL, 10)

	resp, err := http.Get(fmt.Sprintf("%s/metrics", baseURL))
	if err != nil {
		t.Fatalf("metrics request failed: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("unexpected status code: %d", resp.StatusCode)
	}
}
