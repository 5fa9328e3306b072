//go:build integration
// +build integration

package integration

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"testing"
	"time"

	"github.com/gokatarajesh/venice-quiz-frame/internal/widget"
)

type transitionResult struct {
	Applied bool        `json:"applied"`
	View    widget.View `json:"view"`
}

func envOrDefault(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func getView(t *testing.T, baseURL string) widget.View {
	t.Helper()

	resp, err := http.Get(fmt.Sprintf("%s/v1/frame", baseURL))
	if err != nil {
		t.Fatalf("view request failed: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("unexpected view status: %d", resp.StatusCode)
	}

	var view widget.View
	if err := json.NewDecoder(resp.Body).Decode(&view); err != nil {
		t.Fatalf("decode view failed: %v", err)
	}
	return view
}

// waitForReady polls the frame until the host handshake has completed.
func waitForReady(t *testing.T, baseURL string, seconds int) widget.View {
	t.Helper()

	deadline := time.Now().Add(time.Duration(seconds) * time.Second)
	for time.Now().Before(deadline) {
		view := getView(t, baseURL)
		if !view.Loading {
			return view
		}
		time.Sleep(200 * time.Millisecond)
	}
	t.Fatalf("frame still loading after %ds; is the host simulator running?", seconds)
	return widget.View{}
}

func postJSON(t *testing.T, url string, payload interface{}) *http.Response {
	t.Helper()

	var body []byte
	if payload != nil {
		var err error
		body, err = json.Marshal(payload)
		if err != nil {
			t.Fatalf("marshal payload: %v", err)
		}
	}

	resp, err := http.Post(url, "application/json", bytes.NewReader(body))
	if err != nil {
		t.Fatalf("POST %s failed: %v", url, err)
	}
	return resp
}

func postTransition(t *testing.T, baseURL, action string, payload interface{}) transitionResult {
	t.Helper()

	resp := postJSON(t, fmt.Sprintf("%s/v1/frame/%s", baseURL, action), payload)
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("unexpected %s status: %d", action, resp.StatusCode)
	}

	var out transitionResult
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		t.Fatalf("decode %s response failed: %v", action, err)
	}
	return out
}

// resetToStart drives the shared frame to completion and restarts it so each
// test begins on the first question with no answers.
func resetToStart(t *testing.T, baseURL string) {
	t.Helper()

	for i := 0; i < 16; i++ {
		if out := postTransition(t, baseURL, "next", nil); !out.Applied {
			break
		}
	}
	if out := postTransition(t, baseURL, "reset", nil); !out.Applied {
		t.Fatalf("reset was not applied")
	}
}
