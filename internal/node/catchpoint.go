package node

import (
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

var catchpointClient = &http.Client{Timeout: 15 * time.Second}

// FetchCatchpoint retrieves the latest catchpoint identifier for a network
// from its catchpoint endpoint. The body is a single opaque string.
func FetchCatchpoint(url string) (string, error) {
	resp, err := catchpointClient.Get(url)
	if err != nil {
		return "", fmt.Errorf("fetching catchpoint: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("fetching catchpoint: unexpected status %s", resp.Status)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, 4096))
	if err != nil {
		return "", fmt.Errorf("reading catchpoint response: %w", err)
	}
	catchpoint := strings.TrimSpace(string(body))
	if catchpoint == "" {
		return "", fmt.Errorf("catchpoint endpoint returned an empty body")
	}
	return catchpoint, nil
}
