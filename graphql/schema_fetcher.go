package graphql

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/goccy/go-json"
)

// serviceSDLResponse is the response body from a GraphQL endpoint
// when queried with `{ _service { sdl } }`.
type serviceSDLResponse struct {
	Data struct {
		Service struct {
			SDL string `json:"sdl"`
		} `json:"_service"`
	} `json:"data"`
}

// RetryOption defines the retry configuration for SDL fetching.
type RetryOption struct {
	Attempts int    `yaml:"attempts"`
	Timeout  string `yaml:"timeout"`
}

// FetchSDL fetches the SDL by sending { _service { sdl } } to endpoint.
// It retries up to retry.Attempts times, each with a per-attempt timeout.
func FetchSDL(ctx context.Context, endpoint string, httpClient *http.Client, retry RetryOption) (string, error) {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}

	attempts := retry.Attempts
	if attempts <= 0 {
		attempts = 1
	}

	timeoutDuration := 5 * time.Second
	if retry.Timeout != "" {
		if d, err := time.ParseDuration(retry.Timeout); err == nil {
			timeoutDuration = d
		}
	}

	body := []byte(`{"query":"{_service{sdl}}"}`)

	var lastErr error
	for i := 0; i < attempts; i++ {
		sdl, err := doFetchSDL(ctx, endpoint, httpClient, body, timeoutDuration)
		if err == nil {
			return sdl, nil
		}
		lastErr = err

		if ctx.Err() != nil {
			break
		}
	}
	return "", fmt.Errorf("failed to fetch SDL from %s after %d attempt(s): %w", endpoint, attempts, lastErr)
}

// doFetchSDL performs a single SDL fetch attempt with the given timeout.
func doFetchSDL(ctx context.Context, endpoint string, httpClient *http.Client, body []byte, timeout time.Duration) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("HTTP request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", &StatusError{StatusCode: resp.StatusCode, Endpoint: endpoint}
	}

	var svcResp serviceSDLResponse
	if err := json.NewDecoder(resp.Body).Decode(&svcResp); err != nil {
		return "", fmt.Errorf("failed to decode SDL response: %w", err)
	}

	if svcResp.Data.Service.SDL == "" {
		return "", fmt.Errorf("empty SDL returned from %s", endpoint)
	}

	return svcResp.Data.Service.SDL, nil
}
