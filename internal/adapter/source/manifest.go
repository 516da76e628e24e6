package source

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"net/http"
	"time"

	"github.com/sony/gobreaker"
)

// Backoff controls manifest fetch retries.
type Backoff struct {
	MaxRetries      int
	InitialInterval time.Duration
	MaxInterval     time.Duration
}

var errServerError = errors.New("server error")

// Manifest asks an HTTP endpoint for the newest dataset path. The
// endpoint serves a JSON document {"path": "..."}. Fetches run behind a
// circuit breaker with exponential backoff between retries.
type Manifest struct {
	url     string
	client  *http.Client
	backoff Backoff
	breaker *gobreaker.CircuitBreaker
}

// NewManifest builds a manifest source. A nil client gets a default
// with a ten second timeout.
func NewManifest(url string, client *http.Client) *Manifest {
	if client == nil {
		client = &http.Client{Timeout: 10 * time.Second}
	}

	return &Manifest{
		url:    url,
		client: client,
		backoff: Backoff{
			MaxRetries:      3,
			InitialInterval: 500 * time.Millisecond,
			MaxInterval:     5 * time.Second,
		},
		breaker: gobreaker.NewCircuitBreaker(gobreaker.Settings{
			Name:    "dataset-manifest",
			Timeout: 30 * time.Second,
		}),
	}
}

type manifestResponse struct {
	Path string `json:"path"`
}

// Latest fetches the manifest and returns the advertised dataset path.
func (m *Manifest) Latest(ctx context.Context) (string, error) {
	var attempt int
	var lastErr error

	for {
		if ctx.Err() != nil {
			return "", ctx.Err()
		}

		result, err := m.breaker.Execute(func() (interface{}, error) {
			path, fetchErr := m.fetch(ctx)
			if fetchErr != nil {
				return nil, fetchErr
			}
			return path, nil
		})
		if err == nil {
			return result.(string), nil
		}

		// An open circuit fails fast, no point retrying.
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			return "", fmt.Errorf("manifest circuit open: %w", err)
		}

		lastErr = err
		if attempt >= m.backoff.MaxRetries {
			return "", lastErr
		}

		delay := m.backoff.InitialInterval * time.Duration(math.Pow(2, float64(attempt)))
		if m.backoff.MaxInterval > 0 && delay > m.backoff.MaxInterval {
			delay = m.backoff.MaxInterval
		}

		timer := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return "", ctx.Err()
		case <-timer.C:
		}
		attempt++
	}
}

func (m *Manifest) fetch(ctx context.Context) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, m.url, nil)
	if err != nil {
		return "", err
	}

	resp, err := m.client.Do(req)
	if err != nil {
		return "", err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode >= 500 {
		return "", fmt.Errorf("%w: %d", errServerError, resp.StatusCode)
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("unexpected manifest status %d", resp.StatusCode)
	}

	var manifest manifestResponse
	if err := json.NewDecoder(resp.Body).Decode(&manifest); err != nil {
		return "", fmt.Errorf("failed to decode manifest: %w", err)
	}
	if manifest.Path == "" {
		return "", fmt.Errorf("manifest has no dataset path")
	}

	return manifest.Path, nil
}
