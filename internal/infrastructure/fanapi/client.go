// Package fanapi talks to the fan loyalty aggregator that fronts the
// team programs. It reports the absolute points balance a connected fan
// account holds right now; reconciling that number against the local
// ledger is the caller's job.
package fanapi

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	sonic "github.com/bytedance/sonic"
	crerr "github.com/cockroachdb/errors"
	"github.com/valyala/bytebufferpool"

	"github.com/pointsrally/pointsrally/internal/platform/logging"
	"github.com/pointsrally/pointsrally/internal/platform/resilience"
	"github.com/pointsrally/pointsrally/internal/usecase"
)

const (
	defaultBaseURL     = "https://api.fanpoints.example.com/v1"
	balancePath        = "/fan/balance"
	maxResponseBytes   = 1 << 20
	defaultHTTPTimeout = 15 * time.Second
)

var errFanAPITransient = crerr.New("fan api transient failure")

type ClientConfig struct {
	HTTPClient     *http.Client
	BaseURL        string
	Token          string
	Timeout        time.Duration
	MaxRetries     int
	Logger         *logging.Logger
	CircuitBreaker resilience.CircuitBreakerConfig
}

type Client struct {
	httpClient     *http.Client
	baseURL        string
	token          string
	maxRetries     int
	logger         *logging.Logger
	breaker        *resilience.CircuitBreaker
	circuitEnabled bool
	flight         resilience.SingleFlight
}

func NewClient(cfg ClientConfig) *Client {
	logger := cfg.Logger
	if logger == nil {
		logger = logging.Default()
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: cfg.Timeout}
	}
	if httpClient.Timeout <= 0 {
		httpClient.Timeout = defaultHTTPTimeout
	}

	baseURL := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if baseURL == "" {
		baseURL = defaultBaseURL
	}

	maxRetries := cfg.MaxRetries
	if maxRetries < 0 {
		maxRetries = 0
	}

	breakerCfg := resilience.NormalizeCircuitBreakerConfig(cfg.CircuitBreaker)

	return &Client{
		httpClient:     httpClient,
		baseURL:        baseURL,
		token:          strings.TrimSpace(cfg.Token),
		maxRetries:     maxRetries,
		logger:         logger,
		breaker:        resilience.NewCircuitBreaker(breakerCfg.FailureThreshold, breakerCfg.OpenTimeout, breakerCfg.HalfOpenMaxReq),
		circuitEnabled: breakerCfg.Enabled,
	}
}

type balanceRequest struct {
	TeamID      string         `json:"team_id"`
	Credentials map[string]any `json:"credentials,omitempty"`
}

type balanceResponse struct {
	TeamID  string `json:"team_id"`
	Balance int    `json:"balance"`
	AsOf    string `json:"as_of"`
}

// FetchPointsBalance asks the aggregator for the current balance of the
// fan account identified by credentials. Concurrent lookups for the
// same team and credentials collapse into one upstream call.
func (c *Client) FetchPointsBalance(ctx context.Context, teamID string, credentials map[string]any) (int, error) {
	teamID = strings.TrimSpace(teamID)
	if teamID == "" {
		return 0, fmt.Errorf("team id is required")
	}

	if c.circuitEnabled {
		if err := c.breaker.Allow(); err != nil {
			c.logger.WarnContext(ctx, "fan api circuit breaker rejected request", "state", c.breaker.State(), "team_id", teamID)
			return 0, fmt.Errorf("%w: fan points provider is temporarily unavailable", usecase.ErrDependencyUnavailable)
		}
	}

	encoded, err := sonic.Marshal(balanceRequest{TeamID: teamID, Credentials: credentials})
	if err != nil {
		return 0, fmt.Errorf("marshal balance request: %w", err)
	}

	key := teamID + ":" + fingerprint(encoded)
	out, err, _ := c.flight.Do(key, func() (any, error) {
		raw, reqErr := c.executeRequest(ctx, encoded)
		if c.circuitEnabled {
			if reqErr != nil && isFanAPICircuitFailure(reqErr) {
				c.breaker.RecordFailure()
			} else {
				c.breaker.RecordSuccess()
			}
		}
		return raw, reqErr
	})
	if err != nil {
		return 0, err
	}

	raw, ok := out.([]byte)
	if !ok {
		return 0, fmt.Errorf("unexpected response payload type %T", out)
	}

	var decoded balanceResponse
	if err := sonic.Unmarshal(raw, &decoded); err != nil {
		return 0, fmt.Errorf("decode provider payload: %w", err)
	}
	if decoded.Balance < 0 {
		return 0, fmt.Errorf("provider reported negative balance %d for team %s", decoded.Balance, teamID)
	}

	return decoded.Balance, nil
}

func (c *Client) executeRequest(ctx context.Context, body []byte) ([]byte, error) {
	buf := bytebufferpool.Get()
	defer bytebufferpool.Put(buf)
	_, _ = buf.Write(body)

	fullURL := c.baseURL + balancePath

	var lastErr error
	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, fullURL, bytes.NewReader(buf.B))
		if err != nil {
			return nil, fmt.Errorf("build request: %w", err)
		}
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("Accept", "application/json")
		if c.token != "" {
			req.Header.Set("Authorization", "Bearer "+c.token)
		}

		resp, err := c.httpClient.Do(req)
		if err != nil {
			lastErr = fmt.Errorf("%w: send request: %s", errFanAPITransient, sanitizeSensitiveText(err.Error(), c.token))
		} else {
			raw, readErr := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
			_ = resp.Body.Close()
			switch {
			case readErr != nil:
				lastErr = fmt.Errorf("%w: read response body: %v", errFanAPITransient, readErr)
			case resp.StatusCode >= 200 && resp.StatusCode < 300:
				return raw, nil
			case isRetryableStatus(resp.StatusCode):
				lastErr = fmt.Errorf("%w: provider status=%d body=%s", errFanAPITransient, resp.StatusCode, abbreviateBody(raw))
			default:
				return nil, fmt.Errorf("provider status=%d body=%s", resp.StatusCode, abbreviateBody(raw))
			}
		}

		if attempt == c.maxRetries {
			break
		}

		backoff := time.Duration(attempt+1) * time.Second
		timer := time.NewTimer(backoff)
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil, fmt.Errorf("%w: wait before retry: %v", errFanAPITransient, ctx.Err())
		case <-timer.C:
		}
	}

	return nil, lastErr
}

func isFanAPICircuitFailure(err error) bool {
	return crerr.Is(err, errFanAPITransient)
}

func isRetryableStatus(status int) bool {
	return status == http.StatusTooManyRequests || status >= http.StatusInternalServerError
}

func abbreviateBody(raw []byte) string {
	const maxLen = 256
	text := strings.TrimSpace(string(raw))
	if len(text) > maxLen {
		return text[:maxLen] + "..."
	}
	return text
}

// sanitizeSensitiveText keeps bearer tokens out of logged errors.
func sanitizeSensitiveText(text, token string) string {
	if token == "" {
		return text
	}
	return strings.ReplaceAll(text, token, "***")
}

func fingerprint(payload []byte) string {
	sum := sha256.Sum256(payload)
	return hex.EncodeToString(sum[:8])
}
