// Package fstats fetches player statistics from the FSTATS API, which
// requires credential login and paginates its player listing.
package fstats

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	sonic "github.com/bytedance/sonic"
	"github.com/cenkalti/backoff/v4"
	crerr "github.com/cockroachdb/errors"

	"github.com/fantalab/listone/internal/domain/player"
	"github.com/fantalab/listone/internal/platform/logging"
	"github.com/fantalab/listone/internal/platform/resilience"
)

var errFstatsTransient = crerr.New("fstats transient failure")

type ClientConfig struct {
	HTTPClient   *http.Client
	BaseURL      string
	Username     string
	Password     string
	Season       string
	PageSize     int
	Timeout      time.Duration
	MaxRetries   int
	RequestDelay time.Duration
	Logger       *logging.Logger
}

type Client struct {
	httpClient   *http.Client
	baseURL      string
	username     string
	password     string
	season       string
	pageSize     int
	maxRetries   int
	requestDelay time.Duration
	logger       *logging.Logger
	breaker      *resilience.Breaker
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
		httpClient.Timeout = 20 * time.Second
	}

	pageSize := cfg.PageSize
	if pageSize <= 0 {
		pageSize = 500
	}

	return &Client{
		httpClient:   httpClient,
		baseURL:      strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/"),
		username:     strings.TrimSpace(cfg.Username),
		password:     cfg.Password,
		season:       strings.TrimSpace(cfg.Season),
		pageSize:     pageSize,
		maxRetries:   maxInt(cfg.MaxRetries, 0),
		requestDelay: cfg.RequestDelay,
		logger:       logger,
		breaker:      resilience.NewBreaker(5, 30*time.Second),
	}
}

func (c *Client) Source() player.Source {
	return player.SourceFstats
}

// FetchPlayers logs in, walks the paginated player listing, and maps every
// row onto a RawRecord. Malformed rows are skipped with a warning; a page
// that fails all retries aborts the fetch and surfaces as a source-level
// failure to the caller.
func (c *Client) FetchPlayers(ctx context.Context) ([]player.RawRecord, []string, error) {
	token, err := c.login(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("fstats login: %w", err)
	}

	var (
		records  []player.RawRecord
		warnings []string
	)

	for page := 1; ; page++ {
		if page > 1 && c.requestDelay > 0 {
			select {
			case <-ctx.Done():
				return nil, warnings, ctx.Err()
			case <-time.After(c.requestDelay):
			}
		}

		envelope, err := c.fetchPage(ctx, token, page)
		if err != nil {
			return nil, warnings, fmt.Errorf("fetch fstats page %d: %w", page, err)
		}

		for _, row := range envelope.Results {
			rec, err := mapRow(row)
			if err != nil {
				warnings = append(warnings, fmt.Sprintf("fstats: skipped row: %v", err))
				continue
			}
			rec.Seq = len(records)
			records = append(records, rec)
		}

		if envelope.Next == "" || len(envelope.Results) == 0 {
			break
		}
	}

	c.logger.Info("fstats fetch complete", "players", len(records), "skipped", len(warnings))
	return records, warnings, nil
}

type loginResponse struct {
	AccessToken string `json:"access_token"`
}

func (c *Client) login(ctx context.Context) (string, error) {
	payload, err := sonic.Marshal(map[string]string{
		"username": c.username,
		"password": c.password,
	})
	if err != nil {
		return "", fmt.Errorf("encode login payload: %w", err)
	}

	raw, err := c.execute(ctx, http.MethodPost, c.baseURL+"/account/login/", payload, "")
	if err != nil {
		return "", err
	}

	var resp loginResponse
	if err := sonic.Unmarshal(raw, &resp); err != nil {
		return "", fmt.Errorf("decode login response: %w", err)
	}
	if resp.AccessToken == "" {
		return "", fmt.Errorf("login response carried no access token")
	}

	return resp.AccessToken, nil
}

type playersEnvelope struct {
	Count   int              `json:"count"`
	Next    string           `json:"next"`
	Results []map[string]any `json:"results"`
}

func (c *Client) fetchPage(ctx context.Context, token string, page int) (playersEnvelope, error) {
	values := url.Values{}
	values.Set("page", strconv.Itoa(page))
	values.Set("page_size", strconv.Itoa(c.pageSize))
	values.Set("season", c.season)

	fullURL := c.baseURL + "/v1/zona/player/?" + values.Encode()
	raw, err := c.execute(ctx, http.MethodGet, fullURL, nil, token)
	if err != nil {
		return playersEnvelope{}, err
	}

	var envelope playersEnvelope
	if err := sonic.Unmarshal(raw, &envelope); err != nil {
		return playersEnvelope{}, fmt.Errorf("decode players page: %w", err)
	}

	return envelope, nil
}

// execute performs one HTTP call with breaker protection and exponential
// backoff on transient failures (network errors, 408/429/5xx).
func (c *Client) execute(ctx context.Context, method, fullURL string, body []byte, token string) ([]byte, error) {
	if err := c.breaker.Allow(); err != nil {
		return nil, fmt.Errorf("fstats: %w", err)
	}

	attempt := func() ([]byte, error) {
		var reader io.Reader
		if body != nil {
			reader = bytes.NewReader(body)
		}
		req, err := http.NewRequestWithContext(ctx, method, fullURL, reader)
		if err != nil {
			return nil, backoff.Permanent(fmt.Errorf("build request: %w", err))
		}
		req.Header.Set("accept", "application/json")
		if body != nil {
			req.Header.Set("content-type", "application/json")
		}
		if token != "" {
			req.Header.Set("authorization", "Bearer "+token)
		}

		resp, err := c.httpClient.Do(req)
		if err != nil {
			return nil, crerr.Mark(fmt.Errorf("send request: %v", err), errFstatsTransient)
		}
		defer func() { _ = resp.Body.Close() }()

		raw, err := io.ReadAll(io.LimitReader(resp.Body, 16<<20))
		if err != nil {
			return nil, crerr.Mark(fmt.Errorf("read response body: %v", err), errFstatsTransient)
		}

		if resp.StatusCode >= 200 && resp.StatusCode < 300 {
			return raw, nil
		}
		statusErr := fmt.Errorf("provider status=%d body=%s", resp.StatusCode, abbreviateBody(raw))
		if isRetryableStatus(resp.StatusCode) {
			return nil, crerr.Mark(statusErr, errFstatsTransient)
		}
		return nil, backoff.Permanent(statusErr)
	}

	policy := backoff.WithContext(
		backoff.WithMaxRetries(backoff.NewExponentialBackOff(), uint64(c.maxRetries)),
		ctx,
	)

	raw, err := backoff.RetryWithData(attempt, policy)
	if err != nil {
		if crerr.Is(err, errFstatsTransient) {
			c.breaker.ReportFailure()
		}
		c.logger.Warn("fstats request failed", "url", fullURL, "error", err)
		return nil, err
	}

	c.breaker.ReportSuccess()
	return raw, nil
}

func isRetryableStatus(status int) bool {
	switch status {
	case http.StatusRequestTimeout, http.StatusTooManyRequests:
		return true
	}
	return status >= 500
}

func abbreviateBody(raw []byte) string {
	const max = 200
	s := strings.TrimSpace(string(raw))
	if len(s) > max {
		return s[:max] + "..."
	}
	return s
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
