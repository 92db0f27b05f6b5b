// Package fpedia scrapes the FPEDIA editorial site: one listing page per
// role yields the player page URLs, then each player page is scraped for
// its attribute panels.
package fpedia

import (
	"context"
	"fmt"
	"io"
	"math/rand"
	"net/http"
	"sort"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/cenkalti/backoff/v4"
	crerr "github.com/cockroachdb/errors"
	"github.com/panjf2000/ants/v2"

	"github.com/fantalab/listone/internal/domain/player"
	"github.com/fantalab/listone/internal/platform/logging"
)

var errFpediaTransient = crerr.New("fpedia transient failure")

type ClientConfig struct {
	HTTPClient   *http.Client
	BaseURL      string
	RolePages    []string
	CurrentYear  int
	MaxWorkers   int
	MaxRetries   int
	RequestDelay time.Duration
	UserAgent    string
	Logger       *logging.Logger
}

type Client struct {
	httpClient   *http.Client
	baseURL      string
	rolePages    []string
	currentYear  int
	maxWorkers   int
	maxRetries   int
	requestDelay time.Duration
	userAgent    string
	logger       *logging.Logger
}

func NewClient(cfg ClientConfig) *Client {
	logger := cfg.Logger
	if logger == nil {
		logger = logging.Default()
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 20 * time.Second}
	}

	workers := cfg.MaxWorkers
	if workers <= 0 {
		workers = 5
	}

	return &Client{
		httpClient:   httpClient,
		baseURL:      strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/"),
		rolePages:    cfg.RolePages,
		currentYear:  cfg.CurrentYear,
		maxWorkers:   workers,
		maxRetries:   cfg.MaxRetries,
		requestDelay: cfg.RequestDelay,
		userAgent:    cfg.UserAgent,
		logger:       logger,
	}
}

func (c *Client) Source() player.Source {
	return player.SourceFpedia
}

type scrapeResult struct {
	seq    int
	record player.RawRecord
	err    error
	url    string
}

// FetchPlayers collects the player URLs from every role listing page, then
// scrapes the player pages through a bounded worker pool. A page that fails
// or parses badly is skipped with a warning; record order follows the URL
// listing order so repeated runs produce identical sequences.
func (c *Client) FetchPlayers(ctx context.Context) ([]player.RawRecord, []string, error) {
	urls, warnings, err := c.collectPlayerURLs(ctx)
	if err != nil {
		return nil, warnings, err
	}
	if len(urls) == 0 {
		return nil, warnings, fmt.Errorf("no player pages found on any role listing")
	}

	pool, err := ants.NewPool(c.maxWorkers, ants.WithPreAlloc(true))
	if err != nil {
		return nil, warnings, fmt.Errorf("create scrape pool: %w", err)
	}
	defer pool.Release()

	var (
		wg       sync.WaitGroup
		results  = make(chan scrapeResult, len(urls))
		scraped  atomic.Int64
		failures atomic.Int64
	)

	for i, pageURL := range urls {
		seq, pageURL := i, pageURL
		wg.Add(1)
		submitErr := pool.Submit(func() {
			defer wg.Done()
			c.sleepJitter(ctx)
			rec, err := c.scrapePlayer(ctx, pageURL)
			if err != nil {
				failures.Add(1)
			} else {
				scraped.Add(1)
			}
			results <- scrapeResult{seq: seq, record: rec, err: err, url: pageURL}
		})
		if submitErr != nil {
			wg.Done()
			results <- scrapeResult{seq: seq, err: fmt.Errorf("submit scrape task: %w", submitErr), url: pageURL}
		}
	}

	wg.Wait()
	close(results)

	collected := make([]scrapeResult, 0, len(urls))
	for res := range results {
		collected = append(collected, res)
	}
	sort.Slice(collected, func(i, j int) bool { return collected[i].seq < collected[j].seq })

	var records []player.RawRecord
	for _, res := range collected {
		if res.err != nil {
			warnings = append(warnings, fmt.Sprintf("fpedia: skipped %s: %v", res.url, res.err))
			continue
		}
		res.record.Seq = len(records)
		records = append(records, res.record)
	}

	if len(records) == 0 {
		return nil, warnings, fmt.Errorf("all %d player pages failed to scrape", len(urls))
	}

	c.logger.Info("fpedia scrape complete",
		"players", scraped.Load(),
		"failed", failures.Load(),
		"pages", len(urls))
	return records, warnings, nil
}

func (c *Client) collectPlayerURLs(ctx context.Context) ([]string, []string, error) {
	var (
		urls     []string
		warnings []string
		seen     = map[string]bool{}
	)

	for i, rolePage := range c.rolePages {
		if i > 0 && c.requestDelay > 0 {
			select {
			case <-ctx.Done():
				return nil, warnings, ctx.Err()
			case <-time.After(c.requestDelay):
			}
		}

		listingURL := c.baseURL + "/" + strings.Trim(strings.ToLower(rolePage), "/") + "/"
		body, err := c.get(ctx, listingURL)
		if err != nil {
			warnings = append(warnings, fmt.Sprintf("fpedia: role listing %s failed: %v", rolePage, err))
			continue
		}
		pageURLs, err := parseRolePage(strings.NewReader(body))
		if err != nil {
			warnings = append(warnings, fmt.Sprintf("fpedia: role listing %s unparseable: %v", rolePage, err))
			continue
		}
		for _, u := range pageURLs {
			if !seen[u] {
				seen[u] = true
				urls = append(urls, u)
			}
		}
	}

	return urls, warnings, nil
}

func (c *Client) scrapePlayer(ctx context.Context, pageURL string) (player.RawRecord, error) {
	body, err := c.get(ctx, pageURL)
	if err != nil {
		return player.RawRecord{}, err
	}
	return parsePlayerPage(strings.NewReader(body), c.currentYear)
}

// get fetches one URL with exponential backoff on transient failures,
// honoring Retry-After when the site throttles us.
func (c *Client) get(ctx context.Context, fullURL string) (string, error) {
	attempt := func() (string, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, fullURL, nil)
		if err != nil {
			return "", backoff.Permanent(fmt.Errorf("build request: %w", err))
		}
		if c.userAgent != "" {
			req.Header.Set("User-Agent", c.userAgent)
		}

		resp, err := c.httpClient.Do(req)
		if err != nil {
			return "", crerr.Mark(fmt.Errorf("send request: %v", err), errFpediaTransient)
		}
		defer func() { _ = resp.Body.Close() }()

		raw, err := io.ReadAll(io.LimitReader(resp.Body, 8<<20))
		if err != nil {
			return "", crerr.Mark(fmt.Errorf("read response body: %v", err), errFpediaTransient)
		}

		switch {
		case resp.StatusCode >= 200 && resp.StatusCode < 300:
			return string(raw), nil
		case resp.StatusCode == http.StatusTooManyRequests:
			if wait := retryAfter(resp.Header); wait > 0 {
				select {
				case <-ctx.Done():
					return "", backoff.Permanent(ctx.Err())
				case <-time.After(wait):
				}
			}
			return "", crerr.Mark(fmt.Errorf("throttled status=429"), errFpediaTransient)
		case resp.StatusCode >= 500:
			return "", crerr.Mark(fmt.Errorf("server status=%d", resp.StatusCode), errFpediaTransient)
		default:
			return "", backoff.Permanent(fmt.Errorf("unexpected status=%d", resp.StatusCode))
		}
	}

	policy := backoff.WithContext(
		backoff.WithMaxRetries(backoff.NewExponentialBackOff(), uint64(c.maxRetries)),
		ctx,
	)
	body, err := backoff.RetryWithData(attempt, policy)
	if err != nil {
		return "", err
	}
	return body, nil
}

func retryAfter(h http.Header) time.Duration {
	raw := strings.TrimSpace(h.Get("Retry-After"))
	if raw == "" {
		return 0
	}
	if secs, err := strconv.Atoi(raw); err == nil && secs > 0 {
		return time.Duration(secs) * time.Second
	}
	return 0
}

// sleepJitter spreads concurrent page fetches so the pool does not hammer
// the site in lockstep.
func (c *Client) sleepJitter(ctx context.Context) {
	if c.requestDelay <= 0 {
		return
	}
	jitter := time.Duration(rand.Int63n(int64(c.requestDelay)))
	select {
	case <-ctx.Done():
	case <-time.After(c.requestDelay/2 + jitter):
	}
}
