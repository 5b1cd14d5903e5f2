// Package platform fetches repository popularity signals from GitHub.
package platform

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/google/go-github/v62/github"
	"github.com/huangsam/repostats/internal/contract"
	"github.com/huangsam/repostats/schema"
	"golang.org/x/oauth2"
	"golang.org/x/time/rate"
)

// DefaultRequestInterval is the minimum delay between two API requests.
const DefaultRequestInterval = 850 * time.Millisecond

// Client wraps the GitHub API client with request pacing and retries.
type Client struct {
	client  *github.Client
	limiter *rate.Limiter
	retry   contract.RetryPolicy
}

var _ contract.PlatformClient = &Client{}

// Option configures a Client.
type Option func(*Client)

// WithRequestInterval overrides the delay between requests. Zero disables pacing.
func WithRequestInterval(d time.Duration) Option {
	return func(c *Client) {
		if d <= 0 {
			c.limiter = rate.NewLimiter(rate.Inf, 1)
			return
		}
		c.limiter = rate.NewLimiter(rate.Every(d), 1)
	}
}

// WithRetryPolicy overrides the retry policy of metadata requests.
func WithRetryPolicy(p contract.RetryPolicy) Option {
	return func(c *Client) { c.retry = p }
}

// WithBaseURL points the client at a GitHub Enterprise or test server.
func WithBaseURL(baseURL string) Option {
	return func(c *Client) {
		if baseURL == "" {
			return
		}
		if !strings.HasSuffix(baseURL, "/") {
			baseURL += "/"
		}
		if enterprise, err := c.client.WithEnterpriseURLs(baseURL, baseURL); err == nil {
			c.client = enterprise
		} else {
			contract.Logger.WithError(err).WithField("url", baseURL).Warn("Ignoring invalid GitHub API URL")
		}
	}
}

// NewClient creates a GitHub client. An empty token makes anonymous requests.
func NewClient(token string, opts ...Option) *Client {
	var httpClient *http.Client
	if token != "" {
		ts := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token})
		httpClient = oauth2.NewClient(context.Background(), ts)
	}
	c := &Client{
		client:  github.NewClient(httpClient),
		limiter: rate.NewLimiter(rate.Every(DefaultRequestInterval), 1),
		retry:   contract.DefaultRetryPolicy,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// GetRepoMetrics fetches the repository metadata, retrying transient failures.
// Client errors other than rate limiting are not retried.
func (c *Client) GetRepoMetrics(ctx context.Context, ref schema.RepoRef) (schema.PlatformMetrics, error) {
	metrics, err := contract.WithRetry(ctx, c.retry, func(ctx context.Context) (schema.PlatformMetrics, error) {
		if err := c.limiter.Wait(ctx); err != nil {
			return schema.PlatformMetrics{}, contract.Permanent(fmt.Errorf("rate limiter: %w", err))
		}

		repo, resp, err := c.client.Repositories.Get(ctx, ref.Owner, ref.Name)
		if err != nil {
			if isPermanent(resp, err) {
				return schema.PlatformMetrics{}, contract.Permanent(err)
			}
			contract.Logger.WithError(err).WithField("repo", ref.String()).Debug("Retrying platform request")
			return schema.PlatformMetrics{}, err
		}

		return schema.PlatformMetrics{
			PrimaryLanguage: repo.GetLanguage(),
			Stars:           repo.GetStargazersCount(),
			Forks:           repo.GetForksCount(),
			Watchers:        repo.GetWatchersCount(),
			OpenIssues:      repo.GetOpenIssuesCount(),
		}, nil
	})
	if err != nil {
		return schema.PlatformMetrics{}, fmt.Errorf("fetch repository %s: %w", ref, err)
	}
	return metrics, nil
}

// isPermanent reports whether a failed request cannot succeed on retry.
func isPermanent(resp *github.Response, err error) bool {
	var rateErr *github.RateLimitError
	var abuseErr *github.AbuseRateLimitError
	if errors.As(err, &rateErr) || errors.As(err, &abuseErr) {
		return false
	}
	if resp == nil {
		return false
	}
	code := resp.StatusCode
	return code >= 400 && code < 500 && code != http.StatusTooManyRequests && code != http.StatusRequestTimeout
}
