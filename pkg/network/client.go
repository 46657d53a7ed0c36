package network

import (
	"context"
	"crypto/tls"
	"fmt"
	"io"
	"math"
	"net"
	"net/http"
	"net/url"
	"time"

	"github.com/lcalzada-xor/minime/pkg/config"
)

// MaxScriptSize caps the body read from a remote script.
const MaxScriptSize = 32 << 20

// Client wraps http.Client with retry logic and rate limiting.
type Client struct {
	HTTPClient  *http.Client
	RateLimiter *RateLimiter
	UserAgent   string
	MaxRetries  int
}

// Script is a fetched remote source.
type Script struct {
	URL         string
	ContentType string
	Body        []byte
}

// NewClient creates a new Client with connection pooling sized for
// concurrency and optional rate limiting.
// rateLimit: requests per second (0 = unlimited)
func NewClient(timeout time.Duration, proxyURL string, concurrency int, rateLimit float64, insecure bool) *Client {
	transport := &http.Transport{
		TLSClientConfig: &tls.Config{InsecureSkipVerify: insecure},
		DialContext: (&net.Dialer{
			Timeout:   timeout,
			KeepAlive: 30 * time.Second,
		}).DialContext,

		MaxIdleConns:        concurrency * 2,
		MaxIdleConnsPerHost: max(concurrency/2, 10),
		MaxConnsPerHost:     concurrency,
		IdleConnTimeout:     30 * time.Second,

		TLSHandshakeTimeout:   10 * time.Second,
		ResponseHeaderTimeout: timeout,
		ExpectContinueTimeout: 1 * time.Second,
	}

	if proxyURL != "" {
		if pURL, err := url.Parse(proxyURL); err == nil {
			transport.Proxy = http.ProxyURL(pURL)
		}
	}

	return &Client{
		HTTPClient: &http.Client{
			Transport: transport,
			Timeout:   timeout,
		},
		RateLimiter: NewRateLimiter(rateLimit),
		UserAgent:   config.DefaultUserAgent,
		MaxRetries:  3,
	}
}

// Do sends an HTTP request with automatic retries and rate limiting.
// Server errors and transport failures are retried with exponential
// backoff; 4xx responses are returned as is.
func (c *Client) Do(req *http.Request) (*http.Response, error) {
	if err := c.RateLimiter.Wait(req.Context()); err != nil {
		return nil, err
	}

	var resp *http.Response
	var err error
	for i := 0; i <= c.MaxRetries; i++ {
		if i > 0 {
			// 100ms, 200ms, 400ms
			backoff := time.Duration(math.Pow(2, float64(i-1))*100) * time.Millisecond
			select {
			case <-req.Context().Done():
				return nil, req.Context().Err()
			case <-time.After(backoff):
			}
		}

		resp, err = c.HTTPClient.Do(req)
		if err == nil && resp.StatusCode < 500 {
			return resp, nil
		}
		if resp != nil && i < c.MaxRetries {
			resp.Body.Close()
		}
	}

	if err != nil {
		return nil, fmt.Errorf("request failed after %d retries: %w", c.MaxRetries, err)
	}
	return resp, nil
}

// Fetch downloads a script. Any status other than 200 is an error.
func (c *Client) Fetch(ctx context.Context, rawURL string) (*Script, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, err
	}
	if c.UserAgent != "" {
		req.Header.Set("User-Agent", c.UserAgent)
	}

	resp, err := c.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w", rawURL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetch %s: %s", rawURL, resp.Status)
	}
	body, err := io.ReadAll(io.LimitReader(resp.Body, MaxScriptSize+1))
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w", rawURL, err)
	}
	if len(body) > MaxScriptSize {
		return nil, fmt.Errorf("fetch %s: script larger than %d bytes", rawURL, MaxScriptSize)
	}
	return &Script{
		URL:         resp.Request.URL.String(),
		ContentType: resp.Header.Get("Content-Type"),
		Body:        body,
	}, nil
}
