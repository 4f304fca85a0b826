package checker

import (
	"context"
	"crypto/tls"
	"fmt"
	"io"
	"net/http"
	"time"

	"golang.org/x/net/html/charset"

	"github.com/khanhnv2901/seca-scan/internal/domain/scan"
	consts "github.com/khanhnv2901/seca-scan/internal/shared/constants"
)

// HTTPFetcher retrieves a single page, following redirects
type HTTPFetcher struct {
	Timeout      time.Duration
	MaxBodyBytes int64
	UserAgent    string

	// Transport replaces the default TLS-verifying transport when set.
	Transport http.RoundTripper
}

// NewHTTPFetcher returns a fetcher with the default timeout and body cap.
func NewHTTPFetcher() *HTTPFetcher {
	return &HTTPFetcher{
		Timeout:      consts.DefaultFetchTimeout,
		MaxBodyBytes: consts.DefaultMaxBodyBytes,
		UserAgent:    consts.DefaultUserAgent,
	}
}

// Fetch issues one GET against target and returns the final response's
// headers and decoded body. Any failure is returned as an error; there are no
// retries.
func (f *HTTPFetcher) Fetch(ctx context.Context, target string) (scan.Artifact, error) {
	timeout := f.Timeout
	if timeout <= 0 {
		timeout = consts.DefaultFetchTimeout
	}

	transport := f.Transport
	if transport == nil {
		transport = &http.Transport{
			Proxy: http.ProxyFromEnvironment,
			TLSClientConfig: &tls.Config{
				InsecureSkipVerify: false,
				MinVersion:         tls.VersionTLS12,
			},
		}
	}

	// CheckRedirect is left nil so the default policy (10 hops) applies
	client := &http.Client{
		Timeout:   timeout,
		Transport: transport,
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return scan.Artifact{}, fmt.Errorf("create request: %w", err)
	}
	if f.UserAgent != "" {
		req.Header.Set("User-Agent", f.UserAgent)
	}

	resp, err := client.Do(req)
	if err != nil {
		return scan.Artifact{}, err
	}
	defer resp.Body.Close()

	limit := f.MaxBodyBytes
	if limit <= 0 {
		limit = consts.DefaultMaxBodyBytes
	}

	reader, err := charset.NewReader(io.LimitReader(resp.Body, limit), resp.Header.Get("Content-Type"))
	if err != nil {
		return scan.Artifact{}, fmt.Errorf("decode body: %w", err)
	}
	body, err := io.ReadAll(reader)
	if err != nil {
		return scan.Artifact{}, fmt.Errorf("read body: %w", err)
	}

	return scan.Artifact{
		Headers: resp.Header.Clone(),
		Body:    string(body),
	}, nil
}
