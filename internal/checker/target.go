package checker

import (
	"net"
	"net/url"
	"strings"

	secerrors "github.com/khanhnv2901/seca-scan/internal/shared/errors"
)

// TargetInfo contains parsed target information
type TargetInfo struct {
	Original string // Original target string
	Scheme   string // http or https after normalization
	Host     string // Hostname without port or brackets
	Port     string // Port if specified
	FullURL  string // Normalized URL handed to the scanner
}

// ParseTarget parses a loosely written target, adding http:// when the input
// has no scheme. It handles inputs such as:
//   - example.com
//   - example.com:8080/login
//   - https://example.com/path
func ParseTarget(target string) *TargetInfo {
	trimmed := strings.TrimSpace(target)
	info := &TargetInfo{Original: target}

	raw := trimmed
	if !strings.Contains(raw, "://") {
		raw = "http://" + raw
	}

	parsed, err := url.Parse(raw)
	if err != nil {
		info.FullURL = raw
		return info
	}

	info.Scheme = strings.ToLower(parsed.Scheme)
	info.Host = parsed.Hostname()
	info.Port = parsed.Port()
	info.FullURL = parsed.String()
	return info
}

// NormalizeHTTPTarget returns target as a full URL with a scheme.
func NormalizeHTTPTarget(target string) string {
	return ParseTarget(target).FullURL
}

// ValidateScanTarget admits only absolute http(s) URLs whose host is not a
// loopback name or address. No DNS lookups are made.
func ValidateScanTarget(target string) (*url.URL, error) {
	if strings.TrimSpace(target) == "" {
		return nil, &secerrors.TargetError{Err: secerrors.ErrEmptyTarget}
	}

	parsed, err := url.Parse(strings.TrimSpace(target))
	if err != nil {
		return nil, &secerrors.TargetError{Target: target, Err: secerrors.ErrInvalidTarget}
	}

	switch strings.ToLower(parsed.Scheme) {
	case "http", "https":
	default:
		return nil, &secerrors.TargetError{Target: target, Err: secerrors.ErrUnsupportedScheme}
	}

	host := parsed.Hostname()
	if host == "" {
		return nil, &secerrors.TargetError{Target: target, Err: secerrors.ErrMissingHost}
	}
	if isLoopbackHost(host) {
		return nil, &secerrors.TargetError{Target: target, Err: secerrors.ErrLoopbackTarget}
	}

	return parsed, nil
}

func isLoopbackHost(host string) bool {
	h := strings.TrimSuffix(strings.ToLower(host), ".")
	if h == "localhost" || strings.HasSuffix(h, ".localhost") {
		return true
	}
	// strip an IPv6 zone before parsing
	if idx := strings.Index(h, "%"); idx >= 0 {
		h = h[:idx]
	}
	if ip := net.ParseIP(h); ip != nil {
		return ip.IsLoopback()
	}
	return false
}
