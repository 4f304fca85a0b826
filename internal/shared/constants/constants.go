package constants

import "time"

const (
	// DefaultFetchTimeout bounds the single outbound request of a scan.
	DefaultFetchTimeout = 10 * time.Second
	// DefaultMaxBodyBytes caps how much of a response body is analyzed.
	DefaultMaxBodyBytes int64 = 10 << 20
	// DefaultUserAgent is sent with every fetch.
	DefaultUserAgent = "seca-scan/1.0 (+authorized testing only)"
)

const (
	// DefaultScanRatePerMinute is the per-client allowance for POST /scan.
	DefaultScanRatePerMinute = 5
	// MaxRequestBodyBytes limits API request payloads.
	MaxRequestBodyBytes = 1 << 20
)

const (
	// DefaultLogFile receives the JSON request log.
	DefaultLogFile = "scan_logs.log"
)
