package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"net"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/khanhnv2901/seca-scan/internal/api/middleware"
	"github.com/khanhnv2901/seca-scan/internal/checker"
	"github.com/khanhnv2901/seca-scan/internal/domain/scan"
	"github.com/khanhnv2901/seca-scan/internal/history"
	consts "github.com/khanhnv2901/seca-scan/internal/shared/constants"
	secerrors "github.com/khanhnv2901/seca-scan/internal/shared/errors"
)

// ScanRequest is the POST /scan payload
type ScanRequest struct {
	URL string `json:"url"`
}

// HistoryResponse wraps GET /history output
type HistoryResponse struct {
	History []history.Record `json:"history"`
}

type ScanService interface {
	Scan(ctx context.Context, target string) scan.Result
}

type HistoryStore interface {
	Append(result scan.Result) history.Record
	List() []history.Record
	Subscribe() (chan history.Record, func())
}

type Config struct {
	Scanner           ScanService
	History           HistoryStore
	Logger            *zap.Logger
	CORSOrigins       []string // Allowed CORS origins (empty = allow all)
	ScanRateLimit     int      // POST /scan requests per minute per client (0 = disabled)
	ScanRateBurst     int      // Burst size for the scan limiter (0 = same as ScanRateLimit)
	TrustProxyHeaders bool     // Take the client IP from X-Forwarded-For
}

type Server struct {
	cfg      Config
	mux      *http.ServeMux
	limiters *rateLimiterMap
}

func NewServer(cfg Config) *Server {
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}
	srv := &Server{
		cfg:      cfg,
		mux:      http.NewServeMux(),
		limiters: newRateLimiterMap(),
	}
	srv.routes()
	return srv
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	// Middleware chain: RequestID -> Logging -> CORS -> Handler
	handler := middleware.RequestID(s.withLogging(s.withCORS(s.mux)))
	handler.ServeHTTP(w, r)
}

func (s *Server) routes() {
	scanHandler := s.withRateLimit(http.HandlerFunc(s.handleScan))

	s.mux.Handle("/api/v1/scan", scanHandler)
	s.mux.HandleFunc("/api/v1/history", s.handleHistory)
	s.mux.HandleFunc("/api/v1/history-stream", s.handleHistoryStream)
	s.mux.HandleFunc("/api/v1/health", s.handleHealth)

	// Unversioned routes used by the web front-end
	s.mux.Handle("/scan", scanHandler)
	s.mux.HandleFunc("/history", s.handleHistory)
	s.mux.HandleFunc("/history-stream", s.handleHistoryStream)
	s.mux.HandleFunc("/health", s.handleHealth)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.methodNotAllowed(w, r)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleScan(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		s.methodNotAllowed(w, r)
		return
	}
	if s.cfg.Scanner == nil || s.cfg.History == nil {
		s.writeError(w, r, http.StatusInternalServerError, errors.New("scan service not configured"))
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, consts.MaxRequestBodyBytes)
	var req ScanRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, r, http.StatusBadRequest, fmt.Errorf("%w: %v", secerrors.ErrInvalidRequest, err))
		return
	}

	target := strings.TrimSpace(req.URL)
	if _, err := checker.ValidateScanTarget(target); err != nil {
		s.writeError(w, r, http.StatusBadRequest, err)
		return
	}

	s.requestLogger(r).Info("scan_requested",
		zap.String("url", target),
		zap.String("client_ip", s.clientIP(r)),
	)

	// A client hanging up mid-scan should not abort the fetch; the result
	// still lands in history.
	result := s.cfg.Scanner.Scan(context.WithoutCancel(r.Context()), target)
	record := s.cfg.History.Append(result)

	writeJSON(w, http.StatusOK, record)
}

func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.methodNotAllowed(w, r)
		return
	}
	if s.cfg.History == nil {
		writeJSON(w, http.StatusOK, HistoryResponse{History: []history.Record{}})
		return
	}
	writeJSON(w, http.StatusOK, HistoryResponse{History: s.cfg.History.List()})
}

func (s *Server) handleHistoryStream(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.methodNotAllowed(w, r)
		return
	}
	if s.cfg.History == nil {
		s.writeError(w, r, http.StatusNotFound, errors.New("history not available"))
		return
	}
	flusher, ok := w.(http.Flusher)
	if !ok {
		s.writeError(w, r, http.StatusInternalServerError, errors.New("streaming unsupported"))
		return
	}
	// Subscribe before the headers go out so a client that has seen the
	// response cannot miss the next record.
	updates, unsubscribe := s.cfg.History.Subscribe()
	defer unsubscribe()

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	ctx := r.Context()
	for {
		select {
		case rec, ok := <-updates:
			if !ok {
				return
			}
			payload, err := json.Marshal(rec)
			if err != nil {
				s.logger().Error("failed to marshal history record", zap.Error(err))
				continue
			}
			if !s.writeStreamChunk(w, []byte("event: scan\n")) {
				return
			}
			if !s.writeStreamChunk(w, []byte("data: ")) {
				return
			}
			if !s.writeStreamChunk(w, payload) {
				return
			}
			if !s.writeStreamChunk(w, []byte("\n\n")) {
				return
			}
			flusher.Flush()
		case <-ctx.Done():
			return
		}
	}
}

func (s *Server) withRateLimit(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// OPTIONS preflights stop at the CORS layer and never consume tokens
		if s.cfg.ScanRateLimit <= 0 {
			next.ServeHTTP(w, r)
			return
		}

		burst := s.cfg.ScanRateBurst
		if burst <= 0 {
			burst = s.cfg.ScanRateLimit
		}

		clientIP := s.clientIP(r)
		limiter := s.limiters.getLimiter(clientIP, perMinute(s.cfg.ScanRateLimit), burst)

		if !limiter.Allow() {
			s.requestLogger(r).Warn("rate_limit_exceeded",
				zap.String("client_ip", clientIP),
			)
			retryAfter := int(math.Ceil(60 / float64(s.cfg.ScanRateLimit)))
			w.Header().Set("Retry-After", strconv.Itoa(retryAfter))
			s.writeError(w, r, http.StatusTooManyRequests,
				fmt.Errorf("%w: %d per 1 minute", secerrors.ErrRateLimitExceeded, s.cfg.ScanRateLimit))
			return
		}

		next.ServeHTTP(w, r)
	})
}

// clientIP returns the host part of the remote address, or the first
// X-Forwarded-For hop when proxy headers are trusted.
func (s *Server) clientIP(r *http.Request) string {
	if s.cfg.TrustProxyHeaders {
		if forwarded := r.Header.Get("X-Forwarded-For"); forwarded != "" {
			first := forwarded
			if idx := strings.Index(forwarded, ","); idx >= 0 {
				first = forwarded[:idx]
			}
			if ip := strings.TrimSpace(first); ip != "" {
				return ip
			}
		}
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

func (s *Server) withCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		origin := r.Header.Get("Origin")

		allowOrigin := "*"
		if len(s.cfg.CORSOrigins) > 0 {
			allowOrigin = ""
			for _, allowedOrigin := range s.cfg.CORSOrigins {
				if allowedOrigin == origin || allowedOrigin == "*" {
					allowOrigin = origin
					break
				}
			}
		}

		if allowOrigin != "" {
			w.Header().Set("Access-Control-Allow-Origin", allowOrigin)
			w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
			w.Header().Set("Access-Control-Allow-Headers", "Content-Type, X-Request-ID")
			w.Header().Set("Access-Control-Max-Age", "3600")
			if allowOrigin != "*" {
				w.Header().Add("Vary", "Origin")
			}
		}

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}

		next.ServeHTTP(w, r)
	})
}

func (s *Server) withLogging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		lrw := &loggingResponseWriter{ResponseWriter: w, statusCode: http.StatusOK}
		next.ServeHTTP(lrw, r)

		requestID := middleware.GetRequestID(r.Context())
		s.logger().Info("http_request",
			zap.String("request_id", requestID),
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.String("remote_addr", r.RemoteAddr),
			zap.Int("status", lrw.statusCode),
			zap.Duration("duration", time.Since(start)),
			zap.Int64("bytes", lrw.bytesWritten),
		)
	})
}

// loggingResponseWriter wraps http.ResponseWriter to capture status code and bytes written
type loggingResponseWriter struct {
	http.ResponseWriter
	statusCode   int
	bytesWritten int64
}

func (lrw *loggingResponseWriter) WriteHeader(code int) {
	lrw.statusCode = code
	lrw.ResponseWriter.WriteHeader(code)
}

func (lrw *loggingResponseWriter) Write(b []byte) (int, error) {
	n, err := lrw.ResponseWriter.Write(b)
	lrw.bytesWritten += int64(n)
	return n, err
}

// Flush lets the history stream push events through the logging wrapper.
func (lrw *loggingResponseWriter) Flush() {
	if f, ok := lrw.ResponseWriter.(http.Flusher); ok {
		f.Flush()
	}
}

func writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func (s *Server) writeError(w http.ResponseWriter, r *http.Request, status int, err error) {
	msg := err.Error()

	// 5xx details stay in the server log
	if status >= 500 {
		s.requestLogger(r).Error("internal_server_error",
			zap.Error(err),
			zap.Int("status", status),
		)
		msg = "internal server error"
	}

	// "detail" is the field the web front-end reads
	writeJSON(w, status, map[string]string{"error": msg, "detail": msg})
}

func (s *Server) logger() *zap.Logger {
	if s.cfg.Logger == nil {
		return zap.NewNop()
	}
	return s.cfg.Logger
}

// requestLogger creates a logger with request context (request ID, method, path)
func (s *Server) requestLogger(r *http.Request) *zap.Logger {
	requestID := middleware.GetRequestID(r.Context())
	return s.logger().With(
		zap.String("request_id", requestID),
		zap.String("method", r.Method),
		zap.String("path", r.URL.Path),
	)
}

func (s *Server) methodNotAllowed(w http.ResponseWriter, r *http.Request) {
	s.writeError(w, r, http.StatusMethodNotAllowed, errors.New("method not allowed"))
}

func (s *Server) writeStreamChunk(w http.ResponseWriter, data []byte) bool {
	if _, err := w.Write(data); err != nil {
		s.logger().Error("failed to write stream chunk", zap.Error(err))
		return false
	}
	return true
}

func perMinute(n int) rate.Limit {
	return rate.Every(time.Minute / time.Duration(n))
}

// rateLimiterMap keeps one token bucket per client and evicts idle ones
// during lookups.
type rateLimiterMap struct {
	mu        sync.Mutex
	limiters  map[string]*clientLimiter
	lastSweep time.Time
	idleTTL   time.Duration
	now       func() time.Time
}

type clientLimiter struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

func newRateLimiterMap() *rateLimiterMap {
	return &rateLimiterMap{
		limiters: make(map[string]*clientLimiter),
		idleTTL:  5 * time.Minute,
		now:      time.Now,
	}
}

func (m *rateLimiterMap) getLimiter(client string, limit rate.Limit, burst int) *rate.Limiter {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now()
	if now.Sub(m.lastSweep) > time.Minute {
		m.sweep(now)
	}

	cl, exists := m.limiters[client]
	if !exists {
		cl = &clientLimiter{limiter: rate.NewLimiter(limit, burst)}
		m.limiters[client] = cl
	}
	cl.lastSeen = now
	return cl.limiter
}

// sweep drops limiters idle longer than idleTTL; callers hold m.mu.
func (m *rateLimiterMap) sweep(now time.Time) {
	for client, cl := range m.limiters {
		if now.Sub(cl.lastSeen) > m.idleTTL {
			delete(m.limiters, client)
		}
	}
	m.lastSweep = now
}
