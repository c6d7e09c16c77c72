package solr

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/oauth2"
	"golang.org/x/time/rate"

	"github.com/custodia-labs/schemasync/internal/core/ports/driven"
	"github.com/custodia-labs/schemasync/internal/logger"
)

// Ensure Transport implements the interface.
var _ driven.SchemaTransport = (*Transport)(nil)

// Default configuration values.
const (
	DefaultBaseURL = "http://localhost:8983/solr"
	DefaultTimeout = 30 * time.Second

	// maxResponseBytes caps how much of a response body is read.
	maxResponseBytes = 16 << 20
)

// RequestIDHeader carries a per-request identifier for log correlation.
const RequestIDHeader = "X-Request-ID"

// Config holds configuration for the Solr transport.
type Config struct {
	// BaseURL is the node's base URL including the context path
	// (default: http://localhost:8983/solr).
	BaseURL string

	// Username and Password enable HTTP basic authentication.
	Username string
	Password string

	// Token enables bearer authentication. Takes precedence over basic auth.
	Token string

	// Timeout is the per-request timeout (default: 30s).
	Timeout time.Duration

	// RequestsPerSecond limits the request rate. Zero disables limiting.
	RequestsPerSecond float64

	// HTTPClient overrides the client used for requests. Token is ignored when set.
	HTTPClient *http.Client
}

// Transport sends schema requests to a Solr node.
type Transport struct {
	client   *http.Client
	baseURL  *url.URL
	username string
	password string
	limiter  *rate.Limiter
}

// New creates a Solr transport.
func New(cfg Config) (*Transport, error) {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}

	base, err := url.Parse(strings.TrimRight(cfg.BaseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("parse base url: %w", err)
	}
	if base.Scheme != "http" && base.Scheme != "https" {
		return nil, fmt.Errorf("base url %q: scheme must be http or https", cfg.BaseURL)
	}
	if base.Host == "" {
		return nil, fmt.Errorf("base url %q: missing host", cfg.BaseURL)
	}

	client := cfg.HTTPClient
	switch {
	case client != nil:
	case cfg.Token != "":
		ts := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: cfg.Token})
		client = oauth2.NewClient(context.Background(), ts)
		client.Timeout = cfg.Timeout
	default:
		client = &http.Client{Timeout: cfg.Timeout}
	}

	t := &Transport{
		client:  client,
		baseURL: base,
	}
	if cfg.Token == "" {
		t.username = cfg.Username
		t.password = cfg.Password
	}
	if cfg.RequestsPerSecond > 0 {
		t.limiter = rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), 1)
	}
	return t, nil
}

// Read issues GET {base}/{collection}/schema{path}?wt=json.
func (t *Transport) Read(ctx context.Context, collection, path string) (*driven.SchemaResponse, error) {
	target := t.endpoint(collection, path)
	q := target.Query()
	q.Set("wt", "json")
	target.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	return t.do(ctx, req)
}

// Update issues POST {base}/{collection}/schema with a JSON command payload.
func (t *Transport) Update(ctx context.Context, collection string, payload []byte) (*driven.SchemaResponse, error) {
	target := t.endpoint(collection, "")

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, target.String(), bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	return t.do(ctx, req)
}

// Close releases idle connections.
func (t *Transport) Close() error {
	t.client.CloseIdleConnections()
	return nil
}

func (t *Transport) endpoint(collection, path string) *url.URL {
	u := *t.baseURL
	u.Path = u.Path + "/" + collection + "/schema" + path
	u.RawPath = ""
	return &u
}

func (t *Transport) do(ctx context.Context, req *http.Request) (*driven.SchemaResponse, error) {
	if t.limiter != nil {
		if err := t.limiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("rate limit: %w", err)
		}
	}

	req.Header.Set(RequestIDHeader, uuid.New().String())
	if t.username != "" {
		req.SetBasicAuth(t.username, t.password)
	}

	start := time.Now()
	resp, err := t.client.Do(req)
	if err != nil {
		logger.Request(req.Method, req.URL.Path, 0, time.Since(start))
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		return nil, fmt.Errorf("send request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	logger.Request(req.Method, req.URL.Path, resp.StatusCode, time.Since(start))
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden {
		logger.Warn("Solr rejected credentials for %s (status %d)", req.URL.Path, resp.StatusCode)
	}

	return &driven.SchemaResponse{StatusCode: resp.StatusCode, Body: body}, nil
}

// IsTimeout reports whether err came from a request timeout.
func IsTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr interface{ Timeout() bool }
	return errors.As(err, &netErr) && netErr.Timeout()
}
