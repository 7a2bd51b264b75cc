// Package source fetches raw JSON from a file path or URL and decodes it
// into a typed value.
package source

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/Vostanis/etl-io/pkg/errors"
	"go.uber.org/zap"
)

// DefaultUserAgent is sent with every HTTP extraction unless overridden.
const DefaultUserAgent = "example@example.com"

// Reader fetches whole payloads from files or HTTP endpoints. It keeps no
// state between calls and is safe for concurrent use.
type Reader struct {
	client    *http.Client
	userAgent string
	log       *zap.Logger
}

// Option configures a Reader.
type Option func(r *Reader)

// WithHTTPClient sets the client used for URL locators.
func WithHTTPClient(client *http.Client) Option {
	return func(r *Reader) {
		if client != nil {
			r.client = client
		}
	}
}

// WithUserAgent overrides the User-Agent header value.
func WithUserAgent(userAgent string) Option {
	return func(r *Reader) {
		if userAgent != "" {
			r.userAgent = userAgent
		}
	}
}

// WithLogger sets the logger.
func WithLogger(log *zap.Logger) Option {
	return func(r *Reader) {
		if log != nil {
			r.log = log
		}
	}
}

// NewReader creates a Reader.
func NewReader(opts ...Option) *Reader {
	r := &Reader{
		client:    http.DefaultClient,
		userAgent: DefaultUserAgent,
		log:       zap.NewNop(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// IsURL reports whether locator is dispatched as an HTTP request.
func IsURL(locator string) bool {
	return strings.HasPrefix(locator, "http")
}

// Read returns the full payload behind locator.
func (r *Reader) Read(ctx context.Context, locator string) ([]byte, error) {
	if IsURL(locator) {
		return r.readURL(ctx, locator)
	}
	return r.readFile(ctx, locator)
}

func (r *Reader) readURL(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, errors.Wrap(err, errors.TransportFailure, "could not build request for %s", url)
	}
	req.Header.Set("User-Agent", r.userAgent)

	r.log.Debug("fetching url", zap.String("url", url))
	resp, err := r.client.Do(req)
	if err != nil {
		return nil, errors.Wrap(err, errors.TransportFailure, "could not fetch url %s", url)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, errors.Wrap(err, errors.TransportFailure, "could not read response from %s", url)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, errors.New(errors.TransportFailure, "unexpected status %d from %s", resp.StatusCode, url)
	}
	r.log.Debug("fetched url", zap.String("url", url), zap.Int("bytes", len(body)))
	return body, nil
}

func (r *Reader) readFile(ctx context.Context, path string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, errors.Wrap(err, errors.IOFailure, "could not open file %s", path)
	}
	f, err := os.Open(filepath.Clean(path))
	if err != nil {
		return nil, errors.Wrap(err, errors.IOFailure, "could not open file %s", path)
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		return nil, errors.Wrap(err, errors.IOFailure, "could not read file %s", path)
	}
	r.log.Debug("read file", zap.String("path", path), zap.Int("bytes", len(data)))
	return data, nil
}

// Decode parses a JSON payload into I.
func Decode[I any](data []byte) (I, error) {
	var v I
	if err := json.Unmarshal(data, &v); err != nil {
		return v, errors.Wrap(err, errors.FormatFailure, "could not convert source to %T", v)
	}
	return v, nil
}

// Fetch reads locator with r and decodes the payload into I. A nil reader
// uses a default one.
func Fetch[I any](ctx context.Context, r *Reader, locator string) (I, error) {
	if r == nil {
		r = NewReader()
	}
	data, err := r.Read(ctx, locator)
	if err != nil {
		var zero I
		return zero, err
	}
	v, err := Decode[I](data)
	if err != nil {
		return v, errors.Wrap(err, errors.FormatFailure, "%s", describe(locator))
	}
	return v, nil
}

func describe(locator string) string {
	if IsURL(locator) {
		return fmt.Sprintf("decode response from %s", locator)
	}
	return fmt.Sprintf("decode file %s", locator)
}
