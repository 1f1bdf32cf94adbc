// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Xyne Contributors

package vespa

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/samber/oops"
	"github.com/sethvargo/go-retry"
)

// Client talks to the Vespa query and document APIs. It is safe for
// concurrent use; it holds no mutable state beyond the http.Client.
type Client struct {
	cfg     Config
	http    *http.Client
	logger  *slog.Logger
	metrics *Metrics
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) { c.http = h }
}

// WithLogger sets the client logger.
func WithLogger(l *slog.Logger) Option {
	return func(c *Client) { c.logger = l }
}

// WithMetrics attaches Prometheus metrics.
func WithMetrics(m *Metrics) Option {
	return func(c *Client) { c.metrics = m }
}

// NewClient creates a Client for the endpoints in cfg.
func NewClient(cfg Config, opts ...Option) *Client {
	c := &Client{
		cfg:    cfg,
		http:   &http.Client{Timeout: 60 * time.Second},
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Config returns the client configuration.
func (c *Client) Config() Config { return c.cfg }

// Search executes a prepared query payload. Debug-mode payload fields are
// applied here so callers never carry them.
func (c *Client) Search(ctx context.Context, payload Payload) (*SearchResponse, error) {
	body := payload.Clone()
	body.SetDefault(KeyTimeout, DefaultTimeout)
	if c.cfg.IsDebugMode {
		body.SetDefault(KeyRankingListFeatures, true)
		body.SetDefault(KeyTracelevel, 4)
	}

	var out SearchResponse
	if err := c.do(ctx, "search", http.MethodPost, c.queryURL(), body, &out); err != nil {
		return nil, oops.Code(CodeSearchFailed).
			With("yql", body[KeyYQL]).
			Wrap(err)
	}
	if len(out.Root.Errors) > 0 && len(out.Root.Children) == 0 {
		first := out.Root.Errors[0]
		return nil, oops.Code(CodeSearchFailed).
			With("yql", body[KeyYQL]).
			With("backendCode", first.Code).
			Errorf("vespa query failed: %s", first.Summary)
	}
	return &out, nil
}

// Insert writes a single document, retrying throttle rejections with
// exponential backoff. Any other error is fatal on first occurrence.
func (c *Client) Insert(ctx context.Context, schema, docID string, fields map[string]any) error {
	backoff := retry.WithMaxRetries(
		uint64(c.cfg.MaxRetryAttempts),
		retry.NewExponential(c.cfg.RetryDelay),
	)
	attempts := 0
	err := retry.Do(ctx, backoff, func(ctx context.Context) error {
		attempts++
		err := c.insertOnce(ctx, schema, docID, fields)
		if err == nil {
			return nil
		}
		if IsThrottled(err) {
			c.logger.Warn("vespa feed throttled, backing off",
				"schema", schema, "docId", docID, "attempt", attempts)
			return retry.RetryableError(err)
		}
		return err
	})
	if err != nil {
		return oops.Code(CodeInsertFailed).
			With("schema", schema).
			With("docId", docID).
			With("attempts", attempts).
			Wrapf(err, "insert document %q into %q", docID, schema)
	}
	return nil
}

func (c *Client) insertOnce(ctx context.Context, schema, docID string, fields map[string]any) error {
	body := map[string]any{"fields": fields}
	return c.do(ctx, "insert", http.MethodPost, c.documentURL(schema, docID), body, nil)
}

// GetDocument fetches a document by id. A missing document is an error;
// use GetDocumentOrNil when absence is expected.
func (c *Client) GetDocument(ctx context.Context, schema, docID string) (*Document, error) {
	var out Document
	err := c.do(ctx, "get", http.MethodGet, c.documentURL(schema, docID), nil, &out)
	if err != nil {
		if IsNotFound(err) {
			return nil, oops.Code(CodeNotFound).
				With("schema", schema).
				With("docId", docID).
				Wrap(ErrNotFound)
		}
		return nil, oops.Code(CodeTransport).
			With("schema", schema).
			With("docId", docID).
			Wrap(err)
	}
	return &out, nil
}

// GetDocumentOrNil fetches a document by id, converting not-found into a
// nil result.
func (c *Client) GetDocumentOrNil(ctx context.Context, schema, docID string) (*Document, error) {
	doc, err := c.GetDocument(ctx, schema, docID)
	if err != nil {
		if IsNotFound(err) {
			return nil, nil
		}
		return nil, err
	}
	return doc, nil
}

// UpdateDocument assigns the given field values on an existing document.
func (c *Client) UpdateDocument(ctx context.Context, schema, docID string, fields map[string]any) error {
	assigns := make(map[string]any, len(fields))
	for name, value := range fields {
		assigns[name] = map[string]any{"assign": value}
	}
	body := map[string]any{"fields": assigns}
	if err := c.do(ctx, "update", http.MethodPut, c.documentURL(schema, docID), body, nil); err != nil {
		return oops.Code(CodeInsertFailed).
			With("schema", schema).
			With("docId", docID).
			Wrapf(err, "update document %q in %q", docID, schema)
	}
	return nil
}

// DeleteDocument removes a document by id. Deleting a missing document is
// not an error; Vespa treats it as a no-op.
func (c *Client) DeleteDocument(ctx context.Context, schema, docID string) error {
	if err := c.do(ctx, "delete", http.MethodDelete, c.documentURL(schema, docID), nil, nil); err != nil {
		return oops.Code(CodeInsertFailed).
			With("schema", schema).
			With("docId", docID).
			Wrapf(err, "delete document %q from %q", docID, schema)
	}
	return nil
}

func (c *Client) queryURL() string {
	return strings.TrimRight(c.cfg.QueryEndpoint, "/") + "/search/"
}

func (c *Client) documentURL(schema, docID string) string {
	return strings.TrimRight(c.cfg.FeedEndpoint, "/") +
		"/document/v1/" + url.PathEscape(c.cfg.Namespace) +
		"/" + url.PathEscape(schema) +
		"/docid/" + url.PathEscape(docID)
}

// do performs one HTTP round trip, decoding a 2xx JSON body into out and
// returning a *StatusError for anything else.
func (c *Client) do(ctx context.Context, op, method, u string, body, out any) error {
	var reader io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return oops.Code(CodeTransport).With("operation", op).Wrap(err)
		}
		reader = bytes.NewReader(encoded)
	}
	req, err := http.NewRequestWithContext(ctx, method, u, reader)
	if err != nil {
		return oops.Code(CodeTransport).With("operation", op).Wrap(err)
	}
	req.Header.Set("Content-Type", "application/json")

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		c.metrics.observe(op, 0, time.Since(start))
		return oops.Code(CodeTransport).With("operation", op).Wrap(err)
	}
	defer resp.Body.Close()
	c.metrics.observe(op, resp.StatusCode, time.Since(start))

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return oops.Code(CodeTransport).With("operation", op).Wrap(err)
	}
	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return &StatusError{Op: op, Status: resp.StatusCode, Body: truncate(string(data), 512)}
	}
	if out != nil {
		if err := json.Unmarshal(data, out); err != nil {
			return oops.Code(CodeTransport).
				With("operation", op).
				Wrapf(err, "decode response body")
		}
	}
	return nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
