// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Maxim Khalin

package httpx

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/mkhalin/family-expenses/internal/config"
	"github.com/mkhalin/family-expenses/internal/logger"
)

// Response is the transport outcome shared between all callers
// coalesced onto one attempt. The body is fully read, so the response
// can be handed to any number of waiters.
type Response struct {
	StatusCode int
	Header     http.Header
	Body       []byte
}

func (r *Response) IsSuccess() bool {
	return r.StatusCode >= http.StatusOK && r.StatusCode < http.StatusMultipleChoices
}

// Client is the resilient outbound HTTP client. Every request goes
// through the retry policy and the de-duplication table.
type Client struct {
	rest  *resty.Client
	dedup *DedupTable

	logger *logger.Logger
}

// NewClient builds a resilient client over resty. transport may be nil
// or a decorating RoundTripper (the response cache layer plugs in
// here).
func NewClient(cfg config.ClientAdapter, dedup *DedupTable, transport http.RoundTripper, log *logger.Logger) *Client {
	rest := resty.New().
		SetBaseURL(strings.TrimRight(cfg.BaseURL, "/")).
		SetTimeout(cfg.RequestTimeout).
		SetRetryCount(cfg.RetryCount).
		SetRetryWaitTime(cfg.RetryWaitMin).
		SetRetryMaxWaitTime(cfg.RetryWaitMax).
		AddRetryCondition(func(r *resty.Response, err error) bool {
			// Transport failures and 5xx only. 4xx is terminal.
			return err != nil || r.StatusCode() >= http.StatusInternalServerError
		})

	if transport != nil {
		rest.SetTransport(transport)
	}

	return &Client{rest: rest, dedup: dedup, logger: log}
}

// Execute performs one logical request. Concurrent callers with the
// same method, path, and body share a single network attempt; each
// waiter may abandon its own wait via ctx without affecting the others.
func (c *Client) Execute(ctx context.Context, method, path string, body []byte) (*Response, error) {
	key := requestKey(method, c.rest.BaseURL+path, body)

	call, owner := c.dedup.join(key)
	if owner {
		// The shared attempt is detached from the owner's cancellation:
		// other waiters may still be interested in the outcome.
		go c.run(context.WithoutCancel(ctx), key, call, method, path, body)
	}

	select {
	case <-call.done:
		return call.response, call.err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func (c *Client) run(ctx context.Context, key string, call *inflightCall, method, path string, body []byte) {
	started := time.Now()

	req := c.rest.R().SetContext(ctx)
	if len(body) > 0 {
		req.SetHeader("Content-Type", "application/json").SetBody(body)
	}

	resp, err := req.Execute(method, path)
	if err != nil {
		c.logger.Warn().
			Str("func", "Client.run").
			Str("method", method).
			Str("path", path).
			Dur("elapsed", time.Since(started)).
			Err(err).
			Msg("request failed after retries")
		c.dedup.complete(key, call, nil, fmt.Errorf("%s %s: %w", method, path, err))
		return
	}

	c.dedup.complete(key, call, &Response{
		StatusCode: resp.StatusCode(),
		Header:     resp.Header(),
		Body:       resp.Body(),
	}, nil)
}

// Get issues a body-less GET through the resilience policy.
func (c *Client) Get(ctx context.Context, path string) (*Response, error) {
	return c.Execute(ctx, http.MethodGet, path, nil)
}

// Post issues a JSON POST through the resilience policy.
func (c *Client) Post(ctx context.Context, path string, body []byte) (*Response, error) {
	return c.Execute(ctx, http.MethodPost, path, body)
}
