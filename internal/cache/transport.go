// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Maxim Khalin

// Package cache is a passive response-caching layer for the client's
// outbound HTTP transport.
//
// It decorates an http.RoundTripper with three policies:
//   - non-GET requests pass through untouched (sync POSTs are never
//     cached);
//   - static and navigational GETs are cache-first, with the network
//     response replacing the cached entry, and a cached shell document
//     served to navigation requests when fully offline;
//   - API GETs are stale-while-revalidate: a cached entry is returned
//     immediately while a bounded background fetch refreshes it; a
//     cache miss waits for the network and surfaces 504 Gateway
//     Timeout when the deadline passes.
package cache

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/mkhalin/family-expenses/internal/config"
	"github.com/mkhalin/family-expenses/internal/logger"
)

const defaultAPIDeadline = 5 * time.Second

// pingPath is the connectivity check endpoint. It is exempt from every
// caching policy: a cached answer would mask an outage from the sync
// job's offline detection.
const pingPath = "/api/ping"

// Transport is the caching http.RoundTripper decorator.
type Transport struct {
	next  http.RoundTripper
	store *Store

	apiDeadline time.Duration
	shellPath   string

	logger *logger.Logger
}

func NewTransport(cfg config.ClientCache, next http.RoundTripper, store *Store, log *logger.Logger) *Transport {
	if next == nil {
		next = http.DefaultTransport
	}
	if cfg.APIDeadline <= 0 {
		cfg.APIDeadline = defaultAPIDeadline
	}

	return &Transport{
		next:        next,
		store:       store,
		apiDeadline: cfg.APIDeadline,
		shellPath:   cfg.ShellPath,
		logger:      log,
	}
}

func (t *Transport) RoundTrip(req *http.Request) (*http.Response, error) {
	if req.Method != http.MethodGet || req.URL.Path == pingPath {
		return t.next.RoundTrip(req)
	}

	if strings.HasPrefix(req.URL.Path, "/api/") {
		return t.roundTripAPI(req)
	}

	return t.roundTripStatic(req)
}

// roundTripAPI implements stale-while-revalidate for API reads.
func (t *Transport) roundTripAPI(req *http.Request) (*http.Response, error) {
	key := req.URL.String()

	if cached, ok := t.store.get(key); ok {
		go t.revalidate(req, key)
		return synthesize(req, cached), nil
	}

	ctx, cancel := context.WithTimeout(req.Context(), t.apiDeadline)
	defer cancel()

	resp, err := t.next.RoundTrip(req.WithContext(ctx))
	if err != nil {
		// A miss with no network inside the deadline is a distinct
		// outcome, not a transport error.
		t.logger.Debug().
			Str("func", "Transport.roundTripAPI").
			Str("url", key).
			Err(err).
			Msg("api cache miss and network unavailable")
		return gatewayTimeout(req), nil
	}

	return t.absorb(key, resp), nil
}

// roundTripStatic implements cache-first for non-API reads.
func (t *Transport) roundTripStatic(req *http.Request) (*http.Response, error) {
	key := req.URL.String()

	if cached, ok := t.store.get(key); ok {
		go t.revalidate(req, key)
		return synthesize(req, cached), nil
	}

	resp, err := t.next.RoundTrip(req)
	if err != nil {
		if isNavigation(req) {
			if shell, ok := t.shellEntry(req); ok {
				t.logger.Debug().
					Str("func", "Transport.roundTripStatic").
					Str("url", key).
					Msg("serving offline shell")
				return synthesize(req, shell), nil
			}
		}
		return nil, err
	}

	return t.absorb(key, resp), nil
}

// revalidate refreshes a cached entry in the background, detached from
// the caller's lifetime but bounded by the API deadline.
func (t *Transport) revalidate(req *http.Request, key string) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(req.Context()), t.apiDeadline)
	defer cancel()

	resp, err := t.next.RoundTrip(req.Clone(ctx))
	if err != nil {
		return
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return
	}
	if resp.StatusCode >= http.StatusOK && resp.StatusCode < http.StatusMultipleChoices {
		t.store.put(key, entry{
			status:   resp.StatusCode,
			header:   resp.Header.Clone(),
			body:     body,
			storedAt: time.Now(),
		})
	}
}

// absorb stores a successful response and rebuilds it for the caller.
func (t *Transport) absorb(key string, resp *http.Response) *http.Response {
	body, err := io.ReadAll(resp.Body)
	resp.Body.Close()
	if err != nil {
		resp.Body = io.NopCloser(bytes.NewReader(nil))
		return resp
	}

	if resp.StatusCode >= http.StatusOK && resp.StatusCode < http.StatusMultipleChoices {
		t.store.put(key, entry{
			status:   resp.StatusCode,
			header:   resp.Header.Clone(),
			body:     body,
			storedAt: time.Now(),
		})
	}

	resp.Body = io.NopCloser(bytes.NewReader(body))
	return resp
}

// shellEntry resolves the cached offline shell for navigation
// fallbacks.
func (t *Transport) shellEntry(req *http.Request) (entry, bool) {
	if t.shellPath == "" {
		return entry{}, false
	}

	shellURL := *req.URL
	shellURL.Path = t.shellPath
	shellURL.RawQuery = ""
	return t.store.get(shellURL.String())
}

func isNavigation(req *http.Request) bool {
	return strings.Contains(req.Header.Get("Accept"), "text/html")
}

func synthesize(req *http.Request, e entry) *http.Response {
	return &http.Response{
		Status:     http.StatusText(e.status),
		StatusCode: e.status,
		Proto:      "HTTP/1.1",
		ProtoMajor: 1,
		ProtoMinor: 1,
		Header:     e.header.Clone(),
		Body:       io.NopCloser(bytes.NewReader(e.body)),
		Request:    req,
	}
}

func gatewayTimeout(req *http.Request) *http.Response {
	return &http.Response{
		Status:     http.StatusText(http.StatusGatewayTimeout),
		StatusCode: http.StatusGatewayTimeout,
		Proto:      "HTTP/1.1",
		ProtoMajor: 1,
		ProtoMinor: 1,
		Header:     http.Header{"Content-Type": []string{"text/plain"}},
		Body:       io.NopCloser(strings.NewReader("gateway timeout: no cached response and network unavailable")),
		Request:    req,
	}
}
