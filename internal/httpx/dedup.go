// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Maxim Khalin

package httpx

import (
	"crypto/sha256"
	"encoding/hex"
	"sync"
)

// inflightCall is one shared network attempt. done is closed exactly
// once, after outcome fields are set.
type inflightCall struct {
	done chan struct{}

	response *Response
	err      error
}

// DedupTable coalesces concurrent identical requests onto a single
// network attempt. Identity is method + URL + body hash.
//
// Entry removal happens under the same lock that registers new
// waiters, so a caller arriving during completion either joins the
// finished call (and reads its outcome through the closed channel) or
// starts a fresh one; an entry can never be left behind permanently.
type DedupTable struct {
	mu    sync.Mutex
	calls map[string]*inflightCall
}

func NewDedupTable() *DedupTable {
	return &DedupTable{calls: make(map[string]*inflightCall)}
}

// join returns the in-flight call for key and whether the caller is
// its owner. The owner must eventually call complete.
func (t *DedupTable) join(key string) (*inflightCall, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if existing, ok := t.calls[key]; ok {
		return existing, false
	}

	call := &inflightCall{done: make(chan struct{})}
	t.calls[key] = call
	return call, true
}

// complete publishes the outcome and removes the entry atomically with
// respect to joiners.
func (t *DedupTable) complete(key string, call *inflightCall, response *Response, err error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	call.response = response
	call.err = err
	close(call.done)
	delete(t.calls, key)
}

func requestKey(method, url string, body []byte) string {
	sum := sha256.Sum256(body)
	return method + " " + url + " " + hex.EncodeToString(sum[:])
}
