// Package httpx wraps outbound HTTP with the client's resilience
// policy: a per-attempt timeout, bounded retries with exponential
// backoff and jitter on transport failures and 5xx responses, and
// de-duplication of identical in-flight requests.
//
// 4xx responses are terminal and never retried. The de-duplication
// table is an injectable component constructed explicitly per client;
// it holds no state across process restarts.
package httpx
