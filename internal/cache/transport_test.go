package cache

import (
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mkhalin/family-expenses/internal/config"
	"github.com/mkhalin/family-expenses/internal/logger"
)

func newTestTransport(next http.RoundTripper, shellPath string) (*Transport, *Store) {
	store := NewStore()
	transport := NewTransport(config.ClientCache{
		APIDeadline: 200 * time.Millisecond,
		ShellPath:   shellPath,
	}, next, store, logger.Nop())
	return transport, store
}

func doGet(t *testing.T, rt http.RoundTripper, rawURL string, headers map[string]string) *http.Response {
	t.Helper()

	req, err := http.NewRequest(http.MethodGet, rawURL, nil)
	require.NoError(t, err)
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := rt.RoundTrip(req)
	require.NoError(t, err)
	return resp
}

func readBody(t *testing.T, resp *http.Response) string {
	t.Helper()

	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return string(body)
}

// failingTransport simulates a fully offline network.
type failingTransport struct{}

func (failingTransport) RoundTrip(*http.Request) (*http.Response, error) {
	return nil, &url.Error{Op: "Get", URL: "http://offline", Err: io.EOF}
}

func TestTransport_NonGETPassesThrough(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		hits.Add(1)
		w.Write([]byte(`{"serverTimestamp":"2026-03-01T00:00:00Z"}`))
	}))
	defer srv.Close()

	transport, store := newTestTransport(http.DefaultTransport, "")

	req, err := http.NewRequest(http.MethodPost, srv.URL+"/api/sync/fam-1", nil)
	require.NoError(t, err)
	resp, err := transport.RoundTrip(req)
	require.NoError(t, err)
	resp.Body.Close()

	resp, err = transport.RoundTrip(req.Clone(req.Context()))
	require.NoError(t, err)
	resp.Body.Close()

	assert.Equal(t, int32(2), hits.Load(), "POST must never be served from cache")
	_, cached := store.get(srv.URL + "/api/sync/fam-1")
	assert.False(t, cached)
}

func TestTransport_APISWRServesCachedImmediately(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		hits.Add(1)
		if hits.Load() == 1 {
			w.Write([]byte(`v1`))
			return
		}
		w.Write([]byte(`v2`))
	}))
	defer srv.Close()

	transport, store := newTestTransport(http.DefaultTransport, "")

	// Miss: waits for the network and caches.
	resp := doGet(t, transport, srv.URL+"/api/categories", nil)
	assert.Equal(t, "v1", readBody(t, resp))

	// Hit: returns the stale entry immediately, refreshing behind.
	resp = doGet(t, transport, srv.URL+"/api/categories", nil)
	assert.Equal(t, "v1", readBody(t, resp))

	require.Eventually(t, func() bool {
		e, ok := store.get(srv.URL + "/api/categories")
		return ok && string(e.body) == "v2"
	}, time.Second, 10*time.Millisecond, "background revalidation must refresh the entry")

	resp = doGet(t, transport, srv.URL+"/api/categories", nil)
	assert.Equal(t, "v2", readBody(t, resp))
}

// The connectivity ping must always hit the network: a cached or
// synthesized answer would keep reporting the server reachable after
// an outage, so the sync job could never detect it is offline.
func TestTransport_PingBypassesCache(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		hits.Add(1)
		w.Write([]byte("pong"))
	}))

	transport, store := newTestTransport(http.DefaultTransport, "")
	pingURL := srv.URL + "/api/ping"

	resp := doGet(t, transport, pingURL, nil)
	assert.Equal(t, "pong", readBody(t, resp))

	resp = doGet(t, transport, pingURL, nil)
	assert.Equal(t, "pong", readBody(t, resp))
	assert.Equal(t, int32(2), hits.Load(), "every ping must reach the server")

	_, cached := store.get(pingURL)
	assert.False(t, cached, "ping responses are never stored")

	// Outage: the ping must surface the transport error, never an
	// answer from cache.
	srv.Close()
	req, err := http.NewRequest(http.MethodGet, pingURL, nil)
	require.NoError(t, err)
	_, err = transport.RoundTrip(req)
	require.Error(t, err, "offline ping must fail so the sync job can detect the outage")
}

func TestTransport_APIMissOffline504(t *testing.T) {
	transport, _ := newTestTransport(failingTransport{}, "")

	resp := doGet(t, transport, "http://server/api/expenses", nil)
	assert.Equal(t, http.StatusGatewayTimeout, resp.StatusCode)
	resp.Body.Close()
}

func TestTransport_APIMissDeadline504(t *testing.T) {
	started := make(chan struct{}, 1)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		started <- struct{}{}
		<-r.Context().Done()
	}))
	defer srv.Close()

	transport, _ := newTestTransport(http.DefaultTransport, "")

	begin := time.Now()
	resp := doGet(t, transport, srv.URL+"/api/expenses", nil)
	assert.Equal(t, http.StatusGatewayTimeout, resp.StatusCode)
	assert.Less(t, time.Since(begin), time.Second, "miss must fail at the deadline, not hang")
	resp.Body.Close()
	<-started
}

func TestTransport_StaticCacheFirst(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		hits.Add(1)
		w.Write([]byte(`body`))
	}))
	defer srv.Close()

	transport, _ := newTestTransport(http.DefaultTransport, "")

	resp := doGet(t, transport, srv.URL+"/app.js", nil)
	assert.Equal(t, "body", readBody(t, resp))
	require.Equal(t, int32(1), hits.Load())

	// Second read is served from cache without waiting on the network.
	resp = doGet(t, transport, srv.URL+"/app.js", nil)
	assert.Equal(t, "body", readBody(t, resp))
}

func TestTransport_NavigationFallsBackToShell(t *testing.T) {
	transport, store := newTestTransport(failingTransport{}, "/index.html")

	store.put("http://server/index.html", entry{
		status: http.StatusOK,
		header: http.Header{"Content-Type": []string{"text/html"}},
		body:   []byte(`<html>shell</html>`),
	})

	// Navigation request while offline: shell served.
	resp := doGet(t, transport, "http://server/expenses/list", map[string]string{"Accept": "text/html"})
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, `<html>shell</html>`, readBody(t, resp))

	// Non-navigation static request while offline: error propagates.
	req, err := http.NewRequest(http.MethodGet, "http://server/app.js", nil)
	require.NoError(t, err)
	_, err = transport.RoundTrip(req)
	assert.Error(t, err)
}
