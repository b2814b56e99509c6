package http

import (
	"net/http"
)

// ping is the liveness probe the client's sync job polls to detect that
// connectivity has returned.
func (h *Handler) ping(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain")
	w.Write([]byte("pong"))
}
