// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Maxim Khalin

package http

import "net/http"

// responseWriter decorates [http.ResponseWriter] so that middleware can
// observe the status code and the number of body bytes after the
// downstream handler returns, without buffering the whole response.
//
// WriteHeader is forwarded to the underlying writer exactly once;
// later calls are ignored, matching the contract of the standard
// library's response writer.
type responseWriter struct {
	http.ResponseWriter

	// status is recorded on the first WriteHeader call (possibly the
	// implicit one triggered by Write).
	status int

	// wroteHeader guards against forwarding a second WriteHeader.
	wroteHeader bool

	// size is the running total of body bytes successfully written.
	size int
}

func (w *responseWriter) WriteHeader(statusCode int) {
	if w.wroteHeader {
		return
	}
	w.status = statusCode
	w.wroteHeader = true
	w.ResponseWriter.WriteHeader(statusCode)
}

// Write writes b to the underlying writer, implicitly sending
// [http.StatusOK] when no status has been written yet.
func (w *responseWriter) Write(b []byte) (int, error) {
	if !w.wroteHeader {
		w.WriteHeader(http.StatusOK)
	}
	n, err := w.ResponseWriter.Write(b)
	w.size += n
	return n, err
}
