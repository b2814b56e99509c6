// Package http implements the server's HTTP transport layer.
//
// It exposes the reconciliation endpoint, the CRUD routes for
// families, categories, and expenses, and the cross-cutting middleware
// (request tracing, access logging, response compression) applied
// before requests reach the service layer.
package http
