// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Maxim Khalin

// Package adapter provides the client's transport to the expense
// server.
//
// [ServerAdapter] decouples the sync engine from the wire protocol.
// The shipped implementation speaks HTTP/REST through the resilient
// httpx client, so every call inherits retries, backoff, and in-flight
// de-duplication. Transport-level failures are mapped to the sentinel
// errors in errors.go for [errors.Is] checks.
package adapter

import (
	"context"

	"github.com/mkhalin/family-expenses/models"
)

//go:generate mockgen -source=interfaces.go -destination=../mock/server_adapter_mock.go -package=mock

// ServerAdapter is the transport-agnostic surface the sync engine
// talks to.
type ServerAdapter interface {
	// Sync submits one family-scoped changeset and returns the server's
	// merged response.
	Sync(ctx context.Context, familyID string, request models.SyncRequest) (models.SyncResponse, error)

	// CreateFamily registers a family with the server and returns it
	// with the server-assigned identifier.
	CreateFamily(ctx context.Context, name string) (models.Family, error)

	// ListFamilies returns every family known to the server.
	ListFamilies(ctx context.Context) ([]models.Family, error)

	// Ping probes connectivity with a cheap request. A nil error means
	// the server is reachable.
	Ping(ctx context.Context) error
}
