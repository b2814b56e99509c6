// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Maxim Khalin

package adapter

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"

	"github.com/mkhalin/family-expenses/internal/httpx"
	"github.com/mkhalin/family-expenses/internal/logger"
	"github.com/mkhalin/family-expenses/models"
)

type httpServerAdapter struct {
	client *httpx.Client

	logger *logger.Logger
}

// NewHTTPServerAdapter constructs the HTTP/REST implementation of
// [ServerAdapter] over the resilient httpx client.
func NewHTTPServerAdapter(client *httpx.Client, logger *logger.Logger) ServerAdapter {
	return &httpServerAdapter{client: client, logger: logger}
}

func (h *httpServerAdapter) Sync(ctx context.Context, familyID string, request models.SyncRequest) (models.SyncResponse, error) {
	body, err := json.Marshal(request)
	if err != nil {
		return models.SyncResponse{}, fmt.Errorf("encode sync request: %w", err)
	}

	resp, err := h.client.Post(ctx, "/api/sync/"+url.PathEscape(familyID), body)
	if err != nil {
		return models.SyncResponse{}, fmt.Errorf("sync request: %w", err)
	}
	if err = mapHTTPError(resp); err != nil {
		return models.SyncResponse{}, err
	}

	var syncResponse models.SyncResponse
	if err = json.Unmarshal(resp.Body, &syncResponse); err != nil {
		return models.SyncResponse{}, fmt.Errorf("decode sync response: %w", err)
	}

	return syncResponse, nil
}

func (h *httpServerAdapter) CreateFamily(ctx context.Context, name string) (models.Family, error) {
	body, err := json.Marshal(models.Family{Name: name})
	if err != nil {
		return models.Family{}, fmt.Errorf("encode family: %w", err)
	}

	resp, err := h.client.Post(ctx, "/api/families", body)
	if err != nil {
		return models.Family{}, fmt.Errorf("create family request: %w", err)
	}
	if err = mapHTTPError(resp); err != nil {
		return models.Family{}, err
	}

	var family models.Family
	if err = json.Unmarshal(resp.Body, &family); err != nil {
		return models.Family{}, fmt.Errorf("decode family response: %w", err)
	}

	return family, nil
}

func (h *httpServerAdapter) ListFamilies(ctx context.Context) ([]models.Family, error) {
	resp, err := h.client.Get(ctx, "/api/families")
	if err != nil {
		return nil, fmt.Errorf("list families request: %w", err)
	}
	if err = mapHTTPError(resp); err != nil {
		return nil, err
	}

	var families []models.Family
	if err = json.Unmarshal(resp.Body, &families); err != nil {
		return nil, fmt.Errorf("decode families response: %w", err)
	}

	return families, nil
}

func (h *httpServerAdapter) Ping(ctx context.Context) error {
	resp, err := h.client.Get(ctx, "/api/ping")
	if err != nil {
		return fmt.Errorf("ping request: %w", err)
	}

	return mapHTTPError(resp)
}
