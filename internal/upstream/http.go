package upstream

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/url"
	"time"
)

// HTTPSource talks to the upstream business system's JSON export endpoints.
type HTTPSource struct {
	BaseURL string
	APIKey  string
	Client  *http.Client
}

func (h HTTPSource) FetchTimeRecords(ctx context.Context, unit string) ([]map[string]any, error) {
	return h.fetch(ctx, "/export/zeiten", unit)
}

func (h HTTPSource) FetchRevenueRecords(ctx context.Context, unit string) ([]map[string]any, error) {
	return h.fetch(ctx, "/export/umsatz", unit)
}

func (h HTTPSource) fetch(ctx context.Context, path string, unit string) ([]map[string]any, error) {
	if h.Client == nil {
		h.Client = &http.Client{Timeout: 30 * time.Second}
	}

	u := h.BaseURL + path
	if unit != "" {
		u += "?unit=" + url.QueryEscape(unit)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")
	if h.APIKey != "" {
		req.Header.Set("X-Api-Key", h.APIKey)
	}

	resp, err := h.Client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, errors.New("upstream service error")
	}

	var rows []map[string]any
	if err := json.NewDecoder(resp.Body).Decode(&rows); err != nil {
		return nil, err
	}
	return rows, nil
}
