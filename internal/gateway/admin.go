package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// Snapshot is the admin view of one cached listing pull
type Snapshot struct {
	ID        string    `json:"id"`
	Kind      string    `json:"kind"`
	ItemCount int       `json:"item_count"`
	Source    string    `json:"source"`
	FetchedAt time.Time `json:"fetched_at"`
}

// TriggerRefresh asks the gateway to re-pull content from the backend.
// An empty kind refreshes every kind. Requires a dashboard-capable session.
func (c *Client) TriggerRefresh(ctx context.Context, kind string) ([]string, error) {
	var body io.Reader
	if kind != "" {
		jsonData, err := json.Marshal(map[string]string{"kind": kind})
		if err != nil {
			return nil, fmt.Errorf("failed to marshal request: %w", err)
		}
		body = bytes.NewBuffer(jsonData)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		fmt.Sprintf("%s/api/admin/refresh", c.baseURL), body)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &NetworkError{Op: "refresh", Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusUnauthorized {
		return nil, ErrUnauthenticated
	}
	if resp.StatusCode != http.StatusAccepted {
		respBody, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("refresh failed (status %d): %s", resp.StatusCode, string(respBody))
	}

	var result struct {
		Enqueued []string `json:"enqueued"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}

	return result.Enqueued, nil
}

// FetchSnapshots lists the newest cached snapshot per kind. Requires a
// dashboard-capable session.
func (c *Client) FetchSnapshots(ctx context.Context) ([]Snapshot, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet,
		fmt.Sprintf("%s/api/admin/snapshots", c.baseURL), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &NetworkError{Op: "snapshots", Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusUnauthorized {
		return nil, ErrUnauthenticated
	}
	if resp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("snapshot listing failed (status %d): %s", resp.StatusCode, string(respBody))
	}

	var snapshots []Snapshot
	if err := json.NewDecoder(resp.Body).Decode(&snapshots); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}

	return snapshots, nil
}
