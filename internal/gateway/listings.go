package gateway

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"

	"github.com/unilist-dev/unilist/internal/content"
)

// ListQuery holds the query parameters accepted by the listing endpoints
type ListQuery struct {
	Limit        int
	Status       string
	UniversityID string
	Page         int
}

func (q ListQuery) values() url.Values {
	v := url.Values{}
	if q.Limit > 0 {
		v.Set("limit", strconv.Itoa(q.Limit))
	}
	if q.Status != "" {
		v.Set("status", q.Status)
	}
	if q.UniversityID != "" {
		v.Set("universityId", q.UniversityID)
	}
	if q.Page > 0 {
		v.Set("page", strconv.Itoa(q.Page))
	}
	return v
}

// ListingItem carries the fields common to all listing kinds, for table output
type ListingItem struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Title  string `json:"title"`
	Slug   string `json:"slug"`
	Status string `json:"status"`
}

// DisplayName returns whichever of name/title the backend populated
func (i ListingItem) DisplayName() string {
	if i.Name != "" {
		return i.Name
	}
	return i.Title
}

// FetchListings retrieves one listing collection. The backend answers either
// {"items": [...]} or a bare array depending on the endpoint; both are accepted.
// Listing endpoints are public, no session cookie is required.
func (c *Client) FetchListings(ctx context.Context, kind content.Kind, q ListQuery) ([]json.RawMessage, error) {
	endpoint := fmt.Sprintf("%s/api/%s", c.baseURL, kind)
	if params := q.values().Encode(); params != "" {
		endpoint += "?" + params
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("failed to list %s (status %d): %s", kind, resp.StatusCode, string(body))
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	return DecodeItems(body)
}

// DecodeItems decodes a listing response body of either accepted shape
func DecodeItems(body []byte) ([]json.RawMessage, error) {
	var wrapped struct {
		Items []json.RawMessage `json:"items"`
	}
	if err := json.Unmarshal(body, &wrapped); err == nil && wrapped.Items != nil {
		return wrapped.Items, nil
	}

	var bare []json.RawMessage
	if err := json.Unmarshal(body, &bare); err == nil {
		return bare, nil
	}

	return nil, fmt.Errorf("failed to decode listing response")
}

// DecodeListingItems converts raw items into the common display shape
func DecodeListingItems(raw []json.RawMessage) []ListingItem {
	items := make([]ListingItem, 0, len(raw))
	for _, r := range raw {
		var item ListingItem
		if err := json.Unmarshal(r, &item); err != nil {
			continue
		}
		items = append(items, item)
	}
	return items
}
