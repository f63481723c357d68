package searchclient

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"pivot-graph-be/pkg/flow"
	"pivot-graph-be/pkg/pivot/template"
)

// HTTPClient fetches every request of an HTTP query concurrently. A JSON
// object response becomes one row and a JSON array one row per element.
type HTTPClient struct {
	Client *http.Client
}

func NewHTTPClient() *HTTPClient {
	return &HTTPClient{Client: &http.Client{Timeout: 30 * time.Second}}
}

func (c *HTTPClient) Transport() string {
	return template.TransportHTTP
}

func (c *HTTPClient) Execute(ctx context.Context, q template.Query) ([]template.Row, error) {
	if q.Transport != template.TransportHTTP {
		return nil, fmt.Errorf("http: cannot run %s query", q.Transport)
	}

	batches, err := flow.FanOut(ctx, q.Requests, c.fetch)
	if err != nil {
		return nil, err
	}
	var rows []template.Row
	for _, b := range batches {
		rows = append(rows, b...)
	}
	return rows, nil
}

func (c *HTTPClient) fetch(ctx context.Context, r template.Request) ([]template.Row, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, r.URL, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.Client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("GET %s failed: %w", r.URL, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("GET %s: status %d", r.URL, resp.StatusCode)
	}

	var decoded any
	if err := json.Unmarshal(raw, &decoded); err != nil {
		return nil, fmt.Errorf("unmarshal %s: %w", r.URL, err)
	}

	var rows []template.Row
	switch v := decoded.(type) {
	case map[string]any:
		rows = append(rows, v)
	case []any:
		for _, item := range v {
			if m, ok := item.(map[string]any); ok {
				rows = append(rows, m)
			}
		}
	}
	for _, row := range rows {
		row["url"] = r.URL
	}
	return rows, nil
}
