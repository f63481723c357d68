package searchclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"pivot-graph-be/pkg/pivot/template"
)

// ElasticsearchClient runs queries through the _search endpoint.
type ElasticsearchClient struct {
	BaseURL string
	Client  *http.Client
}

func NewElasticsearchClient(baseURL string) *ElasticsearchClient {
	return &ElasticsearchClient{
		BaseURL: strings.TrimRight(baseURL, "/"),
		Client: &http.Client{
			Timeout: 60 * time.Second,
		},
	}
}

func (c *ElasticsearchClient) Transport() string {
	return template.TransportElasticsearch
}

type esResponse struct {
	Hits struct {
		Hits []struct {
			ID     string       `json:"_id"`
			Index  string       `json:"_index"`
			Source template.Row `json:"_source"`
		} `json:"hits"`
	} `json:"hits"`
}

func (c *ElasticsearchClient) Execute(ctx context.Context, q template.Query) ([]template.Row, error) {
	if q.Transport != template.TransportElasticsearch {
		return nil, fmt.Errorf("elasticsearch: cannot run %s query", q.Transport)
	}

	body := make(map[string]any, len(q.Body)+1)
	for k, v := range q.Body {
		body[k] = v
	}
	if q.Size > 0 {
		body["size"] = q.Size
	}
	payload, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	index := q.Index
	if index == "" {
		index = "*"
	}
	endpoint := fmt.Sprintf("%s/%s/_search", c.BaseURL, index)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.Client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("elasticsearch request failed: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("elasticsearch error: status %d, body: %s", resp.StatusCode, string(raw))
	}

	var parsed esResponse
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return nil, fmt.Errorf("unmarshal response: %w", err)
	}

	rows := make([]template.Row, 0, len(parsed.Hits.Hits))
	for _, hit := range parsed.Hits.Hits {
		row := hit.Source
		if row == nil {
			row = template.Row{}
		}
		if _, ok := row["EventID"]; !ok {
			row["EventID"] = hit.ID
		}
		rows = append(rows, row)
	}
	return rows, nil
}
