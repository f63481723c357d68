// Package searchclient executes pivot queries against search back-ends.
package searchclient

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"pivot-graph-be/pkg/pivot/template"
)

// SplunkClient runs searches through the Splunk export endpoint, which
// streams one JSON object per result line.
type SplunkClient struct {
	BaseURL string
	Token   string
	Client  *http.Client
}

func NewSplunkClient(baseURL, token string) *SplunkClient {
	return &SplunkClient{
		BaseURL: strings.TrimRight(baseURL, "/"),
		Token:   token,
		Client: &http.Client{
			Timeout: 120 * time.Second,
		},
	}
}

func (c *SplunkClient) Transport() string {
	return template.TransportSplunk
}

type splunkLine struct {
	Preview bool         `json:"preview"`
	Result  template.Row `json:"result"`
}

func (c *SplunkClient) Execute(ctx context.Context, q template.Query) ([]template.Row, error) {
	if q.Transport != template.TransportSplunk {
		return nil, fmt.Errorf("splunk: cannot run %s query", q.Transport)
	}

	form := url.Values{}
	form.Set("search", q.Search)
	form.Set("output_mode", "json")
	if q.Size > 0 {
		form.Set("count", strconv.Itoa(q.Size))
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.BaseURL+"/services/search/jobs/export", strings.NewReader(form.Encode()))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	if c.Token != "" {
		req.Header.Set("Authorization", "Bearer "+c.Token)
	}

	resp, err := c.Client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("splunk request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("splunk error: status %d, body: %s", resp.StatusCode, string(body))
	}

	var rows []template.Row
	scanner := bufio.NewScanner(resp.Body)
	scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		var l splunkLine
		if err := json.Unmarshal([]byte(line), &l); err != nil {
			return nil, fmt.Errorf("unmarshal result line: %w", err)
		}
		if l.Preview || l.Result == nil {
			continue
		}
		rows = append(rows, l.Result)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read results: %w", err)
	}
	return rows, nil
}
