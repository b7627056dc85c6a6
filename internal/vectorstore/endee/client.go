// Package endee is a minimal REST client for the Endee vector database.
package endee

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"docrag/internal/domain"
)

// Client talks to a standalone Endee service over HTTP. It is safe for
// concurrent use.
type Client struct {
	baseURL string
	client  *http.Client
}

// Config configures the Endee REST client.
type Config struct {
	BaseURL string
	Timeout time.Duration
}

func NewClient(cfg Config) *Client {
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 30 * time.Second
	}
	return &Client{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		client:  &http.Client{Timeout: timeout},
	}
}

// BaseURL returns the configured service URL.
func (c *Client) BaseURL() string { return c.baseURL }

// CreateIndex creates a vector index. A 409 means the index already exists,
// which is reported as created=false without an error.
func (c *Client) CreateIndex(ctx context.Context, name string, dimension int, metric string) (bool, error) {
	body := map[string]any{
		"name":      name,
		"dimension": dimension,
		"metric":    metric,
	}
	resp, err := c.do(ctx, http.MethodPost, c.baseURL+"/indexes", body)
	if err != nil {
		return false, err
	}
	defer resp.Body.Close()
	if resp.StatusCode == http.StatusConflict {
		return false, nil
	}
	if resp.StatusCode >= 300 {
		return false, fmt.Errorf("endee: create index %q failed: %s", name, resp.Status)
	}
	return true, nil
}

// Upsert writes records into the index, measuring the roundtrip client-side.
func (c *Client) Upsert(ctx context.Context, index string, records []domain.VectorRecord) (domain.UpsertResult, error) {
	endpoint := fmt.Sprintf("%s/indexes/%s/vectors", c.baseURL, url.PathEscape(index))
	start := time.Now()
	resp, err := c.do(ctx, http.MethodPost, endpoint, map[string]any{"vectors": records})
	if err != nil {
		return domain.UpsertResult{}, err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		return domain.UpsertResult{}, fmt.Errorf("endee: upsert into %q failed: %s", index, resp.Status)
	}
	var out struct {
		Count int `json:"count"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return domain.UpsertResult{}, fmt.Errorf("endee: decoding upsert response: %w", err)
	}
	return domain.UpsertResult{
		Count:     out.Count,
		ElapsedMs: roundMs(time.Since(start)),
	}, nil
}

// Search runs a similarity query, measuring retrieval latency client-side.
func (c *Client) Search(ctx context.Context, index string, vector []float64, topK int, includeMetadata bool) (domain.SearchResult, error) {
	endpoint := fmt.Sprintf("%s/indexes/%s/search", c.baseURL, url.PathEscape(index))
	body := map[string]any{
		"vector":           vector,
		"top_k":            topK,
		"include_metadata": includeMetadata,
	}
	start := time.Now()
	resp, err := c.do(ctx, http.MethodPost, endpoint, body)
	if err != nil {
		return domain.SearchResult{}, err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		return domain.SearchResult{}, fmt.Errorf("endee: search in %q failed: %s", index, resp.Status)
	}
	latency := roundMs(time.Since(start))
	var out struct {
		Results []domain.SearchHit `json:"results"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return domain.SearchResult{}, fmt.Errorf("endee: decoding search response: %w", err)
	}
	return domain.SearchResult{Hits: out.Results, RetrievalLatencyMs: latency}, nil
}

// DeleteIndex removes an index.
func (c *Client) DeleteIndex(ctx context.Context, name string) error {
	endpoint := fmt.Sprintf("%s/indexes/%s", c.baseURL, url.PathEscape(name))
	resp, err := c.do(ctx, http.MethodDelete, endpoint, nil)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		return fmt.Errorf("endee: delete index %q failed: %s", name, resp.Status)
	}
	return nil
}

// IndexInfo fetches index metadata.
func (c *Client) IndexInfo(ctx context.Context, name string) (domain.IndexInfo, error) {
	endpoint := fmt.Sprintf("%s/indexes/%s", c.baseURL, url.PathEscape(name))
	resp, err := c.do(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return domain.IndexInfo{}, err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		return domain.IndexInfo{}, fmt.Errorf("endee: index info for %q failed: %s", name, resp.Status)
	}
	var info domain.IndexInfo
	if err := json.NewDecoder(resp.Body).Decode(&info); err != nil {
		return domain.IndexInfo{}, fmt.Errorf("endee: decoding index info: %w", err)
	}
	return info, nil
}

// Health reports whether the service answers its health endpoint.
func (c *Client) Health(ctx context.Context) bool {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	resp, err := c.do(ctx, http.MethodGet, c.baseURL+"/health", nil)
	if err != nil {
		return false
	}
	defer resp.Body.Close()
	return resp.StatusCode == http.StatusOK
}

func (c *Client) do(ctx context.Context, method, endpoint string, body any) (*http.Response, error) {
	var reader *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("endee: encoding request: %w", err)
		}
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}
	req, err := http.NewRequestWithContext(ctx, method, endpoint, reader)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("endee: %s %s: %w", method, endpoint, err)
	}
	return resp, nil
}

func roundMs(d time.Duration) float64 {
	ms := float64(d.Microseconds()) / 1000.0
	return float64(int64(ms*100+0.5)) / 100
}
