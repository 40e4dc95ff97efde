package baseline

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const lineCoverageMetric = "line_coverage"

// HTTPClient reads baselines from a remote quality-metrics service.
type HTTPClient struct {
	baseURL    string
	token      string
	httpClient *http.Client
}

type measureResponse struct {
	Component string  `json:"component"`
	Metric    string  `json:"metric"`
	Value     *string `json:"value"`
}

type measureRequest struct {
	Component string `json:"component"`
	Metric    string `json:"metric"`
	Value     string `json:"value"`
}

// NewHTTPClient creates a client for the service at baseURL.
func NewHTTPClient(baseURL, token string, timeout time.Duration) *HTTPClient {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &HTTPClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		token:   token,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

func (c *HTTPClient) measureURL(resourceKey string) string {
	return fmt.Sprintf("%s/api/measures/%s?metric=%s",
		c.baseURL, url.PathEscape(resourceKey), lineCoverageMetric)
}

// LineCoverage fetches the published line coverage of resourceKey.
// A 404 or a measure without value means the resource has no history.
func (c *HTTPClient) LineCoverage(ctx context.Context, resourceKey string) (float64, bool, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.measureURL(resourceKey), nil)
	if err != nil {
		return 0, false, err
	}
	c.authorize(req)

	body, status, err := c.do(req)
	if err != nil {
		return 0, false, err
	}
	if status == http.StatusNotFound {
		return 0, false, nil
	}
	if status >= 300 {
		return 0, false, fmt.Errorf("%w: measure fetch for %s returned %d: %s", ErrUnavailable, resourceKey, status, body)
	}

	var resp measureResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return 0, false, fmt.Errorf("failed to decode measure of %s: %w", resourceKey, err)
	}
	if resp.Value == nil || *resp.Value == "" {
		return 0, false, nil
	}
	pct, err := parsePercent(*resp.Value)
	if err != nil {
		return 0, false, fmt.Errorf("measure of %s: %w", resourceKey, err)
	}
	return pct, true, nil
}

// Publish posts the line coverage of resourceKey to the service.
func (c *HTTPClient) Publish(ctx context.Context, resourceKey string, pct float64) error {
	payload, err := json.Marshal(measureRequest{
		Component: resourceKey,
		Metric:    lineCoverageMetric,
		Value:     formatPercent(pct),
	})
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/measures", bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	c.authorize(req)

	body, status, err := c.do(req)
	if err != nil {
		return err
	}
	if status >= 300 {
		return fmt.Errorf("%w: publish for %s returned %d: %s", ErrUnavailable, resourceKey, status, body)
	}
	return nil
}

// Close is a no-op; it lets HTTPClient satisfy Store.
func (c *HTTPClient) Close() error {
	return nil
}

func (c *HTTPClient) authorize(req *http.Request) {
	req.Header.Set("Accept", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
}

func (c *HTTPClient) do(req *http.Request) ([]byte, int, error) {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, 0, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, resp.StatusCode, err
	}
	return data, resp.StatusCode, nil
}
