package oracle

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

// HTTPClient calls the configured upstream completion endpoint.
type HTTPClient struct {
	url    string
	apiKey string
	client *http.Client
}

func NewHTTPClient(url, apiKey string) *HTTPClient {
	return &HTTPClient{
		url:    url,
		apiKey: apiKey,
		client: &http.Client{Timeout: 30 * time.Second},
	}
}

type replyRequest struct {
	Message string `json:"message"`
}

type replyResponse struct {
	Reply string `json:"reply"`
}

func (c *HTTPClient) Reply(ctx context.Context, message string) (string, error) {
	body, err := json.Marshal(replyRequest{Message: message})
	if err != nil {
		return "", fmt.Errorf("oracle: encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("oracle: build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("oracle: upstream call: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("oracle: upstream status %d", resp.StatusCode)
	}

	var out replyResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", fmt.Errorf("oracle: decode response: %w", err)
	}

	return out.Reply, nil
}

// Static answers every message with a fixed reply. Used in development
// when no upstream is configured.
type Static struct {
	Text string
}

func (s Static) Reply(_ context.Context, _ string) (string, error) {
	return s.Text, nil
}
