package bridge

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"receiver-power-backend/config"
)

// commandResponse models the bridge's reply to /api/v1/execute/{command}.
// A successful command carries the friendly power status in response_str;
// an application-level failure carries error and error_message instead.
type commandResponse struct {
	Name         string `json:"name"`
	ResponseStr  string `json:"response_str"`
	PayloadHex   string `json:"payload_hex"`
	Error        string `json:"error"`
	ErrorMessage string `json:"error_message"`
}

// Client talks to the receiver command bridge over HTTP. It implements
// power.Transport.
type Client struct {
	baseURL string
	headers map[string]string
	client  *http.Client
}

// NewClient creates a bridge client from configuration.
func NewClient(cfg *config.BridgeConfig) *Client {
	return &Client{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		headers: cfg.Headers,
		client: &http.Client{
			Transport: &http.Transport{},
			Timeout:   cfg.Timeout,
		},
	}
}

// Invoke executes a single named command and returns the raw power status
// string the bridge reported. Network failures, non-200 statuses, and
// application-level errors are all returned as wrapped errors; the caller
// decides what a missing status string means.
func (c *Client) Invoke(ctx context.Context, command string) (string, error) {
	url := fmt.Sprintf("%s/api/v1/execute/%s", c.baseURL, command)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	for key, value := range c.headers {
		req.Header.Set(key, value)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("bridge request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("bridge returned non-200 status code: %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read bridge response body: %w", err)
	}

	var cmdResp commandResponse
	if err := json.Unmarshal(body, &cmdResp); err != nil {
		return "", fmt.Errorf("failed to unmarshal bridge response: %w", err)
	}

	if cmdResp.Error != "" {
		return "", fmt.Errorf("bridge reported %s: %s", cmdResp.Error, cmdResp.ErrorMessage)
	}

	return cmdResp.ResponseStr, nil
}
