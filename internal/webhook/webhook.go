// Package webhook delivers the rendered digest to a messaging
// webhook. Delivery is attempted exactly once; a failure is surfaced
// to the operator, never retried.
package webhook

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

const defaultTimeout = 15 * time.Second

// Client posts text payloads to a fixed webhook URL.
type Client struct {
	url  string
	http *http.Client
}

// NewClient creates a webhook client for the given URL.
func NewClient(url string) *Client {
	return &Client{
		url:  url,
		http: &http.Client{Timeout: defaultTimeout},
	}
}

type message struct {
	Text string `json:"text"`
}

// Post sends the text as a single JSON message. Any transport error or
// non-2xx status is returned to the caller.
func (c *Client) Post(ctx context.Context, text string) error {
	payload, err := json.Marshal(message{Text: text})
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("webhook delivery failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		detail := strings.TrimSpace(string(body))
		if detail != "" {
			return fmt.Errorf("webhook delivery failed: %s: %s", resp.Status, detail)
		}
		return fmt.Errorf("webhook delivery failed: %s", resp.Status)
	}
	return nil
}
