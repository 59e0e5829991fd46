/**
 * @description
 * Client for the notification collaborator. The finance batch delegates one
 * dispatch pass per run; the collaborator reports how many notifications it
 * created and sent, plus any per-recipient errors.
 */
package notificationclient

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/rentfolio/finance-service/internal/domain"
)

// Client is a client for the notification service.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

// NewClient creates a new notification service client.
func NewClient(baseURL, apiKey string) *Client {
	normalizedURL := strings.TrimSuffix(baseURL, "/")
	return &Client{
		baseURL:    normalizedURL,
		apiKey:     apiKey,
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
}

// ProcessNotifications asks the notification service to run one dispatch
// pass over the pending rent notifications.
func (c *Client) ProcessNotifications(ctx context.Context) (*domain.NotificationResult, error) {
	if c.baseURL == "" {
		return nil, fmt.Errorf("notification service base URL is not configured")
	}

	url := fmt.Sprintf("%s/internal/notifications/process", c.baseURL)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Internal-Api-Key", c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to execute request to notification service: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return nil, fmt.Errorf("notification service returned error status %d", resp.StatusCode)
	}

	var result domain.NotificationResult
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("failed to decode notification response: %w", err)
	}

	return &result, nil
}
