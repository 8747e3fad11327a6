package feed

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"
)

// Credentials hold the feed provider account parameters. Every field is
// required; the provider rejects partially authenticated sessions.
type Credentials struct {
	UserID       string
	Password     string
	ClientID     string
	ClientSecret string
}

// Validate reports the first missing credential field.
func (c Credentials) Validate() error {
	switch {
	case c.UserID == "":
		return fmt.Errorf("feed: user id is required")
	case c.Password == "":
		return fmt.Errorf("feed: password is required")
	case c.ClientID == "":
		return fmt.Errorf("feed: client id is required")
	case c.ClientSecret == "":
		return fmt.Errorf("feed: client secret is required")
	}
	return nil
}

// Client is the narrow surface of the feed provider the loop depends on.
type Client interface {
	FetchBatch(ctx context.Context, streamID string, batchSize int) ([]map[string]any, error)
	Close() error
}

// HTTPClient pulls document batches from the provider's REST endpoint.
// Token negotiation beyond the credential headers is the provider's concern.
type HTTPClient struct {
	baseURL string
	creds   Credentials
	client  *http.Client
}

// NewHTTPClient validates the credentials and returns a connected client.
func NewHTTPClient(baseURL string, creds Credentials) (*HTTPClient, error) {
	if err := creds.Validate(); err != nil {
		return nil, err
	}
	if baseURL == "" {
		return nil, fmt.Errorf("feed: base url is required")
	}

	return &HTTPClient{
		baseURL: baseURL,
		creds:   creds,
		client:  &http.Client{Timeout: 30 * time.Second},
	}, nil
}

// FetchBatch requests up to batchSize raw documents from the stream.
func (c *HTTPClient) FetchBatch(ctx context.Context, streamID string, batchSize int) ([]map[string]any, error) {
	endpoint := fmt.Sprintf("%s/streams/%s/documents?limit=%d",
		c.baseURL, url.PathEscape(streamID), batchSize)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("feed: build request: %w", err)
	}
	req.SetBasicAuth(c.creds.UserID, c.creds.Password)
	req.Header.Set("X-Client-Id", c.creds.ClientID)
	req.Header.Set("X-Client-Secret", c.creds.ClientSecret)

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("feed: fetch batch: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("feed: fetch batch failed: status %d", resp.StatusCode)
	}

	var payload struct {
		Documents []map[string]any `json:"documents"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("feed: decode batch: %w", err)
	}

	return payload.Documents, nil
}

// Close releases idle connections held by the underlying transport.
func (c *HTTPClient) Close() error {
	c.client.CloseIdleConnections()
	return nil
}
