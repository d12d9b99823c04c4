package airtable

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"time"
)

// DefaultBaseURL is the production Airtable REST endpoint
const DefaultBaseURL = "https://api.airtable.com/v0"

// Client defines the interface for interacting with Airtable API
type Client interface {
	CreateRecord(ctx context.Context, table string, fields map[string]interface{}) (*Record, error)
}

// Record is a created Airtable row
type Record struct {
	ID          string `json:"id"`
	CreatedTime string `json:"createdTime"`
}

type clientImpl struct {
	apiKey     string
	baseID     string
	baseURL    string
	httpClient *http.Client
	logger     *slog.Logger
}

// NewClient creates a new Airtable client
func NewClient(apiKey, baseID string) Client {
	return NewClientWithBaseURL(apiKey, baseID, DefaultBaseURL)
}

// NewClientWithBaseURL creates an Airtable client against a custom endpoint
func NewClientWithBaseURL(apiKey, baseID, baseURL string) Client {
	return &clientImpl{
		apiKey:     apiKey,
		baseID:     baseID,
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: 15 * time.Second},
		logger:     slog.Default().With("component", "airtable"),
	}
}

func (c *clientImpl) CreateRecord(ctx context.Context, table string, fields map[string]interface{}) (*Record, error) {
	createURL := fmt.Sprintf("%s/%s/%s", c.baseURL, c.baseID, url.PathEscape(table))

	// Format data for Airtable API
	payload := map[string]interface{}{
		"records": []map[string]interface{}{
			{
				"fields": fields,
			},
		},
	}

	jsonPayload, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("error creating payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, createURL, bytes.NewBuffer(jsonPayload))
	if err != nil {
		return nil, fmt.Errorf("error creating request: %w", err)
	}

	// Add authentication and content type headers
	req.Header.Add("Authorization", "Bearer "+c.apiKey)
	req.Header.Add("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("error creating Airtable record: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("error reading response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("error from Airtable API (%d): %s", resp.StatusCode, string(body))
	}

	var response struct {
		Records []Record `json:"records"`
	}
	if err := json.Unmarshal(body, &response); err != nil {
		return nil, fmt.Errorf("error parsing response: %w", err)
	}
	if len(response.Records) == 0 {
		return nil, fmt.Errorf("error from Airtable API: no record created")
	}

	c.logger.Info("created Airtable record", "table", table, "id", response.Records[0].ID)
	return &response.Records[0], nil
}
