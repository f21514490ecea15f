package vollna

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/mitchellh/mapstructure"
	"go.uber.org/zap"
)

const (
	apiURL = "https://api.vollna.com/v1"
	// Max batch size accepted by the projects endpoint.
	projectsLimit = 50
)

// Client talks to the Vollna aggregator API.
type Client struct {
	token      string
	logger     *zap.Logger
	HTTPClient *http.Client
	APIURL     string
}

// New creates a client authenticated with the given API token.
func New(token string, logger *zap.Logger) *Client {
	return &Client{
		token:  token,
		logger: logger,
		APIURL: apiURL,
		HTTPClient: &http.Client{
			Timeout: 15 * time.Second,
		},
	}
}

type envelope struct {
	Data       []any `json:"data"`
	Pagination *struct {
		Total      int    `json:"total"`
		Limit      int    `json:"limit"`
		Done       bool   `json:"done"`
		NextCursor string `json:"next_cursor"`
	} `json:"pagination"`
}

// ListFilters returns the saved search filters configured upstream.
func (c *Client) ListFilters(ctx context.Context) ([]*Filter, error) {
	items, err := c.getData(ctx, "/filters")
	if err != nil {
		return nil, err
	}

	var filters []*Filter
	if err := decodeItems(items, &filters); err != nil {
		return nil, fmt.Errorf("decode filters: %w", err)
	}

	c.logger.Debug("got filters from vollna", zap.Int("count", len(filters)))
	return filters, nil
}

// ListProjects returns the current postings matched by one filter.
func (c *Client) ListProjects(ctx context.Context, filterID int) ([]*Project, error) {
	endpoint := fmt.Sprintf("/filters/%d/projects?limit=%d", filterID, projectsLimit)
	items, err := c.getData(ctx, endpoint)
	if err != nil {
		return nil, err
	}

	var projects []*Project
	if err := decodeItems(items, &projects); err != nil {
		return nil, fmt.Errorf("decode projects for filter %d: %w", filterID, err)
	}

	return projects, nil
}

// getData makes an authenticated GET request and returns the data array from
// the response envelope.
func (c *Client) getData(ctx context.Context, endpoint string) ([]any, error) {
	url := c.APIURL + endpoint

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("X-API-TOKEN", c.token)
	req.Header.Set("Accept", "application/json")

	c.logger.Debug("make request", zap.String("url", url))

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("vollna request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		c.logger.Warn("vollna api error",
			zap.Int("status", resp.StatusCode),
			zap.ByteString("body", body),
		)
		return nil, fmt.Errorf("vollna api: bad status %s", resp.Status)
	}

	var env envelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		return nil, fmt.Errorf("vollna api: decode response: %w", err)
	}

	return env.Data, nil
}

// decodeItems maps loosely typed response items onto a typed slice, reusing
// the json tags as field names.
func decodeItems(items []any, target any) error {
	cfg := &mapstructure.DecoderConfig{
		Result:  target,
		TagName: "json",
	}
	decoder, err := mapstructure.NewDecoder(cfg)
	if err != nil {
		return err
	}
	return decoder.Decode(items)
}
