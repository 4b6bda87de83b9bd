package mirror

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	appErrors "github.com/atelier-ops/workshop-api/pkg/errors"
)

// Client implements API against the sheet bridge, a thin HTTP service that
// owns the Google credentials and translates REST calls into spreadsheet
// operations.
type Client struct {
	baseURL       string
	token         string
	spreadsheetID string
	client        *http.Client
}

// NewClient constructs a bridge client.
func NewClient(baseURL, token, spreadsheetID string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &Client{
		baseURL:       baseURL,
		token:         token,
		spreadsheetID: spreadsheetID,
		client:        &http.Client{Timeout: timeout},
	}
}

func (c *Client) sheetPath(title, suffix string) string {
	return fmt.Sprintf("%s/spreadsheets/%s/sheets/%s%s",
		c.baseURL, url.PathEscape(c.spreadsheetID), url.PathEscape(title), suffix)
}

func (c *Client) do(ctx context.Context, method, rawURL string, payload, out interface{}) error {
	var body io.Reader
	if payload != nil {
		encoded, err := json.Marshal(payload)
		if err != nil {
			return fmt.Errorf("encode bridge payload: %w", err)
		}
		body = bytes.NewReader(encoded)
	}
	req, err := http.NewRequestWithContext(ctx, method, rawURL, body)
	if err != nil {
		return fmt.Errorf("build bridge request: %w", err)
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrExternalService.Code, appErrors.ErrExternalService.Status, "sheet bridge unreachable")
	}
	defer func() {
		io.Copy(io.Discard, resp.Body)
		resp.Body.Close()
	}()
	if resp.StatusCode >= 300 {
		return appErrors.Wrap(
			fmt.Errorf("bridge returned %d", resp.StatusCode),
			appErrors.ErrExternalService.Code, appErrors.ErrExternalService.Status,
			"sheet bridge call failed")
	}
	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return appErrors.Wrap(err, appErrors.ErrExternalService.Code, appErrors.ErrExternalService.Status, "decode bridge response")
		}
	}
	return nil
}

// EnsureSheet implements API.
func (c *Client) EnsureSheet(ctx context.Context, title string) error {
	rawURL := fmt.Sprintf("%s/spreadsheets/%s/sheets", c.baseURL, url.PathEscape(c.spreadsheetID))
	return c.do(ctx, http.MethodPost, rawURL, map[string]string{"title": title}, nil)
}

// SetHeader implements API.
func (c *Client) SetHeader(ctx context.Context, title string, headers []string) error {
	return c.do(ctx, http.MethodPut, c.sheetPath(title, "/header"), map[string]interface{}{"values": headers}, nil)
}

// SetValidation implements API.
func (c *Client) SetValidation(ctx context.Context, title string, rules []ValidationRule) error {
	return c.do(ctx, http.MethodPost, c.sheetPath(title, "/validation"), map[string]interface{}{"rules": rules}, nil)
}

// FormatColumns implements API.
func (c *Client) FormatColumns(ctx context.Context, title string, columns []int, pattern string) error {
	return c.do(ctx, http.MethodPost, c.sheetPath(title, "/formats"), map[string]interface{}{
		"columns": columns,
		"pattern": pattern,
	}, nil)
}

// GetRows implements API.
func (c *Client) GetRows(ctx context.Context, title string) ([][]string, error) {
	var out struct {
		Values [][]string `json:"values"`
	}
	if err := c.do(ctx, http.MethodGet, c.sheetPath(title, "/rows"), nil, &out); err != nil {
		return nil, err
	}
	return out.Values, nil
}

// UpdateRow implements API.
func (c *Client) UpdateRow(ctx context.Context, title string, rowIndex int, values []interface{}) error {
	rawURL := fmt.Sprintf("%s/%d", c.sheetPath(title, "/rows"), rowIndex)
	return c.do(ctx, http.MethodPut, rawURL, map[string]interface{}{"values": values}, nil)
}

// AppendRow implements API.
func (c *Client) AppendRow(ctx context.Context, title string, values []interface{}) error {
	return c.do(ctx, http.MethodPost, c.sheetPath(title, "/rows"), map[string]interface{}{"values": values}, nil)
}

// DeleteRow implements API.
func (c *Client) DeleteRow(ctx context.Context, title string, rowIndex int) error {
	rawURL := fmt.Sprintf("%s/%d", c.sheetPath(title, "/rows"), rowIndex)
	return c.do(ctx, http.MethodDelete, rawURL, nil, nil)
}
