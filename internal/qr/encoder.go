package qr

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// Encoder renders a payload as a scannable PNG. The reference implementation
// lives in the chat gateway, which owns all image work.
type Encoder interface {
	Encode(ctx context.Context, payload string, sizePx int) ([]byte, error)
}

// GatewayEncoder asks the chat gateway to render the code image.
type GatewayEncoder struct {
	baseURL string
	client  *http.Client
}

// NewGatewayEncoder constructs an encoder against the gateway.
func NewGatewayEncoder(baseURL string, timeout time.Duration) *GatewayEncoder {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &GatewayEncoder{baseURL: baseURL, client: &http.Client{Timeout: timeout}}
}

type encodeRequest struct {
	Payload string `json:"payload"`
	SizePx  int    `json:"size_px"`
}

// Encode implements Encoder.
func (e *GatewayEncoder) Encode(ctx context.Context, payload string, sizePx int) ([]byte, error) {
	body, err := json.Marshal(encodeRequest{Payload: payload, SizePx: sizePx})
	if err != nil {
		return nil, fmt.Errorf("encode request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, e.baseURL+"/qr", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := e.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("render code: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		io.Copy(io.Discard, resp.Body)
		return nil, fmt.Errorf("render code: gateway returned %d", resp.StatusCode)
	}
	png, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("render code: %w", err)
	}
	return png, nil
}
