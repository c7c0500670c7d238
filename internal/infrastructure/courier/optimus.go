// Package courier provides HTTP wire clients for the delivery providers.
// Clients only speak the provider's protocol; policy (phone rules, notes,
// status taxonomy) lives in the domain adapters.
package courier

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"centavo/internal/domain/delivery"
)

const defaultRequestTimeout = 10 * time.Second

// OptimusConfig holds connection settings for the Optimus API.
type OptimusConfig struct {
	BaseURL string
	APIKey  string
	Timeout time.Duration
}

// OptimusClient talks to the Optimus courier API.
type OptimusClient struct {
	cfg        OptimusConfig
	httpClient *http.Client
}

// Compile-time check against the domain wire contract.
var _ delivery.OptimusClient = (*OptimusClient)(nil)

// NewOptimusClient creates an Optimus wire client.
func NewOptimusClient(cfg OptimusConfig) *OptimusClient {
	if cfg.Timeout == 0 {
		cfg.Timeout = defaultRequestTimeout
	}
	return &OptimusClient{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: cfg.Timeout},
	}
}

type optimusCreateBody struct {
	CustomerName string `json:"customer_name"`
	Phone        string `json:"phone"`
	CityID       string `json:"city_id"`
	AreaID       string `json:"area_id"`
	Address      string `json:"address"`
	Note         string `json:"note"`
	CODAmount    string `json:"cod_amount"`
}

type optimusOrderBody struct {
	TrackingID string `json:"tracking_id"`
	Status     string `json:"status"`
}

// CreateOrder implements delivery.OptimusClient.
func (c *OptimusClient) CreateOrder(ctx context.Context, req delivery.OptimusCreateRequest) (*delivery.OptimusCreateResponse, error) {
	body := optimusCreateBody{
		CustomerName: req.CustomerName,
		Phone:        req.Phone,
		CityID:       req.CityID,
		AreaID:       req.AreaID,
		Address:      req.Address,
		Note:         req.Note,
		CODAmount:    req.CODAmount,
	}

	var resp optimusOrderBody
	if err := c.do(ctx, http.MethodPost, "/v1/orders", body, &resp); err != nil {
		return nil, err
	}

	return &delivery.OptimusCreateResponse{
		TrackingID: resp.TrackingID,
		Status:     resp.Status,
	}, nil
}

// OrderStatus implements delivery.OptimusClient.
func (c *OptimusClient) OrderStatus(ctx context.Context, trackingID string) (string, error) {
	var resp optimusOrderBody
	if err := c.do(ctx, http.MethodGet, "/v1/orders/"+trackingID, nil, &resp); err != nil {
		return "", err
	}
	return resp.Status, nil
}

func (c *OptimusClient) do(ctx context.Context, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshal request: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.cfg.BaseURL+path, reader)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.cfg.APIKey)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("optimus request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		// Error bodies are small; cap the read anyway.
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return fmt.Errorf("optimus %s %s: status %d: %s", method, path, resp.StatusCode, msg)
	}

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("decode response: %w", err)
		}
	}
	return nil
}
