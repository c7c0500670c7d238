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

// SkynetConfig holds connection settings for the Skynet API.
type SkynetConfig struct {
	BaseURL  string
	ClientID string
	Secret   string
	Timeout  time.Duration
}

// SkynetClient talks to the Skynet courier API.
type SkynetClient struct {
	cfg        SkynetConfig
	httpClient *http.Client
}

// Compile-time check against the domain wire contract.
var _ delivery.SkynetClient = (*SkynetClient)(nil)

// NewSkynetClient creates a Skynet wire client.
func NewSkynetClient(cfg SkynetConfig) *SkynetClient {
	if cfg.Timeout == 0 {
		cfg.Timeout = defaultRequestTimeout
	}
	return &SkynetClient{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: cfg.Timeout},
	}
}

type skynetBookBody struct {
	ReceiverName  string `json:"receiver_name"`
	ReceiverPhone string `json:"receiver_phone"`
	TownshipID    string `json:"township_id"`
	ZoneID        string `json:"zone_id"`
	Address       string `json:"address"`
	Remark        string `json:"remark"`
	CODValue      string `json:"cod_value"`
}

type skynetWaybillBody struct {
	WaybillNo string `json:"waybill_no"`
	State     string `json:"state"`
}

// Book implements delivery.SkynetClient.
func (c *SkynetClient) Book(ctx context.Context, req delivery.SkynetCreateRequest) (*delivery.SkynetCreateResponse, error) {
	body := skynetBookBody{
		ReceiverName:  req.ReceiverName,
		ReceiverPhone: req.ReceiverPhone,
		TownshipID:    req.TownshipID,
		ZoneID:        req.ZoneID,
		Address:       req.Address,
		Remark:        req.Remark,
		CODValue:      req.CODValue,
	}

	var resp skynetWaybillBody
	if err := c.do(ctx, http.MethodPost, "/api/bookings", body, &resp); err != nil {
		return nil, err
	}

	return &delivery.SkynetCreateResponse{
		WaybillNo: resp.WaybillNo,
		State:     resp.State,
	}, nil
}

// Track implements delivery.SkynetClient.
func (c *SkynetClient) Track(ctx context.Context, waybillNo string) (string, error) {
	var resp skynetWaybillBody
	if err := c.do(ctx, http.MethodGet, "/api/bookings/"+waybillNo, nil, &resp); err != nil {
		return "", err
	}
	return resp.State, nil
}

func (c *SkynetClient) do(ctx context.Context, method, path string, body, out any) error {
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
	req.Header.Set("X-Client-ID", c.cfg.ClientID)
	req.Header.Set("X-Client-Secret", c.cfg.Secret)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("skynet request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return fmt.Errorf("skynet %s %s: status %d: %s", method, path, resp.StatusCode, msg)
	}

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("decode response: %w", err)
		}
	}
	return nil
}
