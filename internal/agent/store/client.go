package store

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/sitepulse/attendance-backend-go/internal/domain/attendance"
	"github.com/sitepulse/attendance-backend-go/internal/handler/http/response"
)

// Client is a RecordStore over the attendance HTTP API.
type Client struct {
	baseURL    string
	token      string
	httpClient *http.Client
}

func NewClient(baseURL, accessToken string) *Client {
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		token:      accessToken,
		httpClient: &http.Client{Timeout: 15 * time.Second},
	}
}

// envelope mirrors the API response wrapper.
type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   *struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

func (c *Client) do(ctx context.Context, method, path string, body, out interface{}) error {
	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to encode request: %w", err)
		}
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.token)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrStoreUnreachable, err)
	}
	defer resp.Body.Close()

	var env envelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}

	if !env.Success {
		return c.mapError(resp.StatusCode, &env)
	}
	if out != nil && env.Data != nil {
		if err := json.Unmarshal(env.Data, out); err != nil {
			return fmt.Errorf("failed to decode response data: %w", err)
		}
	}
	return nil
}

func (c *Client) mapError(status int, env *envelope) error {
	code, message := "", "request failed"
	if env.Error != nil {
		code, message = env.Error.Code, env.Error.Message
	}

	switch code {
	case response.CodeAlreadyCheckedIn, response.CodeAlreadyCheckedOut:
		// The write this request wanted already happened.
		return ErrRecordExists
	case response.CodeNotCheckedIn:
		return ErrNoOpenRecord
	case response.CodeOutsideRadius:
		return attendance.ErrOutsideAllowedRadius
	}
	return fmt.Errorf("api error (%d): %s", status, message)
}

// CreateRecord implements RecordStore.
func (c *Client) CreateRecord(ctx context.Context, req attendance.CheckRequest) (attendance.RecordResponse, error) {
	var out attendance.RecordResponse
	if err := c.do(ctx, http.MethodPost, "/api/v1/attendance/check-in", req, &out); err != nil {
		return attendance.RecordResponse{}, err
	}
	return out, nil
}

// AppendCheckout implements RecordStore.
func (c *Client) AppendCheckout(ctx context.Context, req attendance.CheckRequest) (attendance.RecordResponse, error) {
	var out attendance.RecordResponse
	if err := c.do(ctx, http.MethodPost, "/api/v1/attendance/check-out", req, &out); err != nil {
		return attendance.RecordResponse{}, err
	}
	return out, nil
}

// FindTodaysRecord implements RecordStore.
func (c *Client) FindTodaysRecord(ctx context.Context, _ string) (*attendance.RecordResponse, error) {
	var out attendance.TodayResponse
	if err := c.do(ctx, http.MethodGet, "/api/v1/attendance/today", nil, &out); err != nil {
		return nil, err
	}
	return out.Record, nil
}

// ListByUser implements RecordStore.
func (c *Client) ListByUser(ctx context.Context, _ string, limit, offset int) ([]attendance.RecordResponse, error) {
	q := url.Values{}
	if limit > 0 {
		q.Set("limit", strconv.Itoa(limit))
	}
	if offset > 0 {
		q.Set("offset", strconv.Itoa(offset))
	}

	path := "/api/v1/attendance/my"
	if encoded := q.Encode(); encoded != "" {
		path += "?" + encoded
	}

	var out []attendance.RecordResponse
	if err := c.do(ctx, http.MethodGet, path, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}
