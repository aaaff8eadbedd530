// Package client is the device side of teacher check-in: a REST client for the school API,
// a cache of today's check-in state and the flow that gates check-in on the device position.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go-school/internal/checkin"
	"go-school/internal/geo"
	"go-school/internal/school"
)

const defaultTimeout = 15 * time.Second

// ErrNetworkFailure wraps every transport level failure. The request may or may not have
// reached the server.
var ErrNetworkFailure = errors.New("network failure")

// APIError is an error envelope returned by the API.
type APIError struct {
	Status  int
	Code    string
	Message string
	Details json.RawMessage
}

func (e *APIError) Error() string {
	return fmt.Sprintf("%s (%d): %s", e.Code, e.Status, e.Message)
}

// IsConflict reports whether err is a 409 from the API.
func IsConflict(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.Status == http.StatusConflict
}

// HasCode reports whether err is an API error carrying code.
func HasCode(err error, code string) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.Code == code
}

type Client struct {
	BaseURL string
	Token   string
	HTTP    *http.Client
}

func New(baseURL, token string) *Client {
	return &Client{
		BaseURL: strings.TrimRight(baseURL, "/"),
		Token:   token,
		HTTP:    &http.Client{Timeout: defaultTimeout},
	}
}

type envelope struct {
	Ok    bool            `json:"ok"`
	Data  json.RawMessage `json:"data"`
	Error *struct {
		Code    string          `json:"code"`
		Message string          `json:"message"`
		Details json.RawMessage `json:"details"`
	} `json:"error"`
}

func (c *Client) School(ctx context.Context, schoolID string) (school.Config, error) {
	var cfg school.Config
	err := c.do(ctx, http.MethodGet, "/schools/"+schoolID, nil, &cfg)
	return cfg, err
}

func (c *Client) Status(ctx context.Context) (checkin.CheckInStateResponse, error) {
	var out checkin.CheckInStateResponse
	err := c.do(ctx, http.MethodGet, "/checkin/status", nil, &out)
	return out, err
}

// CheckIn sends the position when one is known. The server stamps the time.
func (c *Client) CheckIn(ctx context.Context, pos *geo.Point) (checkin.CheckInStateResponse, error) {
	req := checkin.CheckInRequest{}
	if pos != nil {
		req.Latitude = &pos.Latitude
		req.Longitude = &pos.Longitude
	}
	var out checkin.CheckInStateResponse
	err := c.do(ctx, http.MethodPost, "/checkin/in", req, &out)
	return out, err
}

func (c *Client) CheckOut(ctx context.Context) (checkin.CheckInStateResponse, error) {
	var out checkin.CheckInStateResponse
	err := c.do(ctx, http.MethodPost, "/checkin/out", struct{}{}, &out)
	return out, err
}

func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.BaseURL+path, reader)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.Token != "" {
		req.Header.Set("Authorization", "Bearer "+c.Token)
	}

	httpClient := c.HTTP
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	res, err := httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %s %s: %v", ErrNetworkFailure, method, path, err)
	}
	defer res.Body.Close()

	var env envelope
	if err := json.NewDecoder(res.Body).Decode(&env); err != nil {
		if res.StatusCode >= 400 {
			return &APIError{Status: res.StatusCode, Code: "HTTP_ERROR", Message: http.StatusText(res.StatusCode)}
		}
		return fmt.Errorf("decode %s %s: %w", method, path, err)
	}

	if res.StatusCode >= 400 || !env.Ok {
		apiErr := &APIError{Status: res.StatusCode, Code: "HTTP_ERROR", Message: http.StatusText(res.StatusCode)}
		if env.Error != nil {
			apiErr.Code = env.Error.Code
			apiErr.Message = env.Error.Message
			apiErr.Details = env.Error.Details
		}
		return apiErr
	}

	if out == nil || len(env.Data) == 0 {
		return nil
	}
	return json.Unmarshal(env.Data, out)
}
