// Package client is a typed HTTP adapter for the cooperative platform API.
// It is the single place that knows how the backend frames responses: most
// endpoints return a `{message, data}` envelope, but a few legacy ones
// return the payload bare. Callers get decoded domain values either way.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"coopra.org/internal/approval"
	"coopra.org/internal/coop"
)

// APIError carries a non-2xx backend response.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("client: backend returned %d", e.StatusCode)
	}
	return fmt.Sprintf("client: backend returned %d: %s", e.StatusCode, e.Message)
}

// ErrMalformedResponse reports a body that is neither an envelope nor the
// expected bare payload.
type ErrMalformedResponse struct {
	Cause error
}

func (e *ErrMalformedResponse) Error() string {
	return fmt.Sprintf("client: malformed response: %v", e.Cause)
}

func (e *ErrMalformedResponse) Unwrap() error { return e.Cause }

// Client talks to the platform API with a fixed bearer token.
type Client struct {
	baseURL string
	token   string
	http    *http.Client
}

// Option customises a Client.
type Option func(*Client)

// WithHTTPClient substitutes the underlying http.Client.
func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) { c.http = h }
}

// New builds a client for baseURL. The token is treated as an opaque
// credential and attached to every request.
func New(baseURL, token string, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		token:   token,
		http:    &http.Client{Timeout: 15 * time.Second},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// envelope is the standard response frame. Data stays raw until the caller
// supplies a target type.
type envelope struct {
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

// decodeEnvelope unwraps body into out, accepting both the `{message, data}`
// envelope and a bare payload. All response decoding funnels through here so
// the tolerance lives in exactly one place.
func decodeEnvelope(body []byte, out any) error {
	if out == nil {
		return nil
	}
	var env envelope
	if err := json.Unmarshal(body, &env); err == nil && len(env.Data) > 0 {
		if err := json.Unmarshal(env.Data, out); err != nil {
			return &ErrMalformedResponse{Cause: err}
		}
		return nil
	}
	if err := json.Unmarshal(body, out); err != nil {
		return &ErrMalformedResponse{Cause: err}
	}
	return nil
}

func (c *Client) do(ctx context.Context, method, path string, in, out any) error {
	var reqBody io.Reader
	if in != nil {
		raw, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("client: encode request: %w", err)
		}
		reqBody = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return fmt.Errorf("client: build request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.token)
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("client: %s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 4<<20))
	if err != nil {
		return fmt.Errorf("client: read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		apiErr := &APIError{StatusCode: resp.StatusCode}
		var env envelope
		if json.Unmarshal(body, &env) == nil {
			apiErr.Message = env.Message
		}
		return apiErr
	}

	return decodeEnvelope(body, out)
}

// Profile is the authenticated actor as the backend reports it.
type Profile struct {
	ID            string   `json:"id"`
	Name          string   `json:"name"`
	Role          string   `json:"role"`
	CooperativeID string   `json:"cooperative_id,omitempty"`
	MemberRole    string   `json:"member_role,omitempty"`
	Capabilities  []string `json:"capabilities"`
}

// Me fetches the current actor's profile.
func (c *Client) Me(ctx context.Context) (Profile, error) {
	var p Profile
	err := c.do(ctx, http.MethodGet, "/v1/me", nil, &p)
	return p, err
}

// ListCooperatives fetches all cooperatives visible to the actor.
func (c *Client) ListCooperatives(ctx context.Context) ([]coop.Cooperative, error) {
	var out []coop.Cooperative
	if err := c.do(ctx, http.MethodGet, "/v1/cooperatives", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// GetCooperative fetches one cooperative by id.
func (c *Client) GetCooperative(ctx context.Context, id string) (coop.Cooperative, error) {
	var out coop.Cooperative
	err := c.do(ctx, http.MethodGet, "/v1/cooperatives/"+url.PathEscape(id), nil, &out)
	return out, err
}

// RegisterCooperativeParams is the create payload. The acting user becomes
// the cooperative admin; the backend derives that from the token.
type RegisterCooperativeParams struct {
	Name           string `json:"name"`
	RegistrationNo string `json:"registration_no,omitempty"`
	Region         string `json:"region,omitempty"`
}

// RegisterCooperative submits a new cooperative; it starts out PENDING.
func (c *Client) RegisterCooperative(ctx context.Context, p RegisterCooperativeParams) (coop.Cooperative, error) {
	var out coop.Cooperative
	err := c.do(ctx, http.MethodPost, "/v1/cooperatives", p, &out)
	return out, err
}

// ApproveCooperative flips a pending cooperative to APPROVED.
func (c *Client) ApproveCooperative(ctx context.Context, id string) (coop.Cooperative, error) {
	var out coop.Cooperative
	err := c.do(ctx, http.MethodPost, "/v1/cooperatives/"+url.PathEscape(id)+"/approve", nil, &out)
	return out, err
}

// RejectCooperative refuses a pending cooperative. The reason is mandatory
// server-side; it is sent through verbatim.
func (c *Client) RejectCooperative(ctx context.Context, id, reason string) (coop.Cooperative, error) {
	var out coop.Cooperative
	in := struct {
		Reason string `json:"reason"`
	}{Reason: reason}
	err := c.do(ctx, http.MethodPost, "/v1/cooperatives/"+url.PathEscape(id)+"/reject", in, &out)
	return out, err
}

// SuspendCooperative suspends an approved cooperative.
func (c *Client) SuspendCooperative(ctx context.Context, id string) (coop.Cooperative, error) {
	var out coop.Cooperative
	err := c.do(ctx, http.MethodPost, "/v1/cooperatives/"+url.PathEscape(id)+"/suspend", nil, &out)
	return out, err
}

// ListApprovals fetches approval requests, optionally filtered.
func (c *Client) ListApprovals(ctx context.Context, cooperativeID, status string) ([]approval.Request, error) {
	q := url.Values{}
	if cooperativeID != "" {
		q.Set("cooperative_id", cooperativeID)
	}
	if status != "" {
		q.Set("status", status)
	}
	path := "/v1/approvals"
	if len(q) > 0 {
		path += "?" + q.Encode()
	}
	var out []approval.Request
	if err := c.do(ctx, http.MethodGet, path, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// GetApproval fetches one approval request by id.
func (c *Client) GetApproval(ctx context.Context, id string) (approval.Request, error) {
	var out approval.Request
	err := c.do(ctx, http.MethodGet, "/v1/approvals/"+url.PathEscape(id), nil, &out)
	return out, err
}

// Decide appends the actor's verdict to an approval request and returns the
// request as the backend confirmed it.
func (c *Client) Decide(ctx context.Context, requestID string, approved bool, notes string) (approval.Request, error) {
	var out approval.Request
	in := struct {
		Approved bool   `json:"approved"`
		Notes    string `json:"notes,omitempty"`
	}{Approved: approved, Notes: notes}
	err := c.do(ctx, http.MethodPost, "/v1/approvals/"+url.PathEscape(requestID)+"/decisions", in, &out)
	return out, err
}
