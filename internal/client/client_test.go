package client

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDecodesEnvelopeShape(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "Bearer tok-1", r.Header.Get("Authorization"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"message":"ok","data":[{"id":"c1","name":"Sunrise","status":"PENDING"}]}`))
	}))
	defer srv.Close()

	c := New(srv.URL, "tok-1")
	coops, err := c.ListCooperatives(context.Background())
	require.NoError(t, err)
	require.Len(t, coops, 1)
	require.Equal(t, "c1", coops[0].ID)
	require.Equal(t, "Sunrise", coops[0].Name)
}

func TestDecodesBareShape(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`[{"id":"c2","name":"Harvest","status":"APPROVED"}]`))
	}))
	defer srv.Close()

	c := New(srv.URL, "tok-1")
	coops, err := c.ListCooperatives(context.Background())
	require.NoError(t, err)
	require.Len(t, coops, 1)
	require.Equal(t, "c2", coops[0].ID)
}

func TestMalformedPayloadIsTypedError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"message":"ok","data":"not-a-list"}`))
	}))
	defer srv.Close()

	c := New(srv.URL, "tok-1")
	_, err := c.ListCooperatives(context.Background())
	var malformed *ErrMalformedResponse
	require.ErrorAs(t, err, &malformed)
}

func TestNon2xxBecomesAPIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusConflict)
		_, _ = w.Write([]byte(`{"message":"request already finalized"}`))
	}))
	defer srv.Close()

	c := New(srv.URL, "tok-1")
	_, err := c.Decide(context.Background(), "req-1", true, "")
	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	require.Equal(t, http.StatusConflict, apiErr.StatusCode)
	require.Equal(t, "request already finalized", apiErr.Message)
}

func TestDecideSendsVerdictAndNotes(t *testing.T) {
	var got struct {
		Approved bool   `json:"approved"`
		Notes    string `json:"notes"`
	}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/v1/approvals/req-9/decisions", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		_, _ = w.Write([]byte(`{"message":"decision recorded","data":{"id":"req-9","status":"rejected"}}`))
	}))
	defer srv.Close()

	c := New(srv.URL, "tok-1")
	req, err := c.Decide(context.Background(), "req-9", false, "insufficient documentation")
	require.NoError(t, err)
	require.False(t, got.Approved)
	require.Equal(t, "insufficient documentation", got.Notes)
	require.Equal(t, "req-9", req.ID)
}

func TestListApprovalsFilters(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "c1", r.URL.Query().Get("cooperative_id"))
		require.Equal(t, "pending", r.URL.Query().Get("status"))
		_, _ = w.Write([]byte(`{"message":"ok","data":[]}`))
	}))
	defer srv.Close()

	c := New(srv.URL, "tok-1")
	reqs, err := c.ListApprovals(context.Background(), "c1", "pending")
	require.NoError(t, err)
	require.Empty(t, reqs)
}
