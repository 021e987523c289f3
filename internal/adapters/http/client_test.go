package http

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type searchQuery struct {
	Topic string `url:"topic"`
	Limit int    `url:"limit,omitempty"`
}

func TestFetchEncodesQueryAndDecodesJSON(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "drops", r.URL.Query().Get("topic"))
		assert.Equal(t, "5", r.URL.Query().Get("limit"))
		assert.Equal(t, "test-agent", r.Header.Get("User-Agent"))
		assert.Empty(t, r.Header.Get("Content-Type"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"ok":true}`))
	}))
	defer srv.Close()

	client, err := NewAPIClient("", "test-agent", nil)
	require.NoError(t, err)

	res, err := client.Fetch(context.Background(), srv.URL, &FetchOptions{Query: searchQuery{Topic: "drops", Limit: 5}})
	require.NoError(t, err)
	assert.Equal(t, map[string]interface{}{"ok": true}, res)
}

func TestFetchSendsRawBodyAndHeaders(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "hello", string(body))
		assert.Equal(t, "Title", r.Header.Get("Title"))
		_, _ = w.Write([]byte("accepted"))
	}))
	defer srv.Close()

	client, err := NewAPIClient("", "test-agent", nil)
	require.NoError(t, err)

	res, err := client.Fetch(context.Background(), srv.URL, &FetchOptions{
		Method:            http.MethodPost,
		RawBody:           []byte("hello"),
		AdditionalHeaders: map[string]string{"Title": "Title"},
	})
	require.NoError(t, err)
	assert.Equal(t, "accepted", res)
}

func TestFetchReturnsHTTPError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	}))
	defer srv.Close()

	client, err := NewAPIClient("", "test-agent", nil)
	require.NoError(t, err)

	_, err = client.Fetch(context.Background(), srv.URL, nil)
	var httpErr *HTTPError
	require.True(t, errors.As(err, &httpErr))
	assert.Equal(t, http.StatusForbidden, httpErr.StatusCode)
}

func TestNewAPIClientRejectsBadProxy(t *testing.T) {
	_, err := NewAPIClient("://bad", "ua", nil)
	assert.ErrorContains(t, err, "invalid proxy url")
}
