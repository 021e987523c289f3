package notify

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	apihttp "github.com/ohmynofan/drops-autoclaimer/internal/adapters/http"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNtfyPublishesToTopic(t *testing.T) {
	var gotPath, gotTitle, gotBody string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		gotPath = r.URL.Path
		gotTitle = r.URL.Query().Get("title")
		gotBody = string(body)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":"abc"}`))
	}))
	defer srv.Close()

	client, err := apihttp.NewAPIClient("", "test", nil)
	require.NoError(t, err)

	n := NewNtfy(client, srv.URL+"/", "drops")
	require.True(t, n.Enabled())
	require.NoError(t, n.Notify(context.Background(), "All items claimed!", "Successfully claimed Pack for Game."))

	assert.Equal(t, "/drops", gotPath)
	assert.Equal(t, "All items claimed!", gotTitle)
	assert.Equal(t, "Successfully claimed Pack for Game.", gotBody)
}

func TestNtfyWithoutTopicIsSilent(t *testing.T) {
	client, err := apihttp.NewAPIClient("", "test", nil)
	require.NoError(t, err)

	n := NewNtfy(client, "https://ntfy.sh", "")
	assert.False(t, n.Enabled())
	assert.NoError(t, n.Notify(context.Background(), "t", "b"))
}

func TestNtfySurfacesServerErrors(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer srv.Close()

	client, err := apihttp.NewAPIClient("", "test", nil)
	require.NoError(t, err)

	err = NewNtfy(client, srv.URL, "drops").Notify(context.Background(), "t", "b")
	assert.ErrorContains(t, err, "push notification failed")
}
