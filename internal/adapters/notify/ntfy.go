package notify

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	apihttp "github.com/ohmynofan/drops-autoclaimer/internal/adapters/http"
)

type pushParams struct {
	Title    string `url:"title"`
	Tags     string `url:"tags,omitempty"`
	Priority string `url:"priority,omitempty"`
}

// Ntfy publishes completion notices to an ntfy topic. With no topic
// configured every push is dropped.
type Ntfy struct {
	client *apihttp.APIClient
	server string
	topic  string
}

func NewNtfy(client *apihttp.APIClient, server, topic string) *Ntfy {
	return &Ntfy{
		client: client,
		server: strings.TrimRight(server, "/"),
		topic:  strings.TrimSpace(topic),
	}
}

func (n *Ntfy) Enabled() bool {
	return n != nil && n.client != nil && n.topic != "" && n.server != ""
}

func (n *Ntfy) Notify(ctx context.Context, title, body string) error {
	if !n.Enabled() {
		return nil
	}
	_, err := n.client.Fetch(ctx, n.server+"/"+n.topic, &apihttp.FetchOptions{
		Method:  http.MethodPost,
		Query:   pushParams{Title: title, Tags: "video_game", Priority: "default"},
		RawBody: []byte(body),
		AdditionalHeaders: map[string]string{
			"Content-Type": "text/plain; charset=utf-8",
		},
	})
	if err != nil {
		return fmt.Errorf("push notification failed: %w", err)
	}
	return nil
}
