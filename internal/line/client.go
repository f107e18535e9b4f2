package line

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/line/line-bot-sdk-go/v8/linebot/messaging_api"
)

// DefaultEndpoint is the Messaging API base URL.
const DefaultEndpoint = "https://api.line.me"

// Client sends reply messages with a channel access token.
type Client struct {
	api *messaging_api.MessagingApiAPI
}

// NewClient returns a client for token. endpoint may be empty.
func NewClient(token, endpoint string) (*Client, error) {
	if endpoint == "" {
		endpoint = DefaultEndpoint
	}
	api, err := messaging_api.NewMessagingApiAPI(token,
		messaging_api.WithEndpoint(endpoint),
		messaging_api.WithHTTPClient(&http.Client{Timeout: 10 * time.Second}),
	)
	if err != nil {
		return nil, fmt.Errorf("line client: %w", err)
	}
	return &Client{api: api}, nil
}

// Reply answers the event identified by replyToken.
func (c *Client) Reply(ctx context.Context, replyToken string, messages ...messaging_api.MessageInterface) error {
	_, err := c.api.WithContext(ctx).ReplyMessage(&messaging_api.ReplyMessageRequest{
		ReplyToken: replyToken,
		Messages:   messages,
	})
	if err != nil {
		return fmt.Errorf("line reply: %w", err)
	}
	return nil
}
