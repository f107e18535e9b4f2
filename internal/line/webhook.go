// Package line adapts the ledger to the LINE Messaging API: it decodes
// webhook callbacks, renders ledger replies into LINE messages and sends
// them through the reply endpoint.
package line

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/line/line-bot-sdk-go/v8/linebot/webhook"
)

const maxCallbackBodyLen = 1 << 20

// TextEvent is a text message the bot may answer.
type TextEvent struct {
	ReplyToken string
	Text       string
	UserID     string
}

// ParseRequest decodes a webhook body. The signature header is not checked.
func ParseRequest(r io.Reader) (*webhook.CallbackRequest, error) {
	body, err := io.ReadAll(io.LimitReader(r, maxCallbackBodyLen))
	if err != nil {
		return nil, fmt.Errorf("read callback: %w", err)
	}

	var req webhook.CallbackRequest
	if err := json.Unmarshal(body, &req); err != nil {
		return nil, fmt.Errorf("decode callback: %w", err)
	}
	return &req, nil
}

// TextEvents keeps the text message events of req, in order. Stickers,
// follows and every other event kind are dropped.
func TextEvents(req *webhook.CallbackRequest) []TextEvent {
	var out []TextEvent
	for _, event := range req.Events {
		var msg webhook.MessageEvent
		switch e := event.(type) {
		case webhook.MessageEvent:
			msg = e
		case *webhook.MessageEvent:
			msg = *e
		default:
			continue
		}

		var text string
		switch m := msg.Message.(type) {
		case webhook.TextMessageContent:
			text = m.Text
		case *webhook.TextMessageContent:
			text = m.Text
		default:
			continue
		}

		out = append(out, TextEvent{ReplyToken: msg.ReplyToken, Text: text, UserID: userOf(msg.Source)})
	}
	return out
}

func userOf(source webhook.SourceInterface) string {
	switch s := source.(type) {
	case webhook.UserSource:
		return s.UserId
	case *webhook.UserSource:
		return s.UserId
	case webhook.GroupSource:
		return s.UserId
	case *webhook.GroupSource:
		return s.UserId
	case webhook.RoomSource:
		return s.UserId
	case *webhook.RoomSource:
		return s.UserId
	}
	return ""
}
