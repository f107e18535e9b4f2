package line

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/line/line-bot-sdk-go/v8/linebot/messaging_api"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/finebot/penalty-ledger/internal/models"
)

const sampleCallback = `{
  "destination": "U000",
  "events": [
    {"type": "message", "mode": "active", "webhookEventId": "E1", "replyToken": "tok-1", "timestamp": 1714550400000,
     "deliveryContext": {"isRedelivery": false},
     "source": {"type": "group", "groupId": "G1", "userId": "U1"},
     "message": {"id": "1", "type": "text", "text": "/罰款", "quoteToken": "q1"}},
    {"type": "message", "mode": "active", "webhookEventId": "E2", "replyToken": "tok-2", "timestamp": 1714550400000,
     "deliveryContext": {"isRedelivery": false},
     "source": {"type": "user", "userId": "U2"},
     "message": {"id": "2", "type": "sticker", "packageId": "1", "stickerId": "1", "stickerResourceType": "STATIC", "quoteToken": "q2"}},
    {"type": "follow", "mode": "active", "webhookEventId": "E3", "replyToken": "tok-3", "timestamp": 1714550400000,
     "deliveryContext": {"isRedelivery": false},
     "source": {"type": "user", "userId": "U3"}},
    {"type": "message", "mode": "active", "webhookEventId": "E4", "replyToken": "tok-4", "timestamp": 1714550400000,
     "deliveryContext": {"isRedelivery": false},
     "source": {"type": "user", "userId": "U4"},
     "message": {"id": "4", "type": "text", "text": "/扣除 小麻 10", "quoteToken": "q4"}}
  ]
}`

func TestParseRequestKeepsTextEvents(t *testing.T) {
	req, err := ParseRequest(strings.NewReader(sampleCallback))
	require.NoError(t, err)
	require.Len(t, req.Events, 4)

	got := TextEvents(req)
	assert.Equal(t, []TextEvent{
		{ReplyToken: "tok-1", Text: "/罰款", UserID: "U1"},
		{ReplyToken: "tok-4", Text: "/扣除 小麻 10", UserID: "U4"},
	}, got)
}

func TestParseRequestRejectsGarbage(t *testing.T) {
	_, err := ParseRequest(strings.NewReader("{not json"))
	assert.Error(t, err)
}

func TestRenderText(t *testing.T) {
	msg := Render(models.Text{Body: "hi"})
	assert.Equal(t, messaging_api.TextMessage{Text: "hi"}, msg)
}

func carouselOf(t *testing.T, msg messaging_api.MessageInterface) (*messaging_api.TemplateMessage, *messaging_api.CarouselTemplate) {
	t.Helper()
	tmpl, ok := msg.(*messaging_api.TemplateMessage)
	require.True(t, ok, "message %T is not a template", msg)
	carousel, ok := tmpl.Template.(*messaging_api.CarouselTemplate)
	require.True(t, ok, "template %T is not a carousel", tmpl.Template)
	return tmpl, carousel
}

func TestRenderMenu(t *testing.T) {
	menu := models.Menu{Groups: [][]models.MenuEntry{
		{{Label: "A", Trigger: "/記錄 A"}, {Label: "B", Trigger: "/記錄 B"}, {Label: "C", Trigger: "/記錄 C"}},
		{{Label: "D", Trigger: "/記錄 D"}, {Label: "無", Trigger: "/記錄 無"}, {Label: "無", Trigger: "/記錄 無"}},
	}}

	tmpl, carousel := carouselOf(t, Render(menu))
	assert.Equal(t, MenuAltText, tmpl.AltText)
	require.Len(t, carousel.Columns, 2)

	col := carousel.Columns[1]
	assert.Equal(t, MenuColumnTitle, col.Title)
	assert.Equal(t, MenuColumnText, col.Text)
	require.Len(t, col.Actions, 3)
	assert.Equal(t, &messaging_api.MessageAction{Label: "D", Text: "/記錄 D"}, col.Actions[0])
}

func TestRenderMenuStaysWithinCarouselLimits(t *testing.T) {
	long := strings.Repeat("麻", MaxActionLabelRunes+5)
	var groups [][]models.MenuEntry
	for i := 0; i < MaxCarouselColumns+2; i++ {
		name := fmt.Sprintf("m%d", i)
		groups = append(groups, []models.MenuEntry{{Label: name, Trigger: "/記錄 " + name}})
	}
	groups[0] = []models.MenuEntry{
		{Label: long, Trigger: "/記錄 " + long},
		{Label: "b", Trigger: "/記錄 b"},
		{Label: "c", Trigger: "/記錄 c"},
		{Label: "d", Trigger: "/記錄 d"},
	}

	_, carousel := carouselOf(t, Render(models.Menu{Groups: groups}))
	assert.Len(t, carousel.Columns, MaxCarouselColumns)
	require.Len(t, carousel.Columns[0].Actions, MaxColumnActions)

	action, ok := carousel.Columns[0].Actions[0].(*messaging_api.MessageAction)
	require.True(t, ok)
	assert.Equal(t, strings.Repeat("麻", MaxActionLabelRunes), action.Label)
	assert.Equal(t, "/記錄 "+long, action.Text)
}

func TestClientReply(t *testing.T) {
	var (
		got  map[string]any
		auth string
		path string
	)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		auth = r.Header.Get("Authorization")
		path = r.URL.Path
		body, _ := io.ReadAll(r.Body)
		_ = json.Unmarshal(body, &got)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"sentMessages":[{"id":"1","quoteToken":"q"}]}`))
	}))
	defer srv.Close()

	c, err := NewClient("secret-token", srv.URL)
	require.NoError(t, err)
	require.NoError(t, c.Reply(context.Background(), "tok-1", Render(models.Text{Body: "ok"})))

	assert.Equal(t, "Bearer secret-token", auth)
	assert.Equal(t, "/v2/bot/message/reply", path)
	assert.Equal(t, "tok-1", got["replyToken"])
	messages, ok := got["messages"].([]any)
	require.True(t, ok)
	require.Len(t, messages, 1)
	first := messages[0].(map[string]any)
	assert.Equal(t, "text", first["type"])
	assert.Equal(t, "ok", first["text"])
}

func TestClientReplyErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"message":"Invalid reply token"}`, http.StatusBadRequest)
	}))
	defer srv.Close()

	c, err := NewClient("t", srv.URL)
	require.NoError(t, err)
	err = c.Reply(context.Background(), "bad", Render(models.Text{Body: "x"}))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "400")
}
