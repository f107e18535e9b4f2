package line

import (
	"github.com/line/line-bot-sdk-go/v8/linebot/messaging_api"

	"github.com/finebot/penalty-ledger/internal/models"
)

// Carousel texts shown with the member menu.
const (
	MenuAltText     = "誰講了禁詞？"
	MenuColumnTitle = "記錄罰款"
	MenuColumnText  = "請點選講出禁詞的人"
)

// Carousel template limits enforced by the Messaging API.
const (
	MaxCarouselColumns  = 10
	MaxColumnActions    = 3
	MaxActionLabelRunes = 20
)

// Render turns a ledger reply into a LINE message.
func Render(reply models.Reply) messaging_api.MessageInterface {
	switch r := reply.(type) {
	case models.Menu:
		return renderMenu(r)
	case models.Text:
		return messaging_api.TextMessage{Text: r.Body}
	}
	return messaging_api.TextMessage{}
}

// renderMenu builds one carousel column per group. Groups beyond
// MaxCarouselColumns are dropped and long labels are cut; the trigger
// text is sent unchanged.
func renderMenu(menu models.Menu) messaging_api.MessageInterface {
	groups := menu.Groups
	if len(groups) > MaxCarouselColumns {
		groups = groups[:MaxCarouselColumns]
	}

	columns := make([]messaging_api.CarouselColumn, 0, len(groups))
	for _, group := range groups {
		if len(group) > MaxColumnActions {
			group = group[:MaxColumnActions]
		}
		actions := make([]messaging_api.ActionInterface, 0, len(group))
		for _, entry := range group {
			actions = append(actions, &messaging_api.MessageAction{
				Label: truncate(entry.Label, MaxActionLabelRunes),
				Text:  entry.Trigger,
			})
		}
		columns = append(columns, messaging_api.CarouselColumn{
			Title:   MenuColumnTitle,
			Text:    MenuColumnText,
			Actions: actions,
		})
	}

	return &messaging_api.TemplateMessage{
		AltText:  MenuAltText,
		Template: &messaging_api.CarouselTemplate{Columns: columns},
	}
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}
