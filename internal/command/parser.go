// Package command turns chat text into typed bot commands.
package command

import (
	"strconv"
	"strings"

	"github.com/finebot/penalty-ledger/internal/models"
)

// Trigger tokens understood by the bot.
const (
	MenuTrigger        = "/罰款"
	RecordTrigger      = "/記錄"
	DeductTrigger      = "/扣除"
	LeaderboardTrigger = "/排行榜"
)

// Usage hints returned for malformed deductions.
const (
	DeductArityHint = "請輸入：/扣除 [名字] [金額]"
	DeductUsageHint = "格式錯誤，請用：/扣除 [名字] [金額]  例如：/扣除 小麻 10"
)

// RecordText is the message that records a fine for name. Menu entries use
// it as their trigger, so Parse must map it back to exactly name.
func RecordText(name string) string {
	return RecordTrigger + " " + name
}

// Parse maps text to exactly one command.
func Parse(text string) models.Command {
	text = strings.TrimSpace(text)

	switch {
	case text == MenuTrigger:
		return models.ShowMenu{}
	case text == LeaderboardTrigger:
		return models.ShowLeaderboard{}
	case strings.HasPrefix(text, RecordTrigger+" "):
		return models.RecordPenalty{Name: strings.TrimPrefix(text, RecordTrigger+" ")}
	case strings.HasPrefix(text, DeductTrigger):
		return parseDeduct(text)
	}
	return models.Unrecognized{Raw: text}
}

func parseDeduct(text string) models.Command {
	parts := strings.Fields(text)
	if len(parts) != 3 || parts[0] != DeductTrigger {
		return models.Malformed{Raw: text, Hint: DeductArityHint}
	}
	amount, err := strconv.Atoi(parts[2])
	if err != nil {
		return models.Malformed{Raw: text, Hint: DeductUsageHint}
	}
	return models.DeductPenalty{Name: parts[1], Amount: amount}
}
