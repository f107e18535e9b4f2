package ledger

import (
	"github.com/finebot/penalty-ledger/internal/command"
	"github.com/finebot/penalty-ledger/internal/models"
)

const (
	// DefaultGroupSize is the number of members per menu card.
	DefaultGroupSize = 3
	// Placeholder pads the last menu card to a full group.
	Placeholder = "無"
)

// OpenMenu splits roster into consecutive groups of groupSize entries and
// pads the last group with Placeholder. Every entry triggers the record
// command for its label.
func OpenMenu(roster []string, groupSize int) models.Menu {
	if groupSize <= 0 {
		groupSize = DefaultGroupSize
	}

	menu := models.Menu{Groups: make([][]models.MenuEntry, 0, (len(roster)+groupSize-1)/groupSize)}
	for i := 0; i < len(roster); i += groupSize {
		group := make([]models.MenuEntry, 0, groupSize)
		for j := i; j < i+groupSize; j++ {
			name := Placeholder
			if j < len(roster) {
				name = roster[j]
			}
			group = append(group, models.MenuEntry{Label: name, Trigger: command.RecordText(name)})
		}
		menu.Groups = append(menu.Groups, group)
	}
	return menu
}
