package models

// Reply is what the ledger hands back to the host for rendering.
// It is either Text or Menu.
type Reply interface {
	isReply()
}

// Text is a plain text reply.
type Text struct {
	Body string
}

// MenuEntry is one selectable action. Trigger is the literal message text
// sent back to the bot when the entry is picked.
type MenuEntry struct {
	Label   string
	Trigger string
}

// Menu is an ordered list of equally sized groups of entries.
type Menu struct {
	Groups [][]MenuEntry
}

func (Text) isReply() {}
func (Menu) isReply() {}
