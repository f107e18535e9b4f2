package models

// Command is the parsed form of one chat message.
// The concrete types below are the only implementations.
type Command interface {
	isCommand()
}

// ShowMenu asks for the member selection menu.
type ShowMenu struct{}

// RecordPenalty adds one fixed accrual to Name.
type RecordPenalty struct {
	Name string
}

// DeductPenalty removes Amount from Name, or undoes the last accrual.
type DeductPenalty struct {
	Name   string
	Amount int
}

// ShowLeaderboard lists every known account.
type ShowLeaderboard struct{}

// Malformed is a recognised trigger with bad arguments. Hint is sent back
// to the user as-is.
type Malformed struct {
	Raw  string
	Hint string
}

// Unrecognized is any text that is not a bot command.
type Unrecognized struct {
	Raw string
}

func (ShowMenu) isCommand()        {}
func (RecordPenalty) isCommand()   {}
func (DeductPenalty) isCommand()   {}
func (ShowLeaderboard) isCommand() {}
func (Malformed) isCommand()       {}
func (Unrecognized) isCommand()    {}
