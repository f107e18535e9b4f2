package events

import (
	"time"

	"github.com/shopspring/decimal"
)

// Event types, also used as the Kafka message header "type".
const (
	TypePenaltyRecorded  = "penalty_recorded"
	TypePenaltyDeducted  = "penalty_deducted"
	TypePenaltyCorrected = "penalty_corrected"
)

// PenaltyEvent is emitted after a ledger mutation has been stored.
type PenaltyEvent struct {
	EventID    string          `json:"event_id"`
	Type       string          `json:"type"`
	Account    string          `json:"account"`
	Amount     decimal.Decimal `json:"amount"`
	Total      decimal.Decimal `json:"total"`
	Today      decimal.Decimal `json:"today"`
	Date       string          `json:"date"`
	OccurredAt time.Time       `json:"occurred_at"`
}

// EventType lets publishers tag messages without knowing the concrete type.
func (e PenaltyEvent) EventType() string {
	return e.Type
}
