// Package server hosts the ledger behind HTTP: the LINE webhook callback
// plus a few read-only JSON endpoints.
package server

import (
	"context"
	"time"

	"github.com/line/line-bot-sdk-go/v8/linebot/messaging_api"
	"go.uber.org/zap"

	"github.com/finebot/penalty-ledger/internal/ledger"
)

// Replier delivers rendered messages for a webhook event.
type Replier interface {
	Reply(ctx context.Context, replyToken string, messages ...messaging_api.MessageInterface) error
}

// Server wires HTTP requests to the ledger.
//   - ledger: business rules and persistence
//   - replier: sends answers back to the chat
//   - now: source of the current calendar day
type Server struct {
	ledger  *ledger.Ledger
	replier Replier
	logger  *zap.Logger
	now     func() time.Time
}

// NewServer builds a Server. logger may be nil.
func NewServer(l *ledger.Ledger, replier Replier, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Server{ledger: l, replier: replier, logger: logger, now: time.Now}
}

// SetClock replaces time.Now as the source of the current day.
func (s *Server) SetClock(now func() time.Time) {
	s.now = now
}
