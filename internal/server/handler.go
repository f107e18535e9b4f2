package server

import (
	"errors"
	"net/http"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/finebot/penalty-ledger/internal/command"
	"github.com/finebot/penalty-ledger/internal/ledger"
	"github.com/finebot/penalty-ledger/internal/line"
	"github.com/finebot/penalty-ledger/internal/models"
)

// UnavailableText is sent to the chat when the ledger store failed.
const UnavailableText = "系統忙碌中，請稍後再試 🙏"

func (s *Server) health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// callback handles POST /callback. Every text message event is run as a
// command and answered with at most one reply. Any failed event turns
// the whole response into a 500 so the platform can see it.
func (s *Server) callback(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	logger := s.logger.With(zap.String("request_id", uuid.NewString()))

	req, err := line.ParseRequest(r.Body)
	if err != nil {
		logger.Warn("bad callback body", zap.Error(err))
		writeErr(w, err, http.StatusBadRequest)
		return
	}

	ctx := r.Context()
	date := models.DateOf(s.now())
	failed := false

	for _, event := range line.TextEvents(req) {
		text := event.Text
		reply, ok, err := s.ledger.Execute(ctx, command.Parse(text), date)
		if err != nil {
			failed = true
			logger.Error("execute command",
				zap.String("text", text),
				zap.String("user", event.UserID),
				zap.Error(err))
			if !errors.Is(err, ledger.ErrPersistence) {
				continue
			}
			reply, ok = models.Text{Body: UnavailableText}, true
		}
		if !ok {
			continue
		}

		if err := s.replier.Reply(ctx, event.ReplyToken, line.Render(reply)); err != nil {
			failed = true
			logger.Error("send reply", zap.String("text", text), zap.Error(err))
		}
	}

	if failed {
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("OK"))
}

// accounts handles GET /accounts: every record in store order, today
// counters as of the current day.
func (s *Server) accounts(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	records, err := s.ledger.Accounts(r.Context(), models.DateOf(s.now()))
	if err != nil {
		s.logger.Error("list accounts", zap.Error(err))
		writeErr(w, err, http.StatusInternalServerError)
		return
	}
	if records == nil {
		records = []models.NamedRecord{}
	}
	writeJSON(w, http.StatusOK, records)
}

// balance handles GET /accounts/balance?name=...
func (s *Server) balance(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	name := r.URL.Query().Get("name")
	if name == "" {
		http.Error(w, "name is a mandatory field", http.StatusBadRequest)
		return
	}

	record, found, err := s.ledger.Balance(r.Context(), name, models.DateOf(s.now()))
	if err != nil {
		s.logger.Error("get balance", zap.String("name", name), zap.Error(err))
		writeErr(w, err, http.StatusInternalServerError)
		return
	}
	if !found {
		http.Error(w, "account not found", http.StatusNotFound)
		return
	}

	writeJSON(w, http.StatusOK, models.NamedRecord{Name: name, Record: record})
}
