package ledger

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	interfaces "github.com/finebot/penalty-ledger/internal/interfaces"
	"github.com/finebot/penalty-ledger/internal/models"
	"github.com/finebot/penalty-ledger/internal/models/events"
)

const (
	// Accrual is the amount added by one recorded fine.
	Accrual = 10
	// DailyCap is the highest today counter a new accrual may reach.
	DailyCap = 50
	// DefaultTopic receives ledger events when no topic is configured.
	DefaultTopic = "penalty_events"
	// DefaultPublishTimeout bounds how long a command waits on the event publisher.
	DefaultPublishTimeout = 2 * time.Second
)

// Reply texts
const (
	NoRecordsText         = "目前沒有任何罰款紀錄 ✅"
	LeaderboardHeader     = "目前罰款排行榜：\n"
	NonPositiveAmountText = "扣除金額必須大於 0"
)

// Ledger is the fine ledger engine
// It holds a reference to the storage layer, one mutex per account name and
// the correction memory used to undo accidental accruals
type Ledger struct {
	store          interfaces.LedgerStore    // where records live, any storage implementation
	publisher      interfaces.EventPublisher // optional, receives events after each committed change
	topic          string
	publishTimeout time.Duration
	logger         *zap.Logger
	roster         []string
	groupSize      int
	now            func() time.Time
	ttl            time.Duration
	corrections    *correctionMemory
	muMap          map[string]*sync.Mutex // stores the *sync.Mutex for each account name
	mapMu          sync.Mutex             // protects the muMap itself
}

// Option configures a Ledger.
type Option func(*Ledger)

// WithRoster sets the members offered by the menu.
func WithRoster(roster []string) Option {
	return func(l *Ledger) {
		l.roster = append([]string(nil), roster...)
	}
}

// WithGroupSize sets the number of members per menu card.
func WithGroupSize(n int) Option {
	return func(l *Ledger) {
		l.groupSize = n
	}
}

// WithPublisher sends ledger events to p on topic.
func WithPublisher(p interfaces.EventPublisher, topic string) Option {
	return func(l *Ledger) {
		l.publisher = p
		if topic != "" {
			l.topic = topic
		}
	}
}

// WithPublishTimeout bounds each publish call. Non-positive values are ignored.
func WithPublishTimeout(d time.Duration) Option {
	return func(l *Ledger) {
		if d > 0 {
			l.publishTimeout = d
		}
	}
}

// WithLogger sets the logger.
func WithLogger(logger *zap.Logger) Option {
	return func(l *Ledger) {
		if logger != nil {
			l.logger = logger
		}
	}
}

// WithCorrectionTTL bounds how long after an accrual an identical
// deduction still counts as an undo. Zero means no bound.
func WithCorrectionTTL(ttl time.Duration) Option {
	return func(l *Ledger) {
		l.ttl = ttl
	}
}

// WithClock replaces time.Now for correction timestamps and event times.
func WithClock(now func() time.Time) Option {
	return func(l *Ledger) {
		if now != nil {
			l.now = now
		}
	}
}

// NewLedger creates a Ledger on top of store (MemoryLedgerStore, Postgres, SQLite...)
func NewLedger(store interfaces.LedgerStore, opts ...Option) *Ledger {
	l := &Ledger{
		store:          store,
		topic:          DefaultTopic,
		publishTimeout: DefaultPublishTimeout,
		logger:         zap.NewNop(),
		groupSize:      DefaultGroupSize,
		now:            time.Now,
		muMap:          make(map[string]*sync.Mutex),
	}
	for _, opt := range opts {
		opt(l)
	}
	l.corrections = newCorrectionMemory(l.ttl, l.now)
	return l
}

func (l *Ledger) getAccountLock(name string) *sync.Mutex {

	l.mapMu.Lock()
	defer l.mapMu.Unlock()

	if _, exists := l.muMap[name]; !exists {
		l.muMap[name] = &sync.Mutex{}
	}
	return l.muMap[name]
}

// Execute runs cmd for date. The bool is false when the command gets no
// reply at all (plain chat text).
func (l *Ledger) Execute(ctx context.Context, cmd models.Command, date models.Date) (models.Reply, bool, error) {
	var (
		reply models.Reply
		err   error
	)

	switch c := cmd.(type) {
	case models.ShowMenu:
		reply = l.Menu()
	case models.RecordPenalty:
		reply, err = l.RecordPenalty(ctx, c.Name, date)
	case models.DeductPenalty:
		reply, err = l.DeductPenalty(ctx, c.Name, c.Amount, date)
	case models.ShowLeaderboard:
		reply, err = l.Leaderboard(ctx, date)
	case models.Malformed:
		reply = models.Text{Body: c.Hint}
	case models.Unrecognized:
		return nil, false, nil
	default:
		return nil, false, fmt.Errorf("unsupported command %T", cmd)
	}

	if err != nil {
		return nil, false, err
	}
	return reply, true, nil
}

// Menu returns the member selection menu for the configured roster.
func (l *Ledger) Menu() models.Menu {
	return OpenMenu(l.roster, l.groupSize)
}

// RecordPenalty adds one Accrual to name unless today's counter already
// reached DailyCap.
func (l *Ledger) RecordPenalty(ctx context.Context, name string, date models.Date) (models.Reply, error) {
	reply, event, err := l.recordLocked(ctx, name, date)
	if err != nil {
		return nil, err
	}
	l.publish(ctx, event)
	return reply, nil
}

func (l *Ledger) recordLocked(ctx context.Context, name string, date models.Date) (models.Reply, *events.PenaltyEvent, error) {
	mu := l.getAccountLock(name)
	mu.Lock()
	defer mu.Unlock()

	record, err := l.load(ctx, name, date)
	if err != nil {
		return nil, nil, err
	}

	// capped: nothing is written and the correction memory is left alone
	if record.Today >= DailyCap {
		l.logger.Debug("daily cap reached", zap.String("name", name), zap.Int("today", record.Today))
		return models.Text{Body: fmt.Sprintf("%s 今天已經罰滿 %d 元了，不能再罰囉 ❌\n今日罰款：%d 元 / %d 元", name, DailyCap, record.Today, DailyCap)}, nil, nil
	}

	record.Total += Accrual
	record.Today += Accrual

	if err := l.save(ctx, name, record); err != nil {
		return nil, nil, err
	}
	// only after the write succeeded, so a failed command leaves no undo behind
	l.corrections.remember(name, Accrual)

	l.logger.Info("penalty recorded",
		zap.String("name", name),
		zap.Int("today", record.Today),
		zap.Int("total", record.Total))

	reply := models.Text{Body: fmt.Sprintf("%s 被罰 %d 元！\n今日罰款：%d 元 / %d 元\n總罰款：%d 元", name, Accrual, record.Today, DailyCap, record.Total)}
	return reply, l.newEvent(events.TypePenaltyRecorded, name, Accrual, record), nil
}

// DeductPenalty removes amount from name. When amount equals the accrual
// still held in the correction memory the accrual is undone instead, which
// also takes it back out of today's counter.
func (l *Ledger) DeductPenalty(ctx context.Context, name string, amount int, date models.Date) (models.Reply, error) {
	if amount <= 0 {
		return models.Text{Body: NonPositiveAmountText}, nil
	}

	reply, event, err := l.deductLocked(ctx, name, amount, date)
	if err != nil {
		return nil, err
	}
	l.publish(ctx, event)
	return reply, nil
}

func (l *Ledger) deductLocked(ctx context.Context, name string, amount int, date models.Date) (models.Reply, *events.PenaltyEvent, error) {
	mu := l.getAccountLock(name)
	mu.Lock()
	defer mu.Unlock()

	record, err := l.load(ctx, name, date)
	if err != nil {
		return nil, nil, err
	}

	if l.corrections.matches(name, amount) {
		record.Total = max(0, record.Total-amount)
		record.Today = max(0, record.Today-amount)

		if err := l.save(ctx, name, record); err != nil {
			return nil, nil, err
		}
		l.corrections.forget(name)

		l.logger.Info("penalty corrected", zap.String("name", name), zap.Int("total", record.Total))

		reply := models.Text{Body: fmt.Sprintf("誤扣操作，已恢復 %s 的罰款！目前總罰款：%d 元", name, record.Total)}
		return reply, l.newEvent(events.TypePenaltyCorrected, name, amount, record), nil
	}

	record.Total = max(0, record.Total-amount)

	if err := l.save(ctx, name, record); err != nil {
		return nil, nil, err
	}

	l.logger.Info("penalty deducted",
		zap.String("name", name),
		zap.Int("amount", amount),
		zap.Int("total", record.Total))

	reply := models.Text{Body: fmt.Sprintf("%s 扣除 %d 元罰款，目前剩下 %d 元 💸", name, amount, record.Total)}
	return reply, l.newEvent(events.TypePenaltyDeducted, name, amount, record), nil
}

// Leaderboard lists every account in store order. Today counters from an
// earlier day are shown as zero.
func (l *Ledger) Leaderboard(ctx context.Context, date models.Date) (models.Reply, error) {
	records, err := l.Accounts(ctx, date)
	if err != nil {
		return nil, err
	}

	if len(records) == 0 {
		return models.Text{Body: NoRecordsText}, nil
	}

	msg := LeaderboardHeader
	for _, r := range records {
		msg += fmt.Sprintf("%s: 總共 %d 元，今天 %d 元\n", r.Name, r.Record.Total, r.Record.Today)
	}
	return models.Text{Body: msg}, nil
}

// Balance returns name's record as seen on date, without creating or
// writing it. A today counter from an earlier day reads as zero.
func (l *Ledger) Balance(ctx context.Context, name string, date models.Date) (models.Record, bool, error) {
	record, found, err := l.store.GetRecord(ctx, name)
	if err != nil {
		return models.Record{}, false, fmt.Errorf("%w: get %q: %w", ErrPersistence, name, err)
	}
	if found {
		record.Today = ResolveToday(record.Date, record.Today, date)
	}
	return record, found, nil
}

// Accounts returns every record in store order as seen on date.
func (l *Ledger) Accounts(ctx context.Context, date models.Date) ([]models.NamedRecord, error) {
	records, err := l.store.ListRecords(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: list: %w", ErrPersistence, err)
	}
	for i := range records {
		records[i].Record.Today = ResolveToday(records[i].Record.Date, records[i].Record.Today, date)
	}
	return records, nil
}

// load reads name's record, or a fresh one, with the day window applied
// and Date moved to date. Callers hold the account lock.
func (l *Ledger) load(ctx context.Context, name string, date models.Date) (models.Record, error) {
	record, found, err := l.store.GetRecord(ctx, name)
	if err != nil {
		l.logger.Error("load record", zap.String("name", name), zap.Error(err))
		return models.Record{}, fmt.Errorf("%w: get %q: %w", ErrPersistence, name, err)
	}
	if !found {
		return models.Record{Date: date}, nil
	}

	record.Today = ResolveToday(record.Date, record.Today, date)
	record.Date = date
	return record, nil
}

func (l *Ledger) save(ctx context.Context, name string, record models.Record) error {
	if err := l.store.UpsertRecord(ctx, name, record); err != nil {
		l.logger.Error("save record", zap.String("name", name), zap.Error(err))
		return fmt.Errorf("%w: upsert %q: %w", ErrPersistence, name, err)
	}
	return nil
}

// newEvent snapshots a committed change. Nil when nobody listens.
func (l *Ledger) newEvent(eventType, name string, amount int, record models.Record) *events.PenaltyEvent {
	if l.publisher == nil {
		return nil
	}
	return &events.PenaltyEvent{
		EventID:    uuid.NewString(),
		Type:       eventType,
		Account:    name,
		Amount:     decimal.NewFromInt(int64(amount)),
		Total:      decimal.NewFromInt(int64(record.Total)),
		Today:      decimal.NewFromInt(int64(record.Today)),
		Date:       string(record.Date),
		OccurredAt: l.now(),
	}
}

// publish is best effort and runs outside the account lock; the change is
// already committed. It gives up after publishTimeout.
func (l *Ledger) publish(ctx context.Context, event *events.PenaltyEvent) {
	if event == nil || l.publisher == nil {
		return
	}

	ctx, cancel := context.WithTimeout(ctx, l.publishTimeout)
	defer cancel()

	if err := l.publisher.Publish(ctx, l.topic, event.Account, *event); err != nil {
		l.logger.Warn("publish ledger event",
			zap.String("type", event.Type),
			zap.String("name", event.Account),
			zap.Error(err))
	}
}
