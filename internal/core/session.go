package core

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/zoheirhassoun/Telegram-bot/internal/dataset"
	"github.com/zoheirhassoun/Telegram-bot/internal/format"
	"github.com/zoheirhassoun/Telegram-bot/internal/logging"
	"github.com/zoheirhassoun/Telegram-bot/internal/query"
	"github.com/zoheirhassoun/Telegram-bot/internal/source"
)

// Fixed replies.
const (
	MsgNoData = "No data available. Please check your Google Sheets configuration."

	answerErrorPrefix  = "Sorry, I encountered an error: "
	summaryErrorPrefix = "Error getting summary: "
	refreshErrorPrefix = "Error refreshing data: "
)

// DefaultFetchTimeout bounds a single source fetch.
const DefaultFetchTimeout = 30 * time.Second

// Session answers queries against the dataset behind a Source. The dataset is
// fetched again for every call, so sheet edits show up immediately. A Session
// holds no per-query state and is safe for concurrent use when its Source is.
type Session struct {
	src          source.Source
	rangeRef     string
	sourceName   string
	recorder     Recorder
	fetchTimeout time.Duration
}

// SessionOption configures a Session.
type SessionOption func(*Session)

// WithRecorder sends a QueryEvent for every operation to r.
func WithRecorder(r Recorder) SessionOption {
	return func(s *Session) {
		s.recorder = r
	}
}

// WithSourceName overrides the source name used in refresh replies.
func WithSourceName(name string) SessionOption {
	return func(s *Session) {
		s.sourceName = name
	}
}

// WithFetchTimeout bounds each fetch. Zero or negative disables the bound.
func WithFetchTimeout(d time.Duration) SessionOption {
	return func(s *Session) {
		s.fetchTimeout = d
	}
}

// NewSession creates a Session reading rangeRef from src.
func NewSession(src source.Source, rangeRef string, opts ...SessionOption) *Session {
	if rangeRef == "" {
		rangeRef = source.DefaultRange
	}

	s := &Session{
		src:          src,
		rangeRef:     rangeRef,
		sourceName:   "the data source",
		fetchTimeout: DefaultFetchTimeout,
	}
	if named, ok := src.(interface{ Name() string }); ok {
		s.sourceName = named.Name()
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Answer returns the reply for a free-text query.
func (s *Session) Answer(ctx context.Context, q string) string {
	start := time.Now()
	ev := QueryEvent{Operation: OpAnswer, Query: q}

	d, err := s.fetch(ctx)
	if err != nil {
		return s.fail(ctx, ev, start, answerErrorPrefix, err)
	}
	ev.Rows = d.Len()

	if d.Empty() {
		ev.Outcome = OutcomeNoData
		s.record(ctx, ev, start)
		return MsgNoData
	}

	rows := query.Match(d, q)
	ev.Matches = len(rows)

	var reply string
	switch len(rows) {
	case 0:
		ev.Outcome = OutcomeNoMatch
		reply = format.None(q)
	case 1:
		ev.Outcome = OutcomeMatched
		reply = format.One(d.Header(), rows[0])
	default:
		ev.Outcome = OutcomeMatched
		reply = format.Many(d.Header(), rows)
	}

	s.record(ctx, ev, start)
	return reply
}

// Summary returns the dataset summary. An empty dataset reports zero counts.
func (s *Session) Summary(ctx context.Context) string {
	start := time.Now()
	ev := QueryEvent{Operation: OpSummary}

	d, err := s.fetch(ctx)
	if err != nil {
		return s.fail(ctx, ev, start, summaryErrorPrefix, err)
	}

	ev.Rows = d.Len()
	ev.Outcome = OutcomeOK
	s.record(ctx, ev, start)
	return format.Summary(d)
}

// Refresh discards cached authorization when the source keeps any, then
// fetches once to confirm the source is readable.
func (s *Session) Refresh(ctx context.Context) string {
	start := time.Now()
	ev := QueryEvent{Operation: OpRefresh}

	if resetter, ok := s.src.(source.AuthResetter); ok {
		if err := resetter.ResetAuth(ctx); err != nil {
			return s.fail(ctx, ev, start, refreshErrorPrefix, err)
		}
	}

	d, err := s.fetch(ctx)
	if err != nil {
		return s.fail(ctx, ev, start, refreshErrorPrefix, err)
	}

	ev.Rows = d.Len()
	ev.Outcome = OutcomeOK
	s.record(ctx, ev, start)
	return fmt.Sprintf("Data refreshed! Retrieved %d records from %s.", d.Len(), s.sourceName)
}

func (s *Session) fetch(ctx context.Context) (dataset.Dataset, error) {
	if s.fetchTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.fetchTimeout)
		defer cancel()
	}

	values, err := s.src.Fetch(ctx, s.rangeRef)
	if err != nil {
		return dataset.Dataset{}, err
	}
	return dataset.New(values), nil
}

func (s *Session) fail(ctx context.Context, ev QueryEvent, start time.Time, prefix string, err error) string {
	msg := MapError(err)
	level := slog.LevelWarn
	if !IsUserFacing(err) {
		level = slog.LevelError
	}
	logging.FromContext(ctx).Log(ctx, level, "query failed",
		"operation", ev.Operation,
		"code", msg.Code,
		"error", err,
	)

	ev.Outcome = OutcomeError
	ev.ErrorCode = msg.Code
	ev.Err = err
	s.record(ctx, ev, start)

	return prefix + FormatUserError(err)
}

func (s *Session) record(ctx context.Context, ev QueryEvent, start time.Time) {
	ev.ChatID = ChatIDFromContext(ctx)
	ev.Duration = time.Since(start)

	logging.FromContext(ctx).Debug("query handled",
		"operation", ev.Operation,
		"outcome", ev.Outcome,
		"matches", ev.Matches,
		"rows", ev.Rows,
		"duration_ms", ev.Duration.Milliseconds(),
	)

	if s.recorder == nil {
		return
	}
	if err := s.recorder.Record(ctx, ev); err != nil {
		logging.FromContext(ctx).Warn("failed to record query event", "operation", ev.Operation, "error", err)
	}
}
