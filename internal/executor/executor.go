package executor

import (
	"context"
	"fmt"
	"time"

	"github.com/aqasim81/voice-schema/internal/database"
	"github.com/aqasim81/voice-schema/internal/schema"
)

// Progress status constants reported via ProgressEvent.
const (
	StatusApplied         = "applied"
	StatusExists          = "exists"
	StatusDuplicateColumn = "duplicate-column"
	StatusFailed          = "failed"
	StatusSkipped         = "skipped"
)

// ProgressEvent is emitted by the executor for each statement processed.
type ProgressEvent struct {
	Statement *schema.Statement
	Index     int // position in the plan, 0-based
	Total     int
	Status    string
	Duration  time.Duration
	Error     error
}

// Summary counts statement outcomes of one run and holds the catalog read
// after commit.
type Summary struct {
	Checksum         string
	Applied          int
	Exists           int
	DuplicateColumns int
	Failed           int
	Skipped          int
	Committed        bool
	Catalog          *Catalog
}

// Anomalies returns the number of statements that failed unexpectedly.
func (s *Summary) Anomalies() int {
	return s.Failed
}

// Executor applies a statement plan through one database session.
type Executor struct {
	session          database.Session
	statementTimeout time.Duration
	dryRun           bool
	onProgress       func(ProgressEvent)
}

// Option configures an Executor.
type Option func(*Executor)

// WithStatementTimeout bounds each statement with a context deadline.
func WithStatementTimeout(d time.Duration) Option {
	return func(e *Executor) { e.statementTimeout = d }
}

// WithDryRun enables dry-run mode where no SQL is executed.
func WithDryRun(b bool) Option {
	return func(e *Executor) { e.dryRun = b }
}

// WithProgressCallback sets a function called for each statement processed.
func WithProgressCallback(fn func(ProgressEvent)) Option {
	return func(e *Executor) { e.onProgress = fn }
}

// New creates an Executor bound to session. The caller owns the session
// and must Close it.
func New(session database.Session, opts ...Option) *Executor {
	e := &Executor{session: session}

	for _, opt := range opts {
		opt(e)
	}

	return e
}

// Run applies the ensure statements, then the additive statements, commits
// once and reads back the catalog. Statement failures are reported through
// progress events and counted in the summary; only a commit or catalog
// error is returned.
func (e *Executor) Run(ctx context.Context, p *schema.Plan) (*Summary, error) {
	summary := &Summary{Checksum: p.Checksum()}
	all := p.All()

	if e.dryRun {
		for i := range all {
			summary.Skipped++
			e.fireProgress(ProgressEvent{Statement: &all[i], Index: i, Total: len(all), Status: StatusSkipped})
		}

		return summary, nil
	}

	for i := range all {
		status, duration, err := e.applyOne(ctx, &all[i])
		summary.count(status)

		e.fireProgress(ProgressEvent{
			Statement: &all[i],
			Index:     i,
			Total:     len(all),
			Status:    status,
			Duration:  duration,
			Error:     err,
		})
	}

	if err := e.session.Commit(ctx); err != nil {
		return summary, fmt.Errorf("%w: %w", ErrCommitFailed, err)
	}

	summary.Committed = true

	catalog, err := Inspect(ctx, e.session)
	if err != nil {
		return summary, err
	}

	summary.Catalog = catalog

	return summary, nil
}

// applyOne executes a single statement and classifies the result.
// Create statements are guarded with IF NOT EXISTS and succeed silently on
// reruns, so their target is looked up first to report "exists".
func (e *Executor) applyOne(ctx context.Context, st *schema.Statement) (string, time.Duration, error) {
	existed := false

	if kind, ok := objectKind(st.Phase); ok {
		// A failed lookup only loses the "exists" label.
		if found, err := e.session.ObjectExists(ctx, kind, st.Object); err == nil {
			existed = found
		}
	}

	stmtCtx := ctx
	if e.statementTimeout > 0 {
		var cancel context.CancelFunc

		stmtCtx, cancel = context.WithTimeout(ctx, e.statementTimeout)
		defer cancel()
	}

	start := time.Now()
	err := e.session.Exec(stmtCtx, st.SQL)
	duration := time.Since(start)

	switch database.Classify(err) {
	case database.Applied:
		if existed {
			return StatusExists, duration, nil
		}

		return StatusApplied, duration, nil
	case database.AlreadyExists:
		return StatusExists, duration, err
	case database.DuplicateColumn:
		return StatusDuplicateColumn, duration, err
	default:
		return StatusFailed, duration, err
	}
}

func objectKind(p schema.Phase) (database.ObjectKind, bool) {
	switch p {
	case schema.PhaseCreateTable:
		return database.KindTable, true
	case schema.PhaseCreateIndex:
		return database.KindIndex, true
	default:
		return "", false
	}
}

func (s *Summary) count(status string) {
	switch status {
	case StatusApplied:
		s.Applied++
	case StatusExists:
		s.Exists++
	case StatusDuplicateColumn:
		s.DuplicateColumns++
	case StatusFailed:
		s.Failed++
	case StatusSkipped:
		s.Skipped++
	}
}

func (e *Executor) fireProgress(event ProgressEvent) {
	if e.onProgress != nil {
		e.onProgress(event)
	}
}
