package tasks

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/HendryAvila/taskstore/internal/config"
	"github.com/HendryAvila/taskstore/internal/storage"
)

// Connector supplies the shared database handle. *storage.Provider is the
// production implementation; it returns storage.ErrNotConfigured when no
// endpoint is set.
type Connector interface {
	Conn(ctx context.Context) (*sql.DB, storage.Dialect, error)
}

// Options tunes a Store. Zero values fall back to config.Default.
type Options struct {
	Logger           *slog.Logger
	OperationTimeout time.Duration
	MaxResults       int
}

// OptionsFromConfig maps the runtime configuration onto Options.
func OptionsFromConfig(cfg config.Config, logger *slog.Logger) Options {
	return Options{
		Logger:           logger,
		OperationTimeout: cfg.OperationTimeout,
		MaxResults:       cfg.MaxResults,
	}
}

// Store is the task operations API. Each operation is one short, fixed
// sequence of statements and relies on the backend's per-statement
// atomicity; the only lock guards the schema bootstrap.
type Store struct {
	conns      Connector
	logger     *slog.Logger
	opTimeout  time.Duration
	maxResults int
	hooks      storeHooks

	schemaMu    sync.Mutex
	schemaReady bool
}

// New creates a Store over conns.
func New(conns Connector, opts Options) *Store {
	def := config.Default()
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if opts.OperationTimeout <= 0 {
		opts.OperationTimeout = def.OperationTimeout
	}
	if opts.MaxResults <= 0 {
		opts.MaxResults = def.MaxResults
	}
	return &Store{
		conns:      conns,
		logger:     opts.Logger,
		opTimeout:  opts.OperationTimeout,
		maxResults: opts.MaxResults,
		hooks:      defaultStoreHooks(),
	}
}

// ─── Statement hooks ─────────────────────────────────────────────────────────

type execQueryer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
}

type storeHooks struct {
	exec  func(ctx context.Context, db execQueryer, query string, args ...any) (sql.Result, error)
	query func(ctx context.Context, db execQueryer, query string, args ...any) (*sql.Rows, error)
}

func defaultStoreHooks() storeHooks {
	return storeHooks{
		exec: func(ctx context.Context, db execQueryer, query string, args ...any) (sql.Result, error) {
			return db.ExecContext(ctx, query, args...)
		},
		query: func(ctx context.Context, db execQueryer, query string, args ...any) (*sql.Rows, error) {
			return db.QueryContext(ctx, query, args...)
		},
	}
}

func (s *Store) execHook(ctx context.Context, db execQueryer, query string, args ...any) (sql.Result, error) {
	var res sql.Result
	err := storage.RetryOnBusy(ctx, storage.DefaultBusyRetries, func() error {
		var err error
		if s.hooks.exec != nil {
			res, err = s.hooks.exec(ctx, db, query, args...)
		} else {
			res, err = db.ExecContext(ctx, query, args...)
		}
		return err
	})
	return res, err
}

func (s *Store) queryHook(ctx context.Context, db execQueryer, query string, args ...any) (*sql.Rows, error) {
	var rows *sql.Rows
	err := storage.RetryOnBusy(ctx, storage.DefaultBusyRetries, func() error {
		var err error
		if s.hooks.query != nil {
			rows, err = s.hooks.query(ctx, db, query, args...)
		} else {
			rows, err = db.QueryContext(ctx, query, args...)
		}
		return err
	})
	return rows, err
}

// ─── Operation plumbing ──────────────────────────────────────────────────────

func (s *Store) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if s.opTimeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, s.opTimeout)
}

// begin bounds ctx by the operation timeout and resolves a live handle,
// bootstrapping the schema on first use. cancel is always non-nil.
func (s *Store) begin(ctx context.Context) (context.Context, context.CancelFunc, *sql.DB, storage.Dialect, error) {
	ctx, cancel := s.withTimeout(ctx)
	db, d, err := s.conns.Conn(ctx)
	if err != nil {
		return ctx, cancel, nil, nil, err
	}
	s.ensureSchema(ctx, db, d)
	return ctx, cancel, db, d, nil
}

// now is the store clock at storage precision.
func (s *Store) now() time.Time {
	return storage.NormalizeTime(timeNow())
}

// failure turns any error into a failed Outcome. Backend errors are logged
// and wrapped; the other kinds are expected and only reported.
func (s *Store) failure(op, id string, err error) Outcome {
	var (
		nf *NotFoundError
		ve *ValidationError
	)
	switch {
	case errors.Is(err, ErrNotConfigured):
		return Outcome{Message: notConfiguredMessage, Err: err}
	case errors.As(err, &nf):
		return Outcome{Message: nf.Error(), Err: err}
	case errors.As(err, &ve):
		return Outcome{Message: fmt.Sprintf("Failed to %s: %s", op, ve.Error()), Err: err}
	}

	attrs := []any{"op", op, "error", err}
	if id != "" {
		attrs = append(attrs, "task_id", id)
	}
	s.logger.Error("task operation failed", attrs...)

	cause := err.Error()
	if errors.Is(err, context.DeadlineExceeded) {
		cause = fmt.Sprintf("timed out after %s", s.opTimeout)
	}
	return Outcome{
		Message: fmt.Sprintf("Failed to %s: %s", op, cause),
		Err:     &BackendError{Op: op, Err: err},
	}
}

// queryTasks runs q and decodes every row.
func (s *Store) queryTasks(ctx context.Context, db execQueryer, d storage.Dialect, q Query) ([]Task, error) {
	query, args, err := q.Compile(d)
	if err != nil {
		return nil, err
	}

	rows, err := s.queryHook(ctx, db, query, args...)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	results := []Task{}
	for rows.Next() {
		var t Task
		if err := scanTask(rows.Scan, d, &t); err != nil {
			return nil, err
		}
		results = append(results, t)
	}
	return results, rows.Err()
}

// fetch loads one task by id or returns a *NotFoundError.
func (s *Store) fetch(ctx context.Context, db execQueryer, d storage.Dialect, id string) (*Task, error) {
	found, err := s.queryTasks(ctx, db, d, Query{
		Where: []Predicate{Eq{Column: ColumnID, Value: id}},
		Limit: 1,
	})
	if err != nil {
		return nil, err
	}
	if len(found) == 0 {
		return nil, &NotFoundError{ID: id}
	}
	return &found[0], nil
}

// requireID rejects a blank id before any statement is issued.
func requireID(id string) error {
	if id == "" {
		return &ValidationError{Field: "id", Reason: "must not be empty"}
	}
	return nil
}
