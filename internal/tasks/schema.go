package tasks

import (
	"context"
	"fmt"
	"strings"

	"github.com/HendryAvila/taskstore/internal/storage"
)

// schemaStatements returns the idempotent DDL for dialect d. Every
// statement uses IF NOT EXISTS so it can run on every process start.
func schemaStatements(d storage.Dialect) []string {
	ts := d.TimestampType()
	quoted := func(values []string) string {
		q := make([]string, len(values))
		for i, v := range values {
			q[i] = "'" + v + "'"
		}
		return strings.Join(q, ", ")
	}

	table := fmt.Sprintf(`
		CREATE TABLE IF NOT EXISTS %s (
			id           TEXT PRIMARY KEY,
			title        TEXT NOT NULL,
			description  TEXT NOT NULL,
			status       TEXT NOT NULL CHECK (status IN (%s)),
			priority     TEXT NOT NULL CHECK (priority IN (%s)),
			category     TEXT,
			tags         %s,
			created_at   %s NOT NULL,
			updated_at   %s NOT NULL,
			due_date     %s,
			completed_at %s
		)`,
		tableName,
		quoted(enumStrings(Statuses)),
		quoted(enumStrings(Priorities)),
		d.TagsType(), ts, ts, ts, ts,
	)

	return []string{
		table,
		`CREATE INDEX IF NOT EXISTS idx_tasks_status     ON tasks(status)`,
		`CREATE INDEX IF NOT EXISTS idx_tasks_priority   ON tasks(priority)`,
		`CREATE INDEX IF NOT EXISTS idx_tasks_category   ON tasks(category)`,
		`CREATE INDEX IF NOT EXISTS idx_tasks_created_at ON tasks(created_at DESC)`,
	}
}

// EnsureSchema creates the table and its indexes if they are missing and
// returns the first error. Operations run it lazily on their own and only
// log a failure; this entry point is for callers that want to know.
func (s *Store) EnsureSchema(ctx context.Context) error {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	db, d, err := s.conns.Conn(ctx)
	if err != nil {
		return err
	}
	if err := s.migrate(ctx, db, d); err != nil {
		return err
	}
	s.schemaMu.Lock()
	s.schemaReady = true
	s.schemaMu.Unlock()
	return nil
}

func (s *Store) migrate(ctx context.Context, db execQueryer, d storage.Dialect) error {
	for _, stmt := range schemaStatements(d) {
		if _, err := s.execHook(ctx, db, stmt); err != nil {
			return fmt.Errorf("tasks: migration: %w", err)
		}
	}
	return nil
}

// ensureSchema runs the migration until it first succeeds on a live handle.
// A failure is logged and swallowed so the caller's operation proceeds and
// fails on its own with a specific cause; the next operation tries again.
func (s *Store) ensureSchema(ctx context.Context, db execQueryer, d storage.Dialect) {
	s.schemaMu.Lock()
	defer s.schemaMu.Unlock()
	if s.schemaReady {
		return
	}
	if err := s.migrate(ctx, db, d); err != nil {
		s.logger.Warn("schema bootstrap failed", "dialect", d.Name(), "error", err)
		return
	}
	s.schemaReady = true
	s.logger.Debug("schema ready", "dialect", d.Name())
}
