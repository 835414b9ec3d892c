package tasks

import (
	"context"
	"database/sql"
	"strings"
	"time"
)

// This file only compiles during `go test`.

// SetTimeNow replaces the store clock until the returned func is called.
func SetTimeNow(fn func() time.Time) (restore func()) {
	prev := timeNow
	timeNow = fn
	return func() { timeNow = prev }
}

// FailExec makes every statement containing match fail with err.
func (s *Store) FailExec(match string, err error) {
	s.hooks.exec = func(ctx context.Context, db execQueryer, query string, args ...any) (sql.Result, error) {
		if strings.Contains(query, match) {
			return nil, err
		}
		return db.ExecContext(ctx, query, args...)
	}
}

// FailQuery makes every query containing match fail with err.
func (s *Store) FailQuery(match string, err error) {
	s.hooks.query = func(ctx context.Context, db execQueryer, query string, args ...any) (*sql.Rows, error) {
		if strings.Contains(query, match) {
			return nil, err
		}
		return db.QueryContext(ctx, query, args...)
	}
}

// StallQueries makes every query block until its context is done.
func (s *Store) StallQueries() {
	s.hooks.query = func(ctx context.Context, _ execQueryer, _ string, _ ...any) (*sql.Rows, error) {
		<-ctx.Done()
		return nil, ctx.Err()
	}
}

// ResetHooks restores the default statement hooks.
func (s *Store) ResetHooks() {
	s.hooks = defaultStoreHooks()
}

// SchemaReady reports whether the lazy bootstrap has succeeded.
func (s *Store) SchemaReady() bool {
	s.schemaMu.Lock()
	defer s.schemaMu.Unlock()
	return s.schemaReady
}
