// Package storage resolves the backend endpoint and hands out a shared
// database handle.
//
// The handle is opened lazily on first use and reused for the lifetime of
// the Provider. A Provider built without an endpoint never fails hard: every
// call to Conn returns ErrNotConfigured.
package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/HendryAvila/taskstore/internal/config"

	_ "github.com/jackc/pgx/v5/stdlib"
	_ "modernc.org/sqlite"
)

// openDB is a package-level var to allow test injection.
var openDB = sql.Open

// ErrNotConfigured is returned when no backend endpoint was resolved.
var ErrNotConfigured = errors.New("database not configured")

// Endpoint is a parsed backend URL.
type Endpoint struct {
	Driver  string
	DSN     string
	Dialect Dialect
	// Memory is true for in-memory SQLite, which must stay on one connection.
	Memory bool
	// Path is the SQLite database file, empty otherwise.
	Path string
}

// sqlitePragmas are applied to every SQLite connection through the DSN so
// that each pooled connection gets them.
var sqlitePragmas = []string{
	"busy_timeout(5000)",
	"journal_mode(WAL)",
	"synchronous(NORMAL)",
	"foreign_keys(1)",
}

// ParseEndpoint maps a database URL to a driver and dialect.
//
//	postgres://... | postgresql://...   pgx
//	sqlite://<path> | file:<path>       modernc sqlite
//	sqlite::memory: | :memory:          modernc sqlite, in memory
func ParseEndpoint(url string) (Endpoint, error) {
	url = strings.TrimSpace(url)
	switch {
	case url == "":
		return Endpoint{}, ErrNotConfigured
	case strings.HasPrefix(url, "postgres://"), strings.HasPrefix(url, "postgresql://"):
		return Endpoint{Driver: "pgx", DSN: url, Dialect: Postgres()}, nil
	case url == "sqlite::memory:", url == ":memory:", url == "sqlite://:memory:":
		return Endpoint{Driver: "sqlite", DSN: ":memory:", Dialect: SQLite(), Memory: true}, nil
	case strings.HasPrefix(url, "sqlite://"), strings.HasPrefix(url, "file:"):
		path := strings.TrimPrefix(strings.TrimPrefix(url, "sqlite://"), "file:")
		if i := strings.IndexByte(path, '?'); i >= 0 {
			path = path[:i]
		}
		if path == "" {
			return Endpoint{}, fmt.Errorf("sqlite url %q has no path", url)
		}
		return Endpoint{Driver: "sqlite", DSN: sqliteDSN(path), Dialect: SQLite(), Path: path}, nil
	default:
		return Endpoint{}, fmt.Errorf("unsupported database url scheme in %q", redact(url))
	}
}

func sqliteDSN(path string) string {
	params := make([]string, 0, len(sqlitePragmas))
	for _, p := range sqlitePragmas {
		params = append(params, "_pragma="+p)
	}
	return "file:" + path + "?" + strings.Join(params, "&")
}

// redact drops credentials from a URL before it is logged or returned.
func redact(url string) string {
	scheme, rest, ok := strings.Cut(url, "://")
	if !ok {
		return url
	}
	if at := strings.LastIndexByte(rest, '@'); at >= 0 {
		rest = "***@" + rest[at+1:]
	}
	return scheme + "://" + rest
}

// Provider resolves and caches the process-wide database handle.
type Provider struct {
	cfg    config.Config
	logger *slog.Logger

	mu      sync.Mutex
	db      *sql.DB
	dialect Dialect
}

// NewProvider creates a Provider. Nothing is opened until the first Conn.
func NewProvider(cfg config.Config, logger *slog.Logger) *Provider {
	if logger == nil {
		logger = slog.Default()
	}
	return &Provider{cfg: cfg, logger: logger}
}

// Configured reports whether an endpoint is available.
func (p *Provider) Configured() bool {
	return p.cfg.Configured()
}

// Conn returns the shared handle, opening it on first use. A failed open is
// not cached, so the next call tries again.
func (p *Provider) Conn(ctx context.Context) (*sql.DB, Dialect, error) {
	if !p.Configured() {
		return nil, nil, ErrNotConfigured
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	if p.db != nil {
		return p.db, p.dialect, nil
	}

	ep, err := ParseEndpoint(p.cfg.DatabaseURL)
	if err != nil {
		return nil, nil, err
	}

	db, err := p.open(ctx, ep)
	if err != nil {
		return nil, nil, err
	}

	p.db, p.dialect = db, ep.Dialect
	p.logger.Info("database connected", "driver", ep.Driver, "endpoint", redact(p.cfg.DatabaseURL))
	return p.db, p.dialect, nil
}

func (p *Provider) open(ctx context.Context, ep Endpoint) (*sql.DB, error) {
	if ep.Path != "" {
		if err := os.MkdirAll(filepath.Dir(ep.Path), 0o700); err != nil {
			return nil, fmt.Errorf("create data dir: %w", err)
		}
	}

	db, err := openDB(ep.Driver, ep.DSN)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	if ep.Driver == "sqlite" {
		// One writer at a time; for :memory: every connection would
		// otherwise see its own empty database.
		db.SetMaxOpenConns(1)
		db.SetMaxIdleConns(1)
	}

	pingCtx := ctx
	if p.cfg.ConnectTimeout > 0 {
		var cancel context.CancelFunc
		pingCtx, cancel = context.WithTimeout(ctx, p.cfg.ConnectTimeout)
		defer cancel()
	}
	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("connect to %s: %w", ep.Dialect.Name(), err)
	}
	return db, nil
}

// Close releases the handle if one was opened. It is meant for the process
// owner; the store itself never calls it.
func (p *Provider) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.db == nil {
		return nil
	}
	err := p.db.Close()
	p.db, p.dialect = nil, nil
	return err
}
