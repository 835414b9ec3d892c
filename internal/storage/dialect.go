package storage

import (
	"database/sql"
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/jackc/pgx/v5/pgtype"
	"modernc.org/sqlite"
)

// Dialect captures the differences between the supported backends that the
// task store cares about: parameter syntax, column types and the encoding of
// timestamps and tag lists.
type Dialect interface {
	// Name returns "postgres" or "sqlite".
	Name() string
	// Placeholder returns the bind marker for the n-th (1-based) argument.
	Placeholder(n int) string
	// TimestampType is the column type used for timestamps.
	TimestampType() string
	// TagsType is the column type used for the tag list.
	TagsType() string
	// EncodeTime converts t into a value the driver stores losslessly.
	EncodeTime(t time.Time) any
	// EncodeTags converts tags into a driver value. Empty lists become NULL.
	EncodeTags(tags []string) (any, error)
	// TagsScanner returns a scanner that decodes the tag column into dst.
	TagsScanner(dst *[]string) sql.Scanner
	// Lower wraps a text expression in the backend's Unicode-aware
	// lowercasing function.
	Lower(expr string) string
	// TagMatch returns a boolean SQL expression that is true when any tag,
	// lowercased, is LIKE the pattern bound at placeholder.
	TagMatch(column, placeholder string) string
}

// Precision is the timestamp resolution both backends store.
const Precision = time.Microsecond

// sqliteTimeLayout is fixed width so TEXT ordering matches time ordering.
const sqliteTimeLayout = "2006-01-02T15:04:05.000000Z"

// NormalizeTime returns t in UTC at storage precision.
func NormalizeTime(t time.Time) time.Time {
	return t.UTC().Truncate(Precision)
}

// ParseTime parses a textual timestamp as written by either backend.
func ParseTime(s string) (time.Time, error) {
	layouts := []string{
		sqliteTimeLayout,
		time.RFC3339Nano,
		"2006-01-02 15:04:05.999999999-07:00",
		"2006-01-02 15:04:05.999999999",
		"2006-01-02 15:04:05",
	}
	for _, layout := range layouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized timestamp %q", s)
}

// ─── Postgres ────────────────────────────────────────────────────────────────

type postgresDialect struct {
	// pgtype.Map caches encode/decode plans and is not safe for concurrent use.
	mu    sync.Mutex
	types *pgtype.Map
}

// Postgres returns the dialect for the pgx stdlib driver.
func Postgres() Dialect {
	return &postgresDialect{types: pgtype.NewMap()}
}

func (d *postgresDialect) Name() string { return "postgres" }

func (d *postgresDialect) Placeholder(n int) string { return "$" + strconv.Itoa(n) }

func (d *postgresDialect) TimestampType() string { return "TIMESTAMPTZ" }

func (d *postgresDialect) TagsType() string { return "TEXT[]" }

func (d *postgresDialect) EncodeTime(t time.Time) any { return NormalizeTime(t) }

func (d *postgresDialect) EncodeTags(tags []string) (any, error) {
	if len(tags) == 0 {
		return nil, nil
	}
	return tags, nil
}

func (d *postgresDialect) TagsScanner(dst *[]string) sql.Scanner {
	return pgTagsScanner{d: d, dst: dst}
}

func (d *postgresDialect) Lower(expr string) string { return "LOWER(" + expr + ")" }

func (d *postgresDialect) TagMatch(column, placeholder string) string {
	return fmt.Sprintf(`EXISTS (SELECT 1 FROM unnest(%s) AS tag WHERE %s LIKE %s ESCAPE '\')`, column, d.Lower("tag"), placeholder)
}

type pgTagsScanner struct {
	d   *postgresDialect
	dst *[]string
}

func (s pgTagsScanner) Scan(src any) error {
	if src == nil {
		*s.dst = nil
		return nil
	}
	s.d.mu.Lock()
	defer s.d.mu.Unlock()
	return s.d.types.SQLScanner(s.dst).Scan(src)
}

// ─── SQLite ──────────────────────────────────────────────────────────────────

// sqliteLowerFunc replaces SQLite's LOWER, which only folds ASCII.
const sqliteLowerFunc = "unicode_lower"

func init() {
	sqlite.MustRegisterDeterministicScalarFunction(sqliteLowerFunc, 1, unicodeLower)
}

func unicodeLower(_ *sqlite.FunctionContext, args []driver.Value) (driver.Value, error) {
	switch v := args[0].(type) {
	case string:
		return strings.ToLower(v), nil
	case []byte:
		return strings.ToLower(string(v)), nil
	default:
		return v, nil
	}
}

type sqliteDialect struct{}

// SQLite returns the dialect for the modernc.org/sqlite driver. Timestamps
// are stored as fixed-width UTC text and tags as a JSON array.
func SQLite() Dialect {
	return sqliteDialect{}
}

func (sqliteDialect) Name() string { return "sqlite" }

func (sqliteDialect) Placeholder(int) string { return "?" }

func (sqliteDialect) TimestampType() string { return "TEXT" }

func (sqliteDialect) TagsType() string { return "TEXT" }

func (sqliteDialect) EncodeTime(t time.Time) any {
	return NormalizeTime(t).Format(sqliteTimeLayout)
}

func (sqliteDialect) EncodeTags(tags []string) (any, error) {
	if len(tags) == 0 {
		return nil, nil
	}
	b, err := json.Marshal(tags)
	if err != nil {
		return nil, fmt.Errorf("encode tags: %w", err)
	}
	return string(b), nil
}

func (sqliteDialect) TagsScanner(dst *[]string) sql.Scanner {
	return jsonTagsScanner{dst: dst}
}

func (sqliteDialect) Lower(expr string) string { return sqliteLowerFunc + "(" + expr + ")" }

func (d sqliteDialect) TagMatch(column, placeholder string) string {
	return fmt.Sprintf(`EXISTS (SELECT 1 FROM json_each(%s) WHERE %s LIKE %s ESCAPE '\')`, column, d.Lower("json_each.value"), placeholder)
}

type jsonTagsScanner struct {
	dst *[]string
}

func (s jsonTagsScanner) Scan(src any) error {
	var raw []byte
	switch v := src.(type) {
	case nil:
		*s.dst = nil
		return nil
	case string:
		raw = []byte(v)
	case []byte:
		raw = v
	default:
		return fmt.Errorf("decode tags: unsupported type %T", src)
	}
	if len(raw) == 0 {
		*s.dst = nil
		return nil
	}
	var tags []string
	if err := json.Unmarshal(raw, &tags); err != nil {
		return fmt.Errorf("decode tags: %w", err)
	}
	if len(tags) == 0 {
		tags = nil
	}
	*s.dst = tags
	return nil
}
