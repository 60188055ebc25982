package source

import (
	"context"
	"database/sql"
	"fmt"
	"math"
	"regexp"
	"strings"

	_ "github.com/jackc/pgx/v5/stdlib" // register pgx as a database/sql driver
	"github.com/pkg/errors"
	_ "modernc.org/sqlite" // register the embedded sqlite driver

	"github.com/KaramelBytes/tdfdash/internal/stages"
)

const (
	warehouseDriver = "pgx"
	memoryDriver    = "sqlite"

	// DefaultTable is the table name the chat prompt and queries refer to.
	DefaultTable = "stages"
)

// ErrNotReadOnly rejects statements other than a single SELECT/WITH query.
var ErrNotReadOnly = errors.New("only a single read-only SELECT statement is allowed")

// Source supplies the stage-results table and answers filter queries
// written against it.
type Source interface {
	Name() string
	// Table is the name queries should select from.
	Table() string
	Load(ctx context.Context) ([]stages.Row, error)
	Query(ctx context.Context, query string) ([]stages.Row, error)
	Close() error
}

// SQLSource serves the table from any database/sql engine.
type SQLSource struct {
	db    *sql.DB
	name  string
	table string
	// readOnlyTx wraps every query in a read-only transaction. The memory
	// engine is locked with PRAGMA query_only instead.
	readOnlyTx bool
}

var tableNamePattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*(\.[A-Za-z_][A-Za-z0-9_]*){0,2}$`)

// OpenWarehouse connects to a Postgres-compatible warehouse and verifies
// that table is reachable.
func OpenWarehouse(ctx context.Context, dsn, table string) (*SQLSource, error) {
	if dsn == "" {
		return nil, errors.New("warehouse dsn is empty")
	}
	if table == "" {
		table = DefaultTable
	}
	if !tableNamePattern.MatchString(table) {
		return nil, errors.Errorf("invalid warehouse table name %q", table)
	}
	db, err := sql.Open(warehouseDriver, dsn)
	if err != nil {
		return nil, errors.Wrap(err, "open warehouse")
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, errors.Wrap(err, "ping warehouse")
	}
	return &SQLSource{db: db, name: "warehouse:" + table, table: table, readOnlyTx: true}, nil
}

const memorySchema = `CREATE TABLE stages (
	rider TEXT NOT NULL,
	rank INTEGER,
	elapsed REAL,
	age REAL,
	year INTEGER NOT NULL,
	stage_results_id TEXT NOT NULL
)`

// NewMemory copies rows into an in-process sqlite database so that chat
// queries work the same way for file-backed data as for a warehouse.
func NewMemory(ctx context.Context, name string, rows []stages.Row) (*SQLSource, error) {
	db, err := sql.Open(memoryDriver, ":memory:")
	if err != nil {
		return nil, errors.Wrap(err, "open memory engine")
	}
	// Each sqlite connection owns a separate :memory: database.
	db.SetMaxOpenConns(1)
	if _, err := db.ExecContext(ctx, memorySchema); err != nil {
		_ = db.Close()
		return nil, errors.Wrap(err, "create schema")
	}
	if err := insertRows(ctx, db, rows); err != nil {
		_ = db.Close()
		return nil, err
	}
	if _, err := db.ExecContext(ctx, "PRAGMA query_only = ON"); err != nil {
		_ = db.Close()
		return nil, errors.Wrap(err, "lock memory engine")
	}
	return &SQLSource{db: db, name: name, table: DefaultTable}, nil
}

func insertRows(ctx context.Context, db *sql.DB, rows []stages.Row) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return errors.Wrap(err, "begin insert")
	}
	stmt, err := tx.PrepareContext(ctx, `INSERT INTO stages (rider, rank, elapsed, age, year, stage_results_id) VALUES (?, ?, ?, ?, ?, ?)`)
	if err != nil {
		_ = tx.Rollback()
		return errors.Wrap(err, "prepare insert")
	}
	defer stmt.Close()
	for i, r := range rows {
		if _, err := stmt.ExecContext(ctx, r.Rider, nullInt(r.Rank), nullFloat(r.Elapsed), nullFloat(r.Age), r.Year, r.StageResultsID); err != nil {
			_ = tx.Rollback()
			return errors.Wrapf(err, "insert row %d", i+1)
		}
	}
	return errors.Wrap(tx.Commit(), "commit insert")
}

// Name identifies the source in logs and prompts.
func (s *SQLSource) Name() string { return s.name }

// Table is the table name queries should select from.
func (s *SQLSource) Table() string { return s.table }

// Load returns the full table.
func (s *SQLSource) Load(ctx context.Context) ([]stages.Row, error) {
	q := fmt.Sprintf("SELECT %s FROM %s", strings.Join(stages.Columns, ", "), s.table)
	rows, err := s.query(ctx, q)
	if err != nil {
		return nil, errors.Wrapf(err, "load %s", s.name)
	}
	return rows, nil
}

// Query runs a read-only filter query whose result has the table's columns.
func (s *SQLSource) Query(ctx context.Context, query string) ([]stages.Row, error) {
	q, err := ReadOnly(query)
	if err != nil {
		return nil, err
	}
	return s.query(ctx, q)
}

// Close releases the underlying connection pool.
func (s *SQLSource) Close() error { return s.db.Close() }

type queryer interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
}

func (s *SQLSource) query(ctx context.Context, q string) ([]stages.Row, error) {
	var db queryer = s.db
	if s.readOnlyTx {
		tx, err := s.db.BeginTx(ctx, &sql.TxOptions{ReadOnly: true})
		if err != nil {
			return nil, errors.Wrap(err, "begin read-only")
		}
		defer func() { _ = tx.Rollback() }()
		db = tx
	}
	rs, err := db.QueryContext(ctx, q)
	if err != nil {
		return nil, errors.Wrap(err, "query")
	}
	defer rs.Close()
	cols, err := rs.Columns()
	if err != nil {
		return nil, errors.Wrap(err, "columns")
	}
	if err := stages.RequireColumns(cols); err != nil {
		return nil, err
	}
	pos := make(map[string]int, len(cols))
	for i, c := range cols {
		pos[strings.ToLower(strings.TrimSpace(c))] = i
	}

	var (
		rider, stage sql.NullString
		rank, year   sql.NullInt64
		elapsed, age sql.NullFloat64
		discard      any
		out          []stages.Row
	)
	dest := make([]any, len(cols))
	for i := range dest {
		dest[i] = &discard
	}
	dest[pos[stages.ColRider]] = &rider
	dest[pos[stages.ColRank]] = &rank
	dest[pos[stages.ColElapsed]] = &elapsed
	dest[pos[stages.ColAge]] = &age
	dest[pos[stages.ColYear]] = &year
	dest[pos[stages.ColStageResultsID]] = &stage

	for rs.Next() {
		if err := rs.Scan(dest...); err != nil {
			return nil, errors.Wrapf(err, "scan row %d", len(out)+1)
		}
		if !rider.Valid || !year.Valid || !stage.Valid {
			return nil, &stages.InvalidInputError{Reason: fmt.Sprintf("row %d: rider, year and stage_results_id are required", len(out)+1)}
		}
		r := stages.Row{Rider: rider.String, Year: int(year.Int64), StageResultsID: stage.String}
		if rank.Valid {
			r.Rank = stages.Int(int(rank.Int64))
		}
		if elapsed.Valid {
			if math.IsInf(elapsed.Float64, 0) {
				return nil, &stages.InvalidInputError{Column: stages.ColElapsed, Reason: fmt.Sprintf("row %d: not a finite number", len(out)+1)}
			}
			r.Elapsed = stages.Float(elapsed.Float64)
		}
		if age.Valid {
			if math.IsInf(age.Float64, 0) {
				return nil, &stages.InvalidInputError{Column: stages.ColAge, Reason: fmt.Sprintf("row %d: not a finite number", len(out)+1)}
			}
			r.Age = stages.Float(age.Float64)
		}
		out = append(out, r)
	}
	return out, errors.Wrap(rs.Err(), "iterate rows")
}

// writeKeywords are statement words that can change data or schema. A
// SELECT or WITH prefix alone does not rule them out: WITH ... DELETE and
// SELECT ... INTO both write.
var writeKeywords = map[string]bool{
	"insert": true, "update": true, "delete": true, "merge": true,
	"upsert": true, "into": true, "create": true, "drop": true, "alter": true,
	"truncate": true, "attach": true, "detach": true, "pragma": true, "vacuum": true,
	"reindex": true, "grant": true, "revoke": true, "copy": true, "call": true,
	"execute": true, "lock": true,
}

// ReadOnly normalizes query and rejects anything but a single SELECT or
// WITH statement free of write keywords. Quoted text and comments are not
// inspected.
func ReadOnly(query string) (string, error) {
	q := strings.TrimSpace(query)
	q = strings.TrimSpace(strings.TrimSuffix(q, ";"))
	if q == "" {
		return "", ErrNotReadOnly
	}
	words, ok := statementWords(q)
	if !ok || len(words) == 0 {
		return "", ErrNotReadOnly
	}
	if words[0] != "select" && words[0] != "with" {
		return "", ErrNotReadOnly
	}
	for _, w := range words {
		if writeKeywords[w] {
			return "", ErrNotReadOnly
		}
	}
	return q, nil
}

// statementWords lowercases the bare words of q outside string literals,
// quoted identifiers and comments. ok is false for a second statement or
// an unterminated quote or comment.
func statementWords(q string) (words []string, ok bool) {
	var word strings.Builder
	flush := func() {
		if word.Len() > 0 {
			words = append(words, strings.ToLower(word.String()))
			word.Reset()
		}
	}
	for i := 0; i < len(q); i++ {
		c := q[i]
		switch {
		case c == '\'' || c == '"' || c == '`':
			flush()
			end := closingQuote(q, i+1, c)
			if end < 0 {
				return nil, false
			}
			i = end
		case c == '-' && i+1 < len(q) && q[i+1] == '-':
			flush()
			nl := strings.IndexByte(q[i:], '\n')
			if nl < 0 {
				return words, true
			}
			i += nl
		case c == '/' && i+1 < len(q) && q[i+1] == '*':
			flush()
			end := strings.Index(q[i+2:], "*/")
			if end < 0 {
				return nil, false
			}
			i += end + 3
		case c == ';':
			return nil, false
		case c == '_' || c >= '0' && c <= '9' || c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z':
			word.WriteByte(c)
		default:
			flush()
		}
	}
	flush()
	return words, true
}

// closingQuote returns the index of the quote ending a literal opened before
// start, treating a doubled quote as an escape, or -1.
func closingQuote(q string, start int, quote byte) int {
	for i := start; i < len(q); i++ {
		if q[i] != quote {
			continue
		}
		if i+1 < len(q) && q[i+1] == quote {
			i++
			continue
		}
		return i
	}
	return -1
}

func nullInt(v *int) any {
	if v == nil {
		return nil
	}
	return *v
}

func nullFloat(v *float64) any {
	if v == nil {
		return nil
	}
	return *v
}
