package sqlmodel

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"net/url"
	"reflect"

	"github.com/google/uuid"
	_ "modernc.org/sqlite" // registers the "sqlite" database/sql driver
)

const driverName = "sqlite"

// Executor is the part of a database handle the library needs: executing a
// statement and preparing one. *sql.DB, *sql.Tx and *sql.Conn implement it.
type Executor interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	PrepareContext(ctx context.Context, query string) (*sql.Stmt, error)
}

// Option configures a DB.
type Option func(*options)

type options struct {
	logger  *slog.Logger
	metrics *Metrics
	pragmas []string
}

// WithLogger sets the logger that receives debug records for table
// creation and inserts. The default discards everything.
func WithLogger(l *slog.Logger) Option {
	return func(o *options) {
		o.logger = l
	}
}

// WithMetrics records statement counters in m.
func WithMetrics(m *Metrics) Option {
	return func(o *options) {
		o.metrics = m
	}
}

// WithPragmas adds SQLite pragmas applied to every connection, written as
// "name(value)", e.g. "foreign_keys(ON)" or "busy_timeout(5000)". It only
// affects Open and OpenMemory.
func WithPragmas(pragmas ...string) Option {
	return func(o *options) {
		o.pragmas = append(o.pragmas, pragmas...)
	}
}

func buildOptions(opts []Option) *options {
	o := &options{}
	for _, opt := range opts {
		opt(o)
	}
	if o.logger == nil {
		o.logger = slog.New(slog.DiscardHandler)
	}
	return o
}

// DB is a SQLite database whose tables are those of schema S. Inserts of a
// record type are only accepted when S declares its table: the generated
// Insert functions require S to satisfy the record's capability constraint,
// and Finish re-checks the table at run time.
//
// A DB holds a single connection and is meant to be used from one goroutine.
type DB[S Schema] struct {
	sql     *sql.DB
	catalog *Catalog
	stmts   *stmtCache
	log     *slog.Logger
	metrics *Metrics
}

// Open opens (creating if needed) the SQLite database file at path and
// creates any missing tables of S. Failure to open returns ErrOpen, failure
// to create a table returns ErrSchema.
func Open[S Schema](ctx context.Context, path string, opts ...Option) (*DB[S], error) {
	if path == "" {
		return nil, &Error{Kind: KindOpen, Err: fmt.Errorf("empty database path")}
	}
	// Escaping the path keeps '?', '#' and '%' from being read as URI syntax.
	base := (&url.URL{Scheme: "file", Path: path}).String()
	return openDSN[S](ctx, base, url.Values{}, opts)
}

// OpenMemory opens a private in-memory database holding the tables of S.
// The database lives until Close.
func OpenMemory[S Schema](ctx context.Context, opts ...Option) (*DB[S], error) {
	q := url.Values{}
	q.Set("mode", "memory")
	q.Set("cache", "shared")
	return openDSN[S](ctx, "file:sqlmodel-"+uuid.NewString(), q, opts)
}

func openDSN[S Schema](ctx context.Context, base string, q url.Values, opts []Option) (*DB[S], error) {
	o := buildOptions(opts)
	for _, p := range o.pragmas {
		q.Add("_pragma", p)
	}
	dsn := base
	if len(q) > 0 {
		dsn += "?" + q.Encode()
	}

	sqlDB, err := sql.Open(driverName, dsn)
	if err != nil {
		return nil, &Error{Kind: KindOpen, Err: err}
	}
	sqlDB.SetMaxOpenConns(1)
	sqlDB.SetMaxIdleConns(1)
	sqlDB.SetConnMaxLifetime(0)
	sqlDB.SetConnMaxIdleTime(0)

	if err := sqlDB.PingContext(ctx); err != nil {
		_ = sqlDB.Close()
		return nil, &Error{Kind: KindOpen, Err: err}
	}

	db, err := newDB[S](ctx, sqlDB, o)
	if err != nil {
		_ = sqlDB.Close()
		return nil, err
	}
	return db, nil
}

// New wraps an already open handle and creates any missing tables of S.
// Closing the returned DB closes sqlDB.
func New[S Schema](ctx context.Context, sqlDB *sql.DB, opts ...Option) (*DB[S], error) {
	if sqlDB == nil {
		return nil, &Error{Kind: KindOpen, Err: fmt.Errorf("nil *sql.DB")}
	}
	return newDB[S](ctx, sqlDB, buildOptions(opts))
}

func newDB[S Schema](ctx context.Context, sqlDB *sql.DB, o *options) (*DB[S], error) {
	var schema S
	catalog, err := CatalogOf(schema)
	if err != nil {
		return nil, err
	}

	db := &DB[S]{
		sql:     sqlDB,
		catalog: catalog,
		stmts:   newStmtCache(sqlDB),
		log:     o.logger,
		metrics: o.metrics,
	}
	if err := db.create(ctx); err != nil {
		return nil, err
	}
	return db, nil
}

func (db *DB[S]) create(ctx context.Context) error {
	err := db.catalog.Create(ctx, observedExecutor{Executor: db.sql, metrics: db.metrics, kind: statementCreate})
	if err != nil {
		db.log.ErrorContext(ctx, "creating schema failed", "error", err)
		return err
	}
	for _, m := range db.catalog.Models() {
		db.log.DebugContext(ctx, "table ready", "table", m.Table, "columns", len(m.Columns))
	}
	return nil
}

// Catalog returns the tables of the database's schema.
func (db *DB[S]) Catalog() *Catalog {
	return db.catalog
}

// SQL returns the underlying handle.
func (db *DB[S]) SQL() *sql.DB {
	return db.sql
}

// Exec executes a statement and returns the number of affected rows. Errors
// are the driver's own.
func (db *DB[S]) Exec(ctx context.Context, query string, args ...any) (int64, error) {
	res, err := db.sql.ExecContext(ctx, query, args...)
	db.metrics.observe(statementExec, err)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// Prepare prepares a statement. The caller owns the returned statement.
func (db *DB[S]) Prepare(ctx context.Context, query string) (*sql.Stmt, error) {
	return db.sql.PrepareContext(ctx, query)
}

// Finish inserts the record accumulated in ins. The record's table must be
// part of S, otherwise ErrSchemaMismatch is returned. Generated Insert
// functions call Finish after the compiler has checked completeness and
// schema membership; called directly it also verifies at run time that
// every mandatory column was supplied (ErrIncompleteRecord).
func (db *DB[S]) Finish(ctx context.Context, ins *Insert) (int64, error) {
	if ins == nil {
		return 0, &Error{Kind: KindBuilderConsumed}
	}
	table := ins.Model().Table
	if !db.catalog.Contains(table) {
		return 0, &Error{Kind: KindSchemaMismatch, Table: table}
	}
	// An incomplete record never reaches the database, so it is not
	// counted as a statement.
	if err := ins.complete(); err != nil {
		return 0, err
	}

	n, err := ins.exec(ctx, db.stmts.prepare)
	db.metrics.observe(statementInsert, err)
	if err != nil {
		db.log.DebugContext(ctx, "insert failed", "table", table, "error", err)
		return 0, err
	}
	db.metrics.inserted(n)
	db.log.DebugContext(ctx, "inserted record", "table", table, "rows", n)
	return n, nil
}

// Close releases cached statements and closes the handle.
func (db *DB[S]) Close() error {
	db.stmts.close()
	return db.sql.Close()
}

// InsertRecord inserts a whole record value. The record's type is described
// by reflection (see Describe) and its table must belong to S. Pointer
// fields that are nil and auto-increment fields holding zero are left to
// the database.
func InsertRecord[S Schema](ctx context.Context, db *DB[S], rec any) (int64, error) {
	ins, err := RecordInsert(rec)
	if err != nil {
		return 0, err
	}
	return db.Finish(ctx, ins)
}

// RecordInsert converts a struct value (or pointer to one) into an Insert.
func RecordInsert(rec any) (*Insert, error) {
	v := reflect.ValueOf(rec)
	for v.Kind() == reflect.Pointer {
		if v.IsNil() {
			return nil, &Error{Kind: KindInvalidModel, Err: fmt.Errorf("nil record")}
		}
		v = v.Elem()
	}
	if !v.IsValid() {
		return nil, &Error{Kind: KindInvalidModel, Err: fmt.Errorf("nil record")}
	}

	m, err := DescribeType(v.Type())
	if err != nil {
		return nil, err
	}

	ins := NewInsert(m)
	col := 0
	for i := 0; i < v.NumField(); i++ {
		_, ok, _ := FieldFromStruct(v.Type().Field(i))
		if !ok {
			continue
		}
		c := m.Columns[col]
		col++

		fv := v.Field(i)
		if fv.Kind() == reflect.Pointer {
			if fv.IsNil() {
				continue
			}
			fv = fv.Elem()
		}
		if c.AutoIncrement && fv.IsZero() {
			continue
		}
		ins.Set(c.Name, fv.Interface())
	}
	return ins, nil
}

// observedExecutor counts every ExecContext call in metrics.
type observedExecutor struct {
	Executor
	metrics *Metrics
	kind    string
}

func (e observedExecutor) ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error) {
	res, err := e.Executor.ExecContext(ctx, query, args...)
	e.metrics.observe(e.kind, err)
	return res, err
}
