package sqlmodel

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"
	"strings"
)

// Insert accumulates the column values of one record and renders the INSERT
// statement for it. It is the runtime engine behind the generated typestate
// builders, and can be used directly when the record shape is only known at
// run time; in that case completeness is checked when the record is
// finalized instead of at compile time.
//
// An Insert is owned by a single caller and is not safe for concurrent use.
type Insert struct {
	model  *Model
	values map[string]any
	extra  []string // columns unknown to the model, in first-set order
}

// NewInsert starts an empty record for m.
func NewInsert(m *Model) *Insert {
	return &Insert{model: m, values: make(map[string]any, len(m.Columns))}
}

// Model returns the model the record belongs to.
func (b *Insert) Model() *Model {
	if b == nil {
		return nil
	}
	return b.model
}

// Set records value for column. A later Set of the same column overwrites
// the earlier value. Columns the model does not declare are kept and make
// the statement fail to prepare. Set on a nil Insert is a no-op that
// returns nil.
func (b *Insert) Set(column string, value any) *Insert {
	if b == nil {
		return nil
	}
	if _, seen := b.values[column]; !seen {
		if _, known := b.model.Column(column); !known {
			b.extra = append(b.extra, column)
		}
	}
	b.values[column] = value
	return b
}

// IsSet reports whether a value has been supplied for column.
func (b *Insert) IsSet(column string) bool {
	if b == nil {
		return false
	}
	_, ok := b.values[column]
	return ok
}

// Missing returns the mandatory columns that have no value yet, in
// declaration order.
func (b *Insert) Missing() []string {
	if b == nil {
		return nil
	}
	var missing []string
	for _, c := range b.model.Mandatory() {
		if !b.IsSet(c.Name) {
			missing = append(missing, c.Name)
		}
	}
	return missing
}

// complete returns ErrIncompleteRecord when a mandatory column is missing.
func (b *Insert) complete() error {
	missing := b.Missing()
	if len(missing) == 0 {
		return nil
	}
	return &Error{
		Kind:  KindIncompleteRecord,
		Table: b.model.Table,
		Err:   fmt.Errorf("missing mandatory columns: %s", strings.Join(missing, ", ")),
	}
}

// SQL renders the INSERT statement and its positional arguments. Only
// supplied columns are listed: declared columns in declaration order, then
// undeclared ones in the order they were first set. Placeholders are
// numbered ?1..?n in the same order as the arguments.
func (b *Insert) SQL() (string, []any) {
	var cols []string
	var args []any
	for _, c := range b.model.Columns {
		if v, ok := b.values[c.Name]; ok {
			cols = append(cols, c.Name)
			args = append(args, v)
		}
	}
	for _, name := range b.extra {
		cols = append(cols, name)
		args = append(args, b.values[name])
	}

	table := QuoteName(b.model.Table)
	if len(cols) == 0 {
		return "INSERT INTO " + table + " DEFAULT VALUES", nil
	}

	placeholders := make([]string, len(cols))
	for i := range cols {
		cols[i] = QuoteName(cols[i])
		placeholders[i] = "?" + strconv.Itoa(i+1)
	}
	query := fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)", table, strings.Join(cols, ","), strings.Join(placeholders, ", "))
	return query, args
}

// Exec finalizes the record against e: it verifies that every mandatory
// column was supplied, prepares the statement, and executes it. It returns
// the number of affected rows.
func (b *Insert) Exec(ctx context.Context, e Executor) (int64, error) {
	return b.exec(ctx, func(ctx context.Context, query string, nargs int) (*sql.Stmt, func(), error) {
		stmt, err := prepare(ctx, e, query, nargs)
		if err != nil {
			return nil, nil, err
		}
		return stmt, func() { stmt.Close() }, nil
	})
}

// prepare compiles query and returns a prepared statement for it. The
// SQLite driver defers compilation to the first execution, so the statement
// is first compiled through EXPLAIN with nargs NULL arguments, which reports
// syntax errors and unknown tables or columns without running it.
func prepare(ctx context.Context, e Executor, query string, nargs int) (*sql.Stmt, error) {
	if _, err := e.ExecContext(ctx, "EXPLAIN "+query, make([]any, nargs)...); err != nil {
		return nil, err
	}
	return e.PrepareContext(ctx, query)
}

// prepareFunc returns a prepared statement and a function releasing it.
type prepareFunc func(ctx context.Context, query string, nargs int) (*sql.Stmt, func(), error)

func (b *Insert) exec(ctx context.Context, prepare prepareFunc) (int64, error) {
	if b == nil {
		return 0, &Error{Kind: KindBuilderConsumed}
	}
	if err := b.complete(); err != nil {
		return 0, err
	}

	query, args := b.SQL()
	stmt, release, err := prepare(ctx, query, len(args))
	if err != nil {
		return 0, newError(KindStatement, b.model.Table, err)
	}
	defer release()

	res, err := stmt.ExecContext(ctx, args...)
	if err != nil {
		return 0, newError(KindInsert, b.model.Table, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, newError(KindInsert, b.model.Table, err)
	}
	return n, nil
}
