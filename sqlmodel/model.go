package sqlmodel

import (
	"fmt"
	"reflect"
	"strings"
	"sync"
)

// Model describes the table backing one record type. Generated code
// declares one Model per record type as a package-level value; it must not
// be modified after construction.
type Model struct {
	Table   string
	Columns []Column // declaration order
}

// NewModel returns a validated Model.
func NewModel(table string, columns ...Column) (*Model, error) {
	m := &Model{Table: table, Columns: columns}
	if err := m.Validate(); err != nil {
		return nil, err
	}
	return m, nil
}

// Validate checks that the model has a table name, at least one column,
// no duplicate column names, and well-formed columns.
func (m *Model) Validate() error {
	if m.Table == "" {
		return &Error{Kind: KindInvalidModel, Err: fmt.Errorf("empty table name")}
	}
	if len(m.Columns) == 0 {
		return &Error{Kind: KindInvalidModel, Table: m.Table, Err: fmt.Errorf("no columns")}
	}
	seen := make(map[string]bool, len(m.Columns))
	for _, c := range m.Columns {
		if seen[c.Name] {
			return &Error{Kind: KindInvalidModel, Table: m.Table, Column: c.Name, Err: fmt.Errorf("duplicate column")}
		}
		seen[c.Name] = true
		if err := c.validate(); err != nil {
			return &Error{Kind: KindInvalidModel, Table: m.Table, Column: c.Name, Err: err}
		}
	}
	return nil
}

// Column returns the column with the given name.
func (m *Model) Column(name string) (Column, bool) {
	for _, c := range m.Columns {
		if c.Name == name {
			return c, true
		}
	}
	return Column{}, false
}

// Mandatory returns the mandatory columns in declaration order.
func (m *Model) Mandatory() []Column {
	var out []Column
	for _, c := range m.Columns {
		if c.Mandatory() {
			out = append(out, c)
		}
	}
	return out
}

// CreateTableSQL renders the idempotent CREATE TABLE statement, e.g.
//
//	CREATE TABLE IF NOT EXISTS users(id INTEGER NOT NULL PRIMARY KEY, name TEXT NOT NULL UNIQUE)
func (m *Model) CreateTableSQL() string {
	defs := make([]string, len(m.Columns))
	for i, c := range m.Columns {
		defs[i] = c.Definition()
	}
	return fmt.Sprintf("CREATE TABLE IF NOT EXISTS %s(%s)", QuoteName(m.Table), strings.Join(defs, ", "))
}

// TableNamer is implemented by record types that choose their own table
// name. Without it the table is named after the type (see TableNameFor).
type TableNamer interface {
	TableName() string
}

var describeCache sync.Map // reflect.Type -> *Model

// Describe derives the Model for record type R by reflection.
func Describe[R any]() (*Model, error) {
	return DescribeType(reflect.TypeFor[R]())
}

// DescribeType derives the Model for a struct type (or pointer to struct).
// Results are cached per type. Derivation errors such as
// ErrUnsupportedFieldType are returned before any SQL is produced.
func DescribeType(t reflect.Type) (*Model, error) {
	if t == nil {
		return nil, &Error{Kind: KindInvalidModel, Err: fmt.Errorf("nil type")}
	}
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	if cached, ok := describeCache.Load(t); ok {
		return cached.(*Model), nil
	}
	if t.Kind() != reflect.Struct {
		return nil, &Error{Kind: KindInvalidModel, Err: fmt.Errorf("%v is not a struct", t)}
	}

	m := &Model{Table: tableNameOf(t)}
	for i := 0; i < t.NumField(); i++ {
		f, ok, err := FieldFromStruct(t.Field(i))
		if err != nil {
			return nil, withTable(err, m.Table)
		}
		if !ok {
			continue
		}
		col, err := DeriveColumn(f)
		if err != nil {
			return nil, withTable(err, m.Table)
		}
		m.Columns = append(m.Columns, col)
	}
	if err := m.Validate(); err != nil {
		return nil, err
	}

	actual, _ := describeCache.LoadOrStore(t, m)
	return actual.(*Model), nil
}

func tableNameOf(t reflect.Type) string {
	namer := reflect.TypeFor[TableNamer]()
	switch {
	case t.Implements(namer):
		return reflect.Zero(t).Interface().(TableNamer).TableName()
	case reflect.PointerTo(t).Implements(namer):
		return reflect.New(t).Interface().(TableNamer).TableName()
	}
	return TableNameFor(t.Name())
}

func withTable(err error, table string) error {
	if e, ok := err.(*Error); ok && e.Table == "" {
		e.Table = table
	}
	return err
}
