package sqlmodel

import (
	"context"
	"fmt"
)

// Schema is implemented by the zero-sized schema types emitted by
// sqlmodelgen. Models returns the member tables in declaration order, which
// is also the order in which they are created.
type Schema interface {
	Models() []*Model
}

// Catalog is the validated, ordered set of models making up one schema.
type Catalog struct {
	models []*Model
	index  map[string]int
}

// NewCatalog validates the models and returns them as a Catalog. Table
// names must be unique.
func NewCatalog(models ...*Model) (*Catalog, error) {
	c := &Catalog{
		models: make([]*Model, 0, len(models)),
		index:  make(map[string]int, len(models)),
	}
	for _, m := range models {
		if m == nil {
			return nil, &Error{Kind: KindInvalidModel, Err: fmt.Errorf("nil model at position %d", len(c.models))}
		}
		if err := m.Validate(); err != nil {
			return nil, err
		}
		if _, dup := c.index[m.Table]; dup {
			return nil, &Error{Kind: KindInvalidModel, Table: m.Table, Err: fmt.Errorf("table declared twice")}
		}
		c.index[m.Table] = len(c.models)
		c.models = append(c.models, m)
	}
	return c, nil
}

// CatalogOf builds the Catalog for a schema type.
func CatalogOf(s Schema) (*Catalog, error) {
	return NewCatalog(s.Models()...)
}

// Models returns the models in declaration order.
func (c *Catalog) Models() []*Model {
	out := make([]*Model, len(c.models))
	copy(out, c.models)
	return out
}

// Model returns the model backing table.
func (c *Catalog) Model(table string) (*Model, bool) {
	i, ok := c.index[table]
	if !ok {
		return nil, false
	}
	return c.models[i], true
}

// Contains reports whether table belongs to the schema.
func (c *Catalog) Contains(table string) bool {
	_, ok := c.index[table]
	return ok
}

// CreateStatements returns one CREATE TABLE IF NOT EXISTS statement per
// model, in declaration order.
func (c *Catalog) CreateStatements() []string {
	stmts := make([]string, len(c.models))
	for i, m := range c.models {
		stmts[i] = m.CreateTableSQL()
	}
	return stmts
}

// Create executes the CREATE statements in declaration order. It is safe to
// run against a database that already holds the tables. It stops at the
// first failing statement and returns an ErrSchema error naming the table;
// tables created before the failure are left in place.
func (c *Catalog) Create(ctx context.Context, e Executor) error {
	for _, m := range c.models {
		if _, err := e.ExecContext(ctx, m.CreateTableSQL()); err != nil {
			return newError(KindSchema, m.Table, err)
		}
	}
	return nil
}
