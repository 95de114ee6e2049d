package sqlmodel

import (
	"context"
	"database/sql"
	"sync"
)

// stmtCache caches prepared INSERT statements so that repeated inserts into
// the same table with the same column set avoid re-parsing the SQL.
type stmtCache struct {
	prep  Executor
	mu    sync.Mutex
	cache map[string]*sql.Stmt
}

func newStmtCache(prep Executor) *stmtCache {
	return &stmtCache{prep: prep, cache: make(map[string]*sql.Stmt)}
}

// prepare returns the cached statement for query. The release function is
// a no-op: cached statements are closed by close.
func (c *stmtCache) prepare(ctx context.Context, query string, nargs int) (*sql.Stmt, func(), error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if s, ok := c.cache[query]; ok {
		return s, func() {}, nil
	}
	s, err := prepare(ctx, c.prep, query, nargs)
	if err != nil {
		return nil, nil, err
	}
	c.cache[query] = s
	return s, func() {}, nil
}

func (c *stmtCache) len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.cache)
}

func (c *stmtCache) close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	for q, s := range c.cache {
		s.Close()
		delete(c.cache, q)
	}
}
