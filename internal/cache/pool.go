package cache

import (
	"golang.org/x/sync/errgroup"

	"isadb/internal/dbcore"
)

// Pool is the process-singleton cache root: db-name -> DbBranch, plus the
// name of the currently selected database.
type Pool struct {
	Branches map[string]*DbBranch
	current  string
}

// NewPool creates an empty pool with no active database.
func NewPool() *Pool {
	return &Pool{Branches: make(map[string]*DbBranch)}
}

// Add registers a freshly cached database branch.
func (p *Pool) Add(name string, branch *DbBranch) {
	p.Branches[name] = branch
}

// Drop evicts a database branch without committing it (DROP DATABASE).
func (p *Pool) Drop(name string) {
	delete(p.Branches, name)
	if p.current == name {
		p.current = ""
	}
}

// Use selects name as the active database.
func (p *Pool) Use(name string) error {
	if _, ok := p.Branches[name]; !ok {
		return dbcore.Newf(dbcore.KindNotFound, "database %q not cached", name)
	}
	p.current = name
	return nil
}

// CurrentName returns the active database's name, or "" if none.
func (p *Pool) CurrentName() string {
	return p.current
}

// Active returns the active database's branch.
func (p *Pool) Active() (*DbBranch, error) {
	if p.current == "" {
		return nil, dbcore.ErrNoActiveDB
	}
	return p.Branches[p.current], nil
}

// Get returns a branch by name, whether or not it is active.
func (p *Pool) Get(name string) (*DbBranch, bool) {
	b, ok := p.Branches[name]
	return b, ok
}

// FlushCacheToDisk commits every DbBranch. Branches are independent
// directories with no shared mutable state, so they commit concurrently.
func (p *Pool) FlushCacheToDisk() error {
	var g errgroup.Group
	for _, branch := range p.Branches {
		branch := branch
		g.Go(func() error {
			return branch.Commit()
		})
	}
	return g.Wait()
}
