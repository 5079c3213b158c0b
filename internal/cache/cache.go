// Package cache implements the three-tier hierarchy mediating between
// in-memory working sets and disk (spec.md §4.6): Pool -> DbBranch ->
// TableBranch -> leaf entries wrapping Pages and B+-tree indexes.
package cache

import "isadb/internal/dbcore"

// Persistable is anything a cache entry can own: it knows how to flush its
// in-memory state to disk (Commit) or discard it in favor of disk (Rollback).
type Persistable interface {
	Commit() error
	Rollback() error
}

// LeafCacheEntry wraps one Page or BPTree: its heat counter (used to pick
// eviction candidates) and dirty flag (whether Commit/Rollback has pending
// work to do).
type LeafCacheEntry struct {
	Object Persistable
	Heat   int
	Dirty  bool
}

// DefaultBranchSize is the default soft cap on live leaves per TableBranch.
const DefaultBranchSize = 16

// TableBranch is the per-table cache node: it owns a Table (via Owner) and
// holds that table's resident pages and indexes as leaf entries.
type TableBranch struct {
	Owner      Persistable
	Leaves     map[string]*LeafCacheEntry
	Limit      int
	AutoCommit bool
}

// NewTableBranch creates a branch for a freshly cached table.
func NewTableBranch(owner Persistable) *TableBranch {
	return &TableBranch{Owner: owner, Leaves: make(map[string]*LeafCacheEntry), Limit: DefaultBranchSize, AutoCommit: true}
}

// Get returns the leaf's object, marking it hot and dirty: both reads and
// writes are conservatively treated as potentially dirtying, since the
// returned object is a live, mutable reference (§4.6 RESOLVED(c)).
func (b *TableBranch) Get(name string) (Persistable, bool) {
	e, ok := b.Leaves[name]
	if !ok {
		return nil, false
	}
	e.Heat++
	e.Dirty = true
	return e.Object, true
}

// Peek returns the leaf's object without marking it dirty, for read-only
// scans (condition planning) that must not force an unnecessary flush.
func (b *TableBranch) Peek(name string) (Persistable, bool) {
	e, ok := b.Leaves[name]
	if !ok {
		return nil, false
	}
	e.Heat++
	return e.Object, true
}

func (b *TableBranch) averageHeat() int {
	if len(b.Leaves) == 0 {
		return 0
	}
	sum := 0
	for _, e := range b.Leaves {
		sum += e.Heat
	}
	return sum / len(b.Leaves)
}

// Add inserts a freshly loaded or created object under name, evicting a
// cold entry first if the branch is at capacity and auto-commit is on.
func (b *TableBranch) Add(name string, obj Persistable) error {
	if _, exists := b.Leaves[name]; exists {
		return nil
	}
	if len(b.Leaves) >= b.Limit && b.AutoCommit {
		if err := b.evictOne(); err != nil {
			return err
		}
	}
	b.Leaves[name] = &LeafCacheEntry{Object: obj, Heat: b.averageHeat() + 1, Dirty: false}
	return nil
}

// evictOne commits-then-evicts the first entry found at or below the
// branch's average heat.
func (b *TableBranch) evictOne() error {
	avg := b.averageHeat()
	for name, e := range b.Leaves {
		if e.Heat <= avg {
			if e.Dirty {
				if err := e.Object.Commit(); err != nil {
					return err
				}
			}
			delete(b.Leaves, name)
			return nil
		}
	}
	return nil
}

// Remove drops an entry without committing it (used when an object's
// backing file is being dropped, e.g. DROP INDEX).
func (b *TableBranch) Remove(name string) {
	delete(b.Leaves, name)
}

// SetAutoCommit toggles eviction suspension for the duration of a transaction.
func (b *TableBranch) SetAutoCommit(on bool) {
	b.AutoCommit = on
}

// Commit flushes every dirty leaf, then the branch's own owned Table.
func (b *TableBranch) Commit() error {
	for _, e := range b.Leaves {
		if e.Dirty {
			if err := e.Object.Commit(); err != nil {
				return err
			}
			e.Dirty = false
		}
	}
	return b.Owner.Commit()
}

// Rollback reloads every dirty leaf from disk, then the owned Table.
func (b *TableBranch) Rollback() error {
	for _, e := range b.Leaves {
		if e.Dirty {
			if err := e.Object.Rollback(); err != nil {
				return err
			}
			e.Dirty = false
		}
	}
	return b.Owner.Rollback()
}

// Size reports the number of resident leaves (invariant 7 of spec.md §8).
func (b *TableBranch) Size() int {
	return len(b.Leaves)
}

// DbBranch is the per-database cache node: it owns a Database and holds
// that database's resident tables as TableBranches.
type DbBranch struct {
	Owner      Persistable
	Tables     map[string]*TableBranch
	AutoCommit bool
}

// NewDbBranch creates a branch for a freshly cached database.
func NewDbBranch(owner Persistable) *DbBranch {
	return &DbBranch{Owner: owner, Tables: make(map[string]*TableBranch), AutoCommit: true}
}

func (d *DbBranch) Commit() error {
	for _, tb := range d.Tables {
		if err := tb.Commit(); err != nil {
			return err
		}
	}
	return d.Owner.Commit()
}

func (d *DbBranch) Rollback() error {
	for _, tb := range d.Tables {
		if err := tb.Rollback(); err != nil {
			return err
		}
	}
	return d.Owner.Rollback()
}

// SetAutoCommit propagates the auto-commit signal to every table branch and
// records it so that a table first loaded mid-transaction (AddTable below)
// inherits eviction-suspended state instead of defaulting back to true.
func (d *DbBranch) SetAutoCommit(on bool) {
	d.AutoCommit = on
	for _, tb := range d.Tables {
		tb.SetAutoCommit(on)
	}
}

// Table returns the named table's branch, loading it into d.Tables on first
// access is the caller's responsibility (engine/table layer); the cache
// itself only stores what it is given.
func (d *DbBranch) Table(name string) (*TableBranch, bool) {
	tb, ok := d.Tables[name]
	return tb, ok
}

// AddTable registers a freshly loaded table branch, applying the DbBranch's
// current auto-commit signal so a table first touched inside an active
// transaction doesn't run with eviction enabled for the rest of the block.
func (d *DbBranch) AddTable(name string, tb *TableBranch) {
	tb.SetAutoCommit(d.AutoCommit)
	d.Tables[name] = tb
}

func (d *DbBranch) DropTable(name string) {
	delete(d.Tables, name)
}

// ErrNoActiveDatabase is the error Pool.Active returns when no database is
// selected.
var ErrNoActiveDatabase = dbcore.ErrNoActiveDB
