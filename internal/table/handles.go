// Package table implements the Table component of spec.md §4.3: pages,
// indexes, constraint enforcement, and condition-driven scans.
package table

import (
	"isadb/internal/btree"
	"isadb/internal/codec"
	"isadb/internal/dbcore"
	"isadb/internal/fileops"
)

// pageHandle adapts a dbcore.Page to cache.Persistable.
type pageHandle struct {
	page   *dbcore.Page
	path   string
	schema *dbcore.TableSchema
}

func (h *pageHandle) Commit() error {
	data, err := codec.EncodePage(h.page)
	if err != nil {
		return err
	}
	return fileops.AtomicWrite(h.path, data)
}

// Rollback reloads the page from disk, or resets it to empty when it was
// never committed in the first place (a page created earlier in the same
// transaction that never reached disk has nothing to "reload" to).
func (h *pageHandle) Rollback() error {
	if !fileops.Exists(h.path) {
		h.page = dbcore.NewPage(h.path)
		return nil
	}
	data, err := fileops.ReadFile(h.path)
	if err != nil {
		return err
	}
	p, err := codec.DecodePage(data, h.path, h.schema)
	if err != nil {
		return err
	}
	h.page = p
	return nil
}

// indexHandle adapts a btree.Tree to cache.Persistable.
type indexHandle struct {
	tree *btree.Tree
	path string
}

func (h *indexHandle) Commit() error {
	data, err := codec.EncodeTree(h.tree)
	if err != nil {
		return err
	}
	return fileops.AtomicWrite(h.path, data)
}

// Rollback reloads the index from disk, or resets it to empty when it was
// never committed (same reasoning as pageHandle.Rollback).
func (h *indexHandle) Rollback() error {
	if !fileops.Exists(h.path) {
		h.tree = btree.New(h.tree.Name, h.tree.T)
		return nil
	}
	data, err := fileops.ReadFile(h.path)
	if err != nil {
		return err
	}
	tr, err := codec.DecodeTree(data)
	if err != nil {
		return err
	}
	h.tree = tr
	return nil
}
