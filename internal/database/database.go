// Package database implements the Database component of spec.md §3/§4:
// a named directory of tables plus its Record (schemas and procedures).
package database

import (
	"sort"

	"isadb/internal/codec"
	"isadb/internal/dbcore"
	"isadb/internal/fileops"
)

// Database owns its Record and the set of table names that exist under its
// directory; actual Table objects are owned by the cache layer.
type Database struct {
	Name     string
	Dir      string
	Record   *dbcore.Record
	tableSet []string
}

// New creates a brand-new, empty database (CREATE DATABASE).
func New(name, dir string) *Database {
	return &Database{Name: name, Dir: dir, Record: dbcore.NewRecord()}
}

// Load reconstructs a Database from its persisted `.obj`/`.rcd` files.
func Load(dir, name string) (*Database, error) {
	d := &Database{Name: name, Dir: dir}
	objData, err := fileops.ReadFile(d.objPath())
	if err != nil {
		return nil, err
	}
	obj, err := codec.DecodeDatabase(objData)
	if err != nil {
		return nil, err
	}
	d.tableSet = obj.Tables

	rcdData, err := fileops.ReadFile(d.rcdPath())
	if err != nil {
		return nil, err
	}
	rec, err := codec.DecodeRecord(rcdData)
	if err != nil {
		return nil, err
	}
	d.Record = rec
	return d, nil
}

func (d *Database) objPath() string { return fileops.Join(d.Dir, d.Name+".obj") }
func (d *Database) rcdPath() string { return fileops.Join(d.Dir, d.Name+".rcd") }

// Tables lists table names in a stable order.
func (d *Database) Tables() []string {
	out := append([]string(nil), d.tableSet...)
	sort.Strings(out)
	return out
}

// TableDir returns the on-disk directory for a table of this database.
func (d *Database) TableDir(tableName string) string {
	return fileops.Join(d.Dir, tableName)
}

// CreateTable registers a new table's schema and directory.
func (d *Database) CreateTable(name string, schema *dbcore.TableSchema) error {
	if err := schema.Validate(); err != nil {
		return err
	}
	if err := d.Record.AddTable(name, schema); err != nil {
		return err
	}
	d.tableSet = append(d.tableSet, name)
	return fileops.EnsureDir(d.TableDir(name))
}

// DropTable removes a table's schema entry and on-disk directory.
func (d *Database) DropTable(name string) error {
	if err := d.Record.DropTable(name); err != nil {
		return err
	}
	for i, n := range d.tableSet {
		if n == name {
			d.tableSet = append(d.tableSet[:i], d.tableSet[i+1:]...)
			break
		}
	}
	return fileops.Remove(d.TableDir(name))
}

// Commit persists the Database's `.obj` and `.rcd` files.
func (d *Database) Commit() error {
	if err := fileops.EnsureDir(d.Dir); err != nil {
		return err
	}
	objData, err := codec.EncodeDatabase(d.Name, d.tableSet)
	if err != nil {
		return err
	}
	if err := fileops.AtomicWrite(d.objPath(), objData); err != nil {
		return err
	}
	rcdData, err := codec.EncodeRecord(d.Record)
	if err != nil {
		return err
	}
	return fileops.AtomicWrite(d.rcdPath(), rcdData)
}

// Rollback reloads the Database's `.obj`/`.rcd` files from disk, discarding
// in-memory schema/procedure changes.
func (d *Database) Rollback() error {
	if !fileops.Exists(d.objPath()) {
		return nil
	}
	reloaded, err := Load(d.Dir, d.Name)
	if err != nil {
		return err
	}
	*d = *reloaded
	return nil
}
