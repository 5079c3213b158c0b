package table

import (
	"fmt"
	"sort"

	"isadb/internal/btree"
	"isadb/internal/cache"
	"isadb/internal/codec"
	"isadb/internal/dbcore"
	"isadb/internal/fileops"
)

// IndexDomain is the B+-tree domain used for every index created by this
// engine (spec.md S6 exercises it at n=10000 with t=5; we use the same
// fixed domain everywhere rather than exposing it as a tuning knob).
const IndexDomain = 5

// Table is the logical table: a page list, a set of secondary indexes, and
// the schema shared by both (spec.md §3/§4.3).
type Table struct {
	Name     string
	DBName   string
	Dir      string
	PageSize int
	Schema   *dbcore.TableSchema
	Pages    []int
	Indexes  map[string]string // index name -> field name
	RowCount int

	Branch *cache.TableBranch
}

// New creates a brand-new table (CREATE TABLE) with no pages or indexes yet.
func New(name, dbName, dir string, pageSize int, schema *dbcore.TableSchema) *Table {
	t := &Table{
		Name: name, DBName: dbName, Dir: dir, PageSize: pageSize, Schema: schema,
		Indexes: make(map[string]string),
	}
	t.Branch = cache.NewTableBranch(t)
	return t
}

// Load reconstructs a Table from its persisted metadata at dir.
func Load(dir, name, dbName string, schema *dbcore.TableSchema) (*Table, error) {
	t := New(name, dbName, dir, 0, schema)
	data, err := fileops.ReadFile(t.objPath())
	if err != nil {
		return nil, err
	}
	obj, err := codec.DecodeTable(data)
	if err != nil {
		return nil, err
	}
	t.Pages = obj.Pages
	t.Indexes = obj.Indexes
	t.RowCount = obj.RowCount
	t.PageSize = obj.PageSize
	return t, nil
}

func (t *Table) objPath() string            { return fileops.Join(t.Dir, t.Name+".obj") }
func (t *Table) pagePath(n int) string       { return fileops.Join(t.Dir, fmt.Sprintf("%d.data", n)) }
func (t *Table) indexPath(name string) string { return fileops.Join(t.Dir, name+".idx") }

func pageCacheKey(n int) string         { return fmt.Sprintf("page:%d", n) }
func indexCacheKey(name string) string  { return fmt.Sprintf("index:%s", name) }

// Commit persists this table's own metadata (page list, index map, row
// count). Dirty pages/indexes are flushed separately by the owning branch.
func (t *Table) Commit() error {
	data, err := codec.EncodeTable(codec.TableObj{
		Name: t.Name, DBName: t.DBName, Pages: t.Pages,
		Indexes: t.Indexes, RowCount: t.RowCount, PageSize: t.PageSize,
	})
	if err != nil {
		return err
	}
	if err := fileops.EnsureDir(t.Dir); err != nil {
		return err
	}
	return fileops.AtomicWrite(t.objPath(), data)
}

// Rollback reloads this table's own metadata from disk.
func (t *Table) Rollback() error {
	if !fileops.Exists(t.objPath()) {
		return nil
	}
	data, err := fileops.ReadFile(t.objPath())
	if err != nil {
		return err
	}
	obj, err := codec.DecodeTable(data)
	if err != nil {
		return err
	}
	t.Pages, t.Indexes, t.RowCount, t.PageSize = obj.Pages, obj.Indexes, obj.RowCount, obj.PageSize
	return nil
}

// page returns the page numbered n, loading it from disk into the cache on
// first access, or creating it fresh when create is true and it is new.
func (t *Table) page(n int, create bool) (*dbcore.Page, error) {
	key := pageCacheKey(n)
	if obj, ok := t.Branch.Get(key); ok {
		return obj.(*pageHandle).page, nil
	}
	path := t.pagePath(n)
	var page *dbcore.Page
	if fileops.Exists(path) {
		data, err := fileops.ReadFile(path)
		if err != nil {
			return nil, err
		}
		page, err = codec.DecodePage(data, path, t.Schema)
		if err != nil {
			return nil, err
		}
	} else if create {
		page = dbcore.NewPage(path)
	} else {
		return nil, dbcore.Newf(dbcore.KindNotFound, "table %q: page %d not found", t.Name, n)
	}
	h := &pageHandle{page: page, path: path, schema: t.Schema}
	if err := t.Branch.Add(key, h); err != nil {
		return nil, err
	}
	return page, nil
}

// pageReadOnly fetches a page without marking it dirty, for scans.
func (t *Table) pageReadOnly(n int) (*dbcore.Page, error) {
	key := pageCacheKey(n)
	if obj, ok := t.Branch.Peek(key); ok {
		return obj.(*pageHandle).page, nil
	}
	return t.page(n, false)
}

// index returns the named tree, loading or creating it on first access.
func (t *Table) index(name string) (*btree.Tree, error) {
	key := indexCacheKey(name)
	if obj, ok := t.Branch.Get(key); ok {
		return obj.(*indexHandle).tree, nil
	}
	path := t.indexPath(name)
	var tree *btree.Tree
	if fileops.Exists(path) {
		data, err := fileops.ReadFile(path)
		if err != nil {
			return nil, err
		}
		tree, err = codec.DecodeTree(data)
		if err != nil {
			return nil, err
		}
	} else {
		tree = btree.New(name, IndexDomain)
	}
	h := &indexHandle{tree: tree, path: path}
	if err := t.Branch.Add(key, h); err != nil {
		return nil, err
	}
	return tree, nil
}

func (t *Table) indexReadOnly(name string) (*btree.Tree, error) {
	key := indexCacheKey(name)
	if obj, ok := t.Branch.Peek(key); ok {
		return obj.(*indexHandle).tree, nil
	}
	return t.index(name)
}

// fieldToIndex inverts Indexes: field name -> index name.
func (t *Table) fieldToIndex() map[string]string {
	out := make(map[string]string, len(t.Indexes))
	for idxName, field := range t.Indexes {
		out[field] = idxName
	}
	return out
}

// CreateIndex builds a secondary index on field (spec.md §4.3.2).
func (t *Table) CreateIndex(name, field string) error {
	if _, exists := t.Indexes[name]; exists {
		return dbcore.Newf(dbcore.KindSchema, "index %q already exists", name)
	}
	fs := t.Schema.FieldByName(field)
	if fs == nil {
		return dbcore.Newf(dbcore.KindNotFound, "field %q not found", field)
	}
	if fs.Type != dbcore.TypeInt && fs.Type != dbcore.TypeFloat {
		return dbcore.Newf(dbcore.KindIndex, "field %q: only int/float fields may be indexed", field)
	}
	if fs.Has(dbcore.ConstraintPrimary) {
		return dbcore.Newf(dbcore.KindIndex, "field %q: primary key may not be indexed", field)
	}
	eligible := fs.Has(dbcore.ConstraintAutoIncrement) || (fs.Has(dbcore.ConstraintNotNull) && fs.Has(dbcore.ConstraintUnique))
	if !eligible {
		return dbcore.Newf(dbcore.KindIndex, "field %q: must be auto_increment or (not_null and unique) to index", field)
	}

	tree := btree.New(name, IndexDomain)
	pkName := t.Schema.PrimaryKeyField().Name
	for _, pnum := range t.Pages {
		page, err := t.pageReadOnly(pnum)
		if err != nil {
			return err
		}
		valField, pkField := page.Fields[field], page.Fields[pkName]
		if valField == nil || pkField == nil {
			continue
		}
		for i := 0; i < page.RowCount; i++ {
			tree.Insert(valField.Values[i], pkField.Values[i])
		}
	}

	h := &indexHandle{tree: tree, path: t.indexPath(name)}
	if err := t.Branch.Add(indexCacheKey(name), h); err != nil {
		return err
	}
	t.Branch.Get(indexCacheKey(name)) // mark dirty so the build gets flushed
	t.Indexes[name] = field
	return nil
}

// DropIndex removes a secondary index (requires that it exists).
func (t *Table) DropIndex(name string) error {
	if _, exists := t.Indexes[name]; !exists {
		return dbcore.Newf(dbcore.KindNotFound, "index %q not found", name)
	}
	t.Branch.Remove(indexCacheKey(name))
	delete(t.Indexes, name)
	return fileops.Remove(t.indexPath(name))
}

// IndexNames lists index names in deterministic order, for SHOW INDEX.
func (t *Table) IndexNames() []string {
	names := make([]string, 0, len(t.Indexes))
	for name := range t.Indexes {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
