package table

import "isadb/internal/dbcore"

// rowRef locates one logical row: the page/offset it physically lives in,
// and its logical index (position in the page-order concatenation).
type rowRef struct {
	pageNum     int
	offset      int
	globalIndex int
}

// lastPageNum returns the highest page number, or -1 if the table has none.
func (t *Table) lastPageNum() int {
	if len(t.Pages) == 0 {
		return -1
	}
	return t.Pages[len(t.Pages)-1]
}

// targetPageForInsert returns the page a new row should append into: the
// last page if it has room, otherwise a freshly created next page. New rows
// are always appended at the table's logical end (spec.md §3 "append-only
// column"), which is what every concrete scenario in spec.md §8 exercises;
// this keeps row-index arithmetic (invariant 2) trivially consistent.
func (t *Table) targetPageForInsert() (*dbcore.Page, int, error) {
	last := t.lastPageNum()
	if last >= 0 {
		page, err := t.page(last, false)
		if err != nil {
			return nil, 0, err
		}
		if page.RowCount < t.PageSize {
			return page, last, nil
		}
	}
	next := last + 1
	page, err := t.page(next, true)
	if err != nil {
		return nil, 0, err
	}
	t.Pages = append(t.Pages, next)
	return page, next, nil
}

// findByPK locates the row whose primary-key value is pk.
func (t *Table) findByPK(pk any) (*rowRef, *dbcore.Page, error) {
	pkName := t.Schema.PrimaryKeyField().Name
	cum := 0
	for _, pnum := range t.Pages {
		page, err := t.pageReadOnly(pnum)
		if err != nil {
			return nil, nil, err
		}
		if pkField := page.Fields[pkName]; pkField != nil {
			if idx := pkField.GetRealIndex(pk); idx >= 0 {
				return &rowRef{pageNum: pnum, offset: idx, globalIndex: cum + idx}, page, nil
			}
		}
		cum += page.RowCount
	}
	return nil, nil, dbcore.Newf(dbcore.KindNotFound, "table %q: no row with primary key %v", t.Name, pk)
}

// allPKs returns every live primary-key value in logical row order.
func (t *Table) allPKs() ([]any, error) {
	pkName := t.Schema.PrimaryKeyField().Name
	var out []any
	for _, pnum := range t.Pages {
		page, err := t.pageReadOnly(pnum)
		if err != nil {
			return nil, err
		}
		if pkField := page.Fields[pkName]; pkField != nil {
			out = append(out, pkField.Values...)
		}
	}
	return out, nil
}

// rowValues loads the named fields (or all fields, if names is nil) of the
// row with the given primary key.
func (t *Table) rowValues(pk any, names []string) (map[string]any, error) {
	ref, page, err := t.findByPK(pk)
	if err != nil {
		return nil, err
	}
	out := make(map[string]any)
	if names == nil {
		for _, fs := range t.Schema.Fields {
			names = append(names, fs.Name)
		}
	}
	for _, name := range names {
		f := page.Fields[name]
		if f == nil {
			out[name] = nil
			continue
		}
		out[name] = f.GetData(&ref.offset)
	}
	return out, nil
}
