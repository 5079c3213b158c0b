package table

import (
	"sort"

	"isadb/internal/dbcore"
)

// Insert validates input against every schema field (table-wide, since
// auto-increment and uniqueness span every page, not just the target page)
// and appends the row (spec.md §4.3 Insert).
func (t *Table) Insert(input map[string]any) (map[string]any, error) {
	normalized := make(map[string]any, len(t.Schema.Fields))
	for _, fs := range t.Schema.Fields {
		existing, err := t.columnValues(fs.Name)
		if err != nil {
			return nil, err
		}
		tmp := &dbcore.Field{Schema: fs, Values: existing}
		nv, err := tmp.CheckValue(input[fs.Name], -1)
		if err != nil {
			return nil, err
		}
		normalized[fs.Name] = nv
	}

	page, pageNum, err := t.targetPageForInsert()
	if err != nil {
		return nil, err
	}
	page.AppendRow(t.Schema, normalized)
	t.Branch.Get(pageCacheKey(pageNum)) // mark dirty
	t.RowCount++

	pk := normalized[t.Schema.PrimaryKeyField().Name]
	for idxName, field := range t.Indexes {
		tree, err := t.index(idxName)
		if err != nil {
			return nil, err
		}
		tree.Insert(normalized[field], pk)
		t.Branch.Get(indexCacheKey(idxName))
	}
	return normalized, nil
}

// columnValues gathers every live value of field, across all pages, in
// logical row order — used to validate table-wide constraints.
func (t *Table) columnValues(field string) ([]any, error) {
	var out []any
	for _, pnum := range t.Pages {
		page, err := t.pageReadOnly(pnum)
		if err != nil {
			return nil, err
		}
		if f := page.Fields[field]; f != nil {
			out = append(out, f.Values...)
		}
	}
	return out, nil
}

// Delete removes every row matching conditions (spec.md §4.3 Delete).
func (t *Table) Delete(conditions map[string]*dbcore.Case) (int, error) {
	pks, err := t.resolvePKs(conditions)
	if err != nil {
		return 0, err
	}
	type target struct {
		pageNum, offset, globalIndex int
		pk                           any
		indexedValues                map[string]any // field name -> value, captured before the row is removed
	}
	var targets []target
	for _, pk := range pks {
		ref, page, err := t.findByPK(pk)
		if err != nil {
			return 0, err
		}
		vals := make(map[string]any, len(t.Indexes))
		for _, field := range t.Indexes {
			if f := page.Fields[field]; f != nil {
				vals[field] = f.GetData(&ref.offset)
			}
		}
		targets = append(targets, target{ref.pageNum, ref.offset, ref.globalIndex, pk, vals})
	}
	sort.Slice(targets, func(i, j int) bool { return targets[i].globalIndex < targets[j].globalIndex })

	// Group by page so later deletions within the same page compensate for
	// the left-shift caused by earlier ones (ascending index order).
	perPage := make(map[int][]int)
	for _, tg := range targets {
		perPage[tg.pageNum] = append(perPage[tg.pageNum], tg.offset)
	}
	for pageNum, offsets := range perPage {
		sort.Ints(offsets)
		page, err := t.page(pageNum, false)
		if err != nil {
			return 0, err
		}
		removed := 0
		for _, off := range offsets {
			if err := page.DeleteRow(off - removed); err != nil {
				return 0, err
			}
			removed++
		}
		t.Branch.Get(pageCacheKey(pageNum))
	}

	for _, tg := range targets {
		for idxName, field := range t.Indexes {
			value, ok := tg.indexedValues[field]
			if !ok {
				continue
			}
			tree, err := t.index(idxName)
			if err != nil {
				return 0, err
			}
			tree.Delete(value)
			t.Branch.Get(indexCacheKey(idxName))
		}
		t.RowCount--
	}
	return len(targets), nil
}

// Update applies assignments to every row matching conditions (spec.md
// §4.3 Update).
func (t *Table) Update(conditions map[string]*dbcore.Case, assignments map[string]any) (int, error) {
	pks, err := t.resolvePKs(conditions)
	if err != nil {
		return 0, err
	}
	pkName := t.Schema.PrimaryKeyField().Name
	fieldToIndex := t.fieldToIndex()

	for _, pk := range pks {
		ref, page, err := t.findByPK(pk)
		if err != nil {
			return 0, err
		}
		for fieldName, newValue := range assignments {
			fs := t.Schema.FieldByName(fieldName)
			if fs == nil {
				return 0, dbcore.Newf(dbcore.KindSchema, "unknown field %q", fieldName)
			}
			f := page.Fields[fieldName]
			old := f.GetData(&ref.offset)
			normalized, err := f.Modify(ref.offset, newValue)
			if err != nil {
				return 0, err
			}
			t.Branch.Get(pageCacheKey(ref.pageNum))

			if idxName, indexed := fieldToIndex[fieldName]; indexed {
				tree, err := t.index(idxName)
				if err != nil {
					return 0, err
				}
				if err := tree.UpdateKey(old, normalized); err != nil {
					return 0, err
				}
				t.Branch.Get(indexCacheKey(idxName))
			}

			if fieldName == pkName {
				for idxName, idxField := range t.Indexes {
					tree, err := t.index(idxName)
					if err != nil {
						return 0, err
					}
					key := page.Fields[idxField].GetData(&ref.offset)
					_ = tree.UpdateItem(key, normalized)
					t.Branch.Get(indexCacheKey(idxName))
				}
			}
		}
	}
	return len(pks), nil
}

// SearchResult is one projected row paired with its logical row index, for
// ORDER BY/ASC-DESC sorting.
type SearchResult struct {
	Row         map[string]any
	GlobalIndex int
}

// Search resolves matching rows and projects the requested fields, sorted
// ascending by logical row index (spec.md §4.3 Search).
func (t *Table) Search(conditions map[string]*dbcore.Case, fields []string, desc bool) ([]map[string]any, error) {
	pks, err := t.resolvePKs(conditions)
	if err != nil {
		return nil, err
	}
	if fields == nil {
		for _, fs := range t.Schema.Fields {
			fields = append(fields, fs.Name)
		}
	}

	var results []SearchResult
	for _, pk := range pks {
		ref, page, err := t.findByPK(pk)
		if err != nil {
			return nil, err
		}
		row := make(map[string]any, len(fields))
		for _, name := range fields {
			f := page.Fields[name]
			if f == nil {
				row[name] = nil
				continue
			}
			row[name] = f.GetData(&ref.offset)
		}
		results = append(results, SearchResult{Row: row, GlobalIndex: ref.globalIndex})
	}

	sort.Slice(results, func(i, j int) bool {
		if desc {
			return results[i].GlobalIndex > results[j].GlobalIndex
		}
		return results[i].GlobalIndex < results[j].GlobalIndex
	})

	out := make([]map[string]any, len(results))
	for i, r := range results {
		out[i] = r.Row
	}
	return out, nil
}
