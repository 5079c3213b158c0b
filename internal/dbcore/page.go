package dbcore

// Page is a horizontal slice of a table: a mapping from field name to Field
// plus a row count. All Fields in a Page must have equal length (invariant
// 1, spec.md §8).
type Page struct {
	Path      string
	Fields    map[string]*Field
	FieldOrder []string
	RowCount  int
}

// NewPage creates an empty page at path.
func NewPage(path string) *Page {
	return &Page{Path: path, Fields: make(map[string]*Field)}
}

// AddField attaches a Field to the page. If the page is already non-empty,
// the new field must either be empty (back-filled with filler to match the
// current length) or already have exactly the current length (§4.2).
func (p *Page) AddField(name string, f *Field, filler any) error {
	if _, exists := p.Fields[name]; exists {
		return Newf(KindSchema, "page: field %q already present", name)
	}

	if len(p.Fields) == 0 {
		p.RowCount = f.Length()
	} else if f.Length() == 0 {
		for i := 0; i < p.RowCount; i++ {
			f.Values = append(f.Values, filler)
		}
	} else if f.Length() != p.RowCount {
		return Newf(KindSchema, "page: field %q has length %d, want %d", name, f.Length(), p.RowCount)
	}

	p.Fields[name] = f
	p.FieldOrder = append(p.FieldOrder, name)
	return nil
}

// AppendRow adds one pre-validated value per field, in schema order,
// creating each Field lazily on the page's first row. Values have already
// passed Field.CheckValue at the table level (the table validates against
// the whole column, not just this page's slice), so this appends raw.
func (p *Page) AppendRow(schema *TableSchema, values map[string]any) {
	for _, fs := range schema.Fields {
		f, ok := p.Fields[fs.Name]
		if !ok {
			f = NewField(fs)
			p.Fields[fs.Name] = f
			p.FieldOrder = append(p.FieldOrder, fs.Name)
		}
		f.Values = append(f.Values, values[fs.Name])
	}
	p.RowCount++
}

// DeleteRow removes the row at local offset from every field.
func (p *Page) DeleteRow(offset int) error {
	for _, f := range p.Fields {
		if err := f.Delete(offset); err != nil {
			return err
		}
	}
	p.RowCount--
	return nil
}

// GetData returns, for each field, its full value sequence, keyed by field
// name. Used for full scans.
func (p *Page) GetData() map[string][]any {
	out := make(map[string][]any, len(p.Fields))
	for name, f := range p.Fields {
		vals := make([]any, f.Length())
		copy(vals, f.Values)
		out[name] = vals
	}
	return out
}

// Uniform reports whether every field in the page has the same row count as
// the page itself (invariant 1).
func (p *Page) Uniform() bool {
	for _, f := range p.Fields {
		if f.Length() != p.RowCount {
			return false
		}
	}
	return true
}
