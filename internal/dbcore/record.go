package dbcore

// TableSchema is the ordered field-definition list for one table.
type TableSchema struct {
	Fields []*FieldSchema
}

// FieldByName returns the schema for name, or nil.
func (t *TableSchema) FieldByName(name string) *FieldSchema {
	for _, f := range t.Fields {
		if f.Name == name {
			return f
		}
	}
	return nil
}

// PrimaryKeyField returns the schema of the table's single primary-key
// field (invariant: every table has exactly one). Only meaningful after
// Validate has accepted the schema.
func (t *TableSchema) PrimaryKeyField() *FieldSchema {
	for _, f := range t.Fields {
		if f.Has(ConstraintPrimary) {
			return f
		}
	}
	return nil
}

// Validate enforces "every table has exactly one primary-key field" at
// CREATE TABLE time, so later lookups via PrimaryKeyField can assume a
// non-nil result instead of risking a nil-pointer dereference on first use.
func (t *TableSchema) Validate() error {
	count := 0
	for _, f := range t.Fields {
		if f.Has(ConstraintPrimary) {
			count++
		}
	}
	switch {
	case count == 0:
		return Newf(KindSchema, "table must declare exactly one primary key field, got none")
	case count > 1:
		return Newf(KindSchema, "table must declare exactly one primary key field, got %d", count)
	}
	return nil
}

// ProcedureDef is a stored procedure: a parameter list and a sequence of
// statement templates with %N positional placeholders (N = 1-based
// parameter position), substituted at call time (SPEC_FULL §4, supplemented from original_source/parser).
type ProcedureDef struct {
	Name       string
	Params     []string
	Statements []string
}

// Record is per-database metadata: table schemas and procedure
// definitions, keyed by name (spec.md §3).
type Record struct {
	Tables     map[string]*TableSchema
	Procedures map[string]*ProcedureDef
}

// NewRecord creates an empty Record.
func NewRecord() *Record {
	return &Record{
		Tables:     make(map[string]*TableSchema),
		Procedures: make(map[string]*ProcedureDef),
	}
}

func (r *Record) AddTable(name string, schema *TableSchema) error {
	if _, exists := r.Tables[name]; exists {
		return Newf(KindSchema, "table %q already exists", name)
	}
	r.Tables[name] = schema
	return nil
}

func (r *Record) DropTable(name string) error {
	if _, exists := r.Tables[name]; !exists {
		return Newf(KindNotFound, "table %q not found", name)
	}
	delete(r.Tables, name)
	return nil
}

func (r *Record) AddProcedure(p *ProcedureDef) error {
	if _, exists := r.Procedures[p.Name]; exists {
		return Newf(KindSchema, "procedure %q already exists", p.Name)
	}
	r.Procedures[p.Name] = p
	return nil
}

func (r *Record) DropProcedure(name string) error {
	if _, exists := r.Procedures[name]; !exists {
		return Newf(KindNotFound, "procedure %q not found", name)
	}
	delete(r.Procedures, name)
	return nil
}
