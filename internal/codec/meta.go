// Package codec implements the on-disk encodings named in spec.md §6: a
// compact binary format for page blobs, and BurntSushi/toml struct-tag
// serialization for the `.obj`/`.rcd`/`.idx` metadata files. Any stable
// encoding satisfies the spec; the TOML metadata favors transparency
// (readable with a text editor) over the shipped reference codec's
// reversible XOR scheme.
package codec

import (
	"bytes"

	"github.com/BurntSushi/toml"

	"isadb/internal/btree"
	"isadb/internal/dbcore"
)

// DatabaseObj is the `<db>.obj` shape: the Database's own identity.
type DatabaseObj struct {
	Name   string   `toml:"name"`
	Tables []string `toml:"tables"`
}

func EncodeDatabase(name string, tables []string) ([]byte, error) {
	return marshalTOML(DatabaseObj{Name: name, Tables: tables})
}

func DecodeDatabase(data []byte) (DatabaseObj, error) {
	var obj DatabaseObj
	err := unmarshalTOML(data, &obj)
	return obj, err
}

// FieldSchemaObj is the `.rcd` on-disk shape of a dbcore.FieldSchema.
type FieldSchemaObj struct {
	Name        string   `toml:"name"`
	Type        string   `toml:"type"`
	Constraints []string `toml:"constraints"`
	Default     AnyVal   `toml:"default"`
}

// TableSchemaObj is the ordered field list for one table.
type TableSchemaObj struct {
	Fields []FieldSchemaObj `toml:"fields"`
}

// ProcedureObj is the `.rcd` on-disk shape of a dbcore.ProcedureDef.
type ProcedureObj struct {
	Name       string   `toml:"name"`
	Params     []string `toml:"params"`
	Statements []string `toml:"statements"`
}

// RecordObj is the `<db>.rcd` shape: table schemas plus stored procedures.
type RecordObj struct {
	Tables     map[string]TableSchemaObj `toml:"tables"`
	Procedures map[string]ProcedureObj   `toml:"procedures"`
}

func typeName(t dbcore.DataType) string {
	switch t {
	case dbcore.TypeInt:
		return "int"
	case dbcore.TypeFloat:
		return "float"
	default:
		return "varchar"
	}
}

func typeFromName(s string) dbcore.DataType {
	switch s {
	case "int":
		return dbcore.TypeInt
	case "float":
		return dbcore.TypeFloat
	default:
		return dbcore.TypeVarchar
	}
}

func constraintNames(f *dbcore.FieldSchema) []string {
	all := []dbcore.Constraint{
		dbcore.ConstraintPrimary, dbcore.ConstraintUnique, dbcore.ConstraintNotNull,
		dbcore.ConstraintAutoIncrement, dbcore.ConstraintNull,
	}
	var names []string
	for _, c := range all {
		if f.Has(c) {
			names = append(names, string(c))
		}
	}
	return names
}

// EncodeRecord converts a live Record into its TOML shape.
func EncodeRecord(rec *dbcore.Record) ([]byte, error) {
	obj := RecordObj{
		Tables:     make(map[string]TableSchemaObj, len(rec.Tables)),
		Procedures: make(map[string]ProcedureObj, len(rec.Procedures)),
	}
	for name, schema := range rec.Tables {
		var fields []FieldSchemaObj
		for _, f := range schema.Fields {
			fields = append(fields, FieldSchemaObj{
				Name:        f.Name,
				Type:        typeName(f.Type),
				Constraints: constraintNames(f),
				Default:     ToAnyVal(f.Default),
			})
		}
		obj.Tables[name] = TableSchemaObj{Fields: fields}
	}
	for name, p := range rec.Procedures {
		obj.Procedures[name] = ProcedureObj{Name: p.Name, Params: p.Params, Statements: p.Statements}
	}
	return marshalTOML(obj)
}

// DecodeRecord rebuilds a live Record from its TOML shape.
func DecodeRecord(data []byte) (*dbcore.Record, error) {
	var obj RecordObj
	if err := unmarshalTOML(data, &obj); err != nil {
		return nil, err
	}
	rec := dbcore.NewRecord()
	for name, t := range obj.Tables {
		schema := &dbcore.TableSchema{}
		for _, fo := range t.Fields {
			constraints := make(map[dbcore.Constraint]bool, len(fo.Constraints))
			for _, c := range fo.Constraints {
				constraints[dbcore.Constraint(c)] = true
			}
			fs, err := dbcore.NewFieldSchema(fo.Name, typeFromName(fo.Type), keysOf(constraints), FromAnyVal(fo.Default))
			if err != nil {
				return nil, err
			}
			schema.Fields = append(schema.Fields, fs)
		}
		rec.Tables[name] = schema
	}
	for name, p := range obj.Procedures {
		rec.Procedures[name] = &dbcore.ProcedureDef{Name: p.Name, Params: p.Params, Statements: p.Statements}
	}
	return rec, nil
}

func keysOf(m map[dbcore.Constraint]bool) []dbcore.Constraint {
	out := make([]dbcore.Constraint, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	return out
}

// TableObj is the `<table>.obj` shape.
type TableObj struct {
	Name     string            `toml:"name"`
	DBName   string            `toml:"db_name"`
	Pages    []int             `toml:"pages"`
	Indexes  map[string]string `toml:"indexes"` // index name -> field name
	RowCount int               `toml:"row_count"`
	PageSize int               `toml:"page_size"`
}

func EncodeTable(obj TableObj) ([]byte, error) {
	return marshalTOML(obj)
}

func DecodeTable(data []byte) (TableObj, error) {
	var obj TableObj
	err := unmarshalTOML(data, &obj)
	return obj, err
}

// TreeEntry is one leaf (key, satellite) pair in a serialized index.
type TreeEntry struct {
	Key   AnyVal `toml:"key"`
	Value AnyVal `toml:"value"`
}

// TreeObj is the `.idx` shape: enough to rebuild the tree by reinserting
// entries in ascending key order (already the serialization order).
type TreeObj struct {
	Name    string      `toml:"name"`
	Domain  int         `toml:"domain"`
	Entries []TreeEntry `toml:"entries"`
}

func EncodeTree(t *btree.Tree) ([]byte, error) {
	obj := TreeObj{Name: t.Name, Domain: t.T}
	for _, kv := range t.Traversal() {
		obj.Entries = append(obj.Entries, TreeEntry{Key: ToAnyVal(kv.Key), Value: ToAnyVal(kv.Value)})
	}
	return marshalTOML(obj)
}

func DecodeTree(data []byte) (*btree.Tree, error) {
	var obj TreeObj
	if err := unmarshalTOML(data, &obj); err != nil {
		return nil, err
	}
	t := btree.New(obj.Name, obj.Domain)
	for _, e := range obj.Entries {
		t.Insert(FromAnyVal(e.Key), FromAnyVal(e.Value))
	}
	return t, nil
}

func marshalTOML(v any) ([]byte, error) {
	var buf bytes.Buffer
	if err := toml.NewEncoder(&buf).Encode(v); err != nil {
		return nil, dbcore.Wrap(dbcore.KindIO, err, "encode toml")
	}
	return buf.Bytes(), nil
}

func unmarshalTOML(data []byte, v any) error {
	if _, err := toml.Decode(string(data), v); err != nil {
		return dbcore.Wrap(dbcore.KindIO, err, "decode toml")
	}
	return nil
}
