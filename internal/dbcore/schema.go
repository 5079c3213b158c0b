package dbcore

import "fmt"

// DataType is one of the three column types the engine supports.
type DataType string

const (
	TypeInt     DataType = "int"
	TypeFloat   DataType = "float"
	TypeVarchar DataType = "varchar"
)

// Constraint is one of the key-set members a FieldSchema may carry.
type Constraint string

const (
	ConstraintPrimary       Constraint = "primary"
	ConstraintUnique        Constraint = "unique"
	ConstraintNotNull       Constraint = "not_null"
	ConstraintAutoIncrement Constraint = "auto_increment"
	ConstraintNull          Constraint = "null"
)

// FieldSchema is a column definition: type, constraint set, and default
// value. Set at CREATE TABLE and immutable thereafter (spec.md §3).
type FieldSchema struct {
	Name        string            `toml:"name"`
	Type        DataType          `toml:"type"`
	Constraints map[Constraint]bool `toml:"constraints"`
	Default     any               `toml:"default"`
}

// Has reports whether the schema carries the given constraint.
func (s *FieldSchema) Has(c Constraint) bool {
	return s.Constraints != nil && s.Constraints[c]
}

// NewFieldSchema validates the constraint combination at creation time and
// returns the schema. The three rejected combinations (§4.1) are checked
// here so a bad CREATE TABLE fails immediately rather than surfacing as a
// confusing constraint violation on the first insert.
func NewFieldSchema(name string, typ DataType, constraints []Constraint, def any) (*FieldSchema, error) {
	set := make(map[Constraint]bool, len(constraints))
	for _, c := range constraints {
		set[c] = true
	}

	s := &FieldSchema{Name: name, Type: typ, Constraints: set, Default: def}

	if s.Has(ConstraintAutoIncrement) {
		if !s.Has(ConstraintPrimary) {
			return nil, Newf(KindSchema, "field %q: auto_increment requires primary", name)
		}
		if typ != TypeInt {
			return nil, Newf(KindSchema, "field %q: auto_increment requires int type", name)
		}
	}
	if s.Has(ConstraintUnique) && def != nil {
		return nil, Newf(KindSchema, "field %q: unique cannot carry a non-empty default", name)
	}
	return s, nil
}

func (s *FieldSchema) String() string {
	return fmt.Sprintf("%s %s", s.Name, s.Type)
}
