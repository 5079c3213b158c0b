package dbcore

import "fmt"

// Field is a typed, append-only column backing one slice of a Page. It owns
// its schema and enforces the schema's constraints on every mutation
// (spec.md §4.1).
type Field struct {
	Schema *FieldSchema
	Values []any
}

// NewField creates an empty Field for the given schema.
func NewField(schema *FieldSchema) *Field {
	return &Field{Schema: schema, Values: nil}
}

// Length returns the row count of this column.
func (f *Field) Length() int { return len(f.Values) }

// GetData returns the value at index, or the whole value sequence when index
// is nil.
func (f *Field) GetData(index *int) any {
	if index == nil {
		out := make([]any, len(f.Values))
		copy(out, f.Values)
		return out
	}
	if *index < 0 || *index >= len(f.Values) {
		return nil
	}
	return f.Values[*index]
}

func isEmptyValue(v any) bool {
	if v == nil {
		return true
	}
	if s, ok := v.(string); ok {
		return s == ""
	}
	return false
}

// CheckValue runs the four-step validation pipeline from §4.1 and returns
// the normalized value to store. excludeIndex, when >= 0, excludes that
// position from the duplicate-key scan — used by Modify, which is allowed to
// rewrite a cell to the value it already holds.
func (f *Field) CheckValue(value any, excludeIndex int) (any, error) {
	// (1) empty substitution: auto-increment first, then default.
	if isEmptyValue(value) {
		switch {
		case f.Schema.Has(ConstraintAutoIncrement):
			value = int64(len(f.Values) + 1)
		case f.Schema.Default != nil:
			value = f.Schema.Default
		}
	}

	// (2) duplicate check for auto-increment/primary/unique.
	if f.Schema.Has(ConstraintAutoIncrement) || f.Schema.Has(ConstraintPrimary) || f.Schema.Has(ConstraintUnique) {
		if !isEmptyValue(value) {
			for i, existing := range f.Values {
				if i == excludeIndex {
					continue
				}
				if valuesEqual(existing, value) {
					return nil, Wrap(KindConstraint, ErrDuplicateKey, "field %q: duplicate value %v", f.Schema.Name, value)
				}
			}
		}
	}

	// (3) null check for primary/not-null.
	if f.Schema.Has(ConstraintPrimary) || f.Schema.Has(ConstraintNotNull) {
		if isEmptyValue(value) {
			return nil, Wrap(KindConstraint, ErrNullViolation, "field %q: value required", f.Schema.Name)
		}
	}

	// (4) type check, skipping a still-empty nullable value.
	if isEmptyValue(value) {
		return nil, nil
	}
	normalized, err := coerceType(value, f.Schema.Type)
	if err != nil {
		return nil, Wrap(KindConstraint, ErrTypeMismatch, "field %q: %v", f.Schema.Name, err)
	}
	return normalized, nil
}

func valuesEqual(a, b any) bool {
	af, aok := toFloat(a)
	bf, bok := toFloat(b)
	if aok && bok {
		return af == bf
	}
	return fmt.Sprint(a) == fmt.Sprint(b)
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case float64:
		return n, true
	case float32:
		return float64(n), true
	default:
		return 0, false
	}
}

func coerceType(value any, typ DataType) (any, error) {
	switch typ {
	case TypeInt:
		switch n := value.(type) {
		case int64:
			return n, nil
		case int:
			return int64(n), nil
		case float64:
			if n == float64(int64(n)) {
				return int64(n), nil
			}
			return nil, fmt.Errorf("%v is not an int", value)
		default:
			return nil, fmt.Errorf("%v (%T) is not an int", value, value)
		}
	case TypeFloat:
		switch n := value.(type) {
		case float64:
			return n, nil
		case float32:
			return float64(n), nil
		case int64:
			return float64(n), nil
		case int:
			return float64(n), nil
		default:
			return nil, fmt.Errorf("%v (%T) is not a float", value, value)
		}
	case TypeVarchar:
		switch s := value.(type) {
		case string:
			return s, nil
		default:
			return nil, fmt.Errorf("%v (%T) is not a varchar", value, value)
		}
	default:
		return nil, fmt.Errorf("unknown field type %q", typ)
	}
}

// Add validates and appends value, returning the normalized value stored.
func (f *Field) Add(value any) (any, error) {
	normalized, err := f.CheckValue(value, -1)
	if err != nil {
		return nil, err
	}
	f.Values = append(f.Values, normalized)
	return normalized, nil
}

// Delete removes the value at index, shifting subsequent values left.
func (f *Field) Delete(index int) error {
	if index < 0 || index >= len(f.Values) {
		return Newf(KindNotFound, "field %q: index %d out of range", f.Schema.Name, index)
	}
	f.Values = append(f.Values[:index], f.Values[index+1:]...)
	return nil
}

// Modify re-runs the validation pipeline (excluding the cell's own current
// value from the duplicate check) and replaces the value at index.
func (f *Field) Modify(index int, value any) (any, error) {
	if index < 0 || index >= len(f.Values) {
		return nil, Newf(KindNotFound, "field %q: index %d out of range", f.Schema.Name, index)
	}
	normalized, err := f.CheckValue(value, index)
	if err != nil {
		return nil, err
	}
	f.Values[index] = normalized
	return normalized, nil
}

// GetRealIndex returns the position of the first value equal to v, or -1.
func (f *Field) GetRealIndex(v any) int {
	for i, existing := range f.Values {
		if valuesEqual(existing, v) {
			return i
		}
	}
	return -1
}
