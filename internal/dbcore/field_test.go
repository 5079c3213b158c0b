package dbcore

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func intSchema(t *testing.T, name string, constraints ...Constraint) *FieldSchema {
	t.Helper()
	s, err := NewFieldSchema(name, TypeInt, constraints, nil)
	require.NoError(t, err)
	return s
}

func TestFieldAutoIncrement(t *testing.T) {
	schema := intSchema(t, "id", ConstraintPrimary, ConstraintAutoIncrement)
	f := NewField(schema)

	v1, err := f.Add(nil)
	require.NoError(t, err)
	assert.Equal(t, int64(1), v1)

	v2, err := f.Add(nil)
	require.NoError(t, err)
	assert.Equal(t, int64(2), v2)
}

func TestFieldDuplicateKey(t *testing.T) {
	schema, err := NewFieldSchema("k", TypeInt, []Constraint{ConstraintUnique, ConstraintNotNull}, nil)
	require.NoError(t, err)
	f := NewField(schema)

	_, err = f.Add(int64(1))
	require.NoError(t, err)

	_, err = f.Add(int64(1))
	require.Error(t, err)
	assert.True(t, Is(err, KindConstraint))
}

func TestFieldNullViolation(t *testing.T) {
	schema, err := NewFieldSchema("name", TypeVarchar, []Constraint{ConstraintNotNull}, nil)
	require.NoError(t, err)
	f := NewField(schema)

	_, err = f.Add(nil)
	require.Error(t, err)
}

func TestFieldTypeMismatch(t *testing.T) {
	schema, err := NewFieldSchema("age", TypeInt, nil, nil)
	require.NoError(t, err)
	f := NewField(schema)

	_, err = f.Add("not an int")
	require.Error(t, err)
}

func TestFieldDeleteShiftsIndices(t *testing.T) {
	schema, err := NewFieldSchema("v", TypeInt, nil, nil)
	require.NoError(t, err)
	f := NewField(schema)
	for i := 1; i <= 3; i++ {
		_, err := f.Add(int64(i))
		require.NoError(t, err)
	}
	require.NoError(t, f.Delete(1))
	assert.Equal(t, []any{int64(1), int64(3)}, f.Values)
}

func TestFieldModifyRevalidates(t *testing.T) {
	schema, err := NewFieldSchema("k", TypeInt, []Constraint{ConstraintUnique}, nil)
	require.NoError(t, err)
	f := NewField(schema)
	_, _ = f.Add(int64(1))
	_, _ = f.Add(int64(2))

	// Modifying index 0 back to its own value must not trip the duplicate check.
	_, err = f.Modify(0, int64(1))
	require.NoError(t, err)

	// Modifying to a value already used elsewhere must fail.
	_, err = f.Modify(0, int64(2))
	require.Error(t, err)
}

func TestSchemaRejectsIllegalCombinations(t *testing.T) {
	_, err := NewFieldSchema("id", TypeVarchar, []Constraint{ConstraintAutoIncrement, ConstraintPrimary}, nil)
	assert.Error(t, err, "auto_increment on non-int must be rejected")

	_, err = NewFieldSchema("id", TypeInt, []Constraint{ConstraintAutoIncrement}, nil)
	assert.Error(t, err, "auto_increment without primary must be rejected")

	_, err = NewFieldSchema("k", TypeInt, []Constraint{ConstraintUnique}, int64(5))
	assert.Error(t, err, "unique with non-empty default must be rejected")
}
