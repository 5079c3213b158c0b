package dbcore

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTableSchemaValidateRequiresExactlyOnePrimaryKey(t *testing.T) {
	noPK, err := NewFieldSchema("name", TypeVarchar, nil, nil)
	require.NoError(t, err)
	assert.Error(t, (&TableSchema{Fields: []*FieldSchema{noPK}}).Validate())

	onePK, err := NewFieldSchema("id", TypeInt, []Constraint{ConstraintPrimary}, nil)
	require.NoError(t, err)
	assert.NoError(t, (&TableSchema{Fields: []*FieldSchema{onePK}}).Validate())

	secondPK, err := NewFieldSchema("code", TypeInt, []Constraint{ConstraintPrimary}, nil)
	require.NoError(t, err)
	assert.Error(t, (&TableSchema{Fields: []*FieldSchema{onePK, secondPK}}).Validate())
}
