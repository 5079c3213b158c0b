package dbcore

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPageAddFieldBackfill(t *testing.T) {
	p := NewPage("0.data")

	idSchema, _ := NewFieldSchema("id", TypeInt, nil, nil)
	idField := NewField(idSchema)
	_, _ = idField.Add(int64(1))
	_, _ = idField.Add(int64(2))
	require.NoError(t, p.AddField("id", idField, nil))

	nameSchema, _ := NewFieldSchema("name", TypeVarchar, nil, nil)
	nameField := NewField(nameSchema)
	require.NoError(t, p.AddField("name", nameField, nil))

	assert.Equal(t, 2, p.Fields["name"].Length())
	assert.True(t, p.Uniform())
}

func TestPageAddFieldLengthMismatch(t *testing.T) {
	p := NewPage("0.data")
	idSchema, _ := NewFieldSchema("id", TypeInt, nil, nil)
	idField := NewField(idSchema)
	_, _ = idField.Add(int64(1))
	require.NoError(t, p.AddField("id", idField, nil))

	otherSchema, _ := NewFieldSchema("other", TypeInt, nil, nil)
	otherField := NewField(otherSchema)
	_, _ = otherField.Add(int64(1))
	_, _ = otherField.Add(int64(2))

	err := p.AddField("other", otherField, nil)
	assert.Error(t, err)
}
