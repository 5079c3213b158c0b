package table

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"isadb/internal/dbcore"
)

func newTestSchema(t *testing.T) *dbcore.TableSchema {
	t.Helper()
	idSchema, err := dbcore.NewFieldSchema("id", dbcore.TypeInt,
		[]dbcore.Constraint{dbcore.ConstraintPrimary, dbcore.ConstraintAutoIncrement}, nil)
	require.NoError(t, err)
	nameSchema, err := dbcore.NewFieldSchema("name", dbcore.TypeVarchar,
		[]dbcore.Constraint{dbcore.ConstraintNotNull}, nil)
	require.NoError(t, err)
	return &dbcore.TableSchema{Fields: []*dbcore.FieldSchema{idSchema, nameSchema}}
}

func newTestTable(t *testing.T, pageSize int) *Table {
	t.Helper()
	dir := t.TempDir()
	return New("t", "shop", dir, pageSize, newTestSchema(t))
}

func TestInsertAndSearchS1(t *testing.T) {
	tbl := newTestTable(t, 100)
	for _, name := range []string{"a", "b", "c"} {
		_, err := tbl.Insert(map[string]any{"name": name})
		require.NoError(t, err)
	}
	rows, err := tbl.Search(nil, nil, false)
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, int64(1), rows[0]["id"])
	assert.Equal(t, "a", rows[0]["name"])
	assert.Equal(t, int64(3), rows[2]["id"])
}

func TestDeleteThenSearchS2(t *testing.T) {
	tbl := newTestTable(t, 100)
	for _, name := range []string{"a", "b", "c"} {
		_, err := tbl.Insert(map[string]any{"name": name})
		require.NoError(t, err)
	}
	n, err := tbl.Delete(map[string]*dbcore.Case{"id": {Symbol: dbcore.Eq, Operand: int64(2)}})
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	rows, err := tbl.Search(nil, []string{"id", "name"}, false)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, int64(1), rows[0]["id"])
	assert.Equal(t, int64(3), rows[1]["id"])
}

func TestPageLayoutS5(t *testing.T) {
	tbl := newTestTable(t, 2)
	for _, name := range []string{"a", "b", "c", "d", "e"} {
		_, err := tbl.Insert(map[string]any{"name": name})
		require.NoError(t, err)
	}
	require.Equal(t, []int{0, 1, 2}, tbl.Pages)

	_, err := tbl.Delete(map[string]*dbcore.Case{"id": {Symbol: dbcore.Eq, Operand: int64(1)}})
	require.NoError(t, err)
	assert.Equal(t, 4, tbl.RowCount)
	assert.Equal(t, []int{0, 1, 2}, tbl.Pages)

	p0, err := tbl.page(0, false)
	require.NoError(t, err)
	p1, err := tbl.page(1, false)
	require.NoError(t, err)
	p2, err := tbl.page(2, false)
	require.NoError(t, err)
	assert.Equal(t, 1, p0.RowCount)
	assert.Equal(t, 2, p1.RowCount)
	assert.Equal(t, 1, p2.RowCount)
}

func TestIndexRangeQueryS3(t *testing.T) {
	dir := t.TempDir()
	idSchema, _ := dbcore.NewFieldSchema("id", dbcore.TypeInt,
		[]dbcore.Constraint{dbcore.ConstraintPrimary}, nil)
	kSchema, _ := dbcore.NewFieldSchema("k", dbcore.TypeInt,
		[]dbcore.Constraint{dbcore.ConstraintNotNull, dbcore.ConstraintUnique}, nil)
	schema := &dbcore.TableSchema{Fields: []*dbcore.FieldSchema{idSchema, kSchema}}
	tbl := New("u", "shop", dir, 100, schema)

	for i, k := range []int64{100, 200, 300} {
		_, err := tbl.Insert(map[string]any{"id": int64(i + 1), "k": k})
		require.NoError(t, err)
	}

	require.Error(t, tbl.CreateIndex("ix_id", "id")) // PK may not be indexed
	require.NoError(t, tbl.CreateIndex("ix", "k"))

	rows, err := tbl.Search(map[string]*dbcore.Case{"k": {Symbol: dbcore.Ge, Operand: int64(200)}}, nil, false)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, int64(200), rows[0]["k"])
	assert.Equal(t, int64(300), rows[1]["k"])
}

func TestUpdatePropagatesToIndex(t *testing.T) {
	dir := t.TempDir()
	idSchema, _ := dbcore.NewFieldSchema("id", dbcore.TypeInt,
		[]dbcore.Constraint{dbcore.ConstraintPrimary}, nil)
	kSchema, _ := dbcore.NewFieldSchema("k", dbcore.TypeInt,
		[]dbcore.Constraint{dbcore.ConstraintNotNull, dbcore.ConstraintUnique}, nil)
	schema := &dbcore.TableSchema{Fields: []*dbcore.FieldSchema{idSchema, kSchema}}
	tbl := New("u", "shop", dir, 100, schema)
	_, err := tbl.Insert(map[string]any{"id": int64(1), "k": int64(10)})
	require.NoError(t, err)
	require.NoError(t, tbl.CreateIndex("ix", "k"))

	_, err = tbl.Update(map[string]*dbcore.Case{"id": {Symbol: dbcore.Eq, Operand: int64(1)}},
		map[string]any{"k": int64(20)})
	require.NoError(t, err)

	tree, err := tbl.index("ix")
	require.NoError(t, err)
	v, ok := tree.Get(int64(20))
	require.True(t, ok)
	assert.Equal(t, int64(1), v)
	_, ok = tree.Get(int64(10))
	assert.False(t, ok)
}

func TestIndexNotEqAndNotInCoerceOperandAcrossNumericTypes(t *testing.T) {
	dir := t.TempDir()
	idSchema, _ := dbcore.NewFieldSchema("id", dbcore.TypeInt,
		[]dbcore.Constraint{dbcore.ConstraintPrimary}, nil)
	priceSchema, _ := dbcore.NewFieldSchema("price", dbcore.TypeFloat,
		[]dbcore.Constraint{dbcore.ConstraintNotNull, dbcore.ConstraintUnique}, nil)
	schema := &dbcore.TableSchema{Fields: []*dbcore.FieldSchema{idSchema, priceSchema}}
	tbl := New("goods", "shop", dir, 100, schema)

	for i, price := range []float64{5, 10, 15} {
		_, err := tbl.Insert(map[string]any{"id": int64(i + 1), "price": price})
		require.NoError(t, err)
	}
	require.NoError(t, tbl.CreateIndex("ix_price", "price"))

	// The parser hands a bare integer literal like "5" through as int64 even
	// though the indexed column is a float; tree keys are stored as float64.
	rows, err := tbl.Search(map[string]*dbcore.Case{"price": {Symbol: dbcore.NotEq, Operand: int64(5)}}, nil, false)
	require.NoError(t, err)
	require.Len(t, rows, 2)

	rows, err = tbl.Search(map[string]*dbcore.Case{"price": {Symbol: dbcore.NotIn, Operand: []any{int64(5), int64(10)}}}, nil, false)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, 15.0, rows[0]["price"])
}

func TestCommitAndReload(t *testing.T) {
	dir := t.TempDir()
	schema := newTestSchema(t)
	tbl := New("t", "shop", dir, 2, schema)
	_, err := tbl.Insert(map[string]any{"name": "a"})
	require.NoError(t, err)
	_, err = tbl.Insert(map[string]any{"name": "b"})
	require.NoError(t, err)
	require.NoError(t, tbl.Branch.Commit())

	_, err = os.Stat(tbl.objPath())
	require.NoError(t, err)

	reloaded, err := Load(dir, "t", "shop", schema)
	require.NoError(t, err)
	assert.Equal(t, 2, reloaded.RowCount)
	assert.Equal(t, []int{0}, reloaded.Pages)

	rows, err := reloaded.Search(nil, nil, false)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "a", rows[0]["name"])
}
