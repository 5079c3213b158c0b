package database

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"isadb/internal/dbcore"
)

func newSchema(t *testing.T) *dbcore.TableSchema {
	t.Helper()
	id, err := dbcore.NewFieldSchema("id", dbcore.TypeInt,
		[]dbcore.Constraint{dbcore.ConstraintPrimary, dbcore.ConstraintAutoIncrement}, nil)
	require.NoError(t, err)
	return &dbcore.TableSchema{Fields: []*dbcore.FieldSchema{id}}
}

func TestCreateCommitLoadRoundTrip(t *testing.T) {
	dir := t.TempDir()
	db := New("shop", dir)
	require.NoError(t, db.CreateTable("orders", newSchema(t)))
	require.NoError(t, db.Commit())

	loaded, err := Load(dir, "shop")
	require.NoError(t, err)
	assert.Equal(t, []string{"orders"}, loaded.Tables())
	assert.Contains(t, loaded.Record.Tables, "orders")
}

func TestDropTableRemovesDirectory(t *testing.T) {
	dir := t.TempDir()
	db := New("shop", dir)
	require.NoError(t, db.CreateTable("orders", newSchema(t)))
	require.NoError(t, db.Commit())

	require.NoError(t, db.DropTable("orders"))
	require.NoError(t, db.Commit())
	assert.Empty(t, db.Tables())

	loaded, err := Load(dir, "shop")
	require.NoError(t, err)
	assert.Empty(t, loaded.Tables())
}

func TestRollbackDiscardsUncommittedSchemaChange(t *testing.T) {
	dir := t.TempDir()
	db := New("shop", dir)
	require.NoError(t, db.CreateTable("orders", newSchema(t)))
	require.NoError(t, db.Commit())

	require.NoError(t, db.CreateTable("carts", newSchema(t)))
	require.NoError(t, db.Rollback())
	assert.Equal(t, []string{"orders"}, db.Tables())
}
