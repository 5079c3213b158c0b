package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"isadb/internal/config"
	"isadb/internal/parser"
)

func newTestEngine(t *testing.T) *Engine {
	t.Helper()
	cfg := &config.Config{DataPath: t.TempDir(), PageSize: 2, AutoCommit: true}
	return New(cfg)
}

func run(t *testing.T, e *Engine, stmt string) *Result {
	t.Helper()
	rec, err := parser.Parse(stmt)
	require.NoError(t, err)
	res, err := e.Execute(rec)
	require.NoError(t, err)
	return res
}

func TestEndToEndCreateInsertSearch(t *testing.T) {
	e := newTestEngine(t)
	run(t, e, `CREATE DATABASE shop`)
	run(t, e, `USE shop`)
	run(t, e, `CREATE TABLE users (id INT PRIMARY KEY AUTO_INCREMENT, name VARCHAR NOT NULL, age INT)`)
	run(t, e, `INSERT INTO users (id, name, age) VALUES (NULL, 'alice', 30)`)
	run(t, e, `INSERT INTO users (id, name, age) VALUES (NULL, 'bob', 25)`)

	res := run(t, e, `SELECT id, name FROM users WHERE age >= 25`)
	assert.Len(t, res.Rows, 2)
}

func TestEndToEndUpdateAndDelete(t *testing.T) {
	e := newTestEngine(t)
	run(t, e, `CREATE DATABASE shop`)
	run(t, e, `USE shop`)
	run(t, e, `CREATE TABLE users (id INT PRIMARY KEY AUTO_INCREMENT, name VARCHAR NOT NULL, age INT)`)
	run(t, e, `INSERT INTO users (id, name, age) VALUES (NULL, 'alice', 30)`)

	res := run(t, e, `UPDATE users SET age = 31 WHERE id = 1`)
	assert.Equal(t, 1, res.RowsAffected)

	res = run(t, e, `SELECT age FROM users WHERE id = 1`)
	require.Len(t, res.Rows, 1)
	assert.Equal(t, int64(31), res.Rows[0]["age"])

	res = run(t, e, `DELETE FROM users WHERE id = 1`)
	assert.Equal(t, 1, res.RowsAffected)

	res = run(t, e, `SELECT id FROM users WHERE id = 1`)
	assert.Empty(t, res.Rows)
}

func TestEndToEndIndexedRangeQuery(t *testing.T) {
	e := newTestEngine(t)
	run(t, e, `CREATE DATABASE shop`)
	run(t, e, `USE shop`)
	run(t, e, `CREATE TABLE users (id INT PRIMARY KEY AUTO_INCREMENT, age INT NOT NULL UNIQUE)`)
	run(t, e, `CREATE INDEX idx_age ON users (age)`)
	for _, age := range []string{"18", "25", "40"} {
		run(t, e, `INSERT INTO users (id, age) VALUES (NULL, `+age+`)`)
	}

	res := run(t, e, `SELECT id FROM users WHERE age BETWEEN 20 AND 40`)
	assert.Len(t, res.Rows, 2)
}

func TestEndToEndTransactionRollsBackOnFailure(t *testing.T) {
	e := newTestEngine(t)
	run(t, e, `CREATE DATABASE shop`)
	run(t, e, `USE shop`)
	run(t, e, `CREATE TABLE users (id INT PRIMARY KEY AUTO_INCREMENT, name VARCHAR NOT NULL)`)

	branch, _, err := e.activeBranch()
	require.NoError(t, err)

	rec := &parser.ActionRecord{
		Type: "transaction",
		Statements: []string{
			`INSERT INTO users (id, name) VALUES (NULL, 'ok')`,
			`INSERT INTO users (id, name) VALUES (NULL, NULL)`, // violates not_null
		},
		Terminator: "COMMIT",
	}
	_, err = e.Execute(rec)
	require.NoError(t, err)

	table, _, err := e.loadTable("users")
	require.NoError(t, err)
	assert.Equal(t, 0, table.RowCount)
	_ = branch
}

func TestEndToEndProcedureCall(t *testing.T) {
	e := newTestEngine(t)
	run(t, e, `CREATE DATABASE shop`)
	run(t, e, `USE shop`)
	run(t, e, `CREATE TABLE users (id INT PRIMARY KEY AUTO_INCREMENT, name VARCHAR NOT NULL, age INT)`)
	run(t, e, `CREATE PROCEDURE add_user (uname, uage) BEGIN INSERT INTO users (id, name, age) VALUES (NULL, uname, uage); END`)

	res := run(t, e, `CALL add_user('carol', 40)`)
	assert.Equal(t, 1, res.RowsAffected)

	res = run(t, e, `SELECT name FROM users WHERE age = 40`)
	require.Len(t, res.Rows, 1)
	assert.Equal(t, "carol", res.Rows[0]["name"])
}

func TestLoadTableMidTransactionInheritsAutoCommitSuspension(t *testing.T) {
	dataPath := t.TempDir()

	cfg1 := &config.Config{DataPath: dataPath, PageSize: 2, AutoCommit: true}
	e1 := New(cfg1)
	run(t, e1, `CREATE DATABASE shop`)
	run(t, e1, `USE shop`)
	run(t, e1, `CREATE TABLE users (id INT PRIMARY KEY AUTO_INCREMENT, name VARCHAR NOT NULL)`)
	require.NoError(t, e1.Pool.FlushCacheToDisk())

	// A second engine over the same data directory starts with an empty
	// cache pool, so "users" is not yet a resident TableBranch when its
	// transaction begins.
	cfg2 := &config.Config{DataPath: dataPath, PageSize: 2, AutoCommit: true}
	e2 := New(cfg2)
	run(t, e2, `USE shop`)

	branch, _, err := e2.activeBranch()
	require.NoError(t, err)
	branch.SetAutoCommit(false)

	_, _, err = e2.loadTable("users")
	require.NoError(t, err)

	tb, ok := branch.Table("users")
	require.True(t, ok)
	assert.False(t, tb.AutoCommit, "table first loaded mid-transaction must inherit eviction suspension")
}

func TestCreateTableRejectsMissingOrDuplicatePrimaryKey(t *testing.T) {
	e := newTestEngine(t)
	run(t, e, `CREATE DATABASE shop`)
	run(t, e, `USE shop`)

	rec, err := parser.Parse(`CREATE TABLE no_pk (name VARCHAR NOT NULL)`)
	require.NoError(t, err)
	_, err = e.Execute(rec)
	assert.Error(t, err)

	rec, err = parser.Parse(`CREATE TABLE two_pk (a INT PRIMARY KEY, b INT PRIMARY KEY)`)
	require.NoError(t, err)
	_, err = e.Execute(rec)
	assert.Error(t, err)
}

func TestShowDatabasesAndTables(t *testing.T) {
	e := newTestEngine(t)
	run(t, e, `CREATE DATABASE shop`)
	run(t, e, `USE shop`)
	run(t, e, `CREATE TABLE users (id INT PRIMARY KEY AUTO_INCREMENT)`)

	res := run(t, e, `SHOW DATABASES`)
	require.Len(t, res.Rows, 1)
	assert.Equal(t, "shop", res.Rows[0]["database"])

	res = run(t, e, `SHOW TABLES`)
	require.Len(t, res.Rows, 1)
	assert.Equal(t, "users", res.Rows[0]["table"])
}
