package parser

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"isadb/internal/dbcore"
)

func TestParseCreateTable(t *testing.T) {
	rec, err := Parse(`CREATE TABLE users (id INT PRIMARY KEY AUTO_INCREMENT, name VARCHAR NOT NULL, age INT)`)
	require.NoError(t, err)
	assert.Equal(t, "create", rec.Type)
	assert.Equal(t, "TABLE", rec.Target)
	assert.Equal(t, "users", rec.Table)
	require.Len(t, rec.Fields, 3)
	assert.Equal(t, "id", rec.Fields[0].Name)
	assert.True(t, rec.Fields[0].Has(dbcore.ConstraintPrimary))
	assert.True(t, rec.Fields[0].Has(dbcore.ConstraintAutoIncrement))
	assert.True(t, rec.Fields[1].Has(dbcore.ConstraintNotNull))
}

func TestParseInsert(t *testing.T) {
	rec, err := Parse(`INSERT INTO users (id, name) VALUES (1, 'alice')`)
	require.NoError(t, err)
	assert.Equal(t, "insert", rec.Type)
	assert.Equal(t, "users", rec.Table)
	assert.Equal(t, int64(1), rec.Data["id"])
	assert.Equal(t, "alice", rec.Data["name"])
}

func TestParseSelectWithWhereAndOrder(t *testing.T) {
	rec, err := Parse(`SELECT id, name FROM users WHERE age >= 18 AND name LIKE 'a%' ORDER BY id DESC`)
	require.NoError(t, err)
	assert.Equal(t, "search", rec.Type)
	assert.Equal(t, []string{"id", "name"}, rec.Project)
	assert.True(t, rec.Desc)
	require.Contains(t, rec.Conditions, "age")
	assert.Equal(t, dbcore.Ge, rec.Conditions["age"].Symbol)
	require.Contains(t, rec.Conditions, "name")
	assert.Equal(t, dbcore.Like, rec.Conditions["name"].Symbol)
}

func TestParseSelectStar(t *testing.T) {
	rec, err := Parse(`SELECT * FROM users`)
	require.NoError(t, err)
	assert.Nil(t, rec.Project)
}

func TestParseBetweenAndIn(t *testing.T) {
	rec, err := Parse(`DELETE FROM users WHERE age BETWEEN 10 AND 20`)
	require.NoError(t, err)
	c := rec.Conditions["age"]
	require.Equal(t, dbcore.RangeOp, c.Symbol)
	assert.Equal(t, [2]any{int64(10), int64(20)}, c.Operand)

	rec, err = Parse(`DELETE FROM users WHERE id IN (1, 2, 3)`)
	require.NoError(t, err)
	assert.Equal(t, dbcore.In, rec.Conditions["id"].Symbol)

	rec, err = Parse(`DELETE FROM users WHERE id NOT IN (1, 2)`)
	require.NoError(t, err)
	assert.Equal(t, dbcore.NotIn, rec.Conditions["id"].Symbol)
}

func TestParseUpdate(t *testing.T) {
	rec, err := Parse(`UPDATE users SET age = 30, name = 'bob' WHERE id = 1`)
	require.NoError(t, err)
	assert.Equal(t, "update", rec.Type)
	assert.Equal(t, int64(30), rec.Data["age"])
	assert.Equal(t, dbcore.Eq, rec.Conditions["id"].Symbol)
}

func TestParseCreateIndexAndDrop(t *testing.T) {
	rec, err := Parse(`CREATE INDEX idx_age ON users (age)`)
	require.NoError(t, err)
	assert.Equal(t, "INDEX", rec.Target)
	assert.Equal(t, "users", rec.Table)
	assert.Equal(t, "age", rec.Field)

	rec, err = Parse(`DROP INDEX idx_age ON users`)
	require.NoError(t, err)
	assert.Equal(t, "drop", rec.Type)
	assert.Equal(t, "INDEX", rec.Target)
}

func TestParseCall(t *testing.T) {
	rec, err := Parse(`CALL add_user('carol', 40)`)
	require.NoError(t, err)
	assert.Equal(t, "call", rec.Type)
	assert.Equal(t, "add_user", rec.Name)
	assert.Equal(t, []any{"carol", int64(40)}, rec.Args)
}

func TestParseCreateProcedureRewritesParams(t *testing.T) {
	rec, err := Parse(`CREATE PROCEDURE add_user (uname, uage) BEGIN INSERT INTO users (name, age) VALUES (uname, uage); END`)
	require.NoError(t, err)
	assert.Equal(t, "PROCEDURE", rec.Target)
	assert.Equal(t, []string{"uname", "uage"}, rec.Params)
	require.Len(t, rec.Statements, 1)
	assert.Contains(t, rec.Statements[0], "%1")
	assert.Contains(t, rec.Statements[0], "%2")
}

func TestParseExit(t *testing.T) {
	rec, err := Parse(`EXIT`)
	require.NoError(t, err)
	assert.Equal(t, "exit", rec.Type)
}

func TestStatementBufferRespectsQuotedDelimiter(t *testing.T) {
	buf := NewStatementBuffer()
	// The quote spans this line and the next; the ';' before the closing
	// quote must not be mistaken for the statement terminator.
	_, complete := buf.Feed(`INSERT INTO t (s) VALUES ('a`)
	assert.False(t, complete)
	stmt, complete := buf.Feed(`b;c');`)
	require.True(t, complete)
	assert.Equal(t, "INSERT INTO t (s) VALUES ('a\nb;c')", stmt)
}

func TestStatementBufferCustomDelimiter(t *testing.T) {
	buf := NewStatementBuffer()
	buf.SetDelimiter("//")
	stmt, complete := buf.Feed(`SELECT * FROM t //`)
	require.True(t, complete)
	assert.Equal(t, `SELECT * FROM t`, stmt)
}
