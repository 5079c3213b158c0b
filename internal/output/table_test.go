package output

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRenderRowsDrawsBorderedTable(t *testing.T) {
	out := RenderRows([]string{"id", "name"}, []map[string]any{
		{"id": int64(1), "name": "alice"},
		{"id": int64(2), "name": "bo"},
	})
	lines := strings.Split(out, "\n")
	assert.True(t, strings.HasPrefix(lines[0], "+"))
	assert.Contains(t, out, "id")
	assert.Contains(t, out, "alice")
}

func TestRenderRowsEmptyStillShowsHeader(t *testing.T) {
	out := RenderRows([]string{"id"}, nil)
	assert.Contains(t, out, "id")
}

func TestRenderRowsNullCell(t *testing.T) {
	out := RenderRows([]string{"age"}, []map[string]any{{"age": nil}})
	assert.Contains(t, out, "NULL")
}

func TestErrorLineFormat(t *testing.T) {
	assert.Equal(t, "System has been error. boom", ErrorLine(errors.New("boom")))
}
