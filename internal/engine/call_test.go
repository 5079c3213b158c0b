package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSubstituteArgsHandlesDoubleDigitPlaceholders(t *testing.T) {
	tmpl := "INSERT INTO t (a1, a10) VALUES (%1, %10)"
	args := make([]any, 10)
	for i := range args {
		args[i] = int64(i + 1)
	}
	out := substituteArgs(tmpl, args)
	assert.Equal(t, "INSERT INTO t (a1, a10) VALUES (1, 10)", out)
}

func TestLiteralTextQuotesStrings(t *testing.T) {
	assert.Equal(t, "'carol'", literalText("carol"))
	assert.Equal(t, "NULL", literalText(nil))
	assert.Equal(t, "40", literalText(int64(40)))
}
