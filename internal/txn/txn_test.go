package txn

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRunCommitsOnSuccess(t *testing.T) {
	var executed []string
	var autoCommitStates []bool
	committed, rolledBack := false, false

	cache := CacheController{
		SetAutoCommit: func(on bool) { autoCommitStates = append(autoCommitStates, on) },
		Commit:        func() error { committed = true; return nil },
		Rollback:      func() error { rolledBack = true; return nil },
	}

	results, err := Run([]string{"INSERT 1", "INSERT 2"}, "COMMIT", func(s string) error {
		executed = append(executed, s)
		return nil
	}, cache)

	require.NoError(t, err)
	assert.Equal(t, []string{"INSERT 1", "INSERT 2"}, executed)
	assert.True(t, committed)
	assert.False(t, rolledBack)
	assert.Len(t, results, 2)
	assert.Equal(t, []bool{false, true}, autoCommitStates)
}

func TestRunRollsBackOnFailure(t *testing.T) {
	var executed []string
	rolledBack := false

	cache := CacheController{
		SetAutoCommit: func(on bool) {},
		Commit:        func() error { t.Fatal("commit should not be called"); return nil },
		Rollback:      func() error { rolledBack = true; return nil },
	}

	results, err := Run([]string{"INSERT 1", "BAD", "INSERT 3"}, "COMMIT", func(s string) error {
		executed = append(executed, s)
		if s == "BAD" {
			return assert.AnError
		}
		return nil
	}, cache)

	require.NoError(t, err)
	assert.True(t, rolledBack)
	assert.Equal(t, []string{"INSERT 1", "BAD"}, executed)
	require.Len(t, results, 2)
	assert.Error(t, results[1].Err)
}

func TestRunRollsBackOnExplicitRollback(t *testing.T) {
	rolledBack := false
	cache := CacheController{
		SetAutoCommit: func(on bool) {},
		Commit:        func() error { t.Fatal("commit should not be called"); return nil },
		Rollback:      func() error { rolledBack = true; return nil },
	}
	_, err := Run([]string{"INSERT 1"}, "ROLLBACK", func(s string) error { return nil }, cache)
	require.NoError(t, err)
	assert.True(t, rolledBack)
}
