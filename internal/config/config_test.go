package config

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadBootstrapsFreshConfig(t *testing.T) {
	work := t.TempDir()
	data := filepath.Join(work, "data")

	cfg, err := Load(work, data)
	require.NoError(t, err)
	assert.Equal(t, data, cfg.DataPath)
	assert.Equal(t, defaultPageSize, cfg.PageSize)
	assert.Len(t, cfg.Password, passwordLength)
	assert.True(t, cfg.AutoCommit)
}

func TestLoadReadsExistingConfig(t *testing.T) {
	work := t.TempDir()
	data := filepath.Join(work, "data")

	first, err := Load(work, data)
	require.NoError(t, err)

	second, err := Load(work, data)
	require.NoError(t, err)
	assert.Equal(t, first.Password, second.Password)
	assert.Equal(t, first.UserName, second.UserName)
}

func TestSavePersistsEdits(t *testing.T) {
	work := t.TempDir()
	data := filepath.Join(work, "data")

	cfg, err := Load(work, data)
	require.NoError(t, err)
	cfg.PageSize = 250
	require.NoError(t, cfg.Save())

	reloaded, err := Load(work, data)
	require.NoError(t, err)
	assert.Equal(t, 250, reloaded.PageSize)
}
