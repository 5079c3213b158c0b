// Package config holds the engine's persisted settings (data/work paths,
// page size, credentials) plus the in-memory runtime signals the cache and
// transaction layers read, the way the teacher keeps its runtime knobs in
// one plain struct rather than scattered globals.
package config

import (
	"crypto/rand"
	"os"

	"github.com/BurntSushi/toml"

	"isadb/internal/fileops"
)

const configFileName = "isadb.toml"

const passwordLetters = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ"
const passwordLength = 10

// Config is the engine's bootstrap configuration, persisted at
// <work_path>/isadb.toml. Runtime-only signals (AutoCommit,
// TransactionInUse) are never serialized: every process start begins with
// AutoCommit true and TransactionInUse false, same as the teacher's
// in-memory flags.
type Config struct {
	DataPath string `toml:"data_path"`
	WorkPath string `toml:"work_path"`
	PageSize int    `toml:"page_size"`
	UserName string `toml:"user_name"`
	Password string `toml:"password"`

	AutoCommit       bool `toml:"-"`
	TransactionInUse bool `toml:"-"`
}

const defaultPageSize = 100

func path(workPath string) string { return fileops.Join(workPath, configFileName) }

// Load reads an existing config, or bootstraps a fresh one (with a random
// password) when none exists yet at workPath.
func Load(workPath, dataPath string) (*Config, error) {
	p := path(workPath)
	if !fileops.Exists(p) {
		return bootstrap(workPath, dataPath)
	}
	var c Config
	if _, err := toml.DecodeFile(p, &c); err != nil {
		return nil, err
	}
	c.AutoCommit = true
	return &c, nil
}

func bootstrap(workPath, dataPath string) (*Config, error) {
	if err := fileops.EnsureDir(workPath); err != nil {
		return nil, err
	}
	if err := fileops.EnsureDir(dataPath); err != nil {
		return nil, err
	}
	pw, err := randomPassword(passwordLength)
	if err != nil {
		return nil, err
	}
	c := &Config{
		DataPath: dataPath, WorkPath: workPath, PageSize: defaultPageSize,
		UserName: "root", Password: pw, AutoCommit: true,
	}
	if err := c.Save(); err != nil {
		return nil, err
	}
	return c, nil
}

// Save persists the config's serialized fields to <work_path>/isadb.toml.
func (c *Config) Save() error {
	f, err := os.Create(path(c.WorkPath))
	if err != nil {
		return err
	}
	defer f.Close()
	return toml.NewEncoder(f).Encode(c)
}

func randomPassword(n int) (string, error) {
	buf := make([]byte, n)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	out := make([]byte, n)
	for i, b := range buf {
		out[i] = passwordLetters[int(b)%len(passwordLetters)]
	}
	return string(out), nil
}
