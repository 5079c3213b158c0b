package engine

import (
	"isadb/internal/cache"
	"isadb/internal/database"
	"isadb/internal/dbcore"
	"isadb/internal/fileops"
	"isadb/internal/parser"
)

func (e *Engine) dispatchUse(rec *parser.ActionRecord) (*Result, error) {
	name := rec.Name
	if _, ok := e.Pool.Get(name); !ok {
		if !fileops.Exists(e.dbDir(name)) {
			return nil, dbcore.Newf(dbcore.KindNotFound, "database %q not found", name)
		}
		db, err := database.Load(e.dbDir(name), name)
		if err != nil {
			return nil, err
		}
		e.Pool.Add(name, cache.NewDbBranch(db))
	}
	if err := e.Pool.Use(name); err != nil {
		return nil, err
	}
	return &Result{Message: "database changed"}, nil
}
