package engine

import (
	"isadb/internal/dbcore"
	"isadb/internal/fileops"
	"isadb/internal/parser"
)

func (e *Engine) dispatchDrop(rec *parser.ActionRecord) (*Result, error) {
	switch rec.Target {
	case "DATABASE":
		return e.dropDatabase(rec.Name)
	case "TABLE":
		return e.dropTable(rec.Name)
	case "INDEX":
		return e.dropIndex(rec)
	case "PROCEDURE":
		return e.dropProcedure(rec.Name)
	default:
		return nil, dbcore.Newf(dbcore.KindParse, "DROP: unknown target %q", rec.Target)
	}
}

func (e *Engine) dropDatabase(name string) (*Result, error) {
	if !fileops.Exists(e.dbDir(name)) {
		return nil, dbcore.Newf(dbcore.KindNotFound, "database %q not found", name)
	}
	e.Pool.Drop(name)
	if err := fileops.Remove(e.dbDir(name)); err != nil {
		return nil, err
	}
	return &Result{Message: "database dropped"}, nil
}

func (e *Engine) dropTable(name string) (*Result, error) {
	db, branch, err := e.activeDatabase()
	if err != nil {
		return nil, err
	}
	if err := db.DropTable(name); err != nil {
		return nil, err
	}
	branch.DropTable(name)
	if err := db.Commit(); err != nil {
		return nil, err
	}
	return &Result{Message: "table dropped"}, nil
}

func (e *Engine) dropIndex(rec *parser.ActionRecord) (*Result, error) {
	t, _, err := e.loadTable(rec.Table)
	if err != nil {
		return nil, err
	}
	if err := t.DropIndex(rec.Name); err != nil {
		return nil, err
	}
	if err := t.Commit(); err != nil {
		return nil, err
	}
	return &Result{Message: "index dropped"}, nil
}

func (e *Engine) dropProcedure(name string) (*Result, error) {
	db, _, err := e.activeDatabase()
	if err != nil {
		return nil, err
	}
	if err := db.Record.DropProcedure(name); err != nil {
		return nil, err
	}
	if err := db.Commit(); err != nil {
		return nil, err
	}
	return &Result{Message: "procedure dropped"}, nil
}
