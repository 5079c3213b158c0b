package engine

import (
	"isadb/internal/cache"
	"isadb/internal/database"
	"isadb/internal/dbcore"
	"isadb/internal/fileops"
	"isadb/internal/parser"
	"isadb/internal/table"
)

func (e *Engine) dispatchCreate(rec *parser.ActionRecord) (*Result, error) {
	switch rec.Target {
	case "DATABASE":
		return e.createDatabase(rec.Name)
	case "TABLE":
		return e.createTable(rec)
	case "INDEX":
		return e.createIndex(rec)
	case "PROCEDURE":
		return e.createProcedure(rec)
	default:
		return nil, dbcore.Newf(dbcore.KindParse, "CREATE: unknown target %q", rec.Target)
	}
}

func (e *Engine) createDatabase(name string) (*Result, error) {
	if _, ok := e.Pool.Get(name); ok {
		return nil, dbcore.Newf(dbcore.KindSchema, "database %q already exists", name)
	}
	if fileops.Exists(e.dbDir(name)) {
		return nil, dbcore.Newf(dbcore.KindSchema, "database %q already exists", name)
	}
	db := database.New(name, e.dbDir(name))
	if err := db.Commit(); err != nil {
		return nil, err
	}
	e.Pool.Add(name, cache.NewDbBranch(db))
	return &Result{Message: "database created"}, nil
}

func (e *Engine) createTable(rec *parser.ActionRecord) (*Result, error) {
	db, branch, err := e.activeDatabase()
	if err != nil {
		return nil, err
	}
	schema := &dbcore.TableSchema{Fields: rec.Fields}
	if err := db.CreateTable(rec.Table, schema); err != nil {
		return nil, err
	}
	t := table.New(rec.Table, db.Name, db.TableDir(rec.Table), e.Config.PageSize, schema)
	if err := t.Commit(); err != nil {
		return nil, err
	}
	branch.AddTable(rec.Table, t.Branch)
	if err := db.Commit(); err != nil {
		return nil, err
	}
	return &Result{Message: "table created"}, nil
}

func (e *Engine) createIndex(rec *parser.ActionRecord) (*Result, error) {
	t, tb, err := e.loadTable(rec.Table)
	if err != nil {
		return nil, err
	}
	if err := t.CreateIndex(rec.Name, rec.Field); err != nil {
		return nil, err
	}
	if err := tb.Commit(); err != nil {
		return nil, err
	}
	return &Result{Message: "index created"}, nil
}

func (e *Engine) createProcedure(rec *parser.ActionRecord) (*Result, error) {
	db, _, err := e.activeDatabase()
	if err != nil {
		return nil, err
	}
	proc := &dbcore.ProcedureDef{Name: rec.Name, Params: rec.Params, Statements: rec.Statements}
	if err := db.Record.AddProcedure(proc); err != nil {
		return nil, err
	}
	if err := db.Commit(); err != nil {
		return nil, err
	}
	return &Result{Message: "procedure created"}, nil
}
