package engine

import (
	"isadb/internal/dbcore"
	"isadb/internal/fileops"
	"isadb/internal/parser"
)

func (e *Engine) dispatchShow(rec *parser.ActionRecord) (*Result, error) {
	switch rec.Target {
	case "DATABASES":
		names, err := fileops.ListSubdirs(e.Config.DataPath)
		if err != nil {
			return nil, err
		}
		rows := make([]map[string]any, len(names))
		for i, n := range names {
			rows[i] = map[string]any{"database": n}
		}
		return &Result{Columns: []string{"database"}, Rows: rows}, nil

	case "TABLES":
		db, _, err := e.activeDatabase()
		if err != nil {
			return nil, err
		}
		names := sortedKeys(db.Record.Tables)
		rows := make([]map[string]any, len(names))
		for i, n := range names {
			rows[i] = map[string]any{"table": n}
		}
		return &Result{Columns: []string{"table"}, Rows: rows}, nil

	case "INDEX":
		t, _, err := e.loadTable(rec.Table)
		if err != nil {
			return nil, err
		}
		names := t.IndexNames()
		rows := make([]map[string]any, len(names))
		for i, n := range names {
			rows[i] = map[string]any{"index": n, "field": t.Indexes[n]}
		}
		return &Result{Columns: []string{"index", "field"}, Rows: rows}, nil

	default:
		return nil, dbcore.Newf(dbcore.KindParse, "SHOW: unknown target %q", rec.Target)
	}
}
