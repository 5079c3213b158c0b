package engine

import "isadb/internal/parser"

func (e *Engine) dispatchInsert(rec *parser.ActionRecord) (*Result, error) {
	t, _, err := e.loadTable(rec.Table)
	if err != nil {
		return nil, err
	}
	row, err := t.Insert(rec.Data)
	if err != nil {
		return nil, err
	}
	return &Result{RowsAffected: 1, Rows: []map[string]any{row}}, nil
}

func (e *Engine) dispatchUpdate(rec *parser.ActionRecord) (*Result, error) {
	t, _, err := e.loadTable(rec.Table)
	if err != nil {
		return nil, err
	}
	n, err := t.Update(rec.Conditions, rec.Data)
	if err != nil {
		return nil, err
	}
	return &Result{RowsAffected: n}, nil
}

func (e *Engine) dispatchDelete(rec *parser.ActionRecord) (*Result, error) {
	t, _, err := e.loadTable(rec.Table)
	if err != nil {
		return nil, err
	}
	n, err := t.Delete(rec.Conditions)
	if err != nil {
		return nil, err
	}
	return &Result{RowsAffected: n}, nil
}

func (e *Engine) dispatchSearch(rec *parser.ActionRecord) (*Result, error) {
	t, _, err := e.loadTable(rec.Table)
	if err != nil {
		return nil, err
	}
	rows, err := t.Search(rec.Conditions, rec.Project, rec.Desc)
	if err != nil {
		return nil, err
	}
	cols := rec.Project
	if cols == nil {
		for _, fs := range t.Schema.Fields {
			cols = append(cols, fs.Name)
		}
	}
	return &Result{Columns: cols, Rows: rows, RowsAffected: len(rows)}, nil
}
