package engine

import (
	"fmt"
	"strings"

	"isadb/internal/dbcore"
	"isadb/internal/parser"
)

// dispatchCall substitutes CALL's positional arguments into the procedure's
// statement templates and executes each in turn (SPEC_FULL §4, supplemented
// from original_source/'s stored-procedure handling). Each parameter
// occurrence in the body is rewritten at CREATE PROCEDURE time to a %N
// placeholder (N = 1-based parameter position); CALL replaces %1, %2, ...
// with the textual form of each argument before parsing the statement.
func (e *Engine) dispatchCall(rec *parser.ActionRecord) (*Result, error) {
	db, _, err := e.activeDatabase()
	if err != nil {
		return nil, err
	}
	proc, ok := db.Record.Procedures[rec.Name]
	if !ok {
		return nil, dbcore.Newf(dbcore.KindNotFound, "procedure %q not found", rec.Name)
	}
	if len(rec.Args) != len(proc.Params) {
		return nil, dbcore.Newf(dbcore.KindParse, "procedure %q expects %d argument(s), got %d",
			rec.Name, len(proc.Params), len(rec.Args))
	}

	var last *Result
	affected := 0
	for _, tmpl := range proc.Statements {
		stmt := substituteArgs(tmpl, rec.Args)
		parsed, err := parser.Parse(stmt)
		if err != nil {
			return nil, err
		}
		res, err := e.Execute(parsed)
		if err != nil {
			return nil, err
		}
		last = res
		if res != nil {
			affected += res.RowsAffected
		}
	}
	if last == nil {
		return &Result{Message: "procedure executed"}, nil
	}
	last.RowsAffected = affected
	return last, nil
}

// substituteArgs replaces every %N placeholder with its argument's literal
// text, highest index first: %1 is a prefix of %10, so replacing in
// ascending order would mangle the %1 inside %10 for procedures with ten or
// more parameters.
func substituteArgs(tmpl string, args []any) string {
	out := tmpl
	for i := len(args) - 1; i >= 0; i-- {
		placeholder := fmt.Sprintf("%%%d", i+1)
		out = strings.ReplaceAll(out, placeholder, literalText(args[i]))
	}
	return out
}

// literalText renders an argument back into statement text the parser can
// re-tokenize as a value: strings need their quotes restored, since
// substitution happens on raw text rather than on parsed tokens.
func literalText(a any) string {
	if a == nil {
		return "NULL"
	}
	if s, ok := a.(string); ok {
		return "'" + s + "'"
	}
	return fmt.Sprint(a)
}
