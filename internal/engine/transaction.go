package engine

import (
	"isadb/internal/parser"
	"isadb/internal/txn"
)

// dispatchTransaction runs a BEGIN...COMMIT/ROLLBACK block under the
// coordinator (spec.md §4.7): it commits the active branch as the
// pre-transaction baseline, suspends auto-commit for the duration, then
// commits or rolls back depending on whether every statement succeeded and
// which terminator closed the block.
func (e *Engine) dispatchTransaction(rec *parser.ActionRecord) (*Result, error) {
	branch, _, err := e.activeBranch()
	if err != nil {
		return nil, err
	}
	if err := branch.Commit(); err != nil {
		return nil, err
	}

	controller := txn.CacheController{
		SetAutoCommit: branch.SetAutoCommit,
		Commit:        branch.Commit,
		Rollback:      branch.Rollback,
	}
	results, err := txn.Run(rec.Statements, rec.Terminator, e.ExecuteText, controller)
	if err != nil {
		return nil, err
	}

	failed := 0
	for _, r := range results {
		if r.Err != nil {
			failed++
		}
	}
	if failed > 0 {
		return &Result{Message: "transaction rolled back"}, nil
	}
	return &Result{RowsAffected: len(results), Message: "transaction committed"}, nil
}
