// Package txn implements the transaction coordinator of spec.md §4.7: a
// single worker consuming a statement queue, with commit-or-rollback
// decided by whether every statement succeeded and what terminator closed
// the block.
package txn

import (
	"strings"

	"github.com/google/uuid"
)

// Result is what the worker reports for one executed statement. TxnID
// tags every result with the transaction it belongs to, so a caller
// tracing a log of worker output can tell which block a statement ran
// under even if multiple transactions' output streams are interleaved in
// a shared log sink.
type Result struct {
	TxnID     string
	Statement string
	Err       error
}

// Executor runs one already-parsed statement and reports success/failure.
type Executor func(statement string) error

// CacheController lets the coordinator suspend eviction and commit/rollback
// the active cache branch around the transaction.
type CacheController struct {
	SetAutoCommit func(on bool)
	Commit        func() error
	Rollback      func() error
}

// IsCommitTerminator reports whether a terminator keyword closes the block
// with an intent to commit (COMMIT/END) rather than abort (ROLLBACK).
func IsCommitTerminator(terminator string) bool {
	switch strings.ToUpper(strings.TrimSpace(terminator)) {
	case "COMMIT", "END":
		return true
	default:
		return false
	}
}

// Run executes statements sequentially on a single worker goroutine,
// reporting each Result as it completes, then commits or rolls back the
// cache according to §4.7's protocol: pre-transaction baseline commit is
// the caller's responsibility (it happens before Run is invoked); Run
// itself only owns steps 2-6.
func Run(statements []string, terminator string, exec Executor, cache CacheController) ([]Result, error) {
	txnID := uuid.New().String()

	cache.SetAutoCommit(false)
	defer cache.SetAutoCommit(true)

	in := make(chan string)
	out := make(chan Result)

	go func() {
		defer close(in)
		for _, s := range statements {
			if strings.TrimSpace(s) == "" {
				continue
			}
			in <- s
		}
	}()

	go worker(txnID, in, out, exec)

	var results []Result
	ok := true
	for r := range out {
		results = append(results, r)
		if r.Err != nil {
			ok = false
		}
	}

	if ok && IsCommitTerminator(terminator) {
		return results, cache.Commit()
	}
	return results, cache.Rollback()
}

// worker is the single statement-queue consumer (spec.md §4.7 step 3): it
// dequeues, executes, and reports; on first failure it stops executing but
// keeps draining the input channel so the producer goroutine never blocks
// on a full send.
func worker(txnID string, in <-chan string, out chan<- Result, exec Executor) {
	defer close(out)
	failed := false
	for stmt := range in {
		if failed {
			continue
		}
		err := exec(stmt)
		out <- Result{TxnID: txnID, Statement: stmt, Err: err}
		if err != nil {
			failed = true
		}
	}
}
