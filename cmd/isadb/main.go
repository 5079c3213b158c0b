// Package main is the isadb CLI: a cobra-rooted REPL over the storage
// engine. It is the only place that holds process-global state (the
// lazily-constructed Engine), the way the teacher's main.go owns the root
// cobra.Command tree and wires subcommands to the core package.
package main

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"isadb/internal/config"
	"isadb/internal/engine"
	"isadb/internal/fileops"
	"isadb/internal/output"
	"isadb/internal/parser"
)

func main() {
	root := rootCmd()
	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, output.ErrorLine(err))
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	var workPath, dataPath string

	cmd := &cobra.Command{
		Use:   "isadb",
		Short: "A single-node, disk-backed relational database engine",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runREPL(workPath, dataPath)
		},
	}

	home, _ := os.UserHomeDir()
	defaultWork := filepath.Join(home, ".isadb")
	cmd.Flags().StringVar(&workPath, "work-path", defaultWork, "directory for configuration and the write lock")
	cmd.Flags().StringVar(&dataPath, "data-path", filepath.Join(defaultWork, "data"), "directory databases are stored under")
	return cmd
}

func runREPL(workPath, dataPath string) error {
	cfg, err := config.Load(workPath, dataPath)
	if err != nil {
		return err
	}

	lock, err := fileops.AcquireWriterLock(cfg.DataPath)
	if err != nil {
		return err
	}
	defer lock.Release()

	eng := engine.New(cfg)
	defer eng.Pool.FlushCacheToDisk()

	fmt.Printf("isadb (user %s) -- type statements terminated by ';', or EXIT to quit.\n", cfg.UserName)

	scanner := bufio.NewScanner(os.Stdin)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	buf := parser.NewStatementBuffer()

	var pendingTxn *transactionAccumulator

	prompt := func() {
		if buf.Pending() || pendingTxn != nil {
			fmt.Print("   -> ")
		} else {
			fmt.Print("isadb> ")
		}
	}

	prompt()
	for scanner.Scan() {
		line := scanner.Text()

		if meta, ok := tryDelimiterCommand(line); ok {
			buf.SetDelimiter(meta)
			fmt.Printf("Delimiter set to %q\n", meta)
			prompt()
			continue
		}

		stmt, complete := buf.Feed(line)
		if !complete {
			prompt()
			continue
		}
		if strings.TrimSpace(stmt) == "" {
			prompt()
			continue
		}

		if pendingTxn != nil {
			if done, rec := pendingTxn.feed(stmt); done {
				pendingTxn = nil
				runStatement(eng, rec)
			}
			prompt()
			continue
		}

		if acc := startTransaction(stmt); acc != nil {
			pendingTxn = acc
			prompt()
			continue
		}

		if shouldExit := runText(eng, stmt); shouldExit {
			return nil
		}
		prompt()
	}
	return nil
}

// tryDelimiterCommand recognizes the REPL meta-command "DELIMITER <token>",
// which is never handed to the statement parser (spec.md §6).
func tryDelimiterCommand(line string) (string, bool) {
	fields := strings.Fields(strings.TrimSpace(line))
	if len(fields) == 2 && strings.EqualFold(fields[0], "DELIMITER") {
		return fields[1], true
	}
	return "", false
}

// transactionAccumulator collects a BEGIN/START TRANSACTION block's inner
// statements until a COMMIT/ROLLBACK/END terminator closes it, so the
// per-statement parser never has to understand block structure itself.
type transactionAccumulator struct {
	statements []string
}

func startTransaction(stmt string) *transactionAccumulator {
	u := strings.ToUpper(strings.TrimSpace(stmt))
	if u == "BEGIN" || u == "START TRANSACTION" {
		return &transactionAccumulator{}
	}
	return nil
}

func (a *transactionAccumulator) feed(stmt string) (bool, *parser.ActionRecord) {
	u := strings.ToUpper(strings.TrimSpace(stmt))
	switch u {
	case "COMMIT", "END", "ROLLBACK":
		return true, &parser.ActionRecord{Type: "transaction", Statements: a.statements, Terminator: u}
	default:
		a.statements = append(a.statements, stmt)
		return false, nil
	}
}

// runText parses and runs one statement, reporting true if it was EXIT/QUIT.
func runText(eng *engine.Engine, stmt string) bool {
	rec, err := parser.Parse(stmt)
	if err != nil {
		fmt.Println(output.ErrorLine(err))
		return false
	}
	return runStatement(eng, rec)
}

func runStatement(eng *engine.Engine, rec *parser.ActionRecord) bool {
	res, err := eng.Execute(rec)
	if err != nil {
		if errors.Is(err, engine.ErrExit) {
			return true
		}
		fmt.Println(output.ErrorLine(err))
		return false
	}
	printResult(res)
	return false
}

func printResult(res *engine.Result) {
	if res == nil {
		return
	}
	if res.Columns != nil {
		fmt.Println(output.RenderRows(res.Columns, res.Rows))
		return
	}
	if res.Message != "" {
		fmt.Println(res.Message)
	}
	if res.RowsAffected > 0 || res.Message == "" {
		fmt.Printf("%d row(s) affected\n", res.RowsAffected)
	}
}
