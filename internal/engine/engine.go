// Package engine dispatches parsed ActionRecords to the database/table/
// cache layers. It holds no package-level state: an Engine value carries
// the configuration and cache pool, and cmd/isadb owns the one live Engine.
package engine

import (
	"errors"
	"sort"

	"isadb/internal/cache"
	"isadb/internal/config"
	"isadb/internal/database"
	"isadb/internal/dbcore"
	"isadb/internal/fileops"
	"isadb/internal/parser"
	"isadb/internal/table"
)

// ErrExit is returned by Execute for an "exit"/"quit" ActionRecord, after
// flushing the cache; the REPL layer treats it as a clean-shutdown signal.
var ErrExit = errors.New("exit requested")

// Engine bundles the configuration, the cache pool, and dispatch for every
// ActionRecord type named by the parser contract.
type Engine struct {
	Config *config.Config
	Pool   *cache.Pool
}

// New creates an engine over an empty cache pool.
func New(cfg *config.Config) *Engine {
	return &Engine{Config: cfg, Pool: cache.NewPool()}
}

// Result is what Execute returns for one ActionRecord: a row set for
// searches/introspection, or a bare row-count/message for mutations.
type Result struct {
	Columns      []string
	Rows         []map[string]any
	RowsAffected int
	Message      string
}

// Execute dispatches one ActionRecord to its operation.
func (e *Engine) Execute(rec *parser.ActionRecord) (*Result, error) {
	switch rec.Type {
	case "create":
		return e.dispatchCreate(rec)
	case "drop":
		return e.dispatchDrop(rec)
	case "use":
		return e.dispatchUse(rec)
	case "show":
		return e.dispatchShow(rec)
	case "insert":
		return e.dispatchInsert(rec)
	case "update":
		return e.dispatchUpdate(rec)
	case "delete":
		return e.dispatchDelete(rec)
	case "search":
		return e.dispatchSearch(rec)
	case "call":
		return e.dispatchCall(rec)
	case "transaction":
		return e.dispatchTransaction(rec)
	case "exit":
		if err := e.Pool.FlushCacheToDisk(); err != nil {
			return nil, err
		}
		return nil, ErrExit
	default:
		return nil, dbcore.Newf(dbcore.KindParse, "unknown statement type %q", rec.Type)
	}
}

// ExecuteText parses and executes one raw statement, used by the
// transaction coordinator, which hands the engine statement text rather
// than an ActionRecord.
func (e *Engine) ExecuteText(statement string) error {
	rec, err := parser.Parse(statement)
	if err != nil {
		return err
	}
	_, err = e.Execute(rec)
	return err
}

func (e *Engine) dbDir(name string) string { return fileops.Join(e.Config.DataPath, name) }

// activeBranch returns the cache branch for the currently selected database.
func (e *Engine) activeBranch() (*cache.DbBranch, string, error) {
	name := e.Pool.CurrentName()
	if name == "" {
		return nil, "", dbcore.ErrNoActiveDB
	}
	branch, _ := e.Pool.Get(name)
	return branch, name, nil
}

// activeDatabase returns the live *database.Database of the active branch.
func (e *Engine) activeDatabase() (*database.Database, *cache.DbBranch, error) {
	branch, _, err := e.activeBranch()
	if err != nil {
		return nil, nil, err
	}
	return branch.Owner.(*database.Database), branch, nil
}

// loadTable fetches (caching on first access) the table's live handle under
// the active database.
func (e *Engine) loadTable(name string) (*table.Table, *cache.TableBranch, error) {
	db, branch, err := e.activeDatabase()
	if err != nil {
		return nil, nil, err
	}
	if tb, ok := branch.Table(name); ok {
		return tb.Owner.(*table.Table), tb, nil
	}
	schema, ok := db.Record.Tables[name]
	if !ok {
		return nil, nil, dbcore.Newf(dbcore.KindNotFound, "table %q not found", name)
	}
	t, err := table.Load(db.TableDir(name), name, db.Name, schema)
	if err != nil {
		return nil, nil, err
	}
	branch.AddTable(name, t.Branch)
	return t, t.Branch, nil
}

// sortedKeys is a small formatting helper shared by the SHOW handlers.
func sortedKeys(m map[string]*dbcore.TableSchema) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
