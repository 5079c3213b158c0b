package parser

import (
	"strconv"
	"strings"

	"isadb/internal/dbcore"
)

// Parse turns one already-delimited statement (BEGIN/COMMIT block framing
// is the caller's job — see StatementBuffer and cmd/isadb's
// transactionAccumulator) into an
// ActionRecord.
func Parse(statement string) (*ActionRecord, error) {
	toks, err := tokenize(statement)
	if err != nil {
		return nil, err
	}
	c := &cursor{toks: toks}
	if c.atEOF() {
		return nil, dbcore.Newf(dbcore.KindParse, "empty statement")
	}

	switch {
	case c.isKeyword("CREATE"):
		c.next()
		return parseCreate(c)
	case c.isKeyword("DROP"):
		c.next()
		return parseDrop(c)
	case c.isKeyword("USE"):
		c.next()
		name, err := c.expectIdent()
		if err != nil {
			return nil, err
		}
		return &ActionRecord{Type: "use", Name: name}, nil
	case c.isKeyword("SHOW"):
		c.next()
		return parseShow(c)
	case c.isKeyword("INSERT"):
		c.next()
		return parseInsert(c)
	case c.isKeyword("UPDATE"):
		c.next()
		return parseUpdate(c)
	case c.isKeyword("DELETE"):
		c.next()
		return parseDelete(c)
	case c.isKeyword("SELECT"):
		c.next()
		return parseSelect(c)
	case c.isKeyword("CALL"):
		c.next()
		return parseCall(c)
	case c.isKeyword("EXIT") || c.isKeyword("QUIT"):
		return &ActionRecord{Type: "exit"}, nil
	default:
		return nil, dbcore.Newf(dbcore.KindParse, "unrecognized statement %q", statement)
	}
}

func parseCreate(c *cursor) (*ActionRecord, error) {
	switch {
	case c.acceptKeyword("DATABASE"):
		name, err := c.expectIdent()
		if err != nil {
			return nil, err
		}
		return &ActionRecord{Type: "create", Target: "DATABASE", Name: name}, nil

	case c.acceptKeyword("TABLE"):
		name, err := c.expectIdent()
		if err != nil {
			return nil, err
		}
		fields, err := parseFieldDefs(c)
		if err != nil {
			return nil, err
		}
		return &ActionRecord{Type: "create", Target: "TABLE", Table: name, Fields: fields}, nil

	case c.acceptKeyword("INDEX"):
		name, err := c.expectIdent()
		if err != nil {
			return nil, err
		}
		if err := c.expectKeyword("ON"); err != nil {
			return nil, err
		}
		table, err := c.expectIdent()
		if err != nil {
			return nil, err
		}
		if err := c.expectPunct("("); err != nil {
			return nil, err
		}
		field, err := c.expectIdent()
		if err != nil {
			return nil, err
		}
		if err := c.expectPunct(")"); err != nil {
			return nil, err
		}
		return &ActionRecord{Type: "create", Target: "INDEX", Name: name, Table: table, Field: field}, nil

	case c.acceptKeyword("PROCEDURE"):
		return parseCreateProcedure(c)

	default:
		return nil, dbcore.Newf(dbcore.KindParse, "CREATE: expected DATABASE, TABLE, INDEX, or PROCEDURE")
	}
}

func parseFieldDefs(c *cursor) ([]*dbcore.FieldSchema, error) {
	if err := c.expectPunct("("); err != nil {
		return nil, err
	}
	var fields []*dbcore.FieldSchema
	for {
		fs, err := parseFieldDef(c)
		if err != nil {
			return nil, err
		}
		fields = append(fields, fs)
		if c.peek().kind == tokPunct && c.peek().text == "," {
			c.next()
			continue
		}
		break
	}
	if err := c.expectPunct(")"); err != nil {
		return nil, err
	}
	return fields, nil
}

func parseFieldDef(c *cursor) (*dbcore.FieldSchema, error) {
	name, err := c.expectIdent()
	if err != nil {
		return nil, err
	}
	typeName, err := c.expectIdent()
	if err != nil {
		return nil, err
	}
	var typ dbcore.DataType
	switch strings.ToUpper(typeName) {
	case "INT", "INTEGER":
		typ = dbcore.TypeInt
	case "FLOAT", "DOUBLE":
		typ = dbcore.TypeFloat
	case "VARCHAR", "TEXT", "STRING":
		typ = dbcore.TypeVarchar
	default:
		return nil, dbcore.Newf(dbcore.KindParse, "unknown field type %q", typeName)
	}
	// Optional VARCHAR(n) length annotation: recorded nowhere, since §3
	// enforces no length limit.
	if c.peek().kind == tokPunct && c.peek().text == "(" {
		c.next()
		c.next() // the length literal
		if err := c.expectPunct(")"); err != nil {
			return nil, err
		}
	}

	var constraints []dbcore.Constraint
	var def any
	for {
		switch {
		case c.acceptKeyword("PRIMARY"):
			c.acceptKeyword("KEY")
			constraints = append(constraints, dbcore.ConstraintPrimary)
		case c.acceptKeyword("UNIQUE"):
			constraints = append(constraints, dbcore.ConstraintUnique)
		case c.acceptKeyword("NOT"):
			if err := c.expectKeyword("NULL"); err != nil {
				return nil, err
			}
			constraints = append(constraints, dbcore.ConstraintNotNull)
		case c.acceptKeyword("NULL"):
			constraints = append(constraints, dbcore.ConstraintNull)
		case c.acceptKeyword("AUTO_INCREMENT"):
			constraints = append(constraints, dbcore.ConstraintAutoIncrement)
		case c.acceptKeyword("DEFAULT"):
			v, err := parseValue(c)
			if err != nil {
				return nil, err
			}
			def = v
		default:
			return dbcore.NewFieldSchema(name, typ, constraints, def)
		}
	}
}

func parseCreateProcedure(c *cursor) (*ActionRecord, error) {
	name, err := c.expectIdent()
	if err != nil {
		return nil, err
	}
	if err := c.expectPunct("("); err != nil {
		return nil, err
	}
	var params []string
	for c.peek().kind != tokPunct || c.peek().text != ")" {
		p, err := c.expectIdent()
		if err != nil {
			return nil, err
		}
		params = append(params, p)
		if c.peek().kind == tokPunct && c.peek().text == "," {
			c.next()
		}
	}
	if err := c.expectPunct(")"); err != nil {
		return nil, err
	}
	if err := c.expectKeyword("BEGIN"); err != nil {
		return nil, err
	}
	// The procedure body is part of this one statement: collect its tokens
	// up to END and split them on the literal ';' punctuation tokens
	// instead of re-tokenizing text.
	var bodyToks []token
	for !c.isKeyword("END") {
		if c.atEOF() {
			return nil, dbcore.Newf(dbcore.KindParse, "CREATE PROCEDURE: missing END")
		}
		bodyToks = append(bodyToks, c.next())
	}
	c.next() // consume END

	statements := splitOnSemicolons(bodyToks)
	rewritten := make([]string, 0, len(statements))
	for _, stmt := range statements {
		rewritten = append(rewritten, rewriteParams(stmt, params))
	}
	return &ActionRecord{Type: "create", Target: "PROCEDURE", Name: name, Params: params, Statements: rewritten}, nil
}

// splitOnSemicolons re-renders each ';'-delimited run of tokens back to text.
func splitOnSemicolons(toks []token) []string {
	var out []string
	var cur []token
	for _, t := range toks {
		if t.kind == tokPunct && t.text == ";" {
			if len(cur) > 0 {
				out = append(out, renderTokens(cur))
				cur = nil
			}
			continue
		}
		cur = append(cur, t)
	}
	if len(cur) > 0 {
		out = append(out, renderTokens(cur))
	}
	return out
}

func renderTokens(toks []token) string {
	parts := make([]string, len(toks))
	for i, t := range toks {
		parts[i] = t.text
	}
	return strings.Join(parts, " ")
}

// rewriteParams replaces every bare occurrence of a parameter name with its
// 1-based %N placeholder, so CALL's positional substitution (engine's call.go)
// never needs to know the procedure's parameter names.
func rewriteParams(statement string, params []string) string {
	toks, err := tokenize(statement)
	if err != nil {
		return statement
	}
	idx := make(map[string]int, len(params))
	for i, p := range params {
		idx[strings.ToUpper(p)] = i + 1
	}
	parts := make([]string, len(toks))
	for i, t := range toks {
		if t.kind == tokIdent {
			if n, ok := idx[strings.ToUpper(t.text)]; ok {
				parts[i] = "%" + strconv.Itoa(n)
				continue
			}
		}
		parts[i] = t.text
	}
	return strings.Join(parts, " ")
}

func parseDrop(c *cursor) (*ActionRecord, error) {
	switch {
	case c.acceptKeyword("DATABASE"):
		name, err := c.expectIdent()
		if err != nil {
			return nil, err
		}
		return &ActionRecord{Type: "drop", Target: "DATABASE", Name: name}, nil
	case c.acceptKeyword("TABLE"):
		name, err := c.expectIdent()
		if err != nil {
			return nil, err
		}
		return &ActionRecord{Type: "drop", Target: "TABLE", Name: name}, nil
	case c.acceptKeyword("INDEX"):
		name, err := c.expectIdent()
		if err != nil {
			return nil, err
		}
		if err := c.expectKeyword("ON"); err != nil {
			return nil, err
		}
		table, err := c.expectIdent()
		if err != nil {
			return nil, err
		}
		return &ActionRecord{Type: "drop", Target: "INDEX", Name: name, Table: table}, nil
	case c.acceptKeyword("PROCEDURE"):
		name, err := c.expectIdent()
		if err != nil {
			return nil, err
		}
		return &ActionRecord{Type: "drop", Target: "PROCEDURE", Name: name}, nil
	default:
		return nil, dbcore.Newf(dbcore.KindParse, "DROP: expected DATABASE, TABLE, INDEX, or PROCEDURE")
	}
}

func parseShow(c *cursor) (*ActionRecord, error) {
	switch {
	case c.acceptKeyword("DATABASES"):
		return &ActionRecord{Type: "show", Target: "DATABASES"}, nil
	case c.acceptKeyword("TABLES"):
		return &ActionRecord{Type: "show", Target: "TABLES"}, nil
	case c.acceptKeyword("INDEX"):
		if err := c.expectKeyword("ON"); err != nil {
			return nil, err
		}
		table, err := c.expectIdent()
		if err != nil {
			return nil, err
		}
		return &ActionRecord{Type: "show", Target: "INDEX", Table: table}, nil
	default:
		return nil, dbcore.Newf(dbcore.KindParse, "SHOW: expected DATABASES, TABLES, or INDEX")
	}
}

func parseInsert(c *cursor) (*ActionRecord, error) {
	if err := c.expectKeyword("INTO"); err != nil {
		return nil, err
	}
	table, err := c.expectIdent()
	if err != nil {
		return nil, err
	}
	if err := c.expectPunct("("); err != nil {
		return nil, err
	}
	var names []string
	for {
		n, err := c.expectIdent()
		if err != nil {
			return nil, err
		}
		names = append(names, n)
		if c.peek().kind == tokPunct && c.peek().text == "," {
			c.next()
			continue
		}
		break
	}
	if err := c.expectPunct(")"); err != nil {
		return nil, err
	}
	if err := c.expectKeyword("VALUES"); err != nil {
		return nil, err
	}
	values, err := parseValueList(c)
	if err != nil {
		return nil, err
	}
	if len(values) != len(names) {
		return nil, dbcore.Newf(dbcore.KindParse, "INSERT: %d column(s) but %d value(s)", len(names), len(values))
	}
	data := make(map[string]any, len(names))
	for i, n := range names {
		data[n] = values[i]
	}
	return &ActionRecord{Type: "insert", Table: table, Data: data}, nil
}

func parseUpdate(c *cursor) (*ActionRecord, error) {
	table, err := c.expectIdent()
	if err != nil {
		return nil, err
	}
	if err := c.expectKeyword("SET"); err != nil {
		return nil, err
	}
	data := make(map[string]any)
	for {
		field, err := c.expectIdent()
		if err != nil {
			return nil, err
		}
		if err := c.expectPunct("="); err != nil {
			return nil, err
		}
		v, err := parseValue(c)
		if err != nil {
			return nil, err
		}
		data[field] = v
		if c.peek().kind == tokPunct && c.peek().text == "," {
			c.next()
			continue
		}
		break
	}
	conditions, err := parseOptionalWhere(c)
	if err != nil {
		return nil, err
	}
	return &ActionRecord{Type: "update", Table: table, Data: data, Conditions: conditions}, nil
}

func parseDelete(c *cursor) (*ActionRecord, error) {
	if err := c.expectKeyword("FROM"); err != nil {
		return nil, err
	}
	table, err := c.expectIdent()
	if err != nil {
		return nil, err
	}
	conditions, err := parseOptionalWhere(c)
	if err != nil {
		return nil, err
	}
	return &ActionRecord{Type: "delete", Table: table, Conditions: conditions}, nil
}

func parseSelect(c *cursor) (*ActionRecord, error) {
	var project []string
	if c.peek().kind == tokPunct && c.peek().text == "*" {
		c.next()
	} else {
		for {
			f, err := c.expectIdent()
			if err != nil {
				return nil, err
			}
			project = append(project, f)
			if c.peek().kind == tokPunct && c.peek().text == "," {
				c.next()
				continue
			}
			break
		}
	}
	if err := c.expectKeyword("FROM"); err != nil {
		return nil, err
	}
	table, err := c.expectIdent()
	if err != nil {
		return nil, err
	}
	conditions, err := parseOptionalWhere(c)
	if err != nil {
		return nil, err
	}
	desc := false
	var orderBy string
	if c.acceptKeyword("ORDER") {
		if err := c.expectKeyword("BY"); err != nil {
			return nil, err
		}
		orderBy, err = c.expectIdent()
		if err != nil {
			return nil, err
		}
		if c.acceptKeyword("DESC") {
			desc = true
		} else {
			c.acceptKeyword("ASC")
		}
	}
	return &ActionRecord{Type: "search", Table: table, Project: project, Conditions: conditions, OrderBy: orderBy, Desc: desc}, nil
}

func parseCall(c *cursor) (*ActionRecord, error) {
	name, err := c.expectIdent()
	if err != nil {
		return nil, err
	}
	var args []any
	if c.peek().kind == tokPunct && c.peek().text == "(" {
		args, err = parseValueList(c)
		if err != nil {
			return nil, err
		}
	}
	return &ActionRecord{Type: "call", Name: name, Args: args}, nil
}

func parseOptionalWhere(c *cursor) (map[string]*dbcore.Case, error) {
	if !c.acceptKeyword("WHERE") {
		return nil, nil
	}
	return parseConditions(c)
}

func parseConditions(c *cursor) (map[string]*dbcore.Case, error) {
	conditions := make(map[string]*dbcore.Case)
	for {
		field, err := c.expectIdent()
		if err != nil {
			return nil, err
		}
		cs, err := parseOneCondition(c)
		if err != nil {
			return nil, err
		}
		conditions[field] = cs
		if c.acceptKeyword("AND") {
			continue
		}
		break
	}
	return conditions, nil
}

func parseOneCondition(c *cursor) (*dbcore.Case, error) {
	switch {
	case c.acceptKeyword("BETWEEN"):
		low, err := parseValue(c)
		if err != nil {
			return nil, err
		}
		if err := c.expectKeyword("AND"); err != nil {
			return nil, err
		}
		high, err := parseValue(c)
		if err != nil {
			return nil, err
		}
		return &dbcore.Case{Symbol: dbcore.RangeOp, Operand: [2]any{low, high}}, nil
	case c.acceptKeyword("NOT"):
		if err := c.expectKeyword("IN"); err != nil {
			return nil, err
		}
		items, err := parseValueList(c)
		if err != nil {
			return nil, err
		}
		return &dbcore.Case{Symbol: dbcore.NotIn, Operand: items}, nil
	case c.acceptKeyword("IN"):
		items, err := parseValueList(c)
		if err != nil {
			return nil, err
		}
		return &dbcore.Case{Symbol: dbcore.In, Operand: items}, nil
	case c.acceptKeyword("LIKE"):
		v, err := parseValue(c)
		if err != nil {
			return nil, err
		}
		s, _ := v.(string)
		return &dbcore.Case{Symbol: dbcore.Like, Operand: s}, nil
	default:
		sym, err := parseSymbol(c)
		if err != nil {
			return nil, err
		}
		v, err := parseValue(c)
		if err != nil {
			return nil, err
		}
		return &dbcore.Case{Symbol: sym, Operand: v}, nil
	}
}

func parseSymbol(c *cursor) (dbcore.Symbol, error) {
	t := c.next()
	if t.kind != tokPunct {
		return "", dbcore.Newf(dbcore.KindParse, "expected a comparison operator, got %q", t.text)
	}
	switch t.text {
	case "=":
		return dbcore.Eq, nil
	case "!=":
		return dbcore.NotEq, nil
	case "<":
		return dbcore.Lt, nil
	case "<=":
		return dbcore.Le, nil
	case ">":
		return dbcore.Gt, nil
	case ">=":
		return dbcore.Ge, nil
	default:
		return "", dbcore.Newf(dbcore.KindParse, "unknown comparison operator %q", t.text)
	}
}

func parseValueList(c *cursor) ([]any, error) {
	if err := c.expectPunct("("); err != nil {
		return nil, err
	}
	var items []any
	for {
		v, err := parseValue(c)
		if err != nil {
			return nil, err
		}
		items = append(items, v)
		if c.peek().kind == tokPunct && c.peek().text == "," {
			c.next()
			continue
		}
		break
	}
	if err := c.expectPunct(")"); err != nil {
		return nil, err
	}
	return items, nil
}

func parseValue(c *cursor) (any, error) {
	t := c.next()
	switch t.kind {
	case tokString:
		return t.text[1 : len(t.text)-1], nil
	case tokNumber:
		if strings.Contains(t.text, ".") {
			f, err := strconv.ParseFloat(t.text, 64)
			if err != nil {
				return nil, dbcore.Wrap(dbcore.KindParse, err, "invalid number %q", t.text)
			}
			return f, nil
		}
		n, err := strconv.ParseInt(t.text, 10, 64)
		if err != nil {
			return nil, dbcore.Wrap(dbcore.KindParse, err, "invalid number %q", t.text)
		}
		return n, nil
	case tokIdent:
		switch strings.ToUpper(t.text) {
		case "NULL":
			return nil, nil
		default:
			return nil, dbcore.Newf(dbcore.KindParse, "unexpected identifier %q in value position", t.text)
		}
	default:
		return nil, dbcore.Newf(dbcore.KindParse, "expected a value, got %q", t.text)
	}
}
