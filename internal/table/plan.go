package table

import (
	"isadb/internal/btree"
	"isadb/internal/dbcore"
)

// resolvePKs implements condition planning (spec.md §4.3.1): partition
// conditions into indexed/unindexed, resolve indexed conditions against
// their trees and intersect, then apply remaining conditions by loading
// column data for the surviving (or, absent any index hit, all) rows.
func (t *Table) resolvePKs(conditions map[string]*dbcore.Case) ([]any, error) {
	if len(conditions) == 0 {
		return t.allPKs()
	}

	fieldToIndex := t.fieldToIndex()
	var indexedFields, unindexedFields []string
	for f := range conditions {
		if _, ok := fieldToIndex[f]; ok {
			indexedFields = append(indexedFields, f)
		} else {
			unindexedFields = append(unindexedFields, f)
		}
	}

	var resultSet map[any]struct{} // nil == "unconstrained by any index"
	for _, f := range indexedFields {
		tree, err := t.indexReadOnly(fieldToIndex[f])
		if err != nil {
			return nil, err
		}
		fieldType := t.Schema.FieldByName(f).Type
		pks, err := evalIndexCase(tree, conditions[f], fieldType)
		if err != nil {
			return nil, err
		}
		if len(pks) == 0 {
			return nil, nil
		}
		resultSet = intersectSet(resultSet, pks)
		if len(resultSet) == 0 {
			return nil, nil
		}
	}

	if len(unindexedFields) == 0 {
		if resultSet == nil {
			return t.allPKs()
		}
		return setToSlice(resultSet), nil
	}

	var candidates []any
	if resultSet != nil {
		candidates = setToSlice(resultSet)
	} else {
		var err error
		candidates, err = t.allPKs()
		if err != nil {
			return nil, err
		}
	}

	var out []any
	for _, pk := range candidates {
		row, err := t.rowValues(pk, unindexedFields)
		if err != nil {
			return nil, err
		}
		match := true
		for _, f := range unindexedFields {
			ok, err := conditions[f].Evaluate(row[f], t.Schema.FieldByName(f).Type)
			if err != nil {
				return nil, err
			}
			if !ok {
				match = false
				break
			}
		}
		if match {
			out = append(out, pk)
		}
	}
	return out, nil
}

// evalIndexCase translates a Case on an indexed field into a tree operation
// and returns the matching set of primary keys.
func evalIndexCase(tree *btree.Tree, c *dbcore.Case, fieldType dbcore.DataType) ([]any, error) {
	switch c.Symbol {
	case dbcore.Eq:
		v, ok := tree.Get(c.Operand)
		if !ok {
			return nil, nil
		}
		return []any{v}, nil
	case dbcore.NotEq:
		operand := btree.KeyFloat(c.Operand)
		var out []any
		for _, kv := range tree.Traversal() {
			if btree.KeyFloat(kv.Key) != operand {
				out = append(out, kv.Value)
			}
		}
		return out, nil
	case dbcore.Lt:
		return valuesOf(tree.GetRange(nil, true, c.Operand, false)), nil
	case dbcore.Le:
		return valuesOf(tree.GetRange(nil, true, c.Operand, true)), nil
	case dbcore.Gt:
		return valuesOf(tree.GetRange(c.Operand, false, nil, true)), nil
	case dbcore.Ge:
		return valuesOf(tree.GetRange(c.Operand, true, nil, true)), nil
	case dbcore.RangeOp:
		bounds, ok := c.Operand.([2]any)
		if !ok {
			return nil, dbcore.Newf(dbcore.KindParse, "RANGE operand must be a (low, high) pair")
		}
		return valuesOf(tree.GetRange(bounds[0], true, bounds[1], true)), nil
	case dbcore.In:
		items, ok := c.Operand.([]any)
		if !ok {
			return nil, dbcore.Newf(dbcore.KindParse, "IN operand must be a list")
		}
		seen := make(map[any]struct{})
		var out []any
		for _, item := range items {
			if v, ok := tree.Get(item); ok {
				if _, dup := seen[v]; !dup {
					seen[v] = struct{}{}
					out = append(out, v)
				}
			}
		}
		return out, nil
	case dbcore.NotIn:
		items, ok := c.Operand.([]any)
		if !ok {
			return nil, dbcore.Newf(dbcore.KindParse, "NOT_IN operand must be a list")
		}
		excluded := make(map[float64]struct{}, len(items))
		for _, item := range items {
			excluded[btree.KeyFloat(item)] = struct{}{}
		}
		var out []any
		for _, kv := range tree.Traversal() {
			if _, skip := excluded[btree.KeyFloat(kv.Key)]; !skip {
				out = append(out, kv.Value)
			}
		}
		return out, nil
	default:
		return nil, dbcore.Newf(dbcore.KindParse, "symbol %s not usable on an indexed field", c.Symbol)
	}
}

func valuesOf(kvs []btree.KV) []any {
	out := make([]any, len(kvs))
	for i, e := range kvs {
		out[i] = e.Value
	}
	return out
}

func intersectSet(a map[any]struct{}, pks []any) map[any]struct{} {
	fresh := make(map[any]struct{}, len(pks))
	for _, v := range pks {
		fresh[v] = struct{}{}
	}
	if a == nil {
		return fresh
	}
	out := make(map[any]struct{})
	for v := range a {
		if _, ok := fresh[v]; ok {
			out[v] = struct{}{}
		}
	}
	return out
}

func setToSlice(s map[any]struct{}) []any {
	out := make([]any, 0, len(s))
	for v := range s {
		out = append(out, v)
	}
	return out
}
