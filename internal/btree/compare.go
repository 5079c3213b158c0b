package btree

// KeyFloat exposes the numeric coercion used for all key comparisons, so
// callers outside this package (condition planning) can compare an operand
// against tree keys the same way Get/GetRange do, rather than falling back
// to interface equality that breaks across int64/float64.
func KeyFloat(v any) float64 { return keyFloat(v) }

// keys are restricted to int64 or float64 by the index-eligibility rule in
// table.CreateIndex (only int/float fields may be indexed); compare numerically.
func keyFloat(v any) float64 {
	switch n := v.(type) {
	case int64:
		return float64(n)
	case int:
		return float64(n)
	case float64:
		return n
	default:
		return 0
	}
}

func keyLess(a, b any) bool {
	return keyFloat(a) < keyFloat(b)
}

func keysEqual(a, b any) bool {
	return keyFloat(a) == keyFloat(b)
}
