package codec

// AnyVal is a TOML-friendly tagged union for a dynamically typed value
// (FieldSchema defaults, B+-tree keys/satellite values) — BurntSushi/toml
// has no native support for an `any`-typed struct field, so values are
// carried as one of a small closed set of typed slots selected by Kind.
type AnyVal struct {
	Kind string  `toml:"kind"`
	I    int64   `toml:"i,omitempty"`
	F    float64 `toml:"f,omitempty"`
	S    string  `toml:"s,omitempty"`
}

// ToAnyVal wraps a Go value for TOML serialization.
func ToAnyVal(v any) AnyVal {
	switch x := v.(type) {
	case nil:
		return AnyVal{Kind: "null"}
	case int64:
		return AnyVal{Kind: "int", I: x}
	case int:
		return AnyVal{Kind: "int", I: int64(x)}
	case float64:
		return AnyVal{Kind: "float", F: x}
	case string:
		return AnyVal{Kind: "string", S: x}
	default:
		return AnyVal{Kind: "null"}
	}
}

// FromAnyVal unwraps a deserialized AnyVal back to a Go value.
func FromAnyVal(a AnyVal) any {
	switch a.Kind {
	case "int":
		return a.I
	case "float":
		return a.F
	case "string":
		return a.S
	default:
		return nil
	}
}
