package tabledesc

import "encoding/json"

// DefaultKind classifies a column's default clause. The four kinds are
// never conflated: "no default", "DEFAULT NULL", a decodable literal, and
// an opaque expression are all distinguishable states.
type DefaultKind int

const (
	// DefaultAbsent means the column was declared without a default clause.
	DefaultAbsent DefaultKind = iota
	// DefaultNull means the default is the SQL NULL keyword.
	DefaultNull
	// DefaultLiteral means the default decoded to a native value.
	DefaultLiteral
	// DefaultExpression means the default is a non-literal expression
	// (function call, sequence reference, arithmetic) kept verbatim in Raw
	// and never evaluated.
	DefaultExpression
)

// DefaultValue pairs the backend's textual default clause with the native
// value decoded from it. Raw always carries the verbatim catalog text for
// every kind except DefaultAbsent; Value is set only for DefaultLiteral.
//
// Decoded value types by column affinity: int64 for integers, float64 for
// floating point types, decimal.Decimal for decimal and numeric types,
// bool for booleans, string for character data and canonicalized UUIDs.
type DefaultValue struct {
	Kind  DefaultKind `json:"-" yaml:"-"`
	Raw   string      `json:"-" yaml:"-"`
	Value any         `json:"-" yaml:"-"`
}

// IsAbsent reports whether the column has no default clause at all.
func (d DefaultValue) IsAbsent() bool { return d.Kind == DefaultAbsent }

// IsNull reports whether the default is the SQL NULL keyword.
func (d DefaultValue) IsNull() bool { return d.Kind == DefaultNull }

// IsLiteral reports whether the default decoded to a native value.
func (d DefaultValue) IsLiteral() bool { return d.Kind == DefaultLiteral }

// IsExpression reports whether the default is an undecodable expression.
func (d DefaultValue) IsExpression() bool { return d.Kind == DefaultExpression }

// String renders the default for display: empty for absent, "NULL" for the
// NULL keyword, the verbatim clause text otherwise.
func (d DefaultValue) String() string {
	switch d.Kind {
	case DefaultNull:
		return "NULL"
	case DefaultLiteral, DefaultExpression:
		return d.Raw
	default:
		return ""
	}
}

// MarshalJSON emits the raw/parsed pair with the states kept distinct:
//
//	absent     -> {}
//	NULL       -> {"raw":null,"parsed":null}
//	literal    -> {"raw":"...","parsed":<value>}
//	expression -> {"raw":"..."}
func (d DefaultValue) MarshalJSON() ([]byte, error) {
	switch d.Kind {
	case DefaultNull:
		return []byte(`{"raw":null,"parsed":null}`), nil
	case DefaultLiteral:
		return json.Marshal(struct {
			Raw    string `json:"raw"`
			Parsed any    `json:"parsed"`
		}{Raw: d.Raw, Parsed: d.Value})
	case DefaultExpression:
		return json.Marshal(struct {
			Raw string `json:"raw"`
		}{Raw: d.Raw})
	default:
		return []byte("{}"), nil
	}
}

// MarshalYAML mirrors MarshalJSON for YAML output.
func (d DefaultValue) MarshalYAML() (any, error) {
	switch d.Kind {
	case DefaultNull:
		return map[string]any{"raw": nil, "parsed": nil}, nil
	case DefaultLiteral:
		return map[string]any{"raw": d.Raw, "parsed": d.Value}, nil
	case DefaultExpression:
		return map[string]any{"raw": d.Raw}, nil
	default:
		return map[string]any{}, nil
	}
}
