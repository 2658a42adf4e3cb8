// Package ir defines the query intermediate representation that
// applications submit and the compiler consumes: queries, instructions,
// and the tagged-variant value type that carries literals, raw SQL
// expressions, sub-queries, preset parameter holes and cross-scope field
// references through the IR without string-sniffing.
package ir

import "fmt"

// ValueKind tags the concrete shape a Value holds.
type ValueKind int

const (
	// KindLiteral holds a plain Go scalar (string, number, bool, time.Time, nil slice/map for JSON).
	KindLiteral ValueKind = iota
	// KindNull is the explicit SQL NULL.
	KindNull
	// KindExpression holds a raw SQL fragment, inlined verbatim.
	KindExpression
	// KindSub holds a nested Query compiled as a sub-select.
	KindSub
	// KindValueHole is the `{__VALUE}` preset parameter placeholder.
	KindValueHole
	// KindParentField is a `__FIELD_PARENT_<name>` cross-scope column reference.
	KindParentField
)

// Value is the tagged variant described in spec §9: Literal | Null |
// Expression(String) | Sub(Query) | ValueHole | ParentField(String).
// Exactly one of the typed fields is meaningful, selected by Kind.
type Value struct {
	Kind ValueKind

	Literal    any    // KindLiteral
	Expression string // KindExpression
	Sub        *Query // KindSub
	FieldName  string // KindParentField
}

// Lit wraps a plain Go scalar as a literal Value.
func Lit(v any) Value { return Value{Kind: KindLiteral, Literal: v} }

// Null returns the explicit NULL value.
func Null() Value { return Value{Kind: KindNull} }

// Expr wraps a raw SQL fragment, inlined verbatim by the compiler. It may
// reference __FIELD_PARENT_<name>, rewritten to the parent scope's column
// selector during join composition.
func Expr(sql string) Value { return Value{Kind: KindExpression, Expression: sql} }

// SubQuery wraps a nested IR query to be compiled as a correlated sub-select.
func SubQuery(q *Query) Value { return Value{Kind: KindSub, Sub: q} }

// ValueHole is the preset parameter placeholder substituted by `using`.
func ValueHole() Value { return Value{Kind: KindValueHole} }

// ParentField references the parent scope's column selector for name.
func ParentField(name string) Value { return Value{Kind: KindParentField, FieldName: name} }

// IsNull reports whether v is the NULL variant, or a literal nil.
func (v Value) IsNull() bool {
	return v.Kind == KindNull || (v.Kind == KindLiteral && v.Literal == nil)
}

func (v Value) String() string {
	switch v.Kind {
	case KindLiteral:
		return fmt.Sprintf("%v", v.Literal)
	case KindNull:
		return "NULL"
	case KindExpression:
		return v.Expression
	case KindSub:
		return "(subquery)"
	case KindValueHole:
		return "{__VALUE}"
	case KindParentField:
		return "__FIELD_PARENT_" + v.FieldName
	default:
		return "<invalid value>"
	}
}

// ValueFromRaw normalises a raw decoded-IR leaf (as it would arrive from
// JSON: map[string]any sentinels, or a plain scalar) into a Value. Maps
// carrying a single "__EXPR", "__QUERY" or "__FIELD_PARENT_*" key are
// recognised as their respective tagged variant; anything else is a
// literal.
func ValueFromRaw(raw any) Value {
	if raw == nil {
		return Null()
	}
	if m, ok := raw.(map[string]any); ok && len(m) == 1 {
		for k, v := range m {
			switch {
			case k == "__EXPR":
				if s, ok := v.(string); ok {
					return Expr(s)
				}
			case k == "__QUERY":
				if q, ok := v.(*Query); ok {
					return SubQuery(q)
				}
			case k == "__VALUE":
				return ValueHole()
			case len(k) > len("__FIELD_PARENT_") && k[:len("__FIELD_PARENT_")] == "__FIELD_PARENT_":
				return ParentField(k[len("__FIELD_PARENT_"):])
			}
		}
	}
	return Lit(raw)
}
