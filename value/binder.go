// Package value implements expression and statement utilities (spec
// §4.2): parameter binding, value serialisation, column selectors and
// condition composition shared by every instruction handler.
package value

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/ronincore/compiler/ir"
	"github.com/ronincore/compiler/model"
)

// Statement is a single compiled SQL statement, ready for the driver.
type Statement struct {
	SQL       string
	Params    []any
	Returning bool
}

// Binder accumulates parameters for one statement and renders each bound
// value either as an explicit 1-based placeholder (`?N`, the default) or,
// when Inline is set, as a serialised SQL literal with no placeholder
// emitted at all (spec §4.2 "Inline vs parameterised").
type Binder struct {
	Params []any
	Inline bool
}

// Bind renders v for inclusion in an SQL fragment. Sub-query and
// value-hole variants are not valid here: sub-queries are compiled by the
// caller into a `(...)` fragment before reaching Bind, and value holes
// must already have been substituted by `using` preset splicing.
func (b *Binder) Bind(v ir.Value, fieldType ir.FieldType) (string, error) {
	switch v.Kind {
	case ir.KindNull:
		return "NULL", nil
	case ir.KindExpression:
		return v.Expression, nil
	case ir.KindLiteral:
		if v.Literal == nil {
			return "NULL", nil
		}
		serialized, err := Serialize(v.Literal, fieldType)
		if err != nil {
			return "", err
		}
		if b.Inline {
			return InlineLiteral(serialized, fieldType), nil
		}
		b.Params = append(b.Params, serialized)
		return "?" + strconv.Itoa(len(b.Params)), nil
	case ir.KindSub:
		return "", fmt.Errorf("value: sub-query must be compiled before binding")
	case ir.KindValueHole:
		return "", fmt.Errorf("value: unsubstituted preset value hole")
	case ir.KindParentField:
		return "", fmt.Errorf("value: unresolved parent field reference %q", v.FieldName)
	default:
		return "", fmt.Errorf("value: unknown value kind %d", v.Kind)
	}
}

// QuoteIdent double-quotes an SQL identifier, escaping embedded quotes.
func QuoteIdent(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}

// ResolveParentField rewrites a ParentField reference into the column
// selector of the named field on the parent model, as required when
// composing join conditions (spec §4.2 Expression marker).
func ResolveParentField(cat *model.Catalogue, parent *model.Model, field string) (string, error) {
	_, selector, err := cat.Field(parent, field)
	if err != nil {
		return "", err
	}
	return selector, nil
}
