package value

import (
	"fmt"
	"strings"

	"github.com/ronincore/compiler/ir"
	"github.com/ronincore/compiler/model"
)

// SubCompiler compiles a nested IR query (used as a condition value, or as
// an `including` join target) into a bare SELECT statement, appending any
// parameters it binds to the same Binder as its caller.
type SubCompiler func(q *ir.Query) (sql string, err error)

// ComposeConditions renders a `with`-shaped condition tree into a boolean
// SQL expression (spec §4.2); AND/OR nodes are parenthesised, a lone leaf
// is not. Leaf conditions against
// a NULL value render as IS/IS NOT NULL rather than `= ?`. AND nodes join
// children with AND, OR nodes with OR. A ParentField value resolves
// against m itself for a plain top-level `with`; join composition passes
// the outer query's model via ComposeConditionsScoped so `parent.<field>`
// resolves against the enclosing scope instead of the join target.
func ComposeConditions(cat *model.Catalogue, m *model.Model, cond *ir.Condition, b *Binder, compileSub SubCompiler) (string, error) {
	return ComposeConditionsScoped(cat, m, m, cond, b, compileSub)
}

// ComposeConditionsScoped is ComposeConditions with an explicit parent
// scope for ParentField resolution, used when composing a join's `with`
// clause against its target model while `__FIELD_PARENT_x` must still
// resolve against the enclosing query's model.
func ComposeConditionsScoped(cat *model.Catalogue, m, parent *model.Model, cond *ir.Condition, b *Binder, compileSub SubCompiler) (string, error) {
	if cond == nil {
		return "", nil
	}
	if cond.IsLeaf() {
		return composeLeaf(cat, m, parent, cond, b, compileSub)
	}
	if cond.And != nil {
		return composeJoin(cat, m, parent, cond.And, "AND", b, compileSub)
	}
	return composeJoin(cat, m, parent, cond.Or, "OR", b, compileSub)
}

func composeJoin(cat *model.Catalogue, m, parent *model.Model, children []*ir.Condition, op string, b *Binder, compileSub SubCompiler) (string, error) {
	parts := make([]string, 0, len(children))
	for _, c := range children {
		frag, err := ComposeConditionsScoped(cat, m, parent, c, b, compileSub)
		if err != nil {
			return "", err
		}
		if frag != "" {
			parts = append(parts, frag)
		}
	}
	if len(parts) == 0 {
		return "", nil
	}
	if len(parts) == 1 {
		return parts[0], nil
	}
	return "(" + strings.Join(parts, " "+op+" ") + ")", nil
}

func composeLeaf(cat *model.Catalogue, m, parent *model.Model, cond *ir.Condition, b *Binder, compileSub SubCompiler) (string, error) {
	field, selector, err := cat.Field(m, cond.Field)
	if err != nil {
		return "", err
	}

	rendered, isNull, err := renderValue(cat, parent, field.Type, cond.Value, b, compileSub)
	if err != nil {
		return "", err
	}

	op := cond.Op
	if op == "" {
		op = ir.OpEQ
	}

	switch op {
	case ir.OpEQ, ir.OpBeing:
		if isNull {
			return selector + " IS NULL", nil
		}
		return selector + " = " + rendered, nil
	case ir.OpNotBeing:
		if isNull {
			return selector + " IS NOT NULL", nil
		}
		return selector + " != " + rendered, nil
	case ir.OpIsNull:
		return selector + " IS NULL", nil
	case ir.OpStartingWith:
		return fmt.Sprintf("%s LIKE %s", selector, likeValue(rendered, "", "%")), nil
	case ir.OpNotStartingWith:
		return fmt.Sprintf("%s NOT LIKE %s", selector, likeValue(rendered, "", "%")), nil
	case ir.OpEndingWith:
		return fmt.Sprintf("%s LIKE %s", selector, likeValue(rendered, "%", "")), nil
	case ir.OpNotEndingWith:
		return fmt.Sprintf("%s NOT LIKE %s", selector, likeValue(rendered, "%", "")), nil
	case ir.OpContaining:
		return fmt.Sprintf("%s LIKE %s", selector, likeValue(rendered, "%", "%")), nil
	case ir.OpNotContaining:
		return fmt.Sprintf("%s NOT LIKE %s", selector, likeValue(rendered, "%", "%")), nil
	case ir.OpGreaterThan:
		return selector + " > " + rendered, nil
	case ir.OpGreaterOrEqual:
		return selector + " >= " + rendered, nil
	case ir.OpLessThan:
		return selector + " < " + rendered, nil
	case ir.OpLessOrEqual:
		return selector + " <= " + rendered, nil
	default:
		return "", fmt.Errorf("value: unknown condition operator %q", op)
	}
}

// likeValue wraps an already-bound/-inlined value expression with wildcard
// padding. For bound parameters (?N) this produces `'%' || ?N || '%'`
// rather than baking the wildcards into the bound value, so the parameter
// itself stays the caller's literal input.
func likeValue(rendered, prefix, suffix string) string {
	if prefix == "" && suffix == "" {
		return rendered
	}
	var parts []string
	if prefix != "" {
		parts = append(parts, "'"+prefix+"'")
	}
	parts = append(parts, rendered)
	if suffix != "" {
		parts = append(parts, "'"+suffix+"'")
	}
	return strings.Join(parts, " || ")
}

// renderValue binds/inlines/resolves a Value for use on the right-hand
// side of a leaf condition, reporting whether it denotes NULL. parent is
// the scope a ParentField reference resolves against.
func renderValue(cat *model.Catalogue, parent *model.Model, fieldType ir.FieldType, v ir.Value, b *Binder, compileSub SubCompiler) (rendered string, isNull bool, err error) {
	switch v.Kind {
	case ir.KindNull:
		return "NULL", true, nil
	case ir.KindLiteral:
		if v.Literal == nil {
			return "NULL", true, nil
		}
		s, err := b.Bind(v, fieldType)
		return s, false, err
	case ir.KindExpression:
		return v.Expression, false, nil
	case ir.KindParentField:
		selector, err := ResolveParentField(cat, parent, v.FieldName)
		return selector, false, err
	case ir.KindSub:
		if compileSub == nil {
			return "", false, fmt.Errorf("value: sub-query condition with no compiler available")
		}
		sql, err := compileSub(v.Sub)
		if err != nil {
			return "", false, err
		}
		return "(" + sql + " LIMIT 1)", false, nil
	default:
		return "", false, fmt.Errorf("value: unsupported condition value kind %d", v.Kind)
	}
}
