package instruction

import "github.com/ronincore/compiler/ir"
import "github.com/ronincore/compiler/value"

// With renders the `WHERE <composeConditions>` clause, or "" when cond is
// absent.
func With(ctx *Context, cond *ir.Condition) (string, error) {
	if cond == nil {
		return "", nil
	}
	frag, err := value.ComposeConditions(ctx.Catalogue, ctx.Model, cond, ctx.Binder, ctx.CompileSub)
	if err != nil {
		return "", err
	}
	if frag == "" {
		return "", nil
	}
	return "WHERE " + frag, nil
}
