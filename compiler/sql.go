package compiler

import (
	"fmt"
	"strings"

	"github.com/ronincore/compiler/ir"
	"github.com/ronincore/compiler/value"
)

// compileRaw passes a `sql` query's statement through unchanged, binding
// each of its Params in order so inline mode still renders literals.
func (c *Compiler) compileRaw(q *ir.Query) ([]value.Statement, []StatementMeta, error) {
	if q.Raw == nil {
		return nil, nil, fmt.Errorf("compiler: sql query requires a raw statement")
	}

	if !c.inlineParams {
		params := make([]any, len(q.Raw.Params))
		for i, v := range q.Raw.Params {
			if v.Kind != ir.KindLiteral {
				return nil, nil, fmt.Errorf("compiler: sql query params must be literals")
			}
			params[i] = v.Literal
		}
		return []value.Statement{{SQL: q.Raw.Statement, Params: params, Returning: true}}, []StatementMeta{{Kind: ir.SQL}}, nil
	}

	binder := c.newBinder()
	sql := q.Raw.Statement
	for _, v := range q.Raw.Params {
		placeholder, err := binder.Bind(v, ir.TypeString)
		if err != nil {
			return nil, nil, err
		}
		sql = strings.Replace(sql, "?", placeholder, 1)
	}
	return []value.Statement{{SQL: sql, Returning: true}}, []StatementMeta{{Kind: ir.SQL}}, nil
}
