package compiler

import (
	"github.com/ronincore/compiler/ir"
	"github.com/ronincore/compiler/value"
)

// compileBatch compiles each inner query independently and concatenates
// their statement/meta lists in order; a batch has no SQL surface of its
// own beyond what its members produce.
func (c *Compiler) compileBatch(q *ir.Query) ([]value.Statement, []StatementMeta, error) {
	var statements []value.Statement
	var metas []StatementMeta
	for _, inner := range q.Statements {
		stmts, innerMetas, err := c.Compile(inner)
		if err != nil {
			return nil, nil, err
		}
		statements = append(statements, stmts...)
		metas = append(metas, innerMetas...)
	}
	return statements, metas, nil
}
