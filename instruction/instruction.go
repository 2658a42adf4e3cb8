// Package instruction implements the per-instruction SQL fragment
// builders (spec §4.3): with, orderedBy, limitedTo, before/after,
// including, using, selecting, to. Each handler is pure over (catalogue,
// model, parameter sink, instruction payload).
package instruction

import (
	"github.com/ronincore/compiler/model"
	"github.com/ronincore/compiler/value"
)

// Context is the shared environment every handler compiles against.
type Context struct {
	Catalogue  *model.Catalogue
	Model      *model.Model
	Binder     *value.Binder
	CompileSub value.SubCompiler
}
