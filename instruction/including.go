package instruction

import (
	"sort"

	"github.com/ronincore/compiler/ir"
	"github.com/ronincore/compiler/model"
	"github.com/ronincore/compiler/value"
)

// JoinClause is one rendered join: the SQL fragment to append to the FROM
// clause, and the mounting path result rows should be folded under at
// inflation time.
type JoinClause struct {
	SQL       string
	MountPath string
	Alias     string
	Singular  bool

	// Columns are the join target's own projected columns (its `selecting`
	// instruction resolved against the target model), for the caller to
	// fold into the outer SELECT list aliased under MountPath.
	Columns []Column

	// Target is the join's own model, for a caller that needs to resolve a
	// mounted column's declared field type during result inflation.
	Target *model.Model
}

// Including renders the join chain for an `including` instruction (spec
// §4.3). Entries are processed in mounting-path order for deterministic
// output. requiresRootGuard is true when rootSingular is set and any join
// can multiply root rows. The compiler's select builder ignores this flag:
// it does not wrap the root query in a `LIMIT 1` sub-select.
func Including(ctx *Context, entries []ir.IncludeEntry, rootSingular bool) (clauses []JoinClause, requiresRootGuard bool, err error) {
	sorted := make([]ir.IncludeEntry, len(entries))
	copy(sorted, entries)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].MountPath < sorted[j].MountPath })

	for _, entry := range sorted {
		clause, multiplies, buildErr := buildJoin(ctx, entry)
		if buildErr != nil {
			return nil, false, buildErr
		}
		clauses = append(clauses, clause)
		if multiplies {
			requiresRootGuard = rootSingular
		}
	}
	return clauses, requiresRootGuard, nil
}

func buildJoin(ctx *Context, entry ir.IncludeEntry) (JoinClause, bool, error) {
	sub := entry.Query
	alias := "including_" + entry.MountPath
	singular := sub.Kind == ir.Get && sub.Instructions != nil && isSingularTarget(ctx, sub.Target)

	needsSubSelect := sub.Instructions != nil && (sub.Instructions.LimitedTo != nil || len(sub.Instructions.OrderedBy) > 0)

	target, _, _, err := ctx.Catalogue.Resolve(sub.Target)
	if err != nil {
		return JoinClause{}, false, err
	}

	var from string
	if needsSubSelect {
		selectSQL, compileErr := ctx.CompileSub(sub)
		if compileErr != nil {
			return JoinClause{}, false, compileErr
		}
		from = "(" + selectSQL + ") AS " + value.QuoteIdent(alias)
	} else {
		from = value.QuoteIdent(target.Table) + " AS " + value.QuoteIdent(alias)
	}

	joinKind := "CROSS JOIN"
	var on string
	if sub.Instructions != nil && sub.Instructions.With != nil {
		joinKind = "LEFT JOIN"
		// The condition's own fields (e.g. the target's `id`) resolve
		// against the target model; any __FIELD_PARENT_x leaf resolves
		// against the outer query's model instead (spec §4.2 Expression
		// marker) — ComposeConditionsScoped keeps the two scopes distinct.
		onFrag, condErr := value.ComposeConditionsScoped(ctx.Catalogue, target, ctx.Model, sub.Instructions.With, ctx.Binder, ctx.CompileSub)
		if condErr != nil {
			return JoinClause{}, false, condErr
		}
		on = " ON " + onFrag
	}

	targetCtx := &Context{Catalogue: ctx.Catalogue, Model: target, Binder: ctx.Binder, CompileSub: ctx.CompileSub}
	var selFields []string
	if sub.Instructions != nil {
		selFields = sub.Instructions.Selecting
	}
	columns, _, colErr := Selecting(targetCtx, selFields)
	if colErr != nil {
		return JoinClause{}, false, colErr
	}

	sql := joinKind + " " + from + on
	return JoinClause{SQL: sql, MountPath: entry.MountPath, Alias: alias, Singular: singular, Columns: columns, Target: target}, !singular, nil
}

func isSingularTarget(ctx *Context, target string) bool {
	_, singular, all, err := ctx.Catalogue.Resolve(target)
	if err != nil || all {
		return false
	}
	return singular
}
