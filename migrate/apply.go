package migrate

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/ronincore/compiler/compiler"
	"github.com/ronincore/compiler/ir"
	"github.com/ronincore/compiler/model"
)

// Apply executes queries (typically a Diff's Queries) against db one at a
// time, rebuilding the compiler's catalogue between steps: a temp-table
// rewrite's final rename depends on the temp model just created by an
// earlier query in the same sequence, which a catalogue compiled once up
// front would never see (spec §5 assumes a Transaction's statement list is
// static; a migration sequence mutates its own compile-time catalogue as
// it runs, so it can't reuse Transaction as-is).
func Apply(ctx context.Context, db *sql.DB, defined []ir.ModelDef, queries []*ir.Query) error {
	models := defined
	for i, q := range queries {
		cat, err := model.New(models)
		if err != nil {
			return fmt.Errorf("migrate: rebuild catalogue before query %d: %w", i, err)
		}
		stmts, _, err := compiler.New(cat).Compile(q)
		if err != nil {
			return fmt.Errorf("migrate: compile query %d: %w", i, err)
		}
		for _, stmt := range stmts {
			if _, err := db.ExecContext(ctx, stmt.SQL, stmt.Params...); err != nil {
				return fmt.Errorf("migrate: apply query %d: %w", i, err)
			}
		}
		models = applyToModelSet(models, q)
	}
	return nil
}

// applyToModelSet mirrors a single DDL query's effect on the defined-model
// list, so the next iteration's catalogue reflects it without re-reading
// the live schema back from the database.
func applyToModelSet(models []ir.ModelDef, q *ir.Query) []ir.ModelDef {
	switch q.Kind {
	case ir.Create:
		if q.DDL == nil || q.DDL.Model == nil {
			return models
		}
		return append(models, *q.DDL.Model)
	case ir.Drop:
		return removeModelDef(models, q.Target)
	case ir.Alter:
		return applyAlter(models, q)
	default:
		return models
	}
}

func applyAlter(models []ir.ModelDef, q *ir.Query) []ir.ModelDef {
	if q.DDL == nil {
		return models
	}
	idx := indexOfModelDef(models, q.Target)
	if idx < 0 {
		return models
	}
	def := models[idx]

	switch q.DDL.Target {
	case ir.DDLTargetModel:
		patch := q.DDL.ModelPatch
		if patch == nil {
			return models
		}
		if patch.Slug != nil {
			def.Slug = *patch.Slug
		}
		if patch.Name != nil {
			def.Name = *patch.Name
		}
		if patch.PluralName != nil {
			def.PluralName = *patch.PluralName
		}
		if patch.PluralSlug != nil {
			def.PluralSlug = *patch.PluralSlug
		}
	case ir.DDLTargetField:
		switch q.DDL.Action {
		case ir.DDLActionCreate:
			if q.DDL.Field != nil {
				def.Fields = append(def.Fields, *q.DDL.Field)
			}
		case ir.DDLActionDrop:
			def.Fields = removeFieldDef(def.Fields, q.DDL.FieldSlug)
		case ir.DDLActionAlter:
			if i := indexOfFieldDef(def.Fields, q.DDL.FieldSlug); i >= 0 && q.DDL.FieldPatch != nil && q.DDL.FieldPatch.Slug != nil {
				def.Fields[i].Slug = *q.DDL.FieldPatch.Slug
			}
		}
	case ir.DDLTargetIndex:
		if def.Indexes == nil {
			def.Indexes = map[string]ir.IndexDef{}
		}
		switch q.DDL.Action {
		case ir.DDLActionCreate:
			if q.DDL.Index != nil {
				def.Indexes[q.DDL.IndexSlug] = *q.DDL.Index
			}
		case ir.DDLActionDrop:
			delete(def.Indexes, q.DDL.IndexSlug)
		}
	}

	models[idx] = def
	return models
}

func indexOfModelDef(models []ir.ModelDef, slug string) int {
	for i, m := range models {
		if m.Slug == slug {
			return i
		}
	}
	return -1
}

func removeModelDef(models []ir.ModelDef, slug string) []ir.ModelDef {
	out := make([]ir.ModelDef, 0, len(models))
	for _, m := range models {
		if m.Slug != slug {
			out = append(out, m)
		}
	}
	return out
}

func indexOfFieldDef(fields []ir.FieldDef, slug string) int {
	for i, f := range fields {
		if f.Slug == slug {
			return i
		}
	}
	return -1
}

func removeFieldDef(fields []ir.FieldDef, slug string) []ir.FieldDef {
	out := make([]ir.FieldDef, 0, len(fields))
	for _, f := range fields {
		if f.Slug != slug {
			out = append(out, f)
		}
	}
	return out
}
