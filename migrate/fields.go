package migrate

import (
	"github.com/ronincore/compiler/ir"
	"github.com/ronincore/compiler/model"
)

// fieldRename pairs an existing field with a defined field sharing every
// attribute but its slug — the only field change cheap enough to apply in
// place (spec §4.6 step 5).
type fieldRename struct {
	From, To *model.Field
}

// diffCommonModel emits the per-model-meta, per-field and index queries
// for a model present (directly or via an applied rename) on both sides
// (spec §4.6 steps 4, 5, 6, 7). currentSlug is the slug the model is known
// by after any model-level rename already queued.
func diffCommonModel(currentSlug string, existingModel, definedModel *model.Model) ([]*ir.Query, error) {
	renames, created, dropped, adjustable := diffFields(existingModel, definedModel)
	needsTempTable := existingModel.IDPrefix != definedModel.IDPrefix || len(adjustable) > 0

	var queries []*ir.Query

	if needsTempTable {
		tempQueries, err := rebuildViaTempTable(currentSlug, existingModel, definedModel, renames)
		if err != nil {
			return nil, err
		}
		queries = append(queries, tempQueries...)
	} else {
		for _, r := range renames {
			queries = append(queries, &ir.Query{
				Kind: ir.Alter, Target: currentSlug,
				DDL: &ir.DDL{Target: ir.DDLTargetField, Action: ir.DDLActionAlter, FieldSlug: r.From.Slug, FieldPatch: &ir.FieldPatch{Slug: strPtr(r.To.Slug)}},
			})
		}
		for _, f := range created {
			queries = append(queries, &ir.Query{
				Kind: ir.Alter, Target: currentSlug,
				DDL: &ir.DDL{Target: ir.DDLTargetField, Action: ir.DDLActionCreate, Field: fieldDef(f)},
			})
		}
		for _, f := range dropped {
			queries = append(queries, &ir.Query{
				Kind: ir.Alter, Target: currentSlug,
				DDL: &ir.DDL{Target: ir.DDLTargetField, Action: ir.DDLActionDrop, FieldSlug: f.Slug},
			})
		}
		if existingModel.Name != definedModel.Name {
			queries = append(queries, &ir.Query{
				Kind: ir.Alter, Target: currentSlug,
				DDL: &ir.DDL{Target: ir.DDLTargetModel, Action: ir.DDLActionAlter, ModelPatch: &ir.ModelPatch{Name: strPtr(definedModel.Name)}},
			})
		}
	}

	indexQueries := diffIndexes(currentSlug, existingModel, definedModel, needsTempTable)
	queries = append(queries, indexQueries...)

	return queries, nil
}

// diffFields matches existing and defined user fields by slug, then pairs
// any leftovers sharing an attribute tuple as renames; everything else is
// a plain create/drop, or — for a same-slug attribute change — adjustable,
// which forces the whole-model temp-table rewrite.
func diffFields(existingModel, definedModel *model.Model) (renames []fieldRename, created, dropped, adjustable []*model.Field) {
	existingOnly := map[string]*model.Field{}
	definedOnly := map[string]*model.Field{}

	for _, f := range existingModel.UserFields() {
		if d, ok := definedModel.Fields[f.Slug]; ok && !d.System {
			if !fieldAttrsEqual(f, d) {
				adjustable = append(adjustable, f)
			}
			continue
		}
		existingOnly[f.Slug] = f
	}
	for _, f := range definedModel.UserFields() {
		if _, ok := existingModel.Fields[f.Slug]; ok {
			continue
		}
		definedOnly[f.Slug] = f
	}

	for slug, ef := range existingOnly {
		var match *model.Field
		for _, df := range definedOnly {
			if fieldAttrsEqual(ef, df) {
				match = df
				break
			}
		}
		if match != nil {
			renames = append(renames, fieldRename{From: ef, To: match})
			delete(existingOnly, slug)
			delete(definedOnly, match.Slug)
		}
	}
	for _, f := range existingOnly {
		dropped = append(dropped, f)
	}
	for _, f := range definedOnly {
		created = append(created, f)
	}
	return renames, created, dropped, adjustable
}

// fieldAttrsEqual compares every attribute but Slug.
func fieldAttrsEqual(a, b *model.Field) bool {
	return jsonEqual(withoutSlug(fieldDef(a)), withoutSlug(fieldDef(b)))
}

func fieldDef(f *model.Field) *ir.FieldDef {
	return &ir.FieldDef{
		Slug: f.Slug, Type: f.Type, Required: f.Required, Unique: f.Unique,
		Increment: f.Increment, Default: f.Default,
		Target: f.Target, Kind: f.Kind, Actions: f.Actions,
	}
}

type comparableFieldDef ir.FieldDef

func withoutSlug(f *ir.FieldDef) comparableFieldDef {
	c := comparableFieldDef(*f)
	c.Slug = ""
	return c
}

// rebuildViaTempTable applies the 5-step temp-table rewrite (spec §4.6
// step 6): create a shadow table in the defined shape, copy surviving
// columns across (old slug -> new slug, via renames) as a modelled
// `add.RONIN_TEMP_<slug>.with(() => get.<slug>(...))` query, drop the live
// table, then rename the shadow table into place.
func rebuildViaTempTable(currentSlug string, existingModel, definedModel *model.Model, renames []fieldRename) ([]*ir.Query, error) {
	tempSlug := "RONIN_TEMP_" + definedModel.Slug

	tempDef := definedModel.ToDef()
	tempDef.Slug = tempSlug
	tempDef.PluralSlug = "RONIN_TEMP_" + definedModel.PluralSlug
	tempDef.Table = ""  // re-derived by Normalize from the temp slug
	tempDef.ID = ""

	renameBySlug := make(map[string]string, len(renames))
	for _, r := range renames {
		renameBySlug[r.To.Slug] = r.From.Slug
	}

	// A default projection (instruction.Selecting) always prepends these
	// five system columns ahead of whatever's requested explicitly, and
	// they're never renamed, so the copy's destination list must lead with
	// them too to stay aligned with the sub-query's actual column order.
	destCols := []string{model.FieldID, model.FieldCreatedAt, model.FieldCreatedBy, model.FieldUpdatedAt, model.FieldUpdatedBy}
	var srcCols []string

	for _, newField := range definedModel.UserFields() {
		oldSlug := newField.Slug
		if from, ok := renameBySlug[newField.Slug]; ok {
			oldSlug = from
		}
		if _, existedBefore := existingModel.Fields[oldSlug]; !existedBefore {
			continue // newly introduced column: left to its DEFAULT
		}
		destCols = append(destCols, newField.Slug)
		srcCols = append(srcCols, oldSlug)
	}

	selecting := srcCols
	if len(selecting) == 0 {
		// An empty Selecting means "default to every user field" (spec
		// §4.4); when no user field survives the rewrite, an exclude-all
		// sentinel is needed instead so the sub-query projects only the
		// system columns destCols actually expects.
		selecting = []string{"!" + model.FieldID}
	}

	copyQuery := &ir.Query{
		Kind:   ir.Add,
		Target: tempSlug,
		Instructions: &ir.Instructions{
			From: &ir.Query{
				Kind:   ir.Get,
				Target: currentSlug,
				Instructions: &ir.Instructions{Selecting: selecting},
			},
			Columns:   destCols,
			Selecting: []string{model.FieldID},
		},
	}

	queries := []*ir.Query{
		{Kind: ir.Create, DDL: &ir.DDL{Target: ir.DDLTargetModel, Model: &tempDef}},
		copyQuery,
		{Kind: ir.Drop, Target: currentSlug},
		{Kind: ir.Alter, Target: tempSlug, DDL: &ir.DDL{Target: ir.DDLTargetModel, Action: ir.DDLActionAlter, ModelPatch: &ir.ModelPatch{
			Slug:       strPtr(definedModel.Slug),
			Name:       strPtr(definedModel.Name),
			PluralName: strPtr(definedModel.PluralName),
			PluralSlug: strPtr(definedModel.PluralSlug),
		}}},
	}
	return queries, nil
}
