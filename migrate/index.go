package migrate

import (
	"github.com/ronincore/compiler/ir"
	"github.com/ronincore/compiler/model"
)

// diffIndexes emits the index half of a common model's diff (spec §4.6
// step 7), always last in that model's query sequence. When the model
// just went through a temp-table rebuild the old table (and its indexes)
// is already gone, so every defined index is simply (re)created on the
// freshly-renamed table rather than diffed against the old set.
func diffIndexes(currentSlug string, existingModel, definedModel *model.Model, rebuilt bool) []*ir.Query {
	var queries []*ir.Query

	if rebuilt {
		for _, slug := range sortedIndexSlugs(definedModel) {
			idx := definedModel.Indexes[slug]
			queries = append(queries, &ir.Query{
				Kind: ir.Alter, Target: definedModel.Slug,
				DDL: &ir.DDL{Target: ir.DDLTargetIndex, Action: ir.DDLActionCreate, IndexSlug: slug, Index: &ir.IndexDef{Fields: idx.Fields, Unique: idx.Unique}},
			})
		}
		return queries
	}

	for _, slug := range sortedIndexSlugs(existingModel) {
		definedIdx, ok := definedModel.Indexes[slug]
		existingIdx := existingModel.Indexes[slug]
		if !ok {
			queries = append(queries, &ir.Query{
				Kind: ir.Alter, Target: currentSlug,
				DDL: &ir.DDL{Target: ir.DDLTargetIndex, Action: ir.DDLActionDrop, IndexSlug: slug},
			})
			continue
		}
		if !jsonEqual(ir.IndexDef{Fields: existingIdx.Fields, Unique: existingIdx.Unique}, ir.IndexDef{Fields: definedIdx.Fields, Unique: definedIdx.Unique}) {
			queries = append(queries,
				&ir.Query{Kind: ir.Alter, Target: currentSlug, DDL: &ir.DDL{Target: ir.DDLTargetIndex, Action: ir.DDLActionDrop, IndexSlug: slug}},
				&ir.Query{Kind: ir.Alter, Target: currentSlug, DDL: &ir.DDL{Target: ir.DDLTargetIndex, Action: ir.DDLActionCreate, IndexSlug: slug, Index: &ir.IndexDef{Fields: definedIdx.Fields, Unique: definedIdx.Unique}}},
			)
		}
	}
	for _, slug := range sortedIndexSlugs(definedModel) {
		if _, ok := existingModel.Indexes[slug]; ok {
			continue
		}
		idx := definedModel.Indexes[slug]
		queries = append(queries, &ir.Query{
			Kind: ir.Alter, Target: currentSlug,
			DDL: &ir.DDL{Target: ir.DDLTargetIndex, Action: ir.DDLActionCreate, IndexSlug: slug, Index: &ir.IndexDef{Fields: idx.Fields, Unique: idx.Unique}},
		})
	}
	return queries
}

func sortedIndexSlugs(m *model.Model) []string {
	out := make([]string, 0, len(m.Indexes))
	for slug := range m.Indexes {
		out = append(out, slug)
	}
	sortStrings(out)
	return out
}

func sortStrings(s []string) {
	for i := 1; i < len(s); i++ {
		for j := i; j > 0 && s[j-1] > s[j]; j-- {
			s[j-1], s[j] = s[j], s[j-1]
		}
	}
}
