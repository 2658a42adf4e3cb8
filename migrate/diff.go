// Package migrate implements the schema-migration diff engine: comparing
// a defined model set against the existing (live) one and emitting an
// ordered sequence of IR queries that carries the database from one shape
// to the other without data loss, including the temporary-table rewrite
// SQLite needs for column changes it cannot apply in place.
package migrate

import (
	"encoding/json"
	"sort"

	"github.com/ronincore/compiler/ir"
	"github.com/ronincore/compiler/model"
)

// RenameCandidate is a defined/existing model pair the diff engine detected
// by matching field-slug sets; the caller's RenameDecider decides whether
// it is applied as a rename or left as a plain drop+create.
type RenameCandidate struct {
	From *model.Model
	To   *model.Model
}

// RenameDecider resolves one RenameCandidate to an accept/reject decision.
// A nil RenameDecider auto-accepts every candidate.
type RenameDecider func(RenameCandidate) bool

// AutoRename accepts every candidate — the default.
func AutoRename(RenameCandidate) bool { return true }

// NeverRename rejects every candidate, so the model is dropped and
// recreated under its new slug instead of renamed in place.
func NeverRename(RenameCandidate) bool { return false }

// Diff is the result of comparing two model sets.
type Diff struct {
	// Queries is the ordered IR sequence carrying existing to defined.
	Queries []*ir.Query
	// Candidates lists every rename candidate the diff detected, whether
	// or not it was applied, for the caller to audit or re-decide.
	Candidates []RenameCandidate
}

// Compute diffs defined against existing (spec §4.6). decide resolves each
// detected rename candidate; pass nil for AutoRename.
func Compute(defined, existing []ir.ModelDef, decide RenameDecider) (*Diff, error) {
	if decide == nil {
		decide = AutoRename
	}

	definedModels := normalizeAll(defined, false)
	existingModels := normalizeAll(existing, false)

	renames, unmatchedDefined, unmatchedExisting := detectRenames(definedModels, existingModels)

	d := &Diff{Candidates: renames}

	renamed := make(map[string]*model.Model) // existing.Slug -> defined model it was matched to
	for _, cand := range renames {
		if !decide(cand) {
			continue
		}
		d.Queries = append(d.Queries, &ir.Query{
			Kind:   ir.Alter,
			Target: cand.From.Slug,
			DDL:    &ir.DDL{Target: ir.DDLTargetModel, Action: ir.DDLActionAlter, ModelPatch: &ir.ModelPatch{Slug: strPtr(cand.To.Slug)}},
		})
		renamed[cand.From.Slug] = cand.To
	}
	// Candidates rejected by decide fall back to add+drop.
	var adds, drops []*model.Model
	for _, cand := range renames {
		if _, ok := renamed[cand.From.Slug]; !ok {
			adds = append(adds, cand.To)
			drops = append(drops, cand.From)
		}
	}

	// Step 2/3: adds and drops for whatever rename didn't absorb.
	for _, m := range unmatchedDefined {
		adds = append(adds, m)
	}
	for _, m := range unmatchedExisting {
		drops = append(drops, m)
	}

	order, err := topologicalOrder(adds)
	if err != nil {
		return nil, err
	}
	for _, m := range order {
		d.Queries = append(d.Queries, &ir.Query{Kind: ir.Create, DDL: &ir.DDL{Target: ir.DDLTargetModel, Model: defCopy(m.ToDef())}})
	}
	for _, m := range drops {
		d.Queries = append(d.Queries, &ir.Query{Kind: ir.Drop, Target: m.Slug})
	}

	// Step 4/5/6/7: per-model meta, field and index diff for every model
	// common to both sides (matched directly or via an accepted rename).
	for _, existingModel := range existingModels {
		currentSlug := existingModel.Slug
		definedModel := definedModels[existingModel.Slug]
		if definedModel == nil {
			if target, ok := renamed[existingModel.Slug]; ok {
				definedModel = target
				currentSlug = target.Slug
			}
		}
		if definedModel == nil {
			continue // handled by drops above
		}

		queries, err := diffCommonModel(currentSlug, existingModel, definedModel)
		if err != nil {
			return nil, err
		}
		d.Queries = append(d.Queries, queries...)
	}

	return d, nil
}

func normalizeAll(defs []ir.ModelDef, forAlter bool) map[string]*model.Model {
	out := make(map[string]*model.Model, len(defs))
	for _, def := range defs {
		out[def.Slug] = model.Normalize(def, forAlter)
	}
	return out
}

// detectRenames pairs a defined-only model with an existing-only model
// whose non-system field-slug sets are identical (spec §4.6 step 1),
// returning the candidates plus whatever didn't pair up.
func detectRenames(defined, existing map[string]*model.Model) (renames []RenameCandidate, unmatchedDefined, unmatchedExisting []*model.Model) {
	var definedOnly, existingOnly []*model.Model
	for slug, m := range defined {
		if _, ok := existing[slug]; !ok {
			definedOnly = append(definedOnly, m)
		}
	}
	for slug, m := range existing {
		if _, ok := defined[slug]; !ok {
			existingOnly = append(existingOnly, m)
		}
	}
	sortModels(definedOnly)
	sortModels(existingOnly)

	matchedExisting := make(map[string]bool)
	for _, d := range definedOnly {
		var match *model.Model
		for _, e := range existingOnly {
			if matchedExisting[e.Slug] {
				continue
			}
			if fieldSlugSetEqual(d, e) {
				match = e
				break
			}
		}
		if match != nil {
			matchedExisting[match.Slug] = true
			renames = append(renames, RenameCandidate{From: match, To: d})
		} else {
			unmatchedDefined = append(unmatchedDefined, d)
		}
	}
	for _, e := range existingOnly {
		if !matchedExisting[e.Slug] {
			unmatchedExisting = append(unmatchedExisting, e)
		}
	}
	return renames, unmatchedDefined, unmatchedExisting
}

func fieldSlugSetEqual(a, b *model.Model) bool {
	af := userFieldSlugSet(a)
	bf := userFieldSlugSet(b)
	if len(af) != len(bf) {
		return false
	}
	for slug := range af {
		if !bf[slug] {
			return false
		}
	}
	return true
}

func userFieldSlugSet(m *model.Model) map[string]bool {
	out := make(map[string]bool)
	for _, f := range m.UserFields() {
		out[f.Slug] = true
	}
	return out
}

func sortModels(models []*model.Model) {
	sort.Slice(models, func(i, j int) bool { return models[i].Slug < models[j].Slug })
}

func strPtr(s string) *string { return &s }

func defCopy(def ir.ModelDef) *ir.ModelDef { return &def }

// jsonEqual compares two values by their canonical JSON encoding — used
// for the index diff (spec §4.6 step 7), where an IndexDef is either kept
// unchanged or fully replaced.
func jsonEqual(a, b any) bool {
	ab, aerr := json.Marshal(a)
	bb, berr := json.Marshal(b)
	if aerr != nil || berr != nil {
		return false
	}
	return string(ab) == string(bb)
}
