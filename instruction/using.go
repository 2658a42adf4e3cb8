package instruction

import (
	"strings"

	"github.com/ronincore/compiler/ir"

	"github.com/ronincore/compiler"
)

// Using splices the presets named in instr.Using into instr and returns the
// merged result (spec §4.3). `links` expands to every link field's default
// preset. Each preset's instructions are deep-cloned and its `{__VALUE}`
// holes substituted with the reference's argument before merging: arrays
// are unioned, maps are shallow-merged (existing key wins), and scalars
// are only filled in when absent.
func Using(ctx *Context, instr *ir.Instructions) (*ir.Instructions, error) {
	if instr == nil || len(instr.Using) == 0 {
		return instr, nil
	}

	refs := expandUsing(ctx, instr.Using)
	result := cloneInstructionsShallow(instr)
	result.Using = nil

	for _, ref := range refs {
		preset, ok := ctx.Model.Presets[ref.Name]
		if !ok {
			return nil, ronincore.NewPresetNotFoundError(ctx.Model.Slug, ref.Name)
		}
		spliced := substituteInstructions(preset.Instructions, ref.Arg)
		mergeInstructions(result, spliced)
	}
	return result, nil
}

func expandUsing(ctx *Context, refs []ir.PresetRef) []ir.PresetRef {
	var out []ir.PresetRef
	for _, ref := range refs {
		if ref.Name != "links" {
			out = append(out, ref)
			continue
		}
		for _, f := range ctx.Model.Fields {
			if f.Type != ir.TypeLink {
				continue
			}
			out = append(out, ir.PresetRef{Name: lastSegment(f.Slug), Arg: ref.Arg})
		}
	}
	return out
}

func lastSegment(slug string) string {
	if i := strings.LastIndex(slug, "."); i >= 0 {
		return slug[i+1:]
	}
	return slug
}

func cloneInstructionsShallow(instr *ir.Instructions) *ir.Instructions {
	out := &ir.Instructions{
		With:      instr.With,
		LimitedTo: instr.LimitedTo,
		Before:    instr.Before,
		After:     instr.After,
		From:      instr.From,
	}
	out.OrderedBy = append(out.OrderedBy, instr.OrderedBy...)
	out.Including = append(out.Including, instr.Including...)
	out.Selecting = append(out.Selecting, instr.Selecting...)
	out.Columns = append(out.Columns, instr.Columns...)
	if instr.To != nil {
		out.To = make(map[string]ir.Value, len(instr.To))
		for k, v := range instr.To {
			out.To[k] = v
		}
	}
	if instr.On != nil {
		out.On = make(map[string]*ir.Instructions, len(instr.On))
		for k, v := range instr.On {
			out.On[k] = v
		}
	}
	return out
}

func substituteValue(v ir.Value, arg ir.Value) ir.Value {
	switch v.Kind {
	case ir.KindValueHole:
		return arg
	case ir.KindSub:
		if v.Sub == nil {
			return v
		}
		return ir.SubQuery(substituteQuery(v.Sub, arg))
	default:
		return v
	}
}

func substituteCondition(c *ir.Condition, arg ir.Value) *ir.Condition {
	if c == nil {
		return nil
	}
	if c.IsLeaf() {
		return &ir.Condition{Field: c.Field, Op: c.Op, Value: substituteValue(c.Value, arg)}
	}
	nc := &ir.Condition{}
	for _, child := range c.And {
		nc.And = append(nc.And, substituteCondition(child, arg))
	}
	for _, child := range c.Or {
		nc.Or = append(nc.Or, substituteCondition(child, arg))
	}
	return nc
}

func substituteInstructions(instr *ir.Instructions, arg ir.Value) *ir.Instructions {
	if instr == nil {
		return nil
	}
	out := &ir.Instructions{
		With:      substituteCondition(instr.With, arg),
		LimitedTo: instr.LimitedTo,
		Before:    instr.Before,
		After:     instr.After,
	}
	out.OrderedBy = append(out.OrderedBy, instr.OrderedBy...)
	out.Selecting = append(out.Selecting, instr.Selecting...)
	for _, inc := range instr.Including {
		out.Including = append(out.Including, ir.IncludeEntry{
			MountPath: inc.MountPath,
			Query:     substituteQuery(inc.Query, arg),
		})
	}
	for _, u := range instr.Using {
		out.Using = append(out.Using, ir.PresetRef{Name: u.Name, Arg: substituteValue(u.Arg, arg)})
	}
	if instr.To != nil {
		out.To = make(map[string]ir.Value, len(instr.To))
		for k, v := range instr.To {
			out.To[k] = substituteValue(v, arg)
		}
	}
	if instr.On != nil {
		out.On = make(map[string]*ir.Instructions, len(instr.On))
		for k, v := range instr.On {
			out.On[k] = substituteInstructions(v, arg)
		}
	}
	return out
}

func substituteQuery(q *ir.Query, arg ir.Value) *ir.Query {
	if q == nil {
		return nil
	}
	nq := &ir.Query{Kind: q.Kind, Target: q.Target, DDL: q.DDL, Raw: q.Raw}
	nq.Instructions = substituteInstructions(q.Instructions, arg)
	for _, s := range q.Statements {
		nq.Statements = append(nq.Statements, substituteQuery(s, arg))
	}
	return nq
}

// mergeInstructions folds src into dst in place per the preset algebra:
// arrays union, maps shallow-merge with dst winning, scalars fill in only
// when dst's is absent. `with` trees combine via AND, since a spliced
// preset's filter narrows rather than replaces the caller's.
func mergeInstructions(dst, src *ir.Instructions) {
	if src == nil {
		return
	}
	if src.With != nil {
		if dst.With == nil {
			dst.With = src.With
		} else {
			dst.With = ir.All(dst.With, src.With)
		}
	}
	dst.OrderedBy = unionOrderTerms(dst.OrderedBy, src.OrderedBy)
	if dst.LimitedTo == nil {
		dst.LimitedTo = src.LimitedTo
	}
	if dst.Before == nil {
		dst.Before = src.Before
	}
	if dst.After == nil {
		dst.After = src.After
	}
	dst.Including = unionIncludes(dst.Including, src.Including)
	dst.Selecting = unionStrings(dst.Selecting, src.Selecting)
	if len(src.To) > 0 {
		if dst.To == nil {
			dst.To = map[string]ir.Value{}
		}
		for k, v := range src.To {
			if _, exists := dst.To[k]; !exists {
				dst.To[k] = v
			}
		}
	}
	if len(src.On) > 0 {
		if dst.On == nil {
			dst.On = map[string]*ir.Instructions{}
		}
		for k, v := range src.On {
			if existing, exists := dst.On[k]; exists {
				mergeInstructions(existing, v)
			} else {
				dst.On[k] = v
			}
		}
	}
}

func unionOrderTerms(dst, src []ir.OrderTerm) []ir.OrderTerm {
	seen := map[string]bool{}
	for _, t := range dst {
		seen[t.Field+"|"+t.Expression] = true
	}
	for _, t := range src {
		key := t.Field + "|" + t.Expression
		if !seen[key] {
			dst = append(dst, t)
			seen[key] = true
		}
	}
	return dst
}

func unionStrings(dst, src []string) []string {
	seen := map[string]bool{}
	for _, s := range dst {
		seen[s] = true
	}
	for _, s := range src {
		if !seen[s] {
			dst = append(dst, s)
			seen[s] = true
		}
	}
	return dst
}

func unionIncludes(dst, src []ir.IncludeEntry) []ir.IncludeEntry {
	seen := map[string]bool{}
	for _, e := range dst {
		seen[e.MountPath] = true
	}
	for _, e := range src {
		if !seen[e.MountPath] {
			dst = append(dst, e)
			seen[e.MountPath] = true
		}
	}
	return dst
}
