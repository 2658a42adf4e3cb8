package migrate

import (
	"github.com/ronincore/compiler"
	"github.com/ronincore/compiler/ir"
	"github.com/ronincore/compiler/model"
)

// topologicalOrder sorts models so every link field's target model is
// created before the model declaring it, using Tarjan's algorithm to find
// strongly connected components.
// A component with more than one model is a genuine cycle a linear create
// order can't resolve — a model linking to itself is not a cycle, since
// the table exists by the time its own row is inserted.
func topologicalOrder(models []*model.Model) ([]*model.Model, error) {
	byID := make(map[string]*model.Model, len(models))
	for _, m := range models {
		byID[m.Slug] = m
	}

	t := &tarjan{
		byID:  byID,
		index: map[string]int{},
		low:   map[string]int{},
		onStk: map[string]bool{},
	}
	sortModels(models) // deterministic visit order
	for _, m := range models {
		if _, seen := t.index[m.Slug]; !seen {
			if err := t.strongConnect(m.Slug); err != nil {
				return nil, err
			}
		}
	}

	// Tarjan completes a component only after every component it links to,
	// so emitting components in discovery order puts every link target
	// ahead of its referrer.
	var out []*model.Model
	for _, comp := range t.components {
		sortModels(comp)
		out = append(out, comp...)
	}
	return out, nil
}

type tarjan struct {
	byID map[string]*model.Model

	index, low map[string]int
	onStk      map[string]bool
	stack      []string
	counter    int

	components [][]*model.Model
}

func (t *tarjan) strongConnect(slug string) error {
	t.index[slug] = t.counter
	t.low[slug] = t.counter
	t.counter++
	t.stack = append(t.stack, slug)
	t.onStk[slug] = true

	for _, target := range linkTargets(t.byID[slug]) {
		if _, known := t.byID[target]; !known {
			continue // target isn't among the models being ordered (already exists)
		}
		if _, seen := t.index[target]; !seen {
			if err := t.strongConnect(target); err != nil {
				return err
			}
			if t.low[target] < t.low[slug] {
				t.low[slug] = t.low[target]
			}
		} else if t.onStk[target] {
			if t.index[target] < t.low[slug] {
				t.low[slug] = t.index[target]
			}
		}
	}

	if t.low[slug] != t.index[slug] {
		return nil
	}

	var comp []*model.Model
	for {
		n := len(t.stack) - 1
		top := t.stack[n]
		t.stack = t.stack[:n]
		t.onStk[top] = false
		comp = append(comp, t.byID[top])
		if top == slug {
			break
		}
	}
	if len(comp) > 1 {
		slugs := make([]string, len(comp))
		for i, m := range comp {
			slugs[i] = m.Slug
		}
		return ronincore.NewCycleDetectedError(slugs...)
	}
	t.components = append(t.components, comp)
	return nil
}

// linkTargets returns the slugs a model's link fields point to.
func linkTargets(m *model.Model) []string {
	if m == nil {
		return nil
	}
	var out []string
	for _, f := range m.UserFields() {
		if f.Type == ir.TypeLink && f.Target != "" && f.Target != m.Slug {
			out = append(out, f.Target)
		}
	}
	return out
}
