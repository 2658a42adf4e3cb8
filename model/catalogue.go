package model

import (
	"fmt"
	"strings"

	"github.com/ronincore/compiler/ir"

	"github.com/ronincore/compiler"
)

// Catalogue is the normalised, immutable set of models an application
// works with. It is safe for concurrent read-only use once constructed.
type Catalogue struct {
	bySlug       map[string]*Model
	byPluralSlug map[string]*Model
	order        []string
}

// New normalises every definition and returns the resulting Catalogue,
// installing system fields, identifiers, default presets for links, and
// associative models for many-links (spec §4.1).
func New(defs []ir.ModelDef) (*Catalogue, error) {
	cat := &Catalogue{
		bySlug:       map[string]*Model{},
		byPluralSlug: map[string]*Model{},
	}

	for _, def := range defs {
		m := Normalize(def, false)
		if m.Slug == "" {
			return nil, fmt.Errorf("model: slug must not be empty")
		}
		cat.bySlug[m.Slug] = m
		cat.byPluralSlug[m.PluralSlug] = m
		cat.order = append(cat.order, m.Slug)
	}

	// Many-link fields each induce an associative model of their own.
	var associative []*Model
	for _, slug := range cat.order {
		m := cat.bySlug[slug]
		for _, f := range m.Fields {
			if f.Type != ir.TypeLink || f.Kind != ir.LinkMany {
				continue
			}
			assoc := associativeModel(m, f)
			cat.bySlug[assoc.Slug] = assoc
			cat.byPluralSlug[assoc.PluralSlug] = assoc
			associative = append(associative, assoc)
		}
	}
	for _, assoc := range associative {
		cat.order = append(cat.order, assoc.Slug)
	}

	// Install default presets for every link field, and the matching
	// back-reference preset on the link's target model, without
	// overwriting a user-defined preset of the same key.
	for _, slug := range cat.order {
		m := cat.bySlug[slug]
		for _, f := range m.Fields {
			if f.Type != ir.TypeLink {
				continue
			}
			installLinkPresets(cat, m, f)
		}
	}

	return cat, nil
}

func associativeModel(owner *Model, link *Field) *Model {
	slug := owner.Slug + "_" + baseName(link.Slug)
	m := Normalize(ir.ModelDef{
		Slug: slug,
		Fields: []ir.FieldDef{
			{Slug: "source", Type: ir.TypeLink, Target: owner.Slug, Kind: ir.LinkOne, Required: true},
			{Slug: "target", Type: ir.TypeLink, Target: link.Target, Kind: ir.LinkOne, Required: true},
		},
		System: ir.SystemInfo{Model: true, AssociationSlug: link.Slug},
	}, false)
	return m
}

// installLinkPresets installs the default `get target where id =
// parent.<field>` preset for a one-link (or the associative join for a
// many-link), and the corresponding back-reference preset on the target
// model, unless the model already defines a preset under that key.
func installLinkPresets(cat *Catalogue, owner *Model, link *Field) {
	target, ok := cat.bySlug[link.Target]
	if !ok {
		target, ok = cat.byPluralSlug[link.Target]
		if !ok {
			return
		}
	}

	fieldName := baseName(link.Slug)
	forwardKey := fieldName

	if link.Kind == ir.LinkOne {
		if _, exists := owner.Presets[forwardKey]; !exists {
			owner.Presets[forwardKey] = &Preset{
				Slug: forwardKey,
				Instructions: &ir.Instructions{
					Including: []ir.IncludeEntry{{
						MountPath: fieldName,
						Query: &ir.Query{
							Kind:   ir.Get,
							Target: target.Slug,
							Instructions: &ir.Instructions{
								With: ir.Leaf(FieldID, ir.OpEQ, ir.ParentField(link.Slug)),
							},
						},
					}},
				},
			}
		}
		backKey := owner.PluralSlug
		if _, exists := target.Presets[backKey]; !exists {
			target.Presets[backKey] = &Preset{
				Slug: backKey,
				Instructions: &ir.Instructions{
					Including: []ir.IncludeEntry{{
						MountPath: backKey,
						Query: &ir.Query{
							Kind:   ir.Get,
							Target: owner.PluralSlug,
							Instructions: &ir.Instructions{
								With: ir.Leaf(link.Slug, ir.OpEQ, ir.ParentField(FieldID)),
							},
						},
					}},
				},
			}
		}
		return
	}

	// Many-link: join through the associative model.
	assocSlug := owner.Slug + "_" + fieldName
	if _, exists := owner.Presets[forwardKey]; !exists {
		owner.Presets[forwardKey] = &Preset{
			Slug: forwardKey,
			Instructions: &ir.Instructions{
				Including: []ir.IncludeEntry{{
					MountPath: fieldName,
					Query: &ir.Query{
						Kind:   ir.Get,
						Target: target.PluralSlug,
						Instructions: &ir.Instructions{
							With: ir.Leaf("id", ir.OpEQ, ir.SubQuery(&ir.Query{
								Kind:   ir.Get,
								Target: assocSlug,
								Instructions: &ir.Instructions{
									Selecting: []string{"target"},
									With:      ir.Leaf("source", ir.OpEQ, ir.ParentField(FieldID)),
								},
							})),
						},
					},
				}},
			},
		}
	}
}

// Get resolves slug as either a model's singular or plural slug. When a
// word is ambiguous (legitimately both some model's singular and another's
// plural), singular resolution wins.
func (c *Catalogue) Get(slug string) (*Model, error) {
	if m, ok := c.bySlug[slug]; ok {
		return m, nil
	}
	if m, ok := c.byPluralSlug[slug]; ok {
		return m, nil
	}
	return nil, ronincore.NewModelNotFoundError(slug)
}

// Resolve resolves a query target to its model and whether the target
// named the singular (true) or plural (false) slug. TargetAll is reported
// as m=nil, all=true.
func (c *Catalogue) Resolve(target string) (m *Model, singular bool, all bool, err error) {
	if target == ir.TargetAll {
		return nil, false, true, nil
	}
	if mm, ok := c.bySlug[target]; ok {
		return mm, true, false, nil
	}
	if mm, ok := c.byPluralSlug[target]; ok {
		return mm, false, false, nil
	}
	return nil, false, false, ronincore.NewModelNotFoundError(target)
}

// Models returns every model in catalogue order (declaration order, then
// associative models in the order their owning link fields were seen).
func (c *Catalogue) Models() []*Model {
	out := make([]*Model, 0, len(c.order))
	for _, slug := range c.order {
		out = append(out, c.bySlug[slug])
	}
	return out
}

// Field resolves a possibly-dotted field path against model, returning the
// declared field and the SQL column selector to use for it (spec §4.1
// Column selector): a top-level field is its own column name; a nested
// `a.b` where `a` is a JSON field becomes `json_extract("a", '$.b')`;
// where `a.b` is itself a declared grouped field it is a literal column
// name.
func (c *Catalogue) Field(m *Model, path string) (*Field, string, error) {
	if f, ok := m.Fields[path]; ok {
		return f, quoteIdent(path), nil
	}
	dot := strings.Index(path, ".")
	if dot < 0 {
		return nil, "", ronincore.NewFieldNotFoundError(m.Slug, path)
	}
	base, rest := path[:dot], path[dot+1:]
	baseField, ok := m.Fields[base]
	if !ok {
		return nil, "", ronincore.NewFieldNotFoundError(m.Slug, path)
	}
	if baseField.Type == ir.TypeJSON {
		return baseField, fmt.Sprintf("json_extract(%s, '$.%s')", quoteIdent(base), rest), nil
	}
	return nil, "", ronincore.NewFieldNotFoundError(m.Slug, path)
}

func quoteIdent(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}
