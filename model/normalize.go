package model

import (
	"strings"

	"github.com/ronincore/compiler/ir"
)

// Normalize applies the spec §4.1 normalisation pipeline to a single raw
// model definition. It does not install link presets or synthesise
// associative models — that happens once the whole catalogue is known
// (see New), since presets reference other models by slug.
func Normalize(def ir.ModelDef, forAlter bool) *Model {
	m := &Model{
		ID:         def.ID,
		Slug:       def.Slug,
		Table:      def.Table,
		IDPrefix:   def.IDPrefix,
		PluralSlug: def.PluralSlug,
		Name:       def.Name,
		PluralName: def.PluralName,
		Fields:     map[string]*Field{},
		Indexes:    map[string]*Index{},
		Presets:    map[string]*Preset{},
		System: System{
			Model:           def.System.Model,
			AssociationSlug: def.System.AssociationSlug,
		},
	}
	if m.ID == "" {
		m.ID = NewModelID()
	}

	// Step 2: derive attributes from bases, regenerating the ones marked
	// "must regenerate" whenever this is an alter-time renormalisation.
	if m.PluralSlug == "" || forAlter {
		m.PluralSlug = pluralize(m.Slug)
	}
	if m.Name == "" {
		m.Name = deCamelise(m.Slug)
	}
	if m.PluralName == "" {
		m.PluralName = deCamelise(m.PluralSlug)
	}
	if m.IDPrefix == "" {
		m.IDPrefix = idPrefix(m.Slug)
	}
	if m.Table == "" || forAlter {
		m.Table = snakeCase(m.PluralSlug)
	}

	// def.Fields is a slice (not a map) precisely so this loop can trust its
	// order as the caller's declaration order, rather than re-deriving one.
	var declOrder []string
	for _, fd := range def.Fields {
		f := &Field{
			Slug: fd.Slug, Type: fd.Type, Required: fd.Required, Unique: fd.Unique,
			Increment: fd.Increment, Default: fd.Default,
			Target: fd.Target, Kind: fd.Kind, Actions: fd.Actions,
		}
		// A definition rendered by ToDef already lists the system fields;
		// they keep their system status and their place at the front.
		for _, sys := range SystemFieldOrder {
			if fd.Slug == sys {
				f.System = true
			}
		}
		if !f.System {
			declOrder = append(declOrder, fd.Slug)
		}
		m.Fields[fd.Slug] = f
	}

	for slug, idxDef := range def.Indexes {
		m.Indexes[slug] = &Index{Slug: slug, Fields: idxDef.Fields, Unique: idxDef.Unique}
	}
	for slug, pd := range def.Presets {
		m.Presets[slug] = &Preset{Slug: slug, Instructions: pd.Instructions, UserDefined: true}
	}

	// Step 3: install the six system fields if there are any user fields
	// and they aren't already present. System fields always come first.
	if len(declOrder) > 0 {
		installSystemFields(m)
	}
	m.FieldOrder = append(systemFieldsPresent(m), declOrder...)

	// Step 4: pick identifiers.name / identifiers.slug by convention.
	m.Identifiers = resolveIdentifiers(m)

	return m
}

func systemFieldsPresent(m *Model) []string {
	var out []string
	for _, slug := range SystemFieldOrder {
		if _, ok := m.Fields[slug]; ok {
			out = append(out, slug)
		}
	}
	return out
}

func installSystemFields(m *Model) {
	defaults := map[string]*Field{
		FieldID:        {Slug: FieldID, Type: ir.TypeString, Unique: true, Required: true, System: true},
		FieldCreatedAt: {Slug: FieldCreatedAt, Type: ir.TypeDate, Required: true, System: true},
		FieldCreatedBy: {Slug: FieldCreatedBy, Type: ir.TypeString, System: true},
		FieldUpdatedAt: {Slug: FieldUpdatedAt, Type: ir.TypeDate, Required: true, System: true},
		FieldUpdatedBy: {Slug: FieldUpdatedBy, Type: ir.TypeString, System: true},
		FieldLocked:    {Slug: FieldLocked, Type: ir.TypeBoolean, System: true},
	}
	for slug, f := range defaults {
		if _, exists := m.Fields[slug]; !exists {
			m.Fields[slug] = f
		}
	}
}

func resolveIdentifiers(m *Model) Identifiers {
	ids := Identifiers{Name: FieldID, Slug: FieldID}
	for _, slug := range m.FieldOrder {
		f := m.Fields[slug]
		if f == nil || f.System {
			continue
		}
		if ids.Name == FieldID && f.Type == ir.TypeString && f.Required && baseName(f.Slug) == "name" {
			ids.Name = f.Slug
		}
		if ids.Slug == FieldID && f.Type == ir.TypeString && f.Required && f.Unique &&
			(baseName(f.Slug) == "slug" || baseName(f.Slug) == "handle") {
			ids.Slug = f.Slug
		}
	}
	return ids
}

func baseName(fieldSlug string) string {
	if i := strings.LastIndex(fieldSlug, "."); i >= 0 {
		return fieldSlug[i+1:]
	}
	return fieldSlug
}
