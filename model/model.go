// Package model implements the model catalogue (spec §4.1): normalising
// user-supplied model definitions, synthesising defaults, installing
// system fields and default presets, and resolving slugs and dotted field
// paths against the normalised set.
package model

import "github.com/ronincore/compiler/ir"

// System field slugs, always present on every normalised model.
const (
	FieldID          = "id"
	FieldCreatedAt   = "ronin.createdAt"
	FieldCreatedBy   = "ronin.createdBy"
	FieldUpdatedAt   = "ronin.updatedAt"
	FieldUpdatedBy   = "ronin.updatedBy"
	FieldLocked      = "ronin.locked"
)

// SystemFieldOrder is the canonical order system fields are projected in.
var SystemFieldOrder = []string{
	FieldID, FieldCreatedAt, FieldCreatedBy, FieldUpdatedAt, FieldUpdatedBy, FieldLocked,
}

// Field is a normalised model field.
type Field struct {
	Slug      string
	Type      ir.FieldType
	Required  bool
	Unique    bool
	Increment bool
	Default   *ir.Value

	Target  string
	Kind    ir.LinkKind
	Actions ir.FieldActions

	// System marks a field installed by normalisation rather than declared
	// by the caller.
	System bool
}

// Index is a normalised model index.
type Index struct {
	Slug   string
	Fields []ir.IndexField
	Unique bool
}

// Preset is a normalised, named instruction bundle.
type Preset struct {
	Slug         string
	Instructions *ir.Instructions
	// UserDefined marks a preset the caller supplied explicitly; default
	// presets installed by normalisation never overwrite one of these.
	UserDefined bool
}

// Identifiers names the fields acting as a model's display-name and slug.
type Identifiers struct {
	Name string
	Slug string
}

// System marks a model that exists purely to associate two others (the
// join table synthesised for a `kind: many` link field).
type System struct {
	Model           bool
	AssociationSlug string
}

// Model is a fully normalised record type.
type Model struct {
	ID          string
	Slug        string
	PluralSlug  string
	Name        string
	PluralName  string
	IDPrefix    string
	Table       string
	Identifiers Identifiers

	Fields      map[string]*Field
	FieldOrder  []string // declaration order, system fields first
	Indexes     map[string]*Index
	Presets     map[string]*Preset
	System      System
}

// UserFields returns the model's non-system fields in declaration order.
func (m *Model) UserFields() []*Field {
	out := make([]*Field, 0, len(m.FieldOrder))
	for _, slug := range m.FieldOrder {
		if f := m.Fields[slug]; f != nil && !f.System {
			out = append(out, f)
		}
	}
	return out
}

// ToDef renders the normalised model back into the raw wire shape, for
// persisting into the `ronin_schema` catalogue row or a migration file.
func (m *Model) ToDef() ir.ModelDef {
	fields := make([]ir.FieldDef, 0, len(m.FieldOrder))
	for _, slug := range m.FieldOrder {
		f := m.Fields[slug]
		fields = append(fields, ir.FieldDef{
			Slug: f.Slug, Type: f.Type, Required: f.Required, Unique: f.Unique,
			Increment: f.Increment, Default: f.Default,
			Target: f.Target, Kind: f.Kind, Actions: f.Actions,
		})
	}
	indexes := make(map[string]ir.IndexDef, len(m.Indexes))
	for slug, idx := range m.Indexes {
		indexes[slug] = ir.IndexDef{Fields: idx.Fields, Unique: idx.Unique}
	}
	presets := make(map[string]ir.PresetDef, len(m.Presets))
	for slug, p := range m.Presets {
		presets[slug] = ir.PresetDef{Instructions: p.Instructions}
	}
	return ir.ModelDef{
		ID: m.ID, Slug: m.Slug, PluralSlug: m.PluralSlug, Name: m.Name, PluralName: m.PluralName,
		IDPrefix: m.IDPrefix, Table: m.Table,
		Identifiers: ir.Identifiers{Name: m.Identifiers.Name, Slug: m.Identifiers.Slug},
		Fields:      fields, Indexes: indexes, Presets: presets,
		System: ir.SystemInfo{Model: m.System.Model, AssociationSlug: m.System.AssociationSlug},
	}
}
