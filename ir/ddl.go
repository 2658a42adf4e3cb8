package ir

// FieldType enumerates the field types a Field descriptor may declare.
type FieldType string

const (
	TypeString  FieldType = "string"
	TypeNumber  FieldType = "number"
	TypeBoolean FieldType = "boolean"
	TypeDate    FieldType = "date"
	TypeJSON    FieldType = "json"
	TypeBlob    FieldType = "blob"
	TypeLink    FieldType = "link"
)

// LinkKind is the cardinality of a link field.
type LinkKind string

const (
	LinkOne  LinkKind = "one"
	LinkMany LinkKind = "many"
)

// FieldActions holds the referential actions of a link field.
type FieldActions struct {
	OnDelete string
	OnUpdate string
}

// FieldDef is the raw, user-supplied shape of a model field, prior to
// catalogue normalisation.
type FieldDef struct {
	Slug     string
	Type     FieldType
	Required bool
	Unique   bool
	Increment bool
	Default  *Value

	// Link-only attributes.
	Target  string
	Kind    LinkKind
	Actions FieldActions
}

// IndexDef is the raw shape of a model index.
type IndexDef struct {
	Fields []IndexField
	Unique bool
}

// IndexField is one column participating in an index, with its direction.
type IndexField struct {
	Slug       string
	Descending bool
}

// PresetDef is a named, parameterised instruction bundle.
type PresetDef struct {
	Instructions *Instructions
}

// Identifiers names the fields that act as a model's display-name and
// URL-slug.
type Identifiers struct {
	Name string
	Slug string
}

// SystemInfo marks a model as an associative (many-link join) table.
type SystemInfo struct {
	Model           bool
	AssociationSlug string
}

// ModelDef is the raw, user-supplied (or previously-normalised and
// round-tripped) shape of a model, as it flows through create/alter DDL
// and catalogue construction.
type ModelDef struct {
	ID          string
	Slug        string
	PluralSlug  string
	Name        string
	PluralName  string
	IDPrefix    string
	Table       string
	Identifiers Identifiers
	// Fields is a slice, not a map, because declaration order is
	// meaningful (spec "Default projections" project fields in the order
	// they were declared) and a Go map cannot carry it.
	Fields  []FieldDef
	Indexes map[string]IndexDef
	Presets map[string]PresetDef
	System  SystemInfo
}

// ModelPatch describes the attributes `alter.model(slug).to({...})` may
// change.
type ModelPatch struct {
	Slug       *string
	Name       *string
	PluralName *string
	PluralSlug *string
}

// FieldPatch describes the attributes `alter.field(from).to({...})` may
// change. Only a slug rename is representable without triggering the
// temp-table rewrite (§4.2 Field lifecycle).
type FieldPatch struct {
	Slug *string
}

// DDLTarget names what a nested alter operation acts on.
type DDLTarget string

const (
	DDLTargetModel DDLTarget = "model"
	DDLTargetField DDLTarget = "field"
	DDLTargetIndex DDLTarget = "index"
)

// DDLAction names the nested alter operation kind.
type DDLAction string

const (
	DDLActionCreate DDLAction = "create"
	DDLActionAlter  DDLAction = "alter"
	DDLActionDrop   DDLAction = "drop"
)

// DDL is the payload of create/alter/drop queries.
//
//   - create.model(def)                          -> Target=model, Model=def
//   - drop.model(slug)                            -> (Query.Target is the slug)
//   - alter.model(slug).to(patch)                 -> Target=model, Action=alter, ModelPatch=patch
//   - alter.model(slug).create.field(def)         -> Target=field, Action=create, Field=def
//   - alter.model(slug).alter.field(from).to(p)   -> Target=field, Action=alter, FieldSlug=from, FieldPatch=p
//   - alter.model(slug).drop.field(slug)          -> Target=field, Action=drop, FieldSlug=slug
//   - alter.model(slug).create.index(def)         -> Target=index, Action=create, Index=def, IndexSlug=name
//   - alter.model(slug).drop.index(slug)          -> Target=index, Action=drop, IndexSlug=slug
type DDL struct {
	Target DDLTarget
	Action DDLAction

	Model      *ModelDef
	ModelPatch *ModelPatch

	Field      *FieldDef
	FieldSlug  string
	FieldPatch *FieldPatch

	Index     *IndexDef
	IndexSlug string
}
