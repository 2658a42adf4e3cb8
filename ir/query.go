package ir

// Kind identifies the single key of a Query's `{kind: payload}` mapping.
type Kind string

const (
	Get    Kind = "get"
	Count  Kind = "count"
	Add    Kind = "add"
	Set    Kind = "set"
	Remove Kind = "remove"
	List   Kind = "list"
	Create Kind = "create"
	Alter  Kind = "alter"
	Drop   Kind = "drop"
	Batch  Kind = "batch"
	SQL    Kind = "sql"
)

// TargetAll is the wildcard target matching every model in the catalogue.
const TargetAll = "all"

// Query is a single IR instruction set: `{kind: {target: instructions}}`.
// Target is either a singular/plural model slug or TargetAll; for `list`
// it names the system collection ("models" or "migrations"); for `batch`
// and `sql` it is unused.
type Query struct {
	Kind   Kind
	Target string

	// Instructions carries the payload for get/count/add/set/remove/list.
	Instructions *Instructions

	// DDL carries the payload for create/alter/drop.
	DDL *DDL

	// Statements carries the inner queries for kind == Batch, in order.
	Statements []*Query

	// Raw carries the payload for kind == SQL.
	Raw *RawSQL
}

// RawSQL is the passthrough payload for the `sql` query kind.
type RawSQL struct {
	Statement string
	Params    []Value
}

// ConditionOp names a leaf comparison operator in a `with` tree.
type ConditionOp string

const (
	OpEQ              ConditionOp = "eq"
	OpIsNull          ConditionOp = "isNull"
	OpBeing           ConditionOp = "being"
	OpNotBeing        ConditionOp = "notBeing"
	OpStartingWith    ConditionOp = "startingWith"
	OpNotStartingWith ConditionOp = "notStartingWith"
	OpEndingWith      ConditionOp = "endingWith"
	OpNotEndingWith   ConditionOp = "notEndingWith"
	OpContaining      ConditionOp = "containing"
	OpNotContaining   ConditionOp = "notContaining"
	OpGreaterThan     ConditionOp = "greaterThan"
	OpGreaterOrEqual  ConditionOp = "greaterOrEqual"
	OpLessThan        ConditionOp = "lessThan"
	OpLessOrEqual     ConditionOp = "lessOrEqual"
)

// Condition is a node in a `with`-shaped boolean tree: either a leaf
// (Field/Op/Value set, And/Or empty) or a combinator (And or Or set,
// holding the children to combine).
type Condition struct {
	Field string
	Op    ConditionOp
	Value Value

	And []*Condition
	Or  []*Condition
}

// Leaf returns a single field/op/value condition.
func Leaf(field string, op ConditionOp, value Value) *Condition {
	return &Condition{Field: field, Op: op, Value: value}
}

// All combines conditions with AND (maps to spec's object-of-conditions form).
func All(conds ...*Condition) *Condition { return &Condition{And: conds} }

// Any combines conditions with OR (maps to spec's array-of-conditions form).
func Any(conds ...*Condition) *Condition { return &Condition{Or: conds} }

// IsLeaf reports whether c is a leaf condition rather than a combinator.
func (c *Condition) IsLeaf() bool { return c != nil && c.And == nil && c.Or == nil }

// OrderTerm is one key of an `orderedBy` chain. Expression, when set,
// carries a raw SQL ordering expression instead of a field path; it is
// wrapped in parentheses by the orderedBy handler.
type OrderTerm struct {
	Field      string
	Expression string
	Descending bool
}

// PresetRef is one entry of a `using` instruction: a preset name plus the
// optional argument substituted for the preset's {__VALUE} holes.
type PresetRef struct {
	Name string
	Arg  Value
}

// IncludeEntry is one entry of an `including` instruction.
type IncludeEntry struct {
	// MountPath is the dotted path under which the joined rows are mounted
	// (defaults to the map key the entry came from).
	MountPath string
	Query     *Query
}

// Instructions is the payload shared by get/count/add/set/remove/list
// queries.
type Instructions struct {
	With      *Condition
	OrderedBy []OrderTerm
	LimitedTo *int
	Before    *string
	After     *string
	Including []IncludeEntry
	Using     []PresetRef
	Selecting []string
	To        map[string]Value

	// From, when set on an `add` query, supplies row data from a sub-query
	// instead of the literal `To` map (`add.slug.with(() => get.other(...))`):
	// the sub-query is compiled as a bare SELECT and used as the INSERT
	// source. Columns names the destination field slugs, in the order of
	// the sub-query's projected columns (the five system columns every
	// projection leads with, then its Selecting list), so a source field
	// can be copied under a different destination slug (a field rename).
	From    *Query
	Columns []string

	// On holds per-model instruction overrides for target == TargetAll,
	// keyed by model slug.
	On map[string]*Instructions
}
