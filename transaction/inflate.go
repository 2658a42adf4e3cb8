package transaction

import (
	"strconv"
	"strings"
	"time"

	"github.com/ronincore/compiler/compiler"
	"github.com/ronincore/compiler/instruction"
	"github.com/ronincore/compiler/ir"
	"github.com/ronincore/compiler/model"
)

// inflateStatements turns the rows for every statement one compiled
// (non-batch) query produced into its Result. The `get all`/`count all`
// expansion carries a GroupKey per meta and is re-grouped under Models;
// create/alter/drop yield an empty Result, and every other kind is
// inflated from its first statement's rows.
func inflateStatements(metas []compiler.StatementMeta, rows [][]Row) *Result {
	if len(metas) == 0 {
		return &Result{}
	}

	if metas[0].GroupKey != "" {
		out := &Result{Models: map[string]*Result{}}
		for i, meta := range metas {
			out.Models[meta.GroupKey] = inflateOne(meta, rows[i])
		}
		return out
	}

	switch metas[0].Kind {
	case ir.Create, ir.Alter, ir.Drop:
		return &Result{}
	case ir.List:
		return inflateList(rows[0])
	default:
		return inflateOne(metas[0], rows[0])
	}
}

// inflateList renders `list.models`/`list.migrations` rows as plain
// records: neither system table is catalogue-backed, so there is no
// per-field type to coerce against beyond the dotted-key fold every other
// result shape gets.
func inflateList(rows []Row) *Result {
	records := make([]map[string]any, len(rows))
	for i, row := range rows {
		typed := make(map[string]any, len(row))
		for k, v := range row {
			typed[k] = v
		}
		records[i] = foldColumns(typed)
	}
	return &Result{Records: records}
}

func inflateOne(meta compiler.StatementMeta, rows []Row) *Result {
	if meta.Kind == ir.Count {
		return &Result{Amount: extractAmount(rows)}
	}

	records := inflateRows(rows, meta.Model, meta.Joins)
	records = groupPluralJoins(records, pluralMountPaths(meta.Joins))

	if meta.Singular {
		var rec map[string]any
		if len(records) > 0 {
			rec = records[0]
		}
		return &Result{Record: rec}
	}

	moreAfter := false
	if meta.PageSize > 0 && len(records) > meta.PageSize {
		records = records[:meta.PageSize]
		moreAfter = true
	}
	res := &Result{Records: records, ModelFields: modelFieldSlugs(meta.Model), MoreAfter: moreAfter}
	if moreAfter && len(records) > 0 {
		cursor := buildCursor(records[len(records)-1], meta.OrderedBy)
		res.Cursor = &cursor
	}
	return res
}

func extractAmount(rows []Row) int64 {
	if len(rows) == 0 {
		return 0
	}
	switch v := rows[0]["amount"].(type) {
	case int64:
		return v
	case int:
		return int64(v)
	case float64:
		return int64(v)
	default:
		return 0
	}
}

func pluralMountPaths(joins []instruction.JoinClause) []string {
	var out []string
	for _, j := range joins {
		if !j.Singular {
			out = append(out, j.MountPath)
		}
	}
	return out
}

func modelFieldSlugs(m *model.Model) []string {
	if m == nil {
		return nil
	}
	fields := m.UserFields()
	out := make([]string, len(fields))
	for i, f := range fields {
		out[i] = f.Slug
	}
	return out
}

// buildCursor encodes the pagination cursor for the page's last kept
// record, reading each ordering key back out of the (already dot-folded)
// record rather than the flat row.
func buildCursor(record map[string]any, orderedBy []ir.OrderTerm) string {
	values := make([]any, len(orderedBy))
	for i, term := range orderedBy {
		values[i] = lookupPath(record, term.Field)
	}
	return ir.EncodeCursor(values)
}

func lookupPath(record map[string]any, path string) any {
	var cur any = record
	for _, part := range strings.Split(path, ".") {
		m, ok := cur.(map[string]any)
		if !ok {
			return nil
		}
		cur = m[part]
	}
	return cur
}

// inflateRows turns the flat driver rows for one statement into nested
// records (spec §4.5): columns are coerced per their declared field type,
// and dotted keys — both system `ronin.x` columns and `mountPath.key`
// join-mounted columns — are folded into nested objects.
func inflateRows(rows []Row, m *model.Model, joins []instruction.JoinClause) []map[string]any {
	out := make([]map[string]any, len(rows))
	for i, row := range rows {
		out[i] = inflateRow(row, m, joins)
	}
	return out
}

func inflateRow(row Row, m *model.Model, joins []instruction.JoinClause) map[string]any {
	typed := make(map[string]any, len(row))
	for k, v := range row {
		typed[k] = coerce(v, fieldTypeFor(k, m, joins))
	}
	return foldColumns(typed)
}

// fieldTypeFor resolves a result column's declared type: a bare key against
// m directly, a `mountPath.rest` key against the join target model mounted
// at mountPath.
func fieldTypeFor(key string, m *model.Model, joins []instruction.JoinClause) ir.FieldType {
	if m != nil {
		if f, ok := m.Fields[key]; ok {
			return f.Type
		}
	}
	for _, j := range joins {
		if rest, ok := strings.CutPrefix(key, j.MountPath+"."); ok && j.Target != nil {
			if f, ok := j.Target.Fields[rest]; ok {
				return f.Type
			}
		}
	}
	return ""
}

// coerce converts a raw driver value into its wire representation per field
// type (the inverse of value.Serialize): booleans back from 0/1, dates
// parsed from their ISO-8601-millisecond string, numbers parsed when the
// driver returned them as strings, everything else passed through as the
// driver returned it.
func coerce(v any, fieldType ir.FieldType) any {
	if v == nil {
		return nil
	}
	switch fieldType {
	case ir.TypeBoolean:
		switch t := v.(type) {
		case int64:
			return t != 0
		case bool:
			return t
		}
	case ir.TypeDate:
		if s, ok := v.(string); ok {
			if ts, err := time.Parse("2006-01-02T15:04:05.000Z", s); err == nil {
				return ts
			}
			if ts, err := time.Parse(time.RFC3339, s); err == nil {
				return ts
			}
		}
	case ir.TypeNumber:
		if s, ok := v.(string); ok {
			if f, err := strconv.ParseFloat(s, 64); err == nil {
				return f
			}
		}
	}
	return v
}

// foldColumns groups a flat `a.b.c`-keyed map into nested objects, first
// splitting on each key's leading segment and recursing on the remainder —
// needed for both system `ronin.x` columns and doubly-nested join-mounted
// keys like `author.ronin.createdAt`.
func foldColumns(flat map[string]any) map[string]any {
	groups := make(map[string]map[string]any)
	out := make(map[string]any, len(flat))
	for k, v := range flat {
		dot := strings.Index(k, ".")
		if dot < 0 {
			out[k] = v
			continue
		}
		head, rest := k[:dot], k[dot+1:]
		if groups[head] == nil {
			groups[head] = make(map[string]any)
		}
		groups[head][rest] = v
	}
	for head, group := range groups {
		out[head] = foldColumns(group)
	}
	return out
}

// groupPluralJoins collapses the row fan-out a LEFT JOIN against a
// plural-mounted relation produces: every record's root "id" repeats once
// per matching joined row, each carrying one joined object at mountPath.
// groupPluralJoins folds those back into a single record per root id, with
// each plural mount path's value replaced by a de-duplicated (by its own
// "id") array of the joined objects seen across the group, in first-seen
// order. Singular mount paths are left as-is (identical across the group by
// construction — a LEFT JOIN on a to-one relation cannot fan out).
func groupPluralJoins(records []map[string]any, pluralMounts []string) []map[string]any {
	if len(pluralMounts) == 0 {
		return records
	}

	var order []string
	byID := make(map[string]map[string]any)
	seen := make(map[string]map[string]map[string]bool)

	for _, rec := range records {
		id, _ := rec["id"].(string)
		grouped, ok := byID[id]
		if !ok {
			grouped = make(map[string]any, len(rec))
			for k, v := range rec {
				grouped[k] = v
			}
			for _, mount := range pluralMounts {
				grouped[mount] = []map[string]any{}
			}
			byID[id] = grouped
			seen[id] = make(map[string]map[string]bool)
			order = append(order, id)
		}

		for _, mount := range pluralMounts {
			sub, ok := rec[mount].(map[string]any)
			if !ok || sub == nil {
				continue
			}
			subID, _ := sub["id"].(string)
			if subID == "" {
				continue
			}
			if seen[id][mount] == nil {
				seen[id][mount] = make(map[string]bool)
			}
			if seen[id][mount][subID] {
				continue
			}
			seen[id][mount][subID] = true
			arr, _ := grouped[mount].([]map[string]any)
			grouped[mount] = append(arr, sub)
		}
	}

	out := make([]map[string]any, len(order))
	for i, id := range order {
		out[i] = byID[id]
	}
	return out
}
