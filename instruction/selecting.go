package instruction

import (
	"strings"

	"github.com/ronincore/compiler/model"
)

// Column is one rendered projection column: its SQL selector and the
// result-key it inflates back under.
type Column struct {
	Selector string
	Key      string
}

// Selecting renders the column list for a record-returning query (spec
// §4.3/§4.4). An absent `selecting` projects every declared user field, in
// declaration order, after the system fields. A present `selecting`
// supports `**` (all non-system fields), `!field` (exclude), and explicit
// field paths; the id column is always appended internally so result
// inflation can rebuild identity, even when the caller didn't ask for it —
// includeIDInternalOnly reports whether the caller's own selecting left id
// out.
func Selecting(ctx *Context, fields []string) (columns []Column, includeIDInternalOnly bool, err error) {
	columns = systemColumns(ctx)

	if len(fields) == 0 {
		for _, f := range ctx.Model.UserFields() {
			col, colErr := resolveColumn(ctx, f.Slug)
			if colErr != nil {
				return nil, false, colErr
			}
			columns = append(columns, col)
		}
		return columns, false, nil
	}

	var excluded map[string]bool
	var explicit []string
	wantAll := false
	for _, f := range fields {
		switch {
		case f == "**":
			wantAll = true
		case strings.HasPrefix(f, "!"):
			if excluded == nil {
				excluded = map[string]bool{}
			}
			excluded[strings.TrimPrefix(f, "!")] = true
		default:
			explicit = append(explicit, f)
		}
	}

	if wantAll {
		for _, f := range ctx.Model.UserFields() {
			if excluded[f.Slug] {
				continue
			}
			col, colErr := resolveColumn(ctx, f.Slug)
			if colErr != nil {
				return nil, false, colErr
			}
			columns = append(columns, col)
		}
		return columns, false, nil
	}

	alreadyProjected := map[string]bool{}
	for _, c := range columns {
		alreadyProjected[c.Key] = true
	}
	requestedID := false
	for _, f := range explicit {
		if f == model.FieldID {
			requestedID = true
		}
		if alreadyProjected[f] {
			continue
		}
		col, colErr := resolveColumn(ctx, f)
		if colErr != nil {
			return nil, false, colErr
		}
		columns = append(columns, col)
		alreadyProjected[f] = true
	}
	return columns, !requestedID, nil
}

// systemColumns always projects id and the four always-emitted audit
// columns (spec §4.4); ronin.locked is internal bookkeeping, not a
// default projection.
func systemColumns(ctx *Context) []Column {
	slugs := []string{model.FieldID, model.FieldCreatedAt, model.FieldCreatedBy, model.FieldUpdatedAt, model.FieldUpdatedBy}
	out := make([]Column, 0, len(slugs))
	for _, slug := range slugs {
		col, err := resolveColumn(ctx, slug)
		if err != nil {
			continue
		}
		out = append(out, col)
	}
	return out
}

func resolveColumn(ctx *Context, path string) (Column, error) {
	_, selector, err := ctx.Catalogue.Field(ctx.Model, path)
	if err != nil {
		return Column{}, err
	}
	return Column{Selector: selector, Key: path}, nil
}
