package migrate

import (
	"encoding/json"
	"fmt"
	"io"
	"io/fs"
	"sort"
	"strconv"
	"strings"

	"ariga.io/atlas/sql/migrate"

	"github.com/ronincore/compiler/compiler"
	"github.com/ronincore/compiler/ir"
	"github.com/ronincore/compiler/model"
)

// fileName renders the zero-padded artefact name a migration's index sorts
// correctly under lexical ordering (spec §4.7/§6 "Migration protocol file").
func fileName(index int, ext string) string {
	return fmt.Sprintf("migration-%04d.%s", index, ext)
}

// Store persists and loads migration sequences against an atlas migrate.Dir,
// writing a JSON-encoded `.ts` artefact (the query-factory source the spec
// describes round-trips through a loader; here the loader is this file's own
// json.Unmarshal, so the artefact's payload is JSON rather than literal
// source text — see DESIGN.md) plus an advisory `.sql` sidecar compiled
// against whatever model set is current when the migration is written.
type Store struct {
	dir migrate.Dir
}

// Open wraps an on-disk migration directory.
func Open(path string) (*Store, error) {
	dir, err := migrate.NewLocalDir(path)
	if err != nil {
		return nil, fmt.Errorf("migrate: open directory: %w", err)
	}
	return &Store{dir: dir}, nil
}

// NewStore wraps an already-constructed atlas Dir (e.g. an in-memory one
// used by tests).
func NewStore(dir migrate.Dir) *Store {
	return &Store{dir: dir}
}

// Sequence is one persisted migration: the IR queries it applies, in order.
type Sequence struct {
	Index   int
	Queries []*ir.Query
}

// Write persists seq as the next migration artefact, plus a `.sql` sidecar
// compiled against cat (the model set the queries run against).
func (s *Store) Write(seq Sequence, cat *model.Catalogue) error {
	payload, err := json.MarshalIndent(seq.Queries, "", "  ")
	if err != nil {
		return fmt.Errorf("migrate: encode sequence: %w", err)
	}
	if err := s.dir.WriteFile(fileName(seq.Index, "ts"), payload); err != nil {
		return fmt.Errorf("migrate: write %s: %w", fileName(seq.Index, "ts"), err)
	}

	sqlText, err := renderSQL(seq.Queries, cat)
	if err != nil {
		return fmt.Errorf("migrate: render sql sidecar: %w", err)
	}
	if err := s.dir.WriteFile(fileName(seq.Index, "sql"), []byte(sqlText)); err != nil {
		return fmt.Errorf("migrate: write %s: %w", fileName(seq.Index, "sql"), err)
	}
	return nil
}

// Load reads every `.ts` artefact back into an ordered list of Sequences,
// sorted by their zero-padded index (spec: "lexical sort on the zero-padded
// number establishes ordering").
func (s *Store) Load() ([]Sequence, error) {
	entries, err := fs.ReadDir(s.dir, ".")
	if err != nil {
		return nil, fmt.Errorf("migrate: list directory: %w", err)
	}

	var seqs []Sequence
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !strings.HasSuffix(name, ".ts") {
			continue
		}
		idx, err := parseIndex(name)
		if err != nil {
			return nil, err
		}
		f, err := s.dir.Open(name)
		if err != nil {
			return nil, fmt.Errorf("migrate: open %s: %w", name, err)
		}
		b, err := io.ReadAll(f)
		f.Close()
		if err != nil {
			return nil, fmt.Errorf("migrate: read %s: %w", name, err)
		}
		var queries []*ir.Query
		if err := json.Unmarshal(b, &queries); err != nil {
			return nil, fmt.Errorf("migrate: decode %s: %w", name, err)
		}
		seqs = append(seqs, Sequence{Index: idx, Queries: queries})
	}
	sort.Slice(seqs, func(i, j int) bool { return seqs[i].Index < seqs[j].Index })
	return seqs, nil
}

func parseIndex(name string) (int, error) {
	base := strings.TrimSuffix(name, ".ts")
	const prefix = "migration-"
	if !strings.HasPrefix(base, prefix) {
		return 0, fmt.Errorf("migrate: %q does not match the migration-<0000> naming convention", name)
	}
	return strconv.Atoi(strings.TrimPrefix(base, prefix))
}

// renderSQL compiles seq's queries against cat for the advisory sidecar;
// compile failures are embedded as a comment rather than aborting the write,
// since the sidecar is advisory only (spec §4.7).
func renderSQL(queries []*ir.Query, cat *model.Catalogue) (string, error) {
	c := compiler.New(cat)
	var b strings.Builder
	for i, q := range queries {
		statements, _, err := c.Compile(q)
		if err != nil {
			fmt.Fprintf(&b, "-- query %d failed to compile: %v\n", i, err)
			continue
		}
		for _, stmt := range statements {
			b.WriteString(stmt.SQL)
			b.WriteString(";\n")
		}
	}
	return b.String(), nil
}
