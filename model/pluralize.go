package model

import (
	"strings"
	"unicode"
)

// pluralize derives pluralSlug from slug using three rules only: a
// consonant followed by y becomes ies, a word ending in s/ch/sh/ex gets
// es, everything else just gets s. No irregular-noun table (go-openapi/
// inflect's Pluralize carries one, turning e.g. "person" into "people"
// and "leaf" into "leaves", which this store's slugs never need).
func pluralize(slug string) string {
	if slug == "" {
		return slug
	}
	lower := strings.ToLower(slug)
	n := len(lower)
	last := lower[n-1]

	if last == 'y' && n > 1 && !isVowel(lower[n-2]) {
		return slug[:len(slug)-1] + "ies"
	}

	switch {
	case last == 's':
		return slug + "es"
	case strings.HasSuffix(lower, "ch"), strings.HasSuffix(lower, "sh"), strings.HasSuffix(lower, "ex"):
		return slug + "es"
	default:
		return slug + "s"
	}
}

func isVowel(b byte) bool {
	switch b {
	case 'a', 'e', 'i', 'o', 'u':
		return true
	default:
		return false
	}
}

// deCamelise turns a camelCase or snake_case slug into space-separated,
// Title Case words (used to derive `name`/`pluralName` from a slug).
func deCamelise(slug string) string {
	var words []string
	var current strings.Builder
	flush := func() {
		if current.Len() > 0 {
			words = append(words, current.String())
			current.Reset()
		}
	}
	runes := []rune(slug)
	for i, r := range runes {
		switch {
		case r == '_' || r == '-' || r == '.':
			flush()
		case unicode.IsUpper(r) && i > 0 && !unicode.IsUpper(runes[i-1]):
			flush()
			current.WriteRune(r)
		default:
			current.WriteRune(r)
		}
	}
	flush()

	for i, w := range words {
		words[i] = titleCase(w)
	}
	return strings.Join(words, " ")
}

func titleCase(w string) string {
	if w == "" {
		return w
	}
	runes := []rune(strings.ToLower(w))
	runes[0] = unicode.ToUpper(runes[0])
	return string(runes)
}

// snakeCase turns a camelCase/PascalCase/kebab-case identifier into
// snake_case (used to derive `table` from pluralSlug).
func snakeCase(s string) string {
	var b strings.Builder
	runes := []rune(s)
	for i, r := range runes {
		switch {
		case r == '-' || r == '.':
			b.WriteByte('_')
		case unicode.IsUpper(r):
			if i > 0 && runes[i-1] != '_' && runes[i-1] != '-' {
				b.WriteByte('_')
			}
			b.WriteRune(unicode.ToLower(r))
		default:
			b.WriteRune(r)
		}
	}
	return b.String()
}

// idPrefix derives a model's 3-char id prefix from its slug.
func idPrefix(slug string) string {
	lower := strings.ToLower(slug)
	if len(lower) <= 3 {
		return lower
	}
	return lower[:3]
}
