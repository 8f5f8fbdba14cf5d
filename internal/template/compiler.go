// Package template performs placeholder substitution into the resolver
// template. Placeholders use the `{{{NAME}}}` token syntax and may appear in
// two shapes: bare, or preceded by a numeric default inside a comment
// (`42 /* {{{NAME}}} */`), which keeps the template valid JavaScript before
// compilation. In the second shape the entire numeric-literal-plus-comment
// span is replaced by the value.
package template

import (
	"fmt"
	"regexp"
	"strings"
)

// Placeholder returns the delimited token for a variable name.
func Placeholder(name string) string {
	return "{{{" + name + "}}}"
}

// Compile substitutes every occurrence of each variable's placeholder with its
// value. Placeholders for variables not present in vars are left intact;
// completeness of the variable set is the caller's responsibility.
func Compile(templateText string, vars map[string]string) string {
	out := templateText
	for name, value := range vars {
		out = substitute(out, name, value)
	}
	return out
}

// substitute replaces both occurrence shapes of a single placeholder.
func substitute(text, name, value string) string {
	token := regexp.QuoteMeta(Placeholder(name))
	// Numeric-default form first: the whole `<number> /* {{{NAME}}} */` span
	// is the occurrence. Alternation order does not matter for correctness
	// since the numeric form starts earlier in the text and regexp matching
	// is leftmost-first.
	pattern := fmt.Sprintf(`[0-9]+(?:\.[0-9]+)?\s*/\*\s*%s\s*\*/|%s`, token, token)
	return regexp.MustCompile(pattern).ReplaceAllLiteralString(text, value)
}

// Unresolved returns the placeholder tokens still present in compiled output.
// Useful for diagnostics; supplied variables are guaranteed absent.
func Unresolved(text string) []string {
	matches := placeholderPattern.FindAllString(text, -1)
	if len(matches) == 0 {
		return nil
	}
	seen := make(map[string]struct{}, len(matches))
	var out []string
	for _, m := range matches {
		if _, dup := seen[m]; dup {
			continue
		}
		seen[m] = struct{}{}
		out = append(out, m)
	}
	return out
}

var placeholderPattern = regexp.MustCompile(`\{\{\{[A-Z0-9_]+\}\}\}`)

// ContainsPlaceholder reports whether the text still contains the placeholder
// for the given variable in either occurrence shape.
func ContainsPlaceholder(text, name string) bool {
	return strings.Contains(text, Placeholder(name))
}
