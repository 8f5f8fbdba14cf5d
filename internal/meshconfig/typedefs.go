package meshconfig

import (
	"fmt"
	"strings"

	mberrors "github.com/storefront-tools/meshbuild/internal/errors"
)

// TypeDefs carries additional GraphQL type definitions in exactly one of two
// forms: raw SDL text, or a structured document that is printed to SDL during
// normalization. Output is always SDL text.
type TypeDefs struct {
	SDL      string    `yaml:"sdl,omitempty" json:"sdl,omitempty"`
	Document *Document `yaml:"document,omitempty" json:"document,omitempty"`
}

// Document is a minimal structured form of additional type definitions: a list
// of (possibly extending) object types with typed fields.
type Document struct {
	Definitions []TypeDefinition `yaml:"definitions" json:"definitions"`
}

// TypeDefinition is one object type or type extension.
type TypeDefinition struct {
	Name   string            `yaml:"name" json:"name"`
	Extend bool              `yaml:"extend,omitempty" json:"extend,omitempty"`
	Fields []FieldDefinition `yaml:"fields" json:"fields"`
}

// FieldDefinition is one field on a type definition.
type FieldDefinition struct {
	Name string `yaml:"name" json:"name"`
	Type string `yaml:"type" json:"type"`
}

// IsZero reports whether no type definitions were supplied at all.
func (t TypeDefs) IsZero() bool {
	return t.SDL == "" && t.Document == nil
}

// ToSDL normalizes the type defs to SDL text. Exactly one of the two forms
// must be populated; both or neither is a validation error (unless the whole
// value is zero, which normalizes to "").
func (t TypeDefs) ToSDL() (string, error) {
	if t.IsZero() {
		return "", nil
	}
	if t.SDL != "" && t.Document != nil {
		return "", mberrors.ValidationFailed("additionalTypeDefs", "both sdl and document supplied; exactly one is accepted")
	}
	if t.SDL != "" {
		return t.SDL, nil
	}
	return t.Document.print()
}

// print renders the document as SDL.
func (d *Document) print() (string, error) {
	if len(d.Definitions) == 0 {
		return "", mberrors.ValidationFailed("additionalTypeDefs.document", "document has no definitions")
	}
	var b strings.Builder
	for i, def := range d.Definitions {
		if def.Name == "" {
			return "", mberrors.ValidationFailed("additionalTypeDefs.document", fmt.Sprintf("definition %d has no name", i))
		}
		if i > 0 {
			b.WriteString("\n")
		}
		if def.Extend {
			b.WriteString("extend ")
		}
		fmt.Fprintf(&b, "type %s {\n", def.Name)
		for _, f := range def.Fields {
			if f.Name == "" || f.Type == "" {
				return "", mberrors.ValidationFailed("additionalTypeDefs.document", fmt.Sprintf("type %s has an incomplete field", def.Name))
			}
			fmt.Fprintf(&b, "  %s: %s\n", f.Name, f.Type)
		}
		b.WriteString("}\n")
	}
	return b.String(), nil
}
