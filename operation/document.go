package operation

import (
	"errors"
	"fmt"
	"strings"

	"github.com/n9te9/graphql-parser/ast"
	"github.com/n9te9/graphql-parser/lexer"
	"github.com/n9te9/graphql-parser/parser"
)

var (
	ErrNoOperation        = errors.New("document has no operation")
	ErrMultipleOperations = errors.New("document has more than one operation")
)

// Kind is the operation type of a document.
type Kind string

const (
	KindQuery    Kind = "query"
	KindMutation Kind = "mutation"
)

// Document is a parsed GraphQL operation together with the fragments it spreads.
type Document struct {
	Name   string // Operation name sent as operationName
	Source string // Composed source, fragments first
	Kind   Kind

	op        *ast.OperationDefinition
	fragments map[string]*ast.FragmentDefinition
	selection []*field
}

// field is a selected field with fragment spreads and inline fragments flattened.
type field struct {
	name     string
	children []*field
}

// Parse composes src with the given fragment sources and parses the result.
// The composed document must contain exactly one operation, every fragment spread
// must have a definition and every fragment must be spread at least once.
func Parse(name, src string, fragments ...string) (*Document, error) {
	composed := compose(src, fragments...)

	l := lexer.New(composed)
	p := parser.New(l)
	doc := p.ParseDocument()
	if len(p.Errors()) > 0 {
		return nil, fmt.Errorf("%s: parse error: %v", name, p.Errors())
	}

	d := &Document{
		Name:      name,
		Source:    composed,
		fragments: make(map[string]*ast.FragmentDefinition),
	}

	for _, def := range doc.Definitions {
		switch def := def.(type) {
		case *ast.OperationDefinition:
			if d.op != nil {
				return nil, fmt.Errorf("%s: %w", name, ErrMultipleOperations)
			}
			d.op = def
		case *ast.FragmentDefinition:
			d.fragments[def.Name.String()] = def
		}
	}

	if d.op == nil {
		return nil, fmt.Errorf("%s: %w", name, ErrNoOperation)
	}

	switch d.op.Operation {
	case ast.Query:
		d.Kind = KindQuery
	case ast.Mutation:
		d.Kind = KindMutation
	default:
		return nil, fmt.Errorf("%s: unsupported operation type: %v", name, d.op.Operation)
	}

	used := make(map[string]bool)
	var errs []error
	d.selection = d.expand(d.op.SelectionSet, used, nil, &errs)

	for fragName := range d.fragments {
		if !used[fragName] {
			errs = append(errs, fmt.Errorf("fragment %q is never used", fragName))
		}
	}

	if len(errs) > 0 {
		return nil, fmt.Errorf("%s: %w", name, errors.Join(errs...))
	}

	return d, nil
}

// MustParse is like Parse but panics if the document is invalid.
func MustParse(name, src string, fragments ...string) *Document {
	d, err := Parse(name, src, fragments...)
	if err != nil {
		panic(err)
	}
	return d
}

func compose(src string, fragments ...string) string {
	if len(fragments) == 0 {
		return src
	}

	var b strings.Builder
	for _, f := range fragments {
		b.WriteString(strings.TrimSpace(f))
		b.WriteString("\n")
	}
	b.WriteString(src)
	return b.String()
}

// expand flattens fragment spreads and inline fragments into a field tree.
// stack holds the fragments being expanded to reject cycles.
func (d *Document) expand(selections []ast.Selection, used map[string]bool, stack []string, errs *[]error) []*field {
	var result []*field

	for _, selection := range selections {
		switch sel := selection.(type) {
		case *ast.Field:
			result = append(result, &field{
				name:     sel.Name.String(),
				children: d.expand(sel.SelectionSet, used, stack, errs),
			})

		case *ast.InlineFragment:
			result = append(result, d.expand(sel.SelectionSet, used, stack, errs)...)

		case *ast.FragmentSpread:
			fragName := sel.Name.String()
			used[fragName] = true

			fragDef, ok := d.fragments[fragName]
			if !ok {
				*errs = append(*errs, fmt.Errorf("unknown fragment %q", fragName))
				continue
			}

			for _, s := range stack {
				if s == fragName {
					*errs = append(*errs, fmt.Errorf("fragment %q spreads itself", fragName))
					return result
				}
			}

			result = append(result, d.expand(fragDef.SelectionSet, used, append(stack, fragName), errs)...)
		}
	}

	return result
}

// RootFields returns the names of the operation's root fields in selection order.
func (d *Document) RootFields() []string {
	names := make([]string, 0, len(d.selection))
	for _, f := range d.selection {
		names = append(names, f.name)
	}
	return names
}

// Paths returns the dotted path of every selected field, fragments expanded.
func (d *Document) Paths() []string {
	var paths []string
	var walk func(prefix string, fields []*field)
	walk = func(prefix string, fields []*field) {
		for _, f := range fields {
			p := f.name
			if prefix != "" {
				p = prefix + "." + f.name
			}
			paths = append(paths, p)
			walk(p, f.children)
		}
	}
	walk("", d.selection)
	return paths
}
