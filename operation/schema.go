package operation

import (
	"errors"
	"fmt"

	"github.com/n9te9/goliteql/schema"
)

// CheckSchema reports every field selected by docs that the SDL does not define.
func CheckSchema(sdl []byte, docs ...*Document) error {
	s, err := schema.NewParser(schema.NewLexer()).Parse(sdl)
	if err != nil {
		return fmt.Errorf("failed to parse schema: %w", err)
	}

	var errs []error
	for _, d := range docs {
		for _, f := range d.selection {
			typeName, ok := rootFieldType(s, d.Kind, f.name)
			if !ok {
				errs = append(errs, fmt.Errorf("%s: %s root field %q is not defined", d.Name, d.Kind, f.name))
				continue
			}
			errs = append(errs, checkFields(s, d.Name, f.name, typeName, f.children)...)
		}
	}

	return errors.Join(errs...)
}

func rootFieldType(s *schema.Schema, kind Kind, name string) (string, bool) {
	var opType schema.OperationType
	switch kind {
	case KindQuery:
		opType = schema.QueryOperation
	case KindMutation:
		opType = schema.MutationOperation
	default:
		return "", false
	}

	for _, op := range s.Operations {
		if op.OperationType != opType {
			continue
		}
		for _, f := range op.Fields {
			if string(f.Name) == name {
				return string(f.Type.GetRootType().Name), true
			}
		}
	}

	return "", false
}

func checkFields(s *schema.Schema, docName, path, typeName string, fields []*field) []error {
	if len(fields) == 0 {
		return nil
	}

	td, ok := s.Indexes.TypeIndex[typeName]
	if !ok || td == nil {
		return []error{fmt.Errorf("%s: %s: type %q has no selectable fields", docName, path, typeName)}
	}

	var errs []error
	for _, f := range fields {
		if f.name == "__typename" {
			continue
		}

		found := false
		for _, def := range td.Fields {
			if string(def.Name) != f.name {
				continue
			}
			found = true
			errs = append(errs, checkFields(s, docName, path+"."+f.name, string(def.Type.GetRootType().Name), f.children)...)
			break
		}

		if !found {
			errs = append(errs, fmt.Errorf("%s: field %q is not defined on type %q", docName, path+"."+f.name, typeName))
		}
	}

	return errs
}
