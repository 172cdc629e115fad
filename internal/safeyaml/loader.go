package safeyaml

import (
	"bytes"
	"errors"
	"fmt"
	"io"

	"go.yaml.in/yaml/v3"
)

// ErrMultipleDocuments is returned when a stream holds more than one document.
var ErrMultipleDocuments = errors.New("expected a single document in the stream")

// DuplicateKeyError reports a mapping that defines the same key twice.
type DuplicateKeyError struct {
	Key string

	// Line and Column locate the repeated key.
	Line   int
	Column int

	// MappingLine and MappingColumn locate the start of the enclosing mapping.
	MappingLine   int
	MappingColumn int
}

func (e *DuplicateKeyError) Error() string {
	return fmt.Sprintf("while constructing a mapping at line %d, column %d: found duplicate key %q at line %d, column %d",
		e.MappingLine, e.MappingColumn, e.Key, e.Line, e.Column)
}

// Load parses a single YAML document from r. Mappings decode to
// map[string]any and sequences to []any. An empty stream yields a nil value
// and no error.
func Load(r io.Reader) (any, error) {
	dec := yaml.NewDecoder(r)

	var doc yaml.Node
	if err := dec.Decode(&doc); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, nil
		}
		return nil, err
	}

	var extra yaml.Node
	if err := dec.Decode(&extra); err == nil {
		return nil, ErrMultipleDocuments
	} else if !errors.Is(err, io.EOF) {
		return nil, err
	}

	if err := checkDuplicateKeys(&doc); err != nil {
		return nil, err
	}

	var out any
	if err := doc.Decode(&out); err != nil {
		return nil, err
	}
	return normalize(out), nil
}

// LoadBytes is Load over an in-memory document.
func LoadBytes(data []byte) (any, error) {
	return Load(bytes.NewReader(data))
}

// checkDuplicateKeys walks every mapping reachable from n. Keys that are not
// scalars cannot be compared and are left for the decoder to reject.
func checkDuplicateKeys(n *yaml.Node) error {
	switch n.Kind {
	case yaml.DocumentNode, yaml.SequenceNode:
		for _, child := range n.Content {
			if err := checkDuplicateKeys(child); err != nil {
				return err
			}
		}
	case yaml.MappingNode:
		seen := make(map[string]struct{}, len(n.Content)/2)
		for i := 0; i+1 < len(n.Content); i += 2 {
			key := n.Content[i]
			if key.Kind == yaml.ScalarNode {
				text := keyText(key)
				if _, dup := seen[text]; dup {
					return &DuplicateKeyError{
						Key:           key.Value,
						Line:          key.Line,
						Column:        key.Column,
						MappingLine:   n.Line,
						MappingColumn: n.Column,
					}
				}
				seen[text] = struct{}{}
			}
			if err := checkDuplicateKeys(key); err != nil {
				return err
			}
			if err := checkDuplicateKeys(n.Content[i+1]); err != nil {
				return err
			}
		}
	}
	// Aliases point at nodes that were already walked where their anchor
	// was defined.
	return nil
}

// keyText returns the map key a scalar node ends up under after normalize,
// so keys such as 1 and 1.0 that decode to equal text count as duplicates.
func keyText(key *yaml.Node) string {
	if key.ShortTag() == "!!str" {
		return key.Value
	}
	var v any
	if err := key.Decode(&v); err != nil {
		return key.Value
	}
	return fmt.Sprint(v)
}

// normalize turns the generic maps the decoder produces for non-string keys
// into map[string]any, using the text form of each key.
func normalize(v any) any {
	switch val := v.(type) {
	case map[string]any:
		for k, item := range val {
			val[k] = normalize(item)
		}
		return val
	case map[any]any:
		m := make(map[string]any, len(val))
		for k, item := range val {
			m[fmt.Sprint(k)] = normalize(item)
		}
		return m
	case []any:
		for i, item := range val {
			val[i] = normalize(item)
		}
		return val
	default:
		return v
	}
}
