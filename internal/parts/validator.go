package parts

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"sync"

	"github.com/lengau/craft-application/internal/validation"
	"github.com/santhosh-tekuri/jsonschema/v6"
	"github.com/santhosh-tekuri/jsonschema/v6/kind"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

//go:embed schema/part.schema.json
var schemaBytes []byte

var (
	compiledSchema *jsonschema.Schema
	knownProps     map[string]bool
	compileOnce    sync.Once
	compileErr     error
	printer        = message.NewPrinter(language.English)
)

// Validator checks one part definition at a time. The zero value is ready
// to use.
type Validator struct{}

// getSchema compiles the embedded JSON schema once and returns it.
func getSchema() (*jsonschema.Schema, error) {
	compileOnce.Do(func() {
		var shape struct {
			Properties map[string]json.RawMessage `json:"properties"`
		}
		if err := json.Unmarshal(schemaBytes, &shape); err != nil {
			compileErr = fmt.Errorf("reading schema properties: %w", err)
			return
		}
		knownProps = make(map[string]bool, len(shape.Properties))
		for name := range shape.Properties {
			knownProps[name] = true
		}

		doc, err := jsonschema.UnmarshalJSON(bytes.NewReader(schemaBytes))
		if err != nil {
			compileErr = fmt.Errorf("unmarshaling schema JSON: %w", err)
			return
		}

		c := jsonschema.NewCompiler()
		if err := c.AddResource("part.schema.json", doc); err != nil {
			compileErr = fmt.Errorf("adding schema resource: %w", err)
			return
		}
		compiledSchema, compileErr = c.Compile("part.schema.json")
		if compileErr != nil {
			compileErr = fmt.Errorf("compiling schema: %w", compileErr)
		}
	})
	return compiledSchema, compileErr
}

// ValidatePart checks data, the raw value of the part called name. Schema
// violations come back as validation.Failures with paths relative to the
// part; any other error means the part could not be checked at all.
func (Validator) ValidatePart(name string, data any) error {
	schema, err := getSchema()
	if err != nil {
		return fmt.Errorf("loading part schema: %w", err)
	}

	jsonData, err := json.Marshal(toJSONCompatible(withoutPluginProperties(data)))
	if err != nil {
		return fmt.Errorf("converting part %s to JSON: %w", name, err)
	}
	inst, err := jsonschema.UnmarshalJSON(bytes.NewReader(jsonData))
	if err != nil {
		return fmt.Errorf("preparing part %s for validation: %w", name, err)
	}

	err = schema.Validate(inst)
	if err == nil {
		return nil
	}

	var ve *jsonschema.ValidationError
	if !errors.As(err, &ve) {
		return fmt.Errorf("unexpected validation error type: %w", err)
	}
	return extractFailures(ve, inst)
}

// withoutPluginProperties drops keys that belong to the part's plugin, such
// as make-parameters for the make plugin.
func withoutPluginProperties(data any) any {
	m, ok := data.(map[string]any)
	if !ok {
		return data
	}
	plugin, ok := m["plugin"].(string)
	if !ok || plugin == "" {
		return data
	}

	prefix := plugin + "-"
	out := make(map[string]any, len(m))
	for k, v := range m {
		if strings.HasPrefix(k, prefix) && !knownProps[k] {
			continue
		}
		out[k] = v
	}
	return out
}

// extractFailures walks the ValidationError tree and converts its leaves.
// inst is the validated instance, used to tell list indexes from mapping keys.
func extractFailures(ve *jsonschema.ValidationError, inst any) validation.Failures {
	var failures validation.Failures
	collectFailures(ve, inst, &failures)

	if len(failures) == 0 {
		return validation.Failures{validation.Invalid(nil, ve.Error())}
	}

	// Property errors are produced in map order; sort for stable reports.
	sort.SliceStable(failures, func(i, j int) bool {
		pi, pj := failures[i].Path.String(), failures[j].Path.String()
		if pi != pj {
			return pi < pj
		}
		return failures[i].Message < failures[j].Message
	})
	return dedupe(failures)
}

func collectFailures(ve *jsonschema.ValidationError, inst any, failures *validation.Failures) {
	if len(ve.Causes) > 0 {
		for _, cause := range ve.Causes {
			collectFailures(cause, inst, failures)
		}
		return
	}

	path := instancePath(inst, ve.InstanceLocation)
	switch k := ve.ErrorKind.(type) {
	case nil, *kind.Group, *kind.Schema, *kind.Reference:
		// Containers without a message of their own.
	case *kind.Required:
		for _, missing := range k.Missing {
			*failures = append(*failures, validation.Missing(path.Join(validation.Key(missing))))
		}
	case *kind.AdditionalProperties:
		for _, extra := range k.Properties {
			*failures = append(*failures, validation.Unknown(path.Join(validation.Key(extra))))
		}
	case *kind.UniqueItems:
		*failures = append(*failures, validation.Duplicates(path))
	default:
		*failures = append(*failures, validation.Invalid(path, k.LocalizedString(printer)))
	}
}

// instancePath converts a JSON pointer split into tokens. A token becomes a
// list index only when the value it steps into is a list; numeric mapping
// keys stay keys.
func instancePath(inst any, loc []string) validation.Path {
	path := make(validation.Path, 0, len(loc))
	cur := inst
	for _, tok := range loc {
		switch v := cur.(type) {
		case []any:
			if idx, err := strconv.Atoi(tok); err == nil && idx >= 0 && idx < len(v) {
				path = append(path, validation.Index(idx))
				cur = v[idx]
				continue
			}
			cur = nil
		case map[string]any:
			cur = v[tok]
		default:
			cur = nil
		}
		path = append(path, validation.Key(tok))
	}
	return path
}

func dedupe(failures validation.Failures) validation.Failures {
	seen := make(map[string]bool)
	var result validation.Failures
	for _, f := range failures {
		key := f.Path.String() + "|" + f.Kind.String() + "|" + f.Message
		if !seen[key] {
			seen[key] = true
			result = append(result, f)
		}
	}
	return result
}

// toJSONCompatible recursively converts decoded YAML values into types that
// encoding/json can marshal.
func toJSONCompatible(v any) any {
	switch val := v.(type) {
	case map[string]any:
		m := make(map[string]any, len(val))
		for k, item := range val {
			m[k] = toJSONCompatible(item)
		}
		return m
	case map[any]any:
		m := make(map[string]any, len(val))
		for k, item := range val {
			m[fmt.Sprint(k)] = toJSONCompatible(item)
		}
		return m
	case []any:
		a := make([]any, len(val))
		for i, item := range val {
			a[i] = toJSONCompatible(item)
		}
		return a
	default:
		return val
	}
}
