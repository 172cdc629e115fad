package manifest

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/lengau/craft-application/internal/validation"
)

var (
	namePattern    = regexp.MustCompile(`^[a-z0-9-]*[a-z][a-z0-9-]*$`)
	versionPattern = regexp.MustCompile(`^[A-Za-z0-9](?:[A-Za-z0-9:.+~-]*[A-Za-z0-9+~])?$`)
)

const (
	msgNone       = "none is not an allowed value"
	msgNotString  = "str type expected"
	msgNotDict    = "value is not a valid dict"
	msgNotStrList = "str type expected or value is not a valid list"

	msgNameChars        = "names can only use ASCII lowercase letters, numbers, and hyphens, and must have at least one letter"
	msgNameLeadHyphen   = "names cannot start with a hyphen"
	msgNameTrailHyphen  = "names cannot end with a hyphen"
	msgNameDoubleHyphen = "names cannot have two hyphens in a row"

	msgVersion = "versions consist of upper- and lower-case alphanumeric characters, " +
		"as well as periods, colons, plus signs, tildes, and hyphens. They cannot " +
		"begin with a period, colon, plus sign, tilde, or hyphen. They cannot end " +
		"with a period, colon, or hyphen"
)

// field describes one top-level manifest entry. name uses the internal
// underscore spelling.
type field struct {
	name     string
	required bool
	decode   func(l *Loader, path validation.Path, raw any) (any, validation.Failures)
	set      func(m *Manifest, v any)
	get      func(m *Manifest) any
}

// fields lists the schema in declaration order, which is also the order
// failures are reported in.
var fields = []field{
	{
		name:     "name",
		required: true,
		decode:   stringRule{strip: true, max: 40, check: checkName}.decode,
		set:      func(m *Manifest, v any) { m.name = v.(string) },
		get:      func(m *Manifest) any { return m.name },
	},
	optionalString("title", stringRule{strip: true, min: 2, max: 40},
		func(m *Manifest) **string { return &m.title }),
	optionalString("base", stringRule{strip: true, min: 2},
		func(m *Manifest) **string { return &m.base }),
	optionalString("build_base", stringRule{strip: true, min: 2},
		func(m *Manifest) **string { return &m.buildBase }),
	{
		name:     "version",
		required: true,
		decode:   stringRule{strict: true, min: 1, max: 32, check: checkVersion}.decode,
		set:      func(m *Manifest, v any) { m.version = v.(string) },
		get:      func(m *Manifest) any { return m.version },
	},
	optionalStringOrList("contact", func(m *Manifest) **StringOrList { return &m.contact }),
	optionalStringOrList("donation", func(m *Manifest) **StringOrList { return &m.donation }),
	optionalStringOrList("issues", func(m *Manifest) **StringOrList { return &m.issues }),
	optionalString("source_code", stringRule{}, func(m *Manifest) **string { return &m.sourceCode }),
	optionalString("website", stringRule{}, func(m *Manifest) **string { return &m.website }),
	optionalString("summary", stringRule{strip: true, max: 78},
		func(m *Manifest) **string { return &m.summary }),
	optionalString("description", stringRule{}, func(m *Manifest) **string { return &m.description }),
	optionalString("license", stringRule{}, func(m *Manifest) **string { return &m.license }),
	{
		name:     "parts",
		required: true,
		decode:   decodeParts,
		set:      func(m *Manifest, v any) { m.parts = v.(map[string]any) },
		get:      func(m *Manifest) any { return copyParts(m.parts) },
	},
}

var byName = make(map[string]*field, len(fields))

func init() {
	for i := range fields {
		byName[fields[i].name] = &fields[i]
	}
}

// externalName and internalName translate between the file spelling and the
// package spelling of a field name.
func externalName(name string) string { return strings.ReplaceAll(name, "_", "-") }
func internalName(name string) string { return strings.ReplaceAll(name, "-", "_") }

// lookupField accepts either spelling.
func lookupField(name string) (*field, bool) {
	f, ok := byName[internalName(name)]
	return f, ok
}

func optionalString(name string, rule stringRule, ptr func(m *Manifest) **string) field {
	return field{
		name:   name,
		decode: rule.decode,
		set: func(m *Manifest, v any) {
			if v == nil {
				*ptr(m) = nil
				return
			}
			s := v.(string)
			*ptr(m) = &s
		},
		get: func(m *Manifest) any {
			if p := *ptr(m); p != nil {
				return *p
			}
			return nil
		},
	}
}

func optionalStringOrList(name string, ptr func(m *Manifest) **StringOrList) field {
	return field{
		name:   name,
		decode: decodeStringOrList,
		set: func(m *Manifest, v any) {
			if v == nil {
				*ptr(m) = nil
				return
			}
			sl := v.(StringOrList)
			*ptr(m) = &sl
		},
		get: func(m *Manifest) any {
			if p := *ptr(m); p != nil {
				return p.marshal()
			}
			return nil
		},
	}
}

// stringRule constrains a string field. A zero max means unbounded. Strict
// fields refuse numbers instead of taking their decimal text.
type stringRule struct {
	strip  bool
	strict bool
	min    int
	max    int
	check  func(string) string
}

func (r stringRule) decode(_ *Loader, path validation.Path, raw any) (any, validation.Failures) {
	s, ok := coerceString(raw, r.strict)
	if !ok {
		return nil, validation.Failures{validation.Invalid(path, msgNotString)}
	}
	if r.strip {
		s = strings.TrimSpace(s)
	}

	n := utf8.RuneCountInString(s)
	if n < r.min {
		return nil, validation.Failures{validation.Invalid(path,
			fmt.Sprintf("ensure this value has at least %d characters", r.min))}
	}
	if r.max > 0 && n > r.max {
		return nil, validation.Failures{validation.Invalid(path,
			fmt.Sprintf("ensure this value has at most %d characters", r.max))}
	}

	if r.check != nil {
		if msg := r.check(s); msg != "" {
			return nil, validation.Failures{validation.Invalid(path, msg)}
		}
	}
	return s, nil
}

func coerceString(raw any, strict bool) (string, bool) {
	switch v := raw.(type) {
	case string:
		return v, true
	case int:
		if !strict {
			return strconv.Itoa(v), true
		}
	case int64:
		if !strict {
			return strconv.FormatInt(v, 10), true
		}
	case uint64:
		if !strict {
			return strconv.FormatUint(v, 10), true
		}
	case float64:
		if !strict {
			return formatFloat(v), true
		}
	}
	return "", false
}

// formatFloat keeps a trailing ".0" on whole numbers so 1.0 in a file stays
// "1.0" rather than becoming "1".
func formatFloat(f float64) string {
	s := strconv.FormatFloat(f, 'f', -1, 64)
	if !strings.ContainsAny(s, ".eEnN") {
		s += ".0"
	}
	return s
}

// checkName applies the name pattern and then the hyphen rules, each as its
// own check.
func checkName(name string) string {
	switch {
	case !namePattern.MatchString(name):
		return msgNameChars
	case strings.HasPrefix(name, "-"):
		return msgNameLeadHyphen
	case strings.HasSuffix(name, "-"):
		return msgNameTrailHyphen
	case strings.Contains(name, "--"):
		return msgNameDoubleHyphen
	}
	return ""
}

func checkVersion(version string) string {
	if !versionPattern.MatchString(version) {
		return msgVersion
	}
	return ""
}

func decodeStringOrList(_ *Loader, path validation.Path, raw any) (any, validation.Failures) {
	var items []any
	switch v := raw.(type) {
	case []any:
		items = v
	case []string:
		items = make([]any, len(v))
		for i, s := range v {
			items[i] = s
		}
	default:
		if s, ok := coerceString(raw, false); ok {
			return NewString(s), nil
		}
		return nil, validation.Failures{validation.Invalid(path, msgNotStrList)}
	}

	var failures validation.Failures
	list := make([]string, 0, len(items))
	for i, item := range items {
		s, ok := coerceString(item, false)
		if !ok {
			failures = append(failures, validation.Invalid(path.Join(validation.Index(i)), msgNotString))
			continue
		}
		list = append(list, s)
	}
	if len(failures) > 0 {
		return nil, failures
	}

	seen := make(map[string]bool, len(list))
	for _, s := range list {
		if seen[s] {
			return nil, validation.Failures{validation.Duplicates(path)}
		}
		seen[s] = true
	}
	return NewList(list...), nil
}

func decodeParts(l *Loader, path validation.Path, raw any) (any, validation.Failures) {
	parts, ok := raw.(map[string]any)
	if !ok {
		return nil, validation.Failures{validation.Invalid(path, msgNotDict)}
	}

	var failures validation.Failures
	for _, name := range sortedKeys(parts) {
		failures = append(failures, l.validatePart(path.Join(validation.Key(name)), name, parts[name])...)
	}
	if len(failures) > 0 {
		return nil, failures
	}
	return copyParts(parts), nil
}
