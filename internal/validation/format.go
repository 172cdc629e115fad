package validation

import (
	"strings"
)

// Format renders failures as a report headed by the manifest file name.
// Failures keep the order they were given in.
func Format(fileName string, failures []Failure) string {
	lines := make([]string, 0, len(failures)+1)
	lines = append(lines, "Bad "+fileName+" content:")
	for _, f := range failures {
		lines = append(lines, formatFailure(f))
	}
	return strings.Join(lines, "\n")
}

func formatFailure(f Failure) string {
	msg := normalizeMessage(f.Message)

	switch f.Kind {
	case MissingRequired:
		field, location := splitLocation(f.Path)
		return "- field " + field + " required in " + location + " configuration"
	case UnknownField:
		field, location := splitLocation(f.Path)
		return "- extra field " + field + " not permitted in " + location + " configuration"
	case DuplicateListItem:
		field, location := splitLocation(f.Path)
		return " - duplicate entries in " + field + " not permitted in " + location + " configuration"
	case RootLevel:
		return "- " + msg
	default:
		return "- " + msg + " (in field " + quote(f.Path.String()) + ")"
	}
}

// splitLocation separates the last dotted component of path from the rest,
// both quoted. An empty remainder prints as top-level.
func splitLocation(path Path) (field, location string) {
	parts := strings.Split(path.String(), ".")
	field = quote(parts[len(parts)-1])
	if len(parts) == 1 {
		return field, "top-level"
	}
	return field, quote(strings.Join(parts[:len(parts)-1], "."))
}

func normalizeMessage(msg string) string {
	return strings.ReplaceAll(msg, "str type expected", "string type expected")
}

func quote(s string) string {
	if strings.Contains(s, "'") && !strings.Contains(s, `"`) {
		return `"` + s + `"`
	}
	return "'" + strings.ReplaceAll(s, "'", `\'`) + "'"
}
