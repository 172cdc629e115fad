package validation

import (
	"strconv"
	"strings"
)

// Segment is one step of a Path: a Key or an Index.
type Segment interface {
	segment()
}

// Key names a mapping entry.
type Key string

// Index addresses an item of a list.
type Index int

func (Key) segment()   {}
func (Index) segment() {}

// Path locates a value inside a manifest document.
type Path []Segment

// P builds a Path from strings and ints. Any other element type panics.
func P(elems ...any) Path {
	p := make(Path, 0, len(elems))
	for _, e := range elems {
		switch v := e.(type) {
		case string:
			p = append(p, Key(v))
		case int:
			p = append(p, Index(v))
		case Key:
			p = append(p, v)
		case Index:
			p = append(p, v)
		default:
			panic("validation.P: unsupported path element")
		}
	}
	return p
}

// Join returns a new path with more appended to p.
func (p Path) Join(more ...Segment) Path {
	out := make(Path, 0, len(p)+len(more))
	out = append(out, p...)
	return append(out, more...)
}

// String renders the path with dots between keys and brackets around
// indexes, e.g. parts[2].name.
func (p Path) String() string {
	var parts []string
	for _, seg := range p {
		switch s := seg.(type) {
		case Key:
			parts = append(parts, string(s))
		case Index:
			idx := "[" + strconv.Itoa(int(s)) + "]"
			if len(parts) == 0 {
				parts = append(parts, idx)
				continue
			}
			parts[len(parts)-1] += idx
		}
	}
	return strings.Join(parts, ".")
}

// Kind categorizes a failure.
type Kind int

const (
	// Other carries a free-form message.
	Other Kind = iota
	// MissingRequired marks a required field that is absent.
	MissingRequired
	// UnknownField marks a field the schema does not define.
	UnknownField
	// DuplicateListItem marks a list that repeats an entry.
	DuplicateListItem
	// RootLevel marks a problem with the document as a whole.
	RootLevel
)

func (k Kind) String() string {
	switch k {
	case MissingRequired:
		return "missing-required"
	case UnknownField:
		return "unknown-field"
	case DuplicateListItem:
		return "duplicate-list-item"
	case RootLevel:
		return "root-level"
	default:
		return "other"
	}
}

// Failure is a single validation problem.
type Failure struct {
	Path    Path
	Kind    Kind
	Message string
}

// Missing returns a MissingRequired failure at path.
func Missing(path Path) Failure {
	return Failure{Path: path, Kind: MissingRequired, Message: "field required"}
}

// Unknown returns an UnknownField failure at path.
func Unknown(path Path) Failure {
	return Failure{Path: path, Kind: UnknownField, Message: "extra fields not permitted"}
}

// Duplicates returns a DuplicateListItem failure for the list at path.
func Duplicates(path Path) Failure {
	return Failure{Path: path, Kind: DuplicateListItem, Message: "the list has duplicated items"}
}

// Root returns a RootLevel failure.
func Root(msg string) Failure {
	return Failure{Kind: RootLevel, Message: msg}
}

// Invalid returns an Other failure at path.
func Invalid(path Path, msg string) Failure {
	return Failure{Path: path, Kind: Other, Message: msg}
}

// Failures is an ordered list of failures. It implements error so that
// validators can hand structured results back through an error return.
type Failures []Failure

func (f Failures) Error() string {
	lines := make([]string, 0, len(f))
	for _, failure := range f {
		lines = append(lines, formatFailure(failure))
	}
	return strings.Join(lines, "\n")
}

// Prefix returns a copy of f with every path rooted at prefix.
func (f Failures) Prefix(prefix Path) Failures {
	out := make(Failures, len(f))
	for i, failure := range f {
		failure.Path = prefix.Join(failure.Path...)
		out[i] = failure
	}
	return out
}
