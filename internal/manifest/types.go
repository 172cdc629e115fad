package manifest

import (
	"reflect"
	"sort"
)

// Manifest is a validated project descriptor. Values are only created by a
// Loader and only changed through Loader.Update.
type Manifest struct {
	name        string
	title       *string
	base        *string
	buildBase   *string
	version     string
	contact     *StringOrList
	donation    *StringOrList
	issues      *StringOrList
	sourceCode  *string
	website     *string
	summary     *string
	description *string
	license     *string
	parts       map[string]any
}

// StringOrList holds a value written either as one string or as a list of
// unique strings. The form it was written in is kept.
type StringOrList struct {
	single string
	list   []string
	isList bool
}

// NewString returns a StringOrList holding a single string.
func NewString(s string) StringOrList {
	return StringOrList{single: s}
}

// NewList returns a StringOrList holding a list. Uniqueness is checked when
// the value goes through a Loader.
func NewList(items ...string) StringOrList {
	list := make([]string, len(items))
	copy(list, items)
	return StringOrList{list: list, isList: true}
}

// IsList reports whether the value was written as a list.
func (v StringOrList) IsList() bool { return v.isList }

// String returns the single string form, or "" for a list.
func (v StringOrList) String() string { return v.single }

// Values returns the entries: the list items, or the single string.
func (v StringOrList) Values() []string {
	if !v.isList {
		return []string{v.single}
	}
	out := make([]string, len(v.list))
	copy(out, v.list)
	return out
}

func (v StringOrList) marshal() any {
	if !v.isList {
		return v.single
	}
	out := make([]any, len(v.list))
	for i, s := range v.list {
		out[i] = s
	}
	return out
}

// Name returns the project name.
func (m *Manifest) Name() string { return m.name }

// Version returns the project version.
func (m *Manifest) Version() string { return m.version }

// Title returns the title and whether it is set.
func (m *Manifest) Title() (string, bool) { return deref(m.title) }

// Base returns the base and whether it is set.
func (m *Manifest) Base() (string, bool) { return deref(m.base) }

// BuildBase returns the build base and whether it is set.
func (m *Manifest) BuildBase() (string, bool) { return deref(m.buildBase) }

// Contact returns the contact information and whether it is set.
func (m *Manifest) Contact() (StringOrList, bool) { return derefList(m.contact) }

// Donation returns the donation links and whether they are set.
func (m *Manifest) Donation() (StringOrList, bool) { return derefList(m.donation) }

// Issues returns the issue tracker links and whether they are set.
func (m *Manifest) Issues() (StringOrList, bool) { return derefList(m.issues) }

// SourceCode returns the source code location and whether it is set.
func (m *Manifest) SourceCode() (string, bool) { return deref(m.sourceCode) }

// Website returns the website and whether it is set.
func (m *Manifest) Website() (string, bool) { return deref(m.website) }

// Summary returns the summary and whether it is set.
func (m *Manifest) Summary() (string, bool) { return deref(m.summary) }

// Description returns the description and whether it is set.
func (m *Manifest) Description() (string, bool) { return deref(m.description) }

// License returns the license and whether it is set.
func (m *Manifest) License() (string, bool) { return deref(m.license) }

// Parts returns a shallow copy of the parts mapping.
func (m *Manifest) Parts() map[string]any {
	return copyParts(m.parts)
}

// PartNames returns the part names in sorted order.
func (m *Manifest) PartNames() []string {
	return sortedKeys(m.parts)
}

// Equal reports whether m and other hold the same values.
func (m *Manifest) Equal(other *Manifest) bool {
	return reflect.DeepEqual(m, other)
}

func deref(p *string) (string, bool) {
	if p == nil {
		return "", false
	}
	return *p, true
}

func derefList(p *StringOrList) (StringOrList, bool) {
	if p == nil {
		return StringOrList{}, false
	}
	return *p, true
}

func copyParts(parts map[string]any) map[string]any {
	out := make(map[string]any, len(parts))
	for k, v := range parts {
		out[k] = v
	}
	return out
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
