package manifest

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"testing"

	"github.com/lengau/craft-application/internal/validation"
)

// minimal returns the smallest valid raw manifest, with overrides applied.
func minimal(overrides map[string]any) map[string]any {
	data := map[string]any{
		"name":    "name",
		"version": "0.0",
		"parts":   map[string]any{},
	}
	for k, v := range overrides {
		if v == nil {
			delete(data, k)
			continue
		}
		data[k] = v
	}
	return data
}

// failuresOf extracts the structured failures from err.
func failuresOf(t *testing.T, err error) validation.Failures {
	t.Helper()
	var verr *ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected *ValidationError, got %T: %v", err, err)
	}
	return verr.Failures
}

func TestUnmarshal_ValidNames(t *testing.T) {
	for _, name := range []string{"name", "a-b-c", "2a", "a", " ab ", strings.Repeat("a", 40), "0-a-0"} {
		t.Run(name, func(t *testing.T) {
			m, err := Unmarshal(minimal(map[string]any{"name": name}))
			if err != nil {
				t.Fatalf("Unmarshal error: %v", err)
			}
			if want := strings.TrimSpace(name); m.Name() != want {
				t.Errorf("Name = %q, want %q", m.Name(), want)
			}
		})
	}
}

func TestUnmarshal_InvalidNames(t *testing.T) {
	tests := []struct {
		name string
		msg  string
	}{
		{"", msgNameChars},
		{"-starts-with-hyphen", msgNameLeadHyphen},
		{"ends-with-hyphen-", msgNameTrailHyphen},
		{"two--hyphens", msgNameDoubleHyphen},
		{"123", msgNameChars},
		{"UPPER", msgNameChars},
		{"under_score", msgNameChars},
		{strings.Repeat("a", 41), "ensure this value has at most 40 characters"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Unmarshal(minimal(map[string]any{"name": tt.name}))
			failures := failuresOf(t, err)
			if len(failures) != 1 {
				t.Fatalf("got %d failures, want 1: %v", len(failures), failures)
			}
			if failures[0].Message != tt.msg {
				t.Errorf("Message = %q, want %q", failures[0].Message, tt.msg)
			}
			if got := failures[0].Path.String(); got != "name" {
				t.Errorf("Path = %q, want %q", got, "name")
			}
		})
	}
}

func TestUnmarshal_Versions(t *testing.T) {
	valid := []string{"0.0", "1:2.3+git~4", "a", "1.0~rc1", "v2", "1+", "1~", strings.Repeat("9", 32)}
	for _, version := range valid {
		t.Run("valid "+version, func(t *testing.T) {
			if _, err := Unmarshal(minimal(map[string]any{"version": version})); err != nil {
				t.Errorf("Unmarshal(%q) error: %v", version, err)
			}
		})
	}

	invalid := []string{":a", "a:", ".a", "a.", "-a", "a-", "+a", "~a", "a b", strings.Repeat("9", 33)}
	for _, version := range invalid {
		t.Run("invalid "+version, func(t *testing.T) {
			_, err := Unmarshal(minimal(map[string]any{"version": version}))
			failures := failuresOf(t, err)
			if len(failures) != 1 || failures[0].Path.String() != "version" {
				t.Errorf("failures = %v, want one failure on version", failures)
			}
		})
	}
}

func TestUnmarshal_VersionIsStrict(t *testing.T) {
	for _, version := range []any{1, 1.5, true} {
		t.Run(fmt.Sprint(version), func(t *testing.T) {
			_, err := Unmarshal(minimal(map[string]any{"version": version}))
			failures := failuresOf(t, err)
			if len(failures) != 1 || failures[0].Message != msgNotString {
				t.Errorf("failures = %v, want %q", failures, msgNotString)
			}
		})
	}
}

func TestUnmarshal_Titles(t *testing.T) {
	m, err := Unmarshal(minimal(map[string]any{"title": "  My Title  "}))
	if err != nil {
		t.Fatalf("Unmarshal error: %v", err)
	}
	if title, ok := m.Title(); !ok || title != "My Title" {
		t.Errorf("Title = %q, %v, want %q, true", title, ok, "My Title")
	}

	for _, title := range []string{"", "1", "  ", strings.Repeat("A", 41)} {
		t.Run(title, func(t *testing.T) {
			_, err := Unmarshal(minimal(map[string]any{"title": title}))
			failuresOf(t, err)
		})
	}
}

func TestUnmarshal_Bases(t *testing.T) {
	for _, key := range []string{"base", "build-base"} {
		for _, base := range []string{"", "1", "   "} {
			t.Run(key+" "+base, func(t *testing.T) {
				_, err := Unmarshal(minimal(map[string]any{key: base}))
				failures := failuresOf(t, err)
				if failures[0].Path.String() != key {
					t.Errorf("Path = %q, want %q", failures[0].Path.String(), key)
				}
			})
		}
	}
}

func TestUnmarshal_Summary(t *testing.T) {
	m, err := Unmarshal(minimal(map[string]any{"summary": strings.Repeat("s", 78) + "  "}))
	if err != nil {
		t.Fatalf("Unmarshal error: %v", err)
	}
	if summary, _ := m.Summary(); len(summary) != 78 {
		t.Errorf("Summary length = %d, want 78", len(summary))
	}

	_, err = Unmarshal(minimal(map[string]any{"summary": strings.Repeat("s", 79)}))
	failures := failuresOf(t, err)
	if failures[0].Message != "ensure this value has at most 78 characters" {
		t.Errorf("Message = %q", failures[0].Message)
	}
}

func TestUnmarshal_StringCoercion(t *testing.T) {
	m, err := Unmarshal(minimal(map[string]any{"license": 3, "website": 1.0, "contact": 42}))
	if err != nil {
		t.Fatalf("Unmarshal error: %v", err)
	}
	if license, _ := m.License(); license != "3" {
		t.Errorf("License = %q, want %q", license, "3")
	}
	if website, _ := m.Website(); website != "1.0" {
		t.Errorf("Website = %q, want %q", website, "1.0")
	}
	if contact, _ := m.Contact(); contact.String() != "42" {
		t.Errorf("Contact = %q, want %q", contact.String(), "42")
	}

	_, err = Unmarshal(minimal(map[string]any{"license": true}))
	failures := failuresOf(t, err)
	if failures[0].Message != msgNotString {
		t.Errorf("Message = %q, want %q", failures[0].Message, msgNotString)
	}
}

func TestUnmarshal_StringOrList(t *testing.T) {
	tests := []struct {
		name  string
		value any
		list  bool
		want  []string
	}{
		{"single", "me@example.com", false, []string{"me@example.com"}},
		{"list", []any{"a", "b"}, true, []string{"a", "b"}},
		{"empty list", []any{}, true, []string{}},
		{"string slice", []string{"x"}, true, []string{"x"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, err := Unmarshal(minimal(map[string]any{"issues": tt.value}))
			if err != nil {
				t.Fatalf("Unmarshal error: %v", err)
			}
			issues, ok := m.Issues()
			if !ok {
				t.Fatal("Issues not set")
			}
			if issues.IsList() != tt.list {
				t.Errorf("IsList = %v, want %v", issues.IsList(), tt.list)
			}
			if !reflect.DeepEqual(issues.Values(), tt.want) {
				t.Errorf("Values = %v, want %v", issues.Values(), tt.want)
			}
		})
	}
}

func TestUnmarshal_StringOrListFailures(t *testing.T) {
	tests := []struct {
		name  string
		value any
		want  validation.Failure
	}{
		{"duplicates", []any{"a", "b", "a"}, validation.Duplicates(validation.P("donation"))},
		{"non-string item", []any{"a", []any{"b"}}, validation.Invalid(validation.P("donation", 1), msgNotString)},
		{"mapping", map[string]any{"a": "b"}, validation.Invalid(validation.P("donation"), msgNotStrList)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Unmarshal(minimal(map[string]any{"donation": tt.value}))
			failures := failuresOf(t, err)
			if len(failures) != 1 || !reflect.DeepEqual(failures[0], tt.want) {
				t.Errorf("failures = %#v, want %#v", failures, tt.want)
			}
		})
	}
}

func TestUnmarshal_RequiredFields(t *testing.T) {
	_, err := Unmarshal(map[string]any{})
	failures := failuresOf(t, err)

	want := validation.Failures{
		validation.Missing(validation.P("name")),
		validation.Missing(validation.P("version")),
		validation.Missing(validation.P("parts")),
	}
	if !reflect.DeepEqual(failures, want) {
		t.Errorf("failures = %v, want %v", failures, want)
	}
}

func TestUnmarshal_NullRequiredField(t *testing.T) {
	data := minimal(nil)
	data["parts"] = nil

	_, err := Unmarshal(data)
	failures := failuresOf(t, err)
	if len(failures) != 1 || failures[0].Message != msgNone {
		t.Errorf("failures = %v, want %q", failures, msgNone)
	}
}

func TestUnmarshal_NullOptionalField(t *testing.T) {
	data := minimal(nil)
	data["title"] = nil

	m, err := Unmarshal(data)
	if err != nil {
		t.Fatalf("Unmarshal error: %v", err)
	}
	if _, ok := m.Title(); ok {
		t.Error("Title should not be set")
	}
}

func TestUnmarshal_UnknownFields(t *testing.T) {
	_, err := Unmarshal(minimal(map[string]any{"zeta": 1, "alpha": 2}))
	failures := failuresOf(t, err)

	want := validation.Failures{
		validation.Unknown(validation.P("alpha")),
		validation.Unknown(validation.P("zeta")),
	}
	if !reflect.DeepEqual(failures, want) {
		t.Errorf("failures = %v, want %v", failures, want)
	}
}

func TestUnmarshal_FieldNameSpellings(t *testing.T) {
	m, err := Unmarshal(minimal(map[string]any{"build_base": "core22"}))
	if err != nil {
		t.Fatalf("Unmarshal error: %v", err)
	}
	if base, _ := m.BuildBase(); base != "core22" {
		t.Errorf("BuildBase = %q, want %q", base, "core22")
	}

	// When both spellings are given the hyphenated one wins and the other
	// is an extra field.
	_, err = Unmarshal(minimal(map[string]any{"build_base": "core22", "build-base": "core24"}))
	failures := failuresOf(t, err)
	want := validation.Failures{validation.Unknown(validation.P("build_base"))}
	if !reflect.DeepEqual(failures, want) {
		t.Errorf("failures = %v, want %v", failures, want)
	}
}

func TestUnmarshal_CollectsAllFailures(t *testing.T) {
	_, err := Unmarshal(minimal(map[string]any{
		"name":    "Bad Name",
		"version": "-1",
		"summary": strings.Repeat("x", 100),
	}))
	failures := failuresOf(t, err)

	var paths []string
	for _, f := range failures {
		paths = append(paths, f.Path.String())
	}
	want := []string{"name", "version", "summary"}
	if !reflect.DeepEqual(paths, want) {
		t.Errorf("paths = %v, want %v", paths, want)
	}

	lines := strings.Split(err.Error(), "\n")
	if len(lines) != 4 {
		t.Fatalf("report has %d lines, want 4:\n%s", len(lines), err)
	}
	if lines[0] != "Bad craft.yaml content:" {
		t.Errorf("header = %q", lines[0])
	}
	if lines[1] != "- "+msgNameChars+" (in field 'name')" {
		t.Errorf("line 1 = %q", lines[1])
	}
}

func TestUnmarshal_NotMapping(t *testing.T) {
	for _, data := range []any{nil, "text", []any{"a"}, 3} {
		t.Run(fmt.Sprintf("%T", data), func(t *testing.T) {
			_, err := Unmarshal(data)
			if !errors.Is(err, ErrNotMapping) {
				t.Errorf("err = %v, want ErrNotMapping", err)
			}
			var verr *ValidationError
			if errors.As(err, &verr) {
				t.Error("non-mapping input should not be a ValidationError")
			}
		})
	}
}

type recordingValidator struct {
	calls []string
	fail  map[string]error
}

func (r *recordingValidator) ValidatePart(name string, data any) error {
	r.calls = append(r.calls, name)
	return r.fail[name]
}

func TestUnmarshal_PartValidator(t *testing.T) {
	rv := &recordingValidator{fail: map[string]error{
		"b": validation.Failures{validation.Missing(validation.P("source"))},
		"c": errors.New("plugin not registered"),
	}}
	l := NewLoader(WithPartValidator(rv), WithFileName("project.yaml"))

	_, err := l.Unmarshal(minimal(map[string]any{"parts": map[string]any{
		"c": map[string]any{},
		"a": map[string]any{},
		"b": map[string]any{},
	}}))

	if want := []string{"a", "b", "c"}; !reflect.DeepEqual(rv.calls, want) {
		t.Errorf("calls = %v, want %v", rv.calls, want)
	}

	want := "Bad project.yaml content:\n" +
		"- field 'source' required in 'parts.b' configuration\n" +
		"- plugin not registered (in field 'parts.c')"
	if err == nil || err.Error() != want {
		t.Errorf("err = %v\nwant %s", err, want)
	}
}

func TestUnmarshal_PartsNotMapping(t *testing.T) {
	_, err := Unmarshal(minimal(map[string]any{"parts": []any{"a"}}))
	failures := failuresOf(t, err)
	if len(failures) != 1 || failures[0].Message != msgNotDict {
		t.Errorf("failures = %v, want %q", failures, msgNotDict)
	}
}

func TestUnmarshal_DefaultPartValidator(t *testing.T) {
	_, err := Unmarshal(minimal(map[string]any{"parts": map[string]any{
		"app": map[string]any{"plugin": "nil", "colour": "blue"},
	}}))
	failures := failuresOf(t, err)
	want := validation.Failures{validation.Unknown(validation.P("parts", "app", "colour"))}
	if !reflect.DeepEqual(failures, want) {
		t.Errorf("failures = %v, want %v", failures, want)
	}
}

func TestUnmarshal_NumericPartKeyReport(t *testing.T) {
	_, err := Unmarshal(minimal(map[string]any{"parts": map[string]any{
		"p": map[string]any{"plugin": "nil", "organize": map[string]any{"12": 3}},
	}}))
	var verr *ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("err = %v, want *ValidationError", err)
	}
	want := "Bad craft.yaml content:\n- got number, want string (in field 'parts.p.organize.12')"
	if got := verr.Error(); got != want {
		t.Errorf("report =\n%s\nwant\n%s", got, want)
	}
}

func TestMarshal_AllFieldsPresent(t *testing.T) {
	m, err := Unmarshal(minimal(nil))
	if err != nil {
		t.Fatalf("Unmarshal error: %v", err)
	}

	got := m.Marshal()
	want := map[string]any{
		"name": "name", "title": nil, "base": nil, "build-base": nil,
		"version": "0.0", "contact": nil, "donation": nil, "issues": nil,
		"source-code": nil, "website": nil, "summary": nil, "description": nil,
		"license": nil, "parts": map[string]any{},
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Marshal = %#v\nwant %#v", got, want)
	}
}

// roundTripCases generates combinations of valid field values.
func roundTripCases() []map[string]any {
	names := []string{"a", "name", "a-b-c", "2a"}
	versions := []string{"0.0", "1:2.3+git~4", "v1.0.0", "Z"}
	optional := []any{nil, "value", "x y z"}
	lists := []any{nil, "one", []any{}, []any{"a", "b", "c"}}
	titles := []any{nil, "My Title", "ab"}
	bases := []any{nil, "ubuntu@22.04", "core22"}

	var cases []map[string]any
	for i := 0; i < 48; i++ {
		cases = append(cases, map[string]any{
			"name":        names[i%len(names)],
			"title":       titles[i%len(titles)],
			"base":        bases[i%len(bases)],
			"build-base":  bases[(i/3)%len(bases)],
			"version":     versions[(i/2)%len(versions)],
			"contact":     lists[i%len(lists)],
			"donation":    lists[(i/2)%len(lists)],
			"issues":      lists[(i/4)%len(lists)],
			"source-code": []any{nil, "git+ssh://git.launchpad.net/project"}[i%2],
			"website":     []any{nil, "https://canonical.com"}[(i/2)%2],
			"summary":     optional[i%len(optional)],
			"description": optional[(i/3)%len(optional)],
			"license":     optional[(i/5)%len(optional)],
			"parts":       map[string]any{},
		})
	}
	return cases
}

func TestRoundTrip_UnmarshalMarshal(t *testing.T) {
	for i, data := range roundTripCases() {
		t.Run(fmt.Sprint(i), func(t *testing.T) {
			m, err := Unmarshal(data)
			if err != nil {
				t.Fatalf("Unmarshal error: %v", err)
			}
			if got := m.Marshal(); !reflect.DeepEqual(got, data) {
				t.Errorf("Marshal = %#v\nwant %#v", got, data)
			}
		})
	}
}

func TestRoundTrip_MarshalUnmarshal(t *testing.T) {
	for i, data := range roundTripCases() {
		t.Run(fmt.Sprint(i), func(t *testing.T) {
			m, err := Unmarshal(data)
			if err != nil {
				t.Fatalf("Unmarshal error: %v", err)
			}
			again, err := Unmarshal(m.Marshal())
			if err != nil {
				t.Fatalf("Unmarshal(Marshal()) error: %v", err)
			}
			if !m.Equal(again) {
				t.Errorf("round trip changed the manifest:\n%#v\n%#v", m, again)
			}
		})
	}
}

func TestRoundTrip_StripsWhitespace(t *testing.T) {
	data := minimal(map[string]any{"title": " padded ", "summary": "\tsummary\n"})
	m, err := Unmarshal(data)
	if err != nil {
		t.Fatalf("Unmarshal error: %v", err)
	}

	out := m.Marshal()
	if out["title"] != "padded" {
		t.Errorf("title = %q, want %q", out["title"], "padded")
	}
	if out["summary"] != "summary" {
		t.Errorf("summary = %q, want %q", out["summary"], "summary")
	}
}

func TestEffectiveBase(t *testing.T) {
	tests := []struct {
		base      any
		buildBase any
		want      string
	}{
		{nil, "build_base", "build_base"},
		{"base", nil, "base"},
		{"base", "build_base", "build_base"},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			m, err := Unmarshal(minimal(map[string]any{"base": tt.base, "build-base": tt.buildBase}))
			if err != nil {
				t.Fatalf("Unmarshal error: %v", err)
			}
			got, err := m.EffectiveBase()
			if err != nil {
				t.Fatalf("EffectiveBase error: %v", err)
			}
			if got != tt.want {
				t.Errorf("EffectiveBase = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestEffectiveBase_Undetermined(t *testing.T) {
	m, err := Unmarshal(minimal(nil))
	if err != nil {
		t.Fatalf("Unmarshal error: %v", err)
	}
	if _, err := m.EffectiveBase(); !errors.Is(err, ErrUndeterminedBase) {
		t.Errorf("err = %v, want ErrUndeterminedBase", err)
	}
}

func TestUpdate(t *testing.T) {
	l := NewLoader()
	m, err := l.Unmarshal(minimal(nil))
	if err != nil {
		t.Fatalf("Unmarshal error: %v", err)
	}

	if err := l.Update(m, "build-base", "core24"); err != nil {
		t.Fatalf("Update error: %v", err)
	}
	if base, _ := m.BuildBase(); base != "core24" {
		t.Errorf("BuildBase = %q, want %q", base, "core24")
	}

	if err := l.Update(m, "summary", " trimmed "); err != nil {
		t.Fatalf("Update error: %v", err)
	}
	if summary, _ := m.Summary(); summary != "trimmed" {
		t.Errorf("Summary = %q, want %q", summary, "trimmed")
	}

	if err := l.Update(m, "build_base", nil); err != nil {
		t.Fatalf("Update error: %v", err)
	}
	if _, ok := m.BuildBase(); ok {
		t.Error("BuildBase should be cleared")
	}

	if err := l.Update(m, "contact", []any{"a@example.com", "b@example.com"}); err != nil {
		t.Fatalf("Update error: %v", err)
	}
	if contact, _ := m.Contact(); !reflect.DeepEqual(contact, NewList("a@example.com", "b@example.com")) {
		t.Errorf("Contact = %#v, want a two item list", contact)
	}

	if err := l.Update(m, "contact", "a@example.com"); err != nil {
		t.Fatalf("Update error: %v", err)
	}
	if contact, _ := m.Contact(); !reflect.DeepEqual(contact, NewString("a@example.com")) {
		t.Errorf("Contact = %#v, want a single string", contact)
	}
}

func TestUpdate_RejectsInvalidValues(t *testing.T) {
	l := NewLoader()
	m, err := l.Unmarshal(minimal(nil))
	if err != nil {
		t.Fatalf("Unmarshal error: %v", err)
	}

	tests := []struct {
		field string
		value any
	}{
		{"name", "-bad"},
		{"name", nil},
		{"version", "a."},
		{"contact", []any{"x", "x"}},
		{"parts", map[string]any{"app": map[string]any{}}},
	}
	for _, tt := range tests {
		t.Run(tt.field, func(t *testing.T) {
			err := l.Update(m, tt.field, tt.value)
			failuresOf(t, err)
		})
	}

	if m.Name() != "name" || m.Version() != "0.0" {
		t.Errorf("manifest changed after failed updates: %q %q", m.Name(), m.Version())
	}
	if _, ok := m.Contact(); ok {
		t.Error("Contact changed after failed update")
	}
}

func TestUpdate_UnknownField(t *testing.T) {
	l := NewLoader()
	m, err := l.Unmarshal(minimal(nil))
	if err != nil {
		t.Fatalf("Unmarshal error: %v", err)
	}
	if err := l.Update(m, "colour", "blue"); !errors.Is(err, ErrUnknownField) {
		t.Errorf("err = %v, want ErrUnknownField", err)
	}
}

func TestSemanticVersion(t *testing.T) {
	tests := []struct {
		version string
		want    string
		ok      bool
	}{
		{"1.2.3", "1.2.3", true},
		{"v2.0.0-rc1", "2.0.0-rc1", true},
		{"1.0", "1.0.0", true},
		{"1:2.3+git~4", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.version, func(t *testing.T) {
			m, err := Unmarshal(minimal(map[string]any{"version": tt.version}))
			if err != nil {
				t.Fatalf("Unmarshal error: %v", err)
			}
			v, err := m.SemanticVersion()
			if (err == nil) != tt.ok {
				t.Fatalf("SemanticVersion error = %v, want ok=%v", err, tt.ok)
			}
			if tt.ok && v.String() != tt.want {
				t.Errorf("SemanticVersion = %q, want %q", v.String(), tt.want)
			}
		})
	}
}

func TestFieldNames(t *testing.T) {
	for _, f := range fields {
		ext := externalName(f.name)
		if strings.Contains(ext, "_") {
			t.Errorf("external name %q contains an underscore", ext)
		}
		if internalName(ext) != f.name {
			t.Errorf("internalName(%q) = %q, want %q", ext, internalName(ext), f.name)
		}
	}
}
