package manifest

import (
	"errors"
	"fmt"
	"strings"

	"github.com/Masterminds/semver/v3"
	"github.com/lengau/craft-application/internal/logging"
	"github.com/lengau/craft-application/internal/parts"
	"github.com/lengau/craft-application/internal/validation"
	"github.com/rs/zerolog"
)

// DefaultFileName names the manifest in diagnostics when no other name is
// configured.
const DefaultFileName = "craft.yaml"

// PartValidator checks the raw value of a single part. Returning
// validation.Failures reports structured problems relative to the part;
// any other error is reported as a single message.
type PartValidator interface {
	ValidatePart(name string, data any) error
}

// Loader builds manifests. It is safe for concurrent use once constructed.
type Loader struct {
	parts    PartValidator
	fileName string
	logger   zerolog.Logger
}

// Option configures a Loader.
type Option func(*Loader)

// WithPartValidator replaces the part validator. A nil validator accepts
// every part.
func WithPartValidator(v PartValidator) Option {
	return func(l *Loader) { l.parts = v }
}

// WithFileName sets the file name shown in diagnostic headers.
func WithFileName(name string) Option {
	return func(l *Loader) { l.fileName = name }
}

// WithLogger sets the logger used for debug events.
func WithLogger(logger zerolog.Logger) Option {
	return func(l *Loader) { l.logger = logger }
}

// NewLoader creates a Loader that checks parts with the embedded part schema.
func NewLoader(opts ...Option) *Loader {
	l := &Loader{
		parts:    parts.Validator{},
		fileName: DefaultFileName,
		logger:   logging.Nop(),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

var defaultLoader = NewLoader()

// Unmarshal builds a Manifest from data using the default Loader.
func Unmarshal(data any) (*Manifest, error) {
	return defaultLoader.Unmarshal(data)
}

// FromFile loads a Manifest from path using the default Loader.
func FromFile(path string) (*Manifest, error) {
	return defaultLoader.FromFile(path)
}

// Unmarshal validates data, a mapping keyed by the hyphenated field names,
// and builds a Manifest from it. All field problems are collected into one
// *ValidationError. A non-mapping input fails with ErrNotMapping.
func (l *Loader) Unmarshal(data any) (*Manifest, error) {
	return l.unmarshal(data, l.fileName)
}

func (l *Loader) unmarshal(data any, fileName string) (*Manifest, error) {
	raw, ok := data.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("%w: got %T", ErrNotMapping, data)
	}

	m := &Manifest{}
	used := make(map[string]bool, len(raw))
	var failures validation.Failures

	for i := range fields {
		f := &fields[i]
		key, value, present := lookupValue(raw, f.name)
		if present {
			used[key] = true
		}
		path := validation.P(externalName(f.name))

		switch {
		case !present && f.required:
			failures = append(failures, validation.Missing(path))
		case !present || (value == nil && !f.required):
			f.set(m, nil)
		case value == nil:
			failures = append(failures, validation.Invalid(path, msgNone))
		default:
			v, errs := f.decode(l, path, value)
			if len(errs) > 0 {
				failures = append(failures, errs...)
				continue
			}
			f.set(m, v)
		}
	}

	for _, key := range sortedKeys(raw) {
		if !used[key] {
			failures = append(failures, validation.Unknown(validation.P(key)))
		}
	}

	if len(failures) > 0 {
		l.logger.Debug().Int("failures", len(failures)).Msg("manifest validation failed")
		return nil, &ValidationError{FileName: fileName, Failures: failures}
	}

	l.logger.Debug().Str("name", m.name).Str("version", m.version).Msg("manifest validated")
	return m, nil
}

// lookupValue finds a field under its file spelling first, then under its
// package spelling.
func lookupValue(raw map[string]any, name string) (key string, value any, ok bool) {
	for _, k := range []string{externalName(name), name} {
		if v, found := raw[k]; found {
			return k, v, true
		}
	}
	return "", nil, false
}

func (l *Loader) validatePart(path validation.Path, name string, data any) validation.Failures {
	if l.parts == nil {
		return nil
	}

	l.logger.Debug().Str("part", name).Msg("validating part")
	err := l.parts.ValidatePart(name, data)
	if err == nil {
		return nil
	}

	var failures validation.Failures
	if errors.As(err, &failures) {
		return failures.Prefix(path)
	}
	return validation.Failures{validation.Invalid(path, err.Error())}
}

// Marshal returns m as a plain mapping keyed by hyphenated field names.
// Every field is present; unset optional fields map to nil.
func (m *Manifest) Marshal() map[string]any {
	out := make(map[string]any, len(fields))
	for i := range fields {
		out[externalName(fields[i].name)] = fields[i].get(m)
	}
	return out
}

// Update sets a single field of m, named in either spelling, after running
// the same checks Unmarshal applies. On failure m is left unchanged.
func (l *Loader) Update(m *Manifest, name string, value any) error {
	f, ok := lookupField(name)
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownField, name)
	}

	path := validation.P(externalName(f.name))
	if value == nil {
		if f.required {
			return &ValidationError{FileName: l.fileName, Failures: validation.Failures{validation.Invalid(path, msgNone)}}
		}
		f.set(m, nil)
		return nil
	}

	v, errs := f.decode(l, path, value)
	if len(errs) > 0 {
		return &ValidationError{FileName: l.fileName, Failures: errs}
	}
	f.set(m, v)
	l.logger.Debug().Str("field", externalName(f.name)).Msg("manifest field updated")
	return nil
}

// EffectiveBase returns build-base when set, otherwise base. It fails with
// ErrUndeterminedBase when neither is set.
func (m *Manifest) EffectiveBase() (string, error) {
	if m.buildBase != nil {
		return *m.buildBase, nil
	}
	if m.base != nil {
		return *m.base, nil
	}
	return "", ErrUndeterminedBase
}

// SemanticVersion interprets the version as a semantic version. A leading
// "v" is tolerated. Versions that are valid for a manifest but not semver,
// such as "1:2.3+git~4", return an error.
func (m *Manifest) SemanticVersion() (*semver.Version, error) {
	v, err := semver.NewVersion(strings.TrimPrefix(m.version, "v"))
	if err != nil {
		return nil, fmt.Errorf("parsing version %q: %w", m.version, err)
	}
	return v, nil
}
