package scaffold

import (
	"bytes"
	"embed"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"text/template"
	"time"

	"github.com/lengau/craft-application/internal/manifest"
)

//go:embed templates/manifest.yaml.tmpl
var templateFS embed.FS

const templatePath = "templates/manifest.yaml.tmpl"

// ErrExists is returned when the target manifest file is already present.
var ErrExists = errors.New("manifest file already exists")

// Data holds all template variables available to the manifest template.
type Data struct {
	Name    string // e.g., "my-project"
	Title   string // optional
	Base    string // optional, e.g., "ubuntu@24.04"
	Version string // e.g., "0.1"
	Summary string
	License string // optional
	Year    int
}

// Result holds the outcome of a scaffold generation.
type Result struct {
	Path     string
	Warnings []string
}

// NewData creates Data with defaults for the fields left empty.
func NewData(name, base string) *Data {
	return &Data{
		Name:    name,
		Base:    base,
		Version: "0.1",
		Summary: fmt.Sprintf("Project %s", name),
		Year:    time.Now().Year(),
	}
}

// Generate renders the manifest template into outputDir/fileName and then
// loads the result back. Validation problems do not fail the generation;
// they are returned as warnings so the user can fix the file by hand.
func Generate(data *Data, outputDir, fileName string) (*Result, error) {
	outPath := filepath.Join(outputDir, fileName)
	if _, err := os.Stat(outPath); err == nil {
		return nil, fmt.Errorf("%w: %s", ErrExists, outPath)
	}

	tmplBytes, err := templateFS.ReadFile(templatePath)
	if err != nil {
		return nil, fmt.Errorf("reading template %s: %w", templatePath, err)
	}

	tmpl, err := template.New(filepath.Base(templatePath)).
		Funcs(template.FuncMap{"quote": strconv.Quote}).
		Parse(string(tmplBytes))
	if err != nil {
		return nil, fmt.Errorf("parsing template %s: %w", templatePath, err)
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return nil, fmt.Errorf("executing template %s: %w", templatePath, err)
	}

	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return nil, fmt.Errorf("creating output directory: %w", err)
	}
	if err := os.WriteFile(outPath, buf.Bytes(), 0644); err != nil {
		return nil, fmt.Errorf("writing %s: %w", outPath, err)
	}

	result := &Result{Path: outPath}

	// Load the generated manifest through the same path users hit.
	if _, err := manifest.FromFile(outPath); err != nil {
		var verr *manifest.ValidationError
		if errors.As(err, &verr) {
			for _, f := range verr.Failures {
				result.Warnings = append(result.Warnings, f.Path.String()+": "+f.Message)
			}
		} else {
			result.Warnings = append(result.Warnings, fmt.Sprintf("Could not validate manifest: %v", err))
		}
	}

	return result, nil
}
