// Package manifest loads, validates and serializes project manifests.
//
// A manifest is read from YAML through the strict loader in package safeyaml,
// then checked field by field against a static field table. Construction
// either yields a fully validated *Manifest or a *ValidationError listing
// every problem found, rendered with the package validation formatter:
//
//	m, err := manifest.FromFile("craft.yaml")
//	var verr *manifest.ValidationError
//	switch {
//	case errors.Is(err, manifest.ErrFileMissing):
//	    // offer to create one
//	case errors.As(err, &verr):
//	    fmt.Fprintln(os.Stderr, verr)
//	}
//
// Field names are written with hyphens in manifest files (build-base) and
// with underscores inside this package (build_base). The translation happens
// only in Unmarshal, Marshal and Update.
//
// Each entry of the parts mapping is handed to a PartValidator; its failures
// are reported under parts.<name>.
package manifest
