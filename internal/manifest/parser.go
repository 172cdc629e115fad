package manifest

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/lengau/craft-application/internal/safeyaml"
)

// FromFile reads path with the strict YAML loader and unmarshals the result.
// A missing file fails with ErrFileMissing; a file that cannot be parsed
// fails with the loader's error, wrapped.
func (l *Loader) FromFile(path string) (*Manifest, error) {
	data, err := l.readFile(path)
	if err != nil {
		return nil, err
	}
	return l.unmarshal(data, filepath.Base(path))
}

// readFile opens path and parses it. The file is closed on every return.
func (l *Loader) readFile(path string) (any, error) {
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w %q", ErrFileMissing, path)
		}
		return nil, fmt.Errorf("reading file %s: %w", path, err)
	}
	defer f.Close()

	l.logger.Debug().Str("path", path).Msg("loading manifest")
	data, err := safeyaml.Load(f)
	if err != nil {
		return nil, fmt.Errorf("parsing manifest %s: %w", path, err)
	}
	return data, nil
}
