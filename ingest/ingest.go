// Package ingest loads ECG recordings from disk into a recording.Source.
//
// Three formats are understood, selected by file extension in [ForPath]:
//
//   - .csv: Apple Watch single-lead exports, or multi-channel Holter
//     exports with channel_1..channel_3 columns
//   - .npz: NumPy archives holding fs and ecg_1..ecg_3 arrays
//   - .edf: European Data Format, first three signals
//
// Samples are returned in the unit recorded by the file; the analysis
// pipeline does its own rescaling.
package ingest

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/cwbudde/algo-ecg/ecg/recording"
)

// DefaultUnit is assumed when a file does not state its unit.
const DefaultUnit = "uV"

var (
	// ErrUnsupportedFormat is returned by ForPath for unknown extensions.
	ErrUnsupportedFormat = errors.New("ingest: unsupported file format")
	// ErrMalformed wraps every parse failure.
	ErrMalformed = errors.New("ingest: malformed file")
	// ErrMissingField reports a required column, array or header entry
	// that is absent.
	ErrMissingField = errors.New("ingest: missing field")
)

// Loader reads one recording file.
type Loader interface {
	Load(path string) (recording.Source, error)
}

// LoaderFunc adapts a function to Loader.
type LoaderFunc func(path string) (recording.Source, error)

// Load calls f(path).
func (f LoaderFunc) Load(path string) (recording.Source, error) { return f(path) }

var loaders = map[string]Loader{
	".csv": LoaderFunc(LoadCSV),
	".npz": LoaderFunc(LoadNPZ),
	".edf": LoaderFunc(LoadEDF),
}

// ForPath returns the loader for the extension of path.
func ForPath(path string) (Loader, error) {
	ext := strings.ToLower(filepath.Ext(path))
	l, ok := loaders[ext]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, ext)
	}
	return l, nil
}

// Load selects a loader for path and runs it.
func Load(path string) (recording.Source, error) {
	l, err := ForPath(path)
	if err != nil {
		return recording.Source{}, err
	}
	return l.Load(path)
}

// Extensions lists the supported file extensions.
func Extensions() []string {
	return []string{".csv", ".edf", ".npz"}
}

func malformed(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrMalformed, fmt.Sprintf(format, args...))
}
