package uni20

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
)

// EnvBindingsDir is the environment variable consulted by ResolveBindings
// when no explicit bindings directory is supplied.
const EnvBindingsDir = "UNI20_BINDINGS_DIR"

// ErrBindingsNotConfigured is returned when no bindings directory was
// supplied by any source. Callers should treat this as "not configured"
// and skip rather than fail (tests use t.Skip, the CLI exits with a
// distinct code).
var ErrBindingsNotConfigured = errors.New("uni20 bindings directory not configured")

// ErrArtifactNotFound is returned when the bindings directory exists but
// contains no compiled uni20 extension module.
var ErrArtifactNotFound = errors.New("no compiled uni20 extension found in bindings directory")

// Bindings describes a resolved uni20 bindings directory: the directory that
// the probe will prepend to the interpreter's module search path, and the
// compiled extension artifact found inside it.
type Bindings struct {
	// Dir is the absolute path to the bindings directory,
	// typically <build>/bindings/python.
	Dir string

	// Artifact is the absolute path to the compiled extension module,
	// e.g. uni20.cpython-312-x86_64-linux-gnu.so.
	Artifact string
}

// artifactPatterns matches the compiled extension module across platforms.
// nanobind names the artifact after the module with an ABI-tagged suffix.
var artifactPatterns = []string{"uni20*.so", "uni20*.pyd", "uni20*.dylib"}

// ResolveBindings resolves the uni20 bindings directory.
//
// Resolution order:
//  1. explicitDir, if non-empty (CLI positional argument or --bindings-dir)
//  2. the UNI20_BINDINGS_DIR environment variable, read through getenv
//
// getenv may be nil, in which case os.Getenv is used. Passing a lookup
// function keeps resolution testable without mutating the process
// environment.
//
// The resolved directory must exist and contain a compiled uni20 extension;
// otherwise ErrArtifactNotFound (or a wrapped stat error) is returned. If no
// source supplies a directory, ErrBindingsNotConfigured is returned.
func ResolveBindings(explicitDir string, getenv func(string) string) (*Bindings, error) {
	if getenv == nil {
		getenv = os.Getenv
	}

	dir := explicitDir
	if dir == "" {
		dir = getenv(EnvBindingsDir)
	}
	if dir == "" {
		return nil, ErrBindingsNotConfigured
	}

	abs, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("error resolving bindings directory %q: %v", dir, err)
	}

	info, err := os.Stat(abs)
	if err != nil {
		return nil, fmt.Errorf("bindings directory %q: %w", abs, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("bindings path %q is not a directory", abs)
	}

	artifact, err := findArtifact(abs)
	if err != nil {
		return nil, err
	}

	return &Bindings{Dir: abs, Artifact: artifact}, nil
}

// findArtifact locates the compiled uni20 extension module inside dir.
// If several artifacts match (stale builds for older interpreters), the
// lexicographically last one wins, which favors the newest ABI tag.
func findArtifact(dir string) (string, error) {
	var matches []string
	for _, pattern := range artifactPatterns {
		m, err := filepath.Glob(filepath.Join(dir, pattern))
		if err != nil {
			return "", fmt.Errorf("error scanning bindings directory: %v", err)
		}
		matches = append(matches, m...)
	}
	if len(matches) == 0 {
		return "", fmt.Errorf("%w: %s", ErrArtifactNotFound, dir)
	}
	sort.Strings(matches)
	return matches[len(matches)-1], nil
}
