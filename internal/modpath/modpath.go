// Package modpath resolves the Go module enclosing a directory.
package modpath

import (
	"fmt"
	"os"
	"path/filepath"

	"golang.org/x/mod/modfile"
)

// Module describes the Go module enclosing a directory.
type Module struct {
	// Path is the module path from the go.mod module directive.
	Path string

	// Dir is the directory containing go.mod.
	Dir string
}

// Resolve walks from dir toward the filesystem root looking for a go.mod
// and parses its module path. The returned error wraps os.ErrNotExist when
// no go.mod encloses dir.
func Resolve(dir string) (Module, error) {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return Module{}, err
	}

	for {
		name := filepath.Join(abs, "go.mod")
		data, err := os.ReadFile(name)
		switch {
		case err == nil:
			f, err := modfile.Parse(name, data, nil)
			if err != nil {
				return Module{}, fmt.Errorf("failed to parse %s: %w", name, err)
			}
			if f.Module == nil {
				return Module{}, fmt.Errorf("%s has no module directive", name)
			}
			return Module{Path: f.Module.Mod.Path, Dir: abs}, nil
		case !os.IsNotExist(err):
			return Module{}, err
		}

		parent := filepath.Dir(abs)
		if parent == abs {
			return Module{}, fmt.Errorf("no go.mod found in or above %s: %w", dir, os.ErrNotExist)
		}
		abs = parent
	}
}
