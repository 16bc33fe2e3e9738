package modpath

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestResolve(t *testing.T) {
	root := t.TempDir()
	gomod := "module example.test/thing\n\ngo 1.25\n"
	if err := os.WriteFile(filepath.Join(root, "go.mod"), []byte(gomod), 0o600); err != nil {
		t.Fatal(err)
	}

	nested := filepath.Join(root, "gen", "protos")
	if err := os.MkdirAll(nested, 0o750); err != nil {
		t.Fatal(err)
	}

	got, err := Resolve(nested)
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}

	want := Module{Path: "example.test/thing", Dir: root}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("module mismatch (-want +got):\n%s", diff)
	}
}

func TestResolve_MalformedGoMod(t *testing.T) {
	root := t.TempDir()
	if err := os.WriteFile(filepath.Join(root, "go.mod"), []byte("module \"unterminated\n"), 0o600); err != nil {
		t.Fatal(err)
	}

	if _, err := Resolve(root); err == nil {
		t.Fatal("Resolve() succeeded on a malformed go.mod")
	}
}

func TestResolve_MissingModuleDirective(t *testing.T) {
	root := t.TempDir()
	if err := os.WriteFile(filepath.Join(root, "go.mod"), []byte("go 1.25\n"), 0o600); err != nil {
		t.Fatal(err)
	}

	if _, err := Resolve(root); err == nil {
		t.Fatal("Resolve() succeeded without a module directive")
	}
}
