package protobuild

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestListGeneratedUnits(t *testing.T) {
	dir := t.TempDir()

	files := []string{"a.pb.go", "a_grpc.pb.go", "b.pb.go", "helper.go", "mod.go", "readme.txt"}
	for _, name := range files {
		if err := os.WriteFile(filepath.Join(dir, name), []byte("x"), 0o600); err != nil {
			t.Fatal(err)
		}
	}
	if err := os.MkdirAll(filepath.Join(dir, "nested"), 0o750); err != nil {
		t.Fatal(err)
	}

	got, err := listGeneratedUnits(dir)
	if err != nil {
		t.Fatalf("listGeneratedUnits() error = %v", err)
	}

	want := []string{"a", "a_grpc", "b", "helper"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("units mismatch (-want +got):\n%s", diff)
	}
}

func TestListGeneratedUnits_MissingDir(t *testing.T) {
	if _, err := listGeneratedUnits(filepath.Join(t.TempDir(), "absent")); err == nil {
		t.Fatal("listGeneratedUnits() succeeded on a missing directory")
	}
}

func TestWriteIndexFile(t *testing.T) {
	outDir := filepath.Join(t.TempDir(), "protos")
	if err := os.MkdirAll(outDir, 0o750); err != nil {
		t.Fatal(err)
	}
	for _, name := range []string{"b.pb.go", "a.pb.go", "a_grpc.pb.go"} {
		if err := os.WriteFile(filepath.Join(outDir, name), []byte("x"), 0o600); err != nil {
			t.Fatal(err)
		}
	}

	b := NewWithOutputRoot(t.TempDir()).OutDir(outDir)
	if err := b.writeIndexFile(); err != nil {
		t.Fatalf("writeIndexFile() error = %v", err)
	}

	first, err := os.ReadFile(filepath.Join(outDir, "mod.go"))
	if err != nil {
		t.Fatal(err)
	}
	want := `// Code generated by protobuild. DO NOT EDIT.

package protos

// GeneratedUnits lists the source units generated into this package,
// one per compiled proto module and gRPC service, sorted lexicographically.
var GeneratedUnits = []string{
	"a",
	"a_grpc",
	"b",
}
`
	if diff := cmp.Diff(want, string(first)); diff != "" {
		t.Errorf("index content mismatch (-want +got):\n%s", diff)
	}

	// A second pass sees the mod.go just written, excludes it, and
	// reproduces identical bytes.
	if err := b.writeIndexFile(); err != nil {
		t.Fatalf("second writeIndexFile() error = %v", err)
	}
	second, err := os.ReadFile(filepath.Join(outDir, "mod.go"))
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff(string(first), string(second)); diff != "" {
		t.Errorf("index not idempotent (-first +second):\n%s", diff)
	}
}

func TestPackageNameFor(t *testing.T) {
	tests := []struct {
		dir  string
		want string
	}{
		{dir: filepath.Join("build", "protos"), want: "protos"},
		{dir: "gen-protos", want: "genprotos"},
		{dir: "Protos.v1", want: "protosv1"},
		{dir: "123gen", want: "_123gen"},
		{dir: "---", want: "protos"},
	}

	for _, tt := range tests {
		if got := packageNameFor(tt.dir); got != tt.want {
			t.Errorf("packageNameFor(%q) = %q, want %q", tt.dir, got, tt.want)
		}
	}
}
