// Package protobuild compiles .proto interface definitions into Go sources
// and gRPC service stubs by orchestrating the protoc compiler, then writes
// an aggregating index file listing the generated source units.
//
// It is designed to be called from go:generate drivers and build scripts.
// Configuration methods chain; the first recorded failure is surfaced by
// Generate, and the caller is expected to treat any error as fatal to the
// build:
//
//	b, err := protobuild.New()
//	if err != nil {
//		log.Fatal(err)
//	}
//	if err := b.SearchDirForProtos("protos").Generate(); err != nil {
//		log.Fatal(err)
//	}
package protobuild

import (
	"fmt"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/protokit/protobuild/internal/modpath"
	"github.com/protokit/protobuild/internal/protoc"
)

const protoExt = ".proto"

// Builder configures a single code-generation run. It is constructed once,
// optionally mutated, and consumed by one Generate call.
type Builder struct {
	outDir          string
	files           []string
	includeDir      string
	goPackagePrefix string
	err             error
}

// New creates a Builder whose output directory defaults to $OUT_DIR/protos.
// It fails when OUT_DIR is unset; the build system must provide an output
// root.
func New() (*Builder, error) {
	root := os.Getenv("OUT_DIR")
	if root == "" {
		return nil, fmt.Errorf("no OUT_DIR defined")
	}
	return NewWithOutputRoot(root), nil
}

// NewWithOutputRoot creates a Builder writing into <root>/protos. It exists
// so callers and tests can supply the output root without going through the
// environment.
func NewWithOutputRoot(root string) *Builder {
	return &Builder{
		outDir:     filepath.Join(root, "protos"),
		includeDir: "protos",
	}
}

// OutDir overrides the output directory.
func (b *Builder) OutDir(dir string) *Builder {
	b.outDir = dir
	return b
}

// IncludeDir overrides the search path protoc uses to resolve imports
// inside the proto files.
func (b *Builder) IncludeDir(dir string) *Builder {
	b.includeDir = dir
	return b
}

// Files sets the input files explicitly, replacing any previous list.
func (b *Builder) Files(paths ...string) *Builder {
	b.files = append([]string(nil), paths...)
	return b
}

// GoPackagePrefix sets the import-path prefix used to synthesize go_package
// mappings for protos that do not declare one. When left empty, Generate
// derives it from the enclosing go.mod and the output directory where
// possible.
func (b *Builder) GoPackagePrefix(prefix string) *Builder {
	b.goPackagePrefix = prefix
	return b
}

// SearchDirForProtos replaces the input list with the .proto files found
// directly in dir. Subdirectories and other extensions are skipped. The
// list keeps the directory enumeration order.
func (b *Builder) SearchDirForProtos(dir string) *Builder {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return b.fail(fmt.Errorf("failed to read proto directory: %w", err))
	}

	var files []string
	for _, entry := range entries {
		info, err := entry.Info()
		if err != nil {
			return b.fail(fmt.Errorf("failed to inspect %s: %w", filepath.Join(dir, entry.Name()), err))
		}
		if !info.Mode().IsRegular() || filepath.Ext(entry.Name()) != protoExt {
			continue
		}
		files = append(files, filepath.Join(dir, entry.Name()))
	}

	b.files = files
	return b
}

// Generate runs the pipeline: clear and recreate the output directory,
// resolve a version 3 protoc and its Go plugins, compile the inputs, and
// write the mod.go index. A configuration error recorded earlier is
// returned before anything touches the filesystem.
func (b *Builder) Generate() error {
	if b.err != nil {
		return b.err
	}
	if len(b.files) == 0 {
		return fmt.Errorf("no files specified for generation")
	}

	if err := b.prepareOutDir(); err != nil {
		return err
	}
	if err := b.generateFiles(); err != nil {
		return err
	}
	return b.writeIndexFile()
}

// prepareOutDir recreates the output directory from scratch so no stale
// generated file survives between runs.
func (b *Builder) prepareOutDir() error {
	if _, err := os.Stat(b.outDir); err == nil {
		if err := os.RemoveAll(b.outDir); err != nil {
			return fmt.Errorf("failed to clear output directory %s: %w", b.outDir, err)
		}
	}
	if err := os.MkdirAll(b.outDir, 0o750); err != nil {
		return fmt.Errorf("failed to create output directory %s: %w", b.outDir, err)
	}
	return nil
}

func (b *Builder) generateFiles() error {
	bin, err := b.resolveCompiler()
	if err != nil {
		return err
	}

	inv := protoc.Invocation{
		Binary:      bin,
		IncludeDirs: []string{b.includeDir},
		OutDir:      b.outDir,
		GoOpts:      b.goPackageOpts(),
		Files:       b.files,
	}
	if err := inv.Run(); err != nil {
		return fmt.Errorf("failed to compile protobuf and grpc files: %w", err)
	}
	return nil
}

// resolveCompiler locates protoc, gates on its major version, and verifies
// the Go plugins are available. A wrong-version compiler must stop the
// build before any generation attempt.
func (b *Builder) resolveCompiler() (string, error) {
	bin, err := protoc.Find()
	if err != nil {
		return "", err
	}

	version, err := protoc.QueryVersion(bin)
	if err != nil {
		return "", err
	}
	if !version.IsV3() {
		return "", fmt.Errorf("%s reports version %s, want major version 3", bin, version)
	}

	if err := protoc.CheckPlugins(); err != nil {
		return "", err
	}
	return bin, nil
}

// goPackageOpts synthesizes M<file>=<import path> mappings so protos
// without a go_package option still land in an importable package. When no
// prefix is configured and none can be derived, the protos must declare
// go_package themselves and no mappings are emitted.
func (b *Builder) goPackageOpts() []string {
	prefix := b.goPackagePrefix
	if prefix == "" {
		prefix = b.derivePackagePrefix()
	}
	if prefix == "" {
		return nil
	}

	opts := make([]string, 0, len(b.files))
	for _, f := range b.files {
		opts = append(opts, "M"+b.sourceName(f)+"="+prefix)
	}
	return opts
}

// derivePackagePrefix maps the output directory to an import path under the
// enclosing Go module, e.g. <module path>/gen/protos.
func (b *Builder) derivePackagePrefix() string {
	mod, err := modpath.Resolve(".")
	if err != nil {
		return ""
	}
	abs, err := filepath.Abs(b.outDir)
	if err != nil {
		return ""
	}
	rel, err := filepath.Rel(mod.Dir, abs)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return ""
	}
	return path.Join(mod.Path, filepath.ToSlash(rel))
}

// sourceName is the slash-separated name protoc knows the file by, relative
// to the include directory when the file lives under it.
func (b *Builder) sourceName(file string) string {
	if rel, err := filepath.Rel(b.includeDir, file); err == nil &&
		rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return filepath.ToSlash(rel)
	}
	return filepath.ToSlash(file)
}

// fail records the first configuration error for Generate to report.
func (b *Builder) fail(err error) *Builder {
	if b.err == nil {
		b.err = err
	}
	return b
}
