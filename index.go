package protobuild

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"golang.org/x/tools/imports"

	"github.com/protokit/protobuild/internal/strcase"
)

const (
	indexFile   = "mod.go"
	sourceExt   = ".go"
	generatedPb = ".pb"
)

// writeIndexFile writes <outDir>/mod.go, the aggregating index declaring
// the generated source units in sorted order.
func (b *Builder) writeIndexFile() error {
	units, err := listGeneratedUnits(b.outDir)
	if err != nil {
		return err
	}

	target := filepath.Join(b.outDir, indexFile)
	content := renderIndex(packageNameFor(b.outDir), units)

	formatted, err := imports.Process(target, []byte(content), nil)
	if err != nil {
		return fmt.Errorf("failed to format index file: %w", err)
	}
	if err := os.WriteFile(target, formatted, 0o600); err != nil {
		return fmt.Errorf("failed to write index file: %w", err)
	}
	return nil
}

// listGeneratedUnits returns the sorted stems of the .go files directly in
// dir. The generator's conventional .pb suffix is stripped, and the "mod"
// stem is excluded so the index never declares itself or a leftover from a
// previous run.
func listGeneratedUnits(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read output directory %s: %w", dir, err)
	}

	var units []string
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || filepath.Ext(name) != sourceExt {
			continue
		}

		stem := strings.TrimSuffix(name, sourceExt)
		stem = strings.TrimSuffix(stem, generatedPb)
		if stem == "mod" {
			continue
		}
		units = append(units, stem)
	}

	sort.Strings(units)
	return units, nil
}

func renderIndex(pkg string, units []string) string {
	var builder strings.Builder

	builder.WriteString("// Code generated by protobuild. DO NOT EDIT.\n\n")
	builder.WriteString("package ")
	builder.WriteString(pkg)
	builder.WriteString("\n\n")
	builder.WriteString("// GeneratedUnits lists the source units generated into this package,\n")
	builder.WriteString("// one per compiled proto module and gRPC service, sorted lexicographically.\n")
	builder.WriteString("var GeneratedUnits = []string{\n")
	for _, unit := range units {
		builder.WriteString("\t\"")
		builder.WriteString(unit)
		builder.WriteString("\",\n")
	}
	builder.WriteString("}\n")

	return builder.String()
}

// packageNameFor derives the index file's package clause from the output
// directory's base name.
func packageNameFor(dir string) string {
	if name := strcase.ToIdentifier(filepath.Base(dir)); name != "" {
		return name
	}
	return "protos"
}
