// Package protoc locates the protoc compiler and its Go plugins and
// assembles code-generation invocations.
package protoc

import (
	"bytes"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"
)

// Version is the version a protoc binary reports via --version.
type Version struct {
	Major int
	Minor int
	Patch int
}

// IsV3 reports whether the compiler speaks proto3, i.e. its major version
// is exactly 3.
func (v Version) IsV3() bool {
	return v.Major == 3
}

func (v Version) String() string {
	return fmt.Sprintf("%d.%d.%d", v.Major, v.Minor, v.Patch)
}

// Find resolves the protoc binary. The PROTOC environment variable takes
// precedence over PATH lookup so tests and vendored installs can substitute
// their own binary.
func Find() (string, error) {
	ensureGoBinInPath()

	if path := os.Getenv("PROTOC"); path != "" {
		if _, err := os.Stat(path); err != nil {
			return "", fmt.Errorf("PROTOC points to %s: %w", path, err)
		}
		return path, nil
	}

	path, err := exec.LookPath("protoc")
	if err != nil {
		return "", fmt.Errorf("protoc not found in PATH. Install instructions:\n" +
			"  protoc: https://grpc.io/docs/protoc-installation/")
	}
	return path, nil
}

// QueryVersion runs the binary with --version and parses its report.
func QueryVersion(path string) (Version, error) {
	out, err := exec.Command(path, "--version").Output()
	if err != nil {
		return Version{}, fmt.Errorf("failed to read version of %s: %w", path, err)
	}
	v, err := ParseVersion(strings.TrimSpace(string(out)))
	if err != nil {
		return Version{}, fmt.Errorf("%s: %w", path, err)
	}
	return v, nil
}

// ParseVersion parses a report of the form "libprotoc 3.21.12". Minor and
// patch components are optional; a pre-release suffix on the patch is
// ignored.
func ParseVersion(report string) (Version, error) {
	fields := strings.Fields(report)
	if len(fields) == 0 {
		return Version{}, fmt.Errorf("empty version report")
	}

	parts := strings.SplitN(fields[len(fields)-1], ".", 3)
	var v Version
	var err error

	if v.Major, err = strconv.Atoi(parts[0]); err != nil {
		return Version{}, fmt.Errorf("malformed version report %q", report)
	}
	if len(parts) > 1 {
		if v.Minor, err = strconv.Atoi(parts[1]); err != nil {
			return Version{}, fmt.Errorf("malformed version report %q", report)
		}
	}
	if len(parts) > 2 {
		patch, _, _ := strings.Cut(parts[2], "-")
		if v.Patch, err = strconv.Atoi(patch); err != nil {
			return Version{}, fmt.Errorf("malformed version report %q", report)
		}
	}
	return v, nil
}

// CheckPlugins verifies the protoc Go plugins are installed.
func CheckPlugins() error {
	for _, tool := range []string{"protoc-gen-go", "protoc-gen-go-grpc"} {
		if _, err := exec.LookPath(tool); err != nil {
			return fmt.Errorf("%s not found in PATH. Install instructions:\n"+
				"  protoc-gen-go:      go install google.golang.org/protobuf/cmd/protoc-gen-go@latest\n"+
				"  protoc-gen-go-grpc: go install google.golang.org/grpc/cmd/protoc-gen-go-grpc@latest",
				tool)
		}
	}
	return nil
}

// Invocation describes a single protoc code-generation run producing Go
// message types and gRPC stubs.
type Invocation struct {
	// Binary is the resolved protoc path.
	Binary string

	// IncludeDirs are handed to protoc as --proto_path entries.
	IncludeDirs []string

	// OutDir receives the generated sources.
	OutDir string

	// GoOpts are extra values passed to both --go_opt and --go-grpc_opt,
	// such as M<file>=<import path> mappings.
	GoOpts []string

	// Files are the proto sources to compile.
	Files []string
}

// Args assembles the protoc argument list for the invocation.
func (inv Invocation) Args() []string {
	args := make([]string, 0, len(inv.IncludeDirs)+2*len(inv.GoOpts)+len(inv.Files)+4)

	for _, dir := range inv.IncludeDirs {
		args = append(args, "--proto_path="+dir)
	}
	args = append(args,
		"--go_out="+inv.OutDir,
		"--go_opt=paths=source_relative",
		"--go-grpc_out="+inv.OutDir,
		"--go-grpc_opt=paths=source_relative",
	)
	for _, opt := range inv.GoOpts {
		args = append(args, "--go_opt="+opt, "--go-grpc_opt="+opt)
	}
	return append(args, inv.Files...)
}

// Run executes the invocation. On failure the error carries protoc's
// combined output, which holds the actual diagnostic (syntax error,
// unresolved import, plugin fault).
func (inv Invocation) Run() error {
	cmd := exec.Command(inv.Binary, inv.Args()...)

	var output bytes.Buffer
	cmd.Stdout = &output
	cmd.Stderr = &output

	if err := cmd.Run(); err != nil {
		if msg := strings.TrimSpace(output.String()); msg != "" {
			return fmt.Errorf("protoc: %v\n%s", err, msg)
		}
		return fmt.Errorf("protoc: %w", err)
	}
	return nil
}

// ensureGoBinInPath appends GOPATH/bin (or ~/go/bin) to PATH so protoc can
// find Go-installed plugins.
func ensureGoBinInPath() {
	goBin := os.Getenv("GOPATH")
	if goBin == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return
		}
		goBin = filepath.Join(home, "go")
	}
	goBin = filepath.Join(goBin, "bin")

	pathSep := ":"
	if runtime.GOOS == "windows" {
		pathSep = ";"
	}

	pathEnv := os.Getenv("PATH")
	for _, p := range strings.Split(pathEnv, pathSep) {
		if p == goBin {
			return
		}
	}

	os.Setenv("PATH", pathEnv+pathSep+goBin)
}
