package protobuild

import (
	"context"
	"fmt"

	"github.com/bufbuild/protocompile"
	"google.golang.org/protobuf/reflect/protoreflect"
)

// FileReport summarizes one successfully checked proto file.
type FileReport struct {
	// Path is the file's name as protoc would know it.
	Path string

	// Messages are the top-level message names declared in the file.
	Messages []string

	// Services are the gRPC service names declared in the file.
	Services []string
}

// Check parses and links the configured inputs in-process, without invoking
// protoc, so malformed protos fail fast with positioned diagnostics. It
// returns one report per input file, in input order.
func (b *Builder) Check(ctx context.Context) ([]FileReport, error) {
	if b.err != nil {
		return nil, b.err
	}
	if len(b.files) == 0 {
		return nil, fmt.Errorf("no files specified for checking")
	}

	compiler := protocompile.Compiler{
		Resolver: protocompile.WithStandardImports(&protocompile.SourceResolver{
			ImportPaths: []string{b.includeDir, "."},
		}),
	}

	names := make([]string, len(b.files))
	for i, f := range b.files {
		names[i] = b.sourceName(f)
	}

	files, err := compiler.Compile(ctx, names...)
	if err != nil {
		return nil, fmt.Errorf("failed to check proto files: %w", err)
	}

	reports := make([]FileReport, len(files))
	for i, fd := range files {
		reports[i] = summarize(fd)
	}
	return reports, nil
}

func summarize(fd protoreflect.FileDescriptor) FileReport {
	report := FileReport{Path: fd.Path()}

	messages := fd.Messages()
	for i := 0; i < messages.Len(); i++ {
		report.Messages = append(report.Messages, string(messages.Get(i).Name()))
	}

	services := fd.Services()
	for i := 0; i < services.Len(); i++ {
		report.Services = append(report.Services, string(services.Get(i).Name()))
	}
	return report
}
