package main

import (
	"fmt"

	"github.com/protokit/protobuild"
	"github.com/spf13/cobra"
)

var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Generate Go sources and gRPC stubs from a directory of protos",
	Long: `Discover the .proto files directly in the proto directory, compile them with
a version 3 protoc into the output directory, and write a mod.go index of the
generated source units. The output directory is cleared first, so no stale
file survives between runs.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		builder, err := newBuilder(cmd)
		if err != nil {
			return err
		}

		prefix, err := cmd.Flags().GetString("go-package-prefix")
		if err != nil {
			return err
		}
		builder.GoPackagePrefix(prefix)

		if err := builder.Generate(); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), "Successfully compiled all proto files")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(generateCmd)
	addProtoFlags(generateCmd)
	generateCmd.Flags().StringP("out", "o", "", "output directory (default $OUT_DIR/protos)")
	generateCmd.Flags().String("go-package-prefix", "", "import path prefix for protos without a go_package option")
}

// newBuilder configures a Builder from the shared discovery flags. OUT_DIR
// is only consulted by commands that define an --out flag and run without
// an override, so commands that never write stay usable without it.
func newBuilder(cmd *cobra.Command) (*protobuild.Builder, error) {
	protoDir, err := cmd.Flags().GetString("proto-dir")
	if err != nil {
		return nil, err
	}
	include, err := cmd.Flags().GetString("include")
	if err != nil {
		return nil, err
	}
	if include == "" {
		include = protoDir
	}

	builder := protobuild.NewWithOutputRoot(".")
	if cmd.Flags().Lookup("out") != nil {
		out, err := cmd.Flags().GetString("out")
		if err != nil {
			return nil, err
		}
		if out != "" {
			builder.OutDir(out)
		} else if builder, err = protobuild.New(); err != nil {
			return nil, err
		}
	}

	return builder.IncludeDir(include).SearchDirForProtos(protoDir), nil
}
