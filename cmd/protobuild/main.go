// protobuild drives proto code generation from Makefiles and CI without a
// hand-written Go driver. Every failure terminates with a non-zero exit so
// a broken generation step halts the build immediately.
package main

import (
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:          "protobuild",
	Short:        "Compile .proto definitions into Go sources and gRPC stubs",
	SilenceUsage: true,
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func addProtoFlags(cmd *cobra.Command) {
	cmd.Flags().StringP("proto-dir", "p", "protos", "directory searched for .proto files")
	cmd.Flags().StringP("include", "I", "", "import search path (defaults to the proto directory)")
}
