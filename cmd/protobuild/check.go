package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Parse and link protos without generating code",
	Long: `Compile the .proto files in-process and report the messages and services each
file declares. Syntax errors and unresolved imports fail with positioned
diagnostics, without requiring protoc to be installed.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		builder, err := newBuilder(cmd)
		if err != nil {
			return err
		}

		reports, err := builder.Check(cmd.Context())
		if err != nil {
			return err
		}

		w := cmd.OutOrStdout()
		for _, report := range reports {
			fmt.Fprintf(w, "%s: %d message(s), %d service(s)\n",
				report.Path, len(report.Messages), len(report.Services))
			for _, service := range report.Services {
				fmt.Fprintf(w, "  service %s\n", service)
			}
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(checkCmd)
	addProtoFlags(checkCmd)
}
