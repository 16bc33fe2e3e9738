package main

import (
	"fmt"

	"github.com/protokit/protobuild/internal/protoc"
	"github.com/spf13/cobra"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the resolved protoc binary and its version",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		path, err := protoc.Find()
		if err != nil {
			return err
		}
		version, err := protoc.QueryVersion(path)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s (libprotoc %s)\n", path, version)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
