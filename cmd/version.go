package cmd

import (
	"fmt"
	"runtime"
	"runtime/debug"

	"github.com/bnema/life-assistant/internal/version"
	"github.com/spf13/cobra"
)

func newVersionCmd() *cobra.Command {
	var long bool

	cmd := &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if !long {
				_, err := fmt.Fprintln(cmd.OutOrStdout(), resolvedVersion())
				return err
			}

			_, err := fmt.Fprintf(cmd.OutOrStdout(), "la %s (%s, %s/%s)\n", resolvedVersion(), runtime.Version(), runtime.GOOS, runtime.GOARCH)
			return err
		},
	}

	cmd.Flags().BoolVar(&long, "long", false, "Include Go version and platform")

	return cmd
}

func resolvedVersion() string {
	if version.Version != "dev" {
		return version.Version
	}
	if info, ok := debug.ReadBuildInfo(); ok && info.Main.Version != "" && info.Main.Version != "(devel)" {
		return info.Main.Version
	}

	return version.Version
}
