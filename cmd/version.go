package cmd

import (
	"fmt"
	"runtime/debug"

	"github.com/internetarchive/linzstac/internal/pkg/utils"
	"github.com/spf13/cobra"
)

func versionCMD() *cobra.Command {
	versionCmd := &cobra.Command{
		Use:   "version",
		Short: "Show the version number",
		Run: func(cmd *cobra.Command, _ []string) {
			version := utils.GetVersion()

			fmt.Fprintln(cmd.OutOrStdout(), "linzstac", version.Version)
			fmt.Fprintln(cmd.OutOrStdout(), "- go/version:", version.GoVersion)
		},
	}

	versionCmd.AddCommand(&cobra.Command{
		Use:   "deps",
		Short: "Show the dependencies",
		Run: func(cmd *cobra.Command, _ []string) {
			info, ok := debug.ReadBuildInfo()
			if !ok {
				return
			}

			for _, dep := range info.Deps {
				fmt.Fprintf(cmd.OutOrStdout(), "%s %s (%s)", dep.Path, dep.Version, dep.Sum)
				if dep.Replace != nil {
					fmt.Fprintf(cmd.OutOrStdout(), " => %s %s (%s)", dep.Replace.Path, dep.Replace.Version, dep.Replace.Sum)
				}
				fmt.Fprintln(cmd.OutOrStdout())
			}
		},
	})

	return versionCmd
}
