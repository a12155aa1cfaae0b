package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var versionInfo = struct {
	Version string
	Commit  string
	Date    string
}{
	Version: "dev",
	Commit:  "none",
	Date:    "unknown",
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintln(cmd.OutOrStdout(), versionString())
	},
}

// SetVersion records build information injected at link time
func SetVersion(version, commit, date string) {
	versionInfo.Version = version
	versionInfo.Commit = commit
	versionInfo.Date = date
	rootCmd.Version = versionString()
}

func versionString() string {
	return fmt.Sprintf("%s (commit %s, built %s)", versionInfo.Version, versionInfo.Commit, versionInfo.Date)
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
