package cmd

import (
	"encoding/json"
	"fmt"
	"runtime"

	"github.com/spf13/cobra"
)

// Build metadata, overridable at link time with
// -ldflags "-X github.com/mintaslang/dew/cmd.version=...".
var (
	version   = "dev"
	gitCommit = "unknown"
	buildTime = "unknown"
)

var versionFormat string

// versionCmd represents the version command
var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Show version information",
	Long: `Display version information for dew including the semantic version,
git commit, build timestamp, Go version and target platform.

Examples:
  dew version
  dew version --format json`,
	RunE: runVersion,
}

func init() {
	rootCmd.AddCommand(versionCmd)

	versionCmd.Flags().StringVarP(&versionFormat, "format", "f", "text", "Output format (text, json)")
}

func runVersion(cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()

	switch versionFormat {
	case "json":
		encoder := json.NewEncoder(out)
		encoder.SetIndent("", "  ")
		return encoder.Encode(map[string]string{
			"version":    version,
			"git_commit": gitCommit,
			"build_time": buildTime,
			"go_version": runtime.Version(),
			"platform":   runtime.GOOS + "/" + runtime.GOARCH,
		})
	case "text":
		fmt.Fprintf(out, "dew %s", version)
		if gitCommit != "unknown" && len(gitCommit) >= 7 {
			fmt.Fprintf(out, " (%s)", gitCommit[:7])
		}
		fmt.Fprintln(out)
		if buildTime != "unknown" {
			fmt.Fprintf(out, "Built: %s\n", buildTime)
		}
		fmt.Fprintf(out, "Go: %s\n", runtime.Version())
		fmt.Fprintf(out, "Platform: %s/%s\n", runtime.GOOS, runtime.GOARCH)
		return nil
	default:
		return fmt.Errorf("unsupported format: %s (supported: text, json)", versionFormat)
	}
}
