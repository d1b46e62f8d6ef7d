package commands

import (
	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	scratchhttp "github.com/fivetwenty-io/scratch-client/internal/http"
)

// VersionInfo describes the CLI build.
type VersionInfo struct {
	Version       string `json:"version"        yaml:"version"`
	Commit        string `json:"commit"         yaml:"commit"`
	Built         string `json:"built"          yaml:"built"`
	ClientVersion string `json:"client_version" yaml:"client_version"`
}

// NewVersionCommand creates the version command.
func NewVersionCommand(version, commit, date string) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Display version information",
		Long:  "Display detailed version information about the Scratch CLI",
		RunE: func(cmd *cobra.Command, args []string) error {
			info := VersionInfo{
				Version:       version,
				Commit:        commit,
				Built:         date,
				ClientVersion: scratchhttp.Version,
			}

			return output(cmd, info, func(table *tablewriter.Table) {
				table.Header("Property", "Value")
				_ = table.Append("Version", info.Version)
				_ = table.Append("Commit", info.Commit)
				_ = table.Append("Built", info.Built)
				_ = table.Append("Client", info.ClientVersion)
			})
		},
	}
}
