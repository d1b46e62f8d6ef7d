package commands

import (
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/fivetwenty-io/scratch-client/internal/constants"
)

// EnvKeyReplacer maps dashed keys such as page-size onto SCRATCH_PAGE_SIZE.
var EnvKeyReplacer = strings.NewReplacer("-", "_")

// NewRootCommand creates the scratch command with its global flags bound to
// viper and every subcommand attached.
func NewRootCommand(version, commit, date string) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "scratch",
		Short: "Scratch API CLI",
		Long: `A command-line interface for the Scratch API.

Users and projects are loaded lazily and shared between commands, and
collections such as followers or remixes are streamed page by page.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	flags := rootCmd.PersistentFlags()

	// Global flags
	flags.StringP("config", "c", "", "config file (default is $HOME/.scratch/config.yml)")
	flags.StringP("api", "a", constants.DefaultAPIEndpoint, "API endpoint URL")
	flags.String("site", constants.DefaultSiteEndpoint, "website endpoint URL used for login")
	flags.StringP("output", "o", constants.FormatTable, "output format (table, json, yaml)")
	flags.BoolP("verbose", "v", false, "verbose output")
	flags.String("session-file", "", "session file (default is $HOME/.scratch/.scratchSession)")
	flags.String("seed-policy", "ignore-on-hit", "how listing data is merged into known objects (ignore-on-hit, fill-unknown)")
	flags.Int("page-size", constants.DefaultPageSize, "records requested per page")
	flags.Int("retries", 0, "retries for rate-limited and failed requests")
	flags.String("cache-type", "", "response cache (none, memory, nats, redis)")
	flags.Duration("cache-ttl", constants.DefaultCacheTTL, "response cache time-to-live")
	flags.String("nats-url", "", "NATS server URL for the nats cache")
	flags.String("redis-addr", "", "Redis address for the redis cache")
	flags.String("redis-password", "", "Redis password")
	flags.Int("redis-db", 0, "Redis database number")

	// Bind flags to viper
	for _, name := range append([]string{"config", "verbose"}, ConfigKeys...) {
		_ = viper.BindPFlag(name, flags.Lookup(name))
	}

	// Add commands
	rootCmd.AddCommand(NewVersionCommand(version, commit, date))
	rootCmd.AddCommand(NewLoginCommand())
	rootCmd.AddCommand(NewLogoutCommand())
	rootCmd.AddCommand(NewWhoAmICommand())
	rootCmd.AddCommand(NewConfigCommand())
	rootCmd.AddCommand(NewUsersCommand())
	rootCmd.AddCommand(NewProjectsCommand())

	return rootCmd
}
