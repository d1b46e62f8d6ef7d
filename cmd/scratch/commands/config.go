package commands

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strconv"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/fivetwenty-io/scratch-client/internal/constants"
	"github.com/fivetwenty-io/scratch-client/pkg/scratch"
)

// ConfigKeys lists the settings stored in config.yml. Each key matches a
// global flag and a SCRATCH_ environment variable.
var ConfigKeys = []string{
	"api",
	"site",
	"output",
	"session-file",
	"seed-policy",
	"page-size",
	"retries",
	"cache-type",
	"cache-ttl",
	"nats-url",
	"redis-addr",
	"redis-password",
	"redis-db",
}

var integerKeys = []string{"page-size", "retries", "redis-db"}

// NewConfigCommand creates the config command group.
func NewConfigCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Manage CLI configuration",
		Long:  "View and modify the settings stored in the configuration file",
	}

	cmd.AddCommand(newConfigShowCommand())
	cmd.AddCommand(newConfigSetCommand())
	cmd.AddCommand(newConfigUnsetCommand())

	return cmd
}

func newConfigShowCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Show current configuration",
		Long:  "Display the effective value of every setting",
		RunE: func(cmd *cobra.Command, args []string) error {
			settings := make(map[string]string, len(ConfigKeys))

			for _, key := range ConfigKeys {
				value := viper.GetString(key)
				if key == "redis-password" && value != "" {
					value = "***"
				}

				settings[key] = value
			}

			settings["session-file"] = sessionFilePath()

			return output(cmd, settings, func(table *tablewriter.Table) {
				table.Header("Property", "Value")

				for _, key := range ConfigKeys {
					_ = table.Append(key, formatText(settings[key]))
				}
			})
		},
	}
}

func newConfigSetCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "set KEY VALUE",
		Short: "Set a configuration value",
		Long:  "Store a setting in the configuration file",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			key, value := args[0], args[1]

			if err := validateConfigValue(key, value); err != nil {
				return err
			}

			path := configFilePath()

			values, err := readConfigFile(path)
			if err != nil {
				return err
			}

			values[key] = value

			if err := writeConfigFile(path, values); err != nil {
				return err
			}

			viper.Set(key, value)

			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Set %s to %s\n", key, value)

			return nil
		},
	}
}

func newConfigUnsetCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "unset KEY",
		Short: "Remove a configuration value",
		Long:  "Remove a setting from the configuration file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			key := args[0]
			if !slices.Contains(ConfigKeys, key) {
				return fmt.Errorf("%w: %s", ErrUnknownConfigKey, key)
			}

			path := configFilePath()

			values, err := readConfigFile(path)
			if err != nil {
				return err
			}

			delete(values, key)

			if err := writeConfigFile(path, values); err != nil {
				return err
			}

			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Unset %s\n", key)

			return nil
		},
	}
}

func validateConfigValue(key, value string) error {
	if !slices.Contains(ConfigKeys, key) {
		return fmt.Errorf("%w: %s", ErrUnknownConfigKey, key)
	}

	switch {
	case slices.Contains(integerKeys, key):
		if _, err := strconv.Atoi(value); err != nil {
			return fmt.Errorf("%w: %s must be an integer", ErrInvalidConfigValue, key)
		}
	case key == "output":
		if !slices.Contains([]string{constants.FormatTable, constants.FormatJSON, constants.FormatYAML}, value) {
			return constants.ErrInvalidOutputFormat
		}
	case key == "seed-policy":
		if _, err := scratch.ParseSeedPolicy(value); err != nil {
			return err
		}
	case key == "cache-type":
		switch scratch.CacheType(value) {
		case scratch.CacheTypeNone, scratch.CacheTypeMemory, scratch.CacheTypeNATS, scratch.CacheTypeRedis:
		default:
			return ErrUnknownCacheType
		}
	}

	return nil
}

// configFilePath returns the config file in use, or ~/.scratch/config.yml.
func configFilePath() string {
	if path := viper.GetString("config"); path != "" {
		return path
	}

	if path := viper.ConfigFileUsed(); path != "" {
		return path
	}

	return filepath.Join(configDir(), "config.yml")
}

func readConfigFile(path string) (map[string]interface{}, error) {
	values := make(map[string]interface{})

	// path comes from the --config flag or the user's home directory
	// #nosec G304
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return values, nil
	}

	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	if err := yaml.Unmarshal(data, &values); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	if values == nil {
		values = make(map[string]interface{})
	}

	return values, nil
}

func writeConfigFile(path string, values map[string]interface{}) error {
	err := os.MkdirAll(filepath.Dir(path), constants.ConfigDirPerm)
	if err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(values)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	err = os.WriteFile(path, data, constants.ConfigFilePerm)
	if err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}
