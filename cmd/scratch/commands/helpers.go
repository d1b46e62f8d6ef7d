package commands

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/olekukonko/tablewriter"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"gopkg.in/yaml.v3"

	"github.com/fivetwenty-io/scratch-client/internal/auth"
	"github.com/fivetwenty-io/scratch-client/internal/constants"
	"github.com/fivetwenty-io/scratch-client/pkg/scratch"
	"github.com/fivetwenty-io/scratch-client/pkg/scratchclient"
)

// JSON formatting.
const defaultJSONIndent = 2

// ConfigDirName is the per-user directory holding config.yml and the session file.
const ConfigDirName = ".scratch"

// Common static errors used throughout the commands package.
var (
	ErrUserNotFound       = errors.New("user not found")
	ErrProjectNotFound    = errors.New("project not found")
	ErrUnknownConfigKey   = errors.New("unknown configuration key")
	ErrUnknownCacheType   = errors.New("unknown cache type, expected none, memory, nats or redis")
	ErrNATSURLRequired    = errors.New("nats-url is required for the nats cache")
	ErrRedisAddrRequired  = errors.New("redis-addr is required for the redis cache")
	ErrInvalidConfigValue = errors.New("invalid configuration value")
)

var titleCaser = cases.Title(language.English)

// configDir returns ~/.scratch, or the working directory if the home
// directory cannot be resolved.
func configDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "."
	}

	return filepath.Join(home, ConfigDirName)
}

// sessionFilePath resolves the session file from the session-file setting.
func sessionFilePath() string {
	if path := viper.GetString("session-file"); path != "" {
		return path
	}

	return filepath.Join(configDir(), constants.DefaultSessionFile)
}

func sessionStore() *auth.FileSessionStore {
	return auth.NewFileSessionStore(sessionFilePath())
}

// commandLogger returns a console logger when verbose output is requested.
func commandLogger(cmd *cobra.Command) scratch.Logger {
	if !viper.GetBool("verbose") {
		return nil
	}

	return scratch.NewConsoleLogger(cmd.ErrOrStderr(), zerolog.DebugLevel)
}

// buildClientConfig assembles a client configuration from flags, environment
// and config file. A saved session is attached when one exists.
func buildClientConfig(cmd *cobra.Command) (*scratch.Config, error) {
	policy, err := scratch.ParseSeedPolicy(viper.GetString("seed-policy"))
	if err != nil {
		return nil, err
	}

	cacheConfig, err := buildCacheConfig()
	if err != nil {
		return nil, err
	}

	config := &scratch.Config{
		APIEndpoint:  viper.GetString("api"),
		SiteEndpoint: viper.GetString("site"),
		PageSize:     viper.GetInt("page-size"),
		SeedPolicy:   policy,
		RetryMax:     viper.GetInt("retries"),
		Cache:        cacheConfig,
	}

	if logger := commandLogger(cmd); logger != nil {
		config.Logger = logger
		config.Debug = true
	}

	session, err := sessionStore().Load()

	switch {
	case err == nil:
		config.Session = session
	case errors.Is(err, auth.ErrSessionNotFound):
	default:
		return nil, fmt.Errorf("failed to load session: %w", err)
	}

	return config, nil
}

// buildCacheConfig maps the cache-* settings onto a response cache
// configuration. No cache type means no response cache. Shared backends get a
// memory tier in front.
func buildCacheConfig() (*scratch.CacheConfig, error) {
	ttl := viper.GetDuration("cache-ttl")
	if ttl <= 0 {
		ttl = constants.DefaultCacheTTL
	}

	options := &scratch.CacheOptions{TTL: ttl, MaxSize: constants.DefaultCacheSize}
	local := &scratch.MemoryCacheConfig{
		MaxSize:         constants.DefaultCacheSize,
		CleanupInterval: constants.DefaultCacheCleanupInterval.String(),
	}

	switch scratch.CacheType(viper.GetString("cache-type")) {
	case "", scratch.CacheTypeNone:
		return nil, nil //nolint:nilnil // no cache configured
	case scratch.CacheTypeMemory:
		return &scratch.CacheConfig{Type: scratch.CacheTypeMemory, Memory: local, Options: options}, nil
	case scratch.CacheTypeNATS:
		url := viper.GetString("nats-url")
		if url == "" {
			return nil, ErrNATSURLRequired
		}

		return &scratch.CacheConfig{
			Type: scratch.CacheTypeNATS,
			NATS: &scratch.NATSKVConfig{
				URL:     url,
				Bucket:  constants.DefaultNATSBucket,
				TTL:     ttl,
				Timeout: constants.ShortHTTPTimeout,
			},
			Memory:  local,
			Options: options,
		}, nil
	case scratch.CacheTypeRedis:
		addr := viper.GetString("redis-addr")
		if addr == "" {
			return nil, ErrRedisAddrRequired
		}

		return &scratch.CacheConfig{
			Type: scratch.CacheTypeRedis,
			Redis: &scratch.RedisCacheConfig{
				Addr:     addr,
				Password: viper.GetString("redis-password"),
				DB:       viper.GetInt("redis-db"),
				Prefix:   constants.DefaultRedisPrefix,
			},
			Memory:  local,
			Options: options,
		}, nil
	default:
		return nil, ErrUnknownCacheType
	}
}

// createClient creates a Scratch client for the running command.
func createClient(cmd *cobra.Command) (scratch.Client, error) {
	config, err := buildClientConfig(cmd)
	if err != nil {
		return nil, err
	}

	client, err := scratchclient.New(cmd.Context(), config)
	if err != nil {
		return nil, fmt.Errorf("failed to create client: %w", err)
	}

	return client, nil
}

// output writes value as JSON or YAML, or calls renderTable for table output.
func output(cmd *cobra.Command, value interface{}, renderTable func(table *tablewriter.Table)) error {
	writer := cmd.OutOrStdout()

	switch viper.GetString("output") {
	case constants.FormatJSON:
		return writeJSON(writer, value)
	case constants.FormatYAML:
		encoder := yaml.NewEncoder(writer)
		if err := encoder.Encode(value); err != nil {
			return fmt.Errorf("failed to encode YAML: %w", err)
		}

		return encoder.Close()
	case "", constants.FormatTable:
		table := tablewriter.NewWriter(writer)
		renderTable(table)

		if err := table.Render(); err != nil {
			return fmt.Errorf("failed to render table: %w", err)
		}

		return nil
	default:
		return constants.ErrInvalidOutputFormat
	}
}

func writeJSON(writer io.Writer, value interface{}) error {
	encoder := json.NewEncoder(writer)
	encoder.SetIndent("", strings.Repeat(" ", defaultJSONIndent))

	if err := encoder.Encode(value); err != nil {
		return fmt.Errorf("failed to encode JSON: %w", err)
	}

	return nil
}

// parseLimit validates the --limit flag.
func parseLimit(limit int) (int, error) {
	if limit <= 0 {
		return 0, fmt.Errorf("%w: %d", constants.ErrInvalidLimit, limit)
	}

	return limit, nil
}

func formatDate(date time.Time) string {
	if date.IsZero() {
		return constants.NotAvailable
	}

	return date.Format(constants.DateFormat)
}

func formatText(text string) string {
	if text == "" {
		return constants.NotAvailable
	}

	return text
}

func formatBool(value bool) string {
	return titleCaser.String(strconv.FormatBool(value))
}

// notFound replaces a 404 with the given sentinel so the CLI prints a
// readable message.
func notFound(err error, sentinel error, what string) error {
	if scratch.IsNotFound(err) {
		return fmt.Errorf("%w: %s", sentinel, what)
	}

	return err
}
