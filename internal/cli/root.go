package cli

import (
	"fmt"
	"os"
	"strconv"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/smokyabdulrahman/salahme/internal/config"
)

// Global flags shared across all subcommands.
var (
	FlagJSON       bool
	FlagYAML       bool
	FlagTimeFormat string
	FlagCacheDir   string
	FlagStore      string
	FlagStoreAddr  string
	FlagLatitude   float64
	FlagLongitude  float64
	FlagLogLevel   string
)

// loadedConfig holds the config loaded during PersistentPreRunE.
// Available to all subcommand handlers.
var loadedConfig *config.Config

// NewRootCmd creates the root command for the salahme CLI.
// The version parameter is set by the calling binary via ldflags.
func NewRootCmd(version string) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:     "salahme",
		Short:   "Islamic prayer times CLI",
		Long:    "Prayer times computed locally for your city or current position.\nRun without a subcommand to show today's schedule.",
		Version: version,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}
			loadedConfig = cfg
			return nil
		},
		// Default action: show today's prayer schedule.
		RunE:          runToday,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rootCmd.SetVersionTemplate(PrintVersion(version))

	pf := rootCmd.PersistentFlags()
	pf.BoolVar(&FlagJSON, "json", false, "Output as JSON")
	pf.BoolVar(&FlagYAML, "yaml", false, "Output as YAML")
	pf.StringVar(&FlagTimeFormat, "time-format", "", "Time format: 12h or 24h (overrides config)")
	pf.StringVar(&FlagCacheDir, "cache-dir", "", "Cache directory for the file store (default: ~/.cache/salahme/)")
	pf.StringVar(&FlagStore, "store", "", "Location store: file, redis, valkey or memory")
	pf.StringVar(&FlagStoreAddr, "store-addr", "", "Address of the redis or valkey server")
	pf.Float64Var(&FlagLatitude, "latitude", 0, "Use this latitude instead of detecting the position")
	pf.Float64Var(&FlagLongitude, "longitude", 0, "Use this longitude instead of detecting the position")
	pf.StringVar(&FlagLogLevel, "log-level", "", "Log level: trace, debug, info, warn, error or disabled")
	rootCmd.MarkFlagsMutuallyExclusive("json", "yaml")
	rootCmd.MarkFlagsRequiredTogether("latitude", "longitude")

	rootCmd.AddCommand(newNextCmd())
	rootCmd.AddCommand(newSearchCmd())
	rootCmd.AddCommand(newWatchCmd())
	rootCmd.AddCommand(newLocationCmd())
	rootCmd.AddCommand(newConfigCmd())

	return rootCmd
}

// PrintVersion prints the version string in the expected format.
func PrintVersion(version string) string {
	return fmt.Sprintf("salahme %s\n", version)
}

// effectiveConfig returns the merged configuration values,
// applying the priority: CLI flags > SALAHME_* env > config file > defaults.
// It uses cobra's Changed() to detect whether a flag was explicitly set.
func effectiveConfig(cmd *cobra.Command) (config.Config, error) {
	var cfg config.Config
	if loadedConfig != nil {
		cfg = *loadedConfig
	}

	if err := cfg.ApplyEnv(os.Getenv); err != nil {
		return config.Config{}, err
	}

	flags := cmd.Flags()
	root := cmd.Root().PersistentFlags()

	overrides := []struct {
		flag, key string
		value     func() string
	}{
		{"time-format", "time_format", func() string { return FlagTimeFormat }},
		{"cache-dir", "cache_dir", func() string { return FlagCacheDir }},
		{"store", "store", func() string { return FlagStore }},
		{"store-addr", "store_addr", func() string { return FlagStoreAddr }},
		{"latitude", "latitude", func() string { return strconv.FormatFloat(FlagLatitude, 'f', -1, 64) }},
		{"longitude", "longitude", func() string { return strconv.FormatFloat(FlagLongitude, 'f', -1, 64) }},
		{"log-level", "log_level", func() string { return FlagLogLevel }},
	}
	for _, o := range overrides {
		if !flagWasSet(flags, root, o.flag) {
			continue
		}
		if err := cfg.Set(o.key, o.value()); err != nil {
			return config.Config{}, fmt.Errorf("--%s: %w", o.flag, err)
		}
	}

	return cfg.Merge(config.Defaults()), nil
}

// flagWasSet checks if a flag was explicitly set on either the local or persistent flag set.
func flagWasSet(local, persistent *pflag.FlagSet, name string) bool {
	if f := local.Lookup(name); f != nil && f.Changed {
		return true
	}
	if f := persistent.Lookup(name); f != nil && f.Changed {
		return true
	}
	return false
}
