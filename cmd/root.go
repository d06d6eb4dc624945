package cmd

import (
	"fmt"
	"os"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"go.dot.industries/vx/internal/config"
	"go.dot.industries/vx/internal/providers"
	"go.dot.industries/vx/internal/resolve"
)

var (
	flagProfile    string
	flagConfigPath string
	flagIfMissing  string
	flagGlobal     bool
	flagVerbose    bool
)

var rootCmd = &cobra.Command{
	Use:   "fnox",
	Short: "Layered secrets manager for monorepos",
	Long: `fnox resolves secrets declared in fnox.toml files from a chain of
backends - local ciphertext, cloud secret managers, OS keychains, password
managers - and injects them as environment variables into child processes
or shells.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&flagProfile, "profile", "P", "", "profile to resolve (overrides FNOX_PROFILE)")
	rootCmd.PersistentFlags().StringVarP(&flagConfigPath, "config", "c", "", "path to a specific fnox.toml (skips discovery)")
	rootCmd.PersistentFlags().StringVar(&flagIfMissing, "if-missing", "", "policy for bindings with no value: error, warn, ignore")
	rootCmd.PersistentFlags().BoolVar(&flagGlobal, "global", false, "target the global config ($FNOX_CONFIG_DIR/config.toml) for writes")
	rootCmd.PersistentFlags().BoolVarP(&flagVerbose, "verbose", "v", false, "enable debug logging")

	cobra.OnInitialize(initLogger)
}

func initLogger() {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix

	level := zerolog.InfoLevel
	if flagVerbose {
		level = zerolog.DebugLevel
	}

	log.Logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).
		With().Timestamp().Logger().Level(level)
}

// activeProfile returns the profile to resolve: the CLI flag, then
// FNOX_PROFILE, then "default".
func activeProfile() string {
	if flagProfile != "" {
		return flagProfile
	}
	if v := os.Getenv("FNOX_PROFILE"); v != "" {
		return v
	}
	return "default"
}

// loadResolvedProfile discovers (or loads a pinned) config and merges it
// into a ResolvedProfile for the active profile.
func loadResolvedProfile() (*config.ResolvedProfile, error) {
	profile := activeProfile()

	if flagConfigPath != "" {
		cfg, err := config.LoadConfig(flagConfigPath)
		if err != nil {
			return nil, err
		}
		return config.Merge(&config.LayeredConfig{Layers: []*config.Config{cfg}}, profile)
	}

	cwd, err := os.Getwd()
	if err != nil {
		return nil, fmt.Errorf("getting working directory: %w", err)
	}

	layered, err := config.Discover(cwd, profile)
	if err != nil {
		return nil, err
	}
	return config.Merge(layered, profile)
}

// cliIfMissing, envIfMissingOverride and envIfMissingDefault read the
// --if-missing flag, FNOX_IF_MISSING and FNOX_IF_MISSING_DEFAULT: the three
// layers of the I3 order that come from the command line and environment
// rather than from config.
func cliIfMissing() config.IfMissing {
	return config.IfMissing(flagIfMissing)
}

func envIfMissingOverride() config.IfMissing {
	return config.IfMissing(os.Getenv("FNOX_IF_MISSING"))
}

func envIfMissingDefault() config.IfMissing {
	return config.IfMissing(os.Getenv("FNOX_IF_MISSING_DEFAULT"))
}

// newEngine builds a resolve.Engine for the active profile, wired to the
// full provider registry and the real process environment.
func newEngine() (*resolve.Engine, error) {
	rp, err := loadResolvedProfile()
	if err != nil {
		return nil, err
	}

	e := resolve.New(rp, providers.NewRegistry(), func(key string) (string, bool) {
		return os.LookupEnv(key)
	})
	e.CLIFlag = cliIfMissing()
	e.EnvOverride = envIfMissingOverride()
	e.EnvDefault = envIfMissingDefault()

	return e, nil
}
