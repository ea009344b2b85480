package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"runtime/pprof"
	"strings"

	"github.com/huangsam/tsfeat/internal/contract"
	"github.com/huangsam/tsfeat/internal/iocache"
	"github.com/huangsam/tsfeat/schema"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// Build metadata, set through -ldflags.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

// rootCtx is handed to every core entry point.
var rootCtx = context.Background()

// cfg is the validated configuration shared by the extraction commands.
var cfg = &contract.Config{}

// input is what viper resolved from flags, env and the config file.
var input = &contract.ConfigRawInput{}

// profile is the --profile setting.
var profile = &contract.ProfileConfig{}

// cacheManager hands the result and run stores to core.
var cacheManager contract.CacheManager

// stopProfile finishes the active profile; nil when profiling is off.
var stopProfile func() error

// startProfiling writes a CPU profile to <prefix>.cpu.prof until stopProfile
// runs, which then adds a heap profile at <prefix>.mem.prof.
func startProfiling(prefix string) error {
	cpuFile, err := os.Create(prefix + ".cpu.prof")
	if err != nil {
		return fmt.Errorf("could not create CPU profile: %w", err)
	}
	if err := pprof.StartCPUProfile(cpuFile); err != nil {
		_ = cpuFile.Close()
		return fmt.Errorf("could not start CPU profiling: %w", err)
	}
	stopProfile = func() error {
		pprof.StopCPUProfile()
		_ = cpuFile.Close()
		memFile, err := os.Create(prefix + ".mem.prof")
		if err != nil {
			return fmt.Errorf("could not create memory profile: %w", err)
		}
		defer func() { _ = memFile.Close() }()
		return pprof.WriteHeapProfile(memFile)
	}
	return nil
}

// rootCmd prints help when run without a subcommand.
var rootCmd = &cobra.Command{
	Use:                "tsfeat",
	Short:              "Extract statistical features from grouped time series.",
	Long:               `tsfeat turns a long-format table of many time series into one row of features per series.`,
	Version:            version,
	SilenceErrors:      true,
	SilenceUsage:       true,
	DisableSuggestions: true,
	Run: func(cmd *cobra.Command, _ []string) {
		_ = cmd.Help()
	},
}

// initConfig points viper at the config file and ENV variables.
func initConfig() {
	if configFile := viper.GetString("config"); configFile != "" {
		viper.SetConfigFile(configFile)
	} else {
		viper.SetConfigName(".tsfeat")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")
		viper.AddConfigPath("$HOME")
	}

	viper.SetEnvPrefix("TSFEAT")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv()

	viper.SetDefault("id", contract.DefaultIDColumn)
	viper.SetDefault("sort", contract.DefaultSortColumn)
	viper.SetDefault("format", schema.AutoInput)
	viper.SetDefault("catalog", schema.MinimalCatalog)
	viper.SetDefault("fill", contract.DefaultFill)
	viper.SetDefault("workers", contract.DefaultWorkers)
	viper.SetDefault("precision", contract.DefaultPrecision)
	viper.SetDefault("output", schema.TextOut)
	viper.SetDefault("log-format", contract.DefaultLogFormat)
	viper.SetDefault("cache-backend", schema.SQLiteBackend)
	viper.SetDefault("cache-db-connect", "")
	viper.SetDefault("runs-backend", "")
	viper.SetDefault("runs-db-connect", "")
	viper.SetDefault("emoji", "yes")
	viper.SetDefault("color", "yes")
}

// sharedSetup resolves and validates the config, then opens the stores.
func sharedSetup(_ context.Context, _ *cobra.Command, args []string) error {
	if err := loadConfigFile(); err != nil {
		return err
	}

	if err := contract.ProcessProfilingConfig(profile, viper.GetString("profile")); err != nil {
		return fmt.Errorf("failed to process profiling config: %w", err)
	}
	if profile.Enabled && stopProfile == nil {
		if err := startProfiling(profile.Prefix); err != nil {
			return fmt.Errorf("failed to start profiling: %w", err)
		}
	}

	if err := viper.Unmarshal(input); err != nil {
		return fmt.Errorf("unable to unmarshal config: %w", err)
	}

	// The input path is positional.
	if len(args) == 1 {
		input.InputPathStr = args[0]
	}

	if err := contract.ProcessAndValidate(cfg, input); err != nil {
		return err
	}

	if err := iocache.InitStores(cfg.CacheBackend, cfg.CacheDBConnect, cfg.RunsBackend, cfg.RunsDBConnect); err != nil {
		return fmt.Errorf("failed to initialize persistence: %w", err)
	}

	return nil
}

// sharedSetupWrapper adapts sharedSetup to cobra's PreRunE.
func sharedSetupWrapper(cmd *cobra.Command, args []string) error {
	return sharedSetup(rootCtx, cmd, args)
}

// loadConfigFile reads the config file located by initConfig. A missing file is fine.
func loadConfigFile() error {
	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return fmt.Errorf("error reading config file: %w", err)
		}
	}
	return nil
}

// Execute runs the tsfeat CLI.
func Execute() error {
	return rootCmd.Execute()
}

// SetCacheManager installs the store manager used by the commands.
func SetCacheManager(mgr contract.CacheManager) {
	cacheManager = mgr
}

// StopProfiling writes the pending profiles if profiling is enabled.
func StopProfiling() error {
	if stopProfile == nil {
		return nil
	}
	err := stopProfile()
	stopProfile = nil
	return err
}
