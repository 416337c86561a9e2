// Root command for the stockroom CLI.
package main

import (
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/stockroom/internal/paths"
	"github.com/mesh-intelligence/stockroom/pkg/store"
	"github.com/mesh-intelligence/stockroom/pkg/types"
)

const appVersion = "v0.1.0"

// Global flag values.
var (
	flagConfigDir string
	flagDataDir   string
	flagBackend   string
	flagJSON      bool
	flagVerbose   bool
)

// configValues holds settings loaded from config.yaml. Set by
// PersistentPreRunE so all subcommands can use them.
var configValues struct {
	backend string
	dataDir string
}

var rootCmd = &cobra.Command{
	Use:     "stockroom",
	Short:   "Stockroom is a local-first inventory and invoicing store",
	Version: appVersion,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		configDir, err := resolveConfigDir()
		if err != nil {
			return err
		}
		cfg, err := loadConfig(configDir)
		if err != nil {
			return err
		}
		configValues.backend = cfg.GetString(cfgKeyBackend)
		configValues.dataDir = cfg.GetString(cfgKeyDataDir)
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagConfigDir, "config-dir", "", "configuration directory")
	rootCmd.PersistentFlags().StringVar(&flagDataDir, "data-dir", "", "data directory")
	rootCmd.PersistentFlags().StringVar(&flagBackend, "backend", "", "storage backend (sqlite, localstore)")
	rootCmd.PersistentFlags().BoolVar(&flagJSON, "json", false, "output as JSON")
	rootCmd.PersistentFlags().BoolVarP(&flagVerbose, "verbose", "v", false, "enable debug logging")

	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(initCmd)
	rootCmd.AddCommand(pathCmd)
	rootCmd.AddCommand(statsCmd)
	rootCmd.AddCommand(exportCmd)
	rootCmd.AddCommand(importCmd)
	rootCmd.AddCommand(migrateCmd)
	rootCmd.AddCommand(backupCmd)
	rootCmd.AddCommand(productCmd)
	rootCmd.AddCommand(invoiceCmd)
	rootCmd.AddCommand(customerCmd)
	rootCmd.AddCommand(categoryCmd)
	rootCmd.AddCommand(userCmd)
}

// newLogger builds the CLI logger: human-readable console output on
// stderr, debug level behind --verbose.
func newLogger() zerolog.Logger {
	level := zerolog.InfoLevel
	if flagVerbose {
		level = zerolog.DebugLevel
	}
	out := zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: "15:04:05"}
	return zerolog.New(out).Level(level).With().Timestamp().Logger()
}

// resolveConfigDir follows flag > env > platform default precedence.
func resolveConfigDir() (string, error) {
	return paths.ResolveConfigDir(flagConfigDir)
}

// resolveDataDir follows flag > config.yaml > env > platform default
// precedence.
func resolveDataDir() (string, error) {
	return paths.ResolveDataDir(flagDataDir, configValues.dataDir)
}

// resolveBackend follows flag > config.yaml > default precedence.
func resolveBackend() string {
	if flagBackend != "" {
		return flagBackend
	}
	if configValues.backend != "" {
		return configValues.backend
	}
	return defaultBackend
}

// openStore builds the configured store. The caller must defer Close.
func openStore() (*store.Store, error) {
	dataDir, err := resolveDataDir()
	if err != nil {
		return nil, err
	}
	cfg := types.Config{
		Backend: resolveBackend(),
		DataDir: dataDir,
	}
	return store.Open(cfg, newLogger())
}
