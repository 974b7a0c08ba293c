// Package cli implements the wrangler command-line interface.
package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"wrangler/internal/app"
	"wrangler/internal/config"
	"wrangler/internal/db"
)

var (
	version = "dev"
	commit  = "none"
)

// Execute runs the CLI.
func Execute() int {
	rootCmd := newRootCmd()
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	return 0
}

func newRootCmd() *cobra.Command {
	var (
		dbPath    string
		logLevel  string
		logFormat string
		profile   string
	)

	rootCmd := &cobra.Command{
		Use:           "wrangler",
		Short:         "Dynamic table lifecycle manager",
		Long:          "Manages runtime-declared SQLite tables: schema migration, batch ingestion, and catalog integrity.",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			// Config file is optional.
			userCfg, err := LoadUserConfig()
			if err != nil {
				userCfg = &UserConfig{Profiles: map[string]Profile{}}
			}
			p := userCfg.ActiveProfile(profile)

			// Precedence: flag > env > profile > default.
			if !cmd.Flags().Changed("db") {
				if v := os.Getenv("WRANGLER_DB_PATH"); v != "" {
					dbPath = v
				} else if p.DBPath != "" {
					dbPath = p.DBPath
				}
			}
			if !cmd.Flags().Changed("log-level") {
				if v := os.Getenv("LOG_LEVEL"); v != "" {
					logLevel = v
				} else if p.LogLevel != "" {
					logLevel = p.LogLevel
				}
			}
			if !cmd.Flags().Changed("log-format") {
				if v := os.Getenv("LOG_FORMAT"); v != "" {
					logFormat = v
				} else if p.LogFormat != "" {
					logFormat = p.LogFormat
				}
			}
			if logFormat != "" && logFormat != "text" && logFormat != "json" {
				return fmt.Errorf("unsupported log format %q: use 'text' or 'json'", logFormat)
			}
			return nil
		},
	}

	rootCmd.PersistentFlags().StringVar(&dbPath, "db", config.DefaultDBPath, "Path to the SQLite catalog file")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "Log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().StringVar(&logFormat, "log-format", "text", "Log output format (text, json)")
	rootCmd.PersistentFlags().StringVarP(&profile, "profile", "p", "", "Config profile to use")

	opener := func(ctx context.Context) (*app.App, func(), error) {
		return openApp(ctx, &config.Config{
			DBPath:       dbPath,
			ReadPoolSize: config.DefaultReadPoolSize,
			LogLevel:     logLevel,
			LogFormat:    logFormat,
		})
	}

	rootCmd.AddCommand(newMigrateCmd(opener))
	rootCmd.AddCommand(newDatasetCmd(opener))
	rootCmd.AddCommand(newKnowledgeCmd(opener))
	rootCmd.AddCommand(newUploadCmd(opener))
	rootCmd.AddCommand(newIntegrityCmd(opener))
	rootCmd.AddCommand(newVersionCmd())

	return rootCmd
}

// appOpener builds a fully wired App. The returned func closes the pools.
type appOpener func(ctx context.Context) (*app.App, func(), error)

func openApp(ctx context.Context, cfg *config.Config) (*app.App, func(), error) {
	writeDB, readDB, err := db.OpenSQLitePair(cfg.DBPath, cfg.ReadPoolSize)
	if err != nil {
		return nil, nil, err
	}
	cleanup := func() {
		_ = readDB.Close()
		_ = writeDB.Close()
	}

	a, err := app.New(ctx, app.Deps{
		Cfg:     cfg,
		WriteDB: writeDB,
		ReadDB:  readDB,
		Logger:  cfg.NewLogger(),
	})
	if err != nil {
		cleanup()
		return nil, nil, err
	}
	return a, cleanup, nil
}
