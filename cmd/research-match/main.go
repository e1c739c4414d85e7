// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package main is the entry point for the research-match CLI: it asks the
// recommendation agent for professors and turns the answer into text and
// cards, from the command line or over HTTP.
package main

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/research-match/internal/logging"
	"github.com/pdiddy/research-match/internal/secrets"
)

// version is set at build time via ldflags.
var version = "dev"

var (
	// loadedSecrets holds credentials read from .secrets/ at startup.
	loadedSecrets secrets.Store

	logger     = slog.New(slog.DiscardHandler)
	closeLog   = func() error { return nil }
	secretsDir = secrets.DefaultDir
)

var rootCmd = &cobra.Command{
	Use:   "research-match",
	Short: "Match students with professors through a recommendation agent",
	Long: `research-match sends a student's question to a hosted conversational
agent, waits for the answer, and turns it into a short text reply plus
structured professor cards.

Use ask for a single question, parse to run the presentation pipeline on a
saved answer, serve for the HTTP API, and jobs to inspect the request ledger.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		l, closer, err := logging.Setup(logConfig(viper.GetViper()), os.Stderr)
		if err != nil {
			return err
		}
		logger, closeLog = l, closer

		s, err := secrets.Load(secretsDir, logger)
		if err != nil {
			return err
		}
		loadedSecrets = s
		if len(s) > 0 {
			keys := make([]string, 0, len(s))
			for k := range s {
				keys = append(keys, k)
			}
			sort.Strings(keys)
			logger.Debug("loaded secrets", "keys", keys)
		}
		return nil
	},
	PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
		return closeLog()
	},
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().String("config", "", "config file (default: ./research-match.yaml or ~/.config/research-match/research-match.yaml)")
	rootCmd.PersistentFlags().String("log-level", "", "log level: debug, info, warn, error (default info)")
	rootCmd.PersistentFlags().StringVar(&secretsDir, "secrets-dir", secrets.DefaultDir, "directory of credential files")
	_ = viper.BindPFlag("log.level", rootCmd.PersistentFlags().Lookup("log-level"))
}

func initConfig() {
	cfgFile, _ := rootCmd.PersistentFlags().GetString("config")
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("research-match")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")

		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(filepath.Join(home, ".config", "research-match"))
		}
	}

	configure(viper.GetViper())

	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
