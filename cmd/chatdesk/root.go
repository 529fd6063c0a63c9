package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/kailas-cloud/chatdesk/internal/config"
	logpkg "github.com/kailas-cloud/chatdesk/internal/logger"
	"github.com/kailas-cloud/chatdesk/internal/version"
)

var (
	configPath string
	envName    string
	logLevel   string
)

var rootCmd = &cobra.Command{
	Use:   "chatdesk",
	Short: "Routed chat, search-grounded answers and video Q&A",
	Long: `chatdesk serves three chat experiences over one model gateway: a
conversation that routes itself through topic states, answers grounded in
Korean web search, and questions about a YouTube video's transcript.`,
	Version:      version.String(),
	SilenceUsage: true,
	PersistentPreRunE: func(*cobra.Command, []string) error {
		// A missing .env is fine; the environment may already be set.
		if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("load .env: %w", err)
		}
		return nil
	},
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "config file (default config/$ENV.yaml)")
	rootCmd.PersistentFlags().StringVar(&envName, "env", "", "environment name (default $ENV or local)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "override logging.level")
}

// loadConfig resolves the config from --config, --env or $ENV.
func loadConfig() (config.Config, string, error) {
	env := envName
	if env == "" {
		env = config.GetEnv()
	}
	var (
		cfg config.Config
		err error
	)
	if configPath != "" {
		cfg, err = config.LoadFile(configPath)
	} else {
		cfg, err = config.Load(env)
	}
	if err != nil {
		return config.Config{}, env, fmt.Errorf("load config: %w", err)
	}
	if logLevel != "" {
		cfg.Logging.Level = logLevel
	}
	return cfg, env, nil
}

func newLogger(env string, cfg config.Config) (*zap.Logger, error) {
	logger, err := logpkg.New(env, cfg.Logging.Level, cfg.Logging.File)
	if err != nil {
		return nil, fmt.Errorf("create logger: %w", err)
	}
	return logger, nil
}
