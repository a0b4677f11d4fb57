package cli

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/ppiankov/phonespec/internal/model"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

const version = "phonespec v0.3.0"

var (
	cfgFile string
	verbose bool
	noCache bool

	// Loaded before every command runs
	cfg    *model.Config
	logger *slog.Logger
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "phonespec",
	Short: "Phonespec - phone specification ingestion",
	Long: `Phonespec scrapes phone specification pages, normalizes and validates
the extracted fields, resolves product images, and upserts the results
into PostgreSQL.

Every run writes a batch report listing valid items, invalid items
(with the validation reason) and per-item errors. One bad page never
stops a batch.`,
	SilenceErrors: true,
	SilenceUsage:  true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		loaded, err := loadConfig()
		if err != nil {
			return err
		}
		cfg = loaded
		logger = NewLogger(cfg.Log, os.Stderr)
		slog.SetDefault(logger)
		return nil
	},
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}

// versionCmd represents the version command
var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println(version)
	},
}

func init() {
	cobra.OnInitialize(initConfig)

	defaults := model.DefaultConfig()
	flags := rootCmd.PersistentFlags()

	// Global flags
	flags.StringVar(&cfgFile, "config", "", "config file (default: $HOME/.phonespec/config.yaml)")
	flags.BoolVarP(&verbose, "verbose", "v", false, "verbose output")
	flags.BoolVar(&noCache, "no-cache", false, "disable the page cache (force fresh fetches)")
	flags.String("log-level", defaults.Log.Level, "log level (debug, info, warn, error)")
	flags.String("log-format", defaults.Log.Format, "log format (text, json)")
	flags.String("output-dir", defaults.Output.Dir, "directory for reports and record snapshots")
	flags.String("strategy", defaults.Extraction.Strategy, "extraction strategy (pattern, schema)")
	flags.String("llm-provider", defaults.LLM.Provider, "LLM provider for schema extraction (openai, anthropic, ollama)")
	flags.String("llm-model", defaults.LLM.Model, "LLM model name")
	flags.String("dsn", defaults.Database.DSN, "PostgreSQL connection string")
	flags.Bool("insecure", defaults.HTTP.InsecureTLS, "skip TLS certificate verification")

	// Bind flags to viper
	bind := map[string]string{
		"verbose":             "verbose",
		"log.level":           "log-level",
		"log.format":          "log-format",
		"output.dir":          "output-dir",
		"extraction.strategy": "strategy",
		"llm.provider":        "llm-provider",
		"llm.model":           "llm-model",
		"database.dsn":        "dsn",
		"http.insecure_tls":   "insecure",
	}
	for key, flag := range bind {
		_ = viper.BindPFlag(key, flags.Lookup(flag))
	}

	rootCmd.AddCommand(versionCmd)
}

// initConfig reads in config file and ENV variables
func initConfig() {
	if cfgFile != "" {
		// Use config file from the flag
		viper.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error finding home directory: %v\n", err)
			return
		}

		viper.AddConfigPath(filepath.Join(home, ".phonespec"))
		viper.SetConfigType("yaml")
		viper.SetConfigName("config")
	}

	// PHONESPEC_DATABASE_DSN overrides database.dsn
	viper.SetEnvPrefix("PHONESPEC")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()
	for _, key := range []string{"database.dsn", "llm.api_key", "llm.base_url", "metrics.enabled", "checkpoint.path"} {
		_ = viper.BindEnv(key)
	}

	if err := viper.ReadInConfig(); err == nil && verbose {
		fmt.Fprintf(os.Stderr, "Using config file: %s\n", viper.ConfigFileUsed())
	}
}

// loadConfig layers the config file, environment and flags over the defaults
func loadConfig() (*model.Config, error) {
	c := model.DefaultConfig()
	if err := viper.Unmarshal(c); err != nil {
		return nil, fmt.Errorf("parse configuration: %w", err)
	}
	if noCache {
		c.Cache.Enabled = false
	}
	if verbose {
		c.Output.Verbose = true
	}
	return c, nil
}

func banner(title string) {
	fmt.Fprintf(os.Stderr, "\n")
	fmt.Fprintf(os.Stderr, "═══════════════════════════════════════════════════════════\n")
	fmt.Fprintf(os.Stderr, "  %s\n", title)
	fmt.Fprintf(os.Stderr, "═══════════════════════════════════════════════════════════\n")
	fmt.Fprintf(os.Stderr, "\n")
}
