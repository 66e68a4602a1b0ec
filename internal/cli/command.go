package cli

import (
	"fmt"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"codeberg.org/snonux/coltrans/internal"
)

// CreateRootCommand creates and configures the root cobra command
func CreateRootCommand(flags *Flags) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "coltrans [input]",
		Short: "Parallel column translator for tabular datasets",
		Long: `coltrans translates selected text columns of a CSV, JSONL or XLSX
dataset into another language. Rows are split into chunks which are
translated by a pool of workers and written back in the original order.

Failed translations keep the original text, so the output always has the
same rows and columns as the input.

Examples:
  coltrans -c question,answer train.csv            # Translate two columns to Spanish
  coltrans -c text --target-lang de data.jsonl     # Translate to German
  coltrans -c text --checkpoint run.db big.csv     # Resume after interruption
  coltrans --batch datasets.txt -c question        # Translate several datasets`,
		Args:    cobra.MaximumNArgs(1),
		Version: internal.Version,
	}

	// Set up flags
	setupFlags(rootCmd, flags)

	return rootCmd
}

func setupFlags(cmd *cobra.Command, flags *Flags) {
	// Global flags
	cmd.PersistentFlags().StringVar(&flags.CfgFile, "config", "", "config file (default is $HOME/.coltrans.yaml)")
	cmd.PersistentFlags().StringVar(&flags.LogLevel, "log-level", flags.LogLevel, "Log level: debug, info, warn, error")

	// Local flags
	cmd.Flags().StringVarP(&flags.OutputFile, "output", "o", "", "Output file (default: <input>_<target-lang><ext>)")
	cmd.Flags().StringVar(&flags.BatchFile, "batch", "", "Translate datasets listed in file (one 'input [= output]' per line)")
	cmd.Flags().BoolVar(&flags.ListModels, "list-models", false, "List available OpenAI chat models for the current API key")
	cmd.Flags().BoolVar(&flags.NoProgress, "no-progress", false, "Do not print the progress line")

	// Translation flags
	cmd.Flags().StringSliceVarP(&flags.Columns, "columns", "c", nil, "Columns to translate (comma separated)")
	cmd.Flags().StringVar(&flags.SourceLang, "source-lang", flags.SourceLang, "Source language code")
	cmd.Flags().StringVar(&flags.TargetLang, "target-lang", flags.TargetLang, "Target language code")
	cmd.Flags().StringVar(&flags.Provider, "provider", flags.Provider, "Translation provider: openai, gemini or noop")
	cmd.Flags().StringVar(&flags.Model, "model", "", "Model name (default depends on provider)")
	cmd.Flags().DurationVar(&flags.Timeout, "timeout", flags.Timeout, "Timeout for a single translation call")
	cmd.Flags().BoolVar(&flags.NoCache, "no-cache", false, "Disable the in-memory translation cache")

	// Throttling flags
	cmd.Flags().IntVar(&flags.RequestsPerSecond, "requests-per-second", 0, "Maximum translation requests per second (0 disables rate limiting)")
	cmd.Flags().IntVar(&flags.RequestsPerMinute, "requests-per-minute", 0, "Maximum translation requests per minute (0 disables rate limiting)")
	cmd.Flags().UintVar(&flags.BreakerFailures, "breaker-failures", flags.BreakerFailures, "Consecutive failures before the circuit breaker opens (0 disables it)")

	// Processing flags
	cmd.Flags().IntVar(&flags.ChunkSize, "chunk-size", flags.ChunkSize, "Rows per chunk")
	cmd.Flags().IntVar(&flags.Workers, "workers", 0, "Number of parallel workers (default: CPUs minus one)")
	cmd.Flags().IntVar(&flags.RetryCrashed, "retry-crashed", flags.RetryCrashed, "How often crashed chunks are retried")
	cmd.Flags().IntSliceVar(&flags.ExcludeRows, "exclude-rows", nil, "Zero based row indices to drop before translating")

	// Checkpoint flags
	cmd.Flags().StringVar(&flags.Checkpoint, "checkpoint", "", "SQLite file for resumable runs (disabled when empty)")
	cmd.Flags().BoolVar(&flags.Archive, "archive", false, "Archive the checkpoint database and exit")

	// Bind flags to viper
	bindFlagsToViper(cmd)
}

func bindFlagsToViper(cmd *cobra.Command) {
	viper.BindPFlag("log.level", cmd.PersistentFlags().Lookup("log-level"))
	viper.BindPFlag("output.file", cmd.Flags().Lookup("output"))
	viper.BindPFlag("translation.columns", cmd.Flags().Lookup("columns"))
	viper.BindPFlag("translation.source_lang", cmd.Flags().Lookup("source-lang"))
	viper.BindPFlag("translation.target_lang", cmd.Flags().Lookup("target-lang"))
	viper.BindPFlag("translation.provider", cmd.Flags().Lookup("provider"))
	viper.BindPFlag("translation.model", cmd.Flags().Lookup("model"))
	viper.BindPFlag("translation.timeout", cmd.Flags().Lookup("timeout"))
	viper.BindPFlag("translation.no_cache", cmd.Flags().Lookup("no-cache"))
	// Bind throttling flags
	viper.BindPFlag("translation.requests_per_second", cmd.Flags().Lookup("requests-per-second"))
	viper.BindPFlag("translation.requests_per_minute", cmd.Flags().Lookup("requests-per-minute"))
	viper.BindPFlag("translation.breaker_failures", cmd.Flags().Lookup("breaker-failures"))
	// Bind processing flags
	viper.BindPFlag("processing.chunk_size", cmd.Flags().Lookup("chunk-size"))
	viper.BindPFlag("processing.num_workers", cmd.Flags().Lookup("workers"))
	viper.BindPFlag("processing.retry_crashed", cmd.Flags().Lookup("retry-crashed"))
	viper.BindPFlag("processing.exclude_rows", cmd.Flags().Lookup("exclude-rows"))
	viper.BindPFlag("checkpoint.path", cmd.Flags().Lookup("checkpoint"))
}

// InitConfig initializes viper configuration
func InitConfig(cfgFile string) {
	if cfgFile != "" {
		// Use config file from the flag
		viper.SetConfigFile(cfgFile)
	} else {
		// Find home directory
		home, err := os.UserHomeDir()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error getting home directory: %v\n", err)
			return
		}

		// Search config in home directory with name ".coltrans" (without extension)
		viper.AddConfigPath(home)
		viper.AddConfigPath(".")
		viper.SetConfigType("yaml")
		viper.SetConfigName(".coltrans")
	}

	// Environment variables
	viper.SetEnvPrefix("COLTRANS")
	viper.AutomaticEnv()

	// Read config file
	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}

// SetupLogging configures the global zerolog logger to write human readable
// output to stderr, keeping stdout free for summaries.
func SetupLogging(level string) error {
	lvl, err := zerolog.ParseLevel(level)
	if err != nil {
		return fmt.Errorf("invalid log level %q: %w", level, err)
	}
	if lvl == zerolog.NoLevel {
		lvl = zerolog.InfoLevel
	}

	zerolog.SetGlobalLevel(lvl)
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})
	return nil
}

// GetOpenAIKey retrieves the OpenAI API key from environment or config
func GetOpenAIKey() string {
	// First check environment variable
	if key := os.Getenv("OPENAI_API_KEY"); key != "" {
		return key
	}

	// Then check config file
	return viper.GetString("translation.openai_key")
}

// GetGeminiKey retrieves the Gemini API key from environment or config
func GetGeminiKey() string {
	if key := os.Getenv("GEMINI_API_KEY"); key != "" {
		return key
	}
	return viper.GetString("translation.gemini_key")
}
