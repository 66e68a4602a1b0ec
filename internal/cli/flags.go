package cli

import (
	"time"

	"github.com/spf13/viper"
)

// Flags holds all command-line flag values
type Flags struct {
	// General flags
	CfgFile    string
	OutputFile string
	BatchFile  string
	ListModels bool
	NoProgress bool
	LogLevel   string

	// Translation flags
	Columns    []string
	SourceLang string
	TargetLang string
	Provider   string
	Model      string
	Timeout    time.Duration
	NoCache    bool

	// Throttling flags
	RequestsPerSecond int
	RequestsPerMinute int
	BreakerFailures   uint

	// Processing flags
	ChunkSize    int
	Workers      int
	RetryCrashed int
	ExcludeRows  []int

	// Checkpoint flags
	Checkpoint string
	Archive    bool
}

// NewFlags creates a new Flags instance with default values
func NewFlags() *Flags {
	return &Flags{
		LogLevel:        "info",
		SourceLang:      "en",
		TargetLang:      "es",
		Provider:        "openai",
		Timeout:         60 * time.Second,
		BreakerFailures: 10,
		ChunkSize:       50,
		RetryCrashed:    1,
	}
}

// ApplyConfig copies config file and environment values into flags the user
// did not set on the command line. Explicit flags win because viper returns
// the bound flag value for them.
func (f *Flags) ApplyConfig() {
	if viper.IsSet("output.file") {
		f.OutputFile = viper.GetString("output.file")
	}
	if viper.IsSet("log.level") {
		f.LogLevel = viper.GetString("log.level")
	}
	if viper.IsSet("translation.columns") {
		f.Columns = viper.GetStringSlice("translation.columns")
	}
	if viper.IsSet("translation.source_lang") {
		f.SourceLang = viper.GetString("translation.source_lang")
	}
	if viper.IsSet("translation.target_lang") {
		f.TargetLang = viper.GetString("translation.target_lang")
	}
	if viper.IsSet("translation.provider") {
		f.Provider = viper.GetString("translation.provider")
	}
	if viper.IsSet("translation.model") {
		f.Model = viper.GetString("translation.model")
	}
	if viper.IsSet("translation.timeout") {
		f.Timeout = viper.GetDuration("translation.timeout")
	}
	if viper.IsSet("translation.no_cache") {
		f.NoCache = viper.GetBool("translation.no_cache")
	}
	if viper.IsSet("translation.requests_per_second") {
		f.RequestsPerSecond = viper.GetInt("translation.requests_per_second")
	}
	if viper.IsSet("translation.requests_per_minute") {
		f.RequestsPerMinute = viper.GetInt("translation.requests_per_minute")
	}
	if viper.IsSet("translation.breaker_failures") {
		f.BreakerFailures = viper.GetUint("translation.breaker_failures")
	}
	if viper.IsSet("processing.chunk_size") {
		f.ChunkSize = viper.GetInt("processing.chunk_size")
	}
	if viper.IsSet("processing.num_workers") {
		f.Workers = viper.GetInt("processing.num_workers")
	}
	if viper.IsSet("processing.retry_crashed") {
		f.RetryCrashed = viper.GetInt("processing.retry_crashed")
	}
	if viper.IsSet("processing.exclude_rows") {
		f.ExcludeRows = viper.GetIntSlice("processing.exclude_rows")
	}
	if viper.IsSet("checkpoint.path") {
		f.Checkpoint = viper.GetString("checkpoint.path")
	}
}
