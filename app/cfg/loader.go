package cfg

import (
	"cmp"
	"fmt"
	"time"

	"github.com/jessevdk/go-flags"
)

// Version is set at build time via -ldflags
var Version = "dev"

func GetVersion() string {
	return cmp.Or(Version, "unknown")
}

type rawCfg struct {
	// HTTP server configuration
	Port         string `long:"port" env:"PORT" default:"8080" description:"HTTP server port"`
	APIAccessKey string `long:"api-key" env:"API_ACCESS_KEY" description:"API access key for admin endpoints (optional)"`

	// OpenAI configuration
	OpenAIAPIKey  string `long:"openai-api-key" env:"OPENAI_API_KEY" description:"OpenAI API key (required)" required:"true"`
	OpenAIModel   string `long:"openai-model" env:"OPENAI_MODEL" default:"gpt-4o-mini" description:"OpenAI model used for deal scanning"`
	OpenAIBaseUrl string `long:"openai-base-url" env:"OPENAI_BASE_URL" default:"https://api.openai.com/v1" description:"Base URL for OpenAI-compatible API"`

	// Pricing services configuration
	PricerBaseUrl     string `long:"pricer-base-url" env:"PRICER_BASE_URL" description:"Base URL of the remote pricing services (required)" required:"true"`
	EnsembleModelPath string `long:"ensemble-model" env:"ENSEMBLE_MODEL_PATH" default:"./models/ensemble.json" description:"Path to the trained ensemble model file"`

	// Pipeline configuration
	FeedsDir             string  `long:"feeds-dir" env:"FEEDS_DIR" default:"./feeds" description:"Directory containing category feed configuration files"`
	MemoryDir            string  `long:"memory-dir" env:"MEMORY_DIR" default:"./memory" description:"Directory for persisted opportunity memory and demo state"`
	DBPath               string  `long:"db-path" env:"DB_PATH" default:"./data/pricehound.db" description:"Path to the SQLite run history database"`
	DealThreshold        float64 `long:"deal-threshold" env:"DEAL_THRESHOLD" default:"50" description:"Minimum discount for a deal to be accepted"`
	MaxDealsPerFeed      int     `long:"max-deals-per-feed" env:"MAX_DEALS_PER_FEED" default:"20" description:"Maximum number of entries processed per RSS feed"`
	MaxCategorySelection int     `long:"max-categories" env:"MAX_CATEGORY_SELECTION" default:"3" description:"Maximum number of categories per run"`
	MemoryExpirationDays int     `long:"memory-expiration-days" env:"MEMORY_EXPIRATION_DAYS" default:"5" description:"Delete the opportunity memory file when older than this many days"`

	// Demo mode restrictions
	DemoMode          bool `long:"demo-mode" env:"DEMO_MODE" description:"Enable the daily run cap for hosted demo instances"`
	MaxDemoRunsPerDay int  `long:"max-demo-runs" env:"MAX_DEMO_RUNS_PER_DAY" default:"5" description:"Maximum pipeline runs per day in demo mode"`

	// Application metadata
	UserAgent string `long:"user-agent" env:"USER_AGENT" default:"Pricehound/1.0" description:"User agent string for HTTP requests"`
	Timezone  string `long:"timezone" env:"TZ" default:"UTC" description:"Timezone for timestamps (e.g., UTC, America/New_York)"`
	Debug     bool   `long:"debug" env:"DEBUG" description:"Enable debug logging"`
}

var globalCfg *Cfg

func Load() (*Cfg, error) {
	var raw rawCfg

	parser := flags.NewParser(&raw, flags.Default)

	if _, err := parser.Parse(); err != nil {
		if flagsErr, ok := err.(*flags.Error); ok {
			if flagsErr.Type == flags.ErrHelp {
				return nil, nil
			}
		}
		return nil, fmt.Errorf("failed to parse configuration: %w", err)
	}

	cfg := &Cfg{
		Port:                 raw.Port,
		APIAccessKey:         raw.APIAccessKey,
		OpenAIAPIKey:         raw.OpenAIAPIKey,
		OpenAIModel:          raw.OpenAIModel,
		OpenAIBaseUrl:        raw.OpenAIBaseUrl,
		PricerBaseUrl:        raw.PricerBaseUrl,
		EnsembleModelPath:    raw.EnsembleModelPath,
		FeedsDir:             raw.FeedsDir,
		MemoryDir:            raw.MemoryDir,
		DBPath:               raw.DBPath,
		DealThreshold:        raw.DealThreshold,
		MaxDealsPerFeed:      raw.MaxDealsPerFeed,
		MaxCategorySelection: raw.MaxCategorySelection,
		MemoryExpirationDays: raw.MemoryExpirationDays,
		DemoMode:             raw.DemoMode,
		MaxDemoRunsPerDay:    raw.MaxDemoRunsPerDay,
		UserAgent:            raw.UserAgent,
		Timezone:             raw.Timezone,
		Debug:                raw.Debug,
		Version:              GetVersion(),
	}

	if err := applyTimezone(cfg.Timezone); err != nil {
		fmt.Printf("Warning: Invalid timezone '%s', using system default: %v\n", cfg.Timezone, err)
	}

	globalCfg = cfg

	return cfg, nil
}

func Get() *Cfg {
	if globalCfg == nil {
		panic("configuration not loaded - call cfg.Load() first")
	}
	return globalCfg
}

func applyTimezone(timezone string) error {
	if timezone != "" {
		if loc, err := time.LoadLocation(timezone); err != nil {
			return err
		} else {
			time.Local = loc
		}
	}
	return nil
}
