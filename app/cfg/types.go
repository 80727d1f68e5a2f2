package cfg

type Cfg struct {
	// HTTP server configuration
	Port         string
	APIAccessKey string

	// OpenAI configuration
	OpenAIAPIKey  string
	OpenAIModel   string
	OpenAIBaseUrl string

	// Pricing services configuration
	PricerBaseUrl     string
	EnsembleModelPath string

	// Pipeline configuration
	FeedsDir             string
	MemoryDir            string
	DBPath               string
	DealThreshold        float64
	MaxDealsPerFeed      int
	MaxCategorySelection int
	MemoryExpirationDays int

	// Demo mode restrictions
	DemoMode          bool
	MaxDemoRunsPerDay int

	// Application metadata
	UserAgent string
	Timezone  string
	Debug     bool
	Version   string
}
