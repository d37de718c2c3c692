package config

import (
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config holds the full application configuration.
type Config struct {
	AzureOpenAI AzureOpenAIConfig `yaml:"azure_openai" mapstructure:"azure_openai"`
	Store       StoreConfig       `yaml:"store" mapstructure:"store"`
	Company     CompanyConfig     `yaml:"company" mapstructure:"company"`
	Places      PlacesConfig      `yaml:"places" mapstructure:"places"`
	Carbon      CarbonConfig      `yaml:"carbon" mapstructure:"carbon"`
	Server      ServerConfig      `yaml:"server" mapstructure:"server"`
	Log         LogConfig         `yaml:"log" mapstructure:"log"`
}

// AzureOpenAIConfig holds the generative service credentials and endpoint.
type AzureOpenAIConfig struct {
	Endpoint    string `yaml:"endpoint" mapstructure:"endpoint"`
	Deployment  string `yaml:"deployment" mapstructure:"deployment"`
	APIVersion  string `yaml:"api_version" mapstructure:"api_version"`
	Key         string `yaml:"key" mapstructure:"key"`
	TimeoutSecs int    `yaml:"timeout_secs" mapstructure:"timeout_secs"`
}

// StoreConfig locates the CSV data files and the history database.
type StoreConfig struct {
	DataDir     string `yaml:"data_dir" mapstructure:"data_dir"`
	Listing     string `yaml:"listing" mapstructure:"listing"`
	Leads       string `yaml:"leads" mapstructure:"leads"`
	Customers   string `yaml:"customers" mapstructure:"customers"`
	Roster      string `yaml:"roster" mapstructure:"roster"`
	Assignments string `yaml:"assignments" mapstructure:"assignments"`
	HistoryDB   string `yaml:"history_db" mapstructure:"history_db"`
}

// CompanyConfig describes the selling company, used to parameterize the
// matcher and outreach prompts.
type CompanyConfig struct {
	Name            string `yaml:"name" mapstructure:"name"`
	Offering        string `yaml:"offering" mapstructure:"offering"`
	ExpertiseNeeded string `yaml:"expertise_needed" mapstructure:"expertise_needed"`
}

// PlacesConfig holds Google Places API settings for business discovery.
type PlacesConfig struct {
	Key          string  `yaml:"key" mapstructure:"key"`
	BaseURL      string  `yaml:"base_url" mapstructure:"base_url"`
	Language     string  `yaml:"language" mapstructure:"language"`
	RatePerSec   float64 `yaml:"rate_per_sec" mapstructure:"rate_per_sec"`
	PageDelaySec int     `yaml:"page_delay_sec" mapstructure:"page_delay_sec"`
	MaxPages     int     `yaml:"max_pages" mapstructure:"max_pages"`
}

// CarbonConfig holds the Electricity Maps carbon-intensity API settings.
type CarbonConfig struct {
	Key     string `yaml:"key" mapstructure:"key"`
	BaseURL string `yaml:"base_url" mapstructure:"base_url"`
}

// ServerConfig configures the HTTP API server.
type ServerConfig struct {
	Port int `yaml:"port" mapstructure:"port"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

// Validate checks that the configuration carries what the given mode needs.
// Modes map to command groups: "enrich" covers every command that calls the
// generative service, "discover" needs Places, "carbon" needs the intensity
// API, "serve" needs a listen port on top of the enrich requirements.
func (c *Config) Validate(mode string) error {
	var missing []string

	requireEnrich := func() {
		if c.AzureOpenAI.Endpoint == "" {
			missing = append(missing, "azure_openai.endpoint is required")
		}
		if c.AzureOpenAI.Deployment == "" {
			missing = append(missing, "azure_openai.deployment is required")
		}
		if c.AzureOpenAI.Key == "" {
			missing = append(missing, "azure_openai.key is required")
		}
	}

	switch mode {
	case "enrich":
		requireEnrich()
	case "discover":
		if c.Places.Key == "" {
			missing = append(missing, "places.key is required")
		}
	case "carbon":
		if c.Carbon.Key == "" {
			missing = append(missing, "carbon.key is required")
		}
	case "serve":
		requireEnrich()
		if c.Server.Port <= 0 {
			missing = append(missing, "server.port must be > 0")
		}
	case "local":
		// Commands that only touch local files.
	default:
		return eris.Errorf("config: unknown mode %q", mode)
	}

	if len(missing) > 0 {
		return eris.Errorf("config: %s", strings.Join(missing, "; "))
	}
	return nil
}

// Load reads configuration from file and environment.
func Load() (*Config, error) {
	v := viper.New()

	// Config file
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	// Environment
	v.SetEnvPrefix("LEADOPS")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults. Credentials default to empty so AutomaticEnv can bind them.
	v.SetDefault("azure_openai.endpoint", "")
	v.SetDefault("azure_openai.deployment", "")
	v.SetDefault("azure_openai.key", "")
	v.SetDefault("azure_openai.api_version", "2024-02-15-preview")
	v.SetDefault("azure_openai.timeout_secs", 45)
	v.SetDefault("store.data_dir", "data")
	v.SetDefault("store.listing", "businesses.csv")
	v.SetDefault("store.leads", "leads.csv")
	v.SetDefault("store.customers", "customers.csv")
	v.SetDefault("store.roster", "sales_persons.csv")
	v.SetDefault("store.assignments", "assignments.csv")
	v.SetDefault("store.history_db", "leadops.db")
	v.SetDefault("company.name", "SHV Energy")
	v.SetDefault("company.offering", "Off-Grid Solutions")
	v.SetDefault("company.expertise_needed", "Off-Grid Solutions")
	v.SetDefault("places.key", "")
	v.SetDefault("places.base_url", "https://maps.googleapis.com/maps/api/place")
	v.SetDefault("places.language", "it")
	v.SetDefault("places.rate_per_sec", 5.0)
	v.SetDefault("places.page_delay_sec", 2)
	v.SetDefault("places.max_pages", 3)
	v.SetDefault("carbon.key", "")
	v.SetDefault("carbon.base_url", "https://api.electricitymap.org/v3")
	v.SetDefault("server.port", 8080)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")

	// Read config file (optional)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, eris.Wrap(err, "config: read file")
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, eris.Wrap(err, "config: unmarshal")
	}

	return &cfg, nil
}

// InitLogger initializes the global zap logger.
func InitLogger(cfg LogConfig) error {
	var zapCfg zap.Config
	if cfg.Format == "console" {
		zapCfg = zap.NewDevelopmentConfig()
	} else {
		zapCfg = zap.NewProductionConfig()
	}

	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return eris.Wrap(err, "config: parse log level")
	}
	zapCfg.Level.SetLevel(level)

	logger, err := zapCfg.Build()
	if err != nil {
		return eris.Wrap(err, "config: build logger")
	}
	zap.ReplaceGlobals(logger)

	return nil
}
