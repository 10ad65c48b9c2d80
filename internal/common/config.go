package common

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/pelletier/go-toml/v2"
)

// Duration is a time.Duration that decodes TOML duration strings such
// as "60m" or "500ms"
type Duration time.Duration

func (d *Duration) UnmarshalText(text []byte) error {
	parsed, err := time.ParseDuration(string(text))
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", string(text), err)
	}
	*d = Duration(parsed)
	return nil
}

func (d Duration) MarshalText() ([]byte, error) {
	return []byte(time.Duration(d).String()), nil
}

// Duration returns the underlying time.Duration
func (d Duration) Duration() time.Duration {
	return time.Duration(d)
}

// Config represents the application configuration
type Config struct {
	Environment string          `toml:"environment"` // "development" or "production"
	Server      ServerConfig    `toml:"server"`
	Storage     StorageConfig   `toml:"storage"`
	Logging     LoggingConfig   `toml:"logging"`
	News        NewsConfig      `toml:"news"`
	Market      MarketConfig    `toml:"market"`
	Scheduler   SchedulerConfig `toml:"scheduler"`
	NewsAPI     NewsAPIConfig   `toml:"newsapi"`
	MarketData  MarketDataConfig `toml:"marketdata"`
	Gemini      GeminiConfig    `toml:"gemini"`
	Claude      ClaudeConfig    `toml:"claude"`
	LLM         LLMConfig       `toml:"llm"`
}

type ServerConfig struct {
	Port int    `toml:"port" validate:"gt=0,lte=65535"`
	Host string `toml:"host"`
}

type StorageConfig struct {
	Badger BadgerConfig `toml:"badger"`
}

// BadgerConfig represents BadgerDB-specific configuration
type BadgerConfig struct {
	Path           string `toml:"path" validate:"required"` // Database directory path
	ResetOnStartup bool   `toml:"reset_on_startup"`         // Delete database on startup for clean test runs
}

type LoggingConfig struct {
	Level  string   `toml:"level"`  // "debug", "info", "warn", "error"
	Format string   `toml:"format"` // "json" or "text"
	Output []string `toml:"output"` // "stdout", "file"
}

// NewsConfig controls the news digest tier
type NewsConfig struct {
	CacheWindow    Duration `toml:"cache_window"`     // Rolling freshness window (default 60m)
	MaxPerCategory int           `toml:"max_per_category" validate:"gt=0"`
	PageSize       int           `toml:"page_size" validate:"gt=0"`
	TitleDenylist  []string      `toml:"title_denylist"` // Case-insensitive title keywords to exclude
}

// MarketConfig controls the daily report tier
type MarketConfig struct {
	// Symbols maps index symbols to display names used in the report prompt
	Symbols map[string]string `toml:"symbols"`
}

// SchedulerConfig controls the background report generation job
type SchedulerConfig struct {
	Enabled        bool   `toml:"enabled"`
	ReportSchedule string `toml:"report_schedule"` // Cron expression (default "0 22 * * *")
	Timezone       string `toml:"timezone"`        // IANA zone name (default "Asia/Taipei")
}

// NewsAPIConfig contains NewsAPI.org client configuration
type NewsAPIConfig struct {
	APIKey    string   `toml:"api_key"`
	BaseURL   string   `toml:"base_url"`
	RateLimit Duration `toml:"rate_limit"` // Minimum time between requests
	Timeout   Duration `toml:"timeout"`    // HTTP request timeout
}

// MarketDataConfig contains quote client configuration
type MarketDataConfig struct {
	BaseURL   string   `toml:"base_url"`
	RateLimit Duration `toml:"rate_limit"`
	Timeout   Duration `toml:"timeout"`
}

// GeminiConfig contains Google Gemini API configuration
type GeminiConfig struct {
	APIKey      string  `toml:"api_key"`     // Google Gemini API key
	Model       string  `toml:"model"`       // Model for generation (default: "gemini-3-flash-preview")
	Timeout     string  `toml:"timeout"`     // Operation timeout as duration string (default: "5m")
	RateLimit   string  `toml:"rate_limit"`  // Rate limit duration string (default: "4s" for 15 RPM)
	Temperature float32 `toml:"temperature"` // Completion temperature (default: 0.7)
}

// ClaudeConfig contains Anthropic Claude API configuration
type ClaudeConfig struct {
	APIKey      string  `toml:"api_key"`     // Anthropic API key
	Model       string  `toml:"model"`       // Model for generation (default: "claude-haiku-3-5-20241022")
	MaxTokens   int     `toml:"max_tokens"`  // Maximum tokens in response (default: 8192)
	Timeout     string  `toml:"timeout"`     // Operation timeout as duration string (default: "5m")
	RateLimit   string  `toml:"rate_limit"`  // Rate limit duration string (default: "1s")
	Temperature float32 `toml:"temperature"` // Completion temperature (default: 0.7)
}

// LLMProvider represents the AI provider type
type LLMProvider string

const (
	// LLMProviderGemini uses Google Gemini API
	LLMProviderGemini LLMProvider = "gemini"
	// LLMProviderClaude uses Anthropic Claude API
	LLMProviderClaude LLMProvider = "claude"
)

// LLMConfig contains unified configuration for all AI providers
type LLMConfig struct {
	DefaultProvider LLMProvider `toml:"default_provider"` // "gemini" or "claude" (default: "gemini")
}

// NewDefaultConfig creates a configuration with default values.
// Only user-facing settings should be exposed in advisor.toml.
func NewDefaultConfig() *Config {
	return &Config{
		Environment: "development",
		Server: ServerConfig{
			Port: 8080,
			Host: "localhost",
		},
		Storage: StorageConfig{
			Badger: BadgerConfig{
				Path: "./data",
			},
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
			Output: []string{"stdout", "file"},
		},
		News: NewsConfig{
			CacheWindow:    Duration(60 * time.Minute),
			MaxPerCategory: 5,
			PageSize:       10,
			TitleDenylist:  []string{"sports", "entertainment", "gossip"},
		},
		Market: MarketConfig{
			Symbols: map[string]string{
				"^GSPC": "S&P 500",
				"^IXIC": "NASDAQ",
				"^DJI":  "Dow Jones",
			},
		},
		Scheduler: SchedulerConfig{
			Enabled:        true,
			ReportSchedule: "0 22 * * *",
			Timezone:       "Asia/Taipei",
		},
		NewsAPI: NewsAPIConfig{
			BaseURL:   "https://newsapi.org/v2",
			RateLimit: Duration(1 * time.Second),
			Timeout:   Duration(30 * time.Second),
		},
		MarketData: MarketDataConfig{
			BaseURL:   "https://query1.finance.yahoo.com",
			RateLimit: Duration(500 * time.Millisecond),
			Timeout:   Duration(30 * time.Second),
		},
		Gemini: GeminiConfig{
			APIKey:      "",
			Model:       "gemini-3-flash-preview",
			Timeout:     "5m",
			RateLimit:   "4s",
			Temperature: 0.7,
		},
		Claude: ClaudeConfig{
			APIKey:      "",
			Model:       "claude-haiku-3-5-20241022",
			MaxTokens:   8192,
			Timeout:     "5m",
			RateLimit:   "1s",
			Temperature: 0.7,
		},
		LLM: LLMConfig{
			DefaultProvider: LLMProviderGemini,
		},
	}
}

// LoadFromFile loads configuration with priority: defaults -> file -> env -> CLI
func LoadFromFile(path string) (*Config, error) {
	config := NewDefaultConfig()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}
		if err := toml.Unmarshal(data, config); err != nil {
			return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
		}
	}

	applyEnvOverrides(config)

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return config, nil
}

// Validate checks the configuration against struct validation rules
func (c *Config) Validate() error {
	validate := validator.New()
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	if c.Scheduler.Timezone != "" {
		if _, err := time.LoadLocation(c.Scheduler.Timezone); err != nil {
			return fmt.Errorf("invalid scheduler timezone %q: %w", c.Scheduler.Timezone, err)
		}
	}
	return nil
}

// applyEnvOverrides applies environment variable overrides to config
func applyEnvOverrides(config *Config) {
	if env := os.Getenv("ADVISOR_ENV"); env != "" {
		config.Environment = env
	} else if env := os.Getenv("GO_ENV"); env != "" {
		config.Environment = env
	}

	// Server configuration
	if port := os.Getenv("ADVISOR_SERVER_PORT"); port != "" {
		if p, err := strconv.Atoi(port); err == nil {
			config.Server.Port = p
		}
	}
	if host := os.Getenv("ADVISOR_SERVER_HOST"); host != "" {
		config.Server.Host = host
	}

	// Storage configuration
	if badgerPath := os.Getenv("ADVISOR_BADGER_PATH"); badgerPath != "" {
		config.Storage.Badger.Path = badgerPath
	}

	// Logging configuration
	if level := os.Getenv("ADVISOR_LOG_LEVEL"); level != "" {
		config.Logging.Level = level
	}
	if format := os.Getenv("ADVISOR_LOG_FORMAT"); format != "" {
		config.Logging.Format = format
	}
	if output := os.Getenv("ADVISOR_LOG_OUTPUT"); output != "" {
		outputs := []string{}
		for _, o := range strings.Split(output, ",") {
			if trimmed := strings.TrimSpace(o); trimmed != "" {
				outputs = append(outputs, trimmed)
			}
		}
		if len(outputs) > 0 {
			config.Logging.Output = outputs
		}
	}

	// News configuration
	if window := os.Getenv("ADVISOR_NEWS_CACHE_WINDOW"); window != "" {
		if d, err := time.ParseDuration(window); err == nil {
			config.News.CacheWindow = Duration(d)
		}
	}
	if maxPer := os.Getenv("ADVISOR_NEWS_MAX_PER_CATEGORY"); maxPer != "" {
		if n, err := strconv.Atoi(maxPer); err == nil && n > 0 {
			config.News.MaxPerCategory = n
		}
	}

	// Scheduler configuration
	if enabled := os.Getenv("ADVISOR_SCHEDULER_ENABLED"); enabled != "" {
		if e, err := strconv.ParseBool(enabled); err == nil {
			config.Scheduler.Enabled = e
		}
	}
	if schedule := os.Getenv("ADVISOR_SCHEDULER_REPORT_SCHEDULE"); schedule != "" {
		config.Scheduler.ReportSchedule = schedule
	}
	if tz := os.Getenv("ADVISOR_SCHEDULER_TIMEZONE"); tz != "" {
		config.Scheduler.Timezone = tz
	}

	// NewsAPI configuration
	if apiKey := os.Getenv("ADVISOR_NEWSAPI_API_KEY"); apiKey != "" {
		config.NewsAPI.APIKey = apiKey
	} else if apiKey := os.Getenv("NEWS_API_KEY"); apiKey != "" {
		config.NewsAPI.APIKey = apiKey
	}
	if baseURL := os.Getenv("ADVISOR_NEWSAPI_BASE_URL"); baseURL != "" {
		config.NewsAPI.BaseURL = baseURL
	}

	// Market data configuration
	if baseURL := os.Getenv("ADVISOR_MARKETDATA_BASE_URL"); baseURL != "" {
		config.MarketData.BaseURL = baseURL
	}

	// Gemini configuration
	if apiKey := os.Getenv("ADVISOR_GEMINI_API_KEY"); apiKey != "" {
		config.Gemini.APIKey = apiKey
	} else if apiKey := os.Getenv("GEMINI_API_KEY"); apiKey != "" {
		config.Gemini.APIKey = apiKey
	}
	if model := os.Getenv("ADVISOR_GEMINI_MODEL"); model != "" {
		config.Gemini.Model = model
	}
	if timeout := os.Getenv("ADVISOR_GEMINI_TIMEOUT"); timeout != "" {
		config.Gemini.Timeout = timeout
	}
	if rateLimit := os.Getenv("ADVISOR_GEMINI_RATE_LIMIT"); rateLimit != "" {
		config.Gemini.RateLimit = rateLimit
	}

	// Claude configuration
	if apiKey := os.Getenv("ANTHROPIC_API_KEY"); apiKey != "" {
		config.Claude.APIKey = apiKey
	}
	if apiKey := os.Getenv("ADVISOR_CLAUDE_API_KEY"); apiKey != "" {
		config.Claude.APIKey = apiKey // ADVISOR_ prefix takes priority
	}
	if model := os.Getenv("ADVISOR_CLAUDE_MODEL"); model != "" {
		config.Claude.Model = model
	}
	if maxTokens := os.Getenv("ADVISOR_CLAUDE_MAX_TOKENS"); maxTokens != "" {
		if mt, err := strconv.Atoi(maxTokens); err == nil {
			config.Claude.MaxTokens = mt
		}
	}

	// LLM provider configuration
	if provider := os.Getenv("ADVISOR_LLM_DEFAULT_PROVIDER"); provider != "" {
		config.LLM.DefaultProvider = LLMProvider(provider)
	}
}

// ApplyFlagOverrides applies command-line flag overrides to config
func ApplyFlagOverrides(config *Config, port int, host string) {
	// Command-line flags have highest priority
	if port > 0 {
		config.Server.Port = port
	}
	if host != "" {
		config.Server.Host = host
	}
}

// IsProduction returns true if the environment is set to production
func (c *Config) IsProduction() bool {
	env := strings.ToLower(strings.TrimSpace(c.Environment))
	return env == "production" || env == "prod"
}

// Location returns the scheduler time zone, falling back to UTC
func (c *Config) Location() *time.Location {
	if c.Scheduler.Timezone == "" {
		return time.UTC
	}
	loc, err := time.LoadLocation(c.Scheduler.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}
