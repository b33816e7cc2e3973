package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/Veraticus/gastos/internal/common"
	"github.com/Veraticus/gastos/internal/llm"
	"github.com/Veraticus/gastos/internal/model"
)

// EnvPrefix is the prefix for environment overrides, e.g. GASTOS_LLM_MODEL.
const EnvPrefix = "GASTOS"

// Config is the typed application configuration.
type Config struct {
	Mirrors      map[model.UserID]string
	DatabasePath string
	LogLevel     string
	LogFormat    string
	LLM          LLMConfig
}

// LLMConfig configures the statement extraction service.
type LLMConfig struct {
	Provider     string
	Model        string
	APIKey       string
	BaseURL      string
	MaxAttempts  int
	InitialDelay time.Duration
	RateLimit    int
	Timeout      time.Duration
}

// SetDefaults registers default values on v.
func SetDefaults(v *viper.Viper) {
	home, _ := os.UserHomeDir()
	v.SetDefault("database.path", filepath.Join(home, ".local", "share", "gastos", "gastos.db"))
	v.SetDefault("llm.provider", llm.ProviderGemini)
	v.SetDefault("llm.max_attempts", 3)
	v.SetDefault("llm.initial_delay", time.Second)
	v.SetDefault("llm.rate_limit", 0)
	v.SetDefault("llm.timeout", 60*time.Second)
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "console")
}

// Init points v at the config file (or the default search path), loads a
// .env file when one exists and enables GASTOS_ environment overrides.
func Init(v *viper.Viper, cfgFile string) error {
	_ = godotenv.Load()

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		if err != nil {
			return fmt.Errorf("failed to get home directory: %w", err)
		}
		v.AddConfigPath(filepath.Join(home, ".config", "gastos"))
		v.AddConfigPath(".")
		v.SetConfigName("config")
		v.SetConfigType("yaml")
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	SetDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return fmt.Errorf("failed to read config: %w", err)
		}
	}
	return nil
}

// Load reads the global viper instance into a validated Config.
func Load() (*Config, error) {
	return FromViper(viper.GetViper())
}

// FromViper reads v into a validated Config.
func FromViper(v *viper.Viper) (*Config, error) {
	cfg := &Config{
		DatabasePath: ExpandPath(v.GetString("database.path")),
		LogLevel:     v.GetString("logging.level"),
		LogFormat:    v.GetString("logging.format"),
		Mirrors:      make(map[model.UserID]string),
		LLM: LLMConfig{
			Provider:     strings.ToLower(v.GetString("llm.provider")),
			Model:        v.GetString("llm.model"),
			APIKey:       v.GetString("llm.api_key"),
			BaseURL:      v.GetString("llm.base_url"),
			MaxAttempts:  v.GetInt("llm.max_attempts"),
			InitialDelay: v.GetDuration("llm.initial_delay"),
			RateLimit:    v.GetInt("llm.rate_limit"),
			Timeout:      v.GetDuration("llm.timeout"),
		},
	}

	if cfg.LLM.APIKey == "" {
		cfg.LLM.APIKey = providerKeyFromEnv(cfg.LLM.Provider)
	}

	for _, id := range model.Users() {
		if p := v.GetString("users." + string(id) + ".file"); p != "" {
			cfg.Mirrors[id] = ExpandPath(p)
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func providerKeyFromEnv(provider string) string {
	switch provider {
	case llm.ProviderOpenAI:
		return os.Getenv("OPENAI_API_KEY")
	default:
		return os.Getenv("GEMINI_API_KEY")
	}
}

// Validate reports every invalid setting at once.
func (c *Config) Validate() error {
	var problems []string

	if c.DatabasePath == "" {
		problems = append(problems, "database.path cannot be empty")
	}
	if _, err := common.ParseLevel(c.LogLevel); err != nil {
		problems = append(problems, fmt.Sprintf("invalid logging.level %q", c.LogLevel))
	}
	if c.LogFormat != "console" && c.LogFormat != "json" {
		problems = append(problems, fmt.Sprintf("invalid logging.format %q: must be console or json", c.LogFormat))
	}
	switch c.LLM.Provider {
	case llm.ProviderGemini, llm.ProviderOpenAI:
	default:
		problems = append(problems, fmt.Sprintf("invalid llm.provider %q: must be gemini or openai", c.LLM.Provider))
	}
	if c.LLM.MaxAttempts < 1 {
		problems = append(problems, "llm.max_attempts must be at least 1")
	}
	if c.LLM.InitialDelay < 0 {
		problems = append(problems, "llm.initial_delay cannot be negative")
	}
	if c.LLM.RateLimit < 0 {
		problems = append(problems, "llm.rate_limit cannot be negative")
	}

	if len(problems) > 0 {
		return fmt.Errorf("%w: %s", common.ErrInvalidConfig, strings.Join(problems, "; "))
	}
	return nil
}

// Extraction converts the LLM settings into a client configuration. An
// empty key falls back to storedKey, the key persisted in the app state.
func (c *Config) Extraction(storedKey string) llm.Config {
	key := c.LLM.APIKey
	if key == "" {
		key = storedKey
	}
	retry := common.DefaultExtractionRetry()
	retry.MaxAttempts = c.LLM.MaxAttempts
	if c.LLM.InitialDelay > 0 {
		retry.InitialDelay = c.LLM.InitialDelay
	}
	return llm.Config{
		Provider:  c.LLM.Provider,
		APIKey:    key,
		Model:     c.LLM.Model,
		BaseURL:   c.LLM.BaseURL,
		Timeout:   c.LLM.Timeout,
		RateLimit: c.LLM.RateLimit,
		Retry:     retry,
	}
}
