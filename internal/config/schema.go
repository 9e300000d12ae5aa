package config

// Config holds studydeck configuration.
// Stored at: ~/.studydeck/config.yaml
type Config struct {
	LLMProviders map[string]LLMProviderCfg `mapstructure:"llm_providers" yaml:"llm_providers"`
	Defaults     DefaultsCfg               `mapstructure:"defaults" yaml:"defaults"`
	Quota        QuotaCfg                  `mapstructure:"quota" yaml:"quota"`
	Server       ServerCfg                 `mapstructure:"server" yaml:"server"`
}

// LLMProviderCfg configures an LLM provider.
type LLMProviderCfg struct {
	Type      string  `mapstructure:"type" yaml:"type"`             // "openrouter", "openai", "mock"
	Model     string  `mapstructure:"model" yaml:"model"`           // Default model name
	APIKey    string  `mapstructure:"api_key" yaml:"api_key"`       // API key (supports ${ENV_VAR} syntax)
	RateLimit float64 `mapstructure:"rate_limit" yaml:"rate_limit"` // Requests per second
	Enabled   bool    `mapstructure:"enabled" yaml:"enabled"`
}

// DefaultsCfg specifies default selections for generation.
type DefaultsCfg struct {
	LLMProvider    string `mapstructure:"llm_provider" yaml:"llm_provider"`       // Default LLM provider name
	FlashcardCount int    `mapstructure:"flashcard_count" yaml:"flashcard_count"` // Default cards per request
	QuizCount      int    `mapstructure:"quiz_count" yaml:"quiz_count"`           // Default questions per request
}

// QuotaCfg configures per-user generation budgets.
type QuotaCfg struct {
	// Backend is "memory" or "redis".
	Backend string `mapstructure:"backend" yaml:"backend"`
	// Limit is the number of generations allowed per window.
	Limit int `mapstructure:"limit" yaml:"limit"`
	// WindowHours is the fixed window length in hours.
	WindowHours int `mapstructure:"window_hours" yaml:"window_hours"`
	// Redis connection, used when Backend is "redis".
	RedisAddr     string `mapstructure:"redis_addr" yaml:"redis_addr"`
	RedisPassword string `mapstructure:"redis_password" yaml:"redis_password"` // supports ${ENV_VAR}
	RedisDB       int    `mapstructure:"redis_db" yaml:"redis_db"`
}

// ServerCfg holds HTTP server settings.
type ServerCfg struct {
	Host string `mapstructure:"host" yaml:"host"`
	Port string `mapstructure:"port" yaml:"port"`
}

// DefaultConfig returns configuration with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		LLMProviders: map[string]LLMProviderCfg{
			"openrouter": {
				Type:    "openrouter",
				Model:   "anthropic/claude-sonnet-4",
				APIKey:  "${OPENROUTER_API_KEY}",
				Enabled: true,
			},
			"openai": {
				Type:    "openai",
				Model:   "gpt-4o-mini",
				APIKey:  "${OPENAI_API_KEY}",
				Enabled: false,
			},
		},
		Defaults: DefaultsCfg{
			LLMProvider:    "openrouter",
			FlashcardCount: 15,
			QuizCount:      10,
		},
		Quota: QuotaCfg{
			Backend:     "memory",
			Limit:       20,
			WindowHours: 24,
		},
		Server: ServerCfg{
			Host: "127.0.0.1",
			Port: "8585",
		},
	}
}

// GetLLMProvider returns an LLM provider config by name.
func (c *Config) GetLLMProvider(name string) (LLMProviderCfg, bool) {
	cfg, ok := c.LLMProviders[name]
	return cfg, ok
}

// EnabledLLMProviders returns all enabled LLM providers.
func (c *Config) EnabledLLMProviders() map[string]LLMProviderCfg {
	result := make(map[string]LLMProviderCfg)
	for name, cfg := range c.LLMProviders {
		if cfg.Enabled {
			result[name] = cfg
		}
	}
	return result
}
