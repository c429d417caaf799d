package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Database  DatabaseConfig  `mapstructure:"database"`
	Chatbot   ChatbotConfig   `mapstructure:"chatbot"`
	Knowledge KnowledgeConfig `mapstructure:"knowledge"`
	Matcher   MatcherConfig   `mapstructure:"matcher"`
	LLM       LLMConfig       `mapstructure:"llm"`
	Redis     RedisConfig     `mapstructure:"redis"`
	Queue     QueueConfig     `mapstructure:"queue"`
	RateLimit RateLimitConfig `mapstructure:"ratelimit"`
}

type ServerConfig struct {
	Port         int    `mapstructure:"port"`
	Environment  string `mapstructure:"environment"`
	ReadTimeout  int    `mapstructure:"read_timeout"`
	WriteTimeout int    `mapstructure:"write_timeout"`
}

type DatabaseConfig struct {
	Enabled         bool   `mapstructure:"enabled"`
	Host            string `mapstructure:"host"`
	Port            int    `mapstructure:"port"`
	User            string `mapstructure:"user"`
	Password        string `mapstructure:"password"`
	DBName          string `mapstructure:"dbname"`
	SSLMode         string `mapstructure:"sslmode"`
	MaxOpenConns    int    `mapstructure:"max_open_conns"`
	MaxIdleConns    int    `mapstructure:"max_idle_conns"`
	ConnMaxLifetime int    `mapstructure:"conn_max_lifetime"`
}

type ChatbotConfig struct {
	Token           string `mapstructure:"token"`
	WebhookBaseURL  string `mapstructure:"webhook_base_url"`
	WebhookHost     string `mapstructure:"webhook_host"`
	WebhookPath     string `mapstructure:"webhook_path"`
	SecretToken     string `mapstructure:"secret_token"`
	HumanContactURL string `mapstructure:"human_contact_url"`
	Timeout         int    `mapstructure:"timeout"`
}

// WebhookURL returns the public webhook address registered with Telegram,
// or an empty string when neither a base URL nor a host is configured.
func (c ChatbotConfig) WebhookURL() string {
	base := strings.TrimRight(c.WebhookBaseURL, "/")
	if base == "" && c.WebhookHost != "" {
		base = "https://" + strings.TrimRight(c.WebhookHost, "/")
	}
	if base == "" {
		return ""
	}
	return base + "/" + strings.TrimLeft(c.WebhookPath, "/")
}

type KnowledgeConfig struct {
	Source  string   `mapstructure:"source"`
	Path    string   `mapstructure:"path"`
	Regions []string `mapstructure:"regions"`
}

type MatcherConfig struct {
	Rule string `mapstructure:"rule"`
}

type LLMConfig struct {
	Enabled      bool    `mapstructure:"enabled"`
	Provider     string  `mapstructure:"provider"`
	APIEndpoint  string  `mapstructure:"api_endpoint"`
	APIKey       string  `mapstructure:"api_key"`
	Model        string  `mapstructure:"model"`
	Timeout      int     `mapstructure:"timeout"`
	MaxRetries   int     `mapstructure:"max_retries"`
	HistorySize  int     `mapstructure:"history_size"`
	SystemPrompt string  `mapstructure:"system_prompt"`
	RatePerMin   float64 `mapstructure:"rate_per_minute"`
	Burst        int     `mapstructure:"burst"`
}

type RedisConfig struct {
	Enabled    bool   `mapstructure:"enabled"`
	URL        string `mapstructure:"url"`
	KeyPrefix  string `mapstructure:"key_prefix"`
	HistoryTTL int    `mapstructure:"history_ttl"`
}

type QueueConfig struct {
	Enabled         bool   `mapstructure:"enabled"`
	Name            string `mapstructure:"name"`
	WorkerCount     int    `mapstructure:"worker_count"`
	MaxAttempts     int    `mapstructure:"max_attempts"`
	BufferSize      int    `mapstructure:"buffer_size"`
	PollTimeout     int    `mapstructure:"poll_timeout"`
	ShutdownTimeout int    `mapstructure:"shutdown_timeout"`
}

type RateLimitConfig struct {
	Enabled      bool    `mapstructure:"enabled"`
	WebhookRPS   float64 `mapstructure:"webhook_rps"`
	WebhookBurst int     `mapstructure:"webhook_burst"`
}

// Knowledge sources
const (
	SourceEmbedded = "embedded"
	SourceFile     = "file"
	SourceDatabase = "database"
)

// Matching rules
const (
	RuleTokens    = "tokens"
	RuleSubstring = "substring"
)

// LLM providers
const (
	ProviderOpenRouter = "openrouter"
	ProviderGemini     = "gemini"
)

func Load() (*Config, error) {
	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath("./configs")
	v.AddConfigPath(".")

	// Set defaults
	setDefaults(v)

	// Enable environment variable support
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	if err := bindEnvAliases(v); err != nil {
		return nil, fmt.Errorf("failed to bind environment: %w", err)
	}

	// Read config file
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return &config, nil
}

// bindEnvAliases maps the variable names used by earlier deployments of the
// bot onto config keys. The first name of each list is the canonical one.
func bindEnvAliases(v *viper.Viper) error {
	aliases := map[string][]string{
		"server.port":              {"SERVER_PORT", "PORT"},
		"chatbot.token":            {"CHATBOT_TOKEN", "BOT_TOKEN", "TELEGRAM_TOKEN"},
		"chatbot.webhook_base_url": {"CHATBOT_WEBHOOK_BASE_URL", "WEBHOOK_URL"},
		"chatbot.webhook_host":     {"CHATBOT_WEBHOOK_HOST", "RENDER_EXTERNAL_HOSTNAME"},
		"llm.api_key":              {"LLM_API_KEY", "OPENROUTER_API_KEY"},
		"redis.url":                {"REDIS_URL"},
	}

	for key, envs := range aliases {
		if err := v.BindEnv(append([]string{key}, envs...)...); err != nil {
			return err
		}
	}
	return nil
}

// Validate rejects configurations the services cannot start with
func (c *Config) Validate() error {
	switch c.Knowledge.Source {
	case SourceEmbedded, SourceDatabase:
	case SourceFile:
		if c.Knowledge.Path == "" {
			return fmt.Errorf("knowledge.path is required when knowledge.source is %q", SourceFile)
		}
	default:
		return fmt.Errorf("unknown knowledge.source %q", c.Knowledge.Source)
	}

	if c.Knowledge.Source == SourceDatabase && !c.Database.Enabled {
		return fmt.Errorf("knowledge.source %q requires database.enabled", SourceDatabase)
	}

	switch c.Matcher.Rule {
	case RuleTokens, RuleSubstring:
	default:
		return fmt.Errorf("unknown matcher.rule %q", c.Matcher.Rule)
	}

	if c.LLM.Enabled {
		switch c.LLM.Provider {
		case ProviderOpenRouter, ProviderGemini:
		default:
			return fmt.Errorf("unknown llm.provider %q", c.LLM.Provider)
		}
		if c.LLM.HistorySize < 0 {
			return fmt.Errorf("llm.history_size must not be negative")
		}
		// Inline replies run inside the webhook request
		if !c.Queue.Enabled && c.Server.WriteTimeout > 0 && c.LLM.Timeout >= c.Server.WriteTimeout {
			return fmt.Errorf("llm.timeout (%ds) must be shorter than server.write_timeout (%ds) when the queue is disabled",
				c.LLM.Timeout, c.Server.WriteTimeout)
		}
	}

	if c.Queue.Enabled {
		if c.Queue.WorkerCount <= 0 {
			return fmt.Errorf("queue.worker_count must be greater than 0")
		}
		if c.Queue.MaxAttempts <= 0 {
			return fmt.Errorf("queue.max_attempts must be greater than 0")
		}
	}

	return nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", 8000)
	v.SetDefault("server.environment", "development")
	v.SetDefault("server.read_timeout", 30)
	v.SetDefault("server.write_timeout", 30)

	v.SetDefault("database.enabled", false)
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.user", "postgres")
	v.SetDefault("database.password", "postgres")
	v.SetDefault("database.dbname", "botchopp")
	v.SetDefault("database.sslmode", "disable")
	v.SetDefault("database.max_open_conns", 10)
	v.SetDefault("database.max_idle_conns", 2)
	v.SetDefault("database.conn_max_lifetime", 300)

	v.SetDefault("chatbot.token", "")
	v.SetDefault("chatbot.webhook_base_url", "")
	v.SetDefault("chatbot.webhook_host", "")
	v.SetDefault("chatbot.webhook_path", "/api/telegram/webhook")
	v.SetDefault("chatbot.secret_token", "")
	v.SetDefault("chatbot.human_contact_url", "")
	v.SetDefault("chatbot.timeout", 30)

	v.SetDefault("knowledge.source", SourceEmbedded)
	v.SetDefault("knowledge.path", "")
	v.SetDefault("knowledge.regions", []string{})

	v.SetDefault("matcher.rule", RuleTokens)

	v.SetDefault("llm.enabled", false)
	v.SetDefault("llm.provider", ProviderOpenRouter)
	v.SetDefault("llm.api_endpoint", "https://openrouter.ai/api/v1")
	v.SetDefault("llm.api_key", "")
	v.SetDefault("llm.model", "meta-llama/llama-4-maverick:free")
	v.SetDefault("llm.timeout", 20)
	v.SetDefault("llm.max_retries", 2)
	v.SetDefault("llm.history_size", 6)
	v.SetDefault("llm.system_prompt", "")
	v.SetDefault("llm.rate_per_minute", 6)
	v.SetDefault("llm.burst", 3)

	v.SetDefault("redis.enabled", false)
	v.SetDefault("redis.url", "redis://localhost:6379/0")
	v.SetDefault("redis.key_prefix", "botchopp")
	v.SetDefault("redis.history_ttl", 3600) // 1 hour in seconds

	v.SetDefault("queue.enabled", false)
	v.SetDefault("queue.name", "outbound")
	v.SetDefault("queue.worker_count", 2)
	v.SetDefault("queue.max_attempts", 3)
	v.SetDefault("queue.buffer_size", 256)
	v.SetDefault("queue.poll_timeout", 5)
	v.SetDefault("queue.shutdown_timeout", 15)

	v.SetDefault("ratelimit.enabled", true)
	v.SetDefault("ratelimit.webhook_rps", 20)
	v.SetDefault("ratelimit.webhook_burst", 40)
}
