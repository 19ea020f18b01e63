// File: internal/config/config.go
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/caarlos0/env/v6"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const (
	ModePolling = "polling"
	ModeWebhook = "webhook"

	ProviderGemini = "gemini"
	ProviderOpenAI = "openai"
	ProviderNoop   = "noop"
)

type RuntimeConfig struct {
	Dev bool
}

type BotConfig struct {
	Token           string        `yaml:"token" env:"TELEGRAM_BOT_TOKEN"`
	Mode            string        `yaml:"mode" env:"BOT_MODE"`       // polling | webhook
	Workers         int           `yaml:"workers" env:"BOT_WORKERS"` // polling workers
	Language        string        `yaml:"language" env:"BOT_LANGUAGE"`
	DownloadTimeout time.Duration `yaml:"download_timeout" env:"BOT_DOWNLOAD_TIMEOUT"`
	MaxImageBytes   int64         `yaml:"max_image_bytes" env:"BOT_MAX_IMAGE_BYTES"`
	Debug           bool          `yaml:"debug" env:"BOT_DEBUG"` // tgbotapi request dumps
}

type WebhookConfig struct {
	Listen       string `yaml:"listen" env:"WEBHOOK_LISTEN"`
	Port         int    `yaml:"port" env:"PORT"`
	Path         string `yaml:"path" env:"URL_PATH"`
	URL          string `yaml:"url" env:"WEBHOOK_URL"` // externally reachable URL registered with Telegram
	Secret       string `yaml:"secret" env:"WEBHOOK_SECRET"`
	SkipRegister bool   `yaml:"skip_register" env:"WEBHOOK_SKIP_REGISTER"`
}

type LogConfig struct {
	Level    string `yaml:"level" env:"LOG_LEVEL"`   // trace|debug|info|warn|error
	Format   string `yaml:"format" env:"LOG_FORMAT"` // json|console
	Sampling bool   `yaml:"sampling" env:"LOG_SAMPLING"`
}

type MetricsConfig struct {
	Port int `yaml:"port" env:"METRICS_PORT"` // polling mode only, 0 disables
}

type AIConfig struct {
	Provider        string        `yaml:"provider" env:"AI_PROVIDER"` // gemini | openai | noop
	GeminiKey       string        `yaml:"gemini_key" env:"GEMINI_API_KEY"`
	GeminiURL       string        `yaml:"gemini_url" env:"GEMINI_BASE_URL"`
	OpenAIKey       string        `yaml:"openai_key" env:"OPENAI_API_KEY"`
	OpenAIURL       string        `yaml:"openai_url" env:"OPENAI_BASE_URL"`
	Model           string        `yaml:"model" env:"AI_MODEL"`
	Timeout         time.Duration `yaml:"timeout" env:"AI_TIMEOUT"`
	ConcurrentLimit int           `yaml:"concurrent_limit" env:"AI_CONCURRENT_LIMIT"` // max concurrent AI calls, negative disables
	MaxOutputTokens int           `yaml:"max_output_tokens" env:"AI_MAX_OUTPUT_TOKENS"`
}

type Config struct {
	Bot     BotConfig     `yaml:"bot"`
	Webhook WebhookConfig `yaml:"webhook"`
	Log     LogConfig     `yaml:"log"`
	Metrics MetricsConfig `yaml:"metrics"`
	AI      AIConfig      `yaml:"ai"`

	Runtime RuntimeConfig `yaml:"-"`
}

// LoadConfig reads the optional YAML file at path, then applies environment
// variables (a local .env file is honoured) and fills defaults.
func LoadConfig(path string, dev bool) (*Config, error) {
	var cfg Config
	if path != "" {
		b, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config: %w", err)
		}
		if err := yaml.Unmarshal(b, &cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}
	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}

	cfg.applyDefaults()
	cfg.Runtime.Dev = dev
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) applyDefaults() {
	c.Bot.Mode = strings.ToLower(strings.TrimSpace(c.Bot.Mode))
	if c.Bot.Mode == "" {
		c.Bot.Mode = ModePolling
	}
	if c.Bot.Workers <= 0 {
		c.Bot.Workers = 8
	}
	if c.Bot.Language == "" {
		c.Bot.Language = "en"
	}
	if c.Bot.DownloadTimeout <= 0 {
		c.Bot.DownloadTimeout = 20 * time.Second
	}
	if c.Bot.MaxImageBytes <= 0 {
		c.Bot.MaxImageBytes = 10 << 20
	}

	if c.Webhook.Listen == "" {
		c.Webhook.Listen = "0.0.0.0"
	}
	if c.Webhook.Port == 0 {
		c.Webhook.Port = 8443
	}
	if c.Webhook.Path == "" {
		c.Webhook.Path = c.Bot.Token
	}
	if !strings.HasPrefix(c.Webhook.Path, "/") {
		c.Webhook.Path = "/" + c.Webhook.Path
	}

	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.Log.Format == "" {
		c.Log.Format = "json"
	}
	if c.Metrics.Port == 0 {
		c.Metrics.Port = 9090
	}

	c.AI.Provider = strings.ToLower(strings.TrimSpace(c.AI.Provider))
	if c.AI.Provider == "" {
		c.AI.Provider = ProviderGemini
	}
	if c.AI.Model == "" {
		switch c.AI.Provider {
		case ProviderOpenAI:
			c.AI.Model = "gpt-4o-mini"
		default:
			c.AI.Model = "gemini-2.0-flash"
		}
	}
	if c.AI.Timeout <= 0 {
		c.AI.Timeout = 30 * time.Second
	}
	if c.AI.ConcurrentLimit < 0 {
		c.AI.ConcurrentLimit = 0
	} else if c.AI.ConcurrentLimit == 0 {
		c.AI.ConcurrentLimit = 4
	}
	if c.AI.MaxOutputTokens <= 0 {
		c.AI.MaxOutputTokens = 1024
	}
}

// Validate performs the minimal checks needed to start the bot.
func (c *Config) Validate() error {
	if c.Bot.Token == "" {
		return errors.New("bot.token is required (TELEGRAM_BOT_TOKEN)")
	}
	switch c.Bot.Mode {
	case ModePolling:
	case ModeWebhook:
		if c.Webhook.URL == "" && !c.Webhook.SkipRegister {
			return errors.New("webhook.url is required in webhook mode (WEBHOOK_URL)")
		}
	default:
		return fmt.Errorf("bot.mode must be %q or %q, got %q", ModePolling, ModeWebhook, c.Bot.Mode)
	}
	switch c.AI.Provider {
	case ProviderGemini:
		if c.AI.GeminiKey == "" {
			return errors.New("ai.gemini_key is required (GEMINI_API_KEY)")
		}
	case ProviderOpenAI:
		if c.AI.OpenAIKey == "" {
			return errors.New("ai.openai_key is required (OPENAI_API_KEY)")
		}
	case ProviderNoop:
	default:
		return fmt.Errorf("unknown ai.provider %q", c.AI.Provider)
	}
	return nil
}

// ListenAddr is the host:port the webhook server binds to.
func (w WebhookConfig) ListenAddr() string {
	return fmt.Sprintf("%s:%d", w.Listen, w.Port)
}
