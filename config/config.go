package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"

	"agreement-radar/vars"
)

type HTTPConfig struct {
	Host           string
	Port           int
	MaxUploadBytes int64
	AllowedOrigins []string
}

type DBConfig struct {
	DSN             string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
	LogSQL          bool
}

type LLMConfig struct {
	Provider   string
	Model      string
	APIKey     string
	BaseURL    string
	OllamaPath string
	Timeout    time.Duration
}

type StorageConfig struct {
	Root   string
	Bucket string
}

type SearchConfig struct {
	Addresses []string
	Index     string
}

type ReminderConfig struct {
	Schedule    string
	HorizonDays int
}

type Config struct {
	Environment string
	HTTP        HTTPConfig
	DB          DBConfig
	LLM         LLMConfig
	Storage     StorageConfig
	Search      SearchConfig
	Reminder    ReminderConfig
}

func Load() (*Config, error) {
	v := viper.New()
	v.SetConfigName("app")
	v.SetConfigType("env")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	v.AddConfigPath("./deploy")
	v.AutomaticEnv()

	_ = v.ReadInConfig()

	return fromViper(v)
}

func fromViper(v *viper.Viper) (*Config, error) {
	v.SetDefault("APP_ENV", "development")
	v.SetDefault("HTTP_HOST", "0.0.0.0")
	v.SetDefault("HTTP_PORT", 8081)
	v.SetDefault("MAX_UPLOAD_BYTES", 25<<20)
	v.SetDefault("DB_MAX_OPEN_CONNS", 100)
	v.SetDefault("DB_MAX_IDLE_CONNS", 10)
	v.SetDefault("DB_CONN_MAX_LIFETIME", "1h")
	v.SetDefault("LLM_PROVIDER", vars.PROVIDER_OPENAI)
	v.SetDefault("OLLAMA_PATH", "http://localhost:11434")
	v.SetDefault("LLM_TIMEOUT", "120s")
	v.SetDefault("STORAGE_ROOT", "./data")
	v.SetDefault("STORAGE_BUCKET", vars.DEFAULT_BUCKET)
	v.SetDefault("ES_INDEX", vars.DEFAULT_ESINDEX)
	v.SetDefault("REMINDER_CRON", "0 7 * * *")
	v.SetDefault("REMINDER_HORIZON_DAYS", 30)

	cfg := &Config{
		Environment: v.GetString("APP_ENV"),
		HTTP: HTTPConfig{
			Host:           v.GetString("HTTP_HOST"),
			Port:           v.GetInt("HTTP_PORT"),
			MaxUploadBytes: v.GetInt64("MAX_UPLOAD_BYTES"),
			AllowedOrigins: parseList(v.GetString("CORS_ALLOWED_ORIGINS")),
		},
		DB: DBConfig{
			DSN:             v.GetString("DB_DSN"),
			MaxOpenConns:    v.GetInt("DB_MAX_OPEN_CONNS"),
			MaxIdleConns:    v.GetInt("DB_MAX_IDLE_CONNS"),
			ConnMaxLifetime: v.GetDuration("DB_CONN_MAX_LIFETIME"),
			LogSQL:          v.GetBool("DB_LOG_SQL"),
		},
		LLM: LLMConfig{
			Provider:   strings.ToLower(strings.TrimSpace(v.GetString("LLM_PROVIDER"))),
			Model:      v.GetString("LLM_MODEL"),
			APIKey:     v.GetString("OPENAI_API_KEY"),
			BaseURL:    v.GetString("OPENAI_BASE_URL"),
			OllamaPath: v.GetString("OLLAMA_PATH"),
			Timeout:    v.GetDuration("LLM_TIMEOUT"),
		},
		Storage: StorageConfig{
			Root:   v.GetString("STORAGE_ROOT"),
			Bucket: v.GetString("STORAGE_BUCKET"),
		},
		Search: SearchConfig{
			Addresses: parseList(v.GetString("ES_ADDR")),
			Index:     v.GetString("ES_INDEX"),
		},
		Reminder: ReminderConfig{
			Schedule:    v.GetString("REMINDER_CRON"),
			HorizonDays: v.GetInt("REMINDER_HORIZON_DAYS"),
		},
	}

	if cfg.LLM.Model == "" {
		switch cfg.LLM.Provider {
		case vars.PROVIDER_OLLAMA:
			cfg.LLM.Model = vars.QWEN7B
		default:
			cfg.LLM.Model = vars.GPT4O
		}
	}
	if len(cfg.HTTP.AllowedOrigins) == 0 {
		cfg.HTTP.AllowedOrigins = []string{"http://localhost:3000"}
	}

	if err := validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func validate(cfg *Config) error {
	if cfg.DB.DSN == "" {
		return fmt.Errorf("DB_DSN is required")
	}
	switch cfg.LLM.Provider {
	case vars.PROVIDER_OPENAI:
		if cfg.LLM.APIKey == "" {
			return fmt.Errorf("OPENAI_API_KEY is required for provider %q", cfg.LLM.Provider)
		}
	case vars.PROVIDER_OLLAMA:
		if cfg.LLM.OllamaPath == "" {
			return fmt.Errorf("OLLAMA_PATH is required for provider %q", cfg.LLM.Provider)
		}
	default:
		return fmt.Errorf("unsupported LLM_PROVIDER %q", cfg.LLM.Provider)
	}
	if cfg.HTTP.Port <= 0 {
		return fmt.Errorf("HTTP_PORT must be positive")
	}
	if cfg.Reminder.HorizonDays < 0 {
		return fmt.Errorf("REMINDER_HORIZON_DAYS must not be negative")
	}
	return nil
}

func parseList(raw string) []string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil
	}
	items := strings.Split(raw, ",")
	result := make([]string, 0, len(items))
	for _, item := range items {
		item = strings.TrimSpace(item)
		if item != "" {
			result = append(result, item)
		}
	}
	return result
}
