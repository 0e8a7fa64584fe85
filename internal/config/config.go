package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
	"github.com/joho/godotenv"
)

// DefaultPath is read when present; its absence is not an error.
const DefaultPath = "config.json"

// CredentialsHint is printed by the CLIs when the API keys are missing.
const CredentialsHint = "Please set GEMINI_API_KEY and SERPER_API_KEY in your environment or .env"

var ErrMissingCredentials = errors.New("missing API credentials")

type ServerConfig struct {
	Host    string `json:"host" env:"SERVER_HOST" env-default:"0.0.0.0"`
	Port    int    `json:"port" env:"SERVER_PORT" env-default:"8080"`
	Subpath string `json:"subpath" env:"SERVER_SUBPATH"`
}

type GeminiConfig struct {
	APIKey          string  `json:"api_key" env:"GEMINI_API_KEY"`
	BaseURL         string  `json:"base_url" env:"GEMINI_BASE_URL" env-default:"https://generativelanguage.googleapis.com/v1"`
	Model           string  `json:"model" env:"GEMINI_MODEL" env-default:"gemini-2.0-flash"`
	Temperature     float64 `json:"temperature" env-default:"0.3"`
	MaxOutputTokens int     `json:"max_output_tokens" env-default:"3000"`
	// 0 means no client-side timeout.
	TimeoutSeconds int `json:"timeout_seconds" env:"GEMINI_TIMEOUT_SECONDS"`
	// Server only: concurrent calls and per-priority queue depth.
	MaxConcurrent int `json:"max_concurrent" env:"GEMINI_MAX_CONCURRENT" env-default:"2"`
	QueueSize     int `json:"queue_size" env-default:"20"`
}

type SerperConfig struct {
	APIKey         string `json:"api_key" env:"SERPER_API_KEY"`
	URL            string `json:"url" env:"SERPER_URL" env-default:"https://google.serper.dev/search"`
	Num            int    `json:"num" env-default:"10"`
	TimeoutSeconds int    `json:"timeout_seconds" env-default:"15"`
}

// SearchConfig controls how heterogeneous search payloads are probed.
type SearchConfig struct {
	ResultKeys  []string `json:"result_keys" env:"SEARCH_RESULT_KEYS" env-default:"organic,organic_results,organic_results_list,items,results"`
	TitleKeys   []string `json:"title_keys" env-default:"title,name,heading"`
	LinkKeys    []string `json:"link_keys" env-default:"link,url,displayed_link,source"`
	SnippetKeys []string `json:"snippet_keys" env-default:"snippet,description,snippet_highlighted"`
}

type SportsDBConfig struct {
	BaseURL        string `json:"base_url" env:"SPORTSDB_BASE_URL" env-default:"https://www.thesportsdb.com/api/v1/json/3"`
	TimeoutSeconds int    `json:"timeout_seconds" env-default:"10"`
}

type PageConfig struct {
	Mode           string `json:"mode" env:"PAGE_MODE" env-default:"regex"`
	MaxChars       int    `json:"max_chars" env-default:"5000"`
	TimeoutSeconds int    `json:"timeout_seconds" env-default:"10"`
	UserAgent      string `json:"user_agent" env-default:"Mozilla/5.0"`
	MaxSizeMB      int    `json:"max_size_mb" env-default:"5"`
}

// RetryConfig is off by default (MaxRetries 0): every upstream call is tried once.
type RetryConfig struct {
	MaxRetries  int `json:"max_retries" env:"REQUEST_MAX_RETRIES"`
	DelayMillis int `json:"delay_ms" env:"REQUEST_DELAY_MS" env-default:"800"`
}

// BreakerConfig is disabled while FailureThreshold is 0.
type BreakerConfig struct {
	FailureThreshold int `json:"failure_threshold" env:"BREAKER_FAILURE_THRESHOLD"`
	OpenSeconds      int `json:"open_seconds" env-default:"300"`
}

type RecommenderConfig struct {
	IntervalSeconds int `json:"interval_seconds" env:"RECOMMENDER_INTERVAL_SECONDS" env-default:"2"`
	Duration        int `json:"duration" env:"RECOMMENDER_DURATION" env-default:"3"`
}

type RedisConfig struct {
	Addr     string `json:"addr" env:"REDIS_ADDR"`
	Password string `json:"password" env:"REDIS_PASSWORD"`
	DB       int    `json:"db" env:"REDIS_DB"`
	Channel  string `json:"channel" env:"REDIS_CHANNEL" env-default:"football_recommendations"`
}

type KafkaConfig struct {
	Brokers []string `json:"brokers" env:"KAFKA_BROKERS"`
	Topic   string   `json:"topic" env:"KAFKA_TOPIC" env-default:"football.recommendations"`
}

type Config struct {
	Env         string            `json:"env" env:"APP_ENV" env-default:"local"`
	LogLevel    string            `json:"log_level" env:"LOG_LEVEL"`
	Server      ServerConfig      `json:"server"`
	Gemini      GeminiConfig      `json:"gemini"`
	Serper      SerperConfig      `json:"serper"`
	Search      SearchConfig      `json:"search"`
	SportsDB    SportsDBConfig    `json:"sportsdb"`
	Page        PageConfig        `json:"page"`
	Retry       RetryConfig       `json:"retry"`
	Breaker     BreakerConfig     `json:"breaker"`
	Recommender RecommenderConfig `json:"recommender"`
	Redis       RedisConfig       `json:"redis"`
	Kafka       KafkaConfig       `json:"kafka"`
}

var (
	once   sync.Once
	cfg    *Config
	cfgErr error
)

// LoadConfig reads .env, the JSON file at path and the environment (singleton).
// An empty path falls back to CONFIG_PATH, then DefaultPath.
func LoadConfig(path string) (*Config, error) {
	once.Do(func() {
		_ = godotenv.Load()

		if path == "" {
			path = os.Getenv("CONFIG_PATH")
		}
		if path == "" {
			path = DefaultPath
		}

		var c Config
		if _, err := os.Stat(path); err == nil {
			if err := cleanenv.ReadConfig(path, &c); err != nil {
				cfgErr = fmt.Errorf("invalid config format: %w", err)
				return
			}
		} else if path != DefaultPath {
			cfgErr = fmt.Errorf("failed to read config file: %w", err)
			return
		} else if err := cleanenv.ReadEnv(&c); err != nil {
			cfgErr = fmt.Errorf("invalid environment: %w", err)
			return
		}
		cfg = &c
	})
	return cfg, cfgErr
}

// GetConfig returns the loaded config (must call LoadConfig first)
func GetConfig() *Config {
	return cfg
}

// ResetConfigForTest resets the singleton state (for testing only)
func ResetConfigForTest() {
	once = sync.Once{}
	cfg = nil
	cfgErr = nil
}

// Validate checks the credentials the report generator needs.
func (c *Config) Validate() error {
	var missing []string
	if strings.TrimSpace(c.Gemini.APIKey) == "" {
		missing = append(missing, "GEMINI_API_KEY")
	}
	if strings.TrimSpace(c.Serper.APIKey) == "" {
		missing = append(missing, "SERPER_API_KEY")
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: %s", ErrMissingCredentials, strings.Join(missing, ", "))
	}
	return nil
}

// ValidateGemini checks only the LLM key; the recommender does not search.
func (c *Config) ValidateGemini() error {
	if strings.TrimSpace(c.Gemini.APIKey) == "" {
		return fmt.Errorf("%w: GEMINI_API_KEY", ErrMissingCredentials)
	}
	return nil
}

func seconds(n int) time.Duration {
	if n <= 0 {
		return 0
	}
	return time.Duration(n) * time.Second
}

func (g GeminiConfig) Timeout() time.Duration   { return seconds(g.TimeoutSeconds) }
func (s SerperConfig) Timeout() time.Duration   { return seconds(s.TimeoutSeconds) }
func (s SportsDBConfig) Timeout() time.Duration { return seconds(s.TimeoutSeconds) }
func (p PageConfig) Timeout() time.Duration     { return seconds(p.TimeoutSeconds) }
func (b BreakerConfig) OpenFor() time.Duration  { return seconds(b.OpenSeconds) }

func (r RecommenderConfig) Interval() time.Duration { return seconds(r.IntervalSeconds) }

func (r RetryConfig) Delay() time.Duration {
	if r.DelayMillis <= 0 {
		return 0
	}
	return time.Duration(r.DelayMillis) * time.Millisecond
}
