package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"

	"grocerbot/internal/llm"
	"grocerbot/internal/storage"
)

// DevSessionSecret is the fallback signing secret outside production.
const DevSessionSecret = "grocer-dev-secret"

type Config struct {
	Port     string `env:"PORT" envDefault:"5000"`
	AppEnv   string `env:"APP_ENV" envDefault:"development"`
	LogLevel string `env:"LOG_LEVEL" envDefault:"info"`

	CORSOrigins []string `env:"CORS_ORIGINS" envSeparator:"," envDefault:"http://localhost:3000,http://127.0.0.1:3000,http://localhost:5000"`

	PricesFile  string `env:"GROCERY_PRICES_FILE" envDefault:"grocery_prices.json"`
	SnapshotDir string `env:"SNAPSHOT_DIR" envDefault:"./saved_sessions"`
	PDFDir      string `env:"PDF_DIR" envDefault:"./tmp_pdfs"`

	Session  SessionConfig
	Database DatabaseConfig
	Gemini   GeminiConfig
	Llama    LlamaConfig
	R2       R2Config
}

type SessionConfig struct {
	Secret       string        `env:"SESSION_SECRET" envDefault:"grocer-dev-secret"`
	TTL          time.Duration `env:"SESSION_TTL" envDefault:"30m"`
	CookieName   string        `env:"SESSION_COOKIE_NAME" envDefault:"grocer_session"`
	CookieSecure bool          `env:"SESSION_COOKIE_SECURE" envDefault:"false"`
	RedisURL     string        `env:"REDIS_URL"`
	SweepEvery   time.Duration `env:"SESSION_SWEEP_INTERVAL" envDefault:"1m"`
}

type DatabaseConfig struct {
	URL        string `env:"DATABASE_URL"`
	SQLitePath string `env:"ORDERS_SQLITE_PATH" envDefault:"./orders.db"`
}

type GeminiConfig struct {
	APIKey          string        `env:"GEMINI_API_KEY"`
	Model           string        `env:"GEMINI_MODEL" envDefault:"gemini-2.0-flash"`
	Temperature     float32       `env:"GEMINI_TEMPERATURE" envDefault:"0.6"`
	TopP            float32       `env:"GEMINI_TOP_P" envDefault:"0.9"`
	TopK            float32       `env:"GEMINI_TOP_K" envDefault:"40"`
	MaxOutputTokens int32         `env:"GEMINI_MAX_OUTPUT_TOKENS" envDefault:"300"`
	Timeout         time.Duration `env:"GEMINI_TIMEOUT" envDefault:"30s"`
}

// LlamaConfig is used only when no Gemini key is set.
type LlamaConfig struct {
	APIURL string `env:"LLAMA_API_URL"`
	APIKey string `env:"LLAMA_API_KEY"`
	Model  string `env:"LLAMA_MODEL" envDefault:"Llama-3.3-70B-Instruct"`
}

type R2Config struct {
	Endpoint      string `env:"R2_ENDPOINT"`
	AccessKey     string `env:"R2_ACCESS_KEY"`
	SecretKey     string `env:"R2_SECRET_KEY"`
	Bucket        string `env:"R2_BUCKET_NAME"`
	PublicBaseURL string `env:"R2_PUBLIC_BASE_URL"`
}

// Load reads .env (outside production) and then the process environment.
func Load() (*Config, error) {
	if os.Getenv("APP_ENV") != "production" {
		_ = godotenv.Load()
	}

	return parse(env.Options{})
}

func parse(opts env.Options) (*Config, error) {
	cfg, err := env.ParseAsWithOptions[Config](opts)
	if err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) IsProduction() bool {
	return c.AppEnv == "production"
}

// Validate fails fast on settings the server cannot run with.
func (c *Config) Validate() error {
	var errs []error

	if c.Port == "" {
		errs = append(errs, errors.New("PORT must not be empty"))
	}
	if c.Session.TTL <= 0 {
		errs = append(errs, errors.New("SESSION_TTL must be positive"))
	}
	if c.Session.Secret == "" {
		errs = append(errs, errors.New("SESSION_SECRET must not be empty"))
	}
	if c.IsProduction() && c.Session.Secret == DevSessionSecret {
		errs = append(errs, errors.New("SESSION_SECRET must be set in production"))
	}
	if c.Gemini.Timeout <= 0 {
		errs = append(errs, errors.New("GEMINI_TIMEOUT must be positive"))
	}

	r2 := c.R2
	set := 0
	for _, v := range []string{r2.Endpoint, r2.AccessKey, r2.SecretKey, r2.Bucket} {
		if v != "" {
			set++
		}
	}
	if set != 0 && set != 4 {
		errs = append(errs, errors.New("R2_ENDPOINT, R2_ACCESS_KEY, R2_SECRET_KEY and R2_BUCKET_NAME must be set together"))
	}

	return errors.Join(errs...)
}

func (c *Config) Addr() string {
	return ":" + c.Port
}

func (g GeminiConfig) Params() llm.Params {
	return llm.Params{
		Temperature:     g.Temperature,
		TopP:            g.TopP,
		TopK:            g.TopK,
		MaxOutputTokens: g.MaxOutputTokens,
	}
}

func (r R2Config) Storage() storage.R2Config {
	return storage.R2Config{
		Endpoint:      r.Endpoint,
		AccessKey:     r.AccessKey,
		SecretKey:     r.SecretKey,
		Bucket:        r.Bucket,
		PublicBaseURL: r.PublicBaseURL,
	}
}
