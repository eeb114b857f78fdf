package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config 儲存 HTTP API 及外部相依的執行設定。
type Config struct {
	HTTP      HTTPConfig      `yaml:"http"`
	DB        DBConfig        `yaml:"db"`
	Auth      AuthConfig      `yaml:"auth"`
	CORS      CORSConfig      `yaml:"cors"`
	RateLimit RateLimitConfig `yaml:"rate_limit"`
	Fixtures  FixturesConfig  `yaml:"fixtures"`
}

type HTTPConfig struct {
	Addr string `yaml:"addr"`
}

type DBConfig struct {
	DSN          string        `yaml:"dsn"`
	MaxOpenConns int           `yaml:"max_open_conns"`
	MaxIdleConns int           `yaml:"max_idle_conns"`
	MaxIdleTime  time.Duration `yaml:"max_idle_time"`
}

// AuthConfig 保存兩把獨立密鑰：session 簽章與 CSRF 推導。
type AuthConfig struct {
	SessionSecret string        `yaml:"session_secret"`
	CSRFSecret    string        `yaml:"csrf_secret"`
	SessionTTL    time.Duration `yaml:"session_ttl"`
}

type CORSConfig struct {
	Origin string `yaml:"origin"`
}

type RateLimitConfig struct {
	LoginLimit  int           `yaml:"login_limit"`
	LoginWindow time.Duration `yaml:"login_window"`
	SyncLimit   int           `yaml:"sync_limit"`
	SyncWindow  time.Duration `yaml:"sync_window"`
}

type FixturesConfig struct {
	BaseURL   string `yaml:"base_url"`
	APIToken  string `yaml:"api_token"`
	DaysAhead int    `yaml:"days_ahead"`
}

// LoadFromFile 從 YAML 組態檔載入設定，再套用預設值與環境變數覆寫。
func LoadFromFile(path string) (Config, error) {
	// 嘗試載入 .env 檔案（如果存在）
	_ = godotenv.Load()

	var cfg Config
	data, err := os.ReadFile(path)
	if err == nil {
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("parse config yaml: %w", err)
		}
	} else if !os.IsNotExist(err) {
		return Config{}, fmt.Errorf("read config file: %w", err)
	}

	cfg = applyDefaults(cfg)
	cfg = applyEnv(cfg)
	return cfg, nil
}

// Validate 檢查必要設定。密鑰缺漏是啟動階段的致命錯誤，
// 不提供任何開發用預設值。
func (c Config) Validate() error {
	if c.Auth.SessionSecret == "" {
		return errors.New("SESSION_SECRET is not set")
	}
	if c.Auth.CSRFSecret == "" {
		return errors.New("CSRF_SECRET is not set")
	}
	return nil
}

func applyDefaults(cfg Config) Config {
	if cfg.HTTP.Addr == "" {
		cfg.HTTP.Addr = ":8080"
	}
	if cfg.DB.MaxOpenConns == 0 {
		cfg.DB.MaxOpenConns = 5
	}
	if cfg.DB.MaxIdleConns == 0 {
		cfg.DB.MaxIdleConns = 2
	}
	if cfg.DB.MaxIdleTime == 0 {
		cfg.DB.MaxIdleTime = 15 * time.Minute
	}
	if cfg.Auth.SessionTTL == 0 {
		cfg.Auth.SessionTTL = 30 * 24 * time.Hour
	}
	if cfg.RateLimit.LoginLimit == 0 {
		cfg.RateLimit.LoginLimit = 10
	}
	if cfg.RateLimit.LoginWindow == 0 {
		cfg.RateLimit.LoginWindow = 15 * time.Minute
	}
	if cfg.RateLimit.SyncLimit == 0 {
		cfg.RateLimit.SyncLimit = 1
	}
	if cfg.RateLimit.SyncWindow == 0 {
		cfg.RateLimit.SyncWindow = 2 * time.Minute
	}
	if cfg.Fixtures.DaysAhead == 0 {
		cfg.Fixtures.DaysAhead = 14
	}
	return cfg
}

func applyEnv(cfg Config) Config {
	if val := os.Getenv("HTTP_ADDR"); val != "" {
		cfg.HTTP.Addr = val
	}
	if val := os.Getenv("PORT"); val != "" {
		cfg.HTTP.Addr = ":" + val
	}
	if val := os.Getenv("DB_DSN"); val != "" {
		cfg.DB.DSN = val
	}
	if val := os.Getenv("DATABASE_URL"); val != "" {
		cfg.DB.DSN = val
	}
	if val := os.Getenv("SESSION_SECRET"); val != "" {
		cfg.Auth.SessionSecret = val
	}
	if val := os.Getenv("CSRF_SECRET"); val != "" {
		cfg.Auth.CSRFSecret = val
	}
	if val := os.Getenv("SESSION_TTL"); val != "" {
		if d, err := time.ParseDuration(val); err == nil {
			cfg.Auth.SessionTTL = d
		}
	}
	if val := os.Getenv("APP_ORIGIN"); val != "" {
		cfg.CORS.Origin = val
	}
	if val := os.Getenv("FIXTURES_API_URL"); val != "" {
		cfg.Fixtures.BaseURL = val
	}
	if val := os.Getenv("FIXTURES_API_TOKEN"); val != "" {
		cfg.Fixtures.APIToken = val
	}
	return cfg
}
