package configs

import (
	"fmt"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

type Config struct {
	App struct {
		Name     string `koanf:"name"`
		HTTPAddr string `koanf:"http_addr"`
		LogLevel string `koanf:"log_level"`
		SiteURL  string `koanf:"site_url"`
	} `koanf:"app"`

	HTTP struct {
		ReadTimeout  time.Duration `koanf:"read_timeout"`
		WriteTimeout time.Duration `koanf:"write_timeout"`
		IdleTimeout  time.Duration `koanf:"idle_timeout"`
	} `koanf:"http"`

	Stripe struct {
		SecretKey string        `koanf:"secret_key"`
		Timeout   time.Duration `koanf:"timeout"`
	} `koanf:"stripe"`

	RateLimit struct {
		MaxRequests int           `koanf:"max_requests"`
		Window      time.Duration `koanf:"window"`
	} `koanf:"rate_limit"`

	// Redis is optional: when addr is empty the limiter falls back to the
	// per-process in-memory window.
	Redis struct {
		Addr     string `koanf:"addr"`
		Password string `koanf:"password"`
	} `koanf:"redis"`

	MySQL struct {
		DSN             string        `koanf:"dsn"`
		MaxOpenConns    int           `koanf:"max_open_conns"`
		MaxIdleConns    int           `koanf:"max_idle_conns"`
		ConnMaxLifetime time.Duration `koanf:"conn_max_lifetime"`
	} `koanf:"mysql"`

	Rabbit struct {
		URL string `koanf:"url"`
	} `koanf:"rabbitmq"`

	Kafka struct {
		Brokers     []string `koanf:"brokers"`
		TopicEvents string   `koanf:"topic_events"`
	} `koanf:"kafka"`

	Email struct {
		Region      string `koanf:"region"`
		FromAddress string `koanf:"from_address"`
		OwnerInbox  string `koanf:"owner_inbox"`
	} `koanf:"email"`
}

func Load(pathDir, envName string) (Config, error) {
	k := koanf.New(".")
	// 1) base
	if err := k.Load(file.Provider(fmt.Sprintf("%s/base.yaml", pathDir)), yaml.Parser()); err != nil {
		return Config{}, fmt.Errorf("load base: %w", err)
	}

	// 2) env override (dev/staging/prod). Optional: allow missing for local runs.
	_ = k.Load(file.Provider(fmt.Sprintf("%s/%s.yaml", pathDir, envName)), yaml.Parser())

	// 3) environment variables override (prefix TOTEAPI_, nested with __)
	// e.g. TOTEAPI_STRIPE__SECRET_KEY, TOTEAPI_REDIS__PASSWORD
	if err := k.Load(env.Provider("TOTEAPI_", ".", func(s string) string {
		s = strings.TrimPrefix(s, "TOTEAPI_")
		s = strings.ReplaceAll(s, "__", ".")
		return strings.ToLower(s)
	}), nil); err != nil {
		return Config{}, fmt.Errorf("env overlay: %w", err)
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return Config{}, fmt.Errorf("unmarshal: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) Validate() error {
	if c.App.HTTPAddr == "" {
		return fmt.Errorf("app.http_addr required")
	}
	if c.App.SiteURL == "" {
		return fmt.Errorf("app.site_url required (customer portal return address)")
	}
	if c.Stripe.SecretKey == "" {
		return fmt.Errorf("stripe.secret_key required (set TOTEAPI_STRIPE__SECRET_KEY)")
	}
	if c.RateLimit.MaxRequests <= 0 || c.RateLimit.Window <= 0 {
		return fmt.Errorf("rate_limit.max_requests and rate_limit.window required")
	}
	return nil
}
