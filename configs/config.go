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
	} `koanf:"app"`

	HTTP struct {
		ReadTimeout  time.Duration `koanf:"read_timeout"`
		WriteTimeout time.Duration `koanf:"write_timeout"`
	} `koanf:"http"`

	Postgres struct {
		URL string `koanf:"url"`
	} `koanf:"postgres"`

	Redis struct {
		Addr     string `koanf:"addr"`
		Password string `koanf:"password"`
	} `koanf:"redis"`

	Idempotency struct {
		TTL time.Duration `koanf:"ttl"`
	} `koanf:"idempotency"`

	Kafka struct {
		Brokers     []string `koanf:"brokers"`
		OrderEvents string   `koanf:"order_events_topic"`
	} `koanf:"kafka"`

	Gateway struct {
		BaseURL   string `koanf:"base_url"`
		KeyID     string `koanf:"key_id"`
		KeySecret string `koanf:"key_secret"`
	} `koanf:"gateway"`

	Tracing struct {
		Endpoint string `koanf:"endpoint"`
	} `koanf:"tracing"`
}

// Load reads <pathDir>/base.yaml, overlays <pathDir>/<envName>.yaml when it
// exists, then environment variables prefixed ORDERSVC_ (nested with __,
// e.g. ORDERSVC_POSTGRES__URL).
func Load(pathDir, envName string) (Config, error) {
	k := koanf.New(".")
	if err := k.Load(file.Provider(fmt.Sprintf("%s/base.yaml", pathDir)), yaml.Parser()); err != nil {
		return Config{}, fmt.Errorf("load base: %w", err)
	}
	_ = k.Load(file.Provider(fmt.Sprintf("%s/%s.yaml", pathDir, envName)), yaml.Parser())

	if err := k.Load(env.Provider("ORDERSVC_", ".", func(s string) string {
		s = strings.TrimPrefix(s, "ORDERSVC_")
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
	if c.Postgres.URL == "" {
		return fmt.Errorf("postgres.url required")
	}
	if len(c.Kafka.Brokers) == 0 {
		return fmt.Errorf("kafka.brokers required")
	}
	if c.Gateway.KeySecret == "" {
		return fmt.Errorf("gateway.key_secret required")
	}
	return nil
}
