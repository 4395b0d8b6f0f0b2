package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

var (
	ErrMissingJWTSigningKey  = errors.New("jwt signing key is not configured (RIFA_API_JWT_SIGNING_KEY)")
	ErrMissingGatewayAPIKey  = errors.New("abacatepay api key is not configured (RIFA_ABACATEPAY_API_KEY)")
	ErrMissingWebhookSecret  = errors.New("abacatepay webhook secret is not configured (RIFA_ABACATEPAY_WEBHOOK_SECRET)")
	ErrMissingDatabaseConfig = errors.New("postgres configuration is incomplete")
)

type AppConfig struct {
	API        *APIConfig        `mapstructure:"api"`
	Gin        *GinConfig        `mapstructure:"gin"`
	Postgres   *PostgresConfig   `mapstructure:"postgres"`
	AbacatePay *AbacatePayConfig `mapstructure:"abacatepay"`
	Stripe     *StripeConfig     `mapstructure:"stripe"`
	Uploads    *UploadsConfig    `mapstructure:"uploads"`
}

type APIConfig struct {
	Environment        string `mapstructure:"environment"`
	Port               string `mapstructure:"port"`
	BaseURL            string `mapstructure:"base_url"`
	PublicBaseURL      string `mapstructure:"public_base_url"`
	JWTSigningKey      string `mapstructure:"jwt_signing_key"`
	AllowedCORSDomains string `mapstructure:"allowed_cors_domains"`
}

type GinConfig struct {
	Mode string `mapstructure:"mode"`
}

type PostgresConfig struct {
	Host     string `mapstructure:"host"`
	Port     string `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	DB       string `mapstructure:"db"`
}

type AbacatePayConfig struct {
	BaseURL       string `mapstructure:"base_url"`
	APIKey        string `mapstructure:"api_key"`
	WebhookSecret string `mapstructure:"webhook_secret"`
}

// StripeConfig holds the card payment credentials. The card path is optional,
// so the secret key may be left empty and the endpoint reports itself as
// unconfigured instead of failing startup.
type StripeConfig struct {
	SecretKey string `mapstructure:"secret_key"`
}

type UploadsConfig struct {
	Dir string `mapstructure:"dir"`
}

// Load reads the YAML config file and applies RIFA_-prefixed environment
// overrides. Secrets have no fallback values: startup fails when any of them
// is unset.
func Load(configPath string) (*AppConfig, error) {
	viper.SetConfigFile(configPath)
	viper.SetEnvPrefix("RIFA")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	for _, key := range []string{
		"api.jwt_signing_key",
		"abacatepay.api_key",
		"abacatepay.webhook_secret",
		"stripe.secret_key",
		"postgres.password",
	} {
		if err := viper.BindEnv(key); err != nil {
			return nil, fmt.Errorf("viper.BindEnv(%q) -> %w", key, err)
		}
	}

	if err := viper.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("viper.ReadInConfig -> %w", err)
	}

	conf := &AppConfig{}
	if err := viper.Unmarshal(conf); err != nil {
		return nil, fmt.Errorf("viper.Unmarshal -> %w", err)
	}

	if err := conf.validate(); err != nil {
		return nil, err
	}

	viper.WatchConfig()
	viper.OnConfigChange(func(e fsnotify.Event) {
		zap.L().Info("config file changed", zap.String("file", e.Name))
	})

	return conf, nil
}

func (c *AppConfig) validate() error {
	if c.API == nil || c.API.JWTSigningKey == "" {
		return ErrMissingJWTSigningKey
	}
	if c.AbacatePay == nil || c.AbacatePay.APIKey == "" {
		return ErrMissingGatewayAPIKey
	}
	if c.AbacatePay.WebhookSecret == "" {
		return ErrMissingWebhookSecret
	}
	if c.Postgres == nil || c.Postgres.Host == "" || c.Postgres.User == "" || c.Postgres.DB == "" {
		return ErrMissingDatabaseConfig
	}

	return nil
}
