package config

import (
	"fmt"
	"strings"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

type AppConfig struct {
	API      *APIConfig      `mapstructure:"api"`
	Gin      *GinConfig      `mapstructure:"gin"`
	Postgres *PostgresConfig `mapstructure:"postgres"`
	SMTP     *SMTPConfig     `mapstructure:"smtp"`
}

type APIConfig struct {
	Environment        string `mapstructure:"environment"`
	Port               string `mapstructure:"port"`
	BaseURL            string `mapstructure:"base_url"`
	FrontendBaseURL    string `mapstructure:"frontend_base_url"`
	JWTSigningKey      string `mapstructure:"jwt_signing_key"`
	AllowedCORSDomains string `mapstructure:"allowed_cors_domains"`
	UploadDir          string `mapstructure:"upload_dir"`

	// Rate limit for the auth endpoints.
	AuthRatePerMinute int `mapstructure:"auth_rate_per_minute"`
	AuthRateBurst     int `mapstructure:"auth_rate_burst"`
}

type GinConfig struct {
	Mode string `mapstructure:"mode"`
}

type PostgresConfig struct {
	Host     string `mapstructure:"host"`
	Port     string `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	DBName   string `mapstructure:"db_name"`
}

type SMTPConfig struct {
	Host     string `mapstructure:"host"`
	Port     string `mapstructure:"port"`
	Username string `mapstructure:"username"`
	Password string `mapstructure:"password"`
	Sender   string `mapstructure:"sender"`
}

// Load reads the YAML file and applies environment overrides. Keys map
// to variables like API_JWT_SIGNING_KEY or POSTGRES_PASSWORD, so
// secrets never need to live in the file.
func Load(path string) (*AppConfig, error) {
	v := viper.New()
	v.SetConfigFile(path)

	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("v.ReadInConfig -> %w", err)
	}

	conf := &AppConfig{}
	if err := v.Unmarshal(conf); err != nil {
		return nil, fmt.Errorf("v.Unmarshal -> %w", err)
	}

	// Pick up non-secret tweaks (rate limits, CORS domains) without a
	// restart. Changed secrets still require one.
	v.OnConfigChange(func(e fsnotify.Event) {
		if err := v.Unmarshal(conf); err != nil {
			zap.L().Warn("config reload failed", zap.String("file", e.Name), zap.Error(err))

			return
		}

		zap.L().Info("config reloaded", zap.String("file", e.Name))
	})
	v.WatchConfig()

	return conf, nil
}
