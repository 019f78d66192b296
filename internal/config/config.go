package config

import (
	"errors"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all configuration for the application.
// The values are read by Viper from a config file or environment variables.
type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Log      LogConfig      `mapstructure:"log"`
	Database DatabaseConfig `mapstructure:"database"`
	Store    StoreConfig    `mapstructure:"store"`
	S3       S3Config       `mapstructure:"s3"`
	JWT      JWTConfig      `mapstructure:"jwt"`
	Mail     MailConfig     `mapstructure:"mail"`
	Sentry   SentryConfig   `mapstructure:"sentry"`
	App      AppConfig      `mapstructure:"app"`
}

type ServerConfig struct {
	Address string `mapstructure:"address"`
	Mode    string `mapstructure:"mode"` // gin mode: debug, release, test
}

type LogConfig struct {
	Level string `mapstructure:"level"`
}

// Driver names accepted by DatabaseConfig.Driver.
const (
	DriverMemory   = "memory"
	DriverMongo    = "mongo"
	DriverPostgres = "postgres"
)

type DatabaseConfig struct {
	Driver      string `mapstructure:"driver"`
	URI         string `mapstructure:"uri"`
	Name        string `mapstructure:"name"`
	PostgresURL string `mapstructure:"postgres_url"`
}

// StoreConfig controls how the primary store falls back to the local cache tier.
type StoreConfig struct {
	ReadFallback  bool `mapstructure:"read_fallback"`
	WriteFallback bool `mapstructure:"write_fallback"`
}

type S3Config struct {
	Endpoint        string `mapstructure:"endpoint"`
	Region          string `mapstructure:"region"`
	AccessKeyID     string `mapstructure:"access_key_id"`
	SecretAccessKey string `mapstructure:"secret_access_key"`
	BucketName      string `mapstructure:"bucket_name"`
	UseSSL          bool   `mapstructure:"use_ssl"`
}

// Enabled reports whether enough S3 settings are present to build a client.
func (c S3Config) Enabled() bool {
	return c.BucketName != "" && c.AccessKeyID != ""
}

// JWTConfig defines JWT specific configuration
type JWTConfig struct {
	Secret     string        `mapstructure:"secret"`
	Expiration time.Duration `mapstructure:"expiration"`
}

type MailConfig struct {
	ResendAPIKey string `mapstructure:"resend_api_key"`
	From         string `mapstructure:"from"`
	AppName      string `mapstructure:"app_name"`
	LoginURL     string `mapstructure:"login_url"`
}

type SentryConfig struct {
	DSN         string `mapstructure:"dsn"`
	Environment string `mapstructure:"environment"`
}

type AppConfig struct {
	// DevMode enables demo affordances such as role switching.
	DevMode             bool   `mapstructure:"dev_mode"`
	StatsRefreshSpec    string `mapstructure:"stats_refresh_spec"`
	SeedTrainerEmail    string `mapstructure:"seed_trainer_email"`
	SeedTrainerPassword string `mapstructure:"seed_trainer_password"`
	SeedTrainerName     string `mapstructure:"seed_trainer_name"`
}

// LoadConfig reads configuration from file or environment variables.
func LoadConfig(path string) (config Config, err error) {
	v := viper.New()
	v.AddConfigPath(path)
	v.SetConfigName("config")
	v.SetConfigType("yaml")

	// server.address -> SERVER_ADDRESS, jwt.expiration -> JWT_EXPIRATION
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(`.`, `_`))

	setDefaults(v)

	err = v.ReadInConfig()
	var notFound viper.ConfigFileNotFoundError
	if errors.As(err, &notFound) {
		// No file is fine, env vars and defaults still apply.
		err = nil
	} else if err != nil {
		return
	}

	if err = v.Unmarshal(&config); err != nil {
		return
	}
	return config, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.address", ":8080")
	v.SetDefault("server.mode", "release")
	v.SetDefault("log.level", "info")
	v.SetDefault("database.driver", DriverMemory)
	v.SetDefault("database.uri", "mongodb://localhost:27017")
	v.SetDefault("database.name", "coachtrack")
	v.SetDefault("database.postgres_url", "")
	v.SetDefault("store.read_fallback", true)
	v.SetDefault("store.write_fallback", false)
	v.SetDefault("s3.region", "us-east-1")
	v.SetDefault("s3.endpoint", "")
	v.SetDefault("s3.bucket_name", "")
	v.SetDefault("s3.access_key_id", "")
	v.SetDefault("s3.secret_access_key", "")
	v.SetDefault("s3.use_ssl", true)
	v.SetDefault("jwt.secret", "")
	v.SetDefault("jwt.expiration", "24h")
	v.SetDefault("mail.resend_api_key", "")
	v.SetDefault("mail.from", "Coach <noreply@example.com>")
	v.SetDefault("mail.app_name", "Coachtrack")
	v.SetDefault("mail.login_url", "")
	v.SetDefault("sentry.dsn", "")
	v.SetDefault("sentry.environment", "development")
	v.SetDefault("app.dev_mode", false)
	v.SetDefault("app.stats_refresh_spec", "@every 1h")
	v.SetDefault("app.seed_trainer_email", "")
	v.SetDefault("app.seed_trainer_password", "")
	v.SetDefault("app.seed_trainer_name", "Head Trainer")
}
