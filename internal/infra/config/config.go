package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type AppConfig struct {
	App       AppSettings       `mapstructure:"app"`
	Postgres  PostgresSettings  `mapstructure:"postgres"`
	Redis     RedisSettings     `mapstructure:"redis"`
	Kafka     KafkaSettings     `mapstructure:"kafka"`
	Accounts  AccountSettings   `mapstructure:"accounts"`
	Crypto    CryptoSettings    `mapstructure:"crypto"`
	Session   SessionSettings   `mapstructure:"session"`
	Telemetry TelemetrySettings `mapstructure:"telemetry"`
	CORS      CORSSettings      `mapstructure:"cors"`
}

type AppSettings struct {
	Name string `mapstructure:"name"`
	Env  string `mapstructure:"env"`
	Host string `mapstructure:"host"`
	Port int    `mapstructure:"port"`
}

type PostgresSettings struct {
	Host              string        `mapstructure:"host"`
	Port              int           `mapstructure:"port"`
	User              string        `mapstructure:"user"`
	Password          string        `mapstructure:"password"`
	Database          string        `mapstructure:"database"`
	SSLMode           string        `mapstructure:"ssl_mode"`
	MaxConns          int32         `mapstructure:"max_conns"`
	MinConns          int32         `mapstructure:"min_conns"`
	MaxConnLifetime   time.Duration `mapstructure:"max_conn_lifetime"`
	MaxConnIdleTime   time.Duration `mapstructure:"max_conn_idle_time"`
	HealthCheckPeriod time.Duration `mapstructure:"health_check_period"`
}

// RedisSettings configures the cache-view store connection.
type RedisSettings struct {
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	DB              int           `mapstructure:"db"`
	Password        string        `mapstructure:"password"`
	TLSEnabled      bool          `mapstructure:"tls_enabled"`
	CacheViewPrefix string        `mapstructure:"cache_view_prefix"`
	CacheViewTTL    time.Duration `mapstructure:"cache_view_ttl"`
}

// KafkaSettings configures the account-event producer.
type KafkaSettings struct {
	Brokers     []string `mapstructure:"brokers"`
	TopicPrefix string   `mapstructure:"topic_prefix"`
}

// AccountSettings bounds user-supplied account fields.
type AccountSettings struct {
	UsernameMinLength int    `mapstructure:"username_min_length"`
	UsernameMaxLength int    `mapstructure:"username_max_length"`
	PasswordMinLength int    `mapstructure:"password_min_length"`
	PasswordMaxLength int    `mapstructure:"password_max_length"`
	EmailMaxLength    int    `mapstructure:"email_max_length"`
	DefaultAvatarURL  string `mapstructure:"default_avatar_url"`
	DefaultPhone      string `mapstructure:"default_phone"`
}

// CryptoSettings configures credential hashing.
type CryptoSettings struct {
	Algorithm string `mapstructure:"algorithm"`
	Rounds    int    `mapstructure:"rounds"`
	Salt      string `mapstructure:"salt"`
}

// SessionSettings configures bearer-session lifetime.
type SessionSettings struct {
	MaxAge        time.Duration `mapstructure:"max_age"`
	KeyByteLength int           `mapstructure:"key_byte_length"`
}

type TelemetrySettings struct {
	OTLPEndpoint string  `mapstructure:"otlp_endpoint"`
	ServiceName  string  `mapstructure:"service_name"`
	SamplingRate float64 `mapstructure:"sampling_rate"`
	Enabled      bool    `mapstructure:"enabled"`
}

type CORSSettings struct {
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

func Load() (*AppConfig, error) {
	v := viper.New()

	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.SetEnvPrefix("DDAUTH")

	setDefaults(v)

	if err := bindEnvs(v, []string{
		"app.name",
		"app.env",
		"app.host",
		"app.port",
		"postgres.host",
		"postgres.port",
		"postgres.user",
		"postgres.password",
		"postgres.database",
		"postgres.ssl_mode",
		"postgres.max_conns",
		"postgres.min_conns",
		"postgres.max_conn_lifetime",
		"postgres.max_conn_idle_time",
		"postgres.health_check_period",
		"redis.host",
		"redis.port",
		"redis.db",
		"redis.password",
		"redis.tls_enabled",
		"redis.cache_view_prefix",
		"redis.cache_view_ttl",
		"kafka.brokers",
		"kafka.topic_prefix",
		"accounts.username_min_length",
		"accounts.username_max_length",
		"accounts.password_min_length",
		"accounts.password_max_length",
		"accounts.email_max_length",
		"accounts.default_avatar_url",
		"accounts.default_phone",
		"crypto.algorithm",
		"crypto.rounds",
		"crypto.salt",
		"session.max_age",
		"session.key_byte_length",
		"telemetry.otlp_endpoint",
		"telemetry.service_name",
		"telemetry.sampling_rate",
		"telemetry.enabled",
		"cors.allowed_origins",
	}); err != nil {
		return nil, err
	}

	v.AutomaticEnv()

	var cfg AppConfig
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("app.name", "dd-auth")
	v.SetDefault("app.env", "development")
	v.SetDefault("app.host", "0.0.0.0")
	v.SetDefault("app.port", 8080)

	v.SetDefault("postgres.host", "localhost")
	v.SetDefault("postgres.port", 5432)
	v.SetDefault("postgres.user", "discdoor")
	v.SetDefault("postgres.password", "discdoor_password")
	v.SetDefault("postgres.database", "discdoor")
	v.SetDefault("postgres.ssl_mode", "disable")
	v.SetDefault("postgres.max_conns", 10)
	v.SetDefault("postgres.min_conns", 2)
	v.SetDefault("postgres.max_conn_lifetime", "60m")
	v.SetDefault("postgres.max_conn_idle_time", "15m")
	v.SetDefault("postgres.health_check_period", "30s")

	v.SetDefault("redis.host", "localhost")
	v.SetDefault("redis.port", 6379)
	v.SetDefault("redis.db", 0)
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.tls_enabled", false)
	v.SetDefault("redis.cache_view_prefix", "dd:user_cache")
	v.SetDefault("redis.cache_view_ttl", "24h")

	v.SetDefault("kafka.brokers", []string{})
	v.SetDefault("kafka.topic_prefix", "auth")

	v.SetDefault("accounts.username_min_length", 2)
	v.SetDefault("accounts.username_max_length", 32)
	v.SetDefault("accounts.password_min_length", 2)
	v.SetDefault("accounts.password_max_length", 64)
	v.SetDefault("accounts.email_max_length", 320)
	v.SetDefault("accounts.default_avatar_url", "https://cdn.discdoor.app/avatars/default.png")
	v.SetDefault("accounts.default_phone", "00000000000")

	v.SetDefault("crypto.algorithm", "bcrypt")
	v.SetDefault("crypto.rounds", 10)
	v.SetDefault("crypto.salt", "dd!a9f:")

	v.SetDefault("session.max_age", "720h")
	v.SetDefault("session.key_byte_length", 32)

	v.SetDefault("telemetry.otlp_endpoint", "http://localhost:4318")
	v.SetDefault("telemetry.service_name", "dd-auth")
	v.SetDefault("telemetry.sampling_rate", 1.0)
	v.SetDefault("telemetry.enabled", false)

	v.SetDefault("cors.allowed_origins", []string{"*"})
}

func bindEnvs(v *viper.Viper, keys []string) error {
	for _, key := range keys {
		envKey := strings.ToUpper(strings.ReplaceAll(key, ".", "_"))
		if err := v.BindEnv(key, "DDAUTH_"+envKey, envKey); err != nil {
			return fmt.Errorf("bind env for %s: %w", key, err)
		}
	}
	return nil
}
