package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	Environment string           `mapstructure:"environment"`
	LogLevel    string           `mapstructure:"log_level"`
	ServiceName string           `mapstructure:"service_name"`
	HTTP        HTTPConfig       `mapstructure:"http"`
	GRPC        GRPCConfig       `mapstructure:"grpc"`
	DB          DBConfig         `mapstructure:"db"`
	Redis       RedisConfig      `mapstructure:"redis"`
	Kafka       KafkaConfig      `mapstructure:"kafka"`
	JWT         JWTConfig        `mapstructure:"jwt"`
	SMTP        SMTPConfig       `mapstructure:"smtp"`
	Tracing     TracingConfig    `mapstructure:"tracing"`
	WorkOrders  WorkOrdersConfig `mapstructure:"workorders"`
}

type HTTPConfig struct {
	Port        string        `mapstructure:"port"`
	Timeout     time.Duration `mapstructure:"timeout"`
	CORSOrigins []string      `mapstructure:"cors_origins"`
	// LoginRateLimit is the number of login attempts allowed per IP per minute.
	LoginRateLimit int `mapstructure:"login_rate_limit"`
}

type GRPCConfig struct {
	Port string `mapstructure:"port"`
}

type DBConfig struct {
	Driver          string        `mapstructure:"driver"`
	Host            string        `mapstructure:"host"`
	Port            string        `mapstructure:"port"`
	User            string        `mapstructure:"user"`
	Password        string        `mapstructure:"password"`
	Name            string        `mapstructure:"name"`
	SSLMode         string        `mapstructure:"sslmode"`
	MaxOpenConns    int           `mapstructure:"max_open_conns"`
	MaxIdleConns    int           `mapstructure:"max_idle_conns"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
}

type RedisConfig struct {
	Addr       string        `mapstructure:"addr"`
	Password   string        `mapstructure:"password"`
	DB         int           `mapstructure:"db"`
	PricingTTL time.Duration `mapstructure:"pricing_ttl"`
}

type KafkaConfig struct {
	Brokers []string `mapstructure:"brokers"`
	Topic   string   `mapstructure:"topic"`
	GroupID string   `mapstructure:"group_id"`
}

type JWTConfig struct {
	Secret   string        `mapstructure:"secret"`
	Issuer   string        `mapstructure:"issuer"`
	Audience string        `mapstructure:"audience"`
	TTL      time.Duration `mapstructure:"ttl"`
}

type SMTPConfig struct {
	Host     string   `mapstructure:"host"`
	Port     int      `mapstructure:"port"`
	User     string   `mapstructure:"user"`
	Password string   `mapstructure:"password"`
	From     string   `mapstructure:"from"`
	AlertTo  []string `mapstructure:"alert_to"`
}

type TracingConfig struct {
	Enabled        bool   `mapstructure:"enabled"`
	JaegerEndpoint string `mapstructure:"jaeger_endpoint"`
}

type WorkOrdersConfig struct {
	CodePrefix            string `mapstructure:"code_prefix"`
	EnforceWorkflowStatus bool   `mapstructure:"enforce_workflow_status"`
}

// IsDevelopment reports whether the service runs in development mode.
func (c *Config) IsDevelopment() bool {
	return c.Environment == "" || c.Environment == "development"
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("environment", "development")
	v.SetDefault("log_level", "info")
	v.SetDefault("service_name", "repair-manager")

	v.SetDefault("http.port", "8080")
	v.SetDefault("http.timeout", 30*time.Second)
	v.SetDefault("http.cors_origins", []string{"*"})
	v.SetDefault("http.login_rate_limit", 10)
	v.SetDefault("grpc.port", "9090")

	v.SetDefault("db.driver", "postgres")
	v.SetDefault("db.host", "localhost")
	v.SetDefault("db.port", "5432")
	v.SetDefault("db.user", "postgres")
	v.SetDefault("db.password", "postgres")
	v.SetDefault("db.name", "repairdb")
	v.SetDefault("db.sslmode", "disable")
	v.SetDefault("db.max_open_conns", 25)
	v.SetDefault("db.max_idle_conns", 5)
	v.SetDefault("db.conn_max_lifetime", 5*time.Minute)

	v.SetDefault("redis.addr", "")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)
	v.SetDefault("redis.pricing_ttl", time.Minute)

	v.SetDefault("kafka.brokers", []string{})
	v.SetDefault("kafka.topic", "work-order-events")
	v.SetDefault("kafka.group_id", "repair-manager-worker")

	v.SetDefault("jwt.secret", "change-me")
	v.SetDefault("jwt.issuer", "repair-manager")
	v.SetDefault("jwt.audience", "repair-manager-api")
	v.SetDefault("jwt.ttl", 24*time.Hour)

	v.SetDefault("smtp.host", "")
	v.SetDefault("smtp.port", 587)
	v.SetDefault("smtp.user", "")
	v.SetDefault("smtp.password", "")
	v.SetDefault("smtp.from", "repairs@localhost")
	v.SetDefault("smtp.alert_to", []string{})

	v.SetDefault("tracing.enabled", false)
	v.SetDefault("tracing.jaeger_endpoint", "http://localhost:14268/api/traces")

	v.SetDefault("workorders.code_prefix", "WO")
	v.SetDefault("workorders.enforce_workflow_status", false)
}

// Load reads .env, an optional config.yaml and the environment, in increasing
// order of precedence. An explicit path must exist.
func Load(path string) (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	setDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath("./")
		v.AddConfigPath("./deploy/")
		v.AddConfigPath("/etc/repairmanager/")
	}

	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	// Names used by the deployment manifests that do not follow the key layout.
	_ = v.BindEnv("db.name", "DB_NAME")
	_ = v.BindEnv("service_name", "OTEL_SERVICE_NAME", "SERVICE_NAME")
	_ = v.BindEnv("tracing.jaeger_endpoint", "JAEGER_ENDPOINT", "TRACING_JAEGER_ENDPOINT")

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	cfg.Kafka.Brokers = compact(cfg.Kafka.Brokers)
	cfg.SMTP.AlertTo = compact(cfg.SMTP.AlertTo)
	cfg.HTTP.CORSOrigins = compact(cfg.HTTP.CORSOrigins)

	if cfg.WorkOrders.CodePrefix == "" {
		cfg.WorkOrders.CodePrefix = "WO"
	}
	return &cfg, nil
}

// compact trims entries and drops empty ones, so KAFKA_BROKERS="" means none.
func compact(in []string) []string {
	out := make([]string, 0, len(in))
	for _, s := range in {
		for _, part := range strings.Split(s, ",") {
			if p := strings.TrimSpace(part); p != "" {
				out = append(out, p)
			}
		}
	}
	return out
}
