package config

import (
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	Server    ServerConfig
	Database  DatabaseConfig
	JWT       JWTConfig
	Storage   StorageConfig
	Tracing   TracingConfig `mapstructure:"tracing"`
	Redis     RedisConfig
	CORS      CORSConfig      `mapstructure:"cors"`
	RateLimit RateLimitConfig `mapstructure:"rate_limit"`
	Seed      SeedConfig      `mapstructure:"seed"`
	Events    EventsConfig    `mapstructure:"events"`

	// 运行时标志（非配置文件，通过命令行参数设置）
	SeedOnly    bool `mapstructure:"-"` // 仅导入种子数据（完成后退出）
	ForceReseed bool `mapstructure:"-"` // 启动时强制重新导入题库
}

type CORSConfig struct {
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

type RateLimitConfig struct {
	MaxRequests   int `mapstructure:"max_requests"`
	WindowMinutes int `mapstructure:"window_minutes"`
}

type ServerConfig struct {
	Port string
	Mode string
}

// DatabaseConfig Driver 取值 mysql / postgres / sqlite
type DatabaseConfig struct {
	Driver    string
	Host      string
	Port      int
	User      string
	Password  string
	DBName    string
	Charset   string
	ParseTime bool   `mapstructure:"parse_time"`
	SSLMode   string `mapstructure:"ssl_mode"`
	Path      string // sqlite 文件路径，":memory:" 为内存库
	LogLevel  string `mapstructure:"log_level"`
}

type JWTConfig struct {
	Secret     string        `mapstructure:"secret"`
	ExpireTime time.Duration `mapstructure:"expire_hours"`
}

type StorageConfig struct {
	Type          string `mapstructure:"type"`
	LocalPath     string `mapstructure:"local_path"`
	MinioEndpoint string `mapstructure:"minio_endpoint"`
	MinioAccessID string `mapstructure:"minio_access_key"`
	MinioSecret   string `mapstructure:"minio_secret_key"`
	MinioBucket   string `mapstructure:"minio_bucket"`
	OSSEndpoint   string `mapstructure:"oss_endpoint"`
	OSSAccessKey  string `mapstructure:"oss_access_key"`
	OSSSecretKey  string `mapstructure:"oss_secret_key"`
	OSSBucket     string `mapstructure:"oss_bucket"`
}

type TracingConfig struct {
	Enabled           bool   `mapstructure:"enabled"`
	CollectorEndpoint string `mapstructure:"collector_endpoint"`
}

type RedisConfig struct {
	Enabled  bool
	Host     string
	Port     int
	Password string
	DB       int
	URL      string        `mapstructure:"url"`
	CacheTTL time.Duration `mapstructure:"cache_ttl_seconds"`
}

type SeedConfig struct {
	FixtureDir      string `mapstructure:"fixture_dir"`
	OnStartup       bool   `mapstructure:"on_startup"`
	GenerateMissing bool   `mapstructure:"generate_missing"`
	ReseedSecret    string `mapstructure:"reseed_secret"`
	AdminEmail      string `mapstructure:"admin_email"`
	AdminPassword   string `mapstructure:"admin_password"`
}

// EventsConfig Driver 取值 gochannel / kafka
type EventsConfig struct {
	Enabled      bool     `mapstructure:"enabled"`
	Driver       string   `mapstructure:"driver"`
	KafkaBrokers []string `mapstructure:"kafka_brokers"`
	Topic        string   `mapstructure:"topic"`
}

func LoadConfig(path string) (*Config, error) {
	// .env 不存在时忽略
	_ = godotenv.Load()

	viper.AddConfigPath(path)
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")

	viper.SetEnvPrefix("QUIZ_APP")
	viper.AutomaticEnv()

	viper.SetDefault("database.driver", "mysql")
	viper.SetDefault("seed.fixture_dir", "fixtures")
	viper.SetDefault("seed.on_startup", true)
	viper.SetDefault("seed.admin_email", "admin@gmail.com")
	viper.SetDefault("events.driver", "gochannel")
	viper.SetDefault("events.topic", "quiz.events")
	viper.SetDefault("redis.cache_ttl_seconds", 300)
	viper.SetDefault("jwt.expire_hours", 72)

	// Database
	viper.BindEnv("database.driver", "DATABASE_DRIVER")
	viper.BindEnv("database.host", "DATABASE_HOST")
	viper.BindEnv("database.port", "DATABASE_PORT")
	viper.BindEnv("database.user", "DATABASE_USER")
	viper.BindEnv("database.password", "DATABASE_PASSWORD")
	viper.BindEnv("database.dbname", "DATABASE_NAME")
	viper.BindEnv("database.path", "DATABASE_PATH")

	// JWT
	viper.BindEnv("jwt.secret", "JWT_SECRET")

	// Redis
	viper.BindEnv("redis.enabled", "REDIS_ENABLED")
	viper.BindEnv("redis.host", "REDIS_HOST")
	viper.BindEnv("redis.port", "REDIS_PORT")
	viper.BindEnv("redis.password", "REDIS_PASSWORD")
	viper.BindEnv("redis.url", "REDIS_URL")

	// Server
	viper.BindEnv("server.port", "SERVER_PORT")
	viper.BindEnv("server.mode", "SERVER_MODE")

	// Storage / OSS
	viper.BindEnv("storage.type", "STORAGE_TYPE")
	viper.BindEnv("storage.oss_endpoint", "OSS_ENDPOINT")
	viper.BindEnv("storage.oss_access_key", "OSS_ACCESS_KEY")
	viper.BindEnv("storage.oss_secret_key", "OSS_SECRET_KEY")
	viper.BindEnv("storage.oss_bucket", "OSS_BUCKET")
	viper.BindEnv("storage.minio_endpoint", "MINIO_ENDPOINT")
	viper.BindEnv("storage.minio_access_key", "MINIO_ACCESS_KEY")
	viper.BindEnv("storage.minio_secret_key", "MINIO_SECRET_KEY")
	viper.BindEnv("storage.minio_bucket", "MINIO_BUCKET")

	// Tracing
	viper.BindEnv("tracing.enabled", "TRACING_ENABLED")
	viper.BindEnv("tracing.collector_endpoint", "TRACING_COLLECTOR_ENDPOINT")

	// Seed
	viper.BindEnv("seed.fixture_dir", "SEED_FIXTURE_DIR")
	viper.BindEnv("seed.generate_missing", "SEED_GENERATE_MISSING")
	viper.BindEnv("seed.reseed_secret", "SEED_RESEED_SECRET")
	viper.BindEnv("seed.admin_email", "ADMIN_EMAIL")
	viper.BindEnv("seed.admin_password", "ADMIN_PASSWORD")

	// Events
	viper.BindEnv("events.enabled", "EVENTS_ENABLED")
	viper.BindEnv("events.driver", "EVENTS_DRIVER")
	viper.BindEnv("events.kafka_brokers", "KAFKA_BROKERS")

	if err := viper.ReadInConfig(); err != nil {
		return nil, err
	}

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	cfg.JWT.ExpireTime = cfg.JWT.ExpireTime * time.Hour
	cfg.Redis.CacheTTL = cfg.Redis.CacheTTL * time.Second

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	if cfg.Storage.Type == "local" {
		if _, err := os.Stat(cfg.Storage.LocalPath); os.IsNotExist(err) {
			os.MkdirAll(cfg.Storage.LocalPath, 0755)
		}
	}

	return &cfg, nil
}

func (c *Config) Validate() error {
	// 生产环境校验 JWT Secret 强度
	if c.Server.Mode == "release" && len(c.JWT.Secret) < 32 {
		return fmt.Errorf("JWT secret is too short (%d chars), must be at least 32 characters in release mode", len(c.JWT.Secret))
	}

	switch c.Database.Driver {
	case "mysql", "postgres", "sqlite":
	default:
		return fmt.Errorf("unsupported database driver %q", c.Database.Driver)
	}

	switch c.Events.Driver {
	case "", "gochannel", "kafka":
	default:
		return fmt.Errorf("unsupported events driver %q", c.Events.Driver)
	}
	if c.Events.Enabled && c.Events.Driver == "kafka" && len(c.Events.KafkaBrokers) == 0 {
		return fmt.Errorf("events.kafka_brokers must be set when events.driver is kafka")
	}

	return nil
}
