package config

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Server    ServerConfig
	Database  DatabaseConfig
	JWT       JWTConfig
	Redis     RedisConfig
	AI        AIConfig        `mapstructure:"ai"`
	Tutoring  TutoringConfig  `mapstructure:"tutoring"`
	Tracing   TracingConfig   `mapstructure:"tracing"`
	CORS      CORSConfig      `mapstructure:"cors"`
	RateLimit RateLimitConfig `mapstructure:"rate_limit"`

	// 运行时标志（非配置文件，通过命令行参数设置）
	ForceMigrate bool `mapstructure:"-"`
	MigrateOnly  bool `mapstructure:"-"`
}

type ServerConfig struct {
	Port string
	Mode string
}

type DatabaseConfig struct {
	Host      string
	Port      int
	User      string
	Password  string
	DBName    string
	Charset   string
	ParseTime bool
}

type JWTConfig struct {
	Secret     string        `mapstructure:"secret"`
	ExpireTime time.Duration `mapstructure:"expire_hours"`
}

type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
}

type TracingConfig struct {
	Enabled           bool   `mapstructure:"enabled"`
	CollectorEndpoint string `mapstructure:"collector_endpoint"`
}

type CORSConfig struct {
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

type RateLimitConfig struct {
	MaxRequests   int `mapstructure:"max_requests"`
	WindowMinutes int `mapstructure:"window_minutes"`
}

// ProviderConfig 单个文本生成后端的静态配置
type ProviderConfig struct {
	Kind           string        `mapstructure:"kind"` // openai | anthropic | local | stub
	BaseURL        string        `mapstructure:"base_url"`
	APIKey         string        `mapstructure:"api_key"`
	Model          string        `mapstructure:"model"`
	TimeoutSeconds time.Duration `mapstructure:"timeout_seconds"`
}

// AIConfig 提供方编排配置，providers 按优先级排序
type AIConfig struct {
	Providers         []ProviderConfig `mapstructure:"providers"`
	MaxPromptLength   int              `mapstructure:"max_prompt_length"`
	MaxResponseLength int              `mapstructure:"max_response_length"`
}

// TutoringConfig 辅导引擎行为开关
type TutoringConfig struct {
	DifficultyStrategy string   `mapstructure:"difficulty_strategy"` // conservative | moderate | aggressive
	MinSampleSize      int      `mapstructure:"min_sample_size"`
	OutcomeWindowSize  int      `mapstructure:"outcome_window_size"`
	MistakePriority    []string `mapstructure:"mistake_priority"`
	StaleSessionHours  int      `mapstructure:"stale_session_hours"`
}

func LoadConfig(path string) (*Config, error) {
	viper.AddConfigPath(path)
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")

	viper.SetEnvPrefix("EDU_TUTOR")
	viper.AutomaticEnv()

	// Database
	viper.BindEnv("database.host", "DATABASE_HOST")
	viper.BindEnv("database.port", "DATABASE_PORT")
	viper.BindEnv("database.user", "DATABASE_USER")
	viper.BindEnv("database.password", "DATABASE_PASSWORD")
	viper.BindEnv("database.dbname", "DATABASE_NAME")

	// JWT
	viper.BindEnv("jwt.secret", "JWT_SECRET")

	// Redis
	viper.BindEnv("redis.host", "REDIS_HOST")
	viper.BindEnv("redis.port", "REDIS_PORT")
	viper.BindEnv("redis.password", "REDIS_PASSWORD")

	// Server
	viper.BindEnv("server.mode", "SERVER_MODE")

	// Tracing
	viper.BindEnv("tracing.enabled", "TRACING_ENABLED")
	viper.BindEnv("tracing.collector_endpoint", "TRACING_COLLECTOR_ENDPOINT")

	if err := viper.ReadInConfig(); err != nil {
		return nil, err
	}

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	cfg.JWT.ExpireTime = cfg.JWT.ExpireTime * time.Hour
	for i := range cfg.AI.Providers {
		cfg.AI.Providers[i].TimeoutSeconds *= time.Second
		// 环境变量覆盖 API Key：AI_PROVIDER_<n>_API_KEY。
		// viper 对带下标的键不做环境绑定，这里直接读环境变量
		if key := os.Getenv(fmt.Sprintf("AI_PROVIDER_%d_API_KEY", i)); key != "" {
			cfg.AI.Providers[i].APIKey = key
		}
	}

	applyTutoringDefaults(&cfg.Tutoring)
	applyAIDefaults(&cfg.AI)

	// 生产环境校验 JWT Secret 强度
	if cfg.Server.Mode == "release" && len(cfg.JWT.Secret) < 32 {
		return nil, fmt.Errorf("JWT secret is too short (%d chars), must be at least 32 characters in release mode", len(cfg.JWT.Secret))
	}

	return &cfg, nil
}

func applyTutoringDefaults(t *TutoringConfig) {
	if t.DifficultyStrategy == "" {
		t.DifficultyStrategy = "moderate"
	}
	if t.MinSampleSize <= 0 {
		t.MinSampleSize = 3
	}
	if t.OutcomeWindowSize <= 0 {
		t.OutcomeWindowSize = 10
	}
	if len(t.MistakePriority) == 0 {
		t.MistakePriority = []string{"computational", "procedural", "conceptual"}
	}
	if t.StaleSessionHours <= 0 {
		t.StaleSessionHours = 24
	}
}

func applyAIDefaults(a *AIConfig) {
	if a.MaxPromptLength <= 0 {
		a.MaxPromptLength = 8000
	}
	if a.MaxResponseLength <= 0 {
		a.MaxResponseLength = 4000
	}
	for i := range a.Providers {
		if a.Providers[i].TimeoutSeconds <= 0 {
			a.Providers[i].TimeoutSeconds = 30 * time.Second
		}
	}
}
