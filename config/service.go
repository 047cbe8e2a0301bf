package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"

	"github.com/rushteam/movierec/core"
)

// EnvPrefix 是环境变量前缀，"__" 表示层级，例如 MOVIEREC_ENGINE__MIN_RATINGS=50。
const EnvPrefix = "MOVIEREC_"

// ConfigPathEnvVar 指定配置文件路径。
const ConfigPathEnvVar = EnvPrefix + "CONFIG"

// Service 是服务进程的完整配置。
type Service struct {
	Data   DataConfig   `koanf:"data"`
	Engine EngineConfig `koanf:"engine"`
	Cache  CacheConfig  `koanf:"cache"`
	Server ServerConfig `koanf:"server"`
	Log    LogConfig    `koanf:"log"`
}

// DataConfig 是两份数据文件的位置。
type DataConfig struct {
	RatingsPath string `koanf:"ratings_path" validate:"required"`
	TitlesPath  string `koanf:"titles_path" validate:"required"`
}

// EngineConfig 是推荐参数。
type EngineConfig struct {
	MinRatings         int      `koanf:"min_ratings" validate:"gte=1"`
	TopN               int      `koanf:"top_n" validate:"gte=1,lte=1000"`
	MinCommonUsers     int      `koanf:"min_common_users" validate:"gte=2"`
	PopularN           int      `koanf:"popular_n" validate:"gte=1"`
	TopRatedMinRatings int      `koanf:"top_rated_min_ratings" validate:"gte=1"`
	UserMinSupport     int      `koanf:"user_min_support" validate:"gte=1"`
	PipelinePath       string   `koanf:"pipeline_path"`
	Blacklist          []string `koanf:"blacklist"`
}

// CacheConfig 是推荐结果缓存。Backend 为 none 时不缓存。
type CacheConfig struct {
	Backend       string `koanf:"backend" validate:"oneof=none memory redis"`
	TTLSeconds    int    `koanf:"ttl_seconds" validate:"gte=0"`
	RedisAddr     string `koanf:"redis_addr" validate:"required_if=Backend redis"`
	RedisPassword string `koanf:"redis_password"`
	RedisDB       int    `koanf:"redis_db" validate:"gte=0"`
}

// TTL 返回缓存过期时间。
func (c CacheConfig) TTL() time.Duration {
	return time.Duration(c.TTLSeconds) * time.Second
}

// ServerConfig 是 HTTP 服务配置。
type ServerConfig struct {
	Addr            string        `koanf:"addr" validate:"required"`
	ReadTimeout     time.Duration `koanf:"read_timeout"`
	WriteTimeout    time.Duration `koanf:"write_timeout"`
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout"`

	// CORSOrigins 为空时不启用 CORS
	CORSOrigins []string `koanf:"cors_origins"`

	// RateLimitRequests 为 0 时不限流
	RateLimitRequests int           `koanf:"rate_limit_requests" validate:"gte=0"`
	RateLimitWindow   time.Duration `koanf:"rate_limit_window"`
}

// LogConfig 是日志配置。
type LogConfig struct {
	Level  string `koanf:"level" validate:"oneof=debug info warn error"`
	Format string `koanf:"format" validate:"oneof=json console"`
}

// Defaults 返回默认配置。
func Defaults() *Service {
	return &Service{
		Data: DataConfig{
			RatingsPath: "data/u.data",
			TitlesPath:  "data/Movie_Id_Titles",
		},
		Engine: EngineConfig{
			MinRatings:         core.DefaultMinRatings,
			TopN:               core.DefaultTopN,
			MinCommonUsers:     core.DefaultMinCommonUsers,
			PopularN:           core.DefaultPopularN,
			TopRatedMinRatings: core.DefaultTopRatedMinRatings,
			UserMinSupport:     core.DefaultUserMinSupport,
		},
		Cache: CacheConfig{
			Backend:    "memory",
			TTLSeconds: 600,
			RedisAddr:  "127.0.0.1:6379",
		},
		Server: ServerConfig{
			Addr:            ":8080",
			ReadTimeout:     10 * time.Second,
			WriteTimeout:    30 * time.Second,
			ShutdownTimeout: 15 * time.Second,
			RateLimitWindow: time.Minute,
		},
		Log: LogConfig{
			Level:  "info",
			Format: "json",
		},
	}
}

// Load 按 默认值 → YAML 文件 → 环境变量 的顺序叠加配置，最后校验。
// path 为空时读取 MOVIEREC_CONFIG；两者都为空则不读文件。
func Load(path string) (*Service, error) {
	k := koanf.New(".")

	if err := k.Load(structs.Provider(Defaults(), "koanf"), nil); err != nil {
		return nil, fmt.Errorf("load defaults: %w", err)
	}

	if path == "" {
		path = os.Getenv(ConfigPathEnvVar)
	}
	if path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("load config file %s: %w", path, err)
		}
	}

	if err := k.Load(env.Provider(EnvPrefix, ".", envKey), nil); err != nil {
		return nil, fmt.Errorf("load env: %w", err)
	}
	for _, path := range []string{"engine.blacklist", "server.cors_origins"} {
		if err := splitList(k, path); err != nil {
			return nil, err
		}
	}

	cfg := &Service{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// envKey: MOVIEREC_ENGINE__MIN_RATINGS → engine.min_ratings
func envKey(s string) string {
	s = strings.TrimPrefix(s, EnvPrefix)
	return strings.ReplaceAll(strings.ToLower(s), "__", ".")
}

// splitList 把环境变量中以逗号分隔的字符串转成列表。
func splitList(k *koanf.Koanf, path string) error {
	raw, ok := k.Get(path).(string)
	if !ok {
		return nil
	}
	var items []string
	for _, p := range strings.Split(raw, ",") {
		if p = strings.TrimSpace(p); p != "" {
			items = append(items, p)
		}
	}
	if err := k.Set(path, items); err != nil {
		return fmt.Errorf("set %s: %w", path, err)
	}
	return nil
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// Validate 校验各字段取值范围。
func (s *Service) Validate() error {
	return validate.Struct(s)
}
