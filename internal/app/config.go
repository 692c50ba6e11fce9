package app

import (
	"github.com/yungbote/edupulse-backend/internal/pkg/logger"
	"github.com/yungbote/edupulse-backend/internal/platform/envutil"
	"github.com/yungbote/edupulse-backend/internal/realtime/bus"
)

type Config struct {
	LogMode  string
	LogLevel string

	ServiceName string
	Environment string
	Version     string

	// RulesFile is an optional YAML file of fallback adaptive rules.
	RulesFile string

	Redis bus.RedisConfig

	MetricsAddr string
}

func LoadConfig(log *logger.Logger) Config {
	cfg := Config{
		LogMode:     envutil.String("LOG_MODE", "development"),
		LogLevel:    envutil.String("LOG_LEVEL", ""),
		ServiceName: envutil.String("OTEL_SERVICE_NAME", "edupulse-backend"),
		Environment: envutil.String("APP_ENV", "development"),
		Version:     envutil.String("APP_VERSION", "dev"),
		RulesFile:   envutil.String("ADAPTIVE_RULES_FILE", ""),
		Redis: bus.RedisConfig{
			Addr:     envutil.String("REDIS_ADDR", ""),
			Password: envutil.String("REDIS_PASSWORD", ""),
			DB:       envutil.Int("REDIS_DB", 0),
			Channel:  envutil.String("REDIS_CHANNEL", bus.DefaultChannel),
		},
		MetricsAddr: envutil.String("METRICS_ADDR", ":9464"),
	}
	if log != nil {
		log.Debug("config loaded",
			"environment", cfg.Environment,
			"rules_file", cfg.RulesFile,
			"redis", cfg.Redis.Addr != "",
		)
	}
	return cfg
}
