package bootstrap

import (
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	ServerAddr    string
	GRPCAddr      string
	LogLevel      string
	PublicBaseURL string

	TaskID        string
	RenderBackend string
	Lookahead     time.Duration

	ArchiveBackend string
	ArchiveTTL     time.Duration

	RedisAddr     string
	RedisPassword string
	RedisDB       int

	RateLimitRPS   float64
	RateLimitBurst int
}

const (
	RenderBackendSpeaker = "speaker"
	RenderBackendVirtual = "virtual"

	ArchiveBackendRedis  = "redis"
	ArchiveBackendMemory = "memory"
)

func LoadConfig() *Config {
	v := viper.New()
	v.AutomaticEnv()

	v.SetDefault("server_addr", ":8080")
	v.SetDefault("grpc_addr", ":50051")
	v.SetDefault("log_level", "info")
	v.SetDefault("public_base_url", "http://localhost:8080")
	v.SetDefault("task_id", "task-1")
	v.SetDefault("render_backend", RenderBackendSpeaker)
	v.SetDefault("lookahead_ms", 20)
	v.SetDefault("archive_backend", ArchiveBackendRedis)
	v.SetDefault("archive_ttl", "24h")
	v.SetDefault("redis_addr", "localhost:6379")
	v.SetDefault("redis_db", 0)
	v.SetDefault("rate_limit_rps", 10)
	v.SetDefault("rate_limit_burst", 20)

	for _, key := range []string{
		"server_addr", "grpc_addr", "log_level", "public_base_url",
		"task_id", "render_backend", "lookahead_ms",
		"archive_backend", "archive_ttl",
		"redis_addr", "redis_password", "redis_db",
		"rate_limit_rps", "rate_limit_burst",
	} {
		_ = v.BindEnv(key)
	}

	return &Config{
		ServerAddr:    v.GetString("server_addr"),
		GRPCAddr:      v.GetString("grpc_addr"),
		LogLevel:      v.GetString("log_level"),
		PublicBaseURL: v.GetString("public_base_url"),

		TaskID:        v.GetString("task_id"),
		RenderBackend: v.GetString("render_backend"),
		Lookahead:     time.Duration(v.GetInt("lookahead_ms")) * time.Millisecond,

		ArchiveBackend: v.GetString("archive_backend"),
		ArchiveTTL:     v.GetDuration("archive_ttl"),

		RedisAddr:     v.GetString("redis_addr"),
		RedisPassword: v.GetString("redis_password"),
		RedisDB:       v.GetInt("redis_db"),

		RateLimitRPS:   v.GetFloat64("rate_limit_rps"),
		RateLimitBurst: v.GetInt("rate_limit_burst"),
	}
}
