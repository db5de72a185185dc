package global

import (
	"context"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"

	mongoutil "ChatApp/data/database/mgo/mongoutil"
	"ChatApp/logger"
	"ChatApp/service/media"
	mgoSrv "ChatApp/service/mgo"
	redis "ChatApp/service/storage/redis"
	ids "ChatApp/tools/ids"
	jwtlib "ChatApp/tools/security"
)

// AppConfig 全部来自环境变量（.env 可选），见 envOr 的缺省值
type AppConfig struct {
	Port     string
	NodeID   int64
	MongoURI string
	MongoDB  string

	RedisAddr     string
	RedisPassword string
	RedisDB       int

	JwtSecret string
	JwtTTL    time.Duration

	MediaEndpoint string
	MediaPreset   string
	MediaFolder   string

	RateLimitPerMin int // <=0 关闭限流
}

var cfg AppConfig

// Load 读 .env（存在时）并装配配置
func Load() *AppConfig {
	if err := godotenv.Load(); err != nil {
		logger.Infof("[Config] no .env file, using environment: %v", err)
	}
	cfg = AppConfig{
		Port:     envOr("PORT", "8080"),
		NodeID:   envInt64("NODE_ID", 1),
		MongoURI: envOr("MONGO_URI", "mongodb://localhost:27017"),
		MongoDB:  envOr("MONGO_DB", "chat_app"),

		RedisAddr:     os.Getenv("REDIS_ADDR"),
		RedisPassword: os.Getenv("REDIS_PASSWORD"),
		RedisDB:       int(envInt64("REDIS_DB", 0)),

		JwtSecret: envOr("JWT_SECRET", "dev-secret-change-me"),
		JwtTTL:    time.Duration(envInt64("JWT_TTL_HOURS", 24)) * time.Hour,

		MediaEndpoint: os.Getenv("MEDIA_ENDPOINT"),
		MediaPreset:   os.Getenv("MEDIA_UPLOAD_PRESET"),
		MediaFolder:   envOr("MEDIA_FOLDER", "chat-app"),

		RateLimitPerMin: int(envInt64("RATE_LIMIT_PER_MIN", 120)),
	}
	return &cfg
}

func Get() *AppConfig { return &cfg }

func GetJwtOptions() jwtlib.Options {
	opts := jwtlib.DefaultOptions([]byte(cfg.JwtSecret))
	opts.TTL = cfg.JwtTTL
	return opts
}

func MediaConfig() media.Config {
	return media.Config{
		Endpoint:     cfg.MediaEndpoint,
		UploadPreset: cfg.MediaPreset,
		Folder:       cfg.MediaFolder,
	}
}

// ConfigAll 按依赖顺序初始化各子系统
func ConfigAll(ctx context.Context) {
	ConfigIds()
	ConfigRedis()
	ConfigMgo(ctx)
}

func ConfigIds() {
	ids.SetNodeID(cfg.NodeID)
}

// ConfigRedis REDIS_ADDR 为空时跳过；限流等可选能力自动降级
func ConfigRedis() {
	if cfg.RedisAddr == "" {
		logger.Infof("[Config] redis disabled (REDIS_ADDR empty)")
		return
	}
	err := redis.InitRedis(redis.Config{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})
	if err != nil {
		logger.Warnf("[Config] redis init failed, continue without: %v", err)
	}
}

func ConfigMgo(ctx context.Context) {
	mgoSrv.StartAsync(ctx, &mongoutil.Config{
		Uri:         cfg.MongoURI,
		Database:    cfg.MongoDB,
		MaxPoolSize: 20,
		MaxRetry:    3,
	})
}

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func envInt64(key string, def int64) int64 {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	n, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		logger.Warnf("[Config] bad %s=%q, using %d", key, v, def)
		return def
	}
	return n
}
