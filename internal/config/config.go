package config

import (
	"os"
	"strconv"
	"time"

	"clankertap/internal/logger"

	"github.com/joho/godotenv"
)

type Config struct {
	AppPort     string
	DatabaseURL string
	DemoMode    bool // no DATABASE_URL: fully in-memory, nothing persists

	BotToken      string
	BotUsername   string
	GameShortName string
	JWTSecret     string

	RedisAddr     string
	RedisPassword string
	RedisDB       int

	AllowedOrigin string

	// Session engine timing
	RegenInterval  time.Duration // energy regen + passive income tick
	SaveInterval   time.Duration // snapshot flush to the users table
	SessionIdleTTL time.Duration // idle sessions are flushed and evicted

	// Mission ledger
	MissionClaimWait time.Duration // link missions: simulated verification wait

	// Rate limits
	APIRateLimit  int
	APIRateWindow time.Duration
	TapRateLimit  int
	TapRateWindow time.Duration
}

// Load reads configuration from the environment (.env is honored when
// present). A missing DATABASE_URL is not fatal: the server runs in demo
// mode with synthesized local state and every write path staying in memory.
func Load() *Config {
	_ = godotenv.Load()

	cfg := &Config{
		AppPort:          envStr("APP_PORT", "8080"),
		DatabaseURL:      os.Getenv("DATABASE_URL"),
		BotToken:         os.Getenv("BOT_TOKEN"),
		BotUsername:      envStr("BOT_USERNAME", "ClankerTapBot"),
		GameShortName:    envStr("GAME_SHORT_NAME", "game"),
		JWTSecret:        os.Getenv("JWT_SECRET"),
		RedisAddr:        os.Getenv("REDIS_ADDR"),
		RedisPassword:    os.Getenv("REDIS_PASSWORD"),
		RedisDB:          envInt("REDIS_DB", 0),
		AllowedOrigin:    os.Getenv("ALLOWED_ORIGIN"),
		RegenInterval:    envSeconds("REGEN_INTERVAL_SECONDS", 1),
		SaveInterval:     envSeconds("SAVE_INTERVAL_SECONDS", 10),
		SessionIdleTTL:   envSeconds("SESSION_IDLE_TTL_SECONDS", 300),
		MissionClaimWait: envSeconds("MISSION_CLAIM_WAIT_SECONDS", 5),
		APIRateLimit:     envInt("API_RATE_LIMIT", 120),
		APIRateWindow:    envSeconds("API_RATE_WINDOW_SECONDS", 60),
		TapRateLimit:     envInt("TAP_RATE_LIMIT", 600),
		TapRateWindow:    envSeconds("TAP_RATE_WINDOW_SECONDS", 60),
	}

	if cfg.JWTSecret == "" {
		logger.Fatal("JWT_SECRET is not set")
	}

	if cfg.DatabaseURL == "" {
		cfg.DemoMode = true
		logger.Warn("DATABASE_URL is not set, running in demo mode (nothing persists)")
	} else if cfg.BotToken == "" {
		logger.Fatal("BOT_TOKEN is not set")
	}

	return cfg
}

func envStr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func envSeconds(key string, fallback int) time.Duration {
	return time.Duration(envInt(key, fallback)) * time.Second
}
