package config

import (
	"os"
	"strconv"
	"time"
)

type Config struct {
	Addr         string
	DBPath       string
	UploadDir    string
	JWTSecret    string
	BcryptCost   int
	TokenTTL     time.Duration
	OTPTTL       time.Duration
	PendingSweep time.Duration
	SMTP         SMTP
	RateLimits   RateLimits

	Version   string
	Commit    string
	BuildTime string
}

type SMTP struct {
	Addr     string
	From     string
	Username string
	Password string
}

type RateLimits struct {
	RegisterPerMinute int
	OTPPerMinute      int
	LoginPerMinute    int
}

func Load() Config {
	addr := envString("QUILL_ADDR", "")
	if addr == "" {
		if port := os.Getenv("PORT"); port != "" {
			addr = ":" + port
		} else {
			addr = ":8080"
		}
	}
	cfg := Config{
		Addr:         addr,
		DBPath:       envString("QUILL_DB", "quill.db"),
		UploadDir:    envString("QUILL_UPLOAD_DIR", "uploads"),
		JWTSecret:    envString("QUILL_JWT_SECRET", "dev-jwt-secret"),
		BcryptCost:   envInt("QUILL_BCRYPT_COST", 10),
		TokenTTL:     envDuration("QUILL_TOKEN_TTL", 24*time.Hour),
		OTPTTL:       envDuration("QUILL_OTP_TTL", 10*time.Minute),
		PendingSweep: envDuration("QUILL_PENDING_SWEEP", 15*time.Minute),
		SMTP: SMTP{
			Addr:     envString("QUILL_SMTP_ADDR", ""),
			From:     envString("QUILL_SMTP_FROM", "no-reply@quill.local"),
			Username: envString("QUILL_SMTP_USER", ""),
			Password: envString("QUILL_SMTP_PASSWORD", ""),
		},
		RateLimits: RateLimits{
			RegisterPerMinute: envInt("QUILL_RL_REGISTER_PER_MIN", 10),
			OTPPerMinute:      envInt("QUILL_RL_OTP_PER_MIN", 6),
			LoginPerMinute:    envInt("QUILL_RL_LOGIN_PER_MIN", 30),
		},
	}

	return cfg
}

func envString(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func envInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return def
}

func envDuration(key string, def time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return def
}
