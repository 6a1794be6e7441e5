package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

type Env struct {
	AppAddr     string
	GinMode     string
	CORSOrigins string

	// StoreDriver selects the storage backend: memory, mysql or redis.
	StoreDriver string
	MySQLDSN    string
	RedisAddr   string
	NATSURL     string

	JWTSecret  string
	AdminEmail string

	PaymentDelay time.Duration
	PaymentSeed  int64
}

func LoadEnv() Env {
	appAddr := strings.TrimSpace(os.Getenv("APP_ADDR"))
	if appAddr == "" {
		appAddr = ":8080"
	}

	ginMode := strings.TrimSpace(os.Getenv("GIN_MODE"))

	driver := strings.ToLower(strings.TrimSpace(os.Getenv("STORE_DRIVER")))
	if driver == "" {
		driver = "memory"
	}

	dsn := strings.TrimSpace(os.Getenv("MYSQL_DSN"))
	if dsn == "" {
		dsn = "root:@tcp(127.0.0.1:3306)/selambus?parseTime=true&loc=Local&charset=utf8mb4&timeout=5s&readTimeout=30s&writeTimeout=30s"
	}

	redisAddr := strings.TrimSpace(os.Getenv("REDIS_ADDR"))
	if redisAddr == "" {
		redisAddr = "localhost:6379"
	}

	secret := os.Getenv("JWT_SECRET")
	if secret == "" {
		secret = "super-secret-key-change-me"
	}

	admin := strings.TrimSpace(os.Getenv("ADMIN_EMAIL"))
	if admin == "" {
		admin = "admin@selambus.com"
	}

	delay := 2 * time.Second
	if v := strings.TrimSpace(os.Getenv("PAYMENT_DELAY")); v != "" {
		if d, err := time.ParseDuration(v); err == nil && d >= 0 {
			delay = d
		}
	}

	var seed int64
	if v := strings.TrimSpace(os.Getenv("PAYMENT_SEED")); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			seed = n
		}
	}

	return Env{
		AppAddr:      appAddr,
		GinMode:      ginMode,
		CORSOrigins:  os.Getenv("CORS_ALLOWED_ORIGINS"),
		StoreDriver:  driver,
		MySQLDSN:     dsn,
		RedisAddr:    redisAddr,
		NATSURL:      strings.TrimSpace(os.Getenv("NATS_URL")),
		JWTSecret:    secret,
		AdminEmail:   admin,
		PaymentDelay: delay,
		PaymentSeed:  seed,
	}
}
