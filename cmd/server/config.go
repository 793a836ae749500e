package main

import (
	"os"
	"time"
)

type Config struct {
	HTTPAddr  string
	MySQLDSN  string
	RedisAddr string

	JWTSecret       string
	JWTIssuer       string
	AccessTokenTTL  time.Duration
	RefreshTokenTTL time.Duration

	MigrateOnStart bool
}

func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getenvDuration(key string, def time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return def
}

func LoadConfig() Config {
	return Config{
		HTTPAddr:  getenv("HTTP_ADDR", ":8080"),
		MySQLDSN:  getenv("MYSQL_DSN", "root:root@tcp(localhost:3306)/inventory?parseTime=true"),
		RedisAddr: getenv("REDIS_ADDR", "localhost:6379"),

		JWTSecret:       getenv("JWT_SECRET", "change-me-in-production"),
		JWTIssuer:       getenv("JWT_ISSUER", "inventory-api"),
		AccessTokenTTL:  getenvDuration("ACCESS_TOKEN_TTL", 15*time.Minute),
		RefreshTokenTTL: getenvDuration("REFRESH_TOKEN_TTL", 7*24*time.Hour),

		MigrateOnStart: getenv("MIGRATE_ON_START", "true") == "true",
	}
}

const shutdownGrace = 5 * time.Second
