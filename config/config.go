package config

import (
	"log/slog"
	"os"
)

// JwtKey signs and verifies session tokens. Overridden by LoadConfig from JWT_SECRET.
var JwtKey = []byte("dev-secret-change-me")

// Addr is the listen address of the HTTP server.
var Addr = ":8080"

// LoadConfig reads the process configuration from environment variables.
func LoadConfig() {
	if secret := os.Getenv("JWT_SECRET"); secret != "" {
		JwtKey = []byte(secret)
	} else {
		slog.Warn("JWT_SECRET is not set, using the development default")
	}

	if addr := os.Getenv("ADDR"); addr != "" {
		Addr = addr
	}
}
