package config

import (
	"os"
	"strings"
	"time"
)

// Server captures process-level configuration.
type Server struct {
	Addr            string
	DatabaseURL     string
	RedisURL        string
	JWTSigningKey   string
	AdminPassphrase string
	SessionTTL      time.Duration
	KafkaBrokers    []string
	KafkaAuditTopic string
}

// FromEnv builds a Server config from environment variables so main stays
// lean. Development defaults apply where unset.
func FromEnv() Server {
	addr := os.Getenv("PORTARIA_ADDR")
	if addr == "" {
		addr = ":8080"
	}

	jwtSigningKey := os.Getenv("JWT_SIGNING_KEY")
	if jwtSigningKey == "" {
		// Use a default for development - should be overridden in production
		jwtSigningKey = "dev-secret-key-change-in-production"
	}

	passphrase := os.Getenv("PORTARIA_ADMIN_PASSPHRASE")
	if passphrase == "" {
		passphrase = "admin@123"
	}

	sessionTTL := 12 * time.Hour
	if raw := os.Getenv("PORTARIA_SESSION_TTL"); raw != "" {
		if parsed, err := time.ParseDuration(raw); err == nil && parsed > 0 {
			sessionTTL = parsed
		}
	}

	var brokers []string
	if raw := os.Getenv("KAFKA_BROKERS"); raw != "" {
		for _, b := range strings.Split(raw, ",") {
			if b = strings.TrimSpace(b); b != "" {
				brokers = append(brokers, b)
			}
		}
	}

	return Server{
		Addr:            addr,
		DatabaseURL:     os.Getenv("DATABASE_URL"),
		RedisURL:        os.Getenv("REDIS_URL"),
		JWTSigningKey:   jwtSigningKey,
		AdminPassphrase: passphrase,
		SessionTTL:      sessionTTL,
		KafkaBrokers:    brokers,
		KafkaAuditTopic: os.Getenv("KAFKA_AUDIT_TOPIC"),
	}
}
