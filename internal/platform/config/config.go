// Package config builds runtime configuration from environment variables so
// main stays lean.
package config

import (
	"os"
	"strings"
	"time"
)

// Server captures process-level configuration for the recovery engine.
type Server struct {
	Addr string

	// PostgresURL enables the PostgreSQL stores when set; the in-memory
	// stores are used otherwise (dev and tests).
	PostgresURL string

	// RedisURL enables the dossier snapshot cache when set.
	RedisURL string

	// KafkaBrokers and KafkaAuditTopic enable the audit Kafka sink when set.
	KafkaBrokers    []string
	KafkaAuditTopic string

	// JWTSigningKey signs bailiff access tokens.
	JWTSigningKey string
	// APISecretHash is the bcrypt hash the token endpoint verifies against.
	APISecretHash string
	// TokenTTL bounds issued access tokens.
	TokenTTL time.Duration
}

// FromEnv builds a Server config from environment variables.
func FromEnv() Server {
	addr := os.Getenv("RECOUVRO_ADDR")
	if addr == "" {
		addr = ":8080"
	}

	jwtSigningKey := os.Getenv("JWT_SIGNING_KEY")
	if jwtSigningKey == "" {
		// Development default; must be overridden in production.
		jwtSigningKey = "dev-secret-key-change-in-production"
	}

	tokenTTL := 30 * time.Minute
	if raw := os.Getenv("TOKEN_TTL"); raw != "" {
		if d, err := time.ParseDuration(raw); err == nil {
			tokenTTL = d
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

	topic := os.Getenv("KAFKA_AUDIT_TOPIC")
	if topic == "" && len(brokers) > 0 {
		topic = "recouvro.audit"
	}

	return Server{
		Addr:            addr,
		PostgresURL:     os.Getenv("POSTGRES_URL"),
		RedisURL:        os.Getenv("REDIS_URL"),
		KafkaBrokers:    brokers,
		KafkaAuditTopic: topic,
		JWTSigningKey:   jwtSigningKey,
		APISecretHash:   os.Getenv("API_SECRET_HASH"),
		TokenTTL:        tokenTTL,
	}
}
