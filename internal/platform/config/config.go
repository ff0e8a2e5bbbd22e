package config

import (
	"os"
	"strings"
)

// Server captures process-level configuration.
type Server struct {
	Addr string

	// PostgresDSN selects the postgres-backed stores when set; the server
	// falls back to in-memory stores (with a demo seed) when empty.
	PostgresDSN string

	// RedisURL enables the distributed per-entity assessment lock. Empty
	// means the in-process lock is used.
	RedisURL string

	// KafkaBrokers enables the audit outbox relay. Empty means audit events
	// stay in the outbox (postgres) or memory store only.
	KafkaBrokers []string
	AuditTopic   string
}

// FromEnv builds a Server config from environment variables so main stays lean.
func FromEnv() Server {
	addr := os.Getenv("TURBOFCL_ADDR")
	if addr == "" {
		addr = ":8080"
	}

	topic := os.Getenv("TURBOFCL_AUDIT_TOPIC")
	if topic == "" {
		topic = "turbofcl.audit.events"
	}

	var brokers []string
	if raw := os.Getenv("TURBOFCL_KAFKA_BROKERS"); raw != "" {
		for _, b := range strings.Split(raw, ",") {
			if b = strings.TrimSpace(b); b != "" {
				brokers = append(brokers, b)
			}
		}
	}

	return Server{
		Addr:         addr,
		PostgresDSN:  os.Getenv("TURBOFCL_POSTGRES_DSN"),
		RedisURL:     os.Getenv("TURBOFCL_REDIS_URL"),
		KafkaBrokers: brokers,
		AuditTopic:   topic,
	}
}
