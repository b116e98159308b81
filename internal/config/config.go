package config

import (
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	HTTPAddr string

	DBDriver string // sqlite | postgres

	// TenantDSNTemplate builds the per-school DSN; "{tenant}" is replaced
	// with the tenant key. For sqlite this is a file path template, for
	// postgres a full DSN pointing at the school's database.
	TenantDSNTemplate string
	TenantCacheSize   int

	AuthHMACSecret  string
	EnableLocalAuth bool
	AdminPassHash   string // bcrypt

	AIGraderURL     string
	AIGraderKey     string
	AIGraderTimeout time.Duration
	AIGraderEnabled bool

	RedisAddr string // empty disables the enrichment cache

	CORSOrigins []string
}

func FromEnv() Config {
	if err := godotenv.Load(); err != nil {
		log.Println("no .env file found, using process environment")
	}

	driver := envOr("DB_DRIVER", "sqlite")
	dsnTpl := os.Getenv("TENANT_DSN_TEMPLATE")
	if dsnTpl == "" {
		switch driver {
		case "postgres":
			dsnTpl = "postgres://localhost:5432/school_{tenant}?sslmode=disable"
		default:
			dsnTpl = "file:data/{tenant}.db?cache=shared&mode=rwc&_pragma=busy_timeout(5000)"
		}
	}

	return Config{
		HTTPAddr:          envOr("HTTP_ADDR", ":8080"),
		DBDriver:          driver,
		TenantDSNTemplate: dsnTpl,
		TenantCacheSize:   envInt("TENANT_CACHE_SIZE", 64),
		AuthHMACSecret:    envOr("AUTH_HMAC_SECRET", "supersecret-dev-key"),
		EnableLocalAuth:   envBool("ENABLE_LOCAL_AUTH", true),
		AdminPassHash:     envOr("ADMIN_PASS_HASH", "$2y$12$pyZAiWaTfVtM7UElIRStvOC3gNbnp70nmQU4eYopLGBfCJr1DOvji"),
		AIGraderURL:       envOr("AI_GRADER_URL", "http://localhost:8000"),
		AIGraderKey:       os.Getenv("AI_GRADER_KEY"),
		AIGraderTimeout:   envDuration("AI_GRADER_TIMEOUT", 30*time.Second),
		AIGraderEnabled:   envBool("AI_GRADER_ENABLED", true),
		RedisAddr:         os.Getenv("REDIS_ADDR"),
		CORSOrigins:       csvOr("CORS_ORIGINS", "http://localhost:3000"),
	}
}

func envOr(k, def string) string {
	v := os.Getenv(k)
	if v == "" {
		return def
	}
	return v
}

func envInt(k string, def int) int {
	v := os.Getenv(k)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		log.Printf("bad integer for %s: %v", k, err)
		return def
	}
	return n
}

func envBool(k string, def bool) bool {
	switch os.Getenv(k) {
	case "1", "true", "TRUE", "yes", "YES":
		return true
	case "0", "false", "FALSE", "no", "NO":
		return false
	default:
		return def
	}
}

func envDuration(k string, def time.Duration) time.Duration {
	v := os.Getenv(k)
	if v == "" {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		log.Printf("bad duration for %s: %v", k, err)
		return def
	}
	return d
}

func csvOr(k, def string) []string {
	v := envOr(k, def)
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if s := strings.TrimSpace(p); s != "" {
			out = append(out, s)
		}
	}
	return out
}
