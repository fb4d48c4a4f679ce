package config

import (
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	BackendDB  = "db"
	BackendCSV = "csv"
)

type Config struct {
	ServiceName string
	ServerPort  int
	LogLevel    string
	LogFormat   string

	StoreBackend string
	DBDriver     string
	DatabaseURL  string
	CSVDir       string

	JWTAccessSecret  []byte
	JWTRefreshSecret []byte

	AdminDefaultPassword string
	Location             *time.Location

	KafkaBrokers []string
	KafkaTopic   string

	ESURL      string
	ESUser     string
	ESPassword string
	ESIndex    string

	RedisAddr     string
	RedisPassword string
	RedisDB       int

	CSRFEnabled        bool
	CSRFTrustedOrigins []string
}

// LoadDotEnv reads .env into the process environment when the file exists.
func LoadDotEnv(path string) {
	if err := godotenv.Load(path); err != nil {
		log.Printf("Notice: %s file not found: %v. Using system environment variables", path, err)
	}
}

func Load() Config {
	return Config{
		ServiceName: EnvDefault("SERVICE_NAME", "stockwatch"),
		ServerPort:  EnvIntDefault("SERVER_PORT", 8080),
		LogLevel:    EnvDefault("LOG_LEVEL", "info"),
		LogFormat:   EnvDefault("LOG_FORMAT", "json"),

		StoreBackend: strings.ToLower(EnvDefault("STORE_BACKEND", BackendDB)),
		DBDriver:     strings.ToLower(EnvDefault("DB_DRIVER", "sqlite")),
		DatabaseURL:  EnvDefault("DATABASE_URL", "stockwatch.db"),
		CSVDir:       EnvDefault("CSV_DIR", "data"),

		JWTAccessSecret:  []byte(os.Getenv("JWT_SECRET")),
		JWTRefreshSecret: []byte(os.Getenv("JWT_REFRESH_SECRET")),

		AdminDefaultPassword: EnvDefault("ADMIN_DEFAULT_PASSWORD", "admin"),
		Location:             Location(os.Getenv("TIMEZONE")),

		KafkaBrokers: CSV(os.Getenv("KAFKA_BROKERS")),
		KafkaTopic:   EnvDefault("KAFKA_TOPIC", "stock_events"),

		ESURL:      os.Getenv("ES_URL"),
		ESUser:     os.Getenv("ES_USER"),
		ESPassword: os.Getenv("ES_PASSWORD"),
		ESIndex:    EnvDefault("ES_INDEX", "products"),

		RedisAddr:     os.Getenv("REDIS_ADDR"),
		RedisPassword: os.Getenv("REDIS_PASSWORD"),
		RedisDB:       EnvIntDefault("REDIS_DB", 0),

		CSRFEnabled:        EnvBoolDefault("CSRF_ENABLED", true),
		CSRFTrustedOrigins: CSV(os.Getenv("CSRF_TRUSTED_ORIGINS")),
	}
}

// Location resolves an IANA zone name. Empty or unknown names fall back to the
// host's local zone.
func Location(name string) *time.Location {
	if name == "" {
		return time.Local
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		log.Printf("Notice: unknown TIMEZONE %q: %v. Using local time", name, err)
		return time.Local
	}
	return loc
}

func CSV(v string) []string {
	if v == "" {
		return nil
	}
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}

func EnvDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func EnvIntDefault(key string, def int) int {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return n
}

func EnvBoolDefault(key string, def bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return def
	}
	return b
}
