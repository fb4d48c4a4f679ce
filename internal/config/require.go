package config

import "log"

func MustNonEmpty(value, envName string) {
	if value == "" {
		log.Fatalf("missing required env %s", envName)
	}
}

func MustNonEmptyBytes(value []byte, envName string) {
	if len(value) == 0 {
		log.Fatalf("missing required env %s", envName)
	}
}

// MustServe validates the settings the HTTP server cannot start without.
func (c Config) MustServe() {
	MustNonEmptyBytes(c.JWTAccessSecret, "JWT_SECRET")
	MustNonEmptyBytes(c.JWTRefreshSecret, "JWT_REFRESH_SECRET")
	c.MustStore()
}

func (c Config) MustStore() {
	switch c.StoreBackend {
	case BackendDB:
		MustNonEmpty(c.DatabaseURL, "DATABASE_URL")
	case BackendCSV:
		MustNonEmpty(c.CSVDir, "CSV_DIR")
	default:
		log.Fatalf("unknown STORE_BACKEND %q", c.StoreBackend)
	}
}
