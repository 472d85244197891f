package config

import (
	"os"
	"strings"
	"time"
)

// AppConfig collects the environment-driven settings read once at startup.
type AppConfig struct {
	Port            string
	BaseDir         string
	Bucket          string
	StorageProvider string

	GeminiAPIKey   string
	GeminiModel    string
	ExtractTimeout time.Duration

	AdminPassword string

	MaxScanSizeBytes int64
}

func GetEnv(key, fallback string) string {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback
	}
	return v
}

func GetEnvDuration(key string, fallback time.Duration) time.Duration {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return fallback
	}
	return d
}

func LoadConfig() *AppConfig {
	return &AppConfig{
		Port:            GetEnv("PORT", "8080"),
		BaseDir:         GetEnv("CHANTIERS_BASE_DIR", "CHANTIERS_ITB77"),
		Bucket:          GetEnv("GCS_BUCKET", ""),
		StorageProvider: strings.ToLower(GetEnv("STORAGE_PROVIDER", "gcs")),

		GeminiAPIKey:   GetEnv("GOOGLE_API_KEY", ""),
		GeminiModel:    GetEnv("GEMINI_MODEL", "gemini-1.5-flash"),
		ExtractTimeout: GetEnvDuration("EXTRACT_TIMEOUT", 60*time.Second),

		AdminPassword: GetEnv("ADMIN_PASSWORD", "admin123"),

		MaxScanSizeBytes: 10 * 1024 * 1024,
	}
}
