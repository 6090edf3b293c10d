package config

import "os"

type Config struct {
	DatabaseURL   string
	JWTSecret     string
	Port          string
	StorageDriver string // "database" or "local"
	LocalDataPath string
	AppEnv        string
}

func Load() *Config {
	return &Config{
		DatabaseURL:   getEnv("DATABASE_URL", "stride.db"),
		JWTSecret:     getEnv("JWT_SECRET", "your-secret-key-change-in-production"),
		Port:          getEnv("PORT", "8080"),
		StorageDriver: getEnv("STORAGE_DRIVER", "database"),
		LocalDataPath: getEnv("LOCAL_DATA_PATH", "stride-data.json"),
		AppEnv:        getEnv("APP_ENV", "development"),
	}
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}
