package infra

import "os"

// Config is the process configuration, read once at startup. Values come
// from the environment (godotenv loads a .env file first in cmd/app).
type Config struct {
	AppEnv      string
	Port        string
	PostgresURL string
	AIProvider  string
	AIAPIKey    string
	AIModel     string
	GeocoderURL string
}

func LoadConfig() *Config {
	return &Config{
		AppEnv:      getEnv("APP_ENV", "development"),
		Port:        getEnv("PORT", "8080"),
		PostgresURL: os.Getenv("POSTGRES_URL"),
		AIProvider:  getEnv("AI_PROVIDER", "gemini"),
		AIAPIKey:    os.Getenv("AI_API_KEY"),
		AIModel:     os.Getenv("AI_MODEL"),
		GeocoderURL: os.Getenv("GEOCODER_URL"),
	}
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
