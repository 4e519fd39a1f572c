package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds everything the client needs to reach its two remote
// collaborators and where to keep its small amount of local state.
type Config struct {
	Backend  BackendConfig
	Metadata MetadataConfig
	Search   SearchConfig
	DataDir  string
	LogFile  string
}

// BackendConfig points at the REST backend owning auth, profiles,
// watchlists and subscriptions.
type BackendConfig struct {
	BaseURL string
	Timeout time.Duration
}

// MetadataConfig points at the third-party movie metadata provider.
type MetadataConfig struct {
	BaseURL  string
	APIKey   string
	Language string
	ImageURL string
}

// SearchConfig tunes the search aggregation pipeline.
type SearchConfig struct {
	Debounce  time.Duration
	BatchSize int
}

// Load reads configuration from the environment, with a best-effort .env
// file load first.
func Load() *Config {
	godotenv.Load()

	return &Config{
		Backend: BackendConfig{
			BaseURL: getEnv("BACKEND_URL", "http://localhost:8000/api"),
			Timeout: time.Duration(getEnvAsInt("BACKEND_TIMEOUT_SECONDS", 30)) * time.Second,
		},
		Metadata: MetadataConfig{
			BaseURL:  getEnv("TMDB_BASE_URL", "https://api.themoviedb.org/3"),
			APIKey:   getEnv("TMDB_API_KEY", ""),
			Language: getEnv("TMDB_LANGUAGE", "en-US"),
			ImageURL: getEnv("TMDB_IMAGE_URL", "https://image.tmdb.org/t/p"),
		},
		Search: SearchConfig{
			Debounce:  time.Duration(getEnvAsInt("SEARCH_DEBOUNCE_MS", 300)) * time.Millisecond,
			BatchSize: getEnvAsInt("VALIDATION_BATCH_SIZE", 20),
		},
		DataDir: getEnv("DATA_DIR", defaultDataDir()),
		LogFile: getEnv("LOG_FILE", ""),
	}
}

func defaultDataDir() string {
	if dir, err := os.UserCacheDir(); err == nil {
		return dir + "/streamnest"
	}
	return ".streamnest"
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.Atoi(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}
