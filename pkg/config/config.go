package config

import (
	"errors"
	"io/fs"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	EnvDevelopment = "development"
	EnvProduction  = "production"
)

// Session store backends.
const (
	SessionStoreRedis  = "redis"
	SessionStoreMemory = "memory"
)

type Config struct {
	Env       string
	Port      int
	APIPrefix string

	Backend BackendConfig
	Redis   RedisConfig
	Session SessionConfig
	Screens ScreensConfig
	CORS    CORSConfig
	Log     LogConfig
	Metrics MetricsConfig
}

// BackendConfig points the console at the remote REST backend.
type BackendConfig struct {
	BaseURL string
	Timeout time.Duration
}

type RedisConfig struct {
	Host        string
	Port        int
	Password    string
	DB          int
	PingTimeout time.Duration
}

// SessionConfig controls how console sessions are identified and persisted.
type SessionConfig struct {
	Store         string
	TTL           time.Duration
	CookieName    string
	CookieSecure  bool
	WorkspaceSize int
}

// ScreensConfig tunes the list screens.
type ScreensConfig struct {
	FetchTimeout    time.Duration
	PageSizes       []int
	DefaultPageSize int
	UserSortBy      string
	UserSortDir     string
	WorkerSortBy    string
	WorkerSortDir   string
}

type CORSConfig struct {
	AllowedOrigins []string
}

type LogConfig struct {
	Level  string
	Format string
}

// MetricsConfig toggles the Prometheus endpoint.
type MetricsConfig struct {
	Enabled bool
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.SetConfigFile(".env")
	v.SetConfigType("env")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !errors.Is(err, fs.ErrNotExist) {
			return nil, err
		}
	}

	return fromViper(v), nil
}

func fromViper(v *viper.Viper) *Config {
	cfg := &Config{}

	cfg.Env = v.GetString("ENV")
	cfg.Port = v.GetInt("PORT")
	cfg.APIPrefix = v.GetString("API_PREFIX")

	cfg.Backend = BackendConfig{
		BaseURL: strings.TrimRight(v.GetString("BACKEND_BASE_URL"), "/"),
		Timeout: parseDuration(v.GetString("BACKEND_TIMEOUT"), 15*time.Second),
	}

	cfg.Redis = RedisConfig{
		Host:     v.GetString("REDIS_HOST"),
		Port:     v.GetInt("REDIS_PORT"),
		Password: v.GetString("REDIS_PASSWORD"),
		DB:       v.GetInt("REDIS_DB"),

		PingTimeout: parseDuration(v.GetString("REDIS_PING_TIMEOUT"), 5*time.Second),
	}

	store := strings.ToLower(strings.TrimSpace(v.GetString("SESSION_STORE")))
	if store != SessionStoreMemory {
		store = SessionStoreRedis
	}
	cfg.Session = SessionConfig{
		Store:         store,
		TTL:           parseDuration(v.GetString("SESSION_TTL"), 24*time.Hour),
		CookieName:    v.GetString("SESSION_COOKIE"),
		CookieSecure:  v.GetBool("SESSION_COOKIE_SECURE"),
		WorkspaceSize: v.GetInt("WORKSPACE_CACHE_SIZE"),
	}

	pageSizes := parseInts(v.GetString("PAGE_SIZES"))
	if len(pageSizes) == 0 {
		pageSizes = []int{3, 5, 10, 15, 20, 25}
	}
	cfg.Screens = ScreensConfig{
		FetchTimeout:    parseDuration(v.GetString("FETCH_TIMEOUT"), 20*time.Second),
		PageSizes:       pageSizes,
		DefaultPageSize: v.GetInt("DEFAULT_PAGE_SIZE"),
		UserSortBy:      v.GetString("USER_SORT_BY"),
		UserSortDir:     v.GetString("USER_SORT_DIR"),
		WorkerSortBy:    v.GetString("WORKER_SORT_BY"),
		WorkerSortDir:   v.GetString("WORKER_SORT_DIR"),
	}

	cfg.CORS = CORSConfig{AllowedOrigins: splitAndTrim(v.GetString("ALLOWED_ORIGINS"))}

	cfg.Log = LogConfig{
		Level:  v.GetString("LOG_LEVEL"),
		Format: v.GetString("LOG_FORMAT"),
	}

	cfg.Metrics = MetricsConfig{Enabled: v.GetBool("ENABLE_METRICS")}

	return cfg
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("ENV", EnvDevelopment)
	v.SetDefault("PORT", 8080)
	v.SetDefault("API_PREFIX", "/console/api")

	v.SetDefault("BACKEND_BASE_URL", "http://localhost:9091/api")
	v.SetDefault("BACKEND_TIMEOUT", "15s")

	v.SetDefault("REDIS_HOST", "localhost")
	v.SetDefault("REDIS_PORT", 6379)
	v.SetDefault("REDIS_PASSWORD", "")
	v.SetDefault("REDIS_DB", 0)
	v.SetDefault("REDIS_PING_TIMEOUT", "5s")

	v.SetDefault("SESSION_STORE", SessionStoreRedis)
	v.SetDefault("SESSION_TTL", "24h")
	v.SetDefault("SESSION_COOKIE", "console_session")
	v.SetDefault("SESSION_COOKIE_SECURE", false)
	v.SetDefault("WORKSPACE_CACHE_SIZE", 1024)

	v.SetDefault("FETCH_TIMEOUT", "20s")
	v.SetDefault("PAGE_SIZES", "3,5,10,15,20,25")
	v.SetDefault("DEFAULT_PAGE_SIZE", 10)
	v.SetDefault("USER_SORT_BY", "name")
	v.SetDefault("USER_SORT_DIR", "asc")
	v.SetDefault("WORKER_SORT_BY", "createdOn")
	v.SetDefault("WORKER_SORT_DIR", "desc")

	v.SetDefault("ALLOWED_ORIGINS", "")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "json")

	v.SetDefault("ENABLE_METRICS", true)
}

func parseDuration(raw string, fallback time.Duration) time.Duration {
	if raw == "" {
		return fallback
	}

	d, err := time.ParseDuration(raw)
	if err != nil {
		return fallback
	}

	return d
}

func parseInts(raw string) []int {
	var result []int
	for _, part := range splitAndTrim(raw) {
		n, err := strconv.Atoi(part)
		if err != nil || n <= 0 {
			continue
		}
		result = append(result, n)
	}
	return result
}

func splitAndTrim(raw string) []string {
	if raw == "" {
		return nil
	}

	parts := strings.Split(raw, ",")
	result := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			result = append(result, trimmed)
		}
	}

	return result
}
