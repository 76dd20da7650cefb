package config

import (
	"encoding/json"
	"log"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

// AppConfig holds environment driven configuration values.
// Sensitive data should never have defaults inside code and must be provided via config files or the environment.
type AppConfig struct {
	AppPort     string `json:"app_port"`
	JWTSecret   string `json:"jwt_secret"`
	DatabaseURI string `json:"database_uri"`
	DBHost      string `json:"db_host"`
	DBPort      string `json:"db_port"`
	DBUser      string `json:"db_user"`
	DBPassword  string `json:"db_password"`
	DBName      string `json:"db_name"`
	// OAuth providers
	GitHubClientID     string `json:"github_client_id"`
	GitHubClientSecret string `json:"github_client_secret"`
	GoogleClientID     string `json:"google_client_id"`
	GoogleClientSecret string `json:"google_client_secret"`
	OAuthRedirectBase  string `json:"oauth_redirect_base"`
	// HTTP
	RateLimitPerMinute int      `json:"rate_limit_per_minute"`
	AllowedOrigins     []string `json:"allowed_origins"`
	GinMode            string   `json:"gin_mode"`
	GinPath            string   `json:"gin_path"`
	// SMTP for friend-request notifications
	SMTPHost     string `json:"smtp_host"`
	SMTPPort     int    `json:"smtp_port"`
	SMTPUsername string `json:"smtp_username"`
	SMTPPassword string `json:"smtp_password"`
	SMTPFrom     string `json:"smtp_from"`
	SMTPFromName string `json:"smtp_from_name"`
	SMTPTLS      bool   `json:"smtp_tls"`
	// Redis for caching and abuse counters
	RedisHost     string `json:"redis_host"`
	RedisPort     int    `json:"redis_port"`
	RedisDB       int    `json:"redis_db"`
	RedisPassword string `json:"redis_password"`
	// Logging configuration
	LogLevel      string `json:"log_level"`
	LogPath       string `json:"log_path"`
	LogMaxSizeMB  int    `json:"log_max_size_mb"`
	LogMaxBackups int    `json:"log_max_backups"`
	LogMaxAgeDays int    `json:"log_max_age_days"`
	LogCompress   bool   `json:"log_compress"`
	// Registration security
	RegisterMaxPerIPPerDay        int `json:"register_max_per_ip_per_day"`
	RegisterAttemptCooldownSec    int `json:"register_attempt_cooldown_sec"`
	RegisterFailedMaxPerIPPerHour int `json:"register_failed_max_per_ip_per_hour"`
	RegisterTempBanMinutes        int `json:"register_temp_ban_minutes"`
	// Avatar uploads
	AvatarMaxSizeMB        int `json:"avatar_max_size_mb"`
	AvatarCleanupGraceMins int `json:"avatar_cleanup_grace_mins"`
}

var cfg AppConfig
var loaded bool

// Load loads the application configuration. It should be called once during boot.
// Precedence: config/config.json -> defaults -> environment variable overrides.
func Load() AppConfig {
	if loaded {
		return cfg
	}

	_ = loadJSONConfig(filepath.Join("config", "config.json"), &cfg)
	applyDefaults(&cfg)
	applyEnvOverrides(&cfg)

	if cfg.JWTSecret == "" {
		log.Fatal("JWT_SECRET must be set in environment variables")
	}

	loaded = true
	return cfg
}

// Get returns the cached configuration, loading it if necessary.
func Get() AppConfig {
	if !loaded {
		return Load()
	}
	return cfg
}

func loadJSONConfig(path string, out *AppConfig) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	return json.Unmarshal(data, out)
}

func applyDefaults(c *AppConfig) {
	if c.AppPort == "" {
		c.AppPort = "8080"
	}
	if c.DBHost == "" {
		c.DBHost = "127.0.0.1"
	}
	if c.DBPort == "" {
		c.DBPort = "3306"
	}
	if c.DBUser == "" {
		c.DBUser = "fiveam"
	}
	if c.DBName == "" {
		c.DBName = "fiveam"
	}
	if c.RateLimitPerMinute == 0 {
		c.RateLimitPerMinute = 60
	}
	if len(c.AllowedOrigins) == 0 {
		c.AllowedOrigins = []string{"*"}
	}
	if c.GinMode == "" {
		c.GinMode = "release"
	}
	if c.GinPath == "" {
		c.GinPath = "logs/gin.log"
	}
	if c.RedisHost == "" {
		c.RedisHost = "127.0.0.1"
	}
	if c.RedisPort == 0 {
		c.RedisPort = 6379
	}
	if c.LogLevel == "" {
		c.LogLevel = "info"
	}
	if c.LogPath == "" {
		c.LogPath = "logs/app.log"
	}
	if c.LogMaxSizeMB == 0 {
		c.LogMaxSizeMB = 100
	}
	if c.LogMaxBackups == 0 {
		c.LogMaxBackups = 3
	}
	if c.LogMaxAgeDays == 0 {
		c.LogMaxAgeDays = 7
	}
	if c.RegisterMaxPerIPPerDay == 0 {
		c.RegisterMaxPerIPPerDay = 5
	}
	if c.RegisterAttemptCooldownSec == 0 {
		c.RegisterAttemptCooldownSec = 10
	}
	if c.RegisterFailedMaxPerIPPerHour == 0 {
		c.RegisterFailedMaxPerIPPerHour = 10
	}
	if c.RegisterTempBanMinutes == 0 {
		c.RegisterTempBanMinutes = 30
	}
	if c.AvatarMaxSizeMB == 0 {
		c.AvatarMaxSizeMB = 5
	}
	if c.AvatarCleanupGraceMins == 0 {
		c.AvatarCleanupGraceMins = 60
	}
	if c.SMTPPort == 0 {
		c.SMTPPort = 587
	}
	if c.SMTPFromName == "" {
		c.SMTPFromName = "5AM Club"
	}
}

func applyEnvOverrides(c *AppConfig) {
	c.AppPort = getEnv("APP_PORT", c.AppPort)
	c.JWTSecret = getEnv("JWT_SECRET", c.JWTSecret)
	c.DatabaseURI = getEnv("DATABASE_URI", c.DatabaseURI)
	c.DBHost = getEnv("DB_HOST", c.DBHost)
	c.DBPort = getEnv("DB_PORT", c.DBPort)
	c.DBUser = getEnv("DB_USER", c.DBUser)
	c.DBPassword = getEnv("DB_PASSWORD", c.DBPassword)
	c.DBName = getEnv("DB_NAME", c.DBName)
	c.GitHubClientID = getEnv("GITHUB_CLIENT_ID", c.GitHubClientID)
	c.GitHubClientSecret = getEnv("GITHUB_CLIENT_SECRET", c.GitHubClientSecret)
	c.GoogleClientID = getEnv("GOOGLE_CLIENT_ID", c.GoogleClientID)
	c.GoogleClientSecret = getEnv("GOOGLE_CLIENT_SECRET", c.GoogleClientSecret)
	c.OAuthRedirectBase = getEnv("OAUTH_REDIRECT_BASE", c.OAuthRedirectBase)
	if v := os.Getenv("RATE_LIMIT_PER_MINUTE"); v != "" {
		c.RateLimitPerMinute = mustParseInt(v)
	}
	c.AllowedOrigins = readListEnv("ALLOWED_ORIGINS", c.AllowedOrigins)
	c.GinMode = getEnv("GIN_MODE", c.GinMode)
	c.GinPath = getEnv("GIN_LOG_PATH", c.GinPath)
	c.SMTPHost = getEnv("SMTP_HOST", c.SMTPHost)
	if v := os.Getenv("SMTP_PORT"); v != "" {
		c.SMTPPort = mustParseInt(v)
	}
	c.SMTPUsername = getEnv("SMTP_USERNAME", c.SMTPUsername)
	c.SMTPPassword = getEnv("SMTP_PASSWORD", c.SMTPPassword)
	c.SMTPFrom = getEnv("SMTP_FROM", c.SMTPFrom)
	c.SMTPFromName = getEnv("SMTP_FROM_NAME", c.SMTPFromName)
	if v := os.Getenv("SMTP_TLS"); v != "" {
		c.SMTPTLS = v == "1" || strings.EqualFold(v, "true")
	}
	c.RedisHost = getEnv("REDIS_HOST", c.RedisHost)
	if v := os.Getenv("REDIS_PORT"); v != "" {
		c.RedisPort = mustParseInt(v)
	}
	if v := os.Getenv("REDIS_DB"); v != "" {
		c.RedisDB = mustParseInt(v)
	}
	c.RedisPassword = getEnv("REDIS_PASSWORD", c.RedisPassword)
	c.LogLevel = getEnv("LOG_LEVEL", c.LogLevel)
	c.LogPath = getEnv("LOG_PATH", c.LogPath)
	if v := os.Getenv("LOG_MAX_SIZE_MB"); v != "" {
		c.LogMaxSizeMB = mustParseInt(v)
	}
	if v := os.Getenv("LOG_MAX_BACKUPS"); v != "" {
		c.LogMaxBackups = mustParseInt(v)
	}
	if v := os.Getenv("LOG_MAX_AGE_DAYS"); v != "" {
		c.LogMaxAgeDays = mustParseInt(v)
	}
	if v := os.Getenv("LOG_COMPRESS"); v != "" {
		c.LogCompress = v == "1" || strings.EqualFold(v, "true")
	}
	if v := os.Getenv("REGISTER_MAX_PER_IP_PER_DAY"); v != "" {
		c.RegisterMaxPerIPPerDay = mustParseInt(v)
	}
	if v := os.Getenv("REGISTER_ATTEMPT_COOLDOWN_SEC"); v != "" {
		c.RegisterAttemptCooldownSec = mustParseInt(v)
	}
	if v := os.Getenv("REGISTER_FAILED_MAX_PER_IP_PER_HOUR"); v != "" {
		c.RegisterFailedMaxPerIPPerHour = mustParseInt(v)
	}
	if v := os.Getenv("REGISTER_TEMP_BAN_MINUTES"); v != "" {
		c.RegisterTempBanMinutes = mustParseInt(v)
	}
	if v := os.Getenv("AVATAR_MAX_SIZE_MB"); v != "" {
		c.AvatarMaxSizeMB = mustParseInt(v)
	}
	if v := os.Getenv("AVATAR_CLEANUP_GRACE_MINS"); v != "" {
		c.AvatarCleanupGraceMins = mustParseInt(v)
	}
}

func getEnv(key, defaultVal string) string {
	if value, exists := os.LookupEnv(key); exists && value != "" {
		return value
	}
	return defaultVal
}

func mustParseInt(val string) int {
	parsed, err := strconv.Atoi(strings.TrimSpace(val))
	if err != nil {
		log.Fatalf("invalid numeric value %q: %v", val, err)
	}
	return parsed
}

func readListEnv(key string, defaults []string) []string {
	raw := os.Getenv(key)
	if strings.TrimSpace(raw) == "" {
		return defaults
	}
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if s := strings.TrimSpace(p); s != "" {
			out = append(out, s)
		}
	}
	if len(out) == 0 {
		return defaults
	}
	return out
}
