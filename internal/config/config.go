package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"

	"doccompare/internal/domain"
)

// Config holds all application configuration.
type Config struct {
	Server  ServerConfig
	DB      DBConfig
	JWT     JWTConfig
	Auth    AuthConfig
	S3      S3Config
	Log     LogConfig
	CORS    CORSConfig
	Upload  UploadConfig
	Compare CompareConfig
}

// CORSConfig holds CORS settings.
type CORSConfig struct {
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port         string        `mapstructure:"port"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
	Environment  string        `mapstructure:"environment"`
}

// DBConfig holds PostgreSQL connection settings.
type DBConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	Name     string `mapstructure:"name"`
	SSLMode  string `mapstructure:"sslmode"`
	MaxOpen  int    `mapstructure:"max_open"`
	MaxIdle  int    `mapstructure:"max_idle"`
}

// DSN returns the PostgreSQL connection string.
func (d *DBConfig) DSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		d.User, d.Password, d.Host, d.Port, d.Name, d.SSLMode,
	)
}

// JWTConfig holds JWT signing and expiry settings.
type JWTConfig struct {
	Secret            string        `mapstructure:"secret"`
	AccessTokenExpiry time.Duration `mapstructure:"access_expiry"`
	Issuer            string        `mapstructure:"issuer"`
}

// AuthConfig holds the API clients allowed to request tokens.
type AuthConfig struct {
	// Clients maps a client ID to the bcrypt hash of its secret.
	Clients map[string]string `mapstructure:"clients"`
}

// S3Config holds settings for the report archive bucket. An empty bucket
// disables archiving.
type S3Config struct {
	Region        string `mapstructure:"region"`
	Bucket        string `mapstructure:"bucket"`
	Endpoint      string `mapstructure:"endpoint"`
	AccessKey     string `mapstructure:"access_key"`
	SecretKey     string `mapstructure:"secret_key"`
	PresignExpiry int64  `mapstructure:"presign_expiry"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// UploadConfig bounds the files accepted by the API.
type UploadConfig struct {
	MaxFileSizeMB int64 `mapstructure:"max_file_size_mb"`
}

// MaxBytes returns the per-file limit in bytes.
func (u UploadConfig) MaxBytes() int64 {
	return u.MaxFileSizeMB << 20
}

// CompareConfig holds the comparison defaults applied when a request leaves
// an option unset.
type CompareConfig struct {
	Threshold     int           `mapstructure:"threshold"`
	CaseSensitive bool          `mapstructure:"case_sensitive"`
	Fuzzy         bool          `mapstructure:"fuzzy"`
	StrictKeys    bool          `mapstructure:"strict_keys"`
	Exclusive     bool          `mapstructure:"exclusive"`
	Workers       int           `mapstructure:"workers"`
	Timeout       time.Duration `mapstructure:"timeout"`
}

// Defaults returns the configured defaults as comparison options.
func (c CompareConfig) Defaults() domain.CompareOptions {
	return domain.CompareOptions{
		Threshold:     c.Threshold,
		CaseSensitive: c.CaseSensitive,
		FuzzyMode:     c.Fuzzy,
		StrictKeys:    c.StrictKeys,
	}
}

// Load reads configuration from environment variables with the DOCCOMPARE_ prefix.
func Load() (*Config, error) {
	v := viper.New()
	v.SetEnvPrefix("DOCCOMPARE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Server defaults
	v.SetDefault("server.port", ":8080")
	v.SetDefault("server.read_timeout", "30s")
	v.SetDefault("server.write_timeout", "90s")
	v.SetDefault("server.environment", "development")

	// DB defaults
	v.SetDefault("db.host", "localhost")
	v.SetDefault("db.port", 5432)
	v.SetDefault("db.user", "doccompare")
	v.SetDefault("db.password", "doccompare_secret")
	v.SetDefault("db.name", "doccompare_db")
	v.SetDefault("db.sslmode", "disable")
	v.SetDefault("db.max_open", 25)
	v.SetDefault("db.max_idle", 10)

	// JWT defaults
	v.SetDefault("jwt.secret", "change-me-in-production")
	v.SetDefault("jwt.access_expiry", "1h")
	v.SetDefault("jwt.issuer", "doccompare")

	// Auth defaults
	v.SetDefault("auth.clients", "")

	// S3 defaults
	v.SetDefault("s3.region", "us-east-1")
	v.SetDefault("s3.bucket", "")
	v.SetDefault("s3.endpoint", "")
	v.SetDefault("s3.presign_expiry", 3600)

	// Log defaults
	v.SetDefault("log.level", "debug")
	v.SetDefault("log.format", "console")

	// CORS defaults (localhost origins for development)
	v.SetDefault("cors.allowed_origins", "http://localhost:3000,http://127.0.0.1:3000")

	// Upload defaults
	v.SetDefault("upload.max_file_size_mb", 20)

	// Compare defaults
	v.SetDefault("compare.threshold", domain.DefaultThreshold)
	v.SetDefault("compare.case_sensitive", true)
	v.SetDefault("compare.fuzzy", false)
	v.SetDefault("compare.strict_keys", false)
	v.SetDefault("compare.exclusive", false)
	v.SetDefault("compare.workers", 0)
	v.SetDefault("compare.timeout", "60s")

	// Bind environment variables explicitly for nested keys
	envBindings := map[string]string{
		"server.port":             "DOCCOMPARE_SERVER_PORT",
		"server.read_timeout":     "DOCCOMPARE_SERVER_READ_TIMEOUT",
		"server.write_timeout":    "DOCCOMPARE_SERVER_WRITE_TIMEOUT",
		"server.environment":      "DOCCOMPARE_SERVER_ENVIRONMENT",
		"db.host":                 "DOCCOMPARE_DB_HOST",
		"db.port":                 "DOCCOMPARE_DB_PORT",
		"db.user":                 "DOCCOMPARE_DB_USER",
		"db.password":             "DOCCOMPARE_DB_PASSWORD",
		"db.name":                 "DOCCOMPARE_DB_NAME",
		"db.sslmode":              "DOCCOMPARE_DB_SSLMODE",
		"db.max_open":             "DOCCOMPARE_DB_MAX_OPEN",
		"db.max_idle":             "DOCCOMPARE_DB_MAX_IDLE",
		"jwt.secret":              "DOCCOMPARE_JWT_SECRET",
		"jwt.access_expiry":       "DOCCOMPARE_JWT_ACCESS_EXPIRY",
		"jwt.issuer":              "DOCCOMPARE_JWT_ISSUER",
		"auth.clients":            "DOCCOMPARE_AUTH_CLIENTS",
		"s3.region":               "DOCCOMPARE_S3_REGION",
		"s3.bucket":               "DOCCOMPARE_S3_BUCKET",
		"s3.endpoint":             "DOCCOMPARE_S3_ENDPOINT",
		"s3.access_key":           "DOCCOMPARE_S3_ACCESS_KEY",
		"s3.secret_key":           "DOCCOMPARE_S3_SECRET_KEY",
		"s3.presign_expiry":       "DOCCOMPARE_S3_PRESIGN_EXPIRY",
		"log.level":               "DOCCOMPARE_LOG_LEVEL",
		"log.format":              "DOCCOMPARE_LOG_FORMAT",
		"cors.allowed_origins":    "DOCCOMPARE_CORS_ALLOWED_ORIGINS",
		"upload.max_file_size_mb": "DOCCOMPARE_UPLOAD_MAX_FILE_SIZE_MB",
		"compare.threshold":       "DOCCOMPARE_COMPARE_THRESHOLD",
		"compare.case_sensitive":  "DOCCOMPARE_COMPARE_CASE_SENSITIVE",
		"compare.fuzzy":           "DOCCOMPARE_COMPARE_FUZZY",
		"compare.strict_keys":     "DOCCOMPARE_COMPARE_STRICT_KEYS",
		"compare.exclusive":       "DOCCOMPARE_COMPARE_EXCLUSIVE",
		"compare.workers":         "DOCCOMPARE_COMPARE_WORKERS",
		"compare.timeout":         "DOCCOMPARE_COMPARE_TIMEOUT",
	}
	for key, env := range envBindings {
		_ = v.BindEnv(key, env)
	}

	cfg := &Config{}

	// Railway/Heroku/Render set a PORT env var. Use it if DOCCOMPARE_SERVER_PORT is not explicitly set.
	serverPort := v.GetString("server.port")
	if port := os.Getenv("PORT"); port != "" && os.Getenv("DOCCOMPARE_SERVER_PORT") == "" {
		serverPort = ":" + port
	}

	cfg.Server = ServerConfig{
		Port:         serverPort,
		ReadTimeout:  v.GetDuration("server.read_timeout"),
		WriteTimeout: v.GetDuration("server.write_timeout"),
		Environment:  v.GetString("server.environment"),
	}
	cfg.DB = DBConfig{
		Host:     v.GetString("db.host"),
		Port:     v.GetInt("db.port"),
		User:     v.GetString("db.user"),
		Password: v.GetString("db.password"),
		Name:     v.GetString("db.name"),
		SSLMode:  v.GetString("db.sslmode"),
		MaxOpen:  v.GetInt("db.max_open"),
		MaxIdle:  v.GetInt("db.max_idle"),
	}
	cfg.JWT = JWTConfig{
		Secret:            v.GetString("jwt.secret"),
		AccessTokenExpiry: v.GetDuration("jwt.access_expiry"),
		Issuer:            v.GetString("jwt.issuer"),
	}

	clients, err := ParseClients(v.GetString("auth.clients"))
	if err != nil {
		return nil, err
	}
	cfg.Auth = AuthConfig{Clients: clients}

	cfg.S3 = S3Config{
		Region:        v.GetString("s3.region"),
		Bucket:        v.GetString("s3.bucket"),
		Endpoint:      v.GetString("s3.endpoint"),
		AccessKey:     v.GetString("s3.access_key"),
		SecretKey:     v.GetString("s3.secret_key"),
		PresignExpiry: v.GetInt64("s3.presign_expiry"),
	}
	cfg.Log = LogConfig{
		Level:  v.GetString("log.level"),
		Format: v.GetString("log.format"),
	}
	cfg.CORS = CORSConfig{
		AllowedOrigins: splitList(v.GetString("cors.allowed_origins")),
	}
	cfg.Upload = UploadConfig{
		MaxFileSizeMB: v.GetInt64("upload.max_file_size_mb"),
	}
	cfg.Compare = CompareConfig{
		Threshold:     v.GetInt("compare.threshold"),
		CaseSensitive: v.GetBool("compare.case_sensitive"),
		Fuzzy:         v.GetBool("compare.fuzzy"),
		StrictKeys:    v.GetBool("compare.strict_keys"),
		Exclusive:     v.GetBool("compare.exclusive"),
		Workers:       v.GetInt("compare.workers"),
		Timeout:       v.GetDuration("compare.timeout"),
	}
	if cfg.Compare.Threshold < 0 || cfg.Compare.Threshold > 100 {
		return nil, fmt.Errorf("config: compare.threshold %d: %w", cfg.Compare.Threshold, domain.ErrInvalidThreshold)
	}

	return cfg, nil
}

// ParseClients parses "id:bcrypt-hash" pairs separated by commas.
func ParseClients(raw string) (map[string]string, error) {
	clients := map[string]string{}
	for _, entry := range splitList(raw) {
		id, hash, ok := strings.Cut(entry, ":")
		id, hash = strings.TrimSpace(id), strings.TrimSpace(hash)
		if !ok || id == "" || hash == "" {
			return nil, fmt.Errorf("config: malformed auth client entry %q", entry)
		}
		clients[id] = hash
	}
	return clients, nil
}

func splitList(raw string) []string {
	var out []string
	for _, s := range strings.Split(raw, ",") {
		s = strings.TrimSpace(s)
		if s != "" {
			out = append(out, s)
		}
	}
	return out
}
