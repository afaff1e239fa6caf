package config

import (
	"errors"
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds every setting of the API, grouped by concern.
type Config struct {
	Env        string
	Server     ServerConfig
	Database   DatabaseConfig
	Session    SessionConfig
	OAuth      OAuthConfig
	University UniversityConfig
	CORS       CORSConfig
	Logging    LoggingConfig
	Storage    StorageConfig
	Messaging  MessagingConfig
	Transfer   TransferConfig
}

type ServerConfig struct {
	Port        string
	Host        string
	BaseURL     string // prefix of RFC 7807 problem type URIs
	FrontendURL string // OAuth callbacks and logout redirect here
}

type DatabaseConfig struct {
	Host        string
	Port        int
	User        string
	Password    string
	DBName      string
	SSLMode     string
	MaxConns    int
	MinConns    int
	MaxIdleTime int
}

// SessionConfig configures the login session cookie.
type SessionConfig struct {
	Secret   string
	Store    string // "postgres" or "cookie"
	Name     string
	MaxAge   time.Duration
	SameSite http.SameSite
	Secure   bool
}

type OAuthConfig struct {
	GoogleClientID     string
	GoogleClientSecret string
	RedirectURL        string
}

type UniversityConfig struct {
	EmailDomain string
}

type CORSConfig struct {
	AllowedOrigins []string
}

type LoggingConfig struct {
	Level string
}

// StorageConfig points at the S3-compatible bucket for portfolio images.
// Uploads are disabled when Endpoint is empty.
type StorageConfig struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
	UseSSL    bool
	PublicURL string
}

// MessagingConfig enables the RabbitMQ event publisher when URL is set.
type MessagingConfig struct {
	URL      string
	Exchange string
}

// TransferConfig holds the connection URLs of the dbtransfer tool.
type TransferConfig struct {
	SourceURL string
	TargetURL string
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("ENV", "development")
	v.SetDefault("PORT", "8080")
	v.SetDefault("HOST", "0.0.0.0")
	v.SetDefault("API_BASE_URL", "http://localhost:8080")
	v.SetDefault("FRONTEND_URL", "http://localhost:3000")

	v.SetDefault("DB_HOST", "localhost")
	v.SetDefault("DB_PORT", 5432)
	v.SetDefault("DB_USER", "writify")
	v.SetDefault("DB_NAME", "writify")
	v.SetDefault("DB_SSL_MODE", "disable")
	v.SetDefault("DB_MAX_CONNS", 20)
	v.SetDefault("DB_MIN_CONNS", 2)
	v.SetDefault("DB_MAX_IDLE_TIME", 300)

	v.SetDefault("SESSION_STORE", "postgres")
	v.SetDefault("SESSION_NAME", "writify_session")
	v.SetDefault("SESSION_MAX_AGE", "24h")
	v.SetDefault("SESSION_SAME_SITE", "lax")

	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("CORS_ALLOWED_ORIGINS", "http://localhost:3000")

	v.SetDefault("MINIO_BUCKET", "writify-portfolios")
	v.SetDefault("AMQP_EXCHANGE", "writify.events")
}

// Load reads the environment, after loading .env when one exists.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("error reading .env: %w", err)
	}
	return FromViper(viper.New())
}

// FromViper builds the configuration from v with AutomaticEnv enabled.
func FromViper(v *viper.Viper) (*Config, error) {
	setDefaults(v)
	v.AutomaticEnv()

	sameSite, err := parseSameSite(v.GetString("SESSION_SAME_SITE"))
	if err != nil {
		return nil, err
	}

	env := strings.ToLower(v.GetString("ENV"))
	secure := env == "production"
	if v.IsSet("SESSION_SECURE") {
		secure = v.GetBool("SESSION_SECURE")
	}

	cfg := &Config{
		Env: env,
		Server: ServerConfig{
			Port:        v.GetString("PORT"),
			Host:        v.GetString("HOST"),
			BaseURL:     strings.TrimRight(v.GetString("API_BASE_URL"), "/"),
			FrontendURL: strings.TrimRight(v.GetString("FRONTEND_URL"), "/"),
		},
		Database: DatabaseConfig{
			Host:        v.GetString("DB_HOST"),
			Port:        v.GetInt("DB_PORT"),
			User:        v.GetString("DB_USER"),
			Password:    v.GetString("DB_PASS"),
			DBName:      v.GetString("DB_NAME"),
			SSLMode:     v.GetString("DB_SSL_MODE"),
			MaxConns:    v.GetInt("DB_MAX_CONNS"),
			MinConns:    v.GetInt("DB_MIN_CONNS"),
			MaxIdleTime: v.GetInt("DB_MAX_IDLE_TIME"),
		},
		Session: SessionConfig{
			Secret:   v.GetString("SESSION_SECRET"),
			Store:    strings.ToLower(v.GetString("SESSION_STORE")),
			Name:     v.GetString("SESSION_NAME"),
			MaxAge:   v.GetDuration("SESSION_MAX_AGE"),
			SameSite: sameSite,
			Secure:   secure,
		},
		OAuth: OAuthConfig{
			GoogleClientID:     v.GetString("GOOGLE_CLIENT_ID"),
			GoogleClientSecret: v.GetString("GOOGLE_CLIENT_SECRET"),
			RedirectURL:        v.GetString("GOOGLE_CALLBACK_URL"),
		},
		University: UniversityConfig{
			EmailDomain: strings.ToLower(strings.TrimPrefix(v.GetString("UNIVERSITY_DOMAIN"), "@")),
		},
		CORS: CORSConfig{
			AllowedOrigins: splitList(v.GetString("CORS_ALLOWED_ORIGINS")),
		},
		Logging: LoggingConfig{
			Level: v.GetString("LOG_LEVEL"),
		},
		Storage: StorageConfig{
			Endpoint:  v.GetString("MINIO_ENDPOINT"),
			AccessKey: v.GetString("MINIO_ACCESS_KEY"),
			SecretKey: v.GetString("MINIO_SECRET_KEY"),
			Bucket:    v.GetString("MINIO_BUCKET"),
			UseSSL:    v.GetBool("MINIO_USE_SSL"),
			PublicURL: strings.TrimRight(v.GetString("MINIO_PUBLIC_URL"), "/"),
		},
		Messaging: MessagingConfig{
			URL:      v.GetString("AMQP_URL"),
			Exchange: v.GetString("AMQP_EXCHANGE"),
		},
		Transfer: TransferConfig{
			SourceURL: v.GetString("SOURCE_DATABASE_URL"),
			TargetURL: v.GetString("TARGET_DATABASE_URL"),
		},
	}

	if cfg.Session.MaxAge <= 0 {
		cfg.Session.MaxAge = 24 * time.Hour
	}

	return cfg, nil
}

// IsProduction reports whether ENV is production.
func (c *Config) IsProduction() bool {
	return c.Env == "production"
}

// Validate rejects configurations the API cannot run with.
func (c *Config) Validate() error {
	var errs []error
	require := func(name, value string) {
		if strings.TrimSpace(value) == "" {
			errs = append(errs, fmt.Errorf("%s is required", name))
		}
	}

	require("UNIVERSITY_DOMAIN", c.University.EmailDomain)
	require("FRONTEND_URL", c.Server.FrontendURL)

	switch c.Session.Store {
	case "postgres", "cookie":
	default:
		errs = append(errs, fmt.Errorf("SESSION_STORE must be postgres or cookie, got %q", c.Session.Store))
	}

	if c.IsProduction() {
		require("SESSION_SECRET", c.Session.Secret)
		require("GOOGLE_CLIENT_ID", c.OAuth.GoogleClientID)
		require("GOOGLE_CLIENT_SECRET", c.OAuth.GoogleClientSecret)
		require("GOOGLE_CALLBACK_URL", c.OAuth.RedirectURL)
		if len(c.Session.Secret) > 0 && len(c.Session.Secret) < 32 {
			errs = append(errs, errors.New("SESSION_SECRET must be at least 32 characters"))
		}
	}

	if c.Storage.Endpoint != "" {
		require("MINIO_ACCESS_KEY", c.Storage.AccessKey)
		require("MINIO_SECRET_KEY", c.Storage.SecretKey)
	}

	return errors.Join(errs...)
}

// DSN returns the PostgreSQL connection string.
func (d *DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		d.Host, d.Port, d.User, d.Password, d.DBName, d.SSLMode,
	)
}

func parseSameSite(raw string) (http.SameSite, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "", "lax":
		return http.SameSiteLaxMode, nil
	case "strict":
		return http.SameSiteStrictMode, nil
	case "none":
		return http.SameSiteNoneMode, nil
	default:
		return 0, fmt.Errorf("SESSION_SAME_SITE must be lax, strict or none, got %q", raw)
	}
}

func splitList(raw string) []string {
	var out []string
	for _, item := range strings.Split(raw, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}
