package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

type Env struct {
	AppAddr string `yaml:"app_addr"`
	AppEnv  string `yaml:"app_env"`
	GinMode string `yaml:"gin_mode"`
	LogJSON bool   `yaml:"log_json"`

	DBDSN         string `yaml:"db_dsn"`
	DBHost        string `yaml:"db_host"`
	DBPort        string `yaml:"db_port"`
	DBUser        string `yaml:"db_user"`
	DBPassword    string `yaml:"db_password"`
	DBName        string `yaml:"db_name"`
	DBAutoMigrate bool   `yaml:"db_auto_migrate"`

	JWTSecret         string        `yaml:"jwt_secret"`
	TokenTTL          time.Duration `yaml:"token_ttl"`
	CookieSecure      bool          `yaml:"cookie_secure"`
	AuthRejectBlocked bool          `yaml:"auth_reject_blocked"`
	FrontendURL       string        `yaml:"frontend_url"`

	StorageDriver string        `yaml:"storage_driver"`
	UploadDir     string        `yaml:"upload_dir"`
	S3Bucket      string        `yaml:"s3_bucket"`
	S3Region      string        `yaml:"s3_region"`
	S3AccessKey   string        `yaml:"s3_access_key"`
	S3SecretKey   string        `yaml:"s3_secret_key"`
	S3Endpoint    string        `yaml:"s3_endpoint"`
	S3PresignTTL  time.Duration `yaml:"s3_presign_ttl"`

	MaxPageSize    int    `yaml:"max_page_size"`
	RedisAddr      string `yaml:"redis_addr"`
	LoginRateLimit int    `yaml:"login_rate_limit"`
	InvoiceCompany string `yaml:"invoice_company"`
}

func defaults() Env {
	return Env{
		AppAddr:        ":8080",
		DBHost:         "127.0.0.1",
		DBPort:         "3306",
		DBUser:         "root",
		DBName:         "orderdesk",
		TokenTTL:       7 * 24 * time.Hour,
		FrontendURL:    "http://localhost:3000",
		StorageDriver:  "local",
		UploadDir:      "uploads",
		S3PresignTTL:   time.Hour,
		MaxPageSize:    100,
		LoginRateLimit: 20,
	}
}

// LoadEnv builds the configuration from defaults, then the YAML file named by
// CONFIG_FILE (if any), then environment variables.
func LoadEnv() (Env, error) {
	env := defaults()

	if path := strings.TrimSpace(os.Getenv("CONFIG_FILE")); path != "" {
		raw, err := os.ReadFile(path)
		if err != nil {
			return Env{}, fmt.Errorf("read config file: %w", err)
		}
		if err := yaml.Unmarshal(raw, &env); err != nil {
			return Env{}, fmt.Errorf("parse config file: %w", err)
		}
	}

	str(&env.AppAddr, "APP_ADDR")
	str(&env.AppEnv, "APP_ENV")
	str(&env.GinMode, "GIN_MODE")
	str(&env.DBDSN, "DB_DSN")
	str(&env.DBHost, "DB_HOST")
	str(&env.DBPort, "DB_PORT")
	str(&env.DBUser, "DB_USER")
	str(&env.DBPassword, "DB_PASSWORD")
	str(&env.DBName, "DB_NAME")
	str(&env.JWTSecret, "JWT_SECRET")
	str(&env.FrontendURL, "FRONTEND_URL")
	str(&env.StorageDriver, "STORAGE_DRIVER")
	str(&env.UploadDir, "UPLOAD_DIR")
	str(&env.S3Bucket, "S3_BUCKET")
	str(&env.S3Region, "S3_REGION")
	str(&env.S3AccessKey, "S3_ACCESS_KEY")
	str(&env.S3SecretKey, "S3_SECRET_KEY")
	str(&env.S3Endpoint, "S3_ENDPOINT")
	str(&env.RedisAddr, "REDIS_ADDR")
	str(&env.InvoiceCompany, "INVOICE_COMPANY")

	if env.AppEnv == "production" {
		env.CookieSecure = true
		env.LogJSON = true
	}

	var errs []error
	errs = append(errs,
		boolean(&env.LogJSON, "LOG_JSON"),
		boolean(&env.DBAutoMigrate, "DB_AUTO_MIGRATE"),
		boolean(&env.CookieSecure, "COOKIE_SECURE"),
		boolean(&env.AuthRejectBlocked, "AUTH_REJECT_BLOCKED"),
		duration(&env.TokenTTL, "TOKEN_TTL"),
		duration(&env.S3PresignTTL, "S3_PRESIGN_TTL"),
		integer(&env.MaxPageSize, "MAX_PAGE_SIZE"),
		integer(&env.LoginRateLimit, "LOGIN_RATE_LIMIT"),
	)
	if err := errors.Join(errs...); err != nil {
		return Env{}, err
	}

	if env.JWTSecret == "" {
		return Env{}, errors.New("JWT_SECRET is required")
	}
	switch env.StorageDriver {
	case "local":
	case "s3":
		if env.S3Bucket == "" {
			return Env{}, errors.New("S3_BUCKET is required for the s3 storage driver")
		}
	default:
		return Env{}, fmt.Errorf("unknown STORAGE_DRIVER %q", env.StorageDriver)
	}
	return env, nil
}

// DSN returns the MySQL data source name, built from parts unless DB_DSN is set.
func (e Env) DSN() string {
	if e.DBDSN != "" {
		return e.DBDSN
	}
	return fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?parseTime=true&loc=UTC&charset=utf8mb4&timeout=5s&readTimeout=30s&writeTimeout=30s",
		e.DBUser, e.DBPassword, e.DBHost, e.DBPort, e.DBName)
}

func str(dst *string, key string) {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		*dst = v
	}
}

func boolean(dst *bool, key string) error {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return fmt.Errorf("%s: %w", key, err)
	}
	*dst = b
	return nil
}

func duration(dst *time.Duration, key string) error {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return fmt.Errorf("%s: %w", key, err)
	}
	*dst = d
	return nil
}

func integer(dst *int, key string) error {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fmt.Errorf("%s: %w", key, err)
	}
	*dst = n
	return nil
}
