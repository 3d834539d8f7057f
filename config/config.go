package config

import (
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
	"github.com/spf13/viper"
	"golang.org/x/crypto/bcrypt"
)

type Config struct {
	Server        Server
	Database      Database
	Auth          Auth
	RateLimit     RateLimit
	Log           Log
	DefaultLocale string
}

type Server struct {
	Port           string
	Mode           string
	AllowedOrigins []string
	ReadTimeout    time.Duration
	WriteTimeout   time.Duration
}

type Database struct {
	URL              string
	Host             string
	Port             string
	User             string
	Password         string
	Name             string
	SSLMode          string
	TimeZone         string
	MaxOpenConns     int
	MaxIdleConns     int
	ConnMaxLifetime  time.Duration
	StatementTimeout time.Duration
}

type Auth struct {
	JWTSecret  string
	TokenTTL   time.Duration
	BcryptCost int
}

// RateLimit: số request/phút và burst cho từng nhóm endpoint.
type RateLimit struct {
	AuthPerMinute  int
	AuthBurst      int
	WritePerMinute int
	WriteBurst     int
	TTL            time.Duration
}

type Log struct {
	Level  string
	Format string
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("PORT", "8080")
	v.SetDefault("GIN_MODE", "release")
	v.SetDefault("CORS_ALLOWED_ORIGINS", "http://localhost:5173")
	v.SetDefault("SERVER_READ_TIMEOUT", "15s")
	v.SetDefault("SERVER_WRITE_TIMEOUT", "30s")

	v.SetDefault("DB_HOST", "localhost")
	v.SetDefault("DB_PORT", "5432")
	v.SetDefault("DB_USER", "postgres")
	v.SetDefault("DB_PASSWORD", "")
	v.SetDefault("DB_NAME", "questionnaire_db")
	v.SetDefault("DB_SSLMODE", "disable")
	v.SetDefault("DB_TIMEZONE", "UTC")
	v.SetDefault("DB_MAX_OPEN_CONNS", 20)
	v.SetDefault("DB_MAX_IDLE_CONNS", 5)
	v.SetDefault("DB_CONN_MAX_LIFETIME", "30m")
	v.SetDefault("DB_STATEMENT_TIMEOUT", "5s")

	v.SetDefault("JWT_TTL", "24h")
	v.SetDefault("BCRYPT_COST", bcrypt.DefaultCost)

	v.SetDefault("RATE_LIMIT_AUTH_PER_MIN", 20)
	v.SetDefault("RATE_LIMIT_AUTH_BURST", 5)
	v.SetDefault("RATE_LIMIT_WRITE_PER_MIN", 60)
	v.SetDefault("RATE_LIMIT_WRITE_BURST", 10)
	v.SetDefault("RATE_LIMIT_TTL", "5m")

	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "json")
	v.SetDefault("DEFAULT_LOCALE", "en")
}

// Load đọc cấu hình từ .env (nếu có) và biến môi trường.
func Load() (*Config, error) {
	v := newViper()

	cfg := &Config{
		Server: Server{
			Port:           v.GetString("PORT"),
			Mode:           v.GetString("GIN_MODE"),
			AllowedOrigins: splitList(v.GetString("CORS_ALLOWED_ORIGINS")),
			ReadTimeout:    v.GetDuration("SERVER_READ_TIMEOUT"),
			WriteTimeout:   v.GetDuration("SERVER_WRITE_TIMEOUT"),
		},
		Database: databaseFrom(v),
		Auth: Auth{
			JWTSecret:  v.GetString("JWT_SECRET"),
			TokenTTL:   v.GetDuration("JWT_TTL"),
			BcryptCost: v.GetInt("BCRYPT_COST"),
		},
		RateLimit: RateLimit{
			AuthPerMinute:  v.GetInt("RATE_LIMIT_AUTH_PER_MIN"),
			AuthBurst:      v.GetInt("RATE_LIMIT_AUTH_BURST"),
			WritePerMinute: v.GetInt("RATE_LIMIT_WRITE_PER_MIN"),
			WriteBurst:     v.GetInt("RATE_LIMIT_WRITE_BURST"),
			TTL:            v.GetDuration("RATE_LIMIT_TTL"),
		},
		Log: Log{
			Level:  v.GetString("LOG_LEVEL"),
			Format: v.GetString("LOG_FORMAT"),
		},
		DefaultLocale: v.GetString("DEFAULT_LOCALE"),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadDatabase chỉ đọc phần database và log; cmd/migrate không cần JWT_SECRET.
func LoadDatabase() (Database, Log) {
	v := newViper()
	return databaseFrom(v), Log{
		Level:  v.GetString("LOG_LEVEL"),
		Format: v.GetString("LOG_FORMAT"),
	}
}

func newViper() *viper.Viper {
	if err := godotenv.Load(); err != nil {
		log.Debug().Err(err).Msg("no .env file loaded")
	}

	v := viper.New()
	setDefaults(v)
	v.AutomaticEnv()
	return v
}

func databaseFrom(v *viper.Viper) Database {
	return Database{
		URL:              v.GetString("DATABASE_URL"),
		Host:             v.GetString("DB_HOST"),
		Port:             v.GetString("DB_PORT"),
		User:             v.GetString("DB_USER"),
		Password:         v.GetString("DB_PASSWORD"),
		Name:             v.GetString("DB_NAME"),
		SSLMode:          v.GetString("DB_SSLMODE"),
		TimeZone:         v.GetString("DB_TIMEZONE"),
		MaxOpenConns:     v.GetInt("DB_MAX_OPEN_CONNS"),
		MaxIdleConns:     v.GetInt("DB_MAX_IDLE_CONNS"),
		ConnMaxLifetime:  v.GetDuration("DB_CONN_MAX_LIFETIME"),
		StatementTimeout: v.GetDuration("DB_STATEMENT_TIMEOUT"),
	}
}

// Validate kiểm tra các giá trị bắt buộc và chặn cấu hình yếu.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.Auth.JWTSecret) == "" {
		return errors.New("JWT_SECRET is required")
	}
	if c.Auth.TokenTTL <= 0 {
		return fmt.Errorf("JWT_TTL must be positive, got %s", c.Auth.TokenTTL)
	}
	if c.Auth.BcryptCost < bcrypt.DefaultCost || c.Auth.BcryptCost > bcrypt.MaxCost {
		return fmt.Errorf("BCRYPT_COST must be between %d and %d, got %d", bcrypt.DefaultCost, bcrypt.MaxCost, c.Auth.BcryptCost)
	}
	if c.Server.Port == "" {
		return errors.New("PORT is required")
	}
	if c.RateLimit.AuthPerMinute <= 0 || c.RateLimit.WritePerMinute <= 0 {
		return errors.New("rate limits must be positive")
	}
	return nil
}

// DSN trả về chuỗi kết nối PostgreSQL; DATABASE_URL được ưu tiên nếu có.
// statement_timeout được gắn vào cả hai dạng, trừ khi URL đã tự khai báo.
func (d Database) DSN() string {
	if d.URL != "" {
		return d.urlWithTimeout()
	}
	dsn := fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%s sslmode=%s TimeZone=%s",
		d.Host, d.User, d.Password, d.Name, d.Port, d.SSLMode, d.TimeZone)
	if d.StatementTimeout > 0 {
		dsn += fmt.Sprintf(" statement_timeout=%d", d.StatementTimeout.Milliseconds())
	}
	return dsn
}

func (d Database) urlWithTimeout() string {
	if d.StatementTimeout <= 0 {
		return d.URL
	}
	ms := strconv.FormatInt(d.StatementTimeout.Milliseconds(), 10)

	u, err := url.Parse(d.URL)
	if err != nil || (u.Scheme != "postgres" && u.Scheme != "postgresql") {
		// DATABASE_URL dạng keyword/value
		if strings.Contains(d.URL, "statement_timeout=") {
			return d.URL
		}
		return d.URL + " statement_timeout=" + ms
	}

	q := u.Query()
	if q.Get("statement_timeout") == "" {
		q.Set("statement_timeout", ms)
		u.RawQuery = q.Encode()
	}
	return u.String()
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
