package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	env "github.com/joho/godotenv"
)

type Config struct {
	HTTP_ADDR string // Адрес HTTP API
	GRPC_ADDR string // Адрес gRPC транспорта для агентов
	DB_PATH   string // Путь к файлу sqlite

	JWT_SECRET string        // Секретный ключ для JWT
	TOKEN_TTL  time.Duration // Время жизни JWT

	SESSION_TTL   time.Duration // Время жизни сессии (продлевается на каждом запросе)
	COOKIE_SECURE bool          // Выставлять Secure у cookie
	CSRF_ENFORCE  bool          // Проверять X-CSRFToken у авторизованных мутирующих запросов

	CORS_ALLOWED_ORIGINS []string

	GUEST_CALCULATION_LIMIT int // Максимум вычислений гостя
	GUEST_NOTE_LIMIT        int // Максимум вычислений гостя с заметкой
	GUEST_HISTORY_LIMIT     int // Сколько последних записей видит гость
	NOTE_MAX_LENGTH         int

	MIN_PASSWORD_LENGTH int
	HASH_COST           int // bcrypt cost

	RATE_LIMIT_RPS   float64
	RATE_LIMIT_BURST int

	LOG_LEVEL  string
	LOG_FORMAT string // text или json
}

func Default() *Config {
	return &Config{
		HTTP_ADDR:               ":8080",
		GRPC_ADDR:               ":8081",
		DB_PATH:                 "./calculator.db",
		TOKEN_TTL:               10 * time.Minute,
		SESSION_TTL:             14 * 24 * time.Hour,
		CSRF_ENFORCE:            true,
		CORS_ALLOWED_ORIGINS:    []string{"http://localhost:5173", "http://localhost:3000"},
		GUEST_CALCULATION_LIMIT: 10,
		GUEST_NOTE_LIMIT:        2,
		GUEST_HISTORY_LIMIT:     10,
		NOTE_MAX_LENGTH:         500,
		MIN_PASSWORD_LENGTH:     8,
		HASH_COST:               10,
		RATE_LIMIT_RPS:          5,
		RATE_LIMIT_BURST:        20,
		LOG_LEVEL:               "info",
		LOG_FORMAT:              "text",
	}
}

// LoadConfig читает .env (если есть) и переменные окружения поверх значений по умолчанию.
func LoadConfig(envFile string) (*Config, error) {
	if envFile != "" {
		if err := env.Load(envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("load %s: %w", envFile, err)
		}
	}

	c := Default()
	p := parser{}

	p.str("HTTP_ADDR", &c.HTTP_ADDR)
	p.str("GRPC_ADDR", &c.GRPC_ADDR)
	p.str("DB_PATH", &c.DB_PATH)
	p.str("JWT_SECRET", &c.JWT_SECRET)
	p.duration("TOKEN_TTL", &c.TOKEN_TTL)
	p.duration("SESSION_TTL", &c.SESSION_TTL)
	p.boolean("COOKIE_SECURE", &c.COOKIE_SECURE)
	p.boolean("CSRF_ENFORCE", &c.CSRF_ENFORCE)
	p.list("CORS_ALLOWED_ORIGINS", &c.CORS_ALLOWED_ORIGINS)
	p.integer("GUEST_CALCULATION_LIMIT", &c.GUEST_CALCULATION_LIMIT)
	p.integer("GUEST_NOTE_LIMIT", &c.GUEST_NOTE_LIMIT)
	p.integer("GUEST_HISTORY_LIMIT", &c.GUEST_HISTORY_LIMIT)
	p.integer("NOTE_MAX_LENGTH", &c.NOTE_MAX_LENGTH)
	p.integer("MIN_PASSWORD_LENGTH", &c.MIN_PASSWORD_LENGTH)
	p.integer("HASH_COST", &c.HASH_COST)
	p.float("RATE_LIMIT_RPS", &c.RATE_LIMIT_RPS)
	p.integer("RATE_LIMIT_BURST", &c.RATE_LIMIT_BURST)
	p.str("LOG_LEVEL", &c.LOG_LEVEL)
	p.str("LOG_FORMAT", &c.LOG_FORMAT)

	if p.err != nil {
		return nil, p.err
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}

func (c *Config) Validate() error {
	if c.JWT_SECRET == "" {
		return errors.New("JWT_SECRET is not set")
	}
	if c.SESSION_TTL <= 0 || c.TOKEN_TTL <= 0 {
		return errors.New("SESSION_TTL and TOKEN_TTL must be positive")
	}
	if c.GUEST_CALCULATION_LIMIT < 0 || c.GUEST_NOTE_LIMIT < 0 || c.GUEST_HISTORY_LIMIT < 0 {
		return errors.New("guest limits must not be negative")
	}
	if c.NOTE_MAX_LENGTH <= 0 {
		return errors.New("NOTE_MAX_LENGTH must be positive")
	}
	if c.LOG_FORMAT != "text" && c.LOG_FORMAT != "json" {
		return fmt.Errorf("invalid LOG_FORMAT %q", c.LOG_FORMAT)
	}
	return nil
}

// parser запоминает первую ошибку, чтобы не проверять каждую переменную отдельно
type parser struct {
	err error
}

func (p *parser) lookup(key string) (string, bool) {
	if p.err != nil {
		return "", false
	}
	v, ok := os.LookupEnv(key)
	if !ok || strings.TrimSpace(v) == "" {
		return "", false
	}
	return strings.TrimSpace(v), true
}

func (p *parser) str(key string, dst *string) {
	if v, ok := p.lookup(key); ok {
		*dst = v
	}
}

func (p *parser) integer(key string, dst *int) {
	if v, ok := p.lookup(key); ok {
		n, err := strconv.Atoi(v)
		if err != nil {
			p.err = fmt.Errorf("invalid %s: %w", key, err)
			return
		}
		*dst = n
	}
}

func (p *parser) float(key string, dst *float64) {
	if v, ok := p.lookup(key); ok {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			p.err = fmt.Errorf("invalid %s: %w", key, err)
			return
		}
		*dst = f
	}
}

func (p *parser) boolean(key string, dst *bool) {
	if v, ok := p.lookup(key); ok {
		b, err := strconv.ParseBool(v)
		if err != nil {
			p.err = fmt.Errorf("invalid %s: %w", key, err)
			return
		}
		*dst = b
	}
}

func (p *parser) duration(key string, dst *time.Duration) {
	if v, ok := p.lookup(key); ok {
		d, err := time.ParseDuration(v)
		if err != nil {
			p.err = fmt.Errorf("invalid %s: %w", key, err)
			return
		}
		*dst = d
	}
}

func (p *parser) list(key string, dst *[]string) {
	if v, ok := p.lookup(key); ok {
		var out []string
		for _, item := range strings.Split(v, ",") {
			if item = strings.TrimSpace(item); item != "" {
				out = append(out, item)
			}
		}
		*dst = out
	}
}
