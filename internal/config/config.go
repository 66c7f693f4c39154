package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/caarlos0/env/v10"
	"github.com/joho/godotenv"
)

type Config struct {
	Server   ServerConfig
	Backend  BackendConfig
	Firebase FirebaseConfig
	DB       DBConfig
	KV       KVConfig
	Redis    RedisConfig
	RabbitMQ RabbitMQConfig
	JWT      JWTConfig
	Admin    AdminConfig
	Business BusinessConfig
	Invoice  InvoiceConfig
}

type ServerConfig struct {
	Port            int           `env:"SERVER_PORT" envDefault:"8080"`
	ReadTimeout     time.Duration `env:"SERVER_READ_TIMEOUT" envDefault:"10s"`
	WriteTimeout    time.Duration `env:"SERVER_WRITE_TIMEOUT" envDefault:"10s"`
	ShutdownTimeout time.Duration `env:"SERVER_SHUTDOWN_TIMEOUT" envDefault:"10s"`
	AllowOrigins    []string      `env:"SERVER_ALLOW_ORIGINS" envDefault:"*" envSeparator:","`
	SessionTTL      time.Duration `env:"SERVER_SESSION_TTL" envDefault:"2h"`
}

// BackendConfig selects the remote document store. An empty driver means local mode.
type BackendConfig struct {
	Driver string `env:"BACKEND_DRIVER" envDefault:"firestore"`
}

type FirebaseConfig struct {
	APIKey          string `env:"FIREBASE_API_KEY"`
	AuthDomain      string `env:"FIREBASE_AUTH_DOMAIN"`
	ProjectID       string `env:"FIREBASE_PROJECT_ID"`
	CredentialsJSON string `env:"FIREBASE_CREDENTIALS_JSON"`
}

type DBConfig struct {
	Host     string `env:"DB_HOST"`
	Port     int    `env:"DB_PORT" envDefault:"5432"`
	User     string `env:"DB_USER" envDefault:"postgres"`
	Password string `env:"DB_PASSWORD" envDefault:"postgres"`
	Name     string `env:"DB_NAME" envDefault:"storefront"`
	SSLMode  string `env:"DB_SSLMODE" envDefault:"disable"`
	MaxConns int32  `env:"DB_MAX_CONNS" envDefault:"10"`
}

func (c DBConfig) DSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		c.User, c.Password, c.Host, c.Port, c.Name, c.SSLMode,
	)
}

// KVConfig selects the local key-value persistence area.
type KVConfig struct {
	Driver string `env:"KV_DRIVER" envDefault:"redis"`
}

type RedisConfig struct {
	Addr     string `env:"REDIS_ADDR" envDefault:"localhost:6379"`
	Password string `env:"REDIS_PASSWORD" envDefault:""`
	DB       int    `env:"REDIS_DB" envDefault:"0"`
}

// RabbitMQConfig is optional; the invoice archive worker only runs when URL is set.
type RabbitMQConfig struct {
	URL string `env:"RABBITMQ_URL"`
}

type JWTConfig struct {
	Secret     string        `env:"JWT_SECRET" envDefault:"super-secret-key"`
	Expiration time.Duration `env:"JWT_EXPIRATION" envDefault:"24h"`
}

// AdminConfig holds the fallback credential pair used in local mode and the
// bootstrap account created for the postgres backend.
type AdminConfig struct {
	Email    string `env:"ADMIN_EMAIL" envDefault:"admin@mvsaqua.com"`
	Password string `env:"ADMIN_PASSWORD" envDefault:"admin123"`
}

type BusinessConfig struct {
	Name          string `env:"BUSINESS_NAME" envDefault:"MVS Aqua"`
	Tagline       string `env:"BUSINESS_TAGLINE" envDefault:"Premium Aquarium Store"`
	Address       string `env:"BUSINESS_ADDRESS" envDefault:"15 Line, Upadhyaya Nagar, Tirupati, AP 517507"`
	Phone         string `env:"BUSINESS_PHONE" envDefault:"+91 94902 55775"`
	WhatsAppPhone string `env:"BUSINESS_WHATSAPP" envDefault:"919490255775"`
}

type InvoiceConfig struct {
	ArchiveDir string `env:"INVOICE_ARCHIVE_DIR" envDefault:"./invoices"`
}

func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	return cfg, nil
}

// BackendMode is decided once at startup: one of RemoteFirestore, RemotePostgres or Local.
type BackendMode interface {
	backendMode()
}

type RemoteFirestore struct{ Firebase FirebaseConfig }

type RemotePostgres struct{ DB DBConfig }

type Local struct{}

func (RemoteFirestore) backendMode() {}
func (RemotePostgres) backendMode()  {}
func (Local) backendMode()           {}

// Mode reports which backend is configured. It only checks configuration
// presence, never connectivity.
func (c *Config) Mode() BackendMode {
	switch strings.ToLower(c.Backend.Driver) {
	case "firestore":
		if firebaseConfigured(c.Firebase) {
			return RemoteFirestore{Firebase: c.Firebase}
		}
	case "postgres":
		if c.DB.Host != "" {
			return RemotePostgres{DB: c.DB}
		}
	}
	return Local{}
}

func firebaseConfigured(f FirebaseConfig) bool {
	if len(f.APIKey) <= 10 {
		return false
	}
	return f.ProjectID != "" && f.ProjectID != "your_project_id"
}
