package config

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

const EnvPrefix = "BOOKMINDER"

const (
	StorePostgres = "postgres"
	StoreMongo    = "mongo"
	StoreMemory   = "memory"
)

type Config struct {
	Port              string
	Store             string
	DatabaseURL       string
	AutoMigrate       bool
	MongoURI          string
	MongoDatabase     string
	MongoTransactions bool
	RedisAddr         string
	RedisPassword     string
	JWTSecret         string
	TokenTTL          time.Duration
	CORSOrigins       []string
	LogLevel          string
	LogFormat         string
	GinMode           string

	// set when JWTSecret was generated for this process only
	EphemeralSecret bool
}

// LoadEnv reads .env from the working directory if there is one.
func LoadEnv() {
	_ = godotenv.Load()
}

func RegisterFlags(fs *pflag.FlagSet) {
	fs.String("port", "3000", "HTTP listen port")
	fs.String("store", StorePostgres, "record store: postgres, mongo or memory")
	fs.String("database-url", "", "postgres DSN (defaults to one built from DB_HOST, DB_USER, ...)")
	fs.Bool("auto-migrate", true, "create tables and indexes on startup")
	fs.String("mongo-uri", "mongodb://localhost:27017", "mongo connection string")
	fs.String("mongo-database", "bookMinderDB", "mongo database name")
	fs.Bool("mongo-transactions", false, "wrap borrow/return in mongo transactions (replica set only)")
	fs.String("redis-addr", "", "redis address for logout revocation; empty disables it")
	fs.String("redis-password", "", "redis password")
	fs.String("jwt-secret", "", "HMAC secret for session tokens")
	fs.Duration("token-ttl", time.Hour, "session token lifetime")
	fs.StringSlice("cors-origins", []string{"http://localhost:5173"}, "allowed CORS origins")
	fs.String("log-level", "info", "debug, info, warn or error")
	fs.String("log-format", "json", "json or console")
	fs.String("gin-mode", "release", "gin mode: debug, release or test")
}

// Bind wires v to the flags in fs and to BOOKMINDER_* variables. A few
// unprefixed names from older deployments are honoured too.
func Bind(v *viper.Viper, fs *pflag.FlagSet) error {
	if err := v.BindPFlags(fs); err != nil {
		return err
	}
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	legacy := map[string]string{
		"port":         "PORT",
		"database-url": "DATABASE_URL",
		"redis-addr":   "REDIS_ADDR",
		"jwt-secret":   "ACCESS_TOKEN_SECRET",
	}
	for key, env := range legacy {
		if err := v.BindEnv(key, EnvPrefix+"_"+strings.ToUpper(strings.ReplaceAll(key, "-", "_")), env); err != nil {
			return err
		}
	}
	return nil
}

func Load(v *viper.Viper) (Config, error) {
	cfg := Config{
		Port:              v.GetString("port"),
		Store:             strings.ToLower(strings.TrimSpace(v.GetString("store"))),
		DatabaseURL:       v.GetString("database-url"),
		AutoMigrate:       v.GetBool("auto-migrate"),
		MongoURI:          v.GetString("mongo-uri"),
		MongoDatabase:     v.GetString("mongo-database"),
		MongoTransactions: v.GetBool("mongo-transactions"),
		RedisAddr:         strings.TrimSpace(v.GetString("redis-addr")),
		RedisPassword:     v.GetString("redis-password"),
		JWTSecret:         v.GetString("jwt-secret"),
		TokenTTL:          v.GetDuration("token-ttl"),
		LogLevel:          v.GetString("log-level"),
		LogFormat:         v.GetString("log-format"),
		GinMode:           v.GetString("gin-mode"),
	}
	// flags split on commas, env values arrive as one string
	for _, o := range v.GetStringSlice("cors-origins") {
		for _, part := range strings.Split(o, ",") {
			if s := strings.TrimSpace(part); s != "" {
				cfg.CORSOrigins = append(cfg.CORSOrigins, s)
			}
		}
	}

	switch cfg.Store {
	case StorePostgres, StoreMongo, StoreMemory:
	default:
		return Config{}, fmt.Errorf("unknown store %q", cfg.Store)
	}
	if cfg.TokenTTL <= 0 {
		return Config{}, fmt.Errorf("token-ttl must be positive")
	}
	if cfg.JWTSecret == "" {
		if cfg.Store != StoreMemory {
			return Config{}, fmt.Errorf("jwt-secret (or ACCESS_TOKEN_SECRET) is required")
		}
		secret, err := randomSecret()
		if err != nil {
			return Config{}, err
		}
		cfg.JWTSecret = secret
		cfg.EphemeralSecret = true
	}
	return cfg, nil
}

func randomSecret() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("generate secret: %w", err)
	}
	return hex.EncodeToString(buf), nil
}
