package app

import (
	"bookminder/config"
	"bookminder/db"
	"bookminder/memstore"
	"bookminder/mongostore"
	"bookminder/services"
	"bookminder/session"
	"context"
	"fmt"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// 简化别名，便于 handlers 调用
type Ctx = gin.Context
type H = gin.H

// App 聚合各依赖
type App struct {
	Router *gin.Engine
	Config config.Config
	Logger *zap.Logger

	// record store, one of postgres / mongo / memory
	Catalog services.CatalogStore
	Lending services.LendingStore
	DB      *gorm.DB
	Mongo   *mongostore.Store

	RDB         *redis.Client
	Tokens      *session.Tokens
	Revocations RevocationList
	Metrics     *Metrics
}

// New connects the configured store and Redis (when set) and builds the router.
func New(ctx context.Context, cfg config.Config, logger *zap.Logger) (*App, error) {
	var (
		catalog services.CatalogStore
		lending services.LendingStore
		gdb     *gorm.DB
		mst     *mongostore.Store
	)
	switch cfg.Store {
	case config.StorePostgres:
		dsn := cfg.DatabaseURL
		if dsn == "" {
			dsn = db.DSNFromEnv()
		}
		conn, err := db.ConnectDB(dsn)
		if err != nil {
			return nil, err
		}
		repo := db.NewRepo(conn)
		gdb, catalog, lending = conn, repo, repo
		logger.Info("database connected", zap.String("store", cfg.Store))
	case config.StoreMongo:
		st, err := mongostore.Connect(ctx, cfg.MongoURI, cfg.MongoDatabase, cfg.MongoTransactions)
		if err != nil {
			return nil, err
		}
		mst, catalog, lending = st, st, st
		logger.Info("database connected", zap.String("store", cfg.Store), zap.String("database", cfg.MongoDatabase))
	case config.StoreMemory:
		st := memstore.New()
		catalog, lending = st, st
		logger.Warn("using in-memory store; records are lost on exit")
	default:
		return nil, fmt.Errorf("unknown store %q", cfg.Store)
	}

	a := NewWithStores(cfg, logger, catalog, lending)
	a.DB, a.Mongo = gdb, mst

	// --- Redis ---
	if cfg.RedisAddr != "" {
		rdb := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr, Password: cfg.RedisPassword, DB: 0})
		pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
		defer cancel()
		if err := rdb.Ping(pingCtx).Err(); err != nil {
			a.Close()
			return nil, fmt.Errorf("redis: %w", err)
		}
		a.RDB = rdb
		a.Revocations = session.NewRevocations(rdb)
		logger.Info("logout revocation enabled", zap.String("redis", cfg.RedisAddr))
	}
	if cfg.EphemeralSecret {
		logger.Warn("no jwt secret configured; sessions will not survive a restart")
	}
	return a, nil
}

// NewWithStores builds the App around already opened stores.
func NewWithStores(cfg config.Config, logger *zap.Logger, catalog services.CatalogStore, lending services.LendingStore) *App {
	if cfg.GinMode != "" {
		gin.SetMode(cfg.GinMode)
	}
	a := &App{
		Config:  cfg,
		Logger:  logger,
		Catalog: catalog,
		Lending: lending,
		Tokens:  session.NewTokens(cfg.JWTSecret, cfg.TokenTTL),
		Metrics: NewMetrics(),
	}

	// --- Gin ---
	r := gin.New()
	r.Use(RequestLogger(logger), gin.Recovery(), a.Metrics.Middleware())
	useCORS(r, cfg.CORSOrigins)
	a.Router = r
	return a
}

// Migrate creates the tables / indexes the configured store needs.
func (a *App) Migrate(ctx context.Context) error {
	switch {
	case a.DB != nil:
		return db.Migrate(a.DB.WithContext(ctx))
	case a.Mongo != nil:
		return a.Mongo.EnsureIndexes(ctx)
	}
	return nil
}

func (a *App) Close() {
	if a.RDB != nil {
		_ = a.RDB.Close()
	}
	if a.Mongo != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = a.Mongo.Close(ctx)
	}
	if a.DB != nil {
		if sqlDB, err := a.DB.DB(); err == nil {
			_ = sqlDB.Close()
		}
	}
	_ = a.Logger.Sync()
}
