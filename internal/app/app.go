// Package app wires configuration, database, blob storage, and the HTTP
// engine into a runnable server. Every collaborator is constructed here
// and passed into handlers explicitly; nothing holds module-level
// singletons.
package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	log "github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/paintsnap/server/internal/auth"
	"github.com/paintsnap/server/internal/blob"
	"github.com/paintsnap/server/internal/config"
	"github.com/paintsnap/server/internal/db"
	"github.com/paintsnap/server/internal/http/api"
	"github.com/paintsnap/server/internal/quota"
	"github.com/paintsnap/server/internal/ratelimit"
	"github.com/paintsnap/server/internal/store"
)

// Migrate opens the database and runs migrations.
func Migrate(ctx context.Context, cfg config.AppConfig) error {
	configPath := config.ResolveConfigPath(cfg.ConfigPath)
	dsn, err := config.LoadDatabaseDSN(configPath)
	if err != nil {
		return err
	}
	conn, err := db.Open(dsn)
	if err != nil {
		return err
	}
	return db.Migrate(conn)
}

// RunServer boots the API server with database-backed components and
// serves until the context is cancelled.
func RunServer(ctx context.Context, cfg config.AppConfig, port int) error {
	configPath := config.ResolveConfigPath(cfg.ConfigPath)

	dsn, err := config.LoadDatabaseDSN(configPath)
	if err != nil {
		return err
	}
	conn, err := db.Open(dsn)
	if err != nil {
		return err
	}
	if errMigrate := db.Migrate(conn); errMigrate != nil {
		return errMigrate
	}

	jwtCfg, _ := config.LoadJWTConfig(configPath)
	if strings.TrimSpace(jwtCfg.Secret) == "" {
		return errors.New("app: missing jwt secret (set `jwt.secret` or JWT_SECRET)")
	}

	blobs, errBlob := buildBlobStore(configPath)
	if errBlob != nil {
		return errBlob
	}

	verifier, errVerifier := buildVerifier(ctx, configPath)
	if errVerifier != nil {
		return errVerifier
	}

	deps := buildDeps(conn, blobs, verifier, jwtCfg, buildLimiter(configPath))
	engine := BuildEngine(deps)

	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", port),
		Handler:           engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.WithField("port", port).Info("server listening")
		errCh <- server.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if errShutdown := server.Shutdown(shutdownCtx); errShutdown != nil {
			return errShutdown
		}
		return nil
	case errServe := <-errCh:
		if errors.Is(errServe, http.ErrServerClosed) {
			return nil
		}
		return errServe
	}
}

// BuildEngine assembles the gin engine with all routes registered.
func BuildEngine(deps api.Deps) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	engine := gin.New()
	engine.Use(gin.Recovery())
	engine.Use(requestLogMiddleware())
	api.RegisterRoutes(engine, deps)
	return engine
}

// buildDeps constructs the service graph on top of an open connection.
func buildDeps(conn *gorm.DB, blobs blob.Store, verifier auth.TokenVerifier, jwtCfg config.JWTConfig, limiter ratelimit.Limiter) api.Deps {
	st := store.New(conn, blobs)
	return api.Deps{
		DB:      conn,
		Store:   st,
		Auth:    auth.NewService(st, jwtCfg, verifier),
		Quota:   quota.New(st),
		JWT:     jwtCfg,
		Limiter: limiter,
	}
}

// buildBlobStore selects minio when an endpoint is configured, otherwise
// the in-memory store.
func buildBlobStore(configPath string) (blob.Store, error) {
	storageCfg, errLoad := config.LoadStorageConfig(configPath)
	if errLoad != nil {
		return nil, errLoad
	}
	if strings.TrimSpace(storageCfg.Endpoint) == "" {
		log.Warn("no storage endpoint configured, using in-memory blob store")
		return blob.NewMemoryStore(), nil
	}
	return blob.NewMinioStore(storageCfg)
}

// buildVerifier prepares the federated token verifier when an issuer is
// configured.
func buildVerifier(ctx context.Context, configPath string) (auth.TokenVerifier, error) {
	identityCfg, errLoad := config.LoadIdentityConfig(configPath)
	if errLoad != nil {
		return nil, errLoad
	}
	if strings.TrimSpace(identityCfg.Issuer) == "" {
		log.Info("no identity issuer configured, federated login disabled")
		return nil, nil
	}
	return auth.NewOIDCVerifier(ctx, identityCfg)
}

// buildLimiter selects the Redis-backed throttle when configured.
func buildLimiter(configPath string) ratelimit.Limiter {
	redisCfg, errLoad := config.LoadRedisConfig(configPath)
	if errLoad != nil || strings.TrimSpace(redisCfg.Addr) == "" {
		return ratelimit.NewMemoryLimiter()
	}
	client := redis.NewClient(&redis.Options{
		Addr:     redisCfg.Addr,
		Password: redisCfg.Password,
		DB:       redisCfg.DB,
	})
	return ratelimit.NewRedisLimiter(client, "paintsnap:login")
}

// requestLogMiddleware logs each request with method, path, status, and
// latency.
func requestLogMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		log.WithFields(log.Fields{
			"method":  c.Request.Method,
			"path":    c.FullPath(),
			"status":  c.Writer.Status(),
			"latency": time.Since(start).String(),
		}).Debug("request handled")
	}
}
