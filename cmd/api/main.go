package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"eventportal/internal/auth"
	"eventportal/internal/cloudinary"
	"eventportal/internal/config"
	"eventportal/internal/handler"
	"eventportal/internal/httpmiddleware"
	"eventportal/internal/portal"
	"eventportal/internal/proof"
	"eventportal/internal/store"
)

func main() {
	cfg := config.Load()
	setupLogging(cfg)

	if cfg.Production() {
		gin.SetMode(gin.ReleaseMode)
	}

	if err := runHTTP(cfg); err != nil {
		log.Fatal().Err(err).Msg("http server failed")
	}
}

func setupLogging(cfg config.App) {
	zerolog.TimeFieldFormat = time.RFC3339
	if cfg.Production() {
		log.Logger = zerolog.New(os.Stdout).With().Timestamp().Logger()
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
		return
	}
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen})
	zerolog.SetGlobalLevel(zerolog.DebugLevel)
}

func runHTTP(cfg config.App) error {
	ctx := context.Background()
	checks := map[string]handler.Checker{}

	var repo portal.Store
	switch cfg.StoreBackend {
	case "memory":
		log.Warn().Msg("using in-memory store; data is lost on restart")
		repo = portal.NewMemoryStore()
	default:
		db, err := store.NewDB(ctx, cfg.DatabaseURL, cfg.QueryTimeout)
		if err != nil {
			return err
		}
		defer db.Close()
		if err := db.Migrate(ctx); err != nil {
			return err
		}
		checks["db"] = db
		repo = portal.NewRepository(db.Client)
	}

	var sessions auth.SessionStore
	switch cfg.SessionBackend {
	case "memory":
		sessions = auth.NewMemorySessions()
	default:
		redisClient, err := store.NewRedis(ctx, cfg.RedisAddr)
		if err != nil {
			return err
		}
		defer redisClient.Close()
		checks["redis"] = redisClient
		sessions = auth.NewRedisSessions(redisClient.Client, "")
	}

	var proofs proof.Store
	uploadDir := ""
	if cfg.CloudinaryEnabled() {
		proofs = proof.NewCloudinaryStore(cloudinary.New(cfg.CloudinaryCloudName, cfg.CloudinaryAPIKey, cfg.CloudinaryAPISecret, cfg.CloudinaryFolder))
		log.Info().Str("cloud", cfg.CloudinaryCloudName).Msg("proofs stored in Cloudinary")
	} else {
		disk, err := proof.NewDiskStore(cfg.UploadDir, "uploads")
		if err != nil {
			return err
		}
		proofs = disk
		uploadDir = cfg.UploadDir
		log.Info().Str("dir", cfg.UploadDir).Msg("proofs stored on disk")
	}

	svc := portal.NewService(repo, auth.NewCredentials(cfg.BcryptCost), proofs, portal.Options{
		QueryTimeout: cfg.QueryTimeout,
		Location:     cfg.Location(),
	})
	h := handler.New(svc, sessions, handler.Options{
		SigningKey:   cfg.SessionSecret,
		Issuer:       cfg.SessionIssuer,
		SessionTTL:   cfg.SessionTTL,
		SecureCookie: cfg.Production(),
		Development:  cfg.Development(),
		Checks:       checks,
	})
	r := handler.NewRouter(h, handler.RouterConfig{
		AllowedOrigins: cfg.AllowedOrigins,
		UploadDir:      uploadDir,
		Limiter:        httpmiddleware.NewSimpleTokenBucket("global", cfg.RateLimitPerMin, cfg.RateLimitPerMin),
		AuthLimiter:    httpmiddleware.NewSimpleTokenBucket("auth", cfg.AuthRateLimitPerMin, cfg.AuthRateLimitPerMin),
	})

	srv := &http.Server{
		Addr:         ":" + cfg.HTTPPort,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("addr", srv.Addr).Str("env", cfg.Env).Msg("starting server")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	select {
	case err := <-errCh:
		return err
	case <-quit:
	}
	log.Info().Msg("shutting down server")

	// Give outstanding requests 10 seconds to complete
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("server forced shutdown")
	}
	log.Info().Msg("server exited")
	return nil
}
