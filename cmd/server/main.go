package main

import (
	"context"
	"database/sql"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/adapters/humachi"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	_ "github.com/lib/pq"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/RMahshie/seisview/internal/api"
	"github.com/RMahshie/seisview/internal/config"
	"github.com/RMahshie/seisview/internal/cosmos"
	"github.com/RMahshie/seisview/internal/processing"
	"github.com/RMahshie/seisview/internal/repository/postgres"
	"github.com/RMahshie/seisview/internal/storage"
	"github.com/RMahshie/seisview/pkg/models"
)

const version = "1.0.0"

func main() {
	// Configure zerolog for structured logging
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}
	if cfg.Server.Env == "prod" {
		log.Logger = zerolog.New(os.Stderr).With().Timestamp().Logger()
	}

	db, err := sql.Open("postgres", cfg.Database.URL)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to open database")
	}
	defer db.Close()

	pingCtx, cancelPing := context.WithTimeout(context.Background(), 5*time.Second)
	if err := db.PingContext(pingCtx); err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to database")
	}
	cancelPing()

	store, err := newStore(cfg)
	if err != nil {
		log.Fatal().Err(err).Str("backend", cfg.Storage.Backend).Msg("Failed to initialize storage")
	}

	loader := cosmos.NewLoader(store)
	batchRepo := postgres.NewPostgresBatchRepository(db)
	batchSvc := processing.NewBatchService(batchRepo, processing.NewChartGenerator(loader))

	// Create Chi router
	router := chi.NewRouter()

	// Middleware
	router.Use(middleware.RequestID)
	router.Use(middleware.RealIP)
	router.Use(zerologLogger())
	router.Use(middleware.Recoverer)
	router.Use(middleware.Compress(5))
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.Server.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type", "X-Request-ID"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	// Create Huma API
	humaConfig := huma.DefaultConfig("SeisView API", version)
	humaConfig.DocsPath = "/api/docs"
	humaAPI := humachi.New(router, humaConfig)

	// Register health endpoint
	huma.Register(humaAPI, huma.Operation{
		OperationID: "health",
		Method:      http.MethodGet,
		Path:        "/health",
		Summary:     "Health check",
		Description: "Returns the health status of the service",
	}, func(ctx context.Context, input *struct{}) (*models.HealthResponse, error) {
		resp := &models.HealthResponse{}
		resp.Body.Status = "healthy"
		resp.Body.Version = version
		resp.Body.Time = time.Now()
		return resp, nil
	})

	api.RegisterRoutes(humaAPI, store, loader, batchRepo, batchSvc)

	srv := &http.Server{
		Addr:    ":" + cfg.Server.Port,
		Handler: router,
	}

	// Graceful shutdown
	go func() {
		log.Info().Str("addr", srv.Addr).Str("env", cfg.Server.Env).Msg("Starting SeisView API server")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("Server failed to start")
		}
	}()

	// Wait for interrupt signal to gracefully shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info().Msg("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}

	// Let a running batch finish writing its groups
	done := make(chan struct{})
	go func() {
		batchSvc.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-ctx.Done():
		log.Warn().Msg("Running batch did not finish before shutdown")
	}

	log.Info().Msg("Server exited")
}

func newStore(cfg *config.Config) (storage.Store, error) {
	if cfg.Storage.Backend == config.StorageLocal {
		return storage.NewLocalStore(cfg.Storage.DataDir)
	}
	return storage.NewS3Store(storage.S3Config{
		Bucket:    cfg.AWS.S3Bucket,
		Endpoint:  cfg.AWS.S3Endpoint,
		Region:    cfg.AWS.Region,
		AccessKey: cfg.AWS.AccessKeyID,
		SecretKey: cfg.AWS.SecretAccessKey,
	})
}

// zerologLogger returns a Chi middleware that logs HTTP requests using zerolog
func zerologLogger() func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

			defer func() {
				log.Info().
					Str("method", r.Method).
					Str("path", r.URL.Path).
					Str("request_id", middleware.GetReqID(r.Context())).
					Int("status", ww.Status()).
					Dur("latency", time.Since(start)).
					Msg("HTTP request")
			}()

			next.ServeHTTP(ww, r)
		})
	}
}
