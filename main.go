package main

import (
	"encoding/json"
	stdlog "log"
	"net/http"
	"os"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/patrickmn/go-cache"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"github.com/username/chainfolio/backend/src/chains"
	"github.com/username/chainfolio/backend/src/chains/kaspa"
	"github.com/username/chainfolio/backend/src/config"
	"github.com/username/chainfolio/backend/src/database"
	"github.com/username/chainfolio/backend/src/handlers"
	"github.com/username/chainfolio/backend/src/logger"
	"github.com/username/chainfolio/backend/src/security"
	"github.com/username/chainfolio/backend/src/services"
	"golang.org/x/time/rate"
)

var limiter = rate.NewLimiter(rate.Every(100*time.Millisecond), 30)

func rateLimitMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !limiter.Allow() {
			http.Error(w, http.StatusText(http.StatusTooManyRequests), http.StatusTooManyRequests)
			logger.L.Warn("Rate limit exceeded",
				"method", r.Method,
				"path", r.URL.Path,
				"remoteAddr", r.RemoteAddr)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func enableCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		origin := r.Header.Get("Origin")
		allowedOrigins := map[string]bool{
			"http://localhost:3000": true,
		}

		if allowedOrigins[origin] {
			w.Header().Set("Access-Control-Allow-Origin", origin)
			w.Header().Set("Access-Control-Allow-Credentials", "true")
			w.Header().Set("Access-Control-Allow-Methods", "POST, GET, OPTIONS, PUT, DELETE, PATCH")
			w.Header().Set("Access-Control-Allow-Headers", "Accept, Content-Type, Content-Length, Accept-Encoding, Authorization, X-Requested-With, If-None-Match")
			w.Header().Set("Access-Control-Expose-Headers", "ETag")
		} else if origin == "" {
			w.Header().Set("Access-Control-Allow-Origin", "*")
		}

		if r.Method == "OPTIONS" {
			logger.L.Debug("Handling OPTIONS preflight request", "path", r.URL.Path, "origin", origin)
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func main() {
	config.LoadConfig()
	logger.InitLogger(config.Cfg.LogLevel)
	logger.L.Info("Chainfolio backend server starting...")

	if config.Cfg.AuthEnabled && len(config.Cfg.JWTSecret) < 32 {
		logger.L.Error("JWT_SECRET configuration invalid. Must be at least 32 bytes when AUTH_ENABLED=true.")
		os.Exit(1)
	}

	logger.L.Info("Initializing database...", "path", config.Cfg.DatabasePath)
	database.InitDB(config.Cfg.DatabasePath)
	logger.L.Info("Database initialized successfully.")

	logger.L.Info("Initializing result cache...")
	resultCache := cache.New(services.DefaultCacheExpiration, services.CacheCleanupInterval)

	logger.L.Info("Initializing UTXO fee tracer...", "backend", config.Cfg.TraceCacheBackend)
	var outpointCache kaspa.OutpointCache
	if config.Cfg.TraceCacheBackend == "redis" {
		redisClient := redis.NewClient(&redis.Options{Addr: config.Cfg.RedisAddr})
		outpointCache = kaspa.NewRedisOutpointCache(redisClient, 24*time.Hour)
	} else {
		outpointCache = kaspa.NewMemoryOutpointCache(24*time.Hour, time.Hour)
	}
	outpointSource := kaspa.NewRESTOutpointSource(config.Cfg.KaspaAPIBaseURL, &http.Client{
		Timeout: config.Cfg.TraceTimeout,
	})
	chains.SetKaspaFeeTracer(kaspa.NewFeeTracer(outpointSource, outpointCache,
		config.Cfg.TraceRatePerSec, config.Cfg.TraceBurst))

	logger.L.Info("Initializing services and handlers...")
	importService := services.NewImportService(resultCache)
	importHandler := handlers.NewImportHandler(importService)
	txHandler := handlers.NewTransactionHandler(importService)
	exportHandler := handlers.NewExportHandler(importService)

	logger.L.Info("Configuring routes...")
	router := chi.NewRouter()
	router.Use(enableCORS)
	router.Use(rateLimitMiddleware)

	router.Get("/", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]string{"message": "Chainfolio backend is running"})
	})
	router.Handle("/metrics", promhttp.Handler())

	router.Route("/api", func(api chi.Router) {
		if config.Cfg.AuthEnabled {
			authService := security.NewAuthService(config.Cfg.JWTSecret, config.Cfg.TokenExpiry)
			api.Use(handlers.AuthMiddleware(authService))
		}
		api.Post("/import", importHandler.HandleImport)
		api.Get("/transactions", txHandler.HandleGetTransactions)
		api.Get("/export/csv", exportHandler.HandleExportCSV)
	})

	serverAddr := ":" + config.Cfg.Port
	server := &http.Server{
		Addr:         serverAddr,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	logger.L.Info("Server starting", "address", serverAddr)
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.L.Error("Failed to start server", "error", err)
		stdlog.Fatalf("Failed to start server: %v", err)
	} else if err == http.ErrServerClosed {
		logger.L.Info("Server stopped gracefully.")
	}
}
