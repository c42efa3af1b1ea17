package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"stockpulse/config"
	"stockpulse/models"
	"stockpulse/routes"
	"stockpulse/scheduler"
	"stockpulse/services/analysis"
	"stockpulse/services/ingest"
	"stockpulse/services/marketdata"
	"stockpulse/store"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

func main() {
	log.Println("==============================================")
	log.Println("  StockPulse API - Starting...")
	log.Println("==============================================")

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Printf("Warning: Config load issue: %v", err)
	}

	if cfg.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	// The database is a hard startup dependency: ConnectDB retries with a
	// bounded backoff and exhaustion is fatal.
	db, err := config.ConnectDB(cfg)
	if err != nil {
		log.Fatalf("Startup failed: %v", err)
	}

	log.Println("Running database migrations...")
	if err := models.MigrateMarketModels(db); err != nil {
		log.Fatalf("Migration failed: %v", err)
	}

	// Wire components: store adapter, market data source, ingestion
	// pipeline and fusion engine share the injected pool and config.
	st := store.New(db)
	source := marketdata.NewYahooClient()
	pipeline := ingest.New(source, st)
	engine := analysis.NewEngine(st)

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(corsMiddleware())
	router.Use(requestLogger())
	routes.SetupRoutes(router, engine, st)

	server := &http.Server{
		Addr:              "0.0.0.0:" + cfg.Port,
		Handler:           router,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       120 * time.Second,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Printf("Server listening on 0.0.0.0:%s", cfg.Port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server error: %v", err)
		}
	}()

	jobScheduler := scheduler.NewScheduler(pipeline, cfg)
	if err := jobScheduler.Start(); err != nil {
		log.Fatalf("Scheduler failed to start: %v", err)
	}

	gracefulShutdown(server, jobScheduler, db)
}

// corsMiddleware returns a CORS middleware handler
func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		origin := c.Request.Header.Get("Origin")
		if origin == "" {
			origin = "*"
		}

		c.Header("Access-Control-Allow-Origin", origin)
		c.Header("Access-Control-Allow-Methods", "GET, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Origin, Content-Type, Accept")
		c.Header("Access-Control-Max-Age", "86400")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}

// requestLogger returns a request logging middleware
func requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		// Skip logging for health checks to reduce noise
		path := c.Request.URL.Path
		if path == "/health" {
			c.Next()
			return
		}

		start := time.Now()
		c.Next()
		duration := time.Since(start)

		if c.Writer.Status() >= 400 || duration > 1*time.Second {
			log.Printf("%s %s %d %v", c.Request.Method, path, c.Writer.Status(), duration)
		}
	}
}

// gracefulShutdown stops the scheduler, drains the HTTP server and closes
// the pool. In-flight ingestion calls finish or time out via their cycle
// context; nothing is cancelled mid-write.
func gracefulShutdown(server *http.Server, jobScheduler *scheduler.Scheduler, db *gorm.DB) {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	sig := <-quit
	log.Printf("Received signal %v, shutting down gracefully...", sig)

	jobScheduler.Stop()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Printf("Server forced to shutdown: %v", err)
	}

	if sqlDB, err := db.DB(); err == nil {
		sqlDB.Close()
		log.Println("Database connection closed")
	}

	log.Println("Server shutdown completed")
}
