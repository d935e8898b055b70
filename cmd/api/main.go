package main

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"shopstock-rest-api/internal/cache"
	"shopstock-rest-api/internal/config"
	"shopstock-rest-api/internal/handler"
	"shopstock-rest-api/internal/repository"
	"shopstock-rest-api/internal/router"
	"shopstock-rest-api/internal/service"

	_ "github.com/go-sql-driver/mysql"
)

func main() {
	log.SetFlags(log.LstdFlags | log.Lshortfile)
	log.Println("Starting ShopStock API...")

	// Load configuration
	cfg := config.MustLoad()
	log.Printf("Environment: %s", cfg.App.Environment)

	// Initialize catalog repository based on config
	var catalogRepo repository.CatalogRepository
	switch cfg.CatalogDB.Type {
	case "mysql":
		db, err := sql.Open("mysql", cfg.CatalogDB.MySQLDSN())
		if err != nil {
			log.Fatalf("Failed to open MySQL: %v", err)
		}
		db.SetMaxOpenConns(10)
		db.SetMaxIdleConns(5)
		db.SetConnMaxLifetime(5 * time.Minute)
		if err := db.Ping(); err != nil {
			log.Fatalf("Failed to ping MySQL: %v", err)
		}
		mysqlRepo, err := repository.NewMySQLCatalogRepository(db)
		if err != nil {
			log.Fatalf("Failed to initialize MySQL: %v", err)
		}
		catalogRepo = mysqlRepo
		log.Println("MySQL catalog repository initialized")
	default: // sqlite
		sqliteRepo, err := repository.NewSQLiteCatalogRepository(cfg.CatalogDB.Path)
		if err != nil {
			log.Fatalf("Failed to initialize SQLite: %v", err)
		}
		catalogRepo = sqliteRepo
		log.Println("SQLite catalog repository initialized")
	}
	defer catalogRepo.Close()

	// Initialize catalog cache. The cache is advisory: if Redis is
	// unreachable the service runs uncached rather than failing.
	var catalogCache cache.Cache
	switch cfg.Cache.Type {
	case "redis":
		redisCache, err := cache.NewRedisCache(cache.RedisConfig{
			Addr:      cfg.Cache.RedisAddress(),
			Password:  cfg.Cache.RedisPassword,
			DB:        cfg.Cache.RedisDB,
			OpTimeout: cfg.Cache.RedisOpTimeout,
		})
		if err != nil {
			log.Printf("Warning: Redis connection failed, running without cache: %v", err)
		} else {
			catalogCache = redisCache
			log.Println("Redis catalog cache initialized")
		}
	case "off":
		log.Println("Catalog cache disabled")
	default: // memory
		catalogCache = cache.NewMemoryCache()
		log.Println("Memory catalog cache initialized")
	}
	if catalogCache != nil {
		defer catalogCache.Close()
	}

	// Initialize services
	catalogService := service.NewCatalogService(catalogRepo, catalogCache, cfg.Cache.TTL)

	// Initialize handlers
	healthHandler := handler.New(cfg.App.Version)
	catalogHandler := handler.NewCatalogHandler(catalogService)
	adminHandler := handler.NewAdminHandler(catalogRepo, cfg.CatalogDB.Type, cfg.Cache.Type)

	// Create router
	r := router.New(router.Config{
		Handler:        healthHandler,
		CatalogHandler: catalogHandler,
		AdminHandler:   adminHandler,
	})

	// Create HTTP server
	srv := &http.Server{
		Addr:         cfg.Server.Address(),
		Handler:      r,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	// Start server in goroutine
	go func() {
		log.Printf("Server listening on %s", cfg.Server.Address())
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server error: %v", err)
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Printf("Server shutdown error: %v", err)
	}

	log.Println("Server stopped")
	fmt.Println("Goodbye!")
}
