package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"

	"github.com/universal-crud/backend-go/internal/auth"
	"github.com/universal-crud/backend-go/internal/config"
	"github.com/universal-crud/backend-go/internal/database"
	"github.com/universal-crud/backend-go/internal/handler"
	"github.com/universal-crud/backend-go/internal/middleware"
	"github.com/universal-crud/backend-go/internal/repository"
	"github.com/universal-crud/backend-go/internal/service"
)

func main() {
	// Initialize logger
	logger := logrus.New()
	logger.SetFormatter(&logrus.JSONFormatter{})
	if err := godotenv.Load(); err != nil {
		logger.Info("No .env file found; relying on existing environment")
	}
	logLevel, err := logrus.ParseLevel(os.Getenv("LOG_LEVEL"))
	if err != nil {
		logLevel = logrus.InfoLevel
	}
	logger.SetLevel(logLevel)

	// Load configuration
	cfg, err := config.NewConfig()
	if err != nil {
		logger.Fatalf("Failed to load config: %v", err)
	}

	// Initialize database
	db, err := database.Connect(cfg, logger)
	if err != nil {
		logger.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()
	if err := db.Migrate(context.Background()); err != nil {
		logger.Fatalf("Failed to migrate database: %v", err)
	}

	// Initialize layers
	userRepo := repository.NewUserRepository(db)
	productRepo := repository.NewProductRepository(db)
	categoryRepo := repository.NewCategoryRepository(db)

	tokens := auth.NewTokenManager(cfg.JWTSecret, cfg.JWTExpiry)
	userSvc := service.NewUserService(userRepo, tokens, logger)
	productSvc := service.NewProductService(productRepo, categoryRepo, logger)
	categorySvc := service.NewCategoryService(categoryRepo, productRepo, logger)

	authHandler := handler.NewAuthHandler(userSvc)
	userHandler := handler.NewUserHandler(userSvc)
	productHandler := handler.NewProductHandler(productSvc)
	categoryHandler := handler.NewCategoryHandler(categorySvc)
	healthHandler := handler.NewHealthHandler(db)

	// Setup router
	r := mux.NewRouter()
	r.Use(middleware.CORS(cfg.CORSOrigins))
	r.Use(middleware.Logging(logger))

	api := r.PathPrefix("/api").Subrouter()
	api.HandleFunc("/health", healthHandler.Health).Methods("GET")

	// Public routes
	api.HandleFunc("/auth/register", authHandler.Register).Methods("POST")
	api.HandleFunc("/auth/login", authHandler.Login).Methods("POST")
	api.HandleFunc("/products", productHandler.List).Methods("GET")
	api.HandleFunc("/products/{id}", productHandler.Get).Methods("GET")
	api.HandleFunc("/categories", categoryHandler.List).Methods("GET")
	api.HandleFunc("/categories/{id}", categoryHandler.Get).Methods("GET")
	api.HandleFunc("/categories/{id}/products", categoryHandler.Products).Methods("GET")

	// Routes requiring authentication
	authed := api.PathPrefix("").Subrouter()
	authed.Use(middleware.Authenticate(tokens))
	authed.HandleFunc("/auth/verify", authHandler.Verify).Methods("GET")
	authed.HandleFunc("/products", productHandler.Create).Methods("POST")
	authed.HandleFunc("/products/{id}", productHandler.Update).Methods("PUT")
	authed.HandleFunc("/products/{id}", productHandler.Delete).Methods("DELETE")
	authed.HandleFunc("/users/me", userHandler.Me).Methods("GET")
	authed.HandleFunc("/users/{id}", userHandler.Get).Methods("GET")
	authed.HandleFunc("/users/{id}", userHandler.Update).Methods("PUT")
	authed.HandleFunc("/users/{id}/change-password", userHandler.ChangePassword).Methods("POST")

	// Admin-only routes
	admin := api.PathPrefix("").Subrouter()
	admin.Use(middleware.Authenticate(tokens), middleware.RequireAdmin)
	admin.HandleFunc("/categories", categoryHandler.Create).Methods("POST")
	admin.HandleFunc("/categories/{id}", categoryHandler.Update).Methods("PUT")
	admin.HandleFunc("/categories/{id}", categoryHandler.Delete).Methods("DELETE")
	admin.HandleFunc("/users", userHandler.List).Methods("GET")
	admin.HandleFunc("/users/{id}", userHandler.Delete).Methods("DELETE")

	// Start server
	addr := fmt.Sprintf(":%s", cfg.Port)
	server := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		logger.Infof("Starting server on %s (database: %s)", addr, cfg.DBType)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatalf("Server failed: %v", err)
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Errorf("Graceful shutdown failed: %v", err)
	}
	logger.Info("Server stopped")
}
