package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"inkwell/auth"
	"inkwell/config"
	"inkwell/database"
	"inkwell/handlers"
	"inkwell/routes"
	"inkwell/store"
	"inkwell/uploads"
)

func main() {
	log.Println("Starting Inkwell blog backend...")

	cfg := config.MustLoad()

	if err := auth.Init(cfg.JWTSecret); err != nil {
		log.Fatal("Token signing not configured: ", err)
	}

	// ===== CONNECT TO MONGODB WITH RETRY =====
	log.Println("Connecting to MongoDB...")

	var dbErr error
	for i := 1; i <= 3; i++ {
		if err := database.ConnectMongo(cfg.MongoURI, cfg.MongoDBName); err != nil {
			dbErr = err
			log.Printf("MongoDB connection attempt %d failed: %v", i, err)
			time.Sleep(2 * time.Second)
			continue
		}
		dbErr = nil
		break
	}
	if dbErr != nil {
		log.Fatal("Failed to connect to MongoDB: ", dbErr)
	}
	defer func() {
		if err := database.DisconnectMongo(); err != nil {
			log.Printf("MongoDB disconnect failed: %v", err)
		}
	}()

	// ===== GIN MODE =====
	if os.Getenv("GIN_MODE") == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	// ===== WIRING =====
	blobs, err := uploads.New(cfg.UploadsDir)
	if err != nil {
		log.Fatal("Failed to prepare uploads dir: ", err)
	}
	handlers.Configure(
		store.NewMongoUserStore(database.Users),
		store.NewMongoPostStore(database.Posts),
		blobs,
	)

	router := routes.SetupRouter(cfg.ClientOrigin, cfg.UploadsDir)

	// Health checks
	router.GET("/", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "Inkwell API running", "service": "healthy"})
	})
	router.GET("/health", func(c *gin.Context) {
		c.String(http.StatusOK, "OK")
	})

	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Printf("Server running on port %s", cfg.Port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("Server error: ", err)
		}
	}()

	// ===== GRACEFUL SHUTDOWN =====
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down server...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Println("Forced shutdown: ", err)
	}

	log.Println("Server stopped gracefully")
}
