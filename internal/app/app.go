package app

import (
	"database/sql"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/gin-gonic/gin"
	_ "github.com/lib/pq"

	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	_ "uniauth/docs"
	"uniauth/internal/config"
	"uniauth/internal/handlers"
	"uniauth/internal/repositories"
	"uniauth/internal/routes"
	"uniauth/internal/services"
)

// @title        UniAuth API
// @version      1.0
// @description  Servicio de autenticación institucional: registro, verificación por OTP y tokens JWT.
// @BasePath     /
func Run() {
	cfgPath := os.Getenv("CONFIG_PATH")
	if cfgPath == "" {
		cfgPath = "config/config.yaml"
	}
	cfg, err := config.LoadConfig(cfgPath)
	if err != nil {
		log.Fatal("Failed to load config: ", err)
	}

	// === DB ===
	db, err := sql.Open("postgres", cfg.Database.DSN)
	if err != nil {
		log.Fatal("Failed to open database: ", err)
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Printf("Failed to close database: %v", err)
		}
	}()

	store := repositories.NewStore(db)

	// === Services ===
	hasher := services.NewBcryptHasher()

	tokens, err := services.NewTokenService(
		cfg.Auth.AccessSecret,
		cfg.Auth.RefreshSecret,
		time.Duration(cfg.Auth.AccessTTLHours)*time.Hour,
		time.Duration(cfg.Auth.RefreshTTLHours)*time.Hour,
	)
	if err != nil {
		log.Fatal("Token service: ", err)
	}

	emailService := services.NewEmailService(
		cfg.Email.SMTPHost,
		cfg.Email.SMTPPort,
		cfg.Email.SMTPUser,
		cfg.Email.SMTPPassword,
		cfg.Email.FromEmail,
	)

	otpService := services.NewOtpService(store, hasher, emailService, services.OtpConfig{
		Expiration:      time.Duration(cfg.Otp.ExpirationMinutes) * time.Minute,
		MaxAttempts:     cfg.Otp.MaxAttempts,
		RateLimitWindow: time.Duration(cfg.Otp.RateLimitMinutes) * time.Minute,
	})

	authService := services.NewAuthService(store, otpService, tokens, hasher, emailService, cfg.Auth.EmailDomain)

	// daily sweep of expired codes
	stopCleanup := make(chan struct{})
	defer close(stopCleanup)
	services.StartOtpCleanup(otpService, stopCleanup)

	// === Handlers ===
	authHandler := handlers.NewAuthHandler(authService, tokens)
	otpHandler := handlers.NewOtpHandler(otpService)

	// === Gin ===
	router := gin.Default()
	router.Use(corsMiddleware())

	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	routes.SetupRoutes(router, authHandler, otpHandler, tokens)

	// === Run ===
	listenAddr := fmt.Sprintf(":%d", cfg.Server.Port)
	log.Printf("Listening on %s", listenAddr)
	if err := router.Run(listenAddr); err != nil {
		log.Fatal("Server failed: ", err)
	}
}

func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Origin, Content-Type, Authorization")
		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}
		c.Next()
	}
}
