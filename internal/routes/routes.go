package routes

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"uniauth/internal/handlers"
	"uniauth/internal/middleware"
	"uniauth/internal/services"
)

func SetupRoutes(
	r *gin.Engine,
	authHandler *handlers.AuthHandler,
	otpHandler *handlers.OtpHandler,
	tokens services.TokenService,
) *gin.Engine {

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	// ---- public
	auth := r.Group("/auth")
	{
		auth.POST("/register", authHandler.Register)
		auth.POST("/login", authHandler.Login)
		auth.POST("/refresh", authHandler.Refresh)
		auth.POST("/verify", authHandler.VerifyEmail)
		auth.POST("/forgot-password", authHandler.ForgotPassword)
		auth.POST("/reset-password", authHandler.ResetPassword)
	}
	r.POST("/otp", otpHandler.Generate)

	// ---- protected
	me := r.Group("/auth", middleware.AuthMiddleware(tokens))
	{
		me.GET("/me", authHandler.Me)
	}

	return r
}
