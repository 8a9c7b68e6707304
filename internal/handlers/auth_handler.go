package handlers

import (
	"log"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"uniauth/internal/models"
	"uniauth/internal/services"
)

type AuthHandler struct {
	auth   services.AuthService
	tokens services.TokenService
}

func NewAuthHandler(auth services.AuthService, tokens services.TokenService) *AuthHandler {
	return &AuthHandler{auth: auth, tokens: tokens}
}

// @Summary      Registrar un nuevo usuario
// @Description  Crea la cuenta y envía un código de verificación al correo institucional
// @Tags         Auth
// @Accept       json
// @Produce      json
// @Param        register  body      models.RegisterRequest  true  "Datos de registro"
// @Success      201       {object}  models.User
// @Failure      400       {object}  map[string]string
// @Failure      429       {object}  map[string]string
// @Router       /auth/register [post]
func (h *AuthHandler) Register(c *gin.Context) {
	var req models.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	user, err := h.auth.Register(
		strings.TrimSpace(req.Username),
		req.Password,
		strings.TrimSpace(strings.ToLower(req.Email)),
	)
	if err != nil {
		log.Printf("[auth][register] failed username=%q: %v", req.Username, err)
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, user)
}

// @Summary      Iniciar sesión con credenciales de usuario
// @Tags         Auth
// @Accept       json
// @Produce      json
// @Param        login  body      models.LoginRequest  true  "Credenciales de inicio de sesión"
// @Success      200    {object}  models.TokenPair
// @Failure      400    {object}  map[string]string
// @Failure      401    {object}  map[string]string
// @Router       /auth/login [post]
func (h *AuthHandler) Login(c *gin.Context) {
	var req models.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	user, err := h.auth.ValidateCredentials(strings.TrimSpace(req.Username), req.Password)
	if err != nil {
		log.Printf("[auth][login] rejected username=%q: %v", req.Username, err)
		respondError(c, err)
		return
	}

	pair, err := h.auth.Login(user)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, pair)
}

// @Summary      Refrescar tokens
// @Tags         Auth
// @Accept       json
// @Produce      json
// @Param        refresh  body      models.RefreshRequest  true  "Refresh token vigente"
// @Success      200      {object}  models.TokenPair
// @Failure      401      {object}  map[string]string
// @Router       /auth/refresh [post]
func (h *AuthHandler) Refresh(c *gin.Context) {
	var req models.RefreshRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	claims, err := h.tokens.ParseRefresh(strings.TrimSpace(req.RefreshToken))
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid refresh token"})
		return
	}

	pair, err := h.auth.RefreshTokens(claims.UserID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, pair)
}

// @Summary      Verificar un código OTP
// @Description  Confirma el correo del usuario con el código recibido
// @Tags         Auth
// @Accept       json
// @Produce      json
// @Param        verify  body      models.VerifyOtpRequest  true  "Correo y código"
// @Success      200     {object}  models.SuccessResponse
// @Failure      400     {object}  map[string]string
// @Failure      401     {object}  map[string]string
// @Router       /auth/verify [post]
func (h *AuthHandler) VerifyEmail(c *gin.Context) {
	var req models.VerifyOtpRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	email := strings.TrimSpace(strings.ToLower(req.Email))
	if err := h.auth.VerifyEmail(email, req.Code); err != nil {
		log.Printf("[auth][verify] failed email=%q: %v", email, err)
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, models.SuccessResponse{Message: "Ok", Success: true})
}

// @Summary      Olvidar contraseña
// @Description  Envía un código de cambio de contraseña al correo
// @Tags         Auth
// @Accept       json
// @Produce      json
// @Param        forgot  body      models.ForgotPasswordRequest  true  "Correo del usuario"
// @Success      200     {object}  models.SuccessResponse
// @Failure      400     {object}  map[string]string
// @Failure      429     {object}  map[string]string
// @Router       /auth/forgot-password [post]
func (h *AuthHandler) ForgotPassword(c *gin.Context) {
	var req models.ForgotPasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	email := strings.TrimSpace(strings.ToLower(req.Email))
	if err := h.auth.ForgotPassword(email); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, models.SuccessResponse{Message: "Ok", Success: true})
}

// @Summary      Restablecer contraseña
// @Tags         Auth
// @Accept       json
// @Produce      json
// @Param        reset  body      models.ResetPasswordRequest  true  "Correo, código y nueva contraseña"
// @Success      200    {object}  models.SuccessResponse
// @Failure      400    {object}  map[string]string
// @Failure      401    {object}  map[string]string
// @Router       /auth/reset-password [post]
func (h *AuthHandler) ResetPassword(c *gin.Context) {
	var req models.ResetPasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	email := strings.TrimSpace(strings.ToLower(req.Email))
	if err := h.auth.ResetPassword(email, req.Code, req.Password); err != nil {
		log.Printf("[auth][reset] failed email=%q: %v", email, err)
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, models.SuccessResponse{Message: "Ok", Success: true})
}

// @Summary      Perfil del usuario autenticado
// @Tags         Auth
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  map[string]interface{}
// @Failure      401  {object}  map[string]string
// @Router       /auth/me [get]
func (h *AuthHandler) Me(c *gin.Context) {
	userID, ok := getIntFromCtx(c, "user_id")
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"id":       userID,
		"username": c.GetString("username"),
		"email":    c.GetString("email"),
	})
}
