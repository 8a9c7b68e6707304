package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"uniauth/internal/models"
	"uniauth/internal/services"
)

type OtpHandler struct {
	otps services.OtpService
}

func NewOtpHandler(otps services.OtpService) *OtpHandler {
	return &OtpHandler{otps: otps}
}

// @Summary      Generar y enviar un código OTP
// @Tags         Auth
// @Accept       json
// @Produce      json
// @Param        otp  body      models.CreateOtpRequest  true  "Correo y tipo de código"
// @Success      200  {object}  models.SuccessResponse
// @Failure      400  {object}  map[string]string
// @Failure      429  {object}  map[string]string
// @Router       /otp [post]
func (h *OtpHandler) Generate(c *gin.Context) {
	var req models.CreateOtpRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if !req.Type.Valid() {
		c.JSON(http.StatusBadRequest, gin.H{"error": "unknown otp type"})
		return
	}

	email := strings.TrimSpace(strings.ToLower(req.Email))
	if err := h.otps.Send(email, req.Type); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, models.SuccessResponse{Message: "Ok", Success: true})
}
