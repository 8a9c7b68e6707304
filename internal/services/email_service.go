package services

import (
	"fmt"

	"gopkg.in/gomail.v2"

	"uniauth/internal/models"
)

// EmailService delivers OTP codes. Callers treat it as fire-and-forget:
// state is committed before sending and a delivery failure is logged, never
// bubbled up as an operation failure.
type EmailService interface {
	SendOtpEmail(email, code string, otpType models.OtpType) error
}

type emailService struct {
	dialer *gomail.Dialer
	from   string
}

func NewEmailService(smtpHost string, smtpPort int, smtpUser, smtpPassword, fromEmail string) EmailService {
	return &emailService{
		dialer: gomail.NewDialer(smtpHost, smtpPort, smtpUser, smtpPassword),
		from:   fromEmail,
	}
}

type emailTemplate struct {
	subject string
	intro   string
}

var otpTemplates = map[models.OtpType]emailTemplate{
	models.OtpVerification: {
		subject: "Verificar correo electrónico",
		intro:   "Usa este código para verificar tu correo electrónico institucional.",
	},
	models.OtpPasswordChange: {
		subject: "Confirmación de cambio de contraseña",
		intro:   "Usa este código para confirmar el cambio de tu contraseña.",
	},
	models.OtpRecovery: {
		subject: "Recuperación de cuenta",
		intro:   "Usa este código para recuperar el acceso a tu cuenta.",
	},
}

func (s *emailService) SendOtpEmail(email, code string, otpType models.OtpType) error {
	tpl, ok := otpTemplates[otpType]
	if !ok {
		return fmt.Errorf("no email template for otp type %q", otpType)
	}

	m := gomail.NewMessage()
	m.SetHeader("From", s.from)
	m.SetHeader("To", email)
	m.SetHeader("Subject", tpl.subject)

	body := fmt.Sprintf(`
		<h3>%s</h3>
		<p>%s</p>
		<p>Tu código es: <strong>%s</strong></p>
		<p>El código expira en 10 minutos. Si no solicitaste este código, ignora este correo.</p>
	`, tpl.subject, tpl.intro, code)
	m.SetBody("text/html", body)

	if err := s.dialer.DialAndSend(m); err != nil {
		return fmt.Errorf("failed to send otp email: %w", err)
	}
	return nil
}
