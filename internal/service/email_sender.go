package service

import (
	"crypto/tls"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/go-mail/mail/v2"
	"github.com/sirupsen/logrus"
)

type EmailSender struct {
	dialer  *mail.Dialer
	logger  *logrus.Logger
	enabled bool
}

func NewEmailSender(logger *logrus.Logger) *EmailSender {
	smtpHost := os.Getenv("SMTP_HOST")
	smtpPortStr := os.Getenv("SMTP_PORT")
	smtpUser := os.Getenv("SMTP_USER")
	smtpPass := os.Getenv("SMTP_PASS")
	enabledStr := os.Getenv("EMAIL_SENDER_ENABLED")
	insecureSkipVerifyStr := os.Getenv("INSECURE_SKIP_VERIFY")

	enabled := enabledStr == "true"

	// Con el envío deshabilitado no hace falta configuración SMTP válida
	smtpPort := 0
	if enabled {
		port, err := strconv.Atoi(smtpPortStr)
		if err != nil {
			logger.Fatalf("Error convirtiendo SMTP_PORT: %v", err)
		}
		smtpPort = port
	}

	d := mail.NewDialer(smtpHost, smtpPort, smtpUser, smtpPass)
	d.TLSConfig = &tls.Config{
		ServerName:         smtpHost,
		InsecureSkipVerify: insecureSkipVerifyStr == "true",
	}

	return &EmailSender{
		dialer:  d,
		logger:  logger,
		enabled: enabled,
	}
}

// SendDisbursementNotification avisa al usuario que el desembolso de una
// cartera fue acreditado a su saldo
func (es *EmailSender) SendDisbursementNotification(email string, amount float64, portfolioName string) error {
	if !es.enabled {
		es.logger.Warn("El envío de notificaciones está deshabilitado")
		return nil
	}

	subject := fmt.Sprintf("Desembolso de la cartera %s", portfolioName)
	content := fmt.Sprintf(`
		<h1>Desembolso acreditado</h1>
		<p>Cartera: <strong>%s</strong></p>
		<p>Monto acreditado: <strong>%.2f</strong></p>
		<p>Fecha: <strong>%s</strong></p>
		<small>Este es un aviso automático, por favor no lo responda</small>
	`, portfolioName, amount, time.Now().Format("02/01/2006 15:04"))

	return es.sendEmail(email, subject, content)
}

func (es *EmailSender) sendEmail(to, subject, body string) error {
	m := mail.NewMessage()
	m.SetHeader("From", os.Getenv("SMTP_USER"))
	m.SetHeader("To", to)
	m.SetHeader("Subject", subject)
	m.SetBody("text/html", body)

	if err := es.dialer.DialAndSend(m); err != nil {
		es.logger.WithError(err).Error("Error enviando el email")
		return fmt.Errorf("no se pudo enviar el email: %w", err)
	}

	es.logger.Infof("Email enviado con éxito a %s", to)
	return nil
}
