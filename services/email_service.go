package services

import (
	"bytes"
	"crypto/tls"
	"fmt"
	"html/template"
	"net/smtp"

	"github.com/luminospark/asambal-system/config"
)

// EmailSender abstracts outgoing mail so services can be tested
// without an SMTP server.
type EmailSender interface {
	SendActivationEmail(email, token string) error
}

type EmailService struct {
	cfg *config.Config
}

func NewEmailService(cfg *config.Config) *EmailService {
	return &EmailService{cfg: cfg}
}

var activationTemplate = template.Must(template.New("activation").Parse(`<html>
<body style="font-family: Arial, sans-serif;">
  <h2>Bienvenido a ASAMBAL</h2>
  <p>Tu cuenta fue creada. Para activarla y definir tu contraseña, hacé clic en el siguiente enlace:</p>
  <p><a href="{{.ActivationLink}}">Activar mi cuenta</a></p>
  <p>Si no esperabas este correo, podés ignorarlo.</p>
</body>
</html>`))

func (s *EmailService) SendActivationEmail(email, token string) error {
	link := fmt.Sprintf("%s/activar-cuenta?token=%s", s.cfg.FrontURL, token)
	body, err := s.renderActivationBody(link)
	if err != nil {
		return err
	}
	return s.send([]string{email}, "Activá tu cuenta de ASAMBAL", body)
}

func (s *EmailService) renderActivationBody(link string) (string, error) {
	var body bytes.Buffer
	data := struct{ ActivationLink string }{ActivationLink: link}
	if err := activationTemplate.Execute(&body, data); err != nil {
		return "", fmt.Errorf("render activation template: %w", err)
	}
	return body.String(), nil
}

func (s *EmailService) send(to []string, subject, body string) error {
	auth := smtp.PlainAuth("", s.cfg.SMTPUser, s.cfg.SMTPPass, s.cfg.SMTPHost)

	msg := []byte("To: " + to[0] + "\r\n" +
		"From: " + s.cfg.SMTPFrom + "\r\n" +
		"Subject: " + subject + "\r\n" +
		"MIME-version: 1.0;\nContent-Type: text/html; charset=\"UTF-8\";\r\n" +
		"\r\n" +
		body + "\r\n")

	addr := fmt.Sprintf("%s:%d", s.cfg.SMTPHost, s.cfg.SMTPPort)

	tlsconfig := &tls.Config{
		ServerName: s.cfg.SMTPHost,
	}

	var client *smtp.Client
	if s.cfg.SMTPPort == 465 {
		// Implicit TLS
		conn, err := tls.Dial("tcp", addr, tlsconfig)
		if err != nil {
			return fmt.Errorf("tls dial: %w", err)
		}
		defer conn.Close()
		client, err = smtp.NewClient(conn, s.cfg.SMTPHost)
		if err != nil {
			return fmt.Errorf("smtp client: %w", err)
		}
	} else {
		// STARTTLS, typically port 587
		c, err := smtp.Dial(addr)
		if err != nil {
			return fmt.Errorf("smtp dial: %w", err)
		}
		client = c
		if err = client.StartTLS(tlsconfig); err != nil {
			client.Close()
			return fmt.Errorf("starttls: %w", err)
		}
	}
	defer client.Quit()

	if err := client.Auth(auth); err != nil {
		return fmt.Errorf("smtp auth: %w", err)
	}
	if err := client.Mail(s.cfg.SMTPFrom); err != nil {
		return fmt.Errorf("mail from: %w", err)
	}
	for _, rcpt := range to {
		if err := client.Rcpt(rcpt); err != nil {
			return fmt.Errorf("rcpt to: %w", err)
		}
	}

	w, err := client.Data()
	if err != nil {
		return fmt.Errorf("data command: %w", err)
	}
	if _, err = w.Write(msg); err != nil {
		return fmt.Errorf("write message: %w", err)
	}
	if err = w.Close(); err != nil {
		return fmt.Errorf("close data: %w", err)
	}

	return nil
}
