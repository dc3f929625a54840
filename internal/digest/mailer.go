package digest

import (
	"crypto/tls"
	"fmt"
	"mime"
	"net/smtp"
	"strings"
)

// MailConfig is the SMTP endpoint and envelope for digest delivery.
type MailConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	From     string
	To       []string
	UseSSL   bool // implicit TLS on connect; otherwise STARTTLS
}

// SendHTML delivers one HTML-bodied message to all recipients.
func SendHTML(cfg MailConfig, subject string, htmlBody []byte) error {
	if cfg.Host == "" || cfg.User == "" || cfg.Password == "" || cfg.From == "" {
		return fmt.Errorf("mail config incomplete: need host, user, password and from")
	}
	if len(cfg.To) == 0 {
		return fmt.Errorf("no recipients configured")
	}

	addr := fmt.Sprintf("%s:%d", cfg.Host, cfg.Port)
	client, err := dial(cfg, addr)
	if err != nil {
		return fmt.Errorf("smtp connect %s: %w", addr, err)
	}
	defer client.Close()

	auth := smtp.PlainAuth("", cfg.User, cfg.Password, cfg.Host)
	if err := client.Auth(auth); err != nil {
		return fmt.Errorf("smtp auth: %w", err)
	}
	if err := client.Mail(cfg.From); err != nil {
		return fmt.Errorf("smtp mail from: %w", err)
	}
	for _, rcpt := range cfg.To {
		if err := client.Rcpt(rcpt); err != nil {
			return fmt.Errorf("smtp rcpt %s: %w", rcpt, err)
		}
	}
	w, err := client.Data()
	if err != nil {
		return fmt.Errorf("smtp data: %w", err)
	}
	if _, err := w.Write(message(cfg, subject, htmlBody)); err != nil {
		w.Close()
		return fmt.Errorf("smtp write: %w", err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("smtp close data: %w", err)
	}
	return client.Quit()
}

func dial(cfg MailConfig, addr string) (*smtp.Client, error) {
	if cfg.UseSSL {
		conn, err := tls.Dial("tcp", addr, &tls.Config{ServerName: cfg.Host})
		if err != nil {
			return nil, err
		}
		return smtp.NewClient(conn, cfg.Host)
	}

	client, err := smtp.Dial(addr)
	if err != nil {
		return nil, err
	}
	if err := client.StartTLS(&tls.Config{ServerName: cfg.Host}); err != nil {
		client.Close()
		return nil, err
	}
	return client, nil
}

// message assembles the RFC 5322 payload. The subject carries Chinese text,
// so it goes out as an encoded word.
func message(cfg MailConfig, subject string, htmlBody []byte) []byte {
	var b strings.Builder
	b.WriteString("From: " + cfg.From + "\r\n")
	b.WriteString("To: " + strings.Join(cfg.To, ", ") + "\r\n")
	b.WriteString("Subject: " + mime.QEncoding.Encode("utf-8", subject) + "\r\n")
	b.WriteString("MIME-Version: 1.0\r\n")
	b.WriteString("Content-Type: text/html; charset=utf-8\r\n")
	b.WriteString("\r\n")
	b.Write(htmlBody)
	return []byte(b.String())
}
