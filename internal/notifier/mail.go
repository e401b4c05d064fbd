package notifier

import (
	"account-server/config"
	"account-server/internal/util"
	"fmt"
	"net/smtp"
	"strings"
)

// SMTPMailer отправляет письма через внешний SMTP-сервер.
// Ядро вызывает его только после коммита и не повторяет при ошибке.
type SMTPMailer struct {
	cfg  *config.MailConfig
	auth smtp.Auth
}

func NewSMTPMailer(cfg *config.MailConfig) *SMTPMailer {
	var auth smtp.Auth
	if cfg.Username != "" {
		auth = smtp.PlainAuth("", cfg.Username, cfg.Password, cfg.Host)
	}
	return &SMTPMailer{cfg: cfg, auth: auth}
}

func (m *SMTPMailer) From() string {
	return m.cfg.From
}

func (m *SMTPMailer) Send(toAddress, subject, textBody, htmlBody string) error {
	var msg strings.Builder
	msg.WriteString("From: " + m.cfg.From + "\r\n")
	msg.WriteString("To: " + toAddress + "\r\n")
	msg.WriteString("Subject: " + subject + "\r\n")
	msg.WriteString("MIME-Version: 1.0\r\n")
	if htmlBody != "" {
		msg.WriteString("Content-Type: text/html; charset=\"UTF-8\"\r\n\r\n")
		msg.WriteString(htmlBody)
	} else {
		msg.WriteString("Content-Type: text/plain; charset=\"UTF-8\"\r\n\r\n")
		msg.WriteString(textBody)
	}

	addr := fmt.Sprintf("%s:%s", m.cfg.Host, m.cfg.Port)
	if err := smtp.SendMail(addr, m.auth, m.cfg.From, []string{toAddress}, []byte(msg.String())); err != nil {
		return util.LogError("[Mailer] ошибка отправки письма", err)
	}
	return nil
}
