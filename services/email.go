package services

import (
	"context"
	"fmt"
	"net/smtp"
	"os"
)

// EmailSender delivers verification codes. Delivery is a collaborator of
// the verification flow, not part of it; swap implementations freely.
type EmailSender interface {
	SendVerificationEmail(ctx context.Context, to, code string) error
}

// SMTPSender sends through a plain SMTP submission endpoint.
type SMTPSender struct {
	Host     string
	Port     string
	From     string
	Password string
}

func NewSMTPSenderFromEnv() *SMTPSender {
	host := os.Getenv("SMTP_HOST")
	if host == "" {
		host = "smtp.gmail.com"
	}
	port := os.Getenv("SMTP_PORT")
	if port == "" {
		port = "587"
	}
	return &SMTPSender{
		Host:     host,
		Port:     port,
		From:     os.Getenv("EMAIL"),
		Password: os.Getenv("EMAIL_PASSWORD"),
	}
}

func (s *SMTPSender) SendVerificationEmail(_ context.Context, to, code string) error {
	msg := fmt.Sprintf(
		"From: %s\r\nTo: %s\r\nSubject: Email Verification Code\r\nMIME-Version: 1.0\r\nContent-Type: text/html; charset=\"utf-8\"\r\n\r\n"+
			"<p>Hello! Here's your verification code to complete your login:</p>"+
			"<h2>%s</h2>"+
			"<p>This code will expire in 5 minutes. If you didn't request this code, please ignore this email.</p>\r\n",
		s.From, to, code,
	)

	auth := smtp.PlainAuth("", s.From, s.Password, s.Host)
	addr := s.Host + ":" + s.Port
	if err := smtp.SendMail(addr, auth, s.From, []string{to}, []byte(msg)); err != nil {
		return fmt.Errorf("send verification email: %w", err)
	}
	return nil
}
