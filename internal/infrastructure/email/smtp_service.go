package email

import (
	"context"
	"fmt"
	"net/smtp"

	"assetstore-backend/pkg/logger"
)

type VerificationEmailData struct {
	Email      string `json:"email"`
	VerifyLink string `json:"verify_link"`
	ExpiresIn  string `json:"expires_in"`
}

type ResetPasswordData struct {
	Email     string `json:"email"`
	Token     string `json:"token"`
	ExpiresIn string `json:"expires_in"`
}

type EmailService interface {
	SendVerificationEmail(ctx context.Context, data VerificationEmailData) error
	SendResetPasswordEmail(ctx context.Context, data ResetPasswordData) error
}

type smtpEmailService struct {
	smtpAddr string
	smtpFrom string
}

// NewSMTPEmailService talks to a plain SMTP relay (mailpit/mailhog in
// development).
func NewSMTPEmailService(smtpHost, smtpPort, from string) EmailService {
	return &smtpEmailService{
		smtpAddr: smtpHost + ":" + smtpPort,
		smtpFrom: from,
	}
}

func (s *smtpEmailService) SendVerificationEmail(ctx context.Context, data VerificationEmailData) error {
	subject := "Verify your AssetStore account"
	body := fmt.Sprintf(`Hi,

Please click the link below to verify your account:
%s

The link is valid for %s.

If you did not create this account, you can ignore this email.`, data.VerifyLink, data.ExpiresIn)

	if err := s.send(data.Email, subject, body); err != nil {
		logger.Info("Failed to send verification email", map[string]interface{}{
			"error":     err.Error(),
			"to":        data.Email,
			"smtp_addr": s.smtpAddr,
		})
		return fmt.Errorf("failed to send email: %w", err)
	}
	return nil
}

func (s *smtpEmailService) SendResetPasswordEmail(ctx context.Context, data ResetPasswordData) error {
	subject := "Reset your AssetStore password"
	body := fmt.Sprintf(`Hi,

Use the following token to reset your password:
%s

The token is valid for %s.

If you did not request a reset, you can ignore this email.`, data.Token, data.ExpiresIn)

	if err := s.send(data.Email, subject, body); err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}
	return nil
}

func (s *smtpEmailService) send(to, subject, body string) error {
	msg := []byte(fmt.Sprintf(
		"From: %s\r\nTo: %s\r\nSubject: %s\r\n\r\n%s",
		s.smtpFrom, to, subject, body))
	return smtp.SendMail(s.smtpAddr, nil, s.smtpFrom, []string{to}, msg)
}
