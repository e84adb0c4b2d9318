package email

import (
	"context"
	"fmt"
	"net/smtp"

	"library-backend/pkg/logger"
)

// OverdueNoticeData carries everything the overdue notice template needs.
type OverdueNoticeData struct {
	Email      string
	MemberName string
	BookTitle  string
	DueDate    string
}

type EmailService interface {
	SendOverdueNotice(ctx context.Context, data OverdueNoticeData) error
}

type smtpEmailService struct {
	smtpAddr string
	smtpFrom string
}

// NewSMTPEmailService builds the plain SMTP mailer. Pointed at a local
// mailcatcher in development, a relay in production.
func NewSMTPEmailService(smtpHost, smtpPort, from string) EmailService {
	return &smtpEmailService{
		smtpAddr: smtpHost + ":" + smtpPort,
		smtpFrom: from,
	}
}

func (s *smtpEmailService) SendOverdueNotice(ctx context.Context, data OverdueNoticeData) error {
	subject := "Library Book Overdue"
	body := fmt.Sprintf(`Dear %s,

Your loan for the book "%s" was due on %s and is now overdue.
Please return it as soon as possible.

Thank you,
The Library`, data.MemberName, data.BookTitle, data.DueDate)

	msg := []byte(fmt.Sprintf(
		"From: %s\r\nTo: %s\r\nSubject: %s\r\n\r\n%s",
		s.smtpFrom, data.Email, subject, body))

	if err := smtp.SendMail(s.smtpAddr, nil, s.smtpFrom, []string{data.Email}, msg); err != nil {
		logger.Info("Failed to send overdue notice", map[string]interface{}{
			"error":     err.Error(),
			"to":        data.Email,
			"smtp_addr": s.smtpAddr,
		})
		return fmt.Errorf("failed to send email: %w", err)
	}
	return nil
}
