package email

import (
	"fmt"

	"github.com/sitepulse/attendance-backend-go/internal/config"

	"gopkg.in/gomail.v2"
)

// EmailService sends workflow notification mail.
type EmailService interface {
	SendLeaveDecision(to, employeeName, leaveType, fromDate, toDate, status string) error
}

type emailServiceImpl struct {
	cfg    config.SMTPConfig
	dialer *gomail.Dialer
}

// NewEmailService creates a new email service instance
func NewEmailService(cfg config.SMTPConfig) EmailService {
	return &emailServiceImpl{
		cfg:    cfg,
		dialer: gomail.NewDialer(cfg.Host, cfg.Port, cfg.Username, cfg.Password),
	}
}

func (s *emailServiceImpl) SendLeaveDecision(to, employeeName, leaveType, fromDate, toDate, status string) error {
	m := gomail.NewMessage()
	m.SetHeader("From", s.cfg.From)
	m.SetHeader("To", to)
	m.SetHeader("Subject", fmt.Sprintf("Leave request %s", status))
	m.SetBody("text/plain", fmt.Sprintf(
		"Hi %s,\n\nYour %s leave request for %s to %s has been %s.\n",
		employeeName, leaveType, fromDate, toDate, status,
	))

	if err := s.dialer.DialAndSend(m); err != nil {
		return fmt.Errorf("failed to send leave decision mail: %w", err)
	}
	return nil
}
