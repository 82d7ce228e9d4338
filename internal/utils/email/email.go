package email

import (
	"fmt"
	"net/smtp"
	"strings"
	"time"

	"github.com/Dan9191/balance-service/internal/config"
	"github.com/Dan9191/balance-service/internal/models"
	"github.com/jordan-wright/email"
	"github.com/sirupsen/logrus"
)

// sendFunc delivers a prepared message; replaced in tests
type sendFunc func(e *email.Email, addr string, auth smtp.Auth) error

// Sender handles sending emails via SMTP
type Sender struct {
	cfg    *config.Config
	logger *logrus.Logger
	send   sendFunc
}

// NewSender creates a new email sender
func NewSender(cfg *config.Config, logger *logrus.Logger) *Sender {
	return &Sender{
		cfg:    cfg,
		logger: logger,
		send: func(e *email.Email, addr string, auth smtp.Auth) error {
			return e.Send(addr, auth)
		},
	}
}

// SendDebtDigest emails the max debt of every customer to the recipients
func (s *Sender) SendDebtDigest(to []string, digest []models.MaxDebtResult, generatedAt time.Time) error {
	if len(to) == 0 {
		return fmt.Errorf("no digest recipients")
	}

	e := email.NewEmail()
	e.From = s.cfg.SenderEmail
	e.To = to
	e.Subject = fmt.Sprintf("Customer Debt Digest %s", generatedAt.Format(models.DateLayout))
	e.Text = []byte(DigestBody(digest, generatedAt))

	// Send email
	addr := fmt.Sprintf("%s:%s", s.cfg.SMTPHost, s.cfg.SMTPPort)
	var auth smtp.Auth
	if s.cfg.SMTPUsername != "" {
		auth = smtp.PlainAuth("", s.cfg.SMTPUsername, s.cfg.SMTPPassword, s.cfg.SMTPHost)
	}
	if err := s.send(e, addr, auth); err != nil {
		s.logger.Errorf("Failed to send debt digest to %s: %v", strings.Join(to, ", "), err)
		return fmt.Errorf("failed to send debt digest: %w", err)
	}

	s.logger.Infof("Email sent to %s: %s", strings.Join(to, ", "), e.Subject)
	return nil
}

// DigestBody formats the plain-text digest
func DigestBody(digest []models.MaxDebtResult, generatedAt time.Time) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Customer debt digest generated at %s.\n\n", generatedAt.Format("2006-01-02 15:04:05"))

	if len(digest) == 0 {
		b.WriteString("No customer has ledger activity.\n")
	} else {
		b.WriteString("Highest end-of-day balance per customer:\n\n")
		for i, d := range digest {
			customer := models.Customer{ID: d.CustomerID, DisplayName: d.DisplayName}
			name := customer.Name()
			if name == "" {
				name = "(unnamed)"
			}
			fmt.Fprintf(&b, "%3d. #%d %s: %s on %s\n", i+1, d.CustomerID, name, d.Balance.StringFixed(2), d.Date)
		}
	}

	b.WriteString("\nBest regards,\nBalance Service")
	return b.String()
}
