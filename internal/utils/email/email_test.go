package email

import (
	"errors"
	"io"
	"net/smtp"
	"testing"
	"time"

	"github.com/Dan9191/balance-service/internal/config"
	"github.com/Dan9191/balance-service/internal/models"
	"github.com/jordan-wright/email"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestSender(send sendFunc) *Sender {
	log := logrus.New()
	log.SetOutput(io.Discard)

	s := NewSender(&config.Config{
		SMTPHost:    "smtp.example.com",
		SMTPPort:    "2525",
		SenderEmail: "reports@example.com",
	}, log)
	s.send = send
	return s
}

func TestSendDebtDigest(t *testing.T) {
	var (
		sent     *email.Email
		sentAddr string
		sentAuth smtp.Auth
	)
	s := newTestSender(func(e *email.Email, addr string, auth smtp.Auth) error {
		sent, sentAddr, sentAuth = e, addr, auth
		return nil
	})

	name := "Acme"
	digest := []models.MaxDebtResult{
		{CustomerID: 1, DisplayName: &name, Date: "2023-01-03", Balance: decimal.RequireFromString("3000")},
	}
	at := time.Date(2023, 2, 1, 7, 0, 0, 0, time.UTC)

	require.NoError(t, s.SendDebtDigest([]string{"ops@example.com"}, digest, at))
	require.NotNil(t, sent)
	assert.Equal(t, "smtp.example.com:2525", sentAddr)
	assert.Nil(t, sentAuth)
	assert.Equal(t, "reports@example.com", sent.From)
	assert.Equal(t, []string{"ops@example.com"}, sent.To)
	assert.Equal(t, "Customer Debt Digest 2023-02-01", sent.Subject)
	assert.Contains(t, string(sent.Text), "#1 Acme: 3000.00 on 2023-01-03")
}

func TestSendDebtDigestErrors(t *testing.T) {
	s := newTestSender(func(*email.Email, string, smtp.Auth) error {
		return errors.New("connection refused")
	})

	err := s.SendDebtDigest(nil, nil, time.Now())
	require.Error(t, err)

	err = s.SendDebtDigest([]string{"ops@example.com"}, nil, time.Now())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "connection refused")
}

func TestDigestBodyEmpty(t *testing.T) {
	body := DigestBody(nil, time.Date(2023, 2, 1, 7, 0, 0, 0, time.UTC))
	assert.Contains(t, body, "No customer has ledger activity.")
}

func TestDigestBodyUnnamedCustomer(t *testing.T) {
	body := DigestBody([]models.MaxDebtResult{
		{CustomerID: 9, Date: "2023-05-01", Balance: decimal.RequireFromString("75.5")},
	}, time.Now())
	assert.Contains(t, body, "#9 (unnamed): 75.50 on 2023-05-01")
}
