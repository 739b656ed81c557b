package services

import (
	"fmt"

	"games-ticketing-platform/internal/models"

	"go.uber.org/zap"
)

// EmailService sends transactional mail to ticket buyers
type EmailService interface {
	SendReceipt(user *models.User, payment *models.Payment, tickets []*models.Ticket) error
}

// LogEmailService is an email service that writes the message to the log
// instead of an SMTP relay. Used in development and test environments.
type LogEmailService struct {
	fromEmail string
	fromName  string
	logger    *zap.Logger
}

// NewLogEmailService creates a log-backed email service
func NewLogEmailService(fromEmail, fromName string, logger *zap.Logger) *LogEmailService {
	return &LogEmailService{
		fromEmail: fromEmail,
		fromName:  fromName,
		logger:    logger,
	}
}

// SendReceipt logs a purchase receipt for the given payment
func (s *LogEmailService) SendReceipt(user *models.User, payment *models.Payment, tickets []*models.Ticket) error {
	subject := fmt.Sprintf("Your order confirmation (%s)", payment.Reference)

	keys := make([]string, 0, len(tickets))
	for _, t := range tickets {
		keys = append(keys, t.FinalKey)
	}

	s.logger.Info("receipt email",
		zap.String("from", fmt.Sprintf("%s <%s>", s.fromName, s.fromEmail)),
		zap.String("to", user.Email),
		zap.String("subject", subject),
		zap.Float64("amount", payment.AmountInCurrency()),
		zap.Int("ticket_count", len(tickets)),
		zap.Strings("ticket_keys", keys))

	return nil
}
