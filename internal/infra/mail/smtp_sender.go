package mail

import (
	"time"

	"budget_notification_engine/internal/infra/config"

	"github.com/sirupsen/logrus"
	"github.com/sony/gobreaker"
	"gopkg.in/gomail.v2"
)

// SMTPSender delivers notification emails over SMTP. A circuit breaker wraps
// every send so a dead mail server fails fast instead of stalling dispatch;
// delivery stays best-effort either way.
type SMTPSender struct {
	dialer  *gomail.Dialer
	from    string
	breaker *gobreaker.CircuitBreaker
	logger  *logrus.Logger
}

func NewSMTPSender(cfg *config.AppConfig, logger *logrus.Logger) *SMTPSender {
	s := &SMTPSender{
		from:   cfg.SMTPFrom,
		logger: logger,
	}
	if cfg.SMTPHost != "" {
		s.dialer = gomail.NewDialer(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUser, cfg.SMTPPassword)
	}
	s.breaker = gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:    "smtp",
		Timeout: 30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 3
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.WithFields(logrus.Fields{
				"breaker": name,
				"from":    from.String(),
				"to":      to.String(),
			}).Warn("smtp circuit breaker state changed")
		},
	})
	return s
}

// IsConfigured reports whether delivery settings are present.
func (s *SMTPSender) IsConfigured() bool {
	return s.dialer != nil && s.from != ""
}

// Send delivers one HTML email through the breaker.
func (s *SMTPSender) Send(to, subject, htmlBody string) error {
	_, err := s.breaker.Execute(func() (interface{}, error) {
		m := gomail.NewMessage()
		m.SetHeader("From", s.from)
		m.SetHeader("To", to)
		m.SetHeader("Subject", subject)
		m.SetBody("text/html", htmlBody)
		return nil, s.dialer.DialAndSend(m)
	})
	return err
}
