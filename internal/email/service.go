// Package email sends customer notifications over SMTP.
package email

import (
	"fmt"
	"net"
	"net/smtp"

	"github.com/shopspring/decimal"
)

type Config struct {
	Host     string
	Port     string
	From     string
	Username string
	Password string
}

// sendFunc has the signature of smtp.SendMail.
type sendFunc func(addr string, a smtp.Auth, from string, to []string, msg []byte) error

// Service handles email sending via SMTP
type Service struct {
	cfg  Config
	auth smtp.Auth
	send sendFunc
}

// NewService uses PLAIN auth when a username is configured.
func NewService(cfg Config) *Service {
	s := &Service{cfg: cfg, send: smtp.SendMail}
	if cfg.Username != "" {
		s.auth = smtp.PlainAuth("", cfg.Username, cfg.Password, cfg.Host)
	}
	return s
}

// SendOrderConfirmation sends an order confirmation email
func (s *Service) SendOrderConfirmation(to, orderID string, total decimal.Decimal, items []OrderItem) error {
	subject := fmt.Sprintf("Order confirmation (order %s)", shortID(orderID))
	return s.deliver(to, subject, BuildOrderConfirmationBody(orderID, total, items))
}

func (s *Service) SendPaymentReceived(to, orderID string, amount decimal.Decimal, method string) error {
	subject := fmt.Sprintf("Payment received (order %s)", shortID(orderID))
	return s.deliver(to, subject, BuildPaymentReceivedBody(orderID, amount, method))
}

func (s *Service) SendOrderShipped(to, orderID, trackingNumber string) error {
	subject := fmt.Sprintf("Your order %s has shipped", shortID(orderID))
	return s.deliver(to, subject, BuildOrderShippedBody(orderID, trackingNumber))
}

func (s *Service) deliver(to, subject, body string) error {
	msg := fmt.Sprintf("From: %s\r\nTo: %s\r\nSubject: %s\r\nMIME-Version: 1.0\r\nContent-Type: text/html; charset=UTF-8\r\n\r\n%s",
		s.cfg.From, to, subject, body)
	addr := net.JoinHostPort(s.cfg.Host, s.cfg.Port)
	if err := s.send(addr, s.auth, s.cfg.From, []string{to}, []byte(msg)); err != nil {
		return fmt.Errorf("send mail to %s: %w", to, err)
	}
	return nil
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
