package usecases

import (
	"context"
	"fmt"

	"github.com/wneessen/go-mail"
)

const activationEmailSubject = "Ativação de Conta"

const activationEmailBody = `<div style="font-family: Arial, sans-serif; padding: 10px;">
  <h2>Bem-vindo à nossa plataforma!</h2>
  <p>Use o código abaixo para ativar sua conta:</p>
  <h3 style="color: #007bff;">%s</h3>
</div>`

// SMTPConfig holds outbound mail options
type SMTPConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
}

// SMTPMailer delivers activation emails over SMTP
type SMTPMailer struct {
	cfg    SMTPConfig
	logger Logger
}

var _ Mailer = (*SMTPMailer)(nil)

func NewSMTPMailer(cfg SMTPConfig, logger Logger) *SMTPMailer {
	if logger == nil {
		logger = defLogger{}
	}
	return &SMTPMailer{
		cfg:    cfg,
		logger: logger,
	}
}

func (m *SMTPMailer) SendActivationEmail(ctx context.Context, to, code string) error {
	msg := mail.NewMsg()
	if err := msg.From(m.cfg.From); err != nil {
		return err
	}
	if err := msg.To(to); err != nil {
		return err
	}
	msg.Subject(activationEmailSubject)
	msg.SetBodyString(mail.TypeTextHTML, fmt.Sprintf(activationEmailBody, code))

	client, err := mail.NewClient(
		m.cfg.Host,
		mail.WithPort(m.cfg.Port),
		mail.WithSMTPAuth(mail.SMTPAuthPlain),
		mail.WithUsername(m.cfg.Username),
		mail.WithPassword(m.cfg.Password),
	)
	if err != nil {
		return err
	}

	m.logger.Debug("sending activation email", "to", to)

	return client.DialAndSendWithContext(ctx, msg)
}
