package email

import (
	"fmt"

	"gopkg.in/gomail.v2"

	"github.com/Zoemateus324/sosmecanicos-sub000/internal/config"
	"github.com/Zoemateus324/sosmecanicos-sub000/internal/logger"
)

// Provider sends transactional mail. All sends are best effort from the
// caller's point of view; domain writes never roll back on SMTP errors.
type Provider interface {
	SendWelcome(to, name string) error
	SendProposalAccepted(to, providerName string, totalValue float64, invoiceURL string) error
	SendPaymentReceipt(to string, amount float64, chargeID string) error
}

type SMTPProvider struct {
	dialer *gomail.Dialer
	from   string
}

func NewSMTPProvider(cfg *config.Config) *SMTPProvider {
	return &SMTPProvider{
		dialer: gomail.NewDialer(
			cfg.Email.SMTPHost,
			cfg.Email.SMTPPort,
			cfg.Email.SMTPUsername,
			cfg.Email.SMTPPassword,
		),
		from: fmt.Sprintf("%s <%s>", cfg.Email.FromName, cfg.Email.FromEmail),
	}
}

func (p *SMTPProvider) send(to, subject, htmlBody string) error {
	m := gomail.NewMessage()
	m.SetHeader("From", p.from)
	m.SetHeader("To", to)
	m.SetHeader("Subject", subject)
	m.SetBody("text/html", htmlBody)

	if err := p.dialer.DialAndSend(m); err != nil {
		logger.WithError(err).Error("email send failed", "to", to, "subject", subject)
		return err
	}
	return nil
}

func (p *SMTPProvider) SendWelcome(to, name string) error {
	body := fmt.Sprintf(`
		<h2>Bem-vindo ao SOS Mecânicos, %s!</h2>
		<p>Sua conta foi criada com sucesso. Cadastre seus veículos e
		solicite atendimento quando precisar.</p>`, name)
	return p.send(to, "Bem-vindo ao SOS Mecânicos", body)
}

func (p *SMTPProvider) SendProposalAccepted(to, providerName string, totalValue float64, invoiceURL string) error {
	body := fmt.Sprintf(`
		<h2>Proposta aceita</h2>
		<p>Você aceitou a proposta de %s no valor total de R$ %.2f.</p>
		<p><a href="%s">Clique aqui para efetuar o pagamento</a>.</p>`,
		providerName, totalValue, invoiceURL)
	return p.send(to, "Proposta aceita - pagamento pendente", body)
}

func (p *SMTPProvider) SendPaymentReceipt(to string, amount float64, chargeID string) error {
	body := fmt.Sprintf(`
		<h2>Pagamento confirmado</h2>
		<p>Recebemos seu pagamento de R$ %.2f.</p>
		<p>Código da transação: %s</p>`, amount, chargeID)
	return p.send(to, "Pagamento confirmado", body)
}

// NoopProvider is used when email is disabled in config.
type NoopProvider struct{}

func (NoopProvider) SendWelcome(string, string) error                           { return nil }
func (NoopProvider) SendProposalAccepted(string, string, float64, string) error { return nil }
func (NoopProvider) SendPaymentReceipt(string, float64, string) error           { return nil }

// NewProvider picks the SMTP or noop implementation based on config.
func NewProvider(cfg *config.Config) Provider {
	if !cfg.Email.Enabled {
		return NoopProvider{}
	}
	return NewSMTPProvider(cfg)
}
