package mailer

import (
	"context"
	"fmt"
	"net/url"
	"sync"
	"time"

	"github.com/wneessen/go-mail"

	"github.com/greez/greez/pkg/logger"
)

//go:generate mockgen -destination=../mocks/mock_mailer.go -package=mocks github.com/greez/greez/pkg/mailer Mailer

// Mailer sends the transactional emails of the partner workflow
type Mailer interface {
	// SendPartnerInvitation sends the invitation link to a partner company
	SendPartnerInvitation(ctx context.Context, email, companyName, contactName, token string) error
	// SendMagicCode sends a sign-in code to a staff member
	SendMagicCode(ctx context.Context, email, code string) error
	// SendSubmissionConfirmed tells the partner their submission was confirmed by staff
	SendSubmissionConfirmed(ctx context.Context, email, companyName string, productCount int) error
}

// MagicCodeTTLMinutes is shown in the sign-in email
const MagicCodeTTLMinutes = 10

// Config holds the configuration for the mailer
type Config struct {
	SMTPHost     string
	SMTPPort     int
	SMTPUsername string
	SMTPPassword string
	FromEmail    string
	FromName     string
	// PartnerURL is the base URL of the partner portal, used in invitation links
	PartnerURL string
}

// InvitationURL builds the partner-facing link for an invitation token
func (c *Config) InvitationURL(token string) string {
	return fmt.Sprintf("%s/invitation?token=%s", c.PartnerURL, url.QueryEscape(token))
}

// SMTPMailer implements the Mailer interface using SMTP
type SMTPMailer struct {
	config   *Config
	logger   logger.Logger
	renderer *renderer
	testMode bool

	mu   sync.Mutex
	sent []*mail.Msg
}

// NewSMTPMailer creates a new SMTP mailer
func NewSMTPMailer(config *Config, log logger.Logger) *SMTPMailer {
	return &SMTPMailer{
		config:   config,
		logger:   log,
		renderer: newRenderer(),
	}
}

// NewTestSMTPMailer creates an SMTP mailer that builds messages but never connects
func NewTestSMTPMailer(config *Config, log logger.Logger) *SMTPMailer {
	m := NewSMTPMailer(config, log)
	m.testMode = true
	return m
}

func (m *SMTPMailer) SendPartnerInvitation(ctx context.Context, email, companyName, contactName, token string) error {
	return m.send(ctx, email, invitationTemplate, map[string]interface{}{
		"company_name":   companyName,
		"contact_name":   contactName,
		"invitation_url": m.config.InvitationURL(token),
	})
}

func (m *SMTPMailer) SendMagicCode(ctx context.Context, email, code string) error {
	return m.send(ctx, email, magicCodeTemplate, map[string]interface{}{
		"code":            code,
		"expires_minutes": MagicCodeTTLMinutes,
	})
}

func (m *SMTPMailer) SendSubmissionConfirmed(ctx context.Context, email, companyName string, productCount int) error {
	return m.send(ctx, email, submissionConfirmedTemplate, map[string]interface{}{
		"company_name":  companyName,
		"product_count": productCount,
	})
}

func (m *SMTPMailer) send(ctx context.Context, email string, tpl emailTemplate, data map[string]interface{}) error {
	rendered, err := m.renderer.render(ctx, tpl, data)
	if err != nil {
		return err
	}

	msg := mail.NewMsg(mail.WithNoDefaultUserAgent())

	if err := msg.FromFormat(m.config.FromName, m.config.FromEmail); err != nil {
		return fmt.Errorf("failed to set email from address: %w", err)
	}

	if err := msg.To(email); err != nil {
		return fmt.Errorf("failed to set email recipient: %w", err)
	}

	msg.Subject(rendered.Subject)
	msg.SetBodyString(mail.TypeTextHTML, rendered.HTML)
	msg.AddAlternativeString(mail.TypeTextPlain, rendered.Text)

	if m.testMode {
		m.mu.Lock()
		m.sent = append(m.sent, msg)
		m.mu.Unlock()

		m.logger.WithFields(map[string]interface{}{
			"to":      email,
			"subject": rendered.Subject,
		}).Info("Test mode: email not sent")
		return nil
	}

	client, err := m.createSMTPClient()
	if err != nil {
		return err
	}

	if err := client.DialAndSendWithContext(ctx, msg); err != nil {
		return fmt.Errorf("failed to send email to %s: %w", email, err)
	}

	return nil
}

// Sent returns the messages captured in test mode
func (m *SMTPMailer) Sent() []*mail.Msg {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make([]*mail.Msg, len(m.sent))
	copy(out, m.sent)
	return out
}

func (m *SMTPMailer) createSMTPClient() (*mail.Client, error) {
	clientOptions := []mail.Option{
		mail.WithPort(m.config.SMTPPort),
		mail.WithTLSPolicy(mail.TLSOpportunistic),
		mail.WithTimeout(10 * time.Second),
	}

	// unauthenticated relays are allowed (local relays, port 25)
	if m.config.SMTPUsername != "" && m.config.SMTPPassword != "" {
		clientOptions = append(clientOptions,
			mail.WithUsername(m.config.SMTPUsername),
			mail.WithPassword(m.config.SMTPPassword),
			mail.WithSMTPAuth(mail.SMTPAuthPlain),
		)
	}

	client, err := mail.NewClient(m.config.SMTPHost, clientOptions...)
	if err != nil {
		return nil, fmt.Errorf("failed to create SMTP client: %w", err)
	}

	return client, nil
}

// ConsoleMailer is a development implementation that only logs emails
type ConsoleMailer struct {
	config *Config
	logger logger.Logger
}

// NewConsoleMailer creates a new console mailer for development
func NewConsoleMailer(config *Config, log logger.Logger) *ConsoleMailer {
	return &ConsoleMailer{config: config, logger: log}
}

func (m *ConsoleMailer) SendPartnerInvitation(_ context.Context, email, companyName, contactName, token string) error {
	m.logger.WithFields(map[string]interface{}{
		"to":             email,
		"company_name":   companyName,
		"contact_name":   contactName,
		"invitation_url": m.config.InvitationURL(token),
	}).Info("Partner invitation email")
	return nil
}

func (m *ConsoleMailer) SendMagicCode(_ context.Context, email, code string) error {
	m.logger.WithFields(map[string]interface{}{
		"to":   email,
		"code": code,
	}).Info("Sign-in code email")
	return nil
}

func (m *ConsoleMailer) SendSubmissionConfirmed(_ context.Context, email, companyName string, productCount int) error {
	m.logger.WithFields(map[string]interface{}{
		"to":            email,
		"company_name":  companyName,
		"product_count": productCount,
	}).Info("Submission confirmed email")
	return nil
}
