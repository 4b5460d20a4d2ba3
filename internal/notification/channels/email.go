package channels

import (
	"context"
	"fmt"
	"net"
	"strings"
	"time"

	"github.com/y0shih/AlertMe-Nest/internal/notification/dispatch"
	"github.com/y0shih/AlertMe-Nest/platform/config"

	gomail "github.com/wneessen/go-mail"
)

const smtpTimeout = 15 * time.Second

// EmailSink delivers notifications over SMTP.
type EmailSink struct {
	host      string
	port      int
	username  string
	password  string
	fromName  string
	fromEmail string
}

func NewEmailSink(cfg config.SMTPConfig) *EmailSink {
	return &EmailSink{
		host:      cfg.GetSMTPHost(),
		port:      cfg.GetSMTPPort(),
		username:  cfg.GetSMTPUsername(),
		password:  cfg.GetSMTPPassword(),
		fromName:  cfg.GetEmailFromName(),
		fromEmail: cfg.GetEmailFromAddress(),
	}
}

func (s *EmailSink) Name() string { return NameEmail }

func (s *EmailSink) Send(ctx context.Context, to dispatch.Recipient, p dispatch.Payload) error {
	if strings.TrimSpace(to.Email) == "" {
		return ErrNoAddress
	}

	msg, err := s.buildMessage(to, p)
	if err != nil {
		return err
	}

	opts := []gomail.Option{
		gomail.WithPort(s.port),
		gomail.WithTLSPortPolicy(gomail.TLSOpportunistic),
		gomail.WithTimeout(smtpTimeout),
		gomail.WithDialContextFunc(func(dctx context.Context, _ string, addr string) (net.Conn, error) {
			return (&net.Dialer{}).DialContext(dctx, "tcp4", addr)
		}),
	}
	if s.username != "" {
		opts = append(opts,
			gomail.WithSMTPAuth(gomail.SMTPAuthPlain),
			gomail.WithUsername(s.username),
			gomail.WithPassword(s.password),
		)
	}

	client, err := gomail.NewClient(s.host, opts...)
	if err != nil {
		return fmt.Errorf("smtp client: %w", err)
	}
	if err := client.DialAndSendWithContext(ctx, msg); err != nil {
		return fmt.Errorf("smtp send: %w", err)
	}
	return nil
}

func (s *EmailSink) buildMessage(to dispatch.Recipient, p dispatch.Payload) (*gomail.Msg, error) {
	content := render(p)

	msg := gomail.NewMsg()
	if err := msg.FromFormat(s.fromName, s.fromEmail); err != nil {
		return nil, fmt.Errorf("smtp from: %w", err)
	}
	if err := msg.To(to.Email); err != nil {
		return nil, fmt.Errorf("smtp to: %w", err)
	}
	msg.Subject(content.Title)
	if p.Priority == dispatch.PriorityHigh {
		msg.SetImportance(gomail.ImportanceHigh)
	}
	msg.SetBodyString(gomail.TypeTextPlain, emailBody(to, content))
	return msg, nil
}

func emailBody(to dispatch.Recipient, content message) string {
	greeting := "Hello"
	if to.Username != "" {
		greeting = "Hello " + to.Username
	}
	return fmt.Sprintf("%s,\n\n%s\n", greeting, content.Body)
}
