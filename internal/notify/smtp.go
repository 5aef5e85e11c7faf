// ABOUTME: SMTP lead notifier built on go-mail
// ABOUTME: Sends one plain-text message with fixed subject, sender, and recipient

package notify

import (
	"context"
	"fmt"

	"github.com/wneessen/go-mail"
)

// mailSender is the part of *mail.Client the notifier uses.
type mailSender interface {
	DialAndSendWithContext(ctx context.Context, messages ...*mail.Msg) error
}

// SMTPConfig holds transport and envelope settings.
type SMTPConfig struct {
	Host      string
	Port      int
	Username  string
	Password  string
	From      string
	To        string
	Subject   string
	TLSPolicy string // opportunistic, mandatory, none
}

// SMTPNotifier emails lead text to a single operator address.
type SMTPNotifier struct {
	cfg    SMTPConfig
	sender mailSender
}

// NewSMTPNotifier creates a notifier and its SMTP client. No connection is made
// until the first Notify.
func NewSMTPNotifier(cfg SMTPConfig) (*SMTPNotifier, error) {
	opts := []mail.Option{
		mail.WithPort(cfg.Port),
		mail.WithTLSPolicy(tlsPolicy(cfg.TLSPolicy)),
	}
	if cfg.Port == 465 {
		opts = append(opts, mail.WithSSL())
	}
	if cfg.Username != "" {
		opts = append(opts,
			mail.WithSMTPAuth(mail.SMTPAuthPlain),
			mail.WithUsername(cfg.Username),
			mail.WithPassword(cfg.Password),
		)
	}

	client, err := mail.NewClient(cfg.Host, opts...)
	if err != nil {
		return nil, fmt.Errorf("creating smtp client: %w", err)
	}
	return &SMTPNotifier{cfg: cfg, sender: client}, nil
}

func tlsPolicy(name string) mail.TLSPolicy {
	switch name {
	case "mandatory":
		return mail.TLSMandatory
	case "none":
		return mail.NoTLS
	default:
		return mail.TLSOpportunistic
	}
}

// Notify sends one message whose body is info.
func (n *SMTPNotifier) Notify(ctx context.Context, info string) error {
	msg, err := n.message(info)
	if err != nil {
		return err
	}
	if err := n.sender.DialAndSendWithContext(ctx, msg); err != nil {
		return fmt.Errorf("sending mail: %w", err)
	}
	return nil
}

func (n *SMTPNotifier) message(info string) (*mail.Msg, error) {
	msg := mail.NewMsg()
	if err := msg.From(n.cfg.From); err != nil {
		return nil, fmt.Errorf("setting sender %q: %w", n.cfg.From, err)
	}
	if err := msg.To(n.cfg.To); err != nil {
		return nil, fmt.Errorf("setting recipient %q: %w", n.cfg.To, err)
	}
	msg.Subject(n.cfg.Subject)
	msg.SetBodyString(mail.TypeTextPlain, info)
	return msg, nil
}
