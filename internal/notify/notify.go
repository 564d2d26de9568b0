package notify

import (
	"context"
	"fmt"
	"sync"

	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"
)

// Message is one transactional mail request: recipient, dynamic template id,
// and template variables.
type Message struct {
	To         string
	TemplateID string
	Data       map[string]string
}

// Mailer delivers transactional mail. Dashboard notifications are
// best-effort: the router logs and counts failures but never surfaces them
// to the caller.
type Mailer interface {
	Send(ctx context.Context, m Message) error
}

// SendGridMailer implements Mailer using SendGrid dynamic templates.
type SendGridMailer struct {
	client    *sendgrid.Client
	fromEmail string
	fromName  string
}

func NewSendGridMailer(apiKey, fromEmail, fromName string) *SendGridMailer {
	return &SendGridMailer{
		client:    sendgrid.NewSendClient(apiKey),
		fromEmail: fromEmail,
		fromName:  fromName,
	}
}

func (s *SendGridMailer) Send(ctx context.Context, m Message) error {
	msg := mail.NewV3Mail()
	msg.SetFrom(mail.NewEmail(s.fromName, s.fromEmail))
	msg.SetTemplateID(m.TemplateID)

	p := mail.NewPersonalization()
	p.AddTos(mail.NewEmail("", m.To))
	for k, v := range m.Data {
		p.SetDynamicTemplateData(k, v)
	}
	msg.AddPersonalizations(p)

	resp, err := s.client.SendWithContext(ctx, msg)
	if err != nil {
		return err
	}
	if resp.StatusCode >= 400 {
		return fmt.Errorf("sendgrid: status %d: %s", resp.StatusCode, resp.Body)
	}
	return nil
}

// Recorder is a Mailer for tests: it records every message and returns the
// configured error.
type Recorder struct {
	mu   sync.Mutex
	Err  error
	sent []Message
}

func (r *Recorder) Send(ctx context.Context, m Message) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sent = append(r.sent, m)
	return r.Err
}

// Sent returns a copy of the recorded messages.
func (r *Recorder) Sent() []Message {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Message, len(r.sent))
	copy(out, r.sent)
	return out
}
