package notifications

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/sendgrid/sendgrid-go"
	sgmail "github.com/sendgrid/sendgrid-go/helpers/mail"
)

// Notifier delivers a notification over one channel.
type Notifier interface {
	Notify(ctx context.Context, n Notification) error
}

// LogNotifier writes notifications to the structured log.
type LogNotifier struct{}

func (LogNotifier) Notify(_ context.Context, n Notification) error {
	slog.Info("notification", "type", n.Type, "subject", n.Subject, "message", n.Message)
	return nil
}

// WebhookNotifier POSTs notifications as JSON.
type WebhookNotifier struct {
	url    string
	client *http.Client
}

// NewWebhookNotifier creates a notifier for the given endpoint.
func NewWebhookNotifier(url string) *WebhookNotifier {
	return &WebhookNotifier{
		url: url,
		client: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

func (wn *WebhookNotifier) Notify(ctx context.Context, n Notification) error {
	payload, err := json.Marshal(n)
	if err != nil {
		return fmt.Errorf("marshalling notification: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, wn.url, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("creating webhook request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := wn.client.Do(req)
	if err != nil {
		return fmt.Errorf("sending webhook: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return fmt.Errorf("webhook returned status %d", resp.StatusCode)
	}
	return nil
}

var (
	sendgridHost     = "https://api.sendgrid.com"
	sendgridEndpoint = "/v3/mail/send"
)

// SendgridNotifier e-mails notifications to the teacher.
type SendgridNotifier struct {
	key        string
	host       string
	from       *sgmail.Email
	to         *sgmail.Email
	subjPrefix string
}

// NewSendgridNotifier creates an e-mail notifier. appName prefixes subjects.
func NewSendgridNotifier(key, appName, fromEmail, toName, toEmail string) *SendgridNotifier {
	return &SendgridNotifier{
		key:        key,
		host:       sendgridHost,
		from:       sgmail.NewEmail(appName, fromEmail),
		to:         sgmail.NewEmail(toName, toEmail),
		subjPrefix: "[" + appName + "] ",
	}
}

func (sn *SendgridNotifier) prepare(n Notification) *sgmail.SGMailV3 {
	p := sgmail.NewPersonalization()
	p.Subject = sn.subjPrefix + n.Subject
	p.AddTos(sn.to)

	m := sgmail.NewV3Mail()
	m.SetFrom(sn.from)
	m.AddPersonalizations(p)
	m.AddContent(sgmail.NewContent("text/plain", n.Message))
	return m
}

func (sn *SendgridNotifier) Notify(_ context.Context, n Notification) error {
	req := sendgrid.GetRequest(sn.key, sendgridEndpoint, sn.host)
	req.Method = http.MethodPost
	req.Body = sgmail.GetRequestBody(sn.prepare(n))

	res, err := sendgrid.API(req)
	if err != nil {
		return fmt.Errorf("sending email: %w", err)
	}
	if res.StatusCode >= http.StatusBadRequest {
		return fmt.Errorf("sendgrid returned status %d: %s", res.StatusCode, res.Body)
	}
	return nil
}
