package mailer

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/giglane/giglane-backend/pkg/config"
)

// Sender is the fire-and-forget email surface. Callers log failures and
// never let them affect the state transition that triggered the email.
type Sender interface {
	Send(ctx context.Context, to, subject, html string) error
}

type httpSender struct {
	client  *http.Client
	apiKey  string
	from    string
	sendURL string
}

type sendBody struct {
	To      string `json:"to"`
	Subject string `json:"subject"`
	Body    string `json:"body"`
	From    string `json:"from,omitempty"`
}

// New builds the HTTP mailer from config.
func New(cfg config.MailerConfig) (Sender, error) {
	if strings.TrimSpace(cfg.APIKey) == "" {
		return nil, errors.New("mailer api key is required")
	}
	return &httpSender{
		client:  &http.Client{Timeout: 10 * time.Second},
		apiKey:  cfg.APIKey,
		from:    cfg.From,
		sendURL: cfg.SendURL,
	}, nil
}

func (s *httpSender) Send(ctx context.Context, to, subject, html string) error {
	payload, err := json.Marshal(sendBody{
		To:      to,
		Subject: subject,
		Body:    html,
		From:    s.from,
	})
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.sendURL, bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+s.apiKey)

	resp, err := s.client.Do(req)
	if err != nil {
		return err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		if len(b) > 0 {
			return fmt.Errorf("mail send failed: status=%d body=%s", resp.StatusCode, strings.TrimSpace(string(b)))
		}
		return fmt.Errorf("mail send failed: status=%d", resp.StatusCode)
	}
	return nil
}

type noopSender struct{}

// NewNoop returns a sender that drops every email. Used when the mailer is
// not configured and in tests.
func NewNoop() Sender {
	return noopSender{}
}

func (noopSender) Send(ctx context.Context, to, subject, html string) error {
	return nil
}
