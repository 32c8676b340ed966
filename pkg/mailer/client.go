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

	"github.com/ordena-app/ordena-backend/pkg/config"
)

const sendEndpoint = "https://api.sendgrid.com/v3/mail/send"

// Sender is the outbound notification capability injected into every component
// that emits mail. Send delivers one message to the joined recipient list and
// reports failure as an error, never a panic.
type Sender interface {
	Send(ctx context.Context, from string, to []string, subject, body string) error
}

// Client talks to the SendGrid v3 REST API.
type Client struct {
	apiKey      string
	defaultFrom string
	http        *http.Client
}

// New builds a SendGrid-backed mail client.
func New(cfg config.SendgridConfig) (*Client, error) {
	if strings.TrimSpace(cfg.APIKey) == "" {
		return nil, errors.New("sendgrid api key is required")
	}
	return &Client{
		apiKey:      cfg.APIKey,
		defaultFrom: cfg.DefaultFrom,
		http:        &http.Client{Timeout: 10 * time.Second},
	}, nil
}

// DefaultFrom returns the configured platform sender address.
func (c *Client) DefaultFrom() string {
	return c.defaultFrom
}

type address struct {
	Email string `json:"email"`
}

type personalization struct {
	To []address `json:"to"`
}

type sendRequest struct {
	Personalizations []personalization `json:"personalizations"`
	From             address           `json:"from"`
	Subject          string            `json:"subject"`
	Content          []contentPart     `json:"content"`
}

type contentPart struct {
	Type  string `json:"type"`
	Value string `json:"value"`
}

// Send delivers one message to every address in to as a single API call.
func (c *Client) Send(ctx context.Context, from string, to []string, subject, body string) error {
	recipients := make([]address, 0, len(to))
	for _, addr := range to {
		if trimmed := strings.TrimSpace(addr); trimmed != "" {
			recipients = append(recipients, address{Email: trimmed})
		}
	}
	if len(recipients) == 0 {
		return errors.New("no recipients")
	}
	if strings.TrimSpace(from) == "" {
		from = c.defaultFrom
	}

	payload := sendRequest{
		Personalizations: []personalization{{To: recipients}},
		From:             address{Email: from},
		Subject:          subject,
		Content:          []contentPart{{Type: "text/html", Value: body}},
	}

	raw, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("encode mail payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, sendEndpoint, bytes.NewReader(raw))
	if err != nil {
		return fmt.Errorf("build mail request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("send mail: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("sendgrid returned %d: %s", resp.StatusCode, strings.TrimSpace(string(detail)))
	}
	return nil
}
