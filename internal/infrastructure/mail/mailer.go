// Package mail sends transactional email through an HTTP provider API.
package mail

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/mail"
	"strings"
	"time"

	"github.com/bizdesk/backend/internal/infrastructure/config"
	"github.com/tidwall/gjson"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// ErrInvalidMessage is returned before anything is sent
var ErrInvalidMessage = errors.New("invalid email message")

type Attachment struct {
	Filename    string `json:"filename"`
	ContentType string `json:"content_type,omitempty"`
	// Path is a URL the provider downloads the attachment from
	Path string `json:"path"`
}

type Message struct {
	To          []string
	ReplyTo     string
	Subject     string
	HTML        string
	Text        string
	Attachments []Attachment
	Tags        map[string]string
}

// Validate checks addresses and that there is something to send
func (m *Message) Validate() error {
	if len(m.To) == 0 {
		return fmt.Errorf("%w: no recipient", ErrInvalidMessage)
	}
	for _, to := range m.To {
		if _, err := mail.ParseAddress(to); err != nil {
			return fmt.Errorf("%w: bad recipient %q", ErrInvalidMessage, to)
		}
	}
	if m.ReplyTo != "" {
		if _, err := mail.ParseAddress(m.ReplyTo); err != nil {
			return fmt.Errorf("%w: bad reply-to %q", ErrInvalidMessage, m.ReplyTo)
		}
	}
	if strings.TrimSpace(m.Subject) == "" {
		return fmt.Errorf("%w: subject is required", ErrInvalidMessage)
	}
	if m.HTML == "" && m.Text == "" {
		return fmt.Errorf("%w: body is required", ErrInvalidMessage)
	}
	return nil
}

// Receipt is what the provider acknowledged
type Receipt struct {
	ID       string
	Provider string
}

type Mailer interface {
	Send(ctx context.Context, msg *Message) (*Receipt, error)
}

// NewMailer returns the HTTP provider when enabled, otherwise a LogMailer
func NewMailer(cfg config.MailConfig, logger *zap.Logger) Mailer {
	if logger == nil {
		logger = zap.NewNop()
	}
	if !cfg.Enabled {
		return NewLogMailer(cfg.From, logger)
	}
	return NewHTTPMailer(cfg, logger)
}

// HTTPMailer posts JSON to a Resend style endpoint with a bearer key
type HTTPMailer struct {
	endpoint   string
	apiKey     string
	from       string
	httpClient *http.Client
	limiter    *rate.Limiter
	logger     *zap.Logger
}

func NewHTTPMailer(cfg config.MailConfig, logger *zap.Logger) *HTTPMailer {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &HTTPMailer{
		endpoint:   cfg.Endpoint,
		apiKey:     cfg.APIKey,
		from:       cfg.From,
		httpClient: &http.Client{Timeout: timeout},
		// providers typically allow a handful of requests per second
		limiter: rate.NewLimiter(rate.Limit(5), 5),
		logger:  logger,
	}
}

type sendRequest struct {
	From        string            `json:"from"`
	To          []string          `json:"to"`
	ReplyTo     string            `json:"reply_to,omitempty"`
	Subject     string            `json:"subject"`
	HTML        string            `json:"html,omitempty"`
	Text        string            `json:"text,omitempty"`
	Attachments []Attachment      `json:"attachments,omitempty"`
	Tags        map[string]string `json:"tags,omitempty"`
}

func (m *HTTPMailer) Send(ctx context.Context, msg *Message) (*Receipt, error) {
	if err := msg.Validate(); err != nil {
		return nil, err
	}
	if err := m.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("mail rate limit: %w", err)
	}

	payload, err := json.Marshal(sendRequest{
		From:        m.from,
		To:          msg.To,
		ReplyTo:     msg.ReplyTo,
		Subject:     msg.Subject,
		HTML:        msg.HTML,
		Text:        msg.Text,
		Attachments: msg.Attachments,
		Tags:        msg.Tags,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal email: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, m.endpoint, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+m.apiKey)

	resp, err := m.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("mail provider request failed: %w", err)
	}
	defer resp.Body.Close()
	body, _ := io.ReadAll(io.LimitReader(resp.Body, 1<<20))

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		msg := gjson.GetBytes(body, "message").String()
		if msg == "" {
			msg = strings.TrimSpace(string(body))
		}
		return nil, fmt.Errorf("mail provider returned status %d: %s", resp.StatusCode, msg)
	}

	receipt := &Receipt{ID: gjson.GetBytes(body, "id").String(), Provider: "http"}
	m.logger.Info("Email sent",
		zap.Strings("to", msg.To),
		zap.String("subject", msg.Subject),
		zap.String("message_id", receipt.ID))
	return receipt, nil
}

// LogMailer only logs; used when mail is disabled
type LogMailer struct {
	from   string
	logger *zap.Logger
}

func NewLogMailer(from string, logger *zap.Logger) *LogMailer {
	return &LogMailer{from: from, logger: logger}
}

func (m *LogMailer) Send(_ context.Context, msg *Message) (*Receipt, error) {
	if err := msg.Validate(); err != nil {
		return nil, err
	}
	m.logger.Info("Email not sent, mail is disabled",
		zap.String("from", m.from),
		zap.Strings("to", msg.To),
		zap.String("subject", msg.Subject),
		zap.Int("attachments", len(msg.Attachments)))
	return &Receipt{Provider: "log"}, nil
}

// ObservedMailer reports the outcome of every send, labelled with the
// message's "type" tag
type ObservedMailer struct {
	next    Mailer
	observe func(template string, err error)
}

func Observe(next Mailer, observe func(template string, err error)) *ObservedMailer {
	return &ObservedMailer{next: next, observe: observe}
}

func (m *ObservedMailer) Send(ctx context.Context, msg *Message) (*Receipt, error) {
	receipt, err := m.next.Send(ctx, msg)
	template := "unknown"
	if t := msg.Tags["type"]; t != "" {
		template = t
	}
	m.observe(template, err)
	return receipt, err
}

var (
	_ Mailer = (*HTTPMailer)(nil)
	_ Mailer = (*LogMailer)(nil)
	_ Mailer = (*ObservedMailer)(nil)
)
