package mailer

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"
)

// Mailer delivers a single plain-text message.
type Mailer interface {
	Send(ctx context.Context, from string, to []string, subject, body string) error
}

// HTTPMailer posts messages to a JSON mail relay.
type HTTPMailer struct {
	Endpoint  string
	AccessKey string
	Client    *http.Client
}

func NewHTTPMailer(endpoint, accessKey string) *HTTPMailer {
	return &HTTPMailer{
		Endpoint:  endpoint,
		AccessKey: accessKey,
		Client:    &http.Client{Timeout: 15 * time.Second},
	}
}

type httpMailRequest struct {
	From    string   `json:"from"`
	To      []string `json:"to"`
	Subject string   `json:"subject"`
	Body    string   `json:"body"`
}

func (m *HTTPMailer) Send(ctx context.Context, from string, to []string, subject, body string) error {
	b, err := json.Marshal(httpMailRequest{From: from, To: to, Subject: subject, Body: body})
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, m.Endpoint+"/messages", bytes.NewReader(b))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	if m.AccessKey != "" {
		req.Header.Set("Authorization", "Bearer "+m.AccessKey)
	}

	client := m.Client
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		return errors.New("mail relay send failed: " + resp.Status)
	}
	return nil
}

// Noop discards every message; used when no relay is configured.
type Noop struct{}

func (Noop) Send(context.Context, string, []string, string, string) error {
	return nil
}
