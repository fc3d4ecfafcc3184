package service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/spec-kit/teamchat-service/internal/events"
)

const resendEndpoint = "https://api.resend.com/emails"

// Mailer delivers invite emails through the Resend HTTP API. With no
// API key configured it logs the invite link instead, which is the
// local development mode.
type Mailer struct {
	apiKey string
	from   string
	appURL string
	client *http.Client
	logger *zap.Logger
}

// NewMailer constructs the mailer.
func NewMailer(apiKey, from, appURL string, logger *zap.Logger) *Mailer {
	return &Mailer{
		apiKey: apiKey,
		from:   from,
		appURL: appURL,
		client: &http.Client{Timeout: 10 * time.Second},
		logger: logger,
	}
}

type resendRequest struct {
	From    string   `json:"from"`
	To      []string `json:"to"`
	Subject string   `json:"subject"`
	HTML    string   `json:"html"`
}

// SendInvite delivers the invitation email.
func (m *Mailer) SendInvite(ctx context.Context, payload events.InviteCreatedPayload) error {
	link := fmt.Sprintf("%s/invites/%s", m.appURL, payload.Token)

	if m.apiKey == "" {
		m.logger.Info("mail delivery skipped, no api key",
			zap.String("email", payload.Email),
			zap.String("invite_link", link))
		return nil
	}

	body := resendRequest{
		From:    m.from,
		To:      []string{payload.Email},
		Subject: fmt.Sprintf("%s invited you to %s", payload.InviterName, payload.WorkspaceName),
		HTML: fmt.Sprintf(
			"<p>%s invited you to join <strong>%s</strong> as %s.</p><p><a href=%q>Accept the invitation</a></p>",
			payload.InviterName, payload.WorkspaceName, payload.Role, link),
	}
	raw, err := json.Marshal(body)
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, resendEndpoint, bytes.NewReader(raw))
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+m.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := m.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return fmt.Errorf("resend returned status %d", resp.StatusCode)
	}
	return nil
}
