package service

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"strings"

	"signal_monitor/internal/models"

	"github.com/bytedance/sonic"
	"github.com/pkg/errors"
)

// EmailChannel — тонкая обёртка над transactional-API: один POST,
// механика доставки на стороне провайдера.
type EmailChannel struct {
	http   *http.Client
	apiURL string
	apiKey string
	from   string
}

func NewEmailChannel(apiURL, apiKey, from string) *EmailChannel {
	return &EmailChannel{
		http:   &http.Client{},
		apiURL: apiURL,
		apiKey: apiKey,
		from:   from,
	}
}

func (e *EmailChannel) Name() string { return "email" }

func (e *EmailChannel) Enabled(s *models.NotificationSettings) bool {
	return e.apiURL != "" && s.EmailEnabled && s.Email != ""
}

type emailPayload struct {
	From    string `json:"from"`
	To      string `json:"to"`
	Subject string `json:"subject"`
	Text    string `json:"text"`
}

func (e *EmailChannel) Send(ctx context.Context, s *models.NotificationSettings, n models.Notification) error {
	subject := fmt.Sprintf("%s signal: %s", strings.ToUpper(string(n.Type)), n.Asset)
	body, err := sonic.Marshal(emailPayload{
		From:    e.from,
		To:      s.Email,
		Subject: subject,
		Text:    BuildMessage(n),
	})
	if err != nil {
		return errors.Wrap(err, "marshal email payload")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, e.apiURL, bytes.NewReader(body))
	if err != nil {
		return errors.Wrap(err, "build email request")
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+e.apiKey)

	resp, err := e.http.Do(req)
	if err != nil {
		return errors.Wrap(err, "post email api")
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode >= 300 {
		return errors.Errorf("email api: unexpected status %d", resp.StatusCode)
	}
	return nil
}
