package service

import (
	"bytes"
	"context"
	"net/http"

	"signal_monitor/internal/models"

	"github.com/bytedance/sonic"
	"github.com/pkg/errors"
)

type DiscordChannel struct {
	http *http.Client
}

func NewDiscordChannel() *DiscordChannel {
	return &DiscordChannel{http: &http.Client{}}
}

func (d *DiscordChannel) Name() string { return "discord" }

func (d *DiscordChannel) Enabled(s *models.NotificationSettings) bool {
	return s.DiscordEnabled && s.DiscordWebhookURL != ""
}

type discordPayload struct {
	Content string `json:"content"`
}

func (d *DiscordChannel) Send(ctx context.Context, s *models.NotificationSettings, n models.Notification) error {
	body, err := sonic.Marshal(discordPayload{Content: BuildMessage(n)})
	if err != nil {
		return errors.Wrap(err, "marshal discord payload")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.DiscordWebhookURL, bytes.NewReader(body))
	if err != nil {
		return errors.Wrap(err, "build discord request")
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := d.http.Do(req)
	if err != nil {
		return errors.Wrap(err, "post discord webhook")
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode >= 300 {
		return errors.Errorf("discord webhook: unexpected status %d", resp.StatusCode)
	}
	return nil
}
