package service

import (
	"context"
	"os"
	"strings"
	"testing"
	"time"

	"signal_monitor/internal/models"
	"signal_monitor/pkg/logger"

	"github.com/pkg/errors"
)

func TestMain(m *testing.M) {
	if err := logger.Init(); err != nil {
		panic(err)
	}
	os.Exit(m.Run())
}

type fakeChannel struct {
	name    string
	enabled bool
	fail    bool
	sent    int
}

func (f *fakeChannel) Name() string { return f.name }

func (f *fakeChannel) Enabled(_ *models.NotificationSettings) bool { return f.enabled }

func (f *fakeChannel) Send(_ context.Context, _ *models.NotificationSettings, _ models.Notification) error {
	f.sent++
	if f.fail {
		return errors.New("webhook rejected")
	}
	return nil
}

func premiumSettings() *models.NotificationSettings {
	return &models.NotificationSettings{
		UserID:      "user-1",
		Tier:        models.TierPremium,
		EntryAlerts: true,
	}
}

func entryNotification() models.Notification {
	return models.Notification{Type: models.SignalEntry, Asset: "AAPL", Price: 105}
}

func TestDispatch_ChannelFailureIsIsolated(t *testing.T) {
	broken := &fakeChannel{name: "discord", enabled: true, fail: true}
	healthy := &fakeChannel{name: "telegram", enabled: true}
	f := NewFanout([]Channel{broken, healthy}, time.Second)

	f.Dispatch(context.Background(), premiumSettings(), entryNotification())

	if broken.sent != 1 || healthy.sent != 1 {
		t.Fatalf("a failing channel must not block siblings: broken=%d healthy=%d", broken.sent, healthy.sent)
	}
}

func TestDispatch_DisabledChannelIsSkipped(t *testing.T) {
	off := &fakeChannel{name: "email", enabled: false}
	on := &fakeChannel{name: "telegram", enabled: true}
	f := NewFanout([]Channel{off, on}, time.Second)

	f.Dispatch(context.Background(), premiumSettings(), entryNotification())

	if off.sent != 0 {
		t.Fatalf("disabled channel must not be called")
	}
	if on.sent != 1 {
		t.Fatalf("enabled channel must be called once, got %d", on.sent)
	}
}

func TestDispatch_FreeTierGetsNoNotifications(t *testing.T) {
	ch := &fakeChannel{name: "telegram", enabled: true}
	f := NewFanout([]Channel{ch}, time.Second)

	s := premiumSettings()
	s.Tier = models.TierFree
	f.Dispatch(context.Background(), s, entryNotification())

	if ch.sent != 0 {
		t.Fatalf("free tier must produce no fan-out, got %d sends", ch.sent)
	}
}

func TestDispatch_SignalTypeToggleRespected(t *testing.T) {
	ch := &fakeChannel{name: "telegram", enabled: true}
	f := NewFanout([]Channel{ch}, time.Second)

	s := premiumSettings()
	s.EntryAlerts = false
	f.Dispatch(context.Background(), s, entryNotification())

	if ch.sent != 0 {
		t.Fatalf("disabled signal type must produce no fan-out, got %d sends", ch.sent)
	}
}

func TestBuildMessage_MentionsAssetPriceAndConditions(t *testing.T) {
	msg := BuildMessage(models.Notification{
		Type:       models.SignalEntry,
		Asset:      "AAPL",
		Price:      105.5,
		Conditions: []string{"RSI(14) 25.00 < 30.00"},
		Confidence: 1,
	})

	for _, want := range []string{"AAPL", "105.50", "RSI(14)", "ENTRY"} {
		if !strings.Contains(msg, want) {
			t.Fatalf("message must contain %q, got:\n%s", want, msg)
		}
	}
}
