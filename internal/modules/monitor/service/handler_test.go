package service

import (
	"net/http/httptest"
	"strings"
	"testing"

	"signal_monitor/internal/models"
	rulesvc "signal_monitor/internal/modules/rules/service"

	"github.com/pkg/errors"
)

type brokenBody struct{}

func (brokenBody) Read([]byte) (int, error) { return 0, errors.New("unexpected EOF") }

func newHandlerFixture() (*Handler, *monitorFixture) {
	strategies := &fakeStrategies{list: []models.Strategy{
		testStrategy("s1", "AAPL", closeAbove(100), nil),
	}}
	prices := &fakePrices{
		snaps: map[string]models.PriceSnapshot{"AAPL": {Symbol: "AAPL", Price: 105}},
		hist:  map[string][]float64{"AAPL": {105}},
	}
	fx := newMonitorFixture(strategies, prices)
	return NewHandler(fx.monitor, rulesvc.NewValidator(), fx.signals), fx
}

func TestHandleRun_UnreadableBodyIsRejected(t *testing.T) {
	h, fx := newHandlerFixture()

	req := httptest.NewRequest("POST", "/api/monitor/run", brokenBody{})
	rr := httptest.NewRecorder()
	h.handleRun(rr, req)

	if rr.Code != 400 {
		t.Fatalf("truncated body must return 400, got %d", rr.Code)
	}
	if len(fx.signals.inserted) != 0 {
		t.Fatalf("monitor must not run on an unreadable request, got %d signals", len(fx.signals.inserted))
	}
}

func TestHandleRun_EmptyBodyDefaultsToCronTrigger(t *testing.T) {
	h, _ := newHandlerFixture()

	req := httptest.NewRequest("POST", "/api/monitor/run", nil)
	rr := httptest.NewRecorder()
	h.handleRun(rr, req)

	if rr.Code != 200 {
		t.Fatalf("empty body is a valid cron trigger, got %d", rr.Code)
	}
	if !strings.Contains(rr.Body.String(), "signalsGenerated") {
		t.Fatalf("response must carry the run summary, got %s", rr.Body.String())
	}
}

func TestHandleRun_MalformedBodyIsRejected(t *testing.T) {
	h, fx := newHandlerFixture()

	req := httptest.NewRequest("POST", "/api/monitor/run", strings.NewReader("{not json"))
	rr := httptest.NewRecorder()
	h.handleRun(rr, req)

	if rr.Code != 400 {
		t.Fatalf("malformed body must return 400, got %d", rr.Code)
	}
	if len(fx.signals.inserted) != 0 {
		t.Fatalf("monitor must not run on a malformed request")
	}
}
