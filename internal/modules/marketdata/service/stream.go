package service

import (
	"context"
	"time"

	"signal_monitor/internal/models"
	"signal_monitor/pkg/logger"

	"github.com/bytedance/sonic"
	"github.com/gorilla/websocket"
)

// SymbolSource отдаёт символы активных стратегий — им и греем кэш.
type SymbolSource interface {
	ActiveSymbols(ctx context.Context) ([]string, error)
}

// Stream — опциональный WS-фид котировок поверх того же кэша.
// Контрактный путь получения цены остаётся HTTP-фетч в Market.Quote.
type Stream struct {
	dialer *websocket.Dialer
	url    string
	market *Market
}

func NewStream(url string, market *Market) *Stream {
	return &Stream{
		dialer: &websocket.Dialer{},
		url:    url,
		market: market,
	}
}

type subscribeMsg struct {
	Op      string   `json:"op"`
	Symbols []string `json:"symbols"`
}

type streamTick struct {
	Symbol        string  `json:"symbol"`
	Price         float64 `json:"price"`
	Change        float64 `json:"change"`
	ChangePercent float64 `json:"changePercent"`
	Volume        float64 `json:"volume"`
	Timestamp     int64   `json:"timestamp"`
}

// Run держит подключение с реконнектом и бэкоффом до отмены ctx.
func (s *Stream) Run(ctx context.Context, symbols []string) {
	if len(symbols) == 0 {
		logger.Info("[STREAM] пустой список символов — стример не запущен")
		return
	}

	backoff := time.Second
	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		if err := s.runOnce(ctx, symbols); err != nil {
			logger.Error("[STREAM] соединение упало: %v, реконнект через %s", err, backoff)
		}

		select {
		case <-ctx.Done():
			return
		case <-time.After(backoff):
		}
		if backoff < 30*time.Second {
			backoff *= 2
		}
	}
}

func (s *Stream) runOnce(ctx context.Context, symbols []string) error {
	conn, _, err := s.dialer.DialContext(ctx, s.url, nil)
	if err != nil {
		return err
	}
	defer func() {
		_ = conn.Close()
	}()

	sub, err := sonic.Marshal(subscribeMsg{Op: "subscribe", Symbols: symbols})
	if err != nil {
		return err
	}
	if err := conn.WriteMessage(websocket.TextMessage, sub); err != nil {
		return err
	}

	logger.Info("[STREAM] подписка на %d символов", len(symbols))

	// вотчер живёт ровно столько же, сколько соединение, иначе
	// каждый реконнект оставлял бы по висящей горутине до shutdown
	done := make(chan struct{})
	defer close(done)
	go func() {
		select {
		case <-ctx.Done():
			_ = conn.Close()
		case <-done:
		}
	}()

	for {
		_, raw, err := conn.ReadMessage()
		if err != nil {
			return err
		}

		var tick streamTick
		if err := sonic.Unmarshal(raw, &tick); err != nil {
			logger.Error("[STREAM] не распарсился тик: %v", err)
			continue
		}
		if tick.Symbol == "" || tick.Price <= 0 {
			continue
		}

		s.market.Push(models.PriceSnapshot{
			Symbol:        tick.Symbol,
			Price:         tick.Price,
			Change:        tick.Change,
			ChangePercent: tick.ChangePercent,
			Volume:        tick.Volume,
			FetchedAt:     time.UnixMilli(tick.Timestamp),
		})
	}
}
