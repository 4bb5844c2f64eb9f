package service

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"signal_monitor/internal/models"

	"github.com/bytedance/sonic"
	"github.com/pkg/errors"
)

// Fetcher — внешний источник котировок. Одна попытка, без ретраев:
// неудача возвращается вызывающему, тот пропускает стратегию до
// следующего прогона.
type Fetcher interface {
	Quote(ctx context.Context, symbol string) (models.PriceSnapshot, error)
}

type HTTPFetcher struct {
	http    *http.Client
	baseURL string
	apiKey  string
}

func NewHTTPFetcher(baseURL, apiKey string, timeout time.Duration) *HTTPFetcher {
	return &HTTPFetcher{
		http:    &http.Client{Timeout: timeout},
		baseURL: baseURL,
		apiKey:  apiKey,
	}
}

type quoteResponse struct {
	Symbol        string  `json:"symbol"`
	Price         float64 `json:"price"`
	Change        float64 `json:"change"`
	ChangePercent float64 `json:"changePercent"`
	Volume        float64 `json:"volume"`
	Timestamp     int64   `json:"timestamp"`
}

func (f *HTTPFetcher) Quote(ctx context.Context, symbol string) (models.PriceSnapshot, error) {
	u := fmt.Sprintf("%s/quote?symbol=%s", f.baseURL, url.QueryEscape(symbol))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return models.PriceSnapshot{}, errors.Wrap(err, "build quote request")
	}
	req.Header.Set("X-API-KEY", f.apiKey)

	resp, err := f.http.Do(req)
	if err != nil {
		return models.PriceSnapshot{}, errors.Wrapf(err, "fetch quote %s", symbol)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode != http.StatusOK {
		return models.PriceSnapshot{}, errors.Errorf("quote %s: unexpected status %d", symbol, resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return models.PriceSnapshot{}, errors.Wrap(err, "read quote body")
	}

	var q quoteResponse
	if err := sonic.Unmarshal(body, &q); err != nil {
		return models.PriceSnapshot{}, errors.Wrapf(err, "decode quote %s", symbol)
	}

	fetchedAt := time.Now()
	if q.Timestamp > 0 {
		fetchedAt = time.UnixMilli(q.Timestamp)
	}

	return models.PriceSnapshot{
		Symbol:        symbol,
		Price:         q.Price,
		Change:        q.Change,
		ChangePercent: q.ChangePercent,
		Volume:        q.Volume,
		FetchedAt:     fetchedAt,
	}, nil
}
