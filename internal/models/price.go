package models

import "time"

// PriceSnapshot живёт не дольше TTL кэша; никуда не персистится,
// кроме цены внутри порождённого сигнала.
type PriceSnapshot struct {
	Symbol        string    `json:"symbol"`
	Price         float64   `json:"price"`
	Change        float64   `json:"change"`
	ChangePercent float64   `json:"change_percent"`
	Volume        float64   `json:"volume"`
	FetchedAt     time.Time `json:"fetched_at"`
	Cached        bool      `json:"cached"`
}
