package models

import "time"

type SignalType string

const (
	SignalEntry      SignalType = "entry"
	SignalExit       SignalType = "exit"
	SignalStopLoss   SignalType = "stop_loss"
	SignalTakeProfit SignalType = "take_profit"
)

// Signal неизменяем после создания, кроме перехода Processed false→true.
type Signal struct {
	ID                string     `json:"id"`
	StrategyID        string     `json:"strategy_id"`
	Type              SignalType `json:"type"`
	Asset             string     `json:"asset"`
	Price             float64    `json:"price"`
	MatchedConditions []string   `json:"matched_conditions"`
	Confidence        float64    `json:"confidence"`
	CreatedAt         time.Time  `json:"created_at"`
	Processed         bool       `json:"processed"`
}
