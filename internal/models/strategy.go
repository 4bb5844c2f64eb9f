package models

import "time"

type Timeframe string

const (
	Timeframe1m      Timeframe = "1m"
	Timeframe5m      Timeframe = "5m"
	Timeframe15m     Timeframe = "15m"
	Timeframe30m     Timeframe = "30m"
	Timeframe1h      Timeframe = "1h"
	Timeframe4h      Timeframe = "4h"
	TimeframeDaily   Timeframe = "Daily"
	TimeframeWeekly  Timeframe = "Weekly"
	TimeframeMonthly Timeframe = "Monthly"
)

type RuleLogic string

const (
	LogicAND RuleLogic = "AND"
	LogicOR  RuleLogic = "OR"
)

// Condition — восемь именованных сравнений. CROSSES_* требуют два
// последовательных сэмпла и не сводятся к статическим порогам.
type Condition string

const (
	CondGreaterThan        Condition = "GREATER_THAN"
	CondLessThan           Condition = "LESS_THAN"
	CondGreaterThanOrEqual Condition = "GREATER_THAN_OR_EQUAL"
	CondLessThanOrEqual    Condition = "LESS_THAN_OR_EQUAL"
	CondEqual              Condition = "EQUAL"
	CondNotEqual           Condition = "NOT_EQUAL"
	CondCrossesAbove       Condition = "CROSSES_ABOVE"
	CondCrossesBelow       Condition = "CROSSES_BELOW"
)

func (c Condition) IsCross() bool {
	return c == CondCrossesAbove || c == CondCrossesBelow
}

type OperandKind string

const (
	OperandPrice     OperandKind = "PRICE"
	OperandIndicator OperandKind = "INDICATOR"
	OperandValue     OperandKind = "VALUE"
)

type PriceField string

const (
	PriceOpen  PriceField = "OPEN"
	PriceHigh  PriceField = "HIGH"
	PriceLow   PriceField = "LOW"
	PriceClose PriceField = "CLOSE"
)

// Operand — дискриминируется по Kind, остальные поля по смыслу Kind.
type Operand struct {
	Kind      OperandKind `json:"kind"`
	Field     PriceField  `json:"field,omitempty"`     // PRICE
	Indicator string      `json:"indicator,omitempty"` // INDICATOR: "RSI", "SMA", "EMA"
	Params    []float64   `json:"params,omitempty"`    // INDICATOR: например период
	Value     float64     `json:"value,omitempty"`     // VALUE
}

type Inequality struct {
	Left      Operand   `json:"left"`
	Condition Condition `json:"condition"`
	Right     Operand   `json:"right"`
}

type RuleGroup struct {
	ID                 string       `json:"id"`
	Logic              RuleLogic    `json:"logic"`
	RequiredConditions int          `json:"required_conditions"`
	Inequalities       []Inequality `json:"inequalities"`
}

// Strategy — сигналы её переживают: редактирование стратегии не трогает
// уже записанные сигналы.
type Strategy struct {
	ID         string      `json:"id"`
	OwnerID    string      `json:"owner_id"`
	Symbol     string      `json:"symbol"`
	Active     bool        `json:"active"`
	Timeframe  Timeframe   `json:"timeframe"`
	EntryRules []RuleGroup `json:"entry_rules"`
	ExitRules  []RuleGroup `json:"exit_rules"`
	CreatedAt  time.Time   `json:"created_at"`
	UpdatedAt  time.Time   `json:"updated_at"`
}
