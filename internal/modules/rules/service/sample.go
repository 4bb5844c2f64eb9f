package service

import (
	"fmt"
	"strconv"
	"strings"

	"signal_monitor/internal/models"
)

// Sample — один срез рынка, по которому считается дерево правил.
// Для live-котировки OHLC схлопывается в последнюю цену.
type Sample struct {
	Open   float64
	High   float64
	Low    float64
	Close  float64
	Volume float64

	// значения индикаторов по каноническому ключу, см. IndicatorKey
	Indicators map[string]float64
}

// IndicatorKey — канонический ключ вида "RSI(14)" / "SMA(20)".
func IndicatorKey(name string, params []float64) string {
	if len(params) == 0 {
		return strings.ToUpper(name)
	}
	parts := make([]string, 0, len(params))
	for _, p := range params {
		parts = append(parts, strconv.FormatFloat(p, 'f', -1, 64))
	}
	return fmt.Sprintf("%s(%s)", strings.ToUpper(name), strings.Join(parts, ","))
}

// BuildSample собирает сэмпл из истории close-цен: цена — последний элемент,
// индикаторы считаются только те, на которые ссылаются переданные рул-сеты.
// Недостаток истории просто оставляет индикатор отсутствующим в мапе —
// соответствующее неравенство при оценке даст false.
func BuildSample(closes []float64, volume float64, ruleSets ...[]models.RuleGroup) Sample {
	s := Sample{Indicators: make(map[string]float64)}
	if len(closes) == 0 {
		return s
	}

	price := closes[len(closes)-1]
	s.Open, s.High, s.Low, s.Close = price, price, price, price
	s.Volume = volume

	for _, set := range ruleSets {
		for _, g := range set {
			for _, iq := range g.Inequalities {
				collectIndicator(&s, iq.Left, closes)
				collectIndicator(&s, iq.Right, closes)
			}
		}
	}
	return s
}

func collectIndicator(s *Sample, op models.Operand, closes []float64) {
	if op.Kind != models.OperandIndicator {
		return
	}
	key := IndicatorKey(op.Indicator, op.Params)
	if _, done := s.Indicators[key]; done {
		return
	}

	period := 14
	if len(op.Params) > 0 && op.Params[0] > 0 {
		period = int(op.Params[0])
	}

	var (
		v  float64
		ok bool
	)
	switch strings.ToUpper(op.Indicator) {
	case "RSI":
		v, ok = RSI(closes, period)
	case "SMA":
		v, ok = SMA(closes, period)
	case "EMA":
		v, ok = EMA(closes, period)
	}
	if ok {
		s.Indicators[key] = v
	}
}
