package service

import (
	"fmt"

	"signal_monitor/internal/models"
)

// Result — итог оценки рул-сета по одному сэмплу.
type Result struct {
	ShouldEmit bool
	// человекочитаемые строки сработавших условий — для аудита и
	// уведомлений, на управление потоком не влияют
	Matched    []string
	Confidence float64
}

type Evaluator struct{}

func NewEvaluator() *Evaluator { return &Evaluator{} }

// Evaluate: группы внутри рул-сета объединяются по OR — достаточно одной
// сработавшей. Внутри группы условия комбинируются по её Logic и порогу
// RequiredConditions (для AND порог — все). Порог буквальный: OR-группа
// с RequiredConditions больше числа условий невыполнима и молча
// пропускается, в AND её не превращаем. RequiredConditions < 1 читаем
// как 1: порог "ноль из n" эмитил бы сигнал на любом сэмпле.
// CROSSES_* требуют prev; без prev такие условия дают false. Пустая
// группа и пустой список групп не срабатывают никогда.
func (e *Evaluator) Evaluate(groups []models.RuleGroup, cur Sample, prev *Sample) Result {
	res := Result{}

	for _, g := range groups {
		if len(g.Inequalities) == 0 {
			continue
		}

		required := g.RequiredConditions
		if g.Logic == models.LogicAND {
			required = len(g.Inequalities)
		}
		if required < 1 {
			required = 1
		}
		if required > len(g.Inequalities) {
			continue
		}

		trueCount := 0
		matched := make([]string, 0, len(g.Inequalities))
		for _, iq := range g.Inequalities {
			ok, desc := evalInequality(iq, cur, prev)
			if ok {
				trueCount++
				matched = append(matched, desc)
			}
		}

		if trueCount >= required {
			res.ShouldEmit = true
			res.Matched = append(res.Matched, matched...)
			if c := float64(trueCount) / float64(len(g.Inequalities)); c > res.Confidence {
				res.Confidence = c
			}
		}
	}

	return res
}

func evalInequality(iq models.Inequality, cur Sample, prev *Sample) (bool, string) {
	curL, okL := resolve(iq.Left, cur)
	curR, okR := resolve(iq.Right, cur)
	if !okL || !okR {
		return false, ""
	}

	if iq.Condition.IsCross() {
		// переход через уровень — нужен прошлый сэмпл обеих сторон;
		// "уже выше" кроссом не является
		if prev == nil {
			return false, ""
		}
		prevL, okPL := resolve(iq.Left, *prev)
		prevR, okPR := resolve(iq.Right, *prev)
		if !okPL || !okPR {
			return false, ""
		}

		var crossed bool
		var verb string
		switch iq.Condition {
		case models.CondCrossesAbove:
			crossed = prevL <= prevR && curL > curR
			verb = "crossed above"
		case models.CondCrossesBelow:
			crossed = prevL >= prevR && curL < curR
			verb = "crossed below"
		}
		if !crossed {
			return false, ""
		}
		return true, fmt.Sprintf("%s %.2f %s %s %.2f",
			operandLabel(iq.Left), curL, verb, operandLabel(iq.Right), curR)
	}

	var ok bool
	switch iq.Condition {
	case models.CondGreaterThan:
		ok = curL > curR
	case models.CondLessThan:
		ok = curL < curR
	case models.CondGreaterThanOrEqual:
		ok = curL >= curR
	case models.CondLessThanOrEqual:
		ok = curL <= curR
	case models.CondEqual:
		// точное IEEE-сравнение, без epsilon; валидатор предупреждает
		ok = curL == curR
	case models.CondNotEqual:
		ok = curL != curR
	}
	if !ok {
		return false, ""
	}
	return true, fmt.Sprintf("%s %.2f %s %.2f",
		operandLabel(iq.Left), curL, condSymbol(iq.Condition), curR)
}

func resolve(op models.Operand, s Sample) (float64, bool) {
	switch op.Kind {
	case models.OperandPrice:
		switch op.Field {
		case models.PriceOpen:
			return s.Open, true
		case models.PriceHigh:
			return s.High, true
		case models.PriceLow:
			return s.Low, true
		case models.PriceClose:
			return s.Close, true
		}
		return 0, false
	case models.OperandIndicator:
		v, ok := s.Indicators[IndicatorKey(op.Indicator, op.Params)]
		return v, ok
	case models.OperandValue:
		return op.Value, true
	}
	return 0, false
}

func operandLabel(op models.Operand) string {
	switch op.Kind {
	case models.OperandPrice:
		return string(op.Field)
	case models.OperandIndicator:
		return IndicatorKey(op.Indicator, op.Params)
	default:
		return ""
	}
}

func condSymbol(c models.Condition) string {
	switch c {
	case models.CondGreaterThan:
		return ">"
	case models.CondLessThan:
		return "<"
	case models.CondGreaterThanOrEqual:
		return ">="
	case models.CondLessThanOrEqual:
		return "<="
	case models.CondEqual:
		return "="
	case models.CondNotEqual:
		return "!="
	}
	return string(c)
}
