package service

import (
	"fmt"

	"signal_monitor/internal/models"
)

const (
	rsiOverboughtMin = 60.0
	rsiOversoldMax   = 40.0
)

// ValidationResult — рекомендательный итог: findings отдаются форме,
// сохранение никогда не блокируется на этой стороне.
type ValidationResult struct {
	IsValid     bool     `json:"is_valid"`
	Errors      []string `json:"errors"`
	Warnings    []string `json:"warnings"`
	Suggestions []string `json:"suggestions"`
}

type Validator struct{}

func NewValidator() *Validator { return &Validator{} }

// Validate — статическая проверка деревьев правил на этапе сохранения
// стратегии, в горячем пути мониторинга не участвует.
func (v *Validator) Validate(entry, exit []models.RuleGroup) ValidationResult {
	res := ValidationResult{
		Errors:      []string{},
		Warnings:    []string{},
		Suggestions: []string{},
	}

	if !hasNonEmptyGroup(entry) {
		res.Errors = append(res.Errors,
			"strategy has no non-empty entry rule group and can never emit an entry signal")
	}

	v.validateSet(&res, "entry", entry)
	v.validateSet(&res, "exit", exit)

	// кросс-консистентность: вход по перепроданности без комплементарного
	// выхода по перекупленности
	if hasRSIThreshold(entry, oversold) && hasNonEmptyGroup(exit) && !hasRSIThreshold(exit, overbought) {
		res.Suggestions = append(res.Suggestions,
			"entry uses an oversold RSI condition but exit has no complementary overbought RSI condition")
	}

	res.IsValid = len(res.Errors) == 0
	return res
}

func (v *Validator) validateSet(res *ValidationResult, label string, groups []models.RuleGroup) {
	for i, g := range groups {
		name := fmt.Sprintf("%s group %d", label, i+1)

		if len(g.Inequalities) == 0 {
			res.Errors = append(res.Errors, fmt.Sprintf("%s has no conditions", name))
			continue
		}
		if g.RequiredConditions < 1 {
			res.Errors = append(res.Errors,
				fmt.Sprintf("%s requires fewer than one condition", name))
		}

		if g.Logic == models.LogicOR {
			switch {
			case g.RequiredConditions > len(g.Inequalities):
				res.Errors = append(res.Errors, fmt.Sprintf(
					"%s is unsatisfiable: requires %d of %d conditions",
					name, g.RequiredConditions, len(g.Inequalities)))
			case g.RequiredConditions == len(g.Inequalities):
				res.Warnings = append(res.Warnings, fmt.Sprintf(
					"%s requires all of its %d conditions and degenerates to an AND group",
					name, len(g.Inequalities)))
			}
			if len(g.Inequalities) == 1 {
				res.Suggestions = append(res.Suggestions, fmt.Sprintf(
					"%s has a single condition; OR groups are meaningful with two or more", name))
			}
		}

		over := groupHasRSIThreshold(g, overbought)
		under := groupHasRSIThreshold(g, oversold)
		if over && under {
			if g.Logic == models.LogicAND {
				res.Errors = append(res.Errors, fmt.Sprintf(
					"%s contains contradictory RSI conditions (overbought and oversold cannot hold simultaneously)",
					name))
			} else {
				res.Warnings = append(res.Warnings, fmt.Sprintf(
					"%s mixes overbought and oversold RSI conditions; satisfiable under OR but likely unintended",
					name))
			}
		}

		if label == "entry" && groupHasRSIAbove(g, 70) {
			res.Warnings = append(res.Warnings, fmt.Sprintf(
				"%s enters on RSI > 70 (overbought); for oversold entries consider RSI < 30", name))
		}
		if label == "exit" && groupHasRSIBelow(g, 30) {
			res.Warnings = append(res.Warnings, fmt.Sprintf(
				"%s exits on RSI < 30 and risks missing the recovery", name))
		}

		for _, iq := range g.Inequalities {
			if iq.Condition == models.CondEqual || iq.Condition == models.CondNotEqual {
				res.Warnings = append(res.Warnings, fmt.Sprintf(
					"%s compares floating-point values with %s; exact equality rarely matches live prices",
					name, iq.Condition))
			}
		}
	}
}

type rsiStyle int

const (
	overbought rsiStyle = iota
	oversold
)

func hasNonEmptyGroup(groups []models.RuleGroup) bool {
	for _, g := range groups {
		if len(g.Inequalities) > 0 {
			return true
		}
	}
	return false
}

func hasRSIThreshold(groups []models.RuleGroup, style rsiStyle) bool {
	for _, g := range groups {
		if groupHasRSIThreshold(g, style) {
			return true
		}
	}
	return false
}

func groupHasRSIThreshold(g models.RuleGroup, style rsiStyle) bool {
	for _, iq := range g.Inequalities {
		value, cond, ok := rsiThreshold(iq)
		if !ok {
			continue
		}
		greater := cond == models.CondGreaterThan || cond == models.CondGreaterThanOrEqual
		less := cond == models.CondLessThan || cond == models.CondLessThanOrEqual
		if style == overbought && greater && value >= rsiOverboughtMin {
			return true
		}
		if style == oversold && less && value <= rsiOversoldMax {
			return true
		}
	}
	return false
}

func groupHasRSIAbove(g models.RuleGroup, threshold float64) bool {
	for _, iq := range g.Inequalities {
		value, cond, ok := rsiThreshold(iq)
		if ok && value >= threshold &&
			(cond == models.CondGreaterThan || cond == models.CondGreaterThanOrEqual) {
			return true
		}
	}
	return false
}

func groupHasRSIBelow(g models.RuleGroup, threshold float64) bool {
	for _, iq := range g.Inequalities {
		value, cond, ok := rsiThreshold(iq)
		if ok && value <= threshold &&
			(cond == models.CondLessThan || cond == models.CondLessThanOrEqual) {
			return true
		}
	}
	return false
}

// rsiThreshold распознаёт "RSI(x) <op> VALUE" и зеркальную запись
// "VALUE <op> RSI(x)", нормализуя последнюю к виду слева-RSI.
func rsiThreshold(iq models.Inequality) (float64, models.Condition, bool) {
	if iq.Left.Kind == models.OperandIndicator && iq.Left.Indicator == "RSI" &&
		iq.Right.Kind == models.OperandValue {
		return iq.Right.Value, iq.Condition, true
	}
	if iq.Right.Kind == models.OperandIndicator && iq.Right.Indicator == "RSI" &&
		iq.Left.Kind == models.OperandValue {
		return iq.Left.Value, flip(iq.Condition), true
	}
	return 0, "", false
}

func flip(c models.Condition) models.Condition {
	switch c {
	case models.CondGreaterThan:
		return models.CondLessThan
	case models.CondLessThan:
		return models.CondGreaterThan
	case models.CondGreaterThanOrEqual:
		return models.CondLessThanOrEqual
	case models.CondLessThanOrEqual:
		return models.CondGreaterThanOrEqual
	}
	return c
}
