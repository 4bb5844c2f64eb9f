package service

import "time"

// MarketOpen — будни 9:30–16:00 по Нью-Йорку. Автоматические прогоны вне
// этих часов коротко замыкаются; manual-триггер гейт обходит.
func MarketOpen(t time.Time) bool {
	ny, err := time.LoadLocation("America/New_York")
	if err != nil {
		return false
	}
	t = t.In(ny)

	switch t.Weekday() {
	case time.Saturday, time.Sunday:
		return false
	}

	mins := t.Hour()*60 + t.Minute()
	return mins >= 9*60+30 && mins < 16*60
}
