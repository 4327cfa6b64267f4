// Package month содержит расчеты дат расчетных периодов подписки.
package month

import (
	"time"
)

// AddMonths прибавляет n месяцев к t, прижимая день к концу месяца:
// 31 января + 1 месяц дает 28 (29) февраля, а не 2 марта.
func AddMonths(t time.Time, n int) time.Time {
	year, mon, day := t.Date()
	first := time.Date(year, mon+time.Month(n), 1, t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), t.Location())
	if last := DaysIn(first); day > last {
		day = last
	}
	return first.AddDate(0, 0, day-1)
}

// DaysIn возвращает количество дней в месяце, которому принадлежит t.
func DaysIn(t time.Time) int {
	return time.Date(t.Year(), t.Month()+1, 0, 0, 0, 0, 0, t.Location()).Day()
}
