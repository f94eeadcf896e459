// Package trdate formats and parses calendar days the way the UI shows
// them ("1 Haziran 2024") and the way statistics key them ("2024-06-01").
package trdate

import (
	"fmt"
	"time"
	_ "time/tzdata" // zone database for hosts without one
)

// KeyLayout is the layout of day keys and of <input type="date"> values.
const KeyLayout = "2006-01-02"

var months = [...]string{
	"Ocak", "Şubat", "Mart", "Nisan", "Mayıs", "Haziran",
	"Temmuz", "Ağustos", "Eylül", "Ekim", "Kasım", "Aralık",
}

var shortMonths = [...]string{
	"Oca", "Şub", "Mar", "Nis", "May", "Haz",
	"Tem", "Ağu", "Eyl", "Eki", "Kas", "Ara",
}

// Long renders t in loc as "1 Haziran 2024".
func Long(t time.Time, loc *time.Location) string {
	if t.IsZero() {
		return ""
	}
	t = t.In(loc)
	return fmt.Sprintf("%d %s %d", t.Day(), months[t.Month()-1], t.Year())
}

// Short renders t in loc as "1 Haz", used for chart labels.
func Short(t time.Time, loc *time.Location) string {
	t = t.In(loc)
	return fmt.Sprintf("%d %s", t.Day(), shortMonths[t.Month()-1])
}

// Key renders t in loc as "2024-06-01".
func Key(t time.Time, loc *time.Location) string {
	return t.In(loc).Format(KeyLayout)
}

// StartOfDay returns local midnight of the day containing t.
func StartOfDay(t time.Time, loc *time.Location) time.Time {
	t = t.In(loc)
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, loc)
}

// ParseDay parses "2024-06-01" as midnight in loc.
func ParseDay(s string, loc *time.Location) (time.Time, error) {
	return time.ParseInLocation(KeyLayout, s, loc)
}

// Keys returns days ordered keys ending with the day containing now.
func Keys(now time.Time, days int, loc *time.Location) []string {
	if days < 1 {
		return nil
	}
	today := StartOfDay(now, loc)
	out := make([]string, days)
	for i := 0; i < days; i++ {
		out[i] = today.AddDate(0, 0, i-(days-1)).Format(KeyLayout)
	}
	return out
}
