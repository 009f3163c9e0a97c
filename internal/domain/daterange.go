package domain

import (
	"strings"
	"time"
)

const dateLayout = "2006-01-02"

// DateRange - полуоткрытый интервал времени [From, To)
type DateRange struct {
	From time.Time `json:"from"`
	To   time.Time `json:"to"`
}

// ParseDateRange разбирает границы диапазона.
// Принимает даты вида YYYY-MM-DD (UTC) или RFC3339.
// Дата без времени в правой границе включается целиком: диапазон заканчивается началом следующего дня.
func ParseDateRange(from, to string) (DateRange, error) {
	start, _, err := parseBound(from)
	if err != nil {
		return DateRange{}, err
	}
	end, dateOnly, err := parseBound(to)
	if err != nil {
		return DateRange{}, err
	}
	if dateOnly {
		end = end.AddDate(0, 0, 1)
	}

	r := DateRange{From: start, To: end}
	if err := r.Validate(); err != nil {
		return DateRange{}, err
	}
	return r, nil
}

func parseBound(s string) (time.Time, bool, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false, ErrInvalidDateRange
	}
	if t, err := time.ParseInLocation(dateLayout, s, time.UTC); err == nil {
		return t, true, nil
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}, false, ErrInvalidDateRange
	}
	return t.UTC(), false, nil
}

// Validate проверяет, что правая граница строго позже левой
func (r DateRange) Validate() error {
	if r.From.IsZero() || r.To.IsZero() || !r.To.After(r.From) {
		return ErrInvalidDateRange
	}
	return nil
}

// Overlaps проверяет пересечение с интервалом [start, end).
// end == nil означает открытый интервал без окончания.
func (r DateRange) Overlaps(start time.Time, end *time.Time) bool {
	if !start.Before(r.To) {
		return false
	}
	if end == nil {
		return true
	}
	return end.After(r.From)
}

// Contains проверяет, попадает ли момент t в диапазон
func (r DateRange) Contains(t time.Time) bool {
	return !t.Before(r.From) && t.Before(r.To)
}

// Duration возвращает длину диапазона
func (r DateRange) Duration() time.Duration {
	return r.To.Sub(r.From)
}
