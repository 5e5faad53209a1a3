package domain

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
)

var intervalUnits = map[string]time.Duration{
	"sec": time.Second, "secs": time.Second, "second": time.Second, "seconds": time.Second,
	"min": time.Minute, "mins": time.Minute, "minute": time.Minute, "minutes": time.Minute,
	"hour": time.Hour, "hours": time.Hour,
	"day": 24 * time.Hour, "days": 24 * time.Hour,
	"week": 7 * 24 * time.Hour, "weeks": 7 * 24 * time.Hour,
}

// ParseInterval aceita uma duração Go ("90s", "1m") ou uma expressão relativa
// como "+1 minute", "30 seconds" ou "+1 hour 30 minutes". Um inteiro puro é
// interpretado como segundos. O resultado precisa ser positivo.
func ParseInterval(expr string) (time.Duration, error) {
	s := strings.TrimSpace(strings.ToLower(expr))
	if s == "" {
		return 0, &ConfigurationError{Option: "interval", Reason: "empty expression"}
	}

	if d, err := time.ParseDuration(s); err == nil {
		return positiveInterval(expr, d)
	}
	if n, err := strconv.ParseInt(s, 10, 64); err == nil {
		d, err := scaleInterval(expr, n, time.Second)
		if err != nil {
			return 0, err
		}
		return positiveInterval(expr, d)
	}

	fields := strings.Fields(s)
	if len(fields)%2 != 0 {
		// "+1minute" sem espaço não é suportado
		return 0, &ConfigurationError{Option: "interval", Reason: fmt.Sprintf("cannot parse %q", expr)}
	}

	var total time.Duration
	for i := 0; i < len(fields); i += 2 {
		n, err := strconv.ParseInt(strings.TrimPrefix(fields[i], "+"), 10, 64)
		if err != nil || n < 0 {
			return 0, &ConfigurationError{Option: "interval", Reason: fmt.Sprintf("bad amount %q in %q", fields[i], expr)}
		}
		unit, ok := intervalUnits[fields[i+1]]
		if !ok {
			return 0, &ConfigurationError{Option: "interval", Reason: fmt.Sprintf("unknown unit %q in %q", fields[i+1], expr)}
		}
		d, err := scaleInterval(expr, n, unit)
		if err != nil {
			return 0, err
		}
		if total > math.MaxInt64-d {
			return 0, &ConfigurationError{Option: "interval", Reason: fmt.Sprintf("%q overflows a duration", expr)}
		}
		total += d
	}
	return positiveInterval(expr, total)
}

// scaleInterval multiplica n por unit sem estourar time.Duration.
func scaleInterval(expr string, n int64, unit time.Duration) (time.Duration, error) {
	if n > math.MaxInt64/int64(unit) {
		return 0, &ConfigurationError{Option: "interval", Reason: fmt.Sprintf("%q overflows a duration", expr)}
	}
	return time.Duration(n) * unit, nil
}

func positiveInterval(expr string, d time.Duration) (time.Duration, error) {
	if d <= 0 {
		return 0, &ConfigurationError{Option: "interval", Reason: fmt.Sprintf("%q must be positive", expr)}
	}
	return d, nil
}
