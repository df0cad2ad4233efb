package timeutil

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

const day = 24 * time.Hour

var (
	spanPattern = regexp.MustCompile(`^\s*(\d+)\s*([a-z]+)`)
	spanUnits   = map[string]time.Duration{
		"ms":    time.Millisecond,
		"s":     time.Second,
		"sec":   time.Second,
		"secs":  time.Second,
		"m":     time.Minute,
		"min":   time.Minute,
		"mins":  time.Minute,
		"h":     time.Hour,
		"hr":    time.Hour,
		"hrs":   time.Hour,
		"hour":  time.Hour,
		"hours": time.Hour,
		"d":     day,
		"day":   day,
		"days":  day,
		"w":     7 * day,
		"wk":    7 * day,
		"week":  7 * day,
		"weeks": 7 * day,
	}
)

// ParseSpan parses a human-friendly span such as "180d", "4h" or "1w2d6h".
// An empty input parses fallback instead.
func ParseSpan(input, fallback string) (time.Duration, error) {
	trimmed := strings.ToLower(strings.TrimSpace(input))
	if trimmed == "" {
		trimmed = strings.ToLower(strings.TrimSpace(fallback))
	}
	if trimmed == "" {
		return 0, fmt.Errorf("timeutil: empty span")
	}

	remaining := trimmed
	total := time.Duration(0)
	for len(remaining) > 0 {
		m := spanPattern.FindStringSubmatch(remaining)
		if len(m) != 3 {
			return 0, fmt.Errorf("timeutil: invalid span segment %q", strings.TrimSpace(remaining))
		}
		value, err := strconv.ParseInt(m[1], 10, 64)
		if err != nil {
			return 0, fmt.Errorf("timeutil: invalid span value %q: %w", m[1], err)
		}
		unit, ok := spanUnits[m[2]]
		if !ok {
			return 0, fmt.Errorf("timeutil: unsupported span unit %q", m[2])
		}
		total += time.Duration(value) * unit
		remaining = remaining[len(m[0]):]
	}

	if total <= 0 {
		return 0, fmt.Errorf("timeutil: span must be greater than zero")
	}
	return total, nil
}

// FormatSpan renders d with day/hour/minute/second tokens, e.g. "180d" or
// "3h30m".
func FormatSpan(d time.Duration) string {
	if d <= 0 {
		return "0s"
	}
	units := []struct {
		label string
		value time.Duration
	}{
		{"d", day},
		{"h", time.Hour},
		{"m", time.Minute},
		{"s", time.Second},
	}
	var b strings.Builder
	remaining := d
	for _, u := range units {
		if remaining < u.value {
			continue
		}
		count := remaining / u.value
		remaining -= count * u.value
		fmt.Fprintf(&b, "%d%s", count, u.label)
	}
	if b.Len() == 0 {
		return d.String()
	}
	return b.String()
}
