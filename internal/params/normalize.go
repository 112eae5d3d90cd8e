package params

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
)

// NormalizeErrorRate converts an observer-supplied error rate to a
// probability in [0,1].
//
// Numbers in [0,1] are probabilities, numbers in (1,100] are percents and
// strings of the form "N%" are percents. Anything else yields 0.
func NormalizeErrorRate(v any) float64 {
	var p float64
	switch x := v.(type) {
	case float64:
		p = numericRate(x)
	case float32:
		p = numericRate(float64(x))
	case int:
		p = numericRate(float64(x))
	case int64:
		p = numericRate(float64(x))
	case ErrorRate:
		p = numericRate(float64(x))
	case string:
		p = percentString(x)
	default:
		return 0
	}
	return clamp01(p)
}

func numericRate(x float64) float64 {
	switch {
	case math.IsNaN(x) || math.IsInf(x, 0):
		return 0
	case x >= 0 && x <= 1:
		return x
	case x > 1 && x <= 100:
		return x / 100
	default:
		return 0
	}
}

func percentString(s string) float64 {
	s = strings.TrimSpace(s)
	if !strings.HasSuffix(s, "%") {
		return 0
	}
	n, err := strconv.ParseFloat(strings.TrimSpace(strings.TrimSuffix(s, "%")), 64)
	if err != nil || math.IsNaN(n) {
		return 0
	}
	return n / 100
}

func clamp01(p float64) float64 {
	if p < 0 {
		return 0
	}
	if p > 1 {
		return 1
	}
	return p
}

// FallbackTimeLimit is used when a time limit cannot be parsed.
const FallbackTimeLimit = "00:00"

// ParseTimeLimit parses an "mm:ss" limit. An empty string means no limit
// (ok=false). A malformed value falls back to "00:00", i.e. zero duration.
func ParseTimeLimit(s string) (d time.Duration, ok bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, false
	}
	d, err := parseMMSS(s)
	if err != nil {
		return 0, true
	}
	return d, true
}

func parseMMSS(s string) (time.Duration, error) {
	parts := strings.Split(s, ":")
	if len(parts) != 2 {
		return 0, fmt.Errorf("time limit %q: expected mm:ss", s)
	}
	mm, err := strconv.Atoi(parts[0])
	if err != nil || mm < 0 {
		return 0, fmt.Errorf("time limit %q: invalid minutes", s)
	}
	ss, err := strconv.Atoi(parts[1])
	if err != nil || ss < 0 || ss > 59 {
		return 0, fmt.Errorf("time limit %q: invalid seconds", s)
	}
	return time.Duration(mm)*time.Minute + time.Duration(ss)*time.Second, nil
}

// FormatClock renders a duration as "mm:ss", truncating to whole seconds.
func FormatClock(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	total := int(d / time.Second)
	return fmt.Sprintf("%02d:%02d", total/60, total%60)
}

// NormalizeTimeLimit returns the canonical form of a time limit string.
func NormalizeTimeLimit(s string) string {
	d, ok := ParseTimeLimit(s)
	if !ok {
		return ""
	}
	return FormatClock(d)
}
