package normalizer

import (
	"math"
	"regexp"
	"strconv"
	"strings"

	"github.com/tidwall/gjson"
)

var abbreviatedCount = regexp.MustCompile(`^(\d+(?:\.\d+)?)([kmb])$`)

var countMultipliers = map[string]float64{
	"k": 1e3,
	"m": 1e6,
	"b": 1e9,
}

// toCount coerces a JSON number or formatted string into a non-negative count.
func toCount(r gjson.Result) int64 {
	switch r.Type {
	case gjson.Number:
		if r.Num <= 0 || math.IsNaN(r.Num) || r.Num >= math.MaxInt64 {
			return 0
		}
		return int64(r.Num)
	case gjson.String:
		return parseCount(r.Str)
	}
	return 0
}

// parseCount understands "1,234", "15K", "1.2M" and "3B". Anything else has
// every non-digit stripped; unparsable input yields 0.
func parseCount(s string) int64 {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" || strings.HasPrefix(s, "-") {
		return 0
	}
	compact := strings.NewReplacer(",", "", " ", "", "_", "").Replace(s)

	if m := abbreviatedCount.FindStringSubmatch(compact); m != nil {
		base, err := strconv.ParseFloat(m[1], 64)
		if err != nil {
			return 0
		}
		v := math.Round(base * countMultipliers[m[2]])
		if v >= math.MaxInt64 {
			return 0
		}
		return int64(v)
	}

	var digits strings.Builder
	for _, r := range compact {
		if r >= '0' && r <= '9' {
			digits.WriteRune(r)
		}
	}
	if digits.Len() == 0 {
		return 0
	}
	n, err := strconv.ParseInt(digits.String(), 10, 64)
	if err != nil || n < 0 {
		return 0
	}
	return n
}

// addCount sums two counts, saturating at math.MaxInt64.
func addCount(a, b int64) int64 {
	if b > math.MaxInt64-a {
		return math.MaxInt64
	}
	return a + b
}

func toText(r gjson.Result) string {
	switch r.Type {
	case gjson.String, gjson.Number:
		return strings.TrimSpace(r.String())
	}
	return ""
}
