package planner

import (
	"encoding/json"
	"math"
	"regexp"
	"strconv"
	"strings"
)

// PriceMode selects the representative value used when a display price
// expresses a range rather than a single amount.
type PriceMode string

const (
	PriceModeMid   PriceMode = "mid"
	PriceModeUpper PriceMode = "upper"
	PriceModeLower PriceMode = "lower"
)

// rangeMarkers are the dash/tilde characters that turn a price string into a
// range ("1,500円〜3,000円") or an open-ended bound ("〜3,000円", "1,500円〜").
const rangeMarkers = "〜～~-–—"

var freeTerms = []string{"無料", "free", "no charge"}

// Digit runs, optionally grouped in thousands with commas.
var priceTokenPattern = regexp.MustCompile(`\d{1,3}(?:,\d{3})+|\d+`)

// ParsePrice maps an arbitrary price representation to a single
// representative whole-yen amount. It never fails: nil, malformed and
// "free" inputs all resolve to 0. Display prices are user facing and often
// ranges or open-ended; the mid policy deliberately stays away from the
// extreme a one-sided range implies (0.7x for "up to N", 1.15x for "N and
// up") so that aggregated totals do not drift.
func ParsePrice(input any, mode PriceMode) int {
	switch mode {
	case PriceModeUpper, PriceModeLower:
	default:
		mode = PriceModeMid
	}

	switch v := input.(type) {
	case nil:
		return 0
	case string:
		return parsePriceString(v, mode)
	case json.Number:
		f, err := v.Float64()
		if err != nil {
			return 0
		}
		return floorNonNegative(f)
	case int:
		return floorNonNegative(float64(v))
	case int32:
		return floorNonNegative(float64(v))
	case int64:
		return floorNonNegative(float64(v))
	case float32:
		return floorNonNegative(float64(v))
	case float64:
		return floorNonNegative(v)
	default:
		return 0
	}
}

func parsePriceString(s string, mode PriceMode) int {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0
	}

	lower := strings.ToLower(s)
	for _, term := range freeTerms {
		if lower == term {
			return 0
		}
	}

	tokens := priceTokenPattern.FindAllStringIndex(s, -1)
	markerIdx := strings.IndexAny(s, rangeMarkers)

	switch {
	case markerIdx >= 0 && len(tokens) >= 2:
		a := tokenValue(s, tokens[0])
		b := tokenValue(s, tokens[1])
		lo, hi := a, b
		if lo > hi {
			lo, hi = hi, lo
		}
		switch mode {
		case PriceModeUpper:
			return hi
		case PriceModeLower:
			return lo
		default:
			return int(math.Round(float64(lo+hi) / 2))
		}

	case markerIdx >= 0 && len(tokens) == 1:
		n := tokenValue(s, tokens[0])
		if markerIdx < tokens[0][0] {
			// "up to N": the token is an upper bound only.
			switch mode {
			case PriceModeUpper:
				return n
			case PriceModeLower:
				return 0
			default:
				return int(math.Round(float64(n) * 0.7))
			}
		}
		// "N and up": the token is a lower bound only.
		switch mode {
		case PriceModeUpper:
			return int(math.Round(float64(n) * 1.3))
		case PriceModeLower:
			return n
		default:
			return int(math.Round(float64(n) * 1.15))
		}

	case len(tokens) >= 1:
		return tokenValue(s, tokens[0])

	default:
		return 0
	}
}

func tokenValue(s string, loc []int) int {
	raw := strings.ReplaceAll(s[loc[0]:loc[1]], ",", "")
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		return 0
	}
	return n
}

func floorNonNegative(f float64) int {
	if math.IsNaN(f) || math.IsInf(f, 0) || f < 0 {
		return 0
	}
	return int(math.Floor(f))
}

// FormatYen renders a canonical amount back into the display form the
// generator works with, e.g. 1500 -> "1,500円".
func FormatYen(amount int) string {
	if amount < 0 {
		amount = 0
	}
	digits := strconv.Itoa(amount)
	if len(digits) <= 3 {
		return digits + "円"
	}
	var b strings.Builder
	lead := len(digits) % 3
	if lead > 0 {
		b.WriteString(digits[:lead])
	}
	for i := lead; i < len(digits); i += 3 {
		if b.Len() > 0 {
			b.WriteByte(',')
		}
		b.WriteString(digits[i : i+3])
	}
	b.WriteString("円")
	return b.String()
}
