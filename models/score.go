package models

import (
	"bytes"
	"encoding/json"
	"errors"
	"math"
	"strconv"
	"strings"
)

// Score is a manually entered score. Decoding never fails on bad input:
// non-numeric or negative values become 0, a fractional part is dropped and
// values beyond the int range are clamped.
type Score int

func (s *Score) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*s = 0
		return nil
	}

	var raw string
	if data[0] == '"' {
		if err := json.Unmarshal(data, &raw); err != nil {
			*s = 0
			return nil
		}
	} else {
		raw = string(data)
	}
	*s = Score(ParseScore(raw))
	return nil
}

// Int returns the score as a non-negative int.
func (s Score) Int() int {
	return NormalizeScore(int(s))
}

// ParseScore converts free-form input into a non-negative score.
// Numbers are truncated toward zero and clamped to the int range. A leading
// integer part is accepted ("12abc" is 12) to match numeric input fields.
func ParseScore(raw string) int {
	raw = strings.TrimSpace(raw)
	f, err := strconv.ParseFloat(raw, 64)
	if err == nil && (math.IsNaN(f) || math.IsInf(f, 0)) {
		return 0
	}
	if err == nil || errors.Is(err, strconv.ErrRange) {
		switch {
		case f <= 0:
			return 0
		case f >= math.MaxInt:
			return math.MaxInt
		default:
			return int(f)
		}
	}

	end := 0
	for end < len(raw) {
		c := raw[end]
		if (c >= '0' && c <= '9') || (end == 0 && (c == '-' || c == '+')) {
			end++
			continue
		}
		break
	}
	n, err := strconv.Atoi(raw[:end])
	if err != nil && !errors.Is(err, strconv.ErrRange) {
		return 0
	}
	return NormalizeScore(n)
}

// NormalizeScore clamps negative scores to 0.
func NormalizeScore(n int) int {
	if n < 0 {
		return 0
	}
	return n
}
