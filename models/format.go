package models

import "fmt"

type Format string

const (
	FormatNormal   Format = "normal"
	FormatLeague   Format = "league"
	FormatKnockout Format = "knockout"
)

// IsTournament reports whether the format is driven by a generated schedule.
func (f Format) IsTournament() bool {
	return f == FormatLeague || f == FormatKnockout
}

func (f Format) Valid() bool {
	switch f {
	case FormatNormal, FormatLeague, FormatKnockout:
		return true
	}
	return false
}

// ParseFormat maps a mode string to a Format. An empty string selects normal scoring.
func ParseFormat(s string) (Format, error) {
	if s == "" {
		return FormatNormal, nil
	}
	f := Format(s)
	if !f.Valid() {
		return "", fmt.Errorf("unknown game format %q", s)
	}
	return f, nil
}
