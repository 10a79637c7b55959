package facts

import (
	"fmt"
	"strconv"
	"strings"
)

// Kind classifies the calendar slot a fact occupies.
type Kind int

const (
	Annual Kind = iota
	Quarterly
	Instant
)

func (k Kind) String() string {
	switch k {
	case Annual:
		return "annual"
	case Quarterly:
		return "quarterly"
	case Instant:
		return "instant"
	default:
		return "unknown"
	}
}

// Frame is a parsed EDGAR frame identifier: CY2022, CY2022Q3 or CY2022Q3I.
type Frame struct {
	Year    int
	Kind    Kind
	Quarter int // 0 for annual frames
}

// ParseFrame parses an EDGAR frame identifier.
func ParseFrame(s string) (Frame, error) {
	if len(s) < 6 || !strings.HasPrefix(s, "CY") {
		return Frame{}, fmt.Errorf("invalid frame %q", s)
	}
	year, err := strconv.Atoi(s[2:6])
	if err != nil {
		return Frame{}, fmt.Errorf("invalid frame year %q: %w", s, err)
	}
	rest := s[6:]
	if rest == "" {
		return Frame{Year: year, Kind: Annual}, nil
	}
	if rest[0] != 'Q' || len(rest) < 2 {
		return Frame{}, fmt.Errorf("invalid frame %q", s)
	}
	q := int(rest[1] - '0')
	if q < 1 || q > 4 {
		return Frame{}, fmt.Errorf("invalid frame quarter %q", s)
	}
	switch rest[2:] {
	case "":
		return Frame{Year: year, Kind: Quarterly, Quarter: q}, nil
	case "I":
		return Frame{Year: year, Kind: Instant, Quarter: q}, nil
	default:
		return Frame{}, fmt.Errorf("invalid frame %q", s)
	}
}

// String renders the frame back to its EDGAR form.
func (f Frame) String() string {
	switch f.Kind {
	case Quarterly:
		return fmt.Sprintf("CY%04dQ%d", f.Year, f.Quarter)
	case Instant:
		return fmt.Sprintf("CY%04dQ%dI", f.Year, f.Quarter)
	default:
		return fmt.Sprintf("CY%04d", f.Year)
	}
}

// PriorYear returns the same slot one year earlier.
func (f Frame) PriorYear() Frame {
	f.Year--
	return f
}
