package attendance

import (
	"fmt"

	"github.com/cmlabs-hris/hris-notify/internal/pkg/timefmt"
)

// FlagResolver derives an attendance flag from a formatted in-time
// ("hh:mm AM/PM"). An empty Flag means no override.
type FlagResolver interface {
	Resolve(inTime string) Flag
}

// CutoffFlagResolver flags arrivals after LateAfter as late and after
// HalfDayAfter as half day. Both are minutes since midnight.
type CutoffFlagResolver struct {
	LateAfter    int
	HalfDayAfter int
}

func NewCutoffFlagResolver(lateAfter, halfDayAfter string) (CutoffFlagResolver, error) {
	late, ok := timefmt.ParseClock12(lateAfter)
	if !ok {
		return CutoffFlagResolver{}, fmt.Errorf("%w: late cutoff %q", ErrInvalidClockTime, lateAfter)
	}
	half, ok := timefmt.ParseClock12(halfDayAfter)
	if !ok {
		return CutoffFlagResolver{}, fmt.Errorf("%w: half-day cutoff %q", ErrInvalidClockTime, halfDayAfter)
	}
	if half < late {
		return CutoffFlagResolver{}, fmt.Errorf("%w: half-day cutoff before late cutoff", ErrInvalidClockTime)
	}
	return CutoffFlagResolver{LateAfter: late, HalfDayAfter: half}, nil
}

func (c CutoffFlagResolver) Resolve(inTime string) Flag {
	minutes, ok := timefmt.ParseClock12(inTime)
	if !ok {
		return ""
	}
	switch {
	case minutes > c.HalfDayAfter:
		return FlagHalfDay
	case minutes > c.LateAfter:
		return FlagLate
	default:
		return FlagPresent
	}
}
