package domain

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// Policy enumerates every numeric rule the engine applies. The defaults
// reproduce the reference ward policy.
type Policy struct {
	// WorkCodes count toward rest rules, caps and totals.
	WorkCodes []DutyCode
	// RotationCodes are the codes the daily rotation may hand out, in
	// tie-break order.
	RotationCodes []DutyCode
	// PreservedCodes pass through untouched; operators may add their own tags.
	PreservedCodes []DutyCode

	DailyCaps   map[DutyCode]int
	WeekendCaps map[DutyCode]int

	NightBlockCap    int
	NightBlockNights int
	NightBlockRest   int
	// RestAfterNights is the shortest night run that earns the full rest
	// sequence in the daily rotation.
	RestAfterNights    int
	MaxConsecutiveWork int
	WorkerCapSlack     int
	TailLength         int

	HeadNurseMode    bool
	HeadNurseWeekday DutyCode
	HeadNurseWeekend DutyCode

	AnnualLeave    decimal.Decimal
	CarryOverLeave decimal.Decimal
}

// DefaultPolicy returns the reference ward policy.
func DefaultPolicy() Policy {
	return Policy{
		WorkCodes:          []DutyCode{DutyDay, DutyEvening, DutyNight, DutyHeadNurse},
		RotationCodes:      []DutyCode{DutyDay, DutyEvening},
		PreservedCodes:     []DutyCode{LeaveFull, LeaveQuarter, LeaveHalf, DutyMakeup},
		DailyCaps:          map[DutyCode]int{DutyDay: 2, DutyEvening: 2, DutyNight: 1},
		WeekendCaps:        map[DutyCode]int{DutyEvening: 1},
		NightBlockCap:      2,
		NightBlockNights:   3,
		NightBlockRest:     2,
		RestAfterNights:    2,
		MaxConsecutiveWork: 5,
		WorkerCapSlack:     1,
		TailLength:         5,
		HeadNurseMode:      false,
		HeadNurseWeekday:   DutyHeadNurse,
		HeadNurseWeekend:   DutyOff,
		AnnualLeave:        decimal.RequireFromString("21.5"),
		CarryOverLeave:     decimal.RequireFromString("2"),
	}
}

// IsWork reports whether code is one of the policy's work codes.
func (p Policy) IsWork(code DutyCode) bool {
	for _, w := range p.WorkCodes {
		if w == code {
			return true
		}
	}
	return false
}

// IsPreserved reports whether code is an opaque pass-through code.
func (p Policy) IsPreserved(code DutyCode) bool {
	for _, c := range p.PreservedCodes {
		if c == code {
			return true
		}
	}
	return false
}

// Accepts reports whether code may be stored in a cell. Unset is accepted.
func (p Policy) Accepts(code DutyCode) bool {
	return code.IsUnset() || code == DutyOff || p.IsWork(code) || p.IsPreserved(code)
}

// Cap returns the per-day cap for a base work code. ok is false when the
// code is uncapped.
func (p Policy) Cap(code DutyCode, weekend bool) (limit int, ok bool) {
	if weekend {
		if v, found := p.WeekendCaps[code]; found {
			return v, true
		}
	}
	v, found := p.DailyCaps[code]
	return v, found
}

// ParseDutyCode validates s against the policy.
func (p Policy) ParseDutyCode(s string) (DutyCode, error) {
	code := DutyCode(s)
	if !p.Accepts(code) {
		return Unset, NewEngineError(ErrInvalidDutyCode.Code, fmt.Sprintf("%s: %q", ErrInvalidDutyCode.Message, s))
	}
	return code, nil
}

// Validate checks the policy for values the engine cannot run with.
func (p Policy) Validate() error {
	var problems []string
	if len(p.RotationCodes) == 0 {
		problems = append(problems, "at least one rotation code is required")
	}
	for _, c := range p.RotationCodes {
		if !p.IsWork(c) {
			problems = append(problems, fmt.Sprintf("rotation code %q is not a work code", c))
		}
	}
	if p.NightBlockNights < 1 {
		problems = append(problems, "night block must have at least one night")
	}
	if p.NightBlockRest < 0 {
		problems = append(problems, "night block rest must not be negative")
	}
	if p.MaxConsecutiveWork < 1 {
		problems = append(problems, "max consecutive work days must be positive")
	}
	if p.TailLength < p.NightBlockNights+p.NightBlockRest {
		problems = append(problems, "tail length must cover one night block")
	}
	if p.WorkerCapSlack < 0 {
		problems = append(problems, "worker cap slack must not be negative")
	}
	if len(problems) > 0 {
		return &EngineError{
			Code:    ErrPolicyInvalid.Code,
			Message: fmt.Sprintf("%s: %v", ErrPolicyInvalid.Message, problems),
		}
	}
	return nil
}

// LeaveLedger holds each worker's leave allotment for the year.
type LeaveLedger struct {
	Default    decimal.Decimal
	CarryOver  decimal.Decimal
	Allotments map[string]decimal.Decimal
}

// NewLeaveLedger starts a ledger from the policy's leave defaults.
func NewLeaveLedger(p Policy) LeaveLedger {
	return LeaveLedger{
		Default:    p.AnnualLeave,
		CarryOver:  p.CarryOverLeave,
		Allotments: map[string]decimal.Decimal{},
	}
}

// Allotment returns the worker's allotment, falling back to the default.
func (l LeaveLedger) Allotment(worker string) decimal.Decimal {
	if v, ok := l.Allotments[worker]; ok {
		return v
	}
	return l.Default
}
