// Package eligibility implements the cooldown rule: a household may
// receive a package again only after the cooldown window has fully
// elapsed since its last distribution.
package eligibility

import (
	"fmt"
	"time"
)

type Result struct {
	Eligible bool
	Reason   string
	// DaysSinceLast is nil when the household has no prior
	// distribution on record.
	DaysSinceLast *int
}

// Evaluate applies the cooldown rule. last is the timestamp of the
// most recent successful distribution, or nil if none exists. asOf is
// injected so the rule stays a pure function of its inputs.
//
// The boundary is inclusive of the edge: an entry dated exactly
// cooldownDays ago makes the household eligible again.
func Evaluate(last *time.Time, cooldownDays int, asOf time.Time) Result {
	if last == nil {
		return Result{
			Eligible: true,
			Reason:   "household has never received this package",
		}
	}

	days := int(asOf.Sub(*last).Hours() / 24)

	if days >= cooldownDays {
		return Result{
			Eligible:      true,
			Reason:        fmt.Sprintf("last received %d days ago", days),
			DaysSinceLast: &days,
		}
	}

	remaining := cooldownDays - days
	return Result{
		Eligible:      false,
		Reason:        fmt.Sprintf("last received %d days ago, must wait %d more days", days, remaining),
		DaysSinceLast: &days,
	}
}
