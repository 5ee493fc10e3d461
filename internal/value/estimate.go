// Package value estimates the monetary worth of a classified call signal
// from the business's typical price band.
package value

import (
	"math"

	"github.com/signalworks/pulse/internal/profile"
	"github.com/signalworks/pulse/internal/signal"
)

// Estimate converts a signal plus a price range into an estimated job
// value, rounded to the nearest whole amount. Returns nil when the
// business has no price range on file — "value unknown" is a valid,
// displayable state for callers, not an error.
//
// High-urgency calls estimate near the top of the band (urgent jobs skew
// large); pricing and scheduling intents estimate at the midpoint; the
// rest estimate just above the minimum.
func Estimate(sig signal.Signal, pr *profile.PriceRange) *float64 {
	if pr == nil {
		return nil
	}

	var est float64
	switch {
	case sig.Urgency == signal.UrgencyHigh:
		est = pr.Max * 0.8
	case sig.Intent == signal.IntentPricing || sig.Intent == signal.IntentScheduling:
		est = (pr.Min + pr.Max) / 2
	default:
		est = pr.Min * 1.2
	}

	est = math.Round(est)
	return &est
}
