package analytics

import (
	"time"

	"github.com/vadimbarashkov/golinks/internal/entity"
)

// RisingPolicy decides which recently created links count as rising.
type RisingPolicy struct {
	Window time.Duration // Window is the maximum link age.
	Max    int           // Max caps the number of rising links.
}

// DefaultRisingPolicy keeps links younger than 30 days, at most 5 of them.
var DefaultRisingPolicy = RisingPolicy{
	Window: 30 * 24 * time.Hour,
	Max:    5,
}

// Rising filters a usage report already sorted by visits in range descending.
// A link qualifies when it was created within the window and was visited in range.
func Rising(links []entity.LinkUsage, now time.Time, policy RisingPolicy) []entity.LinkUsage {
	rising := make([]entity.LinkUsage, 0, max(policy.Max, 0))

	for _, l := range links {
		if len(rising) >= policy.Max {
			break
		}
		if now.Sub(l.CreatedAt) <= policy.Window && l.VisitsInRange > 0 {
			rising = append(rising, l)
		}
	}

	return rising
}
