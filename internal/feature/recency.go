package feature

import (
	"math"
	"time"

	"github.com/kestrel-labs/knowledgeforge/internal/indexstore"
)

const recencyDecayTau = 30.0 // days

func extractRecency(now time.Time, entry *indexstore.Entry) RecencyFeatures {
	created := entry.LastModified // Entry carries no separate CreatedAt; LastModified is the closest available timestamp at first insert.
	modified := entry.LastModified
	lastUsed := entry.LastUsed

	daysSinceCreated := daysSince(now, created)
	daysSinceModified := daysSince(now, modified)
	daysSinceLastUsed := daysSince(now, lastUsed)

	return RecencyFeatures{
		DaysSinceCreated:  daysSinceCreated,
		DaysSinceModified: daysSinceModified,
		DaysSinceLastUsed: daysSinceLastUsed,

		CreatedDecay:  math.Exp(-daysSinceCreated / recencyDecayTau),
		ModifiedDecay: math.Exp(-daysSinceModified / recencyDecayTau),
		LastUsedDecay: math.Exp(-daysSinceLastUsed / recencyDecayTau),

		IsRecentlyActive: daysSinceModified <= 7,
		HasRecentUpdates: daysSinceModified <= 7,

		WeekdayCreated: float64(created.Weekday()) / 7.0,
		HourCreated:    float64(created.Hour()) / 24.0,
	}
}

func daysSince(now, t time.Time) float64 {
	if t.IsZero() {
		return 0
	}
	d := now.Sub(t).Hours() / 24.0
	if d < 0 {
		return 0
	}
	return d
}
