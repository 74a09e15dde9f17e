// internal/analytics/growth.go
package analytics

import "math"

// Rate computes the period-over-period percentage delta between a current
// and previous count, rounded to one decimal place. A zero previous-period
// count yields exactly 0 rather than a non-finite value, so chart and
// display layers never see Inf/NaN. This understates genuine "new from
// nothing" growth and is kept for behavioral compatibility.
func Rate(current, previous int) float64 {
	if previous <= 0 {
		return 0
	}
	pct := (float64(current) - float64(previous)) / float64(previous) * 100
	return math.Round(pct*10) / 10
}

// GrowthSummary compares the current rolling window against the previous one
// for both countable metrics: distinct citation URLs and raw mention rows.
type GrowthSummary struct {
	CurrentCitations  int     `json:"currentCitations"`
	PreviousCitations int     `json:"previousCitations"`
	CitationGrowth    float64 `json:"citationGrowth"`
	CurrentMentions   int     `json:"currentMentions"`
	PreviousMentions  int     `json:"previousMentions"`
	MentionGrowth     float64 `json:"mentionGrowth"`
}
