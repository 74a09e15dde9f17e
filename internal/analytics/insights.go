// internal/analytics/insights.go
package analytics

import "fmt"

// Insight is one human-readable highlight derived from already-aggregated
// counts.
type Insight struct {
	Type        string `json:"type"`
	Title       string `json:"title"`
	Description string `json:"description"`
}

const (
	InsightTopCompetitor = "top_competitor"
	InsightTopCluster    = "top_cluster"
	InsightTopPlatform   = "top_platform"
)

// GenerateInsights derives at most max highlights: the competitor with the
// highest distinct-URL citation count, the prompt cluster with the highest
// brand-citation count, and the platform with the highest brand-citation
// count. A category whose top value is zero is skipped; absence of data
// yields an empty list, never an error.
func GenerateInsights(competitorTotals, clusterTotals, platformTotals map[string]int, max int) []Insight {
	insights := make([]Insight, 0, 3)

	if name, count := topOf(competitorTotals); count > 0 {
		insights = append(insights, Insight{
			Type:        InsightTopCompetitor,
			Title:       fmt.Sprintf("%s leads competitor citations", name),
			Description: fmt.Sprintf("%s was cited at %d unique sources, the most of any competitor.", name, count),
		})
	}
	if name, count := topOf(clusterTotals); count > 0 {
		insights = append(insights, Insight{
			Type:        InsightTopCluster,
			Title:       fmt.Sprintf("%s drives the most brand citations", name),
			Description: fmt.Sprintf("Prompts in %s produced brand citations at %d unique sources.", name, count),
		})
	}
	if name, count := topOf(platformTotals); count > 0 {
		insights = append(insights, Insight{
			Type:        InsightTopPlatform,
			Title:       fmt.Sprintf("%s cites the brand most", name),
			Description: fmt.Sprintf("%s referenced the brand at %d unique sources, ahead of every other platform.", name, count),
		})
	}

	if max > 0 && len(insights) > max {
		insights = insights[:max]
	}
	return insights
}

// topOf picks the highest-count key, ties broken by name ascending so the
// result is deterministic.
func topOf(totals map[string]int) (string, int) {
	var topName string
	topCount := 0
	for name, count := range totals {
		if count > topCount || (count == topCount && count > 0 && name < topName) {
			topName = name
			topCount = count
		}
	}
	return topName, topCount
}
