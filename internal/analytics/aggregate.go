// internal/analytics/aggregate.go
//
// The grouping/counting functions behind every chart and table. All of them
// are pure: (filtered citations, request-scoped lookups) in, one derived
// record out. Unless noted otherwise a "count" is the number of distinct
// URLs in the group, never the number of citation rows.
package analytics

import (
	"encoding/json"
	"sort"
	"strings"

	"github.com/hongngoc-nguyen/brandpulse/internal/models"
)

// UnclusteredLabel is the bucket for prompts without a cluster.
const UnclusteredLabel = "Unclustered"

// ==========================
// Output shapes
// ==========================

// TimelinePoint is one day of the unique-citation-over-time chart.
type TimelinePoint struct {
	Date           string `json:"date"`
	TotalResponses int    `json:"totalResponses"`
	WithCitations  int    `json:"withEntityCitations"`
}

// SeriesPoint is one day of a pivoted chart: the date plus one count per
// metric key. It marshals to a flat object ({"date": ..., "ChatGPT": 3}),
// the interchange shape chart widgets expect.
type SeriesPoint struct {
	Date   string
	Values map[string]int
}

func (p SeriesPoint) MarshalJSON() ([]byte, error) {
	flat := make(map[string]interface{}, len(p.Values)+1)
	flat["date"] = p.Date
	for k, v := range p.Values {
		flat[k] = v
	}
	return json.Marshal(flat)
}

// Series is a date-pivoted result. Keys carries the presentation column
// order; Points hold one row per date in the window, zero-filled.
type Series struct {
	Keys   []string      `json:"keys"`
	Points []SeriesPoint `json:"points"`
}

// SourceRow is one row of the citation-source table.
type SourceRow struct {
	URL      string `json:"url"`
	Count    int    `json:"count"`
	Entities string `json:"entities"`
}

// EntityRank is one row of the top-entity ranking.
type EntityRank struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

// ==========================
// Aggregators
// ==========================

// CitationTimeline buckets the window's responses by day and counts, per day,
// the total responses and the distinct responses carrying at least one
// citation for the entity set. Every date in the window appears even when its
// citation count is zero.
func CitationTimeline(citations []models.Citation, window ResponseWindow) []TimelinePoint {
	totalByDate := make(map[string]int)
	for _, date := range window.DateOf {
		totalByDate[date]++
	}

	citedResponses := make(map[string]struct{})
	for _, c := range citations {
		citedResponses[c.ResponseID] = struct{}{}
	}
	citedByDate := make(map[string]int)
	for responseID := range citedResponses {
		if date, ok := window.DateOf[responseID]; ok {
			citedByDate[date]++
		}
	}

	points := make([]TimelinePoint, 0, len(window.Dates))
	for _, date := range window.Dates {
		points = append(points, TimelinePoint{
			Date:           date,
			TotalResponses: totalByDate[date],
			WithCitations:  citedByDate[date],
		})
	}
	return points
}

// PlatformDistribution pivots distinct-URL counts by (date, platform). Keys
// are every platform observed anywhere in the filtered set, sorted; each date
// row zero-fills platforms absent on that day.
func PlatformDistribution(citations []models.Citation, window ResponseWindow) Series {
	return pivotByDate(citations, window, nil, func(c models.Citation) (string, bool) {
		return c.Platform, c.Platform != ""
	})
}

// ClusterDistribution pivots distinct-URL counts by (date, prompt cluster),
// resolved through response -> prompt -> cluster. Citations whose prompt or
// cluster cannot be resolved fall into the Unclustered bucket. Zero-fill
// spans the full window's date set, so a cluster chart can show flat zero
// days.
func ClusterDistribution(citations []models.Citation, window ResponseWindow, clusterOf map[string]string) Series {
	return pivotByDate(citations, window, nil, func(c models.Citation) (string, bool) {
		promptID := window.PromptOf[c.ResponseID]
		cluster := clusterOf[promptID]
		if cluster == "" {
			cluster = UnclusteredLabel
		}
		return cluster, true
	})
}

// EntityComparison pivots distinct-URL counts by (date, entity name). Every
// resolved entity gets a column, zero-filled when it has no citations in the
// window. The brand column always sorts first; remaining entities sort by
// descending total volume over the whole window, ties broken by name
// ascending.
func EntityComparison(citations []models.Citation, window ResponseWindow, entities ResolvedEntities, brandName string) Series {
	seed := make([]string, 0, len(entities.NameOf))
	for _, name := range entities.NameOf {
		seed = append(seed, name)
	}

	series := pivotByDate(citations, window, seed, func(c models.Citation) (string, bool) {
		name, ok := entities.NameOf[c.EntityID]
		return name, ok
	})

	totals := make(map[string]int, len(series.Keys))
	for _, p := range series.Points {
		for name, count := range p.Values {
			totals[name] += count
		}
	}
	sort.SliceStable(series.Keys, func(i, j int) bool {
		a, b := series.Keys[i], series.Keys[j]
		if a == brandName {
			return true
		}
		if b == brandName {
			return false
		}
		if totals[a] != totals[b] {
			return totals[a] > totals[b]
		}
		return a < b
	})

	return series
}

// pivotByDate is the shared (date, key) -> distinct URL cross-tabulation.
// seedKeys forces columns that must exist even with zero observations.
func pivotByDate(citations []models.Citation, window ResponseWindow, seedKeys []string, keyOf func(models.Citation) (string, bool)) Series {
	urls := make(map[string]map[string]map[string]struct{}) // date -> key -> url set
	keySet := make(map[string]struct{})
	for _, k := range seedKeys {
		keySet[k] = struct{}{}
	}

	for _, c := range citations {
		date, ok := window.DateOf[c.ResponseID]
		if !ok {
			continue
		}
		key, ok := keyOf(c)
		if !ok {
			continue
		}
		keySet[key] = struct{}{}
		if urls[date] == nil {
			urls[date] = make(map[string]map[string]struct{})
		}
		if urls[date][key] == nil {
			urls[date][key] = make(map[string]struct{})
		}
		urls[date][key][c.URL] = struct{}{}
	}

	keys := make([]string, 0, len(keySet))
	for k := range keySet {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	points := make([]SeriesPoint, 0, len(window.Dates))
	for _, date := range window.Dates {
		values := make(map[string]int, len(keys))
		for _, key := range keys {
			values[key] = len(urls[date][key])
		}
		points = append(points, SeriesPoint{Date: date, Values: values})
	}

	return Series{Keys: keys, Points: points}
}

// CitationSources groups by URL alone, ignoring dates: occurrence count plus
// the distinct entity names sharing that URL, comma-joined. Sorted by count
// descending, URL ascending on ties.
func CitationSources(citations []models.Citation, entities ResolvedEntities) []SourceRow {
	counts := make(map[string]int)
	names := make(map[string]map[string]struct{})
	for _, c := range citations {
		counts[c.URL]++
		name, ok := entities.NameOf[c.EntityID]
		if !ok {
			continue
		}
		if names[c.URL] == nil {
			names[c.URL] = make(map[string]struct{})
		}
		names[c.URL][name] = struct{}{}
	}

	rows := make([]SourceRow, 0, len(counts))
	for url, count := range counts {
		entityNames := make([]string, 0, len(names[url]))
		for name := range names[url] {
			entityNames = append(entityNames, name)
		}
		sort.Strings(entityNames)
		rows = append(rows, SourceRow{
			URL:      url,
			Count:    count,
			Entities: strings.Join(entityNames, ", "),
		})
	}
	sort.Slice(rows, func(i, j int) bool {
		if rows[i].Count != rows[j].Count {
			return rows[i].Count > rows[j].Count
		}
		return rows[i].URL < rows[j].URL
	})

	return rows
}

// TopEntities ranks entities by raw citation-row count, descending, truncated
// to limit. Unlike every other aggregator this deliberately counts rows, not
// distinct URLs: repeated citations to the same URL still indicate mention
// frequency.
func TopEntities(citations []models.Citation, entities ResolvedEntities, limit int) []EntityRank {
	counts := make(map[string]int)
	for _, c := range citations {
		if name, ok := entities.NameOf[c.EntityID]; ok {
			counts[name]++
		}
	}

	ranks := make([]EntityRank, 0, len(counts))
	for name, count := range counts {
		ranks = append(ranks, EntityRank{Name: name, Count: count})
	}
	sort.Slice(ranks, func(i, j int) bool {
		if ranks[i].Count != ranks[j].Count {
			return ranks[i].Count > ranks[j].Count
		}
		return ranks[i].Name < ranks[j].Name
	})

	if limit > 0 && len(ranks) > limit {
		ranks = ranks[:limit]
	}
	return ranks
}

// ==========================
// Distinct-URL totals
// ==========================

// DistinctURLCount counts the unique URLs in a citation list.
func DistinctURLCount(citations []models.Citation) int {
	urls := make(map[string]struct{}, len(citations))
	for _, c := range citations {
		urls[c.URL] = struct{}{}
	}
	return len(urls)
}

// TotalsByEntity returns distinct-URL counts keyed by entity name.
func TotalsByEntity(citations []models.Citation, entities ResolvedEntities) map[string]int {
	return distinctTotals(citations, func(c models.Citation) (string, bool) {
		name, ok := entities.NameOf[c.EntityID]
		return name, ok
	})
}

// TotalsByPlatform returns distinct-URL counts keyed by platform.
func TotalsByPlatform(citations []models.Citation) map[string]int {
	return distinctTotals(citations, func(c models.Citation) (string, bool) {
		return c.Platform, c.Platform != ""
	})
}

// TotalsByCluster returns distinct-URL counts keyed by prompt cluster.
func TotalsByCluster(citations []models.Citation, window ResponseWindow, clusterOf map[string]string) map[string]int {
	return distinctTotals(citations, func(c models.Citation) (string, bool) {
		cluster := clusterOf[window.PromptOf[c.ResponseID]]
		if cluster == "" {
			cluster = UnclusteredLabel
		}
		return cluster, true
	})
}

func distinctTotals(citations []models.Citation, keyOf func(models.Citation) (string, bool)) map[string]int {
	urls := make(map[string]map[string]struct{})
	for _, c := range citations {
		key, ok := keyOf(c)
		if !ok {
			continue
		}
		if urls[key] == nil {
			urls[key] = make(map[string]struct{})
		}
		urls[key][c.URL] = struct{}{}
	}

	totals := make(map[string]int, len(urls))
	for key, set := range urls {
		totals[key] = len(set)
	}
	return totals
}
