// internal/analytics/service_test.go
package analytics

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/hongngoc-nguyen/brandpulse/internal/common/config"
	"github.com/hongngoc-nguyen/brandpulse/internal/common/logger"
	"github.com/hongngoc-nguyen/brandpulse/internal/models"
)

func testConfig() config.AnalyticsConfig {
	return config.AnalyticsConfig{
		BrandName:      "Anduin",
		DefaultDays:    30,
		TopEntityLimit: 20,
		MaxInsights:    3,
	}
}

// scenarioStore seeds the two-day fixture most end-to-end tests share: one
// brand, one competitor, two responses, three citation rows over two urls.
func scenarioStore() *fakeStore {
	return &fakeStore{
		entities: []models.Entity{
			{ID: 1, Name: "Anduin", Type: models.EntityTypeBrand},
			{ID: 2, Name: "CompetitorA", Type: models.EntityTypeCompetitor},
		},
		prompts: []models.Prompt{
			{ID: "p1", Cluster: "Fund Operations"},
			{ID: "p2", Cluster: ""},
		},
		responses: []models.Response{
			{ID: "r1", Date: utc("2024-01-01T09:00:00Z"), PromptID: "p1"},
			{ID: "r2", Date: utc("2024-01-02T09:00:00Z"), PromptID: "p2"},
		},
		citations: []models.Citation{
			{ID: 1, URL: "u1", ResponseID: "r1", EntityID: 1, Platform: "ChatGPT"},
			{ID: 2, URL: "u1", ResponseID: "r1", EntityID: 1, Platform: "ChatGPT"},
			{ID: 3, URL: "u2", ResponseID: "r2", EntityID: 1, Platform: "Google AI"},
		},
	}
}

func newTestService(s *fakeStore) *Service {
	return NewService(s, testConfig(), logger.NewNoOpLogger())
}

func TestServiceTimeline(t *testing.T) {
	svc := newTestService(scenarioStore())

	points, err := svc.Timeline(context.Background(), QueryParams{})

	assert.NoError(t, err)
	assert.Equal(t, []TimelinePoint{
		{Date: "2024-01-01", TotalResponses: 1, WithCitations: 1},
		{Date: "2024-01-02", TotalResponses: 1, WithCitations: 1},
	}, points)
}

func TestServiceTimeline_PlatformFilter(t *testing.T) {
	svc := newTestService(scenarioStore())

	points, err := svc.Timeline(context.Background(), QueryParams{PlatformFilter: "ChatGPT"})

	assert.NoError(t, err)
	assert.Equal(t, []TimelinePoint{
		{Date: "2024-01-01", TotalResponses: 1, WithCitations: 1},
		{Date: "2024-01-02", TotalResponses: 1, WithCitations: 0},
	}, points, "window stays full; only the citation side narrows")
}

func TestServiceTimeline_DateFilter(t *testing.T) {
	svc := newTestService(scenarioStore())

	points, err := svc.Timeline(context.Background(), QueryParams{DateFilter: "2024-01-01"})

	assert.NoError(t, err)
	assert.Equal(t, []TimelinePoint{
		{Date: "2024-01-01", TotalResponses: 1, WithCitations: 1},
	}, points)
}

func TestServiceTimeline_NoBrandConfigured(t *testing.T) {
	store := scenarioStore()
	store.entities = nil
	svc := newTestService(store)

	points, err := svc.Timeline(context.Background(), QueryParams{})

	assert.NoError(t, err)
	assert.NotNil(t, points)
	assert.Empty(t, points, "missing brand row yields empty data, not an error")
}

func TestServiceTimeline_StoreError(t *testing.T) {
	svc := newTestService(&fakeStore{err: assert.AnError})

	_, err := svc.Timeline(context.Background(), QueryParams{})

	assert.Error(t, err)
}

func TestServicePlatforms(t *testing.T) {
	svc := newTestService(scenarioStore())

	series, err := svc.Platforms(context.Background(), QueryParams{})

	assert.NoError(t, err)
	assert.Equal(t, []string{"ChatGPT", "Google AI"}, series.Keys)
	assert.Equal(t, []SeriesPoint{
		{Date: "2024-01-01", Values: map[string]int{"ChatGPT": 1, "Google AI": 0}},
		{Date: "2024-01-02", Values: map[string]int{"ChatGPT": 0, "Google AI": 1}},
	}, series.Points, "the duplicate u1 row collapses to one distinct url")
}

func TestServiceClusters(t *testing.T) {
	svc := newTestService(scenarioStore())

	series, err := svc.Clusters(context.Background(), QueryParams{})

	assert.NoError(t, err)
	assert.Equal(t, []string{"Fund Operations", "Unclustered"}, series.Keys)
	assert.Equal(t, []SeriesPoint{
		{Date: "2024-01-01", Values: map[string]int{"Fund Operations": 1, "Unclustered": 0}},
		{Date: "2024-01-02", Values: map[string]int{"Fund Operations": 0, "Unclustered": 1}},
	}, series.Points, "empty prompt cluster buckets as Unclustered")
}

func TestServiceCompetitors(t *testing.T) {
	store := scenarioStore()
	store.citations = append(store.citations,
		models.Citation{ID: 4, URL: "c1", ResponseID: "r1", EntityID: 2, Platform: "ChatGPT"},
		models.Citation{ID: 5, URL: "c2", ResponseID: "r1", EntityID: 2, Platform: "ChatGPT"},
	)
	svc := newTestService(store)

	series, err := svc.Competitors(context.Background(), QueryParams{})

	assert.NoError(t, err)
	assert.Equal(t, []string{"Anduin", "CompetitorA"}, series.Keys,
		"brand column leads even though the competitor has more volume on day one")
	assert.Equal(t, 1, series.Points[0].Values["Anduin"])
	assert.Equal(t, 2, series.Points[0].Values["CompetitorA"])
}

func TestServiceCompetitors_AllowListExcludesCompetitor(t *testing.T) {
	store := scenarioStore()
	store.citations = append(store.citations,
		models.Citation{ID: 4, URL: "c1", ResponseID: "r1", EntityID: 2, Platform: "ChatGPT"},
	)
	svc := newTestService(store)

	series, err := svc.Competitors(context.Background(), QueryParams{Competitors: []string{"SomeoneElse"}})

	assert.NoError(t, err)
	assert.Equal(t, []string{"Anduin"}, series.Keys, "the brand survives any allow-list")
}

func TestServiceSources(t *testing.T) {
	svc := newTestService(scenarioStore())

	rows, err := svc.Sources(context.Background(), QueryParams{})

	assert.NoError(t, err)
	assert.Equal(t, []SourceRow{
		{URL: "u1", Count: 2, Entities: "Anduin"},
		{URL: "u2", Count: 1, Entities: "Anduin"},
	}, rows)
}

func TestServiceSources_EmptyWindow(t *testing.T) {
	svc := newTestService(scenarioStore())

	rows, err := svc.Sources(context.Background(), QueryParams{DateFilter: "2030-01-01"})

	assert.NoError(t, err)
	assert.NotNil(t, rows)
	assert.Empty(t, rows)
}

func TestServiceTopEntities(t *testing.T) {
	store := scenarioStore()
	store.entities = append(store.entities,
		models.Entity{ID: 3, Name: "SomeVendor", Type: models.EntityTypeOther},
	)
	store.citations = append(store.citations,
		models.Citation{ID: 4, URL: "v1", ResponseID: "r1", EntityID: 3, Platform: "ChatGPT"},
	)
	svc := newTestService(store)

	ranks, err := svc.TopEntities(context.Background(), QueryParams{})

	assert.NoError(t, err)
	assert.Equal(t, []EntityRank{
		{Name: "Anduin", Count: 3},
		{Name: "SomeVendor", Count: 1},
	}, ranks, "ranking counts rows, so the duplicate u1 citation counts twice")
}

func TestServiceSummary(t *testing.T) {
	store := &fakeStore{
		entities: []models.Entity{
			{ID: 1, Name: "Anduin", Type: models.EntityTypeBrand},
		},
		responses: []models.Response{
			{ID: "cur1", Date: utc("2024-02-10T00:00:00Z")},
			{ID: "cur2", Date: utc("2024-02-12T00:00:00Z")},
			{ID: "prev1", Date: utc("2024-01-10T00:00:00Z")},
		},
		citations: []models.Citation{
			// Current window: three rows over two distinct urls.
			{ID: 1, URL: "u1", ResponseID: "cur1", EntityID: 1, Platform: "ChatGPT"},
			{ID: 2, URL: "u1", ResponseID: "cur2", EntityID: 1, Platform: "ChatGPT"},
			{ID: 3, URL: "u2", ResponseID: "cur2", EntityID: 1, Platform: "ChatGPT"},
			// Previous window: one row, one url.
			{ID: 4, URL: "u3", ResponseID: "prev1", EntityID: 1, Platform: "ChatGPT"},
		},
	}
	svc := newTestService(store)
	svc.windows.now = func() time.Time { return utc("2024-02-15T00:00:00Z") }

	summary, err := svc.Summary(context.Background(), QueryParams{})

	assert.NoError(t, err)
	assert.Equal(t, GrowthSummary{
		CurrentCitations:  2,
		PreviousCitations: 1,
		CitationGrowth:    100.0,
		CurrentMentions:   3,
		PreviousMentions:  1,
		MentionGrowth:     200.0,
	}, summary)
}

func TestServiceSummary_NegativeDaysClampToZeroWindow(t *testing.T) {
	store := &fakeStore{
		entities: []models.Entity{
			{ID: 1, Name: "Anduin", Type: models.EntityTypeBrand},
		},
		responses: []models.Response{
			{ID: "cur1", Date: utc("2024-02-10T00:00:00Z")},
		},
		citations: []models.Citation{
			{ID: 1, URL: "u1", ResponseID: "cur1", EntityID: 1, Platform: "ChatGPT"},
		},
	}
	svc := newTestService(store)
	svc.windows.now = func() time.Time { return utc("2024-02-15T00:00:00Z") }

	summary, err := svc.Summary(context.Background(), QueryParams{Days: -5})

	assert.NoError(t, err)
	assert.Equal(t, GrowthSummary{}, summary,
		"negative length is a zero-length window, not the configured default")
}

func TestServiceSummary_ZeroBaseline(t *testing.T) {
	store := &fakeStore{
		entities: []models.Entity{
			{ID: 1, Name: "Anduin", Type: models.EntityTypeBrand},
		},
		responses: []models.Response{
			{ID: "cur1", Date: utc("2024-02-10T00:00:00Z")},
		},
		citations: []models.Citation{
			{ID: 1, URL: "u1", ResponseID: "cur1", EntityID: 1, Platform: "ChatGPT"},
		},
	}
	svc := newTestService(store)
	svc.windows.now = func() time.Time { return utc("2024-02-15T00:00:00Z") }

	summary, err := svc.Summary(context.Background(), QueryParams{})

	assert.NoError(t, err)
	assert.Equal(t, 0.0, summary.CitationGrowth, "empty previous window reports zero growth")
	assert.Equal(t, 1, summary.CurrentCitations)
}

func TestServiceInsights(t *testing.T) {
	store := scenarioStore()
	store.citations = append(store.citations,
		models.Citation{ID: 4, URL: "c1", ResponseID: "r1", EntityID: 2, Platform: "ChatGPT"},
	)
	svc := newTestService(store)

	insights, err := svc.Insights(context.Background(), QueryParams{})

	assert.NoError(t, err)
	assert.Len(t, insights, 3)
	assert.Equal(t, InsightTopCompetitor, insights[0].Type)
	assert.Contains(t, insights[0].Title, "CompetitorA")
	assert.Equal(t, InsightTopCluster, insights[1].Type)
	assert.Equal(t, InsightTopPlatform, insights[2].Type)
}

func TestServiceInsights_NoCompetitorCitations(t *testing.T) {
	svc := newTestService(scenarioStore())

	insights, err := svc.Insights(context.Background(), QueryParams{})

	assert.NoError(t, err)
	assert.Len(t, insights, 2, "competitor category is skipped when its top count is zero")
	assert.Equal(t, InsightTopCluster, insights[0].Type)
	assert.Equal(t, InsightTopPlatform, insights[1].Type)
}
