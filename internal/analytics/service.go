// internal/analytics/service.go
package analytics

import (
	"context"
	"sync"

	"github.com/hongngoc-nguyen/brandpulse/internal/common/config"
	"github.com/hongngoc-nguyen/brandpulse/internal/common/logger"
	"github.com/hongngoc-nguyen/brandpulse/internal/models"
	"github.com/hongngoc-nguyen/brandpulse/internal/store"
)

// Service orchestrates one aggregation request: resolve entities and select
// the response window, narrow citations through the pipeline, then run the
// pure aggregator. All lookup maps are request-scoped; nothing is cached
// across requests, since underlying data can change between them.
type Service struct {
	store    store.Store
	resolver *EntityResolver
	windows  *WindowSelector
	filter   *CitationFilter
	config   config.AnalyticsConfig
	logger   logger.Logger
}

func NewService(s store.Store, cfg config.AnalyticsConfig, log logger.Logger) *Service {
	return &Service{
		store:    s,
		resolver: NewEntityResolver(s),
		windows:  NewWindowSelector(s),
		filter:   NewCitationFilter(s),
		config:   cfg,
		logger: log.With(map[string]interface{}{
			"component": "analytics",
		}),
	}
}

var brandOnly = []models.EntityType{models.EntityTypeBrand}
var brandAndCompetitors = []models.EntityType{models.EntityTypeBrand, models.EntityTypeCompetitor}
var allEntityTypes = []models.EntityType{models.EntityTypeBrand, models.EntityTypeCompetitor, models.EntityTypeOther}

// Timeline serves the unique-citation-over-time chart for the tracked brand.
func (s *Service) Timeline(ctx context.Context, params QueryParams) ([]TimelinePoint, error) {
	params.Normalize()

	entities, window, err := s.resolveAndSelect(ctx, brandOnly, nil, params.DateFilter)
	if err != nil {
		return nil, err
	}
	if entities.Empty() {
		return []TimelinePoint{}, nil
	}

	citations, err := s.filter.Filter(ctx, entities, window, params.PlatformFilter)
	if err != nil {
		return nil, err
	}

	return CitationTimeline(citations, window), nil
}

// Platforms serves the platform-distribution-over-time chart for the brand.
func (s *Service) Platforms(ctx context.Context, params QueryParams) (Series, error) {
	params.Normalize()

	entities, window, err := s.resolveAndSelect(ctx, brandOnly, nil, params.DateFilter)
	if err != nil {
		return Series{}, err
	}
	if entities.Empty() {
		return emptySeries(), nil
	}

	citations, err := s.filter.Filter(ctx, entities, window, params.PlatformFilter)
	if err != nil {
		return Series{}, err
	}

	return PlatformDistribution(citations, window), nil
}

// Clusters serves the cluster-distribution-over-time chart for the brand.
func (s *Service) Clusters(ctx context.Context, params QueryParams) (Series, error) {
	params.Normalize()

	entities, window, err := s.resolveAndSelect(ctx, brandOnly, nil, params.DateFilter)
	if err != nil {
		return Series{}, err
	}
	if entities.Empty() {
		return emptySeries(), nil
	}

	citations, err := s.filter.Filter(ctx, entities, window, params.PlatformFilter)
	if err != nil {
		return Series{}, err
	}

	clusterOf, err := s.clusterLookup(ctx, window)
	if err != nil {
		return Series{}, err
	}

	return ClusterDistribution(citations, window, clusterOf), nil
}

// Competitors serves the brand-vs-competitors comparison chart. The
// competitor set may be narrowed by the params' name allow-list; the brand
// is always included.
func (s *Service) Competitors(ctx context.Context, params QueryParams) (Series, error) {
	params.Normalize()

	entities, window, err := s.resolveAndSelect(ctx, brandAndCompetitors, params.Competitors, params.DateFilter)
	if err != nil {
		return Series{}, err
	}
	if entities.Empty() {
		return emptySeries(), nil
	}

	citations, err := s.filter.Filter(ctx, entities, window, params.PlatformFilter)
	if err != nil {
		return Series{}, err
	}

	return EntityComparison(citations, window, entities, s.config.BrandName), nil
}

// Sources serves the citation-source table for the brand and the selected
// competitors.
func (s *Service) Sources(ctx context.Context, params QueryParams) ([]SourceRow, error) {
	params.Normalize()

	entities, window, err := s.resolveAndSelect(ctx, brandAndCompetitors, params.Competitors, params.DateFilter)
	if err != nil {
		return nil, err
	}
	if entities.Empty() {
		return []SourceRow{}, nil
	}

	citations, err := s.filter.Filter(ctx, entities, window, params.PlatformFilter)
	if err != nil {
		return nil, err
	}

	rows := CitationSources(citations, entities)
	if rows == nil {
		rows = []SourceRow{}
	}
	return rows, nil
}

// TopEntities serves the mention-frequency ranking across every entity type.
func (s *Service) TopEntities(ctx context.Context, params QueryParams) ([]EntityRank, error) {
	params.Normalize()

	entities, window, err := s.resolveAndSelect(ctx, allEntityTypes, nil, params.DateFilter)
	if err != nil {
		return nil, err
	}
	if entities.Empty() {
		return []EntityRank{}, nil
	}

	citations, err := s.filter.Filter(ctx, entities, window, params.PlatformFilter)
	if err != nil {
		return nil, err
	}

	ranks := TopEntities(citations, entities, s.config.TopEntityLimit)
	if ranks == nil {
		ranks = []EntityRank{}
	}
	return ranks, nil
}

// Summary compares the current rolling window against the previous one for
// the brand's distinct-URL and raw-mention counts.
func (s *Service) Summary(ctx context.Context, params QueryParams) (GrowthSummary, error) {
	params.Normalize()
	// Zero means unset and takes the configured default; a negative length
	// clamps to a zero-length window, which yields empty rolling windows.
	days := params.Days
	switch {
	case days < 0:
		days = 0
	case days == 0:
		days = s.config.DefaultDays
	}

	entities, err := s.resolver.Resolve(ctx, brandOnly, nil)
	if err != nil {
		return GrowthSummary{}, err
	}
	if entities.Empty() {
		return GrowthSummary{}, nil
	}

	current, previous, err := s.windows.SelectRolling(ctx, days)
	if err != nil {
		return GrowthSummary{}, err
	}

	currentCitations, err := s.filter.Filter(ctx, entities, current, params.PlatformFilter)
	if err != nil {
		return GrowthSummary{}, err
	}
	previousCitations, err := s.filter.Filter(ctx, entities, previous, params.PlatformFilter)
	if err != nil {
		return GrowthSummary{}, err
	}

	summary := GrowthSummary{
		CurrentCitations:  DistinctURLCount(currentCitations),
		PreviousCitations: DistinctURLCount(previousCitations),
		CurrentMentions:   len(currentCitations),
		PreviousMentions:  len(previousCitations),
	}
	summary.CitationGrowth = Rate(summary.CurrentCitations, summary.PreviousCitations)
	summary.MentionGrowth = Rate(summary.CurrentMentions, summary.PreviousMentions)

	s.logger.Debug("growth summary computed", map[string]interface{}{
		"days":              days,
		"currentCitations":  summary.CurrentCitations,
		"previousCitations": summary.PreviousCitations,
	})

	return summary, nil
}

// Insights derives the ranked highlight list from the window's aggregates.
func (s *Service) Insights(ctx context.Context, params QueryParams) ([]Insight, error) {
	params.Normalize()

	entities, window, err := s.resolveAndSelect(ctx, brandAndCompetitors, nil, params.DateFilter)
	if err != nil {
		return nil, err
	}
	if entities.Empty() {
		return []Insight{}, nil
	}

	citations, err := s.filter.Filter(ctx, entities, window, params.PlatformFilter)
	if err != nil {
		return nil, err
	}

	var brandCitations, competitorCitations []models.Citation
	for _, c := range citations {
		switch entities.TypeOf[c.EntityID] {
		case models.EntityTypeBrand:
			brandCitations = append(brandCitations, c)
		case models.EntityTypeCompetitor:
			competitorCitations = append(competitorCitations, c)
		}
	}

	clusterOf, err := s.clusterLookup(ctx, window)
	if err != nil {
		return nil, err
	}

	insights := GenerateInsights(
		TotalsByEntity(competitorCitations, entities),
		TotalsByCluster(brandCitations, window, clusterOf),
		TotalsByPlatform(brandCitations),
		s.config.MaxInsights,
	)
	return insights, nil
}

// resolveAndSelect runs the entity resolver and window selector concurrently;
// they have no ordering dependency on each other, only on their caller.
func (s *Service) resolveAndSelect(ctx context.Context, types []models.EntityType, nameFilter []string, dateFilter string) (ResolvedEntities, ResponseWindow, error) {
	var (
		wg       sync.WaitGroup
		entities ResolvedEntities
		window   ResponseWindow
	)
	errChan := make(chan error, 2)

	wg.Add(2)
	go func() {
		defer wg.Done()
		var err error
		entities, err = s.resolver.Resolve(ctx, types, nameFilter)
		if err != nil {
			errChan <- err
		}
	}()
	go func() {
		defer wg.Done()
		var err error
		window, err = s.windows.Select(ctx, dateFilter)
		if err != nil {
			errChan <- err
		}
	}()

	wg.Wait()
	close(errChan)

	for err := range errChan {
		return ResolvedEntities{}, ResponseWindow{}, err
	}
	return entities, window, nil
}

// clusterLookup builds the prompt id -> cluster map for the window's prompts.
func (s *Service) clusterLookup(ctx context.Context, window ResponseWindow) (map[string]string, error) {
	prompts, err := s.store.PromptsByIDs(ctx, window.PromptIDs())
	if err != nil {
		return nil, err
	}

	clusterOf := make(map[string]string, len(prompts))
	for _, p := range prompts {
		clusterOf[p.ID] = p.Cluster
	}
	return clusterOf, nil
}

func emptySeries() Series {
	return Series{Keys: []string{}, Points: []SeriesPoint{}}
}
