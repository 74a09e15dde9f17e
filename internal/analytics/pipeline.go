// internal/analytics/pipeline.go
package analytics

import (
	"context"

	"github.com/hongngoc-nguyen/brandpulse/internal/models"
	"github.com/hongngoc-nguyen/brandpulse/internal/store"
)

// CitationFilter is the two-stage retrieval pipeline for citation records.
// The store is only trusted to filter on the citation table's own columns;
// window membership is checked in memory because filtering on a related
// table's columns cannot be pushed down reliably.
type CitationFilter struct {
	store store.Store
}

func NewCitationFilter(s store.Store) *CitationFilter {
	return &CitationFilter{store: s}
}

// Filter retrieves the citations for the resolved entities and narrows them
// to the response window and platform. The order is fixed: entity filter
// (bulk fetch), then response-window membership, then platform equality.
// Each stage shrinks the working set before the next. The output keeps duplicates;
// URL dedup is every aggregator's own responsibility.
func (f *CitationFilter) Filter(ctx context.Context, entities ResolvedEntities, window ResponseWindow, platformFilter string) ([]models.Citation, error) {
	if entities.Empty() {
		return nil, nil
	}

	citations, err := f.store.CitationsByEntityIDs(ctx, entities.IDs)
	if err != nil {
		return nil, err
	}

	filtered := citations[:0:0]
	for _, c := range citations {
		if !window.Contains(c.ResponseID) {
			continue
		}
		if platformFilter != FilterAll && platformFilter != "" && c.Platform != platformFilter {
			continue
		}
		filtered = append(filtered, c)
	}

	return filtered, nil
}
