// internal/store/store.go
package store

import (
	"context"
	"time"

	"github.com/hongngoc-nguyen/brandpulse/internal/models"
)

// Store is the bulk-read interface the analytics core consumes. Every method
// is a single flat fetch against one table; the store is never asked to filter
// on a joined table's columns. Cross-table narrowing happens in the core via
// id-set intersection.
type Store interface {
	// EntitiesByTypes returns all entities whose type is in types.
	EntitiesByTypes(ctx context.Context, types []models.EntityType) ([]models.Entity, error)

	// PromptsByIDs bulk-fetches prompts by id.
	PromptsByIDs(ctx context.Context, ids []string) ([]models.Prompt, error)

	// AllResponses returns every response with no lower bound.
	AllResponses(ctx context.Context) ([]models.Response, error)

	// ResponsesBetween returns responses in the half-open interval
	// [lower, upper).
	ResponsesBetween(ctx context.Context, lower, upper time.Time) ([]models.Response, error)

	// CitationsByEntityIDs returns all citations attributed to the given
	// entities in one bulk fetch, never per entity.
	CitationsByEntityIDs(ctx context.Context, ids []int64) ([]models.Citation, error)
}
