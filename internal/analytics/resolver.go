// internal/analytics/resolver.go
package analytics

import (
	"context"

	"github.com/hongngoc-nguyen/brandpulse/internal/models"
	"github.com/hongngoc-nguyen/brandpulse/internal/store"
)

// ResolvedEntities is the output of the entity resolver: the matching ids,
// the id lookups every aggregator needs, and nothing else.
type ResolvedEntities struct {
	IDs    []int64
	NameOf map[int64]string
	TypeOf map[int64]models.EntityType
}

// Empty reports whether no entities matched. Callers must short-circuit and
// return empty aggregate shapes instead of proceeding.
func (r ResolvedEntities) Empty() bool {
	return len(r.IDs) == 0
}

// Contains reports membership of an entity id.
func (r ResolvedEntities) Contains(id int64) bool {
	_, ok := r.NameOf[id]
	return ok
}

// EntityResolver maps entity classifications and an optional name allow-list
// to concrete entity ids.
type EntityResolver struct {
	store store.Store
}

func NewEntityResolver(s store.Store) *EntityResolver {
	return &EntityResolver{store: s}
}

// Resolve returns the entities of the given types, narrowed to nameFilter
// when it is non-empty. The name filter is applied in memory after one bulk
// fetch.
func (r *EntityResolver) Resolve(ctx context.Context, types []models.EntityType, nameFilter []string) (ResolvedEntities, error) {
	entities, err := r.store.EntitiesByTypes(ctx, types)
	if err != nil {
		return ResolvedEntities{}, err
	}

	var allowed map[string]struct{}
	if len(nameFilter) > 0 {
		allowed = make(map[string]struct{}, len(nameFilter))
		for _, name := range nameFilter {
			allowed[name] = struct{}{}
		}
	}

	resolved := ResolvedEntities{
		NameOf: make(map[int64]string),
		TypeOf: make(map[int64]models.EntityType),
	}
	for _, e := range entities {
		if allowed != nil {
			// Brand entities bypass the competitor allow-list; the filter
			// only narrows the competitor selection.
			if _, ok := allowed[e.Name]; !ok && e.Type != models.EntityTypeBrand {
				continue
			}
		}
		resolved.IDs = append(resolved.IDs, e.ID)
		resolved.NameOf[e.ID] = e.Name
		resolved.TypeOf[e.ID] = e.Type
	}

	return resolved, nil
}
