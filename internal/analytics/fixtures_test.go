// internal/analytics/fixtures_test.go
package analytics

import (
	"context"
	"time"

	"github.com/hongngoc-nguyen/brandpulse/internal/models"
)

// ==========================
// In-memory Store
// ==========================

// fakeStore implements store.Store over fixture slices, filtering in memory
// the same way the real adapter filters in SQL.
type fakeStore struct {
	entities  []models.Entity
	prompts   []models.Prompt
	responses []models.Response
	citations []models.Citation
	err       error
}

func (f *fakeStore) EntitiesByTypes(_ context.Context, types []models.EntityType) ([]models.Entity, error) {
	if f.err != nil {
		return nil, f.err
	}
	wanted := make(map[models.EntityType]struct{}, len(types))
	for _, t := range types {
		wanted[t] = struct{}{}
	}
	var out []models.Entity
	for _, e := range f.entities {
		if _, ok := wanted[e.Type]; ok {
			out = append(out, e)
		}
	}
	return out, nil
}

func (f *fakeStore) PromptsByIDs(_ context.Context, ids []string) ([]models.Prompt, error) {
	if f.err != nil {
		return nil, f.err
	}
	wanted := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		wanted[id] = struct{}{}
	}
	var out []models.Prompt
	for _, p := range f.prompts {
		if _, ok := wanted[p.ID]; ok {
			out = append(out, p)
		}
	}
	return out, nil
}

func (f *fakeStore) AllResponses(_ context.Context) ([]models.Response, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.responses, nil
}

func (f *fakeStore) ResponsesBetween(_ context.Context, lower, upper time.Time) ([]models.Response, error) {
	if f.err != nil {
		return nil, f.err
	}
	var out []models.Response
	for _, r := range f.responses {
		if !r.Date.Before(lower) && r.Date.Before(upper) {
			out = append(out, r)
		}
	}
	return out, nil
}

func (f *fakeStore) CitationsByEntityIDs(_ context.Context, ids []int64) ([]models.Citation, error) {
	if f.err != nil {
		return nil, f.err
	}
	wanted := make(map[int64]struct{}, len(ids))
	for _, id := range ids {
		wanted[id] = struct{}{}
	}
	var out []models.Citation
	for _, c := range f.citations {
		if _, ok := wanted[c.EntityID]; ok {
			out = append(out, c)
		}
	}
	return out, nil
}

// ==========================
// Fixture Helpers
// ==========================

func utc(value string) time.Time {
	t, err := time.Parse(time.RFC3339, value)
	if err != nil {
		panic(err)
	}
	return t
}

func windowFor(responses ...models.Response) ResponseWindow {
	return buildWindow(responses)
}

func resolvedFor(entities ...models.Entity) ResolvedEntities {
	resolved := ResolvedEntities{
		NameOf: make(map[int64]string),
		TypeOf: make(map[int64]models.EntityType),
	}
	for _, e := range entities {
		resolved.IDs = append(resolved.IDs, e.ID)
		resolved.NameOf[e.ID] = e.Name
		resolved.TypeOf[e.ID] = e.Type
	}
	return resolved
}
