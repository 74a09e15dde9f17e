// internal/api/handler_test.go
package api

import (
	"context"
	"encoding/json"
	"io"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"

	"github.com/hongngoc-nguyen/brandpulse/internal/analytics"
	"github.com/hongngoc-nguyen/brandpulse/internal/common/config"
	"github.com/hongngoc-nguyen/brandpulse/internal/common/errors"
	"github.com/hongngoc-nguyen/brandpulse/internal/common/logger"
	"github.com/hongngoc-nguyen/brandpulse/internal/models"
)

// stubStore is the minimal in-memory store the delivery tests need. It
// serves a fixed two-day scenario; setting err makes every call fail the way
// the postgres adapter fails.
type stubStore struct {
	err error
}

func (s *stubStore) EntitiesByTypes(_ context.Context, types []models.EntityType) ([]models.Entity, error) {
	if s.err != nil {
		return nil, s.err
	}
	all := []models.Entity{
		{ID: 1, Name: "Anduin", Type: models.EntityTypeBrand},
		{ID: 2, Name: "CompetitorA", Type: models.EntityTypeCompetitor},
	}
	wanted := make(map[models.EntityType]struct{}, len(types))
	for _, t := range types {
		wanted[t] = struct{}{}
	}
	var out []models.Entity
	for _, e := range all {
		if _, ok := wanted[e.Type]; ok {
			out = append(out, e)
		}
	}
	return out, nil
}

func (s *stubStore) PromptsByIDs(_ context.Context, _ []string) ([]models.Prompt, error) {
	if s.err != nil {
		return nil, s.err
	}
	return []models.Prompt{{ID: "p1", Cluster: "Fund Operations"}}, nil
}

func (s *stubStore) AllResponses(_ context.Context) ([]models.Response, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.responses(), nil
}

func (s *stubStore) ResponsesBetween(_ context.Context, lower, upper time.Time) ([]models.Response, error) {
	if s.err != nil {
		return nil, s.err
	}
	var out []models.Response
	for _, r := range s.responses() {
		if !r.Date.Before(lower) && r.Date.Before(upper) {
			out = append(out, r)
		}
	}
	return out, nil
}

func (s *stubStore) CitationsByEntityIDs(_ context.Context, ids []int64) ([]models.Citation, error) {
	if s.err != nil {
		return nil, s.err
	}
	all := []models.Citation{
		{ID: 1, URL: "u1", ResponseID: "r1", EntityID: 1, Platform: "ChatGPT"},
		{ID: 2, URL: "u1", ResponseID: "r1", EntityID: 1, Platform: "ChatGPT"},
		{ID: 3, URL: "u2", ResponseID: "r2", EntityID: 1, Platform: "Google AI"},
	}
	wanted := make(map[int64]struct{}, len(ids))
	for _, id := range ids {
		wanted[id] = struct{}{}
	}
	var out []models.Citation
	for _, c := range all {
		if _, ok := wanted[c.EntityID]; ok {
			out = append(out, c)
		}
	}
	return out, nil
}

func (s *stubStore) responses() []models.Response {
	day1, _ := time.Parse(time.RFC3339, "2024-01-01T09:00:00Z")
	day2, _ := time.Parse(time.RFC3339, "2024-01-02T09:00:00Z")
	return []models.Response{
		{ID: "r1", Date: day1, PromptID: "p1"},
		{ID: "r2", Date: day2, PromptID: "p1"},
	}
}

func newTestApp(store *stubStore) *fiber.App {
	cfg := config.AnalyticsConfig{
		BrandName:      "Anduin",
		DefaultDays:    30,
		TopEntityLimit: 20,
		MaxInsights:    3,
	}
	log := logger.NewNoOpLogger()
	service := analytics.NewService(store, cfg, log)
	handler := NewAnalyticsHandler(service, 5*time.Second, nil, nil, log)
	return NewApp(RouterOptions{Handler: handler, Logger: log, Version: "test"})
}

func TestTimelineEndpoint(t *testing.T) {
	app := newTestApp(&stubStore{})

	resp, err := app.Test(httptest.NewRequest("GET", "/v1/analytics/citations/timeline", nil))

	assert.NoError(t, err)
	assert.Equal(t, 200, resp.StatusCode)

	body, _ := io.ReadAll(resp.Body)
	var points []analytics.TimelinePoint
	assert.NoError(t, json.Unmarshal(body, &points))
	assert.Equal(t, []analytics.TimelinePoint{
		{Date: "2024-01-01", TotalResponses: 1, WithCitations: 1},
		{Date: "2024-01-02", TotalResponses: 1, WithCitations: 1},
	}, points)
}

func TestTimelineEndpoint_DateFilter(t *testing.T) {
	app := newTestApp(&stubStore{})

	resp, err := app.Test(httptest.NewRequest("GET", "/v1/analytics/citations/timeline?date=2024-01-01", nil))

	assert.NoError(t, err)
	assert.Equal(t, 200, resp.StatusCode)

	body, _ := io.ReadAll(resp.Body)
	var points []analytics.TimelinePoint
	assert.NoError(t, json.Unmarshal(body, &points))
	assert.Len(t, points, 1)
}

func TestTimelineEndpoint_BadDate(t *testing.T) {
	app := newTestApp(&stubStore{})

	resp, err := app.Test(httptest.NewRequest("GET", "/v1/analytics/citations/timeline?date=yesterday", nil))

	assert.NoError(t, err)
	assert.Equal(t, 400, resp.StatusCode)

	body, _ := io.ReadAll(resp.Body)
	var payload map[string]interface{}
	assert.NoError(t, json.Unmarshal(body, &payload))
	assert.Equal(t, "Invalid query parameters", payload["error"])
}

func TestSummaryEndpoint_BadDays(t *testing.T) {
	app := newTestApp(&stubStore{})

	resp, err := app.Test(httptest.NewRequest("GET", "/v1/analytics/summary?days=soon", nil))

	assert.NoError(t, err)
	assert.Equal(t, 400, resp.StatusCode)
}

func TestSourcesEndpoint(t *testing.T) {
	app := newTestApp(&stubStore{})

	resp, err := app.Test(httptest.NewRequest("GET", "/v1/analytics/citations/sources", nil))

	assert.NoError(t, err)
	assert.Equal(t, 200, resp.StatusCode)

	body, _ := io.ReadAll(resp.Body)
	var rows []analytics.SourceRow
	assert.NoError(t, json.Unmarshal(body, &rows))
	assert.Equal(t, []analytics.SourceRow{
		{URL: "u1", Count: 2, Entities: "Anduin"},
		{URL: "u2", Count: 1, Entities: "Anduin"},
	}, rows)
}

func TestCompetitorsEndpoint_AllowList(t *testing.T) {
	app := newTestApp(&stubStore{})

	resp, err := app.Test(httptest.NewRequest("GET", "/v1/analytics/citations/competitors?competitors=CompetitorA", nil))

	assert.NoError(t, err)
	assert.Equal(t, 200, resp.StatusCode)

	body, _ := io.ReadAll(resp.Body)
	var series analytics.Series
	assert.NoError(t, json.Unmarshal(body, &series))
	assert.Equal(t, []string{"Anduin", "CompetitorA"}, series.Keys)
}

func TestStoreFailureMapsTo502(t *testing.T) {
	app := newTestApp(&stubStore{err: errors.NewQueryExecutionFailedError("entities", assert.AnError)})

	resp, err := app.Test(httptest.NewRequest("GET", "/v1/analytics/citations/timeline", nil))

	assert.NoError(t, err)
	assert.Equal(t, 502, resp.StatusCode)

	body, _ := io.ReadAll(resp.Body)
	var payload map[string]interface{}
	assert.NoError(t, json.Unmarshal(body, &payload))
	assert.Equal(t, "failed to fetch analytics", payload["error"])
}

func TestHealthEndpoint(t *testing.T) {
	app := newTestApp(&stubStore{})

	resp, err := app.Test(httptest.NewRequest("GET", "/health", nil))

	assert.NoError(t, err)
	assert.Equal(t, 200, resp.StatusCode)
}

func TestRequestIDHeader(t *testing.T) {
	app := newTestApp(&stubStore{})

	resp, err := app.Test(httptest.NewRequest("GET", "/health", nil))
	assert.NoError(t, err)
	assert.NotEmpty(t, resp.Header.Get("X-Request-ID"))

	req := httptest.NewRequest("GET", "/health", nil)
	req.Header.Set("X-Request-ID", "upstream-id")
	resp, err = app.Test(req)
	assert.NoError(t, err)
	assert.Equal(t, "upstream-id", resp.Header.Get("X-Request-ID"))
}
