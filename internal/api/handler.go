// internal/api/handler.go
//
// HTTP delivery for the analytics engine. Handlers translate query strings
// into the flat parameter bag, delegate to the service, and map the service's
// error taxonomy onto status codes. Upstream store failures surface as 502
// with the generic fetch-failure message so the dashboard can distinguish
// "our data source is down" from "we have a bug".
package api

import (
	"context"
	"strconv"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/hongngoc-nguyen/brandpulse/internal/analytics"
	"github.com/hongngoc-nguyen/brandpulse/internal/common/errors"
	"github.com/hongngoc-nguyen/brandpulse/internal/common/logger"
	"github.com/hongngoc-nguyen/brandpulse/internal/common/metrics"
	"github.com/hongngoc-nguyen/brandpulse/internal/common/observability"
)

type AnalyticsHandler struct {
	service *analytics.Service
	timeout time.Duration
	obs     *observability.Observability
	tracer  *observability.Tracing
	logger  logger.Logger
}

// NewAnalyticsHandler wires the delivery layer. obs and tracer may be nil
// when telemetry is disabled; timeout <= 0 disables the per-query deadline.
func NewAnalyticsHandler(service *analytics.Service, timeout time.Duration, obs *observability.Observability, tracer *observability.Tracing, log logger.Logger) *AnalyticsHandler {
	return &AnalyticsHandler{
		service: service,
		timeout: timeout,
		obs:     obs,
		tracer:  tracer,
		logger:  log.With(map[string]interface{}{"component": "api"}),
	}
}

// ==========================
// Endpoints
// ==========================

func (h *AnalyticsHandler) Timeline(c *fiber.Ctx) error {
	return h.serve(c, "timeline", func(ctx context.Context, params analytics.QueryParams) (interface{}, error) {
		return h.service.Timeline(ctx, params)
	})
}

func (h *AnalyticsHandler) Platforms(c *fiber.Ctx) error {
	return h.serve(c, "platforms", func(ctx context.Context, params analytics.QueryParams) (interface{}, error) {
		return h.service.Platforms(ctx, params)
	})
}

func (h *AnalyticsHandler) Clusters(c *fiber.Ctx) error {
	return h.serve(c, "clusters", func(ctx context.Context, params analytics.QueryParams) (interface{}, error) {
		return h.service.Clusters(ctx, params)
	})
}

func (h *AnalyticsHandler) Competitors(c *fiber.Ctx) error {
	return h.serve(c, "competitors", func(ctx context.Context, params analytics.QueryParams) (interface{}, error) {
		return h.service.Competitors(ctx, params)
	})
}

func (h *AnalyticsHandler) Sources(c *fiber.Ctx) error {
	return h.serve(c, "sources", func(ctx context.Context, params analytics.QueryParams) (interface{}, error) {
		return h.service.Sources(ctx, params)
	})
}

func (h *AnalyticsHandler) TopEntities(c *fiber.Ctx) error {
	return h.serve(c, "top_entities", func(ctx context.Context, params analytics.QueryParams) (interface{}, error) {
		return h.service.TopEntities(ctx, params)
	})
}

func (h *AnalyticsHandler) Summary(c *fiber.Ctx) error {
	return h.serve(c, "summary", func(ctx context.Context, params analytics.QueryParams) (interface{}, error) {
		return h.service.Summary(ctx, params)
	})
}

func (h *AnalyticsHandler) Insights(c *fiber.Ctx) error {
	return h.serve(c, "insights", func(ctx context.Context, params analytics.QueryParams) (interface{}, error) {
		return h.service.Insights(ctx, params)
	})
}

// ==========================
// Shared plumbing
// ==========================

type queryFunc func(ctx context.Context, params analytics.QueryParams) (interface{}, error)

func (h *AnalyticsHandler) serve(c *fiber.Ctx, query string, fn queryFunc) error {
	params, err := parseQueryParams(c)
	if err != nil {
		message, details := "Invalid query parameters", err.Error()
		if stdErr, ok := errors.AsStandardError(err); ok {
			message, details = stdErr.Message, stdErr.Details
		}
		metrics.AnalyticsQueriesFailed.WithLabelValues(query, string(errors.ErrCodeInvalidParameters)).Inc()
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error":   message,
			"details": details,
		})
	}

	ctx := c.UserContext()
	if h.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, h.timeout)
		defer cancel()
	}
	if h.tracer != nil {
		spanCtx, span := h.tracer.StartSpan(ctx, "analytics."+query)
		defer span.End()
		ctx = spanCtx
	}

	start := time.Now()
	result, err := fn(ctx, params)
	elapsed := time.Since(start)
	metrics.AnalyticsQueryDuration.WithLabelValues(query).Observe(elapsed.Seconds())
	if h.obs != nil {
		h.obs.RecordQueryDuration(ctx, query, elapsed)
	}

	if err != nil {
		if h.obs != nil {
			h.obs.RecordQueryProcessed(ctx, query, "error")
		}
		return h.fail(c, query, err)
	}

	metrics.AnalyticsQueriesTotal.WithLabelValues(query).Inc()
	if h.obs != nil {
		h.obs.RecordQueryProcessed(ctx, query, "ok")
	}
	return c.JSON(result)
}

func (h *AnalyticsHandler) fail(c *fiber.Ctx, query string, err error) error {
	code := "INTERNAL"
	if stdErr, ok := errors.AsStandardError(err); ok {
		code = string(stdErr.Code)
	}
	metrics.AnalyticsQueriesFailed.WithLabelValues(query, code).Inc()

	h.logger.Error("analytics query failed", map[string]interface{}{
		"query": query,
		"error": err.Error(),
	})

	if errors.IsFetchFailure(err) {
		return c.Status(fiber.StatusBadGateway).JSON(fiber.Map{
			"error": "failed to fetch analytics",
		})
	}
	return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
		"error": "internal server error",
	})
}

// parseQueryParams builds the parameter bag from the query string. The raw
// values are schema-checked before normalization so malformed input comes
// back as a 400 instead of quietly matching nothing.
func parseQueryParams(c *fiber.Ctx) (analytics.QueryParams, error) {
	doc := make(map[string]interface{})
	params := analytics.QueryParams{}

	if date := c.Query("date"); date != "" {
		doc["date"] = date
		params.DateFilter = date
	}
	if platform := c.Query("platform"); platform != "" {
		doc["platform"] = platform
		params.PlatformFilter = platform
	}
	if raw := c.Query("days"); raw != "" {
		days, err := strconv.Atoi(raw)
		if err != nil {
			return analytics.QueryParams{}, errors.NewInvalidParametersError("days must be an integer")
		}
		doc["days"] = days
		params.Days = days
	}
	if raw := c.Query("competitors"); raw != "" {
		var names []string
		values := make([]interface{}, 0)
		for _, name := range strings.Split(raw, ",") {
			name = strings.TrimSpace(name)
			if name == "" {
				continue
			}
			names = append(names, name)
			values = append(values, name)
		}
		doc["competitors"] = values
		params.Competitors = names
	}

	if err := validateQuery(doc); err != nil {
		return analytics.QueryParams{}, err
	}
	return params, nil
}
