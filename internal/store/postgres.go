// internal/store/postgres.go
package store

import (
	"context"
	"database/sql"
	"time"

	"github.com/lib/pq"

	commonerrors "github.com/hongngoc-nguyen/brandpulse/internal/common/errors"
	"github.com/hongngoc-nguyen/brandpulse/internal/common/logger"
	"github.com/hongngoc-nguyen/brandpulse/internal/common/metrics"
	"github.com/hongngoc-nguyen/brandpulse/internal/models"
)

// PostgresStore implements Store over a PostgreSQL connection.
type PostgresStore struct {
	db     *sql.DB
	logger logger.Logger
}

func NewPostgresStore(db *sql.DB, log logger.Logger) *PostgresStore {
	return &PostgresStore{
		db: db,
		logger: log.With(map[string]interface{}{
			"component": "store",
		}),
	}
}

func (s *PostgresStore) EntitiesByTypes(ctx context.Context, types []models.EntityType) ([]models.Entity, error) {
	typeStrs := make([]string, len(types))
	for i, t := range types {
		typeStrs[i] = string(t)
	}

	query := `SELECT id, canonical_name, entity_type FROM entities WHERE entity_type = ANY($1)`
	rows, err := s.db.QueryContext(ctx, query, pq.Array(typeStrs))
	if err != nil {
		return nil, s.fetchError("entities", err)
	}
	defer rows.Close()

	var entities []models.Entity
	for rows.Next() {
		var e models.Entity
		if err := rows.Scan(&e.ID, &e.Name, &e.Type); err != nil {
			return nil, s.fetchError("entities", err)
		}
		entities = append(entities, e)
	}
	if err := rows.Err(); err != nil {
		return nil, s.fetchError("entities", err)
	}
	return entities, nil
}

func (s *PostgresStore) PromptsByIDs(ctx context.Context, ids []string) ([]models.Prompt, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	query := `SELECT id, prompt_cluster FROM prompts WHERE id = ANY($1)`
	rows, err := s.db.QueryContext(ctx, query, pq.Array(ids))
	if err != nil {
		return nil, s.fetchError("prompts", err)
	}
	defer rows.Close()

	var prompts []models.Prompt
	for rows.Next() {
		var p models.Prompt
		var cluster sql.NullString
		if err := rows.Scan(&p.ID, &cluster); err != nil {
			return nil, s.fetchError("prompts", err)
		}
		p.Cluster = cluster.String
		prompts = append(prompts, p)
	}
	if err := rows.Err(); err != nil {
		return nil, s.fetchError("prompts", err)
	}
	return prompts, nil
}

func (s *PostgresStore) AllResponses(ctx context.Context) ([]models.Response, error) {
	query := `SELECT id, response_date, prompt_id FROM responses`
	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, s.fetchError("responses", err)
	}
	defer rows.Close()
	return scanResponses(rows, s)
}

func (s *PostgresStore) ResponsesBetween(ctx context.Context, lower, upper time.Time) ([]models.Response, error) {
	// Half-open interval: lower inclusive, upper exclusive.
	query := `SELECT id, response_date, prompt_id FROM responses WHERE response_date >= $1 AND response_date < $2`
	rows, err := s.db.QueryContext(ctx, query, lower, upper)
	if err != nil {
		return nil, s.fetchError("responses", err)
	}
	defer rows.Close()
	return scanResponses(rows, s)
}

func scanResponses(rows *sql.Rows, s *PostgresStore) ([]models.Response, error) {
	var responses []models.Response
	for rows.Next() {
		var r models.Response
		var promptID sql.NullString
		if err := rows.Scan(&r.ID, &r.Date, &promptID); err != nil {
			return nil, s.fetchError("responses", err)
		}
		r.PromptID = promptID.String
		responses = append(responses, r)
	}
	if err := rows.Err(); err != nil {
		return nil, s.fetchError("responses", err)
	}
	return responses, nil
}

func (s *PostgresStore) CitationsByEntityIDs(ctx context.Context, ids []int64) ([]models.Citation, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	query := `SELECT id, url, response_id, entity_id, platform, name FROM citations WHERE entity_id = ANY($1)`
	rows, err := s.db.QueryContext(ctx, query, pq.Array(ids))
	if err != nil {
		return nil, s.fetchError("citations", err)
	}
	defer rows.Close()

	var citations []models.Citation
	for rows.Next() {
		var c models.Citation
		var name sql.NullString
		if err := rows.Scan(&c.ID, &c.URL, &c.ResponseID, &c.EntityID, &c.Platform, &name); err != nil {
			return nil, s.fetchError("citations", err)
		}
		c.Name = name.String
		citations = append(citations, c)
	}
	if err := rows.Err(); err != nil {
		return nil, s.fetchError("citations", err)
	}
	return citations, nil
}

func (s *PostgresStore) fetchError(table string, err error) error {
	metrics.StoreFetchErrors.WithLabelValues(table).Inc()
	s.logger.Error("store fetch failed", map[string]interface{}{
		"table": table,
		"error": err.Error(),
	})
	return commonerrors.NewQueryExecutionFailedError(table, err)
}
