package repository

import (
	"context"

	"github.com/spec-kit/ecoeats/internal/domain"
)

// ImpactRepository is the append-only event log. There is deliberately no
// update or delete; aggregates are derived by summation over the log.
type ImpactRepository interface {
	Append(ctx context.Context, q Querier, event *domain.ImpactEvent) error
	SumByType(ctx context.Context) (map[domain.ImpactEventType]int64, error)
	ListRecent(ctx context.Context, limit int) ([]domain.ImpactEvent, error)
}

type impactRepository struct {
	db DB
}

// NewImpactRepository instantiates the repository.
func NewImpactRepository(db DB) ImpactRepository {
	return &impactRepository{db: db}
}

func (r *impactRepository) Append(ctx context.Context, q Querier, event *domain.ImpactEvent) error {
	const query = `
        INSERT INTO impact_events (event_type, related_id, count)
        VALUES ($1, $2, $3)
        RETURNING id, created_at`

	if q == nil {
		q = r.db
	}
	return q.QueryRow(ctx, query,
		event.EventType,
		event.RelatedID,
		event.Count,
	).Scan(&event.ID, &event.CreatedAt)
}

func (r *impactRepository) SumByType(ctx context.Context) (map[domain.ImpactEventType]int64, error) {
	const query = `SELECT event_type, COALESCE(SUM(count), 0) FROM impact_events GROUP BY event_type`
	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	sums := make(map[domain.ImpactEventType]int64)
	for rows.Next() {
		var eventType domain.ImpactEventType
		var total int64
		if err := rows.Scan(&eventType, &total); err != nil {
			return nil, err
		}
		sums[eventType] = total
	}
	return sums, rows.Err()
}

func (r *impactRepository) ListRecent(ctx context.Context, limit int) ([]domain.ImpactEvent, error) {
	const query = `
        SELECT id, event_type, related_id, count, created_at
        FROM impact_events ORDER BY created_at DESC LIMIT $1`
	rows, err := r.db.Query(ctx, query, normalizeLimit(limit))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.ImpactEvent
	for rows.Next() {
		var event domain.ImpactEvent
		if err := rows.Scan(
			&event.ID,
			&event.EventType,
			&event.RelatedID,
			&event.Count,
			&event.CreatedAt,
		); err != nil {
			return nil, err
		}
		result = append(result, event)
	}
	return result, rows.Err()
}
