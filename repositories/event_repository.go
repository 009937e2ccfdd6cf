package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"
	"github.com/matchpoint-app/matchpoint/models"
)

var ErrEventNotFound = errors.New("event not found")

// EventRepository is read-only to the core: events and their lane scoring
// configuration are managed elsewhere.
type EventRepository interface {
	GetByID(ctx context.Context, id string) (*models.Event, error)
	GetLaneConfig(ctx context.Context, eventID string, losersBracket bool) (models.LaneConfig, error)
}

type postgresEventRepository struct {
	db *sql.DB
}

func NewPostgresEventRepository(db *sql.DB) EventRepository {
	return &postgresEventRepository{db: db}
}

func (r *postgresEventRepository) GetByID(ctx context.Context, id string) (*models.Event, error) {
	query := `
		SELECT id, name, location, start_date,
		       winner_set_count, winner_score_limits, winner_points_to_victory,
		       loser_set_count, loser_score_limits, loser_points_to_victory,
		       created_at
		FROM events
		WHERE id = $1`

	event := &models.Event{}
	var winnerLimits, winnerPoints, loserLimits, loserPoints pq.Int64Array
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&event.ID,
		&event.Name,
		&event.Location,
		&event.StartDate,
		&event.WinnerLane.SetCount,
		&winnerLimits,
		&winnerPoints,
		&event.LoserLane.SetCount,
		&loserLimits,
		&loserPoints,
		&event.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrEventNotFound
		}
		return nil, fmt.Errorf("failed to scan event %s: %w", id, err)
	}
	event.WinnerLane.ScoreLimits = int64SliceToInt(winnerLimits)
	event.WinnerLane.PointsToVictory = int64SliceToInt(winnerPoints)
	event.LoserLane.ScoreLimits = int64SliceToInt(loserLimits)
	event.LoserLane.PointsToVictory = int64SliceToInt(loserPoints)
	return event, nil
}

func (r *postgresEventRepository) GetLaneConfig(ctx context.Context, eventID string, losersBracket bool) (models.LaneConfig, error) {
	event, err := r.GetByID(ctx, eventID)
	if err != nil {
		return models.LaneConfig{}, err
	}
	return event.Lane(losersBracket), nil
}
