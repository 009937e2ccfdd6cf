package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"
	"github.com/matchpoint-app/matchpoint/models"
)

var (
	ErrTeamNotFound     = errors.New("team not found")
	ErrTeamNameConflict = errors.New("team name is already in use")
)

type TeamRepository interface {
	GetByID(ctx context.Context, id string) (*models.Team, error)
	GetWithPlayers(ctx context.Context, id string) (*models.Team, error)
	ListByEvent(ctx context.Context, eventID string) ([]*models.Team, error)
	UpdateLogoKey(ctx context.Context, id string, logoKey *string) error
}

type postgresTeamRepository struct {
	db *sql.DB
}

func NewPostgresTeamRepository(db *sql.DB) TeamRepository {
	return &postgresTeamRepository{db: db}
}

func (r *postgresTeamRepository) GetByID(ctx context.Context, id string) (*models.Team, error) {
	query := `SELECT id, event_id, name, logo_key, created_at FROM teams WHERE id = $1`
	team := &models.Team{}
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&team.ID, &team.EventID, &team.Name, &team.LogoKey, &team.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrTeamNotFound
		}
		return nil, fmt.Errorf("failed to scan team %s: %w", id, err)
	}
	return team, nil
}

func (r *postgresTeamRepository) GetWithPlayers(ctx context.Context, id string) (*models.Team, error) {
	team, err := r.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	rows, err := r.db.QueryContext(ctx,
		`SELECT id, team_id, full_name FROM players WHERE team_id = $1 ORDER BY full_name ASC`, id)
	if err != nil {
		return nil, fmt.Errorf("failed to query players for team %s: %w", id, err)
	}
	defer rows.Close()

	for rows.Next() {
		var p models.Player
		if scanErr := rows.Scan(&p.ID, &p.TeamID, &p.FullName); scanErr != nil {
			return nil, fmt.Errorf("failed to scan player row: %w", scanErr)
		}
		team.Players = append(team.Players, p)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error during player rows iteration: %w", err)
	}
	return team, nil
}

func (r *postgresTeamRepository) ListByEvent(ctx context.Context, eventID string) ([]*models.Team, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, event_id, name, logo_key, created_at FROM teams WHERE event_id = $1 ORDER BY name ASC`, eventID)
	if err != nil {
		return nil, fmt.Errorf("failed to query teams for event %s: %w", eventID, err)
	}
	defer rows.Close()

	teams := make([]*models.Team, 0)
	for rows.Next() {
		team := &models.Team{}
		if scanErr := rows.Scan(&team.ID, &team.EventID, &team.Name, &team.LogoKey, &team.CreatedAt); scanErr != nil {
			return nil, fmt.Errorf("failed to scan team row: %w", scanErr)
		}
		teams = append(teams, team)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error during team rows iteration: %w", err)
	}
	return teams, nil
}

func (r *postgresTeamRepository) UpdateLogoKey(ctx context.Context, id string, logoKey *string) error {
	result, err := r.db.ExecContext(ctx, `UPDATE teams SET logo_key = $1 WHERE id = $2`, logoKey, id)
	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok && pqErr.Constraint == "teams_event_id_name_key" {
			return ErrTeamNameConflict
		}
		return err
	}
	return checkAffectedRows(result, ErrTeamNotFound)
}
