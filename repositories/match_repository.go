package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/lib/pq"
	"github.com/matchpoint-app/matchpoint/models"
)

var (
	ErrMatchNotFound      = errors.New("match not found")
	ErrMatchEventInvalid  = errors.New("match event conflict or invalid")
	ErrMatchTeamInvalid   = errors.New("match team conflict or invalid")
	ErrMatchLinkInvalid   = errors.New("match bracket link conflict or invalid")
	ErrMatchAlreadyEnded  = errors.New("match already has an end time")
)

type MatchRepository interface {
	Create(ctx context.Context, exec SQLExecutor, match *models.Match) error
	GetByID(ctx context.Context, id string) (*models.Match, error)
	ListByEvent(ctx context.Context, eventID string) ([]*models.Match, error)
	Update(ctx context.Context, match *models.Match) error
	UpdateFinished(ctx context.Context, match *models.Match, endedAt time.Time) error
	UpdateBracketLinks(ctx context.Context, exec SQLExecutor, id string, winnerNextID, loserNextID *string) error
	Delete(ctx context.Context, id string) error
}

type postgresMatchRepository struct {
	db *sql.DB
}

func NewPostgresMatchRepository(db *sql.DB) MatchRepository {
	return &postgresMatchRepository{db: db}
}

const matchColumns = `
	id, event_id, match_number, team1_id, team2_id,
	team_referee_id, referee_checked_in,
	team1_points, team2_points, set_results, losers_bracket,
	winner_next_id, loser_next_id, previous_left_id, previous_right_id,
	started_at, ended_at, created_at`

func (r *postgresMatchRepository) Create(ctx context.Context, exec SQLExecutor, match *models.Match) error {
	query := `
		INSERT INTO matches
			(id, event_id, match_number, team1_id, team2_id,
			 team_referee_id, referee_checked_in,
			 team1_points, team2_points, set_results, losers_bracket,
			 winner_next_id, loser_next_id, previous_left_id, previous_right_id,
			 started_at, ended_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17)
		RETURNING created_at`

	err := exec.QueryRowContext(ctx, query,
		match.ID,
		match.EventID,
		match.MatchNumber,
		match.Team1ID,
		match.Team2ID,
		match.TeamRefereeID,
		match.RefereeCheckedIn,
		pq.Array(intSliceToInt64(match.Team1Points)),
		pq.Array(intSliceToInt64(match.Team2Points)),
		pq.Array(intSliceToInt64(match.SetResults)),
		match.LosersBracket,
		match.WinnerNextID,
		match.LoserNextID,
		match.PreviousLeftID,
		match.PreviousRightID,
		match.StartedAt,
		match.EndedAt,
	).Scan(&match.CreatedAt)

	return r.handleMatchError(err)
}

func (r *postgresMatchRepository) GetByID(ctx context.Context, id string) (*models.Match, error) {
	query := `SELECT` + matchColumns + ` FROM matches WHERE id = $1`
	match, err := scanMatch(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrMatchNotFound
		}
		return nil, fmt.Errorf("failed to scan match %s: %w", id, err)
	}
	return match, nil
}

func (r *postgresMatchRepository) ListByEvent(ctx context.Context, eventID string) ([]*models.Match, error) {
	query := `SELECT` + matchColumns + ` FROM matches WHERE event_id = $1 ORDER BY match_number ASC NULLS LAST, id ASC`
	rows, err := r.db.QueryContext(ctx, query, eventID)
	if err != nil {
		return nil, fmt.Errorf("failed to query matches for event %s: %w", eventID, err)
	}
	defer rows.Close()

	matches := make([]*models.Match, 0)
	for rows.Next() {
		match, scanErr := scanMatch(rows)
		if scanErr != nil {
			return nil, fmt.Errorf("failed to scan match row: %w", scanErr)
		}
		matches = append(matches, match)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error during match rows iteration: %w", err)
	}
	return matches, nil
}

// Update persists the live-scoring fields of a match. Bracket links and the
// end timestamp are deliberately excluded; those go through their own paths.
func (r *postgresMatchRepository) Update(ctx context.Context, match *models.Match) error {
	query := `
		UPDATE matches
		SET team1_points = $1, team2_points = $2, set_results = $3,
		    team_referee_id = $4, referee_checked_in = $5, started_at = $6
		WHERE id = $7 AND ended_at IS NULL`

	result, err := r.db.ExecContext(ctx, query,
		pq.Array(intSliceToInt64(match.Team1Points)),
		pq.Array(intSliceToInt64(match.Team2Points)),
		pq.Array(intSliceToInt64(match.SetResults)),
		match.TeamRefereeID,
		match.RefereeCheckedIn,
		match.StartedAt,
		match.ID,
	)
	if err != nil {
		return r.handleMatchError(err)
	}
	return checkAffectedRows(result, ErrMatchNotFound)
}

// UpdateFinished is the finalize write path: it freezes the score and stamps
// the end time in one statement, guarded against double-finishing.
func (r *postgresMatchRepository) UpdateFinished(ctx context.Context, match *models.Match, endedAt time.Time) error {
	query := `
		UPDATE matches
		SET team1_points = $1, team2_points = $2, set_results = $3, ended_at = $4
		WHERE id = $5 AND ended_at IS NULL`

	result, err := r.db.ExecContext(ctx, query,
		pq.Array(intSliceToInt64(match.Team1Points)),
		pq.Array(intSliceToInt64(match.Team2Points)),
		pq.Array(intSliceToInt64(match.SetResults)),
		endedAt,
		match.ID,
	)
	if err != nil {
		return r.handleMatchError(err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check affected rows: %w", err)
	}
	if rowsAffected == 0 {
		// Distinguish a missing match from one finished by someone else.
		if _, getErr := r.GetByID(ctx, match.ID); getErr != nil {
			return getErr
		}
		return ErrMatchAlreadyEnded
	}
	return nil
}

func (r *postgresMatchRepository) UpdateBracketLinks(ctx context.Context, exec SQLExecutor, id string, winnerNextID, loserNextID *string) error {
	query := `UPDATE matches SET winner_next_id = $1, loser_next_id = $2 WHERE id = $3`
	result, err := exec.ExecContext(ctx, query, winnerNextID, loserNextID, id)
	if err != nil {
		return r.handleMatchError(err)
	}
	return checkAffectedRows(result, ErrMatchNotFound)
}

func (r *postgresMatchRepository) Delete(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM matches WHERE id = $1`, id)
	if err != nil {
		return err
	}
	return checkAffectedRows(result, ErrMatchNotFound)
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanMatch(row rowScanner) (*models.Match, error) {
	match := &models.Match{}
	var team1Points, team2Points, setResults pq.Int64Array
	err := row.Scan(
		&match.ID,
		&match.EventID,
		&match.MatchNumber,
		&match.Team1ID,
		&match.Team2ID,
		&match.TeamRefereeID,
		&match.RefereeCheckedIn,
		&team1Points,
		&team2Points,
		&setResults,
		&match.LosersBracket,
		&match.WinnerNextID,
		&match.LoserNextID,
		&match.PreviousLeftID,
		&match.PreviousRightID,
		&match.StartedAt,
		&match.EndedAt,
		&match.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	match.Team1Points = int64SliceToInt(team1Points)
	match.Team2Points = int64SliceToInt(team2Points)
	match.SetResults = int64SliceToInt(setResults)
	return match, nil
}

func (r *postgresMatchRepository) handleMatchError(err error) error {
	if err == nil {
		return nil
	}
	if pqErr, ok := err.(*pq.Error); ok {
		switch pqErr.Constraint {
		case "matches_event_id_fkey":
			return ErrMatchEventInvalid
		case "matches_team1_id_fkey", "matches_team2_id_fkey", "matches_team_referee_id_fkey":
			return ErrMatchTeamInvalid
		case "matches_winner_next_id_fkey", "matches_loser_next_id_fkey",
			"matches_previous_left_id_fkey", "matches_previous_right_id_fkey":
			return ErrMatchLinkInvalid
		}
	}
	return err
}
