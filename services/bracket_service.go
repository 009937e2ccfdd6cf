package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/matchpoint-app/matchpoint/brackets"
	"github.com/matchpoint-app/matchpoint/models"
	"github.com/matchpoint-app/matchpoint/repositories"
	"golang.org/x/sync/errgroup"
)

// EventBracket is the render-ready view of one event's bracket. Rounds are
// derived only when the stored graph validates; on a broken graph the
// validation result carries the findings and both round lists stay nil
// rather than rendering a misleading partial bracket.
type EventBracket struct {
	Event      *models.Event     `json:"event"`
	Matches    []*models.Match   `json:"matches"`
	Teams      []*models.Team    `json:"teams"`
	Validation brackets.Result   `json:"validation"`
	WinnerRounds [][]*models.Match `json:"winner_rounds,omitempty"`
	LoserRounds  [][]*models.Match `json:"loser_rounds,omitempty"`
}

type BracketService interface {
	GetEventBracket(ctx context.Context, eventID string) (*EventBracket, error)
	ValidateEventBracket(ctx context.Context, eventID string) (brackets.Result, error)
	ListNextMatchCandidates(ctx context.Context, matchID string, lane brackets.Lane) ([]string, error)
	UpdateMatchLinks(ctx context.Context, matchID string, winnerNextID, loserNextID *string) error
}

type bracketService struct {
	db        *sql.DB
	matchRepo repositories.MatchRepository
	teamRepo  repositories.TeamRepository
	eventRepo repositories.EventRepository
	hub       *brackets.Hub
	logger    *slog.Logger
}

func NewBracketService(
	db *sql.DB,
	matchRepo repositories.MatchRepository,
	teamRepo repositories.TeamRepository,
	eventRepo repositories.EventRepository,
	hub *brackets.Hub,
	logger *slog.Logger,
) BracketService {
	if logger == nil {
		logger = slog.Default()
	}
	return &bracketService{
		db:        db,
		matchRepo: matchRepo,
		teamRepo:  teamRepo,
		eventRepo: eventRepo,
		hub:       hub,
		logger:    logger,
	}
}

func eventRoomID(eventID string) string {
	return "event_" + eventID
}

func (s *bracketService) GetEventBracket(ctx context.Context, eventID string) (*EventBracket, error) {
	bracket := &EventBracket{}

	g, gCtx := errgroup.WithContext(ctx)
	g.Go(func() error {
		event, err := s.eventRepo.GetByID(gCtx, eventID)
		if err != nil {
			if errors.Is(err, repositories.ErrEventNotFound) {
				return ErrEventNotFound
			}
			return fmt.Errorf("failed to fetch event %s: %w", eventID, err)
		}
		bracket.Event = event
		return nil
	})
	g.Go(func() error {
		matches, err := s.matchRepo.ListByEvent(gCtx, eventID)
		if err != nil {
			return fmt.Errorf("failed to list matches for event %s: %w", eventID, err)
		}
		bracket.Matches = matches
		return nil
	})
	g.Go(func() error {
		teams, err := s.teamRepo.ListByEvent(gCtx, eventID)
		if err != nil {
			return fmt.Errorf("failed to list teams for event %s: %w", eventID, err)
		}
		bracket.Teams = teams
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	bracket.Validation = brackets.Validate(brackets.NodesFromMatches(bracket.Matches))
	if bracket.Validation.OK {
		brackets.ResolveLinks(bracket.Matches)
		bracket.WinnerRounds = brackets.BuildRounds(bracket.Matches, false)
		bracket.LoserRounds = brackets.BuildRounds(bracket.Matches, true)
	}
	return bracket, nil
}

func (s *bracketService) ValidateEventBracket(ctx context.Context, eventID string) (brackets.Result, error) {
	matches, err := s.matchRepo.ListByEvent(ctx, eventID)
	if err != nil {
		return brackets.Result{}, fmt.Errorf("failed to list matches for event %s: %w", eventID, err)
	}
	return brackets.Validate(brackets.NodesFromMatches(matches)), nil
}

// ListNextMatchCandidates answers which matches may legally become the given
// match's winner-next or loser-next target. An unknown match id yields an
// empty list, not an error.
func (s *bracketService) ListNextMatchCandidates(ctx context.Context, matchID string, lane brackets.Lane) ([]string, error) {
	if lane != brackets.LaneWinner && lane != brackets.LaneLoser {
		return nil, ErrInvalidLane
	}
	match, err := s.matchRepo.GetByID(ctx, matchID)
	if err != nil {
		if errors.Is(err, repositories.ErrMatchNotFound) {
			return []string{}, nil
		}
		return nil, fmt.Errorf("failed to fetch match %s: %w", matchID, err)
	}
	matches, err := s.matchRepo.ListByEvent(ctx, match.EventID)
	if err != nil {
		return nil, fmt.Errorf("failed to list matches for event %s: %w", match.EventID, err)
	}
	candidates := brackets.FilterValidNextMatchCandidates(matchID, brackets.NodesFromMatches(matches), lane)
	if candidates == nil {
		candidates = []string{}
	}
	return candidates, nil
}

// UpdateMatchLinks re-points a match's outgoing bracket edges. The whole
// candidate graph is validated before anything is persisted; a structurally
// broken result is rejected wholesale.
func (s *bracketService) UpdateMatchLinks(ctx context.Context, matchID string, winnerNextID, loserNextID *string) error {
	match, err := s.matchRepo.GetByID(ctx, matchID)
	if err != nil {
		if errors.Is(err, repositories.ErrMatchNotFound) {
			return ErrMatchNotFound
		}
		return fmt.Errorf("failed to fetch match %s: %w", matchID, err)
	}

	matches, err := s.matchRepo.ListByEvent(ctx, match.EventID)
	if err != nil {
		return fmt.Errorf("failed to list matches for event %s: %w", match.EventID, err)
	}

	nodes := brackets.NodesFromMatches(matches)
	for i := range nodes {
		if nodes[i].ID == matchID {
			nodes[i].WinnerNextID = winnerNextID
			nodes[i].LoserNextID = loserNextID
		}
	}

	result := brackets.Validate(nodes)
	if !result.OK {
		return fmt.Errorf("%w: %s", ErrBracketInvalid, result.Errors[0].Message)
	}

	if err := s.matchRepo.UpdateBracketLinks(ctx, s.db, matchID, winnerNextID, loserNextID); err != nil {
		if errors.Is(err, repositories.ErrMatchNotFound) {
			return ErrMatchNotFound
		}
		return fmt.Errorf("failed to update bracket links for match %s: %w", matchID, err)
	}

	s.hub.BroadcastToRoom(eventRoomID(match.EventID), brackets.Message{
		Type:    brackets.MessageBracketUpdated,
		Payload: map[string]string{"match_id": matchID},
	})
	return nil
}
