package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/matchpoint-app/matchpoint/brackets"
	"github.com/matchpoint-app/matchpoint/models"
	"github.com/matchpoint-app/matchpoint/repositories"
	"github.com/matchpoint-app/matchpoint/scoring"
)

type MatchService interface {
	GetMatch(ctx context.Context, id string) (*models.Match, error)
	GetScoringState(ctx context.Context, matchID, actorTeamID string) (scoring.State, error)
	UpdateScore(ctx context.Context, matchID, actorTeamID string, isTeam1, increment bool) (scoring.State, error)
	ConfirmSet(ctx context.Context, matchID, actorTeamID string) (scoring.State, error)
	ConfirmRefereeCheckIn(ctx context.Context, matchID, actorTeamID string) (scoring.State, error)
	WatchMatch(matchID string) (<-chan models.Match, func())
}

// matchService keeps one live scoring engine per in-progress match. Engines
// are created lazily on the first scoring call and dropped once the match
// finishes; every confirmed write fans out through the watcher and the
// websocket hub.
type matchService struct {
	matchRepo repositories.MatchRepository
	eventRepo repositories.EventRepository
	watcher   *repositories.MatchWatcher
	hub       *brackets.Hub
	logger    *slog.Logger
	debounce  time.Duration

	mu      sync.Mutex
	engines map[string]*scoring.Engine
}

func NewMatchService(
	matchRepo repositories.MatchRepository,
	eventRepo repositories.EventRepository,
	watcher *repositories.MatchWatcher,
	hub *brackets.Hub,
	logger *slog.Logger,
	debounce time.Duration,
) MatchService {
	if logger == nil {
		logger = slog.Default()
	}
	return &matchService{
		matchRepo: matchRepo,
		eventRepo: eventRepo,
		watcher:   watcher,
		hub:       hub,
		logger:    logger,
		debounce:  debounce,
		engines:   make(map[string]*scoring.Engine),
	}
}

func (s *matchService) GetMatch(ctx context.Context, id string) (*models.Match, error) {
	match, err := s.matchRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repositories.ErrMatchNotFound) {
			return nil, ErrMatchNotFound
		}
		return nil, fmt.Errorf("failed to fetch match %s: %w", id, err)
	}
	return match, nil
}

func (s *matchService) GetScoringState(ctx context.Context, matchID, actorTeamID string) (scoring.State, error) {
	engine, err := s.engineFor(ctx, matchID)
	if err != nil {
		return scoring.State{}, err
	}
	return engine.State(actorTeamID), nil
}

func (s *matchService) UpdateScore(ctx context.Context, matchID, actorTeamID string, isTeam1, increment bool) (scoring.State, error) {
	engine, err := s.engineFor(ctx, matchID)
	if err != nil {
		return scoring.State{}, err
	}
	if err := engine.UpdateScore(ctx, isTeam1, increment); err != nil {
		return engine.State(actorTeamID), mapScoringError(err)
	}
	return engine.State(actorTeamID), nil
}

func (s *matchService) ConfirmSet(ctx context.Context, matchID, actorTeamID string) (scoring.State, error) {
	engine, err := s.engineFor(ctx, matchID)
	if err != nil {
		return scoring.State{}, err
	}
	if err := engine.ConfirmSet(ctx); err != nil {
		return engine.State(actorTeamID), mapScoringError(err)
	}
	state := engine.State(actorTeamID)
	if state.Finished {
		s.dropEngine(matchID)
	}
	return state, nil
}

func (s *matchService) ConfirmRefereeCheckIn(ctx context.Context, matchID, actorTeamID string) (scoring.State, error) {
	engine, err := s.engineFor(ctx, matchID)
	if err != nil {
		return scoring.State{}, err
	}
	if err := engine.ConfirmRefereeCheckIn(ctx, actorTeamID); err != nil {
		return engine.State(actorTeamID), mapScoringError(err)
	}
	return engine.State(actorTeamID), nil
}

func (s *matchService) WatchMatch(matchID string) (<-chan models.Match, func()) {
	return s.watcher.Watch(matchID)
}

// engineFor returns the live engine for the match, creating it on first use.
// Creation loads the match document and its lane scoring configuration.
func (s *matchService) engineFor(ctx context.Context, matchID string) (*scoring.Engine, error) {
	s.mu.Lock()
	if engine, ok := s.engines[matchID]; ok {
		s.mu.Unlock()
		return engine, nil
	}
	s.mu.Unlock()

	match, err := s.GetMatch(ctx, matchID)
	if err != nil {
		return nil, err
	}
	cfg, err := s.eventRepo.GetLaneConfig(ctx, match.EventID, match.LosersBracket)
	if err != nil {
		if errors.Is(err, repositories.ErrEventNotFound) {
			return nil, ErrEventNotFound
		}
		return nil, fmt.Errorf("failed to fetch lane config for event %s: %w", match.EventID, err)
	}

	eventID := match.EventID
	onUpdate := func(m models.Match, finished bool) {
		s.watcher.Notify(m)
		messageType := brackets.MessageMatchUpdated
		if finished {
			messageType = brackets.MessageMatchFinished
		}
		s.hub.BroadcastToRoom(eventRoomID(eventID), brackets.Message{
			Type:    messageType,
			Payload: m,
		})
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	// Another caller may have raced us here; keep the first engine so a
	// match never has two owners.
	if engine, ok := s.engines[matchID]; ok {
		return engine, nil
	}
	engine := scoring.NewEngine(s.matchRepo, cfg, match, s.debounce, s.logger, onUpdate)
	s.engines[matchID] = engine
	return engine, nil
}

func (s *matchService) dropEngine(matchID string) {
	s.mu.Lock()
	engine, ok := s.engines[matchID]
	if ok {
		delete(s.engines, matchID)
	}
	s.mu.Unlock()
	if ok {
		engine.Close()
	}
}

func mapScoringError(err error) error {
	switch {
	case errors.Is(err, scoring.ErrMatchFinished):
		return ErrMatchFinished
	case errors.Is(err, scoring.ErrSetAwaitingConfirmation):
		return ErrSetAwaitingConfirmation
	case errors.Is(err, scoring.ErrNoSetToConfirm):
		return ErrNoSetToConfirm
	case errors.Is(err, scoring.ErrSetTied):
		return ErrSetTied
	}
	return err
}
