package services

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/matchpoint-app/matchpoint/models"
	"github.com/matchpoint-app/matchpoint/repositories"
)

func strPtr(s string) *string { return &s }

// fakeMatchRepo is an in-memory MatchRepository. All methods hand out and
// store clones so tests never share mutable state with the code under test.
type fakeMatchRepo struct {
	mu      sync.Mutex
	matches map[string]*models.Match
}

func newFakeMatchRepo(matches ...*models.Match) *fakeMatchRepo {
	r := &fakeMatchRepo{matches: make(map[string]*models.Match)}
	for _, m := range matches {
		r.matches[m.ID] = m.Clone()
	}
	return r
}

func (r *fakeMatchRepo) Create(_ context.Context, _ repositories.SQLExecutor, match *models.Match) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.matches[match.ID] = match.Clone()
	return nil
}

func (r *fakeMatchRepo) GetByID(_ context.Context, id string) (*models.Match, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	m, ok := r.matches[id]
	if !ok {
		return nil, repositories.ErrMatchNotFound
	}
	return m.Clone(), nil
}

func (r *fakeMatchRepo) ListByEvent(_ context.Context, eventID string) ([]*models.Match, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*models.Match
	for _, m := range r.matches {
		if m.EventID == eventID {
			out = append(out, m.Clone())
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *fakeMatchRepo) Update(_ context.Context, match *models.Match) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.matches[match.ID]; !ok {
		return repositories.ErrMatchNotFound
	}
	r.matches[match.ID] = match.Clone()
	return nil
}

func (r *fakeMatchRepo) UpdateFinished(_ context.Context, match *models.Match, endedAt time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.matches[match.ID]; !ok {
		return repositories.ErrMatchNotFound
	}
	stored := match.Clone()
	stored.EndedAt = &endedAt
	r.matches[match.ID] = stored
	return nil
}

func (r *fakeMatchRepo) UpdateBracketLinks(_ context.Context, _ repositories.SQLExecutor, id string, winnerNextID, loserNextID *string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	m, ok := r.matches[id]
	if !ok {
		return repositories.ErrMatchNotFound
	}
	m.WinnerNextID = winnerNextID
	m.LoserNextID = loserNextID
	return nil
}

func (r *fakeMatchRepo) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.matches[id]; !ok {
		return repositories.ErrMatchNotFound
	}
	delete(r.matches, id)
	return nil
}

type fakeTeamRepo struct {
	teams []*models.Team
}

func (r *fakeTeamRepo) GetByID(_ context.Context, id string) (*models.Team, error) {
	for _, team := range r.teams {
		if team.ID == id {
			return team, nil
		}
	}
	return nil, repositories.ErrTeamNotFound
}

func (r *fakeTeamRepo) GetWithPlayers(ctx context.Context, id string) (*models.Team, error) {
	return r.GetByID(ctx, id)
}

func (r *fakeTeamRepo) ListByEvent(_ context.Context, eventID string) ([]*models.Team, error) {
	var out []*models.Team
	for _, team := range r.teams {
		if team.EventID == eventID {
			out = append(out, team)
		}
	}
	return out, nil
}

func (r *fakeTeamRepo) UpdateLogoKey(_ context.Context, id string, logoKey *string) error {
	for _, team := range r.teams {
		if team.ID == id {
			team.LogoKey = logoKey
			return nil
		}
	}
	return repositories.ErrTeamNotFound
}

type fakeEventRepo struct {
	event *models.Event
}

func (r *fakeEventRepo) GetByID(_ context.Context, id string) (*models.Event, error) {
	if r.event == nil || r.event.ID != id {
		return nil, repositories.ErrEventNotFound
	}
	return r.event, nil
}

func (r *fakeEventRepo) GetLaneConfig(_ context.Context, eventID string, losersBracket bool) (models.LaneConfig, error) {
	if r.event == nil || r.event.ID != eventID {
		return models.LaneConfig{}, repositories.ErrEventNotFound
	}
	return r.event.Lane(losersBracket), nil
}
