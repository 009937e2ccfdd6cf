package scoring

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/matchpoint-app/matchpoint/models"
)

// DefaultDebounce is the fixed window during which ordinary score updates
// coalesce into a single write. Set- and match-completing changes bypass it.
const DefaultDebounce = 600 * time.Millisecond

const flushWriteTimeout = 5 * time.Second

var (
	ErrEngineClosed            = errors.New("scoring engine is closed")
	ErrMatchFinished           = errors.New("match is already finished")
	ErrSetAwaitingConfirmation = errors.New("set is awaiting confirmation")
	ErrNoSetToConfirm          = errors.New("no completed set awaiting confirmation")
	ErrSetTied                 = errors.New("cannot confirm a tied set")
)

// Repository is the narrow persistence contract the engine writes through.
// UpdateFinished is the distinct finalize path that also stamps the end time.
type Repository interface {
	Update(ctx context.Context, match *models.Match) error
	UpdateFinished(ctx context.Context, match *models.Match, endedAt time.Time) error
}

// State is the observable snapshot consumed by live-scoring UIs.
type State struct {
	MatchID              string       `json:"match_id"`
	CurrentSet           int          `json:"current_set"`
	ShowSetDialog        bool         `json:"show_set_dialog"`
	ShowRefCheckInDialog bool         `json:"show_ref_check_in_dialog"`
	IsRef                bool         `json:"is_ref"`
	Finished             bool         `json:"finished"`
	ErrorMessage         string       `json:"error_message,omitempty"`
	Match                models.Match `json:"match"`
}

// Engine is the live state machine for one in-progress match. All mutations
// to a match go through one engine instance; the mutex only coordinates the
// caller with the debounce flush goroutine, there is no support for multiple
// concurrent writers.
//
// Local edits are applied to an optimistic copy that supersedes the
// server-confirmed value until a write settles. On write failure the copy is
// dropped, so the view reverts to the last server-confirmed state, and an
// error message is surfaced for the UI to display.
type Engine struct {
	mu sync.Mutex

	repo     Repository
	cfg      models.LaneConfig
	debounce time.Duration
	logger   *slog.Logger

	// onUpdate is invoked with the engine lock held after every confirmed
	// write; it must not call back into the engine.
	onUpdate func(match models.Match, finished bool)

	match      models.Match  // last server-confirmed state
	optimistic *models.Match // local override, wins over match while present

	currentSet    int
	showSetDialog bool
	showRefDialog bool
	finished      bool
	errMsg        string

	pending *models.Match // single-slot debounce buffer, last write wins
	timer   *time.Timer
	closed  bool
}

func NewEngine(repo Repository, cfg models.LaneConfig, match *models.Match, debounce time.Duration, logger *slog.Logger, onUpdate func(models.Match, bool)) *Engine {
	if debounce <= 0 {
		debounce = DefaultDebounce
	}
	if logger == nil {
		logger = slog.Default()
	}
	e := &Engine{
		repo:     repo,
		cfg:      cfg,
		debounce: debounce,
		logger:   logger,
		onUpdate: onUpdate,
		match:    *match.Clone(),
	}
	e.deriveLocked()
	e.showRefDialog = !e.match.RefereeCheckedIn && !e.finished
	return e
}

// State returns the current observable snapshot. IsRef reports whether the
// given actor's team is the assigned referee team.
func (e *Engine) State(actorTeamID string) State {
	e.mu.Lock()
	defer e.mu.Unlock()
	cur := e.currentLocked()
	return State{
		MatchID:              cur.ID,
		CurrentSet:           e.currentSet,
		ShowSetDialog:        e.showSetDialog,
		ShowRefCheckInDialog: e.showRefDialog,
		IsRef:                cur.TeamRefereeID != nil && *cur.TeamRefereeID == actorTeamID,
		Finished:             e.finished,
		ErrorMessage:         e.errMsg,
		Match:                *cur.Clone(),
	}
}

// ClearError dismisses the surfaced error message.
func (e *Engine) ClearError() {
	e.mu.Lock()
	e.errMsg = ""
	e.mu.Unlock()
}

// UpdateScore applies one point of increment or decrement to the active set
// for the given side. An increment is refused without mutation when the set
// is already complete, and a decrement never takes a score below zero; both
// cases are silent no-ops, not errors. Ordinary changes are queued into the
// debounce buffer; a change that completes the set raises the confirmation
// dialog and syncs immediately.
func (e *Engine) UpdateScore(ctx context.Context, isTeam1, increment bool) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.closed {
		return ErrEngineClosed
	}
	if e.finished {
		return ErrMatchFinished
	}
	if e.showSetDialog {
		return ErrSetAwaitingConfirmation
	}

	cur := e.currentLocked().Clone()
	set := e.currentSet
	if set < 0 || set >= len(cur.SetResults) {
		return nil
	}
	if cur.SetResults[set] != models.SetUndecided {
		// A decided set never accepts further mutation.
		return nil
	}

	t1, t2 := cur.Team1Points[set], cur.Team2Points[set]
	if increment {
		// Checked before mutation so a completed set cannot be over-scored
		// while the confirmation is in flight.
		if e.setComplete(t1, t2, set) {
			return nil
		}
		if isTeam1 {
			cur.Team1Points[set]++
		} else {
			cur.Team2Points[set]++
		}
	} else {
		if isTeam1 {
			if t1 == 0 {
				return nil
			}
			cur.Team1Points[set]--
		} else {
			if t2 == 0 {
				return nil
			}
			cur.Team2Points[set]--
		}
	}

	e.optimistic = cur

	if increment && e.setComplete(cur.Team1Points[set], cur.Team2Points[set], set) {
		e.showSetDialog = true
		if err := e.syncNowLocked(ctx, cur); err != nil {
			e.showSetDialog = false
			return err
		}
		return nil
	}

	e.queueLocked(cur)
	return nil
}

// ConfirmSet records the winner of the completed set. If the recorded set
// reaches the lane's majority threshold the match is finalized through the
// dedicated finish write; otherwise play advances to the next set and the
// updated match syncs immediately, bypassing the debounce.
func (e *Engine) ConfirmSet(ctx context.Context) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.closed {
		return ErrEngineClosed
	}
	if e.finished {
		return ErrMatchFinished
	}
	if !e.showSetDialog {
		return ErrNoSetToConfirm
	}

	cur := e.currentLocked().Clone()
	set := e.currentSet
	t1, t2 := cur.Team1Points[set], cur.Team2Points[set]
	if t1 == t2 {
		return ErrSetTied
	}
	if t1 > t2 {
		cur.SetResults[set] = models.SetTeam1
	} else {
		cur.SetResults[set] = models.SetTeam2
	}

	needed := e.cfg.SetsNeeded()
	over := cur.SetWins(models.SetTeam1) >= needed || cur.SetWins(models.SetTeam2) >= needed

	e.optimistic = cur

	if over {
		e.cancelPendingLocked()
		endedAt := time.Now().UTC()
		if err := e.repo.UpdateFinished(ctx, cur, endedAt); err != nil {
			e.optimistic = nil
			e.errMsg = "failed to finalize match"
			return fmt.Errorf("finalize match %s: %w", cur.ID, err)
		}
		cur.EndedAt = &endedAt
		e.match = *cur
		e.optimistic = nil
		e.finished = true
		e.showSetDialog = false
		e.errMsg = ""
		e.notifyLocked(*cur, true)
		return nil
	}

	prevSet := e.currentSet
	e.showSetDialog = false
	if e.currentSet < e.cfg.SetCount-1 {
		e.currentSet++
	}
	if err := e.syncNowLocked(ctx, cur); err != nil {
		// Roll back to pre-confirmation state so the dialog can be retried.
		e.currentSet = prevSet
		e.showSetDialog = true
		return err
	}
	return nil
}

// ConfirmRefereeCheckIn is a two-step flow. When the acting team is not the
// assigned referee team the first confirmation reassigns the referee to the
// actor; only a confirmation by the assigned team sets the checked-in flag
// and dismisses the prompt.
func (e *Engine) ConfirmRefereeCheckIn(ctx context.Context, actorTeamID string) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.closed {
		return ErrEngineClosed
	}

	cur := e.currentLocked().Clone()
	if cur.TeamRefereeID == nil || *cur.TeamRefereeID != actorTeamID {
		team := actorTeamID
		cur.TeamRefereeID = &team
	} else {
		cur.RefereeCheckedIn = true
	}

	e.optimistic = cur
	if err := e.repo.Update(ctx, cur); err != nil {
		e.optimistic = nil
		e.errMsg = "failed to save referee check-in"
		return fmt.Errorf("referee check-in for match %s: %w", cur.ID, err)
	}
	e.match = *cur
	e.optimistic = nil
	e.showRefDialog = !cur.RefereeCheckedIn
	e.errMsg = ""
	e.notifyLocked(*cur, false)
	return nil
}

// ApplyRemote feeds a server-driven match update into the engine. While an
// optimistic override is active the remote value is ignored for rendering;
// the engine resumes following the stream once its own writes settle.
func (e *Engine) ApplyRemote(m models.Match) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed || e.optimistic != nil {
		return
	}
	e.match = *m.Clone()
	if !e.showSetDialog {
		e.deriveLocked()
	}
}

// Close discards the pending buffer and any armed debounce timer without
// writing. In-flight writes already issued are left to complete; their
// results are irrelevant once the engine is gone.
func (e *Engine) Close() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.closed = true
	e.cancelPendingLocked()
}

// currentLocked is the single point of truth for the displayed value: the
// optimistic override when present, the server-confirmed match otherwise.
func (e *Engine) currentLocked() *models.Match {
	if e.optimistic != nil {
		return e.optimistic
	}
	return &e.match
}

// deriveLocked recomputes the active set and finished flag from the
// server-confirmed match.
func (e *Engine) deriveLocked() {
	e.currentSet = 0
	for i, r := range e.match.SetResults {
		if r == models.SetUndecided {
			e.currentSet = i
			break
		}
		e.currentSet = i
	}
	needed := e.cfg.SetsNeeded()
	e.finished = e.match.EndedAt != nil ||
		e.match.SetWins(models.SetTeam1) >= needed ||
		e.match.SetWins(models.SetTeam2) >= needed
}

// setComplete is the pure completion predicate: win-by-two on top of the
// points-to-victory threshold, or the hard score limit on its own.
func (e *Engine) setComplete(t1, t2, set int) bool {
	leader, follower := t1, t2
	if t2 > t1 {
		leader, follower = t2, t1
	}
	ptv := e.cfg.PointsToVictoryAt(set)
	if ptv > 0 && leader-follower >= 2 && leader >= ptv {
		return true
	}
	limit := e.cfg.ScoreLimitAt(set)
	return limit > 0 && leader >= limit
}

// queueLocked replaces the debounce buffer with the latest snapshot. The
// timer is armed on the first queued write only; later writes within the
// window replace the buffered state but do not extend the delay.
func (e *Engine) queueLocked(m *models.Match) {
	e.pending = m
	if e.timer == nil {
		e.timer = time.AfterFunc(e.debounce, e.flush)
	}
}

func (e *Engine) cancelPendingLocked() {
	if e.timer != nil {
		e.timer.Stop()
		e.timer = nil
	}
	e.pending = nil
}

// syncNowLocked drops whatever is queued (the immediate write supersedes it)
// and persists the given snapshot synchronously.
func (e *Engine) syncNowLocked(ctx context.Context, m *models.Match) error {
	e.cancelPendingLocked()
	if err := e.repo.Update(ctx, m); err != nil {
		e.optimistic = nil
		e.errMsg = "failed to save score update"
		return fmt.Errorf("update match %s: %w", m.ID, err)
	}
	e.match = *m
	e.optimistic = nil
	e.errMsg = ""
	e.notifyLocked(*m, false)
	return nil
}

// flush drains the debounce buffer and issues one write for the most recent
// queued state.
func (e *Engine) flush() {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.timer = nil
	if e.closed || e.pending == nil {
		return
	}
	m := e.pending
	e.pending = nil

	ctx, cancel := context.WithTimeout(context.Background(), flushWriteTimeout)
	defer cancel()
	if err := e.repo.Update(ctx, m); err != nil {
		e.optimistic = nil
		e.errMsg = "failed to save score update"
		e.logger.Error("debounced score sync failed", slog.String("match_id", m.ID), slog.Any("error", err))
		return
	}
	e.match = *m
	e.optimistic = nil
	e.errMsg = ""
	e.notifyLocked(*m, false)
}

func (e *Engine) notifyLocked(m models.Match, finished bool) {
	if e.onUpdate != nil {
		e.onUpdate(m, finished)
	}
}
