// Package intervention tracks the human-in-the-loop state of browser
// automation. Long-running automation pauses here when a step needs a
// person (a CAPTCHA, a two-factor prompt), and resumes once the person
// reports the outcome.
package intervention

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
)

// State is the current automation state.
type State int

const (
	// StateRunning means automation is proceeding normally.
	StateRunning State = iota
	// StateWaitingForHuman means automation is paused until a person acts.
	StateWaitingForHuman
	// StateResuming means a person reported an outcome and automation is
	// picking back up.
	StateResuming
	// StateTimedOut means a wait exceeded its deadline.
	StateTimedOut
	// StateCancelled means the episode was abandoned.
	StateCancelled
)

func (s State) String() string {
	switch s {
	case StateRunning:
		return "running"
	case StateWaitingForHuman:
		return "waiting_for_human"
	case StateResuming:
		return "resuming"
	case StateTimedOut:
		return "timed_out"
	case StateCancelled:
		return "cancelled"
	default:
		return "unknown"
	}
}

// Outcome records how an episode ended.
type Outcome struct {
	Success bool
	Message string
	At      time.Time
}

// ErrTimedOut is returned by WaitForResolution when the deadline passes
// before a person completes the intervention.
var ErrTimedOut = errors.New("intervention wait timed out")

// Handler is the shared intervention state machine. All methods are safe
// for concurrent use; status reads never block behind a pause.
type Handler struct {
	mu       sync.RWMutex
	state    State
	reason   string
	episode  string
	outcome  *Outcome
	resolved chan struct{}
}

// NewHandler returns a handler in the running state.
func NewHandler() *Handler {
	return &Handler{state: StateRunning}
}

// State returns the current state.
func (h *Handler) State() State {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.state
}

// CurrentReason returns the pending intervention reason, or "" when none.
func (h *Handler) CurrentReason() string {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.reason
}

// EpisodeID identifies the current pause episode, or "" when running.
func (h *Handler) EpisodeID() string {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.episode
}

// LastOutcome returns the most recently recorded completion, if any.
func (h *Handler) LastOutcome() (Outcome, bool) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	if h.outcome == nil {
		return Outcome{}, false
	}
	return *h.outcome, true
}

// Pause moves the machine to waiting-for-human and opens a new episode.
// Pausing while already paused keeps the original episode and reason.
func (h *Handler) Pause(reason string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.state == StateWaitingForHuman {
		return
	}
	if reason == "" {
		reason = "manual pause requested"
	}
	h.state = StateWaitingForHuman
	h.reason = reason
	h.episode = uuid.NewString()
	h.resolved = make(chan struct{})
}

// Complete records the outcome of the current episode and signals any
// waiter. The machine moves to resuming; Resume finishes the transition
// back to running.
func (h *Handler) Complete(success bool, message string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.outcome = &Outcome{Success: success, Message: message, At: time.Now()}
	h.state = StateResuming
	h.reason = ""
	if h.resolved != nil {
		close(h.resolved)
		h.resolved = nil
	}
}

// Resume returns the machine to running and clears any pending reason.
func (h *Handler) Resume() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.state = StateRunning
	h.reason = ""
	h.episode = ""
	if h.resolved != nil {
		close(h.resolved)
		h.resolved = nil
	}
}

// Cancel abandons the current episode.
func (h *Handler) Cancel() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.state = StateCancelled
	h.reason = ""
	if h.resolved != nil {
		close(h.resolved)
		h.resolved = nil
	}
}

// WaitForResolution blocks until the current episode is completed,
// resumed, or cancelled. When the timeout elapses first, the machine
// moves to timed-out and ErrTimedOut is returned. A context cancellation
// marks the episode cancelled and returns ctx.Err().
func (h *Handler) WaitForResolution(ctx context.Context, timeout time.Duration) error {
	h.mu.RLock()
	ch := h.resolved
	h.mu.RUnlock()
	if ch == nil {
		return nil
	}

	timer := time.NewTimer(timeout)
	defer timer.Stop()

	select {
	case <-ch:
		return nil
	case <-timer.C:
		h.mu.Lock()
		h.state = StateTimedOut
		h.reason = ""
		h.resolved = nil
		h.mu.Unlock()
		return ErrTimedOut
	case <-ctx.Done():
		h.Cancel()
		return ctx.Err()
	}
}
