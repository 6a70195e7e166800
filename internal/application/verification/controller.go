package verification

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/go-onboarding-api/internal/domain"
)

// FailReasonIncompleteIdentity marks an approved session whose extracted
// identity is missing a required attribute. It is surfaced as a failure so
// the caller can restart, never silently downgraded to a decline.
const FailReasonIncompleteIdentity = "incomplete-identity"

// ProviderClient is the consumed contract of the identity-verification
// provider.
type ProviderClient interface {
	CreateSession(ctx context.Context, language string, metadata map[string]string) (*domain.ProviderSession, error)
	GetSessionResult(ctx context.Context, sessionID string) (*domain.SessionResult, error)
}

type archiveStore interface {
	Upload(ctx context.Context, key string, r io.Reader, contentType string) (string, error)
}

// Controller drives one provider session from creation through polling to a
// terminal decision.
//
// State machine: idle → session_creating → awaiting_user → polling →
// {approved, declined, failed}. Polls are strictly sequential: the next
// delay is armed only after the previous poll completes, so a slow poll
// skips ticks instead of overlapping. Transient provider errors are
// swallowed and retried; only a terminal status or Stop ends polling.
type Controller struct {
	provider     ProviderClient
	archive      archiveStore // optional
	onApproved   func(domain.VerifiedIdentity)
	metadata     map[string]string
	probeDelay   time.Duration
	pollInterval time.Duration

	mu         sync.Mutex
	state      domain.VerificationState
	sessionID  string
	url        string
	identity   *domain.ExtractedIdentity
	failReason string
	stopped    bool
	cancel     context.CancelFunc

	haltOnce sync.Once
	done     chan struct{}
}

// ControllerDeps wires a controller. Archive, OnApproved and Metadata may
// be nil. Metadata is forwarded verbatim to the provider session.
type ControllerDeps struct {
	Provider     ProviderClient
	Archive      archiveStore
	OnApproved   func(domain.VerifiedIdentity)
	Metadata     map[string]string
	ProbeDelay   time.Duration
	PollInterval time.Duration
}

func NewController(deps ControllerDeps) *Controller {
	return &Controller{
		provider:     deps.Provider,
		archive:      deps.Archive,
		onApproved:   deps.OnApproved,
		metadata:     deps.Metadata,
		probeDelay:   deps.ProbeDelay,
		pollInterval: deps.PollInterval,
		state:        domain.StateIdle,
		done:         make(chan struct{}),
	}
}

// Snapshot is a point-in-time view of the controller for transport layers.
type Snapshot struct {
	State      domain.VerificationState  `json:"state"`
	SessionID  string                    `json:"session_id,omitempty"`
	URL        string                    `json:"url,omitempty"`
	Identity   *domain.ExtractedIdentity `json:"identity,omitempty"`
	FailReason string                    `json:"fail_reason,omitempty"`
}

func (c *Controller) Snapshot() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	return Snapshot{
		State:      c.state,
		SessionID:  c.sessionID,
		URL:        c.url,
		Identity:   c.identity,
		FailReason: c.failReason,
	}
}

// Start creates the provider session and leaves the controller in
// awaiting_user with the redirect URL for the presentation layer.
func (c *Controller) Start(ctx context.Context, language string) (Snapshot, error) {
	c.mu.Lock()
	if c.stopped || c.state != domain.StateIdle {
		c.mu.Unlock()
		return Snapshot{}, fmt.Errorf("verification already started: %w", domain.ErrConflict)
	}
	c.state = domain.StateSessionCreating
	c.mu.Unlock()

	sess, err := c.provider.CreateSession(ctx, language, c.metadata)
	if err != nil {
		c.transitionFailed("session-create")
		return Snapshot{}, fmt.Errorf("create verification session: %w", err)
	}
	if sess.URL == "" {
		c.transitionFailed("session-create")
		return Snapshot{}, fmt.Errorf("provider returned no verification URL: %w", domain.ErrBadRequest)
	}

	c.mu.Lock()
	if !c.stopped && c.state == domain.StateSessionCreating {
		c.sessionID = sess.SessionID
		c.url = sess.URL
		c.state = domain.StateAwaitingUser
	}
	c.mu.Unlock()
	return c.Snapshot(), nil
}

// BeginPolling transitions awaiting_user → polling once the presentation
// step has returned control, regardless of its outcome, and starts the poll
// loop: one early probe, then a fixed interval.
func (c *Controller) BeginPolling() error {
	c.mu.Lock()
	if c.stopped || c.state != domain.StateAwaitingUser {
		state := c.state
		c.mu.Unlock()
		return fmt.Errorf("cannot poll from state %q: %w", state, domain.ErrConflict)
	}
	c.state = domain.StatePolling
	ctx, cancel := context.WithCancel(context.Background())
	c.cancel = cancel
	c.mu.Unlock()

	go c.pollLoop(ctx)
	return nil
}

// Stop is safe in any state and idempotent. After it returns, no poll result
// — including one already in flight — causes a state transition or side
// effect.
func (c *Controller) Stop() {
	c.mu.Lock()
	c.stopped = true
	cancel := c.cancel
	c.mu.Unlock()

	c.haltOnce.Do(func() {
		if cancel != nil {
			cancel()
		}
	})
}

// Done is closed when the poll loop has exited.
func (c *Controller) Done() <-chan struct{} { return c.done }

func (c *Controller) pollLoop(ctx context.Context) {
	defer close(c.done)
	timer := time.NewTimer(c.probeDelay)
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-timer.C:
		}
		if terminal := c.pollOnce(ctx); terminal {
			return
		}
		timer.Reset(c.pollInterval)
	}
}

// pollOnce performs one provider poll and applies any resulting transition.
// Returns true when polling must end.
func (c *Controller) pollOnce(ctx context.Context) bool {
	c.mu.Lock()
	sessionID := c.sessionID
	c.mu.Unlock()

	result, err := c.provider.GetSessionResult(ctx, sessionID)
	if err != nil {
		// Transient provider errors must never abort verification.
		slog.Debug("verification poll failed, retrying on next tick", "session_id", sessionID, "err", err)
		return false
	}

	switch result.Status {
	case domain.SessionApproved:
		if !result.Identity.Complete() {
			return c.applyTerminal(domain.StateFailed, nil, FailReasonIncompleteIdentity, result)
		}
		return c.applyTerminal(domain.StateApproved, result.Identity, "", result)
	case domain.SessionDeclined:
		return c.applyTerminal(domain.StateDeclined, nil, "", result)
	default:
		return false
	}
}

// applyTerminal moves the controller into a terminal state unless it was
// stopped while the poll was in flight, in which case the result is
// discarded. Returns true when the loop must end either way.
func (c *Controller) applyTerminal(state domain.VerificationState, identity *domain.ExtractedIdentity, reason string, result *domain.SessionResult) bool {
	c.mu.Lock()
	if c.stopped || c.state.Terminal() {
		c.mu.Unlock()
		return true
	}
	c.state = state
	c.identity = identity
	c.failReason = reason
	sessionID := c.sessionID
	c.mu.Unlock()

	c.haltOnce.Do(func() {
		c.mu.Lock()
		cancel := c.cancel
		c.mu.Unlock()
		if cancel != nil {
			cancel()
		}
	})

	c.archiveResult(sessionID, result)

	if state == domain.StateApproved && c.onApproved != nil {
		c.onApproved(domain.VerifiedIdentity{
			SessionID:      sessionID,
			FirstName:      identity.FirstName,
			LastName:       identity.LastName,
			DateOfBirth:    identity.DateOfBirth,
			DocumentNumber: identity.DocumentNumber,
		})
	}
	return true
}

func (c *Controller) transitionFailed(reason string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.stopped || c.state.Terminal() {
		return
	}
	c.state = domain.StateFailed
	c.failReason = reason
}

// archiveResult stores the raw provider payload best-effort. A failed upload
// never affects the verification outcome.
func (c *Controller) archiveResult(sessionID string, result *domain.SessionResult) {
	if c.archive == nil || len(result.Raw) == 0 {
		return
	}
	ctx, cancelUpload := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancelUpload()
	key := "verifications/" + sessionID + ".json"
	if _, err := c.archive.Upload(ctx, key, bytes.NewReader(result.Raw), "application/json"); err != nil {
		slog.Warn("could not archive verification result", "session_id", sessionID, "err", err)
	}
}
