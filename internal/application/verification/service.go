package verification

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/go-onboarding-api/internal/domain"
)

// Service owns the live controllers, one per provider session. Sessions are
// ephemeral: a terminal result read through Get consumes the session, and a
// cancelled session is discarded immediately. Nothing here survives the
// process.
type Service interface {
	// Start opens a provider session. userID optionally binds the session
	// to an existing user record, which is promoted to verified on approval.
	Start(ctx context.Context, language, userID string) (Snapshot, error)
	PresentationClosed(sessionID string) error
	Get(sessionID string) (Snapshot, bool)
	Cancel(sessionID string) bool
}

type recordPromoter interface {
	MarkVerified(ctx context.Context, userID string, identity domain.VerifiedIdentity) error
}

type service struct {
	provider     ProviderClient
	archive      archiveStore
	records      recordPromoter
	probeDelay   time.Duration
	pollInterval time.Duration

	mu       sync.Mutex
	sessions map[string]*Controller
}

// ServiceDeps wires the service. Archive and Records may be nil.
type ServiceDeps struct {
	Provider     ProviderClient
	Archive      archiveStore
	Records      recordPromoter
	ProbeDelay   time.Duration
	PollInterval time.Duration
}

func NewService(deps ServiceDeps) Service {
	return &service{
		provider:     deps.Provider,
		archive:      deps.Archive,
		records:      deps.Records,
		probeDelay:   deps.ProbeDelay,
		pollInterval: deps.PollInterval,
		sessions:     make(map[string]*Controller),
	}
}

func (s *service) Start(ctx context.Context, language, userID string) (Snapshot, error) {
	var metadata map[string]string
	if userID != "" {
		metadata = map[string]string{"user_id": userID}
	}

	ctrl := NewController(ControllerDeps{
		Provider:     s.provider,
		Archive:      s.archive,
		Metadata:     metadata,
		ProbeDelay:   s.probeDelay,
		PollInterval: s.pollInterval,
		OnApproved: func(v domain.VerifiedIdentity) {
			slog.Info("verification approved", "session_id", v.SessionID)
			s.promote(userID, v)
		},
	})

	snap, err := ctrl.Start(ctx, language)
	if err != nil {
		return Snapshot{}, err
	}

	s.mu.Lock()
	s.sessions[snap.SessionID] = ctrl
	s.mu.Unlock()
	return snap, nil
}

// promote flips the bound user record to verified with the extracted
// identity. Best-effort: the verification outcome stands either way.
func (s *service) promote(userID string, v domain.VerifiedIdentity) {
	if userID == "" || s.records == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := s.records.MarkVerified(ctx, userID, v); err != nil {
		slog.Warn("could not mark user record verified", "user_id", userID, "session_id", v.SessionID, "err", err)
	}
}

func (s *service) PresentationClosed(sessionID string) error {
	ctrl, ok := s.lookup(sessionID)
	if !ok {
		return fmt.Errorf("verification session %q: %w", sessionID, domain.ErrNotFound)
	}
	return ctrl.BeginPolling()
}

// Get returns the session's current snapshot. Reading a terminal snapshot
// consumes the session: it is removed and will never be polled again.
func (s *service) Get(sessionID string) (Snapshot, bool) {
	ctrl, ok := s.lookup(sessionID)
	if !ok {
		return Snapshot{}, false
	}
	snap := ctrl.Snapshot()
	if snap.State.Terminal() {
		s.mu.Lock()
		delete(s.sessions, sessionID)
		s.mu.Unlock()
	}
	return snap, true
}

func (s *service) Cancel(sessionID string) bool {
	s.mu.Lock()
	ctrl, ok := s.sessions[sessionID]
	delete(s.sessions, sessionID)
	s.mu.Unlock()
	if ok {
		ctrl.Stop()
	}
	return ok
}

func (s *service) lookup(sessionID string) (*Controller, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	ctrl, ok := s.sessions[sessionID]
	return ctrl, ok
}
