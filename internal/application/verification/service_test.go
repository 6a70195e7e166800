package verification

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/go-onboarding-api/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakePromoter struct {
	mu       sync.Mutex
	promoted map[string]domain.VerifiedIdentity
}

func (p *fakePromoter) MarkVerified(ctx context.Context, userID string, identity domain.VerifiedIdentity) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.promoted == nil {
		p.promoted = make(map[string]domain.VerifiedIdentity)
	}
	p.promoted[userID] = identity
	return nil
}

func (p *fakePromoter) get(userID string) (domain.VerifiedIdentity, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	v, ok := p.promoted[userID]
	return v, ok
}

func newTestSessionService(p ProviderClient, records recordPromoter) Service {
	return NewService(ServiceDeps{
		Provider:     p,
		Records:      records,
		ProbeDelay:   time.Millisecond,
		PollInterval: time.Millisecond,
	})
}

func TestService_StartRegistersSession(t *testing.T) {
	p := &scriptedProvider{session: domain.ProviderSession{SessionID: "s1", URL: "u"}}
	svc := newTestSessionService(p, nil)

	snap, err := svc.Start(context.Background(), "en", "")
	require.NoError(t, err)

	got, ok := svc.Get(snap.SessionID)
	require.True(t, ok)
	assert.Equal(t, domain.StateAwaitingUser, got.State)
}

func TestService_TerminalReadConsumesSession(t *testing.T) {
	p := &scriptedProvider{
		session: domain.ProviderSession{SessionID: "s1", URL: "u"},
		steps:   []pollStep{approved(completeIdentity())},
	}
	svc := newTestSessionService(p, nil)

	snap, err := svc.Start(context.Background(), "en", "")
	require.NoError(t, err)
	require.NoError(t, svc.PresentationClosed(snap.SessionID))

	require.Eventually(t, func() bool {
		got, ok := svc.Get(snap.SessionID)
		return ok && got.State == domain.StateApproved
	}, 2*time.Second, 5*time.Millisecond)

	// Consumed: the terminal session is gone and will never be polled again.
	_, ok := svc.Get(snap.SessionID)
	assert.False(t, ok)
}

func TestService_ApprovalPromotesBoundUserRecord(t *testing.T) {
	p := &scriptedProvider{
		session: domain.ProviderSession{SessionID: "s1", URL: "u"},
		steps:   []pollStep{approved(completeIdentity())},
	}
	records := &fakePromoter{}
	svc := newTestSessionService(p, records)

	snap, err := svc.Start(context.Background(), "en", "u1")
	require.NoError(t, err)
	require.NoError(t, svc.PresentationClosed(snap.SessionID))

	require.Eventually(t, func() bool {
		_, ok := records.get("u1")
		return ok
	}, 2*time.Second, 5*time.Millisecond)

	v, _ := records.get("u1")
	assert.Equal(t, "Ann", v.FirstName)
	assert.Equal(t, "1991-02-03", v.DateOfBirth)
}

func TestService_UnboundSessionPromotesNothing(t *testing.T) {
	p := &scriptedProvider{
		session: domain.ProviderSession{SessionID: "s1", URL: "u"},
		steps:   []pollStep{approved(completeIdentity())},
	}
	records := &fakePromoter{}
	svc := newTestSessionService(p, records)

	snap, err := svc.Start(context.Background(), "en", "")
	require.NoError(t, err)
	require.NoError(t, svc.PresentationClosed(snap.SessionID))

	require.Eventually(t, func() bool {
		got, ok := svc.Get(snap.SessionID)
		return ok && got.State.Terminal()
	}, 2*time.Second, 5*time.Millisecond)

	records.mu.Lock()
	defer records.mu.Unlock()
	assert.Empty(t, records.promoted)
}

func TestService_PresentationClosedUnknownSession(t *testing.T) {
	svc := newTestSessionService(&scriptedProvider{}, nil)
	err := svc.PresentationClosed("missing")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestService_CancelStopsAndDiscards(t *testing.T) {
	p := &scriptedProvider{
		session: domain.ProviderSession{SessionID: "s1", URL: "u"},
		steps:   []pollStep{pending()},
	}
	svc := newTestSessionService(p, nil)

	snap, err := svc.Start(context.Background(), "en", "")
	require.NoError(t, err)
	require.NoError(t, svc.PresentationClosed(snap.SessionID))

	assert.True(t, svc.Cancel(snap.SessionID))
	_, ok := svc.Get(snap.SessionID)
	assert.False(t, ok)
	assert.False(t, svc.Cancel(snap.SessionID))
}
