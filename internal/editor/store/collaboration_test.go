package store

import (
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"studio-backend/internal/editor/collab"
	"studio-backend/internal/editor/models"
)

// fakeProvider stands in for the websocket transport.
type fakeProvider struct {
	mu           sync.Mutex
	localState   *models.Collaborator
	rosterFn     func(peers []models.Collaborator)
	disconnected int
}

func (p *fakeProvider) SetLocalState(peer models.Collaborator) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.localState = &peer
}

func (p *fakeProvider) OnRosterChange(fn func(peers []models.Collaborator)) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.rosterFn = fn
}

func (p *fakeProvider) Disconnect() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.disconnected++
}

// pushRoster simulates an awareness notification from the transport.
func (p *fakeProvider) pushRoster(peers []models.Collaborator) {
	p.mu.Lock()
	fn := p.rosterFn
	p.mu.Unlock()
	if fn != nil {
		fn(peers)
	}
}

func newCollabStore(t *testing.T) (*Store, *recordingNotifier, *fakeProvider, *int) {
	t.Helper()
	notify := &recordingNotifier{}
	provider := &fakeProvider{}
	calls := 0
	factory := func(room string, doc *collab.Doc) (collab.Provider, error) {
		calls++
		return provider, nil
	}
	return New(notify, factory), notify, provider, &calls
}

func TestStartCollaboration(t *testing.T) {
	s, _, provider, calls := newCollabStore(t)
	s.SetProjectID("proj-42")

	s.StartCollaboration()

	assert.True(t, s.IsCollaborating())
	assert.Equal(t, 1, *calls)
	assert.NotNil(t, s.Doc())

	provider.mu.Lock()
	local := provider.localState
	provider.mu.Unlock()
	require.NotNil(t, local)
	assert.NotEmpty(t, local.ID)
	assert.NotEmpty(t, local.Color)
}

func TestStartCollaborationWhileActiveIsNoOp(t *testing.T) {
	s, _, _, calls := newCollabStore(t)

	s.StartCollaboration()
	s.StartCollaboration()

	assert.True(t, s.IsCollaborating())
	assert.Equal(t, 1, *calls)
}

func TestStartCollaborationFailureStaysIdle(t *testing.T) {
	notify := &recordingNotifier{}
	factory := func(room string, doc *collab.Doc) (collab.Provider, error) {
		return nil, fmt.Errorf("relay unreachable")
	}
	s := New(notify, factory)

	s.StartCollaboration()

	assert.False(t, s.IsCollaborating())
	assert.Nil(t, s.Doc())
	assert.Equal(t, "Failed to start collaboration", notify.lastError())

	// A later attempt is allowed; the failure is not sticky.
	s.StartCollaboration()
	assert.False(t, s.IsCollaborating())
}

func TestStartCollaborationWithoutFactory(t *testing.T) {
	notify := &recordingNotifier{}
	s := New(notify, nil)

	s.StartCollaboration()

	assert.False(t, s.IsCollaborating())
	assert.Equal(t, "Failed to start collaboration", notify.lastError())
}

func TestRosterReplacedWholesale(t *testing.T) {
	s, _, provider, _ := newCollabStore(t)
	s.StartCollaboration()

	provider.pushRoster([]models.Collaborator{
		{ID: "a", Name: "Ada", Color: "#111111"},
		{ID: "b", Name: "Bo", Color: "#222222"},
	})
	assert.Len(t, s.Collaborators(), 2)

	provider.pushRoster([]models.Collaborator{
		{ID: "b", Name: "Bo", Color: "#222222"},
	})
	roster := s.Collaborators()
	require.Len(t, roster, 1)
	assert.Equal(t, "b", roster[0].ID)
}

func TestStopCollaboration(t *testing.T) {
	s, _, provider, _ := newCollabStore(t)
	s.StartCollaboration()
	provider.pushRoster([]models.Collaborator{{ID: "a", Name: "Ada", Color: "#111111"}})

	s.StopCollaboration()

	assert.False(t, s.IsCollaborating())
	assert.Empty(t, s.Collaborators())
	assert.Nil(t, s.Doc())
	provider.mu.Lock()
	assert.Equal(t, 1, provider.disconnected)
	provider.mu.Unlock()

	// A straggling roster notification from the old transport cannot
	// repopulate the idle store.
	provider.pushRoster([]models.Collaborator{{ID: "ghost", Name: "Ghost", Color: "#000000"}})
	assert.Empty(t, s.Collaborators())
}

func TestStopDuringStartTearsDownDialedTransport(t *testing.T) {
	notify := &recordingNotifier{}
	provider := &fakeProvider{}
	dialing := make(chan struct{})
	release := make(chan struct{})
	factory := func(room string, doc *collab.Doc) (collab.Provider, error) {
		close(dialing)
		<-release
		return provider, nil
	}
	s := New(notify, factory)

	done := make(chan struct{})
	go func() {
		s.StartCollaboration()
		close(done)
	}()

	// Tear down while the dial is still outstanding, then let it finish.
	<-dialing
	s.StopCollaboration()
	close(release)
	<-done

	assert.False(t, s.IsCollaborating())
	assert.Nil(t, s.Doc())
	assert.Empty(t, s.Collaborators())

	// The late-arriving transport was disconnected, not wired in.
	provider.mu.Lock()
	assert.Equal(t, 1, provider.disconnected)
	rosterFn := provider.rosterFn
	provider.mu.Unlock()
	assert.Nil(t, rosterFn)

	provider.pushRoster([]models.Collaborator{{ID: "ghost", Name: "Ghost", Color: "#000000"}})
	assert.Empty(t, s.Collaborators())
}

func TestStopCollaborationIsIdempotent(t *testing.T) {
	s, _, provider, _ := newCollabStore(t)

	// Safe even when start never ran.
	s.StopCollaboration()
	assert.False(t, s.IsCollaborating())

	s.StartCollaboration()
	s.StopCollaboration()
	s.StopCollaboration()

	provider.mu.Lock()
	assert.Equal(t, 1, provider.disconnected)
	provider.mu.Unlock()
}
