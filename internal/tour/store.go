package tour

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"
)

// ErrDuplicateID is returned when a property with the same id already
// exists in the schedule.
var ErrDuplicateID = errors.New("duplicate property id")

// Store is the single source of truth for the active schedule and the
// published-tour map. Every mutation writes through to the repository
// before returning, so callers never need an explicit flush.
//
// The store is constructed once at application start and injected into
// handlers; there is no package-level instance. All operations are safe
// for concurrent use.
type Store struct {
	mu    sync.Mutex
	state *State
	repo  Repository
	now   func() time.Time

	subs []chan struct{}
}

// NewStore creates a store backed by repo. Previously persisted state is
// loaded if present and carries the current schema version; anything else
// (nothing saved, unknown version) starts from the initial empty state.
func NewStore(ctx context.Context, repo Repository, now func() time.Time) (*Store, error) {
	if now == nil {
		now = time.Now
	}
	state, err := repo.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("load tour state: %w", err)
	}
	if state == nil || state.SchemaVersion != SchemaVersion {
		state = NewState(now())
	}
	if state.SharedTours == nil {
		state.SharedTours = map[string]Schedule{}
	}
	if state.Schedule.Properties == nil {
		state.Schedule.Properties = []Property{}
	}
	return &Store{state: state, repo: repo, now: now}, nil
}

// Schedule returns a deep copy of the active schedule.
func (s *Store) Schedule() Schedule {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.Schedule.Clone()
}

// AddProperty appends p to the active schedule. A property whose id is
// already present is rejected with ErrDuplicateID.
func (s *Store) AddProperty(ctx context.Context, p Property) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.state.Schedule.Properties {
		if existing.ID == p.ID {
			return fmt.Errorf("%w: %s", ErrDuplicateID, p.ID)
		}
	}
	s.state.Schedule.Properties = append(s.state.Schedule.Properties, p.Clone())
	return s.persist(ctx)
}

// RemoveProperty removes the property with the given id. An unknown id is
// a silent no-op, not an error.
func (s *Store) RemoveProperty(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	props := s.state.Schedule.Properties
	for i, p := range props {
		if p.ID == id {
			s.state.Schedule.Properties = append(props[:i:i], props[i+1:]...)
			return s.persist(ctx)
		}
	}
	return nil
}

// UpdateProperty merges patch into the property with the given id. An
// unknown id is a silent no-op.
func (s *Store) UpdateProperty(ctx context.Context, id string, patch PropertyPatch) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.state.Schedule.Properties {
		if s.state.Schedule.Properties[i].ID == id {
			patch.Apply(&s.state.Schedule.Properties[i])
			return s.persist(ctx)
		}
	}
	return nil
}

// SetTourDate replaces the schedule's tour date.
func (s *Store) SetTourDate(ctx context.Context, date string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.Schedule.TourDate = date
	return s.persist(ctx)
}

// SetAgentName replaces the schedule's agent name.
func (s *Store) SetAgentName(ctx context.Context, name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.Schedule.AgentName = name
	return s.persist(ctx)
}

// SetClientName replaces the schedule's client name.
func (s *Store) SetClientName(ctx context.Context, name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.Schedule.ClientName = name
	return s.persist(ctx)
}

// ShareTour publishes an immutable snapshot of the current schedule under
// the given id, overwriting any existing snapshot at that key. Later
// mutation of the live schedule does not affect the snapshot.
func (s *Store) ShareTour(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.SharedTours[id] = s.state.Schedule.Clone()
	return s.persist(ctx)
}

// TourByID returns a copy of the published snapshot for id, or nil when
// no tour has been published under that id.
func (s *Store) TourByID(id string) *Schedule {
	s.mu.Lock()
	defer s.mu.Unlock()
	sched, ok := s.state.SharedTours[id]
	if !ok {
		return nil
	}
	out := sched.Clone()
	return &out
}

// Clear resets the active schedule to its initial empty state. Published
// tours are left intact.
func (s *Store) Clear(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.Schedule = NewSchedule(s.now())
	return s.persist(ctx)
}

// Subscribe returns a channel that receives a coalescing signal after
// every successful mutation. Subscribers that lag never block the store.
func (s *Store) Subscribe() <-chan struct{} {
	s.mu.Lock()
	defer s.mu.Unlock()
	ch := make(chan struct{}, 1)
	s.subs = append(s.subs, ch)
	return ch
}

// persist writes the current state through the repository and notifies
// subscribers. Callers must hold s.mu.
func (s *Store) persist(ctx context.Context) error {
	if err := s.repo.Save(ctx, s.state); err != nil {
		return fmt.Errorf("save tour state: %w", err)
	}
	for _, ch := range s.subs {
		select {
		case ch <- struct{}{}:
		default:
		}
	}
	return nil
}
