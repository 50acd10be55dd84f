package tour

import (
	"context"
	"time"
)

// SchemaVersion tags the persisted state layout. Loads that carry an
// unknown version fall back to the initial empty state instead of
// surfacing a type error on next access.
const SchemaVersion = 1

// State is the single persisted record: the live schedule plus every
// published snapshot, keyed by share id.
type State struct {
	SchemaVersion int                 `json:"schema_version" cbor:"schema_version"`
	Schedule      Schedule            `json:"schedule" cbor:"schedule"`
	SharedTours   map[string]Schedule `json:"shared_tours" cbor:"shared_tours"`
}

// NewState returns the initial state: an empty schedule dated now and no
// published tours.
func NewState(now time.Time) *State {
	return &State{
		SchemaVersion: SchemaVersion,
		Schedule:      NewSchedule(now),
		SharedTours:   map[string]Schedule{},
	}
}

// Clone returns a deep copy of the state.
func (s *State) Clone() *State {
	out := &State{
		SchemaVersion: s.SchemaVersion,
		Schedule:      s.Schedule.Clone(),
		SharedTours:   make(map[string]Schedule, len(s.SharedTours)),
	}
	for id, sched := range s.SharedTours {
		out.SharedTours[id] = sched.Clone()
	}
	return out
}

// Repository persists the full tour state. The store writes through on
// every mutation; implementations decide the medium (memory, file, Redis,
// Postgres) without the store knowing.
type Repository interface {
	// Load retrieves the persisted state, or (nil, nil) when nothing has
	// been saved yet.
	Load(ctx context.Context) (*State, error)

	// Save durably replaces the persisted state.
	Save(ctx context.Context, state *State) error
}

// InMemoryRepository is an in-memory implementation of Repository.
// Used for testing and development.
type InMemoryRepository struct {
	state *State
}

// NewInMemoryRepository creates a new in-memory repository.
func NewInMemoryRepository() *InMemoryRepository {
	return &InMemoryRepository{}
}

// Load retrieves the persisted state, or (nil, nil) if none exists.
func (r *InMemoryRepository) Load(ctx context.Context) (*State, error) {
	if r.state == nil {
		return nil, nil
	}
	return r.state.Clone(), nil
}

// Save replaces the persisted state with a copy.
func (r *InMemoryRepository) Save(ctx context.Context, state *State) error {
	r.state = state.Clone()
	return nil
}
