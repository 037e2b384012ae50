package kb

import (
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/signalsfoundry/heliosheet/model"
)

var (
	// ErrUnknownSpacecraft reports a lookup for an id the store has
	// never seen.
	ErrUnknownSpacecraft = errors.New("unknown spacecraft")
	// ErrSpacecraftExists reports an attempt to register a duplicate
	// id.
	ErrSpacecraftExists = errors.New("spacecraft already exists")
	// ErrNoPosition reports a known spacecraft with no position
	// recorded yet.
	ErrNoPosition = errors.New("no position recorded")
)

// EventType indicates what kind of change happened in the store.
type EventType int

const (
	EventPositionUpdated EventType = iota
)

// Event is emitted to subscribers when something interesting happens.
type Event struct {
	Type       EventType
	Spacecraft model.SpacecraftDefinition
	Position   model.Position
}

// Store is an in-memory, thread-safe catalog of spacecraft and the
// latest position recorded for each. Definitions and positions are
// held and handed out by value.
type Store struct {
	mu sync.RWMutex

	spacecraft map[string]model.SpacecraftDefinition
	positions  map[string]model.Position

	subs []func(Event)
}

// NewStore constructs an empty store.
func NewStore() *Store {
	return &Store{
		spacecraft: make(map[string]model.SpacecraftDefinition),
		positions:  make(map[string]model.Position),
	}
}

// AddSpacecraft registers a new definition. It returns
// ErrSpacecraftExists if the id is already taken.
func (s *Store) AddSpacecraft(def model.SpacecraftDefinition) error {
	if def.ID == "" {
		return fmt.Errorf("spacecraft with empty id")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.spacecraft[def.ID]; exists {
		return fmt.Errorf("%w: %q", ErrSpacecraftExists, def.ID)
	}
	s.spacecraft[def.ID] = def
	return nil
}

// Spacecraft returns the definition registered under id.
func (s *Store) Spacecraft(id string) (model.SpacecraftDefinition, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	def, ok := s.spacecraft[id]
	if !ok {
		return model.SpacecraftDefinition{}, fmt.Errorf("%w: %q", ErrUnknownSpacecraft, id)
	}
	return def, nil
}

// ListSpacecraft returns a snapshot of all definitions, ordered by id
// so menus and API listings are stable.
func (s *Store) ListSpacecraft() []model.SpacecraftDefinition {
	s.mu.RLock()
	defer s.mu.RUnlock()

	res := make([]model.SpacecraftDefinition, 0, len(s.spacecraft))
	for _, def := range s.spacecraft {
		res = append(res, def)
	}
	sort.Slice(res, func(i, j int) bool { return res[i].ID < res[j].ID })
	return res
}

// SetPosition records the latest position for id and notifies
// subscribers.
func (s *Store) SetPosition(id string, pos model.Position) error {
	s.mu.Lock()
	def, ok := s.spacecraft[id]
	if !ok {
		s.mu.Unlock()
		return fmt.Errorf("%w: %q", ErrUnknownSpacecraft, id)
	}
	s.positions[id] = pos
	event := Event{
		Type:       EventPositionUpdated,
		Spacecraft: def,
		Position:   pos,
	}
	subs := append([]func(Event){}, s.subs...)
	s.mu.Unlock()

	// Notify subscribers outside the lock to avoid deadlocks.
	for _, sub := range subs {
		sub(event)
	}
	return nil
}

// Position returns the latest recorded position for id.
func (s *Store) Position(id string) (model.Position, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if _, ok := s.spacecraft[id]; !ok {
		return model.Position{}, fmt.Errorf("%w: %q", ErrUnknownSpacecraft, id)
	}
	pos, ok := s.positions[id]
	if !ok {
		return model.Position{}, fmt.Errorf("%w: %q", ErrNoPosition, id)
	}
	return pos, nil
}

// Subscribe registers a callback for store events. It returns an
// unsubscribe function.
func (s *Store) Subscribe(fn func(Event)) (unsubscribe func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.subs = append(s.subs, fn)
	idx := len(s.subs) - 1

	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		if idx < 0 || idx >= len(s.subs) {
			return
		}
		s.subs = append(s.subs[:idx], s.subs[idx+1:]...)
		idx = -1
	}
}
