package store

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"imposter/internal/game"
)

// MemoryStore holds all rooms in memory
type MemoryStore struct {
	mu    sync.RWMutex
	rooms map[string]game.Room
	subs  map[string]map[uuid.UUID]chan game.Room
	now   func() time.Time
}

// NewMemoryStore creates a new in-memory store
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		rooms: make(map[string]game.Room),
		subs:  make(map[string]map[uuid.UUID]chan game.Room),
		now:   time.Now,
	}
}

// Get retrieves a room by code
func (s *MemoryStore) Get(ctx context.Context, code string) (game.Room, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	room, exists := s.rooms[code]
	if !exists {
		return game.Room{}, fmt.Errorf("room %s: %w", code, ErrNotFound)
	}
	return room.Clone(), nil
}

// Create stores a new room unless its code is already taken
func (s *MemoryStore) Create(ctx context.Context, room game.Room) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.rooms[room.Code]; exists {
		return fmt.Errorf("room %s: %w", room.Code, ErrAlreadyExists)
	}

	room = room.Clone()
	room.Version = 1
	room.UpdatedAt = s.now()
	s.rooms[room.Code] = room
	return nil
}

// Update applies mutate to the stored room under the write lock
func (s *MemoryStore) Update(ctx context.Context, code string, mutate Mutation) (game.Room, error) {
	if err := ctx.Err(); err != nil {
		return game.Room{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	current, exists := s.rooms[code]
	if !exists {
		return game.Room{}, fmt.Errorf("room %s: %w", code, ErrNotFound)
	}

	next := current.Clone()
	if err := mutate(&next); err != nil {
		return game.Room{}, err
	}
	next.Code = current.Code
	next.Version = current.Version + 1
	next.UpdatedAt = s.now()

	s.rooms[code] = next
	for _, ch := range s.subs[code] {
		Offer(ch, next.Clone())
	}
	return next.Clone(), nil
}

// Subscribe registers a listener for code
func (s *MemoryStore) Subscribe(ctx context.Context, code string) (<-chan game.Room, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	room, exists := s.rooms[code]
	if !exists {
		return nil, fmt.Errorf("room %s: %w", code, ErrNotFound)
	}

	id := uuid.New()
	ch := make(chan game.Room, 1)
	ch <- room.Clone()

	if s.subs[code] == nil {
		s.subs[code] = make(map[uuid.UUID]chan game.Room)
	}
	s.subs[code][id] = ch

	go func() {
		<-ctx.Done()
		s.unsubscribe(code, id)
	}()

	return ch, nil
}

func (s *MemoryStore) unsubscribe(code string, id uuid.UUID) {
	s.mu.Lock()
	defer s.mu.Unlock()

	ch, ok := s.subs[code][id]
	if !ok {
		return
	}
	delete(s.subs[code], id)
	if len(s.subs[code]) == 0 {
		delete(s.subs, code)
	}
	close(ch)
}

// Ping always succeeds
func (s *MemoryStore) Ping(ctx context.Context) error {
	return nil
}

// PurgeIdle removes rooms not written since before and ends their subscriptions
func (s *MemoryStore) PurgeIdle(ctx context.Context, before time.Time) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	purged := 0
	for code, room := range s.rooms {
		if !room.UpdatedAt.Before(before) {
			continue
		}
		delete(s.rooms, code)
		for _, ch := range s.subs[code] {
			close(ch)
		}
		delete(s.subs, code)
		purged++
	}
	return purged, nil
}

// Len returns the number of stored rooms
func (s *MemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.rooms)
}
