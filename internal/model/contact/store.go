package contact

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"
)

var (
	ErrNotFound     = errors.New("contact not found")
	ErrInvalidInput = errors.New("missing information")
)

// Store exposes contact CRUD for HTTP handlers.
type Store interface {
	List(ctx context.Context) []Contact
	Get(ctx context.Context, id int) (Contact, error)
	Create(ctx context.Context, in Input) (Contact, error)
	Update(ctx context.Context, id int, in Input) (Contact, error)
	Delete(ctx context.Context, id int) (Contact, error)
}

// MemoryStore implements Store with an in-memory slice kept in insertion order.
type MemoryStore struct {
	mu    sync.RWMutex
	items []Contact
}

var _ Store = (*MemoryStore)(nil)

// NewMemoryStore returns a MemoryStore preloaded with the supplied contacts.
func NewMemoryStore(items []Contact) *MemoryStore {
	return &MemoryStore{items: append([]Contact(nil), items...)}
}

// List returns a copy of every contact.
func (s *MemoryStore) List(_ context.Context) []Contact {
	s.mu.RLock()
	defer s.mu.RUnlock()
	items := make([]Contact, len(s.items))
	copy(items, s.items)
	return items
}

// Len returns the number of stored contacts.
func (s *MemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.items)
}

// Get looks up a contact by identifier.
func (s *MemoryStore) Get(_ context.Context, id int) (Contact, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	i := s.index(id)
	if i < 0 {
		return Contact{}, notFound(id)
	}
	return s.items[i], nil
}

// Create appends a new contact. Both fields must be present.
func (s *MemoryStore) Create(_ context.Context, in Input) (Contact, error) {
	if !in.Complete() {
		return Contact{}, ErrInvalidInput
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	c := Contact{ID: s.nextID(), Name: in.Name, Number: in.Number}
	s.items = append(s.items, c)
	return c, nil
}

// Update overwrites name and number of an existing contact. Unlike Create it
// accepts empty fields.
func (s *MemoryStore) Update(_ context.Context, id int, in Input) (Contact, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.index(id)
	if i < 0 {
		return Contact{}, notFound(id)
	}
	s.items[i].Name = in.Name
	s.items[i].Number = in.Number
	return s.items[i], nil
}

// Delete removes a contact and returns it.
func (s *MemoryStore) Delete(_ context.Context, id int) (Contact, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.index(id)
	if i < 0 {
		return Contact{}, notFound(id)
	}
	c := s.items[i]
	s.items = slices.Delete(s.items, i, i+1)
	return c, nil
}

func (s *MemoryStore) index(id int) int {
	return slices.IndexFunc(s.items, func(c Contact) bool { return c.ID == id })
}

// nextID derives the id from the current contents, so deleting the highest
// contact makes its id available again.
func (s *MemoryStore) nextID() int {
	if len(s.items) == 0 {
		return 1
	}
	return slices.MaxFunc(s.items, func(a, b Contact) int { return a.ID - b.ID }).ID + 1
}

func notFound(id int) error {
	return fmt.Errorf("%w: id %d", ErrNotFound, id)
}
