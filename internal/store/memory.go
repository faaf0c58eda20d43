package store

import (
	"context"
	"fmt"
	"sync"

	"github.com/vyrodovalexey/items-api/internal/model"
)

// MemoryStore implements Store with an ordered in-memory collection.
// IDs come from a counter that only grows, so deleted IDs are never reused.
type MemoryStore struct {
	mu     sync.Mutex
	items  []model.Item
	lastID int64
}

// NewMemoryStore creates a new, empty MemoryStore instance.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		items: make([]model.Item, 0),
	}
}

// List returns a copy of all items in creation order.
func (s *MemoryStore) List(ctx context.Context) ([]model.Item, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("list items: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	items := make([]model.Item, len(s.items))
	copy(items, s.items)

	return items, nil
}

// Get retrieves an item by its ID.
func (s *MemoryStore) Get(ctx context.Context, id int64) (*model.Item, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("get item: %w", err)
	}

	if id < 1 {
		return nil, ErrInvalidID
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	idx := s.indexOf(id)
	if idx < 0 {
		return nil, ErrNotFound
	}

	item := s.items[idx]
	return &item, nil
}

// Create validates input, assigns the next ID and appends the new item.
// A rejected input leaves the collection untouched.
func (s *MemoryStore) Create(ctx context.Context, input *model.CreateItemInput) (*model.Item, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("create item: %w", err)
	}

	if input == nil {
		return nil, fmt.Errorf("create item: %w", model.ErrNameRequired)
	}

	if err := input.Validate(); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.lastID++
	item := model.Item{
		ID:          s.lastID,
		Name:        input.Name,
		Description: input.Description,
	}
	s.items = append(s.items, item)

	return &item, nil
}

// Update applies the non-empty fields of input to the stored item in place.
func (s *MemoryStore) Update(ctx context.Context, id int64, input *model.UpdateItemInput) (*model.Item, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("update item: %w", err)
	}

	if id < 1 {
		return nil, ErrInvalidID
	}

	if input == nil {
		input = &model.UpdateItemInput{}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	idx := s.indexOf(id)
	if idx < 0 {
		return nil, ErrNotFound
	}

	// Checked after the lookup so an unknown ID always reports ErrNotFound.
	if err := input.Validate(); err != nil {
		return nil, err
	}

	input.ApplyTo(&s.items[idx])

	item := s.items[idx]
	return &item, nil
}

// Delete removes an item by its ID, keeping the order of the remaining items.
func (s *MemoryStore) Delete(ctx context.Context, id int64) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("delete item: %w", err)
	}

	if id < 1 {
		return ErrInvalidID
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	idx := s.indexOf(id)
	if idx < 0 {
		return ErrNotFound
	}

	s.items = append(s.items[:idx], s.items[idx+1:]...)

	return nil
}

// Len returns the number of stored items.
func (s *MemoryStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	return len(s.items)
}

// indexOf returns the position of id in the collection, or -1.
// The caller must hold s.mu.
func (s *MemoryStore) indexOf(id int64) int {
	for i := range s.items {
		if s.items[i].ID == id {
			return i
		}
	}
	return -1
}
