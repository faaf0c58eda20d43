package store

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/vyrodovalexey/items-api/internal/model"
)

func mustCreate(t *testing.T, s *MemoryStore, name, description string) *model.Item {
	t.Helper()
	item, err := s.Create(context.Background(), &model.CreateItemInput{Name: name, Description: description})
	if err != nil {
		t.Fatalf("Create() unexpected error: %v", err)
	}
	return item
}

func TestNewMemoryStore(t *testing.T) {
	// Act
	store := NewMemoryStore()

	// Assert
	if store == nil {
		t.Fatal("NewMemoryStore() returned nil")
	}
	if store.items == nil {
		t.Error("items should be initialized")
	}
	if store.Len() != 0 {
		t.Errorf("Len() = %d, want 0", store.Len())
	}
}

func TestMemoryStore_Create(t *testing.T) {
	tests := []struct {
		name    string
		input   *model.CreateItemInput
		wantErr error
	}{
		{
			name:    "valid item",
			input:   &model.CreateItemInput{Name: "Test Item", Description: "A test item"},
			wantErr: nil,
		},
		{
			name:    "missing name",
			input:   &model.CreateItemInput{Description: "A test item"},
			wantErr: model.ErrNameRequired,
		},
		{
			name:    "missing description",
			input:   &model.CreateItemInput{Name: "Test Item"},
			wantErr: model.ErrDescriptionRequired,
		},
		{
			name:    "nil input",
			input:   nil,
			wantErr: model.ErrValidation,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// Arrange
			store := NewMemoryStore()
			ctx := context.Background()

			// Act
			created, err := store.Create(ctx, tt.input)

			// Assert
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Errorf("Create() error = %v, want %v", err, tt.wantErr)
				}
				if created != nil {
					t.Error("Create() should return nil item on error")
				}
				if store.Len() != 0 {
					t.Errorf("rejected create mutated the store, Len() = %d", store.Len())
				}
				return
			}

			if err != nil {
				t.Fatalf("Create() unexpected error: %v", err)
			}
			if created.ID != 1 {
				t.Errorf("ID = %d, want 1", created.ID)
			}
			if created.Name != tt.input.Name {
				t.Errorf("Name = %s, want %s", created.Name, tt.input.Name)
			}
			if created.Description != tt.input.Description {
				t.Errorf("Description = %s, want %s", created.Description, tt.input.Description)
			}
		})
	}
}

func TestMemoryStore_Create_StrictlyIncreasingIDs(t *testing.T) {
	// Arrange
	store := NewMemoryStore()
	var last int64

	// Act & Assert
	for i := 0; i < 50; i++ {
		created := mustCreate(t, store, "n", "d")
		if created.ID <= last {
			t.Fatalf("ID %d not greater than previous %d", created.ID, last)
		}
		last = created.ID
	}
}

func TestMemoryStore_Create_DoesNotReuseDeletedIDs(t *testing.T) {
	// Arrange
	store := NewMemoryStore()
	ctx := context.Background()
	first := mustCreate(t, store, "a", "b")
	second := mustCreate(t, store, "c", "d")

	// Act
	if err := store.Delete(ctx, second.ID); err != nil {
		t.Fatalf("Delete() unexpected error: %v", err)
	}
	if err := store.Delete(ctx, first.ID); err != nil {
		t.Fatalf("Delete() unexpected error: %v", err)
	}
	third := mustCreate(t, store, "e", "f")

	// Assert
	if third.ID != 3 {
		t.Errorf("ID = %d, want 3", third.ID)
	}
}

func TestMemoryStore_Create_ReturnsCopy(t *testing.T) {
	// Arrange
	store := NewMemoryStore()
	ctx := context.Background()
	created := mustCreate(t, store, "a", "b")

	// Act
	created.Name = "mutated"

	// Assert
	got, err := store.Get(ctx, created.ID)
	if err != nil {
		t.Fatalf("Get() unexpected error: %v", err)
	}
	if got.Name != "a" {
		t.Errorf("stored Name = %s, want a", got.Name)
	}
}

func TestMemoryStore_Get(t *testing.T) {
	// Arrange
	store := NewMemoryStore()
	ctx := context.Background()
	created := mustCreate(t, store, "Test Item", "A test item")

	tests := []struct {
		name    string
		id      int64
		wantErr error
	}{
		{name: "existing item", id: created.ID, wantErr: nil},
		{name: "non-existing item", id: 42, wantErr: ErrNotFound},
		{name: "zero id", id: 0, wantErr: ErrInvalidID},
		{name: "negative id", id: -1, wantErr: ErrInvalidID},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// Act
			got, err := store.Get(ctx, tt.id)

			// Assert
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Errorf("Get() error = %v, want %v", err, tt.wantErr)
				}
				return
			}

			if err != nil {
				t.Fatalf("Get() unexpected error: %v", err)
			}
			if *got != *created {
				t.Errorf("Get() = %+v, want %+v", *got, *created)
			}
		})
	}
}

func TestMemoryStore_List(t *testing.T) {
	tests := []struct {
		name      string
		setup     func(*testing.T, *MemoryStore)
		wantNames []string
	}{
		{
			name:      "empty store",
			setup:     func(_ *testing.T, _ *MemoryStore) {},
			wantNames: []string{},
		},
		{
			name: "creation order",
			setup: func(t *testing.T, s *MemoryStore) {
				mustCreate(t, s, "one", "d")
				mustCreate(t, s, "two", "d")
				mustCreate(t, s, "three", "d")
			},
			wantNames: []string{"one", "two", "three"},
		},
		{
			name: "order kept across update and delete",
			setup: func(t *testing.T, s *MemoryStore) {
				ctx := context.Background()
				mustCreate(t, s, "one", "d")
				two := mustCreate(t, s, "two", "d")
				mustCreate(t, s, "three", "d")
				if _, err := s.Update(ctx, 1, &model.UpdateItemInput{Name: "uno"}); err != nil {
					t.Fatalf("Update() unexpected error: %v", err)
				}
				if err := s.Delete(ctx, two.ID); err != nil {
					t.Fatalf("Delete() unexpected error: %v", err)
				}
				mustCreate(t, s, "four", "d")
			},
			wantNames: []string{"uno", "three", "four"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// Arrange
			store := NewMemoryStore()
			tt.setup(t, store)

			// Act
			items, err := store.List(context.Background())

			// Assert
			if err != nil {
				t.Fatalf("List() unexpected error: %v", err)
			}
			if items == nil {
				t.Fatal("List() returned nil slice")
			}
			if len(items) != len(tt.wantNames) {
				t.Fatalf("List() returned %d items, want %d", len(items), len(tt.wantNames))
			}
			for i, name := range tt.wantNames {
				if items[i].Name != name {
					t.Errorf("items[%d].Name = %s, want %s", i, items[i].Name, name)
				}
			}
		})
	}
}

func TestMemoryStore_List_ReturnsCopy(t *testing.T) {
	// Arrange
	store := NewMemoryStore()
	ctx := context.Background()
	mustCreate(t, store, "a", "b")

	// Act
	items, _ := store.List(ctx)
	items[0].Name = "mutated"

	// Assert
	again, _ := store.List(ctx)
	if again[0].Name != "a" {
		t.Errorf("stored Name = %s, want a", again[0].Name)
	}
}

func TestMemoryStore_Update(t *testing.T) {
	tests := []struct {
		name    string
		id      int64
		input   *model.UpdateItemInput
		want    model.Item
		wantErr error
	}{
		{
			name:  "name only",
			id:    1,
			input: &model.UpdateItemInput{Name: "e"},
			want:  model.Item{ID: 1, Name: "e", Description: "d"},
		},
		{
			name:  "description only",
			id:    1,
			input: &model.UpdateItemInput{Description: "f"},
			want:  model.Item{ID: 1, Name: "c", Description: "f"},
		},
		{
			name:  "empty input leaves record unchanged",
			id:    1,
			input: &model.UpdateItemInput{},
			want:  model.Item{ID: 1, Name: "c", Description: "d"},
		},
		{
			name:  "nil input leaves record unchanged",
			id:    1,
			input: nil,
			want:  model.Item{ID: 1, Name: "c", Description: "d"},
		},
		{
			name:    "non-existing item",
			id:      99,
			input:   &model.UpdateItemInput{Name: "e"},
			wantErr: ErrNotFound,
		},
		{
			name:    "invalid id",
			id:      0,
			input:   &model.UpdateItemInput{Name: "e"},
			wantErr: ErrInvalidID,
		},
		{
			name:    "non-existing item with oversized name",
			id:      999,
			input:   &model.UpdateItemInput{Name: string(make([]byte, model.MaxNameLength+45))},
			wantErr: ErrNotFound,
		},
		{
			name:    "name too long",
			id:      1,
			input:   &model.UpdateItemInput{Name: string(make([]byte, model.MaxNameLength+1))},
			wantErr: model.ErrNameTooLong,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// Arrange
			store := NewMemoryStore()
			ctx := context.Background()
			mustCreate(t, store, "c", "d")

			// Act
			updated, err := store.Update(ctx, tt.id, tt.input)

			// Assert
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Errorf("Update() error = %v, want %v", err, tt.wantErr)
				}
				return
			}

			if err != nil {
				t.Fatalf("Update() unexpected error: %v", err)
			}
			if *updated != tt.want {
				t.Errorf("Update() = %+v, want %+v", *updated, tt.want)
			}

			stored, err := store.Get(ctx, tt.id)
			if err != nil {
				t.Fatalf("Get() unexpected error: %v", err)
			}
			if *stored != tt.want {
				t.Errorf("stored = %+v, want %+v", *stored, tt.want)
			}
		})
	}
}

func TestMemoryStore_Delete(t *testing.T) {
	tests := []struct {
		name    string
		id      int64
		wantErr error
	}{
		{name: "existing item", id: 1, wantErr: nil},
		{name: "non-existing item", id: 99, wantErr: ErrNotFound},
		{name: "invalid id", id: -5, wantErr: ErrInvalidID},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// Arrange
			store := NewMemoryStore()
			ctx := context.Background()
			mustCreate(t, store, "a", "b")

			// Act
			err := store.Delete(ctx, tt.id)

			// Assert
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Errorf("Delete() error = %v, want %v", err, tt.wantErr)
				}
				if store.Len() != 1 {
					t.Errorf("failed delete changed Len() to %d", store.Len())
				}
				return
			}

			if err != nil {
				t.Fatalf("Delete() unexpected error: %v", err)
			}
			if _, err := store.Get(ctx, tt.id); !errors.Is(err, ErrNotFound) {
				t.Errorf("Get() after delete error = %v, want %v", err, ErrNotFound)
			}
			if err := store.Delete(ctx, tt.id); !errors.Is(err, ErrNotFound) {
				t.Errorf("second Delete() error = %v, want %v", err, ErrNotFound)
			}
		})
	}
}

func TestMemoryStore_ContextCancellation(t *testing.T) {
	// Arrange
	store := NewMemoryStore()
	mustCreate(t, store, "a", "b")
	ctx, cancel := context.WithCancel(context.Background())
	cancel() // Cancel immediately

	// Act & Assert
	if _, err := store.List(ctx); !errors.Is(err, context.Canceled) {
		t.Errorf("List() error = %v, want context.Canceled", err)
	}
	if _, err := store.Get(ctx, 1); !errors.Is(err, context.Canceled) {
		t.Errorf("Get() error = %v, want context.Canceled", err)
	}
	if _, err := store.Create(ctx, &model.CreateItemInput{Name: "c", Description: "d"}); !errors.Is(err, context.Canceled) {
		t.Errorf("Create() error = %v, want context.Canceled", err)
	}
	if _, err := store.Update(ctx, 1, &model.UpdateItemInput{Name: "e"}); !errors.Is(err, context.Canceled) {
		t.Errorf("Update() error = %v, want context.Canceled", err)
	}
	if err := store.Delete(ctx, 1); !errors.Is(err, context.Canceled) {
		t.Errorf("Delete() error = %v, want context.Canceled", err)
	}

	// No call above may have mutated the store.
	if store.Len() != 1 {
		t.Errorf("Len() = %d, want 1", store.Len())
	}
}

func TestMemoryStore_ConcurrentWrites(t *testing.T) {
	// Arrange
	store := NewMemoryStore()
	ctx := context.Background()
	numGoroutines := 50

	var (
		wg  sync.WaitGroup
		mu  sync.Mutex
		ids = make(map[int64]bool)
	)
	wg.Add(numGoroutines)

	// Act
	for i := 0; i < numGoroutines; i++ {
		go func() {
			defer wg.Done()
			created, err := store.Create(ctx, &model.CreateItemInput{Name: "n", Description: "d"})
			if err != nil {
				return
			}
			mu.Lock()
			ids[created.ID] = true
			mu.Unlock()
		}()
	}

	wg.Wait()

	// Assert
	if len(ids) != numGoroutines {
		t.Errorf("got %d unique IDs, want %d", len(ids), numGoroutines)
	}
	for id := int64(1); id <= int64(numGoroutines); id++ {
		if !ids[id] {
			t.Errorf("ID %d was never assigned", id)
		}
	}
}

func TestMemoryStore_ConcurrentAccess(t *testing.T) {
	// Arrange
	store := NewMemoryStore()
	ctx := context.Background()
	numGoroutines := 50
	numOperations := 10

	var wg sync.WaitGroup
	wg.Add(numGoroutines)

	// Act
	for i := 0; i < numGoroutines; i++ {
		go func() {
			defer wg.Done()
			for j := 0; j < numOperations; j++ {
				created, err := store.Create(ctx, &model.CreateItemInput{Name: "n", Description: "d"})
				if err != nil {
					return
				}
				_, _ = store.Get(ctx, created.ID)
				_, _ = store.List(ctx)
				_, _ = store.Update(ctx, created.ID, &model.UpdateItemInput{Name: "u"})
				_ = store.Delete(ctx, created.ID)
			}
		}()
	}

	wg.Wait()

	// Assert
	if store.Len() != 0 {
		t.Errorf("Len() = %d, want 0", store.Len())
	}
	next := mustCreate(t, store, "a", "b")
	if want := int64(numGoroutines*numOperations + 1); next.ID != want {
		t.Errorf("next ID = %d, want %d", next.ID, want)
	}
}

func TestParseID(t *testing.T) {
	tests := []struct {
		input   string
		want    int64
		wantErr bool
	}{
		{"1", 1, false},
		{"42", 42, false},
		{"0", 0, true},
		{"-3", 0, true},
		{"abc", 0, true},
		{"1.5", 0, true},
		{"", 0, true},
		{"99999999999999999999", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseID(tt.input)
			if tt.wantErr {
				if !errors.Is(err, ErrInvalidID) {
					t.Errorf("ParseID(%q) error = %v, want %v", tt.input, err, ErrInvalidID)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseID(%q) unexpected error: %v", tt.input, err)
			}
			if got != tt.want {
				t.Errorf("ParseID(%q) = %d, want %d", tt.input, got, tt.want)
			}
		})
	}
}

func TestMemoryStore_ImplementsInterface(t *testing.T) {
	var _ Store = (*MemoryStore)(nil)
	var _ Store = (*InstrumentedStore)(nil)
}
