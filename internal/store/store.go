// Package store provides data storage interfaces and implementations.
package store

import (
	"context"
	"errors"
	"strconv"

	"github.com/vyrodovalexey/items-api/internal/model"
)

// Store errors.
var (
	ErrNotFound  = errors.New("item not found")
	ErrInvalidID = errors.New("invalid item ID")
)

// Store defines the interface for item storage operations.
type Store interface {
	// List returns all items in creation order.
	List(ctx context.Context) ([]model.Item, error)

	// Get retrieves an item by its ID.
	Get(ctx context.Context, id int64) (*model.Item, error)

	// Create validates the input, assigns the next ID and stores the new item.
	Create(ctx context.Context, input *model.CreateItemInput) (*model.Item, error)

	// Update applies the non-empty fields of input to an existing item.
	Update(ctx context.Context, id int64, input *model.UpdateItemInput) (*model.Item, error)

	// Delete removes an item from the store by its ID.
	Delete(ctx context.Context, id int64) error
}

// ParseID parses a decimal item ID. Any text that cannot name an item
// yields ErrInvalidID.
func ParseID(s string) (int64, error) {
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil || id < 1 {
		return 0, ErrInvalidID
	}
	return id, nil
}
