// Package model defines data structures used throughout the application.
package model

import (
	"errors"
	"fmt"
	"time"
	"unicode/utf8"
)

// ErrValidation is the root of every input validation error.
var ErrValidation = errors.New("validation failed")

// Validation errors for Item input.
var (
	ErrNameRequired        = fmt.Errorf("%w: name is required", ErrValidation)
	ErrDescriptionRequired = fmt.Errorf("%w: description is required", ErrValidation)
	ErrNameTooLong         = fmt.Errorf("%w: name cannot exceed 255 characters", ErrValidation)
	ErrDescriptionTooLong  = fmt.Errorf("%w: description cannot exceed 1000 characters", ErrValidation)
)

// Validation constants.
const (
	MaxNameLength        = 255
	MaxDescriptionLength = 1000
)

// Item is the single resource managed by the service.
type Item struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

// CreateItemInput carries the client-supplied fields of a new item.
// Both fields are required.
type CreateItemInput struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

// Validate checks that both required fields are present and within limits.
func (in *CreateItemInput) Validate() error {
	if in.Name == "" {
		return ErrNameRequired
	}

	if in.Description == "" {
		return ErrDescriptionRequired
	}

	return checkLimits(in.Name, in.Description)
}

// UpdateItemInput carries a partial update. Empty fields are left unchanged.
type UpdateItemInput struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

// Validate checks the limits of the fields that are present.
func (in *UpdateItemInput) Validate() error {
	return checkLimits(in.Name, in.Description)
}

// IsEmpty reports whether the update carries no field to apply.
func (in *UpdateItemInput) IsEmpty() bool {
	return in.Name == "" && in.Description == ""
}

// ApplyTo replaces the fields of item that are non-empty in the input.
// The item ID is never touched.
func (in *UpdateItemInput) ApplyTo(item *Item) {
	if in.Name != "" {
		item.Name = in.Name
	}
	if in.Description != "" {
		item.Description = in.Description
	}
}

// checkLimits counts characters, not bytes.
func checkLimits(name, description string) error {
	if utf8.RuneCountInString(name) > MaxNameLength {
		return ErrNameTooLong
	}

	if utf8.RuneCountInString(description) > MaxDescriptionLength {
		return ErrDescriptionTooLong
	}

	return nil
}

// ErrorResponse is the body of every error response.
type ErrorResponse struct {
	Error string `json:"error"`
}

// ItemEvent describes a change to the item collection, sent over WebSocket.
type ItemEvent struct {
	Type      string    `json:"type"`
	Item      Item      `json:"item"`
	Timestamp time.Time `json:"timestamp"`
}

// Item event types.
const (
	EventItemCreated = "item.created"
	EventItemUpdated = "item.updated"
	EventItemDeleted = "item.deleted"
)

// NewItemEvent creates an event of the given type for item.
func NewItemEvent(eventType string, item Item) ItemEvent {
	return ItemEvent{
		Type:      eventType,
		Item:      item,
		Timestamp: time.Now().UTC(),
	}
}
