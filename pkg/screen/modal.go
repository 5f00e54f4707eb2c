// Package screen holds the state behind the storefront's interactive screens,
// independent of how they are rendered: the create/edit modal, the forms it
// hosts and the sales report range.
package screen

import (
	"errors"
	"fmt"
)

var ErrInvalidTransition = errors.New("screen: invalid transition")

// Mode is the state of a Modal.
type Mode int

const (
	Closed Mode = iota
	Creating
	Editing
)

func (m Mode) String() string {
	switch m {
	case Creating:
		return "creating"
	case Editing:
		return "editing"
	default:
		return "closed"
	}
}

// Modal is a create-or-edit dialog. Entity is only meaningful while Editing.
type Modal[T any] struct {
	mode   Mode
	entity T
}

func (m *Modal[T]) Mode() Mode { return m.mode }

// Entity returns the entity being edited.
func (m *Modal[T]) Entity() (T, bool) {
	return m.entity, m.mode == Editing
}

// OpenCreate moves Closed → Creating.
func (m *Modal[T]) OpenCreate() error {
	if m.mode != Closed {
		return m.invalid("open create")
	}
	m.mode = Creating
	return nil
}

// OpenEdit moves Closed → Editing(entity).
func (m *Modal[T]) OpenEdit(entity T) error {
	if m.mode != Closed {
		return m.invalid("open edit")
	}
	m.mode = Editing
	m.entity = entity
	return nil
}

// Close returns to Closed from any state.
func (m *Modal[T]) Close() {
	var zero T
	m.mode = Closed
	m.entity = zero
}

func (m *Modal[T]) invalid(event string) error {
	return fmt.Errorf("%w: %s while %s", ErrInvalidTransition, event, m.mode)
}
