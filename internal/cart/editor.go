package cart

import (
	"context"
	"errors"
	"sync"
)

var ErrItemBusy = errors.New("item is already being updated")

// QuantityEditor is the caller side of the cart store. It allows one
// in-flight edit per line; different lines may be edited concurrently.
type QuantityEditor struct {
	store *Store

	mu       sync.Mutex
	updating map[int64]struct{}
}

func NewQuantityEditor(store *Store) *QuantityEditor {
	return &QuantityEditor{
		store:    store,
		updating: make(map[int64]struct{}),
	}
}

// ChangeQuantity sets a line's quantity. Below one the line is removed.
func (e *QuantityEditor) ChangeQuantity(ctx context.Context, itemID int64, quantity int) error {
	if quantity < 1 {
		return e.Remove(ctx, itemID)
	}
	if !e.acquire(itemID) {
		return ErrItemBusy
	}
	defer e.release(itemID)

	return e.store.UpdateItem(ctx, itemID, quantity)
}

func (e *QuantityEditor) Remove(ctx context.Context, itemID int64) error {
	if !e.acquire(itemID) {
		return ErrItemBusy
	}
	defer e.release(itemID)

	return e.store.RemoveItem(ctx, itemID)
}

// Updating reports whether an edit of the line is in flight.
func (e *QuantityEditor) Updating(itemID int64) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	_, ok := e.updating[itemID]
	return ok
}

func (e *QuantityEditor) acquire(itemID int64) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	if _, busy := e.updating[itemID]; busy {
		return false
	}
	e.updating[itemID] = struct{}{}
	return true
}

func (e *QuantityEditor) release(itemID int64) {
	e.mu.Lock()
	delete(e.updating, itemID)
	e.mu.Unlock()
}
