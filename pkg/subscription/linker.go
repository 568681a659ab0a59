package subscription

import (
	"context"
	"sync"
)

// CustomerLinker is the identity-linking side store that associates a user
// with their billing customer. It is written on checkout completion.
type CustomerLinker interface {
	// LinkCustomer associates customerID with userID. Re-linking the same pair
	// is a no-op and reports linked=false. A customer belongs to one user at a
	// time: linking it to a new user unlinks the previous one.
	LinkCustomer(ctx context.Context, userID, customerID string) (linked bool, err error)

	// CustomerID returns the linked customer or ErrCustomerNotLinked.
	CustomerID(ctx context.Context, userID string) (string, error)

	// UserID returns the user linked to customerID or ErrCustomerNotLinked.
	UserID(ctx context.Context, customerID string) (string, error)
}

type memoryLinker struct {
	mu         sync.RWMutex
	byUser     map[string]string
	byCustomer map[string]string
}

// NewMemoryLinker returns a process-local CustomerLinker.
func NewMemoryLinker() CustomerLinker {
	return &memoryLinker{
		byUser:     make(map[string]string),
		byCustomer: make(map[string]string),
	}
}

func (l *memoryLinker) LinkCustomer(_ context.Context, userID, customerID string) (bool, error) {
	if userID == "" {
		return false, ErrMissingUserID
	}
	if customerID == "" {
		return false, ErrMissingCustomerID
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	prev, ok := l.byUser[userID]
	if ok && prev == customerID {
		return false, nil
	}
	if ok {
		delete(l.byCustomer, prev)
	}
	if owner, taken := l.byCustomer[customerID]; taken && owner != userID {
		delete(l.byUser, owner)
	}
	l.byUser[userID] = customerID
	l.byCustomer[customerID] = userID
	return true, nil
}

func (l *memoryLinker) CustomerID(_ context.Context, userID string) (string, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	id, ok := l.byUser[userID]
	if !ok {
		return "", ErrCustomerNotLinked
	}
	return id, nil
}

func (l *memoryLinker) UserID(_ context.Context, customerID string) (string, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	id, ok := l.byCustomer[customerID]
	if !ok {
		return "", ErrCustomerNotLinked
	}
	return id, nil
}
