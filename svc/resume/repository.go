package resume

import (
	"context"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Repository persists résumés. Every read and write is scoped to the owner.
type Repository interface {
	Create(ctx context.Context, r Resume) (*Resume, error)
	Get(ctx context.Context, userID string, id uuid.UUID) (*Resume, error)
	List(ctx context.Context, userID string) ([]Resume, error)
	Count(ctx context.Context, userID string) (int64, error)
	UpdateStyle(ctx context.Context, userID string, id uuid.UUID, borderStyle, accentColor string) (*Resume, error)
}

type memoryRepository struct {
	mu      sync.RWMutex
	resumes map[uuid.UUID]Resume
}

// NewMemoryRepository returns a process-local Repository for tests and local runs.
func NewMemoryRepository() Repository {
	return &memoryRepository{resumes: make(map[uuid.UUID]Resume)}
}

func (m *memoryRepository) Create(_ context.Context, r Resume) (*Resume, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := time.Now().UTC()
	r.CreatedAt, r.UpdatedAt = now, now
	m.resumes[r.ID] = r
	return &r, nil
}

func (m *memoryRepository) Get(_ context.Context, userID string, id uuid.UUID) (*Resume, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	r, ok := m.resumes[id]
	if !ok || r.UserID != userID {
		return nil, ErrNotFound
	}
	return &r, nil
}

func (m *memoryRepository) List(_ context.Context, userID string) ([]Resume, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var out []Resume
	for _, r := range m.resumes {
		if r.UserID == userID {
			out = append(out, r)
		}
	}
	slices.SortFunc(out, func(a, b Resume) int { return b.CreatedAt.Compare(a.CreatedAt) })
	return out, nil
}

func (m *memoryRepository) Count(_ context.Context, userID string) (int64, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var n int64
	for _, r := range m.resumes {
		if r.UserID == userID {
			n++
		}
	}
	return n, nil
}

func (m *memoryRepository) UpdateStyle(_ context.Context, userID string, id uuid.UUID, borderStyle, accentColor string) (*Resume, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	r, ok := m.resumes[id]
	if !ok || r.UserID != userID {
		return nil, ErrNotFound
	}
	r.BorderStyle, r.AccentColor = borderStyle, accentColor
	r.UpdatedAt = time.Now().UTC()
	m.resumes[id] = r
	return &r, nil
}
