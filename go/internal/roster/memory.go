package roster

import (
	"context"
	"fmt"
	"sync"

	"github.com/mcdev12/draftroom/go/internal/models"
)

// MemoryRepository keeps the roster in process memory for the lifetime of the service.
type MemoryRepository struct {
	mu      sync.RWMutex
	members []models.Member
	nextID  int
}

// NewMemoryRepository seeds the store. Seed entries without an ID are numbered after the highest seeded ID.
func NewMemoryRepository(seed []models.Member) *MemoryRepository {
	r := &MemoryRepository{nextID: 1}
	for _, m := range seed {
		if m.ID >= r.nextID {
			r.nextID = m.ID + 1
		}
	}
	for _, m := range seed {
		if m.ID == 0 {
			m.ID = r.nextID
			r.nextID++
		}
		r.members = append(r.members, m)
	}
	return r
}

func (r *MemoryRepository) Add(_ context.Context, member models.Member) (models.Member, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	member.ID = r.nextID
	r.nextID++
	r.members = append(r.members, member)
	return member, nil
}

func (r *MemoryRepository) Update(_ context.Context, id int, update models.MemberUpdate) (models.Member, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for idx := range r.members {
		if r.members[idx].ID == id {
			r.members[idx] = update.Apply(r.members[idx])
			return r.members[idx], nil
		}
	}
	return models.Member{}, fmt.Errorf("member %d: %w", id, models.ErrNotFound)
}

func (r *MemoryRepository) Remove(_ context.Context, id int) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for idx := range r.members {
		if r.members[idx].ID == id {
			r.members = append(r.members[:idx], r.members[idx+1:]...)
			return nil
		}
	}
	return nil
}

func (r *MemoryRepository) List(_ context.Context) ([]models.Member, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return models.CloneMembers(r.members), nil
}
