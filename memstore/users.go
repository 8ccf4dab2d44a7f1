// Package memstore provides the in-memory implementations of the store
// interfaces. Each collection serializes its mutations with its own lock and
// hands out copies, so callers can never alias stored records.
package memstore

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/user/serverkit-go/apperror"
	"github.com/user/serverkit-go/auth"
)

// Users is an in-memory auth.UserStore.
type Users struct {
	mu      sync.RWMutex
	nextID  int64
	byID    map[int64]*auth.User
	byEmail map[string]int64
	now     func() time.Time
}

var _ auth.UserStore = (*Users)(nil)

// NewUsers returns an empty user collection.
func NewUsers() *Users {
	return &Users{
		byID:    make(map[int64]*auth.User),
		byEmail: make(map[string]int64),
		now:     time.Now,
	}
}

// Create stores a copy of u under the next ID. The email check and the
// insert happen under one write lock.
func (s *Users) Create(_ context.Context, u *auth.User) (*auth.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, taken := s.byEmail[u.Email]; taken {
		return nil, apperror.NewDuplicateEmail(nil)
	}
	s.nextID++
	stored := *u
	stored.ID = s.nextID
	stored.CreatedAt = s.now().UTC()
	if stored.Role == "" {
		stored.Role = auth.RoleUser
	}
	s.byID[stored.ID] = &stored
	s.byEmail[stored.Email] = stored.ID

	out := stored
	return &out, nil
}

func (s *Users) GetByID(_ context.Context, id int64) (*auth.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	u, ok := s.byID[id]
	if !ok {
		return nil, apperror.NewNotFoundError(apperror.CodeUserNotFound, "user not found")
	}
	out := *u
	return &out, nil
}

func (s *Users) GetByEmail(ctx context.Context, email string) (*auth.User, error) {
	s.mu.RLock()
	id, ok := s.byEmail[email]
	s.mu.RUnlock()
	if !ok {
		return nil, apperror.NewNotFoundError(apperror.CodeUserNotFound, "user not found")
	}
	return s.GetByID(ctx, id)
}

// List returns every user ordered by ID.
func (s *Users) List(_ context.Context) ([]*auth.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*auth.User, 0, len(s.byID))
	for _, u := range s.byID {
		c := *u
		out = append(out, &c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s *Users) SetRole(_ context.Context, id int64, role auth.Role) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.byID[id]
	if !ok {
		return apperror.NewNotFoundError(apperror.CodeUserNotFound, "user not found")
	}
	u.Role = role
	return nil
}
