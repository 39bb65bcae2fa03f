package database

import (
	"context"
	"sort"
	"strings"
	"sync"

	"github.com/sahilchouksey/degreefyd-api/model"
	"github.com/sahilchouksey/degreefyd-api/services/catalog"
)

// MemoryStore keeps everything in process. It backs STORE_DRIVER=memory and
// the in-process client.
type MemoryStore struct {
	colleges *memoryColleges
	users    *memoryUsers
}

// NewMemoryStore returns an empty store
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		colleges: &memoryColleges{byID: map[string]model.College{}},
		users:    &memoryUsers{byID: map[string]model.User{}},
	}
}

func (s *MemoryStore) Init(context.Context) error        { return nil }
func (s *MemoryStore) Close() error                      { return nil }
func (s *MemoryStore) HealthCheck(context.Context) error { return nil }
func (s *MemoryStore) Colleges() CollegeStore            { return s.colleges }
func (s *MemoryStore) Users() UserStore                  { return s.users }

type memoryColleges struct {
	mu   sync.RWMutex
	byID map[string]model.College
}

// snapshot returns a corpus over a copy of the current documents
func (m *memoryColleges) snapshot() *catalog.SliceCorpus {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]model.College, 0, len(m.byID))
	for _, c := range m.byID {
		out = append(out, c)
	}
	// map iteration is random; hand the corpus a fixed order
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return catalog.NewSliceCorpus(out)
}

func (m *memoryColleges) Count(ctx context.Context, filter catalog.Filter) (int64, error) {
	return m.snapshot().Count(ctx, filter)
}

func (m *memoryColleges) Find(ctx context.Context, filter catalog.Filter, key catalog.SortKey, window catalog.Window) ([]model.College, error) {
	return m.snapshot().Find(ctx, filter, key, window)
}

func (m *memoryColleges) GetByID(_ context.Context, id string) (*model.College, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	c, ok := m.byID[id]
	if !ok {
		return nil, ErrNotFound
	}
	out := c.Clone()
	return &out, nil
}

func (m *memoryColleges) Create(_ context.Context, college *model.College) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	college.EnsureID()
	if m.slugTaken(college.Slug, college.ID) {
		return ErrDuplicateSlug
	}
	m.byID[college.ID] = college.Clone()
	return nil
}

func (m *memoryColleges) Update(_ context.Context, college *model.College) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.byID[college.ID]; !ok {
		return ErrNotFound
	}
	if m.slugTaken(college.Slug, college.ID) {
		return ErrDuplicateSlug
	}
	m.byID[college.ID] = college.Clone()
	return nil
}

func (m *memoryColleges) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.byID[id]; !ok {
		return ErrNotFound
	}
	delete(m.byID, id)
	return nil
}

func (m *memoryColleges) Stats(_ context.Context) (model.DashboardStats, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var stats model.DashboardStats
	for _, c := range m.byID {
		stats.TotalColleges++
		if c.Status == model.CollegeStatusPublished {
			stats.Published++
		} else {
			stats.Drafts++
		}
		stats.TotalCourses += int64(len(c.Courses))
	}
	return stats, nil
}

// slugTaken must be called with the lock held
func (m *memoryColleges) slugTaken(slug, exceptID string) bool {
	for id, c := range m.byID {
		if id != exceptID && c.Slug == slug {
			return true
		}
	}
	return false
}

type memoryUsers struct {
	mu   sync.RWMutex
	byID map[string]model.User
}

func (m *memoryUsers) GetByID(_ context.Context, id string) (*model.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	u, ok := m.byID[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &u, nil
}

func (m *memoryUsers) GetByEmail(_ context.Context, email string) (*model.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	for _, u := range m.byID {
		if strings.EqualFold(u.Email, email) {
			return &u, nil
		}
	}
	return nil, ErrNotFound
}

func (m *memoryUsers) Create(_ context.Context, user *model.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, u := range m.byID {
		if strings.EqualFold(u.Email, user.Email) {
			return ErrDuplicateEmail
		}
	}
	user.EnsureID()
	m.byID[user.ID] = *user
	return nil
}

func (m *memoryUsers) Update(_ context.Context, user *model.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.byID[user.ID]; !ok {
		return ErrNotFound
	}
	m.byID[user.ID] = *user
	return nil
}

func (m *memoryUsers) CountByRole(_ context.Context, role string) (int64, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var n int64
	for _, u := range m.byID {
		if u.Role == role {
			n++
		}
	}
	return n, nil
}
