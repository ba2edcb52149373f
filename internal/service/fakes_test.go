package service

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/JonnyWalker81/moodlens/backend/internal/cache"
	"github.com/JonnyWalker81/moodlens/backend/internal/models"
	"github.com/JonnyWalker81/moodlens/backend/internal/repository"
)

// mockEntryRepository is an in-memory EntryRepository for testing
type mockEntryRepository struct {
	mu         sync.Mutex
	entries    map[string]models.MoodEntry
	createErr  error
	listCalls  int
	listDelay  time.Duration
	listReturn error
	onList     func()
}

func newMockEntryRepository() *mockEntryRepository {
	return &mockEntryRepository{entries: make(map[string]models.MoodEntry)}
}

func (m *mockEntryRepository) Create(ctx context.Context, entry *models.MoodEntry) (*models.MoodEntry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.createErr != nil {
		return nil, m.createErr
	}
	if _, ok := m.entries[entry.ID]; ok {
		return nil, repository.ErrConflict
	}
	stored := *entry
	stored.CreatedAt = time.Now()
	m.entries[entry.ID] = stored
	return &stored, nil
}

func (m *mockEntryRepository) GetByID(ctx context.Context, id string) (*models.MoodEntry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.entries[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &e, nil
}

func (m *mockEntryRepository) GetByUserIDAndDateRange(ctx context.Context, userID string, start, end time.Time) ([]models.MoodEntry, error) {
	m.mu.Lock()
	m.listCalls++
	delay, listErr, onList := m.listDelay, m.listReturn, m.onList
	var out []models.MoodEntry
	for _, e := range m.entries {
		if e.UserID == userID && !e.Timestamp.Before(start) && !e.Timestamp.After(end) {
			out = append(out, e)
		}
	}
	m.mu.Unlock()

	if onList != nil {
		onList()
	}
	if delay > 0 {
		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if listErr != nil {
		return nil, listErr
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Timestamp.Before(out[j].Timestamp) })
	return out, nil
}

func (m *mockEntryRepository) DeleteByUserIDAndDateRange(ctx context.Context, userID string, start, end time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for id, e := range m.entries {
		if e.UserID == userID && !e.Timestamp.Before(start) && !e.Timestamp.After(end) {
			delete(m.entries, id)
		}
	}
	return nil
}

func (m *mockEntryRepository) calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.listCalls
}

// mockGoalRepository is an in-memory GoalRepository for testing
type mockGoalRepository struct {
	mu    sync.Mutex
	goals map[string]models.MoodGoal
}

func newMockGoalRepository() *mockGoalRepository {
	return &mockGoalRepository{goals: make(map[string]models.MoodGoal)}
}

func (m *mockGoalRepository) Create(ctx context.Context, goal *models.MoodGoal) (*models.MoodGoal, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	stored := *goal
	m.goals[goal.ID] = stored
	return &stored, nil
}

func (m *mockGoalRepository) GetByID(ctx context.Context, id string) (*models.MoodGoal, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	g, ok := m.goals[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &g, nil
}

func (m *mockGoalRepository) GetByUserID(ctx context.Context, userID string, activeOnly bool) ([]models.MoodGoal, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.MoodGoal
	for _, g := range m.goals {
		if g.UserID == userID && (!activeOnly || g.IsActive) {
			out = append(out, g)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *mockGoalRepository) Update(ctx context.Context, goal *models.MoodGoal) (*models.MoodGoal, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.goals[goal.ID]; !ok {
		return nil, repository.ErrNotFound
	}
	stored := *goal
	m.goals[goal.ID] = stored
	return &stored, nil
}

func (m *mockGoalRepository) UpdateProgress(ctx context.Context, goal *models.MoodGoal) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	existing, ok := m.goals[goal.ID]
	if !ok {
		return repository.ErrNotFound
	}
	existing.Progress = goal.Progress
	existing.IsActive = goal.IsActive
	existing.Status = goal.Status
	m.goals[goal.ID] = existing
	return nil
}

func (m *mockGoalRepository) Delete(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.goals[id]; !ok {
		return repository.ErrNotFound
	}
	delete(m.goals, id)
	return nil
}

// mockUserRepository is an in-memory UserRepository for testing
type mockUserRepository struct {
	mu     sync.Mutex
	users  map[string]models.User
	getErr error
}

func newMockUserRepository() *mockUserRepository {
	return &mockUserRepository{users: make(map[string]models.User)}
}

func (m *mockUserRepository) GetByID(ctx context.Context, id string) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.getErr != nil {
		return nil, m.getErr
	}
	u, ok := m.users[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &u, nil
}

func (m *mockUserRepository) Create(ctx context.Context, user *models.User) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.users[user.ID]; ok {
		return nil, repository.ErrConflict
	}
	m.users[user.ID] = *user
	u := *user
	return &u, nil
}

func (m *mockUserRepository) UpdatePreferences(ctx context.Context, id string, req *models.UpdatePreferencesRequest) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	if req.AIConsent != nil {
		u.AIConsent = *req.AIConsent
	}
	if req.Timezone != nil {
		u.Timezone = *req.Timezone
	}
	m.users[id] = u
	return &u, nil
}

// memorySnapshotCache is an in-memory SnapshotCache for testing
type memorySnapshotCache struct {
	mu          sync.Mutex
	snaps       map[cache.SnapshotKey]*models.AnalyticsSnapshot
	versions    map[string]int64
	invalidated []string
	failGet     bool
}

func newMemorySnapshotCache() *memorySnapshotCache {
	return &memorySnapshotCache{
		snaps:    make(map[cache.SnapshotKey]*models.AnalyticsSnapshot),
		versions: make(map[string]int64),
	}
}

func (m *memorySnapshotCache) Version(ctx context.Context, userID string) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failGet {
		return 0, errors.New("redis down")
	}
	return m.versions[userID], nil
}

func (m *memorySnapshotCache) Get(ctx context.Context, key cache.SnapshotKey) (*models.AnalyticsSnapshot, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failGet {
		return nil, errors.New("redis down")
	}
	snap, ok := m.snaps[key]
	if !ok {
		return nil, cache.ErrMiss
	}
	return snap, nil
}

func (m *memorySnapshotCache) Set(ctx context.Context, key cache.SnapshotKey, snap *models.AnalyticsSnapshot) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.snaps[key] = snap
	return nil
}

func (m *memorySnapshotCache) InvalidateUser(ctx context.Context, userID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.invalidated = append(m.invalidated, userID)
	m.versions[userID]++
	for k := range m.snaps {
		if k.UserID == userID {
			delete(m.snaps, k)
		}
	}
	return nil
}

func (m *memorySnapshotCache) size() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.snaps)
}

func intPtr(v int) *int { return &v }

func timePtr(t time.Time) *time.Time { return &t }
