package match

import (
	"context"
	"sort"
	"strings"
	"sync"

	"github.com/prismvale/checkersd/internal/domain"
)

// memrepo is a development-only in-memory repository implementation used when no DB is configured.
type memrepo struct {
	mu sync.RWMutex

	nextID int64

	matchesByID   map[int64]*domain.MatchRecord
	matchesByUUID map[string]*domain.MatchRecord
	matchesByUser map[string][]*domain.MatchRecord // playerHash -> slice (append, latest last)

	profiles map[string]*domain.PlayerProfile // playerHash|roomHash -> profile
}

func NewMemoryRepository() Repository {
	return &memrepo{
		matchesByID:   make(map[int64]*domain.MatchRecord),
		matchesByUUID: make(map[string]*domain.MatchRecord),
		matchesByUser: make(map[string][]*domain.MatchRecord),
		profiles:      make(map[string]*domain.PlayerProfile),
	}
}

func (m *memrepo) InsertMatch(ctx context.Context, rec *domain.MatchRecord) (int64, error) {
	if rec == nil {
		return 0, ErrDuplicateMatch
	}

	uuid := strings.TrimSpace(rec.MatchUUID)

	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.matchesByUUID[uuid]; exists {
		return 0, ErrDuplicateMatch
	}

	m.nextID++
	id := m.nextID
	copy := *rec
	copy.ID = id

	m.matchesByID[id] = &copy
	m.matchesByUUID[uuid] = &copy
	m.matchesByUser[rec.RedHash] = append(m.matchesByUser[rec.RedHash], &copy)
	if rec.BlackHash != rec.RedHash {
		m.matchesByUser[rec.BlackHash] = append(m.matchesByUser[rec.BlackHash], &copy)
	}

	return id, nil
}

func (m *memrepo) GetRecentMatches(ctx context.Context, playerHash string, limit int) ([]*domain.MatchRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	list := m.matchesByUser[playerHash]
	if len(list) == 0 {
		return []*domain.MatchRecord{}, nil
	}
	// Sort by EndedAt desc (fallback to ID desc)
	items := append([]*domain.MatchRecord(nil), list...)
	sort.Slice(items, func(i, j int) bool {
		if !items[i].EndedAt.Equal(items[j].EndedAt) {
			return items[i].EndedAt.After(items[j].EndedAt)
		}
		return items[i].ID > items[j].ID
	})
	if limit > 0 && len(items) > limit {
		items = items[:limit]
	}
	return items, nil
}

func (m *memrepo) GetMatch(ctx context.Context, id int64) (*domain.MatchRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	rec, ok := m.matchesByID[id]
	if !ok || rec == nil {
		return nil, nil
	}
	copy := *rec
	return &copy, nil
}

func (m *memrepo) GetProfile(ctx context.Context, playerHash, roomHash string) (*domain.PlayerProfile, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if p, ok := m.profiles[m.profileKey(playerHash, roomHash)]; ok && p != nil {
		copy := *p
		return &copy, nil
	}
	return nil, nil
}

func (m *memrepo) UpsertProfile(ctx context.Context, profile *domain.PlayerProfile) error {
	if profile == nil {
		return nil
	}
	key := m.profileKey(profile.PlayerHash, profile.RoomHash)
	stored := *profile
	m.mu.Lock()
	m.profiles[key] = &stored
	m.mu.Unlock()
	return nil
}

func (m *memrepo) profileKey(playerHash, roomHash string) string {
	return strings.TrimSpace(playerHash) + "|" + strings.TrimSpace(roomHash)
}
