package store

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/devotionalai/api/internal/model"
)

// MemoryStore is an in-process Store used by tests and local development
// without a database. It enforces the same quota and transition rules as
// the Postgres store.
type MemoryStore struct {
	mu          sync.Mutex
	users       map[string]*model.User
	generations map[string]*model.Generation
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		users:       make(map[string]*model.User),
		generations: make(map[string]*model.Generation),
	}
}

func (s *MemoryStore) CreateGeneration(ctx context.Context, userID string, params model.GenerationParams) (*model.Generation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	user, ok := s.users[userID]
	if !ok {
		return nil, ErrNotFound
	}
	if user.GenerationsCount >= user.GenerationsLimit {
		return nil, ErrQuotaExceeded
	}

	gen := &model.Generation{
		ID:            uuid.New().String(),
		UserID:        userID,
		Kind:          params.Kind,
		Status:        model.StatusPending,
		InputText:     params.InputText,
		Language:      params.Language,
		VoiceStyle:    params.VoiceStyle,
		SelectedVoice: params.SelectedVoice,
		TemplateID:    params.TemplateID,
		Lyrics:        params.Lyrics,
		CreatedAt:     time.Now().UTC(),
	}
	s.generations[gen.ID] = gen
	user.GenerationsCount++

	out := *gen
	return &out, nil
}

func (s *MemoryStore) GetGeneration(ctx context.Context, id, userID string) (*model.Generation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	gen, ok := s.generations[id]
	if !ok || gen.UserID != userID {
		return nil, ErrNotFound
	}
	out := *gen
	return &out, nil
}

func (s *MemoryStore) GetGenerationAny(ctx context.Context, id string) (*model.Generation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	gen, ok := s.generations[id]
	if !ok {
		return nil, ErrNotFound
	}
	out := *gen
	return &out, nil
}

func (s *MemoryStore) ListGenerations(ctx context.Context, userID string, offset, limit int) ([]*model.Generation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var owned []*model.Generation
	for _, gen := range s.generations {
		if gen.UserID == userID {
			out := *gen
			owned = append(owned, &out)
		}
	}
	sort.Slice(owned, func(i, j int) bool {
		return owned[i].CreatedAt.Before(owned[j].CreatedAt)
	})

	if offset >= len(owned) {
		return []*model.Generation{}, nil
	}
	end := offset + limit
	if end > len(owned) {
		end = len(owned)
	}
	return owned[offset:end], nil
}

func (s *MemoryStore) MarkProcessing(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	gen, ok := s.generations[id]
	if !ok {
		return ErrNotFound
	}
	if !model.CanTransition(gen.Status, model.StatusProcessing) {
		return ErrInvalidTransition
	}
	now := time.Now().UTC()
	gen.Status = model.StatusProcessing
	gen.StartedAt = &now
	return nil
}

func (s *MemoryStore) MarkCompleted(ctx context.Context, id string, result model.GenerationResult) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	gen, ok := s.generations[id]
	if !ok {
		return ErrNotFound
	}
	if !model.CanTransition(gen.Status, model.StatusCompleted) {
		return ErrInvalidTransition
	}
	now := time.Now().UTC()
	gen.Status = model.StatusCompleted
	gen.AudioURL = result.AudioURL
	gen.VideoURL = result.VideoURL
	gen.CompletedAt = &now
	gen.ProcessingSeconds = result.ProcessingSeconds
	gen.FileSizeBytes = result.FileSizeBytes
	return nil
}

func (s *MemoryStore) MarkFailed(ctx context.Context, id string, errMsg string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	gen, ok := s.generations[id]
	if !ok {
		return ErrNotFound
	}
	if !model.CanTransition(gen.Status, model.StatusFailed) {
		return ErrInvalidTransition
	}
	now := time.Now().UTC()
	gen.Status = model.StatusFailed
	gen.Error = &errMsg
	gen.CompletedAt = &now
	return nil
}

func (s *MemoryStore) CreateUser(ctx context.Context, email, passwordHash, fullName string, plan model.Plan, limit int) (*model.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, u := range s.users {
		if u.Email == email {
			return nil, ErrEmailTaken
		}
	}
	user := &model.User{
		ID:               uuid.New().String(),
		Email:            email,
		PasswordHash:     passwordHash,
		FullName:         fullName,
		Plan:             plan,
		GenerationsLimit: limit,
		CreatedAt:        time.Now().UTC(),
	}
	s.users[user.ID] = user
	out := *user
	return &out, nil
}

func (s *MemoryStore) GetUserByID(ctx context.Context, id string) (*model.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	user, ok := s.users[id]
	if !ok {
		return nil, ErrNotFound
	}
	out := *user
	return &out, nil
}

func (s *MemoryStore) GetUserByEmail(ctx context.Context, email string) (*model.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, user := range s.users {
		if user.Email == email {
			out := *user
			return &out, nil
		}
	}
	return nil, ErrNotFound
}
