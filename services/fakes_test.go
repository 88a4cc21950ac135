package services

import (
	"context"
	"io"
	"log/slog"
	"sync"

	"github.com/Dosada05/padel-americano/models"
	"github.com/Dosada05/padel-americano/repositories"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// fakeTournamentRepo хранит снапшоты в памяти, возвращая копии как настоящая
// JSONB-таблица.
type fakeTournamentRepo struct {
	mu    sync.Mutex
	store map[string]*models.Tournament
}

func newFakeTournamentRepo() *fakeTournamentRepo {
	return &fakeTournamentRepo{store: make(map[string]*models.Tournament)}
}

func (r *fakeTournamentRepo) Create(ctx context.Context, t *models.Tournament) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.store[t.ID] = t.Clone()
	return nil
}

func (r *fakeTournamentRepo) GetByID(ctx context.Context, id string) (*models.Tournament, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	t, ok := r.store[id]
	if !ok {
		return nil, repositories.ErrTournamentNotFound
	}
	return t.Clone(), nil
}

func (r *fakeTournamentRepo) List(ctx context.Context) ([]*models.Tournament, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	result := make([]*models.Tournament, 0, len(r.store))
	for _, t := range r.store {
		result = append(result, t.Clone())
	}
	return result, nil
}

func (r *fakeTournamentRepo) Update(ctx context.Context, t *models.Tournament) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.store[t.ID]; !ok {
		return repositories.ErrTournamentNotFound
	}
	r.store[t.ID] = t.Clone()
	return nil
}

func (r *fakeTournamentRepo) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.store[id]; !ok {
		return repositories.ErrTournamentNotFound
	}
	delete(r.store, id)
	return nil
}

// fakeShareRepo имитирует таблицу публикаций; failInserts заставляет Insert
// отвечать коллизией заданное число раз.
type fakeShareRepo struct {
	mu          sync.Mutex
	published   map[string]*models.Tournament
	failInserts int
	inserts     int
}

func newFakeShareRepo() *fakeShareRepo {
	return &fakeShareRepo{published: make(map[string]*models.Tournament)}
}

func (r *fakeShareRepo) Insert(ctx context.Context, shareID string, t *models.Tournament) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.inserts++
	if r.failInserts > 0 {
		r.failInserts--
		return repositories.ErrShareIDTaken
	}
	if _, ok := r.published[shareID]; ok {
		return repositories.ErrShareIDTaken
	}
	r.published[shareID] = t.Clone()
	return nil
}

func (r *fakeShareRepo) Upsert(ctx context.Context, shareID string, t *models.Tournament) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.published[shareID] = t.Clone()
	return nil
}

func (r *fakeShareRepo) GetByShareID(ctx context.Context, shareID string) (*models.Tournament, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	t, ok := r.published[shareID]
	if !ok {
		return nil, repositories.ErrShareNotFound
	}
	return t.Clone(), nil
}
