package repositories

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/Dosada05/padel-americano/models"
)

var ErrTournamentNotFound = errors.New("tournament not found")

// TournamentRepository хранит сериализованные снапшоты турниров.
// Снапшот всегда записывается целиком: агрегат маленький, а правила
// консистентности живут в сервисном слое.
type TournamentRepository interface {
	Create(ctx context.Context, t *models.Tournament) error
	GetByID(ctx context.Context, id string) (*models.Tournament, error)
	List(ctx context.Context) ([]*models.Tournament, error)
	Update(ctx context.Context, t *models.Tournament) error
	Delete(ctx context.Context, id string) error
}

type postgresTournamentRepository struct {
	db *sql.DB
}

func NewPostgresTournamentRepository(db *sql.DB) TournamentRepository {
	return &postgresTournamentRepository{db: db}
}

func (r *postgresTournamentRepository) Create(ctx context.Context, t *models.Tournament) error {
	data, err := json.Marshal(t)
	if err != nil {
		return fmt.Errorf("marshal tournament %s: %w", t.ID, err)
	}
	query := `
		INSERT INTO tournaments (id, data, created_at, updated_at)
		VALUES ($1, $2, $3, $4)`
	now := time.Now().UTC()
	if _, err := r.db.ExecContext(ctx, query, t.ID, data, now, now); err != nil {
		return fmt.Errorf("insert tournament %s: %w", t.ID, err)
	}
	return nil
}

func (r *postgresTournamentRepository) GetByID(ctx context.Context, id string) (*models.Tournament, error) {
	query := `SELECT data FROM tournaments WHERE id = $1`
	var data []byte
	err := r.db.QueryRowContext(ctx, query, id).Scan(&data)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrTournamentNotFound
		}
		return nil, err
	}
	t := &models.Tournament{}
	if err := json.Unmarshal(data, t); err != nil {
		return nil, fmt.Errorf("unmarshal tournament %s: %w", id, err)
	}
	return t, nil
}

func (r *postgresTournamentRepository) List(ctx context.Context) ([]*models.Tournament, error) {
	query := `SELECT data FROM tournaments ORDER BY created_at DESC`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var tournaments []*models.Tournament
	for rows.Next() {
		var data []byte
		if err := rows.Scan(&data); err != nil {
			return nil, err
		}
		t := &models.Tournament{}
		if err := json.Unmarshal(data, t); err != nil {
			return nil, fmt.Errorf("unmarshal tournament row: %w", err)
		}
		tournaments = append(tournaments, t)
	}
	return tournaments, rows.Err()
}

func (r *postgresTournamentRepository) Update(ctx context.Context, t *models.Tournament) error {
	data, err := json.Marshal(t)
	if err != nil {
		return fmt.Errorf("marshal tournament %s: %w", t.ID, err)
	}
	query := `UPDATE tournaments SET data = $2, updated_at = $3 WHERE id = $1`
	result, err := r.db.ExecContext(ctx, query, t.ID, data, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("update tournament %s: %w", t.ID, err)
	}
	return checkAffectedRows(result, ErrTournamentNotFound)
}

func (r *postgresTournamentRepository) Delete(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM tournaments WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete tournament %s: %w", id, err)
	}
	return checkAffectedRows(result, ErrTournamentNotFound)
}
