package repositories

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/Dosada05/padel-americano/models"
	"github.com/lib/pq"
)

var (
	ErrShareNotFound = errors.New("shared tournament not found")
	ErrShareIDTaken  = errors.New("share id already taken")
)

// uniqueViolation — код ошибки Postgres для нарушения уникальности.
const uniqueViolation = "23505"

// ShareRepository is the public record store: one row per share id holding
// the published tournament snapshot.
type ShareRepository interface {
	// Insert fails with ErrShareIDTaken when the id is already in use, which
	// drives the coordinator's single collision retry.
	Insert(ctx context.Context, shareID string, t *models.Tournament) error
	// Upsert overwrites the snapshot stored at an id the tournament already
	// owns; it creates the row if the remote record went missing.
	Upsert(ctx context.Context, shareID string, t *models.Tournament) error
	GetByShareID(ctx context.Context, shareID string) (*models.Tournament, error)
}

type postgresShareRepository struct {
	db *sql.DB
}

func NewPostgresShareRepository(db *sql.DB) ShareRepository {
	return &postgresShareRepository{db: db}
}

func (r *postgresShareRepository) Insert(ctx context.Context, shareID string, t *models.Tournament) error {
	data, err := json.Marshal(t)
	if err != nil {
		return fmt.Errorf("marshal shared tournament %s: %w", t.ID, err)
	}
	query := `
		INSERT INTO shares (share_id, tournament_id, data, updated_at)
		VALUES ($1, $2, $3, $4)`
	_, err = r.db.ExecContext(ctx, query, shareID, t.ID, data, time.Now().UTC())
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == uniqueViolation {
			return ErrShareIDTaken
		}
		return fmt.Errorf("insert share %s: %w", shareID, err)
	}
	return nil
}

func (r *postgresShareRepository) Upsert(ctx context.Context, shareID string, t *models.Tournament) error {
	data, err := json.Marshal(t)
	if err != nil {
		return fmt.Errorf("marshal shared tournament %s: %w", t.ID, err)
	}
	query := `
		INSERT INTO shares (share_id, tournament_id, data, updated_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (share_id) DO UPDATE
		SET tournament_id = EXCLUDED.tournament_id,
		    data = EXCLUDED.data,
		    updated_at = EXCLUDED.updated_at`
	if _, err := r.db.ExecContext(ctx, query, shareID, t.ID, data, time.Now().UTC()); err != nil {
		return fmt.Errorf("upsert share %s: %w", shareID, err)
	}
	return nil
}

func (r *postgresShareRepository) GetByShareID(ctx context.Context, shareID string) (*models.Tournament, error) {
	var data []byte
	err := r.db.QueryRowContext(ctx, `SELECT data FROM shares WHERE share_id = $1`, shareID).Scan(&data)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrShareNotFound
		}
		return nil, err
	}
	t := &models.Tournament{}
	if err := json.Unmarshal(data, t); err != nil {
		return nil, fmt.Errorf("unmarshal shared tournament %s: %w", shareID, err)
	}
	return t, nil
}
