package services

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"log/slog"
	"regexp"
	"strings"

	"github.com/Dosada05/padel-americano/models"
	"github.com/Dosada05/padel-americano/repositories"
)

// shareIDAlphabet — 64 символа, каждый байт случайности даёт ровно один символ.
const (
	shareIDAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789_-"
	shareIDLength   = 9
)

var shareIDPattern = regexp.MustCompile(`^[A-Za-z0-9_-]{9}$`)

// ValidShareID reports whether a string is a well-formed share identifier.
func ValidShareID(id string) bool {
	return shareIDPattern.MatchString(id)
}

// ShareService publishes tournament snapshots under short public
// identifiers. A tournament that already owns a share id is re-published in
// place; a fresh id is minted otherwise, with exactly one retry on the
// astronomically rare collision.
type ShareService interface {
	// Share publishes the given snapshot and returns its share id.
	Share(ctx context.Context, t *models.Tournament) (string, error)
	// ShareByID loads a locally stored tournament, publishes it and persists
	// the assigned share id back onto the local snapshot.
	ShareByID(ctx context.Context, tournamentID string) (string, *models.Tournament, error)
	GetShared(ctx context.Context, shareID string) (*models.Tournament, error)
}

type shareService struct {
	shareRepo      repositories.ShareRepository
	tournamentRepo repositories.TournamentRepository
	logger         *slog.Logger
}

func NewShareService(
	shareRepo repositories.ShareRepository,
	tournamentRepo repositories.TournamentRepository,
	logger *slog.Logger,
) ShareService {
	return &shareService{
		shareRepo:      shareRepo,
		tournamentRepo: tournamentRepo,
		logger:         logger,
	}
}

func (s *shareService) Share(ctx context.Context, t *models.Tournament) (string, error) {
	if details := validateSnapshot(t); len(details) > 0 {
		return "", &SnapshotValidationError{Details: details}
	}

	if t.ShareID != nil && *t.ShareID != "" {
		if err := s.shareRepo.Upsert(ctx, *t.ShareID, t); err != nil {
			return "", err
		}
		return *t.ShareID, nil
	}

	// Одна свежая попытка плюс ровно один повтор при коллизии.
	for attempt := 0; attempt < 2; attempt++ {
		shareID, err := generateShareID()
		if err != nil {
			return "", fmt.Errorf("generate share id: %w", err)
		}
		snapshot := t.Clone()
		snapshot.ShareID = &shareID
		err = s.shareRepo.Insert(ctx, shareID, snapshot)
		if err == nil {
			return shareID, nil
		}
		if !errors.Is(err, repositories.ErrShareIDTaken) {
			return "", err
		}
		s.logger.Warn("share id collision", slog.String("share_id", shareID), slog.Int("attempt", attempt+1))
	}
	return "", ErrShareIDConflict
}

func (s *shareService) ShareByID(ctx context.Context, tournamentID string) (string, *models.Tournament, error) {
	t, err := s.tournamentRepo.GetByID(ctx, tournamentID)
	if err != nil {
		if errors.Is(err, repositories.ErrTournamentNotFound) {
			return "", nil, ErrTournamentNotFound
		}
		return "", nil, err
	}

	shareID, err := s.Share(ctx, t)
	if err != nil {
		return "", nil, err
	}
	if t.ShareID == nil || *t.ShareID != shareID {
		next := t.Clone()
		next.ShareID = &shareID
		if err := s.tournamentRepo.Update(ctx, next); err != nil {
			// Публикация удалась; локальный снапшот остаётся без shareId,
			// повторный вызов просто перезапишет ту же запись.
			return "", nil, fmt.Errorf("persist share id for tournament %s: %w", tournamentID, err)
		}
		t = next
	}
	return shareID, t, nil
}

func (s *shareService) GetShared(ctx context.Context, shareID string) (*models.Tournament, error) {
	t, err := s.shareRepo.GetByShareID(ctx, shareID)
	if err != nil {
		if errors.Is(err, repositories.ErrShareNotFound) {
			return nil, ErrShareNotFound
		}
		return nil, err
	}
	return t, nil
}

func generateShareID() (string, error) {
	buf := make([]byte, shareIDLength)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	id := make([]byte, shareIDLength)
	for i, b := range buf {
		id[i] = shareIDAlphabet[int(b)&63]
	}
	return string(id), nil
}

// validateSnapshot mirrors the schema the share endpoint accepts; the share
// store never holds a snapshot the reader side cannot render.
func validateSnapshot(t *models.Tournament) map[string]string {
	details := make(map[string]string)
	if t == nil {
		details["tournament"] = "must not be empty"
		return details
	}
	if strings.TrimSpace(t.ID) == "" {
		details["id"] = "must not be empty"
	}
	if len(t.Name) < 1 || len(t.Name) > 64 {
		details["name"] = "must be between 1 and 64 characters"
	}
	if !t.TeamType.Valid() {
		details["teamType"] = fmt.Sprintf("unknown team type %q", t.TeamType)
	}
	if t.PointType == "" {
		details["pointType"] = "must not be empty"
	}
	if len(t.Players) == 0 {
		details["players"] = "must not be empty"
	}
	if t.CreatedAt.IsZero() {
		details["createdAt"] = "must not be empty"
	}
	for _, round := range t.Rounds {
		if round.RoundNumber < 1 {
			details["rounds"] = "round numbers must start at 1"
			break
		}
		for _, m := range round.Matches {
			if m.ID == "" || len(m.TeamA) == 0 || len(m.TeamB) == 0 {
				details["rounds"] = fmt.Sprintf("round %d has a malformed match", round.RoundNumber)
			}
			if (m.ScoreA == nil) != (m.ScoreB == nil) {
				details["rounds"] = fmt.Sprintf("round %d has a half-scored match", round.RoundNumber)
			}
		}
	}
	if t.ShareID != nil && *t.ShareID != "" && !ValidShareID(*t.ShareID) {
		details["shareId"] = "must match ^[A-Za-z0-9_-]{9}$"
	}
	return details
}
