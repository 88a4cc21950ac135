package services

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/Dosada05/padel-americano/cache"
	"github.com/Dosada05/padel-americano/models"
	"github.com/Dosada05/padel-americano/repositories"
	"github.com/Dosada05/padel-americano/rotation"
	"github.com/Dosada05/padel-americano/stats"
	"github.com/Dosada05/padel-americano/storage"
	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
)

type CreateTournamentInput struct {
	Name          string                   `json:"name"`
	TeamType      models.TeamType          `json:"teamType"`
	PointType     models.PointType         `json:"pointType"`
	Players       []string                 `json:"players"`
	PlayerGenders map[string]models.Gender `json:"playerGenders,omitempty"`
	FirstMatch    *rotation.FixedMatch     `json:"firstMatch,omitempty"`
}

// TournamentService владеет жизненным циклом агрегата: создание, правки
// через команды, удаление. Каждая мутация работает на глубокой копии и
// возвращает новый снапшот; прежний снапшот у вызывающего не меняется.
type TournamentService interface {
	Create(ctx context.Context, input CreateTournamentInput) (*models.Tournament, error)
	Get(ctx context.Context, id string) (*models.Tournament, error)
	List(ctx context.Context) ([]*models.Tournament, error)
	Delete(ctx context.Context, id string) error
	Apply(ctx context.Context, id string, cmd Command) (*models.Tournament, error)
}

type tournamentService struct {
	repo      repositories.TournamentRepository
	hub       *rotation.Hub
	standings *cache.StandingsCache
	archive   storage.FileUploader
	clock     clockwork.Clock
	logger    *slog.Logger
}

// NewTournamentService wires the lifecycle controller. hub, standings and
// archive may be nil: live updates, caching and result archiving are
// optional collaborators and their absence never affects core behavior.
func NewTournamentService(
	repo repositories.TournamentRepository,
	hub *rotation.Hub,
	standings *cache.StandingsCache,
	archive storage.FileUploader,
	clock clockwork.Clock,
	logger *slog.Logger,
) TournamentService {
	return &tournamentService{
		repo:      repo,
		hub:       hub,
		standings: standings,
		archive:   archive,
		clock:     clock,
		logger:    logger,
	}
}

func (s *tournamentService) Create(ctx context.Context, input CreateTournamentInput) (*models.Tournament, error) {
	name := strings.TrimSpace(input.Name)
	if err := validateName(name); err != nil {
		return nil, err
	}
	if !input.TeamType.Valid() {
		return nil, fmt.Errorf("%w: %q", ErrInvalidTeamType, input.TeamType)
	}
	if !input.PointType.Valid() {
		return nil, fmt.Errorf("%w: %q", ErrInvalidPointType, input.PointType)
	}
	if err := validateRoster(input.TeamType, input.Players, input.PlayerGenders); err != nil {
		return nil, err
	}

	t := &models.Tournament{
		ID:        uuid.NewString(),
		Name:      name,
		TeamType:  input.TeamType,
		PointType: input.PointType,
		Players:   append([]string(nil), input.Players...),
		CreatedAt: s.clock.Now().UTC(),
	}
	if input.TeamType == models.TeamTypeMix {
		t.PlayerGenders = make(map[string]models.Gender, len(input.PlayerGenders))
		for _, p := range input.Players {
			t.PlayerGenders[p] = input.PlayerGenders[p]
		}
	}

	if err := s.generateSchedule(ctx, t, input.FirstMatch); err != nil {
		return nil, err
	}
	if err := s.repo.Create(ctx, t); err != nil {
		return nil, fmt.Errorf("persist tournament %s: %w", t.ID, err)
	}

	s.logger.Info("tournament created",
		slog.String("tournament_id", t.ID),
		slog.String("team_type", string(t.TeamType)),
		slog.Int("players", len(t.Players)),
		slog.Int("rounds", len(t.Rounds)))
	return t, nil
}

func (s *tournamentService) Get(ctx context.Context, id string) (*models.Tournament, error) {
	t, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repositories.ErrTournamentNotFound) {
			return nil, ErrTournamentNotFound
		}
		return nil, err
	}
	return t, nil
}

func (s *tournamentService) List(ctx context.Context) ([]*models.Tournament, error) {
	return s.repo.List(ctx)
}

// Delete is the one operation that stays legal after the tournament ends.
func (s *tournamentService) Delete(ctx context.Context, id string) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, repositories.ErrTournamentNotFound) {
			return ErrTournamentNotFound
		}
		return err
	}
	if s.standings != nil {
		s.standings.Invalidate(ctx, id)
	}
	s.logger.Info("tournament deleted", slog.String("tournament_id", id))
	return nil
}

// Apply runs one lifecycle command atomically: on any validation failure the
// stored snapshot is untouched and the error is returned as-is.
func (s *tournamentService) Apply(ctx context.Context, id string, cmd Command) (*models.Tournament, error) {
	current, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	next, event, err := s.applyCommand(ctx, current, cmd)
	if err != nil {
		return nil, err
	}
	if err := s.repo.Update(ctx, next); err != nil {
		return nil, fmt.Errorf("persist tournament %s: %w", id, err)
	}

	broadcast(s.hub, event, next)
	refreshStandings(ctx, s.standings, s.logger, next)
	if _, ended := cmd.(EndTournament); ended {
		s.archiveResults(ctx, next)
	}
	return next, nil
}

// applyCommand is the exhaustive safe-vs-structural dispatch. It never
// mutates its input: every branch works on a clone.
func (s *tournamentService) applyCommand(ctx context.Context, t *models.Tournament, cmd Command) (*models.Tournament, string, error) {
	if t.IsEnded {
		return nil, "", ErrTournamentEnded
	}

	switch c := cmd.(type) {
	case RenamePlayer:
		return s.renamePlayer(t, c)
	case UpdateInfo:
		return s.updateInfo(t, c)
	case AddPlayers:
		return s.addPlayers(ctx, t, c)
	case RemovePlayer:
		return s.removePlayer(ctx, t, c)
	case UpdateMixPlayers:
		return s.updateMixPlayers(ctx, t, c)
	case AdjustLineup:
		return s.adjustLineup(ctx, t, c)
	case ExtendRounds:
		return s.extendRounds(t)
	case EndTournament:
		next := t.Clone()
		next.IsEnded = true
		now := s.clock.Now().UTC()
		next.CompletedAt = &now
		s.logger.Info("tournament ended", slog.String("tournament_id", t.ID))
		return next, rotation.EventTournamentEnded, nil
	}
	return nil, "", fmt.Errorf("unknown command %T", cmd)
}

func (s *tournamentService) renamePlayer(t *models.Tournament, c RenamePlayer) (*models.Tournament, string, error) {
	idx := rosterIndex(t.Players, c.From)
	if idx == -1 {
		return nil, "", fmt.Errorf("%w: %q", ErrPlayerNotFound, c.From)
	}
	to := strings.TrimSpace(c.To)
	if to == "" {
		return nil, "", ErrBlankPlayerName
	}
	if other := rosterIndex(t.Players, to); other != -1 && other != idx {
		return nil, "", fmt.Errorf("%w: %q", ErrDuplicatePlayer, to)
	}

	next := t.Clone()
	renameEverywhere(next, next.Players[idx], to)
	return next, rotation.EventTournamentUpdated, nil
}

func (s *tournamentService) updateInfo(t *models.Tournament, c UpdateInfo) (*models.Tournament, string, error) {
	name := strings.TrimSpace(c.Name)
	if err := validateName(name); err != nil {
		return nil, "", err
	}
	if !c.PointType.Valid() {
		return nil, "", fmt.Errorf("%w: %q", ErrInvalidPointType, c.PointType)
	}

	next := t.Clone()
	next.Name = name
	if c.PointType != t.PointType {
		// Existing scores sum to the old point pool; they cannot survive the
		// change.
		if t.HasAnyScore() {
			if !c.ResetScores {
				return nil, "", ErrPointTypeHasScores
			}
			resetAllScores(next)
		}
		next.PointType = c.PointType
	}
	return next, rotation.EventTournamentUpdated, nil
}

func (s *tournamentService) addPlayers(ctx context.Context, t *models.Tournament, c AddPlayers) (*models.Tournament, string, error) {
	if t.TeamType == models.TeamTypeMix {
		return nil, "", ErrMixRosterOnly
	}
	if len(c.Names) == 0 {
		return nil, "", fmt.Errorf("%w: no players to add", ErrValidationFailed)
	}

	next := t.Clone()
	for _, raw := range c.Names {
		name := strings.TrimSpace(raw)
		if name == "" {
			return nil, "", ErrBlankPlayerName
		}
		if rosterIndex(next.Players, name) != -1 {
			return nil, "", fmt.Errorf("%w: %q", ErrDuplicatePlayer, name)
		}
		next.Players = append(next.Players, name)
	}
	if err := validateRoster(next.TeamType, next.Players, next.PlayerGenders); err != nil {
		return nil, "", err
	}
	if err := s.generateSchedule(ctx, next, nil); err != nil {
		return nil, "", err
	}
	return next, rotation.EventScheduleRegenerated, nil
}

func (s *tournamentService) removePlayer(ctx context.Context, t *models.Tournament, c RemovePlayer) (*models.Tournament, string, error) {
	if t.TeamType == models.TeamTypeMix {
		return nil, "", ErrMixRosterOnly
	}
	idx := rosterIndex(t.Players, c.Name)
	if idx == -1 {
		return nil, "", fmt.Errorf("%w: %q", ErrPlayerNotFound, c.Name)
	}

	next := t.Clone()
	next.Players = append(next.Players[:idx], next.Players[idx+1:]...)
	if err := validateRoster(next.TeamType, next.Players, next.PlayerGenders); err != nil {
		return nil, "", err
	}
	if err := s.generateSchedule(ctx, next, nil); err != nil {
		return nil, "", err
	}
	return next, rotation.EventScheduleRegenerated, nil
}

func (s *tournamentService) updateMixPlayers(ctx context.Context, t *models.Tournament, c UpdateMixPlayers) (*models.Tournament, string, error) {
	if t.TeamType != models.TeamTypeMix {
		return nil, "", fmt.Errorf("%w: tournament is not a mix tournament", ErrValidationFailed)
	}

	next := t.Clone()
	next.Players = make([]string, 0, len(c.Players))
	next.PlayerGenders = make(map[string]models.Gender, len(c.Players))
	for _, mp := range c.Players {
		name := strings.TrimSpace(mp.Name)
		next.Players = append(next.Players, name)
		next.PlayerGenders[name] = mp.Gender
	}
	if err := validateRoster(models.TeamTypeMix, next.Players, next.PlayerGenders); err != nil {
		return nil, "", err
	}
	if err := s.generateSchedule(ctx, next, nil); err != nil {
		return nil, "", err
	}
	return next, rotation.EventScheduleRegenerated, nil
}

func (s *tournamentService) adjustLineup(ctx context.Context, t *models.Tournament, c AdjustLineup) (*models.Tournament, string, error) {
	next := t.Clone()
	if err := s.generateSchedule(ctx, next, &c.FirstMatch); err != nil {
		return nil, "", err
	}
	return next, rotation.EventScheduleRegenerated, nil
}

func (s *tournamentService) extendRounds(t *models.Tournament) (*models.Tournament, string, error) {
	if t.TeamType != models.TeamTypeStandard && t.TeamType != models.TeamTypeMix {
		return nil, "", ErrCannotExtend
	}
	if t.HasExtended {
		return nil, "", ErrAlreadyExtended
	}

	next := t.Clone()
	appended, err := rotation.Extend(next.TeamType, next.Players, next.PlayerGenders, next.Rounds)
	if err != nil {
		return nil, "", err
	}
	next.Rounds = append(next.Rounds, appended...)
	next.HasExtended = true
	s.logger.Info("schedule extended",
		slog.String("tournament_id", t.ID), slog.Int("rounds", len(next.Rounds)))
	return next, rotation.EventScheduleRegenerated, nil
}

// generateSchedule replaces the rounds wholesale. Regeneration always implies
// a fresh, unscored schedule; any extension flag is cleared with it.
func (s *tournamentService) generateSchedule(ctx context.Context, t *models.Tournament, firstMatch *rotation.FixedMatch) error {
	gen, err := rotation.ForTeamType(t.TeamType)
	if err != nil {
		return err
	}
	rounds, err := gen.Generate(ctx, rotation.GenerateParams{
		Players:    t.Players,
		Genders:    t.PlayerGenders,
		TeamType:   t.TeamType,
		FirstMatch: firstMatch,
	})
	if err != nil {
		return err
	}
	t.Rounds = rounds
	t.HasExtended = false
	return nil
}

// archiveResults publishes the final snapshot and leaderboard to the object
// store. Best effort: a failed upload is logged and must never corrupt the
// local snapshot.
func (s *tournamentService) archiveResults(ctx context.Context, t *models.Tournament) {
	if s.archive == nil {
		return
	}
	payload := struct {
		Tournament  *models.Tournament   `json:"tournament"`
		Leaderboard []models.PlayerStats `json:"leaderboard"`
	}{
		Tournament:  t,
		Leaderboard: stats.ComputeLeaderboard(t, stats.ByFinalScore),
	}
	data, err := json.Marshal(payload)
	if err != nil {
		s.logger.Error("failed to marshal results archive",
			slog.String("tournament_id", t.ID), slog.Any("error", err))
		return
	}
	key := "archives/" + t.ID + ".json"
	result, err := s.archive.Upload(ctx, key, "application/json", bytes.NewReader(data))
	if err != nil {
		s.logger.Error("failed to upload results archive",
			slog.String("tournament_id", t.ID), slog.Any("error", err))
		return
	}
	s.logger.Info("results archived",
		slog.String("tournament_id", t.ID), slog.String("location", result.Location))
}
