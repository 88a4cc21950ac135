package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/Dosada05/padel-americano/cache"
	"github.com/Dosada05/padel-americano/models"
	"github.com/Dosada05/padel-americano/repositories"
	"github.com/Dosada05/padel-americano/rotation"
	"github.com/Dosada05/padel-americano/stats"
)

// TeamSide selects which team a submitted score belongs to.
type TeamSide string

const (
	TeamSideA TeamSide = "A"
	TeamSideB TeamSide = "B"
)

// ScoringService applies and resets match scores. Scoring is zero-sum by
// construction: the caller submits one side's score, the other side is
// derived as maxScore minus it, never validated after the fact.
type ScoringService interface {
	SetScore(ctx context.Context, tournamentID, matchID string, side TeamSide, value int) (*models.Tournament, error)
	ResetScore(ctx context.Context, tournamentID, matchID string) (*models.Tournament, error)
}

type scoringService struct {
	repo      repositories.TournamentRepository
	hub       *rotation.Hub
	standings *cache.StandingsCache
	logger    *slog.Logger
}

func NewScoringService(
	repo repositories.TournamentRepository,
	hub *rotation.Hub,
	standings *cache.StandingsCache,
	logger *slog.Logger,
) ScoringService {
	return &scoringService{
		repo:      repo,
		hub:       hub,
		standings: standings,
		logger:    logger,
	}
}

func (s *scoringService) SetScore(ctx context.Context, tournamentID, matchID string, side TeamSide, value int) (*models.Tournament, error) {
	current, err := s.load(ctx, tournamentID)
	if err != nil {
		return nil, err
	}
	if current.IsEnded {
		return nil, ErrTournamentEnded
	}
	if side != TeamSideA && side != TeamSideB {
		return nil, fmt.Errorf("%w: unknown team side %q", ErrValidationFailed, side)
	}
	maxScore := current.PointType.MaxScore()
	if value < 0 || value > maxScore {
		return nil, fmt.Errorf("%w: %d not in [0, %d]", ErrScoreOutOfRange, value, maxScore)
	}

	next := current.Clone()
	match, roundNumber := next.FindMatch(matchID)
	if match == nil {
		return nil, fmt.Errorf("%w: %q", ErrMatchNotFound, matchID)
	}

	own, opp := value, maxScore-value
	if side == TeamSideA {
		match.ScoreA, match.ScoreB = &own, &opp
	} else {
		match.ScoreB, match.ScoreA = &own, &opp
	}
	match.IsCompleted = true

	event := rotation.EventScoreUpdated
	if generated, err := s.closeRound(next, roundNumber); err != nil {
		return nil, err
	} else if generated {
		event = rotation.EventNextRoundGenerated
	}

	if err := s.repo.Update(ctx, next); err != nil {
		return nil, fmt.Errorf("persist tournament %s: %w", tournamentID, err)
	}
	broadcast(s.hub, event, next)
	refreshStandings(ctx, s.standings, s.logger, next)
	return next, nil
}

func (s *scoringService) ResetScore(ctx context.Context, tournamentID, matchID string) (*models.Tournament, error) {
	current, err := s.load(ctx, tournamentID)
	if err != nil {
		return nil, err
	}
	if current.IsEnded {
		return nil, ErrTournamentEnded
	}

	next := current.Clone()
	match, _ := next.FindMatch(matchID)
	if match == nil {
		return nil, fmt.Errorf("%w: %q", ErrMatchNotFound, matchID)
	}
	match.Reset()

	if err := s.repo.Update(ctx, next); err != nil {
		return nil, fmt.Errorf("persist tournament %s: %w", tournamentID, err)
	}
	broadcast(s.hub, rotation.EventScoreUpdated, next)
	refreshStandings(ctx, s.standings, s.logger, next)
	return next, nil
}

// closeRound runs the mexicano two-stage pipeline when the scored round was
// the last precomputed one and is now complete: compute the leaderboard,
// then seed the next round from it. Other formats have their whole schedule
// up front and are left alone.
func (s *scoringService) closeRound(t *models.Tournament, roundNumber int) (bool, error) {
	if t.TeamType != models.TeamTypeMexicano {
		return false, nil
	}
	if roundNumber != len(t.Rounds) || !t.Rounds[roundNumber-1].IsComplete() {
		return false, nil
	}

	standings := stats.ComputeLeaderboard(t, stats.ByFinalScore)
	round, more, err := rotation.NewMexicanoGenerator().NextRound(t, standings)
	if err != nil {
		return false, err
	}
	if !more {
		return false, nil
	}
	t.Rounds = append(t.Rounds, round)
	s.logger.Info("next mexicano round generated",
		slog.String("tournament_id", t.ID), slog.Int("round", round.RoundNumber))
	return true, nil
}

func (s *scoringService) load(ctx context.Context, id string) (*models.Tournament, error) {
	t, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repositories.ErrTournamentNotFound) {
			return nil, ErrTournamentNotFound
		}
		return nil, err
	}
	return t, nil
}
