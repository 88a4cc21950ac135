package services

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/Dosada05/padel-americano/cache"
	"github.com/Dosada05/padel-americano/models"
	"github.com/Dosada05/padel-americano/rotation"
	"github.com/Dosada05/padel-americano/stats"
)

// --- Валидация ---

func validateName(name string) error {
	if len(name) < 1 || len(name) > 64 {
		return ErrNameLength
	}
	return nil
}

// validateRoster enforces the per-format roster invariants before the
// generator ever sees the roster.
func validateRoster(teamType models.TeamType, players []string, genders map[string]models.Gender) error {
	seen := make(map[string]bool, len(players))
	for _, p := range players {
		if strings.TrimSpace(p) == "" {
			return ErrBlankPlayerName
		}
		folded := strings.ToLower(p)
		if seen[folded] {
			return fmt.Errorf("%w: %q", ErrDuplicatePlayer, p)
		}
		seen[folded] = true
	}

	switch teamType {
	case models.TeamTypeMix:
		if len(players) != 6 && len(players) != 8 {
			return fmt.Errorf("%w: mix needs exactly 6 or 8 players, got %d", ErrRosterSize, len(players))
		}
		men, women := 0, 0
		for _, p := range players {
			switch genders[p] {
			case models.GenderMale:
				men++
			case models.GenderFemale:
				women++
			default:
				return fmt.Errorf("%w: %q", ErrGenderMissing, p)
			}
		}
		if men != women {
			return fmt.Errorf("%w: got %d men, %d women", ErrGenderBalance, men, women)
		}
	case models.TeamTypeStandard, models.TeamTypeTeam, models.TeamTypeMexicano:
		if len(players) < 4 || len(players) > 12 {
			return fmt.Errorf("%w: need 4-12 players, got %d", ErrRosterSize, len(players))
		}
		if teamType == models.TeamTypeTeam && len(players)%2 != 0 {
			return ErrTeamRosterOdd
		}
	default:
		return fmt.Errorf("%w: %q", ErrInvalidTeamType, teamType)
	}
	return nil
}

// rosterIndex finds a player case-insensitively, -1 when absent.
func rosterIndex(players []string, name string) int {
	for i, p := range players {
		if strings.EqualFold(p, name) {
			return i
		}
	}
	return -1
}

// --- Мутации снапшота ---

func resetAllScores(t *models.Tournament) {
	for ri := range t.Rounds {
		for mi := range t.Rounds[ri].Matches {
			t.Rounds[ri].Matches[mi].Reset()
		}
	}
}

// renameEverywhere replaces a player name in the roster, the gender map and
// every round, keeping the existing schedule intact.
func renameEverywhere(t *models.Tournament, from, to string) {
	for i, p := range t.Players {
		if p == from {
			t.Players[i] = to
		}
	}
	if g, ok := t.PlayerGenders[from]; ok {
		delete(t.PlayerGenders, from)
		t.PlayerGenders[to] = g
	}
	for ri := range t.Rounds {
		round := &t.Rounds[ri]
		for i, p := range round.RestingPlayers {
			if p == from {
				round.RestingPlayers[i] = to
			}
		}
		for mi := range round.Matches {
			m := &round.Matches[mi]
			for i, p := range m.TeamA {
				if p == from {
					m.TeamA[i] = to
				}
			}
			for i, p := range m.TeamB {
				if p == from {
					m.TeamB[i] = to
				}
			}
		}
	}
}

// --- Побочные эффекты (live-обновления и кеш) ---

// roomID — имя комнаты хаба для турнира.
func roomID(tournamentID string) string {
	return "tournament_" + tournamentID
}

func broadcast(hub *rotation.Hub, event string, t *models.Tournament) {
	if hub == nil {
		return
	}
	hub.BroadcastToRoom(roomID(t.ID), rotation.WebSocketMessage{
		Type:    event,
		Payload: t,
		RoomID:  roomID(t.ID),
	})
}

// refreshStandings pushes the current leaderboard into the Redis cache.
// Best effort: a cache failure is logged and never surfaced to the caller.
func refreshStandings(ctx context.Context, c *cache.StandingsCache, logger *slog.Logger, t *models.Tournament) {
	if c == nil {
		return
	}
	standings := stats.ComputeLeaderboard(t, stats.ByFinalScore)
	if err := c.UpdateStandings(ctx, t.ID, standings); err != nil {
		logger.Warn("failed to refresh standings cache",
			slog.String("tournament_id", t.ID), slog.Any("error", err))
	}
}
