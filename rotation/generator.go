// Package rotation lays out tournament schedules: which four players take the
// court each round, how they are split into teams, and who rests. One
// generator per team type; all of them uphold the same partition invariant —
// every round's teamA, teamB and restingPlayers cover the roster exactly once.
package rotation

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/Dosada05/padel-americano/models"
	"github.com/google/uuid"
)

// ErrMalformedRoster означает, что на вход генератора попал состав,
// нарушающий инварианты формата. Бизнес-валидация выполняется выше,
// здесь только fail-fast.
var ErrMalformedRoster = errors.New("malformed roster for schedule generation")

// FixedMatch pins both teams of round 1; the rest of the schedule is laid
// out around it.
type FixedMatch struct {
	TeamA [2]string
	TeamB [2]string
}

type GenerateParams struct {
	Players    []string
	Genders    map[string]models.Gender // mix only
	TeamType   models.TeamType
	FirstMatch *FixedMatch
}

type Generator interface {
	Generate(ctx context.Context, params GenerateParams) ([]models.Round, error)

	GetName() string
}

// ForTeamType returns the generator for a team type.
func ForTeamType(teamType models.TeamType) (Generator, error) {
	switch teamType {
	case models.TeamTypeStandard:
		return NewAmericanoGenerator(), nil
	case models.TeamTypeMix:
		return NewMixGenerator(), nil
	case models.TeamTypeTeam:
		return NewTeamGenerator(), nil
	case models.TeamTypeMexicano:
		return NewMexicanoGenerator(), nil
	}
	return nil, fmt.Errorf("unsupported team type %q", teamType)
}

// RoundCount is the total number of rounds for a roster size. It depends on
// nothing else: the same roster size always yields the same count.
func RoundCount(teamType models.TeamType, rosterSize int) int {
	if teamType == models.TeamTypeTeam {
		pairs := rosterSize / 2
		return pairs * (pairs - 1) / 2
	}
	if rosterSize%2 == 0 {
		return rosterSize - 1
	}
	return rosterSize
}

// pairKey — нормализованная пара имён (порядок не важен).
type pairKey struct {
	a, b string
}

func keyOf(a, b string) pairKey {
	if a > b {
		a, b = b, a
	}
	return pairKey{a, b}
}

// scheduleState accumulates per-player and per-pair history while a schedule
// is being laid out round by round.
type scheduleState struct {
	players    []string
	played     map[string]int
	lastPlayed map[string]int
	partnered  map[pairKey]int
	opposed    map[pairKey]int
}

func newScheduleState(players []string) *scheduleState {
	s := &scheduleState{
		players:    players,
		played:     make(map[string]int, len(players)),
		lastPlayed: make(map[string]int, len(players)),
		partnered:  make(map[pairKey]int),
		opposed:    make(map[pairKey]int),
	}
	for _, p := range players {
		s.played[p] = 0
		s.lastPlayed[p] = 0
	}
	return s
}

func (s *scheduleState) record(roundNumber int, teamA, teamB [2]string) {
	for _, p := range []string{teamA[0], teamA[1], teamB[0], teamB[1]} {
		s.played[p]++
		s.lastPlayed[p] = roundNumber
	}
	s.partnered[keyOf(teamA[0], teamA[1])]++
	s.partnered[keyOf(teamB[0], teamB[1])]++
	for _, a := range teamA {
		for _, b := range teamB {
			s.opposed[keyOf(a, b)]++
		}
	}
}

// seat returns the n players who should take the court next: fewest matches
// played first, longest rest next, roster order as the stable tie-break.
func (s *scheduleState) seat(n int) []string {
	order := append([]string(nil), s.players...)
	// Insertion sort keeps the roster order stable for full ties.
	for i := 1; i < len(order); i++ {
		for j := i; j > 0 && s.less(order[j], order[j-1]); j-- {
			order[j], order[j-1] = order[j-1], order[j]
		}
	}
	return order[:n]
}

func (s *scheduleState) less(a, b string) bool {
	if s.played[a] != s.played[b] {
		return s.played[a] < s.played[b]
	}
	return s.lastPlayed[a] < s.lastPlayed[b]
}

// partitionPenalty scores a candidate team split: repeated partnerships weigh
// more than repeated opponents, so the search prefers fresh pairs.
func (s *scheduleState) partitionPenalty(teamA, teamB [2]string) int {
	penalty := 3 * (s.partnered[keyOf(teamA[0], teamA[1])] + s.partnered[keyOf(teamB[0], teamB[1])])
	for _, a := range teamA {
		for _, b := range teamB {
			penalty += s.opposed[keyOf(a, b)]
		}
	}
	return penalty
}

func buildRound(roundNumber int, players []string, teamA, teamB [2]string) models.Round {
	onCourt := map[string]bool{teamA[0]: true, teamA[1]: true, teamB[0]: true, teamB[1]: true}
	resting := make([]string, 0, len(players)-4)
	for _, p := range players {
		if !onCourt[p] {
			resting = append(resting, p)
		}
	}
	return models.Round{
		RoundNumber: roundNumber,
		Matches: []models.Match{{
			ID:    uuid.NewString(),
			TeamA: []string{teamA[0], teamA[1]},
			TeamB: []string{teamB[0], teamB[1]},
		}},
		RestingPlayers: resting,
	}
}

// validateRosterNames enforces the structural part shared by all formats:
// 4..12 players, no blank names, no case-insensitive duplicates.
func validateRosterNames(players []string) error {
	if len(players) < 4 || len(players) > 12 {
		return fmt.Errorf("%w: got %d players, want 4..12", ErrMalformedRoster, len(players))
	}
	seen := make(map[string]bool, len(players))
	for _, p := range players {
		if strings.TrimSpace(p) == "" {
			return fmt.Errorf("%w: blank player name", ErrMalformedRoster)
		}
		folded := strings.ToLower(p)
		if seen[folded] {
			return fmt.Errorf("%w: duplicate player %q", ErrMalformedRoster, p)
		}
		seen[folded] = true
	}
	return nil
}

// validateFirstMatch checks that a pinned first match references four
// distinct roster players.
func validateFirstMatch(players []string, fm *FixedMatch) error {
	if fm == nil {
		return nil
	}
	onRoster := make(map[string]bool, len(players))
	for _, p := range players {
		onRoster[p] = true
	}
	seen := make(map[string]bool, 4)
	for _, p := range []string{fm.TeamA[0], fm.TeamA[1], fm.TeamB[0], fm.TeamB[1]} {
		if !onRoster[p] {
			return fmt.Errorf("%w: first match player %q is not on the roster", ErrMalformedRoster, p)
		}
		if seen[p] {
			return fmt.Errorf("%w: first match player %q appears twice", ErrMalformedRoster, p)
		}
		seen[p] = true
	}
	return nil
}
