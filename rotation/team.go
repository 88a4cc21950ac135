package rotation

import (
	"context"
	"fmt"

	"github.com/Dosada05/padel-americano/models"
)

// TeamGenerator handles the team americano format: partnerships are fixed
// when the schedule is generated and never change, only the opponent pairing
// rotates. Every fixed pair meets every other fixed pair exactly once.
type TeamGenerator struct{}

func NewTeamGenerator() Generator {
	return &TeamGenerator{}
}

func (g *TeamGenerator) GetName() string {
	return "TeamAmericano"
}

func (g *TeamGenerator) Generate(ctx context.Context, params GenerateParams) ([]models.Round, error) {
	if err := validateRosterNames(params.Players); err != nil {
		return nil, err
	}
	if len(params.Players)%2 != 0 {
		return nil, fmt.Errorf("%w: team format needs an even roster, got %d players", ErrMalformedRoster, len(params.Players))
	}
	if err := validateFirstMatch(params.Players, params.FirstMatch); err != nil {
		return nil, err
	}

	pairs := fixedPairs(params.Players, params.FirstMatch)
	matchups := roundRobinMatchups(len(pairs))
	if params.FirstMatch != nil {
		// Pairs 0 and 1 are the pinned first match; pull their meeting to the front.
		for i, mu := range matchups {
			if (mu[0] == 0 && mu[1] == 1) || (mu[0] == 1 && mu[1] == 0) {
				copy(matchups[1:i+1], matchups[:i])
				matchups[0] = mu
				break
			}
		}
	}

	rounds := make([]models.Round, 0, len(matchups))
	for i, mu := range matchups {
		teamA, teamB := pairs[mu[0]], pairs[mu[1]]
		rounds = append(rounds, buildRound(i+1, params.Players, teamA, teamB))
	}
	return rounds, nil
}

// fixedPairs establishes the partnerships: the pinned first match teams come
// first if present, everyone else pairs up in roster order.
func fixedPairs(players []string, fm *FixedMatch) [][2]string {
	var pairs [][2]string
	taken := make(map[string]bool, len(players))
	if fm != nil {
		pairs = append(pairs, fm.TeamA, fm.TeamB)
		for _, p := range []string{fm.TeamA[0], fm.TeamA[1], fm.TeamB[0], fm.TeamB[1]} {
			taken[p] = true
		}
	}
	var rest []string
	for _, p := range players {
		if !taken[p] {
			rest = append(rest, p)
		}
	}
	for i := 0; i+1 < len(rest); i += 2 {
		pairs = append(pairs, [2]string{rest[i], rest[i+1]})
	}
	return pairs
}

// roundRobinMatchups enumerates every pairing of n teams once, using the
// circle method so consecutive rounds keep rotating who is on court.
func roundRobinMatchups(n int) [][2]int {
	teams := make([]int, 0, n+1)
	for i := 0; i < n; i++ {
		teams = append(teams, i)
	}
	if n%2 != 0 {
		teams = append(teams, -1) // bye slot
	}
	size := len(teams)

	var matchups [][2]int
	for round := 0; round < size-1; round++ {
		for i := 0; i < size/2; i++ {
			a, b := teams[i], teams[size-1-i]
			if a != -1 && b != -1 {
				matchups = append(matchups, [2]int{a, b})
			}
		}
		// Rotate all but the first slot.
		last := teams[size-1]
		copy(teams[2:], teams[1:size-1])
		teams[1] = last
	}
	return matchups
}
