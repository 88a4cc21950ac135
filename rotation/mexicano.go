package rotation

import (
	"context"
	"fmt"

	"github.com/Dosada05/padel-americano/models"
)

// MexicanoGenerator precomputes round 1 only. Every later round is seeded
// from the live standings once the previous round closes: the four
// least-played players take the court ordered by rank, best with fourth-best
// against second against third. The controller drives that pipeline
// explicitly — close the round, compute the leaderboard, ask for the next
// round.
type MexicanoGenerator struct{}

func NewMexicanoGenerator() *MexicanoGenerator {
	return &MexicanoGenerator{}
}

func (g *MexicanoGenerator) GetName() string {
	return "Mexicano"
}

func (g *MexicanoGenerator) Generate(ctx context.Context, params GenerateParams) ([]models.Round, error) {
	if err := validateRosterNames(params.Players); err != nil {
		return nil, err
	}
	if err := validateFirstMatch(params.Players, params.FirstMatch); err != nil {
		return nil, err
	}

	var teamA, teamB [2]string
	if params.FirstMatch != nil {
		teamA, teamB = params.FirstMatch.TeamA, params.FirstMatch.TeamB
	} else {
		// No standings exist yet; roster order stands in for rank.
		p := params.Players
		teamA = [2]string{p[0], p[3]}
		teamB = [2]string{p[1], p[2]}
	}
	return []models.Round{buildRound(1, params.Players, teamA, teamB)}, nil
}

// NextRound builds round len(rounds)+1 from the current standings. The
// second return is false when the schedule has reached its full length.
func (g *MexicanoGenerator) NextRound(t *models.Tournament, standings []models.PlayerStats) (models.Round, bool, error) {
	total := RoundCount(models.TeamTypeMexicano, len(t.Players))
	if len(t.Rounds) >= total {
		return models.Round{}, false, nil
	}
	if len(standings) != len(t.Players) {
		return models.Round{}, false, fmt.Errorf("%w: standings cover %d players, roster has %d", ErrMalformedRoster, len(standings), len(t.Players))
	}

	// Least matches played first so nobody rests twice in a row; standings
	// order breaks ties, which keeps adjacent ranks together on court.
	seated := append([]models.PlayerStats(nil), standings...)
	for i := 1; i < len(seated); i++ {
		for j := i; j > 0 && seated[j].MatchesPlayed < seated[j-1].MatchesPlayed; j-- {
			seated[j], seated[j-1] = seated[j-1], seated[j]
		}
	}

	teamA := [2]string{seated[0].Player, seated[3].Player}
	teamB := [2]string{seated[1].Player, seated[2].Player}
	round := buildRound(len(t.Rounds)+1, t.Players, teamA, teamB)
	return round, true, nil
}
