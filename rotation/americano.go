package rotation

import (
	"context"

	"github.com/Dosada05/padel-americano/models"
)

// AmericanoGenerator lays out the full rotation for a standard americano
// tournament up front: each round it seats the four players with the fewest
// matches so far and splits them into the freshest possible teams.
type AmericanoGenerator struct{}

func NewAmericanoGenerator() Generator {
	return &AmericanoGenerator{}
}

func (g *AmericanoGenerator) GetName() string {
	return "Americano"
}

func (g *AmericanoGenerator) Generate(ctx context.Context, params GenerateParams) ([]models.Round, error) {
	if err := validateRosterNames(params.Players); err != nil {
		return nil, err
	}
	if err := validateFirstMatch(params.Players, params.FirstMatch); err != nil {
		return nil, err
	}

	total := RoundCount(models.TeamTypeStandard, len(params.Players))
	state := newScheduleState(params.Players)
	rounds := make([]models.Round, 0, total)

	for r := 1; r <= total; r++ {
		var teamA, teamB [2]string
		if r == 1 && params.FirstMatch != nil {
			teamA, teamB = params.FirstMatch.TeamA, params.FirstMatch.TeamB
		} else {
			seated := state.seat(4)
			teamA, teamB = bestPartition(state, seated)
		}
		state.record(r, teamA, teamB)
		rounds = append(rounds, buildRound(r, params.Players, teamA, teamB))
	}
	return rounds, nil
}

// bestPartition tries the three possible team splits of four seated players
// and keeps the cheapest one. Enumeration order is fixed, so ties resolve
// the same way on every run.
func bestPartition(state *scheduleState, seated []string) (teamA, teamB [2]string) {
	candidates := [3][2][2]string{
		{{seated[0], seated[1]}, {seated[2], seated[3]}},
		{{seated[0], seated[2]}, {seated[1], seated[3]}},
		{{seated[0], seated[3]}, {seated[1], seated[2]}},
	}
	best := -1
	for _, c := range candidates {
		penalty := state.partitionPenalty(c[0], c[1])
		if best == -1 || penalty < best {
			best = penalty
			teamA, teamB = c[0], c[1]
		}
	}
	return teamA, teamB
}
