package rotation

import (
	"context"
	"fmt"

	"github.com/Dosada05/padel-americano/models"
)

// MixGenerator is the americano rotation with one extra constraint: every
// team fields exactly one man and one woman, every round.
type MixGenerator struct{}

func NewMixGenerator() Generator {
	return &MixGenerator{}
}

func (g *MixGenerator) GetName() string {
	return "MixAmericano"
}

func (g *MixGenerator) Generate(ctx context.Context, params GenerateParams) ([]models.Round, error) {
	if err := validateRosterNames(params.Players); err != nil {
		return nil, err
	}
	if err := validateMixRoster(params.Players, params.Genders); err != nil {
		return nil, err
	}
	if err := validateFirstMatch(params.Players, params.FirstMatch); err != nil {
		return nil, err
	}
	if err := validateMixFirstMatch(params.Genders, params.FirstMatch); err != nil {
		return nil, err
	}

	var men, women []string
	for _, p := range params.Players {
		if params.Genders[p] == models.GenderMale {
			men = append(men, p)
		} else {
			women = append(women, p)
		}
	}

	total := RoundCount(models.TeamTypeMix, len(params.Players))
	state := newScheduleState(params.Players)
	rounds := make([]models.Round, 0, total)

	for r := 1; r <= total; r++ {
		var teamA, teamB [2]string
		if r == 1 && params.FirstMatch != nil {
			teamA, teamB = params.FirstMatch.TeamA, params.FirstMatch.TeamB
		} else {
			m := seatSubset(state, men)
			w := seatSubset(state, women)
			teamA, teamB = bestMixPartition(state, m, w)
		}
		state.record(r, teamA, teamB)
		rounds = append(rounds, buildRound(r, params.Players, teamA, teamB))
	}
	return rounds, nil
}

// seatSubset seats the two least-played players out of a gender group, with
// the same rest/roster-order tie-break as the standard rotation.
func seatSubset(state *scheduleState, group []string) [2]string {
	order := append([]string(nil), group...)
	for i := 1; i < len(order); i++ {
		for j := i; j > 0 && state.less(order[j], order[j-1]); j-- {
			order[j], order[j-1] = order[j-1], order[j]
		}
	}
	return [2]string{order[0], order[1]}
}

// bestMixPartition keeps the man/woman constraint: only two splits exist.
func bestMixPartition(state *scheduleState, men, women [2]string) (teamA, teamB [2]string) {
	candidates := [2][2][2]string{
		{{men[0], women[0]}, {men[1], women[1]}},
		{{men[0], women[1]}, {men[1], women[0]}},
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

func validateMixRoster(players []string, genders map[string]models.Gender) error {
	if len(players) != 6 && len(players) != 8 {
		return fmt.Errorf("%w: mix roster must have 6 or 8 players, got %d", ErrMalformedRoster, len(players))
	}
	men, women := 0, 0
	for _, p := range players {
		switch genders[p] {
		case models.GenderMale:
			men++
		case models.GenderFemale:
			women++
		default:
			return fmt.Errorf("%w: player %q has no gender assigned", ErrMalformedRoster, p)
		}
	}
	if men != women {
		return fmt.Errorf("%w: mix roster needs equal men and women, got %d/%d", ErrMalformedRoster, men, women)
	}
	return nil
}

func validateMixFirstMatch(genders map[string]models.Gender, fm *FixedMatch) error {
	if fm == nil {
		return nil
	}
	for _, team := range [2][2]string{fm.TeamA, fm.TeamB} {
		if genders[team[0]] == genders[team[1]] {
			return fmt.Errorf("%w: mix team %v must pair one man with one woman", ErrMalformedRoster, team)
		}
	}
	return nil
}
