package rotation

import (
	"fmt"

	"github.com/Dosada05/padel-americano/models"
)

// Extend appends one more full rotation block to an existing schedule without
// touching the rounds already played. The new rounds continue the same
// fairness bookkeeping: partnership and opponent history from the played
// schedule carries over. Only the precomputed formats can be extended.
func Extend(teamType models.TeamType, players []string, genders map[string]models.Gender, existing []models.Round) ([]models.Round, error) {
	if teamType != models.TeamTypeStandard && teamType != models.TeamTypeMix {
		return nil, fmt.Errorf("%w: %q schedules cannot be extended", ErrMalformedRoster, teamType)
	}
	if err := validateRosterNames(players); err != nil {
		return nil, err
	}
	if teamType == models.TeamTypeMix {
		if err := validateMixRoster(players, genders); err != nil {
			return nil, err
		}
	}

	state := newScheduleState(players)
	for _, round := range existing {
		for _, m := range round.Matches {
			if len(m.TeamA) != 2 || len(m.TeamB) != 2 {
				return nil, fmt.Errorf("%w: round %d has a malformed match", ErrMalformedRoster, round.RoundNumber)
			}
			state.record(round.RoundNumber, [2]string{m.TeamA[0], m.TeamA[1]}, [2]string{m.TeamB[0], m.TeamB[1]})
		}
	}

	var men, women []string
	if teamType == models.TeamTypeMix {
		for _, p := range players {
			if genders[p] == models.GenderMale {
				men = append(men, p)
			} else {
				women = append(women, p)
			}
		}
	}

	extra := RoundCount(teamType, len(players))
	appended := make([]models.Round, 0, extra)
	for i := 0; i < extra; i++ {
		roundNumber := len(existing) + i + 1
		var teamA, teamB [2]string
		if teamType == models.TeamTypeMix {
			teamA, teamB = bestMixPartition(state, seatSubset(state, men), seatSubset(state, women))
		} else {
			teamA, teamB = bestPartition(state, state.seat(4))
		}
		state.record(roundNumber, teamA, teamB)
		appended = append(appended, buildRound(roundNumber, players, teamA, teamB))
	}
	return appended, nil
}
