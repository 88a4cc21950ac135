package stats

import (
	"sort"

	"github.com/Dosada05/padel-americano/models"
	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

// ComputePairingStats returns, for every other roster player, how often they
// appeared as a partner and as an opponent of the selected player, with the
// outcome of every shared round in round order. A tie counts as a loss here:
// the head-to-head view is a binary win/loss classification, unlike the
// leaderboard's separate tie column.
func ComputePairingStats(t *models.Tournament, selected string) []models.PlayerPairingStats {
	byName := make(map[string]*models.PlayerPairingStats, len(t.Players))
	for _, p := range t.Players {
		if p == selected {
			continue
		}
		byName[p] = &models.PlayerPairingStats{Player: p}
	}

	for ri := range t.Rounds {
		for mi := range t.Rounds[ri].Matches {
			m := &t.Rounds[ri].Matches[mi]
			side := m.SideOf(selected)
			if side == 0 {
				continue
			}
			outcome := outcomeFor(m, side)
			own, opp := m.TeamA, m.TeamB
			if side == 2 {
				own, opp = m.TeamB, m.TeamA
			}
			for _, p := range own {
				if p == selected {
					continue
				}
				if ps := byName[p]; ps != nil {
					ps.PartnerCount++
					ps.PartnerOutcomes = append(ps.PartnerOutcomes, outcome)
				}
			}
			for _, p := range opp {
				if ps := byName[p]; ps != nil {
					ps.VersusCount++
					ps.VersusOutcomes = append(ps.VersusOutcomes, outcome)
				}
			}
		}
	}

	result := make([]models.PlayerPairingStats, 0, len(byName))
	for _, ps := range byName {
		result = append(result, *ps)
	}
	collator := collate.New(language.Und)
	sort.Slice(result, func(i, j int) bool {
		return collator.CompareString(result[i].Player, result[j].Player) < 0
	})
	return result
}

func outcomeFor(m *models.Match, side int) models.PairingOutcome {
	if !m.IsCompleted || m.ScoreA == nil || m.ScoreB == nil {
		return models.OutcomePending
	}
	own, opp := *m.ScoreA, *m.ScoreB
	if side == 2 {
		own, opp = opp, own
	}
	if own > opp {
		return models.OutcomeWin
	}
	return models.OutcomeLoss
}

// RoundsInvolving lists every match the player takes part in, in round order.
func RoundsInvolving(t *models.Tournament, player string) []models.RoundMatch {
	var result []models.RoundMatch
	for ri := range t.Rounds {
		round := &t.Rounds[ri]
		for mi := range round.Matches {
			if round.Matches[mi].SideOf(player) != 0 {
				result = append(result, models.RoundMatch{
					RoundNumber: round.RoundNumber,
					Match:       round.Matches[mi],
				})
			}
		}
	}
	return result
}

// RoundsBetween splits the rounds shared by two players into partner rounds
// and versus rounds, in round order.
func RoundsBetween(t *models.Tournament, a, b string) models.HeadToHead {
	var h2h models.HeadToHead
	for ri := range t.Rounds {
		round := &t.Rounds[ri]
		for mi := range round.Matches {
			m := &round.Matches[mi]
			sideA, sideB := m.SideOf(a), m.SideOf(b)
			if sideA == 0 || sideB == 0 {
				continue
			}
			rm := models.RoundMatch{RoundNumber: round.RoundNumber, Match: *m}
			if sideA == sideB {
				h2h.PartnerRounds = append(h2h.PartnerRounds, rm)
			} else {
				h2h.VersusRounds = append(h2h.VersusRounds, rm)
			}
		}
	}
	return h2h
}
