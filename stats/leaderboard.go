// Package stats derives rankings and head-to-head breakdowns from a
// tournament snapshot. Everything here is a pure function of its input:
// the same snapshot always yields the same, deterministically ordered output.
package stats

import (
	"sort"

	"github.com/Dosada05/padel-americano/models"
)

// Ordering selects how the leaderboard is ranked.
type Ordering int

const (
	// ByFinalScore: finalScore desc, then wins desc, then totalPoints desc.
	ByFinalScore Ordering = iota
	// ByWins: wins desc, then finalScore desc. Further ties keep roster order.
	ByWins
)

// ComputeLeaderboard attributes every scored match to its participants and
// ranks the roster. Players who rested more often than the busiest player
// receive compensation points for the lost scoring opportunity:
// (maxMatchesPlayed - matchesPlayed) * multiplier(pointType).
func ComputeLeaderboard(t *models.Tournament, ordering Ordering) []models.PlayerStats {
	index := make(map[string]int, len(t.Players))
	table := make([]models.PlayerStats, len(t.Players))
	for i, p := range t.Players {
		index[p] = i
		table[i] = models.PlayerStats{Player: p}
	}

	for ri := range t.Rounds {
		for mi := range t.Rounds[ri].Matches {
			m := &t.Rounds[ri].Matches[mi]
			if !m.IsCompleted || m.ScoreA == nil || m.ScoreB == nil {
				continue
			}
			scoreA, scoreB := *m.ScoreA, *m.ScoreB
			attribute(table, index, m.TeamA, scoreA, scoreB)
			attribute(table, index, m.TeamB, scoreB, scoreA)
		}
	}

	maxPlayed := 0
	for i := range table {
		if table[i].MatchesPlayed > maxPlayed {
			maxPlayed = table[i].MatchesPlayed
		}
	}
	multiplier := t.PointType.Multiplier()
	for i := range table {
		table[i].CompensationPoints = (maxPlayed - table[i].MatchesPlayed) * multiplier
		table[i].FinalScore = table[i].TotalPoints + table[i].CompensationPoints
	}

	switch ordering {
	case ByWins:
		sort.SliceStable(table, func(i, j int) bool {
			if table[i].Wins != table[j].Wins {
				return table[i].Wins > table[j].Wins
			}
			return table[i].FinalScore > table[j].FinalScore
		})
	default:
		sort.SliceStable(table, func(i, j int) bool {
			if table[i].FinalScore != table[j].FinalScore {
				return table[i].FinalScore > table[j].FinalScore
			}
			if table[i].Wins != table[j].Wins {
				return table[i].Wins > table[j].Wins
			}
			return table[i].TotalPoints > table[j].TotalPoints
		})
	}
	return table
}

func attribute(table []models.PlayerStats, index map[string]int, team []string, own, opp int) {
	for _, player := range team {
		i, ok := index[player]
		if !ok {
			// Match references a player no longer on the roster; structural
			// edits regenerate the schedule, so this must not happen.
			continue
		}
		table[i].MatchesPlayed++
		table[i].TotalPoints += own
		switch {
		case own == opp:
			table[i].Ties++
		case own > opp:
			table[i].Wins++
		default:
			table[i].Losses++
		}
	}
}
