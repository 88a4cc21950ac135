package models

// Round — один игровой слот: матчи корта и список отдыхающих.
// Инвариант: teamA + teamB + restingPlayers покрывают состав без повторов.
type Round struct {
	RoundNumber    int      `json:"roundNumber"`
	Matches        []Match  `json:"matches"`
	RestingPlayers []string `json:"restingPlayers"`
}

func (r Round) clone() Round {
	c := r
	c.Matches = make([]Match, len(r.Matches))
	for i := range r.Matches {
		c.Matches[i] = r.Matches[i].clone()
	}
	c.RestingPlayers = append([]string(nil), r.RestingPlayers...)
	return c
}

// IsComplete reports whether every match of the round has been scored.
// Derived, never stored.
func (r Round) IsComplete() bool {
	for i := range r.Matches {
		if !r.Matches[i].IsCompleted {
			return false
		}
	}
	return len(r.Matches) > 0
}

type Match struct {
	ID          string   `json:"id"`
	TeamA       []string `json:"teamA"`
	TeamB       []string `json:"teamB"`
	ScoreA      *int     `json:"scoreA"`
	ScoreB      *int     `json:"scoreB"`
	IsCompleted bool     `json:"isCompleted"`
}

func (m Match) clone() Match {
	c := m
	c.TeamA = append([]string(nil), m.TeamA...)
	c.TeamB = append([]string(nil), m.TeamB...)
	if m.ScoreA != nil {
		a := *m.ScoreA
		c.ScoreA = &a
	}
	if m.ScoreB != nil {
		b := *m.ScoreB
		c.ScoreB = &b
	}
	return c
}

// Reset returns the match to the pending state.
func (m *Match) Reset() {
	m.ScoreA = nil
	m.ScoreB = nil
	m.IsCompleted = false
}

// SideOf reports which team the player is on: 1 for teamA, 2 for teamB,
// 0 if the player does not take part in the match.
func (m Match) SideOf(player string) int {
	for _, p := range m.TeamA {
		if p == player {
			return 1
		}
	}
	for _, p := range m.TeamB {
		if p == player {
			return 2
		}
	}
	return 0
}
