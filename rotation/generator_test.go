package rotation

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"sort"
	"testing"

	"github.com/Dosada05/padel-americano/models"
)

func roster(n int) []string {
	players := make([]string, 0, n)
	for i := 0; i < n; i++ {
		players = append(players, fmt.Sprintf("Player%c", 'A'+i))
	}
	return players
}

// assertPartition проверяет, что каждый раунд разбивает состав без потерь
// и пересечений: 4 на корте + остальные отдыхают.
func assertPartition(t *testing.T, players []string, rounds []models.Round) {
	t.Helper()
	for _, round := range rounds {
		if len(round.Matches) != 1 {
			t.Fatalf("round %d: got %d matches, want 1", round.RoundNumber, len(round.Matches))
		}
		m := round.Matches[0]
		seen := make(map[string]int)
		for _, p := range m.TeamA {
			seen[p]++
		}
		for _, p := range m.TeamB {
			seen[p]++
		}
		for _, p := range round.RestingPlayers {
			seen[p]++
		}
		if len(seen) != len(players) {
			t.Fatalf("round %d: partition covers %d players, roster has %d", round.RoundNumber, len(seen), len(players))
		}
		for p, count := range seen {
			if count != 1 {
				t.Fatalf("round %d: player %s appears %d times", round.RoundNumber, p, count)
			}
		}
		if len(m.TeamA) != 2 || len(m.TeamB) != 2 {
			t.Fatalf("round %d: teams are %d/%d players, want 2/2", round.RoundNumber, len(m.TeamA), len(m.TeamB))
		}
	}
}

func TestRoundCount(t *testing.T) {
	tests := []struct {
		teamType models.TeamType
		roster   int
		want     int
	}{
		{models.TeamTypeStandard, 4, 3},
		{models.TeamTypeStandard, 5, 5},
		{models.TeamTypeStandard, 8, 7},
		{models.TeamTypeStandard, 11, 11},
		{models.TeamTypeStandard, 12, 11},
		{models.TeamTypeMix, 6, 5},
		{models.TeamTypeMix, 8, 7},
		{models.TeamTypeMexicano, 7, 7},
		{models.TeamTypeMexicano, 10, 9},
		{models.TeamTypeTeam, 4, 1},
		{models.TeamTypeTeam, 6, 3},
		{models.TeamTypeTeam, 8, 6},
		{models.TeamTypeTeam, 12, 15},
	}
	for _, tt := range tests {
		if got := RoundCount(tt.teamType, tt.roster); got != tt.want {
			t.Errorf("RoundCount(%s, %d) = %d, want %d", tt.teamType, tt.roster, got, tt.want)
		}
	}
}

func TestAmericanoGenerate(t *testing.T) {
	gen := NewAmericanoGenerator()

	for n := 4; n <= 12; n++ {
		t.Run(fmt.Sprintf("roster%d", n), func(t *testing.T) {
			players := roster(n)
			rounds, err := gen.Generate(context.Background(), GenerateParams{
				Players:  players,
				TeamType: models.TeamTypeStandard,
			})
			if err != nil {
				t.Fatalf("Generate: %v", err)
			}
			want := RoundCount(models.TeamTypeStandard, n)
			if len(rounds) != want {
				t.Fatalf("got %d rounds, want %d", len(rounds), want)
			}
			assertPartition(t, players, rounds)
			for i, round := range rounds {
				if round.RoundNumber != i+1 {
					t.Errorf("round at index %d numbered %d", i, round.RoundNumber)
				}
			}
		})
	}
}

func TestAmericanoGenerateBalancesPlayTime(t *testing.T) {
	gen := NewAmericanoGenerator()
	players := roster(7)
	rounds, err := gen.Generate(context.Background(), GenerateParams{
		Players:  players,
		TeamType: models.TeamTypeStandard,
	})
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}

	played := make(map[string]int)
	for _, round := range rounds {
		for _, p := range round.Matches[0].TeamA {
			played[p]++
		}
		for _, p := range round.Matches[0].TeamB {
			played[p]++
		}
	}
	min, max := len(rounds), 0
	for _, p := range players {
		if played[p] < min {
			min = played[p]
		}
		if played[p] > max {
			max = played[p]
		}
	}
	if max-min > 1 {
		t.Errorf("play counts spread %d..%d, want spread of at most 1: %v", min, max, played)
	}
}

func TestAmericanoGenerateDeterministic(t *testing.T) {
	gen := NewAmericanoGenerator()
	params := GenerateParams{Players: roster(9), TeamType: models.TeamTypeStandard}

	first, err := gen.Generate(context.Background(), params)
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	second, err := gen.Generate(context.Background(), params)
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if len(first) != len(second) {
		t.Fatalf("round counts differ: %d vs %d", len(first), len(second))
	}
	for i := range first {
		a, b := first[i].Matches[0], second[i].Matches[0]
		if !reflect.DeepEqual(a.TeamA, b.TeamA) || !reflect.DeepEqual(a.TeamB, b.TeamB) {
			t.Errorf("round %d differs between runs: %v/%v vs %v/%v", i+1, a.TeamA, a.TeamB, b.TeamA, b.TeamB)
		}
		if !reflect.DeepEqual(first[i].RestingPlayers, second[i].RestingPlayers) {
			t.Errorf("round %d resting players differ", i+1)
		}
	}
}

func TestAmericanoGeneratePinnedFirstMatch(t *testing.T) {
	gen := NewAmericanoGenerator()
	players := roster(6)
	fm := &FixedMatch{
		TeamA: [2]string{"PlayerB", "PlayerE"},
		TeamB: [2]string{"PlayerA", "PlayerF"},
	}
	rounds, err := gen.Generate(context.Background(), GenerateParams{
		Players:    players,
		TeamType:   models.TeamTypeStandard,
		FirstMatch: fm,
	})
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	got := rounds[0].Matches[0]
	if !reflect.DeepEqual(got.TeamA, []string{"PlayerB", "PlayerE"}) ||
		!reflect.DeepEqual(got.TeamB, []string{"PlayerA", "PlayerF"}) {
		t.Errorf("round 1 is %v vs %v, want pinned match", got.TeamA, got.TeamB)
	}
	assertPartition(t, players, rounds)
}

func TestAmericanoGenerateRejectsBadRosters(t *testing.T) {
	gen := NewAmericanoGenerator()
	tests := []struct {
		name    string
		players []string
	}{
		{"too few", roster(3)},
		{"too many", roster(13)},
		{"blank name", []string{"A", "B", "  ", "D"}},
		{"duplicate", []string{"Anna", "Boris", "anna", "Dina"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := gen.Generate(context.Background(), GenerateParams{
				Players:  tt.players,
				TeamType: models.TeamTypeStandard,
			})
			if !errors.Is(err, ErrMalformedRoster) {
				t.Errorf("got %v, want ErrMalformedRoster", err)
			}
		})
	}
}

func TestAmericanoGenerateRejectsBadFirstMatch(t *testing.T) {
	gen := NewAmericanoGenerator()
	players := roster(5)
	tests := []struct {
		name string
		fm   FixedMatch
	}{
		{"off roster", FixedMatch{TeamA: [2]string{"PlayerA", "Ghost"}, TeamB: [2]string{"PlayerC", "PlayerD"}}},
		{"repeated player", FixedMatch{TeamA: [2]string{"PlayerA", "PlayerB"}, TeamB: [2]string{"PlayerA", "PlayerD"}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fm := tt.fm
			_, err := gen.Generate(context.Background(), GenerateParams{
				Players:    players,
				TeamType:   models.TeamTypeStandard,
				FirstMatch: &fm,
			})
			if !errors.Is(err, ErrMalformedRoster) {
				t.Errorf("got %v, want ErrMalformedRoster", err)
			}
		})
	}
}

func mixRoster(n int) ([]string, map[string]models.Gender) {
	players := roster(n)
	genders := make(map[string]models.Gender, n)
	for i, p := range players {
		if i%2 == 0 {
			genders[p] = models.GenderMale
		} else {
			genders[p] = models.GenderFemale
		}
	}
	return players, genders
}

func TestMixGenerate(t *testing.T) {
	gen := NewMixGenerator()

	for _, n := range []int{6, 8} {
		t.Run(fmt.Sprintf("roster%d", n), func(t *testing.T) {
			players, genders := mixRoster(n)
			rounds, err := gen.Generate(context.Background(), GenerateParams{
				Players:  players,
				Genders:  genders,
				TeamType: models.TeamTypeMix,
			})
			if err != nil {
				t.Fatalf("Generate: %v", err)
			}
			if want := RoundCount(models.TeamTypeMix, n); len(rounds) != want {
				t.Fatalf("got %d rounds, want %d", len(rounds), want)
			}
			assertPartition(t, players, rounds)

			// Каждая команда — ровно мужчина и женщина.
			for _, round := range rounds {
				for _, team := range [][]string{round.Matches[0].TeamA, round.Matches[0].TeamB} {
					if genders[team[0]] == genders[team[1]] {
						t.Errorf("round %d: team %v is single-gender", round.RoundNumber, team)
					}
				}
			}
		})
	}
}

func TestMixGenerateRejectsUnbalancedRosters(t *testing.T) {
	gen := NewMixGenerator()

	players, genders := mixRoster(6)
	genders[players[1]] = models.GenderMale // 4 мужчин, 2 женщины
	if _, err := gen.Generate(context.Background(), GenerateParams{
		Players:  players,
		Genders:  genders,
		TeamType: models.TeamTypeMix,
	}); !errors.Is(err, ErrMalformedRoster) {
		t.Errorf("unbalanced genders: got %v, want ErrMalformedRoster", err)
	}

	players, genders = mixRoster(10)
	if _, err := gen.Generate(context.Background(), GenerateParams{
		Players:  players,
		Genders:  genders,
		TeamType: models.TeamTypeMix,
	}); !errors.Is(err, ErrMalformedRoster) {
		t.Errorf("roster of 10: got %v, want ErrMalformedRoster", err)
	}
}

func TestMixGenerateRejectsSingleGenderFirstMatch(t *testing.T) {
	gen := NewMixGenerator()
	players, genders := mixRoster(6)
	fm := &FixedMatch{
		TeamA: [2]string{players[0], players[2]}, // двое мужчин
		TeamB: [2]string{players[1], players[3]},
	}
	if _, err := gen.Generate(context.Background(), GenerateParams{
		Players:    players,
		Genders:    genders,
		TeamType:   models.TeamTypeMix,
		FirstMatch: fm,
	}); !errors.Is(err, ErrMalformedRoster) {
		t.Errorf("got %v, want ErrMalformedRoster", err)
	}
}

func TestTeamGenerate(t *testing.T) {
	gen := NewTeamGenerator()

	for _, n := range []int{4, 6, 8, 10, 12} {
		t.Run(fmt.Sprintf("roster%d", n), func(t *testing.T) {
			players := roster(n)
			rounds, err := gen.Generate(context.Background(), GenerateParams{
				Players:  players,
				TeamType: models.TeamTypeTeam,
			})
			if err != nil {
				t.Fatalf("Generate: %v", err)
			}
			if want := RoundCount(models.TeamTypeTeam, n); len(rounds) != want {
				t.Fatalf("got %d rounds, want %d", len(rounds), want)
			}
			assertPartition(t, players, rounds)

			// Партнерства фиксированы, каждая пара встречает каждую ровно один раз.
			pairOf := func(team []string) string {
				p := append([]string(nil), team...)
				sort.Strings(p)
				return p[0] + "+" + p[1]
			}
			meetings := make(map[string]int)
			partnerships := make(map[string]bool)
			for _, round := range rounds {
				a := pairOf(round.Matches[0].TeamA)
				b := pairOf(round.Matches[0].TeamB)
				partnerships[a] = true
				partnerships[b] = true
				if a > b {
					a, b = b, a
				}
				meetings[a+" vs "+b]++
			}
			if len(partnerships) != n/2 {
				t.Errorf("got %d distinct partnerships, want %d", len(partnerships), n/2)
			}
			for matchup, count := range meetings {
				if count != 1 {
					t.Errorf("matchup %s happens %d times, want 1", matchup, count)
				}
			}
		})
	}
}

func TestTeamGenerateRejectsOddRoster(t *testing.T) {
	gen := NewTeamGenerator()
	if _, err := gen.Generate(context.Background(), GenerateParams{
		Players:  roster(7),
		TeamType: models.TeamTypeTeam,
	}); !errors.Is(err, ErrMalformedRoster) {
		t.Errorf("got %v, want ErrMalformedRoster", err)
	}
}

func TestTeamGeneratePinnedFirstMatch(t *testing.T) {
	gen := NewTeamGenerator()
	players := roster(8)
	fm := &FixedMatch{
		TeamA: [2]string{"PlayerC", "PlayerF"},
		TeamB: [2]string{"PlayerA", "PlayerH"},
	}
	rounds, err := gen.Generate(context.Background(), GenerateParams{
		Players:    players,
		TeamType:   models.TeamTypeTeam,
		FirstMatch: fm,
	})
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	got := rounds[0].Matches[0]
	if !reflect.DeepEqual(got.TeamA, []string{"PlayerC", "PlayerF"}) ||
		!reflect.DeepEqual(got.TeamB, []string{"PlayerA", "PlayerH"}) {
		t.Errorf("round 1 is %v vs %v, want pinned match", got.TeamA, got.TeamB)
	}
	assertPartition(t, players, rounds)
}

func TestMexicanoGenerate(t *testing.T) {
	gen := NewMexicanoGenerator()
	players := roster(6)
	rounds, err := gen.Generate(context.Background(), GenerateParams{
		Players:  players,
		TeamType: models.TeamTypeMexicano,
	})
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if len(rounds) != 1 {
		t.Fatalf("got %d rounds, want only round 1", len(rounds))
	}
	got := rounds[0].Matches[0]
	if !reflect.DeepEqual(got.TeamA, []string{"PlayerA", "PlayerD"}) ||
		!reflect.DeepEqual(got.TeamB, []string{"PlayerB", "PlayerC"}) {
		t.Errorf("round 1 is %v vs %v, want 1&4 against 2&3 in roster order", got.TeamA, got.TeamB)
	}
	assertPartition(t, players, rounds)
}

func TestMexicanoNextRound(t *testing.T) {
	gen := NewMexicanoGenerator()
	players := roster(6)
	tournament := &models.Tournament{
		TeamType: models.TeamTypeMexicano,
		Players:  players,
		Rounds: []models.Round{
			{RoundNumber: 1, Matches: []models.Match{{
				TeamA: []string{"PlayerA", "PlayerD"},
				TeamB: []string{"PlayerB", "PlayerC"},
			}}, RestingPlayers: []string{"PlayerE", "PlayerF"}},
		},
	}
	// Отдыхавшие в первом раунде сыграли 0 матчей и садятся первыми;
	// остальные места по рангу.
	standings := []models.PlayerStats{
		{Player: "PlayerD", MatchesPlayed: 1, FinalScore: 40},
		{Player: "PlayerA", MatchesPlayed: 1, FinalScore: 35},
		{Player: "PlayerE", MatchesPlayed: 0, FinalScore: 0},
		{Player: "PlayerF", MatchesPlayed: 0, FinalScore: 0},
		{Player: "PlayerB", MatchesPlayed: 1, FinalScore: -35},
		{Player: "PlayerC", MatchesPlayed: 1, FinalScore: -40},
	}

	round, ok, err := gen.NextRound(tournament, standings)
	if err != nil {
		t.Fatalf("NextRound: %v", err)
	}
	if !ok {
		t.Fatal("NextRound returned ok=false before reaching the full schedule")
	}
	if round.RoundNumber != 2 {
		t.Errorf("round number = %d, want 2", round.RoundNumber)
	}
	got := round.Matches[0]
	// Сели: PlayerE, PlayerF (меньше сыграно), затем PlayerD, PlayerA по рангу.
	if !reflect.DeepEqual(got.TeamA, []string{"PlayerE", "PlayerA"}) ||
		!reflect.DeepEqual(got.TeamB, []string{"PlayerF", "PlayerD"}) {
		t.Errorf("round 2 is %v vs %v, want seeded 1&4 against 2&3", got.TeamA, got.TeamB)
	}
}

func TestMexicanoNextRoundStopsAtFullSchedule(t *testing.T) {
	gen := NewMexicanoGenerator()
	players := roster(4)
	tournament := &models.Tournament{
		TeamType: models.TeamTypeMexicano,
		Players:  players,
	}
	total := RoundCount(models.TeamTypeMexicano, 4)
	for i := 0; i < total; i++ {
		tournament.Rounds = append(tournament.Rounds, models.Round{RoundNumber: i + 1})
	}

	standings := make([]models.PlayerStats, 0, 4)
	for _, p := range players {
		standings = append(standings, models.PlayerStats{Player: p, MatchesPlayed: total})
	}
	if _, ok, err := gen.NextRound(tournament, standings); err != nil || ok {
		t.Errorf("NextRound past full schedule: ok=%v err=%v, want ok=false err=nil", ok, err)
	}
}

func TestExtendContinuesSchedule(t *testing.T) {
	gen := NewAmericanoGenerator()
	players := roster(5)
	existing, err := gen.Generate(context.Background(), GenerateParams{
		Players:  players,
		TeamType: models.TeamTypeStandard,
	})
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}

	appended, err := Extend(models.TeamTypeStandard, players, nil, existing)
	if err != nil {
		t.Fatalf("Extend: %v", err)
	}
	if want := RoundCount(models.TeamTypeStandard, 5); len(appended) != want {
		t.Fatalf("got %d extra rounds, want %d", len(appended), want)
	}
	for i, round := range appended {
		if round.RoundNumber != len(existing)+i+1 {
			t.Errorf("appended round at index %d numbered %d, want %d", i, round.RoundNumber, len(existing)+i+1)
		}
	}
	assertPartition(t, players, appended)
}

func TestExtendRejectsNonExtendableFormats(t *testing.T) {
	for _, teamType := range []models.TeamType{models.TeamTypeTeam, models.TeamTypeMexicano} {
		if _, err := Extend(teamType, roster(6), nil, nil); !errors.Is(err, ErrMalformedRoster) {
			t.Errorf("Extend(%s): got %v, want ErrMalformedRoster", teamType, err)
		}
	}
}

func TestForTeamType(t *testing.T) {
	for _, teamType := range []models.TeamType{
		models.TeamTypeStandard, models.TeamTypeMix, models.TeamTypeTeam, models.TeamTypeMexicano,
	} {
		gen, err := ForTeamType(teamType)
		if err != nil {
			t.Errorf("ForTeamType(%s): %v", teamType, err)
			continue
		}
		if gen.GetName() == "" {
			t.Errorf("ForTeamType(%s): empty generator name", teamType)
		}
	}
	if _, err := ForTeamType("swiss"); err == nil {
		t.Error("ForTeamType(swiss): want error")
	}
}
