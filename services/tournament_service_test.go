package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/Dosada05/padel-americano/models"
	"github.com/Dosada05/padel-americano/rotation"
)

var testStart = time.Date(2026, 3, 14, 18, 0, 0, 0, time.UTC)

func newTestTournamentService(t *testing.T) (TournamentService, *fakeTournamentRepo, *clockwork.FakeClock) {
	t.Helper()
	repo := newFakeTournamentRepo()
	clock := clockwork.NewFakeClockAt(testStart)
	svc := NewTournamentService(repo, nil, nil, nil, clock, discardLogger())
	return svc, repo, clock
}

func standardInput(players ...string) CreateTournamentInput {
	if len(players) == 0 {
		players = []string{"Anna", "Boris", "Carla", "Dmitry", "Eva"}
	}
	return CreateTournamentInput{
		Name:      "Friday Americano",
		TeamType:  models.TeamTypeStandard,
		PointType: models.PointType21,
		Players:   players,
	}
}

func mixInput() CreateTournamentInput {
	return CreateTournamentInput{
		Name:      "Mix Night",
		TeamType:  models.TeamTypeMix,
		PointType: models.PointType16,
		Players:   []string{"Anna", "Boris", "Carla", "Dmitry", "Eva", "Fedor"},
		PlayerGenders: map[string]models.Gender{
			"Anna": models.GenderFemale, "Boris": models.GenderMale,
			"Carla": models.GenderFemale, "Dmitry": models.GenderMale,
			"Eva": models.GenderFemale, "Fedor": models.GenderMale,
		},
	}
}

func mustCreate(t *testing.T, svc TournamentService, input CreateTournamentInput) *models.Tournament {
	t.Helper()
	created, err := svc.Create(context.Background(), input)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	return created
}

func scoreMatch(t *testing.T, tournament *models.Tournament, repo *fakeTournamentRepo, roundIndex, value int) {
	t.Helper()
	svc := NewScoringService(repo, nil, nil, discardLogger())
	matchID := tournament.Rounds[roundIndex].Matches[0].ID
	if _, err := svc.SetScore(context.Background(), tournament.ID, matchID, TeamSideA, value); err != nil {
		t.Fatalf("SetScore: %v", err)
	}
}

func TestCreateTournament(t *testing.T) {
	svc, repo, _ := newTestTournamentService(t)
	created := mustCreate(t, svc, standardInput())

	if created.ID == "" {
		t.Error("created tournament has no id")
	}
	if !created.CreatedAt.Equal(testStart) {
		t.Errorf("createdAt = %v, want clock time %v", created.CreatedAt, testStart)
	}
	if want := rotation.RoundCount(models.TeamTypeStandard, 5); len(created.Rounds) != want {
		t.Errorf("got %d rounds, want %d", len(created.Rounds), want)
	}

	stored, err := repo.GetByID(context.Background(), created.ID)
	if err != nil {
		t.Fatalf("stored tournament missing: %v", err)
	}
	if stored.Name != "Friday Americano" {
		t.Errorf("stored name = %q", stored.Name)
	}
}

func TestCreateTournamentValidation(t *testing.T) {
	svc, _, _ := newTestTournamentService(t)

	tests := []struct {
		name    string
		mutate  func(*CreateTournamentInput)
		wantErr error
	}{
		{"empty name", func(in *CreateTournamentInput) { in.Name = "  " }, ErrNameLength},
		{"unknown team type", func(in *CreateTournamentInput) { in.TeamType = "swiss" }, ErrInvalidTeamType},
		{"unknown point type", func(in *CreateTournamentInput) { in.PointType = "33" }, ErrInvalidPointType},
		{"too few players", func(in *CreateTournamentInput) { in.Players = in.Players[:3] }, ErrRosterSize},
		{"duplicate players", func(in *CreateTournamentInput) { in.Players[1] = "anna" }, ErrDuplicatePlayer},
		{"blank player", func(in *CreateTournamentInput) { in.Players[2] = " " }, ErrBlankPlayerName},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			input := standardInput()
			tt.mutate(&input)
			if _, err := svc.Create(context.Background(), input); !errors.Is(err, tt.wantErr) {
				t.Errorf("got %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestCreateMixTournamentValidation(t *testing.T) {
	svc, _, _ := newTestTournamentService(t)

	input := mixInput()
	delete(input.PlayerGenders, "Eva")
	if _, err := svc.Create(context.Background(), input); !errors.Is(err, ErrGenderMissing) {
		t.Errorf("missing gender: got %v, want ErrGenderMissing", err)
	}

	input = mixInput()
	input.PlayerGenders["Anna"] = models.GenderMale
	if _, err := svc.Create(context.Background(), input); !errors.Is(err, ErrGenderBalance) {
		t.Errorf("unbalanced genders: got %v, want ErrGenderBalance", err)
	}

	input = mixInput()
	input.Players = append(input.Players, "Galina", "Henrik")
	input.PlayerGenders["Galina"] = models.GenderFemale
	input.PlayerGenders["Henrik"] = models.GenderMale
	if _, err := svc.Create(context.Background(), input); err != nil {
		t.Errorf("roster of 8: %v", err)
	}
}

func TestCreateTeamTournamentRejectsOddRoster(t *testing.T) {
	svc, _, _ := newTestTournamentService(t)
	input := standardInput()
	input.TeamType = models.TeamTypeTeam
	if _, err := svc.Create(context.Background(), input); !errors.Is(err, ErrTeamRosterOdd) {
		t.Errorf("got %v, want ErrTeamRosterOdd", err)
	}
}

func TestApplyRenamePlayerKeepsSchedule(t *testing.T) {
	svc, repo, _ := newTestTournamentService(t)
	created := mustCreate(t, svc, standardInput())
	scoreMatch(t, created, repo, 0, 15)

	updated, err := svc.Apply(context.Background(), created.ID, RenamePlayer{From: "anna", To: "Anya"})
	if err != nil {
		t.Fatalf("Apply: %v", err)
	}

	if updated.HasPlayer("Anna") || !updated.HasPlayer("Anya") {
		t.Errorf("roster after rename = %v", updated.Players)
	}
	// Расписание и счёт первого раунда пережили переименование.
	if len(updated.Rounds) != len(created.Rounds) {
		t.Errorf("round count changed: %d -> %d", len(created.Rounds), len(updated.Rounds))
	}
	if !updated.HasAnyScore() {
		t.Error("scores were wiped by a safe edit")
	}
	for _, round := range updated.Rounds {
		for _, m := range round.Matches {
			if m.SideOf("Anna") != 0 {
				t.Fatalf("old name still present in round %d", round.RoundNumber)
			}
		}
	}
}

func TestApplyRenamePlayerValidation(t *testing.T) {
	svc, _, _ := newTestTournamentService(t)
	created := mustCreate(t, svc, standardInput())

	if _, err := svc.Apply(context.Background(), created.ID, RenamePlayer{From: "Ghost", To: "X"}); !errors.Is(err, ErrPlayerNotFound) {
		t.Errorf("unknown player: got %v, want ErrPlayerNotFound", err)
	}
	if _, err := svc.Apply(context.Background(), created.ID, RenamePlayer{From: "Anna", To: "boris"}); !errors.Is(err, ErrDuplicatePlayer) {
		t.Errorf("name clash: got %v, want ErrDuplicatePlayer", err)
	}
}

func TestApplyUpdateInfoPointTypeGuard(t *testing.T) {
	svc, repo, _ := newTestTournamentService(t)
	created := mustCreate(t, svc, standardInput())
	scoreMatch(t, created, repo, 0, 12)

	_, err := svc.Apply(context.Background(), created.ID, UpdateInfo{
		Name:      created.Name,
		PointType: models.PointType16,
	})
	if !errors.Is(err, ErrPointTypeHasScores) {
		t.Fatalf("got %v, want ErrPointTypeHasScores", err)
	}

	// Отказ не тронул сохранённый снапшот.
	stored, _ := repo.GetByID(context.Background(), created.ID)
	if stored.PointType != models.PointType21 || !stored.HasAnyScore() {
		t.Error("rejected command modified the stored snapshot")
	}

	updated, err := svc.Apply(context.Background(), created.ID, UpdateInfo{
		Name:        "Friday Americano",
		PointType:   models.PointType16,
		ResetScores: true,
	})
	if err != nil {
		t.Fatalf("Apply with ResetScores: %v", err)
	}
	if updated.PointType != models.PointType16 {
		t.Errorf("point type = %s", updated.PointType)
	}
	if updated.HasAnyScore() {
		t.Error("scores survived an explicit reset")
	}
}

func TestApplyAddPlayersRegenerates(t *testing.T) {
	svc, repo, _ := newTestTournamentService(t)
	created := mustCreate(t, svc, standardInput())
	scoreMatch(t, created, repo, 0, 21)

	updated, err := svc.Apply(context.Background(), created.ID, AddPlayers{Names: []string{"Fedor"}})
	if err != nil {
		t.Fatalf("Apply: %v", err)
	}
	if len(updated.Players) != 6 {
		t.Errorf("roster size = %d, want 6", len(updated.Players))
	}
	if want := rotation.RoundCount(models.TeamTypeStandard, 6); len(updated.Rounds) != want {
		t.Errorf("got %d rounds, want %d", len(updated.Rounds), want)
	}
	if updated.HasAnyScore() {
		t.Error("scores survived a structural edit")
	}
}

func TestApplyAddPlayersRejectedForMix(t *testing.T) {
	svc, _, _ := newTestTournamentService(t)
	created := mustCreate(t, svc, mixInput())

	if _, err := svc.Apply(context.Background(), created.ID, AddPlayers{Names: []string{"Galina"}}); !errors.Is(err, ErrMixRosterOnly) {
		t.Errorf("got %v, want ErrMixRosterOnly", err)
	}
	if _, err := svc.Apply(context.Background(), created.ID, RemovePlayer{Name: "Anna"}); !errors.Is(err, ErrMixRosterOnly) {
		t.Errorf("got %v, want ErrMixRosterOnly", err)
	}
}

func TestApplyRemovePlayerBelowMinimum(t *testing.T) {
	svc, repo, _ := newTestTournamentService(t)
	created := mustCreate(t, svc, standardInput("Anna", "Boris", "Carla", "Dmitry"))

	if _, err := svc.Apply(context.Background(), created.ID, RemovePlayer{Name: "Dmitry"}); !errors.Is(err, ErrRosterSize) {
		t.Errorf("got %v, want ErrRosterSize", err)
	}
	stored, _ := repo.GetByID(context.Background(), created.ID)
	if len(stored.Players) != 4 {
		t.Error("rejected removal modified the stored roster")
	}
}

func TestApplyUpdateMixPlayers(t *testing.T) {
	svc, _, _ := newTestTournamentService(t)
	created := mustCreate(t, svc, mixInput())

	players := []models.MixPlayer{
		{Name: "Anna", Gender: models.GenderFemale},
		{Name: "Boris", Gender: models.GenderMale},
		{Name: "Carla", Gender: models.GenderFemale},
		{Name: "Dmitry", Gender: models.GenderMale},
		{Name: "Galina", Gender: models.GenderFemale},
		{Name: "Henrik", Gender: models.GenderMale},
	}
	updated, err := svc.Apply(context.Background(), created.ID, UpdateMixPlayers{Players: players})
	if err != nil {
		t.Fatalf("Apply: %v", err)
	}
	if !updated.HasPlayer("Galina") || updated.HasPlayer("Eva") {
		t.Errorf("roster after replace = %v", updated.Players)
	}
	if want := rotation.RoundCount(models.TeamTypeMix, 6); len(updated.Rounds) != want {
		t.Errorf("got %d rounds, want %d", len(updated.Rounds), want)
	}
}

func TestApplyAdjustLineup(t *testing.T) {
	svc, repo, _ := newTestTournamentService(t)
	created := mustCreate(t, svc, standardInput())
	scoreMatch(t, created, repo, 0, 18)

	fm := rotation.FixedMatch{
		TeamA: [2]string{"Eva", "Boris"},
		TeamB: [2]string{"Carla", "Anna"},
	}
	updated, err := svc.Apply(context.Background(), created.ID, AdjustLineup{FirstMatch: fm})
	if err != nil {
		t.Fatalf("Apply: %v", err)
	}
	first := updated.Rounds[0].Matches[0]
	if first.TeamA[0] != "Eva" || first.TeamA[1] != "Boris" {
		t.Errorf("round 1 teamA = %v, want pinned pair", first.TeamA)
	}
	if updated.HasAnyScore() {
		t.Error("scores survived a lineup regeneration")
	}
}

func TestApplyExtendRounds(t *testing.T) {
	svc, _, _ := newTestTournamentService(t)
	created := mustCreate(t, svc, standardInput())
	base := len(created.Rounds)

	updated, err := svc.Apply(context.Background(), created.ID, ExtendRounds{})
	if err != nil {
		t.Fatalf("Apply: %v", err)
	}
	if !updated.HasExtended {
		t.Error("hasExtended not set")
	}
	if want := base + rotation.RoundCount(models.TeamTypeStandard, 5); len(updated.Rounds) != want {
		t.Errorf("got %d rounds, want %d", len(updated.Rounds), want)
	}

	if _, err := svc.Apply(context.Background(), created.ID, ExtendRounds{}); !errors.Is(err, ErrAlreadyExtended) {
		t.Errorf("second extension: got %v, want ErrAlreadyExtended", err)
	}
}

func TestApplyExtendRoundsUnsupportedFormats(t *testing.T) {
	svc, _, _ := newTestTournamentService(t)
	input := standardInput("Anna", "Boris", "Carla", "Dmitry", "Eva", "Fedor")
	input.TeamType = models.TeamTypeTeam
	created := mustCreate(t, svc, input)

	if _, err := svc.Apply(context.Background(), created.ID, ExtendRounds{}); !errors.Is(err, ErrCannotExtend) {
		t.Errorf("got %v, want ErrCannotExtend", err)
	}
}

func TestApplyEndTournament(t *testing.T) {
	svc, _, clock := newTestTournamentService(t)
	created := mustCreate(t, svc, standardInput())
	clock.Advance(2 * time.Hour)

	ended, err := svc.Apply(context.Background(), created.ID, EndTournament{})
	if err != nil {
		t.Fatalf("Apply: %v", err)
	}
	if !ended.IsEnded {
		t.Error("isEnded not set")
	}
	if ended.CompletedAt == nil || !ended.CompletedAt.Equal(testStart.Add(2*time.Hour)) {
		t.Errorf("completedAt = %v", ended.CompletedAt)
	}

	// Любая команда после завершения отклоняется, удаление остаётся законным.
	if _, err := svc.Apply(context.Background(), created.ID, RenamePlayer{From: "Anna", To: "Anya"}); !errors.Is(err, ErrTournamentEnded) {
		t.Errorf("mutation after end: got %v, want ErrTournamentEnded", err)
	}
	if err := svc.Delete(context.Background(), created.ID); err != nil {
		t.Errorf("Delete after end: %v", err)
	}
}

func TestApplyUnknownTournament(t *testing.T) {
	svc, _, _ := newTestTournamentService(t)
	if _, err := svc.Apply(context.Background(), "missing", EndTournament{}); !errors.Is(err, ErrTournamentNotFound) {
		t.Errorf("got %v, want ErrTournamentNotFound", err)
	}
	if err := svc.Delete(context.Background(), "missing"); !errors.Is(err, ErrTournamentNotFound) {
		t.Errorf("Delete: got %v, want ErrTournamentNotFound", err)
	}
}
