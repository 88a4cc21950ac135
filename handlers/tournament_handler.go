package handlers

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"golang.org/x/sync/errgroup"

	"github.com/Dosada05/padel-americano/cache"
	"github.com/Dosada05/padel-americano/models"
	"github.com/Dosada05/padel-americano/rotation"
	"github.com/Dosada05/padel-americano/services"
	"github.com/Dosada05/padel-americano/stats"
)

type TournamentHandler struct {
	tournamentService services.TournamentService
	scoringService    services.ScoringService
	standings         *cache.StandingsCache // может быть nil
}

func NewTournamentHandler(
	tournamentService services.TournamentService,
	scoringService services.ScoringService,
	standings *cache.StandingsCache,
) *TournamentHandler {
	return &TournamentHandler{
		tournamentService: tournamentService,
		scoringService:    scoringService,
		standings:         standings,
	}
}

// CreateTournament обрабатывает POST /tournaments.
func (h *TournamentHandler) CreateTournament(w http.ResponseWriter, r *http.Request) {
	var input services.CreateTournamentInput
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	tournament, err := h.tournamentService.Create(r.Context(), input)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, jsonResponse{"tournament": tournament}, nil)
}

// tournamentSummary — облегчённая строка списка, без раундов.
type tournamentSummary struct {
	ID              string           `json:"id"`
	Name            string           `json:"name"`
	TeamType        models.TeamType  `json:"teamType"`
	PointType       models.PointType `json:"pointType"`
	PlayerCount     int              `json:"playerCount"`
	TotalRounds     int              `json:"totalRounds"`
	RoundsCompleted int              `json:"roundsCompleted"`
	IsEnded         bool             `json:"isEnded"`
	CreatedAt       time.Time        `json:"createdAt"`
}

func summarize(t *models.Tournament) tournamentSummary {
	completed := 0
	for _, round := range t.Rounds {
		if round.IsComplete() {
			completed++
		}
	}
	return tournamentSummary{
		ID:              t.ID,
		Name:            t.Name,
		TeamType:        t.TeamType,
		PointType:       t.PointType,
		PlayerCount:     len(t.Players),
		TotalRounds:     len(t.Rounds),
		RoundsCompleted: completed,
		IsEnded:         t.IsEnded,
		CreatedAt:       t.CreatedAt,
	}
}

// ListTournaments обрабатывает GET /tournaments.
func (h *TournamentHandler) ListTournaments(w http.ResponseWriter, r *http.Request) {
	tournaments, err := h.tournamentService.List(r.Context())
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	summaries := make([]tournamentSummary, 0, len(tournaments))
	for _, t := range tournaments {
		summaries = append(summaries, summarize(t))
	}
	writeJSON(w, http.StatusOK, jsonResponse{"tournaments": summaries}, nil)
}

// GetTournament обрабатывает GET /tournaments/{tournamentID}. Снапшот и
// закэшированный топ таблицы запрашиваются параллельно; отсутствие кэша не
// считается ошибкой ответа.
func (h *TournamentHandler) GetTournament(w http.ResponseWriter, r *http.Request) {
	tournamentID := chi.URLParam(r, "tournamentID")

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	var (
		tournament *models.Tournament
		topPlayers []string
	)

	g, gCtx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		tournament, err = h.tournamentService.Get(gCtx, tournamentID)
		return err
	})
	g.Go(func() error {
		if h.standings == nil {
			return nil
		}
		top, err := h.standings.TopPlayers(gCtx, tournamentID, 3)
		if err == nil {
			topPlayers = top
		}
		return nil // кэш необязателен
	})

	if err := g.Wait(); err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	response := jsonResponse{"tournament": tournament}
	if len(topPlayers) > 0 {
		response["topPlayers"] = topPlayers
	}
	writeJSON(w, http.StatusOK, response, nil)
}

// DeleteTournament обрабатывает DELETE /tournaments/{tournamentID}.
func (h *TournamentHandler) DeleteTournament(w http.ResponseWriter, r *http.Request) {
	tournamentID := chi.URLParam(r, "tournamentID")

	if err := h.tournamentService.Delete(r.Context(), tournamentID); err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, jsonResponse{"message": "tournament deleted"}, nil)
}

// UpdateTournament обрабатывает PATCH /tournaments/{tournamentID}.
func (h *TournamentHandler) UpdateTournament(w http.ResponseWriter, r *http.Request) {
	tournamentID := chi.URLParam(r, "tournamentID")

	var input struct {
		Name        string           `json:"name"`
		PointType   models.PointType `json:"pointType"`
		ResetScores bool             `json:"resetScores"`
	}
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	h.apply(w, r, tournamentID, services.UpdateInfo{
		Name:        input.Name,
		PointType:   input.PointType,
		ResetScores: input.ResetScores,
	})
}

// AddPlayers обрабатывает POST /tournaments/{tournamentID}/players.
func (h *TournamentHandler) AddPlayers(w http.ResponseWriter, r *http.Request) {
	tournamentID := chi.URLParam(r, "tournamentID")

	var input struct {
		Names []string `json:"names"`
	}
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	h.apply(w, r, tournamentID, services.AddPlayers{Names: input.Names})
}

// RemovePlayer обрабатывает DELETE /tournaments/{tournamentID}/players/{playerName}.
func (h *TournamentHandler) RemovePlayer(w http.ResponseWriter, r *http.Request) {
	tournamentID := chi.URLParam(r, "tournamentID")
	playerName := chi.URLParam(r, "playerName")

	h.apply(w, r, tournamentID, services.RemovePlayer{Name: playerName})
}

// RenamePlayer обрабатывает POST /tournaments/{tournamentID}/players/rename.
func (h *TournamentHandler) RenamePlayer(w http.ResponseWriter, r *http.Request) {
	tournamentID := chi.URLParam(r, "tournamentID")

	var input struct {
		From string `json:"from"`
		To   string `json:"to"`
	}
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	h.apply(w, r, tournamentID, services.RenamePlayer{From: input.From, To: input.To})
}

// UpdateMixPlayers обрабатывает PUT /tournaments/{tournamentID}/mix-players.
func (h *TournamentHandler) UpdateMixPlayers(w http.ResponseWriter, r *http.Request) {
	tournamentID := chi.URLParam(r, "tournamentID")

	var input struct {
		Players []models.MixPlayer `json:"players"`
	}
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	h.apply(w, r, tournamentID, services.UpdateMixPlayers{Players: input.Players})
}

// AdjustLineup обрабатывает POST /tournaments/{tournamentID}/lineup.
func (h *TournamentHandler) AdjustLineup(w http.ResponseWriter, r *http.Request) {
	tournamentID := chi.URLParam(r, "tournamentID")

	var input struct {
		FirstMatch rotation.FixedMatch `json:"firstMatch"`
	}
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	h.apply(w, r, tournamentID, services.AdjustLineup{FirstMatch: input.FirstMatch})
}

// ExtendRounds обрабатывает POST /tournaments/{tournamentID}/extend.
func (h *TournamentHandler) ExtendRounds(w http.ResponseWriter, r *http.Request) {
	tournamentID := chi.URLParam(r, "tournamentID")
	h.apply(w, r, tournamentID, services.ExtendRounds{})
}

// EndTournament обрабатывает POST /tournaments/{tournamentID}/end.
func (h *TournamentHandler) EndTournament(w http.ResponseWriter, r *http.Request) {
	tournamentID := chi.URLParam(r, "tournamentID")
	h.apply(w, r, tournamentID, services.EndTournament{})
}

// SetMatchScore обрабатывает PUT /tournaments/{tournamentID}/matches/{matchID}/score.
func (h *TournamentHandler) SetMatchScore(w http.ResponseWriter, r *http.Request) {
	tournamentID := chi.URLParam(r, "tournamentID")
	matchID := chi.URLParam(r, "matchID")

	var input struct {
		Team  string `json:"team"`
		Value int    `json:"value"`
	}
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	tournament, err := h.scoringService.SetScore(
		r.Context(), tournamentID, matchID, services.TeamSide(input.Team), input.Value,
	)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, jsonResponse{"tournament": tournament}, nil)
}

// ResetMatchScore обрабатывает DELETE /tournaments/{tournamentID}/matches/{matchID}/score.
func (h *TournamentHandler) ResetMatchScore(w http.ResponseWriter, r *http.Request) {
	tournamentID := chi.URLParam(r, "tournamentID")
	matchID := chi.URLParam(r, "matchID")

	tournament, err := h.scoringService.ResetScore(r.Context(), tournamentID, matchID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, jsonResponse{"tournament": tournament}, nil)
}

// GetLeaderboard обрабатывает GET /tournaments/{tournamentID}/leaderboard.
// Параметр by=wins переключает порядок на сортировку по победам.
func (h *TournamentHandler) GetLeaderboard(w http.ResponseWriter, r *http.Request) {
	tournamentID := chi.URLParam(r, "tournamentID")

	tournament, err := h.tournamentService.Get(r.Context(), tournamentID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	ordering := stats.ByFinalScore
	if r.URL.Query().Get("by") == "wins" {
		ordering = stats.ByWins
	}

	leaderboard := stats.ComputeLeaderboard(tournament, ordering)
	writeJSON(w, http.StatusOK, jsonResponse{"leaderboard": leaderboard}, nil)
}

// GetPlayerPairings обрабатывает GET /tournaments/{tournamentID}/players/{playerName}/pairings.
func (h *TournamentHandler) GetPlayerPairings(w http.ResponseWriter, r *http.Request) {
	tournamentID := chi.URLParam(r, "tournamentID")
	playerName := chi.URLParam(r, "playerName")

	tournament, err := h.tournamentService.Get(r.Context(), tournamentID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	if !tournament.HasPlayer(playerName) {
		mapServiceErrorToHTTP(w, r, services.ErrPlayerNotFound)
		return
	}

	pairings := stats.ComputePairingStats(tournament, playerName)
	writeJSON(w, http.StatusOK, jsonResponse{"pairings": pairings}, nil)
}

// GetPlayerRounds обрабатывает GET /tournaments/{tournamentID}/players/{playerName}/rounds.
func (h *TournamentHandler) GetPlayerRounds(w http.ResponseWriter, r *http.Request) {
	tournamentID := chi.URLParam(r, "tournamentID")
	playerName := chi.URLParam(r, "playerName")

	tournament, err := h.tournamentService.Get(r.Context(), tournamentID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	if !tournament.HasPlayer(playerName) {
		mapServiceErrorToHTTP(w, r, services.ErrPlayerNotFound)
		return
	}

	rounds := stats.RoundsInvolving(tournament, playerName)
	writeJSON(w, http.StatusOK, jsonResponse{"rounds": rounds}, nil)
}

// GetHeadToHead обрабатывает GET /tournaments/{tournamentID}/head-to-head?a=X&b=Y.
func (h *TournamentHandler) GetHeadToHead(w http.ResponseWriter, r *http.Request) {
	tournamentID := chi.URLParam(r, "tournamentID")

	a := r.URL.Query().Get("a")
	b := r.URL.Query().Get("b")
	if a == "" || b == "" {
		badRequestResponse(w, r, errors.New("query parameters a and b are required"))
		return
	}

	tournament, err := h.tournamentService.Get(r.Context(), tournamentID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	if !tournament.HasPlayer(a) || !tournament.HasPlayer(b) {
		mapServiceErrorToHTTP(w, r, services.ErrPlayerNotFound)
		return
	}

	headToHead := stats.RoundsBetween(tournament, a, b)
	writeJSON(w, http.StatusOK, jsonResponse{"headToHead": headToHead}, nil)
}

// apply прогоняет команду через сервис и отдает обновленный снапшот.
func (h *TournamentHandler) apply(w http.ResponseWriter, r *http.Request, tournamentID string, cmd services.Command) {
	tournament, err := h.tournamentService.Apply(r.Context(), tournamentID, cmd)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, jsonResponse{"tournament": tournament}, nil)
}
