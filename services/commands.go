package services

import (
	"github.com/Dosada05/padel-americano/models"
	"github.com/Dosada05/padel-americano/rotation"
)

// Command is a tagged lifecycle mutation consumed by TournamentService.Apply.
// Whether a command is safe (applied in place) or structural (full schedule
// regeneration plus score reset) is a property of the command type, not of
// the fields it happens to touch.
type Command interface {
	isCommand()
}

// RenamePlayer — безопасная правка: имя меняется во всех раундах без
// перегенерации расписания.
type RenamePlayer struct {
	From string
	To   string
}

// UpdateInfo updates the tournament name and point type. A point-type change
// while scores exist breaks the zero-sum invariant of those scores, so it is
// rejected unless ResetScores is set.
type UpdateInfo struct {
	Name        string
	PointType   models.PointType
	ResetScores bool
}

// AddPlayers is structural: the schedule is regenerated and all scores reset.
type AddPlayers struct {
	Names []string
}

// RemovePlayer is structural.
type RemovePlayer struct {
	Name string
}

// UpdateMixPlayers replaces the whole mix roster (names and genders).
// Structural.
type UpdateMixPlayers struct {
	Players []models.MixPlayer
}

// AdjustLineup discards the schedule and regenerates it from a pinned first
// match. This is the only structural edit allowed after scores exist; it
// implies a full score reset.
type AdjustLineup struct {
	FirstMatch rotation.FixedMatch
}

// ExtendRounds appends one extra rotation block to the schedule, once per
// tournament. Played rounds and their scores are untouched.
type ExtendRounds struct{}

// EndTournament terminates the tournament; afterwards every mutation except
// deletion is rejected.
type EndTournament struct{}

func (RenamePlayer) isCommand()     {}
func (UpdateInfo) isCommand()       {}
func (AddPlayers) isCommand()       {}
func (RemovePlayer) isCommand()     {}
func (UpdateMixPlayers) isCommand() {}
func (AdjustLineup) isCommand()     {}
func (ExtendRounds) isCommand()     {}
func (EndTournament) isCommand()    {}
