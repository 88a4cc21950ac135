package services

import "errors"

// Общие ошибки, используемые в разных сервисах и маппинге HTTP.
var (
	// Ресурсы
	ErrTournamentNotFound = errors.New("tournament not found")
	ErrShareNotFound      = errors.New("shared tournament not found")
	ErrMatchNotFound      = errors.New("match not found")
	ErrPlayerNotFound     = errors.New("player is not on the roster")

	// Ошибки валидации и бизнес-правил
	ErrValidationFailed   = errors.New("validation failed") // Общая ошибка валидации
	ErrNameLength         = errors.New("tournament name must be between 1 and 64 characters")
	ErrInvalidTeamType    = errors.New("unknown team type")
	ErrInvalidPointType   = errors.New("unknown point type")
	ErrRosterSize         = errors.New("roster size is not allowed for this format")
	ErrDuplicatePlayer    = errors.New("player names must be unique")
	ErrBlankPlayerName    = errors.New("player name must not be blank")
	ErrGenderMissing      = errors.New("every mix player needs a gender assignment")
	ErrGenderBalance      = errors.New("mix roster needs equal numbers of men and women")
	ErrTeamRosterOdd      = errors.New("team format needs an even number of players")
	ErrPointTypeHasScores = errors.New("changing the point type requires a score reset")
	ErrMixRosterOnly      = errors.New("mix rosters are edited through the mix players update")
	ErrCannotExtend       = errors.New("only standard and mix schedules can be extended")
	ErrAlreadyExtended    = errors.New("schedule has already been extended")

	// Ошибки счёта и жизненного цикла
	ErrScoreOutOfRange = errors.New("score is outside the allowed range")
	ErrTournamentEnded = errors.New("tournament has ended")

	// Шаринг
	ErrShareIDConflict = errors.New("share id collision retry exhausted")
)

// SnapshotValidationError carries per-field details for the share endpoint's
// 400 response.
type SnapshotValidationError struct {
	Details map[string]string
}

func (e *SnapshotValidationError) Error() string {
	return "tournament snapshot failed validation"
}

func (e *SnapshotValidationError) Unwrap() error {
	return ErrValidationFailed
}
