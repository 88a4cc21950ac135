package models

import (
	"strings"
	"time"
)

// TeamType определяет формат ротации турнира.
type TeamType string

const (
	TeamTypeStandard TeamType = "standard"
	TeamTypeMix      TeamType = "mix"
	TeamTypeTeam     TeamType = "team"
	TeamTypeMexicano TeamType = "mexicano"
)

func (t TeamType) Valid() bool {
	switch t {
	case TeamTypeStandard, TeamTypeMix, TeamTypeTeam, TeamTypeMexicano:
		return true
	}
	return false
}

// PointType определяет очковый пул одного матча.
type PointType string

const (
	PointType21    PointType = "21"
	PointType16    PointType = "16"
	PointTypeBest4 PointType = "best4"
	PointTypeBest5 PointType = "best5"
)

func (p PointType) Valid() bool {
	switch p {
	case PointType21, PointType16, PointTypeBest4, PointTypeBest5:
		return true
	}
	return false
}

// MaxScore returns the fixed score pool of a single match: the two team
// scores of a completed match always sum to this value.
func (p PointType) MaxScore() int {
	switch p {
	case PointType21:
		return 21
	case PointType16:
		return 16
	case PointTypeBest4:
		return 4
	case PointTypeBest5:
		return 5
	}
	return 21
}

// Multiplier returns the compensation multiplier applied per missed match.
func (p PointType) Multiplier() int {
	switch p {
	case PointType21:
		return 10
	case PointType16:
		return 8
	case PointTypeBest4, PointTypeBest5:
		return 2
	}
	return 10
}

type Gender string

const (
	GenderMale   Gender = "male"
	GenderFemale Gender = "female"
)

// MixPlayer связывает имя игрока с полом, используется при правке состава mix-турнира.
type MixPlayer struct {
	Name   string `json:"name"`
	Gender Gender `json:"gender"`
}

// Tournament — агрегат турнира. Поля JSON соответствуют схеме шаринга.
type Tournament struct {
	ID            string            `json:"id"`
	Name          string            `json:"name"`
	TeamType      TeamType          `json:"teamType"`
	PointType     PointType         `json:"pointType"`
	Players       []string          `json:"players"`
	PlayerGenders map[string]Gender `json:"playerGenders,omitempty"`
	Rounds        []Round           `json:"rounds"`
	CreatedAt     time.Time         `json:"createdAt"`
	HasExtended   bool              `json:"hasExtended,omitempty"`
	IsEnded       bool              `json:"isEnded,omitempty"`
	CompletedAt   *time.Time        `json:"completedAt,omitempty"`
	ShareID       *string           `json:"shareId,omitempty"`
}

// Clone returns a deep copy of the tournament. Every lifecycle mutation works
// on a clone and returns it, so callers holding the previous snapshot never
// observe partial writes.
func (t *Tournament) Clone() *Tournament {
	c := *t
	c.Players = append([]string(nil), t.Players...)
	if t.PlayerGenders != nil {
		c.PlayerGenders = make(map[string]Gender, len(t.PlayerGenders))
		for name, g := range t.PlayerGenders {
			c.PlayerGenders[name] = g
		}
	}
	c.Rounds = make([]Round, len(t.Rounds))
	for i := range t.Rounds {
		c.Rounds[i] = t.Rounds[i].clone()
	}
	if t.CompletedAt != nil {
		at := *t.CompletedAt
		c.CompletedAt = &at
	}
	if t.ShareID != nil {
		id := *t.ShareID
		c.ShareID = &id
	}
	return &c
}

// HasPlayer reports roster membership; names compare case-insensitively.
func (t *Tournament) HasPlayer(name string) bool {
	for _, p := range t.Players {
		if strings.EqualFold(p, name) {
			return true
		}
	}
	return false
}

// FindMatch returns the match with the given id and its round number.
func (t *Tournament) FindMatch(matchID string) (*Match, int) {
	for ri := range t.Rounds {
		for mi := range t.Rounds[ri].Matches {
			if t.Rounds[ri].Matches[mi].ID == matchID {
				return &t.Rounds[ri].Matches[mi], t.Rounds[ri].RoundNumber
			}
		}
	}
	return nil, 0
}

// HasAnyScore reports whether at least one match has been scored.
func (t *Tournament) HasAnyScore() bool {
	for ri := range t.Rounds {
		for mi := range t.Rounds[ri].Matches {
			if t.Rounds[ri].Matches[mi].IsCompleted {
				return true
			}
		}
	}
	return false
}
