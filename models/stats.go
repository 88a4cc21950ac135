package models

// PlayerStats — строка таблицы лидеров, вычисляется на лету и не хранится.
type PlayerStats struct {
	Player             string `json:"player"`
	MatchesPlayed      int    `json:"matchesPlayed"`
	Wins               int    `json:"wins"`
	Losses             int    `json:"losses"`
	Ties               int    `json:"ties"`
	TotalPoints        int    `json:"totalPoints"`
	CompensationPoints int    `json:"compensationPoints"`
	FinalScore         int    `json:"finalScore"`
}

// PairingOutcome is the result of one shared round from the perspective of
// the selected player.
type PairingOutcome string

const (
	OutcomeWin     PairingOutcome = "win"
	OutcomeLoss    PairingOutcome = "loss"
	OutcomePending PairingOutcome = "pending"
)

// PlayerPairingStats describes how often another roster player appeared as a
// partner and as an opponent of the selected player, with per-round outcomes
// in round order.
type PlayerPairingStats struct {
	Player          string           `json:"player"`
	PartnerCount    int              `json:"partnerCount"`
	PartnerOutcomes []PairingOutcome `json:"partnerOutcomes"`
	VersusCount     int              `json:"versusCount"`
	VersusOutcomes  []PairingOutcome `json:"versusOutcomes"`
}

// RoundMatch pairs a match with the round it belongs to, for head-to-head
// listings.
type RoundMatch struct {
	RoundNumber int   `json:"roundNumber"`
	Match       Match `json:"match"`
}

// HeadToHead splits the shared rounds of two players into rounds played as
// partners and rounds played against each other.
type HeadToHead struct {
	PartnerRounds []RoundMatch `json:"partnerRounds"`
	VersusRounds  []RoundMatch `json:"versusRounds"`
}
