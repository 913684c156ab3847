package models

import "time"

// DisplaySelection хранит выбранную для показа пару команд (fixture)
// на экранах арены. Одна запись на турнир и игровой день; пишется только
// админским пультом управления.
type DisplaySelection struct {
	ID             int       `json:"id" db:"id"`
	TournamentID   int       `json:"tournament_id" db:"tournament_id"`
	DisplayDate    time.Time `json:"display_date" db:"display_date"`
	FixtureGroupID string    `json:"fixture_group_id" db:"fixture_group_id"`
	Team1Name      string    `json:"team1_name" db:"team1_name"`
	Team2Name      string    `json:"team2_name" db:"team2_name"`
	UpdatedBy      *int      `json:"updated_by,omitempty" db:"updated_by"`
	UpdatedAt      time.Time `json:"updated_at" db:"updated_at"`
}
