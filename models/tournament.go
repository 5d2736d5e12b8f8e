package models

import "time"

// StatField declares a metadata dimension the tournament requires in every
// match outcome. Team-specific fields need winner and loser values; the
// rest need a single match-level value.
type StatField struct {
	Name         string `json:"name"`
	TeamSpecific bool   `json:"teamSpecific"`
}

// Tournament owns teams and brackets. The admin is the only user allowed to
// create brackets, approve final outcomes and trigger winner determination.
type Tournament struct {
	ID           int         `json:"id" db:"id"`
	Name         string      `json:"name" db:"name"`
	Description  *string     `json:"description,omitempty" db:"description"`
	AdminID      int         `json:"admin_id" db:"admin_id"`
	StatFields   []StatField `json:"statfields" db:"statfields"`
	Started      bool        `json:"started" db:"started"`
	WinnerTeamID *int        `json:"winner,omitempty" db:"winner_team_id"`
	CreatedAt    time.Time   `json:"created_at" db:"created_at"`

	Admin    *User     `json:"admin,omitempty" db:"-"`
	Teams    []Team    `json:"teams,omitempty" db:"-"`
	Brackets []Bracket `json:"brackets,omitempty" db:"-"`
}
