package models

import "fmt"

// BracketType enumerates the supported bracket styles.
type BracketType string

const (
	BracketRoundRobin  BracketType = "Round Robin"
	BracketElimination BracketType = "Elimination"
)

// Validate rejects any type other than the two supported ones.
func (t BracketType) Validate() error {
	switch t {
	case BracketRoundRobin, BracketElimination:
		return nil
	default:
		return fmt.Errorf("bracket type must be %q or %q, got %q", BracketRoundRobin, BracketElimination, t)
	}
}

// Bracket is a named grouping of matches within a tournament. Winner is set
// only by winner determination, once every match in the bracket is decided.
type Bracket struct {
	ID           int         `json:"id" db:"id"`
	Type         BracketType `json:"type" db:"type"`
	Name         string      `json:"name" db:"name"`
	TournamentID int         `json:"tournament_id" db:"tournament_id"`
	WinnerTeamID *int        `json:"winner,omitempty" db:"winner_team_id"`

	// Matches in generation order, loaded on demand.
	Matches []Match `json:"matches,omitempty" db:"-"`
}
