package models

// StatValue carries the numeric payload of a single outcome metadata entry.
// Team-specific stats fill Winner and Loser; match-level stats fill Match.
type StatValue struct {
	Winner *int `json:"winner,omitempty"`
	Loser  *int `json:"loser,omitempty"`
	Match  *int `json:"match,omitempty"`
}

// StatEntry is one named metadata field of a match outcome.
type StatEntry struct {
	Name  string    `json:"name"`
	Value StatValue `json:"value"`
}

// Outcome is the result of a match: who won, who lost, and the stat
// metadata the tournament requires for every match.
type Outcome struct {
	WinnerTeamID *int        `json:"winner,omitempty"`
	LoserTeamID  *int        `json:"loser,omitempty"`
	Metadata     []StatEntry `json:"metadata,omitempty"`
}

// PreliminaryOutcome is a team-submitted claim about a match result,
// pending admin approval. Each participating team keeps at most one entry;
// a resubmission replaces its earlier one in place.
type PreliminaryOutcome struct {
	Outcome
	ReportedBy int `json:"reported_by"`
}

// Match is the atomic competitive unit of a bracket. Participants holds at
// most two team IDs. WinnerParentID and LoserParentID point at the matches
// the winner and loser advance into (elimination brackets only).
type Match struct {
	ID                  int                  `json:"id" db:"id"`
	BracketID           int                  `json:"bracket_id" db:"bracket_id"`
	Position            int                  `json:"position" db:"position"`
	Participants        []int                `json:"participants" db:"participants"`
	WinnerParentID      *int                 `json:"winner_parent_match,omitempty" db:"winner_parent_match_id"`
	LoserParentID       *int                 `json:"loser_parent_match,omitempty" db:"loser_parent_match_id"`
	Outcome             *Outcome             `json:"outcome,omitempty" db:"outcome"`
	PreliminaryOutcomes []PreliminaryOutcome `json:"preliminary_outcomes" db:"preliminary_outcomes"`
}

// IsOutcomeSet reports whether a final outcome has ever been recorded on
// the match. Presence of any outcome field counts: a bye match, for
// example, has a winner but no loser and no metadata.
func (m *Match) IsOutcomeSet() bool {
	if m.Outcome == nil {
		return false
	}
	return m.Outcome.WinnerTeamID != nil || m.Outcome.LoserTeamID != nil || len(m.Outcome.Metadata) > 0
}

// HasParticipant reports whether the given team plays in this match.
func (m *Match) HasParticipant(teamID int) bool {
	for _, id := range m.Participants {
		if id == teamID {
			return true
		}
	}
	return false
}
