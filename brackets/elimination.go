package brackets

import (
	"context"
	"fmt"

	"github.com/changycj/tourneytrack/models"
)

type EliminationGenerator struct{}

func NewEliminationGenerator() BracketGenerator {
	return &EliminationGenerator{}
}

func (g *EliminationGenerator) GetName() string {
	return "Elimination"
}

// GenerateBracket builds a single-elimination tree sized to the smallest
// power of two holding every team.
//
// The arena is laid out as a binary heap: inner matches first, slot 0 being
// the final, with the winner of slot i advancing to slot (i-1)/2. The leaf
// layer of 2^(numRounds-1) first-round matches follows, pairing team j
// against team j+2^(numRounds-1). A leaf whose opponent slot falls past the
// end of the team list is a bye: the lone team is recorded as that match's
// winner immediately and pushed into the parent's participant list, so the
// bye never has to be played. Total matches are always 2^numRounds - 1 and
// exactly one match (the final) has no parent.
func (g *EliminationGenerator) GenerateBracket(ctx context.Context, params GenerateParams) ([]*BracketMatch, error) {
	teams := params.TeamIDs
	n := len(teams)
	if n < 2 {
		return nil, fmt.Errorf("EliminationGenerator: not enough teams (found %d, min 2 required)", n)
	}

	numRounds := 0
	for (1 << numRounds) < n {
		numRounds++
	}
	numInner := 1<<(numRounds-1) - 1
	numLeaf := 1 << (numRounds - 1)

	matches := make([]*BracketMatch, 0, numInner+numLeaf)

	for i := 0; i < numInner; i++ {
		m := &BracketMatch{Slot: i}
		if i > 0 {
			parent := (i - 1) / 2
			m.WinnerParentSlot = &parent
		}
		matches = append(matches, m)
	}

	for j := 0; j < numLeaf; j++ {
		m := &BracketMatch{Slot: numInner + j}
		if idx := j + numInner - 1; idx >= 0 {
			parent := idx / 2
			m.WinnerParentSlot = &parent
		}

		var a, b *int
		if j < n {
			a = &teams[j]
		}
		if j+numLeaf < n {
			b = &teams[j+numLeaf]
		}

		switch {
		case a != nil && b != nil:
			m.Participants = []int{*a, *b}
		case a != nil:
			g.advanceBye(matches, m, *a)
		case b != nil:
			g.advanceBye(matches, m, *b)
		default:
			return nil, fmt.Errorf("EliminationGenerator: leaf slot %d has no teams (n=%d, rounds=%d)", j, n, numRounds)
		}

		matches = append(matches, m)
	}

	return matches, nil
}

// advanceBye marks m as a bye for the given team: the team is its winner at
// generation time and is placed straight into the parent match.
func (g *EliminationGenerator) advanceBye(matches []*BracketMatch, m *BracketMatch, teamID int) {
	winner := teamID
	m.Bye = true
	m.Participants = []int{teamID}
	m.Outcome = &models.Outcome{WinnerTeamID: &winner}
	if m.WinnerParentSlot != nil {
		parent := matches[*m.WinnerParentSlot]
		parent.Participants = append(parent.Participants, teamID)
	}
}
