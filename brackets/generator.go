package brackets

import (
	"context"
	"fmt"

	"github.com/changycj/tourneytrack/models"
)

// BracketMatch is one slot in the generated match arena. Slots are dense
// indices in generation order; parent links are slot indices too, so the
// tree shape is reproducible before anything touches storage.
type BracketMatch struct {
	Slot         int
	Participants []int

	WinnerParentSlot *int
	LoserParentSlot  *int

	// Outcome is pre-filled for bye matches: the lone team is already the
	// winner at generation time and needs no play.
	Outcome *models.Outcome
	Bye     bool
}

type GenerateParams struct {
	// TeamIDs in seeding order. The caller guarantees uniqueness.
	TeamIDs []int
}

type BracketGenerator interface {
	GenerateBracket(ctx context.Context, params GenerateParams) ([]*BracketMatch, error)

	GetName() string
}

// ForType returns the generator for the given bracket type.
func ForType(t models.BracketType) (BracketGenerator, error) {
	switch t {
	case models.BracketRoundRobin:
		return NewRoundRobinGenerator(), nil
	case models.BracketElimination:
		return NewEliminationGenerator(), nil
	default:
		return nil, fmt.Errorf("no generator for bracket type %q", t)
	}
}
