package brackets

import (
	"context"
	"fmt"
)

type RoundRobinGenerator struct{}

func NewRoundRobinGenerator() BracketGenerator {
	return &RoundRobinGenerator{}
}

func (g *RoundRobinGenerator) GetName() string {
	return "RoundRobin"
}

// GenerateBracket creates one match per unordered pair of teams. The
// iteration order (i ascending, then j from i+1) is part of the contract:
// it fixes the position of every match in the bracket's match list.
func (g *RoundRobinGenerator) GenerateBracket(ctx context.Context, params GenerateParams) ([]*BracketMatch, error) {
	teams := params.TeamIDs
	if len(teams) < 2 {
		return nil, fmt.Errorf("RoundRobinGenerator: not enough teams (found %d, min 2 required)", len(teams))
	}

	matches := make([]*BracketMatch, 0, len(teams)*(len(teams)-1)/2)
	for i := 0; i < len(teams); i++ {
		for j := i + 1; j < len(teams); j++ {
			matches = append(matches, &BracketMatch{
				Slot:         len(matches),
				Participants: []int{teams[i], teams[j]},
			})
		}
	}

	return matches, nil
}
