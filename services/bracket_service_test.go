package services

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/changycj/tourneytrack/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type bracketServiceFixture struct {
	service     BracketService
	matchRepo   *fakeMatchRepo
	bracketRepo *fakeBracketRepo
	teamRepo    *fakeTeamRepo
	tournament  *models.Tournament
}

func newBracketServiceFixture(t *testing.T, started bool) *bracketServiceFixture {
	t.Helper()

	tournamentRepo := newFakeTournamentRepo()
	teamRepo := newFakeTeamRepo()
	bracketRepo := newFakeBracketRepo()
	matchRepo := newFakeMatchRepo()

	tournament := &models.Tournament{Name: "Summer Cup", AdminID: testAdminID, Started: started}
	require.NoError(t, tournamentRepo.Create(context.Background(), tournament))

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	service := NewBracketService(nil, tournamentRepo, teamRepo, bracketRepo, matchRepo, nil, logger)

	return &bracketServiceFixture{
		service:     service,
		matchRepo:   matchRepo,
		bracketRepo: bracketRepo,
		teamRepo:    teamRepo,
		tournament:  tournament,
	}
}

func (f *bracketServiceFixture) addBracket(t *testing.T, bracketType models.BracketType) *models.Bracket {
	t.Helper()
	bracket := &models.Bracket{Type: bracketType, Name: "Main", TournamentID: f.tournament.ID}
	require.NoError(t, f.bracketRepo.Create(context.Background(), nil, bracket))
	return bracket
}

func decidedMatch(bracketID, winner, loser int, winnerScore, loserScore int) models.Match {
	return models.Match{
		BracketID:    bracketID,
		Participants: []int{winner, loser},
		Outcome: &models.Outcome{
			WinnerTeamID: &winner,
			LoserTeamID:  &loser,
			Metadata: []models.StatEntry{
				{Name: "Score", Value: models.StatValue{Winner: &winnerScore, Loser: &loserScore}},
			},
		},
	}
}

func TestCreateBracketValidation(t *testing.T) {
	f := newBracketServiceFixture(t, true)

	base := CreateBracketInput{
		Type:         models.BracketElimination,
		Name:         "Main",
		TournamentID: f.tournament.ID,
		TeamIDs:      []int{1, 2},
	}

	t.Run("unknown type", func(t *testing.T) {
		input := base
		input.Type = "Swiss"
		_, err := f.service.CreateBracket(context.Background(), testAdminID, input)
		assert.ErrorIs(t, err, ErrBracketTypeInvalid)
	})

	t.Run("too few teams", func(t *testing.T) {
		input := base
		input.TeamIDs = []int{1}
		_, err := f.service.CreateBracket(context.Background(), testAdminID, input)
		assert.ErrorIs(t, err, ErrBracketTooFewTeams)
	})

	t.Run("duplicate teams", func(t *testing.T) {
		input := base
		input.TeamIDs = []int{1, 2, 1}
		_, err := f.service.CreateBracket(context.Background(), testAdminID, input)
		assert.ErrorIs(t, err, ErrBracketDuplicateTeams)
	})

	t.Run("non admin", func(t *testing.T) {
		_, err := f.service.CreateBracket(context.Background(), 99, base)
		assert.ErrorIs(t, err, ErrAdminOnly)
	})

	t.Run("teams outside tournament", func(t *testing.T) {
		_, err := f.service.CreateBracket(context.Background(), testAdminID, base)
		assert.ErrorIs(t, err, ErrBracketUnknownTeams)
	})
}

func TestCreateBracketRequiresStartedTournament(t *testing.T) {
	f := newBracketServiceFixture(t, false)

	_, err := f.service.CreateBracket(context.Background(), testAdminID, CreateBracketInput{
		Type:         models.BracketRoundRobin,
		Name:         "Main",
		TournamentID: f.tournament.ID,
		TeamIDs:      []int{1, 2},
	})
	assert.ErrorIs(t, err, ErrTournamentNotStarted)
}

func TestDetermineWinnerRoundRobin(t *testing.T) {
	f := newBracketServiceFixture(t, true)
	bracket := f.addBracket(t, models.BracketRoundRobin)

	// Team 10 beats everyone, 20 beats 30.
	f.matchRepo.add(decidedMatch(bracket.ID, 10, 20, 3, 1))
	f.matchRepo.add(decidedMatch(bracket.ID, 10, 30, 2, 0))
	f.matchRepo.add(decidedMatch(bracket.ID, 20, 30, 5, 4))

	result, err := f.service.DetermineWinner(context.Background(), testAdminID, bracket.ID)
	require.NoError(t, err)
	require.NotNil(t, result.WinnerTeamID)
	assert.Equal(t, 10, *result.WinnerTeamID)

	stored, err := f.bracketRepo.GetByID(context.Background(), bracket.ID)
	require.NoError(t, err)
	require.NotNil(t, stored.WinnerTeamID)
	assert.Equal(t, 10, *stored.WinnerTeamID)
}

func TestDetermineWinnerRoundRobinScoreTiebreak(t *testing.T) {
	f := newBracketServiceFixture(t, true)
	bracket := f.addBracket(t, models.BracketRoundRobin)

	// One win each; team 20 piles up more total score.
	f.matchRepo.add(decidedMatch(bracket.ID, 10, 20, 2, 1))
	f.matchRepo.add(decidedMatch(bracket.ID, 20, 10, 9, 0))

	result, err := f.service.DetermineWinner(context.Background(), testAdminID, bracket.ID)
	require.NoError(t, err)
	require.NotNil(t, result.WinnerTeamID)
	assert.Equal(t, 20, *result.WinnerTeamID)
}

func TestDetermineWinnerElimination(t *testing.T) {
	f := newBracketServiceFixture(t, true)
	bracket := f.addBracket(t, models.BracketElimination)

	final := f.matchRepo.add(models.Match{BracketID: bracket.ID, Position: 0, Participants: []int{10, 40}})
	leftWinner, leftLoser := 10, 20
	f.matchRepo.add(models.Match{
		BracketID: bracket.ID, Position: 1, Participants: []int{10, 20},
		WinnerParentID: &final.ID,
		Outcome:        &models.Outcome{WinnerTeamID: &leftWinner, LoserTeamID: &leftLoser},
	})
	rightWinner, rightLoser := 40, 30
	f.matchRepo.add(models.Match{
		BracketID: bracket.ID, Position: 2, Participants: []int{30, 40},
		WinnerParentID: &final.ID,
		Outcome:        &models.Outcome{WinnerTeamID: &rightWinner, LoserTeamID: &rightLoser},
	})

	finalWinner, finalLoser := 40, 10
	require.NoError(t, f.matchRepo.UpdateOutcome(context.Background(), final.ID,
		&models.Outcome{WinnerTeamID: &finalWinner, LoserTeamID: &finalLoser}))

	result, err := f.service.DetermineWinner(context.Background(), testAdminID, bracket.ID)
	require.NoError(t, err)
	require.NotNil(t, result.WinnerTeamID)
	assert.Equal(t, 40, *result.WinnerTeamID)
}

func TestDetermineWinnerLeavesUnfinishedBracketAlone(t *testing.T) {
	f := newBracketServiceFixture(t, true)
	bracket := f.addBracket(t, models.BracketRoundRobin)

	f.matchRepo.add(decidedMatch(bracket.ID, 10, 20, 1, 0))
	f.matchRepo.add(models.Match{BracketID: bracket.ID, Participants: []int{10, 30}})

	result, err := f.service.DetermineWinner(context.Background(), testAdminID, bracket.ID)
	require.NoError(t, err)
	assert.Nil(t, result.WinnerTeamID)

	stored, err := f.bracketRepo.GetByID(context.Background(), bracket.ID)
	require.NoError(t, err)
	assert.Nil(t, stored.WinnerTeamID)
}

func TestDetermineWinnerAdminOnly(t *testing.T) {
	f := newBracketServiceFixture(t, true)
	bracket := f.addBracket(t, models.BracketRoundRobin)

	_, err := f.service.DetermineWinner(context.Background(), 99, bracket.ID)
	assert.ErrorIs(t, err, ErrAdminOnly)
}

func TestGetBracketByIDIncludesMatches(t *testing.T) {
	f := newBracketServiceFixture(t, true)
	bracket := f.addBracket(t, models.BracketRoundRobin)

	f.matchRepo.add(models.Match{BracketID: bracket.ID, Position: 0, Participants: []int{10, 20}})
	f.matchRepo.add(models.Match{BracketID: bracket.ID, Position: 1, Participants: []int{10, 30}})

	loaded, err := f.service.GetBracketByID(context.Background(), bracket.ID)
	require.NoError(t, err)
	assert.Len(t, loaded.Matches, 2)

	_, err = f.service.GetBracketByID(context.Background(), 404)
	assert.ErrorIs(t, err, ErrBracketNotFound)
}

func TestRoundRobinWinnerDeterministicOnExactTie(t *testing.T) {
	// Equal wins and equal score: the first team encountered keeps the
	// title, so repeated runs agree.
	ten, twenty := 10, 20
	matches := []models.Match{
		{Outcome: &models.Outcome{WinnerTeamID: &ten, LoserTeamID: &twenty}},
		{Outcome: &models.Outcome{WinnerTeamID: &twenty, LoserTeamID: &ten}},
	}
	winner := roundRobinWinner(matches)
	require.NotNil(t, winner)
	assert.Equal(t, 10, *winner)
}
