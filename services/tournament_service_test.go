package services

import (
	"context"
	"testing"

	"github.com/changycj/tourneytrack/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTournamentServiceFixture(t *testing.T) (TournamentService, *fakeTournamentRepo, *fakeTeamRepo, *fakeUserRepo) {
	t.Helper()
	tournamentRepo := newFakeTournamentRepo()
	teamRepo := newFakeTeamRepo()
	bracketRepo := newFakeBracketRepo()
	userRepo := newFakeUserRepo()
	service := NewTournamentService(tournamentRepo, teamRepo, bracketRepo, userRepo, nil)
	return service, tournamentRepo, teamRepo, userRepo
}

func TestCreateTournament(t *testing.T) {
	service, _, _, _ := newTournamentServiceFixture(t)

	tournament, err := service.CreateTournament(context.Background(), testAdminID, CreateTournamentInput{
		Name:       "Summer Cup",
		StatFields: []models.StatField{{Name: "Score", TeamSpecific: true}},
	})
	require.NoError(t, err)
	assert.NotZero(t, tournament.ID)
	assert.Equal(t, testAdminID, tournament.AdminID)
	assert.False(t, tournament.Started)

	_, err = service.CreateTournament(context.Background(), testAdminID, CreateTournamentInput{})
	assert.ErrorIs(t, err, ErrTournamentNameRequired)

	_, err = service.CreateTournament(context.Background(), testAdminID, CreateTournamentInput{
		Name:       "Bad Fields",
		StatFields: []models.StatField{{Name: ""}},
	})
	assert.ErrorIs(t, err, ErrValidationFailed)
}

func TestStartTournament(t *testing.T) {
	service, _, _, _ := newTournamentServiceFixture(t)

	tournament, err := service.CreateTournament(context.Background(), testAdminID, CreateTournamentInput{Name: "Summer Cup"})
	require.NoError(t, err)

	_, err = service.StartTournament(context.Background(), 99, tournament.ID)
	assert.ErrorIs(t, err, ErrAdminOnly)

	started, err := service.StartTournament(context.Background(), testAdminID, tournament.ID)
	require.NoError(t, err)
	assert.True(t, started.Started)

	// Idempotent.
	again, err := service.StartTournament(context.Background(), testAdminID, tournament.ID)
	require.NoError(t, err)
	assert.True(t, again.Started)
}

func TestSetTournamentWinner(t *testing.T) {
	service, _, teamRepo, _ := newTournamentServiceFixture(t)

	tournament, err := service.CreateTournament(context.Background(), testAdminID, CreateTournamentInput{Name: "Summer Cup"})
	require.NoError(t, err)

	team := &models.Team{Name: "Alpha", TournamentID: tournament.ID, CaptainID: testCaptainID}
	require.NoError(t, teamRepo.Create(context.Background(), team))
	outsider := &models.Team{Name: "Drifters", TournamentID: 999, CaptainID: testCaptainID}
	require.NoError(t, teamRepo.Create(context.Background(), outsider))

	_, err = service.SetTournamentWinner(context.Background(), testAdminID, tournament.ID, outsider.ID)
	assert.ErrorIs(t, err, ErrValidationFailed)

	updated, err := service.SetTournamentWinner(context.Background(), testAdminID, tournament.ID, team.ID)
	require.NoError(t, err)
	require.NotNil(t, updated.WinnerTeamID)
	assert.Equal(t, team.ID, *updated.WinnerTeamID)
}

func TestGetTournamentByIDLoadsRelations(t *testing.T) {
	service, _, teamRepo, userRepo := newTournamentServiceFixture(t)

	admin := &models.User{Username: "admin", Email: "admin@example.com", PasswordHash: "secret"}
	require.NoError(t, userRepo.Create(context.Background(), admin))

	tournament, err := service.CreateTournament(context.Background(), admin.ID, CreateTournamentInput{Name: "Summer Cup"})
	require.NoError(t, err)

	team := &models.Team{Name: "Alpha", TournamentID: tournament.ID, CaptainID: testCaptainID}
	require.NoError(t, teamRepo.Create(context.Background(), team))

	loaded, err := service.GetTournamentByID(context.Background(), tournament.ID)
	require.NoError(t, err)
	require.NotNil(t, loaded.Admin)
	assert.Empty(t, loaded.Admin.PasswordHash)
	assert.Len(t, loaded.Teams, 1)
	assert.Empty(t, loaded.Brackets)

	_, err = service.GetTournamentByID(context.Background(), 404)
	assert.ErrorIs(t, err, ErrTournamentNotFound)
}
