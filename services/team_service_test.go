package services

import (
	"context"
	"testing"

	"github.com/changycj/tourneytrack/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateTeam(t *testing.T) {
	tournamentRepo := newFakeTournamentRepo()
	teamRepo := newFakeTeamRepo()
	userRepo := newFakeUserRepo()
	service := NewTeamService(teamRepo, tournamentRepo, userRepo, nil)

	open := &models.Tournament{Name: "Open Cup", AdminID: testAdminID}
	require.NoError(t, tournamentRepo.Create(context.Background(), open))
	started := &models.Tournament{Name: "Running Cup", AdminID: testAdminID, Started: true}
	require.NoError(t, tournamentRepo.Create(context.Background(), started))

	team, err := service.CreateTeam(context.Background(), testCaptainID, CreateTeamInput{
		Name:         "Alpha",
		TournamentID: open.ID,
	})
	require.NoError(t, err)
	assert.NotZero(t, team.ID)
	assert.Equal(t, testCaptainID, team.CaptainID)

	_, err = service.CreateTeam(context.Background(), testCaptainID, CreateTeamInput{TournamentID: open.ID})
	assert.ErrorIs(t, err, ErrTeamNameRequired)

	_, err = service.CreateTeam(context.Background(), testCaptainID, CreateTeamInput{Name: "Beta", TournamentID: 404})
	assert.ErrorIs(t, err, ErrTournamentNotFound)

	// Roster is frozen once play begins.
	_, err = service.CreateTeam(context.Background(), testCaptainID, CreateTeamInput{Name: "Late", TournamentID: started.ID})
	assert.ErrorIs(t, err, ErrValidationFailed)
}

func TestGetTeamByIDPopulatesCaptain(t *testing.T) {
	tournamentRepo := newFakeTournamentRepo()
	teamRepo := newFakeTeamRepo()
	userRepo := newFakeUserRepo()
	service := NewTeamService(teamRepo, tournamentRepo, userRepo, nil)

	captain := &models.User{Username: "casey", Email: "casey@example.com", PasswordHash: "secret"}
	require.NoError(t, userRepo.Create(context.Background(), captain))

	team := &models.Team{Name: "Alpha", TournamentID: 1, CaptainID: captain.ID}
	require.NoError(t, teamRepo.Create(context.Background(), team))

	loaded, err := service.GetTeamByID(context.Background(), team.ID)
	require.NoError(t, err)
	require.NotNil(t, loaded.Captain)
	assert.Equal(t, "casey", loaded.Captain.Username)
	assert.Empty(t, loaded.Captain.PasswordHash)

	_, err = service.GetTeamByID(context.Background(), 404)
	assert.ErrorIs(t, err, ErrTeamNotFound)
}
