package services

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/changycj/tourneytrack/models"
	"github.com/changycj/tourneytrack/repositories"
	"github.com/changycj/tourneytrack/storage"
)

type CreateTeamInput struct {
	Name         string `json:"name"`
	TournamentID int    `json:"tournament_id"`
}

type TeamService interface {
	CreateTeam(ctx context.Context, captainUserID int, input CreateTeamInput) (*models.Team, error)
	GetTeamByID(ctx context.Context, id int) (*models.Team, error)
	ListTeamsByTournament(ctx context.Context, tournamentID int) ([]*models.Team, error)
	UploadTeamLogo(ctx context.Context, actorUserID, teamID int, contentType string, body io.Reader) (*models.Team, error)
}

type teamService struct {
	teamRepo       repositories.TeamRepository
	tournamentRepo repositories.TournamentRepository
	userRepo       repositories.UserRepository
	uploader       storage.FileUploader
}

func NewTeamService(
	teamRepo repositories.TeamRepository,
	tournamentRepo repositories.TournamentRepository,
	userRepo repositories.UserRepository,
	uploader storage.FileUploader,
) TeamService {
	return &teamService{
		teamRepo:       teamRepo,
		tournamentRepo: tournamentRepo,
		userRepo:       userRepo,
		uploader:       uploader,
	}
}

// CreateTeam registers a team with the acting user as captain. Teams can
// only join tournaments that have not started yet.
func (s *teamService) CreateTeam(ctx context.Context, captainUserID int, input CreateTeamInput) (*models.Team, error) {
	if input.Name == "" {
		return nil, ErrTeamNameRequired
	}

	tournament, err := s.tournamentRepo.GetByID(ctx, input.TournamentID)
	if err != nil {
		if errors.Is(err, repositories.ErrTournamentNotFound) {
			return nil, ErrTournamentNotFound
		}
		return nil, fmt.Errorf("failed to load tournament %d: %w", input.TournamentID, err)
	}
	if tournament.Started {
		return nil, fmt.Errorf("%w: tournament has already started", ErrValidationFailed)
	}

	team := &models.Team{
		Name:         input.Name,
		TournamentID: tournament.ID,
		CaptainID:    captainUserID,
	}
	if err := s.teamRepo.Create(ctx, team); err != nil {
		switch {
		case errors.Is(err, repositories.ErrTeamNameConflict):
			return nil, ErrTeamNameConflict
		case errors.Is(err, repositories.ErrTeamTournamentInvalid):
			return nil, ErrTournamentNotFound
		}
		return nil, fmt.Errorf("failed to create team: %w", err)
	}
	return team, nil
}

func (s *teamService) GetTeamByID(ctx context.Context, id int) (*models.Team, error) {
	team, err := s.teamRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repositories.ErrTeamNotFound) {
			return nil, ErrTeamNotFound
		}
		return nil, fmt.Errorf("failed to load team %d: %w", id, err)
	}

	captain, err := s.userRepo.GetByID(ctx, team.CaptainID)
	if err == nil {
		captain.PasswordHash = ""
		team.Captain = captain
	}

	fillLogoURL(s.uploader, team)
	return team, nil
}

func (s *teamService) ListTeamsByTournament(ctx context.Context, tournamentID int) ([]*models.Team, error) {
	teams, err := s.teamRepo.ListByTournament(ctx, tournamentID)
	if err != nil {
		return nil, fmt.Errorf("failed to list teams for tournament %d: %w", tournamentID, err)
	}
	for _, team := range teams {
		fillLogoURL(s.uploader, team)
	}
	return teams, nil
}

// UploadTeamLogo stores the logo under a key derived from the team ID, so a
// re-upload with the same content type overwrites the previous object.
func (s *teamService) UploadTeamLogo(ctx context.Context, actorUserID, teamID int, contentType string, body io.Reader) (*models.Team, error) {
	if s.uploader == nil {
		return nil, errors.New("object storage is not configured")
	}

	team, err := s.teamRepo.GetByID(ctx, teamID)
	if err != nil {
		if errors.Is(err, repositories.ErrTeamNotFound) {
			return nil, ErrTeamNotFound
		}
		return nil, fmt.Errorf("failed to load team %d: %w", teamID, err)
	}
	if team.CaptainID != actorUserID {
		return nil, ErrCaptainOnly
	}

	ext, ok := extensionForContentType(contentType)
	if !ok {
		return nil, fmt.Errorf("%w: unsupported logo content type %q", ErrValidationFailed, contentType)
	}

	key := fmt.Sprintf("teams/%d/logo%s", team.ID, ext)
	result, err := s.uploader.Upload(ctx, key, contentType, body)
	if err != nil {
		return nil, fmt.Errorf("failed to upload team logo: %w", err)
	}

	if team.LogoKey != nil && *team.LogoKey != key {
		// Stale object from an upload with a different extension.
		_ = s.uploader.Delete(ctx, *team.LogoKey)
	}

	if err := s.teamRepo.UpdateLogoKey(ctx, team.ID, &key); err != nil {
		return nil, fmt.Errorf("failed to save team logo key: %w", err)
	}

	team.LogoKey = &key
	team.LogoURL = &result.Location
	return team, nil
}
