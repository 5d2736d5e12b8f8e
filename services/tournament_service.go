package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/changycj/tourneytrack/models"
	"github.com/changycj/tourneytrack/repositories"
	"github.com/changycj/tourneytrack/storage"
	"golang.org/x/sync/errgroup"
)

type CreateTournamentInput struct {
	Name        string             `json:"name"`
	Description *string            `json:"description"`
	StatFields  []models.StatField `json:"stat_fields"`
}

type TournamentService interface {
	CreateTournament(ctx context.Context, adminUserID int, input CreateTournamentInput) (*models.Tournament, error)
	GetTournamentByID(ctx context.Context, id int) (*models.Tournament, error)
	ListTournaments(ctx context.Context) ([]*models.Tournament, error)
	StartTournament(ctx context.Context, actorUserID, id int) (*models.Tournament, error)
	SetTournamentWinner(ctx context.Context, actorUserID, id, teamID int) (*models.Tournament, error)
}

type tournamentService struct {
	tournamentRepo repositories.TournamentRepository
	teamRepo       repositories.TeamRepository
	bracketRepo    repositories.BracketRepository
	userRepo       repositories.UserRepository
	uploader       storage.FileUploader
}

func NewTournamentService(
	tournamentRepo repositories.TournamentRepository,
	teamRepo repositories.TeamRepository,
	bracketRepo repositories.BracketRepository,
	userRepo repositories.UserRepository,
	uploader storage.FileUploader,
) TournamentService {
	return &tournamentService{
		tournamentRepo: tournamentRepo,
		teamRepo:       teamRepo,
		bracketRepo:    bracketRepo,
		userRepo:       userRepo,
		uploader:       uploader,
	}
}

func (s *tournamentService) CreateTournament(ctx context.Context, adminUserID int, input CreateTournamentInput) (*models.Tournament, error) {
	if input.Name == "" {
		return nil, ErrTournamentNameRequired
	}
	for _, field := range input.StatFields {
		if field.Name == "" {
			return nil, fmt.Errorf("%w: stat field name is required", ErrValidationFailed)
		}
	}

	tournament := &models.Tournament{
		Name:        input.Name,
		Description: input.Description,
		AdminID:     adminUserID,
		StatFields:  input.StatFields,
	}
	if err := s.tournamentRepo.Create(ctx, tournament); err != nil {
		return nil, fmt.Errorf("failed to create tournament: %w", err)
	}
	return tournament, nil
}

// GetTournamentByID loads a tournament with its admin, teams and brackets
// fetched in parallel.
func (s *tournamentService) GetTournamentByID(ctx context.Context, id int) (*models.Tournament, error) {
	tournament, err := s.tournamentRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repositories.ErrTournamentNotFound) {
			return nil, ErrTournamentNotFound
		}
		return nil, fmt.Errorf("failed to load tournament %d: %w", id, err)
	}

	g, gCtx := errgroup.WithContext(ctx)
	g.Go(func() error {
		admin, err := s.userRepo.GetByID(gCtx, tournament.AdminID)
		if err != nil {
			return fmt.Errorf("failed to load tournament admin: %w", err)
		}
		admin.PasswordHash = ""
		tournament.Admin = admin
		return nil
	})
	g.Go(func() error {
		teams, err := s.teamRepo.ListByTournament(gCtx, id)
		if err != nil {
			return fmt.Errorf("failed to load tournament teams: %w", err)
		}
		for _, team := range teams {
			fillLogoURL(s.uploader, team)
		}
		tournament.Teams = dereferenceTeams(teams)
		return nil
	})
	g.Go(func() error {
		list, err := s.bracketRepo.ListByTournament(gCtx, id)
		if err != nil {
			return fmt.Errorf("failed to load tournament brackets: %w", err)
		}
		tournament.Brackets = dereferenceBrackets(list)
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return tournament, nil
}

func (s *tournamentService) ListTournaments(ctx context.Context) ([]*models.Tournament, error) {
	list, err := s.tournamentRepo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list tournaments: %w", err)
	}
	return list, nil
}

// StartTournament freezes the roster: brackets can only be created once the
// tournament is started.
func (s *tournamentService) StartTournament(ctx context.Context, actorUserID, id int) (*models.Tournament, error) {
	tournament, err := s.tournamentRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repositories.ErrTournamentNotFound) {
			return nil, ErrTournamentNotFound
		}
		return nil, fmt.Errorf("failed to load tournament %d: %w", id, err)
	}
	if tournament.AdminID != actorUserID {
		return nil, ErrAdminOnly
	}
	if tournament.Started {
		return tournament, nil
	}
	if err := s.tournamentRepo.SetStarted(ctx, id); err != nil {
		return nil, fmt.Errorf("failed to start tournament %d: %w", id, err)
	}
	tournament.Started = true
	return tournament, nil
}

func (s *tournamentService) SetTournamentWinner(ctx context.Context, actorUserID, id, teamID int) (*models.Tournament, error) {
	tournament, err := s.tournamentRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repositories.ErrTournamentNotFound) {
			return nil, ErrTournamentNotFound
		}
		return nil, fmt.Errorf("failed to load tournament %d: %w", id, err)
	}
	if tournament.AdminID != actorUserID {
		return nil, ErrAdminOnly
	}

	team, err := s.teamRepo.GetByID(ctx, teamID)
	if err != nil {
		if errors.Is(err, repositories.ErrTeamNotFound) {
			return nil, ErrTeamNotFound
		}
		return nil, fmt.Errorf("failed to load team %d: %w", teamID, err)
	}
	if team.TournamentID != tournament.ID {
		return nil, fmt.Errorf("%w: team %d does not belong to tournament %d", ErrValidationFailed, teamID, id)
	}

	if err := s.tournamentRepo.SetWinner(ctx, id, &teamID); err != nil {
		return nil, fmt.Errorf("failed to set winner for tournament %d: %w", id, err)
	}
	tournament.WinnerTeamID = &teamID
	return tournament, nil
}
