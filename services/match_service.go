package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/changycj/tourneytrack/brackets"
	"github.com/changycj/tourneytrack/models"
	"github.com/changycj/tourneytrack/repositories"
	"golang.org/x/sync/errgroup"
)

type OutcomeInput struct {
	WinnerTeamID *int               `json:"winner"`
	LoserTeamID  *int               `json:"loser"`
	Metadata     []models.StatEntry `json:"metadata"`
}

type MatchListFilter struct {
	BracketID *int
	TeamID    *int
}

type MatchService interface {
	GetMatchByID(ctx context.Context, id int) (*models.Match, error)
	ListMatches(ctx context.Context, filter MatchListFilter) ([]*models.Match, error)
	SetOutcome(ctx context.Context, actorUserID, matchID int, input OutcomeInput) (*models.Match, error)
	ReportPreliminaryOutcome(ctx context.Context, actorUserID, matchID int, input OutcomeInput) (*models.Match, error)
}

type matchService struct {
	matchRepo      repositories.MatchRepository
	bracketRepo    repositories.BracketRepository
	tournamentRepo repositories.TournamentRepository
	teamRepo       repositories.TeamRepository
	userRepo       repositories.UserRepository
	email          *EmailService
	broadcaster    UpdateBroadcaster
	logger         *slog.Logger
}

func NewMatchService(
	matchRepo repositories.MatchRepository,
	bracketRepo repositories.BracketRepository,
	tournamentRepo repositories.TournamentRepository,
	teamRepo repositories.TeamRepository,
	userRepo repositories.UserRepository,
	email *EmailService,
	broadcaster UpdateBroadcaster,
	logger *slog.Logger,
) MatchService {
	return &matchService{
		matchRepo:      matchRepo,
		bracketRepo:    bracketRepo,
		tournamentRepo: tournamentRepo,
		teamRepo:       teamRepo,
		userRepo:       userRepo,
		email:          email,
		broadcaster:    broadcaster,
		logger:         logger,
	}
}

func (s *matchService) GetMatchByID(ctx context.Context, id int) (*models.Match, error) {
	match, err := s.matchRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repositories.ErrMatchNotFound) {
			return nil, ErrMatchNotFound
		}
		return nil, fmt.Errorf("failed to load match %d: %w", id, err)
	}
	return match, nil
}

func (s *matchService) ListMatches(ctx context.Context, filter MatchListFilter) ([]*models.Match, error) {
	list, err := s.matchRepo.List(ctx, repositories.MatchFilter{
		BracketID: filter.BracketID,
		TeamID:    filter.TeamID,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list matches: %w", err)
	}
	return list, nil
}

// SetOutcome records the final result of a match and advances the winner and
// loser into their parent matches. The participant appends use a single
// atomic array-append statement per parent, so two matches feeding the same
// parent can be resolved concurrently without losing an entrant.
func (s *matchService) SetOutcome(ctx context.Context, actorUserID, matchID int, input OutcomeInput) (*models.Match, error) {
	match, bracket, tournament, err := s.loadMatchContext(ctx, matchID)
	if err != nil {
		return nil, err
	}
	if tournament.AdminID != actorUserID {
		return nil, ErrAdminOnly
	}
	if match.IsOutcomeSet() {
		return nil, ErrOutcomeAlreadySet
	}
	if err := validateOutcome(match, tournament, input); err != nil {
		return nil, err
	}

	outcome := &models.Outcome{
		WinnerTeamID: input.WinnerTeamID,
		LoserTeamID:  input.LoserTeamID,
		Metadata:     input.Metadata,
	}

	g, gCtx := errgroup.WithContext(ctx)
	if match.WinnerParentID != nil {
		parentID, teamID := *match.WinnerParentID, *outcome.WinnerTeamID
		g.Go(func() error {
			if err := s.matchRepo.AppendParticipant(gCtx, parentID, teamID); err != nil {
				return fmt.Errorf("failed to advance winner into match %d: %w", parentID, err)
			}
			return nil
		})
	}
	if match.LoserParentID != nil {
		parentID, teamID := *match.LoserParentID, *outcome.LoserTeamID
		g.Go(func() error {
			if err := s.matchRepo.AppendParticipant(gCtx, parentID, teamID); err != nil {
				return fmt.Errorf("failed to advance loser into match %d: %w", parentID, err)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	if err := s.matchRepo.UpdateOutcome(ctx, match.ID, outcome); err != nil {
		return nil, fmt.Errorf("failed to save outcome for match %d: %w", match.ID, err)
	}
	match.Outcome = outcome

	s.broadcastMatch(bracket.TournamentID, match)
	return match, nil
}

// ReportPreliminaryOutcome lets a team captain file an unofficial result for
// the admin to review. A second report by the same team replaces its first
// one in place; reports by other teams are kept side by side. Once the final
// outcome is recorded the match takes no further reports.
func (s *matchService) ReportPreliminaryOutcome(ctx context.Context, actorUserID, matchID int, input OutcomeInput) (*models.Match, error) {
	match, bracket, tournament, err := s.loadMatchContext(ctx, matchID)
	if err != nil {
		return nil, err
	}
	if match.IsOutcomeSet() {
		return nil, ErrOutcomeAlreadySet
	}

	reporter, err := s.reportingTeam(ctx, match, actorUserID)
	if err != nil {
		return nil, err
	}
	if err := validateOutcome(match, tournament, input); err != nil {
		return nil, err
	}

	report := models.PreliminaryOutcome{
		Outcome: models.Outcome{
			WinnerTeamID: input.WinnerTeamID,
			LoserTeamID:  input.LoserTeamID,
			Metadata:     input.Metadata,
		},
		ReportedBy: reporter.ID,
	}

	replaced := false
	for i := range match.PreliminaryOutcomes {
		if match.PreliminaryOutcomes[i].ReportedBy == reporter.ID {
			match.PreliminaryOutcomes[i] = report
			replaced = true
			break
		}
	}
	if !replaced {
		match.PreliminaryOutcomes = append(match.PreliminaryOutcomes, report)
	}

	if err := s.matchRepo.UpdatePreliminaryOutcomes(ctx, match.ID, match.PreliminaryOutcomes); err != nil {
		return nil, fmt.Errorf("failed to save preliminary outcomes for match %d: %w", match.ID, err)
	}

	s.notifyAdmin(tournament, reporter, input)
	s.broadcastMatch(bracket.TournamentID, match)
	return match, nil
}

func (s *matchService) loadMatchContext(ctx context.Context, matchID int) (*models.Match, *models.Bracket, *models.Tournament, error) {
	match, err := s.matchRepo.GetByID(ctx, matchID)
	if err != nil {
		if errors.Is(err, repositories.ErrMatchNotFound) {
			return nil, nil, nil, ErrMatchNotFound
		}
		return nil, nil, nil, fmt.Errorf("failed to load match %d: %w", matchID, err)
	}
	bracket, err := s.bracketRepo.GetByID(ctx, match.BracketID)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("failed to load bracket %d: %w", match.BracketID, err)
	}
	tournament, err := s.tournamentRepo.GetByID(ctx, bracket.TournamentID)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("failed to load tournament %d: %w", bracket.TournamentID, err)
	}
	return match, bracket, tournament, nil
}

// reportingTeam resolves which participating team the acting user captains.
func (s *matchService) reportingTeam(ctx context.Context, match *models.Match, actorUserID int) (*models.Team, error) {
	for _, teamID := range match.Participants {
		team, err := s.teamRepo.GetByID(ctx, teamID)
		if err != nil {
			return nil, fmt.Errorf("failed to load team %d: %w", teamID, err)
		}
		if team.CaptainID == actorUserID {
			return team, nil
		}
	}
	return nil, ErrCaptainOnly
}

func (s *matchService) notifyAdmin(tournament *models.Tournament, reporter *models.Team, input OutcomeInput) {
	if s.email == nil {
		return
	}
	ctx := context.Background()

	admin, err := s.userRepo.GetByID(ctx, tournament.AdminID)
	if err != nil {
		s.logger.Warn("failed to load tournament admin for outcome report email",
			slog.Int("tournament_id", tournament.ID), slog.Any("error", err))
		return
	}

	report := OutcomeReport{
		TournamentName: tournament.Name,
		WinnerName:     s.teamName(ctx, input.WinnerTeamID),
		LoserName:      s.teamName(ctx, input.LoserTeamID),
		ReporterName:   reporter.Name,
		Metadata:       input.Metadata,
	}

	go func() {
		if err := s.email.SendOutcomeReportEmail(admin.Email, report); err != nil {
			s.logger.Warn("failed to send outcome report email",
				slog.String("to", admin.Email), slog.Any("error", err))
		}
	}()
}

func (s *matchService) teamName(ctx context.Context, teamID *int) string {
	if teamID == nil {
		return "unknown team"
	}
	team, err := s.teamRepo.GetByID(ctx, *teamID)
	if err != nil {
		return fmt.Sprintf("team %d", *teamID)
	}
	return team.Name
}

func (s *matchService) broadcastMatch(tournamentID int, match *models.Match) {
	if s.broadcaster == nil {
		return
	}
	room := brackets.RoomForTournament(tournamentID)
	s.broadcaster.BroadcastToRoom(room, brackets.Message{
		Type:    brackets.EventMatchUpdated,
		Payload: match,
		RoomID:  room,
	})
}

// validateOutcome enforces the shape shared by final and preliminary
// results: a winner and a loser drawn from the match participants, and a
// metadata entry for every stat field the tournament declares.
func validateOutcome(match *models.Match, tournament *models.Tournament, input OutcomeInput) error {
	if input.WinnerTeamID == nil || input.LoserTeamID == nil {
		return ErrOutcomeIncomplete
	}
	if !match.HasParticipant(*input.WinnerTeamID) || !match.HasParticipant(*input.LoserTeamID) {
		return ErrOutcomeParticipants
	}
	if *input.WinnerTeamID == *input.LoserTeamID {
		return ErrOutcomeParticipants
	}
	for _, field := range tournament.StatFields {
		if !statFieldSatisfied(field, input.Metadata) {
			return fmt.Errorf("%w: %s", ErrStatFieldsMissing, field.Name)
		}
	}
	return nil
}

// statFieldSatisfied checks one declared stat field against the reported
// metadata. Team-specific fields need both a winner and a loser value;
// match-level fields need a single match value.
func statFieldSatisfied(field models.StatField, metadata []models.StatEntry) bool {
	for _, entry := range metadata {
		if entry.Name != field.Name {
			continue
		}
		if field.TeamSpecific {
			if entry.Value.Winner != nil && entry.Value.Loser != nil {
				return true
			}
		} else if entry.Value.Match != nil {
			return true
		}
	}
	return false
}
