package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/changycj/tourneytrack/brackets"
	"github.com/changycj/tourneytrack/models"
	"github.com/changycj/tourneytrack/repositories"
	"golang.org/x/sync/errgroup"
)

// scoreStatFieldName is the metadata field round-robin standings are ranked
// by. It is matched by name, never by position in the metadata list.
const scoreStatFieldName = "Score"

// UpdateBroadcaster pushes live updates to websocket rooms. *brackets.Hub
// satisfies it; services tolerate a nil broadcaster.
type UpdateBroadcaster interface {
	BroadcastToRoom(roomID string, message interface{})
}

type CreateBracketInput struct {
	Type         models.BracketType `json:"type"`
	Name         string             `json:"name"`
	TournamentID int                `json:"tournament_id"`
	TeamIDs      []int              `json:"teams"`
}

type BracketService interface {
	CreateBracket(ctx context.Context, actorUserID int, input CreateBracketInput) (*models.Bracket, error)
	GetBracketByID(ctx context.Context, id int) (*models.Bracket, error)
	ListBracketsByTournament(ctx context.Context, tournamentID int) ([]*models.Bracket, error)
	DetermineWinner(ctx context.Context, actorUserID, bracketID int) (*models.Bracket, error)
	DeleteBracket(ctx context.Context, actorUserID, bracketID int) error
}

type bracketService struct {
	db             *sql.DB
	tournamentRepo repositories.TournamentRepository
	teamRepo       repositories.TeamRepository
	bracketRepo    repositories.BracketRepository
	matchRepo      repositories.MatchRepository
	broadcaster    UpdateBroadcaster
	logger         *slog.Logger
}

func NewBracketService(
	db *sql.DB,
	tournamentRepo repositories.TournamentRepository,
	teamRepo repositories.TeamRepository,
	bracketRepo repositories.BracketRepository,
	matchRepo repositories.MatchRepository,
	broadcaster UpdateBroadcaster,
	logger *slog.Logger,
) BracketService {
	return &bracketService{
		db:             db,
		tournamentRepo: tournamentRepo,
		teamRepo:       teamRepo,
		bracketRepo:    bracketRepo,
		matchRepo:      matchRepo,
		broadcaster:    broadcaster,
		logger:         logger,
	}
}

// CreateBracket validates the team list, generates the match arena for the
// requested bracket type, and persists bracket plus matches in one
// transaction. Matches are inserted in generation order and parent links
// are resolved from arena slots to row IDs in a second pass.
func (s *bracketService) CreateBracket(ctx context.Context, actorUserID int, input CreateBracketInput) (*models.Bracket, error) {
	if input.Name == "" {
		return nil, fmt.Errorf("%w: bracket name is required", ErrValidationFailed)
	}
	if err := input.Type.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBracketTypeInvalid, err)
	}
	if len(input.TeamIDs) < 2 {
		return nil, ErrBracketTooFewTeams
	}
	seen := make(map[int]bool, len(input.TeamIDs))
	for _, id := range input.TeamIDs {
		if seen[id] {
			return nil, ErrBracketDuplicateTeams
		}
		seen[id] = true
	}

	tournament, err := s.tournamentRepo.GetByID(ctx, input.TournamentID)
	if err != nil {
		if errors.Is(err, repositories.ErrTournamentNotFound) {
			return nil, ErrTournamentNotFound
		}
		return nil, fmt.Errorf("failed to load tournament %d: %w", input.TournamentID, err)
	}
	if tournament.AdminID != actorUserID {
		return nil, ErrAdminOnly
	}
	if !tournament.Started {
		return nil, ErrTournamentNotStarted
	}

	count, err := s.teamRepo.CountByIDs(ctx, tournament.ID, input.TeamIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to verify bracket teams: %w", err)
	}
	if count != len(input.TeamIDs) {
		return nil, ErrBracketUnknownTeams
	}

	generator, err := brackets.ForType(input.Type)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBracketTypeInvalid, err)
	}
	generated, err := generator.GenerateBracket(ctx, brackets.GenerateParams{TeamIDs: input.TeamIDs})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrValidationFailed, err)
	}

	bracket := &models.Bracket{
		Type:         input.Type,
		Name:         input.Name,
		TournamentID: tournament.ID,
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if err := s.bracketRepo.Create(ctx, tx, bracket); err != nil {
		return nil, fmt.Errorf("failed to create bracket: %w", err)
	}

	// First pass: insert every match in slot order, remembering row IDs.
	rowIDs := make([]int, len(generated))
	for i, gm := range generated {
		match := &models.Match{
			BracketID:    bracket.ID,
			Position:     gm.Slot,
			Participants: gm.Participants,
			Outcome:      gm.Outcome,
		}
		if err := s.matchRepo.Create(ctx, tx, match); err != nil {
			return nil, fmt.Errorf("failed to create match at slot %d: %w", gm.Slot, err)
		}
		rowIDs[i] = match.ID
	}

	// Second pass: rewrite arena slot links as row ID foreign keys.
	for i, gm := range generated {
		if gm.WinnerParentSlot == nil && gm.LoserParentSlot == nil {
			continue
		}
		var winnerParentID, loserParentID *int
		if gm.WinnerParentSlot != nil {
			winnerParentID = &rowIDs[*gm.WinnerParentSlot]
		}
		if gm.LoserParentSlot != nil {
			loserParentID = &rowIDs[*gm.LoserParentSlot]
		}
		if err := s.matchRepo.SetParentLinks(ctx, tx, rowIDs[i], winnerParentID, loserParentID); err != nil {
			return nil, fmt.Errorf("failed to link match at slot %d: %w", gm.Slot, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit bracket creation: %w", err)
	}

	matches, err := s.matchRepo.ListByBracket(ctx, bracket.ID)
	if err != nil {
		s.logger.WarnContext(ctx, "bracket saved but matches could not be reloaded",
			slog.Int("bracket_id", bracket.ID), slog.Any("error", err))
	} else {
		bracket.Matches = dereferenceMatches(matches)
	}

	s.broadcast(tournament.ID, brackets.EventBracketCreated, bracket)
	return bracket, nil
}

// GetBracketByID loads a bracket together with its matches, fetched in
// parallel.
func (s *bracketService) GetBracketByID(ctx context.Context, id int) (*models.Bracket, error) {
	var bracket *models.Bracket
	var matches []*models.Match

	g, gCtx := errgroup.WithContext(ctx)
	g.Go(func() error {
		b, err := s.bracketRepo.GetByID(gCtx, id)
		if err != nil {
			if errors.Is(err, repositories.ErrBracketNotFound) {
				return ErrBracketNotFound
			}
			return fmt.Errorf("failed to load bracket %d: %w", id, err)
		}
		bracket = b
		return nil
	})
	g.Go(func() error {
		list, err := s.matchRepo.ListByBracket(gCtx, id)
		if err != nil {
			return fmt.Errorf("failed to load matches for bracket %d: %w", id, err)
		}
		matches = list
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	bracket.Matches = dereferenceMatches(matches)
	return bracket, nil
}

func (s *bracketService) ListBracketsByTournament(ctx context.Context, tournamentID int) ([]*models.Bracket, error) {
	list, err := s.bracketRepo.ListByTournament(ctx, tournamentID)
	if err != nil {
		return nil, fmt.Errorf("failed to list brackets for tournament %d: %w", tournamentID, err)
	}
	return list, nil
}

// DetermineWinner recomputes the bracket winner. A bracket with undecided
// matches is left untouched; that is the normal in-progress state, not an
// error. Calling it again after more results arrive overwrites the winner.
func (s *bracketService) DetermineWinner(ctx context.Context, actorUserID, bracketID int) (*models.Bracket, error) {
	bracket, err := s.GetBracketByID(ctx, bracketID)
	if err != nil {
		return nil, err
	}

	tournament, err := s.tournamentRepo.GetByID(ctx, bracket.TournamentID)
	if err != nil {
		return nil, fmt.Errorf("failed to load tournament %d: %w", bracket.TournamentID, err)
	}
	if tournament.AdminID != actorUserID {
		return nil, ErrAdminOnly
	}

	for i := range bracket.Matches {
		if !bracket.Matches[i].IsOutcomeSet() {
			return bracket, nil
		}
	}

	var winner *int
	switch bracket.Type {
	case models.BracketRoundRobin:
		winner = roundRobinWinner(bracket.Matches)
	case models.BracketElimination:
		winner = eliminationWinner(bracket.Matches)
	}
	if winner == nil {
		return bracket, nil
	}

	if err := s.bracketRepo.SetWinner(ctx, bracket.ID, *winner); err != nil {
		return nil, fmt.Errorf("failed to set winner for bracket %d: %w", bracket.ID, err)
	}
	bracket.WinnerTeamID = winner

	s.broadcast(tournament.ID, brackets.EventWinnerDetermined, bracket)
	return bracket, nil
}

// DeleteBracket removes every match in the bracket and then the bracket
// itself, as one transaction.
func (s *bracketService) DeleteBracket(ctx context.Context, actorUserID, bracketID int) error {
	bracket, err := s.bracketRepo.GetByID(ctx, bracketID)
	if err != nil {
		if errors.Is(err, repositories.ErrBracketNotFound) {
			return ErrBracketNotFound
		}
		return fmt.Errorf("failed to load bracket %d: %w", bracketID, err)
	}

	tournament, err := s.tournamentRepo.GetByID(ctx, bracket.TournamentID)
	if err != nil {
		return fmt.Errorf("failed to load tournament %d: %w", bracket.TournamentID, err)
	}
	if tournament.AdminID != actorUserID {
		return ErrAdminOnly
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if err := s.matchRepo.DeleteByBracket(ctx, tx, bracketID); err != nil {
		return fmt.Errorf("failed to delete matches for bracket %d: %w", bracketID, err)
	}
	if err := s.bracketRepo.Delete(ctx, tx, bracketID); err != nil {
		return fmt.Errorf("failed to delete bracket %d: %w", bracketID, err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit bracket deletion: %w", err)
	}

	s.broadcast(tournament.ID, brackets.EventBracketDeleted, map[string]int{"bracket_id": bracketID})
	return nil
}

func (s *bracketService) broadcast(tournamentID int, eventType string, payload interface{}) {
	if s.broadcaster == nil {
		return
	}
	room := brackets.RoomForTournament(tournamentID)
	s.broadcaster.BroadcastToRoom(room, brackets.Message{
		Type:    eventType,
		Payload: payload,
		RoomID:  room,
	})
}

// roundRobinWinner ranks teams by win count, breaking ties with the summed
// Score stat. Teams are considered in order of first appearance across the
// match list, which makes exact ties resolve deterministically.
func roundRobinWinner(matches []models.Match) *int {
	type tally struct {
		wins  int
		score int
	}
	counts := make(map[int]*tally)
	order := make([]int, 0, len(matches))

	for i := range matches {
		outcome := matches[i].Outcome
		if outcome == nil || outcome.WinnerTeamID == nil {
			continue
		}
		winnerScore, loserScore := scoreValues(outcome)

		w := *outcome.WinnerTeamID
		if t, ok := counts[w]; ok {
			t.wins++
			t.score += winnerScore
		} else {
			counts[w] = &tally{wins: 1, score: winnerScore}
			order = append(order, w)
		}

		if outcome.LoserTeamID != nil {
			l := *outcome.LoserTeamID
			if t, ok := counts[l]; ok {
				t.score += loserScore
			} else {
				counts[l] = &tally{wins: 0, score: loserScore}
				order = append(order, l)
			}
		}
	}

	var winner *int
	for _, team := range order {
		team := team
		if winner == nil {
			winner = &team
			continue
		}
		current, best := counts[team], counts[*winner]
		if current.wins > best.wins || (current.wins == best.wins && current.score > best.score) {
			winner = &team
		}
	}
	return winner
}

// eliminationWinner returns the outcome winner of the unique match with no
// parent at all: the final.
func eliminationWinner(matches []models.Match) *int {
	for i := range matches {
		m := &matches[i]
		if m.WinnerParentID == nil && m.LoserParentID == nil && m.Outcome != nil {
			return m.Outcome.WinnerTeamID
		}
	}
	return nil
}

// scoreValues pulls the winner and loser values of the Score metadata field,
// located by name. Missing values count as zero.
func scoreValues(outcome *models.Outcome) (winnerScore, loserScore int) {
	for _, entry := range outcome.Metadata {
		if entry.Name != scoreStatFieldName {
			continue
		}
		if entry.Value.Winner != nil {
			winnerScore = *entry.Value.Winner
		}
		if entry.Value.Loser != nil {
			loserScore = *entry.Value.Loser
		}
		return winnerScore, loserScore
	}
	return 0, 0
}
