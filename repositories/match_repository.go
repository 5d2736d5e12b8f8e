package repositories

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/changycj/tourneytrack/models"
	"github.com/lib/pq"
)

var (
	ErrMatchNotFound       = errors.New("match not found")
	ErrMatchBracketInvalid = errors.New("match bracket reference is invalid")
)

// MatchFilter narrows List; nil fields are ignored.
type MatchFilter struct {
	BracketID *int
	TeamID    *int
}

type MatchRepository interface {
	Create(ctx context.Context, exec SQLExecutor, match *models.Match) error
	SetParentLinks(ctx context.Context, exec SQLExecutor, id int, winnerParentID, loserParentID *int) error
	GetByID(ctx context.Context, id int) (*models.Match, error)
	List(ctx context.Context, filter MatchFilter) ([]*models.Match, error)
	ListByBracket(ctx context.Context, bracketID int) ([]*models.Match, error)
	// AppendParticipant adds a team to the match's participant list in a
	// single UPDATE, so concurrent appends to the same match cannot lose
	// each other's write.
	AppendParticipant(ctx context.Context, id int, teamID int) error
	UpdateOutcome(ctx context.Context, id int, outcome *models.Outcome) error
	UpdatePreliminaryOutcomes(ctx context.Context, id int, outcomes []models.PreliminaryOutcome) error
	DeleteByBracket(ctx context.Context, exec SQLExecutor, bracketID int) error
}

type postgresMatchRepository struct {
	db *sql.DB
}

func NewPostgresMatchRepository(db *sql.DB) MatchRepository {
	return &postgresMatchRepository{db: db}
}

const matchColumns = `id, bracket_id, position, participants, winner_parent_match_id, loser_parent_match_id, outcome, preliminary_outcomes`

func (r *postgresMatchRepository) Create(ctx context.Context, exec SQLExecutor, match *models.Match) error {
	outcome, err := encodeOutcome(match.Outcome)
	if err != nil {
		return err
	}
	prelims, err := encodePreliminaryOutcomes(match.PreliminaryOutcomes)
	if err != nil {
		return err
	}

	query := `
		INSERT INTO matches
			(bracket_id, position, participants, winner_parent_match_id, loser_parent_match_id, outcome, preliminary_outcomes)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id`

	err = exec.QueryRowContext(ctx, query,
		match.BracketID,
		match.Position,
		pq.Array(toInt64s(match.Participants)),
		match.WinnerParentID,
		match.LoserParentID,
		outcome,
		prelims,
	).Scan(&match.ID)

	if pqErr, ok := err.(*pq.Error); ok && pqErr.Code == "23503" {
		return ErrMatchBracketInvalid
	}
	return err
}

func (r *postgresMatchRepository) SetParentLinks(ctx context.Context, exec SQLExecutor, id int, winnerParentID, loserParentID *int) error {
	query := `
		UPDATE matches
		SET winner_parent_match_id = $1, loser_parent_match_id = $2
		WHERE id = $3`

	result, err := exec.ExecContext(ctx, query, winnerParentID, loserParentID, id)
	if err != nil {
		return err
	}
	return r.requireRow(result)
}

func (r *postgresMatchRepository) GetByID(ctx context.Context, id int) (*models.Match, error) {
	query := `SELECT ` + matchColumns + ` FROM matches WHERE id = $1`

	match, err := scanMatch(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrMatchNotFound
		}
		return nil, err
	}
	return match, nil
}

func (r *postgresMatchRepository) List(ctx context.Context, filter MatchFilter) ([]*models.Match, error) {
	var queryBuilder strings.Builder
	queryBuilder.WriteString(`SELECT ` + matchColumns + ` FROM matches WHERE TRUE`)

	args := []interface{}{}
	placeholder := 1

	if filter.BracketID != nil {
		queryBuilder.WriteString(" AND bracket_id = $" + strconv.Itoa(placeholder))
		args = append(args, *filter.BracketID)
		placeholder++
	}
	if filter.TeamID != nil {
		queryBuilder.WriteString(" AND $" + strconv.Itoa(placeholder) + " = ANY(participants)")
		args = append(args, *filter.TeamID)
		placeholder++
	}

	queryBuilder.WriteString(" ORDER BY bracket_id ASC, position ASC")

	rows, err := r.db.QueryContext(ctx, queryBuilder.String(), args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return collectMatches(rows)
}

func (r *postgresMatchRepository) ListByBracket(ctx context.Context, bracketID int) ([]*models.Match, error) {
	return r.List(ctx, MatchFilter{BracketID: &bracketID})
}

func (r *postgresMatchRepository) AppendParticipant(ctx context.Context, id int, teamID int) error {
	query := `UPDATE matches SET participants = array_append(participants, $1) WHERE id = $2`

	result, err := r.db.ExecContext(ctx, query, teamID, id)
	if err != nil {
		return err
	}
	return r.requireRow(result)
}

func (r *postgresMatchRepository) UpdateOutcome(ctx context.Context, id int, outcome *models.Outcome) error {
	encoded, err := encodeOutcome(outcome)
	if err != nil {
		return err
	}

	result, err := r.db.ExecContext(ctx, `UPDATE matches SET outcome = $1 WHERE id = $2`, encoded, id)
	if err != nil {
		return err
	}
	return r.requireRow(result)
}

func (r *postgresMatchRepository) UpdatePreliminaryOutcomes(ctx context.Context, id int, outcomes []models.PreliminaryOutcome) error {
	encoded, err := encodePreliminaryOutcomes(outcomes)
	if err != nil {
		return err
	}

	result, err := r.db.ExecContext(ctx, `UPDATE matches SET preliminary_outcomes = $1 WHERE id = $2`, encoded, id)
	if err != nil {
		return err
	}
	return r.requireRow(result)
}

func (r *postgresMatchRepository) DeleteByBracket(ctx context.Context, exec SQLExecutor, bracketID int) error {
	_, err := exec.ExecContext(ctx, `DELETE FROM matches WHERE bracket_id = $1`, bracketID)
	return err
}

func (r *postgresMatchRepository) requireRow(result sql.Result) error {
	rowsAffected, err := checkRowsAffected(result)
	if err != nil {
		return err
	}
	if rowsAffected == 0 {
		return ErrMatchNotFound
	}
	return nil
}

func collectMatches(rows *sql.Rows) ([]*models.Match, error) {
	matches := make([]*models.Match, 0)
	for rows.Next() {
		match, err := scanMatch(rows)
		if err != nil {
			return nil, err
		}
		matches = append(matches, match)
	}
	return matches, rows.Err()
}

func scanMatch(row rowScanner) (*models.Match, error) {
	match := &models.Match{}
	var participants pq.Int64Array
	var outcome, prelims []byte

	if err := row.Scan(
		&match.ID,
		&match.BracketID,
		&match.Position,
		&participants,
		&match.WinnerParentID,
		&match.LoserParentID,
		&outcome,
		&prelims,
	); err != nil {
		return nil, err
	}

	match.Participants = make([]int, len(participants))
	for i, id := range participants {
		match.Participants[i] = int(id)
	}

	if len(outcome) > 0 {
		match.Outcome = &models.Outcome{}
		if err := json.Unmarshal(outcome, match.Outcome); err != nil {
			return nil, fmt.Errorf("failed to decode outcome for match %d: %w", match.ID, err)
		}
	}
	match.PreliminaryOutcomes = []models.PreliminaryOutcome{}
	if len(prelims) > 0 {
		if err := json.Unmarshal(prelims, &match.PreliminaryOutcomes); err != nil {
			return nil, fmt.Errorf("failed to decode preliminary outcomes for match %d: %w", match.ID, err)
		}
	}
	return match, nil
}

func encodeOutcome(outcome *models.Outcome) ([]byte, error) {
	if outcome == nil {
		return nil, nil
	}
	encoded, err := json.Marshal(outcome)
	if err != nil {
		return nil, fmt.Errorf("failed to encode outcome: %w", err)
	}
	return encoded, nil
}

func encodePreliminaryOutcomes(outcomes []models.PreliminaryOutcome) ([]byte, error) {
	if outcomes == nil {
		outcomes = []models.PreliminaryOutcome{}
	}
	encoded, err := json.Marshal(outcomes)
	if err != nil {
		return nil, fmt.Errorf("failed to encode preliminary outcomes: %w", err)
	}
	return encoded, nil
}

func toInt64s(ids []int) []int64 {
	out := make([]int64, len(ids))
	for i, id := range ids {
		out[i] = int64(id)
	}
	return out
}
