package repositories

import (
	"context"
	"database/sql"
	"errors"

	"github.com/changycj/tourneytrack/models"
	"github.com/lib/pq"
)

var (
	ErrBracketNotFound          = errors.New("bracket not found")
	ErrBracketTournamentInvalid = errors.New("bracket tournament reference is invalid")
)

type BracketRepository interface {
	Create(ctx context.Context, exec SQLExecutor, bracket *models.Bracket) error
	GetByID(ctx context.Context, id int) (*models.Bracket, error)
	ListByTournament(ctx context.Context, tournamentID int) ([]*models.Bracket, error)
	SetWinner(ctx context.Context, id int, winnerTeamID int) error
	Delete(ctx context.Context, exec SQLExecutor, id int) error
}

type postgresBracketRepository struct {
	db *sql.DB
}

func NewPostgresBracketRepository(db *sql.DB) BracketRepository {
	return &postgresBracketRepository{db: db}
}

func (r *postgresBracketRepository) Create(ctx context.Context, exec SQLExecutor, bracket *models.Bracket) error {
	query := `
		INSERT INTO brackets (type, name, tournament_id)
		VALUES ($1, $2, $3)
		RETURNING id`

	err := exec.QueryRowContext(ctx, query, bracket.Type, bracket.Name, bracket.TournamentID).
		Scan(&bracket.ID)

	if pqErr, ok := err.(*pq.Error); ok && pqErr.Code == "23503" {
		return ErrBracketTournamentInvalid
	}
	return err
}

func (r *postgresBracketRepository) GetByID(ctx context.Context, id int) (*models.Bracket, error) {
	query := `
		SELECT id, type, name, tournament_id, winner_team_id
		FROM brackets
		WHERE id = $1`

	bracket := &models.Bracket{}
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&bracket.ID,
		&bracket.Type,
		&bracket.Name,
		&bracket.TournamentID,
		&bracket.WinnerTeamID,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrBracketNotFound
		}
		return nil, err
	}
	return bracket, nil
}

func (r *postgresBracketRepository) ListByTournament(ctx context.Context, tournamentID int) ([]*models.Bracket, error) {
	query := `
		SELECT id, type, name, tournament_id, winner_team_id
		FROM brackets
		WHERE tournament_id = $1
		ORDER BY id ASC`

	rows, err := r.db.QueryContext(ctx, query, tournamentID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	brackets := make([]*models.Bracket, 0)
	for rows.Next() {
		var bracket models.Bracket
		if scanErr := rows.Scan(
			&bracket.ID,
			&bracket.Type,
			&bracket.Name,
			&bracket.TournamentID,
			&bracket.WinnerTeamID,
		); scanErr != nil {
			return nil, scanErr
		}
		brackets = append(brackets, &bracket)
	}
	return brackets, rows.Err()
}

func (r *postgresBracketRepository) SetWinner(ctx context.Context, id int, winnerTeamID int) error {
	query := `UPDATE brackets SET winner_team_id = $1 WHERE id = $2`

	result, err := r.db.ExecContext(ctx, query, winnerTeamID, id)
	if err != nil {
		return err
	}
	rowsAffected, checkErr := checkRowsAffected(result)
	if checkErr != nil {
		return checkErr
	}
	if rowsAffected == 0 {
		return ErrBracketNotFound
	}
	return nil
}

func (r *postgresBracketRepository) Delete(ctx context.Context, exec SQLExecutor, id int) error {
	result, err := exec.ExecContext(ctx, `DELETE FROM brackets WHERE id = $1`, id)
	if err != nil {
		return err
	}
	rowsAffected, checkErr := checkRowsAffected(result)
	if checkErr != nil {
		return checkErr
	}
	if rowsAffected == 0 {
		return ErrBracketNotFound
	}
	return nil
}
